// Copyright 2026 The pdxmaps Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"log"

	"github.com/mark3labs/mcp-go/server"
	"github.com/pdxmaps/pdxmaps/tools"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the tools over MCP on stdin/stdout",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		s := tools.NewMCPServer(newToolbox(options), Version)

		log.Printf("pdxmaps %s serving MCP on stdio (suggest: %s)", Version, options.SuggestURL)

		return server.ServeStdio(s)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
