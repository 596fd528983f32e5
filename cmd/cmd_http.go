// Copyright 2026 The pdxmaps Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"log"

	"github.com/pdxmaps/pdxmaps/api"
	"github.com/pdxmaps/pdxmaps/config"
	"github.com/spf13/cobra"
)

var httpCmd = &cobra.Command{
	Use:   "http",
	Short: "Serve the tools as a JSON HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		server := api.NewServer(newToolbox(options))

		log.Printf("pdxmaps %s listening on http://%s", Version, options.ListenAddr)

		return server.Run(options.ListenAddr)
	},
}

func init() {
	rootCmd.AddCommand(httpCmd)
	httpCmd.Flags().StringVar(&flagOptions.ListenAddr, "listen", config.Default().ListenAddr, "Address to listen on")
}
