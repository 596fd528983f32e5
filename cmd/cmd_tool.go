// Copyright 2026 The pdxmaps Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/pdxmaps/pdxmaps/tools"
	"github.com/spf13/cobra"
)

var toolCmd = &cobra.Command{
	Use:   "tool <name> <address>",
	Short: "Run one of the text tools and print its answer",
	Long: `
Runs a text tool against an address, printing the same text an assistant
would receive over MCP.

$ pdxmaps tool get_zoning "1120 SW 5th Ave"
`,
	Args:      cobra.MinimumNArgs(2),
	ValidArgs: []string{tools.NamePropertyDetails, tools.NameZoning, tools.NamePermits, tools.NameTaxInfo},
	RunE: func(cmd *cobra.Command, args []string) error {
		tb := newToolbox(options)

		run, ok := tb.TextTools()[args[0]]
		if !ok {
			return fmt.Errorf("unknown tool %q, expected one of %s", args[0], strings.Join(tb.TextToolNames(), ", "))
		}

		text, err := run(cmd.Context(), strings.Join(args[1:], " "))
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(cmd.OutOrStdout(), text)

		return err
	},
}

func init() {
	rootCmd.AddCommand(toolCmd)
}
