// Copyright (c) 2025 Dbrelay
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the CLI version, overridden at build time via -ldflags.
var Version = "dev"

// versionCmd prints the CLI version and, when logged in, the platform and
// engine versions of the connected server.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show CLI and server version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("dbrelay %s\n", Version)

		session, err := connect(cmd)
		if err != nil {
			// Not logged in or unreachable; the CLI version alone is fine.
			return nil
		}
		fmt.Printf("platform %s\n", session.Details.PlatformVersion)
		fmt.Printf("engine %s (%s)\n", session.Details.EngineVersion, session.Details.EngineEdition)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
