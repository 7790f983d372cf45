// Copyright (c) 2025 Dbrelay
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"dbrelay/cli/internal/api"
	"dbrelay/cli/internal/auth"
)

var whoamiVerify bool

// whoamiCmd shows the stored account and server. With --verify it also opens
// a session to confirm the stored credentials are still accepted.
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in account and server",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := auth.NewService(api.DefaultEndpoints())
		st, ok := svc.Account()
		if !ok {
			pterm.Println("Not logged in. Run: dbrelay login")
			return nil
		}
		pterm.Printf("%s @ %s\n", st.Account, st.Address)

		if whoamiVerify {
			session, err := connect(cmd)
			if err != nil {
				return err
			}
			pterm.Success.Printf("Credentials accepted; connected to database %s\n",
				session.Details.DatabaseName)
		}
		return nil
	},
}

func init() {
	whoamiCmd.Flags().BoolVar(&whoamiVerify, "verify", false, "Open a session to verify the stored credentials")
	rootCmd.AddCommand(whoamiCmd)
}
