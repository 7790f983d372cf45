// Copyright (c) 2025 Dbrelay
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"dbrelay/cli/internal/api"
	"dbrelay/cli/internal/auth"
)

// logoutCmd clears the stored credentials and login state.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear stored credentials and login state",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := auth.NewService(api.DefaultEndpoints())
		if err := svc.Logout(); err != nil {
			return err
		}
		pterm.Success.Println("Logged out")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
