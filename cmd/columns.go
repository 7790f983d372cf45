// Copyright (c) 2025 Dbrelay
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// columnsCmd lists the column names of a table.
var columnsCmd = &cobra.Command{
	Use:   "columns <table>",
	Short: "List the column names of a table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := connect(cmd)
		if err != nil {
			return err
		}
		cols, err := session.ColumnNames(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		for _, c := range cols {
			pterm.Println(c)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(columnsCmd)
}
