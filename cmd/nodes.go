// Copyright (c) 2025 Dbrelay
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// nodesCmd lists the server's object tree, one level at a time.
var nodesCmd = &cobra.Command{
	Use:   "nodes [node-id]",
	Short: "List object-tree nodes (tables, views, ...)",
	Long: `The nodes command lists the children of an object-tree node on the server.
Without an argument it lists the root nodes; pass a node id to descend.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := connect(cmd)
		if err != nil {
			return err
		}

		nodeID := ""
		if len(args) == 1 {
			nodeID = args[0]
		}
		nodes, err := session.ExplorerNodes(cmd.Context(), nodeID)
		if err != nil {
			return err
		}
		if len(nodes) == 0 {
			pterm.Println("no child nodes")
			return nil
		}

		data := pterm.TableData{{"ID", "TYPE", "NAME"}}
		for _, n := range nodes {
			data = append(data, []string{n.ID, n.Type, n.Name})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	},
}

func init() {
	rootCmd.AddCommand(nodesCmd)
}
