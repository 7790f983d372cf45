// Copyright (c) 2025 Dbrelay
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"atomicgo.dev/cursor"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"dbrelay/cli/internal/api"
	"dbrelay/cli/internal/conn"
	"dbrelay/cli/internal/progress"
	"dbrelay/cli/internal/query"
	"dbrelay/cli/internal/results"
)

var (
	queryFile    string
	queryMaxRows int
)

// queryCmd submits SQL for remote execution, polls until it finishes while
// streaming server messages, and prints the result sets as tables. Ctrl-C
// cancels the running query on the server instead of just killing the CLI.
var queryCmd = &cobra.Command{
	Use:   "query [sql]",
	Short: "Run SQL on the remote server",
	Long: `The query command submits SQL text to the server for execution and polls its
status until it completes. Server messages (print output, errors) stream to
the terminal in order while the query runs. Completed result sets are printed
as tables, capped at --max-rows rows each.

The SQL text comes from the argument, from --file, or from stdin when the
argument is "-".`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		queryText, err := readQueryText(args, queryFile)
		if err != nil {
			return err
		}

		session, err := connect(cmd)
		if err != nil {
			return err
		}

		mgr := conn.NewManager()
		key := session.Address()
		mgr.Add(key, session)
		defer mgr.Remove(key)

		// Ctrl-C cancels the remote execution; the runner completes as a
		// non-error cancellation.
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt)
		defer signal.Stop(sig)
		go func() {
			if _, ok := <-sig; ok {
				mgr.Cancel(key)
			}
		}()

		renderer := progress.NewRenderer()
		cursor.Hide()
		stopSpinner := startInlineSpinner(os.Stderr, "Running query", 120*time.Millisecond)
		res, store, err := mgr.Execute(cmd.Context(), key, queryText, func(msg api.QueryMessage) {
			stopSpinner()
			renderer.Message(msg)
			stopSpinner = startInlineSpinner(os.Stderr, "Running query", 120*time.Millisecond)
		})
		stopSpinner()
		cursor.Show()

		switch res.State {
		case query.StateCompleted:
			if err := printResults(store, queryMaxRows); err != nil {
				return err
			}
			renderer.Summary(store.Summaries(), res.Duration)
			return nil
		case query.StateCancelled:
			renderer.Cancelled()
			return nil
		default:
			return err
		}
	},
}

// printResults renders every stored result set as a table, capped at
// maxRows rows each.
func printResults(store *results.Store, maxRows int) error {
	for _, s := range store.Summaries() {
		count := s.RowCount
		truncated := false
		if maxRows > 0 && count > maxRows {
			count = maxRows
			truncated = true
		}
		rows, err := store.Rows(s.ID, 0, count)
		if err != nil {
			return err
		}

		data := make(pterm.TableData, 0, len(rows)+1)
		header := make([]string, len(s.Columns))
		for i, col := range s.Columns {
			header[i] = col.Name
		}
		data = append(data, header)
		for _, row := range rows {
			line := make([]string, len(row))
			for i, cell := range row {
				line[i] = cell.Display
			}
			data = append(data, line)
		}
		if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
			return err
		}
		if truncated {
			pterm.Printf("... %d more rows not shown\n", s.RowCount-count)
		}
	}
	return nil
}

// readQueryText resolves the SQL text from the argument, a file, or stdin.
func readQueryText(args []string, file string) (string, error) {
	if file != "" {
		b, err := os.ReadFile(file)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}
	if len(args) == 1 && args[0] == "-" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	return "", fmt.Errorf("no SQL given: pass it as an argument, via --file, or on stdin with \"-\"")
}

func init() {
	queryCmd.Flags().StringVarP(&queryFile, "file", "f", "", "Read the SQL text from a file")
	queryCmd.Flags().IntVar(&queryMaxRows, "max-rows", 50, "Maximum rows to print per result set (0 = all)")
	rootCmd.AddCommand(queryCmd)
}
