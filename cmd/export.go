// Copyright (c) 2025 Dbrelay
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"atomicgo.dev/cursor"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"dbrelay/cli/internal/api"
	"dbrelay/cli/internal/config"
	"dbrelay/cli/internal/conn"
	"dbrelay/cli/internal/errors"
	"dbrelay/cli/internal/export"
	"dbrelay/cli/internal/progress"
	"dbrelay/cli/internal/query"
)

var (
	exportFile      string
	exportFormat    string
	exportOutput    string
	exportSet       int
	exportDelimiter string
	exportLineSep   string
	exportQuote     string
	exportHeader    bool
	exportEncoding  string
)

// exportCmd runs a query and writes one of its result sets to a file.
var exportCmd = &cobra.Command{
	Use:   "export [sql]",
	Short: "Run SQL and export a result set to csv, json, or xlsx",
	Long: `The export command executes SQL remotely like query does, then serializes one
result set (--result-set, default the first) to --output in the requested
--format. CSV output streams row by row and supports delimiter, line
separator, quote character, header, and encoding options; json and xlsx
write the whole document at once.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		queryText, err := readQueryText(args, exportFile)
		if err != nil {
			return err
		}
		if exportOutput == "" {
			return fmt.Errorf("--output is required")
		}

		cfg, err := config.Load()
		if err != nil {
			cfg = config.Defaults()
		}
		opts := export.Options{
			Path:          exportOutput,
			Delimiter:     firstNonEmpty(exportDelimiter, cfg.Export.Delimiter),
			LineSeparator: firstNonEmpty(exportLineSep, cfg.Export.LineSeparator),
			Quote:         firstNonEmpty(exportQuote, cfg.Export.Quote),
			Header:        exportHeader || cfg.Export.Header,
			Encoding:      firstNonEmpty(exportEncoding, cfg.Export.Encoding),
		}

		// Resolve the serializer before doing any remote work; an unknown
		// format tag is reported as a message, not a failure.
		ser, err := export.New(exportFormat, opts)
		if err != nil {
			if errors.Is(err, errors.UnsupportedFormat) {
				pterm.Warning.Printf("Format %q is not supported; use csv, json, or xlsx\n", exportFormat)
				return nil
			}
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
		case query.StateCancelled:
			renderer.Cancelled()
			return nil
		case query.StateCompleted:
		default:
			return err
		}

		set, err := store.ResultSet(exportSet)
		if err != nil {
			return err
		}

		if err := ser.Open(set.Columns); err != nil {
			return err
		}
		for _, row := range set.Rows {
			if err := ser.WriteRow(set.Columns, row); err != nil {
				_ = ser.Close()
				return err
			}
		}
		if err := ser.Close(); err != nil {
			return err
		}

		pterm.Success.Printf("Exported %d rows to %s\n", len(set.Rows), exportOutput)
		return nil
	},
}

// firstNonEmpty returns the first non-empty string.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func init() {
	exportCmd.Flags().StringVarP(&exportFile, "file", "f", "", "Read the SQL text from a file")
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "Export format: csv, json, or xlsx")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Destination file path")
	exportCmd.Flags().IntVar(&exportSet, "result-set", 0, "Zero-based index of the result set to export")
	exportCmd.Flags().StringVar(&exportDelimiter, "delimiter", "", "CSV field delimiter (default \",\")")
	exportCmd.Flags().StringVar(&exportLineSep, "line-separator", "", "CSV line separator (default platform newline)")
	exportCmd.Flags().StringVar(&exportQuote, "quote", "", "CSV quote character (default '\"')")
	exportCmd.Flags().BoolVar(&exportHeader, "header", false, "Write a header row of column names")
	exportCmd.Flags().StringVar(&exportEncoding, "encoding", "", "CSV encoding: utf-8, ascii, or utf-16le")
	rootCmd.AddCommand(exportCmd)
}
