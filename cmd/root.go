// Copyright (c) 2025 Dbrelay
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for the dbrelay CLI.
// It implements subcommands for authentication, remote query execution,
// result export, and object-tree browsing using the Cobra CLI framework.
// The package handles command parsing and execution and provides terminal
// feedback with spinners and tables while queries run remotely.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"dbrelay/cli/internal/config"
	"dbrelay/cli/internal/log"
)

var (
	showVersion bool
	logLevel    string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:           "dbrelay",
	Short:         "dbrelay runs SQL against cloud-hosted databases over their HTTP relay API",
	Long: `dbrelay is a command-line client for cloud-hosted application databases whose
engines are not directly reachable over the network. It authenticates against
the hosting platform's HTTP API, submits queries for remote execution, polls
until they finish, and exports result sets to CSV, JSON, or XLSX.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			cfg = config.Defaults()
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		log.Configure(cfg.LogLevel)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Printf("dbrelay %s\n", Version)
			return nil
		}
		return cmd.Help()
	},
}

// Execute runs the CLI application.
// It executes the root command and handles any errors that occur during execution.
func Execute() {
	defer func() { _ = log.Sync() }()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show CLI version information")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the configured log level (debug, info, warn, error)")
}
