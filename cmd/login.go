// Copyright (c) 2025 Dbrelay
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"dbrelay/cli/internal/api"
	"dbrelay/cli/internal/auth"
	"dbrelay/cli/internal/errors"
	"dbrelay/cli/internal/httperrors"
	"dbrelay/cli/internal/terminal"
)

var (
	loginAddress  string
	loginUsername string
)

// loginCmd authenticates against the configured server and stores the
// credentials for later commands: server address and username in the local
// state file, password in the OS keychain. The session credential itself is
// never persisted; each command opens a fresh session.
var loginCmd = &cobra.Command{
	Use:     "login",
	Aliases: []string{"auth"},
	Short:   "Authenticate against a server and store the credentials",
	Long: `The login command verifies your credentials against the server's login endpoint
and negotiates connection details. On success the server address and username
are saved locally and the password is stored in the OS keychain, so subsequent
commands can open sessions without prompting.

If the address has no scheme, https is assumed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if loginAddress == "" || loginUsername == "" {
			return fmt.Errorf("both --address and --username are required")
		}

		password := os.Getenv("DBRELAY_PASSWORD")
		if password == "" {
			var err error
			password, err = promptPassword()
			if err != nil {
				return err
			}
		}
		if strings.TrimSpace(password) == "" {
			return fmt.Errorf("empty password")
		}

		svc := auth.NewService(api.DefaultEndpoints())
		session, err := svc.Login(ctx, loginAddress, loginUsername, password)
		if err != nil {
			switch {
			case errors.Is(err, errors.AuthFailed):
				pterm.Error.Println("Invalid username or password")
				return err
			case errors.Is(err, errors.NetworkFailed):
				return httperrors.FormatNetworkError(err, "logging in")
			default:
				return err
			}
		}

		pterm.Success.Printf("Logged in to %s as %s\n", session.Address(), loginUsername)
		pterm.Printf("  database  %s\n", session.Details.DatabaseName)
		pterm.Printf("  platform  %s\n", session.Details.PlatformVersion)
		pterm.Printf("  engine    %s (%s)\n", session.Details.EngineVersion, session.Details.EngineEdition)
		return nil
	},
}

// promptPassword reads the password from the terminal without echo and
// clears the prompt line afterwards.
func promptPassword() (string, error) {
	prompt := "Password: "
	fmt.Print(prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	terminal.ClearPreviousLines(len(prompt))
	return string(b), nil
}

func init() {
	loginCmd.Flags().StringVar(&loginAddress, "address", "", "Server address, e.g. myorg.example.com")
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Account username")
	rootCmd.AddCommand(loginCmd)
}
