// Copyright (c) 2025 Dbrelay
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"dbrelay/cli/internal/api"
	"dbrelay/cli/internal/auth"
	"dbrelay/cli/internal/errors"
	"dbrelay/cli/internal/httperrors"

	"github.com/spf13/cobra"
)

// connect opens an authenticated session for a command using the stored
// credentials. Transport failures get the user-friendly presentation;
// everything else propagates as-is.
func connect(cmd *cobra.Command) (*api.Session, error) {
	svc := auth.NewService(api.DefaultEndpoints())
	session, err := svc.Connect(cmd.Context())
	if err != nil {
		if errors.Is(err, errors.NetworkFailed) {
			return nil, httperrors.FormatNetworkError(err, "connecting to the server")
		}
		return nil, err
	}
	return session, nil
}
