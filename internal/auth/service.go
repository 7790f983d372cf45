// Copyright (c) 2025 Dbrelay
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package auth ties session establishment to local credential storage. The
// account password lives in the OS keychain; the non-secret connection facts
// (server address, username, logged-in flag) live in a state file under the
// XDG state directory. A CLI invocation opens one logical connection: it
// loads the stored credentials and authenticates a fresh session.
package auth

import (
	"context"
	"os"

	"dbrelay/cli/internal/api"
	"dbrelay/cli/internal/errors"
	"dbrelay/cli/internal/keychain"
)

// Service centralizes authentication-related operations against the remote
// server and local secure storage/state.
type Service struct {
	endpoints api.Endpoints
}

// NewService constructs an auth Service over the given route layout.
func NewService(endpoints api.Endpoints) *Service {
	return &Service{endpoints: endpoints}
}

// Login authenticates with explicit credentials and, on success, persists
// them: address and username in the state file, password in the keychain.
// No partial state is written on failure.
func (s *Service) Login(ctx context.Context, address, username, password string) (*api.Session, error) {
	session, err := api.Login(ctx, s.endpoints, address, username, password)
	if err != nil {
		return nil, err
	}

	km, err := keychain.GetManager()
	if err != nil {
		return nil, err
	}
	if err := km.SavePassword(password); err != nil {
		return nil, err
	}
	if err := Save(State{LoggedIn: true, Address: session.Address(), Account: username}); err != nil {
		return nil, err
	}
	return session, nil
}

// Connect opens a session using the stored credentials.
func (s *Service) Connect(ctx context.Context) (*api.Session, error) {
	st, err := Load()
	if err != nil {
		return nil, err
	}
	if !st.LoggedIn || st.Address == "" {
		return nil, errors.New(errors.AuthFailed, "not logged in; run: dbrelay login")
	}
	password := os.Getenv("DBRELAY_PASSWORD")
	if password == "" {
		km, err := keychain.GetManager()
		if err != nil {
			return nil, err
		}
		password, err = km.LoadPassword()
		if err != nil {
			return nil, errors.Wrap(errors.AuthFailed, "stored password unavailable; run: dbrelay login", err)
		}
	}
	return api.Login(ctx, s.endpoints, st.Address, st.Account, password)
}

// Logout clears local credentials and state. There is no remote call: the
// session credential simply expires server-side.
func (s *Service) Logout() error {
	if km, err := keychain.GetManager(); err == nil {
		_ = km.Clear()
	}
	return Clear()
}

// Account reports the stored account and whether a login exists.
func (s *Service) Account() (State, bool) {
	st, err := Load()
	if err != nil || !st.LoggedIn {
		return State{}, false
	}
	return st, true
}
