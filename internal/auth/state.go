// Copyright (c) 2025 Dbrelay
// Licensed under the MIT License. See LICENSE file in the project root for details.

// This file implements persistence for login state. Only non-secret facts
// are stored here; the password stays in the OS keychain.
package auth

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"dbrelay/cli/internal/xdg"
)

// State represents the persisted login state for the current user.
type State struct {
	LoggedIn bool   `json:"logged_in"`
	Address  string `json:"address"`
	Account  string `json:"account"`
}

// path returns the path to the state file.
func path() (string, error) {
	dir, err := xdg.StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "auth.json"), nil
}

// Load reads the login state. Missing state yields the zero value.
func Load() (State, error) {
	var s State
	p, err := path()
	if err != nil {
		return s, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return s, err
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return s, err
	}
	return s, nil
}

// Save writes the login state with 0600 permissions.
func Save(s State) error {
	p, err := path()
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}

// Clear removes the login state file.
func Clear() error {
	p, err := path()
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
