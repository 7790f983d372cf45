// Copyright (c) 2025 Dbrelay
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package conn owns the per-connection registries: one Session, at most one
// active query runner, and the current result store, keyed by connection
// identity. The registry is an explicit object passed by reference to the
// command layer, never module-level state, so creation, rename, and disposal
// stay testable in isolation.
package conn

import (
	"context"
	"sync"

	"dbrelay/cli/internal/api"
	"dbrelay/cli/internal/query"
	"dbrelay/cli/internal/results"
)

// entry is the per-key triple. An entry always has a session; runner and
// store come and go with query lifecycles.
type entry struct {
	session *api.Session
	runner  *query.Runner
	store   *results.Store
}

// Manager is the connection coordinator.
type Manager struct {
	mu    sync.Mutex
	conns map[string]*entry
}

// NewManager creates an empty coordinator.
func NewManager() *Manager {
	return &Manager{conns: make(map[string]*entry)}
}

// Add registers a session under key. A previous entry under the same key is
// retired first: its active runner is cancelled and its results dropped.
func (m *Manager) Add(key string, s *api.Session) {
	m.mu.Lock()
	old := m.conns[key]
	m.conns[key] = &entry{session: s}
	m.mu.Unlock()
	if old != nil && old.runner != nil {
		old.runner.Cancel()
	}
}

// Session returns the session registered under key.
func (m *Manager) Session(key string) (*api.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.conns[key]
	if !ok {
		return nil, false
	}
	return e.session, true
}

// Rename re-keys a connection without disturbing its session, active runner,
// or results. The host may rename connection identifiers mid-session.
func (m *Manager) Rename(oldKey, newKey string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.conns[oldKey]
	if !ok {
		return false
	}
	delete(m.conns, oldKey)
	m.conns[newKey] = e
	return true
}

// Remove retires and drops the connection under key, cancelling any active
// runner.
func (m *Manager) Remove(key string) {
	m.mu.Lock()
	e := m.conns[key]
	delete(m.conns, key)
	m.mu.Unlock()
	if e != nil && e.runner != nil {
		e.runner.Cancel()
	}
}

// Execute runs queryText on the connection under key. A prior active runner
// for the key is retired (cancelled and discarded) before the new one starts;
// an active handle's identity is never mutated in place. On completion the
// key's result store is replaced wholesale; on cancellation or failure the
// prior store is dropped, so stale results are never served.
func (m *Manager) Execute(ctx context.Context, key, queryText string, onMessage query.MessageFunc) (query.Result, *results.Store, error) {
	m.mu.Lock()
	e, ok := m.conns[key]
	if !ok {
		m.mu.Unlock()
		return query.Result{}, nil, ErrUnknownConnection
	}
	prior := e.runner
	r := query.New(e.session)
	e.runner = r
	e.store = nil
	m.mu.Unlock()

	if prior != nil {
		prior.Cancel()
	}

	res := r.Run(ctx, queryText, onMessage)

	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.conns[key]
	if !ok || cur.runner != r {
		// The connection was removed or superseded while running; its
		// results are not installed.
		return res, nil, nil
	}
	cur.runner = nil
	if res.State == query.StateCompleted {
		cur.store = results.New(res.ResultSets)
		return res, cur.store, nil
	}
	return res, nil, res.Err
}

// Cancel cancels the active runner under key, if any. Safe in any state.
func (m *Manager) Cancel(key string) {
	m.mu.Lock()
	var r *query.Runner
	if e, ok := m.conns[key]; ok {
		r = e.runner
	}
	m.mu.Unlock()
	if r != nil {
		r.Cancel()
	}
}

// Store returns the current result store for key. There is none before the
// first completed query, and none again after a cancel or a failure.
func (m *Manager) Store(key string) (*results.Store, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.conns[key]
	if !ok || e.store == nil {
		return nil, false
	}
	return e.store, true
}
