// Copyright (c) 2025 Dbrelay
// Licensed under the MIT License. See LICENSE file in the project root for details.

package conn

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbrelay/cli/internal/api"
	"dbrelay/cli/internal/query"
)

// newSession logs into a mock relay whose executions complete immediately
// with one single-cell result set. complete may be swapped to false to keep
// executions pending forever.
func newSession(t *testing.T, complete *atomic.Bool) *api.Session {
	t.Helper()
	eps := api.DefaultEndpoints()
	mux := http.NewServeMux()
	mux.HandleFunc(eps.Login, func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: ".ROCK", Value: "t"})
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc(eps.SQLBase+"/Connect", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"DatabaseName": "OrgDb"})
	})
	progress := func(w http.ResponseWriter) {
		payload := map[string]any{"Identifier": "q-1", "IsComplete": complete.Load()}
		if complete.Load() {
			payload["ResultSets"] = []map[string]any{{
				"Columns": []map[string]any{{"Name": "n", "Type": 2}},
				"Rows":    [][]any{{float64(1)}},
			}}
		}
		_ = json.NewEncoder(w).Encode(payload)
	}
	mux.HandleFunc(eps.SQLBase+"/ExecuteQuery", func(w http.ResponseWriter, r *http.Request) { progress(w) })
	mux.HandleFunc(eps.SQLBase+"/Status/", func(w http.ResponseWriter, r *http.Request) { progress(w) })
	mux.HandleFunc(eps.SQLBase+"/Cancel/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	session, err := api.Login(context.Background(), eps, srv.URL, "admin", "pw")
	require.NoError(t, err)
	return session
}

func completing(t *testing.T) *api.Session {
	var done atomic.Bool
	done.Store(true)
	return newSession(t, &done)
}

func TestAddAndSession(t *testing.T) {
	m := NewManager()
	s := completing(t)
	m.Add("conn-1", s)

	got, ok := m.Session("conn-1")
	require.True(t, ok)
	assert.Same(t, s, got)

	_, ok = m.Session("conn-2")
	assert.False(t, ok)
}

func TestExecuteInstallsStore(t *testing.T) {
	m := NewManager()
	m.Add("conn-1", completing(t))

	res, store, err := m.Execute(context.Background(), "conn-1", "SELECT 1", func(api.QueryMessage) {})
	require.NoError(t, err)
	assert.Equal(t, query.StateCompleted, res.State)
	require.NotNil(t, store)

	held, ok := m.Store("conn-1")
	require.True(t, ok)
	assert.Same(t, store, held)
	assert.Equal(t, 1, held.SetCount())
}

func TestExecuteUnknownConnection(t *testing.T) {
	m := NewManager()
	_, _, err := m.Execute(context.Background(), "missing", "SELECT 1", func(api.QueryMessage) {})
	assert.ErrorIs(t, err, ErrUnknownConnection)
}

func TestCancelledExecutionLeavesNoStore(t *testing.T) {
	var done atomic.Bool // stays false: execution never completes
	m := NewManager()
	m.Add("conn-1", newSession(t, &done))

	// Seed a store from a completed run, then verify a cancelled run drops it.
	done.Store(true)
	_, _, err := m.Execute(context.Background(), "conn-1", "SELECT 1", func(api.QueryMessage) {})
	require.NoError(t, err)
	_, ok := m.Store("conn-1")
	require.True(t, ok)

	done.Store(false)
	resCh := make(chan query.Result, 1)
	go func() {
		res, _, _ := m.Execute(context.Background(), "conn-1", "SELECT 1", func(api.QueryMessage) {})
		resCh <- res
	}()
	time.Sleep(50 * time.Millisecond)
	m.Cancel("conn-1")

	var res query.Result
	select {
	case res = <-resCh:
	case <-time.After(5 * time.Second):
		t.Fatal("execution did not stop after cancel")
	}
	assert.Equal(t, query.StateCancelled, res.State)
	_, ok = m.Store("conn-1")
	assert.False(t, ok, "cancelled execution must not leave results behind")
}

func TestRenamePreservesEntry(t *testing.T) {
	m := NewManager()
	s := completing(t)
	m.Add("old", s)

	_, _, err := m.Execute(context.Background(), "old", "SELECT 1", func(api.QueryMessage) {})
	require.NoError(t, err)

	require.True(t, m.Rename("old", "new"))

	got, ok := m.Session("new")
	require.True(t, ok)
	assert.Same(t, s, got)

	_, ok = m.Session("old")
	assert.False(t, ok)

	// Results survive the rename.
	store, ok := m.Store("new")
	require.True(t, ok)
	assert.Equal(t, 1, store.SetCount())

	assert.False(t, m.Rename("old", "other"))
}

func TestRemoveDropsEntry(t *testing.T) {
	m := NewManager()
	m.Add("conn-1", completing(t))
	m.Remove("conn-1")

	_, ok := m.Session("conn-1")
	assert.False(t, ok)
	_, ok = m.Store("conn-1")
	assert.False(t, ok)

	// Removing an unknown key is a no-op.
	m.Remove("conn-1")
}

func TestAddReplacesExistingEntry(t *testing.T) {
	m := NewManager()
	first := completing(t)
	m.Add("conn-1", first)
	_, _, err := m.Execute(context.Background(), "conn-1", "SELECT 1", func(api.QueryMessage) {})
	require.NoError(t, err)

	second := completing(t)
	m.Add("conn-1", second)

	got, ok := m.Session("conn-1")
	require.True(t, ok)
	assert.Same(t, second, got)

	// The replaced entry's results went with it.
	_, ok = m.Store("conn-1")
	assert.False(t, ok)
}
