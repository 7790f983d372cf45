// Copyright (c) 2025 Dbrelay
// Licensed under the MIT License. See LICENSE file in the project root for details.

package query

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
	"dbrelay/cli/internal/errors"
)

// relayMock mocks the remote execution endpoints. Each call to the status
// route pops the next progress payload from statuses; the last one repeats.
type relayMock struct {
	execute  map[string]any
	statuses []map[string]any

	executeCalls int32
	statusCalls  int32
	cancelCalls  int32
}

func (m *relayMock) start(t *testing.T) *api.Session {
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
	mux.HandleFunc(eps.SQLBase+"/ExecuteQuery", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&m.executeCalls, 1)
		_ = json.NewEncoder(w).Encode(m.execute)
	})
	mux.HandleFunc(eps.SQLBase+"/Status/", func(w http.ResponseWriter, r *http.Request) {
		n := int(atomic.AddInt32(&m.statusCalls, 1)) - 1
		if n >= len(m.statuses) {
			n = len(m.statuses) - 1
		}
		_ = json.NewEncoder(w).Encode(m.statuses[n])
	})
	mux.HandleFunc(eps.SQLBase+"/Cancel/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&m.cancelCalls, 1)
		w.WriteHeader(http.StatusNoContent)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	session, err := api.Login(context.Background(), eps, srv.URL, "admin", "pw")
	require.NoError(t, err)
	return session
}

func TestRunCompletesAndDeliversMessagesOnce(t *testing.T) {
	mock := &relayMock{
		execute: map[string]any{
			"Identifier": "q-1",
			"IsComplete": false,
			"Messages":   []map[string]any{{"Text": "parsing query"}},
		},
		statuses: []map[string]any{
			{
				"Identifier": "q-1",
				"IsComplete": false,
				"Messages":   []map[string]any{{"Text": "parsing query"}},
			},
			{
				"Identifier":     "q-1",
				"IsComplete":     true,
				"DurationMillis": 40,
				"Messages":       []map[string]any{{"Text": "parsing query"}},
				"ResultSets": []map[string]any{{
					"Columns": []map[string]any{{"Name": "col0", "Type": 2}},
					"Rows":    [][]any{{1}},
				}},
			},
		},
	}
	session := mock.start(t)

	var messages []string
	r := New(session)
	res := r.Run(context.Background(), "SELECT 1", func(msg api.QueryMessage) {
		messages = append(messages, msg.Text)
	})

	assert.Equal(t, StateCompleted, res.State)
	require.NoError(t, res.Err)
	assert.Equal(t, 40*time.Millisecond, res.Duration)
	// The message is delivered exactly once even though every progress
	// payload repeats the accumulated list.
	assert.Equal(t, []string{"parsing query"}, messages)

	require.Len(t, res.ResultSets, 1)
	set := res.ResultSets[0]
	require.Len(t, set.Columns, 1)
	assert.Equal(t, api.TypeNumber, set.Columns[0].Type)
	require.Len(t, set.Rows, 1)
	assert.Equal(t, float64(1), set.Rows[0][0])

	// Completion stops polling.
	polled := atomic.LoadInt32(&mock.statusCalls)
	time.Sleep(2 * pollDelay)
	assert.Equal(t, polled, atomic.LoadInt32(&mock.statusCalls))
	assert.Equal(t, "q-1", r.Identifier())
	assert.Equal(t, StateCompleted, r.State())
}

func TestRunImmediateCompletion(t *testing.T) {
	mock := &relayMock{
		execute: map[string]any{
			"Identifier": "q-2",
			"IsComplete": true,
			"ResultSets": []map[string]any{},
		},
	}
	session := mock.start(t)

	res := New(session).Run(context.Background(), "SET NOCOUNT ON", func(api.QueryMessage) {})
	assert.Equal(t, StateCompleted, res.State)
	assert.Empty(t, res.ResultSets)
	assert.Zero(t, atomic.LoadInt32(&mock.statusCalls))
}

func TestCancelDuringPollingSuppressesCompletion(t *testing.T) {
	mock := &relayMock{
		execute: map[string]any{
			"Identifier": "q-3",
			"IsComplete": false,
			"Messages":   []map[string]any{{"Text": "running"}},
		},
		statuses: []map[string]any{
			{"Identifier": "q-3", "IsComplete": true, "Messages": []map[string]any{{"Text": "running"}}},
		},
	}
	session := mock.start(t)

	r := New(session)
	var delivered int32
	res := r.Run(context.Background(), "WAITFOR DELAY '00:01'", func(api.QueryMessage) {
		atomic.AddInt32(&delivered, 1)
		r.Cancel()
	})

	assert.Equal(t, StateCancelled, res.State)
	assert.NoError(t, res.Err)
	assert.Empty(t, res.ResultSets)
	assert.Equal(t, int32(1), atomic.LoadInt32(&delivered))

	// The server-side cancel is fire and forget.
	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&mock.cancelCalls) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestCancelBeforeSubmitSkipsEverything(t *testing.T) {
	mock := &relayMock{execute: map[string]any{"Identifier": "q-4", "IsComplete": true}}
	session := mock.start(t)

	r := New(session)
	r.Cancel()
	r.Cancel() // idempotent

	res := r.Run(context.Background(), "SELECT 1", func(api.QueryMessage) {
		t.Fatal("no messages after cancel")
	})
	assert.Equal(t, StateCancelled, res.State)
	assert.Zero(t, atomic.LoadInt32(&mock.executeCalls))
	assert.Zero(t, atomic.LoadInt32(&mock.cancelCalls))
}

func TestContextCancellationEndsRun(t *testing.T) {
	mock := &relayMock{
		execute:  map[string]any{"Identifier": "q-5", "IsComplete": false},
		statuses: []map[string]any{{"Identifier": "q-5", "IsComplete": false}},
	}
	session := mock.start(t)

	ctx, cancel := context.WithCancel(context.Background())
	r := New(session)
	done := make(chan Result, 1)
	go func() { done <- r.Run(ctx, "SELECT 1", func(api.QueryMessage) {}) }()

	time.Sleep(pollDelay / 4)
	cancel()

	select {
	case res := <-done:
		assert.Equal(t, StateCancelled, res.State)
	case <-time.After(3 * time.Second):
		t.Fatal("run did not stop after context cancellation")
	}
}

func TestPollFailureIsTerminal(t *testing.T) {
	eps := api.DefaultEndpoints()
	mux := http.NewServeMux()
	mux.HandleFunc(eps.Login, func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: ".ROCK", Value: "t"})
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc(eps.SQLBase+"/Connect", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"DatabaseName": "OrgDb"})
	})
	mux.HandleFunc(eps.SQLBase+"/ExecuteQuery", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"Identifier": "q-6", "IsComplete": false})
	})
	mux.HandleFunc(eps.SQLBase+"/Status/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	session, err := api.Login(context.Background(), eps, srv.URL, "admin", "pw")
	require.NoError(t, err)

	res := New(session).Run(context.Background(), "SELECT 1", func(api.QueryMessage) {})
	assert.Equal(t, StateFailed, res.State)
	require.Error(t, res.Err)
	assert.True(t, errors.Is(res.Err, errors.QueryFailed))
}
