// Copyright (c) 2025 Dbrelay
// Licensed under the MIT License. See LICENSE file in the project root for details.

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbrelay/cli/internal/errors"
)

// testServer is a minimal relay mock. Handlers may be nil, in which case a
// sensible default applies.
type testServer struct {
	login   http.HandlerFunc
	connect http.HandlerFunc
	mux     *http.ServeMux
}

func newTestServer(t *testing.T, ts *testServer) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	eps := DefaultEndpoints()
	if ts.login == nil {
		ts.login = func(w http.ResponseWriter, r *http.Request) {
			http.SetCookie(w, &http.Cookie{Name: ".ROCK", Value: "token-1"})
			w.WriteHeader(http.StatusNoContent)
		}
	}
	if ts.connect == nil {
		ts.connect = func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]string{
				"DatabaseName": "OrgDb",
				"OsVersion":    "Windows Server 2022",
				"RockVersion":  "1.16.0",
				"SqlEdition":   "Standard Edition",
				"SqlVersion":   "15.0.4300",
			})
		}
	}
	mux.HandleFunc(eps.Login, ts.login)
	mux.HandleFunc(eps.SQLBase+"/Connect", ts.connect)
	ts.mux = mux
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestLoginSuccessNegotiatesDetails(t *testing.T) {
	var connectCookie string
	ts := &testServer{
		connect: func(w http.ResponseWriter, r *http.Request) {
			connectCookie = r.Header.Get("Cookie")
			_ = json.NewEncoder(w).Encode(map[string]string{
				"DatabaseName": "OrgDb",
				"RockVersion":  "1.16.0",
			})
		},
	}
	srv := newTestServer(t, ts)

	session, err := Login(context.Background(), DefaultEndpoints(), srv.URL, "admin", "pw")
	require.NoError(t, err)
	assert.Equal(t, "OrgDb", session.Details.DatabaseName)
	assert.Equal(t, "1.16.0", session.Details.PlatformVersion)
	// The session credential from login is attached to the negotiate call.
	assert.Equal(t, ".ROCK=token-1", connectCookie)
}

func TestLoginRejectedCredentials(t *testing.T) {
	srv := newTestServer(t, &testServer{
		login: func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		},
	})

	session, err := Login(context.Background(), DefaultEndpoints(), srv.URL, "admin", "wrong")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.AuthFailed))
	assert.Contains(t, err.Error(), "invalid username or password")
	assert.Nil(t, session)
}

func TestLoginWithoutCredentialIsProtocolViolation(t *testing.T) {
	srv := newTestServer(t, &testServer{
		login: func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent) // no Set-Cookie
		},
	})

	session, err := Login(context.Background(), DefaultEndpoints(), srv.URL, "admin", "pw")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ProtocolViolation))
	assert.Nil(t, session)
}

func TestLoginNegotiationFailureDiscardsSession(t *testing.T) {
	srv := newTestServer(t, &testServer{
		connect: func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]string{"ExceptionMessage": "db offline"})
		},
	})

	session, err := Login(context.Background(), DefaultEndpoints(), srv.URL, "admin", "pw")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.NegotiationFailed))
	assert.Nil(t, session)
}

func TestLoginUnreachableServer(t *testing.T) {
	session, err := Login(context.Background(), DefaultEndpoints(), "http://127.0.0.1:1", "admin", "pw")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.NetworkFailed))
	assert.Nil(t, session)
}

func TestExecuteQuerySurfacesServerError(t *testing.T) {
	ts := &testServer{}
	srv := newTestServer(t, ts)
	ts.mux.HandleFunc(DefaultEndpoints().SQLBase+"/ExecuteQuery", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"ExceptionMessage": "Incorrect syntax near 'SELEC'"})
	})

	session, err := Login(context.Background(), DefaultEndpoints(), srv.URL, "admin", "pw")
	require.NoError(t, err)

	_, err = session.ExecuteQuery(context.Background(), "SELEC 1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.QueryFailed))
	assert.Contains(t, err.Error(), "Incorrect syntax")
}

func TestExplorerNodes(t *testing.T) {
	ts := &testServer{}
	srv := newTestServer(t, ts)
	ts.mux.HandleFunc(DefaultEndpoints().SQLBase+"/ObjectExplorerNodes", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		assert.Equal(t, "tables", req["nodeId"])
		_ = json.NewEncoder(w).Encode(map[string]any{
			"Nodes": []map[string]string{
				{"Id": "t1", "Type": "table", "Name": "Person"},
			},
		})
	})

	session, err := Login(context.Background(), DefaultEndpoints(), srv.URL, "admin", "pw")
	require.NoError(t, err)

	nodes, err := session.ExplorerNodes(context.Background(), "tables")
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "Person", nodes[0].Name)
	assert.Equal(t, "table", nodes[0].Type)
}

func TestColumnNames(t *testing.T) {
	ts := &testServer{}
	srv := newTestServer(t, ts)
	ts.mux.HandleFunc(DefaultEndpoints().SQLBase+"/ColumnNames", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"Columns": []string{"Id", "FirstName"}})
	})

	session, err := Login(context.Background(), DefaultEndpoints(), srv.URL, "admin", "pw")
	require.NoError(t, err)

	cols, err := session.ColumnNames(context.Background(), "Person")
	require.NoError(t, err)
	assert.Equal(t, []string{"Id", "FirstName"}, cols)
}
