// Copyright (c) 2025 Dbrelay
// Licensed under the MIT License. See LICENSE file in the project root for details.

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"dbrelay/cli/internal/errors"
	"dbrelay/cli/internal/log"

	"go.uber.org/zap"
)

// Session is an authenticated handle to one remote server. It is created by
// a successful Login and is immutable for its lifetime: the base address and
// session credential never change, and the credential is never re-derived.
// One Session serves one logical connection.
type Session struct {
	baseURL    string
	endpoints  Endpoints
	credential string
	client     *http.Client

	// Details are the static server facts negotiated at login.
	Details ServerDetails
}

// Login authenticates against the server at address and negotiates connection
// details. It fails with AuthFailed on rejected credentials, ProtocolViolation
// when the response carries no session credential, NetworkFailed on transport
// failure, and NegotiationFailed when login succeeds but connection details
// cannot be established. No Session is ever returned on any failure path.
func Login(ctx context.Context, endpoints Endpoints, address, username, password string) (*Session, error) {
	base := NormalizeAddress(address)
	client := newHTTPClient()

	payload, err := json.Marshal(map[string]string{"username": username, "password": password})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+endpoints.Login, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrap(errors.NetworkFailed, "could not reach server", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, errors.New(errors.AuthFailed, "invalid username or password")
	case resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent:
		return nil, errors.New(errors.AuthFailed, "login failed: "+serverError(resp.StatusCode, body))
	}

	credential := sessionCookie(resp)
	if credential == "" {
		return nil, errors.New(errors.ProtocolViolation, "login response carried no session credential")
	}

	s := &Session{
		baseURL:    base,
		endpoints:  endpoints,
		credential: credential,
		client:     client,
	}

	// Negotiate server details right away; an authenticated session that
	// cannot report what it is connected to is never handed to the caller.
	details, err := s.connect(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.NegotiationFailed, "could not establish connection details", err)
	}
	s.Details = details
	log.Info("session established",
		zap.String("server", base),
		zap.String("database", details.DatabaseName))
	return s, nil
}

// connect negotiates server and database facts for a fresh session.
func (s *Session) connect(ctx context.Context) (ServerDetails, error) {
	var details ServerDetails
	status, body, err := s.post(ctx, "/Connect", map[string]any{})
	if err != nil {
		return details, err
	}
	if !ok(status) {
		return details, errors.New(errors.NetworkFailed, serverError(status, body))
	}
	if err := decodeNormalized(body, &details); err != nil {
		return details, errors.Wrap(errors.ProtocolViolation, "malformed connect response", err)
	}
	return details, nil
}

// ExecuteQuery submits a query for remote execution. The returned progress
// carries the server-assigned identifier used for status polls and
// cancellation. A non-success response surfaces the server's structured
// error message when present.
func (s *Session) ExecuteQuery(ctx context.Context, query string) (*QueryProgress, error) {
	status, body, err := s.post(ctx, "/ExecuteQuery", map[string]string{"query": query})
	if err != nil {
		return nil, err
	}
	if !ok(status) {
		return nil, errors.New(errors.QueryFailed, serverError(status, body))
	}
	var progress QueryProgress
	if err := decodeNormalized(body, &progress); err != nil {
		return nil, errors.Wrap(errors.ProtocolViolation, "malformed execute response", err)
	}
	return &progress, nil
}

// QueryStatus polls the execution state of the identified query.
func (s *Session) QueryStatus(ctx context.Context, identifier string) (*QueryProgress, error) {
	status, body, err := doJSON(ctx, s.client, http.MethodGet, s.sqlURL("/Status/"+identifier), s.credential, nil)
	if err != nil {
		return nil, err
	}
	if !ok(status) {
		return nil, errors.New(errors.QueryFailed, serverError(status, body))
	}
	var progress QueryProgress
	if err := decodeNormalized(body, &progress); err != nil {
		return nil, errors.Wrap(errors.ProtocolViolation, "malformed status response", err)
	}
	return &progress, nil
}

// CancelQuery asks the server to cancel the identified query. The call is
// best effort: the response is ignored and failure is not surfaced.
func (s *Session) CancelQuery(ctx context.Context, identifier string) {
	_, _, err := doJSON(ctx, s.client, http.MethodDelete, s.sqlURL("/Cancel/"+identifier), s.credential, nil)
	if err != nil {
		log.Debug("cancel request failed", zap.String("identifier", identifier), zap.Error(err))
	}
}

// post issues an authenticated POST against a SQL route.
func (s *Session) post(ctx context.Context, route string, body any) (int, []byte, error) {
	return doJSON(ctx, s.client, http.MethodPost, s.sqlURL(route), s.credential, body)
}

// sqlURL builds the absolute URL for a SQL route.
func (s *Session) sqlURL(route string) string {
	return s.baseURL + s.endpoints.SQLBase + route
}

// Address returns the normalized server base address.
func (s *Session) Address() string { return s.baseURL }

// sessionCookie captures the session credential from the login response
// headers as a "name=value" cookie pair.
func sessionCookie(resp *http.Response) string {
	for _, c := range resp.Cookies() {
		if c.Name != "" && c.Value != "" {
			return c.Name + "=" + c.Value
		}
	}
	return ""
}
