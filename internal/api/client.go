// Copyright (c) 2025 Dbrelay
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package api implements the HTTP client for the remote SQL relay service.
// It owns session establishment (login plus connection negotiation) and the
// authenticated calls for query submission, status polling, cancellation, and
// object-tree browsing. All requests and responses are JSON; the session
// credential issued at login is attached to every subsequent call.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"dbrelay/cli/internal/errors"
	"dbrelay/cli/internal/log"

	"go.uber.org/zap"
)

// requestTimeout bounds pathological hangs, not normal long-running queries.
// Long executions are handled by the status-poll protocol, where each
// individual request is short; only a stuck request should ever hit this.
const requestTimeout = time.Hour

// Endpoints describes the remote route layout. The login route is fixed by
// the hosting platform; the SQL routes hang off a deployment-specific
// plugin segment.
type Endpoints struct {
	Login   string
	SQLBase string
}

// DefaultEndpoints returns the route layout of a standard deployment.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Login:   "/api/Auth/Login",
		SQLBase: "/api/Tooling/Sql",
	}
}

// NormalizeAddress ensures the server address carries a transport scheme.
// An address that already specifies one is used verbatim; otherwise a secure
// scheme is assumed and prefixed. Trailing slashes are trimmed.
func NormalizeAddress(address string) string {
	a := strings.TrimSpace(address)
	if !strings.Contains(a, "://") {
		a = "https://" + a
	}
	return strings.TrimRight(a, "/")
}

// newHTTPClient builds the underlying client shared by all session calls.
func newHTTPClient() *http.Client {
	return &http.Client{Timeout: requestTimeout}
}

// lowerKeys recursively rewrites the first character of every object key to
// lower case. Server payload keys may arrive capitalized depending on the
// serializer the deployment runs; normalizing here keeps the rest of the
// client on a single convention.
func lowerKeys(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[lowerFirst(k)] = lowerKeys(vv)
		}
		return out
	case []any:
		for i := range t {
			t[i] = lowerKeys(t[i])
		}
		return t
	default:
		return v
	}
}

// lowerFirst lowers the first rune of s.
func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	if !unicode.IsUpper(r) {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

// decodeNormalized decodes a JSON body into out after normalizing object keys.
func decodeNormalized(body []byte, out any) error {
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return err
	}
	b, err := json.Marshal(lowerKeys(raw))
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

// serverError extracts the surfaced error text from a non-success response
// body: exceptionMessage field, else message field, else a generic fallback.
func serverError(status int, body []byte) string {
	var raw map[string]any
	if err := decodeNormalized(body, &raw); err == nil {
		if msg, ok := raw["exceptionMessage"].(string); ok && strings.TrimSpace(msg) != "" {
			return msg
		}
		if msg, ok := raw["message"].(string); ok && strings.TrimSpace(msg) != "" {
			return msg
		}
	}
	return fmt.Sprintf("server returned status %d", status)
}

// doJSON issues a request with an optional JSON body and the session cookie.
// It returns the response status and raw body; the error is non-nil only for
// transport-level failures (NetworkFailed). Status interpretation is left to
// the caller so each operation can map failures to its own error kind.
func doJSON(ctx context.Context, client *http.Client, method, url, cookie string, reqBody any) (int, []byte, error) {
	var rd io.Reader
	if reqBody != nil {
		b, err := json.Marshal(reqBody)
		if err != nil {
			return 0, nil, err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, rd)
	if err != nil {
		return 0, nil, err
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json, */*")
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}

	log.Debug("api request", zap.String("method", method), zap.String("url", url))
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, errors.Wrap(errors.NetworkFailed, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, errors.Wrap(errors.NetworkFailed, "read response", err)
	}
	log.Debug("api response",
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.String("body", log.Mask(truncate(string(body), 512))))

	return resp.StatusCode, body, nil
}

// ok reports whether an HTTP status counts as success for relay calls.
func ok(status int) bool {
	return status == http.StatusOK || status == http.StatusNoContent
}

// truncate limits s for debug logging.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
