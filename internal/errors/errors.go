// Copyright (c) 2025 Dbrelay
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package errors defines typed errors with categories for user-friendly reporting.
// It provides a structured approach to error handling with machine-readable error kinds
// and human-friendly messages. This enables better error categorization, logging,
// and user experience by providing context-aware error information.
//
// The package supports wrapping underlying errors while maintaining error kind information,
// making it easier to handle different types of failures appropriately.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// AuthFailed indicates the server rejected the supplied credentials.
	AuthFailed Kind = "auth_failed"
	// NegotiationFailed indicates login succeeded but connection details
	// could not be established; the session is discarded.
	NegotiationFailed Kind = "negotiation_failed"
	// NetworkFailed indicates a transport-level failure on a remote call.
	NetworkFailed Kind = "network_failed"
	// ProtocolViolation indicates a malformed or unexpected server response,
	// such as a login response with no session credential.
	ProtocolViolation Kind = "protocol_violation"
	// QueryFailed indicates the server reported a failure while executing a query.
	QueryFailed Kind = "query_failed"
	// IndexOutOfRange indicates a row or result-set index beyond the stored bounds.
	IndexOutOfRange Kind = "index_out_of_range"
	// UnsupportedFormat indicates an export format tag that is not recognized.
	// Reported to the user as a message, never as a fatal failure.
	UnsupportedFormat Kind = "unsupported_format"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// Is reports whether err carries the given kind anywhere in its chain.
func Is(err error, kind Kind) bool {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
