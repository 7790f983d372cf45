// Copyright (c) 2025 Dbrelay
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package query drives one remote execution through its submit, poll, and
// cancel protocol. A Runner is the active handle for a single query: it
// submits the text, polls the server-assigned identifier until the execution
// completes, and forwards server messages to the caller in order. There is
// never more than one outstanding poll per runner, and no retry policy:
// a network failure during polling is terminal.
package query

import (
	"context"
	"sync"
	"time"

	"dbrelay/cli/internal/api"
	"dbrelay/cli/internal/errors"
	"dbrelay/cli/internal/log"

	"go.uber.org/zap"
)

// State is the protocol state of a runner.
type State int

const (
	StateIdle State = iota
	StateSubmitted
	StatePolling
	StateCompleted
	StateCancelled
	StateFailed
)

// pollDelay is the pause between a handled status response and the next poll.
const pollDelay = 500 * time.Millisecond

// cancelTimeout bounds the best-effort server-side cancel request.
const cancelTimeout = 10 * time.Second

// MessageFunc receives one server message. Messages are delivered strictly
// in server order, each batch before the following poll is issued.
type MessageFunc func(api.QueryMessage)

// Result is the terminal outcome of one execution.
type Result struct {
	State State
	// ResultSets is populated only for a completed execution.
	ResultSets []api.ResultSet
	// Duration is the server-reported execution time when available,
	// else client-measured wall time.
	Duration time.Duration
	// Err is set only for StateFailed.
	Err error
}

// Runner executes one query. It is not reusable; submit a fresh runner for
// a new query.
type Runner struct {
	session *api.Session

	mu         sync.Mutex
	state      State
	identifier string
	cancelled  bool
	abort      context.CancelFunc
}

// New creates a runner bound to an authenticated session.
func New(session *api.Session) *Runner {
	return &Runner{session: session}
}

// State returns the current protocol state.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Identifier returns the server-assigned execution identifier, empty until
// the submission response has arrived.
func (r *Runner) Identifier() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.identifier
}

// Run submits queryText and polls until the execution reaches a terminal
// state, invoking onMessage for every newly accumulated server message
// before the next poll is issued. Run blocks; it returns the terminal
// result. Cancellation (via Cancel or ctx) yields a successful, non-error
// result with no result sets.
func (r *Runner) Run(ctx context.Context, queryText string, onMessage MessageFunc) Result {
	start := time.Now()

	runCtx, abort := context.WithCancel(ctx)
	defer abort()

	r.mu.Lock()
	if r.cancelled {
		r.mu.Unlock()
		return r.terminal(StateCancelled, nil, time.Since(start), nil)
	}
	r.state = StateSubmitted
	r.abort = abort
	r.mu.Unlock()

	progress, err := r.session.ExecuteQuery(runCtx, queryText)

	// A cancel that raced ahead of the submission response still wins:
	// no callbacks fire, and the now-known identifier is cancelled on the
	// server best-effort.
	if r.isCancelled() {
		if progress != nil && progress.Identifier != "" {
			r.serverCancel(progress.Identifier)
		}
		return r.terminal(StateCancelled, nil, time.Since(start), nil)
	}
	if err != nil {
		return r.terminal(StateFailed, nil, time.Since(start), err)
	}

	r.mu.Lock()
	r.identifier = progress.Identifier
	r.state = StatePolling
	r.mu.Unlock()

	delivered := 0
	for {
		// Deliver every message accumulated since the prior poll before
		// issuing the next one, so the caller observes server order.
		for _, msg := range progress.Messages[min(delivered, len(progress.Messages)):] {
			if r.isCancelled() {
				return r.terminal(StateCancelled, nil, time.Since(start), nil)
			}
			onMessage(msg)
		}
		delivered = len(progress.Messages)

		if progress.IsComplete {
			d := time.Since(start)
			if progress.DurationMillis > 0 {
				d = time.Duration(progress.DurationMillis) * time.Millisecond
			}
			return r.terminal(StateCompleted, progress.ResultSets, d, nil)
		}

		select {
		case <-runCtx.Done():
			return r.terminal(StateCancelled, nil, time.Since(start), nil)
		case <-time.After(pollDelay):
		}

		progress, err = r.session.QueryStatus(runCtx, r.Identifier())
		if r.isCancelled() {
			// The response of an aborted or late poll is discarded.
			return r.terminal(StateCancelled, nil, time.Since(start), nil)
		}
		if err != nil {
			if !errors.Is(err, errors.NetworkFailed) && !errors.Is(err, errors.QueryFailed) {
				err = errors.Wrap(errors.NetworkFailed, "status poll failed", err)
			}
			return r.terminal(StateFailed, nil, time.Since(start), err)
		}
	}
}

// Cancel cancels the execution. It is idempotent and safe in every state:
// the runner is marked cancelled so in-flight and future poll responses are
// ignored, any outstanding HTTP call is aborted, and a best-effort server
// cancel is fired when the identifier is known. Cancelling before the
// identifier is assigned suppresses all callbacks once it arrives.
func (r *Runner) Cancel() {
	r.mu.Lock()
	if r.cancelled {
		r.mu.Unlock()
		return
	}
	r.cancelled = true
	id := r.identifier
	abort := r.abort
	r.mu.Unlock()

	if abort != nil {
		abort()
	}
	if id != "" {
		r.serverCancel(id)
	}
}

// serverCancel fires the fire-and-forget delete for the identifier. Its
// outcome never blocks local cancellation.
func (r *Runner) serverCancel(identifier string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), cancelTimeout)
		defer cancel()
		r.session.CancelQuery(ctx, identifier)
	}()
}

func (r *Runner) isCancelled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancelled
}

// terminal records the final state and builds the result.
func (r *Runner) terminal(state State, sets []api.ResultSet, d time.Duration, err error) Result {
	r.mu.Lock()
	r.state = state
	r.mu.Unlock()
	if err != nil {
		log.Warn("query failed", zap.Error(err))
	} else {
		log.Debug("query finished",
			zap.Int("state", int(state)),
			zap.Duration("duration", d),
			zap.Int("resultSets", len(sets)))
	}
	return Result{State: state, ResultSets: sets, Duration: d, Err: err}
}
