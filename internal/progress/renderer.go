// Copyright (c) 2025 Dbrelay
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package progress renders query execution feedback in the terminal. It
// consumes the server messages the poll protocol forwards and the final
// summaries of the result store, keeping presentation concerns out of the
// protocol code.
package progress

import (
	"fmt"
	"time"

	"github.com/pterm/pterm"

	"dbrelay/cli/internal/api"
	"dbrelay/cli/internal/results"
)

// errorSeverityThreshold: server messages at or above this severity are
// rendered as errors rather than informational output.
const errorSeverityThreshold = 11

// Renderer renders query execution events to the console.
type Renderer struct {
	headerShown bool
}

// NewRenderer creates a renderer instance.
func NewRenderer() *Renderer { return &Renderer{} }

// Message renders one server message as it arrives, in server order.
func (r *Renderer) Message(msg api.QueryMessage) {
	if !r.headerShown {
		pterm.Println()
		r.headerShown = true
	}
	if msg.Severity >= errorSeverityThreshold {
		if msg.LineNumber > 0 {
			pterm.Error.Printf("line %d: %s\n", msg.LineNumber, msg.Text)
			return
		}
		pterm.Error.Println(msg.Text)
		return
	}
	pterm.Println("  " + msg.Text)
}

// Summary renders the per-result-set summaries after completion.
func (r *Renderer) Summary(summaries []results.Summary, d time.Duration) {
	for _, s := range summaries {
		noun := "rows"
		if s.RowCount == 1 {
			noun = "row"
		}
		pterm.Printf("result set %d: %d %s, %d columns\n",
			s.ID, s.RowCount, noun, len(s.Columns))
	}
	pterm.Printf("completed in %s\n", formatDuration(d))
}

// Cancelled reports a user-triggered cancellation. Cancellation is a
// successful, non-error completion with no results.
func (r *Renderer) Cancelled() {
	pterm.Println("query cancelled")
}

// formatDuration trims sub-millisecond noise from short durations.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.Round(10 * time.Millisecond).String()
}
