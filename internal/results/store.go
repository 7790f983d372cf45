// Copyright (c) 2025 Dbrelay
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package results holds the result sets of a completed query and offers
// random-access, range-bounded row retrieval. The host fetches row windows
// on demand (the UI pages as the user scrolls), so retrieval is pure and
// safe to call repeatedly and out of order.
package results

import (
	"fmt"

	"dbrelay/cli/internal/api"
	"dbrelay/cli/internal/errors"
	"dbrelay/cli/internal/format"
)

// Cell is one formatted result cell. A raw null or absent value becomes a
// null-flagged cell with empty display text; this deliberately differs from
// format.Value's direct rendering of nil as the literal "null".
type Cell struct {
	Display string
	Null    bool
}

// Summary describes one stored result set. IDs are sequential and zero-based,
// assigned when the store is built, not carried over from the server.
type Summary struct {
	ID       int
	RowCount int
	Columns  []api.Column
	Complete bool
}

// Store is an immutable in-memory holder of completed result sets.
type Store struct {
	sets []api.ResultSet
}

// New builds a store over the result sets of a completed query, in the
// server's completion order.
func New(sets []api.ResultSet) *Store {
	return &Store{sets: sets}
}

// Summaries returns one summary per result set in completion order.
func (s *Store) Summaries() []Summary {
	out := make([]Summary, len(s.sets))
	for i, set := range s.sets {
		out[i] = Summary{
			ID:       i,
			RowCount: len(set.Rows),
			Columns:  set.Columns,
			Complete: true,
		}
	}
	return out
}

// SetCount returns the number of stored result sets.
func (s *Store) SetCount() int { return len(s.sets) }

// ResultSet returns the raw result set at idx. An index equal to the set
// count is out of range, the same convention Rows applies.
func (s *Store) ResultSet(idx int) (api.ResultSet, error) {
	if idx < 0 || idx >= len(s.sets) {
		return api.ResultSet{}, errors.New(errors.IndexOutOfRange,
			fmt.Sprintf("result set %d of %d", idx, len(s.sets)))
	}
	return s.sets[idx], nil
}

// Rows returns the formatted cells of rows [start, start+count) of the
// result set at setIdx. It fails with IndexOutOfRange when setIdx is out of
// bounds or when start+count exceeds the set's row count.
func (s *Store) Rows(setIdx, start, count int) ([][]Cell, error) {
	set, err := s.ResultSet(setIdx)
	if err != nil {
		return nil, err
	}
	if start < 0 || count < 0 || start+count > len(set.Rows) {
		return nil, errors.New(errors.IndexOutOfRange,
			fmt.Sprintf("rows [%d, %d) of %d", start, start+count, len(set.Rows)))
	}
	out := make([][]Cell, count)
	for i := 0; i < count; i++ {
		raw := set.Rows[start+i]
		row := make([]Cell, len(set.Columns))
		for j, col := range set.Columns {
			var v any
			if j < len(raw) {
				v = raw[j]
			}
			if v == nil {
				row[j] = Cell{Null: true}
				continue
			}
			row[j] = Cell{Display: format.Value(col.Type, v)}
		}
		out[i] = row
	}
	return out, nil
}
