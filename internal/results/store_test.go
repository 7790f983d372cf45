// Copyright (c) 2025 Dbrelay
// Licensed under the MIT License. See LICENSE file in the project root for details.

package results

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbrelay/cli/internal/api"
	"dbrelay/cli/internal/errors"
)

func sampleSets() []api.ResultSet {
	return []api.ResultSet{
		{
			Columns: []api.Column{
				{Name: "Id", Type: api.TypeNumber},
				{Name: "Name", Type: api.TypeString},
				{Name: "Active", Type: api.TypeBoolean},
			},
			Rows: [][]any{
				{float64(1), "alice", true},
				{float64(2), nil, false},
				{float64(3), "carol", true},
			},
		},
		{
			Columns: []api.Column{{Name: "Total", Type: api.TypeNumber}},
			Rows:    [][]any{{float64(3)}},
		},
	}
}

func TestSummaries(t *testing.T) {
	s := New(sampleSets())
	sums := s.Summaries()
	require.Len(t, sums, 2)

	assert.Equal(t, 0, sums[0].ID)
	assert.Equal(t, 3, sums[0].RowCount)
	assert.Len(t, sums[0].Columns, 3)
	assert.True(t, sums[0].Complete)

	assert.Equal(t, 1, sums[1].ID)
	assert.Equal(t, 1, sums[1].RowCount)
}

func TestRowsWindow(t *testing.T) {
	s := New(sampleSets())

	rows, err := s.Rows(0, 1, 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Nulls become flagged cells with empty display text.
	assert.Equal(t, Cell{Display: "2"}, rows[0][0])
	assert.Equal(t, Cell{Null: true}, rows[0][1])
	assert.Equal(t, Cell{Display: "0"}, rows[0][2])

	assert.Equal(t, Cell{Display: "carol"}, rows[1][1])
	assert.Equal(t, Cell{Display: "1"}, rows[1][2])
}

func TestRowsEmptyWindow(t *testing.T) {
	s := New(sampleSets())
	rows, err := s.Rows(0, 3, 0)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRowsBounds(t *testing.T) {
	s := New(sampleSets())
	cases := []struct {
		name                string
		setIdx, start, count int
	}{
		{"negative start", 0, -1, 1},
		{"negative count", 0, 0, -1},
		{"window past end", 0, 2, 2},
		{"start past end", 0, 4, 0},
		{"set index negative", -1, 0, 0},
		{"set index equals count", 2, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Rows(tc.setIdx, tc.start, tc.count)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.IndexOutOfRange))
		})
	}
}

func TestResultSetIndex(t *testing.T) {
	s := New(sampleSets())

	set, err := s.ResultSet(1)
	require.NoError(t, err)
	assert.Equal(t, "Total", set.Columns[0].Name)

	_, err = s.ResultSet(2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.IndexOutOfRange))
}

func TestEmptyStore(t *testing.T) {
	s := New(nil)
	assert.Zero(t, s.SetCount())
	assert.Empty(t, s.Summaries())

	_, err := s.Rows(0, 0, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.IndexOutOfRange))
}
