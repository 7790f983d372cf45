// Copyright (c) 2025 Dbrelay
// Licensed under the MIT License. See LICENSE file in the project root for details.

package export

import (
	"bytes"
	"encoding/json"
	"os"

	"dbrelay/cli/internal/api"
	"dbrelay/cli/internal/format"
)

// records builds one record per row and writes the whole collection as a
// single indented document at Close. Every record is held in memory until
// then, so this serializer is unsuitable for unbounded row counts; that is
// a known limitation of the format, not a defect. Use csv for large sets.
type records struct {
	opts Options
	rows []record
}

func newRecords(opts Options) *records {
	return &records{opts: opts.withDefaults()}
}

// record is an ordered column-name-to-value mapping. A plain map would lose
// the column order, so marshaling is done by hand.
type record struct {
	names  []string
	values []any
}

func (r record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range r.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(r.values[i])
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (s *records) Open(columns []api.Column) error {
	s.rows = make([]record, 0)
	return nil
}

// WriteRow accumulates one record mapping column names to formatted values.
// Null raw cells become JSON null.
func (s *records) WriteRow(columns []api.Column, row []any) error {
	rec := record{
		names:  make([]string, len(columns)),
		values: make([]any, len(columns)),
	}
	for i, col := range columns {
		rec.names[i] = col.Name
		var raw any
		if i < len(row) {
			raw = row[i]
		}
		if raw == nil {
			rec.values[i] = nil
			continue
		}
		rec.values[i] = format.Value(col.Type, raw)
	}
	s.rows = append(s.rows, rec)
	return nil
}

// Close writes the accumulated records as one 2-space-indented document in
// a single write.
func (s *records) Close() error {
	b, err := json.MarshalIndent(s.rows, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.opts.Path, b, 0o644)
}
