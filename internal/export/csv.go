// Copyright (c) 2025 Dbrelay
// Licensed under the MIT License. See LICENSE file in the project root for details.

package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	xunicode "golang.org/x/text/encoding/unicode"

	"dbrelay/cli/internal/api"
	"dbrelay/cli/internal/format"
)

// delimited writes rows as delimited text, one row per WriteRow call, so
// result sets too large to hold a second copy of in memory still export.
type delimited struct {
	opts Options
	file *os.File
	w    *bufio.Writer
}

func newDelimited(opts Options) *delimited {
	return &delimited{opts: opts.withDefaults()}
}

// Open creates the destination file and writes the header row when enabled.
func (d *delimited) Open(columns []api.Column) error {
	f, err := os.Create(d.opts.Path)
	if err != nil {
		return err
	}
	d.file = f
	d.w = bufio.NewWriter(encodingWriter(f, d.opts.Encoding))

	if d.opts.Header {
		fields := make([]string, len(columns))
		for i, col := range columns {
			fields[i] = d.escape(col.Name)
		}
		if _, err := d.w.WriteString(strings.Join(fields, d.opts.Delimiter) + d.opts.LineSeparator); err != nil {
			return err
		}
	}
	return nil
}

// WriteRow appends one row. A raw null cell serializes to the literal NULL,
// unquoted; every other cell is formatted by its column type and
// independently quote-escaped.
func (d *delimited) WriteRow(columns []api.Column, row []any) error {
	fields := make([]string, len(columns))
	for i, col := range columns {
		var raw any
		if i < len(row) {
			raw = row[i]
		}
		if raw == nil {
			fields[i] = "NULL"
			continue
		}
		fields[i] = d.escape(format.Value(col.Type, raw))
	}
	_, err := d.w.WriteString(strings.Join(fields, d.opts.Delimiter) + d.opts.LineSeparator)
	return err
}

// Close flushes and releases the destination file.
func (d *delimited) Close() error {
	if d.file == nil {
		return nil
	}
	if err := d.w.Flush(); err != nil {
		d.file.Close()
		return err
	}
	return d.file.Close()
}

// escape wraps value in the quote character, doubling inner quotes, when it
// contains the delimiter, a carriage return, a line feed, the quote
// character, or leading/trailing space or tab. Values with none of those
// trigger conditions are emitted verbatim.
func (d *delimited) escape(value string) string {
	q := d.opts.Quote
	needs := strings.Contains(value, d.opts.Delimiter) ||
		strings.ContainsAny(value, "\r\n") ||
		strings.Contains(value, q)
	if !needs && value != "" {
		switch value[0] {
		case ' ', '\t':
			needs = true
		}
		switch value[len(value)-1] {
		case ' ', '\t':
			needs = true
		}
	}
	if !needs {
		return value
	}
	return q + strings.ReplaceAll(value, q, q+q) + q
}

// encodingWriter wraps w with the requested text encoding. UTF-8 passes
// through; ascii replaces non-ASCII runes; utf-16le emits little-endian
// code units without a byte order mark.
func encodingWriter(w io.Writer, name string) io.Writer {
	switch strings.ToLower(name) {
	case "ascii":
		return &asciiWriter{w: w}
	case "utf-16le", "utf16le":
		enc := xunicode.UTF16(xunicode.LittleEndian, xunicode.IgnoreBOM).NewEncoder()
		return enc.Writer(w)
	default:
		return w
	}
}

// asciiWriter substitutes '?' for any rune outside the ASCII range.
type asciiWriter struct {
	w io.Writer
}

func (a *asciiWriter) Write(p []byte) (int, error) {
	out := make([]byte, 0, len(p))
	for _, r := range string(p) {
		if r > unicode.MaxASCII {
			out = append(out, '?')
			continue
		}
		out = append(out, byte(r))
	}
	if _, err := a.w.Write(out); err != nil {
		return 0, fmt.Errorf("write ascii: %w", err)
	}
	return len(p), nil
}
