// Copyright (c) 2025 Dbrelay
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package export streams the rows of a result set to a destination file in
// one of the supported formats: delimited text (csv), structured records
// (json), or a spreadsheet workbook (xlsx). All serializers share the same
// lifecycle: Open once, WriteRow per row, Close to finalize and release the
// destination.
package export

import (
	"runtime"
	"strings"

	"dbrelay/cli/internal/api"
	"dbrelay/cli/internal/errors"
)

// Serializer writes one result set to a destination file. WriteRow may be
// called many times, strictly after Open and before Close.
type Serializer interface {
	Open(columns []api.Column) error
	WriteRow(columns []api.Column, row []any) error
	Close() error
}

// Options configures a serializer. Zero values select the defaults noted on
// each field; only Path is required.
type Options struct {
	// Path is the destination file.
	Path string
	// Delimiter is the field delimiter for delimited text. Default ",".
	Delimiter string
	// LineSeparator terminates each delimited-text row. Default is the
	// platform newline.
	LineSeparator string
	// Quote is the quote character for delimited text. Default `"`.
	Quote string
	// Header writes a header row of column names. Default false.
	Header bool
	// Encoding is the delimited-text encoding: utf-8 (default), ascii,
	// or utf-16le.
	Encoding string
	// SheetName names the spreadsheet sheet. Default "Results".
	SheetName string
}

// platformNewline is the default line separator for delimited text.
func platformNewline() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}

// withDefaults fills unset options.
func (o Options) withDefaults() Options {
	if o.Delimiter == "" {
		o.Delimiter = ","
	}
	if o.LineSeparator == "" {
		o.LineSeparator = platformNewline()
	}
	if o.Quote == "" {
		o.Quote = `"`
	}
	if o.Encoding == "" {
		o.Encoding = "utf-8"
	}
	if o.SheetName == "" {
		o.SheetName = "Results"
	}
	return o
}

// New returns a serializer for the requested format tag. An unrecognized tag
// is an UnsupportedFormat error; nothing is written and the caller reports
// it as a message, not a fatal failure.
func New(formatTag string, opts Options) (Serializer, error) {
	switch strings.ToLower(strings.TrimSpace(formatTag)) {
	case "csv":
		return newDelimited(opts), nil
	case "json":
		return newRecords(opts), nil
	case "xlsx":
		return newWorkbook(opts), nil
	default:
		return nil, errors.New(errors.UnsupportedFormat,
			"export format not supported: "+formatTag)
	}
}
