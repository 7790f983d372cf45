// Copyright (c) 2025 Dbrelay
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package format converts raw result-cell values into display strings based
// on the declared semantic type of their column. The raw values come straight
// from JSON decoding, so the concrete Go types seen here are the JSON ones:
// nil, string, float64, bool, plus whatever the server chose to emit.
package format

import (
	"fmt"
	"strconv"
	"time"

	"dbrelay/cli/internal/api"
)

// DateTimeLayout is the canonical display layout for DateTime cells:
// zero-padded, 24-hour, millisecond precision, local time fields.
const DateTimeLayout = "2006-01-02 15:04:05.000"

// timestampLayouts are the accepted raw encodings of a DateTime value,
// tried in order. Layouts without a zone are interpreted in local time so
// the displayed fields match the raw fields exactly.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	DateTimeLayout,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Value renders a raw scalar value for display according to its semantic
// type. It is total over the six column types. A nil raw value renders as
// the literal "null" on this direct path; the result store maps nils to
// null-flagged empty cells instead, which is a separate convention.
func Value(t api.ColumnType, raw any) string {
	if raw == nil {
		return "null"
	}
	switch t {
	case api.TypeBoolean:
		if truthy(raw) {
			return "1"
		}
		return "0"
	case api.TypeDateTime:
		if ts, ok := ParseTimestamp(raw); ok {
			return ts.In(time.Local).Format(DateTimeLayout)
		}
		return natural(raw)
	default:
		// String, Number, ByteArray and Unknown all use the value's
		// natural textual representation.
		return natural(raw)
	}
}

// ParseTimestamp interprets a raw value as a point in time. String values are
// tried against the accepted layouts; numeric values are taken as Unix
// milliseconds.
func ParseTimestamp(raw any) (time.Time, bool) {
	switch v := raw.(type) {
	case time.Time:
		return v, true
	case string:
		for _, layout := range timestampLayouts {
			if ts, err := time.ParseInLocation(layout, v, time.Local); err == nil {
				return ts, true
			}
		}
	case float64:
		return time.UnixMilli(int64(v)), true
	}
	return time.Time{}, false
}

// truthy maps the JSON encodings a server may use for a boolean column.
func truthy(raw any) bool {
	switch v := raw.(type) {
	case bool:
		return v
	case float64:
		return v != 0
	case string:
		return v == "1" || v == "true" || v == "True"
	default:
		return false
	}
}

// natural renders a value the way it would naturally print. JSON numbers
// arrive as float64; the shortest round-trip form avoids "1" becoming "1e+00".
func natural(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}
