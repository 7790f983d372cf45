// Copyright (c) 2025 Dbrelay
// Licensed under the MIT License. See LICENSE file in the project root for details.

package api

import (
	"encoding/json"
	"strings"
)

// ColumnType is the semantic type of a result column. It governs how cell
// values are displayed and exported, never the raw transport representation.
type ColumnType int

const (
	TypeUnknown ColumnType = iota
	TypeString
	TypeNumber
	TypeBoolean
	TypeDateTime
	TypeByteArray
)

// String returns the canonical name of the column type.
func (t ColumnType) String() string {
	switch t {
	case TypeString:
		return "String"
	case TypeNumber:
		return "Number"
	case TypeBoolean:
		return "Boolean"
	case TypeDateTime:
		return "DateTime"
	case TypeByteArray:
		return "ByteArray"
	default:
		return "Unknown"
	}
}

// UnmarshalJSON accepts either the numeric enum value or the type name,
// since deployed servers have emitted both encodings.
func (t *ColumnType) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		if n >= int(TypeUnknown) && n <= int(TypeByteArray) {
			*t = ColumnType(n)
		} else {
			*t = TypeUnknown
		}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	switch strings.ToLower(s) {
	case "string":
		*t = TypeString
	case "number":
		*t = TypeNumber
	case "boolean":
		*t = TypeBoolean
	case "datetime":
		*t = TypeDateTime
	case "bytearray":
		*t = TypeByteArray
	default:
		*t = TypeUnknown
	}
	return nil
}

// Column describes one result-set column.
type Column struct {
	Name string     `json:"name"`
	Type ColumnType `json:"type"`
}

// ResultSet holds the columns and raw rows of one completed result set.
// Every row has exactly len(Columns) values. Rows are immutable once delivered.
type ResultSet struct {
	Columns []Column `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// QueryMessage is one unit of server-emitted diagnostic output, informational
// or error. Messages are ordered and accumulate across polls.
type QueryMessage struct {
	Text       string `json:"text"`
	Code       int    `json:"code,omitempty"`
	Severity   int    `json:"severity,omitempty"`
	State      int    `json:"state,omitempty"`
	LineNumber int    `json:"lineNumber,omitempty"`
}

// QueryProgress is the evolving state of one remote execution. Identifier is
// assigned by the server at submission and is the handle for status polls and
// cancellation. Once IsComplete is true, ResultSets is populated and no
// further polling happens.
type QueryProgress struct {
	Identifier     string         `json:"identifier"`
	IsComplete     bool           `json:"isComplete"`
	DurationMillis int64          `json:"durationMillis"`
	Messages       []QueryMessage `json:"messages"`
	ResultSets     []ResultSet    `json:"resultSets,omitempty"`
}

// ServerDetails are the static facts returned at session negotiation.
type ServerDetails struct {
	DatabaseName    string `json:"databaseName"`
	OSVersion       string `json:"osVersion"`
	PlatformVersion string `json:"rockVersion"`
	EngineEdition   string `json:"sqlEdition"`
	EngineVersion   string `json:"sqlVersion"`
}

// ExplorerNode is one entry of the server-side object tree.
type ExplorerNode struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Name string `json:"name"`
}
