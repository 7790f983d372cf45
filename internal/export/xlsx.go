// Copyright (c) 2025 Dbrelay
// Licensed under the MIT License. See LICENSE file in the project root for details.

package export

import (
	"github.com/xuri/excelize/v2"

	"dbrelay/cli/internal/api"
	"dbrelay/cli/internal/format"
)

// workbook writes rows to a single named sheet of an xlsx workbook. The
// complete workbook is written to disk in one operation at Close.
type workbook struct {
	opts Options
	file *excelize.File
	next int // next 1-based sheet row
}

func newWorkbook(opts Options) *workbook {
	return &workbook{opts: opts.withDefaults()}
}

// Open creates the workbook, names its sheet, and writes the header row of
// column names.
func (w *workbook) Open(columns []api.Column) error {
	w.file = excelize.NewFile()
	if err := w.file.SetSheetName("Sheet1", w.opts.SheetName); err != nil {
		return err
	}
	header := make([]any, len(columns))
	for i, col := range columns {
		header[i] = col.Name
	}
	if err := w.setRow(1, header); err != nil {
		return err
	}
	w.next = 2
	return nil
}

// WriteRow appends one sheet row. Null raw cells become empty cells, not the
// string "null".
func (w *workbook) WriteRow(columns []api.Column, row []any) error {
	cells := make([]any, len(columns))
	for i, col := range columns {
		var raw any
		if i < len(row) {
			raw = row[i]
		}
		if raw == nil {
			cells[i] = nil
			continue
		}
		cells[i] = format.Value(col.Type, raw)
	}
	if err := w.setRow(w.next, cells); err != nil {
		return err
	}
	w.next++
	return nil
}

// Close saves the workbook to the destination path and releases it.
func (w *workbook) Close() error {
	if w.file == nil {
		return nil
	}
	defer w.file.Close()
	return w.file.SaveAs(w.opts.Path)
}

func (w *workbook) setRow(rowIdx int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, rowIdx)
	if err != nil {
		return err
	}
	return w.file.SetSheetRow(w.opts.SheetName, cell, &values)
}
