// Package export encodes tables as downloadable CSV and XLSX files.
package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/tidyloom/internal/table"
)

const (
	CSVFilename     = "cleaned_data.csv"
	CSVContentType  = "text/csv"
	XLSXFilename    = "cleaned_data.xlsx"
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	// SheetName is the only worksheet of an XLSX export.
	SheetName = "Cleaned Data"
)

// ErrNoTable is returned when there is nothing to export.
var ErrNoTable = errors.New("no table to export")

// CSV writes the header and every row. Nulls become empty cells.
func CSV(t *table.Table) ([]byte, error) {
	if t == nil {
		return nil, ErrNoTable
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(t.Names()); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	if err := w.WriteAll(t.Records()); err != nil {
		return nil, fmt.Errorf("write rows: %w", err)
	}
	return buf.Bytes(), nil
}

// XLSX writes a single-sheet workbook with typed cells. Nulls are blank.
func XLSX(t *table.Table) ([]byte, error) {
	if t == nil {
		return nil, ErrNoTable
	}
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("name sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return nil, fmt.Errorf("open sheet writer: %w", err)
	}

	header := make([]any, t.NumCols())
	for j, name := range t.Names() {
		header[j] = name
	}
	if err := sw.SetRow("A1", header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	cols := t.Columns()
	row := make([]any, len(cols))
	for i := 0; i < t.NumRows(); i++ {
		for j, c := range cols {
			row[j] = c.Value(i)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return nil, fmt.Errorf("flush sheet: %w", err)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
