package loader

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// readXLSX returns the formatted cell text of the first worksheet.
func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

// readXLS reads the first sheet of a legacy BIFF workbook.
func readXLS(data []byte) ([][]string, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	if wb == nil {
		return nil, errors.New("document has no Workbook stream")
	}
	if wb.NumSheets() == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, errors.New("first sheet is unreadable")
	}
	if sheet.MaxRow == 0 {
		// ReadAllCells skips single-row sheets and would move on to the next one.
		if cells := xlsRow(sheet, 0); len(cells) > 0 {
			return [][]string{cells}, nil
		}
		return nil, nil
	}
	// With a cap of MaxRow+1 rows ReadAllCells never reaches the second
	// sheet. Rows missing from the file come back nil.
	return wb.ReadAllCells(int(sheet.MaxRow) + 1), nil
}

// xlsRow reads row i of sheet. WorkSheet.Row panics for rows the file
// never stored, which is reported as no cells.
func xlsRow(sheet *xls.WorkSheet, i int) (cells []string) {
	defer func() {
		if recover() != nil {
			cells = nil
		}
	}()
	row := sheet.Row(i)
	cells = make([]string, row.LastCol())
	for j := row.FirstCol(); j < row.LastCol(); j++ {
		cells[j] = row.Col(j)
	}
	return cells
}
