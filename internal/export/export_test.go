package export

import (
	"bytes"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/tidyloom/internal/loader"
	"github.com/KaramelBytes/tidyloom/internal/table"
)

func sample() *table.Table {
	return table.MustNew(
		table.MustColumnOf("id", table.KindInt, 1, 2),
		table.MustColumnOf("score", table.KindFloat, 90.0, nil),
		table.MustColumnOf("name", table.KindText, "a, b", "c"),
		table.MustColumnOf("ok", table.KindBool, true, false),
	)
}

func TestCSV(t *testing.T) {
	got, err := CSV(sample())
	if err != nil {
		t.Fatalf("csv: %v", err)
	}
	want := "id,score,name,ok\n1,90.0,\"a, b\",True\n2,,c,False\n"
	if string(got) != want {
		t.Fatalf("csv =\n%s\nwant\n%s", got, want)
	}
}

func TestCSVRoundTripsThroughLoader(t *testing.T) {
	src := []byte("id,score,name\n1,90,a\n2,,b\n")
	tb, err := loader.Load("in.csv", src)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	out, err := CSV(tb)
	if err != nil {
		t.Fatalf("csv: %v", err)
	}
	back, err := loader.Load("out.csv", out)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if string(mustCSV(t, back)) != string(out) {
		t.Fatalf("round trip changed output:\n%s", out)
	}
}

func mustCSV(t *testing.T, tb *table.Table) []byte {
	t.Helper()
	b, err := CSV(tb)
	if err != nil {
		t.Fatalf("csv: %v", err)
	}
	return b
}

func TestXLSX(t *testing.T) {
	data, err := XLSX(sample())
	if err != nil {
		t.Fatalf("xlsx: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) != 1 || sheets[0] != SheetName {
		t.Fatalf("sheets = %v", sheets)
	}
	rows, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 3 || rows[0][1] != "score" || rows[1][0] != "1" || rows[1][2] != "a, b" {
		t.Fatalf("rows = %#v", rows)
	}
	if v, _ := f.GetCellValue(SheetName, "B3"); v != "" {
		t.Fatalf("null cell = %q, want blank", v)
	}
	if typ, _ := f.GetCellType(SheetName, "A2"); typ == excelize.CellTypeSharedString || typ == excelize.CellTypeInlineString {
		t.Fatalf("numbers should stay numeric, got cell type %v", typ)
	}

	tb, err := loader.Load(XLSXFilename, data)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if tb.NumRows() != 2 || tb.NumCols() != 4 {
		t.Fatalf("reloaded shape = %dx%d", tb.NumRows(), tb.NumCols())
	}
}

func TestZeroRowsAndNil(t *testing.T) {
	empty := table.MustNew(table.NewColumn("a", table.KindText, 0))
	got, err := CSV(empty)
	if err != nil || string(got) != "a\n" {
		t.Fatalf("csv = %q, %v", got, err)
	}
	if _, err := XLSX(empty); err != nil {
		t.Fatalf("xlsx: %v", err)
	}
	if _, err := CSV(nil); !errors.Is(err, ErrNoTable) {
		t.Fatalf("csv nil: %v", err)
	}
	if _, err := XLSX(nil); !errors.Is(err, ErrNoTable) {
		t.Fatalf("xlsx nil: %v", err)
	}
}
