package loader_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/tidyloom/internal/loader"
	"github.com/KaramelBytes/tidyloom/internal/table"
)

func TestLoadCSV_KindsAndNulls(t *testing.T) {
	data := []byte("id,name,score\n1,a,90\n2,,85.5\n3,c,\n")
	tb, err := loader.Load("scores.csv", data)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tb.NumRows() != 3 || tb.NumCols() != 3 {
		t.Fatalf("shape = %dx%d, want 3x3", tb.NumRows(), tb.NumCols())
	}
	want := map[string]table.Kind{"id": table.KindInt, "name": table.KindText, "score": table.KindFloat}
	for name, kind := range want {
		c, ok := tb.Column(name)
		if !ok {
			t.Fatalf("missing column %q", name)
		}
		if c.Kind != kind {
			t.Fatalf("%s kind = %v, want %v", name, c.Kind, kind)
		}
	}
	name, _ := tb.Column("name")
	if name.NullCount() != 1 || !name.IsNull(1) {
		t.Fatalf("name nulls = %d", name.NullCount())
	}
	score, _ := tb.Column("score")
	if score.NullCount() != 1 || score.Float(1) != 85.5 {
		t.Fatalf("score = %v/%v nulls=%d", score.Value(0), score.Value(1), score.NullCount())
	}
}

func TestLoadCSV_NullableIntBecomesFloat(t *testing.T) {
	tb, err := loader.Load("a.csv", []byte("n\n1\nNA\n3\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	c, _ := tb.Column("n")
	if c.Kind != table.KindFloat {
		t.Fatalf("kind = %v, want float", c.Kind)
	}
	if !c.IsNull(1) || c.Float(2) != 3 {
		t.Fatalf("values = %v %v %v", c.Value(0), c.Value(1), c.Value(2))
	}
}

func TestLoadCSV_BooleansAreText(t *testing.T) {
	tb, err := loader.Load("a.csv", []byte("flag\nTrue\nfalse\n\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	c, _ := tb.Column("flag")
	if c.Kind != table.KindText {
		t.Fatalf("kind = %v, want text", c.Kind)
	}
	if c.Text(0) != "True" || c.Text(1) != "False" {
		t.Fatalf("values = %q %q", c.Text(0), c.Text(1))
	}
}

func TestLoadCSV_HeaderNormalization(t *testing.T) {
	tb, err := loader.Load("a.csv", []byte("a,,a,a\n1,2,3,4\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	got := tb.Names()
	want := []string{"a", "Unnamed: 1", "a.1", "a.2"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("names = %#v, want %#v", got, want)
		}
	}
}

func TestLoadCSV_HeaderOnly(t *testing.T) {
	tb, err := loader.Load("a.csv", []byte("x,y\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tb.NumRows() != 0 || tb.NumCols() != 2 {
		t.Fatalf("shape = %dx%d", tb.NumRows(), tb.NumCols())
	}
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	for _, name := range []string{"notes.txt", "README", "data.csv.bak"} {
		_, err := loader.Load(name, []byte("a,b\n1,2\n"))
		if !errors.Is(err, loader.ErrUnsupportedFormat) {
			t.Fatalf("%s: want ErrUnsupportedFormat, got %v", name, err)
		}
	}
	if f, err := loader.FormatFromFilename("Report.XLSX"); err != nil || f != loader.FormatXLSX {
		t.Fatalf("extension match should ignore case: %v %v", f, err)
	}
}

func TestLoad_ParseErrors(t *testing.T) {
	cases := map[string][]byte{
		"broken.xlsx": []byte("definitely not a zip archive"),
		"broken.xls":  []byte("not an ole2 document"),
		"empty.csv":   nil,
		"ragged.csv":  []byte("a,b\n1,2,3\n"),
	}
	for name, data := range cases {
		_, err := loader.Load(name, data)
		var pe *loader.ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("%s: want *ParseError, got %v", name, err)
		}
	}
}

func TestLoadXLSX_FirstSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"city", "temp", "rain"},
		{"Oslo", 4, 1.5},
		{"Rome", 18, nil},
		{"Lima", 21, 0.25},
	}
	for r, row := range rows {
		for c, v := range row {
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				t.Fatalf("set cell: %v", err)
			}
		}
	}
	path := filepath.Join(t.TempDir(), "weather.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	tb, err := loader.LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tb.NumRows() != 3 || tb.NumCols() != 3 {
		t.Fatalf("shape = %dx%d", tb.NumRows(), tb.NumCols())
	}
	temp, _ := tb.Column("temp")
	if temp.Kind != table.KindInt || temp.Int(1) != 18 {
		t.Fatalf("temp = %v %v", temp.Kind, temp.Value(1))
	}
	rain, _ := tb.Column("rain")
	if rain.Kind != table.KindFloat || !rain.IsNull(1) {
		t.Fatalf("rain = %v nulls=%d", rain.Kind, rain.NullCount())
	}
}

func TestLoadXLS_FirstSheet(t *testing.T) {
	// weather.xls has a blank fourth row and a second sheet named "notes".
	tb, err := loader.LoadFile(filepath.Join("testdata", "weather.xls"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tb.NumRows() != 3 || tb.NumCols() != 4 {
		t.Fatalf("shape = %dx%d, want 3x4", tb.NumRows(), tb.NumCols())
	}
	if got := tb.Names(); len(got) != 4 || got[0] != "city" || got[3] != "windy" {
		t.Fatalf("names = %v", got)
	}
	city, _ := tb.Column("city")
	if city.Kind != table.KindText || city.Text(0) != "Oslo" || city.Text(2) != "Lima" {
		t.Fatalf("city = %v %v..%v", city.Kind, city.Value(0), city.Value(2))
	}
	temp, _ := tb.Column("temp")
	if temp.Kind != table.KindInt || temp.Int(0) != 4 || temp.Int(1) != 18 || temp.Int(2) != 21 {
		t.Fatalf("temp = %v %v", temp.Kind, []any{temp.Value(0), temp.Value(1), temp.Value(2)})
	}
	rain, _ := tb.Column("rain")
	if rain.Kind != table.KindFloat || !rain.IsNull(1) || rain.Float(0) != 1.5 || rain.Float(2) != 0.25 {
		t.Fatalf("rain = %v nulls=%d", rain.Kind, rain.NullCount())
	}
	windy, _ := tb.Column("windy")
	if windy.Kind != table.KindText || windy.Text(1) != "no" {
		t.Fatalf("windy = %v %v", windy.Kind, windy.Value(1))
	}
}

func TestLoadReader_MatchesLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.csv")
	if err := os.WriteFile(path, []byte("k,v\nx,1\ny,2\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	fh, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer fh.Close()
	tb, err := loader.LoadReader("a.csv", fh)
	if err != nil {
		t.Fatalf("load reader: %v", err)
	}
	if tb.NumRows() != 2 {
		t.Fatalf("rows = %d", tb.NumRows())
	}
}
