package loader

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/KaramelBytes/tidyloom/internal/table"
)

// naValues are read as missing cells in every column type.
var naValues = []string{"", "NA", "N/A", "n/a", "NaN", "nan", "null", "NULL", "None", "#N/A", "<NA>", "<nil>"}

var errNoColumns = errors.New("no columns to parse from file")

// shape splits records into a normalized header and rectangular rows.
// Spreadsheet sheets may carry cells to the right of the header; with
// widenHeader those become "Unnamed: N" columns, otherwise they are an error.
func shape(records [][]string, widenHeader bool) ([]string, [][]string, error) {
	for len(records) > 0 && len(records[0]) == 0 {
		records = records[1:]
	}
	if len(records) == 0 || len(records[0]) == 0 {
		return nil, nil, errNoColumns
	}
	header := append([]string(nil), records[0]...)
	body := make([][]string, 0, len(records)-1)
	for i, rec := range records[1:] {
		if len(rec) == 0 {
			continue
		}
		if len(rec) > len(header) {
			if !widenHeader {
				return nil, nil, fmt.Errorf("row %d has %d fields, header has %d", i+2, len(rec), len(header))
			}
			for len(header) < len(rec) {
				header = append(header, "")
			}
		}
		body = append(body, rec)
	}
	for i, rec := range body {
		if len(rec) < len(header) {
			padded := make([]string, len(header))
			copy(padded, rec)
			body[i] = padded
		}
	}
	return normalizeHeader(header), body, nil
}

// normalizeHeader names blank headers "Unnamed: i" and suffixes repeats
// with ".1", ".2", ... so every column name is unique.
func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	used := make(map[string]bool, len(header))
	repeats := make(map[string]int)
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		base := name
		for used[name] {
			repeats[base]++
			name = base + "." + strconv.Itoa(repeats[base])
		}
		used[name] = true
		out[i] = name
	}
	return out
}

// infer detects column kinds with gota and copies the series into a table.
func infer(header []string, rows [][]string) (*table.Table, error) {
	if len(rows) == 0 {
		cols := make([]*table.Column, len(header))
		for i, h := range header {
			cols[i] = table.NewColumn(h, table.KindText, 0)
		}
		return table.New(cols...)
	}

	records := make([][]string, 0, len(rows)+1)
	records = append(records, header)
	records = append(records, rows...)
	opts := []dataframe.LoadOption{
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.NaNValues(naValues),
	}
	if bools := boolColumns(header, rows); len(bools) > 0 {
		opts = append(opts, dataframe.WithTypes(bools))
	}
	df := dataframe.LoadRecords(records, opts...)
	if df.Err != nil {
		return nil, fmt.Errorf("detect column types: %w", df.Err)
	}

	names := df.Names()
	if len(names) != len(header) {
		return nil, fmt.Errorf("detect column types: got %d columns, want %d", len(names), len(header))
	}
	cols := make([]*table.Column, len(header))
	for j, name := range names {
		s := df.Col(name)
		if s.Err != nil {
			return nil, fmt.Errorf("column %q: %w", header[j], s.Err)
		}
		c, err := fromSeries(header[j], s)
		if err != nil {
			return nil, err
		}
		cols[j] = c
	}
	return table.New(cols...)
}

// boolColumns finds columns whose non-missing cells are all true/false in
// any letter case; gota's own detection only knows the lower-case spelling.
func boolColumns(header []string, rows [][]string) map[string]series.Type {
	out := map[string]series.Type{}
	for j, name := range header {
		seenValue := false
		isBool := true
		for _, row := range rows {
			v := row[j]
			if isNA(v) {
				continue
			}
			seenValue = true
			if l := strings.ToLower(v); l != "true" && l != "false" {
				isBool = false
				break
			}
		}
		if seenValue && isBool {
			out[name] = series.Bool
		}
	}
	return out
}

func isNA(v string) bool {
	for _, na := range naValues {
		if v == na {
			return true
		}
	}
	return false
}

func fromSeries(name string, s series.Series) (*table.Column, error) {
	n := s.Len()
	var c *table.Column
	switch s.Type() {
	case series.Int:
		c = table.NewColumn(name, table.KindInt, n)
	case series.Float:
		c = table.NewColumn(name, table.KindFloat, n)
	case series.Bool:
		c = table.NewColumn(name, table.KindBool, n)
	default:
		c = table.NewColumn(name, table.KindText, n)
	}
	for i := 0; i < n; i++ {
		e := s.Elem(i)
		if e.IsNA() {
			continue
		}
		switch c.Kind {
		case table.KindInt:
			v, err := e.Int()
			if err != nil {
				return nil, fmt.Errorf("column %q row %d: %w", name, i+1, err)
			}
			c.SetInt(i, int64(v))
		case table.KindFloat:
			c.SetFloat(i, e.Float())
		case table.KindBool:
			v, err := e.Bool()
			if err != nil {
				return nil, fmt.Errorf("column %q row %d: %w", name, i+1, err)
			}
			c.SetBool(i, v)
		default:
			c.SetText(i, e.String())
		}
	}
	return c, nil
}

// promoteNullableInts turns integer columns holding nulls into float
// columns, the same representation a dataframe reader would pick.
func promoteNullableInts(t *table.Table) {
	for _, c := range t.Columns() {
		if c.Kind != table.KindInt || c.NullCount() == 0 {
			continue
		}
		f := table.NewColumn(c.Name, table.KindFloat, c.Len())
		for i := 0; i < c.Len(); i++ {
			if !c.IsNull(i) {
				f.SetFloat(i, float64(c.Int(i)))
			}
		}
		_ = t.Replace(f)
	}
}

// boolsToText rewrites boolean columns as "True"/"False" text. Downstream
// statistics and encoders treat booleans as categories.
func boolsToText(t *table.Table) {
	for _, c := range t.Columns() {
		if c.Kind != table.KindBool {
			continue
		}
		s := table.NewColumn(c.Name, table.KindText, c.Len())
		for i := 0; i < c.Len(); i++ {
			if !c.IsNull(i) {
				s.SetText(i, table.FormatBool(c.Bool(i)))
			}
		}
		_ = t.Replace(s)
	}
}
