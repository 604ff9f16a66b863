package analysis

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/KaramelBytes/tidyloom/internal/table"
)

func scoresTable(t *testing.T) *table.Table {
	t.Helper()
	tb, err := table.New(
		table.MustColumnOf("id", table.KindInt, 1, 2, 3, 4),
		table.MustColumnOf("name", table.KindText, "a", "b", "a", nil),
		table.MustColumnOf("score", table.KindFloat, 90.0, 85.5, nil, 70.0),
		table.MustColumnOf("bonus", table.KindFloat, 9.0, 8.5, 4.0, 7.0),
	)
	if err != nil {
		t.Fatalf("table: %v", err)
	}
	return tb
}

func almostEqual(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestDescribeCountsAndColumns(t *testing.T) {
	p := Describe(scoresTable(t))
	if p.Rows != 4 || p.Cols != 4 {
		t.Fatalf("shape = %dx%d", p.Rows, p.Cols)
	}
	if p.NullCells != 2 {
		t.Fatalf("null cells = %d, want 2", p.NullCells)
	}
	if p.DuplicateRows != 0 {
		t.Fatalf("duplicates = %d", p.DuplicateRows)
	}
	want := []ColumnInfo{
		{Name: "id", Dtype: "int64", NonNull: 4},
		{Name: "name", Dtype: "object", NonNull: 3, Null: 1},
		{Name: "score", Dtype: "float64", NonNull: 3, Null: 1},
		{Name: "bonus", Dtype: "float64", NonNull: 4},
	}
	for i, w := range want {
		if p.Columns[i] != w {
			t.Fatalf("column %d = %#v, want %#v", i, p.Columns[i], w)
		}
	}
}

func TestDescribeNumeric(t *testing.T) {
	p := Describe(scoresTable(t))
	if len(p.Numeric) != 3 {
		t.Fatalf("numeric summaries = %d, want 3", len(p.Numeric))
	}
	score := p.Numeric[1]
	if score.Name != "score" || score.Count != 3 {
		t.Fatalf("score summary = %#v", score)
	}
	vals := []float64{90, 85.5, 70}
	mean := (90 + 85.5 + 70) / 3
	var ss float64
	for _, v := range vals {
		ss += (v - mean) * (v - mean)
	}
	if !almostEqual(score.Mean, mean, 1e-9) || !almostEqual(score.Std, math.Sqrt(ss/2), 1e-9) {
		t.Fatalf("mean/std = %f/%f", score.Mean, score.Std)
	}
	if score.Min != 70 || score.Max != 90 || score.Q50 != 85.5 {
		t.Fatalf("min/median/max = %f/%f/%f", score.Min, score.Q50, score.Max)
	}
	// sorted 70, 85.5, 90: 25% sits halfway between 70 and 85.5
	if !almostEqual(score.Q25, 77.75, 1e-9) || !almostEqual(score.Q75, 87.75, 1e-9) {
		t.Fatalf("quartiles = %f/%f", score.Q25, score.Q75)
	}
}

func TestDescribeCategoricalTieGoesToFirstSeen(t *testing.T) {
	tb := table.MustNew(table.MustColumnOf("c", table.KindText, "y", "x", "x", "y", nil))
	p := Describe(tb)
	if !p.HasCategorical() {
		t.Fatalf("expected categorical summary")
	}
	c := p.Categorical[0]
	if c.Count != 4 || c.Unique != 2 || c.Top != "y" || c.Freq != 2 {
		t.Fatalf("categorical = %#v", c)
	}
}

func TestDescribeNumericOnlyHasNoCategorical(t *testing.T) {
	tb := table.MustNew(table.MustColumnOf("n", table.KindInt, 1, 2))
	if Describe(tb).HasCategorical() {
		t.Fatalf("numeric-only table reported categorical features")
	}
}

func TestDescribeZeroRows(t *testing.T) {
	tb := table.MustNew(
		table.NewColumn("n", table.KindFloat, 0),
		table.NewColumn("s", table.KindText, 0),
	)
	p := Describe(tb)
	if p.Rows != 0 || p.NullCells != 0 || p.DuplicateRows != 0 {
		t.Fatalf("zero-row profile = %#v", p)
	}
	if p.Numeric[0].Count != 0 || !math.IsNaN(p.Numeric[0].Mean) {
		t.Fatalf("zero-row numeric = %#v", p.Numeric[0])
	}
	if p.Categorical[0].Count != 0 || p.Categorical[0].Top != "" {
		t.Fatalf("zero-row categorical = %#v", p.Categorical[0])
	}
	// NaN statistics must still encode.
	b, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), `"mean":null`) {
		t.Fatalf("json = %s", b)
	}
}

func TestDescribeDoesNotMutate(t *testing.T) {
	tb := scoresTable(t)
	before := tb.Records()
	_ = Describe(tb)
	_ = Correlation(tb)
	after := tb.Records()
	for i := range before {
		for j := range before[i] {
			if before[i][j] != after[i][j] {
				t.Fatalf("cell %d,%d changed", i, j)
			}
		}
	}
}

func TestStdOfSingleValueIsNaN(t *testing.T) {
	tb := table.MustNew(table.MustColumnOf("n", table.KindInt, 5))
	s := Describe(tb).Numeric[0]
	if s.Count != 1 || s.Mean != 5 || !math.IsNaN(s.Std) {
		t.Fatalf("single value summary = %#v", s)
	}
}

func TestMode(t *testing.T) {
	top, freq := Mode([]string{"b", "a", "a", "b", "c"})
	if top != "b" || freq != 2 {
		t.Fatalf("Mode = %q(%d), want b(2)", top, freq)
	}
	if top, freq := Mode(nil); top != "" || freq != 0 {
		t.Fatalf("Mode(nil) = %q(%d)", top, freq)
	}
}
