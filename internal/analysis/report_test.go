package analysis

import (
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/KaramelBytes/tidyloom/internal/table"
)

func TestCorrelation(t *testing.T) {
	tb := table.MustNew(
		table.MustColumnOf("x", table.KindInt, 1, 2, 3, 4),
		table.MustColumnOf("up", table.KindFloat, 2.0, 4.0, 6.0, nil),
		table.MustColumnOf("down", table.KindFloat, 8.0, 6.0, 4.0, 2.0),
		table.MustColumnOf("flat", table.KindFloat, 1.0, 1.0, 1.0, 1.0),
		table.MustColumnOf("label", table.KindText, "a", "b", "c", "d"),
	)
	m := Correlation(tb)
	if strings.Join(m.Columns, ",") != "x,up,down,flat" {
		t.Fatalf("columns = %v", m.Columns)
	}
	if !almostEqual(m.Values[0][1], 1, 1e-12) {
		t.Fatalf("x~up = %f, want 1 over complete pairs", m.Values[0][1])
	}
	if !almostEqual(m.Values[0][2], -1, 1e-12) {
		t.Fatalf("x~down = %f, want -1", m.Values[0][2])
	}
	if !math.IsNaN(m.Values[0][3]) || !math.IsNaN(m.Values[3][3]) {
		t.Fatalf("constant column should give NaN, got %f / %f", m.Values[0][3], m.Values[3][3])
	}
	if m.Values[1][1] != 1 || m.Values[1][0] != m.Values[0][1] {
		t.Fatalf("matrix not symmetric with unit diagonal")
	}

	pairs := m.TopPairs(2)
	if len(pairs) != 2 {
		t.Fatalf("top pairs = %#v", pairs)
	}
	for _, p := range pairs {
		if math.Abs(p.R) != 1 {
			t.Fatalf("unexpected pair %#v", p)
		}
	}
	if all := m.TopPairs(0); len(all) != 3 {
		t.Fatalf("defined pairs = %d, want 3", len(all))
	}
}

func TestAnalyzeMarkdown(t *testing.T) {
	opt := DefaultOptions()
	opt.SampleRows = 2
	opt.Correlations = true
	rep := Analyze("scores.csv", scoresTable(t), opt)
	if len(rep.Samples) != 2 {
		t.Fatalf("samples = %d, want 2", len(rep.Samples))
	}
	md := rep.Markdown()
	for _, want := range []string{
		"[DATASET SUMMARY]",
		"File: scores.csv",
		"Rows: 4",
		"Missing cells: 2",
		"[SCHEMA]",
		"- name: object (non-null 3, missing 25.0%)",
		"[NUMERIC SUMMARY]",
		"- score: count 3",
		"[CATEGORICAL SUMMARY]",
		"- name: count 3, unique 2, top a(2)",
		"[CORRELATIONS]",
		"[HEAD AND SAMPLE ROWS]",
		"| id | name | score | bonus |",
		"| 1 | a | 90.0 | 9.0 |",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestAnalyzeMarkdownNumericOnly(t *testing.T) {
	tb := table.MustNew(table.MustColumnOf("n", table.KindInt, 1, 1))
	md := Analyze("n.csv", tb, DefaultOptions()).Markdown()
	if !strings.Contains(md, "No non-numerical features found") {
		t.Fatalf("markdown missing categorical notice:\n%s", md)
	}
	if !strings.Contains(md, "[NOTES]") || !strings.Contains(md, "1 duplicate rows") {
		t.Fatalf("markdown missing duplicate note:\n%s", md)
	}
}

func TestAnalyzeMarkdownTruncatesOnRunes(t *testing.T) {
	long := strings.Repeat("é", 90)
	tb := table.MustNew(table.MustColumnOf("s", table.KindText, long))
	md := Analyze("s.csv", tb, DefaultOptions()).Markdown()
	if !utf8.ValidString(md) {
		t.Fatalf("markdown is not valid UTF-8")
	}
	if !strings.Contains(md, "| "+strings.Repeat("é", 77)+"... |") {
		t.Fatalf("sample cell not truncated to 77 runes:\n%s", md)
	}
}

func TestInfo(t *testing.T) {
	info := Describe(scoresTable(t)).Info()
	for _, want := range []string{
		"RangeIndex: 4 entries, 0 to 3",
		"Data columns (total 4 columns):",
		"Non-Null Count",
		"3 non-null",
		"dtypes: float64(2), int64(1), object(1)",
	} {
		if !strings.Contains(info, want) {
			t.Fatalf("info missing %q:\n%s", want, info)
		}
	}
}
