package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/KaramelBytes/tidyloom/internal/table"
)

// Options controls which optional sections a Report carries.
type Options struct {
	// SampleRows determines how many leading rows to include in the report.
	SampleRows int
	// Correlations computes Pearson correlations among numeric columns.
	Correlations bool
	// MaxPairs caps the correlation pairs listed in Markdown.
	MaxPairs int
}

// DefaultOptions returns reasonable defaults for dataset analysis.
func DefaultOptions() Options {
	return Options{SampleRows: 5, MaxPairs: 10}
}

// Report is a markdown-friendly analysis of a tabular dataset.
type Report struct {
	Name     string      `json:"name"`
	Profile  *Profile    `json:"profile"`
	Corr     *CorrMatrix `json:"correlation,omitempty"`
	Header   []string    `json:"header"`
	Samples  [][]string  `json:"samples"`
	Warnings []string    `json:"warnings,omitempty"`

	maxPairs int
}

// Analyze profiles t and gathers the optional report sections.
func Analyze(name string, t *table.Table, opt Options) *Report {
	rep := &Report{Name: name, Profile: Describe(t), Header: t.Names(), maxPairs: opt.MaxPairs}
	sampleRows := opt.SampleRows
	if sampleRows <= 0 {
		sampleRows = 5
	}
	rep.Samples = t.Head(sampleRows).Records()
	if opt.Correlations {
		rep.Corr = Correlation(t)
		if len(rep.Corr.Columns) < 2 {
			rep.Warnings = append(rep.Warnings, "correlations need at least two numeric columns")
		}
	}
	for _, n := range rep.Profile.Numeric {
		if n.Count == 0 && rep.Profile.Rows > 0 {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("column %s has no values", n.Name))
		}
	}
	if rep.Profile.DuplicateRows > 0 {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("%d duplicate rows", rep.Profile.DuplicateRows))
	}
	return rep
}

// Info renders the column/dtype block the dashboards print under "Info".
func (p *Profile) Info() string {
	var b strings.Builder
	if p.Rows == 0 {
		b.WriteString("RangeIndex: 0 entries\n")
	} else {
		b.WriteString(fmt.Sprintf("RangeIndex: %d entries, 0 to %d\n", p.Rows, p.Rows-1))
	}
	b.WriteString(fmt.Sprintf("Data columns (total %d columns):\n", p.Cols))

	nameW := len("Column")
	countW := len("Non-Null Count")
	for _, c := range p.Columns {
		nameW = maxInt(nameW, len(c.Name))
		countW = maxInt(countW, len(fmt.Sprintf("%d non-null", c.NonNull)))
	}
	idxW := maxInt(3, len(fmt.Sprint(len(p.Columns))))
	row := func(idx, name, count, dtype string) {
		b.WriteString(fmt.Sprintf(" %-*s %-*s  %-*s  %s\n", idxW, idx, nameW, name, countW, count, dtype))
	}
	row("#", "Column", "Non-Null Count", "Dtype")
	row(strings.Repeat("-", idxW), strings.Repeat("-", nameW), strings.Repeat("-", countW), "-----")
	dtypes := map[string]int{}
	for i, c := range p.Columns {
		row(fmt.Sprint(i), c.Name, fmt.Sprintf("%d non-null", c.NonNull), c.Dtype)
		dtypes[c.Dtype]++
	}
	names := make([]string, 0, len(dtypes))
	for k := range dtypes {
		names = append(names, k)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, k := range names {
		parts[i] = fmt.Sprintf("%s(%d)", k, dtypes[k])
	}
	b.WriteString("dtypes: " + strings.Join(parts, ", ") + "\n")
	return b.String()
}

// Markdown renders a compact report suitable for terminals or standalone docs.
func (r *Report) Markdown() string {
	p := r.Profile
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", p.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n", p.Cols))
	b.WriteString(fmt.Sprintf("Missing cells: %d\n", p.NullCells))
	b.WriteString(fmt.Sprintf("Duplicate rows: %d\n\n", p.DuplicateRows))

	b.WriteString("[SCHEMA]\n")
	for _, c := range p.Columns {
		missPct := 0.0
		if total := c.NonNull + c.Null; total > 0 {
			missPct = float64(c.Null) * 100.0 / float64(total)
		}
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %.1f%%)\n", safeName(c.Name), c.Dtype, c.NonNull, missPct))
	}

	if len(p.Numeric) > 0 {
		b.WriteString("\n[NUMERIC SUMMARY]\n")
		for _, n := range p.Numeric {
			b.WriteString(fmt.Sprintf("- %s: count %d, mean %s, std %s, min %s, 25%% %s, 50%% %s, 75%% %s, max %s\n",
				safeName(n.Name), n.Count, num(n.Mean), num(n.Std), num(n.Min), num(n.Q25), num(n.Q50), num(n.Q75), num(n.Max)))
		}
	}

	b.WriteString("\n[CATEGORICAL SUMMARY]\n")
	if !p.HasCategorical() {
		b.WriteString("No non-numerical features found\n")
	}
	for _, c := range p.Categorical {
		b.WriteString(fmt.Sprintf("- %s: count %d, unique %d", safeName(c.Name), c.Count, c.Unique))
		if c.Count > 0 {
			b.WriteString(fmt.Sprintf(", top %s(%d)", safeVal(c.Top), c.Freq))
		}
		b.WriteString("\n")
	}

	if r.Corr != nil && len(r.Corr.Columns) >= 2 {
		b.WriteString("\n[CORRELATIONS]\n")
		maxp := r.maxPairs
		if maxp <= 0 {
			maxp = 10
		}
		pairs := r.Corr.TopPairs(maxp)
		if len(pairs) == 0 {
			b.WriteString("- no defined pairs\n")
		}
		for _, pr := range pairs {
			b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.3f\n", pr.A, pr.B, pr.R))
		}
	}

	if len(r.Samples) > 0 {
		b.WriteString("\n[HEAD AND SAMPLE ROWS]\n")
		b.WriteString("| ")
		for i, h := range r.Header {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(safeName(h))
		}
		b.WriteString(" |\n| ")
		for i := range r.Header {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString("---")
		}
		b.WriteString(" |\n")
		for _, row := range r.Samples {
			b.WriteString("| ")
			for i := range r.Header {
				if i > 0 {
					b.WriteString(" | ")
				}
				val := ""
				if i < len(row) {
					val = row[i]
				}
				if runes := []rune(val); len(runes) > 80 {
					val = string(runes[:77]) + "..."
				}
				b.WriteString(safeVal(val))
			}
			b.WriteString(" |\n")
		}
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func num(f float64) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	return fmt.Sprintf("%.4g", f)
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
