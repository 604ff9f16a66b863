package cleaning

import (
	"errors"
	"reflect"
	"testing"

	"github.com/KaramelBytes/tidyloom/internal/loader"
	"github.com/KaramelBytes/tidyloom/internal/table"
)

func mixed(t *testing.T) *table.Table {
	t.Helper()
	tb, err := table.New(
		table.MustColumnOf("a", table.KindFloat, 10.0, nil, 30.0, 10.0),
		table.MustColumnOf("b", table.KindText, "x", "y", nil, "x"),
		table.MustColumnOf("n", table.KindInt, 1, 2, 3, 1),
	)
	if err != nil {
		t.Fatalf("table: %v", err)
	}
	return tb
}

func mustApply(t *testing.T, tb *table.Table, op Op) *Outcome {
	t.Helper()
	out, err := Apply(tb, op)
	if err != nil {
		t.Fatalf("%s: %v", op, err)
	}
	return out
}

func TestDropNulls(t *testing.T) {
	tb := mixed(t)
	out := mustApply(t, tb, DropNulls)
	if out.RowsBefore != 4 || out.RowsAfter != 2 || out.NullsAfter != 0 {
		t.Fatalf("outcome = %+v", out)
	}
	want := [][]string{{"10.0", "x", "1"}, {"10.0", "x", "1"}}
	if got := out.Table.Records(); !reflect.DeepEqual(got, want) {
		t.Fatalf("records = %v, want %v", got, want)
	}
	again := mustApply(t, out.Table, DropNulls)
	if !reflect.DeepEqual(again.Table.Records(), out.Table.Records()) {
		t.Fatalf("drop-nulls is not idempotent")
	}
	if tb.NullCount() != 2 {
		t.Fatalf("input mutated")
	}
	if out.Message != "Missing values removed!" {
		t.Fatalf("message = %q", out.Message)
	}
}

func TestImputeMeanScenario(t *testing.T) {
	tb, err := loader.Load("a.csv", []byte("a,b\n10,x\n,y\n30,\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	out := mustApply(t, tb, Impute)
	a, _ := out.Table.Column("a")
	if a.Kind != table.KindFloat || a.Float(1) != 20 {
		t.Fatalf("a = %v %v", a.Kind, a.Value(1))
	}
	b, _ := out.Table.Column("b")
	if b.Text(2) != "x" {
		t.Fatalf("b[2] = %q, want first-seen mode x", b.Text(2))
	}
	if out.NullsAfter != 0 || len(out.Unresolved) != 0 {
		t.Fatalf("outcome = %+v", out)
	}
	again := mustApply(t, out.Table, Impute)
	if !reflect.DeepEqual(again.Table.Records(), out.Table.Records()) {
		t.Fatalf("impute is not idempotent")
	}
}

func TestImputeIntColumnBecomesFloat(t *testing.T) {
	tb := table.MustNew(table.MustColumnOf("n", table.KindInt, 1, nil, 4))
	out := mustApply(t, tb, Impute)
	n, _ := out.Table.Column("n")
	if n.Kind != table.KindFloat || n.Float(1) != 2.5 {
		t.Fatalf("n = %v %v", n.Kind, n.Value(1))
	}
	orig, _ := tb.Column("n")
	if orig.Kind != table.KindInt || !orig.IsNull(1) {
		t.Fatalf("input mutated")
	}
}

func TestImputeAllNullColumnIsUnresolved(t *testing.T) {
	tb := table.MustNew(
		table.MustColumnOf("empty", table.KindText, nil, nil),
		table.MustColumnOf("v", table.KindFloat, 1.0, nil),
	)
	out := mustApply(t, tb, Impute)
	if !reflect.DeepEqual(out.Unresolved, []string{"empty"}) {
		t.Fatalf("unresolved = %v", out.Unresolved)
	}
	if out.NullsAfter != 2 {
		t.Fatalf("nulls after = %d, want 2", out.NullsAfter)
	}
}

func TestImputeBoolColumnUsesMode(t *testing.T) {
	tb := table.MustNew(table.MustColumnOf("f", table.KindBool, false, true, true, nil))
	out := mustApply(t, tb, Impute)
	f, _ := out.Table.Column("f")
	if f.Kind != table.KindBool || !f.Bool(3) {
		t.Fatalf("f = %v %v", f.Kind, f.Value(3))
	}
}

func TestDropDuplicatesScenario(t *testing.T) {
	// 10 rows: rows 7..9 repeat rows 0..2.
	vals := []int{1, 2, 3, 4, 5, 6, 7, 1, 2, 3}
	ids := make([]any, len(vals))
	names := make([]any, len(vals))
	for i, v := range vals {
		ids[i] = v
		names[i] = string(rune('a' + v))
	}
	tb := table.MustNew(
		table.MustColumnOf("id", table.KindInt, ids...),
		table.MustColumnOf("name", table.KindText, names...),
	)
	out := mustApply(t, tb, DropDuplicates)
	if out.RowsAfter != 7 {
		t.Fatalf("rows after = %d, want 7", out.RowsAfter)
	}
	id, _ := out.Table.Column("id")
	for i := 0; i < 7; i++ {
		if id.Int(i) != int64(i+1) {
			t.Fatalf("order changed at %d: %d", i, id.Int(i))
		}
	}
	if out.Table.DuplicateCount() != 0 {
		t.Fatalf("duplicates remain")
	}
	again := mustApply(t, out.Table, DropDuplicates)
	if again.RowsAfter != 7 {
		t.Fatalf("drop-duplicates is not idempotent")
	}
}

func TestDropDuplicatesTreatsNullsAsEqual(t *testing.T) {
	tb := table.MustNew(table.MustColumnOf("v", table.KindFloat, nil, nil, 1.0))
	out := mustApply(t, tb, DropDuplicates)
	if out.RowsAfter != 2 {
		t.Fatalf("rows after = %d, want 2", out.RowsAfter)
	}
}

func TestDropDuplicatesKeepsRowsWithSeparatorBytes(t *testing.T) {
	tb := table.MustNew(
		table.MustColumnOf("a", table.KindText, "x\x1f\x01y", "x"),
		table.MustColumnOf("b", table.KindText, nil, "y\x1f\x00"),
	)
	out := mustApply(t, tb, DropDuplicates)
	if out.RowsAfter != 2 {
		t.Fatalf("rows after = %d, want 2", out.RowsAfter)
	}
}

func TestApplyErrors(t *testing.T) {
	var ce *Error
	if _, err := Apply(nil, DropNulls); !errors.As(err, &ce) {
		t.Fatalf("nil table: want *Error, got %v", err)
	}
	if _, err := Apply(mixed(t), Op(42)); !errors.As(err, &ce) || !errors.Is(err, ErrUnknownOp) {
		t.Fatalf("unknown op: got %v", err)
	}
}

func TestParseOp(t *testing.T) {
	for _, op := range Ops() {
		got, err := ParseOp(op.String())
		if err != nil || got != op {
			t.Fatalf("ParseOp(%q) = %v, %v", op.String(), got, err)
		}
	}
	if op, err := ParseOp("Drop_Duplicates"); err != nil || op != DropDuplicates {
		t.Fatalf("ParseOp should normalise case and underscores: %v %v", op, err)
	}
	if _, err := ParseOp("shuffle"); !errors.Is(err, ErrUnknownOp) {
		t.Fatalf("want ErrUnknownOp, got %v", err)
	}
}
