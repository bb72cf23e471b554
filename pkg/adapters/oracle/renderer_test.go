package oracle

import (
	"errors"
	"testing"
	"time"

	"github.com/ruslano69/sqlbridge/pkg/adapters"
	"github.com/ruslano69/sqlbridge/pkg/core/canonical"
	"github.com/ruslano69/sqlbridge/pkg/dialect"
)

func mustTimestamp(t *testing.T, s string) canonical.Value {
	t.Helper()
	v, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		t.Fatalf("bad test timestamp %q: %v", s, err)
	}
	return canonical.Timestamp(v)
}

// Без нативных массивов Builder обязан рендерить literal-list
func TestSetMembershipLiteralList(t *testing.T) {
	builder := dialect.NewBuilder(Capabilities, NewRenderer())

	sql, err := builder.Render(dialect.SetMembershipFilter{
		Column: "as_of_date",
		Values: []canonical.Value{
			mustTimestamp(t, "2016-01-01"),
			mustTimestamp(t, "2016-02-01"),
		},
	})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	want := `"as_of_date" IN ('2016-01-01 00:00:00', '2016-02-01 00:00:00')`
	if sql != want {
		t.Errorf("Render = %s\nwant %s", sql, want)
	}
}

func TestSetMembershipEmpty(t *testing.T) {
	builder := dialect.NewBuilder(Capabilities, NewRenderer())

	sql, err := builder.Render(dialect.SetMembershipFilter{Column: "as_of_date"})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	want := `"as_of_date" IN (SELECT NULL FROM DUAL WHERE 1=0)`
	if sql != want {
		t.Errorf("Render = %s, want %s", sql, want)
	}
}

// Субсекундный timestamp в IN-списке сохраняет дробные секунды
func TestSetMembershipSubSecondTimestamp(t *testing.T) {
	ts, err := time.ParseInLocation(
		"2006-01-02 15:04:05.000", "2016-01-01 10:30:00.250", time.UTC)
	if err != nil {
		t.Fatalf("bad test timestamp: %v", err)
	}

	builder := dialect.NewBuilder(Capabilities, NewRenderer())
	sql, err := builder.Render(dialect.SetMembershipFilter{
		Column: "as_of_date",
		Values: []canonical.Value{canonical.Timestamp(ts)},
	})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	want := `"as_of_date" IN (TO_TIMESTAMP('2016-01-01 10:30:00.250000000', 'YYYY-MM-DD HH24:MI:SS.FF9'))`
	if sql != want {
		t.Errorf("Render = %s\nwant %s", sql, want)
	}
}

// NUMBER-колонки уточняются по precision/scale, не по имени типа:
// NUMBER(1,0) - BOOLEAN, scale 0 - INTEGER, иначе FLOAT
func TestNumberKindRefinement(t *testing.T) {
	tests := []struct {
		precision, scale int64
		want             canonical.Kind
	}{
		{1, 0, canonical.KindBoolean},
		{19, 0, canonical.KindInteger},
		{38, 0, canonical.KindInteger},
		{10, 2, canonical.KindFloat},
	}
	for _, tt := range tests {
		if got := numberKind(tt.precision, tt.scale); got != tt.want {
			t.Errorf("numberKind(%d, %d) = %s, want %s",
				tt.precision, tt.scale, got, tt.want)
		}
	}

	m := NewTypeMapper()
	if _, _, ok := m.KindFromDatabaseType("NUMBER"); ok {
		t.Error("NUMBER must not resolve from the type name alone")
	}
	if kind, _, ok := m.KindFromDatabaseType("INTEGER"); !ok || kind != canonical.KindInteger {
		t.Errorf("KindFromDatabaseType(INTEGER) = %s, %v", kind, ok)
	}
	if !isNumberType("number") || isNumberType("CLOB") {
		t.Error("isNumberType misclassifies")
	}
}

func TestArrayConstructorUnsupported(t *testing.T) {
	r := NewRenderer()
	_, err := r.ArrayConstructor([]canonical.Value{canonical.Integer(1)})
	if err == nil {
		t.Fatal("expected error for native array constructor")
	}
	var ute *dialect.UnsupportedValueTypeError
	if !errors.As(err, &ute) {
		t.Errorf("expected UnsupportedValueTypeError, got %T", err)
	}
}

func TestDialectFragments(t *testing.T) {
	r := NewRenderer()

	if got := r.StructuredField("config", "model_type"); got != `JSON_VALUE("config", '$.model_type')` {
		t.Errorf("StructuredField = %s", got)
	}
	if got := r.BooleanPredicate("active"); got != `"active" = 1` {
		t.Errorf("BooleanPredicate = %s", got)
	}
	if got := r.LimitQuery("SELECT * FROM models", 5); got != "SELECT * FROM (SELECT * FROM models) WHERE ROWNUM <= 5" {
		t.Errorf("LimitQuery = %s", got)
	}
	if got := r.IntervalLiteral("3 days"); got != "INTERVAL '3' DAY" {
		t.Errorf("IntervalLiteral = %s", got)
	}
	if got := r.IntervalLiteral("12 hours"); got != "INTERVAL '12' HOUR" {
		t.Errorf("IntervalLiteral = %s", got)
	}
}

func TestArrayContainsLikeProbe(t *testing.T) {
	r := NewRenderer()

	got, err := r.ArrayContains("feature_names", canonical.Text("age"))
	if err != nil {
		t.Fatalf("ArrayContains failed: %v", err)
	}
	want := `(',' || "feature_names" || ',') LIKE '%,age,%' ESCAPE '\'`
	if got != want {
		t.Errorf("ArrayContains = %s\nwant %s", got, want)
	}
}

func TestBooleanLiteralsIntegerDomain(t *testing.T) {
	r := NewRenderer()

	got, err := r.Literal(canonical.Boolean(true))
	if err != nil || got != "1" {
		t.Errorf("Literal(true) = %s, %v", got, err)
	}
	got, err = r.Literal(canonical.Boolean(false))
	if err != nil || got != "0" {
		t.Errorf("Literal(false) = %s, %v", got, err)
	}
}

// Коллекция рендерится текстовой кодировкой с экранированием разделителя
func TestSequenceLiteralTextEncoded(t *testing.T) {
	r := NewRenderer()

	got, err := r.Literal(canonical.Sequence(
		canonical.Text("a,b"), canonical.Text("c")))
	if err != nil {
		t.Fatalf("Literal failed: %v", err)
	}
	want := `'a\,b,c'`
	if got != want {
		t.Errorf("Literal = %s, want %s", got, want)
	}
}

func TestIntegerBooleanDomainClosed(t *testing.T) {
	m := NewTypeMapper()
	col := adapters.Column{Name: "active", Kind: canonical.KindBoolean}

	v, err := m.FromNative(int64(1), col)
	if err != nil || !*v.BoolValue {
		t.Errorf("FromNative(1) = %v, %v", v, err)
	}
	v, err = m.FromNative(int64(0), col)
	if err != nil || *v.BoolValue {
		t.Errorf("FromNative(0) = %v, %v", v, err)
	}

	_, err = m.FromNative(int64(2), col)
	if err == nil {
		t.Fatal("expected error for out-of-domain boolean")
	}
	var ie *canonical.IntegrityError
	if !errors.As(err, &ie) {
		t.Errorf("expected IntegrityError, got %T", err)
	}
}

func TestSequenceRoundTripThroughText(t *testing.T) {
	m := NewTypeMapper()
	seq := canonical.Sequence(canonical.Text("age"), canonical.Text("income,net"))

	native, err := m.NativeValue(seq)
	if err != nil {
		t.Fatalf("NativeValue failed: %v", err)
	}

	col := adapters.Column{Name: "feature_names",
		Kind: canonical.KindSequence, Elem: canonical.KindText}
	back, err := m.FromNative(native, col)
	if err != nil {
		t.Fatalf("FromNative failed: %v", err)
	}
	if !canonical.Equal(seq, back) {
		t.Error("sequence round-trip through text encoding mismatch")
	}
}
