package postgres

import (
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

func TestSetMembershipNativeArray(t *testing.T) {
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

	want := `"as_of_date" IN (SELECT UNNEST(ARRAY['2016-01-01 00:00:00', '2016-02-01 00:00:00']::timestamp[]))`
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

	want := `"as_of_date" IN (SELECT NULL WHERE FALSE)`
	if sql != want {
		t.Errorf("Render = %s, want %s", sql, want)
	}
}

// За потолком литералов Builder переключается на список литералов
func TestSetMembershipCeilingFallback(t *testing.T) {
	builder := dialect.NewBuilder(Capabilities, NewRenderer())
	builder.SetLiteralCeiling(2)

	sql, err := builder.Render(dialect.SetMembershipFilter{
		Column: "id",
		Values: []canonical.Value{
			canonical.Integer(1), canonical.Integer(2), canonical.Integer(3),
		},
	})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	want := `"id" IN (1, 2, 3)`
	if sql != want {
		t.Errorf("Render = %s, want %s", sql, want)
	}
}

func TestLiterals(t *testing.T) {
	r := NewRenderer()

	tests := []struct {
		name  string
		value canonical.Value
		want  string
	}{
		{"integer", canonical.Integer(42), "42"},
		{"float", canonical.Float(0.5), "0.5"},
		{"float whole", canonical.Float(2), "2.0"},
		{"text", canonical.Text("rf"), "'rf'"},
		{"text with quote", canonical.Text("o'brien"), "'o''brien'"},
		{"bool true", canonical.Boolean(true), "TRUE"},
		{"bool false", canonical.Boolean(false), "FALSE"},
		{"null", canonical.Null(canonical.KindText), "NULL"},
	}

	for _, tt := range tests {
		got, err := r.Literal(tt.value)
		if err != nil {
			t.Errorf("%s: Literal failed: %v", tt.name, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%s: Literal = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestStructuredFieldAndPredicates(t *testing.T) {
	r := NewRenderer()

	if got := r.StructuredField("config", "model_type"); got != `"config" ->> 'model_type'` {
		t.Errorf("StructuredField = %s", got)
	}
	if got := r.BooleanPredicate("active"); got != `"active"` {
		t.Errorf("BooleanPredicate = %s", got)
	}

	got, err := r.ArrayContains("feature_names", canonical.Text("age"))
	if err != nil {
		t.Fatalf("ArrayContains failed: %v", err)
	}
	if got != `'age' = ANY("feature_names")` {
		t.Errorf("ArrayContains = %s", got)
	}
}

func TestLimitAndInterval(t *testing.T) {
	r := NewRenderer()

	if got := r.LimitQuery("SELECT * FROM models", 5); got != "SELECT * FROM models LIMIT 5" {
		t.Errorf("LimitQuery = %s", got)
	}
	if got := r.IntervalLiteral("3 days"); got != "'3 days'::interval" {
		t.Errorf("IntervalLiteral = %s", got)
	}
}

func TestTypeMapperSQLTypes(t *testing.T) {
	m := NewTypeMapper()

	tests := []struct {
		col  string
		kind canonical.Kind
		elem canonical.Kind
		want string
	}{
		{"id", canonical.KindInteger, "", "BIGINT"},
		{"score", canonical.KindFloat, "", "DOUBLE PRECISION"},
		{"config", canonical.KindPayload, "", "JSONB"},
		{"dates", canonical.KindSequence, canonical.KindTimestamp, "TIMESTAMP[]"},
		{"names", canonical.KindSequence, canonical.KindText, "TEXT[]"},
	}

	for _, tt := range tests {
		got := m.SQLType(adapters.Column{Name: tt.col, Kind: tt.kind, Elem: tt.elem})
		if got != tt.want {
			t.Errorf("SQLType(%s) = %s, want %s", tt.col, got, tt.want)
		}
	}
}
