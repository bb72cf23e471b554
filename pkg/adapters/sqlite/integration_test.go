package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/ruslano69/sqlbridge/pkg/adapters"
	"github.com/ruslano69/sqlbridge/pkg/core/canonical"
	"github.com/ruslano69/sqlbridge/pkg/dialect"
)

func newTestAdapter(t *testing.T) *Adapter {
	t.Helper()
	a := &Adapter{}
	err := a.Connect(context.Background(), adapters.Config{
		Type: "sqlite",
		DSN:  ":memory:",
	})
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	t.Cleanup(func() { a.Close(context.Background()) })
	return a
}

func testResultSet(t *testing.T) *adapters.ResultSet {
	t.Helper()

	ts, err := time.ParseInLocation("2006-01-02 15:04:05", "2016-01-01 10:30:00", time.UTC)
	if err != nil {
		t.Fatalf("bad test timestamp: %v", err)
	}
	payload, err := canonical.ParsePayload(`{"model":"rf","depth":5}`)
	if err != nil {
		t.Fatalf("bad test payload: %v", err)
	}

	return &adapters.ResultSet{
		Columns: []adapters.Column{
			{Name: "id", Kind: canonical.KindInteger, Key: true},
			{Name: "score", Kind: canonical.KindFloat},
			{Name: "label", Kind: canonical.KindText},
			{Name: "active", Kind: canonical.KindBoolean},
			{Name: "as_of_date", Kind: canonical.KindTimestamp},
			{Name: "config", Kind: canonical.KindPayload},
			{Name: "features", Kind: canonical.KindSequence, Elem: canonical.KindText},
		},
		Rows: [][]canonical.Value{
			{
				canonical.Integer(1),
				canonical.Float(0.85),
				canonical.Text("entity,one"),
				canonical.Boolean(true),
				canonical.Timestamp(ts),
				canonical.StructuredPayload(payload),
				canonical.Sequence(canonical.Text("age"), canonical.Text("income,net")),
			},
			{
				canonical.Integer(2),
				canonical.Null(canonical.KindFloat),
				canonical.Text(""),
				canonical.Boolean(false),
				canonical.Null(canonical.KindTimestamp),
				canonical.Null(canonical.KindPayload),
				canonical.Sequence(),
			},
		},
	}
}

// Полный цикл: ReplaceTable -> Execute -> канонические значения
// идентичны исходным для всех типов
func TestReplaceTableRoundTrip(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()
	rs := testResultSet(t)

	if err := a.ReplaceTable(ctx, "predictions", rs); err != nil {
		t.Fatalf("ReplaceTable failed: %v", err)
	}

	exists, err := a.TableExists(ctx, "predictions")
	if err != nil || !exists {
		t.Fatalf("TableExists = %v, %v", exists, err)
	}

	count, err := a.RowCount(ctx, "predictions")
	if err != nil || count != 2 {
		t.Fatalf("RowCount = %d, %v", count, err)
	}

	got, err := a.Execute(ctx, `SELECT * FROM predictions ORDER BY id`)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if len(got.Rows) != len(rs.Rows) {
		t.Fatalf("expected %d rows, got %d", len(rs.Rows), len(got.Rows))
	}
	for i := range rs.Rows {
		for j := range rs.Columns {
			want := rs.Rows[i][j]
			have, ok := got.Value(i, rs.Columns[j].Name)
			if !ok {
				t.Fatalf("column %s missing in result", rs.Columns[j].Name)
			}
			if !canonical.Equal(want, have) {
				t.Errorf("row %d column %s: round-trip mismatch", i, rs.Columns[j].Name)
			}
		}
	}
}

// Повторный перенос в ту же таблицу дает идентичное состояние
func TestReplaceTableIdempotent(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()
	rs := testResultSet(t)

	for i := 0; i < 2; i++ {
		if err := a.ReplaceTable(ctx, "predictions", rs); err != nil {
			t.Fatalf("ReplaceTable #%d failed: %v", i+1, err)
		}
	}

	count, err := a.RowCount(ctx, "predictions")
	if err != nil || count != 2 {
		t.Fatalf("RowCount = %d, %v", count, err)
	}
}

// Set-membership предикат фильтрует строки на integer-boolean профиле
func TestExecuteWithSetMembership(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()

	if err := a.ReplaceTable(ctx, "predictions", testResultSet(t)); err != nil {
		t.Fatalf("ReplaceTable failed: %v", err)
	}

	pred, err := a.FormatSetMembership("id", []canonical.Value{
		canonical.Integer(1), canonical.Integer(99),
	})
	if err != nil {
		t.Fatalf("FormatSetMembership failed: %v", err)
	}

	got, err := a.Execute(ctx, "SELECT id FROM predictions WHERE "+pred)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if got.RowCount() != 1 {
		t.Fatalf("expected 1 row, got %d", got.RowCount())
	}
	if v, _ := got.Value(0, "id"); *v.IntValue != 1 {
		t.Errorf("expected id=1, got %d", *v.IntValue)
	}
}

// Пустой set-membership список не возвращает ни одной строки
func TestExecuteWithEmptySetMembership(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()

	if err := a.ReplaceTable(ctx, "predictions", testResultSet(t)); err != nil {
		t.Fatalf("ReplaceTable failed: %v", err)
	}

	pred, err := a.FormatSetMembership("id", nil)
	if err != nil {
		t.Fatalf("FormatSetMembership failed: %v", err)
	}

	got, err := a.Execute(ctx, "SELECT id FROM predictions WHERE "+pred)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if got.RowCount() != 0 {
		t.Errorf("expected 0 rows, got %d", got.RowCount())
	}
}

// Булев предикат на integer-boolean домене
func TestExecuteWithBooleanPredicate(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()

	if err := a.ReplaceTable(ctx, "predictions", testResultSet(t)); err != nil {
		t.Fatalf("ReplaceTable failed: %v", err)
	}

	got, err := a.Execute(ctx,
		"SELECT id FROM predictions WHERE "+a.Renderer().BooleanPredicate("active"))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if got.RowCount() != 1 {
		t.Errorf("expected 1 active row, got %d", got.RowCount())
	}
}

// Значение вне домена {0,1} в булевой колонке - ошибка целостности
func TestBooleanOutOfDomain(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()

	if err := a.Exec(ctx, `CREATE TABLE flags (f BOOLEAN)`); err != nil {
		t.Fatalf("Exec failed: %v", err)
	}
	if err := a.Exec(ctx, `INSERT INTO flags VALUES (2)`); err != nil {
		t.Fatalf("Exec failed: %v", err)
	}

	if _, err := a.Execute(ctx, `SELECT f FROM flags`); err == nil {
		t.Fatal("expected integrity error for boolean value 2")
	}
}

// LIKE-проба принадлежности элемента текстовой коллекции:
// элемент с разделителем в теле не матчится как два элемента
func TestArrayContainsProbe(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()

	if err := a.ReplaceTable(ctx, "predictions", testResultSet(t)); err != nil {
		t.Fatalf("ReplaceTable failed: %v", err)
	}

	probe, err := a.Renderer().ArrayContains("features", canonical.Text("age"))
	if err != nil {
		t.Fatalf("ArrayContains failed: %v", err)
	}
	got, err := a.Execute(ctx, "SELECT id FROM predictions WHERE "+probe)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if got.RowCount() != 1 {
		t.Errorf("expected 1 row containing 'age', got %d", got.RowCount())
	}

	probe, err = a.Renderer().ArrayContains("features", canonical.Text("income"))
	if err != nil {
		t.Fatalf("ArrayContains failed: %v", err)
	}
	got, err = a.Execute(ctx, "SELECT id FROM predictions WHERE "+probe)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	// "income,net" - один элемент, "income" не входит в коллекцию
	if got.RowCount() != 0 {
		t.Errorf("expected 0 rows containing 'income', got %d", got.RowCount())
	}
}

func TestLimitQuery(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()

	if err := a.ReplaceTable(ctx, "predictions", testResultSet(t)); err != nil {
		t.Fatalf("ReplaceTable failed: %v", err)
	}

	sql := a.Renderer().LimitQuery("SELECT id FROM predictions ORDER BY id", 1)
	got, err := a.Execute(ctx, sql)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if got.RowCount() != 1 {
		t.Errorf("expected 1 row, got %d", got.RowCount())
	}
}

// Фильтр по timestamp через Builder возвращает ровно одну строку
// с активным флагом
func TestTimestampFilterScenario(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()

	if err := a.ReplaceTable(ctx, "predictions", testResultSet(t)); err != nil {
		t.Fatalf("ReplaceTable failed: %v", err)
	}

	ts, _ := time.ParseInLocation("2006-01-02 15:04:05", "2016-01-01 10:30:00", time.UTC)
	builder := dialect.NewBuilder(a.Capabilities(), a.Renderer())
	pred, err := builder.Render(dialect.SetMembershipFilter{
		Column: "as_of_date",
		Values: []canonical.Value{canonical.Timestamp(ts)},
	})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	got, err := a.Execute(ctx, "SELECT id, active FROM predictions WHERE "+pred)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if got.RowCount() != 1 {
		t.Fatalf("expected 1 row, got %d", got.RowCount())
	}
	active, _ := got.Value(0, "active")
	if !canonical.Equal(active, canonical.Boolean(true)) {
		t.Errorf("expected active=true, got %+v", active)
	}
}

// Вложенный документ переживает цикл записи/чтения через текстовую
// колонку с сохранением порядка ключей
func TestNestedPayloadRoundTrip(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()

	payload, err := canonical.ParsePayload(
		`{"model":{"name":"rf","params":{"depth":5,"features":["age","income"]}},"zeta":1,"alpha":2}`)
	if err != nil {
		t.Fatalf("ParsePayload failed: %v", err)
	}

	rs := &adapters.ResultSet{
		Columns: []adapters.Column{
			{Name: "id", Kind: canonical.KindInteger, Key: true},
			{Name: "config", Kind: canonical.KindPayload},
		},
		Rows: [][]canonical.Value{
			{canonical.Integer(1), canonical.StructuredPayload(payload)},
		},
	}
	if err := a.ReplaceTable(ctx, "configs", rs); err != nil {
		t.Fatalf("ReplaceTable failed: %v", err)
	}

	got, err := a.Execute(ctx, `SELECT config FROM configs`)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	have, _ := got.Value(0, "config")
	if !canonical.Equal(canonical.StructuredPayload(payload), have) {
		t.Error("nested payload round-trip mismatch")
	}
}

// Колонки-выражения без declared type получают Kind по значениям
func TestExecuteComputedColumns(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()

	if err := a.ReplaceTable(ctx, "predictions", testResultSet(t)); err != nil {
		t.Fatalf("ReplaceTable failed: %v", err)
	}

	got, err := a.Execute(ctx,
		`SELECT COUNT(*) AS n, MAX("score") AS top FROM predictions`)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	n, _ := got.Value(0, "n")
	if !canonical.Equal(n, canonical.Integer(2)) {
		t.Errorf("COUNT(*) = %+v, want Integer(2)", n)
	}
	top, _ := got.Value(0, "top")
	if !canonical.Equal(top, canonical.Float(0.85)) {
		t.Errorf("MAX(score) = %+v, want Float(0.85)", top)
	}
}

// Отмененный контекст прерывает запрос и перенос
func TestCancelledContext(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()

	if err := a.ReplaceTable(ctx, "predictions", testResultSet(t)); err != nil {
		t.Fatalf("ReplaceTable failed: %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()

	if _, err := a.Execute(cancelled, `SELECT id FROM predictions`); err == nil {
		t.Error("Execute must fail on cancelled context")
	}
	if err := a.ReplaceTable(cancelled, "copy", testResultSet(t)); err == nil {
		t.Error("ReplaceTable must fail on cancelled context")
	}
}

func TestMissingDatabaseOption(t *testing.T) {
	a := &Adapter{}
	err := a.Connect(context.Background(), adapters.Config{Type: "sqlite"})
	if err == nil {
		t.Fatal("expected error for missing database option")
	}
	if _, ok := err.(*adapters.MissingOptionError); !ok {
		t.Errorf("expected MissingOptionError, got %T", err)
	}
}
