package adapters

import (
	"context"
	"testing"

	"github.com/ruslano69/sqlbridge/pkg/core/canonical"
	"github.com/ruslano69/sqlbridge/pkg/dialect"
)

// fakeAdapter - минимальная реализация Adapter для тестов фабрики
type fakeAdapter struct {
	connected bool
	failOn    string
}

func (f *fakeAdapter) Connect(ctx context.Context, cfg Config) error {
	if f.failOn == "connect" {
		return &ConnectionError{Dialect: "fake", Err: context.DeadlineExceeded}
	}
	f.connected = true
	return nil
}
func (f *fakeAdapter) Close(ctx context.Context) error { return nil }
func (f *fakeAdapter) Ping(ctx context.Context) error  { return nil }
func (f *fakeAdapter) Capabilities() dialect.CapabilitySet {
	return dialect.CapabilitySet{Dialect: "fake"}
}
func (f *fakeAdapter) Renderer() dialect.Renderer { return nil }
func (f *fakeAdapter) FormatSetMembership(column string, values []canonical.Value) (string, error) {
	return "", nil
}
func (f *fakeAdapter) Execute(ctx context.Context, sql string) (*ResultSet, error) {
	return &ResultSet{}, nil
}
func (f *fakeAdapter) Exec(ctx context.Context, sql string) error { return nil }
func (f *fakeAdapter) TableExists(ctx context.Context, tableName string) (bool, error) {
	return false, nil
}
func (f *fakeAdapter) ReplaceTable(ctx context.Context, tableName string, rs *ResultSet) error {
	return nil
}
func (f *fakeAdapter) RowCount(ctx context.Context, tableName string) (int64, error) {
	return 0, nil
}
func (f *fakeAdapter) DatabaseType() string { return "fake" }
func (f *fakeAdapter) DatabaseVersion(ctx context.Context) (string, error) {
	return "fake 1.0", nil
}

func TestFactoryRegisterAndCreate(t *testing.T) {
	factory := NewFactory()

	factory.Register("fake", func() Adapter { return &fakeAdapter{} })

	if !factory.IsRegistered("fake") {
		t.Error("expected 'fake' to be registered")
	}
	if factory.IsRegistered("unknown") {
		t.Error("did not expect 'unknown' to be registered")
	}

	adapter, err := factory.Create(context.Background(), Config{Type: "fake"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !adapter.(*fakeAdapter).connected {
		t.Error("Create must connect the adapter")
	}
}

func TestFactoryUnknownType(t *testing.T) {
	factory := NewFactory()

	_, err := factory.Create(context.Background(), Config{Type: "unknown"})
	if err == nil {
		t.Fatal("expected error for unknown database type")
	}
}

func TestFactoryConnectFailure(t *testing.T) {
	factory := NewFactory()
	factory.Register("fake", func() Adapter { return &fakeAdapter{failOn: "connect"} })

	_, err := factory.Create(context.Background(), Config{Type: "fake"})
	if err == nil {
		t.Fatal("expected connect error to propagate")
	}
}

func TestFactoryCreateWithoutConnect(t *testing.T) {
	factory := NewFactory()
	factory.Register("fake", func() Adapter { return &fakeAdapter{} })

	adapter, err := factory.CreateWithoutConnect("fake")
	if err != nil {
		t.Fatalf("CreateWithoutConnect failed: %v", err)
	}
	if adapter.(*fakeAdapter).connected {
		t.Error("CreateWithoutConnect must not connect")
	}
}

func TestResultSetAccessors(t *testing.T) {
	rs := &ResultSet{
		Columns: []Column{
			{Name: "id", Kind: canonical.KindInteger},
			{Name: "label", Kind: canonical.KindText},
		},
		Rows: [][]canonical.Value{
			{canonical.Integer(1), canonical.Text("a")},
			{canonical.Integer(2), canonical.Text("b")},
		},
	}

	if rs.RowCount() != 2 {
		t.Errorf("RowCount = %d", rs.RowCount())
	}
	if rs.ColumnIndex("label") != 1 {
		t.Errorf("ColumnIndex(label) = %d", rs.ColumnIndex("label"))
	}
	if rs.ColumnIndex("missing") != -1 {
		t.Errorf("ColumnIndex(missing) = %d", rs.ColumnIndex("missing"))
	}

	v, ok := rs.Value(1, "label")
	if !ok || *v.StringValue != "b" {
		t.Errorf("Value(1, label) = %v, %v", v, ok)
	}
	if _, ok := rs.Value(5, "label"); ok {
		t.Error("Value out of range must return false")
	}

	vals, ok := rs.ColumnValues("id")
	if !ok || len(vals) != 2 || *vals[1].IntValue != 2 {
		t.Errorf("ColumnValues(id) = %v, %v", vals, ok)
	}
}
