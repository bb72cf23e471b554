// Package sqlite реализует адаптер SQLite поверх database/sql с
// драйвером modernc.org/sqlite (чистый Go, без cgo).
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // регистрирует driver "sqlite"

	"github.com/ruslano69/sqlbridge/pkg/adapters"
	"github.com/ruslano69/sqlbridge/pkg/adapters/base"
	"github.com/ruslano69/sqlbridge/pkg/core/canonical"
	"github.com/ruslano69/sqlbridge/pkg/dialect"
)

// Compile-time check: Adapter должен реализовывать интерфейс adapters.Adapter
var _ adapters.Adapter = (*Adapter)(nil)

// Регистрация адаптера в глобальной фабрике
func init() {
	adapters.Register("sqlite", func() adapters.Adapter {
		return &Adapter{}
	})
}

// Adapter представляет адаптер для работы с SQLite
// Реализует интерфейс adapters.Adapter
type Adapter struct {
	db       *sql.DB
	timeout  time.Duration
	renderer *Renderer
	mapper   *TypeMapper
	builder  *dialect.Builder
}

// Connect открывает файл БД (или :memory:)
func (a *Adapter) Connect(ctx context.Context, cfg adapters.Config) error {
	dsn := cfg.DSN
	if dsn == "" {
		if cfg.Database == "" {
			return &adapters.MissingOptionError{Dialect: "sqlite", Option: "database"}
		}
		dsn = cfg.Database
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return &adapters.ConnectionError{Dialect: "sqlite", Err: err}
	}

	// Один writer: сериализация на уровне пула соединений
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return &adapters.ConnectionError{Dialect: "sqlite", Err: err}
	}

	a.db = db
	a.timeout = cfg.Timeout
	a.renderer = NewRenderer()
	a.mapper = NewTypeMapper()
	a.builder = dialect.NewBuilder(Capabilities, a.renderer)

	return nil
}

// Close закрывает подключение
func (a *Adapter) Close(ctx context.Context) error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// Ping проверяет доступность БД
func (a *Adapter) Ping(ctx context.Context) error {
	if a.db == nil {
		return fmt.Errorf("adapter not connected")
	}
	return a.db.PingContext(ctx)
}

// Capabilities возвращает статический набор возможностей SQLite
func (a *Adapter) Capabilities() dialect.CapabilitySet {
	return Capabilities
}

// Renderer возвращает рендерер SQL-фрагментов SQLite
func (a *Adapter) Renderer() dialect.Renderer {
	if a.renderer == nil {
		a.renderer = NewRenderer()
	}
	return a.renderer
}

// FormatSetMembership рендерит set-membership предикат для SQLite
func (a *Adapter) FormatSetMembership(column string, values []canonical.Value) (string, error) {
	if a.builder == nil {
		a.builder = dialect.NewBuilder(Capabilities, NewRenderer())
	}
	return a.builder.Render(dialect.SetMembershipFilter{Column: column, Values: values})
}

func (a *Adapter) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout > 0 {
		return context.WithTimeout(ctx, a.timeout)
	}
	return ctx, func() {}
}

// Execute выполняет запрос и отображает результат в канонические значения
func (a *Adapter) Execute(ctx context.Context, sqlText string) (*adapters.ResultSet, error) {
	if a.db == nil {
		return nil, fmt.Errorf("adapter not connected")
	}

	qctx, cancel := a.queryContext(ctx)
	defer cancel()

	rows, err := a.db.QueryContext(qctx, sqlText)
	if err != nil {
		return nil, &adapters.ExecutionError{Dialect: "sqlite", Stmt: sqlText, Err: err}
	}
	defer rows.Close()

	rs, err := base.ScanRows(qctx, rows, a.mapper)
	if err != nil {
		return nil, err
	}
	return rs, nil
}

// Exec выполняет команду без результата (DDL/DML)
func (a *Adapter) Exec(ctx context.Context, sqlText string) error {
	if a.db == nil {
		return fmt.Errorf("adapter not connected")
	}

	qctx, cancel := a.queryContext(ctx)
	defer cancel()

	if _, err := a.db.ExecContext(qctx, sqlText); err != nil {
		return &adapters.ExecutionError{Dialect: "sqlite", Stmt: sqlText, Err: err}
	}
	return nil
}

// TableExists проверяет существование таблицы
func (a *Adapter) TableExists(ctx context.Context, tableName string) (bool, error) {
	query := "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name = ?"

	qctx, cancel := a.queryContext(ctx)
	defer cancel()

	var count int
	if err := a.db.QueryRowContext(qctx, query, tableName).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check table existence: %w", err)
	}
	return count > 0, nil
}

// ReplaceTable заменяет таблицу содержимым rs в одной транзакции.
// DDL в SQLite транзакционен: при сбое rollback возвращает прежнее
// состояние.
func (a *Adapter) ReplaceTable(ctx context.Context, tableName string, rs *adapters.ResultSet) error {
	if a.db == nil {
		return fmt.Errorf("adapter not connected")
	}

	qctx, cancel := a.queryContext(ctx)
	defer cancel()

	tx, err := a.db.BeginTx(qctx, nil)
	if err != nil {
		return &adapters.ExecutionError{Dialect: "sqlite", Stmt: "BEGIN", Err: err}
	}
	defer tx.Rollback()

	quote := func(s string) string { return a.Renderer().QuoteIdentifier(s) }

	dropSQL := fmt.Sprintf("DROP TABLE IF EXISTS %s", quote(tableName))
	if _, err := tx.ExecContext(qctx, dropSQL); err != nil {
		return &adapters.ExecutionError{Dialect: "sqlite", Stmt: dropSQL, Err: err}
	}

	createSQL := base.CreateTableStatement(tableName, rs.Columns, quote, a.mapper)
	if _, err := tx.ExecContext(qctx, createSQL); err != nil {
		return &adapters.ExecutionError{Dialect: "sqlite", Stmt: createSQL, Err: err}
	}

	insertSQL := base.InsertStatement(tableName, rs.Columns, quote,
		func(int) string { return "?" })
	stmt, err := tx.PrepareContext(qctx, insertSQL)
	if err != nil {
		return &adapters.ExecutionError{Dialect: "sqlite", Stmt: insertSQL, Err: err}
	}
	defer stmt.Close()

	for _, row := range rs.Rows {
		args := make([]any, len(row))
		for i, v := range row {
			args[i], err = a.mapper.NativeValue(v)
			if err != nil {
				return err
			}
		}
		if _, err := stmt.ExecContext(qctx, args...); err != nil {
			return &adapters.ExecutionError{Dialect: "sqlite", Stmt: insertSQL, Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &adapters.ExecutionError{Dialect: "sqlite", Stmt: "COMMIT", Err: err}
	}
	return nil
}

// RowCount возвращает количество строк таблицы
func (a *Adapter) RowCount(ctx context.Context, tableName string) (int64, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", a.Renderer().QuoteIdentifier(tableName))

	qctx, cancel := a.queryContext(ctx)
	defer cancel()

	var count int64
	if err := a.db.QueryRowContext(qctx, query).Scan(&count); err != nil {
		return 0, &adapters.ExecutionError{Dialect: "sqlite", Stmt: query, Err: err}
	}
	return count, nil
}

// DatabaseType возвращает тип СУБД
func (a *Adapter) DatabaseType() string {
	return "sqlite"
}

// DatabaseVersion возвращает версию SQLite
func (a *Adapter) DatabaseVersion(ctx context.Context) (string, error) {
	var version string
	if err := a.db.QueryRowContext(ctx, "SELECT sqlite_version()").Scan(&version); err != nil {
		return "", fmt.Errorf("failed to get database version: %w", err)
	}
	return "SQLite " + version, nil
}

// DB возвращает *sql.DB для прямого доступа
func (a *Adapter) DB() *sql.DB {
	return a.db
}
