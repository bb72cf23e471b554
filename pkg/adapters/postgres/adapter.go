package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ruslano69/sqlbridge/pkg/adapters"
	"github.com/ruslano69/sqlbridge/pkg/core/canonical"
	"github.com/ruslano69/sqlbridge/pkg/dialect"
)

// Compile-time check: Adapter должен реализовывать интерфейс adapters.Adapter
var _ adapters.Adapter = (*Adapter)(nil)

// Регистрация адаптера в глобальной фабрике
func init() {
	adapters.Register("postgres", func() adapters.Adapter {
		return &Adapter{}
	})
}

// Adapter представляет адаптер для работы с PostgreSQL
// Реализует интерфейс adapters.Adapter
type Adapter struct {
	pool     *pgxpool.Pool
	schema   string
	timeout  time.Duration
	renderer *Renderer
	mapper   *TypeMapper
	builder  *dialect.Builder
}

// Connect устанавливает подключение к PostgreSQL через pgxpool
func (a *Adapter) Connect(ctx context.Context, cfg adapters.Config) error {
	dsn := cfg.DSN
	if dsn == "" {
		var err error
		dsn, err = buildDSN(cfg)
		if err != nil {
			return err
		}
	}

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return &adapters.ConnectionError{Dialect: "postgres",
			Err: fmt.Errorf("failed to parse connection string: %w", err)}
	}

	if cfg.MaxConns > 0 {
		config.MaxConns = int32(cfg.MaxConns)
	} else {
		config.MaxConns = 10
	}
	if cfg.MinConns > 0 {
		config.MinConns = int32(cfg.MinConns)
	} else {
		config.MinConns = 2
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return &adapters.ConnectionError{Dialect: "postgres", Err: err}
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return &adapters.ConnectionError{Dialect: "postgres", Err: err}
	}

	a.pool = pool
	a.schema = cfg.Schema
	if a.schema == "" {
		a.schema = "public"
	}
	a.timeout = cfg.Timeout
	a.renderer = NewRenderer()
	a.mapper = NewTypeMapper()
	a.builder = dialect.NewBuilder(Capabilities, a.renderer)

	return nil
}

// buildDSN собирает строку подключения из дискретных опций.
// Отсутствие обязательной опции - MissingOptionError до любого
// сетевого обращения.
func buildDSN(cfg adapters.Config) (string, error) {
	required := []struct {
		name  string
		value string
	}{
		{"host", cfg.Host},
		{"database", cfg.Database},
		{"username", cfg.Username},
	}
	for _, opt := range required {
		if opt.value == "" {
			return "", &adapters.MissingOptionError{Dialect: "postgres", Option: opt.name}
		}
	}

	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	var b strings.Builder
	fmt.Fprintf(&b, "host=%s port=%d dbname=%s user=%s",
		cfg.Host, port, cfg.Database, cfg.Username)
	if cfg.Password != "" {
		fmt.Fprintf(&b, " password=%s", cfg.Password)
	}
	if cfg.SSLMode != "" {
		fmt.Fprintf(&b, " sslmode=%s", cfg.SSLMode)
	}
	return b.String(), nil
}

// Close закрывает connection pool
func (a *Adapter) Close(ctx context.Context) error {
	if a.pool != nil {
		a.pool.Close()
	}
	return nil
}

// Ping проверяет доступность БД
func (a *Adapter) Ping(ctx context.Context) error {
	if a.pool == nil {
		return fmt.Errorf("adapter not connected")
	}
	return a.pool.Ping(ctx)
}

// Capabilities возвращает статический набор возможностей PostgreSQL
func (a *Adapter) Capabilities() dialect.CapabilitySet {
	return Capabilities
}

// Renderer возвращает рендерер SQL-фрагментов PostgreSQL
func (a *Adapter) Renderer() dialect.Renderer {
	if a.renderer == nil {
		a.renderer = NewRenderer()
	}
	return a.renderer
}

// FormatSetMembership рендерит set-membership предикат для PostgreSQL
func (a *Adapter) FormatSetMembership(column string, values []canonical.Value) (string, error) {
	if a.builder == nil {
		a.builder = dialect.NewBuilder(Capabilities, NewRenderer())
	}
	return a.builder.Render(dialect.SetMembershipFilter{Column: column, Values: values})
}

// queryContext применяет таймаут адаптера к контексту
func (a *Adapter) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout > 0 {
		return context.WithTimeout(ctx, a.timeout)
	}
	return ctx, func() {}
}

// Execute выполняет запрос и отображает результат в канонические значения.
// PAYLOAD колонки читаются как сырой текст для сохранения порядка ключей.
func (a *Adapter) Execute(ctx context.Context, sqlText string) (*adapters.ResultSet, error) {
	if a.pool == nil {
		return nil, fmt.Errorf("adapter not connected")
	}

	qctx, cancel := a.queryContext(ctx)
	defer cancel()

	rows, err := a.pool.Query(qctx, sqlText)
	if err != nil {
		return nil, &adapters.ExecutionError{Dialect: "postgres", Stmt: sqlText, Err: err}
	}
	defer rows.Close()

	fds := rows.FieldDescriptions()
	columns := make([]adapters.Column, len(fds))
	for i, fd := range fds {
		col, ok := columnFromOID(fd.Name, fd.DataTypeOID)
		if !ok {
			return nil, fmt.Errorf("unmapped postgres type oid %d in column '%s'",
				fd.DataTypeOID, fd.Name)
		}
		columns[i] = col
	}

	rs := &adapters.ResultSet{Columns: columns}

	for rows.Next() {
		targets := make([]scanTarget, len(columns))
		dests := make([]any, len(columns))
		for i, col := range columns {
			targets[i] = newScanTarget(col)
			dests[i] = targets[i].dest()
		}
		if err := rows.Scan(dests...); err != nil {
			return nil, &adapters.ExecutionError{Dialect: "postgres", Stmt: sqlText, Err: err}
		}

		row := make([]canonical.Value, len(columns))
		for i := range columns {
			cv, err := a.mapper.FromNative(targets[i].value(), columns[i])
			if err != nil {
				return nil, err
			}
			row[i] = cv
		}
		rs.Rows = append(rs.Rows, row)
	}

	if err := rows.Err(); err != nil {
		return nil, &adapters.ExecutionError{Dialect: "postgres", Stmt: sqlText, Err: err}
	}

	return rs, nil
}

// Exec выполняет команду без результата (DDL/DML)
func (a *Adapter) Exec(ctx context.Context, sqlText string) error {
	if a.pool == nil {
		return fmt.Errorf("adapter not connected")
	}

	qctx, cancel := a.queryContext(ctx)
	defer cancel()

	if _, err := a.pool.Exec(qctx, sqlText); err != nil {
		return &adapters.ExecutionError{Dialect: "postgres", Stmt: sqlText, Err: err}
	}
	return nil
}

// TableExists проверяет существование таблицы в текущей схеме
func (a *Adapter) TableExists(ctx context.Context, tableName string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM information_schema.tables
			WHERE table_schema = $1
			  AND table_name = $2
		)
	`

	qctx, cancel := a.queryContext(ctx)
	defer cancel()

	var exists bool
	err := a.pool.QueryRow(qctx, query, a.schema, tableName).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check table existence: %w", err)
	}
	return exists, nil
}

// ReplaceTable заменяет таблицу содержимым rs в одной транзакции.
// PostgreSQL поддерживает транзакционный DDL: при сбое rollback
// возвращает прежнее состояние, назначение никогда не остается
// частично заполненным.
func (a *Adapter) ReplaceTable(ctx context.Context, tableName string, rs *adapters.ResultSet) error {
	if a.pool == nil {
		return fmt.Errorf("adapter not connected")
	}

	qctx, cancel := a.queryContext(ctx)
	defer cancel()

	tx, err := a.pool.BeginTx(qctx, pgx.TxOptions{})
	if err != nil {
		return &adapters.ExecutionError{Dialect: "postgres", Stmt: "BEGIN", Err: err}
	}
	defer tx.Rollback(qctx)

	quoted := a.Renderer().QuoteIdentifier(tableName)

	dropSQL := fmt.Sprintf("DROP TABLE IF EXISTS %s", quoted)
	if _, err := tx.Exec(qctx, dropSQL); err != nil {
		return &adapters.ExecutionError{Dialect: "postgres", Stmt: dropSQL, Err: err}
	}

	createSQL := a.createTableSQL(quoted, rs.Columns)
	if _, err := tx.Exec(qctx, createSQL); err != nil {
		return &adapters.ExecutionError{Dialect: "postgres", Stmt: createSQL, Err: err}
	}

	insertSQL := a.insertSQL(quoted, rs.Columns)
	for _, row := range rs.Rows {
		args := make([]any, len(row))
		for i, v := range row {
			args[i], err = a.mapper.NativeValue(v)
			if err != nil {
				return err
			}
		}
		if _, err := tx.Exec(qctx, insertSQL, args...); err != nil {
			return &adapters.ExecutionError{Dialect: "postgres", Stmt: insertSQL, Err: err}
		}
	}

	if err := tx.Commit(qctx); err != nil {
		return &adapters.ExecutionError{Dialect: "postgres", Stmt: "COMMIT", Err: err}
	}
	return nil
}

// createTableSQL строит CREATE TABLE по описанию колонок
func (a *Adapter) createTableSQL(quotedTable string, columns []adapters.Column) string {
	defs := make([]string, 0, len(columns)+1)
	keys := make([]string, 0)
	for _, col := range columns {
		defs = append(defs,
			a.Renderer().QuoteIdentifier(col.Name)+" "+a.mapper.SQLType(col))
		if col.Key {
			keys = append(keys, a.Renderer().QuoteIdentifier(col.Name))
		}
	}
	if len(keys) > 0 {
		defs = append(defs, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(keys, ", ")))
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", quotedTable, strings.Join(defs, ", "))
}

// insertSQL строит INSERT с позиционными плейсхолдерами $n
func (a *Adapter) insertSQL(quotedTable string, columns []adapters.Column) string {
	names := make([]string, len(columns))
	params := make([]string, len(columns))
	for i, col := range columns {
		names[i] = a.Renderer().QuoteIdentifier(col.Name)
		params[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quotedTable, strings.Join(names, ", "), strings.Join(params, ", "))
}

// RowCount возвращает количество строк таблицы
func (a *Adapter) RowCount(ctx context.Context, tableName string) (int64, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", a.Renderer().QuoteIdentifier(tableName))

	qctx, cancel := a.queryContext(ctx)
	defer cancel()

	var count int64
	if err := a.pool.QueryRow(qctx, query).Scan(&count); err != nil {
		return 0, &adapters.ExecutionError{Dialect: "postgres", Stmt: query, Err: err}
	}
	return count, nil
}

// DatabaseType возвращает тип СУБД
func (a *Adapter) DatabaseType() string {
	return "postgres"
}

// DatabaseVersion возвращает версию PostgreSQL
func (a *Adapter) DatabaseVersion(ctx context.Context) (string, error) {
	var version string
	if err := a.pool.QueryRow(ctx, "SELECT version()").Scan(&version); err != nil {
		return "", fmt.Errorf("failed to get database version: %w", err)
	}
	return version, nil
}

// Pool возвращает *pgxpool.Pool для прямого доступа
func (a *Adapter) Pool() *pgxpool.Pool {
	return a.pool
}

// Schema возвращает текущую схему
func (a *Adapter) Schema() string {
	return a.schema
}
