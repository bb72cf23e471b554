// Package oracle реализует адаптер Oracle поверх database/sql с ODBC
// драйвером. Профиль диалекта: integer-boolean, текстовые коллекции,
// JSON в CLOB, ROWNUM вместо LIMIT, нетранзакционный DDL.
package oracle

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	_ "github.com/alexbrainman/odbc" // регистрирует driver "odbc"

	"github.com/ruslano69/sqlbridge/pkg/adapters"
	"github.com/ruslano69/sqlbridge/pkg/adapters/base"
	"github.com/ruslano69/sqlbridge/pkg/core/canonical"
	"github.com/ruslano69/sqlbridge/pkg/dialect"
)

// Compile-time check: Adapter должен реализовывать интерфейс adapters.Adapter
var _ adapters.Adapter = (*Adapter)(nil)

// Регистрация адаптера в глобальной фабрике
func init() {
	adapters.Register("oracle", func() adapters.Adapter {
		return &Adapter{}
	})
}

// Adapter представляет адаптер для работы с Oracle
// Реализует интерфейс adapters.Adapter
type Adapter struct {
	db       *sql.DB
	timeout  time.Duration
	renderer *Renderer
	mapper   *TypeMapper
	builder  *dialect.Builder
}

// Connect устанавливает подключение к Oracle через ODBC.
// При пустом DSN строка подключения собирается из дискретных опций;
// отсутствие обязательной опции - MissingOptionError до сетевого
// обращения. WalletPath экспортируется как TNS_ADMIN для
// сертификатной аутентификации.
func (a *Adapter) Connect(ctx context.Context, cfg adapters.Config) error {
	dsn := cfg.DSN
	if dsn == "" {
		var err error
		dsn, err = buildDSN(cfg)
		if err != nil {
			return err
		}
	}

	if cfg.WalletPath != "" {
		if err := os.Setenv("TNS_ADMIN", cfg.WalletPath); err != nil {
			return &adapters.ConnectionError{Dialect: "oracle",
				Err: fmt.Errorf("failed to set TNS_ADMIN: %w", err)}
		}
	}

	db, err := sql.Open("odbc", dsn)
	if err != nil {
		return &adapters.ConnectionError{Dialect: "oracle", Err: err}
	}

	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return &adapters.ConnectionError{Dialect: "oracle", Err: err}
	}

	a.db = db
	a.timeout = cfg.Timeout
	a.renderer = NewRenderer()
	a.mapper = NewTypeMapper()
	a.builder = dialect.NewBuilder(Capabilities, a.renderer)

	return nil
}

// buildDSN собирает ODBC строку подключения из дискретных опций
func buildDSN(cfg adapters.Config) (string, error) {
	required := []struct {
		name  string
		value string
	}{
		{"host", cfg.Host},
		{"service", cfg.Service},
		{"username", cfg.Username},
		{"password", cfg.Password},
	}
	for _, opt := range required {
		if opt.value == "" {
			return "", &adapters.MissingOptionError{Dialect: "oracle", Option: opt.name}
		}
	}

	port := cfg.Port
	if port == 0 {
		port = 1521
	}

	return fmt.Sprintf("Driver={Oracle};Dbq=%s:%d/%s;Uid=%s;Pwd=%s",
		cfg.Host, port, cfg.Service, cfg.Username, cfg.Password), nil
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

// Capabilities возвращает статический набор возможностей Oracle
func (a *Adapter) Capabilities() dialect.CapabilitySet {
	return Capabilities
}

// Renderer возвращает рендерер SQL-фрагментов Oracle
func (a *Adapter) Renderer() dialect.Renderer {
	if a.renderer == nil {
		a.renderer = NewRenderer()
	}
	return a.renderer
}

// FormatSetMembership рендерит set-membership предикат для Oracle
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

// Execute выполняет запрос и отображает результат в канонические значения.
// NUMBER-колонки уточняются по precision/scale колонки (NUMBER(1,0) -
// BOOLEAN, scale 0 - INTEGER). ODBC-драйвер не всегда сообщает тип или
// precision/scale: оставшиеся колонки получают Kind выводом из первого
// не-NULL значения, конфликт выводов - SchemaMismatchError.
func (a *Adapter) Execute(ctx context.Context, sqlText string) (*adapters.ResultSet, error) {
	if a.db == nil {
		return nil, fmt.Errorf("adapter not connected")
	}

	qctx, cancel := a.queryContext(ctx)
	defer cancel()

	rows, err := a.db.QueryContext(qctx, sqlText)
	if err != nil {
		return nil, &adapters.ExecutionError{Dialect: "oracle", Stmt: sqlText, Err: err}
	}
	defer rows.Close()

	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("failed to read column types: %w", err)
	}

	columns := make([]adapters.Column, len(colTypes))
	for i, ct := range colTypes {
		kind, elem, ok := a.mapper.KindFromDatabaseType(ct.DatabaseTypeName())
		if !ok && isNumberType(ct.DatabaseTypeName()) {
			if precision, scale, has := ct.DecimalSize(); has {
				kind, ok = numberKind(precision, scale), true
			}
		}
		if ok {
			columns[i] = adapters.Column{Name: ct.Name(), Kind: kind, Elem: elem}
		} else {
			// Kind будет выведен из значений
			columns[i] = adapters.Column{Name: ct.Name()}
		}
	}

	// Сначала вычитываем сырые строки: вывод типа колонки должен
	// видеть первое не-NULL значение до конвертации
	var rawRows [][]any
	raw := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range raw {
		ptrs[i] = &raw[i]
	}
	for rows.Next() {
		if err := qctx.Err(); err != nil {
			return nil, err
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, &adapters.ExecutionError{Dialect: "oracle", Stmt: sqlText, Err: err}
		}
		rowCopy := make([]any, len(raw))
		copy(rowCopy, raw)
		rawRows = append(rawRows, rowCopy)
	}
	if err := rows.Err(); err != nil {
		return nil, &adapters.ExecutionError{Dialect: "oracle", Stmt: sqlText, Err: err}
	}

	// Вывод типов незадекларированных колонок по фактическим значениям
	if err := base.InferColumnKinds(columns, rawRows); err != nil {
		return nil, err
	}

	rs := &adapters.ResultSet{Columns: columns}
	for _, rr := range rawRows {
		row := make([]canonical.Value, len(columns))
		for i, v := range rr {
			cv, err := a.mapper.FromNative(v, columns[i])
			if err != nil {
				return nil, err
			}
			row[i] = cv
		}
		rs.Rows = append(rs.Rows, row)
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
		return &adapters.ExecutionError{Dialect: "oracle", Stmt: sqlText, Err: err}
	}
	return nil
}

// TableExists проверяет существование таблицы пользователя
func (a *Adapter) TableExists(ctx context.Context, tableName string) (bool, error) {
	query := "SELECT COUNT(*) FROM user_tables WHERE table_name = UPPER(?)"

	qctx, cancel := a.queryContext(ctx)
	defer cancel()

	var count int
	if err := a.db.QueryRowContext(qctx, query, tableName).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check table existence: %w", err)
	}
	return count > 0, nil
}

// ReplaceTable заменяет таблицу содержимым rs.
// Oracle не поддерживает транзакционный DDL: при сбое после создания
// таблица дропается, назначение никогда не остается частично
// заполненным.
func (a *Adapter) ReplaceTable(ctx context.Context, tableName string, rs *adapters.ResultSet) error {
	if a.db == nil {
		return fmt.Errorf("adapter not connected")
	}

	exists, err := a.TableExists(ctx, tableName)
	if err != nil {
		return err
	}

	quoted := a.Renderer().QuoteIdentifier(strings.ToUpper(tableName))

	// drop-if-exists: безусловный DROP упал бы на отсутствующей таблице
	if exists {
		dropSQL := fmt.Sprintf("DROP TABLE %s", quoted)
		if err := a.Exec(ctx, dropSQL); err != nil {
			return err
		}
	}

	createSQL := a.createTableSQL(quoted, rs.Columns)
	if err := a.Exec(ctx, createSQL); err != nil {
		return err
	}

	if err := a.insertRows(ctx, quoted, rs); err != nil {
		// drop-on-failure: откат DDL недоступен
		dropSQL := fmt.Sprintf("DROP TABLE %s", quoted)
		if dropErr := a.Exec(ctx, dropSQL); dropErr != nil {
			return fmt.Errorf("%w (cleanup drop also failed: %v)", err, dropErr)
		}
		return err
	}

	return nil
}

// insertRows вставляет строки в пределах одной DML-транзакции
func (a *Adapter) insertRows(ctx context.Context, quotedTable string, rs *adapters.ResultSet) error {
	qctx, cancel := a.queryContext(ctx)
	defer cancel()

	tx, err := a.db.BeginTx(qctx, nil)
	if err != nil {
		return &adapters.ExecutionError{Dialect: "oracle", Stmt: "BEGIN", Err: err}
	}
	defer tx.Rollback()

	insertSQL := a.insertSQL(quotedTable, rs.Columns)
	stmt, err := tx.PrepareContext(qctx, insertSQL)
	if err != nil {
		return &adapters.ExecutionError{Dialect: "oracle", Stmt: insertSQL, Err: err}
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
			return &adapters.ExecutionError{Dialect: "oracle", Stmt: insertSQL, Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &adapters.ExecutionError{Dialect: "oracle", Stmt: "COMMIT", Err: err}
	}
	return nil
}

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

func (a *Adapter) insertSQL(quotedTable string, columns []adapters.Column) string {
	names := make([]string, len(columns))
	params := make([]string, len(columns))
	for i, col := range columns {
		names[i] = a.Renderer().QuoteIdentifier(col.Name)
		params[i] = "?"
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quotedTable, strings.Join(names, ", "), strings.Join(params, ", "))
}

// RowCount возвращает количество строк таблицы
func (a *Adapter) RowCount(ctx context.Context, tableName string) (int64, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s",
		a.Renderer().QuoteIdentifier(strings.ToUpper(tableName)))

	qctx, cancel := a.queryContext(ctx)
	defer cancel()

	var count int64
	if err := a.db.QueryRowContext(qctx, query).Scan(&count); err != nil {
		return 0, &adapters.ExecutionError{Dialect: "oracle", Stmt: query, Err: err}
	}
	return count, nil
}

// DatabaseType возвращает тип СУБД
func (a *Adapter) DatabaseType() string {
	return "oracle"
}

// DatabaseVersion возвращает версию Oracle
func (a *Adapter) DatabaseVersion(ctx context.Context) (string, error) {
	var version string
	err := a.db.QueryRowContext(ctx,
		"SELECT banner FROM v$version WHERE ROWNUM = 1").Scan(&version)
	if err != nil {
		return "", fmt.Errorf("failed to get database version: %w", err)
	}
	return version, nil
}

// DB возвращает *sql.DB для прямого доступа
func (a *Adapter) DB() *sql.DB {
	return a.db
}
