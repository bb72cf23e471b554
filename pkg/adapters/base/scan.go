// Package base содержит общие хелперы для адаптеров поверх database/sql.
// Устраняет дублирование кода чтения строк между адаптерами.
package base

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ruslano69/sqlbridge/pkg/adapters"
	"github.com/ruslano69/sqlbridge/pkg/core/canonical"
)

// ScanRows читает все строки *sql.Rows в ResultSet, отображая каждое
// нативное значение драйвера в каноническое через mapper.
// Колонка без задекларированного типа (выражение, агрегат) получает
// Kind выводом из фактических значений, см. InferColumnKinds.
func ScanRows(ctx context.Context, rows *sql.Rows, mapper adapters.TypeMapper) (*adapters.ResultSet, error) {
	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("failed to read column types: %w", err)
	}

	columns := make([]adapters.Column, len(colTypes))
	for i, ct := range colTypes {
		kind, elem, ok := mapper.KindFromDatabaseType(ct.DatabaseTypeName())
		if !ok {
			// Kind будет выведен из значений
			columns[i] = adapters.Column{Name: ct.Name()}
			continue
		}
		columns[i] = adapters.Column{Name: ct.Name(), Kind: kind, Elem: elem}
	}

	// Сырые строки вычитываются до конвертации: вывод типа колонки
	// должен видеть первое не-NULL значение
	var rawRows [][]any
	raw := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range raw {
		ptrs[i] = &raw[i]
	}

	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		rowCopy := make([]any, len(raw))
		copy(rowCopy, raw)
		rawRows = append(rawRows, rowCopy)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration failed: %w", err)
	}

	if err := InferColumnKinds(columns, rawRows); err != nil {
		return nil, err
	}

	rs := &adapters.ResultSet{Columns: columns}
	for _, rr := range rawRows {
		row := make([]canonical.Value, len(columns))
		for i, v := range rr {
			cv, err := mapper.FromNative(v, columns[i])
			if err != nil {
				return nil, fmt.Errorf("column '%s': %w", columns[i].Name, err)
			}
			row[i] = cv
		}
		rs.Rows = append(rs.Rows, row)
	}

	return rs, nil
}

// InferColumnKinds заполняет Kind незадекларированных колонок по первому
// не-NULL значению. Конфликт выводов внутри колонки -
// SchemaMismatchError; колонка целиком из NULL читается как TEXT.
func InferColumnKinds(columns []adapters.Column, rawRows [][]any) error {
	for i := range columns {
		if columns[i].Kind != "" {
			continue
		}
		for _, rr := range rawRows {
			if rr[i] == nil {
				continue
			}
			kind, ok := InferKind(rr[i])
			if !ok {
				return fmt.Errorf("cannot infer type of column '%s' from %T",
					columns[i].Name, rr[i])
			}
			if columns[i].Kind == "" {
				columns[i].Kind = kind
			} else if columns[i].Kind != kind {
				return &adapters.SchemaMismatchError{
					Column: columns[i].Name, Seen: kind, Want: columns[i].Kind}
			}
		}
		if columns[i].Kind == "" {
			columns[i].Kind = canonical.KindText
		}
	}
	return nil
}

// InferKind выводит канонический Kind из нативного Go-значения драйвера
func InferKind(value any) (canonical.Kind, bool) {
	switch value.(type) {
	case int64, int32, int:
		return canonical.KindInteger, true
	case float64, float32:
		return canonical.KindFloat, true
	case string, []byte:
		return canonical.KindText, true
	case time.Time:
		return canonical.KindTimestamp, true
	case bool:
		return canonical.KindBoolean, true
	default:
		return "", false
	}
}

// InsertStatement строит INSERT с плейсхолдерами для одной строки.
// placeholder - функция нумерации параметров диалекта
// (например "?" у SQLite/ODBC, "$1" у PostgreSQL).
func InsertStatement(tableName string, columns []adapters.Column, quote func(string) string, placeholder func(int) string) string {
	names := ""
	params := ""
	for i, col := range columns {
		if i > 0 {
			names += ", "
			params += ", "
		}
		names += quote(col.Name)
		params += placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", quote(tableName), names, params)
}

// CreateTableStatement строит CREATE TABLE по описанию колонок,
// используя SQL-типы диалекта из mapper.
func CreateTableStatement(tableName string, columns []adapters.Column, quote func(string) string, mapper adapters.TypeMapper) string {
	defs := ""
	keys := ""
	for i, col := range columns {
		if i > 0 {
			defs += ", "
		}
		defs += quote(col.Name) + " " + mapper.SQLType(col)
		if col.Key {
			if keys != "" {
				keys += ", "
			}
			keys += quote(col.Name)
		}
	}
	if keys != "" {
		defs += fmt.Sprintf(", PRIMARY KEY (%s)", keys)
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", quote(tableName), defs)
}
