package sqlite

import (
	"fmt"
	"strings"
	"time"

	"github.com/ruslano69/sqlbridge/pkg/adapters"
	"github.com/ruslano69/sqlbridge/pkg/core/canonical"
)

// Compile-time check: TypeMapper должен реализовывать adapters.TypeMapper
var _ adapters.TypeMapper = (*TypeMapper)(nil)

// TypeMapper отображает типы SQLite в канонические и обратно.
// SQLite хранит declared type дословно: SEQUENCE-колонки объявляются
// как SEQUENCE_<ELEM> и round-trip'ятся без внешней схемы.
type TypeMapper struct{}

// NewTypeMapper создает маппер типов SQLite
func NewTypeMapper() *TypeMapper {
	return &TypeMapper{}
}

// KindFromDatabaseType отображает declared type в канонический Kind.
// У выражений и агрегатов declared type пуст: такие колонки не
// отображаются, их Kind выводится из значений (base.InferColumnKinds)
func (m *TypeMapper) KindFromDatabaseType(dbType string) (canonical.Kind, canonical.Kind, bool) {
	t := strings.ToUpper(strings.TrimSpace(dbType))

	if elem, ok := strings.CutPrefix(t, "SEQUENCE_"); ok {
		ek := canonical.Kind(elem)
		if !canonical.IsScalarKind(ek) {
			return "", "", false
		}
		return canonical.KindSequence, ek, true
	}

	switch t {
	case "INTEGER", "INT", "BIGINT", "SMALLINT":
		return canonical.KindInteger, "", true
	case "REAL", "FLOAT", "DOUBLE", "DOUBLE PRECISION", "NUMERIC":
		return canonical.KindFloat, "", true
	case "TEXT", "VARCHAR", "CHAR", "CLOB":
		return canonical.KindText, "", true
	case "BOOLEAN", "BOOL":
		return canonical.KindBoolean, "", true
	case "TIMESTAMP", "DATETIME", "DATE":
		return canonical.KindTimestamp, "", true
	case "JSON", "JSONB":
		return canonical.KindPayload, "", true
	default:
		return "", "", false
	}
}

// FromNative конвертирует нативное значение драйвера в каноническое
func (m *TypeMapper) FromNative(value any, col adapters.Column) (canonical.Value, error) {
	if value == nil {
		return canonical.Null(col.Kind), nil
	}

	switch col.Kind {
	case canonical.KindInteger:
		if v, ok := value.(int64); ok {
			return canonical.Integer(v), nil
		}
	case canonical.KindFloat:
		switch v := value.(type) {
		case float64:
			return canonical.Float(v), nil
		case int64:
			return canonical.Float(float64(v)), nil
		}
	case canonical.KindText:
		switch v := value.(type) {
		case string:
			return canonical.Text(v), nil
		case []byte:
			return canonical.Text(string(v)), nil
		}
	case canonical.KindBoolean:
		// integer-boolean: строго {0,1}
		if v, ok := value.(int64); ok {
			switch v {
			case 0:
				return canonical.Boolean(false), nil
			case 1:
				return canonical.Boolean(true), nil
			default:
				return canonical.Value{}, &canonical.IntegrityError{
					Field:   col.Name,
					Message: "boolean must be 0 or 1",
					Value:   fmt.Sprintf("%d", v),
				}
			}
		}
		if v, ok := value.(bool); ok {
			return canonical.Boolean(v), nil
		}
	case canonical.KindTimestamp:
		switch v := value.(type) {
		case time.Time:
			return canonical.Timestamp(v), nil
		case string:
			conv := canonical.NewConverter()
			parsed, err := conv.ParseValue(v, canonical.FieldDef{
				Name: col.Name, Kind: canonical.KindTimestamp, Nullable: true})
			if err != nil {
				return canonical.Value{}, err
			}
			return *parsed, nil
		}
	case canonical.KindPayload:
		var raw string
		switch v := value.(type) {
		case string:
			raw = v
		case []byte:
			raw = string(v)
		default:
			return canonical.Value{}, fmt.Errorf(
				"column '%s': expected json text, got %T", col.Name, value)
		}
		p, err := canonical.ParsePayload(raw)
		if err != nil {
			return canonical.Value{}, fmt.Errorf("column '%s': %w", col.Name, err)
		}
		return canonical.StructuredPayload(p), nil
	case canonical.KindSequence:
		var raw string
		switch v := value.(type) {
		case string:
			raw = v
		case []byte:
			raw = string(v)
		default:
			return canonical.Value{}, fmt.Errorf(
				"column '%s': expected encoded sequence text, got %T", col.Name, value)
		}
		elem := col.Elem
		if elem == "" {
			elem = canonical.KindText
		}
		values, err := canonical.DecodeSequence(raw, elem)
		if err != nil {
			return canonical.Value{}, fmt.Errorf("column '%s': %w", col.Name, err)
		}
		return canonical.Sequence(values...), nil
	}

	return canonical.Value{}, fmt.Errorf(
		"column '%s': cannot map %T to canonical %s", col.Name, value, col.Kind)
}

// NativeValue конвертирует каноническое значение в параметр драйвера
func (m *TypeMapper) NativeValue(v canonical.Value) (any, error) {
	if v.IsNull {
		return nil, nil
	}

	switch v.Kind {
	case canonical.KindInteger:
		return *v.IntValue, nil
	case canonical.KindFloat:
		return *v.FloatValue, nil
	case canonical.KindText:
		return *v.StringValue, nil
	case canonical.KindBoolean:
		if *v.BoolValue {
			return int64(1), nil
		}
		return int64(0), nil
	case canonical.KindTimestamp:
		// текстовое хранение: канонический формат с точностью до наносекунд
		return v.TimeValue.UTC().Format("2006-01-02 15:04:05.999999999"), nil
	case canonical.KindPayload:
		return v.PayloadValue.Encode()
	case canonical.KindSequence:
		return canonical.EncodeSequence(v.SeqValues)
	}
	return nil, fmt.Errorf("cannot map canonical %s to native value", v.Kind)
}

// SQLType возвращает declared type SQLite для CREATE TABLE
func (m *TypeMapper) SQLType(col adapters.Column) string {
	switch col.Kind {
	case canonical.KindInteger:
		return "INTEGER"
	case canonical.KindFloat:
		return "REAL"
	case canonical.KindText:
		return "TEXT"
	case canonical.KindBoolean:
		return "BOOLEAN"
	case canonical.KindTimestamp:
		return "TIMESTAMP"
	case canonical.KindPayload:
		return "JSON"
	case canonical.KindSequence:
		elem := col.Elem
		if elem == "" {
			elem = canonical.KindText
		}
		return "SEQUENCE_" + string(elem)
	}
	return "TEXT"
}
