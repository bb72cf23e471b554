package oracle

import (
	"fmt"
	"strings"
	"time"

	"github.com/ruslano69/sqlbridge/pkg/adapters"
	"github.com/ruslano69/sqlbridge/pkg/core/canonical"
)

// Compile-time check: TypeMapper должен реализовывать adapters.TypeMapper
var _ adapters.TypeMapper = (*TypeMapper)(nil)

// TypeMapper отображает типы Oracle в канонические и обратно.
// BOOLEAN хранится как NUMBER(1) в домене {0,1}: значение вне домена -
// IntegrityError, не коэрция. SEQUENCE и PAYLOAD хранятся текстом.
type TypeMapper struct{}

// NewTypeMapper создает маппер типов Oracle
func NewTypeMapper() *TypeMapper {
	return &TypeMapper{}
}

// KindFromDatabaseType отображает имя типа Oracle/ODBC в канонический Kind.
// NUMBER-семейство из одного имени не разрешимо: NUMBER(1,0) хранит
// BOOLEAN, scale 0 - INTEGER, прочее - FLOAT. Такие колонки уточняются
// по precision/scale (см. numberKind) или по фактическим значениям.
func (m *TypeMapper) KindFromDatabaseType(dbType string) (canonical.Kind, canonical.Kind, bool) {
	switch strings.ToUpper(dbType) {
	case "INTEGER", "INT", "SMALLINT":
		return canonical.KindInteger, "", true
	case "NUMBER", "DECIMAL", "NUMERIC":
		return "", "", false
	case "BINARY_FLOAT", "BINARY_DOUBLE", "FLOAT", "DOUBLE", "REAL":
		return canonical.KindFloat, "", true
	case "VARCHAR", "VARCHAR2", "NVARCHAR2", "CHAR", "NCHAR", "CLOB", "NCLOB", "LONG":
		return canonical.KindText, "", true
	case "DATE", "TIMESTAMP", "TIMESTAMP WITH TIME ZONE",
		"TIMESTAMP WITH LOCAL TIME ZONE":
		return canonical.KindTimestamp, "", true
	default:
		return "", "", false
	}
}

// isNumberType сообщает принадлежит ли имя типа NUMBER-семейству
func isNumberType(dbType string) bool {
	switch strings.ToUpper(dbType) {
	case "NUMBER", "DECIMAL", "NUMERIC":
		return true
	}
	return false
}

// numberKind уточняет Kind NUMBER-колонки по precision/scale:
// NUMBER(1,0) - integer-boolean домен, scale 0 - INTEGER, иначе FLOAT
func numberKind(precision, scale int64) canonical.Kind {
	if scale == 0 {
		if precision == 1 {
			return canonical.KindBoolean
		}
		return canonical.KindInteger
	}
	return canonical.KindFloat
}

// FromNative конвертирует нативное значение драйвера в каноническое
func (m *TypeMapper) FromNative(value any, col adapters.Column) (canonical.Value, error) {
	if value == nil {
		return canonical.Null(col.Kind), nil
	}

	switch col.Kind {
	case canonical.KindInteger:
		switch v := value.(type) {
		case int64:
			return canonical.Integer(v), nil
		case int32:
			return canonical.Integer(int64(v)), nil
		case float64:
			// NUMBER приходит как float64; целочисленная колонка обязана
			// содержать целые значения
			if v != float64(int64(v)) {
				return canonical.Value{}, &canonical.IntegrityError{
					Field:   col.Name,
					Message: "integer column holds a fractional value",
					Value:   fmt.Sprintf("%v", v),
				}
			}
			return canonical.Integer(int64(v)), nil
		}
	case canonical.KindFloat:
		switch v := value.(type) {
		case float64:
			return canonical.Float(v), nil
		case float32:
			return canonical.Float(float64(v)), nil
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
		// integer-boolean: строго {0,1}, все прочее - ошибка целостности
		var n int64
		switch v := value.(type) {
		case int64:
			n = v
		case int32:
			n = int64(v)
		case float64:
			n = int64(v)
			if v != float64(n) {
				return canonical.Value{}, &canonical.IntegrityError{
					Field:   col.Name,
					Message: "boolean must be 0 or 1",
					Value:   fmt.Sprintf("%v", v),
				}
			}
		case bool:
			return canonical.Boolean(v), nil
		default:
			return canonical.Value{}, fmt.Errorf(
				"column '%s': cannot map %T to canonical BOOLEAN", col.Name, value)
		}
		switch n {
		case 0:
			return canonical.Boolean(false), nil
		case 1:
			return canonical.Boolean(true), nil
		default:
			return canonical.Value{}, &canonical.IntegrityError{
				Field:   col.Name,
				Message: "boolean must be 0 or 1",
				Value:   fmt.Sprintf("%d", n),
			}
		}
	case canonical.KindTimestamp:
		if v, ok := value.(time.Time); ok {
			return canonical.Timestamp(v), nil
		}
		if v, ok := value.(string); ok {
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

// NativeValue конвертирует каноническое значение в параметр драйвера.
// BOOLEAN кодируется как 0/1, TIMESTAMP - как time.Time,
// PAYLOAD и SEQUENCE - текстом.
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
		return v.TimeValue.UTC(), nil
	case canonical.KindPayload:
		return v.PayloadValue.Encode()
	case canonical.KindSequence:
		return canonical.EncodeSequence(v.SeqValues)
	}
	return nil, fmt.Errorf("cannot map canonical %s to native value", v.Kind)
}

// SQLType возвращает SQL тип Oracle для CREATE TABLE
func (m *TypeMapper) SQLType(col adapters.Column) string {
	switch col.Kind {
	case canonical.KindInteger:
		return "NUMBER(19)"
	case canonical.KindFloat:
		return "BINARY_DOUBLE"
	case canonical.KindText:
		// CLOB не участвует в PRIMARY KEY
		if col.Key {
			return "VARCHAR2(1000)"
		}
		return "CLOB"
	case canonical.KindBoolean:
		return "NUMBER(1)"
	case canonical.KindTimestamp:
		return "TIMESTAMP"
	case canonical.KindPayload:
		return "CLOB"
	case canonical.KindSequence:
		return "CLOB"
	}
	return "CLOB"
}
