package postgres

import (
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/ruslano69/sqlbridge/pkg/adapters"
	"github.com/ruslano69/sqlbridge/pkg/core/canonical"
)

// Compile-time check: TypeMapper должен реализовывать adapters.TypeMapper
var _ adapters.TypeMapper = (*TypeMapper)(nil)

// TypeMapper отображает типы PostgreSQL в канонические и обратно.
// Отображение тотально: неизвестный OID или имя типа - ошибка.
type TypeMapper struct{}

// NewTypeMapper создает маппер типов PostgreSQL
func NewTypeMapper() *TypeMapper {
	return &TypeMapper{}
}

// columnKind - пара (канонический тип, тип элементов) для колонки
type columnKind struct {
	kind canonical.Kind
	elem canonical.Kind
}

// oidKinds - отображение OID типов PostgreSQL в канонические типы
var oidKinds = map[uint32]columnKind{
	pgtype.Int2OID:    {canonical.KindInteger, ""},
	pgtype.Int4OID:    {canonical.KindInteger, ""},
	pgtype.Int8OID:    {canonical.KindInteger, ""},
	pgtype.Float4OID:  {canonical.KindFloat, ""},
	pgtype.Float8OID:  {canonical.KindFloat, ""},
	pgtype.NumericOID: {canonical.KindFloat, ""},
	pgtype.TextOID:    {canonical.KindText, ""},
	pgtype.VarcharOID: {canonical.KindText, ""},
	pgtype.BPCharOID:  {canonical.KindText, ""},
	pgtype.NameOID:    {canonical.KindText, ""},
	pgtype.UUIDOID:    {canonical.KindText, ""},
	pgtype.BoolOID:    {canonical.KindBoolean, ""},

	pgtype.TimestampOID:   {canonical.KindTimestamp, ""},
	pgtype.TimestamptzOID: {canonical.KindTimestamp, ""},
	pgtype.DateOID:        {canonical.KindTimestamp, ""},

	pgtype.JSONOID:  {canonical.KindPayload, ""},
	pgtype.JSONBOID: {canonical.KindPayload, ""},

	pgtype.Int4ArrayOID:        {canonical.KindSequence, canonical.KindInteger},
	pgtype.Int8ArrayOID:        {canonical.KindSequence, canonical.KindInteger},
	pgtype.Float8ArrayOID:      {canonical.KindSequence, canonical.KindFloat},
	pgtype.TextArrayOID:        {canonical.KindSequence, canonical.KindText},
	pgtype.VarcharArrayOID:     {canonical.KindSequence, canonical.KindText},
	pgtype.TimestampArrayOID:   {canonical.KindSequence, canonical.KindTimestamp},
	pgtype.TimestamptzArrayOID: {canonical.KindSequence, canonical.KindTimestamp},
	pgtype.BoolArrayOID:        {canonical.KindSequence, canonical.KindBoolean},
}

// typeNameKinds - отображение имен типов (для KindFromDatabaseType)
var typeNameKinds = map[string]columnKind{
	"int2": {canonical.KindInteger, ""}, "int4": {canonical.KindInteger, ""},
	"int8": {canonical.KindInteger, ""}, "smallint": {canonical.KindInteger, ""},
	"integer": {canonical.KindInteger, ""}, "bigint": {canonical.KindInteger, ""},
	"float4": {canonical.KindFloat, ""}, "float8": {canonical.KindFloat, ""},
	"numeric": {canonical.KindFloat, ""}, "real": {canonical.KindFloat, ""},
	"double precision": {canonical.KindFloat, ""},
	"text":             {canonical.KindText, ""}, "varchar": {canonical.KindText, ""},
	"bpchar": {canonical.KindText, ""}, "name": {canonical.KindText, ""},
	"uuid": {canonical.KindText, ""}, "bool": {canonical.KindBoolean, ""},
	"boolean": {canonical.KindBoolean, ""},
	"timestamp": {canonical.KindTimestamp, ""}, "timestamptz": {canonical.KindTimestamp, ""},
	"date": {canonical.KindTimestamp, ""},
	"json": {canonical.KindPayload, ""}, "jsonb": {canonical.KindPayload, ""},
	"_int4": {canonical.KindSequence, canonical.KindInteger},
	"_int8": {canonical.KindSequence, canonical.KindInteger},
	"_float8": {canonical.KindSequence, canonical.KindFloat},
	"_text": {canonical.KindSequence, canonical.KindText},
	"_varchar": {canonical.KindSequence, canonical.KindText},
	"_timestamp": {canonical.KindSequence, canonical.KindTimestamp},
	"_timestamptz": {canonical.KindSequence, canonical.KindTimestamp},
	"_bool": {canonical.KindSequence, canonical.KindBoolean},
}

// KindFromDatabaseType отображает имя типа PostgreSQL в канонический Kind
func (m *TypeMapper) KindFromDatabaseType(dbType string) (canonical.Kind, canonical.Kind, bool) {
	ck, ok := typeNameKinds[dbType]
	if !ok {
		return "", "", false
	}
	return ck.kind, ck.elem, true
}

// columnFromOID строит описание колонки по OID типа
func columnFromOID(name string, oid uint32) (adapters.Column, bool) {
	ck, ok := oidKinds[oid]
	if !ok {
		return adapters.Column{}, false
	}
	return adapters.Column{Name: name, Kind: ck.kind, Elem: ck.elem}, true
}

// FromNative конвертирует значение, прочитанное драйвером pgx,
// в каноническое. nil означает SQL NULL.
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
		case int16:
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
		if v, ok := value.(string); ok {
			return canonical.Text(v), nil
		}
		if v, ok := value.([]byte); ok {
			return canonical.Text(string(v)), nil
		}
	case canonical.KindBoolean:
		if v, ok := value.(bool); ok {
			return canonical.Boolean(v), nil
		}
	case canonical.KindTimestamp:
		if v, ok := value.(time.Time); ok {
			return canonical.Timestamp(v), nil
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
				"column '%s': expected raw json text, got %T", col.Name, value)
		}
		p, err := canonical.ParsePayload(raw)
		if err != nil {
			return canonical.Value{}, fmt.Errorf("column '%s': %w", col.Name, err)
		}
		return canonical.StructuredPayload(p), nil
	case canonical.KindSequence:
		return m.sequenceFromNative(value, col)
	}

	return canonical.Value{}, fmt.Errorf(
		"column '%s': cannot map %T to canonical %s", col.Name, value, col.Kind)
}

// sequenceFromNative конвертирует нативный массив PostgreSQL
func (m *TypeMapper) sequenceFromNative(value any, col adapters.Column) (canonical.Value, error) {
	switch v := value.(type) {
	case []int64:
		out := make([]canonical.Value, len(v))
		for i, e := range v {
			out[i] = canonical.Integer(e)
		}
		return canonical.Sequence(out...), nil
	case []int32:
		out := make([]canonical.Value, len(v))
		for i, e := range v {
			out[i] = canonical.Integer(int64(e))
		}
		return canonical.Sequence(out...), nil
	case []float64:
		out := make([]canonical.Value, len(v))
		for i, e := range v {
			out[i] = canonical.Float(e)
		}
		return canonical.Sequence(out...), nil
	case []string:
		out := make([]canonical.Value, len(v))
		for i, e := range v {
			out[i] = canonical.Text(e)
		}
		return canonical.Sequence(out...), nil
	case []time.Time:
		out := make([]canonical.Value, len(v))
		for i, e := range v {
			out[i] = canonical.Timestamp(e)
		}
		return canonical.Sequence(out...), nil
	case []bool:
		out := make([]canonical.Value, len(v))
		for i, e := range v {
			out[i] = canonical.Boolean(e)
		}
		return canonical.Sequence(out...), nil
	}
	return canonical.Value{}, fmt.Errorf(
		"column '%s': cannot map %T to canonical sequence", col.Name, value)
}

// NativeValue конвертирует каноническое значение в параметр драйвера pgx
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
		return *v.BoolValue, nil
	case canonical.KindTimestamp:
		return v.TimeValue.UTC(), nil
	case canonical.KindPayload:
		return v.PayloadValue.Encode()
	case canonical.KindSequence:
		return m.nativeSequence(v.SeqValues)
	}
	return nil, fmt.Errorf("cannot map canonical %s to native value", v.Kind)
}

// nativeSequence строит типизированный Go-слайс для кодека массива pgx
func (m *TypeMapper) nativeSequence(values []canonical.Value) (any, error) {
	if len(values) == 0 {
		return []string{}, nil
	}
	switch values[0].Kind {
	case canonical.KindInteger:
		out := make([]int64, len(values))
		for i, e := range values {
			out[i] = *e.IntValue
		}
		return out, nil
	case canonical.KindFloat:
		out := make([]float64, len(values))
		for i, e := range values {
			out[i] = *e.FloatValue
		}
		return out, nil
	case canonical.KindText:
		out := make([]string, len(values))
		for i, e := range values {
			out[i] = *e.StringValue
		}
		return out, nil
	case canonical.KindTimestamp:
		out := make([]time.Time, len(values))
		for i, e := range values {
			out[i] = e.TimeValue.UTC()
		}
		return out, nil
	case canonical.KindBoolean:
		out := make([]bool, len(values))
		for i, e := range values {
			out[i] = *e.BoolValue
		}
		return out, nil
	}
	return nil, fmt.Errorf("cannot map sequence of %s to native array", values[0].Kind)
}

// SQLType возвращает SQL тип PostgreSQL для CREATE TABLE
func (m *TypeMapper) SQLType(col adapters.Column) string {
	switch col.Kind {
	case canonical.KindInteger:
		return "BIGINT"
	case canonical.KindFloat:
		return "DOUBLE PRECISION"
	case canonical.KindText:
		return "TEXT"
	case canonical.KindBoolean:
		return "BOOLEAN"
	case canonical.KindTimestamp:
		return "TIMESTAMP"
	case canonical.KindPayload:
		return "JSONB"
	case canonical.KindSequence:
		switch col.Elem {
		case canonical.KindInteger:
			return "BIGINT[]"
		case canonical.KindFloat:
			return "DOUBLE PRECISION[]"
		case canonical.KindTimestamp:
			return "TIMESTAMP[]"
		case canonical.KindBoolean:
			return "BOOLEAN[]"
		default:
			return "TEXT[]"
		}
	}
	return "TEXT"
}

// ========== Scan targets ==========

// scanTarget - типизированная цель для pgx Scan с поддержкой NULL
// через указатель: nil после Scan означает SQL NULL.
type scanTarget interface {
	dest() any
	value() any
}

type target[T any] struct {
	v *T
}

func (t *target[T]) dest() any { return &t.v }

func (t *target[T]) value() any {
	if t.v == nil {
		return nil
	}
	return *t.v
}

// newScanTarget выбирает цель Scan по каноническому типу колонки.
// PAYLOAD читается как сырой текст: декодирование в map потеряло бы
// порядок ключей документа.
func newScanTarget(col adapters.Column) scanTarget {
	switch col.Kind {
	case canonical.KindInteger:
		return &target[int64]{}
	case canonical.KindFloat:
		return &target[float64]{}
	case canonical.KindBoolean:
		return &target[bool]{}
	case canonical.KindTimestamp:
		return &target[time.Time]{}
	case canonical.KindSequence:
		switch col.Elem {
		case canonical.KindInteger:
			return &target[[]int64]{}
		case canonical.KindFloat:
			return &target[[]float64]{}
		case canonical.KindTimestamp:
			return &target[[]time.Time]{}
		case canonical.KindBoolean:
			return &target[[]bool]{}
		default:
			return &target[[]string]{}
		}
	default:
		// TEXT и PAYLOAD
		return &target[string]{}
	}
}
