package canonical

import (
	"fmt"
	"time"
)

// Kind представляет канонический тип значения
type Kind string

// Поддерживаемые канонические типы.
// Каждое нативное значение СУБД отображается ровно в один Kind,
// отображение тотально и детерминировано в обе стороны.
const (
	KindInteger   Kind = "INTEGER"
	KindFloat     Kind = "FLOAT"
	KindText      Kind = "TEXT"
	KindTimestamp Kind = "TIMESTAMP"
	KindBoolean   Kind = "BOOLEAN"
	KindPayload   Kind = "PAYLOAD"  // полуструктурированный документ (JSON)
	KindSequence  Kind = "SEQUENCE" // упорядоченная последовательность значений
)

// Value представляет типизированное каноническое значение.
// Ровно одно из Value-полей заполнено согласно Kind (кроме IsNull).
type Value struct {
	Kind   Kind
	IsNull bool

	IntValue     *int64
	FloatValue   *float64
	StringValue  *string
	BoolValue    *bool
	TimeValue    *time.Time // всегда UTC
	PayloadValue *Payload
	SeqValues    []Value
}

// FieldDef определение поля результата/таблицы
type FieldDef struct {
	Name     string
	Kind     Kind
	Elem     Kind // тип элементов для SEQUENCE
	Nullable bool
}

// ValidationError ошибка валидации значения
type ValidationError struct {
	Field   string
	Message string
	Value   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s (value: '%s')",
		e.Field, e.Message, e.Value)
}

// IntegrityError ошибка целостности данных: нативное представление
// вне объявленного домена (например, integer-boolean не из {0,1}).
// Никогда не интерпретируется как "best effort" — это всегда ошибка.
type IntegrityError struct {
	Field   string
	Message string
	Value   string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("integrity error for field '%s': %s (value: '%s')",
		e.Field, e.Message, e.Value)
}

// ========== Конструкторы ==========

// Integer создает целочисленное значение
func Integer(v int64) Value {
	return Value{Kind: KindInteger, IntValue: &v}
}

// Float создает значение с плавающей точкой
func Float(v float64) Value {
	return Value{Kind: KindFloat, FloatValue: &v}
}

// Text создает текстовое значение
func Text(v string) Value {
	return Value{Kind: KindText, StringValue: &v}
}

// Timestamp создает временное значение (абсолютный момент, приводится к UTC)
func Timestamp(v time.Time) Value {
	utc := v.UTC()
	return Value{Kind: KindTimestamp, TimeValue: &utc}
}

// Boolean создает логическое значение
func Boolean(v bool) Value {
	return Value{Kind: KindBoolean, BoolValue: &v}
}

// StructuredPayload создает значение-документ
func StructuredPayload(p *Payload) Value {
	return Value{Kind: KindPayload, PayloadValue: p}
}

// Sequence создает последовательность значений
func Sequence(values ...Value) Value {
	if values == nil {
		values = []Value{}
	}
	return Value{Kind: KindSequence, SeqValues: values}
}

// Null создает NULL значение указанного типа
func Null(kind Kind) Value {
	return Value{Kind: kind, IsNull: true}
}

// ========== Предикаты и утилиты ==========

// IsValidKind проверяет валидность канонического типа
func IsValidKind(k Kind) bool {
	switch k {
	case KindInteger, KindFloat, KindText, KindTimestamp,
		KindBoolean, KindPayload, KindSequence:
		return true
	default:
		return false
	}
}

// IsScalarKind проверяет является ли тип скалярным
// (не документ и не последовательность)
func IsScalarKind(k Kind) bool {
	switch k {
	case KindInteger, KindFloat, KindText, KindTimestamp, KindBoolean:
		return true
	default:
		return false
	}
}

// Equal сравнивает два канонических значения.
// Timestamp сравнивается как абсолютный момент, Payload — структурно
// (с сохранением порядка ключей), Sequence — поэлементно.
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	if a.IsNull || b.IsNull {
		return a.IsNull == b.IsNull
	}

	switch a.Kind {
	case KindInteger:
		return a.IntValue != nil && b.IntValue != nil && *a.IntValue == *b.IntValue
	case KindFloat:
		return a.FloatValue != nil && b.FloatValue != nil && *a.FloatValue == *b.FloatValue
	case KindText:
		return a.StringValue != nil && b.StringValue != nil && *a.StringValue == *b.StringValue
	case KindBoolean:
		return a.BoolValue != nil && b.BoolValue != nil && *a.BoolValue == *b.BoolValue
	case KindTimestamp:
		return a.TimeValue != nil && b.TimeValue != nil && a.TimeValue.Equal(*b.TimeValue)
	case KindPayload:
		return a.PayloadValue != nil && b.PayloadValue != nil &&
			a.PayloadValue.Equal(b.PayloadValue)
	case KindSequence:
		if len(a.SeqValues) != len(b.SeqValues) {
			return false
		}
		for i := range a.SeqValues {
			if !Equal(a.SeqValues[i], b.SeqValues[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
