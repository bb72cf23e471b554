package canonical

import (
	"strconv"
	"time"
)

// Допустимые текстовые форматы TIMESTAMP.
// Список фиксирован: форматы вне списка отклоняются, не угадываются.
// Формы без явной таймзоны интерпретируются как UTC.
var timestampLayouts = []struct {
	layout string
	hasTZ  bool
}{
	{time.RFC3339Nano, true},
	{"2006-01-02 15:04:05.999999999", false},
	{"2006-01-02 15:04:05", false},
	{"2006-01-02T15:04:05", false},
	{"2006-01-02", false},
}

// Converter отвечает за конвертацию между канонической текстовой формой
// и типизированными значениями. Чистый и без состояния: одна пара
// функций на каждый Kind, отображение тотально в обе стороны.
type Converter struct{}

// NewConverter создает новый конвертер
func NewConverter() *Converter {
	return &Converter{}
}

// ParseValue парсит текстовую форму согласно типу поля
func (c *Converter) ParseValue(rawValue string, field FieldDef) (*Value, error) {
	// Пустая строка для TEXT — валидное значение, для остальных типов NULL
	if rawValue == "" {
		if field.Kind == KindText {
			return &Value{Kind: KindText, StringValue: &rawValue}, nil
		}
		if field.Kind == KindSequence {
			return &Value{Kind: KindSequence, SeqValues: []Value{}}, nil
		}
		if !field.Nullable {
			return nil, &ValidationError{
				Field:   field.Name,
				Message: "field is not nullable",
				Value:   rawValue,
			}
		}
		return &Value{Kind: field.Kind, IsNull: true}, nil
	}

	switch field.Kind {
	case KindInteger:
		return c.parseInteger(rawValue, field)
	case KindFloat:
		return c.parseFloat(rawValue, field)
	case KindText:
		return &Value{Kind: KindText, StringValue: &rawValue}, nil
	case KindBoolean:
		return c.parseBoolean(rawValue, field)
	case KindTimestamp:
		return c.parseTimestamp(rawValue, field)
	case KindPayload:
		return c.parsePayload(rawValue, field)
	case KindSequence:
		return c.parseSequence(rawValue, field)
	default:
		return nil, &ValidationError{
			Field:   field.Name,
			Message: "unsupported kind: " + string(field.Kind),
			Value:   rawValue,
		}
	}
}

func (c *Converter) parseInteger(raw string, field FieldDef) (*Value, error) {
	val, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, &ValidationError{
			Field:   field.Name,
			Message: "invalid integer value",
			Value:   raw,
		}
	}
	return &Value{Kind: KindInteger, IntValue: &val}, nil
}

func (c *Converter) parseFloat(raw string, field FieldDef) (*Value, error) {
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, &ValidationError{
			Field:   field.Name,
			Message: "invalid float value",
			Value:   raw,
		}
	}
	return &Value{Kind: KindFloat, FloatValue: &val}, nil
}

// parseBoolean принимает строго "0"/"1".
// Любое другое значение — ошибка целостности, не коэрция.
func (c *Converter) parseBoolean(raw string, field FieldDef) (*Value, error) {
	switch raw {
	case "0":
		v := false
		return &Value{Kind: KindBoolean, BoolValue: &v}, nil
	case "1":
		v := true
		return &Value{Kind: KindBoolean, BoolValue: &v}, nil
	default:
		return nil, &IntegrityError{
			Field:   field.Name,
			Message: "boolean must be 0 or 1",
			Value:   raw,
		}
	}
}

func (c *Converter) parseTimestamp(raw string, field FieldDef) (*Value, error) {
	for _, l := range timestampLayouts {
		var val time.Time
		var err error
		if l.hasTZ {
			val, err = time.Parse(l.layout, raw)
		} else {
			val, err = time.ParseInLocation(l.layout, raw, time.UTC)
		}
		if err == nil {
			utc := val.UTC()
			return &Value{Kind: KindTimestamp, TimeValue: &utc}, nil
		}
	}
	return nil, &ValidationError{
		Field:   field.Name,
		Message: "ambiguous or invalid timestamp format",
		Value:   raw,
	}
}

func (c *Converter) parsePayload(raw string, field FieldDef) (*Value, error) {
	p, err := ParsePayload(raw)
	if err != nil {
		return nil, &ValidationError{
			Field:   field.Name,
			Message: "invalid structured payload: " + err.Error(),
			Value:   raw,
		}
	}
	return &Value{Kind: KindPayload, PayloadValue: p}, nil
}

func (c *Converter) parseSequence(raw string, field FieldDef) (*Value, error) {
	elem := field.Elem
	if elem == "" {
		elem = KindText
	}
	values, err := DecodeSequence(raw, elem)
	if err != nil {
		return nil, err
	}
	return &Value{Kind: KindSequence, SeqValues: values}, nil
}

// FormatValue форматирует каноническое значение в текстовую форму.
// FormatValue и ParseValue взаимно обратны для каждого Kind.
func (c *Converter) FormatValue(v *Value) (string, error) {
	if v.IsNull {
		return "", nil
	}

	switch v.Kind {
	case KindInteger:
		if v.IntValue != nil {
			return strconv.FormatInt(*v.IntValue, 10), nil
		}
	case KindFloat:
		if v.FloatValue != nil {
			return strconv.FormatFloat(*v.FloatValue, 'f', -1, 64), nil
		}
	case KindText:
		if v.StringValue != nil {
			return *v.StringValue, nil
		}
	case KindBoolean:
		if v.BoolValue != nil {
			if *v.BoolValue {
				return "1", nil
			}
			return "0", nil
		}
	case KindTimestamp:
		if v.TimeValue != nil {
			return v.TimeValue.UTC().Format(time.RFC3339Nano), nil
		}
	case KindPayload:
		if v.PayloadValue != nil {
			return v.PayloadValue.Encode()
		}
	case KindSequence:
		return EncodeSequence(v.SeqValues)
	}

	return "", &ValidationError{
		Field:   "",
		Message: "value has no content for kind " + string(v.Kind),
		Value:   "",
	}
}
