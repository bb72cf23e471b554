package canonical

import (
	"strings"
)

// Текстовая кодировка SEQUENCE для СУБД без нативных коллекций.
// Разделитель и правило экранирования фиксированы:
//
//	разделитель: ','
//	экранирование: '\,' для запятой внутри элемента, '\\' для самого бэкслеша
//
// Round-trip без потерь для любых элементов, содержащих разделитель.
// Элементы кодируются канонической текстовой формой (Converter.FormatValue).
const (
	SequenceDelimiter = ','
	sequenceEscape    = '\\'
)

// EncodeSequence кодирует последовательность в разделённую строку.
// Элемент, кодирующийся в пустую строку, отклоняется с ошибкой:
// пустая строка зарезервирована под пустую последовательность,
// и молчаливая потеря элемента недопустима.
func EncodeSequence(values []Value) (string, error) {
	if len(values) == 0 {
		return "", nil
	}

	conv := NewConverter()
	parts := make([]string, 0, len(values))

	for _, v := range values {
		text, err := conv.FormatValue(&v)
		if err != nil {
			return "", err
		}
		if text == "" {
			return "", &IntegrityError{
				Message: "sequence element encodes to empty string and cannot round-trip",
				Value:   "",
			}
		}
		parts = append(parts, escapeSequenceElement(text))
	}

	return strings.Join(parts, string(SequenceDelimiter)), nil
}

// DecodeSequence разбирает разделённую строку в последовательность
// значений типа elem. Пустая строка — пустая последовательность.
func DecodeSequence(encoded string, elem Kind) ([]Value, error) {
	if encoded == "" {
		return []Value{}, nil
	}

	parts, err := splitEscaped(encoded)
	if err != nil {
		return nil, err
	}

	conv := NewConverter()
	values := make([]Value, 0, len(parts))
	for _, part := range parts {
		v, err := conv.ParseValue(part, FieldDef{Kind: elem, Nullable: false})
		if err != nil {
			return nil, err
		}
		values = append(values, *v)
	}

	return values, nil
}

// escapeSequenceElement экранирует разделитель и символ экранирования
func escapeSequenceElement(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == sequenceEscape || c == SequenceDelimiter {
			sb.WriteByte(sequenceEscape)
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

// splitEscaped разбивает строку по неэкранированным разделителям.
// Висячий бэкслеш в конце — ошибка целостности, не молчаливое усечение.
func splitEscaped(s string) ([]string, error) {
	var parts []string
	var sb strings.Builder

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case sequenceEscape:
			if i+1 >= len(s) {
				return nil, &IntegrityError{
					Message: "dangling escape character in sequence encoding",
					Value:   s,
				}
			}
			next := s[i+1]
			if next != sequenceEscape && next != SequenceDelimiter {
				return nil, &IntegrityError{
					Message: "invalid escape sequence in sequence encoding",
					Value:   s,
				}
			}
			sb.WriteByte(next)
			i++
		case SequenceDelimiter:
			parts = append(parts, sb.String())
			sb.Reset()
		default:
			sb.WriteByte(c)
		}
	}
	parts = append(parts, sb.String())

	return parts, nil
}
