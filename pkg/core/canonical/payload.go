package canonical

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// PayloadKind вид узла документа
type PayloadKind int

const (
	PayloadNull PayloadKind = iota
	PayloadBool
	PayloadNumber
	PayloadString
	PayloadArray
	PayloadObject
)

// Member пара ключ-значение объекта.
// Порядок членов значим и сохраняется при round-trip.
type Member struct {
	Key   string
	Value Payload
}

// Payload представляет полуструктурированный документ (JSON-дерево).
// В отличие от map[string]any сохраняет порядок ключей объектов,
// поэтому decode(encode(p)) == p для любого документа.
// Числа хранятся как исходный текст (json.Number) без потери точности.
type Payload struct {
	Kind    PayloadKind
	Bool    bool
	Number  string
	Str     string
	Items   []Payload
	Members []Member
}

// ========== Конструкторы узлов ==========

// PNull создает null-узел
func PNull() Payload { return Payload{Kind: PayloadNull} }

// PBool создает логический узел
func PBool(v bool) Payload { return Payload{Kind: PayloadBool, Bool: v} }

// PNumber создает числовой узел из текстового представления
func PNumber(v string) Payload { return Payload{Kind: PayloadNumber, Number: v} }

// PInt создает числовой узел из целого
func PInt(v int64) Payload { return Payload{Kind: PayloadNumber, Number: fmt.Sprintf("%d", v)} }

// PString создает строковый узел
func PString(v string) Payload { return Payload{Kind: PayloadString, Str: v} }

// PArray создает узел-массив
func PArray(items ...Payload) Payload { return Payload{Kind: PayloadArray, Items: items} }

// PObject создает узел-объект с сохранением порядка членов
func PObject(members ...Member) Payload { return Payload{Kind: PayloadObject, Members: members} }

// ========== Кодирование ==========

// Encode сериализует документ в JSON с сохранением порядка ключей
func (p *Payload) Encode() (string, error) {
	var sb strings.Builder
	if err := p.encodeTo(&sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (p *Payload) encodeTo(sb *strings.Builder) error {
	switch p.Kind {
	case PayloadNull:
		sb.WriteString("null")
	case PayloadBool:
		if p.Bool {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case PayloadNumber:
		if p.Number == "" {
			return fmt.Errorf("payload number node has empty literal")
		}
		sb.WriteString(p.Number)
	case PayloadString:
		data, err := json.Marshal(p.Str)
		if err != nil {
			return err
		}
		sb.Write(data)
	case PayloadArray:
		sb.WriteByte('[')
		for i := range p.Items {
			if i > 0 {
				sb.WriteByte(',')
			}
			if err := p.Items[i].encodeTo(sb); err != nil {
				return err
			}
		}
		sb.WriteByte(']')
	case PayloadObject:
		sb.WriteByte('{')
		for i := range p.Members {
			if i > 0 {
				sb.WriteByte(',')
			}
			key, err := json.Marshal(p.Members[i].Key)
			if err != nil {
				return err
			}
			sb.Write(key)
			sb.WriteByte(':')
			if err := p.Members[i].Value.encodeTo(sb); err != nil {
				return err
			}
		}
		sb.WriteByte('}')
	default:
		return fmt.Errorf("unknown payload kind: %d", p.Kind)
	}
	return nil
}

// ========== Декодирование ==========

// ParsePayload разбирает JSON документ с сохранением порядка ключей.
// Стандартный json.Unmarshal в map теряет порядок, поэтому используется
// потоковый разбор через json.Decoder.
func ParsePayload(data string) (*Payload, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.UseNumber()

	p, err := decodeValue(dec)
	if err != nil {
		return nil, fmt.Errorf("failed to parse payload: %w", err)
	}

	// Проверяем что после документа нет мусора
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("failed to parse payload: trailing data after document")
	}

	return p, nil
}

func decodeValue(dec *json.Decoder) (*Payload, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return decodeFromToken(dec, tok)
}

func decodeFromToken(dec *json.Decoder, tok json.Token) (*Payload, error) {
	switch t := tok.(type) {
	case nil:
		p := PNull()
		return &p, nil
	case bool:
		p := PBool(t)
		return &p, nil
	case json.Number:
		p := PNumber(t.String())
		return &p, nil
	case string:
		p := PString(t)
		return &p, nil
	case json.Delim:
		switch t {
		case '[':
			return decodeArray(dec)
		case '{':
			return decodeObject(dec)
		default:
			return nil, fmt.Errorf("unexpected delimiter: %v", t)
		}
	default:
		return nil, fmt.Errorf("unexpected token: %v", tok)
	}
}

func decodeArray(dec *json.Decoder) (*Payload, error) {
	items := []Payload{}
	for dec.More() {
		item, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	// Закрывающий ']'
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	p := Payload{Kind: PayloadArray, Items: items}
	return &p, nil
}

func decodeObject(dec *json.Decoder) (*Payload, error) {
	members := []Member{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("object key is not a string: %v", keyTok)
		}

		val, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		members = append(members, Member{Key: key, Value: *val})
	}
	// Закрывающий '}'
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	p := Payload{Kind: PayloadObject, Members: members}
	return &p, nil
}

// Equal структурно сравнивает два документа (порядок ключей значим)
func (p *Payload) Equal(other *Payload) bool {
	if p == nil || other == nil {
		return p == other
	}
	if p.Kind != other.Kind {
		return false
	}

	switch p.Kind {
	case PayloadNull:
		return true
	case PayloadBool:
		return p.Bool == other.Bool
	case PayloadNumber:
		return p.Number == other.Number
	case PayloadString:
		return p.Str == other.Str
	case PayloadArray:
		if len(p.Items) != len(other.Items) {
			return false
		}
		for i := range p.Items {
			if !p.Items[i].Equal(&other.Items[i]) {
				return false
			}
		}
		return true
	case PayloadObject:
		if len(p.Members) != len(other.Members) {
			return false
		}
		for i := range p.Members {
			if p.Members[i].Key != other.Members[i].Key {
				return false
			}
			if !p.Members[i].Value.Equal(&other.Members[i].Value) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
