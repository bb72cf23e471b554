package sqlite

import (
	"fmt"
	"strings"

	"github.com/ruslano69/sqlbridge/pkg/core/canonical"
	"github.com/ruslano69/sqlbridge/pkg/dialect"
)

// Compile-time check: Renderer должен реализовывать dialect.Renderer
var _ dialect.Renderer = (*Renderer)(nil)

// Capabilities - статический набор возможностей SQLite.
// Профиль близок к Oracle: integer-boolean, текстовые коллекции,
// документы в текстовой колонке; но DDL транзакционен и LIMIT нативен.
var Capabilities = dialect.CapabilitySet{
	Dialect:          "sqlite",
	NativeArrays:     false,
	NativeBoolean:    false,
	NativeJSON:       false,
	TransactionalDDL: true,
}

// Renderer рендерит SQL-фрагменты в синтаксисе SQLite
type Renderer struct{}

// NewRenderer создает рендерер SQLite
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Literal рендерит каноническое значение как SQLite литерал
func (r *Renderer) Literal(v canonical.Value) (string, error) {
	if v.IsNull {
		return "NULL", nil
	}

	switch v.Kind {
	case canonical.KindInteger:
		return fmt.Sprintf("%d", *v.IntValue), nil
	case canonical.KindFloat:
		return formatFloat(*v.FloatValue), nil
	case canonical.KindText:
		return quoteString(*v.StringValue), nil
	case canonical.KindBoolean:
		if *v.BoolValue {
			return "1", nil
		}
		return "0", nil
	case canonical.KindTimestamp:
		return "'" + v.TimeValue.UTC().Format("2006-01-02 15:04:05.999999999") + "'", nil
	case canonical.KindPayload:
		encoded, err := v.PayloadValue.Encode()
		if err != nil {
			return "", err
		}
		return quoteString(encoded), nil
	case canonical.KindSequence:
		encoded, err := canonical.EncodeSequence(v.SeqValues)
		if err != nil {
			return "", err
		}
		return quoteString(encoded), nil
	default:
		return "", &dialect.UnsupportedValueTypeError{Dialect: "sqlite", Kind: v.Kind}
	}
}

// ArrayConstructor недоступен: нет нативных массивов
func (r *Renderer) ArrayConstructor(values []canonical.Value) (string, error) {
	return "", &dialect.UnsupportedValueTypeError{
		Dialect: "sqlite", Kind: canonical.KindSequence}
}

// LiteralList рендерит список литералов: ('a', 'b', 'c')
func (r *Renderer) LiteralList(values []canonical.Value) (string, error) {
	elems := make([]string, len(values))
	for i, v := range values {
		lit, err := r.Literal(v)
		if err != nil {
			return "", err
		}
		elems[i] = lit
	}
	return "(" + strings.Join(elems, ", ") + ")", nil
}

// EmptySet рендерит гарантированно пустой источник для IN-предиката
func (r *Renderer) EmptySet() string {
	return "(SELECT NULL WHERE 1=0)"
}

// StructuredField рендерит извлечение поля JSON документа
func (r *Renderer) StructuredField(column, path string) string {
	return fmt.Sprintf("json_extract(%s, '$.%s')", r.QuoteIdentifier(column), path)
}

// BooleanPredicate - integer-boolean домен, сравнение с 1
func (r *Renderer) BooleanPredicate(column string) string {
	return fmt.Sprintf("%s = 1", r.QuoteIdentifier(column))
}

// ArrayContains рендерит LIKE-пробу по текстовой кодировке коллекции
func (r *Renderer) ArrayContains(column string, v canonical.Value) (string, error) {
	encoded, err := canonical.EncodeSequence([]canonical.Value{v})
	if err != nil {
		return "", err
	}
	probe := escapeLike(encoded)
	return fmt.Sprintf("(',' || %s || ',') LIKE %s ESCAPE '\\'",
		r.QuoteIdentifier(column),
		quoteString("%,"+probe+",%")), nil
}

// LimitQuery добавляет ограничение количества строк
func (r *Renderer) LimitQuery(selectSQL string, limit int) string {
	return fmt.Sprintf("%s LIMIT %d", selectSQL, limit)
}

// IntervalLiteral рендерит модификатор datetime: '+3 days'
func (r *Renderer) IntervalLiteral(value string) string {
	v := strings.TrimSpace(value)
	if !strings.HasPrefix(v, "+") && !strings.HasPrefix(v, "-") {
		v = "+" + v
	}
	return quoteString(v)
}

// QuoteIdentifier экранирует идентификатор двойными кавычками
func (r *Renderer) QuoteIdentifier(identifier string) string {
	return `"` + strings.ReplaceAll(identifier, `"`, `""`) + `"`
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func formatFloat(f float64) string {
	s := fmt.Sprintf("%g", f)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
