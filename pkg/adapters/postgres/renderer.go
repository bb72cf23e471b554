package postgres

import (
	"fmt"
	"strings"

	"github.com/ruslano69/sqlbridge/pkg/core/canonical"
	"github.com/ruslano69/sqlbridge/pkg/dialect"
)

// Compile-time check: Renderer должен реализовывать dialect.Renderer
var _ dialect.Renderer = (*Renderer)(nil)

// Capabilities - статический набор возможностей PostgreSQL
var Capabilities = dialect.CapabilitySet{
	Dialect:          "postgres",
	NativeArrays:     true,
	NativeBoolean:    true,
	NativeJSON:       true,
	TransactionalDDL: true,
}

// Renderer рендерит SQL-фрагменты в синтаксисе PostgreSQL
type Renderer struct{}

// NewRenderer создает рендерер PostgreSQL
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Literal рендерит каноническое значение как PostgreSQL литерал
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
			return "TRUE", nil
		}
		return "FALSE", nil
	case canonical.KindTimestamp:
		return fmt.Sprintf("'%s'::timestamp",
			v.TimeValue.UTC().Format("2006-01-02 15:04:05.999999999")), nil
	case canonical.KindPayload:
		encoded, err := v.PayloadValue.Encode()
		if err != nil {
			return "", err
		}
		return quoteString(encoded) + "::jsonb", nil
	case canonical.KindSequence:
		return r.arrayLiteral(v.SeqValues)
	default:
		return "", &dialect.UnsupportedValueTypeError{Dialect: "postgres", Kind: v.Kind}
	}
}

// ArrayConstructor рендерит набор значений как UNNEST нативного массива:
// (SELECT UNNEST(ARRAY['2016-01-01 00:00:00']::timestamp[]))
// Форма пригодна как источник IN-предиката.
func (r *Renderer) ArrayConstructor(values []canonical.Value) (string, error) {
	elems := make([]string, len(values))
	for i, v := range values {
		lit, err := r.elementLiteral(v)
		if err != nil {
			return "", err
		}
		elems[i] = lit
	}

	cast, err := arrayCast(values[0].Kind)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("(SELECT UNNEST(ARRAY[%s]::%s))",
		strings.Join(elems, ", "), cast), nil
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
	return "(SELECT NULL WHERE FALSE)"
}

// StructuredField рендерит извлечение поля JSONB документа как текста
func (r *Renderer) StructuredField(column, path string) string {
	return fmt.Sprintf("%s ->> '%s'", r.QuoteIdentifier(column), path)
}

// BooleanPredicate - нативный BOOLEAN, колонка сама является предикатом
func (r *Renderer) BooleanPredicate(column string) string {
	return r.QuoteIdentifier(column)
}

// ArrayContains рендерит проверку принадлежности значения массиву:
// 'v' = ANY(col)
func (r *Renderer) ArrayContains(column string, v canonical.Value) (string, error) {
	lit, err := r.elementLiteral(v)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s = ANY(%s)", lit, r.QuoteIdentifier(column)), nil
}

// LimitQuery добавляет ограничение количества строк
func (r *Renderer) LimitQuery(selectSQL string, limit int) string {
	return fmt.Sprintf("%s LIMIT %d", selectSQL, limit)
}

// IntervalLiteral рендерит литерал интервала: '3 days'::interval
func (r *Renderer) IntervalLiteral(value string) string {
	return fmt.Sprintf("'%s'::interval", strings.ReplaceAll(value, "'", "''"))
}

// QuoteIdentifier экранирует идентификатор двойными кавычками
func (r *Renderer) QuoteIdentifier(identifier string) string {
	return `"` + strings.ReplaceAll(identifier, `"`, `""`) + `"`
}

// ========== Вспомогательные функции ==========

// elementLiteral рендерит значение без cast-суффикса - для позиций,
// где тип задан объемлющей конструкцией (ARRAY[...]::t[], ANY)
func (r *Renderer) elementLiteral(v canonical.Value) (string, error) {
	if v.IsNull {
		return "NULL", nil
	}
	if v.Kind == canonical.KindTimestamp {
		return "'" + v.TimeValue.UTC().Format("2006-01-02 15:04:05.999999999") + "'", nil
	}
	return r.Literal(v)
}

// arrayLiteral рендерит SEQUENCE как типизированный массив
func (r *Renderer) arrayLiteral(values []canonical.Value) (string, error) {
	if len(values) == 0 {
		return "ARRAY[]::text[]", nil
	}
	elems := make([]string, len(values))
	for i, v := range values {
		lit, err := r.elementLiteral(v)
		if err != nil {
			return "", err
		}
		elems[i] = lit
	}
	cast, err := arrayCast(values[0].Kind)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ARRAY[%s]::%s", strings.Join(elems, ", "), cast), nil
}

func arrayCast(elem canonical.Kind) (string, error) {
	switch elem {
	case canonical.KindInteger:
		return "bigint[]", nil
	case canonical.KindFloat:
		return "double precision[]", nil
	case canonical.KindText:
		return "text[]", nil
	case canonical.KindTimestamp:
		return "timestamp[]", nil
	case canonical.KindBoolean:
		return "boolean[]", nil
	default:
		return "", &dialect.UnsupportedValueTypeError{Dialect: "postgres", Kind: elem}
	}
}

func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func formatFloat(f float64) string {
	s := fmt.Sprintf("%g", f)
	// Гарантируем, что литерал читается как float, не integer
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
