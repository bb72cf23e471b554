package oracle

import (
	"fmt"
	"strings"

	"github.com/ruslano69/sqlbridge/pkg/core/canonical"
	"github.com/ruslano69/sqlbridge/pkg/dialect"
)

// Compile-time check: Renderer должен реализовывать dialect.Renderer
var _ dialect.Renderer = (*Renderer)(nil)

// Capabilities - статический набор возможностей Oracle.
// Нет нативных массивов, BOOLEAN и JSONB: коллекции кодируются текстом,
// логические значения хранятся как NUMBER(1) в домене {0,1},
// документы - в CLOB. DDL не транзакционен.
var Capabilities = dialect.CapabilitySet{
	Dialect:          "oracle",
	NativeArrays:     false,
	NativeBoolean:    false,
	NativeJSON:       false,
	TransactionalDDL: false,
}

// Renderer рендерит SQL-фрагменты в синтаксисе Oracle
type Renderer struct{}

// NewRenderer создает рендерер Oracle
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Literal рендерит каноническое значение как Oracle литерал
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
		// integer-boolean домен {0,1}
		if *v.BoolValue {
			return "1", nil
		}
		return "0", nil
	case canonical.KindTimestamp:
		return fmt.Sprintf("TIMESTAMP '%s'",
			v.TimeValue.UTC().Format("2006-01-02 15:04:05.999999999")), nil
	case canonical.KindPayload:
		encoded, err := v.PayloadValue.Encode()
		if err != nil {
			return "", err
		}
		return quoteString(encoded), nil
	case canonical.KindSequence:
		// текстовая кодировка коллекции
		encoded, err := canonical.EncodeSequence(v.SeqValues)
		if err != nil {
			return "", err
		}
		return quoteString(encoded), nil
	default:
		return "", &dialect.UnsupportedValueTypeError{Dialect: "oracle", Kind: v.Kind}
	}
}

// ArrayConstructor недоступен: Oracle-профиль не имеет нативного
// конструктора массивов, Builder обязан выбрать literal-list fallback
func (r *Renderer) ArrayConstructor(values []canonical.Value) (string, error) {
	return "", &dialect.UnsupportedValueTypeError{
		Dialect: "oracle", Kind: canonical.KindSequence}
}

// LiteralList рендерит список литералов: ('2016-01-01 00:00:00', ...)
// Timestamp рендерится без TIMESTAMP-префикса - форма пригодна для
// сравнения с DATE/TIMESTAMP колонками.
func (r *Renderer) LiteralList(values []canonical.Value) (string, error) {
	elems := make([]string, len(values))
	for i, v := range values {
		lit, err := r.elementLiteral(v)
		if err != nil {
			return "", err
		}
		elems[i] = lit
	}
	return "(" + strings.Join(elems, ", ") + ")", nil
}

// EmptySet рендерит гарантированно пустой источник для IN-предиката
func (r *Renderer) EmptySet() string {
	return "(SELECT NULL FROM DUAL WHERE 1=0)"
}

// StructuredField рендерит извлечение поля JSON документа из CLOB
func (r *Renderer) StructuredField(column, path string) string {
	return fmt.Sprintf("JSON_VALUE(%s, '$.%s')", r.QuoteIdentifier(column), path)
}

// BooleanPredicate - integer-boolean домен, сравнение с 1
func (r *Renderer) BooleanPredicate(column string) string {
	return fmt.Sprintf("%s = 1", r.QuoteIdentifier(column))
}

// ArrayContains рендерит LIKE-пробу по текстовой кодировке коллекции.
// Колонка окружается разделителями, чтобы элемент матчился целиком,
// а не как подстрока соседнего элемента.
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

// LimitQuery оборачивает запрос в ROWNUM-фильтр
func (r *Renderer) LimitQuery(selectSQL string, limit int) string {
	return fmt.Sprintf("SELECT * FROM (%s) WHERE ROWNUM <= %d", selectSQL, limit)
}

// IntervalLiteral рендерит литерал интервала: INTERVAL '3' DAY
func (r *Renderer) IntervalLiteral(value string) string {
	amount, unit, ok := splitInterval(value)
	if !ok {
		// неразборчивая форма - отдаем как DAY-интервал, бэкенд отклонит
		// некорректный литерал с собственной диагностикой
		return fmt.Sprintf("INTERVAL '%s' DAY", strings.ReplaceAll(value, "'", "''"))
	}
	return fmt.Sprintf("INTERVAL '%s' %s", amount, unit)
}

// QuoteIdentifier экранирует идентификатор двойными кавычками
func (r *Renderer) QuoteIdentifier(identifier string) string {
	return `"` + strings.ReplaceAll(identifier, `"`, `""`) + `"`
}

// ========== Вспомогательные функции ==========

// elementLiteral рендерит значение для позиции внутри IN-списка.
// Субсекундный timestamp рендерится через TO_TIMESTAMP с явной маской:
// дробные секунды не отбрасываются
func (r *Renderer) elementLiteral(v canonical.Value) (string, error) {
	if v.IsNull {
		return "NULL", nil
	}
	if v.Kind == canonical.KindTimestamp {
		ts := v.TimeValue.UTC()
		if ts.Nanosecond() != 0 {
			return fmt.Sprintf("TO_TIMESTAMP('%s', 'YYYY-MM-DD HH24:MI:SS.FF9')",
				ts.Format("2006-01-02 15:04:05.000000000")), nil
		}
		return "'" + ts.Format("2006-01-02 15:04:05") + "'", nil
	}
	return r.Literal(v)
}

// splitInterval разбирает форму "3 days" в количество и ANSI-единицу
func splitInterval(value string) (string, string, bool) {
	parts := strings.Fields(value)
	if len(parts) != 2 {
		return "", "", false
	}
	amount := parts[0]
	for _, c := range amount {
		if c < '0' || c > '9' {
			return "", "", false
		}
	}
	unit := strings.ToUpper(strings.TrimSuffix(strings.ToLower(parts[1]), "s"))
	switch unit {
	case "DAY", "HOUR", "MINUTE", "SECOND", "MONTH", "YEAR":
		return amount, unit, true
	}
	return "", "", false
}

// escapeLike экранирует спецсимволы LIKE в элементе пробы
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
