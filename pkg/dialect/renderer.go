package dialect

import (
	"fmt"

	"github.com/ruslano69/sqlbridge/pkg/core/canonical"
)

// Renderer - контракт рендеринга SQL-фрагментов для одного диалекта.
// Каждый адаптер реализует свой Renderer; Builder выбирает стратегию
// по CapabilitySet и делегирует синтаксис рендереру.
type Renderer interface {
	// Literal рендерит одиночное каноническое значение как SQL литерал
	// с экранированием по правилам диалекта
	Literal(v canonical.Value) (string, error)

	// ArrayConstructor рендерит нативный конструктор массива для
	// set-membership предиката. Возвращает UnsupportedValueTypeError
	// если диалект не имеет нативных массивов.
	ArrayConstructor(values []canonical.Value) (string, error)

	// LiteralList рендерит список литералов в скобках: ('a', 'b', 'c')
	LiteralList(values []canonical.Value) (string, error)

	// EmptySet рендерит предикат-источник с гарантированно пустым
	// результатом (для пустого set-membership списка)
	EmptySet() string

	// StructuredField рендерит извлечение поля документа:
	// PostgreSQL: col ->> 'path'; Oracle: JSON_VALUE(col, '$.path')
	StructuredField(column, path string) string

	// BooleanPredicate рендерит предикат истинности колонки
	BooleanPredicate(column string) string

	// ArrayContains рендерит проверку принадлежности значения коллекции
	ArrayContains(column string, v canonical.Value) (string, error)

	// LimitQuery рендерит ограничение количества строк для запроса:
	// PostgreSQL/SQLite: "SELECT ... LIMIT n";
	// Oracle: оборачивание через "WHERE ROWNUM <= n"
	LimitQuery(selectSQL string, limit int) string

	// IntervalLiteral рендерит литерал интервала:
	// PostgreSQL: '3 days'::interval; Oracle: INTERVAL '3' DAY
	IntervalLiteral(value string) string

	// QuoteIdentifier экранирует идентификатор таблицы/колонки
	QuoteIdentifier(identifier string) string
}

// UnsupportedValueTypeError - у канонического типа нет рендеринга
// для данного набора возможностей. Восстановимо: вызывающий может
// выбрать другую стратегию (например, текстовую кодировку).
type UnsupportedValueTypeError struct {
	Dialect string
	Kind    canonical.Kind
}

func (e *UnsupportedValueTypeError) Error() string {
	return fmt.Sprintf("dialect %s has no rendering for canonical kind %s",
		e.Dialect, e.Kind)
}
