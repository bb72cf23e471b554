package dialect

import (
	"github.com/ruslano69/sqlbridge/pkg/core/canonical"
)

// Intent - бэкенд-нейтральное описание операции запроса.
// Строится один раз на вызов, неизменяемо после создания.
// Рендеринг в конкретный SQL выполняет Builder по CapabilitySet.
type Intent interface {
	intentName() string
}

// SetMembershipFilter - фильтр по принадлежности множеству значений.
// Values - упорядоченная последовательность канонических значений
// (обычно timestamp'ы: as-of даты фич-матрицы).
type SetMembershipFilter struct {
	Column string
	Values []canonical.Value
}

func (SetMembershipFilter) intentName() string { return "set_membership" }

// StructuredFieldQuery - извлечение поля из полуструктурированной
// колонки (JSONB в PostgreSQL, CLOB с JSON в Oracle).
type StructuredFieldQuery struct {
	Column string
	Path   string // путь верхнего уровня, например "model_type"
}

func (StructuredFieldQuery) intentName() string { return "structured_field" }

// BooleanPredicate - истинность логической колонки.
// На нативно-логическом бэкенде рендерится как сама колонка,
// на integer-boolean бэкенде как сравнение с 1.
type BooleanPredicate struct {
	Column string
}

func (BooleanPredicate) intentName() string { return "boolean_predicate" }

// ArrayContains - проверка принадлежности значения колонке-коллекции.
// PostgreSQL: 'v' = ANY(col); бэкенды с текстовой кодировкой коллекций
// используют LIKE-пробу по экранированному представлению.
type ArrayContains struct {
	Column string
	Value  canonical.Value
}

func (ArrayContains) intentName() string { return "array_contains" }
