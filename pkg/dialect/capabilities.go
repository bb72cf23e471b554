package dialect

import (
	"github.com/ruslano69/sqlbridge/pkg/core/canonical"
)

// CapabilitySet - статическая декларация возможностей бэкенда.
// Запрашивается один раз при выборе стратегии рендеринга;
// никакого runtime-проба запросов не выполняется.
type CapabilitySet struct {
	// Dialect - идентификатор диалекта: "postgres", "oracle", "sqlite"
	Dialect string

	// NativeArrays - бэкенд поддерживает нативные массивы/коллекции.
	// false означает текстовую кодировку последовательностей.
	NativeArrays bool

	// NativeBoolean - нативный BOOLEAN тип.
	// false означает integer-boolean домен {0,1}.
	NativeBoolean bool

	// NativeJSON - нативное хранение полуструктурированных документов
	// (JSONB). false означает хранение в текстовой колонке.
	NativeJSON bool

	// TransactionalDDL - DDL участвует в транзакциях (PostgreSQL, SQLite).
	// false (Oracle) означает drop-on-failure семантику при переносе.
	TransactionalDDL bool
}

// SupportsKind сообщает, хранится ли канонический тип нативно.
// Скалярные типы нативны везде; PAYLOAD и SEQUENCE зависят от диалекта.
func (c CapabilitySet) SupportsKind(k canonical.Kind) bool {
	switch k {
	case canonical.KindInteger, canonical.KindFloat, canonical.KindText,
		canonical.KindTimestamp:
		return true
	case canonical.KindBoolean:
		return c.NativeBoolean
	case canonical.KindPayload:
		return c.NativeJSON
	case canonical.KindSequence:
		return c.NativeArrays
	default:
		return false
	}
}
