package adapters

import (
	"fmt"

	"github.com/ruslano69/sqlbridge/pkg/core/canonical"
)

// Таксономия ошибок адаптерного слоя.
//
// Ошибки маршалинга и построения запросов структурные: они никогда не
// деградируют в частичный вывод. Ошибки выполнения несут исходное
// сообщение бэкенда и не ретраятся автоматически. Расхождения
// верификации - данные отчета, не ошибки.

// ConnectionError - ошибка аутентификации или сети при подключении.
// Фатальна только для этой сессии.
type ConnectionError struct {
	Dialect string
	Err     error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s connection failed: %v", e.Dialect, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// MissingOptionError - обязательная опция подключения отсутствует.
// Возвращается на Connect до любого сетевого обращения.
type MissingOptionError struct {
	Dialect string
	Option  string
}

func (e *MissingOptionError) Error() string {
	return fmt.Sprintf("%s connection config: required option '%s' is missing",
		e.Dialect, e.Option)
}

// ExecutionError - бэкенд отклонил SQL (синтаксис, constraint, таймаут).
// Сообщение бэкенда сохраняется дословно.
type ExecutionError struct {
	Dialect string
	Stmt    string
	Err     error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s execution failed: %v", e.Dialect, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// SchemaMismatchError - неоднозначный вывод типа колонки при переносе
// (например, смешанные numeric/text в одной колонке).
// Репортится, не разрешается молча.
type SchemaMismatchError struct {
	Column string
	Seen   canonical.Kind
	Want   canonical.Kind
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("schema mismatch in column '%s': inferred %s conflicts with %s",
		e.Column, e.Seen, e.Want)
}
