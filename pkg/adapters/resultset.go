package adapters

import (
	"github.com/ruslano69/sqlbridge/pkg/core/canonical"
)

// ResultSet - упорядоченная последовательность строк канонических
// значений. Создается выполнением запроса и не мутируется после.
// Порядок строк сохраняется только если запрос задал ORDER BY;
// иначе порядок определяется бэкендом, и проверки эквивалентности
// обязаны сравнивать как мультимножества.
type ResultSet struct {
	Columns []Column
	Rows    [][]canonical.Value
}

// RowCount возвращает количество строк
func (rs *ResultSet) RowCount() int {
	return len(rs.Rows)
}

// ColumnIndex возвращает индекс колонки по имени, -1 если нет
func (rs *ResultSet) ColumnIndex(name string) int {
	for i, col := range rs.Columns {
		if col.Name == name {
			return i
		}
	}
	return -1
}

// Value возвращает значение ячейки по номеру строки и имени колонки
func (rs *ResultSet) Value(row int, column string) (canonical.Value, bool) {
	idx := rs.ColumnIndex(column)
	if idx < 0 || row < 0 || row >= len(rs.Rows) {
		return canonical.Value{}, false
	}
	return rs.Rows[row][idx], true
}

// ColumnValues возвращает все значения одной колонки
func (rs *ResultSet) ColumnValues(column string) ([]canonical.Value, bool) {
	idx := rs.ColumnIndex(column)
	if idx < 0 {
		return nil, false
	}
	values := make([]canonical.Value, len(rs.Rows))
	for i, row := range rs.Rows {
		values[i] = row[idx]
	}
	return values, true
}
