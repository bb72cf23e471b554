// Package compare реализует сверку результатов эквивалентных запросов
// на двух бэкендах. Строки сравниваются как мультимножества: порядок
// выдачи без ORDER BY определяется бэкендом и незначим.
package compare

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/zeebo/xxh3"

	"github.com/ruslano69/sqlbridge/pkg/adapters"
	"github.com/ruslano69/sqlbridge/pkg/core/canonical"
)

// Check - одна проверка эквивалентности.
// SQL используется для обоих бэкендов; SQLA/SQLB переопределяют его
// там, где диалекты требуют разного синтаксиса.
type Check struct {
	Name string `yaml:"name"`
	SQL  string `yaml:"sql"`
	SQLA string `yaml:"sql_a"`
	SQLB string `yaml:"sql_b"`
}

// Report - итог одной проверки.
// Расхождения - данные отчета, не ошибки; Error заполняется только
// при отказе выполнения самой проверки.
type Report struct {
	CheckName string
	SQLA      string
	SQLB      string

	RowCountA     int
	RowCountB     int
	RowCountEqual bool
	ContentEqual  bool

	// Колонки с расходящимся содержимым (при совпадающем наборе колонок)
	MismatchedColumns []string

	DurationA time.Duration
	DurationB time.Duration

	Error string
}

// Passed сообщает прошла ли проверка полностью
func (r *Report) Passed() bool {
	return r.Error == "" && r.RowCountEqual && r.ContentEqual
}

// Harness выполняет набор проверок на паре адаптеров
type Harness struct {
	a adapters.Adapter
	b adapters.Adapter
}

// NewHarness создает harness для пары бэкендов
func NewHarness(a, b adapters.Adapter) *Harness {
	return &Harness{a: a, b: b}
}

// RunAll выполняет все проверки. Отказ одной проверки фиксируется в
// ее отчете и не прерывает остальные.
func (h *Harness) RunAll(ctx context.Context, checks []Check) []*Report {
	reports := make([]*Report, 0, len(checks))
	for _, check := range checks {
		reports = append(reports, h.Run(ctx, check))
	}
	return reports
}

// Run выполняет одну проверку эквивалентности
func (h *Harness) Run(ctx context.Context, check Check) *Report {
	report := &Report{CheckName: check.Name}

	report.SQLA = check.SQLA
	if report.SQLA == "" {
		report.SQLA = check.SQL
	}
	report.SQLB = check.SQLB
	if report.SQLB == "" {
		report.SQLB = check.SQL
	}
	if report.SQLA == "" || report.SQLB == "" {
		report.Error = "check has no SQL for one of the backends"
		return report
	}

	startA := time.Now()
	rsA, err := h.a.Execute(ctx, report.SQLA)
	report.DurationA = time.Since(startA)
	if err != nil {
		report.Error = fmt.Sprintf("backend A: %v", err)
		return report
	}

	startB := time.Now()
	rsB, err := h.b.Execute(ctx, report.SQLB)
	report.DurationB = time.Since(startB)
	if err != nil {
		report.Error = fmt.Sprintf("backend B: %v", err)
		return report
	}

	report.RowCountA = rsA.RowCount()
	report.RowCountB = rsB.RowCount()
	report.RowCountEqual = report.RowCountA == report.RowCountB

	report.ContentEqual, report.MismatchedColumns = compareContent(rsA, rsB)

	return report
}

// compareContent сравнивает результаты как мультимножества строк.
// При расхождении и совпадающем наборе колонок дополнительно
// определяются колонки-виновники поколоночным сравнением.
func compareContent(a, b *adapters.ResultSet) (bool, []string) {
	if !sameColumns(a, b) {
		return false, nil
	}

	if mapsEqual(rowHashes(a), rowHashes(b)) {
		return true, nil
	}

	// Поколоночный поиск расхождений
	var mismatched []string
	for _, col := range a.Columns {
		va, _ := a.ColumnValues(col.Name)
		vb, _ := b.ColumnValues(col.Name)
		if !mapsEqual(valueHashes(va), valueHashes(vb)) {
			mismatched = append(mismatched, col.Name)
		}
	}
	return false, mismatched
}

func sameColumns(a, b *adapters.ResultSet) bool {
	if len(a.Columns) != len(b.Columns) {
		return false
	}
	for i := range a.Columns {
		if a.Columns[i].Name != b.Columns[i].Name {
			return false
		}
	}
	return true
}

// rowHashes строит мультимножество хешей строк
func rowHashes(rs *adapters.ResultSet) map[uint64]int {
	hashes := make(map[uint64]int, len(rs.Rows))
	for _, row := range rs.Rows {
		hashes[hashRow(row)]++
	}
	return hashes
}

func valueHashes(values []canonical.Value) map[uint64]int {
	hashes := make(map[uint64]int, len(values))
	for _, v := range values {
		hashes[xxh3.HashString(encodeValue(v))]++
	}
	return hashes
}

// hashRow хеширует строку канонических значений.
// Кодировка включает тип и NULL-маркер: Text("1") и Integer(1)
// не совпадают.
func hashRow(row []canonical.Value) uint64 {
	var b strings.Builder
	for _, v := range row {
		b.WriteString(encodeValue(v))
		b.WriteByte(0x1e) // record separator
	}
	return xxh3.HashString(b.String())
}

// encodeValue кодирует значение для хеширования. Числовое семейство
// (INTEGER/FLOAT/BOOLEAN) нормализуется к общему тегу и значению:
// один логический ряд читается нативным профилем как BOOLEAN/INTEGER,
// а из NUMBER-колонок текстового профиля - как числа.
func encodeValue(v canonical.Value) string {
	tag := string(v.Kind)
	switch v.Kind {
	case canonical.KindInteger, canonical.KindFloat, canonical.KindBoolean:
		tag = "NUMERIC"
	}

	if v.IsNull {
		return tag + "\x1f<null>"
	}

	switch v.Kind {
	case canonical.KindInteger:
		return tag + "\x1f" + strconv.FormatInt(*v.IntValue, 10)
	case canonical.KindFloat:
		// 'g' с точностью -1: Float(2) кодируется как "2", наравне
		// с Integer(2)
		return tag + "\x1f" + strconv.FormatFloat(*v.FloatValue, 'g', -1, 64)
	case canonical.KindBoolean:
		if *v.BoolValue {
			return tag + "\x1f1"
		}
		return tag + "\x1f0"
	}

	conv := canonical.NewConverter()
	formatted, err := conv.FormatValue(&v)
	if err != nil {
		// значение без содержимого не должно возникать в ResultSet;
		// кодируем отличимо от любого валидного
		return tag + "\x1f<invalid>"
	}
	return tag + "\x1f" + formatted
}

func mapsEqual(a, b map[uint64]int) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}
