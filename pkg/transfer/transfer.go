// Package transfer реализует перенос табличных данных между
// бэкендами через канонические значения: чтение из источника,
// замена таблицы назначения, верификация количества строк.
package transfer

import (
	"context"
	"fmt"
	"time"

	"github.com/ruslano69/sqlbridge/pkg/adapters"
)

// Spec описывает один перенос: запрос к источнику и таблицу назначения.
// Query имеет приоритет; при пустом Query переносится таблица Table
// целиком.
type Spec struct {
	Table     string // таблица источника
	Query     string // запрос к источнику (опционально)
	DestTable string // таблица назначения; пустая = Table
}

// Result - итог одного переноса.
// Расхождение количества строк фиксируется в отчете
// (CountsMatch=false), но не прерывает уже завершенный перенос.
type Result struct {
	Table       string
	DestTable   string
	ReadSQL     string
	RowsRead    int
	RowsWritten int64
	CountsMatch bool
	ReadTime    time.Duration
	WriteTime   time.Duration
}

// Pipeline переносит данные из источника в назначение.
// Источник и назначение - независимые адаптеры; один Pipeline
// используется одним вызывающим.
type Pipeline struct {
	source adapters.Adapter
	dest   adapters.Adapter
}

// NewPipeline создает pipeline переноса
func NewPipeline(source, dest adapters.Adapter) *Pipeline {
	return &Pipeline{source: source, dest: dest}
}

// Run выполняет перенос: чтение -> маршалинг в канонические значения
// (внутри адаптера источника) -> замена таблицы назначения ->
// верификация количества строк.
//
// Замена атомарна в пределах возможностей назначения: с транзакционным
// DDL таблица либо прежняя, либо полностью новая; без него сбой
// вставки завершается DROP'ом частично заполненной таблицы.
// Повторный Run с тем же источником дает идентичное состояние
// назначения.
func (p *Pipeline) Run(ctx context.Context, spec Spec) (*Result, error) {
	if err := spec.validate(); err != nil {
		return nil, err
	}

	destTable := spec.DestTable
	if destTable == "" {
		destTable = spec.Table
	}

	readSQL := spec.Query
	if readSQL == "" {
		readSQL = fmt.Sprintf("SELECT * FROM %s",
			p.source.Renderer().QuoteIdentifier(spec.Table))
	}

	result := &Result{
		Table:     spec.Table,
		DestTable: destTable,
		ReadSQL:   readSQL,
	}

	readStart := time.Now()
	rs, err := p.source.Execute(ctx, readSQL)
	if err != nil {
		return nil, fmt.Errorf("transfer read failed: %w", err)
	}
	result.ReadTime = time.Since(readStart)
	result.RowsRead = rs.RowCount()

	writeStart := time.Now()
	if err := p.dest.ReplaceTable(ctx, destTable, rs); err != nil {
		return nil, fmt.Errorf("transfer write failed: %w", err)
	}
	result.WriteTime = time.Since(writeStart)

	// Верификация: количество строк назначения против прочитанного.
	// Ошибка подсчета - ошибка; расхождение - данные отчета.
	count, err := p.dest.RowCount(ctx, destTable)
	if err != nil {
		return nil, fmt.Errorf("transfer verification failed: %w", err)
	}
	result.RowsWritten = count
	result.CountsMatch = count == int64(result.RowsRead)

	return result, nil
}

func (s Spec) validate() error {
	if s.Table == "" && s.Query == "" {
		return fmt.Errorf("transfer spec: either table or query is required")
	}
	if s.Table == "" && s.DestTable == "" {
		return fmt.Errorf("transfer spec: dest_table is required for query transfer")
	}
	return nil
}

// RunAll последовательно выполняет набор переносов.
// Первый отказ прерывает серию: частично завершенные переносы
// остаются (каждый сам по себе атомарен).
func (p *Pipeline) RunAll(ctx context.Context, specs []Spec) ([]*Result, error) {
	results := make([]*Result, 0, len(specs))
	for _, spec := range specs {
		r, err := p.Run(ctx, spec)
		if err != nil {
			return results, err
		}
		results = append(results, r)
	}
	return results, nil
}
