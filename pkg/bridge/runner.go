package bridge

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ruslano69/sqlbridge/pkg/adapters"
	"github.com/ruslano69/sqlbridge/pkg/compare"
	"github.com/ruslano69/sqlbridge/pkg/resultlog"
	"github.com/ruslano69/sqlbridge/pkg/transfer"
	"github.com/ruslano69/sqlbridge/pkg/xlsx"
)

// Runner выполняет операции конфигурации на паре подключенных бэкендов
type Runner struct {
	config *Config
	source adapters.Adapter
	dest   adapters.Adapter
}

// NewRunner подключает оба бэкенда и создает Runner.
// Вызывающий обязан вызвать Close.
func NewRunner(ctx context.Context, config *Config) (*Runner, error) {
	source, err := adapters.New(ctx, config.Source.AdapterConfig())
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}

	dest, err := adapters.New(ctx, config.Dest.AdapterConfig())
	if err != nil {
		source.Close(ctx)
		return nil, fmt.Errorf("dest: %w", err)
	}

	return &Runner{config: config, source: source, dest: dest}, nil
}

// Close закрывает оба подключения
func (r *Runner) Close(ctx context.Context) {
	if r.source != nil {
		r.source.Close(ctx)
	}
	if r.dest != nil {
		r.dest.Close(ctx)
	}
}

// Ping проверяет оба бэкенда и логирует их версии
func (r *Runner) Ping(ctx context.Context) error {
	for _, ep := range []struct {
		name    string
		adapter adapters.Adapter
	}{
		{"source", r.source},
		{"dest", r.dest},
	} {
		if err := ep.adapter.Ping(ctx); err != nil {
			return fmt.Errorf("%s ping failed: %w", ep.name, err)
		}
		version, err := ep.adapter.DatabaseVersion(ctx)
		if err != nil {
			return fmt.Errorf("%s version: %w", ep.name, err)
		}
		log.Printf("%s: %s (%s)", ep.name, ep.adapter.DatabaseType(), version)
	}
	return nil
}

// Transfer выполняет все переносы конфигурации
func (r *Runner) Transfer(ctx context.Context) ([]*transfer.Result, error) {
	if len(r.config.Transfers) == 0 {
		return nil, fmt.Errorf("no transfers configured")
	}

	pipeline := transfer.NewPipeline(r.source, r.dest)
	results, err := pipeline.RunAll(ctx, r.config.TransferSpecs())

	for _, res := range results {
		status := "ok"
		if !res.CountsMatch {
			status = "COUNT MISMATCH"
		}
		log.Printf("transfer %s -> %s: read=%d written=%d [%s]",
			res.Table, res.DestTable, res.RowsRead, res.RowsWritten, status)
	}

	return results, err
}

// Verify выполняет все проверки, публикует итог в Redis (если настроен)
// и выгружает XLSX отчет (если настроен).
// Провал проверки - данные отчета; ошибкой Verify являются только
// отказы публикации и выгрузки.
func (r *Runner) Verify(ctx context.Context) ([]*compare.Report, error) {
	if len(r.config.Checks) == 0 {
		return nil, fmt.Errorf("no checks configured")
	}

	startedAt := time.Now()
	harness := compare.NewHarness(r.source, r.dest)
	reports := harness.RunAll(ctx, r.config.Checks)
	finishedAt := time.Now()

	passed := 0
	for _, report := range reports {
		if report.Passed() {
			passed++
			log.Printf("check %s: PASS (%d rows)", report.CheckName, report.RowCountA)
			continue
		}
		if report.Error != "" {
			log.Printf("check %s: ERROR %s", report.CheckName, report.Error)
		} else {
			log.Printf("check %s: FAIL rows=%d/%d mismatched=%v",
				report.CheckName, report.RowCountA, report.RowCountB,
				report.MismatchedColumns)
		}
	}
	log.Printf("checks: %d/%d passed", passed, len(reports))

	if r.config.ResultLog.Enabled() {
		publisher := resultlog.NewRedisPublisher(r.config.ResultLog)
		defer publisher.Close()
		if err := publisher.Publish(ctx, reports, startedAt, finishedAt, nil); err != nil {
			return reports, fmt.Errorf("result log: %w", err)
		}
	}

	if r.config.Report.Type == "xlsx" {
		err := xlsx.WriteReports(reports, r.config.Report.Destination, r.config.Report.Sheet)
		if err != nil {
			return reports, fmt.Errorf("xlsx report: %w", err)
		}
		log.Printf("report written to %s", r.config.Report.Destination)
	}

	return reports, nil
}
