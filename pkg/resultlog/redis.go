package resultlog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ruslano69/sqlbridge/pkg/compare"
)

// Config определяет параметры публикации результатов сверки.
// Позволяет оркестратору отслеживать состояния через Redis (GET/SUBSCRIBE)
type Config struct {
	Type     string `yaml:"type"`     // Тип: redis (пустое = отключено)
	Address  string `yaml:"address"`  // Адрес Redis, например "127.0.0.1:6379"
	Name     string `yaml:"name"`     // Имя набора проверок (ключ/канал)
	Password string `yaml:"password"` // Пароль Redis (опционально)
	DB       int    `yaml:"db"`       // Индекс базы данных Redis (по умолчанию 0)
	TTL      int    `yaml:"ttl"`      // TTL ключа в секундах (по умолчанию 3600)
}

// Enabled сообщает включена ли публикация
func (c Config) Enabled() bool {
	return c.Type == "redis"
}

// Validate проверяет конфигурацию публикации
func (c Config) Validate() error {
	switch c.Type {
	case "":
		return nil // отключено
	case "redis":
		if c.Address == "" {
			return fmt.Errorf("address is required for redis result log")
		}
		return nil
	default:
		return fmt.Errorf("unsupported result log type '%s'", c.Type)
	}
}

// SuiteResult представляет итог набора проверок, публикуемый в Redis
// после завершения (успешного или с ошибкой).
//
// Redis-ключи:
//
//	SET  sqlbridge:suite:<name>:state  <JSON>  EX <ttl>  — для GET-запросов оркестратора
//	PUB  sqlbridge:suite:<name>                          — для event-driven маршрутизации
type SuiteResult struct {
	SuiteName    string        `json:"suite_name"`
	Status       string        `json:"status"` // "success" | "failed"
	StartedAt    time.Time     `json:"started_at"`
	FinishedAt   time.Time     `json:"finished_at"`
	DurationMs   int64         `json:"duration_ms"`
	ChecksTotal  int           `json:"checks_total"`
	ChecksPassed int           `json:"checks_passed"`
	Checks       []CheckResult `json:"checks"`
	Error        *string       `json:"error,omitempty"`
}

// CheckResult - компактный итог одной проверки для публикации
type CheckResult struct {
	Name              string   `json:"name"`
	Passed            bool     `json:"passed"`
	RowCountA         int      `json:"row_count_a"`
	RowCountB         int      `json:"row_count_b"`
	MismatchedColumns []string `json:"mismatched_columns,omitempty"`
	Error             string   `json:"error,omitempty"`
}

// RedisPublisher публикует итоги набора проверок в Redis
type RedisPublisher struct {
	client *redis.Client
	config Config
}

// NewRedisPublisher создает новый Redis publisher на основе конфигурации
func NewRedisPublisher(config Config) *RedisPublisher {
	if config.TTL <= 0 {
		config.TTL = 3600
	}
	client := redis.NewClient(&redis.Options{
		Addr:     config.Address,
		Password: config.Password,
		DB:       config.DB,
	})
	return &RedisPublisher{client: client, config: config}
}

// Publish публикует итог набора проверок:
//   - SET sqlbridge:suite:<name>:state <JSON> EX <ttl>  → для опроса (polling)
//   - PUBLISH sqlbridge:suite:<name> <JSON>             → для подписки (pub/sub)
//
// Вызывается независимо от исхода. execErr == nil означает, что набор
// выполнен; провалившиеся проверки сами по себе не ошибка выполнения.
func (p *RedisPublisher) Publish(ctx context.Context, reports []*compare.Report,
	startedAt, finishedAt time.Time, execErr error) error {

	result := SuiteResult{
		SuiteName:   p.config.Name,
		StartedAt:   startedAt,
		FinishedAt:  finishedAt,
		DurationMs:  finishedAt.Sub(startedAt).Milliseconds(),
		ChecksTotal: len(reports),
	}

	for _, r := range reports {
		cr := CheckResult{
			Name:              r.CheckName,
			Passed:            r.Passed(),
			RowCountA:         r.RowCountA,
			RowCountB:         r.RowCountB,
			MismatchedColumns: r.MismatchedColumns,
			Error:             r.Error,
		}
		if cr.Passed {
			result.ChecksPassed++
		}
		result.Checks = append(result.Checks, cr)
	}

	if execErr != nil {
		result.Status = "failed"
		errStr := execErr.Error()
		result.Error = &errStr
	} else {
		result.Status = "success"
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	stateKey := fmt.Sprintf("sqlbridge:suite:%s:state", p.config.Name)
	eventChannel := fmt.Sprintf("sqlbridge:suite:%s", p.config.Name)
	ttl := time.Duration(p.config.TTL) * time.Second

	// SET ключ с TTL — оркестратор может GET для получения последнего состояния
	if err := p.client.Set(ctx, stateKey, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis SET failed: %w", err)
	}

	// PUBLISH событие — оркестратор может SUBSCRIBE для event-driven маршрутизации
	if err := p.client.Publish(ctx, eventChannel, payload).Err(); err != nil {
		return fmt.Errorf("redis PUBLISH failed: %w", err)
	}

	return nil
}

// Close закрывает соединение с Redis
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
