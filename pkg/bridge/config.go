// Package bridge связывает конфигурацию, адаптеры, переносы и сверки
// в запускаемые операции.
package bridge

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ruslano69/sqlbridge/pkg/adapters"
	"github.com/ruslano69/sqlbridge/pkg/compare"
	"github.com/ruslano69/sqlbridge/pkg/resultlog"
	"github.com/ruslano69/sqlbridge/pkg/transfer"
)

// Config содержит полную конфигурацию запуска
type Config struct {
	Name      string           `yaml:"name"`
	Version   string           `yaml:"version"`
	Source    EndpointConfig   `yaml:"source"`
	Dest      EndpointConfig   `yaml:"dest"`
	Transfers []TransferConfig `yaml:"transfers"`
	Checks    []compare.Check  `yaml:"checks"`
	ResultLog resultlog.Config `yaml:"result_log"`
	Report    ReportConfig     `yaml:"report"`
}

// EndpointConfig определяет подключение к одному бэкенду
type EndpointConfig struct {
	Type       string `yaml:"type"`        // postgres, oracle, sqlite
	DSN        string `yaml:"dsn"`         // готовая строка подключения (опционально)
	Host       string `yaml:"host"`        // хост БД
	Port       int    `yaml:"port"`        // порт БД
	Database   string `yaml:"database"`    // имя БД (postgres) или путь к файлу (sqlite)
	Service    string `yaml:"service"`     // service name (oracle)
	Username   string `yaml:"username"`    // пользователь
	Password   string `yaml:"password"`    // пароль
	WalletPath string `yaml:"wallet_path"` // путь к wallet (oracle)
	SSLMode    string `yaml:"ssl_mode"`    // режим SSL (postgres)
	Schema     string `yaml:"schema"`      // схема по умолчанию (postgres)
	Timeout    int    `yaml:"timeout"`     // таймаут запросов в секундах
	MaxConns   int    `yaml:"max_conns"`   // максимум соединений пула
	MinConns   int    `yaml:"min_conns"`   // минимум соединений пула
}

// TransferConfig определяет один перенос source -> dest
type TransferConfig struct {
	Table     string `yaml:"table"`
	Query     string `yaml:"query"`
	DestTable string `yaml:"dest_table"`
}

// ReportConfig определяет экспорт отчета сверки
type ReportConfig struct {
	Type        string `yaml:"type"`        // xlsx (пустое = отключено)
	Destination string `yaml:"destination"` // путь к выходному файлу
	Sheet       string `yaml:"sheet"`       // имя листа (пустое = "Checks")
}

// LoadConfig загружает и валидирует YAML конфигурацию
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	config.SetDefaults()

	return &config, nil
}

// Validate проверяет корректность конфигурации
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}

	if err := c.Source.Validate(); err != nil {
		return fmt.Errorf("source: %w", err)
	}
	if err := c.Dest.Validate(); err != nil {
		return fmt.Errorf("dest: %w", err)
	}

	for i, tr := range c.Transfers {
		if tr.Table == "" && tr.Query == "" {
			return fmt.Errorf("transfers[%d]: either table or query is required", i)
		}
		if tr.Table == "" && tr.DestTable == "" {
			return fmt.Errorf("transfers[%d]: dest_table is required for query transfer", i)
		}
	}

	for i, check := range c.Checks {
		if check.Name == "" {
			return fmt.Errorf("checks[%d]: name is required", i)
		}
		if check.SQL == "" && (check.SQLA == "" || check.SQLB == "") {
			return fmt.Errorf("checks[%d] (%s): sql or both sql_a and sql_b are required",
				i, check.Name)
		}
	}

	if err := c.ResultLog.Validate(); err != nil {
		return fmt.Errorf("result_log: %w", err)
	}

	if c.Report.Type != "" && c.Report.Type != "xlsx" {
		return fmt.Errorf("report: unsupported type '%s'", c.Report.Type)
	}
	if c.Report.Type == "xlsx" && c.Report.Destination == "" {
		return fmt.Errorf("report: destination is required for xlsx")
	}

	return nil
}

// Validate проверяет конфигурацию подключения
func (e *EndpointConfig) Validate() error {
	switch e.Type {
	case "postgres", "oracle", "sqlite":
	case "":
		return fmt.Errorf("type is required")
	default:
		return fmt.Errorf("unsupported type '%s'", e.Type)
	}

	if e.DSN == "" {
		switch e.Type {
		case "postgres":
			if e.Host == "" || e.Database == "" {
				return fmt.Errorf("host and database are required without dsn")
			}
		case "oracle":
			if e.Host == "" || e.Service == "" {
				return fmt.Errorf("host and service are required without dsn")
			}
		case "sqlite":
			if e.Database == "" {
				return fmt.Errorf("database path is required without dsn")
			}
		}
	}

	return nil
}

// SetDefaults устанавливает значения по умолчанию
func (c *Config) SetDefaults() {
	if c.Version == "" {
		c.Version = "1.0"
	}
	if c.Report.Type == "xlsx" && c.Report.Sheet == "" {
		c.Report.Sheet = "Checks"
	}
	if c.ResultLog.Enabled() && c.ResultLog.Name == "" {
		c.ResultLog.Name = c.Name
	}
	if c.ResultLog.Enabled() && c.ResultLog.TTL <= 0 {
		c.ResultLog.TTL = 3600
	}
}

// AdapterConfig строит adapters.Config из конфигурации подключения
func (e *EndpointConfig) AdapterConfig() adapters.Config {
	return adapters.Config{
		Type:       e.Type,
		DSN:        e.DSN,
		Host:       e.Host,
		Port:       e.Port,
		Database:   e.Database,
		Service:    e.Service,
		Username:   e.Username,
		Password:   e.Password,
		WalletPath: e.WalletPath,
		SSLMode:    e.SSLMode,
		Schema:     e.Schema,
		Timeout:    time.Duration(e.Timeout) * time.Second,
		MaxConns:   e.MaxConns,
		MinConns:   e.MinConns,
	}
}

// TransferSpecs строит спецификации переносов
func (c *Config) TransferSpecs() []transfer.Spec {
	specs := make([]transfer.Spec, len(c.Transfers))
	for i, tr := range c.Transfers {
		specs[i] = transfer.Spec{
			Table:     tr.Table,
			Query:     tr.Query,
			DestTable: tr.DestTable,
		}
	}
	return specs
}
