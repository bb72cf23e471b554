package bridge

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sqlbridge.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

const validConfig = `
name: test-suite
source:
  type: sqlite
  database: ":memory:"
dest:
  type: sqlite
  database: ":memory:"
transfers:
  - table: predictions
checks:
  - name: counts
    sql: SELECT entity_id FROM predictions
result_log:
  type: redis
  address: 127.0.0.1:6379
report:
  type: xlsx
  destination: out.xlsx
`

func TestLoadConfig(t *testing.T) {
	config, err := LoadConfig(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if config.Name != "test-suite" {
		t.Errorf("Name = %s", config.Name)
	}
	if config.Source.Type != "sqlite" || config.Dest.Type != "sqlite" {
		t.Errorf("endpoint types: %s, %s", config.Source.Type, config.Dest.Type)
	}
	if len(config.Transfers) != 1 || len(config.Checks) != 1 {
		t.Errorf("transfers=%d checks=%d", len(config.Transfers), len(config.Checks))
	}

	// Defaults
	if config.Version != "1.0" {
		t.Errorf("Version default = %s", config.Version)
	}
	if config.ResultLog.Name != "test-suite" {
		t.Errorf("ResultLog.Name default = %s", config.ResultLog.Name)
	}
	if config.ResultLog.TTL != 3600 {
		t.Errorf("ResultLog.TTL default = %d", config.ResultLog.TTL)
	}
	if config.Report.Sheet != "Checks" {
		t.Errorf("Report.Sheet default = %s", config.Report.Sheet)
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		config string
	}{
		{"missing name", `
source: {type: sqlite, database: ":memory:"}
dest: {type: sqlite, database: ":memory:"}
`},
		{"unsupported endpoint type", `
name: x
source: {type: mongodb, dsn: "mongodb://x"}
dest: {type: sqlite, database: ":memory:"}
`},
		{"postgres without host", `
name: x
source: {type: postgres, database: db}
dest: {type: sqlite, database: ":memory:"}
`},
		{"oracle without service", `
name: x
source: {type: oracle, host: h}
dest: {type: sqlite, database: ":memory:"}
`},
		{"check without sql", `
name: x
source: {type: sqlite, database: ":memory:"}
dest: {type: sqlite, database: ":memory:"}
checks:
  - name: broken
`},
		{"check with only one side", `
name: x
source: {type: sqlite, database: ":memory:"}
dest: {type: sqlite, database: ":memory:"}
checks:
  - name: broken
    sql_a: SELECT 1
`},
		{"query transfer without dest_table", `
name: x
source: {type: sqlite, database: ":memory:"}
dest: {type: sqlite, database: ":memory:"}
transfers:
  - query: SELECT 1
`},
		{"result log without address", `
name: x
source: {type: sqlite, database: ":memory:"}
dest: {type: sqlite, database: ":memory:"}
result_log:
  type: redis
`},
		{"xlsx report without destination", `
name: x
source: {type: sqlite, database: ":memory:"}
dest: {type: sqlite, database: ":memory:"}
report:
  type: xlsx
`},
	}

	for _, tt := range tests {
		if _, err := LoadConfig(writeConfig(t, tt.config)); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
}

func TestAdapterConfigMapping(t *testing.T) {
	e := EndpointConfig{
		Type: "postgres", Host: "db", Port: 5433, Database: "results",
		Username: "u", Password: "p", SSLMode: "require", Schema: "public",
		Timeout: 30, MaxConns: 5,
	}
	cfg := e.AdapterConfig()

	if cfg.Type != "postgres" || cfg.Host != "db" || cfg.Port != 5433 {
		t.Errorf("basic fields not mapped: %+v", cfg)
	}
	if cfg.Timeout.Seconds() != 30 {
		t.Errorf("Timeout = %v", cfg.Timeout)
	}
	if cfg.MaxConns != 5 {
		t.Errorf("MaxConns = %d", cfg.MaxConns)
	}
}
