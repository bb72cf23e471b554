package main

import "fmt"

const version = "1.0.0"

// PrintVersion prints version information
func PrintVersion() {
	fmt.Printf("sqlbridge %s\n", version)
}

// PrintHelp prints usage information
func PrintHelp() {
	fmt.Print(`sqlbridge - cross-dialect SQL transfer and verification tool

Usage:
  sqlbridge -config <file> <command>

Commands:
  -ping               Check connectivity and print backend versions
  -transfer           Run configured transfers (source -> dest)
  -verify             Run configured equivalence checks between backends

Options:
  -config <file>      Path to YAML configuration (default: sqlbridge.yaml)
  -report <file>      Override XLSX report destination
  -create-config      Write a configuration template and exit
  -version            Print version and exit
  -help               Print this help

Examples:
  sqlbridge -create-config
  sqlbridge -config prod.yaml -ping
  sqlbridge -config prod.yaml -transfer
  sqlbridge -config prod.yaml -verify -report checks.xlsx
`)
}

const configTemplate = `name: example
version: "1.0"

source:
  type: postgres
  host: localhost
  port: 5432
  database: results
  username: triage
  password: secret
  ssl_mode: disable
  schema: public

dest:
  type: oracle
  host: oracle-host
  port: 1521
  service: ORCLPDB1
  username: triage
  password: secret
  # wallet_path: /etc/oracle/wallet

transfers:
  - table: predictions
  - query: SELECT model_id, score FROM evaluations WHERE tiebreaker_ordering = 'best'
    dest_table: best_evaluations

checks:
  - name: prediction-counts
    sql: SELECT entity_id, as_of_date FROM predictions
  - name: model-configs
    sql_a: SELECT config ->> 'model_type' AS model_type FROM models
    sql_b: SELECT JSON_VALUE(config, '$.model_type') AS model_type FROM models

result_log:
  type: redis
  address: 127.0.0.1:6379
  name: EXAMPLE_SUITE
  ttl: 3600

report:
  type: xlsx
  destination: report.xlsx
`
