package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ruslano69/sqlbridge/pkg/bridge"

	// Регистрация адаптеров в глобальной фабрике
	_ "github.com/ruslano69/sqlbridge/pkg/adapters/oracle"
	_ "github.com/ruslano69/sqlbridge/pkg/adapters/postgres"
	_ "github.com/ruslano69/sqlbridge/pkg/adapters/sqlite"
)

func main() {
	ctx := context.Background()

	flags := ParseFlags()

	if *flags.Version {
		PrintVersion()
		os.Exit(0)
	}
	if *flags.Help {
		PrintHelp()
		os.Exit(0)
	}
	if *flags.CreateConfig {
		createConfigTemplate(*flags.Config)
		return
	}

	config, err := bridge.LoadConfig(*flags.Config)
	if err != nil {
		fatal("Failed to load config: %v", err)
	}
	if *flags.Report != "" {
		config.Report.Type = "xlsx"
		config.Report.Destination = *flags.Report
	}

	runner, err := bridge.NewRunner(ctx, config)
	if err != nil {
		fatal("Failed to connect: %v", err)
	}
	defer runner.Close(ctx)

	switch {
	case *flags.Ping:
		if err := runner.Ping(ctx); err != nil {
			fatal("Ping failed: %v", err)
		}

	case *flags.Transfer:
		if _, err := runner.Transfer(ctx); err != nil {
			fatal("Transfer failed: %v", err)
		}

	case *flags.Verify:
		reports, err := runner.Verify(ctx)
		if err != nil {
			fatal("Verify failed: %v", err)
		}
		for _, report := range reports {
			if !report.Passed() {
				os.Exit(1)
			}
		}

	default:
		PrintHelp()
		os.Exit(2)
	}
}

// createConfigTemplate пишет шаблон конфигурации, не перезаписывая
// существующий файл
func createConfigTemplate(path string) {
	if _, err := os.Stat(path); err == nil {
		fatal("Config file already exists: %s", path)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		fatal("Failed to write config template: %v", err)
	}
	fmt.Printf("Config template written to %s\n", path)
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
