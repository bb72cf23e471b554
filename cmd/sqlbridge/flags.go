package main

import "flag"

// Flags holds all command-line flags
type Flags struct {
	// Commands
	Ping     *bool
	Transfer *bool
	Verify   *bool

	// Options
	Config *string
	Report *string // Override report destination from config

	// Config Creation
	CreateConfig *bool

	// Misc
	Version *bool
	Help    *bool
}

// ParseFlags defines and parses all command-line flags
func ParseFlags() *Flags {
	flags := &Flags{
		Ping:     flag.Bool("ping", false, "Check connectivity of both endpoints"),
		Transfer: flag.Bool("transfer", false, "Run configured transfers (source -> dest)"),
		Verify:   flag.Bool("verify", false, "Run configured equivalence checks"),

		Config: flag.String("config", "sqlbridge.yaml", "Path to YAML configuration"),
		Report: flag.String("report", "", "Override XLSX report destination"),

		CreateConfig: flag.Bool("create-config", false, "Write a configuration template and exit"),

		Version: flag.Bool("version", false, "Print version and exit"),
		Help:    flag.Bool("help", false, "Print help and exit"),
	}

	flag.Parse()
	return flags
}
