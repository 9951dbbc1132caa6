package main

import (
	"fmt"
	"os"

	"github.com/almasmith/mercer-library/internal/cli"
	"github.com/almasmith/mercer-library/internal/config"
	"github.com/almasmith/mercer-library/internal/entrypoint"
	"github.com/almasmith/mercer-library/internal/logging"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

// command is implemented by every CLI subcommand.
type command interface {
	ParseFlags(args []string) error
	Run() error
}

func main() {
	// If no arguments or "serve" command, run the HTTP server
	if len(os.Args) < 2 || os.Args[1] == "serve" {
		cfg := config.NewConfig()
		logging.Init("mercer-library", cfg.Log.Level)
		if err := cfg.Validate(); err != nil {
			logging.Logger.WithError(err).Fatal("Invalid configuration")
		}
		entrypoint.Run(cfg, Version)
		return
	}

	name := os.Args[1]
	args := os.Args[2:]

	var cmd command
	switch name {
	case "migrate":
		cmd = cli.NewMigrateCommand()
	case "stats-version":
		cmd = cli.NewStatsVersionCommand()
	case "audit-log":
		cmd = cli.NewAuditLogCommand()

	case "version", "-v", "--version":
		fmt.Printf("mercer-library %s (%s)\n", Version, Commit)
		return

	case "-h", "--help", "help":
		printUsage()
		return

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", name)
		printUsage()
		os.Exit(1)
	}

	logging.Init("mercer-library", os.Getenv("LOG_LEVEL"))
	if err := cmd.ParseFlags(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  serve           Start the HTTP server (default if no command given)\n")
	fmt.Fprintf(os.Stderr, "  migrate         Create or update the database schema\n")
	fmt.Fprintf(os.Stderr, "  stats-version   Show or bump a user's statistics version\n")
	fmt.Fprintf(os.Stderr, "  audit-log       List recent audit events\n")
	fmt.Fprintf(os.Stderr, "  version         Print the build version\n")
	fmt.Fprintf(os.Stderr, "\nUse '%s <command> -h' for help on a specific command.\n", os.Args[0])
}
