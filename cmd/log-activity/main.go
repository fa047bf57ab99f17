package main

import (
	"fmt"
	"os"

	"github.com/dratasich/log-activity/internal/config"
	"github.com/dratasich/log-activity/internal/mcp"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"report": true, "activities": true, "working-time": true,
	"classify": true, "rules": true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	// Known subcommand → CLI
	if cliCommands[arg] {
		return true
	}
	// Global flags → CLI
	if arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" ||
		arg == "--config" || arg == "-c" || arg == "--log-level" {
		return true
	}
	return false // Default → MCP server
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
   _                         _   _     _ _
  | |___ __ _ ___ __ _ __ __| |_(_)_ _(_) |_ _  _
  | / _ \ _' |___/ _' / _|  _| \ V / |  _| || |
  |_\___\__, |   \__,_\__|\__|_|\_/|_|\__|\_, |
        |___/                             |__/

  Activity and working-time ledgers from activity logs

  Usage: log-activity <command> [options]
         log-activity --help

  MCP server mode requires piped input.`)
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// CLI mode: known subcommand or global flag
	if isCLIMode() {
		app := newCLIApp()
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'log-activity --help' for usage.\n")
		os.Exit(1)
	}

	// MCP server mode (default)
	cfg, err := config.Load(defaultConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := mcp.Run(cfg, Version); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
