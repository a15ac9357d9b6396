// Command cocon-log is a tool for viewing and analyzing CoCon client event
// log files.
//
// Log files are created by running cocon-monitor with the -event-log flag,
// or by any program that attaches a FileLogger to its client.
//
// Usage:
//
//	cocon-log <command> [flags] <file.clog>
//
// Commands:
//
//	view     View log file in human-readable format
//	export   Export log file to JSONL format
//	stats    Show statistics about the log file
//
// Examples:
//
//	# View all events
//	cocon-log view session.clog
//
//	# View only command sends
//	cocon-log view --category command session.clog
//
//	# View everything a client did to one endpoint
//	cocon-log view --endpoint Microphone/SetState session.clog
//
//	# Export to JSONL
//	cocon-log export -o session.jsonl session.clog
//
//	# Show statistics
//	cocon-log stats session.clog
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/3P-Technologies/cocon-client/cmd/cocon-log/commands"
	"github.com/3P-Technologies/cocon-client/pkg/log"
)

const usage = `cocon-log - CoCon Client Event Log Analyzer

Usage:
  cocon-log <command> [flags] <file.clog>

Commands:
  view     View log file in human-readable format
  export   Export log file to JSONL format
  stats    Show statistics about the log file

Use "cocon-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func runView(args []string) {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `cocon-log view - View log file in human-readable format

Usage:
  cocon-log view [flags] <file.clog>

Flags:
`)
		fs.PrintDefaults()
	}

	category := fs.String("category", "", "Filter by category (connect, notify, command, retry, state, error)")
	clientID := fs.String("client-id", "", "Filter by client ID")
	endpoint := fs.String("endpoint", "", "Filter command events by endpoint")
	timeStart := fs.String("time-start", "", "Filter by start time (RFC3339)")
	timeEnd := fs.String("time-end", "", "Filter by end time (RFC3339)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}

	filter := log.Filter{
		ClientID: *clientID,
		Endpoint: *endpoint,
	}

	if *category != "" {
		c, err := commands.ParseCategoryFlag(*category)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		filter.Category = &c
	}

	if *timeStart != "" {
		ts, err := time.Parse(time.RFC3339, *timeStart)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid time-start: %v\n", err)
			os.Exit(1)
		}
		filter.TimeStart = &ts
	}
	if *timeEnd != "" {
		te, err := time.Parse(time.RFC3339, *timeEnd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid time-end: %v\n", err)
			os.Exit(1)
		}
		filter.TimeEnd = &te
	}

	if err := commands.RunView(fs.Arg(0), filter, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `cocon-log export - Export log file to JSONL format

Usage:
  cocon-log export [flags] <file.clog>

Flags:
`)
		fs.PrintDefaults()
	}

	output := fs.String("o", "", "Output file (default: stdout)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}

	if err := commands.RunExport(fs.Arg(0), *output); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `cocon-log stats - Show statistics about the log file

Usage:
  cocon-log stats <file.clog>

`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}

	if err := commands.RunStats(fs.Arg(0), os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
