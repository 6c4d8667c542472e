// Command seamtls-trace is a tool for viewing and analyzing seamtls trace
// files.
//
// Trace files are created by attaching a trace.FileLogger to a stream (see
// the trace package), or by setting trace.path in a configuration file.
//
// Usage:
//
//	seamtls-trace <command> [flags] <file.cbor>
//
// Commands:
//
//	view     View trace file in human-readable format
//	stats    Show statistics about the trace file
//
// Examples:
//
//	# View all events
//	seamtls-trace view conn.cbor
//
//	# View only pump events for one stream
//	seamtls-trace view --category pump --stream-id abc12345 conn.cbor
//
//	# View only incoming ciphertext pumps
//	seamtls-trace view --category pump --direction in conn.cbor
//
//	# Show statistics
//	seamtls-trace stats conn.cbor
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/seamtls/seamtls-go/cmd/seamtls-trace/commands"
	"github.com/seamtls/seamtls-go/pkg/trace"
)

const usage = `seamtls-trace - seamtls Trace Analyzer

Usage:
  seamtls-trace <command> [flags] <file.cbor>

Commands:
  view     View trace file in human-readable format
  stats    Show statistics about the trace file

Use "seamtls-trace <command> -help" for more information about a command.
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
		fmt.Fprintf(os.Stderr, `seamtls-trace view - View trace file in human-readable format

Usage:
  seamtls-trace view [flags] <file.cbor>

Flags:
`)
		fs.PrintDefaults()
	}

	streamID := fs.String("stream-id", "", "Filter by stream ID")
	direction := fs.String("direction", "", "Filter by direction (in, out)")
	category := fs.String("category", "", "Filter by category (pump, handshake, state, error)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: trace file path required")
		fs.Usage()
		os.Exit(1)
	}

	path := fs.Arg(0)

	filter := trace.Filter{StreamID: *streamID}

	if *direction != "" {
		d, err := commands.ParseDirectionFlag(*direction)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		filter.Direction = &d
	}

	if *category != "" {
		c, err := commands.ParseCategoryFlag(*category)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		filter.Category = &c
	}

	if err := commands.RunView(path, filter, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `seamtls-trace stats - Show statistics about the trace file

Usage:
  seamtls-trace stats <file.cbor>
`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: trace file path required")
		fs.Usage()
		os.Exit(1)
	}

	if err := commands.RunStats(fs.Arg(0), os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
