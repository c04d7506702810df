// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing for supportq.
package cli

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdClassify Command = iota
	CmdBatch
	CmdServe
	CmdConfig
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet      bool
	Verbose    bool
	JSON       bool
	NoLLM      bool // rules only, never call the completion endpoint
	ConfigPath string

	// Command-specific
	Query      string
	File       string
	Port       int
	Subcommand string

	// Raw args (remaining after flag parsing)
	Raw []string
}

const usageText = `supportq - hybrid support query classifier

Supportq classifies customer support queries into seven categories
using a weighted keyword rule engine, with an optional LLM fallback
for low-confidence queries, and routes them to support destinations.

Usage:
  supportq classify "query"   Classify a single query
  supportq batch --file FILE  Classify queries from a file (one per line)
  supportq serve              Start the HTTP API
  supportq config [show|path|init]  Configuration
  supportq version            Show version
  supportq help               Show this help

Classify:
  supportq classify "I need a refund for a double charge"
    --json                    Output the full result as JSON
    --no-llm                  Rules only, skip the LLM fallback

Batch:
  supportq batch --file queries.txt
    --json                    Output results as a JSON array
    --no-llm                  Rules only, skip the LLM fallback

Serve:
  supportq serve              Start HTTP API on the configured port
    --port N                  Override the listen port

Config:
  supportq config show        Print the effective configuration
  supportq config path        Print the config file path
  supportq config init        Write a default config file

Global Flags:
  -q, --quiet     Minimal output
  -v, --verbose   Debug output
  --json          Output in JSON format
  --config PATH   Use an explicit config file

Environment:
  AZURE_OPENAI_ENDPOINT, AZURE_OPENAI_API_KEY, AZURE_OPENAI_DEPLOYMENT
                  Enable the LLM fallback
  SUPPORTQ_CONFIDENCE_THRESHOLD
                  Override the rule confidence threshold

Examples:
  supportq classify "URGENT: my account was hacked"
  supportq classify --json "the app crashes when I export"
  supportq batch --file inbox.txt --json > results.json
  supportq serve --port 9000

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("supportq version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
	fmt.Printf("  Go version: %s\n", runtime.Version())
}

// Parse parses command-line arguments and returns the command and args.
func Parse(argv []string) (Command, Args) {
	remaining, parsed := parseGlobalFlags(argv)

	if len(remaining) == 0 {
		return CmdHelp, parsed
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsed.Raw = remaining

	switch cmd {
	case "classify", "c":
		parseClassifyArgs(&parsed, remaining)
		return CmdClassify, parsed

	case "batch", "b":
		parseBatchArgs(&parsed, remaining)
		return CmdBatch, parsed

	case "serve", "server":
		parseServeArgs(&parsed, remaining)
		return CmdServe, parsed

	case "config":
		if len(remaining) > 0 {
			parsed.Subcommand = remaining[0]
		}
		return CmdConfig, parsed

	case "version", "-v", "--version":
		return CmdVersion, parsed

	case "help", "-h", "--help":
		return CmdHelp, parsed

	default:
		// Unknown command - treat the whole line as a query.
		parseClassifyArgs(&parsed, append([]string{cmd}, remaining...))
		return CmdClassify, parsed
	}
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsed Args

	i := 0
	for i < len(args) {
		arg := args[i]

		switch arg {
		case "-q", "--quiet":
			parsed.Quiet = true
		case "-v", "--verbose":
			parsed.Verbose = true
		case "--json":
			parsed.JSON = true
		case "--no-llm":
			parsed.NoLLM = true
		case "--config":
			if i+1 < len(args) {
				i++
				parsed.ConfigPath = args[i]
			}
		default:
			if strings.HasPrefix(arg, "--config=") {
				parsed.ConfigPath = strings.TrimPrefix(arg, "--config=")
			} else {
				remaining = append(remaining, arg)
			}
		}
		i++
	}

	return remaining, parsed
}

// parseClassifyArgs parses classify command specific arguments.
func parseClassifyArgs(args *Args, remaining []string) {
	var query []string
	for _, arg := range remaining {
		if !strings.HasPrefix(arg, "-") {
			query = append(query, arg)
		}
	}
	args.Query = strings.Join(query, " ")
}

// parseBatchArgs parses batch command specific arguments.
func parseBatchArgs(args *Args, remaining []string) {
	for i := 0; i < len(remaining); i++ {
		arg := remaining[i]
		switch arg {
		case "-f", "--file":
			if i+1 < len(remaining) {
				i++
				args.File = remaining[i]
			}
		default:
			if strings.HasPrefix(arg, "--file=") {
				args.File = strings.TrimPrefix(arg, "--file=")
			}
		}
	}
}

// parseServeArgs parses serve command specific arguments.
func parseServeArgs(args *Args, remaining []string) {
	for i := 0; i < len(remaining); i++ {
		arg := remaining[i]
		switch arg {
		case "-p", "--port":
			if i+1 < len(remaining) {
				i++
				if n, err := strconv.Atoi(remaining[i]); err == nil && n > 0 {
					args.Port = n
				}
			}
		default:
			if strings.HasPrefix(arg, "--port=") {
				if n, err := strconv.Atoi(strings.TrimPrefix(arg, "--port=")); err == nil && n > 0 {
					args.Port = n
				}
			}
		}
	}
}
