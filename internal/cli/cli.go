// Copyright (c) 2025 Lamachat Authors
// SPDX-License-Identifier: MIT

// cli.go - CLI parsing and command dispatch for lamachat.

package cli

import (
	"fmt"
	"os"
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
	CmdChat Command = iota
	CmdList
	CmdShow
	CmdSearch
	CmdDelete
	CmdModels
	CmdIndex
	CmdConfig
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet   bool
	Verbose bool
	Model   string
	NoIndex bool // Disable search index and archive watching

	// Command-specific
	Query      string
	Name       string
	Subcommand string

	// Raw args (remaining after flag parsing)
	Raw []string
}

const usageText = `lamachat - chat client for a local Ollama service

Lamachat talks to a locally running Ollama instance, keeps the
conversation on disk as plain text, and makes past conversations
searchable.

It provides:
  - Streaming chat against local models
  - Plain-text conversation archive with automatic titling
  - Full-text search over past conversations (SQLite FTS5)
  - File attachments tracked per conversation

Usage:
  lamachat                    Start interactive chat (default)
  lamachat chat               Interactive chat
  lamachat list, ls           List archived conversations
  lamachat show <name>        Print an archived conversation
  lamachat search "query"     Search past conversations
  lamachat delete <name>      Delete an archived conversation
  lamachat models [subcmd]    Model management
  lamachat index [subcmd]     Search index management
  lamachat config [subcmd]    Configuration
  lamachat version            Show version
  lamachat help               Show this help

Model Commands:
  lamachat models             List installed models
  lamachat models pull NAME   Download a model
  lamachat models rm NAME     Remove a model

Index Commands:
  lamachat index sync         Rebuild the search index from the archive
  lamachat index stats        Show index statistics

Config Commands:
  lamachat config show        Print the effective configuration
  lamachat config path        Print the config file location
  lamachat config init        Write a default config file

Interactive Commands (during chat):
  /help               Show available commands
  /new                Start a new conversation
  /load <name>        Load an archived conversation
  /list               List archived conversations
  /search <query>     Search past conversations
  /delete <name>      Delete an archived conversation
  /model [name]       Show or switch model
  /models             List installed models
  /pull <name>        Download a model
  /rm-model <name>    Remove a model
  /attach <path>      Attach a file to the conversation
  /detach <path>      Remove an attached file
  /files              List attached files
  /history            Show conversation history
  /status             Show session status
  /quit               Exit chat

Global Flags:
  -m, --model NAME    Use specific model (overrides config)
  -q, --quiet         Minimal output
  -v, --verbose       Verbose output
  --no-index          Disable the search index for this run

Environment:
  LAMACHAT_MODEL         Override the configured model
  LAMACHAT_OLLAMA_URL    Override the Ollama base URL
  LAMACHAT_ARCHIVE_DIR   Override the archive directory
  LAMACHAT_NO_INDEX      Disable the search index

Examples:
  lamachat                              Start chatting
  lamachat --model llama3.2:latest      Chat with a specific model
  lamachat search "kubernetes ingress"  Find past conversations
  lamachat show "Trip to Lisbon"        Replay a conversation
  lamachat models pull qwen2.5:14b      Download a model

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("lamachat version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
}

// Parse parses command-line arguments and returns the command and args.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses the given argument slice. Split out from Parse for
// testability.
func ParseArgs(args []string) (Command, Args) {
	remaining, parsedArgs := parseGlobalFlags(args)

	// No remaining args: default to interactive chat
	if len(remaining) == 0 {
		return CmdChat, parsedArgs
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsedArgs.Raw = remaining

	switch cmd {
	case "chat":
		return CmdChat, parsedArgs

	case "list", "ls":
		return CmdList, parsedArgs

	case "show", "cat":
		if len(remaining) > 0 {
			parsedArgs.Name = strings.Join(remaining, " ")
		}
		return CmdShow, parsedArgs

	case "search", "find":
		parsedArgs.Query = strings.Join(remaining, " ")
		return CmdSearch, parsedArgs

	case "delete", "rm":
		if len(remaining) > 0 {
			parsedArgs.Name = strings.Join(remaining, " ")
		}
		return CmdDelete, parsedArgs

	case "models", "model":
		parseModelsArgs(&parsedArgs, remaining)
		return CmdModels, parsedArgs

	case "index":
		if len(remaining) > 0 {
			parsedArgs.Subcommand = remaining[0]
		}
		return CmdIndex, parsedArgs

	case "config":
		if len(remaining) > 0 {
			parsedArgs.Subcommand = remaining[0]
		}
		return CmdConfig, parsedArgs

	case "version", "-v", "--version":
		return CmdVersion, parsedArgs

	case "help", "-h", "--help":
		return CmdHelp, parsedArgs

	default:
		// Unknown command: treat the whole line as a chat opener
		parsedArgs.Raw = append([]string{cmd}, remaining...)
		return CmdChat, parsedArgs
	}
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsedArgs Args

	i := 0
	for i < len(args) {
		arg := args[i]

		switch arg {
		case "-q", "--quiet":
			parsedArgs.Quiet = true
		case "--verbose":
			parsedArgs.Verbose = true
		case "--no-index":
			parsedArgs.NoIndex = true
		case "-m", "--model":
			if i+1 < len(args) {
				i++
				parsedArgs.Model = args[i]
			}
		default:
			if strings.HasPrefix(arg, "--model=") {
				parsedArgs.Model = strings.TrimPrefix(arg, "--model=")
			} else {
				remaining = append(remaining, arg)
			}
		}
		i++
	}

	return remaining, parsedArgs
}

// parseModelsArgs parses models command specific arguments.
func parseModelsArgs(args *Args, remaining []string) {
	if len(remaining) == 0 {
		args.Subcommand = "list"
		return
	}
	args.Subcommand = strings.ToLower(remaining[0])
	if len(remaining) > 1 {
		args.Name = remaining[1]
	}
}

// =============================================================================
// COMMAND DISPATCH
// =============================================================================

// HandleChat handles the "chat" command.
func HandleChat(args Args) {
	if err := HandleChatCommand(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// HandleList handles the "list" command.
func HandleList(args Args) {
	if err := HandleListCommand(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// HandleShow handles the "show" command.
func HandleShow(args Args) {
	if err := HandleShowCommand(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// HandleSearch handles the "search" command.
func HandleSearch(args Args) {
	if err := HandleSearchCommand(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// HandleDelete handles the "delete" command.
func HandleDelete(args Args) {
	if err := HandleDeleteCommand(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// HandleModels handles the "models" command.
func HandleModels(args Args) {
	if err := HandleModelsCommand(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// HandleIndex handles the "index" command.
func HandleIndex(args Args) {
	if err := HandleIndexCommand(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// HandleConfig handles the "config" command.
func HandleConfig(args Args) {
	if err := HandleConfigCommand(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// HandleVersion handles the "version" command.
func HandleVersion() {
	PrintVersion()
}

// HandleHelp handles the "help" command.
func HandleHelp() {
	PrintUsage()
}
