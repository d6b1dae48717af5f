// Copyright (c) 2025 Lamachat Authors
// SPDX-License-Identifier: MIT

// Package cli implements the lamachat command-line interface.
//
// The entry point is Parse, which turns os.Args into a Command plus an
// Args struct, and the Handle* functions, which execute the commands.
// The default command is the interactive chat REPL.
//
// # Key Types
//
//   - Command: which subcommand to run
//   - Args: parsed global and command-specific flags
//   - ChatSession: state for an interactive chat REPL
//
// # Usage
//
//	cmd, args := cli.Parse()
//	switch cmd {
//	case cli.CmdChat:
//	    cli.HandleChat(args)
//	case cli.CmdList:
//	    cli.HandleList(args)
//	}
package cli
