// lamachat - a terminal chat client for a locally running Ollama service.
//
// Copyright (c) 2025 Lamachat Authors
// SPDX-License-Identifier: MIT
package main

import (
	"github.com/lamachat/lamachat/internal/cli"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdChat:
		cli.HandleChat(args)
	case cli.CmdList:
		cli.HandleList(args)
	case cli.CmdShow:
		cli.HandleShow(args)
	case cli.CmdSearch:
		cli.HandleSearch(args)
	case cli.CmdDelete:
		cli.HandleDelete(args)
	case cli.CmdModels:
		cli.HandleModels(args)
	case cli.CmdIndex:
		cli.HandleIndex(args)
	case cli.CmdConfig:
		cli.HandleConfig(args)
	case cli.CmdVersion:
		cli.HandleVersion()
	case cli.CmdHelp:
		cli.HandleHelp()
	}
}
