// Copyright (c) 2025 Lamachat Authors
// SPDX-License-Identifier: MIT

// config_cmd.go - Configuration commands for the lamachat CLI.
//
// Handles "lamachat config [show|path|init]".

package cli

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/lamachat/lamachat/internal/config"
)

// HandleConfigCommand handles the "config" command.
func HandleConfigCommand(args Args) error {
	switch args.Subcommand {
	case "", "show":
		cfg := config.Global()
		if err := toml.NewEncoder(os.Stdout).Encode(cfg); err != nil {
			return fmt.Errorf("encoding configuration: %w", err)
		}
		return nil

	case "path":
		path, err := config.ConfigPathTOML()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil

	case "init":
		path, err := config.ConfigPathTOML()
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists: %s", path)
		}
		if err := config.Save(config.Default()); err != nil {
			return err
		}
		fmt.Printf("%s wrote default config: %s\n", commandStyle.Render("[OK]"), path)
		return nil

	default:
		return fmt.Errorf("unknown config subcommand: %s", args.Subcommand)
	}
}
