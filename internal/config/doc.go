// Copyright (c) 2025 Lamachat Authors
// SPDX-License-Identifier: MIT

// Package config provides configuration loading and management for lamachat.
//
// Supports both TOML and JSON configuration formats, with sensible
// defaults, environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.lamachat/config.toml
//   - ~/.lamachat/config.json
//   - Built-in defaults
//
// # Key Types
//
//   - Config: the complete configuration tree
//   - OllamaConfig, ArchiveConfig, IndexConfig, UIConfig: its sections
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	client := ollama.NewClientWithConfig(&ollama.ClientConfig{
//	    BaseURL:      cfg.Ollama.URL,
//	    DefaultModel: cfg.Ollama.Model,
//	})
package config
