// Copyright (c) 2025 Lamachat Authors
// SPDX-License-Identifier: MIT

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Ollama.URL != "http://127.0.0.1:11434" {
		t.Errorf("Ollama.URL = %q", cfg.Ollama.URL)
	}
	if cfg.Ollama.Model != "llama3.2:latest" {
		t.Errorf("Ollama.Model = %q", cfg.Ollama.Model)
	}
	if !cfg.Index.Enabled {
		t.Error("Index.Enabled should default to true")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config failed validation: %v", err)
	}
}

func TestSaveAndLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.Ollama.Model = "mistral:latest"
	cfg.Archive.Dir = "/tmp/chats"
	cfg.Index.Enabled = false

	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML() error = %v", err)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	if loaded.Ollama.Model != "mistral:latest" {
		t.Errorf("Ollama.Model = %q", loaded.Ollama.Model)
	}
	if loaded.Archive.Dir != "/tmp/chats" {
		t.Errorf("Archive.Dir = %q", loaded.Archive.Dir)
	}
	if loaded.Index.Enabled {
		t.Error("Index.Enabled should survive the round trip as false")
	}
}

func TestSaveAndLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := Default()
	cfg.UI.Theme = "light"

	if err := SaveJSON(cfg, path); err != nil {
		t.Fatalf("SaveJSON() error = %v", err)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	if loaded.UI.Theme != "light" {
		t.Errorf("UI.Theme = %q", loaded.UI.Theme)
	}
}

func TestLoadPartialTOMLFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	partial := "[ollama]\nmodel = \"phi3:latest\"\n"
	if err := os.WriteFile(path, []byte(partial), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	if cfg.Ollama.Model != "phi3:latest" {
		t.Errorf("Ollama.Model = %q", cfg.Ollama.Model)
	}
	if cfg.Ollama.URL != "http://127.0.0.1:11434" {
		t.Errorf("Ollama.URL not defaulted: %q", cfg.Ollama.URL)
	}
	if cfg.UI.Theme != "dark" {
		t.Errorf("UI.Theme not defaulted: %q", cfg.UI.Theme)
	}
}

func TestLoadPartialTOMLKeepsBoolDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	partial := "[ollama]\nmodel = \"phi3:latest\"\n"
	if err := os.WriteFile(path, []byte(partial), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	if !cfg.Index.Enabled {
		t.Error("Index.Enabled should default to true")
	}
	if !cfg.Index.Watch {
		t.Error("Index.Watch should default to true")
	}
	if !cfg.UI.RenderMarkdown {
		t.Error("UI.RenderMarkdown should default to true")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Default()
	cfg.Ollama.URL = "not a url"
	cfg.UI.Theme = "neon"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() accepted invalid config")
	}
	if !strings.Contains(err.Error(), "ollama.url") {
		t.Errorf("error missing ollama.url: %v", err)
	}
	if !strings.Contains(err.Error(), "ui.theme") {
		t.Errorf("error missing ui.theme: %v", err)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("LAMACHAT_MODEL", "gemma2:latest")
	t.Setenv("LAMACHAT_OLLAMA_URL", "http://10.0.0.5:11434")
	t.Setenv("LAMACHAT_ARCHIVE_DIR", "/srv/chats")
	t.Setenv("LAMACHAT_NO_INDEX", "1")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Ollama.Model != "gemma2:latest" {
		t.Errorf("Ollama.Model = %q", cfg.Ollama.Model)
	}
	if cfg.Ollama.URL != "http://10.0.0.5:11434" {
		t.Errorf("Ollama.URL = %q", cfg.Ollama.URL)
	}
	if cfg.Archive.Dir != "/srv/chats" {
		t.Errorf("Archive.Dir = %q", cfg.Archive.Dir)
	}
	if cfg.Index.Enabled {
		t.Error("LAMACHAT_NO_INDEX=1 should disable the index")
	}
}

func TestResolvedPaths(t *testing.T) {
	cfg := Default()
	cfg.Archive.Dir = "/explicit/chats"
	cfg.Index.DatabasePath = "/explicit/search.db"
	cfg.UI.HistoryFile = "/explicit/history"

	if dir, err := cfg.ArchiveDir(); err != nil || dir != "/explicit/chats" {
		t.Errorf("ArchiveDir() = %q, %v", dir, err)
	}
	if path, err := cfg.IndexDatabasePath(); err != nil || path != "/explicit/search.db" {
		t.Errorf("IndexDatabasePath() = %q, %v", path, err)
	}
	if path, err := cfg.HistoryFilePath(); err != nil || path != "/explicit/history" {
		t.Errorf("HistoryFilePath() = %q, %v", path, err)
	}
}

func TestDefaultPathsUnderConfigDir(t *testing.T) {
	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error = %v", err)
	}

	cfg := Default()
	archiveDir, err := cfg.ArchiveDir()
	if err != nil {
		t.Fatalf("ArchiveDir() error = %v", err)
	}
	if !strings.HasPrefix(archiveDir, dir) {
		t.Errorf("ArchiveDir() = %q, want under %q", archiveDir, dir)
	}
}

func TestSetGlobal(t *testing.T) {
	ResetGlobalForTesting()
	t.Cleanup(ResetGlobalForTesting)

	custom := Default()
	custom.Ollama.Model = "custom:latest"
	SetGlobal(custom)

	if got := Global(); got.Ollama.Model != "custom:latest" {
		t.Errorf("Global().Ollama.Model = %q", got.Ollama.Model)
	}
}
