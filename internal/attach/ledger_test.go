// Copyright (c) 2025 Lamachat Authors
// SPDX-License-Identifier: MIT

// Package attach tracks files attached to the active conversation.
package attach

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lamachat/lamachat/internal/archive"
)

func newTestLedger(t *testing.T, name string) (*Ledger, *archive.Archive) {
	t.Helper()
	arc, err := archive.NewWithDir(t.TempDir())
	if err != nil {
		t.Fatalf("NewWithDir failed: %v", err)
	}
	return NewLedger(arc, func() string { return name }), arc
}

func mustAttach(t *testing.T, ledger *Ledger, path string) string {
	t.Helper()
	id, err := ledger.Attach(path)
	if err != nil {
		t.Fatalf("Attach(%q) failed: %v", path, err)
	}
	return id
}

// =============================================================================
// LEDGER TESTS
// =============================================================================

func TestLedger_AttachAndStatus(t *testing.T) {
	ledger, _ := newTestLedger(t, "")

	id := mustAttach(t, ledger, "/tmp/report.pdf")
	if id == "" {
		t.Fatal("Attach returned empty ID")
	}

	entries := ledger.Entries()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].Status != Pending {
		t.Error("new attachment should be Pending")
	}

	ledger.MarkProcessed("/tmp/report.pdf")
	if ledger.Entries()[0].Status != Processed {
		t.Error("attachment should be Processed")
	}
}

func TestLedger_AttachSamePathReturnsSameID(t *testing.T) {
	ledger, _ := newTestLedger(t, "")

	first := mustAttach(t, ledger, "/tmp/a.pdf")
	second := mustAttach(t, ledger, "/tmp/a.pdf")
	if first != second {
		t.Errorf("duplicate attach got new ID: %q vs %q", first, second)
	}
	if len(ledger.Entries()) != 1 {
		t.Errorf("got %d entries, want 1", len(ledger.Entries()))
	}
}

func TestLedger_AttachSurfacesPersistError(t *testing.T) {
	ledger, arc := newTestLedger(t, "my-conv")

	// A directory squatting on the sidecar path makes the write fail.
	if err := os.MkdirAll(filepath.Join(arc.Dir, "my-conv.files.json"), 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}

	if _, err := ledger.Attach("/tmp/a.pdf"); err == nil {
		t.Fatal("Attach should report the failed sidecar write")
	}
	if len(ledger.Entries()) != 1 {
		t.Error("entry should be kept in memory despite the persist failure")
	}
}

func TestLedger_MarkProcessedUnknownIsNoop(t *testing.T) {
	ledger, _ := newTestLedger(t, "")
	ledger.MarkProcessed("/never/attached.pdf")
	if len(ledger.Entries()) != 0 {
		t.Error("unknown MarkProcessed should not create entries")
	}
}

func TestLedger_RemoveUnnamedTouchesMemoryOnly(t *testing.T) {
	ledger, arc := newTestLedger(t, "")

	mustAttach(t, ledger, "/tmp/a.pdf")
	if err := ledger.Remove("/tmp/a.pdf"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	if len(ledger.Entries()) != 0 {
		t.Error("entry not removed from memory")
	}

	// Unnamed conversation: archive stays untouched.
	entries, err := os.ReadDir(arc.Dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("archive should be empty, found %d entries", len(entries))
	}
}

func TestLedger_RemoveNamedRewritesPersistedList(t *testing.T) {
	ledger, arc := newTestLedger(t, "my-conv")

	mustAttach(t, ledger, "/tmp/a.pdf")
	mustAttach(t, ledger, "/tmp/b.pdf")

	paths, err := arc.LoadFileList("my-conv")
	if err != nil {
		t.Fatalf("LoadFileList failed: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("persisted %d paths, want 2", len(paths))
	}

	if err := ledger.Remove("/tmp/a.pdf"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	paths, err = arc.LoadFileList("my-conv")
	if err != nil {
		t.Fatalf("LoadFileList failed: %v", err)
	}
	if len(paths) != 1 || paths[0] != "/tmp/b.pdf" {
		t.Errorf("persisted paths = %v, want [/tmp/b.pdf]", paths)
	}
}

func TestLedger_RemoveLastEntryDropsSidecar(t *testing.T) {
	ledger, arc := newTestLedger(t, "my-conv")

	mustAttach(t, ledger, "/tmp/only.pdf")
	if err := ledger.Remove("/tmp/only.pdf"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(arc.Dir, "my-conv.files.json")); !os.IsNotExist(err) {
		t.Error("sidecar should be removed when the last attachment goes")
	}
}

func TestLedger_RemoveUnknownIsNoop(t *testing.T) {
	ledger, _ := newTestLedger(t, "my-conv")
	if err := ledger.Remove("/not/there.pdf"); err != nil {
		t.Errorf("Remove of unknown path should be a no-op, got %v", err)
	}
}

func TestLedger_LoadFrom(t *testing.T) {
	ledger, arc := newTestLedger(t, "my-conv")

	if err := arc.SaveFileList("my-conv", []string{"/tmp/x.pdf", "/tmp/y.pdf"}); err != nil {
		t.Fatalf("SaveFileList failed: %v", err)
	}

	if err := ledger.LoadFrom("my-conv"); err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	entries := ledger.Entries()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	for _, e := range entries {
		if e.Status != Processed {
			t.Errorf("restored entry %q should be Processed", e.Path)
		}
	}
}

func TestLedger_CheckpointProcessesAndPersists(t *testing.T) {
	name := ""
	arc, err := archive.NewWithDir(t.TempDir())
	if err != nil {
		t.Fatalf("NewWithDir failed: %v", err)
	}
	ledger := NewLedger(arc, func() string { return name })

	// Attached while unnamed: nothing persisted yet.
	mustAttach(t, ledger, "/tmp/a.pdf")
	mustAttach(t, ledger, "/tmp/b.pdf")

	// Conversation gains its name, then the exchange completes.
	name = "my-conv"
	if err := ledger.Checkpoint(); err != nil {
		t.Fatalf("Checkpoint failed: %v", err)
	}

	for _, e := range ledger.Entries() {
		if e.Status != Processed {
			t.Errorf("entry %q should be Processed after Checkpoint", e.Path)
		}
	}

	paths, err := arc.LoadFileList("my-conv")
	if err != nil {
		t.Fatalf("LoadFileList failed: %v", err)
	}
	if len(paths) != 2 {
		t.Errorf("persisted %d paths, want 2", len(paths))
	}
}

func TestLedger_Reset(t *testing.T) {
	ledger, _ := newTestLedger(t, "")
	mustAttach(t, ledger, "/tmp/a.pdf")
	ledger.Reset()
	if len(ledger.Entries()) != 0 {
		t.Error("Reset did not clear entries")
	}
}
