// Copyright (c) 2025 Lamachat Authors
// SPDX-License-Identifier: MIT

// Package archive provides the directory-backed conversation store.
package archive

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lamachat/lamachat/internal/chat"
)

// =============================================================================
// ARCHIVE TESTS
// =============================================================================

func TestNewWithDir_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "chats")

	arc, err := NewWithDir(dir)
	if err != nil {
		t.Fatalf("NewWithDir failed: %v", err)
	}
	if arc.Dir != dir {
		t.Errorf("Dir = %q, want %q", arc.Dir, dir)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("directory not created: %v", err)
	}
}

func TestArchive_ListEmpty(t *testing.T) {
	arc, err := NewWithDir(t.TempDir())
	if err != nil {
		t.Fatalf("NewWithDir failed: %v", err)
	}

	names, err := arc.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("got %d names, want 0", len(names))
	}
}

func TestArchive_AppendAndLoad(t *testing.T) {
	arc, err := NewWithDir(t.TempDir())
	if err != nil {
		t.Fatalf("NewWithDir failed: %v", err)
	}

	turns := []chat.Turn{
		chat.NewUserTurn("Where should I go?"),
		chat.NewAssistantTurn("Try Lisbon."),
	}
	if err := arc.Append("trip-planning", turns); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	rec, err := arc.Load("trip-planning")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if rec.Name != "trip-planning" {
		t.Errorf("Name = %q", rec.Name)
	}
	if len(rec.Turns) != 2 {
		t.Fatalf("got %d turns, want 2", len(rec.Turns))
	}
	if rec.Turns[0] != turns[0] || rec.Turns[1] != turns[1] {
		t.Errorf("turns = %+v", rec.Turns)
	}
}

func TestArchive_AppendBatchesConcatenate(t *testing.T) {
	arc, err := NewWithDir(t.TempDir())
	if err != nil {
		t.Fatalf("NewWithDir failed: %v", err)
	}

	batchA := []chat.Turn{chat.NewUserTurn("a"), chat.NewAssistantTurn("b")}
	batchB := []chat.Turn{chat.NewUserTurn("c"), chat.NewAssistantTurn("d")}

	if err := arc.Append("conv", batchA); err != nil {
		t.Fatalf("Append batchA failed: %v", err)
	}
	if err := arc.Append("conv", batchB); err != nil {
		t.Fatalf("Append batchB failed: %v", err)
	}

	rec, err := arc.Load("conv")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	want := append(append([]chat.Turn{}, batchA...), batchB...)
	if len(rec.Turns) != len(want) {
		t.Fatalf("got %d turns, want %d", len(rec.Turns), len(want))
	}
	for i := range want {
		if rec.Turns[i] != want[i] {
			t.Errorf("turn %d: got %+v, want %+v", i, rec.Turns[i], want[i])
		}
	}
}

func TestArchive_AppendEmptyBatchIsNoop(t *testing.T) {
	arc, err := NewWithDir(t.TempDir())
	if err != nil {
		t.Fatalf("NewWithDir failed: %v", err)
	}

	if err := arc.Append("conv", nil); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if arc.Exists("conv") {
		t.Error("empty append should not create a transcript")
	}
}

func TestArchive_LoadNotFound(t *testing.T) {
	arc, err := NewWithDir(t.TempDir())
	if err != nil {
		t.Fatalf("NewWithDir failed: %v", err)
	}

	_, err = arc.Load("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestArchive_DeleteIdempotent(t *testing.T) {
	arc, err := NewWithDir(t.TempDir())
	if err != nil {
		t.Fatalf("NewWithDir failed: %v", err)
	}

	if err := arc.Delete("nonexistent"); err != nil {
		t.Errorf("Delete of missing record should be a no-op, got %v", err)
	}

	if err := arc.Append("doomed", []chat.Turn{chat.NewUserTurn("x")}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := arc.Delete("doomed"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if arc.Exists("doomed") {
		t.Error("transcript still exists after delete")
	}
	if err := arc.Delete("doomed"); err != nil {
		t.Errorf("second Delete should be a no-op, got %v", err)
	}
}

func TestArchive_ListMostRecentFirst(t *testing.T) {
	arc, err := NewWithDir(t.TempDir())
	if err != nil {
		t.Fatalf("NewWithDir failed: %v", err)
	}

	if err := arc.Append("older", []chat.Turn{chat.NewUserTurn("1")}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	// Push the second transcript's mtime clearly past the first.
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(filepath.Join(arc.Dir, "older.txt"), past, past); err != nil {
		t.Fatalf("Chtimes failed: %v", err)
	}
	if err := arc.Append("newer", []chat.Turn{chat.NewUserTurn("2")}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	names, err := arc.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("got %d names, want 2", len(names))
	}
	if names[0] != "newer" || names[1] != "older" {
		t.Errorf("names = %v, want [newer older]", names)
	}
}

func TestArchive_ListIgnoresSidecars(t *testing.T) {
	arc, err := NewWithDir(t.TempDir())
	if err != nil {
		t.Fatalf("NewWithDir failed: %v", err)
	}

	if err := arc.Append("conv", []chat.Turn{chat.NewUserTurn("x")}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := arc.SaveFileList("conv", []string{"/tmp/doc.pdf"}); err != nil {
		t.Fatalf("SaveFileList failed: %v", err)
	}

	names, err := arc.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(names) != 1 || names[0] != "conv" {
		t.Errorf("names = %v, want [conv]", names)
	}
}

// =============================================================================
// FILE LIST TESTS
// =============================================================================

func TestArchive_FileListRoundTrip(t *testing.T) {
	arc, err := NewWithDir(t.TempDir())
	if err != nil {
		t.Fatalf("NewWithDir failed: %v", err)
	}

	paths := []string{"/tmp/a.pdf", "/tmp/b.pdf"}
	if err := arc.SaveFileList("conv", paths); err != nil {
		t.Fatalf("SaveFileList failed: %v", err)
	}

	got, err := arc.LoadFileList("conv")
	if err != nil {
		t.Fatalf("LoadFileList failed: %v", err)
	}
	if len(got) != 2 || got[0] != paths[0] || got[1] != paths[1] {
		t.Errorf("paths = %v, want %v", got, paths)
	}
}

func TestArchive_FileListMissingIsEmpty(t *testing.T) {
	arc, err := NewWithDir(t.TempDir())
	if err != nil {
		t.Fatalf("NewWithDir failed: %v", err)
	}

	got, err := arc.LoadFileList("never-saved")
	if err != nil {
		t.Fatalf("LoadFileList failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("paths = %v, want empty", got)
	}
}

func TestArchive_SaveEmptyFileListRemovesSidecar(t *testing.T) {
	arc, err := NewWithDir(t.TempDir())
	if err != nil {
		t.Fatalf("NewWithDir failed: %v", err)
	}

	if err := arc.SaveFileList("conv", []string{"/tmp/a.pdf"}); err != nil {
		t.Fatalf("SaveFileList failed: %v", err)
	}
	if err := arc.SaveFileList("conv", nil); err != nil {
		t.Fatalf("SaveFileList(nil) failed: %v", err)
	}
	if _, err := os.Stat(arc.fileListPath("conv")); !os.IsNotExist(err) {
		t.Error("sidecar should be removed when the list empties")
	}
}

func TestArchive_DeleteRemovesSidecar(t *testing.T) {
	arc, err := NewWithDir(t.TempDir())
	if err != nil {
		t.Fatalf("NewWithDir failed: %v", err)
	}

	if err := arc.Append("conv", []chat.Turn{chat.NewUserTurn("x")}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := arc.SaveFileList("conv", []string{"/tmp/a.pdf"}); err != nil {
		t.Fatalf("SaveFileList failed: %v", err)
	}
	if err := arc.Delete("conv"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := os.Stat(arc.fileListPath("conv")); !os.IsNotExist(err) {
		t.Error("sidecar should be deleted with the transcript")
	}
}

// =============================================================================
// NAME SANITIZATION TESTS
// =============================================================================

func TestSanitizeName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Trip Planning", "Trip Planning"},
		{"  padded  title  ", "padded title"},
		{"what/about\\slashes?", "what about slashes"},
		{"a:b*c\"d<e>f|g", "a b c d e f g"},
		{"trailing dots...", "trailing dots"},
		{"", "untitled"},
		{"???", "untitled"},
		{"line\nbreaks\tcollapse", "line breaks collapse"},
	}

	for _, tc := range cases {
		if got := SanitizeName(tc.in); got != tc.want {
			t.Errorf("SanitizeName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSanitizeName_LengthCap(t *testing.T) {
	long := ""
	for i := 0; i < 30; i++ {
		long += "abcdefgh "
	}

	got := SanitizeName(long)
	if len([]rune(got)) > 80 {
		t.Errorf("sanitized name too long: %d runes", len([]rune(got)))
	}
}
