// Copyright (c) 2025 Lamachat Authors
// SPDX-License-Identifier: MIT

// Package archive provides the directory-backed conversation store.
package archive

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/lamachat/lamachat/internal/chat"
)

// transcriptExt is the extension of transcript files in the archive directory.
const transcriptExt = ".txt"

// =============================================================================
// ERRORS
// =============================================================================

// ErrNotFound is returned when a named conversation does not exist.
// Use errors.Is(err, archive.ErrNotFound) to check for it.
var ErrNotFound = &ArchiveError{Message: "conversation not found"}

// ArchiveError represents an archive-level error.
type ArchiveError struct {
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ArchiveError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *ArchiveError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is support for comparing archive errors.
func (e *ArchiveError) Is(target error) bool {
	t, ok := target.(*ArchiveError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

// =============================================================================
// RECORD TYPE
// =============================================================================

// Record is a loaded conversation: the durable, named form of a chat.
type Record struct {
	Name  string
	Turns []chat.Turn
}

// =============================================================================
// ARCHIVE
// =============================================================================

// Archive is a directory-backed store of named conversation transcripts.
//
// List and Load are safe to call at any time; Append calls targeting the
// same name must be serialized by the caller (one active session per
// archive is the supported shape).
type Archive struct {
	// Dir is the directory holding transcript files.
	// Default: ~/.lamachat/chats/
	Dir string
}

// New creates an archive rooted at the default location.
func New() (*Archive, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return NewWithDir(filepath.Join(homeDir, ".lamachat", "chats"))
}

// NewWithDir creates an archive rooted at a custom directory.
func NewWithDir(dir string) (*Archive, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, &ArchiveError{Message: "failed to create archive directory", Cause: err}
	}
	return &Archive{Dir: dir}, nil
}

// =============================================================================
// LIST
// =============================================================================

// List returns the names of all stored conversations, most recently
// modified first. An empty archive yields an empty list, never an error.
func (a *Archive) List() ([]string, error) {
	if err := os.MkdirAll(a.Dir, 0755); err != nil {
		return nil, &ArchiveError{Message: "failed to create archive directory", Cause: err}
	}

	entries, err := os.ReadDir(a.Dir)
	if err != nil {
		return nil, &ArchiveError{Message: "failed to read archive directory", Cause: err}
	}

	type stamped struct {
		name    string
		modTime time.Time
	}

	var records []stamped
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), transcriptExt) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		records = append(records, stamped{
			name:    strings.TrimSuffix(entry.Name(), transcriptExt),
			modTime: info.ModTime(),
		})
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].modTime.After(records[j].modTime)
	})

	names := make([]string, len(records))
	for i, r := range records {
		names[i] = r.name
	}
	return names, nil
}

// =============================================================================
// LOAD
// =============================================================================

// Load reads and decodes the named conversation.
func (a *Archive) Load(name string) (*Record, error) {
	f, err := os.Open(a.transcriptPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, &ArchiveError{Message: "failed to open transcript", Cause: err}
	}
	defer f.Close()

	turns, err := chat.DecodeAll(f)
	if err != nil {
		return nil, &ArchiveError{Message: "failed to read transcript", Cause: err}
	}

	return &Record{Name: name, Turns: turns}, nil
}

// =============================================================================
// APPEND
// =============================================================================

// Append durably appends turns to the named transcript, creating it on
// first write. Existing content is never read or rewritten, so repeated
// calls with disjoint batches concatenate in call order.
func (a *Archive) Append(name string, turns []chat.Turn) error {
	if len(turns) == 0 {
		return nil
	}

	f, err := os.OpenFile(a.transcriptPath(name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return &ArchiveError{Message: "failed to open transcript for append", Cause: err}
	}

	if _, err := f.WriteString(chat.EncodeTurns(turns)); err != nil {
		f.Close()
		return &ArchiveError{Message: "failed to append turns", Cause: err}
	}

	// RELIABILITY: fsync so a flushed exchange survives a crash.
	if err := f.Sync(); err != nil {
		f.Close()
		return &ArchiveError{Message: "failed to sync transcript", Cause: err}
	}

	return f.Close()
}

// =============================================================================
// DELETE
// =============================================================================

// Delete removes the named conversation and its attachment sidecar.
// Deleting a conversation that does not exist is a no-op.
func (a *Archive) Delete(name string) error {
	if err := os.Remove(a.transcriptPath(name)); err != nil && !os.IsNotExist(err) {
		return &ArchiveError{Message: "failed to delete transcript", Cause: err}
	}
	// Sidecar is best-effort; it may never have existed.
	os.Remove(a.fileListPath(name))
	return nil
}

// Promote moves a provisionally named record to its final name. This is the
// one-time step of deferred naming, not a general rename: once a record
// carries its generated title the name never changes again. Fails with
// ErrNotFound when the provisional record is missing.
func (a *Archive) Promote(provisional, name string) error {
	if err := os.Rename(a.transcriptPath(provisional), a.transcriptPath(name)); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return &ArchiveError{Message: "failed to promote transcript", Cause: err}
	}
	// Carry the attachment sidecar along when present.
	if err := os.Rename(a.fileListPath(provisional), a.fileListPath(name)); err != nil && !os.IsNotExist(err) {
		return &ArchiveError{Message: "failed to promote attachment list", Cause: err}
	}
	return nil
}

// Exists reports whether a conversation with the given name is stored.
func (a *Archive) Exists(name string) bool {
	_, err := os.Stat(a.transcriptPath(name))
	return err == nil
}

// =============================================================================
// PATHS
// =============================================================================

// transcriptPath returns the file path for a conversation name.
func (a *Archive) transcriptPath(name string) string {
	return filepath.Join(a.Dir, name+transcriptExt)
}

// fileListPath returns the attachment sidecar path for a conversation name.
func (a *Archive) fileListPath(name string) string {
	return filepath.Join(a.Dir, name+".files.json")
}

// =============================================================================
// NAME SANITIZATION
// =============================================================================

// SanitizeName turns a generated title into a storage-safe conversation
// name. Path separators and characters that are invalid in file names on
// common platforms are replaced, whitespace is collapsed, and the result
// is length-capped. An empty result falls back to "untitled".
func SanitizeName(title string) string {
	var sb strings.Builder
	for _, r := range title {
		switch {
		case r == '/' || r == '\\' || r == ':' || r == '*' || r == '?' ||
			r == '"' || r == '<' || r == '>' || r == '|':
			sb.WriteRune(' ')
		case r < 0x20:
			sb.WriteRune(' ')
		default:
			sb.WriteRune(r)
		}
	}

	name := strings.Join(strings.Fields(sb.String()), " ")
	name = strings.Trim(name, ". ")

	runes := []rune(name)
	if len(runes) > 80 {
		name = strings.TrimSpace(string(runes[:80]))
	}

	if name == "" {
		return "untitled"
	}
	return name
}
