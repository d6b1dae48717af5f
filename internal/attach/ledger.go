// Copyright (c) 2025 Lamachat Authors
// SPDX-License-Identifier: MIT

// Package attach tracks files attached to the active conversation.
package attach

import (
	"sync"

	"github.com/google/uuid"

	"github.com/lamachat/lamachat/internal/archive"
)

// =============================================================================
// ENTRY TYPE
// =============================================================================

// Status is an attachment's processing state.
type Status int

const (
	// Pending means the file is attached but not yet ingested.
	Pending Status = iota
	// Processed means ingestion finished.
	Processed
)

// Entry is one attached file.
type Entry struct {
	ID     string
	Path   string
	Status Status
}

// =============================================================================
// LEDGER
// =============================================================================

// Ledger tracks the attachments of the active conversation. Entries are
// keyed by path; insertion order is preserved for display.
type Ledger struct {
	mu      sync.Mutex
	entries []Entry

	arc *archive.Archive
	// name reports the active conversation's current name; "" while the
	// conversation is unnamed, in which case nothing is persisted.
	name func() string
}

// NewLedger creates a ledger bound to an archive and a conversation-name
// source (typically session.Name).
func NewLedger(arc *archive.Archive, name func() string) *Ledger {
	return &Ledger{arc: arc, name: name}
}

// Attach records a file with status Pending and returns its identifier.
// Attaching a path that is already present returns the existing entry's ID.
// The entry is kept in memory even when persisting the sidecar fails; the
// error reports that the list on disk is stale.
func (l *Ledger) Attach(path string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, e := range l.entries {
		if e.Path == path {
			return e.ID, nil
		}
	}

	id := uuid.NewString()
	l.entries = append(l.entries, Entry{ID: id, Path: path, Status: Pending})
	return id, l.persistLocked()
}

// MarkProcessed transitions an entry to Processed. Unknown paths are a
// no-op.
func (l *Ledger) MarkProcessed(path string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.entries {
		if l.entries[i].Path == path {
			l.entries[i].Status = Processed
			return
		}
	}
}

// Remove deletes an entry. While the conversation is unnamed this is a
// pure in-memory operation; once named, the archive's persisted list is
// rewritten to exclude the entry.
func (l *Ledger) Remove(path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	kept := l.entries[:0]
	removed := false
	for _, e := range l.entries {
		if e.Path == path {
			removed = true
			continue
		}
		kept = append(kept, e)
	}
	l.entries = kept

	if !removed {
		return nil
	}
	return l.persistLocked()
}

// Checkpoint marks every entry Processed and re-persists the list. Called
// after an exchange completes, when the conversation may have just gained
// its name and pending entries could not be persisted before.
func (l *Ledger) Checkpoint() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.entries {
		l.entries[i].Status = Processed
	}
	return l.persistLocked()
}

// Entries returns a copy of the current attachment entries.
func (l *Ledger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Reset clears the ledger, e.g. when the session switches conversations.
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}

// LoadFrom replaces the ledger contents with the persisted attachment list
// of a named conversation. Restored entries count as Processed; they were
// ingested when first attached.
func (l *Ledger) LoadFrom(name string) error {
	paths, err := l.arc.LoadFileList(name)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
	for _, p := range paths {
		l.entries = append(l.entries, Entry{ID: uuid.NewString(), Path: p, Status: Processed})
	}
	return nil
}

// persistLocked mirrors the entry paths to the archive when the
// conversation is named.
func (l *Ledger) persistLocked() error {
	name := l.name()
	if name == "" {
		return nil
	}

	paths := make([]string, 0, len(l.entries))
	for _, e := range l.entries {
		paths = append(paths, e.Path)
	}
	return l.arc.SaveFileList(name, paths)
}
