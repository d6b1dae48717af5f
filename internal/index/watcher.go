// Copyright (c) 2025 Lamachat Authors
// SPDX-License-Identifier: MIT

package index

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// ARCHIVE WATCHER INTERFACE
// =============================================================================

// ArchiveWatcher is the interface for archive watching implementations
type ArchiveWatcher interface {
	// Watch starts watching for transcript changes
	Watch() error

	// Close stops watching and releases resources
	Close() error
}

// =============================================================================
// FSNOTIFY WATCHER
// =============================================================================

// FsnotifyWatcher implements ArchiveWatcher using fsnotify
type FsnotifyWatcher struct {
	idx      *TranscriptIndex
	watcher  *fsnotify.Watcher
	debounce time.Duration
	mu       sync.Mutex
	pending  map[string]time.Time // Conversation name -> last change time
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewFsnotifyWatcher creates a new fsnotify-based watcher
func NewFsnotifyWatcher(idx *TranscriptIndex, debounce time.Duration) (*FsnotifyWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	fw := &FsnotifyWatcher{
		idx:      idx,
		watcher:  watcher,
		debounce: debounce,
		pending:  make(map[string]time.Time),
		ctx:      ctx,
		cancel:   cancel,
	}

	return fw, nil
}

// Watch starts watching the archive directory. The archive is flat, so a
// single watch covers everything.
func (fw *FsnotifyWatcher) Watch() error {
	if err := fw.watcher.Add(fw.idx.arc.Dir); err != nil {
		return err
	}

	go fw.processEvents()
	go fw.processPending()

	return nil
}

// conversationName extracts the conversation name from a transcript path,
// or "" when the path is not a transcript.
func conversationName(path string) string {
	base := filepath.Base(path)
	if !strings.HasSuffix(base, ".txt") {
		return ""
	}
	return strings.TrimSuffix(base, ".txt")
}

// processEvents processes file system events
func (fw *FsnotifyWatcher) processEvents() {
	defer func() {
		// A panic here must not take down the whole client.
		recover()
	}()

	for {
		select {
		case <-fw.ctx.Done():
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}

			name := conversationName(event.Name)
			if name == "" {
				continue
			}

			if event.Op&fsnotify.Write == fsnotify.Write ||
				event.Op&fsnotify.Create == fsnotify.Create {
				fw.handleChange(name)
			}

			// Rename delivers the old path; the new path arrives as Create.
			if event.Op&fsnotify.Rename == fsnotify.Rename ||
				event.Op&fsnotify.Remove == fsnotify.Remove {
				fw.idx.Remove(name)
			}

		case _, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// handleChange records a changed conversation for debounced reindexing
func (fw *FsnotifyWatcher) handleChange(name string) {
	fw.mu.Lock()
	fw.pending[name] = time.Now()
	fw.mu.Unlock()
}

// processPending reindexes pending conversations after the debounce window
func (fw *FsnotifyWatcher) processPending() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-fw.ctx.Done():
			return

		case <-ticker.C:
			now := time.Now()

			fw.mu.Lock()
			var toProcess []string
			for name, changeTime := range fw.pending {
				if now.Sub(changeTime) >= fw.debounce {
					toProcess = append(toProcess, name)
					delete(fw.pending, name)
				}
			}
			fw.mu.Unlock()

			for _, name := range toProcess {
				fw.idx.Put(name)
			}
		}
	}
}

// Close stops watching and releases resources
func (fw *FsnotifyWatcher) Close() error {
	fw.cancel()
	if fw.watcher != nil {
		return fw.watcher.Close()
	}
	return nil
}

// =============================================================================
// POLLING WATCHER (FALLBACK)
// =============================================================================

// PollingWatcher implements ArchiveWatcher using periodic polling
type PollingWatcher struct {
	idx      *TranscriptIndex
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
	files    map[string]time.Time // Conversation name -> mod time
	mu       sync.Mutex
}

// NewPollingWatcher creates a new polling-based watcher
func NewPollingWatcher(idx *TranscriptIndex, interval time.Duration) *PollingWatcher {
	ctx, cancel := context.WithCancel(context.Background())

	return &PollingWatcher{
		idx:      idx,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
		files:    make(map[string]time.Time),
	}
}

// Watch starts watching for transcript changes
func (pw *PollingWatcher) Watch() error {
	if err := pw.scan(); err != nil {
		return err
	}

	go pw.poll()

	return nil
}

// scan records the mod time of every transcript in the archive
func (pw *PollingWatcher) scan() error {
	entries, err := os.ReadDir(pw.idx.arc.Dir)
	if err != nil {
		return err
	}

	newFiles := make(map[string]time.Time)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := conversationName(entry.Name())
		if name == "" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		newFiles[name] = info.ModTime()
	}

	pw.mu.Lock()
	pw.files = newFiles
	pw.mu.Unlock()
	return nil
}

// poll periodically checks for transcript changes
func (pw *PollingWatcher) poll() {
	ticker := time.NewTicker(pw.interval)
	defer ticker.Stop()

	for {
		select {
		case <-pw.ctx.Done():
			return

		case <-ticker.C:
			pw.checkChanges()
		}
	}
}

// checkChanges diffs the archive against the last scan and updates the index
func (pw *PollingWatcher) checkChanges() {
	pw.mu.Lock()
	oldFiles := make(map[string]time.Time, len(pw.files))
	for k, v := range pw.files {
		oldFiles[k] = v
	}
	pw.mu.Unlock()

	if err := pw.scan(); err != nil {
		return
	}

	pw.mu.Lock()
	currentFiles := pw.files
	pw.mu.Unlock()

	for name, modTime := range currentFiles {
		if oldTime, exists := oldFiles[name]; !exists || !oldTime.Equal(modTime) {
			pw.idx.Put(name)
		}
	}

	for name := range oldFiles {
		if _, exists := currentFiles[name]; !exists {
			pw.idx.Remove(name)
		}
	}
}

// Close stops watching
func (pw *PollingWatcher) Close() error {
	pw.cancel()
	return nil
}

// =============================================================================
// WATCHER FACTORY
// =============================================================================

// startWatcher starts the archive watcher (fsnotify or polling fallback)
func (idx *TranscriptIndex) startWatcher() error {
	// Try fsnotify first
	fw, err := NewFsnotifyWatcher(idx, idx.config.WatchDebounce)
	if err == nil {
		if err := fw.Watch(); err == nil {
			idx.watcher = fw
			return nil
		}
		fw.Close()
	}

	// Fallback to polling watcher
	pw := NewPollingWatcher(idx, 5*time.Second)
	if err := pw.Watch(); err != nil {
		return err
	}

	idx.watcher = pw
	return nil
}
