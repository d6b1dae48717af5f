// Copyright (c) 2025 Lamachat Authors
// SPDX-License-Identifier: MIT

package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/lamachat/lamachat/internal/archive"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrNotSynced     = errors.New("archive not indexed")
	ErrSyncing       = errors.New("sync in progress")
	ErrDatabaseError = errors.New("database error")
)

// =============================================================================
// TRANSCRIPT INDEX
// =============================================================================

// TranscriptIndex indexes archived conversations for fast search
type TranscriptIndex struct {
	db      *sql.DB
	watcher ArchiveWatcher // Interface for archive watching (fsnotify or polling)
	arc     *archive.Archive
	mu      sync.RWMutex

	// Sync state
	syncing    bool
	syncingMu  sync.Mutex
	lastSynced time.Time
	convCount  int
	turnCount  int

	// Configuration
	config *Config
}

// Config holds index configuration
type Config struct {
	// DatabasePath is where to store the SQLite database
	DatabasePath string

	// EnableWatch enables archive watching for incremental updates
	EnableWatch bool

	// WatchDebounce is the debounce duration for transcript change events
	WatchDebounce time.Duration
}

// DefaultConfig returns default configuration. dataDir is the application
// data directory, not the archive directory.
func DefaultConfig(dataDir string) *Config {
	return &Config{
		DatabasePath:  filepath.Join(dataDir, "search.db"),
		EnableWatch:   true,
		WatchDebounce: 500 * time.Millisecond,
	}
}

// NewTranscriptIndex creates a new index over an archive
func NewTranscriptIndex(arc *archive.Archive, config *Config) (*TranscriptIndex, error) {
	if arc == nil {
		return nil, errors.New("archive cannot be nil")
	}
	if config == nil {
		return nil, errors.New("config cannot be nil")
	}

	// Create database directory if needed
	dbDir := filepath.Dir(config.DatabasePath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Open database
	db, err := sql.Open("sqlite", config.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	idx := &TranscriptIndex{
		db:     db,
		arc:    arc,
		config: config,
	}

	if err := idx.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	// Non-fatal; a fresh database has no stats yet.
	idx.loadStats()

	return idx, nil
}

// initSchema creates the database schema
func (idx *TranscriptIndex) initSchema() error {
	if _, err := idx.db.Exec(Schema); err != nil {
		return err
	}
	if _, err := idx.db.Exec(InitMetadata); err != nil {
		return err
	}
	_, err := idx.db.Exec("UPDATE metadata SET value = ? WHERE key = 'archive_dir'", idx.arc.Dir)
	return err
}

// Close closes the index and releases resources
func (idx *TranscriptIndex) Close() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.watcher != nil {
		idx.watcher.Close()
	}

	if idx.db != nil {
		return idx.db.Close()
	}

	return nil
}

// =============================================================================
// SYNCING
// =============================================================================

// Sync performs a full rebuild of the index from the archive
func (idx *TranscriptIndex) Sync(ctx context.Context) error {
	idx.syncingMu.Lock()
	if idx.syncing {
		idx.syncingMu.Unlock()
		return ErrSyncing
	}
	idx.syncing = true
	idx.syncingMu.Unlock()

	defer func() {
		idx.syncingMu.Lock()
		idx.syncing = false
		idx.syncingMu.Unlock()
	}()

	startTime := time.Now()

	names, err := idx.arc.List()
	if err != nil {
		return fmt.Errorf("failed to list archive: %w", err)
	}

	tx, err := idx.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer tx.Rollback()

	// Clear existing data
	if _, err := tx.Exec("DELETE FROM turns"); err != nil {
		return fmt.Errorf("failed to clear turns: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM conversations"); err != nil {
		return fmt.Errorf("failed to clear conversations: %w", err)
	}

	var convCount, turnCount int
	for _, name := range names {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// Skip transcripts that disappear or fail to decode mid-sync.
		numTurns, err := idx.indexConversation(tx, name)
		if err != nil {
			continue
		}

		convCount++
		turnCount += numTurns
	}

	now := time.Now().Unix()
	if _, err := tx.Exec("UPDATE metadata SET value = ? WHERE key = 'last_full_sync'", now); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	idx.mu.Lock()
	idx.lastSynced = startTime
	idx.convCount = convCount
	idx.turnCount = turnCount
	idx.mu.Unlock()

	// Start archive watcher if enabled
	if idx.config.EnableWatch && idx.watcher == nil {
		// Non-fatal; search keeps working from explicit Put calls.
		idx.startWatcher()
	}

	return nil
}

// indexConversation loads one transcript and inserts it, returning the
// number of turns indexed
func (idx *TranscriptIndex) indexConversation(tx *sql.Tx, name string) (int, error) {
	record, err := idx.arc.Load(name)
	if err != nil {
		return 0, err
	}

	var modTime int64
	if info, err := os.Stat(filepath.Join(idx.arc.Dir, name+".txt")); err == nil {
		modTime = info.ModTime().Unix()
	}

	result, err := tx.Exec(`
		INSERT INTO conversations (name, mod_time, turn_count, indexed_at)
		VALUES (?, ?, ?, ?)
	`, name, modTime, len(record.Turns), time.Now().Unix())
	if err != nil {
		return 0, err
	}

	convID, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	for i, turn := range record.Turns {
		_, err := tx.Exec(`
			INSERT INTO turns (conversation_id, position, role, content)
			VALUES (?, ?, ?, ?)
		`, convID, i, string(turn.Role), turn.Content)
		if err != nil {
			return 0, err
		}
	}

	return len(record.Turns), nil
}

// Put incrementally reindexes a single conversation. Call it after a
// flush so new exchanges become searchable without a full Sync.
func (idx *TranscriptIndex) Put(name string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	tx, err := idx.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer tx.Rollback()

	// Replace wholesale; transcripts are small and append-only.
	if _, err := tx.Exec("DELETE FROM conversations WHERE name = ?", name); err != nil {
		return err
	}

	if _, err := idx.indexConversation(tx, name); err != nil {
		if errors.Is(err, archive.ErrNotFound) {
			// Deleted between flush and reindex; the DELETE above stands.
			return tx.Commit()
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	idx.reloadStatsLocked()
	return nil
}

// Remove drops a conversation from the index
func (idx *TranscriptIndex) Remove(name string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	// Cascade removes the turns, triggers clean the FTS table.
	if _, err := idx.db.Exec("DELETE FROM conversations WHERE name = ?", name); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	idx.reloadStatsLocked()
	return nil
}

// Rename carries index entries across a transcript rename
func (idx *TranscriptIndex) Rename(oldName, newName string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, err := idx.db.Exec("UPDATE conversations SET name = ? WHERE name = ?", newName, oldName); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return nil
}

// loadStats loads statistics from the database
func (idx *TranscriptIndex) loadStats() error {
	var lastSynced int64
	err := idx.db.QueryRow("SELECT value FROM metadata WHERE key = 'last_full_sync'").Scan(&lastSynced)
	if err != nil {
		return err
	}

	if lastSynced > 0 {
		idx.lastSynced = time.Unix(lastSynced, 0)
	}

	if err := idx.db.QueryRow("SELECT COUNT(*) FROM conversations").Scan(&idx.convCount); err != nil {
		return err
	}
	if err := idx.db.QueryRow("SELECT COUNT(*) FROM turns").Scan(&idx.turnCount); err != nil {
		return err
	}

	return nil
}

// reloadStatsLocked refreshes counts after an incremental change.
// Caller holds idx.mu.
func (idx *TranscriptIndex) reloadStatsLocked() {
	idx.db.QueryRow("SELECT COUNT(*) FROM conversations").Scan(&idx.convCount)
	idx.db.QueryRow("SELECT COUNT(*) FROM turns").Scan(&idx.turnCount)
}

// =============================================================================
// STATISTICS
// =============================================================================

// Stats returns index statistics
type Stats struct {
	ConversationCount int
	TurnCount         int
	LastSynced        time.Time
	IsSyncing         bool
	DatabaseSize      int64
}

// Stats returns current index statistics
func (idx *TranscriptIndex) Stats() Stats {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	idx.syncingMu.Lock()
	syncing := idx.syncing
	idx.syncingMu.Unlock()

	var dbSize int64
	if info, err := os.Stat(idx.config.DatabasePath); err == nil {
		dbSize = info.Size()
	}

	return Stats{
		ConversationCount: idx.convCount,
		TurnCount:         idx.turnCount,
		LastSynced:        idx.lastSynced,
		IsSyncing:         syncing,
		DatabaseSize:      dbSize,
	}
}

// IsSynced returns true if the archive has been indexed at least once
func (idx *TranscriptIndex) IsSynced() bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return !idx.lastSynced.IsZero()
}
