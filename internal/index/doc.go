// Copyright (c) 2025 Lamachat Authors
// SPDX-License-Identifier: MIT

// Package index provides full-text search over archived conversations.
//
// The index is an SQLite database with an FTS5 virtual table over the
// turns of every stored transcript. It is a cache derived from the
// archive: deleting the database file loses nothing, the next Sync
// rebuilds it from the transcripts.
//
// # Key Types
//
//   - TranscriptIndex: the SQLite-backed search index
//   - SearchResult: one matching turn with its conversation and snippet
//   - Config: database location, watch behavior
//
// # Usage
//
//	idx, err := index.NewTranscriptIndex(arc, index.DefaultConfig(dataDir))
//	if err != nil {
//	    return err
//	}
//	defer idx.Close()
//
//	if err := idx.Sync(ctx); err != nil {
//	    return err
//	}
//
//	results, err := idx.Search("kubernetes", nil)
//
// When watching is enabled, Sync also starts a watcher on the archive
// directory so transcripts written by other processes stay searchable.
package index
