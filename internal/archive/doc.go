// Copyright (c) 2025 Lamachat Authors
// SPDX-License-Identifier: MIT

// Package archive provides the directory-backed conversation store.
//
// Each conversation is one append-only transcript file named after the
// conversation, plus an optional small JSON sidecar holding the attachment
// list. The archive never rewrites a transcript to add turns; it only
// appends, and rewrites a file only to delete it.
//
// # Key Types
//
//   - Archive: directory-backed store of named transcripts
//   - Record: a loaded conversation with its decoded turns
//
// # Usage
//
// Create an archive and list conversations, most recent first:
//
//	arc, err := archive.NewWithDir(dir)
//	names, err := arc.List()
//
// Append a flushed batch of turns:
//
//	err := arc.Append("trip-planning", turns)
//
// # Storage Location
//
// Transcripts live in ~/.lamachat/chats/ as <name>.txt files.
package archive
