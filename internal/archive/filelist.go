// Copyright (c) 2025 Lamachat Authors
// SPDX-License-Identifier: MIT

// Package archive provides the directory-backed conversation store.
package archive

import (
	"encoding/json"
	"os"

	"github.com/lamachat/lamachat/internal/util"
)

// =============================================================================
// ATTACHMENT FILE LIST
// =============================================================================

// The attachment list is a small mutable record, so unlike transcripts it is
// rewritten whole on every change, atomically.

// SaveFileList persists the attachment paths for a named conversation.
// An empty list removes the sidecar instead of writing an empty file.
func (a *Archive) SaveFileList(name string, paths []string) error {
	if len(paths) == 0 {
		if err := os.Remove(a.fileListPath(name)); err != nil && !os.IsNotExist(err) {
			return &ArchiveError{Message: "failed to remove attachment list", Cause: err}
		}
		return nil
	}

	data, err := json.MarshalIndent(paths, "", "  ")
	if err != nil {
		return &ArchiveError{Message: "failed to encode attachment list", Cause: err}
	}

	if err := util.AtomicWriteFile(a.fileListPath(name), data, 0644); err != nil {
		return &ArchiveError{Message: "failed to write attachment list", Cause: err}
	}
	return nil
}

// LoadFileList returns the persisted attachment paths for a named
// conversation. A missing sidecar yields an empty list.
func (a *Archive) LoadFileList(name string) ([]string, error) {
	data, err := os.ReadFile(a.fileListPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &ArchiveError{Message: "failed to read attachment list", Cause: err}
	}

	var paths []string
	if err := json.Unmarshal(data, &paths); err != nil {
		return nil, &ArchiveError{Message: "failed to decode attachment list", Cause: err}
	}
	return paths, nil
}
