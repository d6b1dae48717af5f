// Copyright (c) 2025 Lamachat Authors
// SPDX-License-Identifier: MIT

// Package util provides small shared helpers for lamachat.
//
// # Key Functions
//
//   - AtomicWriteFile: crash-safe whole-file writes (temp file + fsync + rename)
//   - Truncate, Pad: width-aware string formatting for listings
package util
