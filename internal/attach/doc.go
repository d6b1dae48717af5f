// Copyright (c) 2025 Lamachat Authors
// SPDX-License-Identifier: MIT

// Package attach tracks files attached to the active conversation.
//
// The ledger is in-memory state owned alongside the session; the archive
// holds a small persisted mirror of the attachment paths once the
// conversation has a name. Removing an attachment from an unnamed
// conversation touches memory only.
//
// # Key Types
//
//   - Ledger: the active conversation's attachment set
//   - Entry: one attached file with its processing status
package attach
