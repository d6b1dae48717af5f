// Copyright (c) 2025 Lamachat Authors
// SPDX-License-Identifier: MIT

// Package session owns the state of the active conversation.
//
// A Session accumulates the turn history, tracks which turns have not yet
// been flushed to the archive, and drives the backend's token stream for an
// in-flight reply. Completed exchanges are flushed to the archive as a unit;
// a failed flush keeps the pending turns so the next flush retries.
//
// # Key Types
//
//   - Session: the active conversation's state machine (Idle/Streaming)
//   - Backend: capability interface for streaming replies and titling
//
// # Usage
//
// Submit a prompt and render fragments as they arrive:
//
//	frags, err := sess.Submit(ctx, "Where should I go?")
//	if err != nil {
//	    // ErrBusy while a reply is already streaming
//	}
//	for frag := range frags {
//	    // display frag
//	}
//	// stream complete; the exchange has been flushed
//
// Naming is lazy: the first flush asks the backend for a title and adopts it
// permanently. If titling fails, turns still flush under a provisional name
// and the real title is adopted on a later flush.
package session
