// Copyright (c) 2025 Lamachat Authors
// SPDX-License-Identifier: MIT

// Package chat defines conversation turns and the on-disk transcript codec.
//
// A transcript is a line-oriented text file. Each turn starts with a role
// tag ("user: " or "assistant: ") and untagged lines are continuations of
// the previous turn, so multi-line content survives a round trip without
// any escaping.
//
// # Key Types
//
//   - Turn: one role-tagged message
//   - Decoder: streaming transcript reader
//
// # Usage
//
// Decode a transcript lazily:
//
//	dec := chat.NewDecoder(f)
//	for {
//	    turn, err := dec.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	    // render turn
//	}
//
// Render for display:
//
//	md := chat.RenderMarkdown(turns)
package chat
