// Copyright (c) 2025 Lamachat Authors
// SPDX-License-Identifier: MIT

// Package chat defines conversation turns and the on-disk transcript codec.
package chat

// =============================================================================
// TURN TYPE
// =============================================================================

// Role identifies the author of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in a conversation.
//
// Turns usually alternate user/assistant but nothing enforces strict
// alternation; consumers must not assume it.
type Turn struct {
	Role    Role
	Content string
}

// NewUserTurn creates a user turn.
func NewUserTurn(content string) Turn {
	return Turn{Role: RoleUser, Content: content}
}

// NewAssistantTurn creates an assistant turn.
func NewAssistantTurn(content string) Turn {
	return Turn{Role: RoleAssistant, Content: content}
}

// IsUser reports whether the turn was authored by the user.
func (t Turn) IsUser() bool {
	return t.Role == RoleUser
}

// Label returns the display label for the turn's role.
func (t Turn) Label() string {
	if t.Role == RoleAssistant {
		return "Assistant"
	}
	return "User"
}
