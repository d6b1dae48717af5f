// Copyright (c) 2025 Lamachat Authors
// SPDX-License-Identifier: MIT

// Package ollama provides the HTTP client for the local Ollama service.
package ollama

import "time"

// =============================================================================
// REQUEST TYPES
// =============================================================================

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// NewUserMessage creates a user message.
func NewUserMessage(content string) Message {
	return Message{Role: "user", Content: content}
}

// NewAssistantMessage creates an assistant message.
func NewAssistantMessage(content string) Message {
	return Message{Role: "assistant", Content: content}
}

// ChatRequest is the request body for /api/chat.
type ChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

// PullModelRequest is the request body for /api/pull.
type PullModelRequest struct {
	Name   string `json:"name"`
	Stream bool   `json:"stream"`
}

// DeleteModelRequest is the request body for DELETE /api/delete.
type DeleteModelRequest struct {
	Name string `json:"name"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// ChatResponse is the non-streaming response from /api/chat.
type ChatResponse struct {
	Model      string    `json:"model"`
	CreatedAt  time.Time `json:"created_at"`
	Message    Message   `json:"message"`
	Done       bool      `json:"done"`
	DoneReason string    `json:"done_reason,omitempty"`
}

// ModelInfo describes one locally installed model.
type ModelInfo struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	Digest     string    `json:"digest"`
	ModifiedAt time.Time `json:"modified_at"`
}

// ListModelsResponse is the response from /api/tags.
type ListModelsResponse struct {
	Models []ModelInfo `json:"models"`
}

// PullProgress is one streamed status line from /api/pull.
type PullProgress struct {
	Status    string `json:"status"`
	Digest    string `json:"digest,omitempty"`
	Total     int64  `json:"total,omitempty"`
	Completed int64  `json:"completed,omitempty"`
}

// OllamaError is the error body the service returns on failures.
type OllamaError struct {
	Error string `json:"error"`
}

// =============================================================================
// STREAM TYPES
// =============================================================================

// StreamChunk is one piece of a streaming chat reply.
type StreamChunk struct {
	Content    string
	Done       bool
	DoneReason string
	Model      string
	Error      error
}
