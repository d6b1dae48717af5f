// Copyright (c) 2025 Lamachat Authors
// SPDX-License-Identifier: MIT

package ollama

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"
)

// =============================================================================
// STREAM READER
// =============================================================================

// StreamReader parses a streaming chat response line by line. Each line is
// one JSON object; a line that does not carry the expected message shape
// ends the stream, mirroring how the UI treats a misbehaving backend: stop
// cleanly and keep what was received.
type StreamReader struct {
	reader      *bufio.Reader
	accumulator strings.Builder
	model       string
}

// NewStreamReader creates a stream reader over r.
func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{reader: bufio.NewReader(r)}
}

// Process reads the stream and calls the callback for each chunk. Blocks
// until the stream ends or the context is cancelled.
func (s *StreamReader) Process(ctx context.Context, callback StreamCallback) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		chunk, end, err := s.readChunk()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if end {
			return nil
		}
		if chunk != nil {
			callback(*chunk)
			if chunk.Done {
				return nil
			}
		}
	}
}

// readChunk reads one line. end is true when the line was structurally
// invalid and the stream should terminate without error.
func (s *StreamReader) readChunk() (chunk *StreamChunk, end bool, err error) {
	line, err := s.reader.ReadBytes('\n')
	if err != nil {
		if len(line) == 0 {
			return nil, false, err
		}
		// Process a final unterminated line before reporting EOF.
	}

	trimmed := strings.TrimSpace(string(line))
	if trimmed == "" {
		return nil, false, nil
	}

	var response struct {
		Model   string `json:"model"`
		Message *struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		Done       bool   `json:"done"`
		DoneReason string `json:"done_reason,omitempty"`
	}
	if err := json.Unmarshal([]byte(trimmed), &response); err != nil || response.Message == nil {
		// Output stopped matching the expected shape: end of stream.
		return nil, true, nil
	}

	if response.Model != "" {
		s.model = response.Model
	}
	s.accumulator.WriteString(response.Message.Content)

	return &StreamChunk{
		Content:    response.Message.Content,
		Done:       response.Done,
		DoneReason: response.DoneReason,
		Model:      s.model,
	}, false, nil
}

// Accumulated returns all content received so far.
func (s *StreamReader) Accumulated() string {
	return s.accumulator.String()
}

// Model returns the model name reported by the stream.
func (s *StreamReader) Model() string {
	return s.model
}
