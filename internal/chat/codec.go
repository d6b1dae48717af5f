// Copyright (c) 2025 Lamachat Authors
// SPDX-License-Identifier: MIT

// Package chat defines conversation turns and the on-disk transcript codec.
package chat

import (
	"bufio"
	"io"
	"strings"
)

// Recognized role tags. The trailing space is part of the tag; a line that
// merely starts with "user:" is continuation text.
const (
	userTag      = "user: "
	assistantTag = "assistant: "
)

// =============================================================================
// ENCODING
// =============================================================================

// EncodeTurn renders a turn in transcript format. The first content line is
// prefixed with the role tag; embedded newlines are written verbatim and read
// back as continuation lines.
func EncodeTurn(t Turn) string {
	return string(t.Role) + ": " + t.Content + "\n"
}

// EncodeTurns renders a batch of turns in call order.
func EncodeTurns(turns []Turn) string {
	var sb strings.Builder
	for _, t := range turns {
		sb.WriteString(EncodeTurn(t))
	}
	return sb.String()
}

// =============================================================================
// DECODING
// =============================================================================

// Decoder reads turns from a transcript one at a time.
//
// Decoding is forgiving by construction: any line that does not start a new
// turn is folded into the previous turn's content, and lines before the first
// role tag are dropped. Malformed input never produces an error; the only
// errors returned are the reader's own.
type Decoder struct {
	scanner *bufio.Scanner
	// next holds the tagged line that terminated the previous turn.
	next    string
	hasNext bool
	err     error
}

// NewDecoder creates a Decoder reading from r. Restarting means reopening
// the underlying source and creating a fresh Decoder.
func NewDecoder(r io.Reader) *Decoder {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	return &Decoder{scanner: sc}
}

// Next returns the next turn, or io.EOF when the transcript is exhausted.
func (d *Decoder) Next() (Turn, error) {
	if d.err != nil {
		return Turn{}, d.err
	}

	var (
		current Turn
		started bool
	)

	for {
		line, ok := d.nextLine()
		if !ok {
			if err := d.scanner.Err(); err != nil {
				d.err = err
			} else {
				d.err = io.EOF
			}
			if started {
				return current, nil
			}
			return Turn{}, d.err
		}

		role, rest, tagged := splitTag(line)
		if tagged {
			if started {
				// Hold the line for the next call.
				d.next = line
				d.hasNext = true
				return current, nil
			}
			current = Turn{Role: role, Content: rest}
			started = true
			continue
		}

		if !started {
			// Untagged line with no turn to attach to.
			continue
		}
		current.Content += "\n" + line
	}
}

// nextLine returns the pending pushed-back line or scans a new one.
func (d *Decoder) nextLine() (string, bool) {
	if d.hasNext {
		d.hasNext = false
		return d.next, true
	}
	if !d.scanner.Scan() {
		return "", false
	}
	return strings.TrimRight(d.scanner.Text(), "\r"), true
}

// splitTag checks a line for a role tag.
func splitTag(line string) (Role, string, bool) {
	if rest, ok := strings.CutPrefix(line, userTag); ok {
		return RoleUser, rest, true
	}
	if rest, ok := strings.CutPrefix(line, assistantTag); ok {
		return RoleAssistant, rest, true
	}
	return "", "", false
}

// DecodeAll reads every turn from r. Convenience wrapper over Decoder for
// callers that want the whole transcript at once.
func DecodeAll(r io.Reader) ([]Turn, error) {
	dec := NewDecoder(r)
	var turns []Turn
	for {
		turn, err := dec.Next()
		if err == io.EOF {
			return turns, nil
		}
		if err != nil {
			return nil, err
		}
		turns = append(turns, turn)
	}
}

// =============================================================================
// DISPLAY RENDERING
// =============================================================================

// RenderMarkdown formats turns for display: a bolded role label, the content,
// and a blank-line separator. Pure function; replayed and freshly streamed
// conversations render identically.
func RenderMarkdown(turns []Turn) string {
	var sb strings.Builder
	for _, t := range turns {
		sb.WriteString("**")
		sb.WriteString(t.Label())
		sb.WriteString(":**\n")
		sb.WriteString(t.Content)
		sb.WriteString("\n\n")
	}
	return sb.String()
}
