// Copyright (c) 2025 Lamachat Authors
// SPDX-License-Identifier: MIT

// Package session owns the state of the active conversation.
package session

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/lamachat/lamachat/internal/archive"
	"github.com/lamachat/lamachat/internal/chat"
)

// =============================================================================
// ERRORS
// =============================================================================

// ErrBusy is returned when Submit or Reset is called while a reply is
// already streaming. Use errors.Is(err, session.ErrBusy) to check for it.
var ErrBusy = &SessionError{Message: "a reply is already streaming"}

// SessionError represents a session-level error.
type SessionError struct {
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *SessionError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *SessionError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is support for comparing session errors.
func (e *SessionError) Is(target error) bool {
	t, ok := target.(*SessionError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

// =============================================================================
// BACKEND CAPABILITY
// =============================================================================

// Backend is the capability the session needs from the language-model
// service. The backend is stateless per call; the session carries
// conversational continuity by inlining prior history into the prompt.
type Backend interface {
	// StreamChat produces a lazy, finite sequence of reply fragments for the
	// given messages. The channel closes when the backend signals completion
	// or the context is cancelled; concatenating all fragments yields the
	// full reply.
	StreamChat(ctx context.Context, model string, messages []chat.Turn) (<-chan string, error)

	// TitleFor produces a short title for a transcript excerpt.
	TitleFor(ctx context.Context, model string, transcript string) (string, error)
}

// =============================================================================
// STATE
// =============================================================================

// State is the session's streaming state.
type State int

const (
	// Idle means no reply is in flight.
	Idle State = iota
	// Streaming means exactly one assistant reply is being accumulated.
	Streaming
)

// =============================================================================
// SESSION
// =============================================================================

// Session is the active conversation. A session is single-owner: one
// goroutine submits prompts and consumes fragment channels. Archived
// conversations are immutable snapshots; only the active one lives here.
type Session struct {
	mu sync.Mutex

	state   State
	history []chat.Turn
	pending []chat.Turn

	// name is empty until the first flush adopts a generated title.
	// provisional marks a fallback name adopted because titling failed;
	// the next flush retries the real title and promotes the record.
	name        string
	provisional bool

	model   string
	backend Backend
	arc     *archive.Archive

	// onRefresh is fired once per flush that assigns a new name, so the UI
	// collaborator can re-query the conversation listing.
	onRefresh func()

	// onFlushError surfaces a failed stream-end auto-flush, which has no
	// direct caller to return to. Pending turns are retained either way.
	onFlushError func(error)
}

// Config holds the session's collaborators.
type Config struct {
	// Archive is the durable store for flushed exchanges.
	Archive *archive.Archive

	// Backend streams replies and generates titles.
	Backend Backend

	// Model is the model identifier passed through to the backend.
	Model string

	// OnRefresh is called when a flush assigns a new conversation name.
	OnRefresh func()

	// OnFlushError is called when the automatic flush at stream end fails.
	OnFlushError func(error)
}

// New creates an idle, unnamed session.
func New(cfg Config) *Session {
	return &Session{
		state:        Idle,
		model:        cfg.Model,
		backend:      cfg.Backend,
		arc:          cfg.Archive,
		onRefresh:    cfg.OnRefresh,
		onFlushError: cfg.OnFlushError,
	}
}

// =============================================================================
// ACCESSORS
// =============================================================================

// State returns the current streaming state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Name returns the conversation's adopted name, or "" while unnamed.
// Provisional fallback names are reported; they are real storage keys.
func (s *Session) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

// History returns a copy of the full turn history.
func (s *Session) History() []chat.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]chat.Turn, len(s.history))
	copy(out, s.history)
	return out
}

// PendingCount returns how many turns await the next flush.
func (s *Session) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Model returns the active model identifier.
func (s *Session) Model() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model
}

// SetModel switches the model used for subsequent submissions.
func (s *Session) SetModel(model string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.model = model
}

// ListConversations returns the archive's conversation names, most recent
// first. Safe to call at any time, including mid-stream.
func (s *Session) ListConversations() ([]string, error) {
	return s.arc.List()
}

// =============================================================================
// SUBMIT
// =============================================================================

// Submit sends a prompt and returns a channel of reply fragments. The
// channel closes after the reply completes AND the exchange has been flushed
// to the archive. Only legal while Idle; a concurrent Submit fails with
// ErrBusy and mutates nothing.
//
// The user turn stores the prompt as typed. The backend receives a single
// augmented message with the prior history inlined as background context.
func (s *Session) Submit(ctx context.Context, prompt string) (<-chan string, error) {
	s.mu.Lock()
	if s.state == Streaming {
		s.mu.Unlock()
		return nil, ErrBusy
	}

	augmented := buildPrompt(s.history, prompt)
	s.history = append(s.history, chat.NewUserTurn(prompt))
	s.pending = append(s.pending, chat.NewUserTurn(prompt))
	s.state = Streaming
	model := s.model
	s.mu.Unlock()

	in, err := s.backend.StreamChat(ctx, model, []chat.Turn{chat.NewUserTurn(augmented)})
	if err != nil {
		// The user turn stays in history and pending; it will flush with
		// the next successful exchange rather than be silently dropped.
		s.mu.Lock()
		s.state = Idle
		s.mu.Unlock()
		return nil, &SessionError{Message: "backend unavailable", Cause: err}
	}

	out := make(chan string)
	go s.consume(ctx, in, out)
	return out, nil
}

// consume accumulates fragments, re-emits them to the caller, and completes
// the exchange when the stream ends or the context is cancelled. A cancelled
// stream still yields a (truncated) assistant turn: a partial answer is
// preserved, never discarded.
func (s *Session) consume(ctx context.Context, in <-chan string, out chan<- string) {
	defer close(out)

	var buf strings.Builder

forward:
	for frag := range in {
		buf.WriteString(frag)
		select {
		case out <- frag:
		case <-ctx.Done():
			break forward
		}
	}

	s.mu.Lock()
	s.history = append(s.history, chat.NewAssistantTurn(buf.String()))
	s.pending = append(s.pending, chat.NewAssistantTurn(buf.String()))
	s.state = Idle
	s.mu.Unlock()

	// Persistence must not die with the stream's context.
	if err := s.Flush(context.Background()); err != nil && s.onFlushError != nil {
		s.onFlushError(err)
	}
}

// buildPrompt wraps the prior history in a background-only instruction and
// appends the new prompt. History is re-sent as plain text on every call;
// the backend is stateless and the session carries continuity.
func buildPrompt(history []chat.Turn, prompt string) string {
	if len(history) == 0 {
		return prompt
	}

	var sb strings.Builder
	sb.WriteString("The following part between brackets is only for context. ")
	sb.WriteString("Do not react to it or include it in your response. ")
	sb.WriteString("It is here solely as memory to help with continuity.\n(")
	for _, t := range history {
		sb.WriteString(string(t.Role))
		sb.WriteString(": ")
		sb.WriteString(t.Content)
		sb.WriteString("\n")
	}
	sb.WriteString(") End of context.\nNow, answer the following question:\n")
	sb.WriteString(prompt)
	return sb.String()
}

// =============================================================================
// FLUSH
// =============================================================================

// Flush persists all pending turns to the archive. No-op when nothing is
// pending. All-or-nothing for the caller: on append failure the pending
// turns are retained so the next flush retries; an adopted title is never
// re-generated.
func (s *Session) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked(ctx)
}

func (s *Session) flushLocked(ctx context.Context) error {
	if len(s.pending) == 0 {
		return nil
	}

	named := false
	if s.name == "" || s.provisional {
		named = s.adoptNameLocked(ctx)
	}

	if named && s.onRefresh != nil {
		s.onRefresh()
	}

	if err := s.arc.Append(s.name, s.pending); err != nil {
		return &SessionError{Message: "failed to persist pending turns", Cause: err}
	}

	s.pending = s.pending[:0]
	return nil
}

// adoptNameLocked resolves the conversation's storage name before a flush.
// Returns true when a new name was assigned. Titling failure falls back to
// a provisional timestamp name so turn durability is never blocked; the
// next flush retries the title and promotes the stored record.
func (s *Session) adoptNameLocked(ctx context.Context) bool {
	title, err := s.backend.TitleFor(ctx, s.model, titleExcerpt(s.history))
	if err != nil {
		if s.name != "" {
			// Still provisional; keep the current key and retry later.
			return false
		}
		s.name = "untitled-" + time.Now().Format("20060102-150405")
		s.provisional = true
		return true
	}

	name := s.uniqueNameLocked(archive.SanitizeName(title))
	if s.provisional {
		if err := s.arc.Promote(s.name, name); err != nil {
			// Earlier turns are safe under the provisional key; retry the
			// promotion on the next flush.
			return false
		}
	}
	s.name = name
	s.provisional = false
	return true
}

// uniqueNameLocked disambiguates a sanitized title against stored records.
func (s *Session) uniqueNameLocked(name string) string {
	if !s.arc.Exists(name) {
		return name
	}
	for i := 2; ; i++ {
		candidate := name + " (" + strconv.Itoa(i) + ")"
		if !s.arc.Exists(candidate) {
			return candidate
		}
	}
}

// titleExcerpt renders the opening turns of the conversation for the
// backend's title capability.
func titleExcerpt(history []chat.Turn) string {
	n := len(history)
	if n > 2 {
		n = 2
	}
	var sb strings.Builder
	for _, t := range history[:n] {
		sb.WriteString(string(t.Role))
		sb.WriteString(": ")
		sb.WriteString(t.Content)
		sb.WriteString("\n")
	}
	return sb.String()
}

// =============================================================================
// RESET / LOAD
// =============================================================================

// Reset flushes any pending turns, then returns the session to a fresh
// unnamed state. Reset never discards turns: a failed flush aborts the
// reset with the session intact.
func (s *Session) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Streaming {
		return ErrBusy
	}
	if err := s.flushLocked(ctx); err != nil {
		return err
	}

	s.history = nil
	s.pending = nil
	s.name = ""
	s.provisional = false
	return nil
}

// Load resets the session, then adopts the named archived conversation as
// the active one. Loaded turns are already durable so they enter history
// but not pending.
func (s *Session) Load(ctx context.Context, name string) error {
	if err := s.Reset(ctx); err != nil {
		return err
	}

	rec, err := s.arc.Load(name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.history = rec.Turns
	s.name = name
	s.provisional = false
	s.mu.Unlock()
	return nil
}
