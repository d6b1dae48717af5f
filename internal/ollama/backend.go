// Copyright (c) 2025 Lamachat Authors
// SPDX-License-Identifier: MIT

package ollama

import (
	"context"
	"strings"

	"github.com/lamachat/lamachat/internal/chat"
)

// =============================================================================
// SESSION BACKEND
// =============================================================================

// titleInstruction asks the model for a filename-safe conversation title.
const titleInstruction = "The following is the start of a conversation. Think of an appropriate, short title " +
	"that describes this conversation. It should be as short as possible. Only output the title you came up with " +
	"and nothing else. It must not include any special symbols like question marks, dots or anything that cannot " +
	"appear in a file name. Here is the conversation:\n"

// Backend adapts Client to the capability the conversation session expects:
// fragment streams for replies and one-shot completions for titles.
type Backend struct {
	client *Client
}

// NewBackend wraps a client as a session backend.
func NewBackend(client *Client) *Backend {
	return &Backend{client: client}
}

// StreamChat starts a streaming chat request and returns a channel of reply
// fragments. A request that cannot be started at all reports an error;
// failures after the first chunk end the stream silently, keeping whatever
// arrived.
func (b *Backend) StreamChat(ctx context.Context, model string, messages []chat.Turn) (<-chan string, error) {
	if err := b.client.CheckRunning(ctx); err != nil {
		return nil, err
	}

	chunks := b.client.ChatStreamChan(ctx, model, toMessages(messages))

	out := make(chan string)
	go func() {
		defer close(out)
		for chunk := range chunks {
			if chunk.Error != nil {
				return
			}
			if chunk.Content != "" {
				select {
				case out <- chunk.Content:
				case <-ctx.Done():
					return
				}
			}
			if chunk.Done {
				return
			}
		}
	}()
	return out, nil
}

// TitleFor asks the model for a short title describing the transcript.
func (b *Backend) TitleFor(ctx context.Context, model string, transcript string) (string, error) {
	prompt := titleInstruction + transcript

	resp, err := b.client.Chat(ctx, model, []Message{NewUserMessage(prompt)})
	if err != nil {
		return "", err
	}

	title := strings.TrimSpace(resp.Message.Content)
	title = strings.Trim(title, `"'`)
	if title == "" {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "model returned an empty title"}
	}
	return title, nil
}

// toMessages converts conversation turns to API messages.
func toMessages(turns []chat.Turn) []Message {
	messages := make([]Message, 0, len(turns))
	for _, t := range turns {
		messages = append(messages, Message{Role: string(t.Role), Content: t.Content})
	}
	return messages
}
