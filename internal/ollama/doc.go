// Copyright (c) 2025 Lamachat Authors
// SPDX-License-Identifier: MIT

// Package ollama provides the HTTP client for the local Ollama service.
//
// The client covers what the chat core and the model manager need: health
// checks, model listing/pulling/deleting, one-shot completions (used for
// title generation), and streaming chat.
//
// # Key Types
//
//   - Client: HTTP client for the Ollama API
//   - Message: role-tagged chat message
//   - StreamChunk: one streamed piece of a reply
//
// # Usage
//
// Stream a chat reply:
//
//	client := ollama.NewClient()
//	for chunk := range client.ChatStreamChan(ctx, "llama3.2:latest", messages) {
//	    if chunk.Error != nil {
//	        break
//	    }
//	    fmt.Print(chunk.Content)
//	}
//
// Streaming ends when the service reports completion or yields a chunk
// without the expected message shape; the latter is treated as a normal
// end of stream, not an error.
package ollama
