// Copyright (c) 2025 Lamachat Authors
// SPDX-License-Identifier: MIT

package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lamachat/lamachat/internal/chat"
)

// =============================================================================
// STREAM READER TESTS
// =============================================================================

func TestStreamReaderProcess(t *testing.T) {
	input := `{"model":"llama3.2:latest","message":{"role":"assistant","content":"Hel"},"done":false}
{"model":"llama3.2:latest","message":{"role":"assistant","content":"lo!"},"done":false}
{"model":"llama3.2:latest","message":{"role":"assistant","content":""},"done":true,"done_reason":"stop"}
`
	reader := NewStreamReader(strings.NewReader(input))

	var chunks []StreamChunk
	err := reader.Process(context.Background(), func(chunk StreamChunk) {
		chunks = append(chunks, chunk)
	})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	if chunks[0].Content != "Hel" || chunks[1].Content != "lo!" {
		t.Errorf("unexpected chunk contents: %q, %q", chunks[0].Content, chunks[1].Content)
	}
	if !chunks[2].Done || chunks[2].DoneReason != "stop" {
		t.Errorf("final chunk = %+v, want done with reason stop", chunks[2])
	}
	if reader.Accumulated() != "Hello!" {
		t.Errorf("Accumulated() = %q, want %q", reader.Accumulated(), "Hello!")
	}
	if reader.Model() != "llama3.2:latest" {
		t.Errorf("Model() = %q", reader.Model())
	}
}

func TestStreamReaderInvalidChunkEndsStream(t *testing.T) {
	input := `{"message":{"role":"assistant","content":"partial"},"done":false}
this is not json
{"message":{"role":"assistant","content":"never seen"},"done":false}
`
	reader := NewStreamReader(strings.NewReader(input))

	var chunks []StreamChunk
	err := reader.Process(context.Background(), func(chunk StreamChunk) {
		chunks = append(chunks, chunk)
	})
	if err != nil {
		t.Fatalf("Process() error = %v, want nil on malformed chunk", err)
	}
	if len(chunks) != 1 || chunks[0].Content != "partial" {
		t.Fatalf("got chunks %+v, want only the chunk before the malformed line", chunks)
	}
}

func TestStreamReaderMissingMessageEndsStream(t *testing.T) {
	input := `{"message":{"role":"assistant","content":"kept"},"done":false}
{"done":false}
`
	reader := NewStreamReader(strings.NewReader(input))

	var got string
	err := reader.Process(context.Background(), func(chunk StreamChunk) {
		got += chunk.Content
	})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if got != "kept" {
		t.Errorf("got %q, want %q", got, "kept")
	}
}

func TestStreamReaderSkipsBlankLines(t *testing.T) {
	input := "\n{\"message\":{\"role\":\"assistant\",\"content\":\"a\"},\"done\":false}\n\n{\"message\":{\"role\":\"assistant\",\"content\":\"b\"},\"done\":true}\n"
	reader := NewStreamReader(strings.NewReader(input))

	var got string
	if err := reader.Process(context.Background(), func(chunk StreamChunk) {
		got += chunk.Content
	}); err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if got != "ab" {
		t.Errorf("got %q, want %q", got, "ab")
	}
}

func TestStreamReaderUnterminatedFinalLine(t *testing.T) {
	input := `{"message":{"role":"assistant","content":"tail"},"done":true}`
	reader := NewStreamReader(strings.NewReader(input))

	var got string
	if err := reader.Process(context.Background(), func(chunk StreamChunk) {
		got += chunk.Content
	}); err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if got != "tail" {
		t.Errorf("got %q, want %q", got, "tail")
	}
}

func TestStreamReaderContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reader := NewStreamReader(strings.NewReader(`{"message":{"role":"assistant","content":"x"},"done":false}` + "\n"))
	err := reader.Process(ctx, func(chunk StreamChunk) {
		t.Error("callback should not fire after cancellation")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Process() error = %v, want context.Canceled", err)
	}
}

// =============================================================================
// CLIENT TESTS
// =============================================================================

func newTestClient(url string) *Client {
	return NewClientWithConfig(&ClientConfig{BaseURL: url})
}

func TestCheckRunning(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	if err := newTestClient(srv.URL).CheckRunning(context.Background()); err != nil {
		t.Errorf("CheckRunning() error = %v", err)
	}
}

func TestCheckRunningNotRunning(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	err := newTestClient(srv.URL).CheckRunning(context.Background())
	if !IsNotRunning(err) {
		t.Errorf("CheckRunning() error = %v, want not-running", err)
	}
}

func TestListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(ListModelsResponse{Models: []ModelInfo{
			{Name: "llama3.2:latest", Size: 2019393189},
			{Name: "mistral:latest", Size: 4113301824},
		}})
	}))
	defer srv.Close()

	models, err := newTestClient(srv.URL).ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels() error = %v", err)
	}
	if len(models) != 2 || models[0].Name != "llama3.2:latest" {
		t.Errorf("ListModels() = %+v", models)
	}
}

func TestModelExists(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ListModelsResponse{Models: []ModelInfo{{Name: "llama3.2:latest"}}})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	ok, err := client.ModelExists(context.Background(), "llama3.2:latest")
	if err != nil || !ok {
		t.Errorf("ModelExists(llama3.2) = %v, %v, want true", ok, err)
	}
	ok, err = client.ModelExists(context.Background(), "missing:latest")
	if err != nil || ok {
		t.Errorf("ModelExists(missing) = %v, %v, want false", ok, err)
	}
}

func TestPullModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req PullModelRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Name != "mistral:latest" {
			t.Errorf("pull request name = %q", req.Name)
		}
		enc := json.NewEncoder(w)
		enc.Encode(PullProgress{Status: "pulling manifest"})
		enc.Encode(PullProgress{Status: "downloading", Total: 100, Completed: 50})
		enc.Encode(PullProgress{Status: "success"})
	}))
	defer srv.Close()

	var statuses []string
	err := newTestClient(srv.URL).PullModel(context.Background(), "mistral:latest", func(p PullProgress) {
		statuses = append(statuses, p.Status)
	})
	if err != nil {
		t.Fatalf("PullModel() error = %v", err)
	}
	if len(statuses) != 3 || statuses[2] != "success" {
		t.Errorf("statuses = %v", statuses)
	}
}

func TestDeleteModelNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).DeleteModel(context.Background(), "ghost:latest")
	if !IsModelNotFound(err) {
		t.Errorf("DeleteModel() error = %v, want model-not-found", err)
	}
}

func TestChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ChatRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Stream {
			t.Error("non-streaming chat must set stream=false")
		}
		json.NewEncoder(w).Encode(ChatResponse{
			Model:   req.Model,
			Message: Message{Role: "assistant", Content: "Hello there"},
			Done:    true,
		})
	}))
	defer srv.Close()

	resp, err := newTestClient(srv.URL).Chat(context.Background(), "llama3.2:latest", []Message{NewUserMessage("Hi")})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if resp.Message.Content != "Hello there" {
		t.Errorf("Chat() content = %q", resp.Message.Content)
	}
}

func TestChatServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(OllamaError{Error: "model requires more memory"})
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Chat(context.Background(), "big:latest", []Message{NewUserMessage("Hi")})
	if err == nil || !strings.Contains(err.Error(), "more memory") {
		t.Errorf("Chat() error = %v, want the service's message", err)
	}
}

func TestChatStreamChan(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ChatRequest
		json.NewDecoder(r.Body).Decode(&req)
		if !req.Stream {
			t.Error("streaming chat must set stream=true")
		}
		enc := json.NewEncoder(w)
		enc.Encode(ChatResponse{Message: Message{Role: "assistant", Content: "one "}})
		enc.Encode(ChatResponse{Message: Message{Role: "assistant", Content: "two"}, Done: true})
	}))
	defer srv.Close()

	var got strings.Builder
	for chunk := range newTestClient(srv.URL).ChatStreamChan(context.Background(), "llama3.2:latest", []Message{NewUserMessage("count")}) {
		if chunk.Error != nil {
			t.Fatalf("chunk error = %v", chunk.Error)
		}
		got.WriteString(chunk.Content)
	}
	if got.String() != "one two" {
		t.Errorf("streamed %q, want %q", got.String(), "one two")
	}
}

// =============================================================================
// BACKEND TESTS
// =============================================================================

func TestBackendStreamChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			w.WriteHeader(http.StatusOK)
			return
		}
		var req ChatRequest
		json.NewDecoder(r.Body).Decode(&req)
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Errorf("messages = %+v", req.Messages)
		}
		enc := json.NewEncoder(w)
		enc.Encode(ChatResponse{Message: Message{Role: "assistant", Content: "Hel"}})
		enc.Encode(ChatResponse{Message: Message{Role: "assistant", Content: "lo!"}, Done: true})
	}))
	defer srv.Close()

	backend := NewBackend(newTestClient(srv.URL))
	fragments, err := backend.StreamChat(context.Background(), "llama3.2:latest", []chat.Turn{chat.NewUserTurn("Hi")})
	if err != nil {
		t.Fatalf("StreamChat() error = %v", err)
	}

	var reply strings.Builder
	for f := range fragments {
		reply.WriteString(f)
	}
	if reply.String() != "Hello!" {
		t.Errorf("reply = %q, want %q", reply.String(), "Hello!")
	}
}

func TestBackendStreamChatUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	backend := NewBackend(newTestClient(srv.URL))
	_, err := backend.StreamChat(context.Background(), "llama3.2:latest", []chat.Turn{chat.NewUserTurn("Hi")})
	if !IsNotRunning(err) {
		t.Errorf("StreamChat() error = %v, want not-running", err)
	}
}

func TestBackendTitleFor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			w.WriteHeader(http.StatusOK)
			return
		}
		var req ChatRequest
		json.NewDecoder(r.Body).Decode(&req)
		if !strings.Contains(req.Messages[0].Content, "user: What is Go?") {
			t.Errorf("title prompt missing transcript: %q", req.Messages[0].Content)
		}
		json.NewEncoder(w).Encode(ChatResponse{
			Message: Message{Role: "assistant", Content: "  \"Learning Go Basics\"  "},
			Done:    true,
		})
	}))
	defer srv.Close()

	backend := NewBackend(newTestClient(srv.URL))
	title, err := backend.TitleFor(context.Background(), "llama3.2:latest", "user: What is Go?\n")
	if err != nil {
		t.Fatalf("TitleFor() error = %v", err)
	}
	if title != "Learning Go Basics" {
		t.Errorf("TitleFor() = %q, want trimmed title", title)
	}
}

func TestBackendTitleForEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ChatResponse{Message: Message{Role: "assistant", Content: "   "}, Done: true})
	}))
	defer srv.Close()

	backend := NewBackend(newTestClient(srv.URL))
	if _, err := backend.TitleFor(context.Background(), "llama3.2:latest", "user: hi\n"); err == nil {
		t.Error("TitleFor() with empty model output should error")
	}
}
