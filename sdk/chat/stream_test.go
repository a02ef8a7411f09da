package chat

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tidwall/gjson"
)

func collectStream(t *testing.T, stream *Stream) []string {
	t.Helper()
	var chunks []string
	for chunk := range stream.Chunks() {
		if chunk.Err != nil {
			t.Fatalf("stream error: %v", chunk.Err)
		}
		chunks = append(chunks, chunk.Text)
	}
	return chunks
}

func TestChatStream(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		if !gjson.GetBytes(raw, "stream").Bool() {
			t.Error("streaming request missing stream flag")
		}

		w.Header().Set("Content-Type", "text/event-stream")
		lines := []string{
			`event: message_start`,
			`data: {"type":"message_start","message":{"id":"msg_stream","model":"claude-opus-4-5"}}`,
			``,
			`data: {"type":"content_block_delta","delta":{"type":"text_delta","text":"Hello"}}`,
			`data: {"type":"content_block_delta","delta":{"type":"text_delta","text":" world"}}`,
			`data: not-valid-json`,
			`data: {"type":"content_block_delta","delta":{"type":"text_delta","text":"!"}}`,
			`data: {"type":"message_delta","delta":{"stop_reason":"end_turn"},"usage":{"input_tokens":10,"output_tokens":3}}`,
			`data: [DONE]`,
		}
		for _, line := range lines {
			fmt.Fprint(w, line+"\n")
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	stream, err := client.ChatStream(context.Background(), []Message{UserMessage("hi")}, nil)
	if err != nil {
		t.Fatalf("ChatStream() error = %v", err)
	}

	chunks := collectStream(t, stream)
	want := []string{"Hello", " world", "!"}
	if len(chunks) != len(want) {
		t.Fatalf("chunks = %q, want %q", chunks, want)
	}
	for i := range want {
		if chunks[i] != want[i] {
			t.Errorf("chunk[%d] = %q, want %q", i, chunks[i], want[i])
		}
	}

	resp := stream.Response()
	if resp == nil {
		t.Fatal("Response() = nil after stream end")
	}
	if resp.ID != "msg_stream" || resp.Model != "claude-opus-4-5" {
		t.Errorf("response identity = %+v", resp)
	}
	if resp.StopReason != "end_turn" {
		t.Errorf("StopReason = %q, want end_turn", resp.StopReason)
	}
	if resp.Usage.InputTokens != 10 || resp.Usage.OutputTokens != 3 {
		t.Errorf("usage = %+v, want 10/3", resp.Usage)
	}
	if resp.Content != "Hello world!" {
		t.Errorf("Content = %q, want accumulated text", resp.Content)
	}
}

func TestChatStreamCarriesPartialLines(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			t.Error("response writer does not support flushing")
			return
		}
		// One event split mid-JSON across two network writes.
		fmt.Fprint(w, `data: {"type":"content_block_delta","del`)
		flusher.Flush()
		fmt.Fprint(w, "ta\":{\"text\":\"joined\"}}\n")
		flusher.Flush()
		fmt.Fprint(w, "data: {\"type\":\"message_delta\",\"delta\":{\"stop_reason\":\"end_turn\"}}\n")
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	stream, err := client.ChatStream(context.Background(), []Message{UserMessage("hi")}, nil)
	if err != nil {
		t.Fatalf("ChatStream() error = %v", err)
	}

	chunks := collectStream(t, stream)
	if len(chunks) != 1 || chunks[0] != "joined" {
		t.Errorf("chunks = %q, want exactly [joined]", chunks)
	}
	if got := stream.Response().StopReason; got != "end_turn" {
		t.Errorf("StopReason = %q, want end_turn", got)
	}
}

func TestChatStreamZeroValueDefaults(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "data: {\"type\":\"content_block_delta\",\"delta\":{\"text\":\"only\"}}\n")
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	stream, err := client.ChatStream(context.Background(), []Message{UserMessage("hi")}, nil)
	if err != nil {
		t.Fatalf("ChatStream() error = %v", err)
	}

	chunks := collectStream(t, stream)
	if len(chunks) != 1 || chunks[0] != "only" {
		t.Errorf("chunks = %q", chunks)
	}

	resp := stream.Response()
	if resp.ID != "" || resp.Model != "" || resp.StopReason != "" {
		t.Errorf("unreported fields should stay empty, got %+v", resp)
	}
	if resp.Usage.InputTokens != 0 || resp.Usage.OutputTokens != 0 {
		t.Errorf("unreported usage should stay zero, got %+v", resp.Usage)
	}
	if resp.Content != "only" {
		t.Errorf("Content = %q, want only", resp.Content)
	}
}

func TestChatStreamUnauthorized(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"type":"authentication_error"}}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.ChatStream(context.Background(), []Message{UserMessage("hi")}, nil)
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("error = %T(%v), want *APIError before any chunk", err, err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d, want 401", apiErr.StatusCode)
	}
}
