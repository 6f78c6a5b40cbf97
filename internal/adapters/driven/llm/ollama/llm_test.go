package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/finsight-cli/internal/core/ports/driven"
)

func newTestService(handler http.HandlerFunc) (*LLMService, *httptest.Server) {
	server := httptest.NewServer(handler)
	svc := NewLLMService(LLMConfig{BaseURL: server.URL, Model: "test-model"})
	return svc, server
}

func TestGenerate(t *testing.T) {
	svc, server := newTestService(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		assert.False(t, req.Stream)
		require.NotNil(t, req.Options)
		assert.Equal(t, 4096, req.Options.NumCtx)

		json.NewEncoder(w).Encode(generateResponse{Response: "generated text", Done: true})
	})
	defer server.Close()

	out, err := svc.Generate(context.Background(), "prompt", driven.GenerateOptions{NumCtx: 4096})

	require.NoError(t, err)
	assert.Equal(t, "generated text", out)
}

func TestGenerate_ErrorStatus(t *testing.T) {
	svc, server := newTestService(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	})
	defer server.Close()

	_, err := svc.Generate(context.Background(), "prompt", driven.GenerateOptions{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestGenerateStream(t *testing.T) {
	svc, server := newTestService(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Stream)

		for _, text := range []string{"<think>", "reasoning", "</think>", "answer"} {
			fmt.Fprintf(w, `{"response":%q,"done":false}`+"\n", text)
		}
		fmt.Fprintln(w, `{"response":"","done":true}`)
	})
	defer server.Close()

	stream, err := svc.GenerateStream(context.Background(), "prompt", driven.GenerateOptions{})
	require.NoError(t, err)

	var got []string
	for chunk := range stream {
		require.NoError(t, chunk.Err)
		got = append(got, chunk.Text)
	}
	assert.Equal(t, []string{"<think>", "reasoning", "</think>", "answer"}, got)
}

func TestGenerateStream_MidStreamError(t *testing.T) {
	svc, server := newTestService(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintln(w, `{"response":"partial","done":false}`)
		fmt.Fprintln(w, `{"error":"model evicted"}`)
	})
	defer server.Close()

	stream, err := svc.GenerateStream(context.Background(), "prompt", driven.GenerateOptions{})
	require.NoError(t, err)

	var texts []string
	var streamErr error
	for chunk := range stream {
		if chunk.Err != nil {
			streamErr = chunk.Err
			continue
		}
		texts = append(texts, chunk.Text)
	}

	assert.Equal(t, []string{"partial"}, texts)
	require.Error(t, streamErr)
	assert.Contains(t, streamErr.Error(), "model evicted")
}

func TestGenerateStream_Cancellation(t *testing.T) {
	release := make(chan struct{})
	svc, server := newTestService(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"response":"first","done":false}`)
		w.(http.Flusher).Flush()
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	stream, err := svc.GenerateStream(ctx, "prompt", driven.GenerateOptions{})
	require.NoError(t, err)

	chunk := <-stream
	assert.Equal(t, "first", chunk.Text)

	cancel()
	for range stream {
		// Drain until the producer notices the cancellation.
	}
}

func TestPing(t *testing.T) {
	svc, server := newTestService(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})
	defer server.Close()

	assert.NoError(t, svc.Ping(context.Background()))
}

func TestPing_Unreachable(t *testing.T) {
	svc := NewLLMService(LLMConfig{BaseURL: "http://127.0.0.1:1"})
	assert.Error(t, svc.Ping(context.Background()))
}

func TestNewLLMService_Defaults(t *testing.T) {
	svc := NewLLMService(LLMConfig{})
	assert.Equal(t, DefaultLLMModel, svc.ModelName())
	assert.Equal(t, DefaultBaseURL, svc.baseURL)
}
