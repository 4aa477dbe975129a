package completion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCompletionServer(t *testing.T, status int, body string, seen *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		if seen != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestTogetherClientComplete(t *testing.T) {
	var seen map[string]any
	srv := newCompletionServer(t, http.StatusOK, `{
		"id": "cmpl-1", "object": "chat.completion", "created": 1, "model": "m",
		"choices": [{"index": 0, "finish_reason": "stop",
			"message": {"role": "assistant", "content": "It's clear and pleasant there."}}]
	}`, &seen)

	c, err := NewTogetherClient(Config{
		APIKey:      "secret",
		BaseURL:     srv.URL,
		MaxTokens:   1000,
		Temperature: 0.7,
		TopP:        0.7,
	}, srv.Client())
	require.NoError(t, err)

	out, err := c.Complete(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "It's clear and pleasant there.", out)

	assert.Equal(t, DefaultModel, seen["model"])
	assert.EqualValues(t, 50, seen["top_k"])
	assert.EqualValues(t, 1000, seen["max_tokens"])
	msgs, ok := seen["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "hello", msgs[1].(map[string]any)["content"])
}

func TestTogetherClientNoChoices(t *testing.T) {
	srv := newCompletionServer(t, http.StatusOK,
		`{"id": "cmpl-1", "object": "chat.completion", "created": 1, "model": "m", "choices": []}`, nil)

	c, err := NewTogetherClient(Config{APIKey: "secret", BaseURL: srv.URL}, srv.Client())
	require.NoError(t, err)

	out, err := c.Complete(context.Background(), "hello")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestTogetherClientProviderError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": {"message": "model overloaded"}}`))
	}))
	defer srv.Close()

	c, err := NewTogetherClient(Config{APIKey: "secret", BaseURL: srv.URL}, srv.Client())
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
	assert.Equal(t, 1, calls)
}

func TestNewTogetherClientRequiresKey(t *testing.T) {
	_, err := NewTogetherClient(Config{}, nil)
	assert.Error(t, err)
}
