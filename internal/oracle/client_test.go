package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockhistory/chronicle/internal/monitor"
)

func newTestServer(t *testing.T, status int, response any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "user", req.Messages[1].Role)
		assert.False(t, req.Stream)

		w.WriteHeader(status)
		if response != nil {
			require.NoError(t, json.NewEncoder(w).Encode(response))
		}
	}))
}

func chatReply(content string, citations ...string) map[string]any {
	return map[string]any{
		"citations": citations,
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": content}},
		},
	}
}

func TestNewClientRequiresCredential(t *testing.T) {
	_, err := NewClient(Config{}, nil)
	require.ErrorIs(t, err, ErrCredentialMissing)
}

func TestCallSuccess(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, chatReply(
		`{"verdict": "verified"}`,
		"https://example.com/source-1",
		"https://example.com/source-2",
	))
	defer srv.Close()

	sink := monitor.NewMemorySink(10)
	client, err := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL}, sink)
	require.NoError(t, err)

	reply, err := client.Call(context.Background(), "system prompt", "user prompt", RequestContext{
		Date:    "2016-03-01",
		Purpose: "date-verification",
	})
	require.NoError(t, err)
	assert.Equal(t, `{"verdict": "verified"}`, reply.Content)
	assert.Equal(t, []string{"https://example.com/source-1", "https://example.com/source-2"}, reply.Citations)

	recent := sink.Recent(1)
	require.Len(t, recent, 1)
	assert.Equal(t, monitor.StatusSuccess, recent[0].Status)
	assert.Equal(t, "date-verification", recent[0].Purpose)
	assert.Equal(t, "2016-03-01", recent[0].Date)
	assert.Positive(t, recent[0].ResponseSize)
}

func TestCallHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("rate limited"))
	}))
	defer srv.Close()

	sink := monitor.NewMemorySink(10)
	client, err := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL}, sink)
	require.NoError(t, err)

	_, err = client.Call(context.Background(), "system", "user", RequestContext{})
	require.Error(t, err)

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusTooManyRequests, httpErr.Status)
	assert.Contains(t, httpErr.Body, "rate limited")

	recent := sink.Recent(1)
	require.Len(t, recent, 1)
	assert.Equal(t, monitor.StatusError, recent[0].Status)
	assert.Contains(t, recent[0].Error, "429")
}

func TestCallEmptyContentReply(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, map[string]any{"choices": []any{}})
	defer srv.Close()

	client, err := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL}, nil)
	require.NoError(t, err)

	_, err = client.Call(context.Background(), "system", "user", RequestContext{})
	var formatErr *FormatError
	require.True(t, errors.As(err, &formatErr))
}

func TestCallRejectsEmptyPrompts(t *testing.T) {
	client, err := NewClient(Config{APIKey: "test-key"}, nil)
	require.NoError(t, err)

	_, err = client.Call(context.Background(), "", "user", RequestContext{})
	require.Error(t, err)

	_, err = client.Call(context.Background(), "system", "", RequestContext{})
	require.Error(t, err)
}

func TestCallNetworkFailure(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, nil)
	srv.Close() // Closed immediately so the call fails to connect.

	client, err := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL}, nil)
	require.NoError(t, err)

	_, err = client.Call(context.Background(), "system", "user", RequestContext{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oracle request failed")
}

func TestConfigDefaults(t *testing.T) {
	client, err := NewClient(Config{APIKey: "k"}, nil)
	require.NoError(t, err)
	assert.Equal(t, defaultBaseURL, client.cfg.BaseURL)
	assert.Equal(t, defaultModel, client.cfg.Model)
	assert.Equal(t, defaultTemperature, client.cfg.Temperature)
	assert.Equal(t, defaultTopP, client.cfg.TopP)
	assert.Equal(t, defaultTimeout, client.cfg.Timeout)
}
