package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autofeedr/autofeedr/internal/config"
)

func testLLMConfig(baseURL string) config.LLMConfig {
	return config.LLMConfig{
		Provider:      ProviderOpenAI,
		Model:         "gpt-4o-mini",
		OpenAIBaseURL: baseURL,
		Timeout:       2 * time.Second,
		Retries:       2,
		Backoff:       time.Millisecond,
	}
}

func TestNewSession_MissingAPIKey(t *testing.T) {
	_, err := NewSession(testLLMConfig("http://localhost:9"), "  ", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api key")
}

func TestNewSession_UnknownProvider(t *testing.T) {
	cfg := testLLMConfig("http://localhost:9")
	cfg.Provider = "gemini"
	_, err := NewSession(cfg, "sk-test", nil)
	require.Error(t, err)
}

func TestGenerate_OutputText(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")

		var req openAIRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req.Model)

		json.NewEncoder(w).Encode(map[string]any{"output_text": "  hello world  "})
	}))
	defer srv.Close()

	var usedOp string
	s, err := NewSession(testLLMConfig(srv.URL), "sk-test", func(op string, in, out int) {
		usedOp = op
	})
	require.NoError(t, err)

	text, err := s.Generate(context.Background(), "say hello", "unit_test")
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "unit_test", usedOp)
}

func TestGenerate_StructuredOutputFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"output": []map[string]any{
				{"content": []map[string]any{{"text": "part one"}, {"text": "part two"}}},
			},
		})
	}))
	defer srv.Close()

	s, err := NewSession(testLLMConfig(srv.URL), "sk-test", nil)
	require.NoError(t, err)

	text, err := s.Generate(context.Background(), "p", "unit_test")
	require.NoError(t, err)
	assert.Equal(t, "part one\npart two", text)
}

func TestGenerate_RetriesThenSucceeds(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			http.Error(w, `{"error":{"message":"overloaded"}}`, http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"output_text": "recovered"})
	}))
	defer srv.Close()

	s, err := NewSession(testLLMConfig(srv.URL), "sk-test", nil)
	require.NoError(t, err)

	text, err := s.Generate(context.Background(), "p", "unit_test")
	require.NoError(t, err)
	assert.Equal(t, "recovered", text)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestGenerate_EmptyResponseIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"output_text": "   "})
	}))
	defer srv.Close()

	s, err := NewSession(testLLMConfig(srv.URL), "sk-test", nil)
	require.NoError(t, err)

	_, err = s.Generate(context.Background(), "p", "unit_test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty response")
}

func TestGenerate_ExhaustsRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	s, err := NewSession(testLLMConfig(srv.URL), "sk-test", nil)
	require.NoError(t, err)

	_, err = s.Generate(context.Background(), "p", "unit_test")
	require.Error(t, err)
	// retries + the initial attempt
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}
