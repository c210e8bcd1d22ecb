package linkedin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autofeedr/autofeedr/internal/config"
)

func testClient(baseURL string) *Client {
	c := NewClient(config.LinkedInConfig{BaseURL: baseURL, Timeout: 2 * time.Second})
	c.now = func() time.Time { return time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC) }
	return c
}

func TestNormalizeURN(t *testing.T) {
	assert.Equal(t, "urn:li:person:abc123", NormalizeURN("abc123"))
	assert.Equal(t, "urn:li:person:abc123", NormalizeURN("urn:li:person:abc123"))
	assert.Equal(t, "urn:li:organization:42", NormalizeURN("urn:li:organization:42"))
}

func TestPublish(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/ugcPosts", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "202502", r.Header.Get("LinkedIn-Version"))
		assert.Equal(t, "2.0.0", r.Header.Get("X-Restli-Protocol-Version"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "urn:li:person:abc", body["author"])
		assert.Equal(t, "PUBLISHED", body["lifecycleState"])

		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	err := testClient(srv.URL).Publish(context.Background(), "tok", "abc", "hello")
	require.NoError(t, err)
}

func TestPublish_OversizedTextNeverHitsNetwork(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	text := strings.Repeat("x", MaxPostChars+1)
	err := testClient(srv.URL).Publish(context.Background(), "tok", "abc", text)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3000")
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestPublish_ExactLimitIsAccepted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := testClient(srv.URL).Publish(context.Background(), "tok", "abc", strings.Repeat("x", MaxPostChars))
	require.NoError(t, err)
}

func TestPublish_MissingFields(t *testing.T) {
	c := testClient("http://localhost:9")
	ctx := context.Background()

	require.Error(t, c.Publish(ctx, "", "abc", "text"))
	require.Error(t, c.Publish(ctx, "tok", "", "text"))
	require.Error(t, c.Publish(ctx, "tok", "abc", "  "))
}

func TestPublish_APIFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid token"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	err := testClient(srv.URL).Publish(context.Background(), "tok", "abc", "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
