package arxiv

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autofeedr/autofeedr/internal/config"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/2403.01234v1</id>
    <title> Attention Is Still All You Need </title>
    <summary> We revisit attention. </summary>
    <published>2024-03-02T17:59:00Z</published>
    <updated>2024-03-02T17:59:00Z</updated>
    <author><name>A. Researcher</name></author>
    <author><name>B. Scholar</name></author>
  </entry>
</feed>`

func TestExtractID(t *testing.T) {
	cases := map[string]string{
		"https://arxiv.org/abs/2403.01234":     "2403.01234",
		"https://arxiv.org/abs/2403.01234v2":   "2403.01234",
		"https://arxiv.org/pdf/2403.1234v1":    "2403.1234",
		"https://example.com/paper/2403.01234": "",
		"not a url": "",
	}
	for url, want := range cases {
		assert.Equal(t, want, ExtractID(url), url)
	}
}

func TestDefaultWindow(t *testing.T) {
	now := time.Date(2025, 3, 10, 15, 30, 0, 0, time.UTC)
	start, end := DefaultWindow(now)
	assert.Equal(t, time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 3, 9, 23, 59, 59, 0, time.UTC), end)
}

func TestSearchTopic(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("search_query")
		assert.Equal(t, "submittedDate", r.URL.Query().Get("sortBy"))
		assert.Equal(t, "descending", r.URL.Query().Get("sortOrder"))
		w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	c := NewClient(config.ArxivConfig{BaseURL: srv.URL, Timeout: 2 * time.Second})
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 1, 23, 59, 59, 0, time.UTC)

	articles, err := c.SearchTopic(context.Background(), "machine learning", start, end, 5)
	require.NoError(t, err)
	require.Len(t, articles, 1)

	assert.Equal(t, "all:machine learning AND submittedDate:[20240301000000 TO 20240301235959]", gotQuery)
	assert.Equal(t, "Attention Is Still All You Need", articles[0].Title)
	assert.Equal(t, []string{"A. Researcher", "B. Scholar"}, articles[0].Authors)
	assert.Equal(t, "http://arxiv.org/abs/2403.01234v1", articles[0].URL)
}

func TestSearchTopic_Validation(t *testing.T) {
	c := NewClient(config.ArxivConfig{BaseURL: "http://localhost:9", Timeout: time.Second})

	_, err := c.SearchTopic(context.Background(), "  ", time.Now(), time.Now(), 5)
	require.Error(t, err)

	_, err = c.SearchTopic(context.Background(), "x", time.Now().Add(time.Hour), time.Now(), 5)
	require.Error(t, err)
}

func TestFetchByID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2403.01234", r.URL.Query().Get("id_list"))
		w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	c := NewClient(config.ArxivConfig{BaseURL: srv.URL, Timeout: 2 * time.Second})
	a, err := c.FetchByID(context.Background(), "2403.01234")
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Contains(t, a.InfoBlock(), "Title: Attention Is Still All You Need")
	assert.Contains(t, a.InfoBlock(), "Authors: A. Researcher, B. Scholar")
}

func TestFetchByID_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<feed xmlns="http://www.w3.org/2005/Atom"></feed>`))
	}))
	defer srv.Close()

	c := NewClient(config.ArxivConfig{BaseURL: srv.URL, Timeout: 2 * time.Second})
	a, err := c.FetchByID(context.Background(), "9999.99999")
	require.NoError(t, err)
	assert.Nil(t, a)
}
