package websearch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Divas-Gupta30/adaptive-rag/internal/graph"
)

func TestTavilyClient_Search(t *testing.T) {
	var got tavilyRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tvly-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(tavilyResponse{Results: []tavilyResult{
			{Title: "A", URL: "https://a", Content: "first result"},
			{Title: "B", URL: "https://b", Content: "  "},
			{Title: "C", URL: "https://c", Content: "third result"},
		}})
	}))
	defer srv.Close()

	c := NewTavilyClient("tvly-test", 0)
	c.endpoint = srv.URL

	passages, err := c.Search(context.Background(), "who won the 2023 world cup?")
	require.NoError(t, err)
	assert.Equal(t, []string{"first result", "third result"}, passages)
	assert.Equal(t, "who won the 2023 world cup?", got.Query)
	assert.Equal(t, DefaultMaxResults, got.MaxResults)
}

func TestTavilyClient_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid api key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewTavilyClient("bad", 3)
	c.endpoint = srv.URL
	_, err := c.Search(context.Background(), "q")
	assert.True(t, errors.Is(err, graph.ErrCollaboratorUnavailable))
}

func TestTavilyClient_NoResultsIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": []}`))
	}))
	defer srv.Close()

	c := NewTavilyClient("k", 3)
	c.endpoint = srv.URL
	passages, err := c.Search(context.Background(), "q")
	require.NoError(t, err)
	assert.Empty(t, passages)
}

const ddgPage = `<html><body>
<div class="result results_links results_links_deep web-result">
  <h2><a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fen.wikipedia.org%2Fwiki%2FCricket&amp;rut=abc">Cricket - <b>Wikipedia</b></a></h2>
  <a class="result__snippet" href="#">Cricket is a bat-and-ball game.</a>
</div>
<div class="result results_links web-result">
  <a class="result__a" href="https://www.icc-cricket.com/">ICC</a>
</div>
<div class="result results_links web-result">
  <a class="result__a" href="https://third.example/">Third</a>
</div>
</body></html>`

func TestParseResults(t *testing.T) {
	results, err := parseResults(ddgPage, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "https://en.wikipedia.org/wiki/Cricket", results[0].URL)
	assert.Equal(t, "Cricket - Wikipedia", results[0].Title)
	assert.Equal(t, "Cricket is a bat-and-ball game.", results[0].Snippet)
	assert.Equal(t, "Cricket - Wikipedia\nCricket is a bat-and-ball game.", results[0].passage())
	assert.Equal(t, "ICC", results[1].passage())
}

func TestDuckDuckGo_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "what is cricket", r.URL.Query().Get("q"))
		w.Write([]byte(ddgPage))
	}))
	defer srv.Close()

	d := NewDuckDuckGo(5)
	d.endpoint = srv.URL + "/html/"
	passages, err := d.Search(context.Background(), "what is cricket")
	require.NoError(t, err)
	assert.Len(t, passages, 3)
}

type memCache struct {
	mu     sync.Mutex
	data   map[string]string
	getErr error
	ttl    time.Duration
}

func (m *memCache) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return "", ErrCacheMiss
	}
	return v, nil
}

func (m *memCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = map[string]string{}
	}
	m.data[key] = value
	m.ttl = ttl
	return nil
}

type countingSearcher struct {
	calls int
	out   []string
	err   error
}

func (c *countingSearcher) Search(context.Context, string) ([]string, error) {
	c.calls++
	return c.out, c.err
}

type hits struct{ hit, miss int }

func (h *hits) CacheResult(hit bool) {
	if hit {
		h.hit++
	} else {
		h.miss++
	}
}

func TestCachedSearcher_HitAfterMiss(t *testing.T) {
	next := &countingSearcher{out: []string{"p1", "p2"}}
	cache := &memCache{}
	obs := &hits{}
	s := NewCachedSearcher(next, cache, 0, nil, obs)

	first, err := s.Search(context.Background(), "What is cricket?")
	require.NoError(t, err)
	second, err := s.Search(context.Background(), "  what is CRICKET?  ")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, next.calls)
	assert.Equal(t, DefaultCacheTTL, cache.ttl)
	assert.Equal(t, hits{hit: 1, miss: 1}, *obs)
}

func TestCachedSearcher_DegradesWhenCacheDown(t *testing.T) {
	next := &countingSearcher{out: []string{"p"}}
	s := NewCachedSearcher(next, &memCache{getErr: errors.New("dial tcp: refused")}, time.Minute, nil, nil)

	for i := 0; i < 2; i++ {
		out, err := s.Search(context.Background(), "q")
		require.NoError(t, err)
		assert.Equal(t, []string{"p"}, out)
	}
	assert.Equal(t, 2, next.calls)
}

func TestCachedSearcher_DoesNotCacheErrors(t *testing.T) {
	next := &countingSearcher{err: graph.ErrCollaboratorUnavailable}
	cache := &memCache{}
	_, err := NewCachedSearcher(next, cache, time.Minute, nil, nil).Search(context.Background(), "q")
	assert.True(t, errors.Is(err, graph.ErrCollaboratorUnavailable))
	assert.Empty(t, cache.data)
}

func TestCachedSearcher_CorruptEntry(t *testing.T) {
	next := &countingSearcher{out: []string{"fresh"}}
	cache := &memCache{data: map[string]string{cacheKey("q"): "not json"}}
	out, err := NewCachedSearcher(next, cache, time.Minute, nil, nil).Search(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, out)
}

func TestNew(t *testing.T) {
	s, err := New(Config{APIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &TavilyClient{}, s)

	s, err = New(Config{})
	require.NoError(t, err)
	assert.IsType(t, &DuckDuckGo{}, s)

	_, err = New(Config{Provider: "tavily"})
	assert.Error(t, err)

	_, err = New(Config{Provider: "bing"})
	assert.Error(t, err)
}
