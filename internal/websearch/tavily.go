// Package websearch fetches passages from live web search providers.
package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Divas-Gupta30/adaptive-rag/internal/graph"
)

const (
	DefaultMaxResults = 3
	tavilyEndpoint    = "https://api.tavily.com/search"
)

// TavilyClient queries the Tavily search API.
type TavilyClient struct {
	apiKey     string
	endpoint   string
	maxResults int
	client     *http.Client
}

func NewTavilyClient(apiKey string, maxResults int) *TavilyClient {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	return &TavilyClient{
		apiKey:     apiKey,
		endpoint:   tavilyEndpoint,
		maxResults: maxResults,
		client:     &http.Client{Timeout: 30 * time.Second},
	}
}

type tavilyRequest struct {
	Query       string `json:"query"`
	MaxResults  int    `json:"max_results"`
	SearchDepth string `json:"search_depth"`
}

type tavilyResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

type tavilyResponse struct {
	Results []tavilyResult `json:"results"`
}

func (c *TavilyClient) Search(ctx context.Context, question string) ([]string, error) {
	data, err := json.Marshal(tavilyRequest{
		Query:       question,
		MaxResults:  c.maxResults,
		SearchDepth: "basic",
	})
	if err != nil {
		return nil, fmt.Errorf("marshal tavily request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create tavily request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: tavily request failed: %w", graph.ErrCollaboratorUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: tavily returned %s: %s", graph.ErrCollaboratorUnavailable, resp.Status, string(body))
	}

	var tr tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("decode tavily response: %w", err)
	}

	passages := make([]string, 0, len(tr.Results))
	for _, r := range tr.Results {
		if content := strings.TrimSpace(r.Content); content != "" {
			passages = append(passages, content)
		}
	}
	return passages, nil
}
