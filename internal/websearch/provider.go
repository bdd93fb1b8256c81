package websearch

import (
	"errors"
	"fmt"

	"github.com/Divas-Gupta30/adaptive-rag/internal/graph"
)

type Config struct {
	Provider   string // "tavily", "duckduckgo", or "" to pick by key
	APIKey     string
	MaxResults int
}

// New picks a provider. With no provider named, Tavily is used when a key is
// present and DuckDuckGo otherwise.
func New(cfg Config) (graph.WebSearcher, error) {
	switch cfg.Provider {
	case "":
		if cfg.APIKey != "" {
			return NewTavilyClient(cfg.APIKey, cfg.MaxResults), nil
		}
		return NewDuckDuckGo(cfg.MaxResults), nil
	case "tavily":
		if cfg.APIKey == "" {
			return nil, errors.New("tavily provider needs TAVILY_API_KEY")
		}
		return NewTavilyClient(cfg.APIKey, cfg.MaxResults), nil
	case "duckduckgo":
		return NewDuckDuckGo(cfg.MaxResults), nil
	}
	return nil, fmt.Errorf("unknown web search provider %q", cfg.Provider)
}
