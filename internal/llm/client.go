// Package llm talks to the chat model used for judgments and answers.
package llm

import (
	"context"
	"fmt"
	"time"
)

// Request is a single-turn chat completion.
type Request struct {
	System string
	Prompt string
	// JSON asks the backend to constrain output to a JSON object.
	JSON        bool
	Temperature float64
}

// Chat completes one request and returns the reply text.
type Chat interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Config selects and configures a backend.
type Config struct {
	Provider string // "ollama" or "genai"
	Endpoint string
	Model    string
	APIKey   string
	Timeout  time.Duration
}

// New builds the configured backend.
func New(ctx context.Context, cfg Config) (Chat, error) {
	switch cfg.Provider {
	case "", "ollama":
		return NewOllamaClient(cfg.Endpoint, cfg.Model, cfg.Timeout), nil
	case "genai":
		return NewGenAIClient(ctx, cfg.APIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
