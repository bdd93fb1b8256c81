// Package generation produces answers from retrieved context.
package generation

import (
	"context"
	"strings"

	"github.com/Divas-Gupta30/adaptive-rag/internal/llm"
	"github.com/Divas-Gupta30/adaptive-rag/internal/prompts"
)

// LLMGenerator fills the question-answering prompt and returns the model's
// plain-text reply.
type LLMGenerator struct {
	chat llm.Chat
}

func New(chat llm.Chat) *LLMGenerator {
	return &LLMGenerator{chat: chat}
}

func (g *LLMGenerator) Generate(ctx context.Context, question, passages string) (string, error) {
	reply, err := g.chat.Complete(ctx, llm.Request{
		Prompt: prompts.RAG(passages, question),
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}
