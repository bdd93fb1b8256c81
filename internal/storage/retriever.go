package storage

import (
	"context"
	"fmt"

	"github.com/Divas-Gupta30/adaptive-rag/internal/graph"
)

const DefaultTopK = 3

type QueryEmbedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type SimilaritySearcher interface {
	QuerySimilar(ctx context.Context, queryEmb []float32, topK int) ([]Document, error)
}

// VectorRetriever embeds the question and returns the nearest chunks as
// passages.
type VectorRetriever struct {
	embedder QueryEmbedder
	store    SimilaritySearcher
	topK     int
}

func NewVectorRetriever(e QueryEmbedder, s SimilaritySearcher, topK int) *VectorRetriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &VectorRetriever{embedder: e, store: s, topK: topK}
}

func (r *VectorRetriever) Search(ctx context.Context, question string) ([]string, error) {
	qemb, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return nil, err
	}
	docs, err := r.store.QuerySimilar(ctx, qemb, r.topK)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", graph.ErrCollaboratorUnavailable, err)
	}

	passages := make([]string, len(docs))
	for i, d := range docs {
		passages[i] = FormatPassage(d)
	}
	return passages, nil
}

func FormatPassage(d Document) string {
	return fmt.Sprintf("File: %s\n%s", d.Filename, d.Content)
}
