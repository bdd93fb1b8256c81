package graph

import (
	"context"

	"go.uber.org/zap"

	"github.com/Divas-Gupta30/adaptive-rag/internal/prompts"
)

// routeQuestion picks the first data source. It does not touch State.
func (r *run) routeQuestion(ctx context.Context) (Label, error) {
	label, err := r.classify(ctx, RouteQuestion, prompts.RouterSystem, prompts.Router(r.s.Question), RouteLabels)
	if err != nil {
		return "", err
	}
	r.log.Debug("routed question", zap.String("datasource", string(label)))
	return label, nil
}

func (r *run) retrieveLocal(ctx context.Context) error {
	docs, err := r.deps.Retriever.Search(ctx, r.s.Question)
	if err != nil {
		return err
	}
	r.s.Documents = append(r.s.Documents, docs...)
	r.log.Debug("retrieved local documents", zap.Int("count", len(docs)))
	return nil
}
