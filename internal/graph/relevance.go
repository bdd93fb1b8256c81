package graph

import (
	"context"

	"go.uber.org/zap"

	"github.com/Divas-Gupta30/adaptive-rag/internal/prompts"
)

// checkRelevance grades each document in order and keeps only the relevant
// ones. Web search is needed only when nothing survived.
func (r *run) checkRelevance(ctx context.Context) error {
	kept := make([]string, 0, len(r.s.Documents))
	for i, doc := range r.s.Documents {
		label, err := r.classify(ctx, CheckRelevance, prompts.RelevanceSystem, prompts.Relevance(doc, r.s.Question), RelevanceLabels)
		if err != nil {
			return err
		}
		r.log.Debug("graded document", zap.Int("index", i), zap.String("relevant", string(label)))
		if label == LabelYes {
			kept = append(kept, doc)
		}
	}

	r.s.Documents = kept
	r.s.WebSearchNeeded = len(kept) == 0
	return nil
}
