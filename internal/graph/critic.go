package graph

import (
	"context"

	"go.uber.org/zap"

	"github.com/Divas-Gupta30/adaptive-rag/internal/prompts"
)

// checkHallucination grades the latest answer against the documents it was
// generated from. The retry ceiling is applied by Next, not here.
func (r *run) checkHallucination(ctx context.Context) (Label, error) {
	payload := prompts.Hallucination(JoinDocuments(r.s.Documents), r.s.Answer)
	label, err := r.classify(ctx, CheckHallucination, prompts.HallucinationSystem, payload, HallucinationLabels)
	if err != nil {
		return "", err
	}
	r.log.Debug("graded answer",
		zap.String("grade", string(label)),
		zap.Int("attempt", r.s.NumRetries),
		zap.Int("max_retries", r.s.MaxRetries))
	return label, nil
}
