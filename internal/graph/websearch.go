package graph

import (
	"context"

	"go.uber.org/zap"
)

// webSearch appends fresh results after everything gathered so far.
func (r *run) webSearch(ctx context.Context) error {
	docs, err := r.deps.WebSearch.Search(ctx, r.s.Question)
	if err != nil {
		return err
	}
	r.s.Documents = append(r.s.Documents, docs...)
	r.s.WebSearchNeeded = false
	r.log.Debug("web search appended documents",
		zap.Int("added", len(docs)),
		zap.Int("total", len(r.s.Documents)))
	return nil
}
