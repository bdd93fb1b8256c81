package graph

import (
	"context"

	"go.uber.org/zap"
)

// Result is what a run hands back to its caller.
type Result struct {
	RunID   string
	Answer  string
	Outcome Outcome
	// Attempts counts generation calls, the first one included.
	Attempts  int
	Documents []string
	Trace     []Node
}

// generate overwrites the answer and counts the attempt.
func (r *run) generate(ctx context.Context) error {
	answer, err := r.deps.Generator.Generate(ctx, r.s.Question, JoinDocuments(r.s.Documents))
	if err != nil {
		return err
	}
	r.s.Answer = answer
	r.s.NumRetries++
	r.log.Debug("generated answer",
		zap.Int("attempt", r.s.NumRetries),
		zap.Int("documents", len(r.s.Documents)))
	return nil
}

func (r *run) result(o Outcome) Result {
	docs := make([]string, len(r.s.Documents))
	copy(docs, r.s.Documents)
	trace := make([]Node, len(r.trace))
	copy(trace, r.trace)
	return Result{
		RunID:     r.id,
		Answer:    r.s.Answer,
		Outcome:   o,
		Attempts:  r.s.NumRetries,
		Documents: docs,
		Trace:     trace,
	}
}
