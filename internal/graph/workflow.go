// Package graph runs the adaptive retrieval loop: route a question to the
// local index or web search, filter what was found, generate an answer and
// grade it for grounding, searching again until it is accepted or the retry
// ceiling is hit.
package graph

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Retriever returns candidate passages from the local index. No results is
// an empty slice, not an error.
type Retriever interface {
	Search(ctx context.Context, question string) ([]string, error)
}

// WebSearcher returns passages from a live web search.
type WebSearcher interface {
	Search(ctx context.Context, question string) ([]string, error)
}

// Generator answers question from the joined passages as plain text.
type Generator interface {
	Generate(ctx context.Context, question, passages string) (string, error)
}

// Judge classifies payload into exactly one of allowed. Implementations
// return an error wrapping ErrMalformedJudgment when the model output does
// not parse to an allowed label.
type Judge interface {
	Classify(ctx context.Context, instructions, payload string, allowed []Label) (Label, error)
}

// Recorder observes runs. The metrics package provides the Prometheus one.
type Recorder interface {
	NodeExecuted(n Node)
	Judged(n Node, label Label)
	RunFinished(o Outcome, attempts int, elapsed time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) NodeExecuted(Node) {}
func (nopRecorder) Judged(Node, Label) {}
func (nopRecorder) RunFinished(Outcome, int, time.Duration) {}

// Deps are the collaborators an Engine sequences. All are required.
type Deps struct {
	Judge     Judge
	Retriever Retriever
	WebSearch WebSearcher
	Generator Generator
}

// Engine is safe for concurrent runs as long as its collaborators are; it
// keeps no per-run state.
type Engine struct {
	deps Deps
	log  *zap.Logger
	rec  Recorder
}

type Option func(*Engine)

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.log = l }
}

func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.rec = r }
}

func NewEngine(deps Deps, opts ...Option) (*Engine, error) {
	switch {
	case deps.Judge == nil:
		return nil, errors.New("graph: judge is required")
	case deps.Retriever == nil:
		return nil, errors.New("graph: retriever is required")
	case deps.WebSearch == nil:
		return nil, errors.New("graph: web searcher is required")
	case deps.Generator == nil:
		return nil, errors.New("graph: generator is required")
	}

	e := &Engine{deps: deps, log: zap.NewNop(), rec: nopRecorder{}}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// run is the per-question execution owned by one goroutine.
type run struct {
	deps  Deps
	rec   Recorder
	log   *zap.Logger
	id    string
	s     *State
	trace []Node
}

// Run answers question. An Aborted outcome is returned with a nil error; a
// collaborator failure is returned as a *StageError with Outcome Failed, and
// a done ctx as Cancelled.
func (e *Engine) Run(ctx context.Context, question string, maxRetries int) (Result, error) {
	if maxRetries < 0 {
		return Result{Outcome: Failed}, fmt.Errorf("%w: got %d", ErrInvalidRetries, maxRetries)
	}

	id := uuid.NewString()
	r := &run{
		deps: e.deps,
		rec:  e.rec,
		log:  e.log.With(zap.String("run_id", id)),
		id:   id,
		s:    NewState(question, maxRetries),
	}

	start := time.Now()
	res, err := r.loop(ctx)
	elapsed := time.Since(start)
	e.rec.RunFinished(res.Outcome, res.Attempts, elapsed)

	fields := []zap.Field{
		zap.String("outcome", string(res.Outcome)),
		zap.Int("attempts", res.Attempts),
		zap.Duration("elapsed", elapsed),
	}
	if err != nil {
		r.log.Warn("run failed", append(fields, zap.Error(err))...)
	} else {
		r.log.Info("run finished", fields...)
	}
	return res, err
}

func (r *run) loop(ctx context.Context) (Result, error) {
	node := RouteQuestion
	for {
		if err := ctx.Err(); err != nil {
			return r.result(Cancelled), &StageError{Stage: node, Err: err}
		}

		r.trace = append(r.trace, node)
		r.rec.NodeExecuted(node)
		r.log.Debug("executing node", zap.Stringer("node", node))

		label, err := r.exec(ctx, node)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				if !errors.Is(err, ctxErr) {
					err = fmt.Errorf("%w: %v", ctxErr, err)
				}
				return r.result(Cancelled), &StageError{Stage: node, Err: err}
			}
			return r.result(Failed), &StageError{Stage: node, Err: err}
		}

		tr, err := Next(node, label, r.s)
		if err != nil {
			return r.result(Failed), &StageError{Stage: node, Err: err}
		}
		if tr.To == End {
			return r.result(tr.Outcome), nil
		}
		r.log.Debug("transition",
			zap.Stringer("from", node),
			zap.Stringer("to", tr.To),
			zap.String("label", string(label)))
		node = tr.To
	}
}

func (r *run) exec(ctx context.Context, node Node) (Label, error) {
	switch node {
	case RouteQuestion:
		return r.routeQuestion(ctx)
	case RetrieveLocal:
		return "", r.retrieveLocal(ctx)
	case CheckRelevance:
		return "", r.checkRelevance(ctx)
	case WebSearch:
		return "", r.webSearch(ctx)
	case Generate:
		return "", r.generate(ctx)
	case CheckHallucination:
		return r.checkHallucination(ctx)
	}
	return "", fmt.Errorf("unknown node %s", node)
}

// classify asks the judge and rejects any label outside allowed.
func (r *run) classify(ctx context.Context, node Node, instructions, payload string, allowed []Label) (Label, error) {
	label, err := r.deps.Judge.Classify(ctx, instructions, payload, allowed)
	if err != nil {
		return "", err
	}
	for _, a := range allowed {
		if label == a {
			r.rec.Judged(node, label)
			return label, nil
		}
	}
	return "", Malformed(label, allowed)
}
