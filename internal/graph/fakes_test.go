package graph

import (
	"context"
	"sync"
	"time"

	"github.com/Divas-Gupta30/adaptive-rag/internal/prompts"
)

// fakeJudge answers by instruction kind. Relevance and grade labels are
// consumed in order; the last one repeats.
type fakeJudge struct {
	mu        sync.Mutex
	route     Label
	routeErr  error
	relevance []Label
	grades    []Label

	routeCalls     int
	relevanceCalls int
	gradeCalls     int
	gradePayloads  []string
}

func (f *fakeJudge) Classify(_ context.Context, instructions, payload string, _ []Label) (Label, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch instructions {
	case prompts.RouterSystem:
		f.routeCalls++
		return f.route, f.routeErr
	case prompts.RelevanceSystem:
		l := pick(f.relevance, f.relevanceCalls)
		f.relevanceCalls++
		return l, nil
	case prompts.HallucinationSystem:
		l := pick(f.grades, f.gradeCalls)
		f.gradeCalls++
		f.gradePayloads = append(f.gradePayloads, payload)
		return l, nil
	}
	return "", nil
}

func pick[T any](xs []T, i int) T {
	var zero T
	if len(xs) == 0 {
		return zero
	}
	if i >= len(xs) {
		return xs[len(xs)-1]
	}
	return xs[i]
}

// fakeSource serves scripted results per call for both the retriever and the
// web searcher.
type fakeSource struct {
	mu      sync.Mutex
	results [][]string
	err     error
	calls   int
}

func (f *fakeSource) Search(context.Context, string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return pick(f.results, f.calls-1), nil
}

func (f *fakeSource) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeGenerator struct {
	mu       sync.Mutex
	answers  []string
	contexts []string
	hook     func(attempt int) error
}

func (f *fakeGenerator) Generate(_ context.Context, _ string, passages string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contexts = append(f.contexts, passages)
	if f.hook != nil {
		if err := f.hook(len(f.contexts)); err != nil {
			return "", err
		}
	}
	return pick(f.answers, len(f.contexts)-1), nil
}

type fakeRecorder struct {
	mu       sync.Mutex
	nodes    []Node
	judged   map[Node][]Label
	outcome  Outcome
	attempts int
}

func (f *fakeRecorder) NodeExecuted(n Node) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nodes = append(f.nodes, n)
}

func (f *fakeRecorder) Judged(n Node, l Label) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.judged == nil {
		f.judged = map[Node][]Label{}
	}
	f.judged[n] = append(f.judged[n], l)
}

func (f *fakeRecorder) RunFinished(o Outcome, attempts int, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outcome = o
	f.attempts = attempts
}

type harness struct {
	judge *fakeJudge
	local *fakeSource
	web   *fakeSource
	gen   *fakeGenerator
	rec   *fakeRecorder
}

func newHarness() *harness {
	return &harness{
		judge: &fakeJudge{},
		local: &fakeSource{},
		web:   &fakeSource{},
		gen:   &fakeGenerator{answers: []string{"answer"}},
		rec:   &fakeRecorder{},
	}
}

func (h *harness) engine() *Engine {
	e, err := NewEngine(Deps{
		Judge:     h.judge,
		Retriever: h.local,
		WebSearch: h.web,
		Generator: h.gen,
	}, WithRecorder(h.rec))
	if err != nil {
		panic(err)
	}
	return e
}
