package graph

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// Vectorstore route, every local doc irrelevant, web search fills in.
func TestRun_LocalMissFallsBackToWeb(t *testing.T) {
	h := newHarness()
	h.judge.route = LabelVectorstore
	h.judge.relevance = []Label{LabelNo, LabelNo, LabelNo}
	h.judge.grades = []Label{LabelGood}
	h.local.results = [][]string{{"l1", "l2", "l3"}}
	h.web.results = [][]string{{"w1"}}

	res, err := h.engine().Run(context.Background(), "who won?", 3)
	require.NoError(t, err)

	assert.Equal(t, Accepted, res.Outcome)
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, []string{"w1"}, res.Documents)
	assert.Equal(t, 3, h.judge.relevanceCalls)
	assert.Equal(t, 1, h.web.Calls())
	assert.Equal(t, []Node{RouteQuestion, RetrieveLocal, CheckRelevance, WebSearch, Generate, CheckHallucination}, res.Trace)
	assert.NotEmpty(t, res.RunID)
}

// Websearch route, one bad grade, then accepted on the second attempt.
func TestRun_RegeneratesAfterBadGrade(t *testing.T) {
	h := newHarness()
	h.judge.route = LabelWebsearch
	h.judge.grades = []Label{LabelBad, LabelGood}
	h.web.results = [][]string{{"w1", "w2"}, {"w3"}}
	h.gen.answers = []string{"first", "second"}

	res, err := h.engine().Run(context.Background(), "latest news?", 3)
	require.NoError(t, err)

	assert.Equal(t, Accepted, res.Outcome)
	assert.Equal(t, 2, res.Attempts)
	assert.Equal(t, "second", res.Answer)
	assert.Equal(t, 2, h.web.Calls())
	assert.Equal(t, []string{"w1\n\nw2", "w1\n\nw2\n\nw3"}, h.gen.contexts)
	assert.Equal(t, 0, h.local.Calls())
}

// Three bad grades with a ceiling of two.
func TestRun_AbortsPastCeiling(t *testing.T) {
	h := newHarness()
	h.judge.route = LabelWebsearch
	h.judge.grades = []Label{LabelBad, LabelBad, LabelBad}
	h.web.results = [][]string{{"w"}}
	h.gen.answers = []string{"a1", "a2", "a3"}

	res, err := h.engine().Run(context.Background(), "q", 2)
	require.NoError(t, err, "abort is an outcome, not an error")

	assert.Equal(t, Aborted, res.Outcome)
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, "a3", res.Answer)
	assert.Equal(t, 3, h.web.Calls())
}

func TestRun_ZeroRetriesAbortsAfterOneAttempt(t *testing.T) {
	h := newHarness()
	h.judge.route = LabelWebsearch
	h.judge.grades = []Label{LabelBad}
	h.web.results = [][]string{{"w"}}

	res, err := h.engine().Run(context.Background(), "q", 0)
	require.NoError(t, err)

	assert.Equal(t, Aborted, res.Outcome)
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, 1, h.web.Calls(), "no second search")
	assert.Len(t, h.gen.contexts, 1)
}

func TestRun_WebsearchRouteSkipsLocal(t *testing.T) {
	h := newHarness()
	h.judge.route = LabelWebsearch
	h.judge.grades = []Label{LabelBad, LabelBad, LabelGood}
	h.web.results = [][]string{{"w"}}

	res, err := h.engine().Run(context.Background(), "q", 5)
	require.NoError(t, err)

	assert.Equal(t, 0, h.local.Calls())
	assert.Equal(t, 0, h.judge.relevanceCalls)
	assert.NotContains(t, res.Trace, RetrieveLocal)
	assert.NotContains(t, res.Trace, CheckRelevance)
}

func TestRun_AttemptsCountEveryGeneration(t *testing.T) {
	for n := 1; n <= 4; n++ {
		t.Run(fmt.Sprintf("%d attempts", n), func(t *testing.T) {
			h := newHarness()
			h.judge.route = LabelWebsearch
			grades := make([]Label, n)
			for i := range grades {
				grades[i] = LabelBad
			}
			grades[n-1] = LabelGood
			h.judge.grades = grades
			h.web.results = [][]string{{"w"}}

			res, err := h.engine().Run(context.Background(), "q", 10)
			require.NoError(t, err)
			assert.Equal(t, n, res.Attempts)
			assert.Len(t, h.gen.contexts, n)
		})
	}
}

func TestRun_RelevanceKeepsOrderedSubset(t *testing.T) {
	h := newHarness()
	h.judge.route = LabelVectorstore
	h.judge.relevance = []Label{LabelYes, LabelNo, LabelYes, LabelNo}
	h.judge.grades = []Label{LabelGood}
	h.local.results = [][]string{{"a", "b", "c", "d"}}

	res, err := h.engine().Run(context.Background(), "q", 3)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "c"}, res.Documents)
	assert.Equal(t, 0, h.web.Calls(), "one relevant doc is enough")
	assert.Equal(t, []string{"a\n\nc"}, h.gen.contexts)
}

// Docs graded no stay dropped even when the answer is regraded bad.
func TestRun_DroppedDocumentsNeverReturn(t *testing.T) {
	h := newHarness()
	h.judge.route = LabelVectorstore
	h.judge.relevance = []Label{LabelNo, LabelYes}
	h.judge.grades = []Label{LabelBad, LabelGood}
	h.local.results = [][]string{{"stale", "fresh"}}
	h.web.results = [][]string{{"w1"}}

	res, err := h.engine().Run(context.Background(), "q", 3)
	require.NoError(t, err)

	assert.Equal(t, []string{"fresh", "w1"}, res.Documents)
	assert.Equal(t, 1, h.local.Calls(), "retries never re-query the local index")
	assert.Equal(t, []string{"fresh", "fresh\n\nw1"}, h.gen.contexts)
	require.Len(t, h.judge.gradePayloads, 2)
	assert.Contains(t, h.judge.gradePayloads[1], "fresh\n\nw1")
}

func TestRun_EmptyRetrievalAndSearch(t *testing.T) {
	h := newHarness()
	h.judge.route = LabelVectorstore
	h.judge.grades = []Label{LabelGood}
	h.local.results = [][]string{{}}
	h.web.results = [][]string{{}}

	res, err := h.engine().Run(context.Background(), "q", 3)
	require.NoError(t, err)

	assert.Equal(t, Accepted, res.Outcome)
	assert.Equal(t, []string{""}, h.gen.contexts)
	assert.Equal(t, 0, h.judge.relevanceCalls)
	assert.Equal(t, 1, h.web.Calls())
}

func TestRun_MalformedRouteIsFatal(t *testing.T) {
	h := newHarness()
	h.judge.routeErr = fmt.Errorf("parse reply: %w", ErrMalformedJudgment)

	res, err := h.engine().Run(context.Background(), "q", 3)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedJudgment))

	var se *StageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, RouteQuestion, se.Stage)
	assert.Equal(t, Failed, res.Outcome)
	assert.Equal(t, 0, h.local.Calls())
	assert.Equal(t, 0, h.web.Calls())
}

func TestRun_LabelOutsideAllowedSetIsMalformed(t *testing.T) {
	h := newHarness()
	h.judge.route = LabelWebsearch
	h.judge.grades = []Label{"maybe"}
	h.web.results = [][]string{{"w"}}

	_, err := h.engine().Run(context.Background(), "q", 3)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedJudgment))

	var se *StageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, CheckHallucination, se.Stage)
}

func TestRun_CollaboratorErrorNamesStage(t *testing.T) {
	h := newHarness()
	h.judge.route = LabelVectorstore
	h.local.err = fmt.Errorf("dial postgres: %w", ErrCollaboratorUnavailable)

	res, err := h.engine().Run(context.Background(), "q", 3)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCollaboratorUnavailable))
	assert.Equal(t, Failed, res.Outcome)

	var se *StageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, RetrieveLocal, se.Stage)
	assert.Contains(t, err.Error(), "retrieve_local")
}

func TestRun_CancelledBeforeStart(t *testing.T) {
	h := newHarness()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := h.engine().Run(ctx, "q", 3)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, Cancelled, res.Outcome)
	assert.Equal(t, 0, h.judge.routeCalls)
}

func TestRun_CancelledMidRun(t *testing.T) {
	h := newHarness()
	h.judge.route = LabelWebsearch
	h.web.results = [][]string{{"w"}}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.gen.hook = func(int) error {
		cancel()
		return errors.New("stream interrupted")
	}

	res, err := h.engine().Run(ctx, "q", 3)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, Cancelled, res.Outcome)

	var se *StageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, Generate, se.Stage)
	assert.Equal(t, 0, h.judge.gradeCalls)
}

func TestRun_NegativeRetries(t *testing.T) {
	_, err := newHarness().engine().Run(context.Background(), "q", -1)
	assert.True(t, errors.Is(err, ErrInvalidRetries))
}

func TestRun_RecordsNodesAndJudgments(t *testing.T) {
	h := newHarness()
	h.judge.route = LabelWebsearch
	h.judge.grades = []Label{LabelBad, LabelGood}
	h.web.results = [][]string{{"w"}}

	_, err := h.engine().Run(context.Background(), "q", 3)
	require.NoError(t, err)

	assert.Equal(t, Accepted, h.rec.outcome)
	assert.Equal(t, 2, h.rec.attempts)
	assert.Equal(t, []Label{LabelWebsearch}, h.rec.judged[RouteQuestion])
	assert.Equal(t, []Label{LabelBad, LabelGood}, h.rec.judged[CheckHallucination])
	assert.Len(t, h.rec.nodes, 7)
}

func TestRun_IndependentConcurrentRuns(t *testing.T) {
	h := newHarness()
	h.judge.route = LabelWebsearch
	h.judge.grades = []Label{LabelGood}
	h.web.results = [][]string{{"w"}}
	e := h.engine()

	var wg sync.WaitGroup
	results := make([]Result, 8)
	errs := make([]error, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = e.Run(context.Background(), fmt.Sprintf("q%d", i), 3)
		}(i)
	}
	wg.Wait()

	ids := map[string]bool{}
	for i := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, Accepted, results[i].Outcome)
		assert.Equal(t, 1, results[i].Attempts)
		assert.Equal(t, []string{"w"}, results[i].Documents)
		ids[results[i].RunID] = true
	}
	assert.Len(t, ids, 8)
}

func TestNewEngine_RequiresCollaborators(t *testing.T) {
	h := newHarness()
	_, err := NewEngine(Deps{Retriever: h.local, WebSearch: h.web, Generator: h.gen})
	assert.Error(t, err)
	_, err = NewEngine(Deps{Judge: h.judge, Retriever: h.local, WebSearch: h.web})
	assert.Error(t, err)
}
