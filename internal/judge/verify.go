package judge

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Divas-Gupta30/adaptive-rag/internal/graph"
	"github.com/Divas-Gupta30/adaptive-rag/internal/prompts"
)

type routeCase struct {
	question string
	want     graph.Label
}

var routeCases = []routeCase{
	{"Who is Sachin Tendulkar?", graph.LabelVectorstore},
	{"How many ODI world cups has India won?", graph.LabelVectorstore},
	{"What are large language models?", graph.LabelWebsearch},
	{"When did world war II end?", graph.LabelWebsearch},
}

type relevanceCase struct {
	document string
	want     graph.Label
}

const relevanceQuestion = "What is cricket?"

var relevanceCases = []relevanceCase{
	{"Cricket is a bat-and-ball game played between two teams of eleven players on a field at the center of which is a 22-yard pitch with a wicket at each end", graph.LabelYes},
	{"Llama is a large language model developed by Meta AI.", graph.LabelNo},
	{"Ma Long is considered one of the greatest table tennis players of all time.", graph.LabelNo},
}

// VerifyPrompts runs fixed sanity cases through j. Routing mismatches are
// only logged since they depend on what the index holds; a relevance mismatch
// fails.
func VerifyPrompts(ctx context.Context, j graph.Judge, log *zap.Logger) error {
	for _, c := range routeCases {
		got, err := j.Classify(ctx, prompts.RouterSystem, prompts.Router(c.question), graph.RouteLabels)
		if err != nil {
			return fmt.Errorf("router prompt: %w", err)
		}
		if got != c.want {
			log.Warn("router prompt disagrees",
				zap.String("question", c.question),
				zap.String("want", string(c.want)),
				zap.String("got", string(got)))
		}
	}

	for i, c := range relevanceCases {
		got, err := j.Classify(ctx, prompts.RelevanceSystem, prompts.Relevance(c.document, relevanceQuestion), graph.RelevanceLabels)
		if err != nil {
			return fmt.Errorf("relevance prompt: %w", err)
		}
		if got != c.want {
			return fmt.Errorf("relevance prompt case %d: want %s, got %s", i+1, c.want, got)
		}
	}

	log.Info("verified prompts")
	return nil
}
