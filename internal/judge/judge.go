// Package judge turns a chat model into a discrete-label classifier.
package judge

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/Divas-Gupta30/adaptive-rag/internal/graph"
	"github.com/Divas-Gupta30/adaptive-rag/internal/llm"
	"github.com/Divas-Gupta30/adaptive-rag/internal/prompts"
)

// LLMJudge asks the model for a JSON verdict and reads the label from the
// key the prompt names.
type LLMJudge struct {
	chat llm.Chat
	log  *zap.Logger
}

func New(chat llm.Chat, log *zap.Logger) *LLMJudge {
	if log == nil {
		log = zap.NewNop()
	}
	return &LLMJudge{chat: chat, log: log}
}

func (j *LLMJudge) Classify(ctx context.Context, instructions, payload string, allowed []graph.Label) (graph.Label, error) {
	reply, err := j.chat.Complete(ctx, llm.Request{
		System: instructions,
		Prompt: payload,
		JSON:   true,
	})
	if err != nil {
		return "", err
	}

	label, err := ParseLabel(reply, AnswerKey(allowed), allowed)
	if err != nil {
		j.log.Warn("unparseable judgment", zap.String("reply", truncate(reply, 200)), zap.Error(err))
		return "", err
	}
	return label, nil
}

// AnswerKey returns the JSON key the prompt for allowed asks the model to
// fill, or "" for a label set no prompt names.
func AnswerKey(allowed []graph.Label) string {
	switch {
	case slices.Equal(allowed, graph.RouteLabels):
		return prompts.RouterKey
	case slices.Equal(allowed, graph.RelevanceLabels):
		return prompts.RelevanceKey
	case slices.Equal(allowed, graph.HallucinationLabels):
		return prompts.HallucinationKey
	}
	return ""
}

// ParseLabel extracts one allowed label from a model reply. The reply is
// either a bare allowed label or a JSON object whose key field holds one.
// Other fields are ignored and never consulted. With an empty key the
// object must have exactly one field. Anything else is ErrMalformedJudgment.
func ParseLabel(reply, key string, allowed []graph.Label) (graph.Label, error) {
	text := strings.TrimSpace(reply)
	if text == "" {
		return "", fmt.Errorf("%w: empty reply", graph.ErrMalformedJudgment)
	}

	if l, ok := match(text, allowed); ok {
		return l, nil
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return "", fmt.Errorf("%w: reply is not a JSON object: %q", graph.ErrMalformedJudgment, truncate(text, 80))
	}

	var v any
	if key == "" {
		if len(obj) != 1 {
			return "", fmt.Errorf("%w: want one field, got %d", graph.ErrMalformedJudgment, len(obj))
		}
		for _, only := range obj {
			v = only
		}
	} else {
		var ok bool
		if v, ok = obj[key]; !ok {
			return "", fmt.Errorf("%w: missing %q", graph.ErrMalformedJudgment, key)
		}
	}

	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %q is not a string", graph.ErrMalformedJudgment, key)
	}
	l, ok := match(s, allowed)
	if !ok {
		return "", fmt.Errorf("%w: %q not in %v", graph.ErrMalformedJudgment, truncate(s, 40), allowed)
	}
	return l, nil
}

func match(s string, allowed []graph.Label) (graph.Label, bool) {
	s = strings.ToLower(strings.Trim(strings.TrimSpace(s), `"'`))
	for _, a := range allowed {
		if s == string(a) {
			return a, true
		}
	}
	return "", false
}

// truncate shortens s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
