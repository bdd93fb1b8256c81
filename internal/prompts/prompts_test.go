package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouterIncludesQuestion(t *testing.T) {
	p := Router("Who is Sachin Tendulkar?")
	assert.Contains(t, p, "Here's the user question: Who is Sachin Tendulkar?")
	assert.Contains(t, p, `"datasource"`)
}

func TestRelevancePlacesDocumentBeforeQuestion(t *testing.T) {
	p := Relevance("Cricket is a bat-and-ball game.", "What is cricket?")
	doc := strings.Index(p, "Cricket is a bat-and-ball game.")
	q := strings.Index(p, "What is cricket?")
	assert.True(t, doc >= 0 && q > doc)
	assert.Contains(t, p, "##Document-Start##")
}

func TestRAGAndHallucination(t *testing.T) {
	rag := RAG("ctx one\n\nctx two", "q?")
	assert.Contains(t, rag, "##Context-Start##\nctx one\n\nctx two")
	assert.True(t, strings.HasSuffix(rag, "Answer:"))

	h := Hallucination("fact", "student says")
	assert.Contains(t, h, "STUDENT ANSWER: student says")
	assert.Contains(t, h, "binary_evaluation")
}

func TestJudgmentKeysAppearInPrompts(t *testing.T) {
	assert.Contains(t, Router("q"), RouterKey)
	assert.Contains(t, Relevance("d", "q"), RelevanceKey)
	assert.Contains(t, Hallucination("f", "a"), HallucinationKey)
}
