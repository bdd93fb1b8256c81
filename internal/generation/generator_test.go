package generation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Divas-Gupta30/adaptive-rag/internal/llm"
)

type recordingChat struct {
	req   llm.Request
	reply string
	err   error
}

func (c *recordingChat) Complete(_ context.Context, req llm.Request) (string, error) {
	c.req = req
	return c.reply, c.err
}

func TestGenerate(t *testing.T) {
	chat := &recordingChat{reply: "\n  India won in 1983 and 2011.\n"}
	ans, err := New(chat).Generate(context.Background(), "When did India win?", "doc one\n\ndoc two")
	require.NoError(t, err)

	assert.Equal(t, "India won in 1983 and 2011.", ans)
	assert.False(t, chat.req.JSON, "answers are plain text")
	assert.Empty(t, chat.req.System)
	assert.Contains(t, chat.req.Prompt, "doc one\n\ndoc two")
	assert.Contains(t, chat.req.Prompt, "When did India win?")
}

func TestGenerate_Error(t *testing.T) {
	boom := errors.New("boom")
	_, err := New(&recordingChat{err: boom}).Generate(context.Background(), "q", "")
	assert.ErrorIs(t, err, boom)
}
