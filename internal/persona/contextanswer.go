package persona

import (
	"context"
	"strings"

	"github.com/simplcli/dobby/internal/agent"
	"github.com/simplcli/dobby/internal/llm"
)

const contextSystemPrompt = `You are Dobby, answering a follow-up question about your own previous answer.
Ground your reply strictly in the PREVIOUS RESULT provided. If the answer is not in it, say so plainly.`

// maxContextChars bounds how much of a prior answer is replayed into
// the follow-up prompt.
const maxContextChars = 3000

// ContextAnswer handles follow-up questions about the most recent
// substantive agent turn. With no such turn it degrades to plain chat.
type ContextAnswer struct {
	completer llm.Completer
	fallback  Handler
}

// NewContextAnswer builds the follow-up persona. fallback handles the
// request when the transcript has no agent turn to follow up on.
func NewContextAnswer(completer llm.Completer, fallback Handler) *ContextAnswer {
	return &ContextAnswer{completer: completer, fallback: fallback}
}

func (c *ContextAnswer) Handle(ctx context.Context, req Request) (*agent.Response, error) {
	previous := lastSubstantiveAgentTurn(req.Context)
	if previous == "" {
		return c.fallback.Handle(ctx, req)
	}

	var sb strings.Builder
	sb.WriteString("PREVIOUS RESULT:\n---\n")
	sb.WriteString(truncate(previous, maxContextChars))
	sb.WriteString("\n---\n\nFOLLOW-UP QUESTION: ")
	sb.WriteString(req.Text)

	text, err := c.completer.Complete(ctx, llm.Request{
		System:      contextSystemPrompt,
		Prompt:      sb.String(),
		Temperature: 0.3,
	})
	if err != nil {
		return nil, err
	}
	return &agent.Response{Text: text}, nil
}

// lastSubstantiveAgentTurn returns the newest agent turn long enough
// to be worth following up on, or empty.
func lastSubstantiveAgentTurn(turns []agent.Turn) string {
	for i := len(turns) - 1; i >= 0; i-- {
		t := turns[i]
		if t.Role == agent.RoleAgent && len(strings.TrimSpace(t.Text)) > 40 {
			return t.Text
		}
	}
	return ""
}
