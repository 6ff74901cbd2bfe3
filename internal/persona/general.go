package persona

import (
	"context"

	"github.com/simplcli/dobby/internal/agent"
	"github.com/simplcli/dobby/internal/llm"
)

const generalSystemPrompt = `You are Dobby, a sharp and helpful assistant living in a terminal.
Answer directly and concisely. Use the conversation so far when it is relevant.
When long-term memories are provided, weave them in naturally instead of quoting them verbatim.`

// General is the default chat persona and the routing fallback.
type General struct {
	completer llm.Completer
}

// NewGeneral builds the chat persona.
func NewGeneral(completer llm.Completer) *General {
	return &General{completer: completer}
}

// Handle answers with plain chat over the capped history.
func (g *General) Handle(ctx context.Context, req Request) (*agent.Response, error) {
	llmReq := llm.Request{
		System:      generalSystemPrompt,
		History:     historyFromTurns(req.Context),
		Prompt:      promptWithMemories(req.Text, req.Memory),
		Temperature: 0.7,
	}
	text, err := g.completer.Complete(ctx, llmReq)
	if err != nil {
		return nil, err
	}
	return &agent.Response{Text: text}, nil
}

// historyFromTurns converts transcript turns into LLM messages.
func historyFromTurns(turns []agent.Turn) []llm.Message {
	if len(turns) == 0 {
		return nil
	}
	out := make([]llm.Message, 0, len(turns))
	for _, t := range turns {
		out = append(out, llm.Message{Role: t.Role, Text: t.Text})
	}
	return out
}
