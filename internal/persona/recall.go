package persona

import (
	"context"
	"fmt"
	"strings"

	"github.com/simplcli/dobby/internal/agent"
	"github.com/simplcli/dobby/internal/llm"
)

const recallSystemPrompt = `You are Dobby, answering a question about past conversations using recalled memory excerpts.
Base your answer only on the MEMORIES provided. If they do not cover the topic, say you have no memory of it.
Mention when a memory comes from an earlier session.`

const recallUnavailable = "Long-term recall is only available in cross-time memory mode. " +
	"This session runs in linear mode, so I only remember what we said here. " +
	"Start a new session with cross-time memory to use recall."

// Recall answers "do you remember" questions from the records the
// session manager pulled out of the vector store.
type Recall struct {
	completer llm.Completer
}

// NewRecall builds the memory-recall persona.
func NewRecall(completer llm.Completer) *Recall {
	return &Recall{completer: completer}
}

func (r *Recall) Handle(ctx context.Context, req Request) (*agent.Response, error) {
	if req.Mode != agent.MemoryCross {
		return &agent.Response{Text: recallUnavailable}, nil
	}
	if len(req.Memory) == 0 {
		return &agent.Response{
			Text: "I searched my long-term memory but found nothing related to that.",
		}, nil
	}

	var sb strings.Builder
	sb.WriteString("MEMORIES (most relevant first):\n")
	for i, rec := range req.Memory {
		fmt.Fprintf(&sb, "%d. [session %s, %s] %s\n",
			i+1, rec.SessionID, rec.CreatedAt.Format("2006-01-02"), rec.Text)
	}
	sb.WriteString("\nQUESTION: ")
	sb.WriteString(req.Text)

	text, err := r.completer.Complete(ctx, llm.Request{
		System:      recallSystemPrompt,
		Prompt:      sb.String(),
		Temperature: 0.3,
	})
	if err != nil {
		return nil, err
	}
	return &agent.Response{Text: text}, nil
}
