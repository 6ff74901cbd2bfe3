package persona

import (
	"context"
	"fmt"
	"strings"

	"github.com/simplcli/dobby/internal/agent"
	"github.com/simplcli/dobby/internal/llm"
	"github.com/simplcli/dobby/internal/scrape"
)

const searchSystemPrompt = `You are a research assistant. Answer the user's question as directly as you can.
When SOURCE MATERIAL is provided, base the answer on it and cite the source URL at the end under a "Source:" line.
When no material is provided, answer from your own knowledge and say when your information may be out of date.`

// Search answers lookup-style questions. When the message carries a
// URL the page is scraped and used as source material; otherwise the
// model answers directly, seeded with any recalled memories.
type Search struct {
	completer llm.Completer
	fetcher   *scrape.Fetcher
}

// NewSearch builds the lookup persona.
func NewSearch(completer llm.Completer, fetcher *scrape.Fetcher) *Search {
	return &Search{completer: completer, fetcher: fetcher}
}

func (s *Search) Handle(ctx context.Context, req Request) (*agent.Response, error) {
	var sb strings.Builder

	if url := urlPattern.FindString(req.Text); url != "" {
		url = strings.TrimRight(url, ".,;)")
		page, err := s.fetcher.Fetch(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("search source %s: %w", url, err)
		}
		fmt.Fprintf(&sb, "SOURCE MATERIAL (from %s):\n---\n%s\n---\n\n",
			url, truncate(page.Text, maxPageChars))
	}

	sb.WriteString("QUESTION: ")
	sb.WriteString(req.Text)

	text, err := s.completer.Complete(ctx, llm.Request{
		System:      searchSystemPrompt,
		History:     historyFromTurns(req.Context),
		Prompt:      promptWithMemories(sb.String(), req.Memory),
		Temperature: 0.3,
	})
	if err != nil {
		return nil, err
	}
	return &agent.Response{Text: text}, nil
}
