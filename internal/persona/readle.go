package persona

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/simplcli/dobby/internal/agent"
	"github.com/simplcli/dobby/internal/llm"
	"github.com/simplcli/dobby/internal/scrape"
)

var urlPattern = regexp.MustCompile(`https?://[^\s"'<>]+`)

const readleSystemPrompt = `You are a skilled analyst. You are given raw text extracted from a web page.
Extract the most important points, rewrite them as a brief flowing narrative, and close with a one-line takeaway.
Do not copy the raw text verbatim.`

// maxPageChars bounds how much scraped text goes into the prompt.
const maxPageChars = 12000

// Readle fetches a URL from the user's message and summarizes it.
type Readle struct {
	completer llm.Completer
	fetcher   *scrape.Fetcher
}

// NewReadle builds the page-reading persona.
func NewReadle(completer llm.Completer, fetcher *scrape.Fetcher) *Readle {
	return &Readle{completer: completer, fetcher: fetcher}
}

func (r *Readle) Handle(ctx context.Context, req Request) (*agent.Response, error) {
	url := urlPattern.FindString(req.Text)
	if url == "" {
		return &agent.Response{
			Text: "I need a URL to read. Paste a link and I'll summarize the page.",
		}, nil
	}
	url = strings.TrimRight(url, ".,;)")

	page, err := r.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}

	prompt := fmt.Sprintf("PAGE TITLE: %s\n\nRAW TEXT:\n---\n%s\n---\n\nSummarize this page.",
		page.Title, truncate(page.Text, maxPageChars))

	summary, err := r.completer.Complete(ctx, llm.Request{
		System:      readleSystemPrompt,
		Prompt:      prompt,
		Temperature: 0.2,
	})
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.WriteString("### Web Page Summary\n\n")
	if page.Title != "" {
		fmt.Fprintf(&sb, "**Title:** %s\n\n", page.Title)
	}
	sb.WriteString(summary)
	fmt.Fprintf(&sb, "\n\n---\n**Source:** [%s](%s)", url, url)

	return &agent.Response{Text: sb.String()}, nil
}
