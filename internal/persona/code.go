package persona

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/simplcli/dobby/internal/agent"
	"github.com/simplcli/dobby/internal/llm"
)

const codeSystemPrompt = `You are an expert programmer. Write a clean, efficient, well-commented snippet for the user's request.
Output ONLY the raw source code. No explanations, no introductory text, no Markdown backticks.
The output must be ready to save directly to a file.`

// CodePayload is the structured part of a code response.
type CodePayload struct {
	Language string `json:"language"`
	Code     string `json:"code"`
}

// Code generates source code snippets.
type Code struct {
	completer llm.Completer
}

// NewCode builds the code-generation persona.
func NewCode(completer llm.Completer) *Code {
	return &Code{completer: completer}
}

func (c *Code) Handle(ctx context.Context, req Request) (*agent.Response, error) {
	language := detectLanguage(req.Text)

	prompt := fmt.Sprintf("REQUEST: %s\nProgramming language: %s", req.Text, language)
	raw, err := c.completer.Complete(ctx, llm.Request{
		System:      codeSystemPrompt,
		History:     historyFromTurns(req.Context),
		Prompt:      prompt,
		Temperature: 0.1,
	})
	if err != nil {
		return nil, err
	}

	code := stripFences(raw)
	payload, err := json.Marshal(CodePayload{Language: language, Code: code})
	if err != nil {
		return nil, fmt.Errorf("encode code payload: %w", err)
	}

	text := fmt.Sprintf("```%s\n%s\n```", language, code)
	return &agent.Response{Text: text, Payload: payload}, nil
}

// languageHints maps request keywords to a language tag. First match
// in hint order wins; the fallback is python, matching what people
// usually mean by an unqualified snippet request.
var languageHints = []struct {
	keyword  string
	language string
}{
	{"golang", "go"},
	{" go ", "go"},
	{"rust", "rust"},
	{"typescript", "typescript"},
	{"javascript", "javascript"},
	{" js ", "javascript"},
	{"python", "python"},
	{"bash", "bash"},
	{"shell script", "bash"},
	{" sql", "sql"},
	{"java ", "java"},
	{"c++", "cpp"},
	{"ruby", "ruby"},
}

func detectLanguage(text string) string {
	padded := " " + strings.ToLower(text) + " "
	for _, h := range languageHints {
		if strings.Contains(padded, h.keyword) {
			return h.language
		}
	}
	return "python"
}

// stripFences removes a wrapping Markdown code fence, with or without
// a language tag, that models emit despite being told not to.
func stripFences(raw string) string {
	code := strings.TrimSpace(raw)
	if !strings.HasPrefix(code, "```") {
		return code
	}
	if idx := strings.Index(code, "\n"); idx >= 0 {
		code = code[idx+1:]
	} else {
		code = strings.TrimPrefix(code, "```")
	}
	code = strings.TrimSuffix(strings.TrimSpace(code), "```")
	return strings.TrimSpace(code)
}
