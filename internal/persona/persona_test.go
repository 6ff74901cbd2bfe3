package persona

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/simplcli/dobby/internal/agent"
	"github.com/simplcli/dobby/internal/llm"
	"github.com/simplcli/dobby/internal/memory"
	"github.com/simplcli/dobby/internal/router"
)

type echoHandler struct {
	lastReq Request
	err     error
}

func (e *echoHandler) Handle(ctx context.Context, req Request) (*agent.Response, error) {
	e.lastReq = req
	if e.err != nil {
		return nil, e.err
	}
	return &agent.Response{Text: "echo: " + req.Text}, nil
}

func TestRegistryPreservesOrder(t *testing.T) {
	r := NewRegistry()
	for _, id := range []string{"general", "search", "code"} {
		require.NoError(t, r.Register(id, &echoHandler{}))
	}
	assert.Equal(t, []string{"general", "search", "code"}, r.IDs())

	_, ok := r.Get("search")
	assert.True(t, ok)
	_, ok = r.Get("missing")
	assert.False(t, ok)
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("general", &echoHandler{}))
	assert.Error(t, r.Register("general", &echoHandler{}))
	assert.Error(t, r.Register("", &echoHandler{}))
}

func newTestDispatcher(t *testing.T, reg *Registry) *Dispatcher {
	t.Helper()
	return NewDispatcher(reg, DispatchConfig{Timeout: time.Minute, ContextTurns: 4}, zap.NewNop())
}

func TestDispatchRunsHandler(t *testing.T) {
	h := &echoHandler{}
	reg := NewRegistry()
	require.NoError(t, reg.Register("general", h))
	d := newTestDispatcher(t, reg)

	resp, err := d.Dispatch(context.Background(),
		router.Decision{Persona: "general", Confidence: 0.5},
		"hello", agent.MemoryLinear, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "echo: hello", resp.Text)
}

func TestDispatchUnknownPersona(t *testing.T) {
	d := newTestDispatcher(t, NewRegistry())

	_, err := d.Dispatch(context.Background(),
		router.Decision{Persona: "ghost"}, "hi", agent.MemoryLinear, nil, nil)
	var perr *agent.PersonaError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "ghost", perr.Persona)
}

func TestDispatchWrapsHandlerFailure(t *testing.T) {
	cause := errors.New("model unavailable")
	reg := NewRegistry()
	require.NoError(t, reg.Register("general", &echoHandler{err: cause}))
	d := newTestDispatcher(t, reg)

	_, err := d.Dispatch(context.Background(),
		router.Decision{Persona: "general"}, "hi", agent.MemoryLinear, nil, nil)
	var perr *agent.PersonaError
	require.ErrorAs(t, err, &perr)
	assert.ErrorIs(t, err, cause)
}

func TestDispatchCapsContextTurns(t *testing.T) {
	h := &echoHandler{}
	reg := NewRegistry()
	require.NoError(t, reg.Register("general", h))
	d := newTestDispatcher(t, reg) // ContextTurns: 4

	turns := make([]agent.Turn, 10)
	for i := range turns {
		turns[i] = agent.Turn{Seq: i + 1, Role: agent.RoleUser, Text: fmt.Sprintf("t%d", i+1)}
	}

	_, err := d.Dispatch(context.Background(),
		router.Decision{Persona: "general"}, "hi", agent.MemoryLinear, turns, nil)
	require.NoError(t, err)
	require.Len(t, h.lastReq.Context, 4)
	assert.Equal(t, 7, h.lastReq.Context[0].Seq, "the newest turns must be kept")
}

func TestGeneralThreadsHistoryAndMemories(t *testing.T) {
	static := &llm.StaticCompleter{Response: "hi there"}
	g := NewGeneral(static)

	resp, err := g.Handle(context.Background(), Request{
		Text: "what was the deadline again?",
		Context: []agent.Turn{
			{Seq: 1, Role: agent.RoleUser, Text: "hello"},
			{Seq: 2, Role: agent.RoleAgent, Text: "hello yourself"},
		},
		Memory: []memory.Record{{Text: "User: project Alpha deadline is Friday"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "hi there", resp.Text)

	require.NotNil(t, static.LastRequest)
	assert.Len(t, static.LastRequest.History, 2)
	assert.Contains(t, static.LastRequest.Prompt, "Alpha deadline is Friday")
	assert.Contains(t, static.LastRequest.Prompt, "what was the deadline again?")
}

func TestContextAnswerUsesLastSubstantiveTurn(t *testing.T) {
	static := &llm.StaticCompleter{Response: "because the page said so"}
	c := NewContextAnswer(static, &echoHandler{})

	long := "The analysis found that the project raised 40M in series B funding led by three investors."
	_, err := c.Handle(context.Background(), Request{
		Text: "why is that?",
		Context: []agent.Turn{
			{Seq: 1, Role: agent.RoleUser, Text: "analyze this"},
			{Seq: 2, Role: agent.RoleAgent, Text: long},
			{Seq: 3, Role: agent.RoleUser, Text: "thanks"},
			{Seq: 4, Role: agent.RoleAgent, Text: "ok"}, // too short to count
		},
	})
	require.NoError(t, err)
	require.NotNil(t, static.LastRequest)
	assert.Contains(t, static.LastRequest.Prompt, "series B funding")
}

func TestContextAnswerFallsBackWithoutContext(t *testing.T) {
	fallback := &echoHandler{}
	c := NewContextAnswer(&llm.StaticCompleter{}, fallback)

	resp, err := c.Handle(context.Background(), Request{Text: "why?"})
	require.NoError(t, err)
	assert.Equal(t, "echo: why?", resp.Text)
}

func TestCodeStripsFences(t *testing.T) {
	cases := map[string]string{
		"```python\nprint('hi')\n```": "print('hi')",
		"```\nprint('hi')\n```":       "print('hi')",
		"print('hi')":                 "print('hi')",
		"  ```go\nfmt.Println(1)\n```  ": "fmt.Println(1)",
	}
	for in, want := range cases {
		assert.Equal(t, want, stripFences(in), "input %q", in)
	}
}

func TestCodeHandleProducesPayload(t *testing.T) {
	static := &llm.StaticCompleter{Response: "```go\npackage main\n```"}
	c := NewCode(static)

	resp, err := c.Handle(context.Background(), Request{Text: "write a golang hello world"})
	require.NoError(t, err)
	assert.Contains(t, resp.Text, "package main")
	assert.JSONEq(t, `{"language":"go","code":"package main"}`, string(resp.Payload))
}

func TestDetectLanguage(t *testing.T) {
	cases := map[string]string{
		"write a golang web server":     "go",
		"quicksort in rust please":      "rust",
		"a typescript react hook":       "typescript",
		"bash script to rotate logs":    "bash",
		"just write me a fizzbuzz":      "python",
	}
	for in, want := range cases {
		assert.Equal(t, want, detectLanguage(in), "input %q", in)
	}
}

func TestDetectAddress(t *testing.T) {
	cases := []struct {
		text, chain string
	}{
		{"check 0x742d35Cc6634C0532925a3b844Bc454e4438f44e please", "ethereum"},
		{"what about bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq", "bitcoin"},
		{"analyze 1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", "bitcoin"},
		{"and 4Nd1mY5c6vUb3rV6eXqPz9SJbn5U4qH8QmZL9dVVvRmj", "solana"},
	}
	for _, tc := range cases {
		addr, chain := DetectAddress(tc.text)
		require.NotEmpty(t, addr, "input %q", tc.text)
		assert.Equal(t, tc.chain, chain, "input %q", tc.text)
	}

	addr, _ := DetectAddress("no address here")
	assert.Empty(t, addr)
}

func TestRecallLinearModeDeclinesPolitely(t *testing.T) {
	r := NewRecall(&llm.StaticCompleter{Response: "should not be called"})

	resp, err := r.Handle(context.Background(), Request{
		Text: "do you remember the Alpha deadline?",
		Mode: agent.MemoryLinear,
	})
	require.NoError(t, err)
	assert.Contains(t, resp.Text, "cross-time")
}

func TestRecallSynthesizesFromMemories(t *testing.T) {
	static := &llm.StaticCompleter{Response: "the deadline was Friday"}
	r := NewRecall(static)

	resp, err := r.Handle(context.Background(), Request{
		Text:   "when was the Alpha deadline?",
		Mode:   agent.MemoryCross,
		Memory: []memory.Record{{SessionID: "s1", Text: "User: project Alpha deadline is Friday"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "the deadline was Friday", resp.Text)
	require.NotNil(t, static.LastRequest)
	assert.Contains(t, static.LastRequest.Prompt, "Alpha deadline is Friday")
}

func TestRecallCrossModeEmptyMemories(t *testing.T) {
	r := NewRecall(&llm.StaticCompleter{Response: "unused"})

	resp, err := r.Handle(context.Background(), Request{
		Text: "remember X?",
		Mode: agent.MemoryCross,
	})
	require.NoError(t, err)
	assert.Contains(t, resp.Text, "nothing related")
}

func TestReadleWithoutURL(t *testing.T) {
	r := NewReadle(&llm.StaticCompleter{}, nil)

	resp, err := r.Handle(context.Background(), Request{Text: "read this page for me"})
	require.NoError(t, err)
	assert.Contains(t, resp.Text, "need a URL")
}
