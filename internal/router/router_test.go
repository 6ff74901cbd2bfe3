package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		Threshold:  0.4,
		Default:    "general",
		BaseWeight: 0.4,
		WordBonus:  0.15,
	}
}

func testDescriptors() []Descriptor {
	return []Descriptor{
		{ID: "search", Signals: []string{"search", "latest news"}, Priority: 0.6},
		{ID: "code", Signals: []string{"write code", "refactor"}, Priority: 0.7},
		{ID: "recall", Signals: []string{"do you remember"}, Priority: 0.9},
		{ID: "general", Signals: []string{"hello"}, Priority: 0.1},
	}
}

func TestRouteUniqueSignal(t *testing.T) {
	r := New(testConfig(), testDescriptors())

	d := r.Route("please refactor this function")
	assert.Equal(t, "code", d.Persona)
	assert.False(t, d.Fallback)
	assert.Contains(t, d.Matched, "refactor")
	assert.GreaterOrEqual(t, d.Confidence, 0.4)
}

func TestRoutePhraseOutweighsWord(t *testing.T) {
	r := New(Config{
		Threshold:  0.4,
		Default:    "general",
		BaseWeight: 0.4,
		WordBonus:  0.15,
	}, []Descriptor{
		{ID: "a", Signals: []string{"news"}, Priority: 0.5},
		{ID: "b", Signals: []string{"latest news"}, Priority: 0.5},
	})

	d := r.Route("any latest news today?")
	// Both match, but the two-word phrase weighs 0.55 vs 0.4.
	assert.Equal(t, "b", d.Persona)
	assert.False(t, d.Fallback)
}

func TestRouteNoSignalFallsBack(t *testing.T) {
	r := New(testConfig(), testDescriptors())

	d := r.Route("the weather is nice today")
	assert.Equal(t, "general", d.Persona)
	assert.True(t, d.Fallback)
	assert.Equal(t, 0.0, d.Confidence)
}

func TestRouteEmptyInput(t *testing.T) {
	r := New(testConfig(), testDescriptors())

	for _, in := range []string{"", "   ", "\t\n", "?!..."} {
		d := r.Route(in)
		assert.Equal(t, "general", d.Persona, "input %q", in)
		assert.True(t, d.Fallback)
		assert.Equal(t, 0.0, d.Confidence)
	}
}

func TestRouteReportsRawScoreOnFallback(t *testing.T) {
	r := New(Config{
		Threshold:  0.9,
		Default:    "general",
		BaseWeight: 0.4,
		WordBonus:  0.15,
	}, testDescriptors())

	d := r.Route("search for cats")
	require.True(t, d.Fallback)
	assert.Equal(t, "general", d.Persona)
	// The near-miss score must survive for logging/inspection.
	assert.InDelta(t, 0.4, d.Confidence, 1e-9)
	assert.Contains(t, d.Matched, "search")
}

func TestRouteTieBrokenByPriority(t *testing.T) {
	r := New(testConfig(), []Descriptor{
		{ID: "low", Signals: []string{"alpha"}, Priority: 0.2},
		{ID: "high", Signals: []string{"alpha"}, Priority: 0.8},
	})

	d := r.Route("tell me about alpha")
	assert.Equal(t, "high", d.Persona)
	assert.False(t, d.Fallback)
}

func TestRouteTieBrokenByRegistrationOrder(t *testing.T) {
	descriptors := []Descriptor{
		{ID: "first", Signals: []string{"alpha"}, Priority: 0.5},
		{ID: "second", Signals: []string{"alpha"}, Priority: 0.5},
	}
	r := New(testConfig(), descriptors)

	// Identical score and identical priority: first-registered wins,
	// and repeated calls must agree.
	for i := 0; i < 50; i++ {
		d := r.Route("alpha")
		require.Equal(t, "first", d.Persona, "call %d", i)
	}
}

func TestRouteDeterministic(t *testing.T) {
	r := New(testConfig(), testDescriptors())

	first := r.Route("search the latest news and write code")
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, r.Route("search the latest news and write code"))
	}
}

func TestRouteCaseInsensitive(t *testing.T) {
	r := New(testConfig(), testDescriptors())

	d := r.Route("DO YOU REMEMBER the project?")
	assert.Equal(t, "recall", d.Persona)
	assert.False(t, d.Fallback)
}

func TestScoreCappedAtOne(t *testing.T) {
	r := New(testConfig(), []Descriptor{
		{ID: "x", Signals: []string{"a", "b", "c", "d"}, Priority: 0.5},
	})

	d := r.Route("a b c d")
	assert.Equal(t, 1.0, d.Confidence)
}
