// Package router maps free-form request text to a persona identifier
// with a confidence score and a deterministic fallback policy.
//
// Routing is a pure computation over a static descriptor set: normalize
// the request, score each persona by the specificity-weighted signals
// it owns, pick the highest score, break ties by priority and then by
// registration order. It never performs I/O and never fails.
package router

import (
	"strings"
	"unicode"
)

// Descriptor is the static routing configuration for one persona.
type Descriptor struct {
	// ID is the persona identifier dispatch will look up.
	ID string

	// Signals are the keywords and phrases this persona owns. A
	// multi-word signal matches as a contiguous token sequence and
	// scores higher than a single generic word.
	Signals []string

	// Priority breaks ties between personas with equal scores.
	Priority float64
}

// Decision is the outcome of routing one request. It is produced and
// consumed per request, never persisted.
type Decision struct {
	// Persona is the identifier to dispatch to. When Fallback is set
	// this is the configured default persona, not the raw winner.
	Persona string

	// Confidence is the winning score in [0,1]. It is the raw score
	// even when Fallback triggered, so near-misses stay inspectable.
	Confidence float64

	// Matched lists the signals that produced the score.
	Matched []string

	// Fallback is true when the winning score fell below the
	// threshold and the default persona was substituted.
	Fallback bool
}

// Config holds the scoring knobs. The formula is a chosen heuristic,
// so all three values are configuration rather than constants.
type Config struct {
	// Threshold is the minimum winning score; below it the decision
	// falls back to Default.
	Threshold float64

	// Default is the persona substituted on fallback. It must be a
	// registered descriptor.
	Default string

	// BaseWeight is the score contribution of a one-word signal;
	// WordBonus is added for each extra word in a matched phrase.
	BaseWeight float64
	WordBonus  float64
}

// Router classifies requests against a fixed descriptor set.
type Router struct {
	cfg         Config
	descriptors []Descriptor
	// signals holds per-descriptor tokenized signals, precomputed at
	// construction so Route allocates only for the request itself.
	signals [][]signal
}

type signal struct {
	raw    string
	tokens []string
}

// New builds a Router over descriptors, which are kept in registration
// order for deterministic tie-breaking. The descriptor set is treated
// as immutable after this call.
func New(cfg Config, descriptors []Descriptor) *Router {
	r := &Router{
		cfg:         cfg,
		descriptors: descriptors,
		signals:     make([][]signal, len(descriptors)),
	}
	for i, d := range descriptors {
		sigs := make([]signal, 0, len(d.Signals))
		for _, s := range d.Signals {
			t := tokenize(s)
			if len(t) > 0 {
				sigs = append(sigs, signal{raw: s, tokens: t})
			}
		}
		r.signals[i] = sigs
	}
	return r
}

// Route classifies text into a Decision. Empty or blank input routes
// to the default persona with confidence 0.
func (r *Router) Route(text string) Decision {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return Decision{Persona: r.cfg.Default, Confidence: 0, Fallback: true}
	}

	bestIdx := -1
	bestScore := 0.0
	var bestMatched []string

	for i := range r.descriptors {
		score, matched := r.score(i, tokens)
		if bestIdx == -1 ||
			score > bestScore ||
			(score == bestScore && r.descriptors[i].Priority > r.descriptors[bestIdx].Priority) {
			// Equal score and equal priority keep the earlier
			// registration, so iteration order is the final tie-break.
			bestIdx = i
			bestScore = score
			bestMatched = matched
		}
	}

	if bestScore < r.cfg.Threshold {
		return Decision{
			Persona:    r.cfg.Default,
			Confidence: bestScore,
			Matched:    bestMatched,
			Fallback:   true,
		}
	}
	return Decision{
		Persona:    r.descriptors[bestIdx].ID,
		Confidence: bestScore,
		Matched:    bestMatched,
	}
}

// score sums the specificity weights of descriptor i's signals found
// in tokens, capped at 1.0.
func (r *Router) score(i int, tokens []string) (float64, []string) {
	var total float64
	var matched []string
	for _, sig := range r.signals[i] {
		if !containsSeq(tokens, sig.tokens) {
			continue
		}
		w := r.cfg.BaseWeight + r.cfg.WordBonus*float64(len(sig.tokens)-1)
		if w > 1 {
			w = 1
		}
		total += w
		matched = append(matched, sig.raw)
	}
	if total > 1 {
		total = 1
	}
	return total, matched
}

// containsSeq reports whether needle occurs as a contiguous
// subsequence of haystack.
func containsSeq(haystack, needle []string) bool {
	if len(needle) == 0 || len(needle) > len(haystack) {
		return false
	}
outer:
	for i := 0; i+len(needle) <= len(haystack); i++ {
		for j := range needle {
			if haystack[i+j] != needle[j] {
				continue outer
			}
		}
		return true
	}
	return false
}

// tokenize lowercases and splits on any non-alphanumeric rune.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
