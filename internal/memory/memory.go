// Package memory defines the cross-session long-term store contract:
// insert text with metadata, query by text for the top-K most similar
// records. Embedding computation is internal to the store; callers
// never see or mutate vectors.
package memory

import (
	"context"
	"time"
)

// Record is one long-term memory entry. Records are created on insert
// and never mutated; the embedding is derived from Text at insert time
// and owned by the store.
type Record struct {
	// ID is the store-generated identifier.
	ID string

	// SessionID names the session the record came from.
	SessionID string

	// Text is the payload that was embedded.
	Text string

	// Persona is the handler that produced the exchange, if any.
	Persona string

	// Tags carry free-form labels (e.g. the turn role).
	Tags []string

	// Similarity is the cosine similarity to the query that returned
	// this record. Only meaningful on Query results.
	Similarity float32

	// CreatedAt is the insert time; it breaks similarity ties
	// (most recent first) so query ordering is reproducible.
	CreatedAt time.Time
}

// Metadata accompanies an insert.
type Metadata struct {
	SessionID string
	Persona   string
	Tags      []string
}

// Store is the long-term memory backend. Implementations own the
// underlying collection exclusively; failures are reported as
// *agent.StoreUnavailableError so the session layer can degrade.
type Store interface {
	// Insert embeds text and stores it with its metadata, returning
	// the generated record identifier.
	Insert(ctx context.Context, text string, meta Metadata) (string, error)

	// Query returns up to maxResults records ordered by descending
	// similarity to text, ties broken by insertion recency
	// (most recent first). Records below minSimilarity are dropped.
	Query(ctx context.Context, text string, maxResults int, minSimilarity float32) ([]Record, error)

	// Purge removes every record belonging to sessionID and reports
	// how many were removed.
	Purge(ctx context.Context, sessionID string) (int, error)

	// Close releases resources.
	Close() error
}

// Embedder converts text to vector embeddings. It is an implementation
// detail of the store; nothing outside this package tree touches it.
type Embedder interface {
	// Embed converts a single text to an embedding vector.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector size.
	Dimensions() int
}
