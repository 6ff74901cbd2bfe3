// Package chromem backs the long-term memory store with chromem-go,
// a pure Go embedded vector database, persisted under the data dir so
// records survive across sessions.
package chromem

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	chromem "github.com/philippgille/chromem-go"
	"go.uber.org/zap"

	"github.com/simplcli/dobby/internal/agent"
	"github.com/simplcli/dobby/internal/memory"
)

var _ memory.Store = (*Store)(nil)

// Store implements memory.Store over a persistent chromem collection.
type Store struct {
	db       *chromem.DB
	col      *chromem.Collection
	embedder memory.Embedder
	log      *zap.Logger
}

// New opens (or creates) the persistent database at path and the named
// collection inside it. The store provides embeddings itself, so no
// chromem embedding function is configured.
func New(path, collection string, embedder memory.Embedder, log *zap.Logger) (*Store, error) {
	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, fmt.Errorf("open vector db: %w", err)
	}
	col, err := db.GetOrCreateCollection(collection, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("open collection %q: %w", collection, err)
	}
	return &Store{
		db:       db,
		col:      col,
		embedder: embedder,
		log:      log.Named("memory"),
	}, nil
}

// Insert embeds text and adds it to the collection.
func (s *Store) Insert(ctx context.Context, text string, meta memory.Metadata) (string, error) {
	embedding, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return "", &agent.StoreUnavailableError{Cause: fmt.Errorf("embed: %w", err)}
	}

	id := uuid.New().String()
	doc := chromem.Document{
		ID:        id,
		Content:   text,
		Embedding: embedding,
		Metadata: map[string]string{
			"session_id": meta.SessionID,
			"persona":    meta.Persona,
			"tags":       strings.Join(meta.Tags, ","),
			"created_at": time.Now().UTC().Format(time.RFC3339Nano),
		},
	}
	if err := s.col.AddDocument(ctx, doc); err != nil {
		return "", &agent.StoreUnavailableError{Cause: fmt.Errorf("add document: %w", err)}
	}

	s.log.Debug("stored memory record",
		zap.String("id", id),
		zap.String("session", meta.SessionID),
		zap.Int("text_len", len(text)))
	return id, nil
}

// Query embeds text and returns the most similar records, ordered by
// descending similarity with ties broken by insertion recency.
func (s *Store) Query(ctx context.Context, text string, maxResults int, minSimilarity float32) ([]memory.Record, error) {
	if maxResults <= 0 {
		return nil, nil
	}

	embedding, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, &agent.StoreUnavailableError{Cause: fmt.Errorf("embed query: %w", err)}
	}

	// chromem rejects nResults larger than the collection.
	n := maxResults
	if count := s.col.Count(); count < n {
		n = count
	}
	if n == 0 {
		return nil, nil
	}

	results, err := s.col.QueryEmbedding(ctx, embedding, n, nil, nil)
	if err != nil {
		return nil, &agent.StoreUnavailableError{Cause: fmt.Errorf("query: %w", err)}
	}

	records := make([]memory.Record, 0, len(results))
	for _, res := range results {
		if res.Similarity < minSimilarity {
			continue
		}
		records = append(records, toRecord(res))
	}

	// chromem orders by similarity already; re-sorting pins down the
	// tie order so repeated queries on an unchanged store agree.
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Similarity != records[j].Similarity {
			return records[i].Similarity > records[j].Similarity
		}
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	s.log.Debug("recall query",
		zap.Int("raw", len(results)),
		zap.Int("returned", len(records)))
	return records, nil
}

// Purge deletes every record belonging to sessionID.
func (s *Store) Purge(ctx context.Context, sessionID string) (int, error) {
	before := s.col.Count()
	err := s.col.Delete(ctx, map[string]string{"session_id": sessionID}, nil)
	if err != nil {
		return 0, &agent.StoreUnavailableError{Cause: fmt.Errorf("delete: %w", err)}
	}
	removed := before - s.col.Count()
	s.log.Info("purged session records",
		zap.String("session", sessionID),
		zap.Int("removed", removed))
	return removed, nil
}

// Close is a no-op: chromem persists on every write.
func (s *Store) Close() error { return nil }

func toRecord(res chromem.Result) memory.Record {
	createdAt, _ := time.Parse(time.RFC3339Nano, res.Metadata["created_at"])
	var tags []string
	if raw := res.Metadata["tags"]; raw != "" {
		tags = strings.Split(raw, ",")
	}
	return memory.Record{
		ID:         res.ID,
		SessionID:  res.Metadata["session_id"],
		Text:       res.Content,
		Persona:    res.Metadata["persona"],
		Tags:       tags,
		Similarity: res.Similarity,
		CreatedAt:  createdAt,
	}
}
