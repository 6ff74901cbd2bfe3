package chromem

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/simplcli/dobby/internal/memory"
	"github.com/simplcli/dobby/internal/memory/embedder/mock"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir(), "test", mock.New(), zap.NewNop())
	require.NoError(t, err)
	return s
}

func TestInsertAndQuery(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.Insert(ctx, "project Alpha deadline is Friday", memory.Metadata{
		SessionID: "s1",
		Persona:   "general",
		Tags:      []string{"user"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	_, err = s.Insert(ctx, "the cafeteria serves pasta on Wednesdays", memory.Metadata{SessionID: "s1"})
	require.NoError(t, err)

	records, err := s.Query(ctx, "when is the Alpha deadline", 5, 0.3)
	require.NoError(t, err)
	require.NotEmpty(t, records)

	assert.Equal(t, "project Alpha deadline is Friday", records[0].Text)
	assert.Equal(t, id, records[0].ID)
	assert.Equal(t, "s1", records[0].SessionID)
	assert.Equal(t, "general", records[0].Persona)
	assert.GreaterOrEqual(t, records[0].Similarity, float32(0.3))
}

func TestQueryOrderingIsStable(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	texts := []string{
		"go is a compiled language",
		"python is an interpreted language",
		"rust is a compiled language too",
		"the weather is sunny",
	}
	for _, text := range texts {
		_, err := s.Insert(ctx, text, memory.Metadata{SessionID: "s1"})
		require.NoError(t, err)
	}

	first, err := s.Query(ctx, "which language is compiled", 4, 0)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	// Unchanged store, identical query: identical order.
	for i := 0; i < 5; i++ {
		again, err := s.Query(ctx, "which language is compiled", 4, 0)
		require.NoError(t, err)
		require.Equal(t, len(first), len(again))
		for j := range first {
			assert.Equal(t, first[j].ID, again[j].ID, "position %d differs on call %d", j, i)
		}
	}

	// Similarity strictly descending (ties allowed but ordered by recency).
	for j := 1; j < len(first); j++ {
		assert.LessOrEqual(t, first[j].Similarity, first[j-1].Similarity)
	}
}

func TestQueryMinSimilarityFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Insert(ctx, "completely unrelated gibberish xyzzy", memory.Metadata{SessionID: "s1"})
	require.NoError(t, err)

	records, err := s.Query(ctx, "when is the Alpha deadline", 5, 0.9)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestQueryEmptyStore(t *testing.T) {
	s := newTestStore(t)

	records, err := s.Query(context.Background(), "anything", 5, 0)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestQueryTruncatesToMaxResults(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		_, err := s.Insert(ctx, "note about the alpha project", memory.Metadata{SessionID: "s1"})
		require.NoError(t, err)
	}

	records, err := s.Query(ctx, "alpha project", 3, 0)
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestPurgeRemovesSessionRecords(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := s.Insert(ctx, "memory from session one", memory.Metadata{SessionID: "s1"})
		require.NoError(t, err)
	}
	_, err := s.Insert(ctx, "memory from session two", memory.Metadata{SessionID: "s2"})
	require.NoError(t, err)

	removed, err := s.Purge(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	records, err := s.Query(ctx, "memory from session", 10, 0)
	require.NoError(t, err)
	for _, r := range records {
		assert.Equal(t, "s2", r.SessionID)
	}
}

func TestPersistenceAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := New(dir, "test", mock.New(), zap.NewNop())
	require.NoError(t, err)
	_, err = s.Insert(ctx, "project Alpha deadline is Friday", memory.Metadata{SessionID: "s1"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := New(dir, "test", mock.New(), zap.NewNop())
	require.NoError(t, err)
	records, err := reopened.Query(ctx, "alpha deadline", 5, 0.3)
	require.NoError(t, err)
	require.NotEmpty(t, records)
	assert.Equal(t, "project Alpha deadline is Friday", records[0].Text)
}
