package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/simplcli/dobby/internal/agent"
	"github.com/simplcli/dobby/internal/memory"
)

// Config holds the recall policy the manager applies on top of the
// vector store.
type Config struct {
	MinSimilarity float32
	MaxRecall     int
}

// Manager orchestrates the active session's stores. It exposes one
// record/recall contract regardless of memory mode: in linear mode
// recall is simply empty, in cross mode every recorded turn is also
// mirrored into the vector store.
//
// A Manager drives exactly one session at a time; the process serves
// one interactive user, so no locking is needed beyond the file
// store's atomic-write discipline.
type Manager struct {
	files  *FileStore
	vector memory.Store // may be nil when no cross-time store is configured
	cfg    Config
	log    *zap.Logger

	sess   *agent.Session
	closed bool
}

// NewManager wires a manager over the linear file store and an
// optional vector store. vector may be nil; cross-mode sessions then
// degrade to linear behavior with a warning on every record.
func NewManager(files *FileStore, vector memory.Store, cfg Config, log *zap.Logger) *Manager {
	return &Manager{
		files:  files,
		vector: vector,
		cfg:    cfg,
		log:    log.Named("session"),
	}
}

// Session returns the active session, or nil before StartNew/Resume.
func (m *Manager) Session() *agent.Session { return m.sess }

// StartNew allocates a fresh session and persists it immediately, so
// even a zero-turn session survives a later resume lookup.
func (m *Manager) StartNew(mode agent.MemoryMode) (*agent.Session, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("unknown memory mode %q", mode)
	}
	s := &agent.Session{
		ID:   uuid.New().String(),
		Mode: mode,
	}
	if err := m.files.Save(s); err != nil {
		return nil, fmt.Errorf("persist new session: %w", err)
	}
	m.sess = s
	m.closed = false
	m.log.Info("started session",
		zap.String("id", s.ID),
		zap.String("mode", string(mode)))
	return s, nil
}

// Resume loads a previously persisted session and makes it the active
// one. The persisted memory mode wins; a session's mode is fixed for
// life. Lookup failure leaves no file behind and no active session.
func (m *Manager) Resume(id string) (*agent.Session, error) {
	s, err := m.files.Load(id)
	if err != nil {
		return nil, err
	}
	m.sess = s
	m.closed = false
	m.log.Info("resumed session",
		zap.String("id", s.ID),
		zap.String("mode", string(s.Mode)),
		zap.Int("turns", len(s.Turns)))
	return s, nil
}

// Record appends a turn to the transcript and persists it before
// returning. In cross mode the turn is also forwarded to the vector
// store; a store failure there degrades to a warning (warned=true)
// rather than failing the append.
func (m *Manager) Record(ctx context.Context, role agent.Role, text, persona string) (warned bool, err error) {
	if m.sess == nil || m.closed {
		return false, errors.New("no active session")
	}

	turn := agent.Turn{
		Seq:       m.sess.NextSeq(),
		Role:      role,
		Text:      text,
		Persona:   persona,
		Timestamp: time.Now().UTC(),
	}
	m.sess.Turns = append(m.sess.Turns, turn)

	if err := m.files.Save(m.sess); err != nil {
		// Roll back the in-memory append so seq numbers stay gap-free
		// if the caller retries.
		m.sess.Turns = m.sess.Turns[:len(m.sess.Turns)-1]
		return false, fmt.Errorf("persist turn: %w", err)
	}

	if m.sess.Mode != agent.MemoryCross {
		return false, nil
	}

	if m.vector == nil {
		m.log.Warn("cross-time session has no vector store; turn not mirrored",
			zap.Int("seq", turn.Seq))
		return true, nil
	}

	_, insertErr := m.vector.Insert(ctx, formatForMemory(turn), memory.Metadata{
		SessionID: m.sess.ID,
		Persona:   persona,
		Tags:      []string{string(role)},
	})
	if insertErr != nil {
		// Linear recording already succeeded; degrade, don't abort.
		m.log.Warn("long-term store unavailable, turn recorded linearly only",
			zap.Int("seq", turn.Seq),
			zap.Error(insertErr))
		return true, nil
	}
	return false, nil
}

// Recall returns up to max long-term records relevant to query,
// ordered by descending similarity. Linear-mode sessions have no
// cross-time recall and get an empty result, never an error. A vector
// store failure likewise degrades to an empty result with a warning.
func (m *Manager) Recall(ctx context.Context, query string, max int) ([]memory.Record, error) {
	if m.sess == nil || m.closed {
		return nil, errors.New("no active session")
	}
	if m.sess.Mode != agent.MemoryCross || m.vector == nil {
		return nil, nil
	}
	if max <= 0 || max > m.cfg.MaxRecall {
		max = m.cfg.MaxRecall
	}

	records, err := m.vector.Query(ctx, query, max, m.cfg.MinSimilarity)
	if err != nil {
		var unavailable *agent.StoreUnavailableError
		if errors.As(err, &unavailable) {
			m.log.Warn("long-term store unavailable, recall skipped", zap.Error(err))
			return nil, nil
		}
		return nil, err
	}
	return records, nil
}

// Reset clears the active session's transcript and persists the empty
// state, so the next turn starts from seq 1 again. Records already
// mirrored into the long-term store are kept; Purge removes those.
func (m *Manager) Reset() error {
	if m.sess == nil || m.closed {
		return errors.New("no active session")
	}
	turns := m.sess.Turns
	m.sess.Turns = nil
	if err := m.files.Save(m.sess); err != nil {
		m.sess.Turns = turns
		return fmt.Errorf("persist reset: %w", err)
	}
	m.log.Info("cleared transcript",
		zap.String("id", m.sess.ID),
		zap.Int("dropped", len(turns)))
	return nil
}

// Purge removes the active session's records from the long-term store.
func (m *Manager) Purge(ctx context.Context) (int, error) {
	if m.sess == nil {
		return 0, errors.New("no active session")
	}
	if m.vector == nil {
		return 0, nil
	}
	return m.vector.Purge(ctx, m.sess.ID)
}

// Close ends the session lifecycle. A closed manager rejects further
// records; resuming later creates a distinct lifecycle instance over
// the shared transcript.
func (m *Manager) Close() error {
	m.closed = true
	if m.vector != nil {
		return m.vector.Close()
	}
	return nil
}

// formatForMemory renders a turn the way the long-term store sees it,
// keeping who said what attached to the text.
func formatForMemory(t agent.Turn) string {
	if t.Role == agent.RoleUser {
		return "User: " + t.Text
	}
	persona := t.Persona
	if persona == "" {
		persona = "general"
	}
	return fmt.Sprintf("Dobby (%s): %s", persona, t.Text)
}
