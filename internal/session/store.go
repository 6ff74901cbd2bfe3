// Package session owns both halves of conversational persistence: the
// append-only per-session transcript on disk, and the Manager that
// presents one record/recall contract over the transcript and the
// optional cross-session vector store.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/simplcli/dobby/internal/agent"
)

// FileStore persists one JSON document per session under its
// directory. Saves go through a temp file and rename, so a crash
// mid-write never corrupts previously committed turns.
type FileStore struct {
	dir string
}

// NewFileStore creates the directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create sessions dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Save atomically replaces the session's file with its current state.
func (fs *FileStore) Save(s *agent.Session) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	final := fs.path(s.ID)
	tmp, err := os.CreateTemp(fs.dir, s.ID+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write session: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, final); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}

// Load reads and validates a persisted session. A missing file yields
// agent.ErrSessionNotFound; an unparsable or out-of-order transcript
// yields *agent.CorruptSessionError.
func (fs *FileStore) Load(id string) (*agent.Session, error) {
	path := fs.path(id)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, agent.ErrSessionNotFound
		}
		return nil, fmt.Errorf("read session: %w", err)
	}

	var s agent.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, &agent.CorruptSessionError{Path: path, Reason: err.Error()}
	}
	if s.ID != id {
		return nil, &agent.CorruptSessionError{Path: path, Reason: fmt.Sprintf("session id mismatch: file says %q", s.ID)}
	}
	if !s.Mode.Valid() {
		return nil, &agent.CorruptSessionError{Path: path, Reason: fmt.Sprintf("unknown memory mode %q", s.Mode)}
	}
	for i, turn := range s.Turns {
		if turn.Seq != i+1 {
			return nil, &agent.CorruptSessionError{
				Path:   path,
				Reason: fmt.Sprintf("sequence gap: turn %d has seq %d", i, turn.Seq),
			}
		}
		if turn.Role != agent.RoleUser && turn.Role != agent.RoleAgent {
			return nil, &agent.CorruptSessionError{
				Path:   path,
				Reason: fmt.Sprintf("turn %d has unknown role %q", turn.Seq, turn.Role),
			}
		}
	}
	return &s, nil
}

// List returns the identifiers of all persisted sessions, sorted.
func (fs *FileStore) List() ([]string, error) {
	entries, err := os.ReadDir(fs.dir)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}

func (fs *FileStore) path(id string) string {
	return filepath.Join(fs.dir, id+".json")
}
