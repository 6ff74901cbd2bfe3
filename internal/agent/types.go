// Package agent holds the types shared between the router, the session
// layer, and persona dispatch: turns, sessions, responses, and the
// error taxonomy the CLI reacts to.
package agent

import (
	"encoding/json"
	"time"
)

// Role identifies who produced a turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

// MemoryMode selects the persistence model for a session. The mode is
// fixed for the session's lifetime; switching modes means starting a
// new session.
type MemoryMode string

const (
	// MemoryLinear keeps only the ordered per-session transcript.
	MemoryLinear MemoryMode = "linear"

	// MemoryCross additionally mirrors every exchange into the
	// similarity-searchable long-term store, so later sessions can
	// recall it.
	MemoryCross MemoryMode = "cross"
)

// Valid reports whether m is a known memory mode.
func (m MemoryMode) Valid() bool {
	return m == MemoryLinear || m == MemoryCross
}

// Turn is one recorded exchange in a session transcript. Turns are
// immutable once appended; Seq is strictly increasing with no gaps
// within a session.
type Turn struct {
	Seq       int       `json:"seq"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Persona   string    `json:"persona,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is one continuous interactive run: an identifier, the memory
// mode chosen at creation, and the ordered transcript.
type Session struct {
	ID    string     `json:"id"`
	Mode  MemoryMode `json:"mode"`
	Turns []Turn     `json:"turns"`
}

// NextSeq returns the sequence number the next appended turn must use.
func (s *Session) NextSeq() int {
	if len(s.Turns) == 0 {
		return 1
	}
	return s.Turns[len(s.Turns)-1].Seq + 1
}

// Response is what a persona hands back for one request. Payload is
// optional structured data (for example the generated code and its
// language from the code persona).
type Response struct {
	Text    string
	Payload json.RawMessage
}
