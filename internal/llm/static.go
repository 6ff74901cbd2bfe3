package llm

import "context"

// StaticCompleter is a test double that returns a fixed response and
// remembers the last request it saw.
type StaticCompleter struct {
	Response string
	Err      error

	// LastRequest is the most recent request passed to Complete.
	LastRequest *Request
}

// Complete implements Completer.
func (s *StaticCompleter) Complete(ctx context.Context, req Request) (string, error) {
	reqCopy := req
	s.LastRequest = &reqCopy
	if s.Err != nil {
		return "", s.Err
	}
	return s.Response, nil
}
