package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/podiumlabs/podium/internal/models"
)

// Scripted is a Client that replays a fixed sequence of replies, in
// order, regardless of the request. It records every request it sees so
// tests can assert on the exact messages sent.
type Scripted struct {
	mu       sync.Mutex
	replies  []string
	next     int
	requests []Request

	// Errs maps a zero-based call index to an error returned instead of
	// a reply. The reply at that index is not consumed.
	Errs map[int]error

	calls int
}

// NewScripted creates a [Scripted] client with the given replies.
func NewScripted(replies ...string) *Scripted {
	return &Scripted{replies: replies}
}

func (s *Scripted) Complete(ctx context.Context, req Request) ([]Completion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Copy the messages: callers reuse and append to their slices.
	recorded := req
	recorded.Messages = models.CloneMessages(req.Messages)
	s.requests = append(s.requests, recorded)

	call := s.calls
	s.calls++

	if err, ok := s.Errs[call]; ok {
		return nil, err
	}

	if s.next >= len(s.replies) {
		return nil, fmt.Errorf("scripted client: no reply configured for call %d", call)
	}
	reply := s.replies[s.next]
	s.next++

	n := req.N
	if n < 1 {
		n = 1
	}
	completions := make([]Completion, 0, n)
	for i := 0; i < n; i++ {
		completions = append(completions, Completion{Text: reply})
	}
	return completions, nil
}

// Requests returns a copy of all requests seen so far.
func (s *Scripted) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// Calls returns the number of Complete invocations.
func (s *Scripted) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
