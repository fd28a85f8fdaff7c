package llm

import "context"

// Mock is a Client that answers every request with the same canned
// reply. It backs the "mock" engine so a full experiment can run end to
// end without credentials or network access.
type Mock struct {
	reply string
}

// NewMock creates a [Mock] with the given reply.
func NewMock(reply string) *Mock {
	return &Mock{reply: reply}
}

func (m *Mock) Complete(ctx context.Context, req Request) ([]Completion, error) {
	n := req.N
	if n < 1 {
		n = 1
	}
	completions := make([]Completion, 0, n)
	for i := 0; i < n; i++ {
		completions = append(completions, Completion{Text: m.reply})
	}
	return completions, nil
}
