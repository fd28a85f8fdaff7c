package llm

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/openai/openai-go"
	"github.com/stretchr/testify/require"

	"github.com/podiumlabs/podium/internal/models"
)

// timeoutErr satisfies net.Error, standing in for a transport failure.
type timeoutErr struct{}

func (timeoutErr) Error() string   { return "dial tcp: i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func noSleep(ctx context.Context, d time.Duration) error { return nil }

func testReq() Request {
	return Request{
		Model:    "test-model",
		Messages: []models.Message{models.UserMessage("hello")},
	}
}

func TestRetryingTransientErrors(t *testing.T) {
	inner := NewScripted("recovered")
	inner.Errs = map[int]error{
		0: timeoutErr{},
		1: timeoutErr{},
	}

	r := NewRetrying(inner, RetryPolicy{MaxAttempts: 3, Delay: time.Second})
	r.sleep = noSleep

	completions, err := r.Complete(context.Background(), testReq())
	require.NoError(t, err)
	require.Equal(t, "recovered", completions[0].Text)
	require.Equal(t, 3, inner.Calls())
}

func TestRetryingGivesUp(t *testing.T) {
	inner := NewScripted()
	inner.Errs = map[int]error{0: timeoutErr{}, 1: timeoutErr{}, 2: timeoutErr{}}

	r := NewRetrying(inner, RetryPolicy{MaxAttempts: 3, Delay: time.Second})
	r.sleep = noSleep

	_, err := r.Complete(context.Background(), testReq())
	require.Error(t, err)
	require.Contains(t, err.Error(), "giving up after 3 attempt(s)")
	require.Equal(t, 3, inner.Calls())
}

func TestRetryingNonTransientSurfacesImmediately(t *testing.T) {
	authErr := &openai.Error{StatusCode: 401}
	inner := NewScripted("unreached")
	inner.Errs = map[int]error{0: authErr}

	r := NewRetrying(inner, RetryPolicy{MaxAttempts: 5, Delay: time.Second})
	r.sleep = noSleep

	_, err := r.Complete(context.Background(), testReq())
	require.Error(t, err)
	var apiErr *openai.Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, 1, inner.Calls())
}

func TestRetryingContextCanceledDuringDelay(t *testing.T) {
	inner := NewScripted("unreached")
	inner.Errs = map[int]error{0: timeoutErr{}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRetrying(inner, RetryPolicy{MaxAttempts: 3, Delay: time.Minute})

	_, err := r.Complete(ctx, testReq())
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, inner.Calls())
}

func TestIsTransient(t *testing.T) {
	t.Run("RateLimited", func(t *testing.T) {
		require.True(t, IsTransient(&openai.Error{StatusCode: 429}))
	})
	t.Run("ServerError", func(t *testing.T) {
		require.True(t, IsTransient(&openai.Error{StatusCode: 503}))
	})
	t.Run("BadRequest", func(t *testing.T) {
		require.False(t, IsTransient(&openai.Error{StatusCode: 400}))
	})
	t.Run("NetError", func(t *testing.T) {
		var err net.Error = timeoutErr{}
		require.True(t, IsTransient(err))
	})
	t.Run("Plain", func(t *testing.T) {
		require.False(t, IsTransient(errors.New("boom")))
	})
}

func TestMockAnswersEveryRequest(t *testing.T) {
	m := NewMock(">> FINAL ANSWER: (mock)")

	for range 3 {
		completions, err := m.Complete(context.Background(), testReq())
		require.NoError(t, err)
		require.Equal(t, ">> FINAL ANSWER: (mock)", completions[0].Text)
	}

	req := testReq()
	req.N = 4
	completions, err := m.Complete(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, completions, 4)
}
