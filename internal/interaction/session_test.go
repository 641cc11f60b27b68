package interaction

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(r Responder) *Session {
	return NewSession("tok", 100, 1, 2, time.Minute, r)
}

func TestSessionRespondThenFollowUps(t *testing.T) {
	ctx := context.Background()
	r := &fakeResponder{}
	s := newTestSession(r)

	require.NoError(t, s.Respond(ctx, "hello", false))
	assert.Equal(t, StatusResponded, s.Status())

	require.NoError(t, s.FollowUp(ctx, "one"))
	require.NoError(t, s.FollowUp(ctx, "two"))
	assert.Equal(t, 2, s.FollowUpCount())
}

func TestSessionFirstAcknowledgmentIsExclusive(t *testing.T) {
	ctx := context.Background()

	s := newTestSession(&fakeResponder{})
	require.NoError(t, s.Respond(ctx, "hello", false))
	assert.ErrorIs(t, s.Defer(ctx, true), ErrAlreadyAcknowledged)
	assert.ErrorIs(t, s.Respond(ctx, "again", false), ErrAlreadyAcknowledged)

	s = newTestSession(&fakeResponder{})
	require.NoError(t, s.Defer(ctx, true))
	assert.ErrorIs(t, s.Defer(ctx, true), ErrAlreadyAcknowledged)
	assert.ErrorIs(t, s.Respond(ctx, "late", false), ErrAlreadyAcknowledged)
}

func TestSessionFollowUpRequiresAcknowledgment(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(&fakeResponder{})
	assert.ErrorIs(t, s.FollowUp(ctx, "early"), ErrNotAcknowledged)
	assert.ErrorIs(t, s.DeleteOriginal(ctx), ErrNotAcknowledged)
}

func TestSessionEphemeralIsSticky(t *testing.T) {
	ctx := context.Background()
	r := &fakeResponder{}
	s := newTestSession(r)

	require.NoError(t, s.Defer(ctx, true))
	require.NoError(t, s.FollowUp(ctx, "private"))
	require.NoError(t, s.FollowUp(ctx, "still private"))

	calls := r.Calls()
	require.Len(t, calls, 3)
	for _, c := range calls {
		assert.True(t, c.Ephemeral)
	}
}

func TestSessionExpiryDominatesEveryState(t *testing.T) {
	ctx := context.Background()
	r := &fakeResponder{}
	s := newTestSession(r)
	require.NoError(t, s.Respond(ctx, "hello", false))

	// Move the clock past the deadline.
	s.now = func() time.Time { return s.deadline.Add(time.Second) }

	assert.ErrorIs(t, s.FollowUp(ctx, "late"), ErrInteractionExpired)
	assert.ErrorIs(t, s.DeleteOriginal(ctx), ErrInteractionExpired)
	assert.ErrorIs(t, s.Defer(ctx, false), ErrInteractionExpired)
	assert.ErrorIs(t, s.Respond(ctx, "late", false), ErrInteractionExpired)

	// No extra calls reached the responder.
	assert.Len(t, r.Calls(), 1)
}

func TestSessionExpiredBeforeFirstAcknowledgment(t *testing.T) {
	ctx := context.Background()
	s := NewSession("tok", 100, 1, 2, -time.Second, &fakeResponder{})
	assert.ErrorIs(t, s.Respond(ctx, "hi", false), ErrInteractionExpired)
	assert.ErrorIs(t, s.Defer(ctx, false), ErrInteractionExpired)
}

func TestSessionDeleteOriginalCloses(t *testing.T) {
	ctx := context.Background()
	r := &fakeResponder{}
	s := newTestSession(r)

	require.NoError(t, s.Defer(ctx, false))
	require.NoError(t, s.FollowUp(ctx, "working on it"))
	require.NoError(t, s.DeleteOriginal(ctx))
	assert.Equal(t, StatusClosed, s.Status())

	assert.ErrorIs(t, s.FollowUp(ctx, "too late"), ErrSessionClosed)
	assert.ErrorIs(t, s.DeleteOriginal(ctx), ErrSessionClosed)
}

func TestSessionTransportFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	r := &fakeResponder{fail: map[string]error{"respond": boom}}
	s := newTestSession(r)

	assert.ErrorIs(t, s.Respond(ctx, "hello", false), boom)
	assert.Equal(t, StatusReceived, s.Status())

	// The token was not consumed; a defer is still possible.
	require.NoError(t, s.Defer(ctx, true))
}
