package interaction

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestDispatcher(r Responder) *Dispatcher {
	return NewDispatcher(zap.NewNop(), r, time.Minute)
}

func TestDispatchCommand(t *testing.T) {
	r := &fakeResponder{}
	d := newTestDispatcher(r)

	var got *Invocation
	d.RegisterCommand("say", func(_ context.Context, inv *Invocation) { got = inv })

	d.HandleCommand(context.Background(), "tok", "say", NewOptions(map[string]any{"content": "hi"}), 100, 1, 2)

	require.NotNil(t, got)
	assert.Equal(t, "say", got.Command)
	assert.Equal(t, uint64(100), got.UserID)
	content, ok := got.Options.String("content")
	require.True(t, ok)
	assert.Equal(t, "hi", content)
	assert.Equal(t, StatusReceived, got.Session.Status())
}

func TestDispatchUnknownCommandRepliesEphemeral(t *testing.T) {
	r := &fakeResponder{}
	d := newTestDispatcher(r)

	d.HandleCommand(context.Background(), "tok", "frobnicate", NewOptions(nil), 100, 1, 2)

	calls := r.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "respond", calls[0].Method)
	assert.True(t, calls[0].Ephemeral)
}

func TestDispatchContextCommandCarriesResolvedTarget(t *testing.T) {
	r := &fakeResponder{}
	d := newTestDispatcher(r)

	var gotUser, gotMessage *Invocation
	d.RegisterUserCommand("Ban User", func(_ context.Context, inv *Invocation) { gotUser = inv })
	d.RegisterMessageCommand("Delete Message", func(_ context.Context, inv *Invocation) { gotMessage = inv })

	d.HandleContextCommand(context.Background(), "tok", UserCommand, "Ban User", 500, 100, 1, 2)
	d.HandleContextCommand(context.Background(), "tok", MessageCommand, "Delete Message", 600, 100, 1, 2)

	require.NotNil(t, gotUser)
	assert.Equal(t, UserCommand, gotUser.Kind)
	assert.Equal(t, uint64(500), gotUser.TargetUserID)
	assert.Zero(t, gotUser.TargetMessageID)

	require.NotNil(t, gotMessage)
	assert.Equal(t, MessageCommand, gotMessage.Kind)
	assert.Equal(t, uint64(600), gotMessage.TargetMessageID)
	assert.Zero(t, gotMessage.TargetUserID)
}

func TestDispatchCommandKindsResolveIndependently(t *testing.T) {
	r := &fakeResponder{}
	d := newTestDispatcher(r)

	var slash, user bool
	d.RegisterCommand("ban", func(_ context.Context, inv *Invocation) { slash = true })
	d.RegisterUserCommand("ban", func(_ context.Context, inv *Invocation) { user = true })

	d.HandleContextCommand(context.Background(), "tok", UserCommand, "ban", 500, 100, 1, 2)
	assert.False(t, slash)
	assert.True(t, user)

	d.HandleCommand(context.Background(), "tok", "ban", NewOptions(nil), 100, 1, 2)
	assert.True(t, slash)
}

func TestDispatchUnknownContextCommandRepliesEphemeral(t *testing.T) {
	r := &fakeResponder{}
	d := newTestDispatcher(r)

	d.HandleContextCommand(context.Background(), "tok", MessageCommand, "Frobnicate", 600, 100, 1, 2)

	calls := r.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "respond", calls[0].Method)
	assert.True(t, calls[0].Ephemeral)
}

func TestDispatchComponent(t *testing.T) {
	r := &fakeResponder{}
	d := newTestDispatcher(r)

	var got *Invocation
	d.RegisterComponent("prune", func(_ context.Context, inv *Invocation) { got = inv })

	d.HandleComponent(context.Background(), "tok", "100:prune:150", 100, 1, 2, 3)

	require.NotNil(t, got)
	assert.Equal(t, uint64(100), got.Custom.Originator)
	assert.Equal(t, []string{"150"}, got.Custom.Params)
	assert.Equal(t, uint64(3), got.MessageID)
}

func TestDispatchComponentOriginatorMismatchIsDropped(t *testing.T) {
	r := &fakeResponder{}
	d := newTestDispatcher(r)

	called := false
	d.RegisterComponent("prune", func(_ context.Context, inv *Invocation) { called = true })

	// Clicker 200 is not the encoded originator 100: no handler, no
	// response, nothing at all.
	d.HandleComponent(context.Background(), "tok", "100:prune:150", 200, 1, 2, 3)

	assert.False(t, called)
	assert.Empty(t, r.Calls())
}

func TestDispatchComponentMalformedIDIsDropped(t *testing.T) {
	r := &fakeResponder{}
	d := newTestDispatcher(r)

	called := false
	d.RegisterComponent("prune", func(_ context.Context, inv *Invocation) { called = true })

	d.HandleComponent(context.Background(), "tok", "garbage", 100, 1, 2, 3)

	assert.False(t, called)
	assert.Empty(t, r.Calls())
}
