package mod

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/PrimeAPI/JDA/internal/interaction"
	"github.com/PrimeAPI/JDA/internal/state"
)

const (
	guildID  = uint64(1)
	ownerID  = uint64(10)
	modID    = uint64(11)
	plebID   = uint64(12)
	botID    = uint64(99)
	targetID = uint64(12)
)

// callLog orders outbound calls across the responder and the entity API so
// tests can assert sequencing between them.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, s)
}

func (l *callLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

type fakeResponder struct {
	log *callLog
}

func (f *fakeResponder) Acknowledge(_ context.Context, _ string, ephemeral, _ bool) error {
	f.log.add(fmt.Sprintf("acknowledge ephemeral=%t", ephemeral))
	return nil
}

func (f *fakeResponder) Respond(_ context.Context, _ string, content string, ephemeral bool, comps ...interaction.Component) error {
	ids := make([]string, len(comps))
	for i, c := range comps {
		ids[i] = c.CustomID
	}
	f.log.add(fmt.Sprintf("respond ephemeral=%t content=%q components=%s", ephemeral, content, strings.Join(ids, ",")))
	return nil
}

func (f *fakeResponder) FollowUp(_ context.Context, _ string, content string, ephemeral bool) error {
	f.log.add(fmt.Sprintf("followup ephemeral=%t content=%q", ephemeral, content))
	return nil
}

func (f *fakeResponder) DeleteOriginal(_ context.Context, _ string) error {
	f.log.add("delete_original")
	return nil
}

type fakeAPI struct {
	log *callLog

	banErr   error
	purgeErr error

	recent []uint64

	bans   []string
	purges []string
	leaves []uint64
}

func (f *fakeAPI) SelfID() uint64 { return botID }

func (f *fakeAPI) BanMember(_ context.Context, guildID, userID uint64, purgeDays int) error {
	if f.banErr != nil {
		return f.banErr
	}
	call := fmt.Sprintf("ban guild=%d user=%d purge_days=%d", guildID, userID, purgeDays)
	f.log.add(call)
	f.bans = append(f.bans, call)
	return nil
}

func (f *fakeAPI) LeaveGuild(_ context.Context, guildID uint64) error {
	f.log.add(fmt.Sprintf("leave guild=%d", guildID))
	f.leaves = append(f.leaves, guildID)
	return nil
}

func (f *fakeAPI) DeleteMessages(_ context.Context, channelID uint64, messageIDs []uint64) error {
	if f.purgeErr != nil {
		return f.purgeErr
	}
	call := fmt.Sprintf("purge channel=%d count=%d", channelID, len(messageIDs))
	f.log.add(call)
	f.purges = append(f.purges, call)
	return nil
}

func (f *fakeAPI) RecentMessages(_ context.Context, _ uint64, limit int, _ uint64) ([]uint64, error) {
	if len(f.recent) > limit {
		return f.recent[:limit], nil
	}
	return f.recent, nil
}

type fixture struct {
	mod       *Module
	api       *fakeAPI
	responder *fakeResponder
	log       *callLog
	disp      *interaction.Dispatcher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := state.NewStore(zap.NewNop())
	st.ApplySnapshot(state.Snapshot{
		Guild: state.Guild{ID: guildID, Name: "guild", OwnerID: ownerID},
		Roles: []state.Role{
			{ID: guildID, Name: "@everyone"},
			{ID: 30, Name: "mods", Permissions: state.PermBanMembers | state.PermKickMembers | state.PermManageMessages, Position: 5},
			{ID: 31, Name: "bots", Permissions: state.PermBanMembers | state.PermManageMessages, Position: 6},
			{ID: 32, Name: "members", Position: 1},
		},
		Members: []state.MemberState{
			{User: state.User{ID: ownerID, Username: "owner"}},
			{User: state.User{ID: modID, Username: "mod"}, RoleIDs: []uint64{30}},
			{User: state.User{ID: plebID, Username: "pleb"}, RoleIDs: []uint64{32}},
			{User: state.User{ID: botID, Username: "bot", Bot: true}, RoleIDs: []uint64{31}},
		},
	})

	log := &callLog{}
	api := &fakeAPI{log: log}
	responder := &fakeResponder{log: log}
	m := New(zap.NewNop(), st, api, nil)
	disp := interaction.NewDispatcher(zap.NewNop(), responder, time.Minute)
	m.Register(disp)
	return &fixture{mod: m, api: api, responder: responder, log: log, disp: disp}
}

func (f *fixture) invoke(userID uint64, opts map[string]any) *interaction.Invocation {
	return &interaction.Invocation{
		Session:   interaction.NewSession("tok", userID, guildID, 2, time.Minute, f.responder),
		Options:   interaction.NewOptions(opts),
		UserID:    userID,
		GuildID:   guildID,
		ChannelID: 2,
	}
}

func TestBanDefaultsPurgeDaysToZero(t *testing.T) {
	f := newFixture(t)

	f.mod.Ban(context.Background(), f.invoke(modID, map[string]any{"user": targetID}))

	require.Len(t, f.api.bans, 1)
	assert.Equal(t, fmt.Sprintf("ban guild=%d user=%d purge_days=0", guildID, targetID), f.api.bans[0])
}

func TestBanClampsPurgeDays(t *testing.T) {
	f := newFixture(t)

	f.mod.Ban(context.Background(), f.invoke(modID, map[string]any{"user": targetID, "del_days": int64(30)}))

	require.Len(t, f.api.bans, 1)
	assert.Contains(t, f.api.bans[0], "purge_days=7")
}

func TestBanIsEphemeralThroughout(t *testing.T) {
	f := newFixture(t)

	f.mod.Ban(context.Background(), f.invoke(modID, map[string]any{"user": targetID}))

	calls := f.log.all()
	require.NotEmpty(t, calls)
	assert.Equal(t, "acknowledge ephemeral=true", calls[0])
	assert.Contains(t, calls[len(calls)-1], "followup ephemeral=true")
}

func TestBanRequiresInvokerPermission(t *testing.T) {
	f := newFixture(t)

	f.mod.Ban(context.Background(), f.invoke(plebID, map[string]any{"user": uint64(13)}))

	assert.Empty(t, f.api.bans)
	calls := f.log.all()
	require.Len(t, calls, 2)
	assert.Contains(t, calls[1], "required permissions")
}

func TestBanRefusesHigherRankedTarget(t *testing.T) {
	f := newFixture(t)

	// The owner invokes, but the bot itself cannot touch the owner.
	f.mod.Ban(context.Background(), f.invoke(modID, map[string]any{"user": ownerID}))

	assert.Empty(t, f.api.bans)
	calls := f.log.all()
	require.Len(t, calls, 2)
	assert.Contains(t, calls[1], "too powerful")
}

func TestBanTransportFailureYieldsPrivateMessage(t *testing.T) {
	f := newFixture(t)
	f.api.banErr = errors.New("rest exploded")

	f.mod.Ban(context.Background(), f.invoke(modID, map[string]any{"user": targetID}))

	calls := f.log.all()
	require.Len(t, calls, 2)
	assert.Contains(t, calls[1], "followup ephemeral=true")
	assert.Contains(t, calls[1], "went wrong")
}

func TestBanUserContextBansResolvedTarget(t *testing.T) {
	f := newFixture(t)

	f.disp.HandleContextCommand(context.Background(), "tok",
		interaction.UserCommand, "Ban User", targetID, modID, guildID, 2)

	require.Len(t, f.api.bans, 1)
	assert.Equal(t, fmt.Sprintf("ban guild=%d user=%d purge_days=0", guildID, targetID), f.api.bans[0])
	calls := f.log.all()
	require.NotEmpty(t, calls)
	assert.Equal(t, "acknowledge ephemeral=true", calls[0])
}

func TestBanUserContextChecksRankLikeSlashBan(t *testing.T) {
	f := newFixture(t)

	f.disp.HandleContextCommand(context.Background(), "tok",
		interaction.UserCommand, "Ban User", ownerID, modID, guildID, 2)

	assert.Empty(t, f.api.bans)
	calls := f.log.all()
	require.Len(t, calls, 2)
	assert.Contains(t, calls[1], "too powerful")
}

func TestDeleteMessageContextDeletesTarget(t *testing.T) {
	f := newFixture(t)

	f.disp.HandleContextCommand(context.Background(), "tok",
		interaction.MessageCommand, "Delete Message", 70, modID, guildID, 2)

	calls := f.log.all()
	require.Len(t, calls, 3)
	assert.Equal(t, "acknowledge ephemeral=true", calls[0])
	assert.Equal(t, "purge channel=2 count=1", calls[1])
	assert.Contains(t, calls[2], "followup ephemeral=true")
}

func TestDeleteMessageContextRequiresManageMessages(t *testing.T) {
	f := newFixture(t)

	f.disp.HandleContextCommand(context.Background(), "tok",
		interaction.MessageCommand, "Delete Message", 70, plebID, guildID, 2)

	assert.Empty(t, f.api.purges)
	calls := f.log.all()
	require.Len(t, calls, 2)
	assert.Contains(t, calls[1], "required permissions")
}

func TestSayRepliesWithContent(t *testing.T) {
	f := newFixture(t)

	f.mod.Say(context.Background(), f.invoke(plebID, map[string]any{"content": "hello there"}))

	calls := f.log.all()
	require.Len(t, calls, 1)
	assert.Equal(t, `respond ephemeral=false content="hello there" components=`, calls[0])
}

func TestLeaveRequiresKickPermission(t *testing.T) {
	f := newFixture(t)

	f.mod.Leave(context.Background(), f.invoke(plebID, nil))

	assert.Empty(t, f.api.leaves)
	calls := f.log.all()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0], "ephemeral=true")
}

func TestLeaveAcknowledgesBeforeLeaving(t *testing.T) {
	f := newFixture(t)

	f.mod.Leave(context.Background(), f.invoke(modID, nil))

	calls := f.log.all()
	require.Len(t, calls, 2)
	assert.Contains(t, calls[0], "respond")
	assert.Equal(t, fmt.Sprintf("leave guild=%d", guildID), calls[1])
}

func TestPruneDefaultsTo100(t *testing.T) {
	f := newFixture(t)

	f.mod.Prune(context.Background(), f.invoke(modID, nil))

	calls := f.log.all()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0], "delete 100 messages")
	assert.Contains(t, calls[0], fmt.Sprintf("%d:prune:100", modID))
	assert.Contains(t, calls[0], fmt.Sprintf("%d:delete", modID))
}

func TestPruneClampsAmount(t *testing.T) {
	f := newFixture(t)

	f.mod.Prune(context.Background(), f.invoke(modID, map[string]any{"amount": int64(500)}))
	f.mod.Prune(context.Background(), f.invoke(modID, map[string]any{"amount": int64(1)}))

	calls := f.log.all()
	require.Len(t, calls, 2)
	assert.Contains(t, calls[0], "delete 200 messages")
	assert.Contains(t, calls[1], "delete 2 messages")
}

func TestPruneConfirmPurgesBeforeDeletingPrompt(t *testing.T) {
	f := newFixture(t)
	f.api.recent = []uint64{71, 72, 73}

	f.disp.HandleComponent(context.Background(), "tok",
		fmt.Sprintf("%d:prune:150", modID), modID, guildID, 2, 70)

	calls := f.log.all()
	require.Len(t, calls, 3)
	assert.Contains(t, calls[0], "acknowledge")
	assert.Equal(t, "purge channel=2 count=3", calls[1])
	assert.Equal(t, "delete_original", calls[2])
}

func TestPruneConfirmFailureKeepsPrompt(t *testing.T) {
	f := newFixture(t)
	f.api.recent = []uint64{71}
	f.api.purgeErr = errors.New("rest exploded")

	f.disp.HandleComponent(context.Background(), "tok",
		fmt.Sprintf("%d:prune:150", modID), modID, guildID, 2, 70)

	calls := f.log.all()
	// Acknowledge, then the failure follow-up; the prompt stays.
	require.Len(t, calls, 2)
	assert.Contains(t, calls[1], "followup")
	assert.NotContains(t, f.log.all(), "delete_original")
}

func TestPruneWrongClickerIsIgnored(t *testing.T) {
	f := newFixture(t)
	f.api.recent = []uint64{71}

	f.disp.HandleComponent(context.Background(), "tok",
		fmt.Sprintf("%d:prune:150", modID), plebID, guildID, 2, 70)

	assert.Empty(t, f.log.all())
	assert.Empty(t, f.api.purges)
}

func TestDismissDeletesPromptWithoutPurging(t *testing.T) {
	f := newFixture(t)

	f.disp.HandleComponent(context.Background(), "tok",
		fmt.Sprintf("%d:delete", modID), modID, guildID, 2, 70)

	calls := f.log.all()
	require.Len(t, calls, 2)
	assert.Contains(t, calls[0], "acknowledge")
	assert.Equal(t, "delete_original", calls[1])
	assert.Empty(t, f.api.purges)
}
