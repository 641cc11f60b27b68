package mod

import (
	"context"

	"go.uber.org/zap"

	"github.com/PrimeAPI/JDA/internal/interaction"
	"github.com/PrimeAPI/JDA/internal/state"
)

// EntityAPI is the outbound request collaborator for entity-mutating calls.
// Calls complete when the collaborator's REST round trip completes; this
// package never retries them.
type EntityAPI interface {
	SelfID() uint64
	BanMember(ctx context.Context, guildID, userID uint64, purgeDays int) error
	LeaveGuild(ctx context.Context, guildID uint64) error
	DeleteMessages(ctx context.Context, channelID uint64, messageIDs []uint64) error
	// RecentMessages lists up to limit message ids in the channel, walking
	// backwards from beforeID (zero means newest).
	RecentMessages(ctx context.Context, channelID uint64, limit int, beforeID uint64) ([]uint64, error)
}

// AuditSink records completed moderation actions. A nil sink disables
// auditing.
type AuditSink interface {
	Record(ctx context.Context, action string, guildID, actorID, targetID uint64, detail string) error
}

// Module bundles the moderation command set: ban, say, leave, the two-stage
// prune prompt, and the context-menu variants for banning and deleting.
type Module struct {
	logger *zap.SugaredLogger
	state  *state.Store
	api    EntityAPI
	audit  AuditSink
}

func New(log *zap.Logger, st *state.Store, api EntityAPI, audit AuditSink) *Module {
	return &Module{logger: log.Sugar(), state: st, api: api, audit: audit}
}

// Register binds every command and component action to the dispatcher.
func (m *Module) Register(d *interaction.Dispatcher) {
	d.RegisterCommand("ban", m.Ban)
	d.RegisterCommand("say", m.Say)
	d.RegisterCommand("leave", m.Leave)
	d.RegisterCommand("prune", m.Prune)
	d.RegisterUserCommand("Ban User", m.BanUser)
	d.RegisterMessageCommand("Delete Message", m.DeleteMessage)
	d.RegisterComponent(actionPrune, m.PruneConfirmed)
	d.RegisterComponent(actionDelete, m.PromptDismissed)
}

func (m *Module) record(ctx context.Context, action string, guildID, actorID, targetID uint64, detail string) {
	if m.audit == nil {
		return
	}
	if err := m.audit.Record(ctx, action, guildID, actorID, targetID, detail); err != nil {
		m.logger.Errorf("Failed to record %s action for guild %d: %s.", action, guildID, err)
	}
}

// followUpOrLog delivers a user-facing message over the session channel and
// only logs delivery failures; handler outcomes never propagate upward.
func (m *Module) followUpOrLog(ctx context.Context, sess *interaction.Session, content string) {
	if err := sess.FollowUp(ctx, content); err != nil {
		m.logger.Errorf("Failed to send follow-up for interaction of user %d: %s.", sess.UserID(), err)
	}
}
