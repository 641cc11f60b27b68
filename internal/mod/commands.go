package mod

import (
	"context"
	"fmt"
	"strconv"

	"github.com/PrimeAPI/JDA/internal/interaction"
	"github.com/PrimeAPI/JDA/internal/state"
)

const (
	actionPrune  = "prune"
	actionDelete = "delete"

	pruneDefault = 100
	pruneMin     = 2
	pruneMax     = 200

	purgeDaysMax = 7
)

func clamp(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Ban handles /ban user:<user> [del_days:<n>]. The whole exchange is
// ephemeral: the command is deferred privately and every outcome message is
// visible only to the invoker.
func (m *Module) Ban(ctx context.Context, inv *interaction.Invocation) {
	sess := inv.Session
	if inv.GuildID == 0 {
		return
	}
	if err := sess.Defer(ctx, true); err != nil {
		m.logger.Errorf("Failed to defer ban command: %s.", err)
		return
	}

	target, ok := inv.Options.Snowflake("user")
	if !ok {
		m.followUpOrLog(ctx, sess, "You must name a user to ban.")
		return
	}
	purgeDays := 0
	if v, ok := inv.Options.Int("del_days"); ok {
		purgeDays = int(clamp(v, 0, purgeDaysMax))
	}
	m.banTarget(ctx, inv, target, purgeDays)
}

// BanUser is the user-context variant of Ban: the target arrives resolved on
// the invocation and message purging is not offered.
func (m *Module) BanUser(ctx context.Context, inv *interaction.Invocation) {
	sess := inv.Session
	if inv.GuildID == 0 {
		return
	}
	if err := sess.Defer(ctx, true); err != nil {
		m.logger.Errorf("Failed to defer ban command: %s.", err)
		return
	}
	m.banTarget(ctx, inv, inv.TargetUserID, 0)
}

// banTarget runs the permission checks and the ban itself; callers have
// already deferred the session ephemerally.
func (m *Module) banTarget(ctx context.Context, inv *interaction.Invocation, target uint64, purgeDays int) {
	sess := inv.Session
	if !m.state.MemberPermissions(inv.GuildID, inv.UserID).Has(state.PermBanMembers) {
		m.followUpOrLog(ctx, sess, "You do not have the required permissions to ban users from this server.")
		return
	}
	if !m.state.MemberPermissions(inv.GuildID, m.api.SelfID()).Has(state.PermBanMembers) {
		m.followUpOrLog(ctx, sess, "I don't have the required permissions to ban users from this server.")
		return
	}
	if !m.state.CanInteract(inv.GuildID, m.api.SelfID(), target) {
		m.followUpOrLog(ctx, sess, "This user is too powerful for me to ban.")
		return
	}

	if err := m.api.BanMember(ctx, inv.GuildID, target, purgeDays); err != nil {
		m.logger.Errorf("Failed to ban user %d in guild %d: %s.", target, inv.GuildID, err)
		m.followUpOrLog(ctx, sess, "Something went wrong while banning that user.")
		return
	}
	m.record(ctx, "ban", inv.GuildID, inv.UserID, target, fmt.Sprintf("purge_days=%d", purgeDays))
	m.followUpOrLog(ctx, sess, fmt.Sprintf("Banned user %s.", m.displayName(target)))
}

func (m *Module) displayName(userID uint64) string {
	if u, ok := m.state.User(userID); ok && u.Username != "" {
		return u.Username
	}
	return strconv.FormatUint(userID, 10)
}

// Say handles /say content:<text> with an immediate public reply.
func (m *Module) Say(ctx context.Context, inv *interaction.Invocation) {
	content, ok := inv.Options.String("content")
	if !ok || content == "" {
		if err := inv.Session.Respond(ctx, "There is nothing to say.", true); err != nil {
			m.logger.Errorf("Failed to reply to say command: %s.", err)
		}
		return
	}
	if err := inv.Session.Respond(ctx, content, false); err != nil {
		m.logger.Errorf("Failed to reply to say command: %s.", err)
	}
}

// Leave handles /leave: acknowledge first, then leave the guild, in that
// order, so the farewell reply is delivered before the session's guild is
// gone.
func (m *Module) Leave(ctx context.Context, inv *interaction.Invocation) {
	sess := inv.Session
	if inv.GuildID == 0 {
		return
	}
	if !m.state.MemberPermissions(inv.GuildID, inv.UserID).Has(state.PermKickMembers) {
		if err := sess.Respond(ctx, "You do not have permissions to kick me.", true); err != nil {
			m.logger.Errorf("Failed to reply to leave command: %s.", err)
		}
		return
	}
	if err := sess.Respond(ctx, "Leaving the server... :wave:", false); err != nil {
		m.logger.Errorf("Failed to reply to leave command: %s.", err)
		return
	}
	if err := m.api.LeaveGuild(ctx, inv.GuildID); err != nil {
		m.logger.Errorf("Failed to leave guild %d: %s.", inv.GuildID, err)
		return
	}
	m.record(ctx, "leave", inv.GuildID, inv.UserID, 0, "")
}

// Prune handles /prune [amount:<n>]: it answers with a confirmation prompt
// whose buttons carry the invoker and the clamped amount in their encoded
// ids.
func (m *Module) Prune(ctx context.Context, inv *interaction.Invocation) {
	sess := inv.Session
	if inv.GuildID == 0 {
		return
	}
	amount := int64(pruneDefault)
	if v, ok := inv.Options.Int("amount"); ok {
		amount = clamp(v, pruneMin, pruneMax)
	}

	dismissID, err := interaction.EncodeCustomID(inv.UserID, actionDelete)
	if err != nil {
		m.logger.Errorf("Failed to encode dismiss button id: %s.", err)
		return
	}
	confirmID, err := interaction.EncodeCustomID(inv.UserID, actionPrune, strconv.FormatInt(amount, 10))
	if err != nil {
		m.logger.Errorf("Failed to encode confirm button id: %s.", err)
		return
	}

	content := fmt.Sprintf("This will delete %d messages.\nAre you sure?", amount)
	err = sess.Respond(ctx, content, false,
		interaction.Component{CustomID: dismissID, Label: "Nevermind!", Style: interaction.StyleSecondary},
		interaction.Component{CustomID: confirmID, Label: "Yes!", Style: interaction.StyleDanger},
	)
	if err != nil {
		m.logger.Errorf("Failed to send prune prompt: %s.", err)
	}
}

// PruneConfirmed runs the destructive stage. The purge call is awaited and
// must succeed before the prompt is deleted; a failed purge leaves the
// prompt in place so the failure is never masked.
func (m *Module) PruneConfirmed(ctx context.Context, inv *interaction.Invocation) {
	sess := inv.Session
	if err := sess.Defer(ctx, false); err != nil {
		m.logger.Errorf("Failed to acknowledge prune confirmation: %s.", err)
		return
	}

	amount := int64(pruneDefault)
	if len(inv.Custom.Params) > 0 {
		if v, err := strconv.ParseInt(inv.Custom.Params[0], 10, 64); err == nil {
			amount = clamp(v, pruneMin, pruneMax)
		}
	}

	ids, err := m.api.RecentMessages(ctx, inv.ChannelID, int(amount), inv.MessageID)
	if err != nil {
		m.logger.Errorf("Failed to collect messages for prune in channel %d: %s.", inv.ChannelID, err)
		m.followUpOrLog(ctx, sess, "Something went wrong while collecting messages.")
		return
	}
	if len(ids) > 0 {
		if err := m.api.DeleteMessages(ctx, inv.ChannelID, ids); err != nil {
			m.logger.Errorf("Failed to prune %d messages in channel %d: %s.", len(ids), inv.ChannelID, err)
			m.followUpOrLog(ctx, sess, "Something went wrong while pruning messages.")
			return
		}
	}
	m.record(ctx, "prune", inv.GuildID, inv.UserID, 0, fmt.Sprintf("channel=%d count=%d", inv.ChannelID, len(ids)))

	if err := sess.DeleteOriginal(ctx); err != nil {
		m.logger.Errorf("Failed to delete prune prompt: %s.", err)
	}
}

// DeleteMessage is the message-context variant for removing a single
// message, gated on the manage-messages permission.
func (m *Module) DeleteMessage(ctx context.Context, inv *interaction.Invocation) {
	sess := inv.Session
	if inv.GuildID == 0 {
		return
	}
	if err := sess.Defer(ctx, true); err != nil {
		m.logger.Errorf("Failed to defer message deletion: %s.", err)
		return
	}
	if !m.state.MemberPermissions(inv.GuildID, inv.UserID).Has(state.PermManageMessages) {
		m.followUpOrLog(ctx, sess, "You do not have the required permissions to delete messages here.")
		return
	}
	if err := m.api.DeleteMessages(ctx, inv.ChannelID, []uint64{inv.TargetMessageID}); err != nil {
		m.logger.Errorf("Failed to delete message %d in channel %d: %s.", inv.TargetMessageID, inv.ChannelID, err)
		m.followUpOrLog(ctx, sess, "Something went wrong while deleting that message.")
		return
	}
	m.record(ctx, "delete_message", inv.GuildID, inv.UserID, 0, fmt.Sprintf("channel=%d message=%d", inv.ChannelID, inv.TargetMessageID))
	m.followUpOrLog(ctx, sess, "Deleted the message.")
}

// PromptDismissed removes the prompt without performing any action.
func (m *Module) PromptDismissed(ctx context.Context, inv *interaction.Invocation) {
	sess := inv.Session
	if err := sess.Defer(ctx, false); err != nil {
		m.logger.Errorf("Failed to acknowledge prompt dismissal: %s.", err)
		return
	}
	if err := sess.DeleteOriginal(ctx); err != nil {
		m.logger.Errorf("Failed to delete dismissed prompt: %s.", err)
	}
}
