package discord

import (
	"github.com/bwmarrin/discordgo"

	"github.com/PrimeAPI/JDA/internal/interaction"
	"github.com/PrimeAPI/JDA/internal/state"
	"github.com/PrimeAPI/JDA/internal/util"
)

func (d *Discord) onReady(_ *discordgo.Session, e *discordgo.Ready) {
	d.selfID = util.MustParseSnowflake(e.User.ID)
	d.logger.Infof("Logged in Discord API as %s.", e.User)
	d.registerCommands()
}

// Guilds

func (d *Discord) onGuildCreate(_ *discordgo.Session, e *discordgo.GuildCreate) {
	guildID := util.MustParseSnowflake(e.ID)
	if !d.mirrors(guildID) {
		d.logger.Debugf("Not mirroring guild %d that is not in the allowlist.", guildID)
		return
	}
	d.state.Apply(state.SnapshotEvent{Snapshot: convertSnapshot(e.Guild)})
}

func (d *Discord) onGuildUpdate(_ *discordgo.Session, e *discordgo.GuildUpdate) {
	guildID := util.MustParseSnowflake(e.ID)
	d.state.Apply(state.UpdateEvent{Ref: state.GuildRef(guildID), Fields: guildFields(e.Guild)})
}

func (d *Discord) onGuildDelete(_ *discordgo.Session, e *discordgo.GuildDelete) {
	guildID := util.MustParseSnowflake(e.ID)
	if e.Unavailable {
		// Outage, not a leave: keep the cached data, block mutations.
		d.state.SetAvailable(guildID, false)
		return
	}
	d.state.Apply(state.RemovalEvent{Ref: state.GuildRef(guildID)})
}

// Channels

func (d *Discord) onChannelCreate(_ *discordgo.Session, e *discordgo.ChannelCreate) {
	d.state.AddChannel(convertChannel(e.Channel))
}

func (d *Discord) onChannelUpdate(_ *discordgo.Session, e *discordgo.ChannelUpdate) {
	d.state.Apply(state.UpdateEvent{
		Ref: state.Ref{
			Kind:    state.KindChannel,
			GuildID: util.ParseSnowflakeOrZero(e.GuildID),
			ID:      util.MustParseSnowflake(e.ID),
		},
		Fields: channelFields(e.Channel),
	})
}

func (d *Discord) onChannelDelete(_ *discordgo.Session, e *discordgo.ChannelDelete) {
	d.state.Apply(state.RemovalEvent{Ref: state.Ref{
		Kind:    state.KindChannel,
		GuildID: util.ParseSnowflakeOrZero(e.GuildID),
		ID:      util.MustParseSnowflake(e.ID),
	}})
}

// Roles

func (d *Discord) onGuildRoleCreate(_ *discordgo.Session, e *discordgo.GuildRoleCreate) {
	d.state.AddRole(convertRole(util.MustParseSnowflake(e.GuildID), e.Role))
}

func (d *Discord) onGuildRoleUpdate(_ *discordgo.Session, e *discordgo.GuildRoleUpdate) {
	d.state.Apply(state.UpdateEvent{
		Ref: state.Ref{
			Kind:    state.KindRole,
			GuildID: util.MustParseSnowflake(e.GuildID),
			ID:      util.MustParseSnowflake(e.Role.ID),
		},
		Fields: roleFields(e.Role),
	})
}

func (d *Discord) onGuildRoleDelete(_ *discordgo.Session, e *discordgo.GuildRoleDelete) {
	d.state.Apply(state.RemovalEvent{Ref: state.Ref{
		Kind:    state.KindRole,
		GuildID: util.MustParseSnowflake(e.GuildID),
		ID:      util.MustParseSnowflake(e.RoleID),
	}})
}

// Members

func (d *Discord) onGuildMemberAdd(_ *discordgo.Session, e *discordgo.GuildMemberAdd) {
	d.state.AddMember(util.MustParseSnowflake(e.GuildID), convertMember(e.Member, nil))
}

func (d *Discord) onGuildMemberUpdate(_ *discordgo.Session, e *discordgo.GuildMemberUpdate) {
	guildID := util.MustParseSnowflake(e.GuildID)
	userID := util.MustParseSnowflake(e.User.ID)
	d.state.Apply(state.UpdateEvent{
		Ref:    state.Ref{Kind: state.KindMember, GuildID: guildID, ID: userID},
		Fields: map[string]any{"nick": e.Nick},
	})
	d.state.SetMemberRoles(guildID, userID, convertRoleIDs(e.Roles))
}

func (d *Discord) onGuildMemberRemove(_ *discordgo.Session, e *discordgo.GuildMemberRemove) {
	d.state.Apply(state.RemovalEvent{Ref: state.Ref{
		Kind:    state.KindMember,
		GuildID: util.MustParseSnowflake(e.GuildID),
		ID:      util.MustParseSnowflake(e.User.ID),
	}})
}

// Messages

func (d *Discord) onMessageCreate(_ *discordgo.Session, e *discordgo.MessageCreate) {
	if e.GuildID == "" {
		return
	}
	d.state.AddMessage(convertMessage(e.Message))
}

func (d *Discord) onMessageUpdate(_ *discordgo.Session, e *discordgo.MessageUpdate) {
	if e.GuildID == "" {
		return
	}
	// Edits for messages that were never cached are dropped by the store;
	// there is no partial object to edit.
	d.state.Apply(state.UpdateEvent{
		Ref: state.Ref{
			Kind:    state.KindMessage,
			GuildID: util.MustParseSnowflake(e.GuildID),
			ID:      util.MustParseSnowflake(e.ID),
		},
		Fields: messageFields(e.Message),
	})
}

func (d *Discord) onMessageDelete(_ *discordgo.Session, e *discordgo.MessageDelete) {
	if e.GuildID == "" {
		return
	}
	d.state.Apply(state.RemovalEvent{Ref: state.Ref{
		Kind:    state.KindMessage,
		GuildID: util.MustParseSnowflake(e.GuildID),
		ID:      util.MustParseSnowflake(e.ID),
	}})
}

func (d *Discord) onMessageDeleteBulk(_ *discordgo.Session, e *discordgo.MessageDeleteBulk) {
	if e.GuildID == "" {
		return
	}
	guildID := util.MustParseSnowflake(e.GuildID)
	for _, id := range e.Messages {
		d.state.Apply(state.RemovalEvent{Ref: state.Ref{
			Kind:    state.KindMessage,
			GuildID: guildID,
			ID:      util.MustParseSnowflake(id),
		}})
	}
}

// Voice

func (d *Discord) onVoiceStateUpdate(_ *discordgo.Session, e *discordgo.VoiceStateUpdate) {
	if e.GuildID == "" {
		return
	}
	d.state.SetVoiceState(convertVoiceState(e.VoiceState))
}

// Interactions

func (d *Discord) onInteractionCreate(_ *discordgo.Session, e *discordgo.InteractionCreate) {
	if d.dispatcher == nil {
		return
	}
	user := e.User
	if user == nil && e.Member != nil {
		user = e.Member.User
	}
	if user == nil {
		return
	}
	userID := util.MustParseSnowflake(user.ID)
	guildID := util.ParseSnowflakeOrZero(e.GuildID)
	channelID := util.ParseSnowflakeOrZero(e.ChannelID)
	d.trackInteraction(e.Interaction)

	switch e.Type {
	case discordgo.InteractionApplicationCommand:
		data := e.ApplicationCommandData()
		switch data.CommandType {
		case discordgo.UserApplicationCommand:
			d.dispatcher.HandleContextCommand(d.ctx, e.Token, interaction.UserCommand, data.Name,
				util.MustParseSnowflake(data.TargetID), userID, guildID, channelID)
		case discordgo.MessageApplicationCommand:
			d.dispatcher.HandleContextCommand(d.ctx, e.Token, interaction.MessageCommand, data.Name,
				util.MustParseSnowflake(data.TargetID), userID, guildID, channelID)
		default:
			d.dispatcher.HandleCommand(d.ctx, e.Token, data.Name, convertOptions(data.Options), userID, guildID, channelID)
		}
	case discordgo.InteractionMessageComponent:
		data := e.MessageComponentData()
		var messageID uint64
		if e.Message != nil {
			messageID = util.MustParseSnowflake(e.Message.ID)
		}
		d.dispatcher.HandleComponent(d.ctx, e.Token, data.CustomID, userID, guildID, channelID, messageID)
	}
}

func convertOptions(opts []*discordgo.ApplicationCommandInteractionDataOption) interaction.Options {
	values := make(map[string]any, len(opts))
	for _, o := range opts {
		switch o.Type {
		case discordgo.ApplicationCommandOptionInteger:
			values[o.Name] = o.IntValue()
		case discordgo.ApplicationCommandOptionString:
			values[o.Name] = o.StringValue()
		case discordgo.ApplicationCommandOptionBoolean:
			values[o.Name] = o.BoolValue()
		case discordgo.ApplicationCommandOptionUser,
			discordgo.ApplicationCommandOptionChannel,
			discordgo.ApplicationCommandOptionRole:
			values[o.Name] = util.MustParseSnowflake(o.Value.(string))
		}
	}
	return interaction.NewOptions(values)
}
