package discord

import (
	"github.com/bwmarrin/discordgo"

	"github.com/PrimeAPI/JDA/internal/state"
	"github.com/PrimeAPI/JDA/internal/util"
)

// Conversions from discordgo wire types into the cache's entities. Ids on
// the wire are decimal strings; the cache keys everything by uint64.

func convertGuild(g *discordgo.Guild) state.Guild {
	return state.Guild{
		ID:           util.MustParseSnowflake(g.ID),
		Name:         g.Name,
		Icon:         g.Icon,
		OwnerID:      util.ParseSnowflakeOrZero(g.OwnerID),
		AFKChannelID: util.ParseSnowflakeOrZero(g.AfkChannelID),
		AFKTimeout:   g.AfkTimeout,
		Region:       g.Region,
	}
}

func convertChannel(c *discordgo.Channel) state.Channel {
	t := state.ChannelText
	if c.Type == discordgo.ChannelTypeGuildVoice {
		t = state.ChannelVoice
	}
	return state.Channel{
		ID:      util.MustParseSnowflake(c.ID),
		GuildID: util.ParseSnowflakeOrZero(c.GuildID),
		Name:    c.Name,
		Topic:   c.Topic,
		Type:    t,
	}
}

func convertRole(guildID uint64, r *discordgo.Role) state.Role {
	return state.Role{
		ID:          util.MustParseSnowflake(r.ID),
		GuildID:     guildID,
		Name:        r.Name,
		Permissions: state.Permissions(r.Permissions),
		Position:    r.Position,
	}
}

func convertUser(u *discordgo.User) state.User {
	return state.User{
		ID:            util.MustParseSnowflake(u.ID),
		Username:      u.Username,
		Discriminator: u.Discriminator,
		Avatar:        u.Avatar,
		Bot:           u.Bot,
	}
}

func convertMember(m *discordgo.Member, voice *state.VoiceState) state.MemberState {
	roleIDs := make([]uint64, 0, len(m.Roles))
	for _, r := range m.Roles {
		roleIDs = append(roleIDs, util.MustParseSnowflake(r))
	}
	return state.MemberState{
		User:     convertUser(m.User),
		Nick:     m.Nick,
		JoinedAt: m.JoinedAt,
		RoleIDs:  roleIDs,
		Voice:    voice,
	}
}

func convertRoleIDs(roles []string) []uint64 {
	ids := make([]uint64, 0, len(roles))
	for _, r := range roles {
		ids = append(ids, util.MustParseSnowflake(r))
	}
	return ids
}

func convertMessage(m *discordgo.Message) state.Message {
	mentions := make([]uint64, 0, len(m.Mentions))
	for _, u := range m.Mentions {
		mentions = append(mentions, util.MustParseSnowflake(u.ID))
	}
	msg := state.Message{
		ID:               util.MustParseSnowflake(m.ID),
		ChannelID:        util.MustParseSnowflake(m.ChannelID),
		GuildID:          util.ParseSnowflakeOrZero(m.GuildID),
		Content:          m.Content,
		Timestamp:        m.Timestamp,
		EditedAt:         m.EditedTimestamp,
		TTS:              m.TTS,
		MentionsEveryone: m.MentionEveryone,
		MentionIDs:       mentions,
	}
	if m.Author != nil {
		msg.AuthorID = util.MustParseSnowflake(m.Author.ID)
	}
	return msg
}

func convertVoiceState(vs *discordgo.VoiceState) state.VoiceState {
	return state.VoiceState{
		GuildID:   util.ParseSnowflakeOrZero(vs.GuildID),
		UserID:    util.MustParseSnowflake(vs.UserID),
		ChannelID: util.ParseSnowflakeOrZero(vs.ChannelID),
		SessionID: vs.SessionID,
		Mute:      vs.Mute,
		Deaf:      vs.Deaf,
		SelfMute:  vs.SelfMute,
		SelfDeaf:  vs.SelfDeaf,
	}
}

func convertSnapshot(g *discordgo.Guild) state.Snapshot {
	guildID := util.MustParseSnowflake(g.ID)

	voiceByUser := make(map[string]*state.VoiceState, len(g.VoiceStates))
	for _, vs := range g.VoiceStates {
		conv := convertVoiceState(vs)
		conv.GuildID = guildID
		voiceByUser[vs.UserID] = &conv
	}

	snap := state.Snapshot{Guild: convertGuild(g)}
	for _, c := range g.Channels {
		snap.Channels = append(snap.Channels, convertChannel(c))
	}
	for _, r := range g.Roles {
		snap.Roles = append(snap.Roles, convertRole(guildID, r))
	}
	for _, m := range g.Members {
		snap.Members = append(snap.Members, convertMember(m, voiceByUser[m.User.ID]))
	}
	return snap
}

// guildFields extracts the patchable guild fields from an update payload.
func guildFields(g *discordgo.Guild) map[string]any {
	return map[string]any{
		"name":           g.Name,
		"icon":           g.Icon,
		"owner_id":       util.ParseSnowflakeOrZero(g.OwnerID),
		"afk_channel_id": util.ParseSnowflakeOrZero(g.AfkChannelID),
		"afk_timeout":    g.AfkTimeout,
		"region":         g.Region,
	}
}

func channelFields(c *discordgo.Channel) map[string]any {
	return map[string]any{
		"name":  c.Name,
		"topic": c.Topic,
	}
}

func roleFields(r *discordgo.Role) map[string]any {
	return map[string]any{
		"name":        r.Name,
		"permissions": state.Permissions(r.Permissions),
		"position":    r.Position,
	}
}

func messageFields(m *discordgo.Message) map[string]any {
	fields := map[string]any{
		"content":           m.Content,
		"mentions_everyone": m.MentionEveryone,
	}
	if m.EditedTimestamp != nil {
		fields["edited_at"] = m.EditedTimestamp
	}
	if len(m.Mentions) > 0 {
		mentions := make([]uint64, 0, len(m.Mentions))
		for _, u := range m.Mentions {
			mentions = append(mentions, util.MustParseSnowflake(u.ID))
		}
		fields["mention_ids"] = mentions
	}
	return fields
}
