package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/PrimeAPI/JDA/internal/interaction"
	"github.com/PrimeAPI/JDA/internal/util"
)

// Discord implements interaction.Responder and mod.EntityAPI. Every call is
// a single REST round trip through discordgo; retry and backoff live in the
// session's rate limit handling, not here.

var errUnknownToken = fmt.Errorf("interaction token is not tracked")

func (d *Discord) Acknowledge(_ context.Context, token string, ephemeral, deferred bool) error {
	i, ok := d.interactionByToken(token)
	if !ok {
		return errUnknownToken
	}
	if !deferred {
		// A non-deferred acknowledgment without content has no wire form;
		// callers use Respond for that.
		return nil
	}
	resp := &discordgo.InteractionResponse{}
	if i.Type == discordgo.InteractionMessageComponent {
		resp.Type = discordgo.InteractionResponseDeferredMessageUpdate
	} else {
		resp.Type = discordgo.InteractionResponseDeferredChannelMessageWithSource
		resp.Data = &discordgo.InteractionResponseData{}
		if ephemeral {
			resp.Data.Flags = discordgo.MessageFlagsEphemeral
		}
	}
	return d.session.InteractionRespond(i, resp)
}

func (d *Discord) Respond(_ context.Context, token, content string, ephemeral bool, components ...interaction.Component) error {
	i, ok := d.interactionByToken(token)
	if !ok {
		return errUnknownToken
	}
	data := &discordgo.InteractionResponseData{Content: content}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	if len(components) > 0 {
		row := discordgo.ActionsRow{}
		for _, c := range components {
			row.Components = append(row.Components, discordgo.Button{
				Label:    c.Label,
				Style:    convertButtonStyle(c.Style),
				CustomID: c.CustomID,
			})
		}
		data.Components = []discordgo.MessageComponent{row}
	}
	return d.session.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
}

func (d *Discord) FollowUp(_ context.Context, token, content string, ephemeral bool) error {
	i, ok := d.interactionByToken(token)
	if !ok {
		return errUnknownToken
	}
	params := &discordgo.WebhookParams{Content: content}
	if ephemeral {
		params.Flags = discordgo.MessageFlagsEphemeral
	}
	_, err := d.session.FollowupMessageCreate(i, true, params)
	return err
}

func (d *Discord) DeleteOriginal(_ context.Context, token string) error {
	i, ok := d.interactionByToken(token)
	if !ok {
		return errUnknownToken
	}
	return d.session.InteractionResponseDelete(i)
}

func convertButtonStyle(s interaction.ButtonStyle) discordgo.ButtonStyle {
	switch s {
	case interaction.StyleSecondary:
		return discordgo.SecondaryButton
	case interaction.StyleDanger:
		return discordgo.DangerButton
	default:
		return discordgo.PrimaryButton
	}
}

// Entity-mutating calls.

func (d *Discord) BanMember(_ context.Context, guildID, userID uint64, purgeDays int) error {
	return d.session.GuildBanCreate(util.FormatSnowflake(guildID), util.FormatSnowflake(userID), purgeDays)
}

func (d *Discord) LeaveGuild(_ context.Context, guildID uint64) error {
	return d.session.GuildLeave(util.FormatSnowflake(guildID))
}

func (d *Discord) DeleteMessages(_ context.Context, channelID uint64, messageIDs []uint64) error {
	// The bulk endpoint caps at 100 ids per call.
	ids := make([]string, len(messageIDs))
	for i, id := range messageIDs {
		ids[i] = util.FormatSnowflake(id)
	}
	for len(ids) > 0 {
		batch := ids
		if len(batch) > 100 {
			batch = ids[:100]
		}
		if err := d.session.ChannelMessagesBulkDelete(util.FormatSnowflake(channelID), batch); err != nil {
			return err
		}
		ids = ids[len(batch):]
	}
	return nil
}

func (d *Discord) RecentMessages(_ context.Context, channelID uint64, limit int, beforeID uint64) ([]uint64, error) {
	var out []uint64
	before := ""
	if beforeID != 0 {
		before = util.FormatSnowflake(beforeID)
	}
	for len(out) < limit {
		page := limit - len(out)
		if page > 100 {
			page = 100
		}
		ms, err := d.session.ChannelMessages(util.FormatSnowflake(channelID), page, before, "", "")
		if err != nil {
			return nil, err
		}
		if len(ms) == 0 {
			break
		}
		for _, m := range ms {
			out = append(out, util.MustParseSnowflake(m.ID))
		}
		before = ms[len(ms)-1].ID
		if len(ms) < page {
			break
		}
	}
	return out, nil
}
