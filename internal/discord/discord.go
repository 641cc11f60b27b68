package discord

import (
	"context"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/PrimeAPI/JDA/internal/interaction"
	"github.com/PrimeAPI/JDA/internal/state"
	"github.com/PrimeAPI/JDA/internal/util"
)

type Config struct {
	guilds   uint64Set
	tokenTTL time.Duration
}

func NewConfig(guilds []uint64, tokenTTL time.Duration) *Config {
	return &Config{guilds: newUint64Set(guilds), tokenTTL: tokenTTL}
}

// Discord owns the gateway connection and translates between the platform's
// wire payloads and the core's typed events and outbound calls. Everything
// transport-flavored (auth, reconnects, rate limits, JSON) stays behind the
// discordgo session.
type Discord struct {
	ctx        context.Context
	logger     *zap.SugaredLogger
	session    *discordgo.Session
	config     *Config
	state      *state.Store
	dispatcher *interaction.Dispatcher

	selfID uint64

	// Outbound interaction calls are keyed by token, but the REST layer
	// needs the full interaction reference; live tokens are kept here until
	// they expire.
	interMu sync.Mutex
	inter   map[string]*discordgo.Interaction
}

func NewDiscord(ctx context.Context, log *zap.Logger, auth string, config *Config, st *state.Store) (*Discord, error) {
	s, err := discordgo.New(auth)
	if err != nil {
		return nil, err
	}
	s.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentMessageContent
	return &Discord{
		ctx:     ctx,
		logger:  log.Sugar(),
		session: s,
		config:  config,
		state:   st,
		inter:   make(map[string]*discordgo.Interaction),
	}, nil
}

// SetDispatcher must be called before Connect.
func (d *Discord) SetDispatcher(disp *interaction.Dispatcher) {
	d.dispatcher = disp
}

func (d *Discord) SelfID() uint64 {
	return d.selfID
}

func (d *Discord) addHandlers() {
	d.session.AddHandlerOnce(d.onReady)
	d.session.AddHandler(d.onGuildCreate)
	d.session.AddHandler(d.onGuildUpdate)
	d.session.AddHandler(d.onGuildDelete)
	d.session.AddHandler(d.onChannelCreate)
	d.session.AddHandler(d.onChannelUpdate)
	d.session.AddHandler(d.onChannelDelete)
	d.session.AddHandler(d.onGuildRoleCreate)
	d.session.AddHandler(d.onGuildRoleUpdate)
	d.session.AddHandler(d.onGuildRoleDelete)
	d.session.AddHandler(d.onGuildMemberAdd)
	d.session.AddHandler(d.onGuildMemberUpdate)
	d.session.AddHandler(d.onGuildMemberRemove)
	d.session.AddHandler(d.onMessageCreate)
	d.session.AddHandler(d.onMessageUpdate)
	d.session.AddHandler(d.onMessageDelete)
	d.session.AddHandler(d.onMessageDeleteBulk)
	d.session.AddHandler(d.onVoiceStateUpdate)
	d.session.AddHandler(d.onInteractionCreate)
}

func (d *Discord) Connect() error {
	d.addHandlers()
	return d.session.Open()
}

func (d *Discord) Close() error {
	return d.session.Close()
}

// mirrors reports whether events for the guild should reach the cache.
func (d *Discord) mirrors(guildID uint64) bool {
	return len(d.config.guilds) == 0 || d.config.guilds.contains(guildID)
}

// trackInteraction keeps the token→interaction mapping alive for the token's
// validity window plus a grace period for in-flight calls.
func (d *Discord) trackInteraction(i *discordgo.Interaction) {
	d.interMu.Lock()
	d.inter[i.Token] = i
	d.interMu.Unlock()
	time.AfterFunc(d.config.tokenTTL+time.Minute, func() {
		d.interMu.Lock()
		delete(d.inter, i.Token)
		d.interMu.Unlock()
	})
}

func (d *Discord) interactionByToken(token string) (*discordgo.Interaction, bool) {
	d.interMu.Lock()
	defer d.interMu.Unlock()
	i, ok := d.inter[token]
	return i, ok
}

// registerCommands overwrites the application's global command set with the
// moderation commands.
func (d *Discord) registerCommands() {
	appID := util.FormatSnowflake(d.selfID)
	_, err := d.session.ApplicationCommandBulkOverwrite(appID, "", []*discordgo.ApplicationCommand{
		{
			Name:        "ban",
			Description: "Ban a user from this server. Requires permission to ban users.",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "The user to ban", Required: true},
				{Type: discordgo.ApplicationCommandOptionInteger, Name: "del_days", Description: "Delete messages from the past days."},
			},
		},
		{
			Name:        "say",
			Description: "Makes the bot say what you tell it to",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "content", Description: "What the bot should say", Required: true},
			},
		},
		{
			Name:        "leave",
			Description: "Make the bot leave the server",
		},
		{
			Name:        "prune",
			Description: "Prune messages from this channel",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionInteger, Name: "amount", Description: "How many messages to prune (Default 100)"},
			},
		},
		// Context commands carry no description or options on the wire.
		{
			Name: "Ban User",
			Type: discordgo.UserApplicationCommand,
		},
		{
			Name: "Delete Message",
			Type: discordgo.MessageApplicationCommand,
		},
	})
	if err != nil {
		d.logger.Errorf("Failed to register application commands: %s.", err)
	}
}
