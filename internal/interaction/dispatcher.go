package interaction

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// CommandKind distinguishes how a command was invoked. Slash commands carry
// named options; context commands carry a single resolved target instead.
type CommandKind int

const (
	SlashCommand CommandKind = iota
	UserCommand
	MessageCommand
)

func (k CommandKind) String() string {
	switch k {
	case SlashCommand:
		return "slash"
	case UserCommand:
		return "user-context"
	case MessageCommand:
		return "message-context"
	default:
		return "unknown"
	}
}

// Invocation carries a decoded interaction to its handler together with the
// session handle used to answer it.
type Invocation struct {
	Session   *Session
	Kind      CommandKind
	Command   string
	Options   Options
	Custom    CustomID // component interactions only
	UserID    uint64
	GuildID   uint64 // zero outside guilds
	ChannelID uint64
	MessageID uint64 // component interactions only: the prompt message

	// Context command targets, resolved by the transport before dispatch.
	TargetUserID    uint64
	TargetMessageID uint64
}

// CommandFunc handles a slash command invocation.
type CommandFunc func(ctx context.Context, inv *Invocation)

// ComponentFunc handles a component activation, routed by its action tag.
type ComponentFunc func(ctx context.Context, inv *Invocation)

// commandKey routes registrations per invocation kind: the platform allows
// a slash command and a context command to share a name.
type commandKey struct {
	kind CommandKind
	name string
}

// Dispatcher routes inbound interactions to registered handlers, creating a
// fresh session per interaction. Registration happens during startup and is
// not synchronized; handlers run on the caller's goroutine.
type Dispatcher struct {
	logger     *zap.SugaredLogger
	responder  Responder
	ttl        time.Duration
	commands   map[commandKey]CommandFunc
	components map[string]ComponentFunc
}

func NewDispatcher(log *zap.Logger, r Responder, ttl time.Duration) *Dispatcher {
	return &Dispatcher{
		logger:     log.Sugar(),
		responder:  r,
		ttl:        ttl,
		commands:   make(map[commandKey]CommandFunc),
		components: make(map[string]ComponentFunc),
	}
}

func (d *Dispatcher) RegisterCommand(name string, fn CommandFunc) {
	d.commands[commandKey{SlashCommand, name}] = fn
}

func (d *Dispatcher) RegisterUserCommand(name string, fn CommandFunc) {
	d.commands[commandKey{UserCommand, name}] = fn
}

func (d *Dispatcher) RegisterMessageCommand(name string, fn CommandFunc) {
	d.commands[commandKey{MessageCommand, name}] = fn
}

func (d *Dispatcher) RegisterComponent(action string, fn ComponentFunc) {
	d.components[action] = fn
}

// HandleCommand resolves the handler for a slash command interaction.
func (d *Dispatcher) HandleCommand(ctx context.Context, token, name string, opts Options, userID, guildID, channelID uint64) {
	d.dispatchCommand(ctx, &Invocation{
		Session:   NewSession(token, userID, guildID, channelID, d.ttl, d.responder),
		Kind:      SlashCommand,
		Command:   name,
		Options:   opts,
		UserID:    userID,
		GuildID:   guildID,
		ChannelID: channelID,
	})
}

// HandleContextCommand resolves the handler for a user- or message-context
// command. targetID is the entity the invoker picked; it lands on the
// invocation's target field matching the kind.
func (d *Dispatcher) HandleContextCommand(ctx context.Context, token string, kind CommandKind, name string, targetID, userID, guildID, channelID uint64) {
	inv := &Invocation{
		Session:   NewSession(token, userID, guildID, channelID, d.ttl, d.responder),
		Kind:      kind,
		Command:   name,
		UserID:    userID,
		GuildID:   guildID,
		ChannelID: channelID,
	}
	switch kind {
	case UserCommand:
		inv.TargetUserID = targetID
	case MessageCommand:
		inv.TargetMessageID = targetID
	default:
		d.logger.Errorf("Dropping context command %q with non-context kind %s.", name, kind)
		return
	}
	d.dispatchCommand(ctx, inv)
}

// dispatchCommand is the shared resolution step for every command kind.
// Unrecognized names answer the user with a generic ephemeral failure
// instead of raising an error back to the transport.
func (d *Dispatcher) dispatchCommand(ctx context.Context, inv *Invocation) {
	fn, ok := d.commands[commandKey{inv.Kind, inv.Command}]
	if !ok {
		d.logger.Infof("Received unknown %s command %q from user %d.", inv.Kind, inv.Command, inv.UserID)
		if err := inv.Session.Respond(ctx, "I can't handle that command right now :(", true); err != nil {
			d.logger.Errorf("Failed to reply to unknown command %q: %s.", inv.Command, err)
		}
		return
	}
	fn(ctx, inv)
}

// HandleComponent decodes the component state and authorizes the click. A
// click by anyone but the encoded originator is dropped without a response
// on purpose: the platform's own interaction-expiry handling informs the
// unauthorized clicker.
func (d *Dispatcher) HandleComponent(ctx context.Context, token, rawID string, userID, guildID, channelID, messageID uint64) {
	cid, err := DecodeCustomID(rawID)
	if err != nil {
		if errors.Is(err, ErrMalformedCustomID) {
			d.logger.Errorf("Dropping component interaction with malformed id %q.", rawID)
		} else {
			d.logger.Errorf("Failed to decode component id %q: %s.", rawID, err)
		}
		return
	}
	if cid.Originator != userID {
		d.logger.Debugf("Dropping component click by user %d on a prompt owned by %d.", userID, cid.Originator)
		return
	}
	fn, ok := d.components[cid.Action]
	if !ok {
		d.logger.Errorf("No handler registered for component action %q.", cid.Action)
		return
	}
	fn(ctx, &Invocation{
		Session:   NewSession(token, userID, guildID, channelID, d.ttl, d.responder),
		Custom:    cid,
		UserID:    userID,
		GuildID:   guildID,
		ChannelID: channelID,
		MessageID: messageID,
	})
}
