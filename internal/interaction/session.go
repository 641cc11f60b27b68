package interaction

import (
	"context"
	"sync"
	"time"
)

// Status is the acknowledgment state of an interaction session.
type Status int

const (
	// StatusReceived is the initial state; no token use has happened yet.
	StatusReceived Status = iota
	// StatusDeferred means the interaction was acknowledged without content.
	StatusDeferred
	// StatusResponded means the original response was sent.
	StatusResponded
	// StatusClosed means the original response was deleted; the session
	// rejects further sends.
	StatusClosed
)

func (s Status) String() string {
	switch s {
	case StatusReceived:
		return "received"
	case StatusDeferred:
		return "deferred"
	case StatusResponded:
		return "responded"
	case StatusClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// ButtonStyle mirrors the platform's button styles.
type ButtonStyle int

const (
	StylePrimary ButtonStyle = iota + 1
	StyleSecondary
	StyleDanger
)

// Component describes a button attached to a response.
type Component struct {
	CustomID string
	Label    string
	Style    ButtonStyle
}

// Responder is the outbound request collaborator. Implementations issue the
// REST calls; they own rate limiting and wire encoding, not this package.
type Responder interface {
	Acknowledge(ctx context.Context, token string, ephemeral, deferred bool) error
	Respond(ctx context.Context, token, content string, ephemeral bool, components ...Component) error
	FollowUp(ctx context.Context, token, content string, ephemeral bool) error
	DeleteOriginal(ctx context.Context, token string) error
}

// Session tracks one interaction token through its lifecycle: exactly one
// first acknowledgment (defer or respond), any number of follow-ups, an
// optional deletion of the original response, all inside a fixed expiry
// window. Expiry is checked lazily on every operation; there is no timer.
// Transitions are ordered by the session mutex, sessions are independent.
type Session struct {
	token     string
	userID    uint64
	guildID   uint64 // zero outside guilds
	channelID uint64 // zero when absent
	deadline  time.Time
	responder Responder

	// now is swappable for deterministic expiry in tests.
	now func() time.Time

	mu        sync.Mutex
	status    Status
	ephemeral bool
	followUps int
}

func NewSession(token string, userID, guildID, channelID uint64, ttl time.Duration, r Responder) *Session {
	return &Session{
		token:     token,
		userID:    userID,
		guildID:   guildID,
		channelID: channelID,
		deadline:  time.Now().Add(ttl),
		responder: r,
		now:       time.Now,
	}
}

func (s *Session) Token() string     { return s.token }
func (s *Session) UserID() uint64    { return s.userID }
func (s *Session) GuildID() uint64   { return s.guildID }
func (s *Session) ChannelID() uint64 { return s.channelID }

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) Ephemeral() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ephemeral
}

func (s *Session) FollowUpCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.followUps
}

// checkLive expects s.mu held. Expiry dominates every other state.
func (s *Session) checkLive() error {
	if s.now().After(s.deadline) {
		return ErrInteractionExpired
	}
	if s.status == StatusClosed {
		return ErrSessionClosed
	}
	return nil
}

// Defer acknowledges the interaction without content. Valid only as the
// first acknowledgment; the ephemeral flag becomes sticky for the session.
func (s *Session) Defer(ctx context.Context, ephemeral bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkLive(); err != nil {
		return err
	}
	if s.status != StatusReceived {
		return ErrAlreadyAcknowledged
	}
	if err := s.responder.Acknowledge(ctx, s.token, ephemeral, true); err != nil {
		return err
	}
	s.status = StatusDeferred
	s.ephemeral = ephemeral
	return nil
}

// Respond sends the original response. Valid only as the first
// acknowledgment; at most one original response exists per session.
func (s *Session) Respond(ctx context.Context, content string, ephemeral bool, components ...Component) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkLive(); err != nil {
		return err
	}
	if s.status != StatusReceived {
		return ErrAlreadyAcknowledged
	}
	if err := s.responder.Respond(ctx, s.token, content, ephemeral, components...); err != nil {
		return err
	}
	s.status = StatusResponded
	s.ephemeral = ephemeral
	return nil
}

// FollowUp sends an additional message after the first acknowledgment. The
// visibility of follow-ups is inherited from the first acknowledgment and
// cannot change mid-session.
func (s *Session) FollowUp(ctx context.Context, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkLive(); err != nil {
		return err
	}
	if s.status == StatusReceived {
		return ErrNotAcknowledged
	}
	if err := s.responder.FollowUp(ctx, s.token, content, s.ephemeral); err != nil {
		return err
	}
	s.followUps++
	return nil
}

// DeleteOriginal removes the original response (or deferred placeholder) and
// closes the session; further sends are rejected.
func (s *Session) DeleteOriginal(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkLive(); err != nil {
		return err
	}
	if s.status == StatusReceived {
		return ErrNotAcknowledged
	}
	if err := s.responder.DeleteOriginal(ctx, s.token); err != nil {
		return err
	}
	s.status = StatusClosed
	return nil
}
