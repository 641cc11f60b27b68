package state

import (
	"time"
)

// Kind discriminates entity references handled by the store.
type Kind int

const (
	KindGuild Kind = iota
	KindChannel
	KindRole
	KindMember
	KindMessage
)

func (k Kind) String() string {
	switch k {
	case KindGuild:
		return "guild"
	case KindChannel:
		return "channel"
	case KindRole:
		return "role"
	case KindMember:
		return "member"
	case KindMessage:
		return "message"
	default:
		return "unknown"
	}
}

// Ref identifies a cached entity. GuildID locates the owning guild shard;
// for KindGuild it equals ID.
type Ref struct {
	Kind    Kind
	GuildID uint64
	ID      uint64
}

func GuildRef(guildID uint64) Ref {
	return Ref{Kind: KindGuild, GuildID: guildID, ID: guildID}
}

type ChannelType int

const (
	ChannelText ChannelType = iota
	ChannelVoice
)

// Guild is the root aggregate. Children are held by the store shard, the
// struct itself carries only scalar fields so it can be copied out to readers.
type Guild struct {
	ID           uint64 `mapstructure:"-"`
	Name         string `mapstructure:"name"`
	Icon         string `mapstructure:"icon"`
	OwnerID      uint64 `mapstructure:"owner_id"`
	AFKChannelID uint64 `mapstructure:"afk_channel_id"`
	AFKTimeout   int    `mapstructure:"afk_timeout"`
	Region       string `mapstructure:"region"`
	Available    bool   `mapstructure:"-"`
}

type Channel struct {
	ID      uint64      `mapstructure:"-"`
	GuildID uint64      `mapstructure:"-"`
	Name    string      `mapstructure:"name"`
	Topic   string      `mapstructure:"topic"`
	Type    ChannelType `mapstructure:"-"`
}

type Role struct {
	ID          uint64      `mapstructure:"-"`
	GuildID     uint64      `mapstructure:"-"`
	Name        string      `mapstructure:"name"`
	Permissions Permissions `mapstructure:"permissions"`
	Position    int         `mapstructure:"position"`
}

// User is shared across guilds and message authors; the store refcounts it.
type User struct {
	ID            uint64 `mapstructure:"-"`
	Username      string `mapstructure:"username"`
	Discriminator string `mapstructure:"discriminator"`
	Avatar        string `mapstructure:"avatar"`
	Bot           bool   `mapstructure:"-"`
}

// Member is the guild-scoped view of a user. Role membership lives in the
// relation index, not on the struct, so readers always see the index view.
type Member struct {
	GuildID  uint64    `mapstructure:"-"`
	UserID   uint64    `mapstructure:"-"`
	Nick     string    `mapstructure:"nick"`
	JoinedAt time.Time `mapstructure:"-"`
}

type VoiceState struct {
	GuildID   uint64
	UserID    uint64
	ChannelID uint64
	SessionID string
	Mute      bool
	Deaf      bool
	SelfMute  bool
	SelfDeaf  bool
}

type Message struct {
	ID               uint64     `mapstructure:"-"`
	ChannelID        uint64     `mapstructure:"-"`
	GuildID          uint64     `mapstructure:"-"`
	AuthorID         uint64     `mapstructure:"-"`
	Content          string     `mapstructure:"content"`
	Timestamp        time.Time  `mapstructure:"-"`
	EditedAt         *time.Time `mapstructure:"edited_at"`
	TTS              bool       `mapstructure:"-"`
	MentionsEveryone bool       `mapstructure:"mentions_everyone"`
	MentionIDs       []uint64   `mapstructure:"mention_ids"`
}

// MemberState bundles everything a snapshot knows about one member.
type MemberState struct {
	User     User
	Nick     string
	JoinedAt time.Time
	RoleIDs  []uint64
	Voice    *VoiceState
}

// Snapshot is the full-state payload for one guild. Applying it replaces
// every previously cached entity of that guild.
type Snapshot struct {
	Guild    Guild
	Channels []Channel
	Roles    []Role
	Members  []MemberState
	Messages []Message
}
