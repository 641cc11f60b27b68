package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

// Store is the in-process mirror of the platform's object graph. Mutations
// for one guild are serialized by that guild's shard lock; reads take the
// shard read lock and copy scalar data out, so callers never hold a
// reference into a shard.
type Store struct {
	logger *zap.SugaredLogger

	mu     sync.RWMutex
	guilds map[uint64]*guildShard

	usersMu sync.Mutex
	users   map[uint64]*sharedUser
}

// sharedUser refcounts a User across guild memberships and message authors.
type sharedUser struct {
	user User
	refs int
}

type guildShard struct {
	mu       sync.RWMutex
	guild    Guild
	channels map[uint64]*Channel
	roles    map[uint64]*Role
	members  map[uint64]*Member
	messages map[uint64]*Message
	index    relationIndex
}

func NewStore(log *zap.Logger) *Store {
	return &Store{
		logger: log.Sugar(),
		guilds: make(map[uint64]*guildShard),
		users:  make(map[uint64]*sharedUser),
	}
}

func (s *Store) shard(guildID uint64) (*guildShard, bool) {
	s.mu.RLock()
	g, ok := s.guilds[guildID]
	s.mu.RUnlock()
	return g, ok
}

// writableShard resolves a shard and rejects mutation of unavailable guilds.
func (s *Store) writableShard(guildID uint64, op string) (*guildShard, bool) {
	g, ok := s.shard(guildID)
	if !ok {
		s.logger.Debugf("Ignoring %s for untracked guild %d.", op, guildID)
		return nil, false
	}
	g.mu.RLock()
	available := g.guild.Available
	g.mu.RUnlock()
	if !available {
		s.logger.Debugf("Ignoring %s for unavailable guild %d.", op, guildID)
		return nil, false
	}
	return g, true
}

func (s *Store) acquireUser(u User) {
	s.usersMu.Lock()
	defer s.usersMu.Unlock()
	if su, ok := s.users[u.ID]; ok {
		su.refs++
		su.user = u
		return
	}
	s.users[u.ID] = &sharedUser{user: u, refs: 1}
}

// retainUser takes a reference on a user known only by id, creating a
// placeholder record when the user has not been seen yet; a later
// acquireUser fills in the data.
func (s *Store) retainUser(id uint64) {
	if id == 0 {
		return
	}
	s.usersMu.Lock()
	defer s.usersMu.Unlock()
	if su, ok := s.users[id]; ok {
		su.refs++
		return
	}
	s.users[id] = &sharedUser{user: User{ID: id}, refs: 1}
}

func (s *Store) releaseUser(id uint64) {
	if id == 0 {
		return
	}
	s.usersMu.Lock()
	defer s.usersMu.Unlock()
	su, ok := s.users[id]
	if !ok {
		return
	}
	su.refs--
	if su.refs <= 0 {
		delete(s.users, id)
	}
}

// ApplySnapshot atomically replaces all cached state for the snapshot's
// guild. The replacement shard is built off to the side and swapped in under
// the store lock, so concurrent readers observe either the whole old state
// or the whole new state, never a mix.
func (s *Store) ApplySnapshot(snap Snapshot) {
	guildID := snap.Guild.ID
	g := &guildShard{
		guild:    snap.Guild,
		channels: make(map[uint64]*Channel, len(snap.Channels)),
		roles:    make(map[uint64]*Role, len(snap.Roles)),
		members:  make(map[uint64]*Member, len(snap.Members)),
		messages: make(map[uint64]*Message, len(snap.Messages)),
		index:    newRelationIndex(),
	}
	g.guild.Available = true

	for i := range snap.Channels {
		c := snap.Channels[i]
		c.GuildID = guildID
		g.channels[c.ID] = &c
	}
	for i := range snap.Roles {
		r := snap.Roles[i]
		r.GuildID = guildID
		g.roles[r.ID] = &r
	}
	// The everyone role shares the guild's id and must always be present.
	if _, ok := g.roles[guildID]; !ok {
		g.roles[guildID] = &Role{ID: guildID, GuildID: guildID, Name: "@everyone"}
	}
	for _, ms := range snap.Members {
		g.members[ms.User.ID] = &Member{
			GuildID:  guildID,
			UserID:   ms.User.ID,
			Nick:     ms.Nick,
			JoinedAt: ms.JoinedAt,
		}
		g.index.setMemberRoles(ms.User.ID, ms.RoleIDs)
		if ms.Voice != nil {
			g.index.setVoice(*ms.Voice)
		}
	}
	for i := range snap.Messages {
		m := snap.Messages[i]
		m.GuildID = guildID
		g.messages[m.ID] = &m
	}

	s.mu.Lock()
	old := s.guilds[guildID]
	s.guilds[guildID] = g
	s.mu.Unlock()

	if old != nil {
		s.releaseShardUsers(old)
	}
	for _, ms := range snap.Members {
		s.acquireUser(ms.User)
	}
	for i := range snap.Messages {
		s.retainUser(snap.Messages[i].AuthorID)
	}
	s.logger.Debugf("Applied snapshot for guild %d (%d channels, %d roles, %d members).",
		guildID, len(g.channels), len(g.roles), len(g.members))
}

func (s *Store) releaseShardUsers(g *guildShard) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for uid := range g.members {
		s.releaseUser(uid)
	}
	for _, m := range g.messages {
		s.releaseUser(m.AuthorID)
	}
}

// SetAvailable toggles the availability flag without touching cached data.
func (s *Store) SetAvailable(guildID uint64, available bool) {
	g, ok := s.shard(guildID)
	if !ok {
		return
	}
	g.mu.Lock()
	g.guild.Available = available
	g.mu.Unlock()
}

// ApplyPatch merges named fields into an already cached entity. A patch for
// an entity that is not cached is a benign event-ordering race and is
// absorbed silently.
func (s *Store) ApplyPatch(ref Ref, fields map[string]any) {
	g, ok := s.writableShard(ref.GuildID, "patch")
	if !ok {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	var target any
	switch ref.Kind {
	case KindGuild:
		target = &g.guild
	case KindChannel:
		if c, ok := g.channels[ref.ID]; ok {
			target = c
		}
	case KindRole:
		if r, ok := g.roles[ref.ID]; ok {
			target = r
		}
	case KindMember:
		if m, ok := g.members[ref.ID]; ok {
			target = m
		}
	case KindMessage:
		if m, ok := g.messages[ref.ID]; ok {
			target = m
		}
	}
	if target == nil {
		s.logger.Debugf("Ignoring patch for untracked %s %d in guild %d.", ref.Kind, ref.ID, ref.GuildID)
		return
	}
	if err := patchEntity(target, fields); err != nil {
		s.logger.Errorf("Failed to apply patch for %s %d: %s.", ref.Kind, ref.ID, err)
	}
}

// patchEntity decodes only the supplied keys onto the cached struct; absent
// keys leave their fields untouched and identity fields are never patchable.
func patchEntity(target any, fields map[string]any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:     target,
		DecodeHook: mapstructure.StringToTimeHookFunc(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to build patch decoder: %w", err)
	}
	if err := dec.Decode(fields); err != nil {
		return fmt.Errorf("failed to decode patch: %w", err)
	}
	return nil
}

// Remove detaches an entity and releases exclusively owned children. Shared
// users are released per reference and survive while any owner remains.
func (s *Store) Remove(ref Ref) {
	if ref.Kind == KindGuild {
		s.removeGuild(ref.GuildID)
		return
	}
	g, ok := s.writableShard(ref.GuildID, "removal")
	if !ok {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	switch ref.Kind {
	case KindChannel:
		if _, ok := g.channels[ref.ID]; !ok {
			return
		}
		delete(g.channels, ref.ID)
		for id, m := range g.messages {
			if m.ChannelID == ref.ID {
				delete(g.messages, id)
				s.releaseUser(m.AuthorID)
			}
		}
	case KindRole:
		if ref.ID == ref.GuildID {
			// The everyone role is never removed while the guild exists.
			s.logger.Debugf("Ignoring removal of everyone role in guild %d.", ref.GuildID)
			return
		}
		if _, ok := g.roles[ref.ID]; !ok {
			return
		}
		delete(g.roles, ref.ID)
		g.index.dropRole(ref.ID)
	case KindMember:
		if _, ok := g.members[ref.ID]; !ok {
			return
		}
		delete(g.members, ref.ID)
		g.index.dropMember(ref.ID)
		s.releaseUser(ref.ID)
	case KindMessage:
		m, ok := g.messages[ref.ID]
		if !ok {
			return
		}
		delete(g.messages, ref.ID)
		s.releaseUser(m.AuthorID)
	}
}

func (s *Store) removeGuild(guildID uint64) {
	s.mu.Lock()
	g, ok := s.guilds[guildID]
	delete(s.guilds, guildID)
	s.mu.Unlock()
	if ok {
		s.releaseShardUsers(g)
		s.logger.Debugf("Removed guild %d.", guildID)
	}
}

// AddChannel caches a newly created channel.
func (s *Store) AddChannel(c Channel) {
	g, ok := s.writableShard(c.GuildID, "channel create")
	if !ok {
		return
	}
	g.mu.Lock()
	g.channels[c.ID] = &c
	g.mu.Unlock()
}

// AddRole caches a newly created role.
func (s *Store) AddRole(r Role) {
	g, ok := s.writableShard(r.GuildID, "role create")
	if !ok {
		return
	}
	g.mu.Lock()
	g.roles[r.ID] = &r
	g.mu.Unlock()
}

// AddMember caches a member and acquires a shared reference to its user.
func (s *Store) AddMember(guildID uint64, ms MemberState) {
	g, ok := s.writableShard(guildID, "member add")
	if !ok {
		return
	}
	g.mu.Lock()
	_, existed := g.members[ms.User.ID]
	g.members[ms.User.ID] = &Member{
		GuildID:  guildID,
		UserID:   ms.User.ID,
		Nick:     ms.Nick,
		JoinedAt: ms.JoinedAt,
	}
	g.index.setMemberRoles(ms.User.ID, ms.RoleIDs)
	if ms.Voice != nil {
		g.index.setVoice(*ms.Voice)
	}
	g.mu.Unlock()
	if !existed {
		s.acquireUser(ms.User)
	}
}

// SetMemberRoles replaces a member's role set; the relation index is updated
// in the same critical section.
func (s *Store) SetMemberRoles(guildID, userID uint64, roleIDs []uint64) {
	g, ok := s.writableShard(guildID, "member roles update")
	if !ok {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.members[userID]; !ok {
		s.logger.Debugf("Ignoring roles update for untracked member %d in guild %d.", userID, guildID)
		return
	}
	g.index.setMemberRoles(userID, roleIDs)
}

// AddMessage caches a message and retains its author.
func (s *Store) AddMessage(m Message) {
	g, ok := s.writableShard(m.GuildID, "message create")
	if !ok {
		return
	}
	g.mu.Lock()
	if _, dup := g.messages[m.ID]; dup {
		g.mu.Unlock()
		return
	}
	g.messages[m.ID] = &m
	g.mu.Unlock()
	s.retainUser(m.AuthorID)
}

// SetVoiceState records or clears (ChannelID zero) a member's voice state.
func (s *Store) SetVoiceState(vs VoiceState) {
	g, ok := s.writableShard(vs.GuildID, "voice state update")
	if !ok {
		return
	}
	g.mu.Lock()
	g.index.setVoice(vs)
	g.mu.Unlock()
}

// Readers. All return copies.

func (s *Store) Guild(guildID uint64) (Guild, bool) {
	g, ok := s.shard(guildID)
	if !ok {
		return Guild{}, false
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.guild, true
}

func (s *Store) Guilds() []Guild {
	s.mu.RLock()
	shards := make([]*guildShard, 0, len(s.guilds))
	for _, g := range s.guilds {
		shards = append(shards, g)
	}
	s.mu.RUnlock()

	out := make([]Guild, 0, len(shards))
	for _, g := range shards {
		g.mu.RLock()
		out = append(out, g.guild)
		g.mu.RUnlock()
	}
	return out
}

func (s *Store) Channel(guildID, channelID uint64) (Channel, bool) {
	g, ok := s.shard(guildID)
	if !ok {
		return Channel{}, false
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	if c, ok := g.channels[channelID]; ok {
		return *c, true
	}
	return Channel{}, false
}

func (s *Store) Role(guildID, roleID uint64) (Role, bool) {
	g, ok := s.shard(guildID)
	if !ok {
		return Role{}, false
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	if r, ok := g.roles[roleID]; ok {
		return *r, true
	}
	return Role{}, false
}

func (s *Store) Member(guildID, userID uint64) (Member, bool) {
	g, ok := s.shard(guildID)
	if !ok {
		return Member{}, false
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	if m, ok := g.members[userID]; ok {
		return *m, true
	}
	return Member{}, false
}

func (s *Store) Message(guildID, messageID uint64) (Message, bool) {
	g, ok := s.shard(guildID)
	if !ok {
		return Message{}, false
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	if m, ok := g.messages[messageID]; ok {
		return *m, true
	}
	return Message{}, false
}

func (s *Store) User(userID uint64) (User, bool) {
	s.usersMu.Lock()
	defer s.usersMu.Unlock()
	if su, ok := s.users[userID]; ok {
		return su.user, true
	}
	return User{}, false
}

// RolesOf returns the member's roles in insertion order, resolved against
// the guild's role set. An unknown member yields an empty slice.
func (s *Store) RolesOf(guildID, userID uint64) []Role {
	g, ok := s.shard(guildID)
	if !ok {
		return nil
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	ids := g.index.memberRoles[userID]
	out := make([]Role, 0, len(ids))
	for _, rid := range ids {
		if r, ok := g.roles[rid]; ok {
			out = append(out, *r)
		}
	}
	return out
}

// UsersWithRole returns the ids of every member holding the role.
func (s *Store) UsersWithRole(guildID, roleID uint64) []uint64 {
	g, ok := s.shard(guildID)
	if !ok {
		return nil
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]uint64, 0, len(g.index.roleMembers[roleID]))
	for uid := range g.index.roleMembers[roleID] {
		out = append(out, uid)
	}
	return out
}

func (s *Store) VoiceStateOf(guildID, userID uint64) (VoiceState, bool) {
	g, ok := s.shard(guildID)
	if !ok {
		return VoiceState{}, false
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	vs, ok := g.index.voiceByUser[userID]
	return vs, ok
}

// GuildStats summarizes one shard for the inspection API.
type GuildStats struct {
	Guild    Guild
	Channels int
	Roles    int
	Members  int
	Messages int
	InVoice  int
}

func (s *Store) Stats(guildID uint64) (GuildStats, bool) {
	g, ok := s.shard(guildID)
	if !ok {
		return GuildStats{}, false
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	return GuildStats{
		Guild:    g.guild,
		Channels: len(g.channels),
		Roles:    len(g.roles),
		Members:  len(g.members),
		Messages: len(g.messages),
		InVoice:  len(g.index.voiceByUser),
	}, true
}
