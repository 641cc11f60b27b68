package state

// Permissions is the platform permission bitset. Only the bits the
// moderation commands evaluate are named here.
type Permissions uint64

const (
	PermCreateInstantInvite Permissions = 1 << 0
	PermKickMembers         Permissions = 1 << 1
	PermBanMembers          Permissions = 1 << 2
	PermAdministrator       Permissions = 1 << 3
	PermManageChannels      Permissions = 1 << 4
	PermManageGuild         Permissions = 1 << 5
	PermManageMessages      Permissions = 1 << 13

	PermAll Permissions = ^Permissions(0)
)

func (p Permissions) Has(q Permissions) bool {
	return p&q == q
}

// MemberPermissions computes the effective permission set of a guild member:
// the union of the everyone role and every role the member holds. The guild
// owner and administrators hold every permission.
func (s *Store) MemberPermissions(guildID, userID uint64) Permissions {
	g, ok := s.shard(guildID)
	if !ok {
		return 0
	}
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.guild.OwnerID == userID {
		return PermAll
	}
	if _, ok := g.members[userID]; !ok {
		return 0
	}

	perms := Permissions(0)
	if everyone, ok := g.roles[guildID]; ok {
		perms |= everyone.Permissions
	}
	for _, rid := range g.index.memberRoles[userID] {
		if r, ok := g.roles[rid]; ok {
			perms |= r.Permissions
		}
	}
	if perms.Has(PermAdministrator) {
		return PermAll
	}
	return perms
}

// CanInteract reports whether the actor outranks the target: the owner
// outranks everyone, and otherwise the actor's highest role position must be
// strictly greater than the target's.
func (s *Store) CanInteract(guildID, actorID, targetID uint64) bool {
	g, ok := s.shard(guildID)
	if !ok {
		return false
	}
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.guild.OwnerID == actorID {
		return true
	}
	if g.guild.OwnerID == targetID {
		return false
	}
	if _, ok := g.members[targetID]; !ok {
		// Not a member, nothing to outrank.
		return true
	}
	return g.topRolePosition(actorID) > g.topRolePosition(targetID)
}

// topRolePosition expects g.mu held.
func (g *guildShard) topRolePosition(userID uint64) int {
	top := -1
	for _, rid := range g.index.memberRoles[userID] {
		if r, ok := g.roles[rid]; ok && r.Position > top {
			top = r.Position
		}
	}
	return top
}
