package state

// relationIndex holds the derived many-to-many views for one guild shard.
// It is only ever touched while the shard's write lock is held by the store
// mutation that triggered the recomputation, so index and store can never
// disagree. Nothing is recorded here that cannot be re-derived.
type relationIndex struct {
	// memberRoles keeps insertion order and is deduplicated.
	memberRoles map[uint64][]uint64
	// roleMembers makes role-deletion cascades O(affected members).
	roleMembers map[uint64]map[uint64]struct{}
	voiceByUser map[uint64]VoiceState
}

func newRelationIndex() relationIndex {
	return relationIndex{
		memberRoles: make(map[uint64][]uint64),
		roleMembers: make(map[uint64]map[uint64]struct{}),
		voiceByUser: make(map[uint64]VoiceState),
	}
}

func (ix *relationIndex) setMemberRoles(userID uint64, roleIDs []uint64) {
	for _, rid := range ix.memberRoles[userID] {
		delete(ix.roleMembers[rid], userID)
	}
	ordered := make([]uint64, 0, len(roleIDs))
	seen := make(map[uint64]struct{}, len(roleIDs))
	for _, rid := range roleIDs {
		if _, dup := seen[rid]; dup {
			continue
		}
		seen[rid] = struct{}{}
		ordered = append(ordered, rid)
		if ix.roleMembers[rid] == nil {
			ix.roleMembers[rid] = make(map[uint64]struct{})
		}
		ix.roleMembers[rid][userID] = struct{}{}
	}
	ix.memberRoles[userID] = ordered
}

func (ix *relationIndex) dropMember(userID uint64) {
	for _, rid := range ix.memberRoles[userID] {
		delete(ix.roleMembers[rid], userID)
	}
	delete(ix.memberRoles, userID)
	delete(ix.voiceByUser, userID)
}

// dropRole removes the role from every member that holds it.
func (ix *relationIndex) dropRole(roleID uint64) {
	for userID := range ix.roleMembers[roleID] {
		held := ix.memberRoles[userID]
		kept := held[:0]
		for _, rid := range held {
			if rid != roleID {
				kept = append(kept, rid)
			}
		}
		ix.memberRoles[userID] = kept
	}
	delete(ix.roleMembers, roleID)
}

func (ix *relationIndex) setVoice(vs VoiceState) {
	if vs.ChannelID == 0 {
		delete(ix.voiceByUser, vs.UserID)
		return
	}
	ix.voiceByUser[vs.UserID] = vs
}
