package discord

// uint64Set is a map-based set of snowflake ids, used for the guild
// allowlist.
type uint64Set map[uint64]struct{}

func newUint64Set(s []uint64) uint64Set {
	set := make(uint64Set, len(s))
	for _, i := range s {
		set[i] = struct{}{}
	}
	return set
}

func (s uint64Set) contains(i uint64) bool {
	_, exists := s[i]
	return exists
}
