package state

// Typed events form the boundary with the transport collaborator: the
// gateway adapter translates raw payloads into these and feeds them through
// Apply, which keeps per-guild ordering because each variant resolves to a
// single shard-locked mutation.

type Event interface {
	isEvent()
}

// SnapshotEvent replaces all cached state for its guild.
type SnapshotEvent struct {
	Snapshot Snapshot
}

// UpdateEvent patches named fields of an already cached entity.
type UpdateEvent struct {
	Ref    Ref
	Fields map[string]any
}

// RemovalEvent detaches an entity and its owned children.
type RemovalEvent struct {
	Ref Ref
}

func (SnapshotEvent) isEvent() {}
func (UpdateEvent) isEvent()   {}
func (RemovalEvent) isEvent()  {}

func (s *Store) Apply(ev Event) {
	switch e := ev.(type) {
	case SnapshotEvent:
		s.ApplySnapshot(e.Snapshot)
	case UpdateEvent:
		s.ApplyPatch(e.Ref, e.Fields)
	case RemovalEvent:
		s.Remove(e.Ref)
	}
}
