package ecs

// EntityId identifies an entity within a Storage.
// Ids are issued in ascending order starting at 1 and are never reused by the
// Storage that issued them. The zero value never names an entity.
type EntityId uint32

// NilEntity is the zero EntityId.
const NilEntity EntityId = 0

// Valid reports whether the id could name an entity.
func (e EntityId) Valid() bool {
	return e != NilEntity
}
