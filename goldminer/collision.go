package goldminer

import (
	"go.uber.org/zap"

	"github.com/plus3/goldminer/ecs"
)

type holderView struct {
	ecs.EntityId
	*GrabbedJoint
}

// CollisionSystem turns the contacts of the last physics step into grabs:
// a rope touching a collectable welds it and starts pulling it back.
type CollisionSystem struct {
	Holders ecs.Query[holderView]

	binding *Binding
	logger  *zap.Logger
}

func NewCollisionSystem(binding *Binding, logger *zap.Logger) *CollisionSystem {
	return &CollisionSystem{binding: binding, logger: logger}
}

func (s *CollisionSystem) Execute(frame *ecs.UpdateFrame) {
	for _, ev := range s.binding.Engine().ContactEvents() {
		a, okA := s.binding.Resolve(ev.BodyA)
		b, okB := s.binding.Resolve(ev.BodyB)
		if !okA || !okB {
			s.logger.Warn("dropping contact with unbound body",
				zap.Uint32("body_a", uint32(ev.BodyA)),
				zap.Uint32("body_b", uint32(ev.BodyB)),
			)
			continue
		}

		storage := frame.Storage
		switch {
		case isRope(storage, a) && isCollectable(storage, b):
			s.TryAttach(storage, a, b)
		case isRope(storage, b) && isCollectable(storage, a):
			s.TryAttach(storage, b, a)
		}
	}
}

func isRope(storage *ecs.Storage, id ecs.EntityId) bool {
	return ecs.Has[RoperTag](storage, id)
}

func isCollectable(storage *ecs.Storage, id ecs.EntityId) bool {
	return ecs.Has[Collectable](storage, id) && !ecs.Has[DestroyTag](storage, id)
}

// TryAttach welds item to rope unless the rope already holds something or
// the item hangs from another rope. It reports whether the grab happened.
func (s *CollisionSystem) TryAttach(storage *ecs.Storage, rope, item ecs.EntityId) bool {
	if ecs.Has[GrabbedJoint](storage, rope) {
		return false
	}
	if _, _, held := s.Holders.First(func(h holderView) bool {
		return h.Attached == item
	}); held {
		return false
	}

	ropeBody := ecs.Get[PhysicsBody](storage, rope).Body
	itemBody := ecs.Get[PhysicsBody](storage, item).Body

	s.binding.Promote(itemBody)
	joint := s.binding.Weld(ropeBody, itemBody)
	ecs.Add(storage, rope, GrabbedJoint{Joint: joint, Attached: item})
	ecs.Get[RopeControl](storage, rope).State = Retracting

	s.logger.Debug("item grabbed", entityField("rope", rope), entityField("item", item))
	return true
}
