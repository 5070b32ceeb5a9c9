package goldminer

import (
	"slices"

	"go.uber.org/zap"

	"github.com/plus3/goldminer/ecs"
)

// MoleSystem walks moles back and forth between the patrol bounds.
type MoleSystem struct {
	Config ecs.Singleton[Config]
	Moles  ecs.Query[struct {
		*Mole
		*Position
		*Velocity
	}]
}

func (s *MoleSystem) Execute(frame *ecs.UpdateFrame) {
	bounds := s.Config.Get().Mole
	minX, maxX := float32(bounds.MinX), float32(bounds.MaxX)
	dt := float32(frame.DeltaTime)

	for m := range s.Moles.Iter() {
		if m.MovingRight {
			m.Position.X += m.Speed * dt
		} else {
			m.Position.X -= m.Speed * dt
		}

		if m.Position.X >= maxX {
			m.Position.X = maxX
			m.MovingRight = false
		} else if m.Position.X <= minX {
			m.Position.X = minX
			m.MovingRight = true
		}

		m.Velocity.X = m.Speed
		if !m.MovingRight {
			m.Velocity.X = -m.Speed
		}
		m.Velocity.Y = 0
	}
}

// LifeTimeSystem tags entities whose lifetime ran out for destruction.
type LifeTimeSystem struct {
	Timed ecs.Query[struct {
		ecs.EntityId
		*LifeTime
	}]
}

func (s *LifeTimeSystem) Execute(frame *ecs.UpdateFrame) {
	dt := float32(frame.DeltaTime)
	for e := range s.Timed.Iter() {
		e.Remaining -= dt
		if e.Remaining <= 0 && !ecs.Has[DestroyTag](frame.Storage, e.EntityId) {
			ecs.Add(frame.Storage, e.EntityId, DestroyTag{})
		}
	}
}

// DestructionSystem purges every entity tagged with DestroyTag. Joints
// holding the entity and its own body are released before its components
// are dropped, leaving the id inert.
type DestructionSystem struct {
	Doomed ecs.Query[struct {
		ecs.EntityId
		*DestroyTag
	}]
	Holders ecs.Query[holderView]

	binding *Binding
	logger  *zap.Logger
}

func NewDestructionSystem(binding *Binding, logger *zap.Logger) *DestructionSystem {
	return &DestructionSystem{binding: binding, logger: logger}
}

func (s *DestructionSystem) Execute(frame *ecs.UpdateFrame) {
	doomed := slices.Collect(s.Doomed.Ids())
	for _, id := range doomed {
		s.Destroy(frame.Storage, id)
	}
}

// Destroy releases everything id owns and clears it.
func (s *DestructionSystem) Destroy(storage *ecs.Storage, id ecs.EntityId) {
	for holder := range s.Holders.Iter() {
		if holder.Attached != id {
			continue
		}
		s.binding.Unweld(holder.Joint)
		ecs.Remove[GrabbedJoint](storage, holder.EntityId)
		s.logger.Debug("grab cancelled", entityField("rope", holder.EntityId), entityField("item", id))
	}

	if grabbed := ecs.TryGet[GrabbedJoint](storage, id); grabbed != nil {
		s.binding.Unweld(grabbed.Joint)
	}

	released := s.binding.Release(id)
	storage.Clear(id)
	s.logger.Debug("entity destroyed", entityField("entity", id), zap.Bool("body", released))
}
