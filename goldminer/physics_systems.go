package goldminer

import (
	"github.com/plus3/goldminer/ecs"
)

// PhysicsStepSystem advances the physics world by one frame.
type PhysicsStepSystem struct {
	Config ecs.Singleton[Config]

	binding *Binding
}

func NewPhysicsStepSystem(binding *Binding) *PhysicsStepSystem {
	return &PhysicsStepSystem{binding: binding}
}

func (s *PhysicsStepSystem) Execute(frame *ecs.UpdateFrame) {
	s.binding.Engine().Step(frame.DeltaTime, s.Config.Get().Physics.Iterations)
}

// PhysicsSyncSystem copies body positions back into Position. Entities with
// a Renderable are placed by their top-left corner, the others by the body
// center.
type PhysicsSyncSystem struct {
	Bodies ecs.Query[struct {
		*Position
		*PhysicsBody
		Sprite *Renderable `ecs:"optional"`
	}]

	binding *Binding
}

func NewPhysicsSyncSystem(binding *Binding) *PhysicsSyncSystem {
	return &PhysicsSyncSystem{binding: binding}
}

func (s *PhysicsSyncSystem) Execute(frame *ecs.UpdateFrame) {
	for e := range s.Bodies.Iter() {
		x, y := s.binding.Center(e.Body)
		if e.Sprite != nil {
			x -= float64(e.Sprite.Width) / 2
			y -= float64(e.Sprite.Height) / 2
		}
		e.X = float32(x)
		e.Y = float32(y)
	}
}
