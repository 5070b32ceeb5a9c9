package goldminer

import (
	"fmt"
	"math"

	"github.com/kamstrup/intmap"

	"github.com/plus3/goldminer/ecs"
	"github.com/plus3/goldminer/physics"
)

// Binding owns the association between entities and physics bodies. Every
// body it creates is recorded in both directions so a body reported by the
// engine resolves to its entity in O(1), and releasing the body removes both
// records together.
//
// Positions cross the boundary in pixels and are converted with the
// configured pixels-per-meter scale.
type Binding struct {
	engine physics.Engine
	ppm    float64

	owners *intmap.Map[physics.BodyHandle, ecs.EntityId]
	bodies *intmap.Map[ecs.EntityId, physics.BodyHandle]
}

func NewBinding(engine physics.Engine, pixelsPerMeter float64) *Binding {
	return &Binding{
		engine: engine,
		ppm:    pixelsPerMeter,
		owners: intmap.New[physics.BodyHandle, ecs.EntityId](128),
		bodies: intmap.New[ecs.EntityId, physics.BodyHandle](128),
	}
}

// Engine returns the underlying physics engine.
func (b *Binding) Engine() physics.Engine {
	return b.engine
}

// ToMeters converts a pixel-space point to engine units.
func (b *Binding) ToMeters(x, y float64) physics.Vec2 {
	return physics.Vec2{X: x / b.ppm, Y: y / b.ppm}
}

// ToPixels converts an engine-space point to pixels.
func (b *Binding) ToPixels(v physics.Vec2) (float64, float64) {
	return v.X * b.ppm, v.Y * b.ppm
}

// Attach creates a body centered at the pixel position (cx, cy) and binds
// it to entity. The returned component must be added to the entity by the
// caller.
func (b *Binding) Attach(entity ecs.EntityId, kind physics.BodyKind, cx, cy float64, shape physics.ShapeDef) PhysicsBody {
	if h, ok := b.bodies.Get(entity); ok {
		panic(fmt.Sprintf("goldminer: entity %d already owns physics body %d", entity, h))
	}

	h := b.engine.CreateBody(physics.BodyDef{
		Kind:     kind,
		Position: b.ToMeters(cx, cy),
		Shape:    shape,
	})
	b.owners.Put(h, entity)
	b.bodies.Put(entity, h)
	return PhysicsBody{Body: h}
}

// Release destroys the body owned by entity, if any, and forgets both
// directions of the association.
func (b *Binding) Release(entity ecs.EntityId) bool {
	h, ok := b.bodies.Get(entity)
	if !ok {
		return false
	}
	b.engine.DestroyBody(h)
	b.bodies.Del(entity)
	b.owners.Del(h)
	return true
}

// Resolve returns the entity owning a body.
func (b *Binding) Resolve(h physics.BodyHandle) (ecs.EntityId, bool) {
	return b.owners.Get(h)
}

// BodyOf returns the body owned by an entity.
func (b *Binding) BodyOf(entity ecs.EntityId) (physics.BodyHandle, bool) {
	return b.bodies.Get(entity)
}

// Len returns the number of bound bodies.
func (b *Binding) Len() int {
	return b.owners.Len()
}

// Center returns the body center in pixels.
func (b *Binding) Center(h physics.BodyHandle) (float64, float64) {
	return b.ToPixels(b.engine.Transform(h).Position)
}

// Angle returns the body rotation in radians.
func (b *Binding) Angle(h physics.BodyHandle) float64 {
	return b.engine.Transform(h).Rotation
}

// MoveTo teleports a body to a pixel position, keeping its rotation.
func (b *Binding) MoveTo(h physics.BodyHandle, x, y float64) {
	tf := b.engine.Transform(h)
	tf.Position = b.ToMeters(x, y)
	b.engine.SetTransform(h, tf)
}

// DriveToward sets the body velocity to move toward the pixel target at
// speed pixels per second. Within a hundredth of a meter the body stops.
func (b *Binding) DriveToward(h physics.BodyHandle, x, y, speed float64) {
	current := b.engine.Transform(h).Position
	dir := b.ToMeters(x, y).Sub(current)
	dist := dir.Len()
	if dist <= 0.01 {
		b.engine.SetVelocity(h, physics.Vec2{})
		return
	}
	b.engine.SetVelocity(h, dir.Scale(speed/b.ppm/dist))
}

func (b *Binding) Stop(h physics.BodyHandle) {
	b.engine.SetVelocity(h, physics.Vec2{})
	b.engine.SetAngularVelocity(h, 0)
}

func (b *Binding) SetGravityScale(h physics.BodyHandle, scale float64) {
	b.engine.SetGravityScale(h, scale)
}

// Promote turns a static body into a dynamic one at rest.
func (b *Binding) Promote(h physics.BodyHandle) {
	if b.engine.Kind(h) != physics.Dynamic {
		b.engine.SetKind(h, physics.Dynamic)
	}
	b.Stop(h)
}

// Weld rigidly joins two bodies.
func (b *Binding) Weld(a, c physics.BodyHandle) physics.JointHandle {
	return b.engine.CreateWeldJoint(a, c)
}

func (b *Binding) Unweld(j physics.JointHandle) {
	b.engine.DestroyJoint(j)
}

// Close releases every bound body.
func (b *Binding) Close() {
	var entities []ecs.EntityId
	b.bodies.ForEach(func(e ecs.EntityId, _ physics.BodyHandle) bool {
		entities = append(entities, e)
		return true
	})
	for _, e := range entities {
		b.Release(e)
	}
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}
