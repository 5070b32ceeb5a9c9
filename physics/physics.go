// Package physics is the narrow boundary between the game and a rigid-body
// engine. Everything is expressed in engine units (meters, radians); callers
// convert from pixel space before crossing it.
package physics

import (
	"fmt"
	"math"
)

// Vec2 is a 2D vector in engine units.
type Vec2 struct {
	X, Y float64
}

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }
func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }
func (v Vec2) Dist(o Vec2) float64 { return v.Sub(o).Len() }
func (v Vec2) String() string { return fmt.Sprintf("(%.3f, %.3f)", v.X, v.Y) }

// Transform is the pose of a body.
type Transform struct {
	Position Vec2
	Rotation float64
}

// BodyHandle identifies a body inside an Engine. The zero value is never issued.
type BodyHandle uint32

// JointHandle identifies a joint inside an Engine. The zero value is never issued.
type JointHandle uint32

// BodyKind selects how a body takes part in the simulation.
type BodyKind uint8

const (
	Static BodyKind = iota
	Kinematic
	Dynamic
)

func (k BodyKind) String() string {
	switch k {
	case Static:
		return "static"
	case Kinematic:
		return "kinematic"
	case Dynamic:
		return "dynamic"
	}
	return fmt.Sprintf("BodyKind(%d)", uint8(k))
}

// ShapeKind selects the collision geometry of a body.
type ShapeKind uint8

const (
	Circle ShapeKind = iota
	Polygon
)

// ShapeDef describes the single shape attached to a body.
type ShapeDef struct {
	Kind ShapeKind
	// Radius of a Circle.
	Radius float64
	// Vertices of a convex Polygon, relative to the body center.
	Vertices    []Vec2
	Density     float64
	Friction    float64
	Restitution float64
	// HitEvents makes contacts involving this shape show up in ContactEvents.
	HitEvents bool
}

// BodyDef describes a body to create.
type BodyDef struct {
	Kind     BodyKind
	Position Vec2
	Angle    float64
	Shape    ShapeDef
}

// ContactEvent reports that two bodies began touching during the last step.
type ContactEvent struct {
	BodyA, BodyB BodyHandle
}

// Engine is the set of rigid-body operations the game relies on. Passing a
// handle that was never issued, or was already destroyed, is a programming
// error and panics.
type Engine interface {
	CreateBody(def BodyDef) BodyHandle
	DestroyBody(h BodyHandle)

	Transform(h BodyHandle) Transform
	SetTransform(h BodyHandle, t Transform)
	Velocity(h BodyHandle) Vec2
	SetVelocity(h BodyHandle, v Vec2)
	SetAngularVelocity(h BodyHandle, w float64)
	SetGravityScale(h BodyHandle, scale float64)
	Kind(h BodyHandle) BodyKind
	SetKind(h BodyHandle, kind BodyKind)

	// CreateWeldJoint rigidly connects two bodies. The connected bodies no
	// longer collide with each other.
	CreateWeldJoint(a, b BodyHandle) JointHandle
	DestroyJoint(h JointHandle)

	Step(dt float64, iterations int)
	// ContactEvents returns the contacts that began during the most recent
	// Step. The slice is only valid until the next Step.
	ContactEvents() []ContactEvent

	BodyCount() int
	Close()
}
