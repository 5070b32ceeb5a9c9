package physics

import (
	"fmt"

	"github.com/jakecoffman/cp"
	"github.com/kamstrup/intmap"
)

// hitCollisionType marks shapes created with ShapeDef.HitEvents.
const hitCollisionType cp.CollisionType = 1

type bodyRecord struct {
	body         *cp.Body
	shapes       []*cp.Shape
	gravityScale float64
}

type jointRecord struct {
	a, b        BodyHandle
	constraints []*cp.Constraint
}

// Space implements Engine on top of Chipmunk2D.
//
// Chipmunk has no continuous collision detection, so fast bodies rely on
// small time steps and enough solver iterations to register contacts.
type Space struct {
	space *cp.Space

	bodies    *intmap.Map[BodyHandle, *bodyRecord]
	joints    *intmap.Map[JointHandle, *jointRecord]
	nextBody  BodyHandle
	nextJoint JointHandle

	contacts []ContactEvent
	seen     *intmap.Map[uint64, struct{}]
}

// NewSpace creates an empty Chipmunk space with the given gravity.
func NewSpace(gravity Vec2) *Space {
	s := &Space{
		space:     cp.NewSpace(),
		bodies:    intmap.New[BodyHandle, *bodyRecord](64),
		joints:    intmap.New[JointHandle, *jointRecord](16),
		seen:      intmap.New[uint64, struct{}](32),
		nextBody:  1,
		nextJoint: 1,
	}
	s.space.SetGravity(toCP(gravity))

	handler := s.space.NewWildcardCollisionHandler(hitCollisionType)
	handler.BeginFunc = s.onBegin

	return s
}

func (s *Space) onBegin(arb *cp.Arbiter, _ *cp.Space, _ interface{}) bool {
	shapeA, shapeB := arb.Shapes()
	a, okA := shapeA.UserData.(BodyHandle)
	b, okB := shapeB.UserData.(BodyHandle)
	if !okA || !okB {
		return true
	}

	// Both wildcard handlers fire when both shapes report hits, with the
	// arbiter swapped the second time.
	key := pairKey(a, b)
	if s.seen.Has(key) {
		return true
	}
	s.seen.Put(key, struct{}{})
	s.contacts = append(s.contacts, ContactEvent{BodyA: a, BodyB: b})
	return true
}

func pairKey(a, b BodyHandle) uint64 {
	if a > b {
		a, b = b, a
	}
	return uint64(a)<<32 | uint64(b)
}

func (s *Space) CreateBody(def BodyDef) BodyHandle {
	var body *cp.Body
	switch def.Kind {
	case Static:
		body = cp.NewStaticBody()
	case Kinematic:
		body = cp.NewKinematicBody()
	case Dynamic:
		body = cp.NewBody(0, 0)
	default:
		panic(fmt.Sprintf("physics: unknown body kind %d", def.Kind))
	}

	h := s.nextBody
	s.nextBody++

	body.SetPosition(toCP(def.Position))
	body.SetAngle(def.Angle)
	body.UserData = h
	s.space.AddBody(body)

	rec := &bodyRecord{body: body, gravityScale: 1}
	body.SetVelocityUpdateFunc(func(b *cp.Body, gravity cp.Vector, damping, dt float64) {
		cp.BodyUpdateVelocity(b, gravity.Mult(rec.gravityScale), damping, dt)
	})

	shape := newShape(body, def.Shape)
	shape.UserData = h
	s.space.AddShape(shape)
	rec.shapes = append(rec.shapes, shape)

	s.bodies.Put(h, rec)
	return h
}

func newShape(body *cp.Body, def ShapeDef) *cp.Shape {
	var shape *cp.Shape
	switch def.Kind {
	case Circle:
		shape = cp.NewCircle(body, def.Radius, cp.Vector{})
	case Polygon:
		verts := make([]cp.Vector, len(def.Vertices))
		for i, v := range def.Vertices {
			verts[i] = toCP(v)
		}
		shape = cp.NewPolyShape(body, len(verts), verts, cp.NewTransformIdentity(), 0)
	default:
		panic(fmt.Sprintf("physics: unknown shape kind %d", def.Kind))
	}

	shape.SetDensity(def.Density)
	shape.SetFriction(def.Friction)
	shape.SetElasticity(def.Restitution)
	if def.HitEvents {
		shape.SetCollisionType(hitCollisionType)
	}
	return shape
}

func (s *Space) DestroyBody(h BodyHandle) {
	rec := s.body(h)

	var attached []JointHandle
	s.joints.ForEach(func(jh JointHandle, j *jointRecord) bool {
		if j.a == h || j.b == h {
			attached = append(attached, jh)
		}
		return true
	})
	for _, jh := range attached {
		s.DestroyJoint(jh)
	}

	for _, shape := range rec.shapes {
		shape.UserData = nil
		s.space.RemoveShape(shape)
	}
	rec.body.UserData = nil
	s.space.RemoveBody(rec.body)
	s.bodies.Del(h)
}

func (s *Space) Transform(h BodyHandle) Transform {
	body := s.body(h).body
	return Transform{Position: fromCP(body.Position()), Rotation: body.Angle()}
}

// SetTransform moves a body. Static shapes live in a separate spatial index
// that is not refreshed by Step, so they are re-added at the new pose.
func (s *Space) SetTransform(h BodyHandle, t Transform) {
	rec := s.body(h)
	body := rec.body
	body.SetPosition(toCP(t.Position))
	body.SetAngle(t.Rotation)
	if body.GetType() == cp.BODY_STATIC {
		for _, shape := range rec.shapes {
			s.space.RemoveShape(shape)
			s.space.AddShape(shape)
		}
	}
}

func (s *Space) Velocity(h BodyHandle) Vec2 {
	return fromCP(s.body(h).body.Velocity())
}

func (s *Space) SetVelocity(h BodyHandle, v Vec2) {
	s.body(h).body.SetVelocityVector(toCP(v))
}

func (s *Space) SetAngularVelocity(h BodyHandle, w float64) {
	s.body(h).body.SetAngularVelocity(w)
}

func (s *Space) SetGravityScale(h BodyHandle, scale float64) {
	s.body(h).gravityScale = scale
}

func (s *Space) Kind(h BodyHandle) BodyKind {
	switch s.body(h).body.GetType() {
	case cp.BODY_STATIC:
		return Static
	case cp.BODY_KINEMATIC:
		return Kinematic
	default:
		return Dynamic
	}
}

func (s *Space) SetKind(h BodyHandle, kind BodyKind) {
	body := s.body(h).body
	switch kind {
	case Static:
		body.SetType(cp.BODY_STATIC)
	case Kinematic:
		body.SetType(cp.BODY_KINEMATIC)
	case Dynamic:
		body.SetType(cp.BODY_DYNAMIC)
	default:
		panic(fmt.Sprintf("physics: unknown body kind %d", kind))
	}
}

// CreateWeldJoint pins b to a at a's current position and locks their
// relative rotation with a gear joint.
func (s *Space) CreateWeldJoint(a, b BodyHandle) JointHandle {
	ba := s.body(a).body
	bb := s.body(b).body

	pivot := cp.NewPivotJoint(ba, bb, ba.Position())
	gear := cp.NewGearJoint(ba, bb, bb.Angle()-ba.Angle(), 1)

	rec := &jointRecord{a: a, b: b}
	for _, c := range []*cp.Constraint{pivot, gear} {
		c.SetCollideBodies(false)
		s.space.AddConstraint(c)
		rec.constraints = append(rec.constraints, c)
	}

	h := s.nextJoint
	s.nextJoint++
	s.joints.Put(h, rec)
	return h
}

func (s *Space) DestroyJoint(h JointHandle) {
	rec, ok := s.joints.Get(h)
	if !ok {
		panic(fmt.Sprintf("physics: unknown joint handle %d", h))
	}
	for _, c := range rec.constraints {
		s.space.RemoveConstraint(c)
	}
	s.joints.Del(h)
}

// Step advances the space by dt seconds. Contact events from the previous
// step are discarded first.
func (s *Space) Step(dt float64, iterations int) {
	s.contacts = s.contacts[:0]
	s.seen.Clear()
	if iterations > 0 {
		s.space.Iterations = uint(iterations)
	}
	s.space.Step(dt)
}

func (s *Space) ContactEvents() []ContactEvent {
	return s.contacts
}

// BodyCount returns the number of live bodies.
func (s *Space) BodyCount() int {
	return s.bodies.Len()
}

// JointCount returns the number of live joints.
func (s *Space) JointCount() int {
	return s.joints.Len()
}

// Close removes every remaining body and joint.
func (s *Space) Close() {
	var handles []BodyHandle
	s.bodies.ForEach(func(h BodyHandle, _ *bodyRecord) bool {
		handles = append(handles, h)
		return true
	})
	for _, h := range handles {
		s.DestroyBody(h)
	}
}

func (s *Space) body(h BodyHandle) *bodyRecord {
	rec, ok := s.bodies.Get(h)
	if !ok {
		panic(fmt.Sprintf("physics: unknown body handle %d", h))
	}
	return rec
}

func toCP(v Vec2) cp.Vector {
	return cp.Vector{X: v.X, Y: v.Y}
}

func fromCP(v cp.Vector) Vec2 {
	return Vec2{X: v.X, Y: v.Y}
}

var _ Engine = (*Space)(nil)
