// Package physicstest provides a deterministic in-memory physics.Engine for
// gameplay tests.
//
// Bodies integrate with explicit Euler steps. Dynamic bodies fall under
// gravity scaled per body. A contact is reported when a body with hit events
// starts overlapping another body's bounding circle. Welded bodies follow the
// first body of the joint rigidly.
package physicstest

import (
	"fmt"
	"math"
	"slices"

	"github.com/plus3/goldminer/physics"
)

type body struct {
	kind         physics.BodyKind
	transform    physics.Transform
	velocity     physics.Vec2
	angular      float64
	gravityScale float64
	radius       float64
	hits         bool
}

type joint struct {
	a, b   physics.BodyHandle
	offset physics.Vec2
}

// Engine is a fake physics.Engine.
type Engine struct {
	Gravity physics.Vec2

	bodies    map[physics.BodyHandle]*body
	joints    map[physics.JointHandle]*joint
	nextBody  physics.BodyHandle
	nextJoint physics.JointHandle

	touching map[[2]physics.BodyHandle]bool
	events   []physics.ContactEvent
	injected []physics.ContactEvent

	Steps int
}

// New returns an empty Engine with the given gravity.
func New(gravity physics.Vec2) *Engine {
	return &Engine{
		Gravity:   gravity,
		bodies:    make(map[physics.BodyHandle]*body),
		joints:    make(map[physics.JointHandle]*joint),
		touching:  make(map[[2]physics.BodyHandle]bool),
		nextBody:  1,
		nextJoint: 1,
	}
}

func (e *Engine) CreateBody(def physics.BodyDef) physics.BodyHandle {
	h := e.nextBody
	e.nextBody++
	e.bodies[h] = &body{
		kind:         def.Kind,
		transform:    physics.Transform{Position: def.Position, Rotation: def.Angle},
		gravityScale: 1,
		radius:       boundingRadius(def.Shape),
		hits:         def.Shape.HitEvents,
	}
	return h
}

func boundingRadius(def physics.ShapeDef) float64 {
	if def.Kind == physics.Circle {
		return def.Radius
	}
	r := 0.0
	for _, v := range def.Vertices {
		r = math.Max(r, v.Len())
	}
	return r
}

func (e *Engine) DestroyBody(h physics.BodyHandle) {
	e.get(h)
	for jh, j := range e.joints {
		if j.a == h || j.b == h {
			delete(e.joints, jh)
		}
	}
	for pair := range e.touching {
		if pair[0] == h || pair[1] == h {
			delete(e.touching, pair)
		}
	}
	delete(e.bodies, h)
}

func (e *Engine) Transform(h physics.BodyHandle) physics.Transform {
	return e.get(h).transform
}

func (e *Engine) SetTransform(h physics.BodyHandle, t physics.Transform) {
	e.get(h).transform = t
}

func (e *Engine) Velocity(h physics.BodyHandle) physics.Vec2 {
	return e.get(h).velocity
}

func (e *Engine) SetVelocity(h physics.BodyHandle, v physics.Vec2) {
	e.get(h).velocity = v
}

func (e *Engine) SetAngularVelocity(h physics.BodyHandle, w float64) {
	e.get(h).angular = w
}

func (e *Engine) SetGravityScale(h physics.BodyHandle, scale float64) {
	e.get(h).gravityScale = scale
}

// GravityScale returns the gravity scale last set on a body.
func (e *Engine) GravityScale(h physics.BodyHandle) float64 {
	return e.get(h).gravityScale
}

func (e *Engine) Kind(h physics.BodyHandle) physics.BodyKind {
	return e.get(h).kind
}

func (e *Engine) SetKind(h physics.BodyHandle, kind physics.BodyKind) {
	e.get(h).kind = kind
}

func (e *Engine) CreateWeldJoint(a, b physics.BodyHandle) physics.JointHandle {
	ba, bb := e.get(a), e.get(b)
	h := e.nextJoint
	e.nextJoint++
	e.joints[h] = &joint{a: a, b: b, offset: bb.transform.Position.Sub(ba.transform.Position)}
	return h
}

func (e *Engine) DestroyJoint(h physics.JointHandle) {
	if _, ok := e.joints[h]; !ok {
		panic(fmt.Sprintf("physicstest: unknown joint handle %d", h))
	}
	delete(e.joints, h)
}

// HasJoint reports whether a joint is still alive.
func (e *Engine) HasJoint(h physics.JointHandle) bool {
	_, ok := e.joints[h]
	return ok
}

// JointCount returns the number of live joints.
func (e *Engine) JointCount() int {
	return len(e.joints)
}

// HasBody reports whether a body is still alive.
func (e *Engine) HasBody(h physics.BodyHandle) bool {
	_, ok := e.bodies[h]
	return ok
}

func (e *Engine) BodyCount() int {
	return len(e.bodies)
}

// Inject queues a contact event that the next Step reports in addition to
// the detected ones. Handles are not validated.
func (e *Engine) Inject(a, b physics.BodyHandle) {
	e.injected = append(e.injected, physics.ContactEvent{BodyA: a, BodyB: b})
}

func (e *Engine) Step(dt float64, _ int) {
	e.Steps++
	e.events = e.events[:0]

	for _, h := range e.handles() {
		b := e.bodies[h]
		if b.kind == physics.Static {
			continue
		}
		if b.kind == physics.Dynamic {
			b.velocity = b.velocity.Add(e.Gravity.Scale(b.gravityScale * dt))
		}
		b.transform.Position = b.transform.Position.Add(b.velocity.Scale(dt))
		b.transform.Rotation += b.angular * dt
	}

	for _, j := range e.sortedJoints() {
		a, b := e.bodies[j.a], e.bodies[j.b]
		b.transform.Position = a.transform.Position.Add(j.offset)
		b.velocity = a.velocity
	}

	e.detect()

	e.events = append(e.events, e.injected...)
	e.injected = e.injected[:0]
}

func (e *Engine) detect() {
	handles := e.handles()
	for i, ha := range handles {
		for _, hb := range handles[i+1:] {
			a, b := e.bodies[ha], e.bodies[hb]
			pair := [2]physics.BodyHandle{ha, hb}
			if !a.hits && !b.hits || e.welded(ha, hb) {
				continue
			}
			overlap := a.transform.Position.Dist(b.transform.Position) <= a.radius+b.radius
			if overlap && !e.touching[pair] {
				e.events = append(e.events, physics.ContactEvent{BodyA: ha, BodyB: hb})
			}
			if overlap {
				e.touching[pair] = true
			} else {
				delete(e.touching, pair)
			}
		}
	}
}

func (e *Engine) welded(a, b physics.BodyHandle) bool {
	for _, j := range e.joints {
		if j.a == a && j.b == b || j.a == b && j.b == a {
			return true
		}
	}
	return false
}

func (e *Engine) ContactEvents() []physics.ContactEvent {
	return e.events
}

func (e *Engine) Close() {
	clear(e.bodies)
	clear(e.joints)
	clear(e.touching)
}

func (e *Engine) handles() []physics.BodyHandle {
	hs := make([]physics.BodyHandle, 0, len(e.bodies))
	for h := range e.bodies {
		hs = append(hs, h)
	}
	slices.Sort(hs)
	return hs
}

func (e *Engine) sortedJoints() []*joint {
	hs := make([]physics.JointHandle, 0, len(e.joints))
	for h := range e.joints {
		hs = append(hs, h)
	}
	slices.Sort(hs)
	js := make([]*joint, len(hs))
	for i, h := range hs {
		js[i] = e.joints[h]
	}
	return js
}

func (e *Engine) get(h physics.BodyHandle) *body {
	b, ok := e.bodies[h]
	if !ok {
		panic(fmt.Sprintf("physicstest: unknown body handle %d", h))
	}
	return b
}

var _ physics.Engine = (*Engine)(nil)
