// Package goldminer is the simulation core of a two-player Gold Miner match.
// Game objects are entities in an ecs.Storage, built by a Factory and driven
// by systems that a Simulation runs in a fixed order every frame. Rigid-body
// work is delegated to a physics.Engine through a Binding.
package goldminer

import (
	"github.com/plus3/goldminer/ecs"
	"github.com/plus3/goldminer/physics"
)

//go:generate stringer -type=RopeState,ItemKind -output=enums_string.go

// RopeState is the phase of a rope's extend/retract cycle.
type RopeState uint8

const (
	AtRest RopeState = iota
	Extending
	Retracting
)

// ItemKind classifies a collectable.
type ItemKind uint8

const (
	Gold ItemKind = iota
	Rock
	Diamond
	TreasureChest
	MysteryBag
)

// SpriteID names the image a Renderable is drawn with. Drawing itself is
// left to the frontend.
type SpriteID uint8

const (
	SpriteNone SpriteID = iota
	SpritePlayer
	SpriteRope
	SpriteGold
	SpriteRock
	SpriteDiamond
	SpriteTreasureChest
	SpriteMysteryBag
	SpriteMole
)

// Position is the top-left pixel coordinate of an entity. For entities with
// a PhysicsBody it is rewritten from the body every frame.
type Position struct {
	X, Y float32
}

// Velocity in pixels per second, for entities moved without physics.
type Velocity struct {
	X, Y float32
}

// Rotation in degrees. For ropes it is the aiming angle measured from
// straight down, positive towards +x.
type Rotation struct {
	Angle float32
}

// Length is the current rope extension in pixels.
type Length struct {
	Value float32
}

type Renderable struct {
	Sprite        SpriteID
	Width, Height float32
}

// PlayerInfo is the join key between a player and everything it owns.
type PlayerInfo struct {
	PlayerID int
}

// PlayerInput holds the edge-triggered "send rope" flag for one player.
type PlayerInput struct {
	SendRope bool
}

type RopeControl struct {
	State RopeState
	// SwingDir is +1 or -1, the direction the rest pendulum is moving in.
	SwingDir float32
}

type ItemType struct {
	Kind ItemKind
}

type Value struct {
	Amount int
}

type Weight struct {
	W float32
}

type Score struct {
	Points int
}

// GameTimer counts down the seconds left in the match.
type GameTimer struct {
	TimeLeft float32
}

type UIComponent struct {
	Slot int
}

// PhysicsBody owns a body in the physics engine. Only the Binding creates
// and releases it.
type PhysicsBody struct {
	Body physics.BodyHandle
}

// GrabbedJoint is present on a rope while it holds a collectable.
type GrabbedJoint struct {
	Joint    physics.JointHandle
	Attached ecs.EntityId
}

type Mole struct {
	Speed       float32
	MovingRight bool
}

// LifeTime tags the entity for destruction once Remaining reaches zero.
type LifeTime struct {
	Remaining float32
}

type (
	RoperTag    struct{}
	Collectable struct{}
	Collidable  struct{}
	// DestroyTag marks an entity for removal by the DestructionSystem.
	DestroyTag  struct{}
	GameOverTag struct{}
	// ScoredTag marks the score popup spawned when an item is cashed in.
	ScoredTag struct{}
)

// MatchState is the match-wide singleton.
type MatchState struct {
	Over   bool
	Winner int
	Layout int
	// Collected counts items released at a player's winch.
	Collected int
}

// NewRegistry registers every game component in a fixed order, so the mask
// layout is identical for every Simulation.
func NewRegistry() *ecs.ComponentRegistry {
	r := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Position](r)
	ecs.RegisterComponent[Velocity](r)
	ecs.RegisterComponent[Rotation](r)
	ecs.RegisterComponent[Length](r)
	ecs.RegisterComponent[Renderable](r)
	ecs.RegisterComponent[PlayerInfo](r)
	ecs.RegisterComponent[PlayerInput](r)
	ecs.RegisterComponent[RopeControl](r)
	ecs.RegisterComponent[ItemType](r)
	ecs.RegisterComponent[Value](r)
	ecs.RegisterComponent[Weight](r)
	ecs.RegisterComponent[Score](r)
	ecs.RegisterComponent[GameTimer](r)
	ecs.RegisterComponent[UIComponent](r)
	ecs.RegisterComponent[PhysicsBody](r)
	ecs.RegisterComponent[GrabbedJoint](r)
	ecs.RegisterComponent[Mole](r)
	ecs.RegisterComponent[LifeTime](r)
	ecs.RegisterComponent[RoperTag](r)
	ecs.RegisterComponent[Collectable](r)
	ecs.RegisterComponent[Collidable](r)
	ecs.RegisterComponent[DestroyTag](r)
	ecs.RegisterComponent[GameOverTag](r)
	ecs.RegisterComponent[ScoredTag](r)
	return r
}
