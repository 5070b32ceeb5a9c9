package ecs_test

import "github.com/plus3/goldminer/ecs"

type Position struct {
	X, Y float32
}

type Velocity struct {
	DX, DY float32
}

type Name struct {
	Value string
}

type Health struct {
	Current int
	Max     int
}

// Non-struct components.
type (
	Score  int32
	Tag    string
	Weight float64
)

// Components holding reference types.
type (
	Haul struct {
		Items []string
	}
	Traits struct {
		Attributes map[string]int
	}
	RefComponent struct {
		Ref *Position
	}
)

// newTestRegistry registers every component above. Bits follow declaration
// order, so Position is bit 0.
func newTestRegistry() *ecs.ComponentRegistry {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Position](registry)
	ecs.RegisterComponent[Velocity](registry)
	ecs.RegisterComponent[Name](registry)
	ecs.RegisterComponent[Health](registry)
	ecs.RegisterComponent[Score](registry)
	ecs.RegisterComponent[Tag](registry)
	ecs.RegisterComponent[Weight](registry)
	ecs.RegisterComponent[Haul](registry)
	ecs.RegisterComponent[Traits](registry)
	ecs.RegisterComponent[RefComponent](registry)
	return registry
}
