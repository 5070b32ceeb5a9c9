package ecs_test

import (
	"reflect"
	"testing"

	"github.com/plus3/goldminer/ecs"
)

type PosVel struct {
	*Position
	*Velocity
}

// populate spawns n entities; every stride-th one also moves.
func populate(storage *ecs.Storage, n, stride int) []ecs.EntityId {
	ids := make([]ecs.EntityId, 0, n)
	for i := range n {
		if i%stride == 0 {
			ids = append(ids, storage.Spawn(Position{X: float32(i)}, Velocity{DX: 1, DY: 1}))
		} else {
			ids = append(ids, storage.Spawn(Position{X: float32(i)}, Health{Current: 1, Max: 1}))
		}
	}
	return ids
}

func BenchmarkSpawn(b *testing.B) {
	b.Run("two components", func(b *testing.B) {
		storage := ecs.NewStorage(newTestRegistry())
		for b.Loop() {
			storage.Spawn(Position{X: 1, Y: 2}, Velocity{DX: 0.5, DY: 0.5})
		}
	})

	b.Run("four components", func(b *testing.B) {
		storage := ecs.NewStorage(newTestRegistry())
		for b.Loop() {
			storage.Spawn(
				Position{X: 1, Y: 2},
				Velocity{DX: 0.5, DY: 0.5},
				Health{Current: 100, Max: 100},
				Name{Value: "nugget"},
			)
		}
	})
}

func BenchmarkAddRemoveComponent(b *testing.B) {
	storage := ecs.NewStorage(newTestRegistry())
	id := storage.Spawn(Position{X: 1, Y: 2})
	velocity := reflect.TypeFor[Velocity]()

	for b.Loop() {
		storage.AddComponent(id, Velocity{DX: 0.5})
		storage.RemoveComponent(id, velocity)
	}
}

func BenchmarkSpawnClear(b *testing.B) {
	storage := ecs.NewStorage(newTestRegistry())
	query := ecs.NewQuery[PosVel](storage)

	for b.Loop() {
		id := storage.Spawn(Position{X: 1, Y: 2}, Velocity{DX: 1, DY: 1})
		query.Get(id).Position.X++
		storage.Clear(id)
	}
}

func BenchmarkLookup(b *testing.B) {
	storage := ecs.NewStorage(newTestRegistry())
	id := storage.Spawn(Position{X: 1, Y: 2}, Velocity{DX: 0.5, DY: 0.5})
	query := ecs.NewQuery[PosVel](storage)

	b.Run("Get", func(b *testing.B) {
		for b.Loop() {
			_ = ecs.Get[Position](storage, id)
		}
	})

	b.Run("Query.Get", func(b *testing.B) {
		for b.Loop() {
			_ = query.Get(id)
		}
	})

	b.Run("Mask.Contains", func(b *testing.B) {
		required := query.Mask()
		for b.Loop() {
			_ = storage.Mask(id).Contains(required)
		}
	})
}

func BenchmarkMatch(b *testing.B) {
	for _, stride := range []int{1, 10} {
		storage := ecs.NewStorage(newTestRegistry())
		populate(storage, 10000, stride)
		required := ecs.MaskFor[Position](storage.Registry()) | ecs.MaskFor[Velocity](storage.Registry())

		b.Run(map[int]string{1: "dense", 10: "sparse"}[stride], func(b *testing.B) {
			for b.Loop() {
				for range storage.Match(required) {
				}
			}
		})
	}
}

func BenchmarkQueryIter(b *testing.B) {
	for _, stride := range []int{1, 10} {
		storage := ecs.NewStorage(newTestRegistry())
		populate(storage, 10000, stride)
		query := ecs.NewQuery[PosVel](storage)

		b.Run(map[int]string{1: "dense", 10: "sparse"}[stride], func(b *testing.B) {
			for b.Loop() {
				for item := range query.Iter() {
					item.Position.X += item.Velocity.DX
				}
			}
		})
	}
}

type benchDriftSystem struct {
	Entities ecs.Query[PosVel]
}

func (s *benchDriftSystem) Execute(frame *ecs.UpdateFrame) {
	for item := range s.Entities.Iter() {
		item.Position.X += item.Velocity.DX * float32(frame.DeltaTime)
		item.Position.Y += item.Velocity.DY * float32(frame.DeltaTime)
	}
}

type benchChurnSystem struct {
	Wounded ecs.Query[struct {
		Id ecs.EntityId
		*Health
	}]
}

func (s *benchChurnSystem) Execute(frame *ecs.UpdateFrame) {
	for item := range s.Wounded.Iter() {
		if item.Health.Current < item.Health.Max {
			item.Health.Current++
			continue
		}
		frame.Commands.AddComponent(item.Id, Health{Current: 0, Max: item.Health.Max})
	}
}

func BenchmarkSchedulerOnce(b *testing.B) {
	b.Run("one system", func(b *testing.B) {
		storage := ecs.NewStorage(newTestRegistry())
		populate(storage, 1000, 1)
		scheduler := ecs.NewScheduler(storage)
		scheduler.Register(&benchDriftSystem{})

		for b.Loop() {
			scheduler.Once(0.016)
		}
	})

	b.Run("with commands", func(b *testing.B) {
		storage := ecs.NewStorage(newTestRegistry())
		populate(storage, 2000, 2)
		scheduler := ecs.NewScheduler(storage)
		scheduler.Register(&benchDriftSystem{})
		scheduler.Register(&benchChurnSystem{})

		for b.Loop() {
			scheduler.Once(0.016)
		}
	})
}
