package ecs

import "reflect"

// Commands buffers structural changes requested by systems. The scheduler
// applies them after the last system of a frame, so every system in a frame
// observes the same set of entities.
//
// Flush applies the buffer in a fixed order: component removals, component
// additions, spawns, then deferred functions.
type Commands struct {
	removes []componentEdit
	adds    []componentEdit
	spawns  [][]any
	defers  []func()
}

// componentEdit targets one component of one entity. component is nil for
// removals.
type componentEdit struct {
	entity    EntityId
	compType  reflect.Type
	component any
}

func newCommands() *Commands {
	return &Commands{}
}

// Spawn queues a new entity with the given components.
func (c *Commands) Spawn(components ...any) {
	c.spawns = append(c.spawns, components)
}

// AddComponent queues adding or replacing a component on entity.
func (c *Commands) AddComponent(entity EntityId, component any) {
	c.adds = append(c.adds, componentEdit{entity: entity, component: component})
}

// RemoveComponent queues removing the component of compType from entity.
func (c *Commands) RemoveComponent(entity EntityId, compType reflect.Type) {
	c.removes = append(c.removes, componentEdit{entity: entity, compType: compType})
}

// Defer queues fn to run after every structural change of the frame.
func (c *Commands) Defer(fn func()) {
	c.defers = append(c.defers, fn)
}

// Pending returns the number of queued operations.
func (c *Commands) Pending() int {
	return len(c.removes) + len(c.adds) + len(c.spawns) + len(c.defers)
}

// Flush applies and clears the buffer. Removals and additions aimed at an
// entity that carries no component at flush time are dropped.
func (c *Commands) Flush(storage *Storage) {
	for _, edit := range c.removes {
		if storage.Alive(edit.entity) {
			storage.RemoveComponent(edit.entity, edit.compType)
		}
	}
	for _, edit := range c.adds {
		if storage.Alive(edit.entity) {
			storage.AddComponent(edit.entity, edit.component)
		}
	}
	for _, components := range c.spawns {
		storage.Spawn(components...)
	}
	for _, fn := range c.defers {
		fn()
	}

	clear(c.spawns)
	clear(c.adds)
	clear(c.defers)
	c.removes = c.removes[:0]
	c.adds = c.adds[:0]
	c.spawns = c.spawns[:0]
	c.defers = c.defers[:0]
}
