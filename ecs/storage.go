package ecs

import (
	"fmt"
	"iter"
	"reflect"
	"unsafe"
)

// Storage is the entity/component store. It issues entity ids, records the
// component mask of every entity and keeps one block storage per registered
// component type, indexed by entity id.
type Storage struct {
	registry   *ComponentRegistry
	storages   []iComponentStorage
	masks      []Mask
	nextId     EntityId
	singletons map[reflect.Type]*singletonEntry
}

type singletonEntry struct {
	dataPtr unsafe.Pointer
	value   reflect.Value
}

// NewStorage creates a new ECS storage system with the given component registry
func NewStorage(registry *ComponentRegistry) *Storage {
	return &Storage{
		registry:   registry,
		masks:      make([]Mask, 1, 256),
		nextId:     1,
		singletons: make(map[reflect.Type]*singletonEntry),
	}
}

// Registry returns the component registry backing this storage.
func (s *Storage) Registry() *ComponentRegistry {
	return s.registry
}

// Create issues a fresh entity id with no components.
func (s *Storage) Create() EntityId {
	id := s.nextId
	s.nextId++
	s.masks = append(s.masks, 0)
	return id
}

// Spawn creates a new entity and adds every given component to it before
// returning, so the entity is never observable with a partial component set.
func (s *Storage) Spawn(components ...any) EntityId {
	if len(components) == 0 {
		panic("cannot spawn entity without components")
	}

	id := s.Create()
	for _, comp := range components {
		s.AddComponent(id, comp)
	}
	return id
}

// MaxId returns the highest id issued so far, or NilEntity.
func (s *Storage) MaxId() EntityId {
	return s.nextId - 1
}

// Mask returns the component mask of an entity.
func (s *Storage) Mask(id EntityId) Mask {
	s.checkId(id)
	return s.masks[id]
}

// Alive reports whether an entity currently carries any component.
func (s *Storage) Alive(id EntityId) bool {
	if id == NilEntity || id >= s.nextId {
		return false
	}
	return !s.masks[id].Empty()
}

// AddComponent attaches a component to an entity, replacing any existing
// component of the same type.
func (s *Storage) AddComponent(id EntityId, component any) {
	s.checkId(id)

	compType := componentType(component)
	bit := s.registry.BitOf(compType)

	s.storageFor(bit).Set(int(id), component)
	s.masks[id] = s.masks[id].With(bit)
}

// RemoveComponent detaches a component from an entity. Removing a component
// the entity does not have is a no-op.
func (s *Storage) RemoveComponent(id EntityId, compType reflect.Type) {
	s.checkId(id)

	bit := s.registry.BitOf(compType)
	if !s.masks[id].Has(bit) {
		return
	}

	s.storageFor(bit).Delete(int(id))
	s.masks[id] = s.masks[id].Without(bit)
}

// Clear removes every component of an entity. The id stays issued but will
// not match any query afterwards.
func (s *Storage) Clear(id EntityId) {
	s.checkId(id)

	for bit := range s.masks[id].Bits() {
		s.storages[bit].Delete(int(id))
	}
	s.masks[id] = 0
}

// GetComponent returns a pointer to the component for the given entity ID and
// component type, or nil when the entity does not have it.
func (s *Storage) GetComponent(id EntityId, compType reflect.Type) any {
	if id == NilEntity || id >= s.nextId {
		return nil
	}

	bit, ok := s.registry.Lookup(compType)
	if !ok || !s.masks[id].Has(bit) {
		return nil
	}

	return s.storages[bit].Get(int(id))
}

// HasComponent checks if an entity has a specific component type
func (s *Storage) HasComponent(id EntityId, compType reflect.Type) bool {
	if id == NilEntity || id >= s.nextId {
		return false
	}

	bit, ok := s.registry.Lookup(compType)
	if !ok {
		return false
	}
	return s.masks[id].Has(bit)
}

// Match yields, in ascending id order, every entity whose mask contains all
// bits of required. The sequence is lazy and can be ranged over repeatedly;
// entities created while iterating are visited if their id is reached.
func (s *Storage) Match(required Mask) iter.Seq[EntityId] {
	return func(yield func(EntityId) bool) {
		for id := EntityId(1); id < s.nextId; id++ {
			mask := s.masks[id]
			if mask.Empty() || !mask.Contains(required) {
				continue
			}
			if !yield(id) {
				return
			}
		}
	}
}

// AddSingleton installs a singleton value, replacing any previous value of the
// same type.
func (s *Storage) AddSingleton(value any) {
	t := reflect.TypeOf(value)
	v := reflect.New(t)
	v.Elem().Set(reflect.ValueOf(value))
	s.singletons[t] = &singletonEntry{
		dataPtr: v.UnsafePointer(),
		value:   v,
	}
}

// ReadSingleton stores a pointer to the singleton of the pointed-to type in
// target, which must be a **T. Returns false if no such singleton exists.
func (s *Storage) ReadSingleton(target any) bool {
	ptr := reflect.ValueOf(target)
	if ptr.Kind() != reflect.Ptr || ptr.Elem().Kind() != reflect.Ptr {
		panic("ReadSingleton target must be a pointer to a pointer")
	}

	entry := s.getSingletonEntry(ptr.Elem().Type().Elem())
	if entry == nil {
		return false
	}
	ptr.Elem().Set(entry.value)
	return true
}

func (s *Storage) getSingletonEntry(t reflect.Type) *singletonEntry {
	return s.singletons[t]
}

func (s *Storage) storageFor(bit uint8) iComponentStorage {
	for int(bit) >= len(s.storages) {
		s.storages = append(s.storages, s.registry.factories[len(s.storages)]())
	}
	return s.storages[bit]
}

func (s *Storage) checkId(id EntityId) {
	if id == NilEntity || id >= s.nextId {
		panic(fmt.Sprintf("ecs: entity id %d out of range (max %d)", id, s.nextId-1))
	}
}

func componentType(component any) reflect.Type {
	compType := reflect.TypeOf(component)

	// If it's a pointer, get the underlying type
	if compType.Kind() == reflect.Ptr {
		compType = compType.Elem()
	}

	// Components can be structs or primitives (int, string, etc.)
	// But not pointers, maps, channels, or functions (those aren't value types)
	if compType.Kind() == reflect.Ptr || compType.Kind() == reflect.Map ||
		compType.Kind() == reflect.Chan || compType.Kind() == reflect.Func {
		panic("components cannot be pointers, maps, channels, or functions")
	}
	return compType
}

// Add attaches a component of type T to an entity.
func Add[T any](s *Storage, id EntityId, component T) {
	s.AddComponent(id, component)
}

// Remove detaches the component of type T from an entity.
func Remove[T any](s *Storage, id EntityId) {
	s.RemoveComponent(id, reflect.TypeFor[T]())
}

// Has reports whether an entity carries a component of type T.
func Has[T any](s *Storage, id EntityId) bool {
	return s.HasComponent(id, reflect.TypeFor[T]())
}

// Get returns the component of type T of an entity. Reading a component the
// entity does not carry is a programming error and panics.
func Get[T any](s *Storage, id EntityId) *T {
	comp := s.GetComponent(id, reflect.TypeFor[T]())
	if comp == nil {
		panic(fmt.Sprintf("ecs: entity %d has no %s component", id, reflect.TypeFor[T]()))
	}
	return comp.(*T)
}

// TryGet returns the component of type T of an entity, or nil.
func TryGet[T any](s *Storage, id EntityId) *T {
	comp := s.GetComponent(id, reflect.TypeFor[T]())
	if comp == nil {
		return nil
	}
	return comp.(*T)
}

type ComponentReader interface {
	GetComponent(EntityId, reflect.Type) any
}

func ReadComponent[T any](reader ComponentReader, entityId EntityId) *T {
	comp := reader.GetComponent(entityId, reflect.TypeFor[T]())
	if comp == nil {
		return nil
	}
	return comp.(*T)
}
