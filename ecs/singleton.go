package ecs

import "reflect"

// Singleton is a typed handle to storage-wide state that belongs to no
// entity, such as match rules or the round clock. The pointer is looked up
// lazily, so a handle may be bound before the value is installed.
type Singleton[T any] struct {
	storage *Storage
	value   *T
}

// NewSingleton returns a handle to the T singleton of storage, installing
// initializer[0] (or the zero value) first if none exists. An existing value
// is never replaced.
func NewSingleton[T any](storage *Storage, initializer ...T) *Singleton[T] {
	if storage.getSingletonEntry(reflect.TypeFor[T]()) == nil {
		var value T
		if len(initializer) > 0 {
			value = initializer[0]
		}
		storage.AddSingleton(value)
	}

	s := &Singleton[T]{}
	s.Init(storage)
	return s
}

// Init binds the handle to storage. The Scheduler calls it for Singleton
// fields of registered systems.
func (s *Singleton[T]) Init(storage *Storage) {
	s.storage = storage
	s.value = nil
	s.lookup()
}

func (s *Singleton[T]) lookup() *T {
	if s.value == nil && s.storage != nil {
		if entry := s.storage.getSingletonEntry(reflect.TypeFor[T]()); entry != nil {
			s.value = (*T)(entry.dataPtr)
		}
	}
	return s.value
}

// Get returns the singleton, or nil while it is not installed.
func (s *Singleton[T]) Get() *T {
	return s.lookup()
}

// MustGet returns the singleton and panics if it is not installed.
func (s *Singleton[T]) MustGet() *T {
	if v := s.lookup(); v != nil {
		return v
	}
	panic("ecs: singleton " + reflect.TypeFor[T]().String() + " not installed")
}

// Exists reports whether the singleton is installed.
func (s *Singleton[T]) Exists() bool {
	return s.lookup() != nil
}
