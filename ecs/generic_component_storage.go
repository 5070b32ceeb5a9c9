package ecs

import (
	"iter"
	"reflect"
)

// ComponentRegistry manages component type registration for an ECS instance.
// Each registered type is given a fixed bit position in the Mask vocabulary.
// Each Storage instance has its own ComponentRegistry, allowing multiple
// independent ECS systems to coexist without interference.
type ComponentRegistry struct {
	bits      map[reflect.Type]uint8
	types     []reflect.Type
	factories []func() iComponentStorage
}

// NewComponentRegistry creates a new component registry.
func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		bits: make(map[reflect.Type]uint8),
	}
}

// RegisterComponent registers a new component type with the given registry
// and returns its bit. Registering the same type twice returns the existing bit.
// This must be called for each component type before it can be used.
func RegisterComponent[T any](r *ComponentRegistry) uint8 {
	t := reflect.TypeFor[T]()
	if bit, ok := r.bits[t]; ok {
		return bit
	}
	if len(r.types) >= MaxComponentTypes {
		panic("ecs: too many component types registered, cannot add " + t.String())
	}

	bit := uint8(len(r.types))
	r.bits[t] = bit
	r.types = append(r.types, t)
	r.factories = append(r.factories, func() iComponentStorage {
		return &genericComponentStorage[T]{}
	})
	return bit
}

// BitOf returns the bit assigned to a component type.
// Panics if the type is not registered.
func (r *ComponentRegistry) BitOf(t reflect.Type) uint8 {
	bit, ok := r.bits[t]
	if !ok {
		panic("ecs: component type " + t.String() + " not registered")
	}
	return bit
}

// Lookup returns the bit assigned to a component type, if any.
func (r *ComponentRegistry) Lookup(t reflect.Type) (uint8, bool) {
	bit, ok := r.bits[t]
	return bit, ok
}

// TypeOf returns the component type registered at bit.
func (r *ComponentRegistry) TypeOf(bit uint8) reflect.Type {
	return r.types[bit]
}

// Len returns the number of registered component types.
func (r *ComponentRegistry) Len() int {
	return len(r.types)
}

// MaskOf builds a mask from component types.
func (r *ComponentRegistry) MaskOf(types ...reflect.Type) Mask {
	var m Mask
	for _, t := range types {
		m = m.With(r.BitOf(t))
	}
	return m
}

// MaskFor returns the single-bit mask of component type T.
func MaskFor[T any](r *ComponentRegistry) Mask {
	return Mask(0).With(r.BitOf(reflect.TypeFor[T]()))
}

const (
	genericBlockSize = 64
)

// genericComponentStorage is a generic implementation of iComponentStorage.
// It stores components of a specific type `T` in blocks indexed by entity id,
// so a component never moves once written.
type genericComponentStorage[T any] struct {
	blocks []*[genericBlockSize]T
	filled []*[genericBlockSize]bool
	count  int
}

// Set writes a component at the given index, growing the block list as needed.
func (cs *genericComponentStorage[T]) Set(index int, item any) {
	var concreteItem T
	if ptr, ok := item.(*T); ok {
		concreteItem = *ptr
	} else if val, ok := item.(T); ok {
		concreteItem = val
	} else {
		panic("ecs: component value of wrong type " + reflect.TypeOf(item).String())
	}

	blockIdx := index / genericBlockSize
	slotIdx := index % genericBlockSize

	for blockIdx >= len(cs.blocks) {
		cs.blocks = append(cs.blocks, new([genericBlockSize]T))
		cs.filled = append(cs.filled, new([genericBlockSize]bool))
	}

	if !cs.filled[blockIdx][slotIdx] {
		cs.count++
	}
	cs.blocks[blockIdx][slotIdx] = concreteItem
	cs.filled[blockIdx][slotIdx] = true
}

// Get returns a pointer to the component at the given index, or nil.
func (cs *genericComponentStorage[T]) Get(index int) any {
	if p := cs.ptr(index); p != nil {
		return p
	}
	return nil
}

func (cs *genericComponentStorage[T]) ptr(index int) *T {
	if index < 0 {
		return nil
	}

	blockIdx := index / genericBlockSize
	slotIdx := index % genericBlockSize

	if blockIdx >= len(cs.blocks) {
		return nil
	}

	if !cs.filled[blockIdx][slotIdx] {
		return nil
	}

	return &cs.blocks[blockIdx][slotIdx]
}

// Delete marks a component slot as empty.
func (cs *genericComponentStorage[T]) Delete(index int) {
	if index < 0 {
		return
	}

	blockIdx := index / genericBlockSize
	slotIdx := index % genericBlockSize

	if blockIdx >= len(cs.blocks) {
		return
	}

	if cs.filled[blockIdx][slotIdx] {
		cs.filled[blockIdx][slotIdx] = false
		var zero T
		cs.blocks[blockIdx][slotIdx] = zero // Zero out the value
		cs.count--
	}
}

// Has checks if a component exists at the given index.
func (cs *genericComponentStorage[T]) Has(index int) bool {
	return cs.ptr(index) != nil
}

// Len returns the number of stored components.
func (cs *genericComponentStorage[T]) Len() int {
	return cs.count
}

// Iter yields the occupied indices in ascending order.
func (cs *genericComponentStorage[T]) Iter() iter.Seq[int] {
	return func(yield func(int) bool) {
		for blockIdx := range cs.filled {
			for slotIdx, ok := range cs.filled[blockIdx] {
				if !ok {
					continue
				}
				if !yield(blockIdx*genericBlockSize + slotIdx) {
					return
				}
			}
		}
	}
}
