package ecs

import (
	"iter"
	"reflect"
	"unsafe"
)

var entityIdType = reflect.TypeFor[EntityId]()

// Query selects entities by a required component set and exposes their
// components through a struct of pointer fields:
//
//	ecs.Query[struct {
//		Id ecs.EntityId
//		*Position
//		*Velocity
//		Owner *PlayerInfo `ecs:"optional"`
//	}]
//
// Embedded pointer fields are always required. Named pointer fields can be
// marked optional with the `ecs:"optional"` struct tag; they are nil when the
// entity lacks the component. A field of type EntityId receives the entity id.
//
// Iteration is lazy, restartable and always in ascending entity id order.
type Query[T any] struct {
	storage     *Storage
	required    Mask
	bits        []uint8
	optional    []bool
	fieldOffset []uintptr
	idOffset    uintptr
	hasId       bool
}

// NewQuery creates a new Query bound to storage.
func NewQuery[T any](storage *Storage) *Query[T] {
	q := &Query[T]{}
	q.Init(storage)
	return q
}

// Init initializes or re-initializes the Query with a storage.
// Called by the Scheduler during system registration.
func (q *Query[T]) Init(storage *Storage) {
	structType := reflect.TypeFor[T]()
	if structType.Kind() != reflect.Struct {
		panic("Query type parameter must be a struct")
	}

	q.storage = storage
	q.required = 0
	q.bits = q.bits[:0]
	q.optional = q.optional[:0]
	q.fieldOffset = q.fieldOffset[:0]
	q.hasId = false

	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		fieldType := field.Type

		if fieldType == entityIdType {
			q.idOffset = field.Offset
			q.hasId = true
			continue
		}

		if fieldType.Kind() != reflect.Ptr {
			panic("Query struct fields must be pointer types or ecs.EntityId")
		}

		bit := storage.registry.BitOf(fieldType.Elem())

		// Embedded fields (field.Anonymous) are always required
		isOptional := false
		if !field.Anonymous {
			tag := field.Tag.Get("ecs")
			if tag != "" {
				if tag == "optional" {
					isOptional = true
				} else {
					panic("invalid ecs tag value: \"" + tag + "\" (only \"optional\" is supported)")
				}
			}
		}

		if !isOptional {
			q.required = q.required.With(bit)
		}
		q.bits = append(q.bits, bit)
		q.optional = append(q.optional, isOptional)
		q.fieldOffset = append(q.fieldOffset, field.Offset)
	}
}

// Mask returns the required component set of the query.
func (q *Query[T]) Mask() Mask {
	return q.required
}

// Fill populates the provided struct pointer with component data for the given entity
// Returns false if the entity is missing any required components
// Optional components are set to nil if not present
func (q *Query[T]) Fill(id EntityId, ptr *T) bool {
	if id == NilEntity || id >= q.storage.nextId {
		return false
	}
	mask := q.storage.masks[id]
	if mask.Empty() || !mask.Contains(q.required) {
		return false
	}

	q.populate(unsafe.Pointer(ptr), id, mask)
	return true
}

// Get returns a populated query struct for the given entity, or nil if the entity
// doesn't have all the required components
func (q *Query[T]) Get(id EntityId) *T {
	var result T
	if !q.Fill(id, &result) {
		return nil
	}
	return &result
}

func (q *Query[T]) populate(structPtr unsafe.Pointer, id EntityId, mask Mask) {
	if q.hasId {
		*(*EntityId)(unsafe.Pointer(uintptr(structPtr) + q.idOffset)) = id
	}

	for i, bit := range q.bits {
		fieldPtr := unsafe.Pointer(uintptr(structPtr) + q.fieldOffset[i])

		if !mask.Has(bit) {
			// Only optional components can be missing here
			*(*unsafe.Pointer)(fieldPtr) = nil
			continue
		}

		component := q.storage.storages[bit].Get(int(id))
		*(*unsafe.Pointer)(fieldPtr) = reflect.ValueOf(component).UnsafePointer()
	}
}

// All returns an iterator over (EntityId, query struct) pairs for every entity
// that has all the required components, in ascending id order.
func (q *Query[T]) All() iter.Seq2[EntityId, T] {
	if q.storage == nil {
		panic("Query.All() called before Query.Init()")
	}

	return func(yield func(EntityId, T) bool) {
		var result T
		resultPtr := unsafe.Pointer(&result)

		for id := range q.storage.Match(q.required) {
			q.populate(resultPtr, id, q.storage.masks[id])
			if !yield(id, result) {
				return
			}
		}
	}
}

// Iter returns an iterator over the query structs of all matching entities,
// in ascending id order.
func (q *Query[T]) Iter() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, value := range q.All() {
			if !yield(value) {
				return
			}
		}
	}
}

// Ids returns an iterator over the matching entity ids in ascending order.
func (q *Query[T]) Ids() iter.Seq[EntityId] {
	if q.storage == nil {
		panic("Query.Ids() called before Query.Init()")
	}
	return q.storage.Match(q.required)
}

// First returns the lowest-id entity for which match returns true.
func (q *Query[T]) First(match func(T) bool) (EntityId, T, bool) {
	for id, item := range q.All() {
		if match(item) {
			return id, item, true
		}
	}
	var zero T
	return NilEntity, zero, false
}

// Count returns the number of matching entities.
func (q *Query[T]) Count() int {
	n := 0
	for range q.storage.Match(q.required) {
		n++
	}
	return n
}
