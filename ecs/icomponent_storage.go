package ecs

import "iter"

// iComponentStorage is an interface for a type-erased component storage
// indexed by entity id.
type iComponentStorage interface {
	Set(index int, item any)
	Delete(index int)
	Get(index int) any
	Has(index int) bool
	Len() int
	Iter() iter.Seq[int]
}
