package ecs

import (
	"math/bits"
	"strings"
)

// MaxComponentTypes is the number of component types a registry can hold.
const MaxComponentTypes = 64

// Mask is a set of component bits. Bit positions are assigned by the
// ComponentRegistry in registration order.
type Mask uint64

// With returns the mask with the given bit set.
func (m Mask) With(bit uint8) Mask {
	return m | Mask(1)<<bit
}

// Without returns the mask with the given bit cleared.
func (m Mask) Without(bit uint8) Mask {
	return m &^ (Mask(1) << bit)
}

// Has reports whether a single bit is set.
func (m Mask) Has(bit uint8) bool {
	return m&(Mask(1)<<bit) != 0
}

// Contains reports whether every bit of required is set in m.
// Extra bits in m are ignored.
func (m Mask) Contains(required Mask) bool {
	return m&required == required
}

// Empty reports whether no bits are set.
func (m Mask) Empty() bool {
	return m == 0
}

// Count returns the number of set bits.
func (m Mask) Count() int {
	return bits.OnesCount64(uint64(m))
}

// Bits yields the set bit positions in ascending order.
func (m Mask) Bits() func(yield func(uint8) bool) {
	return func(yield func(uint8) bool) {
		for rest := uint64(m); rest != 0; rest &= rest - 1 {
			if !yield(uint8(bits.TrailingZeros64(rest))) {
				return
			}
		}
	}
}

// Names renders the mask using the component type names of a registry.
func (m Mask) Names(registry *ComponentRegistry) string {
	names := make([]string, 0, m.Count())
	for bit := range m.Bits() {
		names = append(names, registry.TypeOf(bit).Name())
	}
	return strings.Join(names, ", ")
}
