// Package world owns the World aggregate (archetype list, entity location
// index) and the deferred command pipeline that is the only sanctioned way
// for gameplay systems to mutate it. It sits above ecs and storage because
// World needs both: the registry and allocator from ecs, and the dense row
// storage from storage.
package world

import (
	"sort"

	"github.com/totodo713/simcore/internal/core/ecs"
)

// ComponentBundle is a validated, type-sorted set of (type, value) pairs
// ready to be handed to an archetype. Building one through NewBundle is
// the only way to construct a bundle because it is where the
// duplicate-component contract check lives.
type ComponentBundle struct {
	types  []ecs.ComponentTypeID
	values map[ecs.ComponentTypeID]any
}

// NewBundle builds a ComponentBundle from (type, value) pairs. It panics
// with a ContractViolation if the same component type appears twice: a
// bundle with two values for one type is a caller bug, never recoverable
// runtime data.
func NewBundle(pairs ...Pair) ComponentBundle {
	values := make(map[ecs.ComponentTypeID]any, len(pairs))
	types := make([]ecs.ComponentTypeID, 0, len(pairs))
	for _, p := range pairs {
		if _, exists := values[p.Type]; exists {
			ecs.Violatef("component bundle: component type %d supplied more than once", p.Type)
		}
		values[p.Type] = p.Value
		types = append(types, p.Type)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return ComponentBundle{types: types, values: values}
}

// Pair is one (component type, value) entry passed to NewBundle.
type Pair struct {
	Type  ecs.ComponentTypeID
	Value any
}

// SortedTypes returns the bundle's component types in ascending order,
// which is also the archetype key order.
func (b ComponentBundle) SortedTypes() []ecs.ComponentTypeID {
	return b.types
}

// ValueFor returns the value registered for t.
func (b ComponentBundle) ValueFor(t ecs.ComponentTypeID) any {
	return b.values[t]
}

// Len returns how many components are in the bundle.
func (b ComponentBundle) Len() int { return len(b.types) }
