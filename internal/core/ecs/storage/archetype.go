package storage

import (
	"sort"

	"github.com/totodo713/simcore/internal/core/ecs"
)

// ComponentValue pairs a component type with a typed Go value, used when
// pushing a whole row into an archetype.
type ComponentValue struct {
	Type  ecs.ComponentTypeID
	Value any
}

// Archetype is the set of entities sharing an identical component-type
// set, stored column-major for cache-friendly iteration. ComponentTypes is
// always strictly sorted by ComponentTypeID; Columns[i] stores
// ComponentTypes[i]; all columns and Entities have equal length.
type Archetype struct {
	ID             ecs.ArchetypeID
	ComponentTypes []ecs.ComponentTypeID
	Columns        []*Column
	Entities       []ecs.EntityID
}

// NewArchetype builds an archetype for a (already sorted) set of component
// types, allocating one column per type.
func NewArchetype(id ecs.ArchetypeID, registry *ecs.ComponentRegistry, sortedTypes []ecs.ComponentTypeID) *Archetype {
	columns := make([]*Column, len(sortedTypes))
	for i, t := range sortedTypes {
		columns[i] = NewColumn(t, registry.GoType(t))
	}
	return &Archetype{
		ID:             id,
		ComponentTypes: sortedTypes,
		Columns:        columns,
		Entities:       nil,
	}
}

// SortTypes returns a freshly sorted copy of types, used to compute an
// archetype key independent of caller-supplied order.
func SortTypes(types []ecs.ComponentTypeID) []ecs.ComponentTypeID {
	sorted := append([]ecs.ComponentTypeID(nil), types...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return sorted
}

// columnIndex returns the index of t within a.ComponentTypes via binary
// search (ComponentTypes is always sorted).
func (a *Archetype) columnIndex(t ecs.ComponentTypeID) (int, bool) {
	i := sort.Search(len(a.ComponentTypes), func(i int) bool { return a.ComponentTypes[i] >= t })
	if i < len(a.ComponentTypes) && a.ComponentTypes[i] == t {
		return i, true
	}
	return 0, false
}

// HasComponent reports whether this archetype carries component type t.
func (a *Archetype) HasComponent(t ecs.ComponentTypeID) bool {
	_, ok := a.columnIndex(t)
	return ok
}

// Superset reports whether this archetype's type set is a superset of
// required.
func (a *Archetype) Superset(required []ecs.ComponentTypeID) bool {
	for _, t := range required {
		if !a.HasComponent(t) {
			return false
		}
	}
	return true
}

// Len returns the number of entities (rows) in this archetype.
func (a *Archetype) Len() int { return len(a.Entities) }

// AddEntity appends a new row. components must supply exactly one value per
// column; order is irrelevant, each value is routed to its column by type.
// Returns the row index.
func (a *Archetype) AddEntity(id ecs.EntityID, components []ComponentValue) int {
	if len(components) != len(a.Columns) {
		ecs.Violatef("archetype add_entity: expected %d components, got %d", len(a.Columns), len(components))
	}
	for _, cv := range components {
		idx, ok := a.columnIndex(cv.Type)
		if !ok {
			ecs.Violatef("archetype add_entity: component type %d not part of this archetype", cv.Type)
		}
		a.Columns[idx].Push(cv.Value)
	}
	row := len(a.Entities)
	a.Entities = append(a.Entities, id)
	return row
}

// RemoveEntity swap-removes row across every column and the entity vector,
// dropping the removed components. If row was not the last row, the entity
// that now occupies row is returned (non-nil) so the caller can fix up its
// location map entry.
func (a *Archetype) RemoveEntity(row int) *ecs.EntityID {
	last := len(a.Entities) - 1
	var moved *ecs.EntityID
	if row != last {
		e := a.Entities[last]
		moved = &e
	}

	for _, col := range a.Columns {
		col.SwapRemove(row)
	}

	a.Entities[row] = a.Entities[last]
	a.Entities = a.Entities[:last]

	return moved
}

// RemoveEntityAndMove is the migration variant of RemoveEntity: rather than
// dropping each component, it moves every value into the returned slice
// (ordered the same as a.ComponentTypes) so the caller can re-insert them
// into a destination archetype. It returns the same swapped-entity pointer
// as RemoveEntity.
func (a *Archetype) RemoveEntityAndMove(row int) ([]ComponentValue, *ecs.EntityID) {
	last := len(a.Entities) - 1
	var moved *ecs.EntityID
	if row != last {
		e := a.Entities[last]
		moved = &e
	}

	out := make([]ComponentValue, len(a.Columns))
	for i, col := range a.Columns {
		out[i] = ComponentValue{Type: col.ComponentType(), Value: col.SwapRemoveAndMove(row)}
	}

	a.Entities[row] = a.Entities[last]
	a.Entities = a.Entities[:last]

	return out, moved
}

// GetComponent returns the value stored for component type t at row.
func (a *Archetype) GetComponent(row int, t ecs.ComponentTypeID) (any, bool) {
	idx, ok := a.columnIndex(t)
	if !ok {
		return nil, false
	}
	return a.Columns[idx].Get(row), true
}

// SetComponent overwrites the value stored for component type t at row.
func (a *Archetype) SetComponent(row int, t ecs.ComponentTypeID, value any) bool {
	idx, ok := a.columnIndex(t)
	if !ok {
		return false
	}
	a.Columns[idx].Set(row, value)
	return true
}
