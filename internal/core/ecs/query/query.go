package query

import (
	"fmt"

	"github.com/totodo713/simcore/internal/core/ecs"
	"github.com/totodo713/simcore/internal/core/ecs/storage"
)

// ItemKind distinguishes a read-only query item from a mutable one.
type ItemKind int

const (
	Read ItemKind = iota
	Write
)

// Item names one component type a query wants access to, and the access
// mode it wants it in.
type Item struct {
	Type ecs.ComponentTypeID
	Kind ItemKind
}

// ReadItem builds a read-only Item.
func ReadItem(t ecs.ComponentTypeID) Item { return Item{Type: t, Kind: Read} }

// WriteItem builds a mutable Item.
func WriteItem(t ecs.ComponentTypeID) Item { return Item{Type: t, Kind: Write} }

// Spec is the full set of component items a system wants for one query,
// resolved against the world's archetypes by Resolve.
type Spec struct {
	Items []Item
}

// NewSpec builds a Spec from a list of items.
func NewSpec(items ...Item) Spec {
	return Spec{Items: items}
}

// RequiredTypes returns every type named by the spec, irrespective of
// access mode, for use as the archetype superset filter.
func (s Spec) RequiredTypes() []ecs.ComponentTypeID {
	out := make([]ecs.ComponentTypeID, len(s.Items))
	for i, it := range s.Items {
		out[i] = it.Type
	}
	return out
}

func (s Spec) bitset() ComponentBitSet {
	return NewComponentBitSetOf(s.RequiredTypes()...)
}

// ValidateReadOnly rejects a spec containing any Write item; it is used to
// enforce the read-only contract of diagnostics and replay-comparison
// queries, which must never mutate world state.
func ValidateReadOnly(s Spec) error {
	for _, it := range s.Items {
		if it.Kind == Write {
			return fmt.Errorf("query: component type %d requested for write in a read-only query", it.Type)
		}
	}
	return nil
}

// ValidateMutable rejects a spec that names the same component type more
// than once, whatever the access mode: a system requesting both a read and
// a write (or two writes) of one type within a single query is an aliasing
// hazard under Go's no-aliased-mutable-borrows discipline, since the
// generic accessors hand back independent copies rather than references.
func ValidateMutable(s Spec) error {
	seen := make(map[ecs.ComponentTypeID]bool, len(s.Items))
	for _, it := range s.Items {
		if seen[it.Type] {
			return fmt.Errorf("query: component type %d requested more than once in a single query", it.Type)
		}
		seen[it.Type] = true
	}
	return nil
}

// Row identifies one matched entity's storage location: the archetype it
// currently lives in and its row index within that archetype's columns.
type Row struct {
	Entity    ecs.EntityID
	Archetype *storage.Archetype
	RowIndex  int
}

// Resolve walks archetypes in the order given (callers pass them in
// archetype-creation order, i.e. World's archetype list) and, within each
// matching archetype, rows in entity-vector order, so that Resolve's output
// order is fully deterministic for a fixed world state and archetype
// creation history. s must be read-only: a system that wants to mutate
// world state pushes a command onto its Context's CommandBuffer instead of
// resolving a Write item, so a Spec naming one here is a caller bug, not
// recoverable runtime data — it is a ContractViolation, not an error
// return.
func Resolve(archetypes []*storage.Archetype, s Spec) []Row {
	if err := ValidateReadOnly(s); err != nil {
		ecs.Violatef("query.Resolve: %v", err)
	}
	want := s.bitset()
	var rows []Row
	for _, a := range archetypes {
		have := NewComponentBitSetOf(a.ComponentTypes...)
		if !have.IsSupersetOf(want) {
			continue
		}
		for row, entity := range a.Entities {
			rows = append(rows, Row{Entity: entity, Archetype: a, RowIndex: row})
		}
	}
	return rows
}

// Get reads row's value for component type t, type-asserted to T. It panics
// with a ContractViolation if t is not part of row's archetype or the
// stored value is not a T, since Resolve already guarantees superset
// membership for every type named in the originating Spec.
func Get[T any](row Row, t ecs.ComponentTypeID) T {
	value, ok := row.Archetype.GetComponent(row.RowIndex, t)
	if !ok {
		ecs.Violatef("query.Get: component type %d not present on this row's archetype", t)
	}
	typed, ok := value.(T)
	if !ok {
		ecs.Violatef("query.Get: component type %d stored value is not of the requested Go type", t)
	}
	return typed
}
