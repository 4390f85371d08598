package world

import (
	"strconv"
	"strings"

	"github.com/totodo713/simcore/internal/core/ecs"
	"github.com/totodo713/simcore/internal/core/ecs/storage"
)

// location points an entity at its current archetype and row within it.
type location struct {
	archetype ecs.ArchetypeID
	row       int
}

// World owns the entity allocator, the component registry, every archetype,
// and the entity->location index. Archetypes is append-only: an archetype
// is never removed once created, even if it empties out, so that
// archetype-creation-order iteration (used by query.Resolve for
// deterministic row ordering) never reshuffles historical ids.
type World struct {
	Allocator *ecs.EntityAllocator
	Registry  *ecs.ComponentRegistry

	archetypes []*storage.Archetype
	byKey      map[string]ecs.ArchetypeID
	locations  map[ecs.EntityID]location
}

// New builds an empty world over the given registry. It registers the
// reserved __identity component if the registry doesn't already carry it,
// so every spawn_semantic/spawn_pooled command has somewhere to put its
// Identity value.
func New(registry *ecs.ComponentRegistry) *World {
	ecs.RegisterIdentityComponent(registry)
	return &World{
		Allocator: ecs.NewEntityAllocator(),
		Registry:  registry,
		byKey:     make(map[string]ecs.ArchetypeID),
		locations: make(map[ecs.EntityID]location),
	}
}

// Archetypes returns the world's archetype list in creation order, for
// query.Resolve.
func (w *World) Archetypes() []*storage.Archetype {
	return w.archetypes
}

func archetypeKey(sortedTypes []ecs.ComponentTypeID) string {
	var b strings.Builder
	for i, t := range sortedTypes {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatUint(uint64(t), 10))
	}
	return b.String()
}

// archetypeFor returns the archetype for exactly sortedTypes, creating it
// (appending to w.archetypes, assigning the next ArchetypeID) if it doesn't
// exist yet.
func (w *World) archetypeFor(sortedTypes []ecs.ComponentTypeID) *storage.Archetype {
	key := archetypeKey(sortedTypes)
	if id, ok := w.byKey[key]; ok {
		return w.archetypes[id]
	}
	id := ecs.ArchetypeID(len(w.archetypes))
	a := storage.NewArchetype(id, w.Registry, sortedTypes)
	w.archetypes = append(w.archetypes, a)
	w.byKey[key] = id
	return a
}

// Spawn allocates a new entity and inserts it into the archetype matching
// bundle's component set, returning the new handle.
func (w *World) Spawn(bundle ComponentBundle) ecs.EntityID {
	id := w.Allocator.Allocate()
	sortedTypes := bundle.SortedTypes()
	a := w.archetypeFor(sortedTypes)

	components := make([]storage.ComponentValue, len(sortedTypes))
	for i, t := range sortedTypes {
		components[i] = storage.ComponentValue{Type: t, Value: bundle.ValueFor(t)}
	}
	row := a.AddEntity(id, components)
	w.locations[id] = location{archetype: a.ID, row: row}
	return id
}

// IsAlive reports whether id still refers to a live entity.
func (w *World) IsAlive(id ecs.EntityID) bool {
	return w.Allocator.IsAlive(id)
}

// Despawn retires id and removes its row from storage. Returns a
// StaleEntityError if id is not live.
func (w *World) Despawn(id ecs.EntityID) error {
	if !w.Allocator.IsAlive(id) {
		return ecs.NewStaleEntityError(id)
	}
	loc := w.locations[id]
	a := w.archetypes[loc.archetype]
	if moved := a.RemoveEntity(loc.row); moved != nil {
		w.locations[*moved] = location{archetype: loc.archetype, row: loc.row}
	}
	delete(w.locations, id)
	w.Allocator.Deallocate(id)
	return nil
}

// GetComponent returns entity's value for component type t.
func (w *World) GetComponent(id ecs.EntityID, t ecs.ComponentTypeID) (any, bool) {
	loc, ok := w.locations[id]
	if !ok {
		return nil, false
	}
	return w.archetypes[loc.archetype].GetComponent(loc.row, t)
}

// SetComponent overwrites entity's existing value for component type t. It
// does not migrate the entity to a new archetype; t must already be part
// of entity's archetype (use AddComponent to introduce a new type).
func (w *World) SetComponent(id ecs.EntityID, t ecs.ComponentTypeID, value any) error {
	if !w.Allocator.IsAlive(id) {
		return ecs.NewStaleEntityError(id)
	}
	loc := w.locations[id]
	if !w.archetypes[loc.archetype].SetComponent(loc.row, t, value) {
		return ecs.NewUnknownComponentError(w.Registry.Info(t).Name, w.Registry.Names())
	}
	return nil
}

// SetComponentByName resolves name against the registry and either sets an
// existing component or adds a new one (migrating entity to a new
// archetype), deserialising jsonValue against the registered schema. This
// is the entry point both the name-based world API and the WASM host's
// set_component call use.
func (w *World) SetComponentByName(id ecs.EntityID, name string, jsonValue any) error {
	if !w.Allocator.IsAlive(id) {
		return ecs.NewStaleEntityError(id)
	}
	t, ok := w.Registry.Lookup(name)
	if !ok {
		return ecs.NewUnknownComponentError(name, w.Registry.Names())
	}
	value, err := w.Registry.Deserialise(t, jsonValue)
	if err != nil {
		return ecs.NewComponentDeserialisationError(name, err.Error())
	}

	loc := w.locations[id]
	a := w.archetypes[loc.archetype]
	if a.HasComponent(t) {
		a.SetComponent(loc.row, t, value)
		return nil
	}
	return w.AddComponent(id, t, value)
}

// RemoveComponentByName resolves name against the registry and removes it
// from entity, migrating entity to the archetype for its reduced type set.
// Removing a component entity does not currently have is a no-op success,
// matching the "conflicts are warned, not dropped" tolerance for
// idempotent gameplay commands.
func (w *World) RemoveComponentByName(id ecs.EntityID, name string) error {
	if !w.Allocator.IsAlive(id) {
		return ecs.NewStaleEntityError(id)
	}
	t, ok := w.Registry.Lookup(name)
	if !ok {
		return ecs.NewUnknownComponentError(name, w.Registry.Names())
	}
	return w.RemoveComponent(id, t)
}

// AddComponent migrates entity into the archetype for its current type set
// plus t, carrying every existing component value across and inserting
// value for t. If entity's archetype already has t, it overwrites the
// existing value in place instead, without migrating.
func (w *World) AddComponent(id ecs.EntityID, t ecs.ComponentTypeID, value any) error {
	if !w.Allocator.IsAlive(id) {
		return ecs.NewStaleEntityError(id)
	}
	loc := w.locations[id]
	src := w.archetypes[loc.archetype]
	if src.HasComponent(t) {
		src.SetComponent(loc.row, t, value)
		return nil
	}

	destTypes := storage.SortTypes(append(append([]ecs.ComponentTypeID(nil), src.ComponentTypes...), t))
	dest := w.archetypeFor(destTypes)

	carried, moved := src.RemoveEntityAndMove(loc.row)
	if moved != nil {
		w.locations[*moved] = loc
	}
	carried = append(carried, storage.ComponentValue{Type: t, Value: value})

	row := dest.AddEntity(id, carried)
	w.locations[id] = location{archetype: dest.ID, row: row}
	return nil
}

// RemoveComponent migrates entity into the archetype for its current type
// set minus t, dropping t's value. It is a no-op success if entity's
// archetype does not have t.
func (w *World) RemoveComponent(id ecs.EntityID, t ecs.ComponentTypeID) error {
	if !w.Allocator.IsAlive(id) {
		return ecs.NewStaleEntityError(id)
	}
	loc := w.locations[id]
	src := w.archetypes[loc.archetype]
	if !src.HasComponent(t) {
		return nil
	}

	destTypes := make([]ecs.ComponentTypeID, 0, len(src.ComponentTypes)-1)
	for _, ct := range src.ComponentTypes {
		if ct != t {
			destTypes = append(destTypes, ct)
		}
	}
	dest := w.archetypeFor(destTypes)

	carried, moved := src.RemoveEntityAndMove(loc.row)
	if moved != nil {
		w.locations[*moved] = loc
	}

	kept := make([]storage.ComponentValue, 0, len(carried)-1)
	for _, cv := range carried {
		if cv.Type != t {
			kept = append(kept, cv)
		}
	}

	row := dest.AddEntity(id, kept)
	w.locations[id] = location{archetype: dest.ID, row: row}
	return nil
}

// RestoreEntity inserts an entity under an id already fixed by a restored
// AllocatorState (see snapshot.Restore), rather than allocating a fresh
// one. Callers must restore the allocator state before calling this so
// w.Allocator.IsAlive(id) already agrees with the snapshot being replayed.
func (w *World) RestoreEntity(id ecs.EntityID, bundle ComponentBundle) {
	sortedTypes := bundle.SortedTypes()
	a := w.archetypeFor(sortedTypes)
	components := make([]storage.ComponentValue, len(sortedTypes))
	for i, t := range sortedTypes {
		components[i] = storage.ComponentValue{Type: t, Value: bundle.ValueFor(t)}
	}
	row := a.AddEntity(id, components)
	w.locations[id] = location{archetype: a.ID, row: row}
}

// Stats summarises world size for diagnostics.
type Stats struct {
	EntityCount    int
	ArchetypeCount int
	ComponentTypes int
}

// Stats computes a snapshot of world size.
func (w *World) Stats() Stats {
	return Stats{
		EntityCount:    w.Allocator.AliveCount(),
		ArchetypeCount: len(w.archetypes),
		ComponentTypes: w.Registry.Count(),
	}
}
