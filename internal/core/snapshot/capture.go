package snapshot

import (
	"sort"

	"github.com/totodo713/simcore/internal/core/ecs"
	"github.com/totodo713/simcore/internal/core/world"
)

// EntitySnapshot is one entity's serialised state: its raw handle and a
// name->JSON-value map of every component it carries.
type EntitySnapshot struct {
	ID         ecs.EntityID   `json:"id"`
	Components map[string]any `json:"components"`
}

// WorldSnapshot is the serialisable form of a World: the registered
// component name list (for diagnostics; Restore checks each entity's
// component names against the registry instead), every live entity sorted by raw id, and the
// allocator's internal state.
type WorldSnapshot struct {
	ComponentNames []string             `json:"component_names"`
	Entities       []EntitySnapshot     `json:"entities"`
	Allocator      ecs.AllocatorState   `json:"allocator"`
}

// EngineSnapshot is the full, hashable engine state: tick counter, fixed
// timestep, the input frame pending for this tick, the world, and the hash
// over the other four fields' canonical JSON form. sim_time is deliberately
// not a stored field: it is always tick_counter * fixed_dt, computed by the
// caller, never persisted.
type EngineSnapshot struct {
	TickCounter  uint64        `json:"tick_counter"`
	FixedDt      float64       `json:"fixed_dt"`
	CurrentInput ecs.InputFrame `json:"current_input"`
	World        WorldSnapshot `json:"world"`
	Hash         string        `json:"hash"`
}

// Capture builds an EngineSnapshot of w at tickCounter, with the given fixed
// timestep and the input frame pending for this tick, sorting entities by
// raw id so two captures of byte-identical state always serialise
// identically regardless of spawn/iteration order.
func Capture(w *world.World, tickCounter uint64, fixedDt float64, currentInput ecs.InputFrame) (EngineSnapshot, error) {
	ws := captureWorld(w)

	hash, err := computeHash(tickCounter, fixedDt, currentInput, ws)
	if err != nil {
		return EngineSnapshot{}, err
	}

	return EngineSnapshot{
		TickCounter:  tickCounter,
		FixedDt:      fixedDt,
		CurrentInput: currentInput,
		World:        ws,
		Hash:         hash,
	}, nil
}

func captureWorld(w *world.World) WorldSnapshot {
	registry := w.Registry
	names := registry.Names()

	var entities []EntitySnapshot
	for _, a := range w.Archetypes() {
		for row, id := range a.Entities {
			components := make(map[string]any, len(a.ComponentTypes))
			for _, t := range a.ComponentTypes {
				value, _ := a.GetComponent(row, t)
				jv, err := registry.Serialise(t, value)
				if err != nil {
					ecs.Violatef("snapshot capture: component %s failed to serialise: %v", registry.Info(t).Name, err)
				}
				components[registry.Info(t).Name] = jv
			}
			entities = append(entities, EntitySnapshot{ID: id, Components: components})
		}
	}

	sort.Slice(entities, func(i, j int) bool { return entities[i].ID < entities[j].ID })

	return WorldSnapshot{
		ComponentNames: names,
		Entities:       entities,
		Allocator:      w.Allocator.SnapshotState(),
	}
}
