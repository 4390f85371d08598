package snapshot

import (
	"github.com/totodo713/simcore/internal/core/ecs"
	"github.com/totodo713/simcore/internal/core/world"
)

// validate checks snap's internal consistency without constructing
// anything: every component name referenced by an entity must be
// registered, and the allocator state must agree with the entity list's
// alive set. It never touches the destination world.
func validate(registry *ecs.ComponentRegistry, snap EngineSnapshot) error {
	known := make(map[string]bool, len(registry.Names()))
	for _, n := range registry.Names() {
		known[n] = true
	}
	for _, e := range snap.World.Entities {
		for name := range e.Components {
			if !known[name] {
				return ecs.NewUnknownComponentError(name, registry.Names())
			}
		}
	}

	aliveIndices := make(map[uint32]bool, len(snap.World.Entities))
	for _, e := range snap.World.Entities {
		aliveIndices[e.ID.Index()] = true
	}
	return snap.World.Allocator.Validate(aliveIndices)
}

// Restore rebuilds a World from snap against registry, following a strict
// validate-before-mutate sequence: every check in validate runs first, and
// only once all of them pass does this function allocate or insert
// anything. After the world is rebuilt, its state hash is recomputed and
// compared against snap.Hash; any mismatch means the snapshot's
// payload does not reproduce its own recorded hash and the restore is
// rejected even though every individual entity looked well-formed.
func Restore(registry *ecs.ComponentRegistry, snap EngineSnapshot) (*world.World, error) {
	if err := validate(registry, snap); err != nil {
		return nil, err
	}

	w := world.New(registry)
	w.Allocator.RestoreState(snap.World.Allocator)

	for _, e := range snap.World.Entities {
		pairs := make([]world.Pair, 0, len(e.Components))
		for name, jv := range e.Components {
			t, ok := registry.Lookup(name)
			if !ok {
				return nil, ecs.NewUnknownComponentError(name, registry.Names())
			}
			value, err := registry.Deserialise(t, jv)
			if err != nil {
				return nil, ecs.NewComponentDeserialisationError(name, err.Error())
			}
			pairs = append(pairs, world.Pair{Type: t, Value: value})
		}
		w.RestoreEntity(e.ID, world.NewBundle(pairs...))
	}

	recomputed, err := Capture(w, snap.TickCounter, snap.FixedDt, snap.CurrentInput)
	if err != nil {
		return nil, err
	}
	if recomputed.Hash != snap.Hash {
		return nil, ecs.NewReplayLogInvalidError("restored state hash does not match snapshot's recorded hash")
	}

	return w, nil
}
