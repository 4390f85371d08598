// Package ecs provides the core Entity Component System framework for the
// simulation runtime: archetype storage, the causal command pipeline, and
// the query engine. Systems outside this package (manifest, snapshot, tick,
// replay, wasmhost) are deliberately kept separate so that the ECS core has
// no dependency on logging, hashing, or scripting libraries.
package ecs

// EntityID is a generational entity handle: the low 32 bits are the slot
// index, the high 32 bits are the generation. The whole 64-bit value is
// used for equality and hashing; it is never reinterpreted as a pointer.
type EntityID uint64

// InvalidEntityID is the zero EntityID, used as a "no entity" placeholder.
// It equals the allocator's first handle (slot 0, generation 0), so it does
// not by itself prove an id was never allocated.
const InvalidEntityID EntityID = 0

// NewEntityID packs a slot index and generation into an EntityID.
func NewEntityID(index, generation uint32) EntityID {
	return EntityID(uint64(generation)<<32 | uint64(index))
}

// Index returns the slot index encoded in the low 32 bits.
func (id EntityID) Index() uint32 { return uint32(id) }

// Generation returns the generation encoded in the high 32 bits.
func (id EntityID) Generation() uint32 { return uint32(id >> 32) }

// ComponentTypeID is a dense id assigned at registration time. It is stable
// within one process only; persisted state is keyed by the registered name.
type ComponentTypeID uint32

// ArchetypeID is a dense index into the world's archetype list.
type ArchetypeID uint32

// SystemID is an opaque producer identifier attached to every command and
// journal entry so mutations can be traced to the system that issued them.
type SystemID uint32

// Reserved SystemID constants naming well-known producers.
const (
	SystemIDEngineInternal SystemID = iota
	SystemIDPhysics
	SystemIDGameplayScript
	SystemIDPlayerSpawner
)

// Reserved component names. User components must never register under
// these; RegisterComponent rejects attempts to do so.
const (
	ReservedComponentIdentity = "__identity"
	ReservedComponentEntity   = "__entity"
)

// InputFrame is the recorded player/replay input for a single tick: an
// arbitrary string-keyed bag of JSON-compatible values, mirroring a wire
// format that has to survive capture/restore round-trips verbatim. It is
// part of the hashed engine snapshot, so two ticks fed the same InputFrame
// must hash identically regardless of how the frame was constructed.
type InputFrame struct {
	Inputs map[string]any `json:"inputs"`
}

// NewInputFrame builds an InputFrame from the given key-value pairs.
func NewInputFrame(inputs map[string]any) InputFrame {
	if inputs == nil {
		inputs = map[string]any{}
	}
	return InputFrame{Inputs: inputs}
}
