package wasmhost

import (
	"encoding/json"
	"fmt"

	"github.com/wasmerio/wasmer-go/wasmer"

	"github.com/totodo713/simcore/internal/core/ecs"
)

// hostFunctions builds the "env" import namespace every guest module links
// against. Each entry corresponds to one row of the host ABI table: a
// read-only query, or a command-buffer push, never a direct world mutation.
func (h *Host) hostFunctions(store *wasmer.Store) map[string]wasmer.IntoExtern {
	i32 := wasmer.NewValueTypes(wasmer.I32)
	i32i32 := wasmer.NewValueTypes(wasmer.I32, wasmer.I32)
	i32i32i32i32 := wasmer.NewValueTypes(wasmer.I32, wasmer.I32, wasmer.I32, wasmer.I32)
	i32x6 := wasmer.NewValueTypes(wasmer.I32, wasmer.I32, wasmer.I32, wasmer.I32, wasmer.I32, wasmer.I32)
	none := wasmer.NewValueTypes()
	retI32 := wasmer.NewValueTypes(wasmer.I32)
	retNone := wasmer.NewValueTypes()

	return map[string]wasmer.IntoExtern{
		"get_entity_count": wasmer.NewFunction(store, wasmer.NewFunctionType(none, retI32), h.fnGetEntityCount),
		"sim_time":         wasmer.NewFunction(store, wasmer.NewFunctionType(none, wasmer.NewValueTypes(wasmer.F64)), h.fnSimTime),
		"tick_number":      wasmer.NewFunction(store, wasmer.NewFunctionType(none, wasmer.NewValueTypes(wasmer.I64)), h.fnTickNumber),
		"get_component":    wasmer.NewFunction(store, wasmer.NewFunctionType(i32i32i32i32, retI32), h.fnGetComponent),
		"set_component":    wasmer.NewFunction(store, wasmer.NewFunctionType(i32x6, retI32), h.fnSetComponent),
		"spawn_semantic":   wasmer.NewFunction(store, wasmer.NewFunctionType(i32i32, retI32), h.fnSpawnSemantic),
		"spawn_pooled":     wasmer.NewFunction(store, wasmer.NewFunctionType(i32i32, retI32), h.fnSpawnPooled),
		"despawn":          wasmer.NewFunction(store, wasmer.NewFunctionType(i32i32, retI32), h.fnDespawn),
		"emit_event":       wasmer.NewFunction(store, wasmer.NewFunctionType(i32x6, retNone), h.fnEmitEvent),
		"log":              wasmer.NewFunction(store, wasmer.NewFunctionType(i32i32, retNone), h.fnLog),
		"consume_fuel":     wasmer.NewFunction(store, wasmer.NewFunctionType(wasmer.NewValueTypes(wasmer.I64), retNone), h.fnConsumeFuel),
	}
}

const hostCallFuelCost = 1

func entityFromArgs(idx, gen int32) ecs.EntityID {
	return ecs.NewEntityID(uint32(idx), uint32(gen))
}

// fnGetEntityCount answers get_entity_count(): () -> i32.
func (h *Host) fnGetEntityCount(args []wasmer.Value) ([]wasmer.Value, error) {
	if !h.consumeFuel(hostCallFuelCost) {
		return nil, ErrFuelExhausted
	}
	return []wasmer.Value{wasmer.NewI32(int32(h.world.Allocator.AliveCount()))}, nil
}

// fnSimTime answers sim_time(): () -> f64.
func (h *Host) fnSimTime(args []wasmer.Value) ([]wasmer.Value, error) {
	if !h.consumeFuel(hostCallFuelCost) {
		return nil, ErrFuelExhausted
	}
	return []wasmer.Value{wasmer.NewF64(h.simTime)}, nil
}

// fnTickNumber answers tick_number(): () -> i64.
func (h *Host) fnTickNumber(args []wasmer.Value) ([]wasmer.Value, error) {
	if !h.consumeFuel(hostCallFuelCost) {
		return nil, ErrFuelExhausted
	}
	return []wasmer.Value{wasmer.NewI64(int64(h.tick))}, nil
}

// fnGetComponent answers get_component(entity_idx, entity_gen, name_ptr,
// name_len): (i32,i32,i32,i32) -> i32, an existence flag only (0 if entity
// is alive and carries the named component, -1 otherwise, including a
// malformed name pointer or an unregistered name). It deliberately never
// hands the component's value back across the boundary; see the design
// ledger's Open Question decision for why.
func (h *Host) fnGetComponent(args []wasmer.Value) ([]wasmer.Value, error) {
	if !h.consumeFuel(hostCallFuelCost) {
		return nil, ErrFuelExhausted
	}
	entity := entityFromArgs(args[0].I32(), args[1].I32())
	name, ok := h.readString(args[2].I32(), args[3].I32())
	if !ok || !h.world.IsAlive(entity) {
		return []wasmer.Value{wasmer.NewI32(-1)}, nil
	}
	t, ok := h.world.Registry.Lookup(name)
	if !ok {
		return []wasmer.Value{wasmer.NewI32(-1)}, nil
	}
	if _, has := h.world.GetComponent(entity, t); has {
		return []wasmer.Value{wasmer.NewI32(0)}, nil
	}
	return []wasmer.Value{wasmer.NewI32(-1)}, nil
}

// fnSetComponent answers set_component(entity_idx, entity_gen, name_ptr,
// name_len, value_ptr, value_len): pushes a CommandSetComponent. A
// malformed pointer, unregistered name, or payload that won't parse as
// JSON is a no-op (returns 0) — it is never a trap, since a misbehaving
// guest must not be able to crash the host by feeding bad offsets.
func (h *Host) fnSetComponent(args []wasmer.Value) ([]wasmer.Value, error) {
	if !h.consumeFuel(hostCallFuelCost) {
		return nil, ErrFuelExhausted
	}
	entity := entityFromArgs(args[0].I32(), args[1].I32())
	name, ok := h.readString(args[2].I32(), args[3].I32())
	if !ok {
		return []wasmer.Value{wasmer.NewI32(0)}, nil
	}
	if _, registered := h.world.Registry.Lookup(name); !registered {
		return []wasmer.Value{wasmer.NewI32(0)}, nil
	}
	raw, ok := h.readString(args[4].I32(), args[5].I32())
	if !ok {
		return []wasmer.Value{wasmer.NewI32(0)}, nil
	}
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return []wasmer.Value{wasmer.NewI32(0)}, nil
	}

	h.buffer.Push(ecs.Command{
		Target:         &entity,
		Kind:           ecs.CommandSetComponent,
		IssuedBy:       ecs.SystemIDGameplayScript,
		Reason:         ecs.SystemInternal("wasm:set_component"),
		ComponentName:  name,
		ComponentValue: value,
	})
	return []wasmer.Value{wasmer.NewI32(1)}, nil
}

func (h *Host) spawn(args []wasmer.Value, kind ecs.CommandKind) ([]wasmer.Value, error) {
	if !h.consumeFuel(hostCallFuelCost) {
		return nil, ErrFuelExhausted
	}
	raw, ok := h.readString(args[0].I32(), args[1].I32())
	if !ok {
		return []wasmer.Value{wasmer.NewI32(0)}, nil
	}
	var payload struct {
		Identity   json.RawMessage           `json:"identity"`
		Components map[string]json.RawMessage `json:"components"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return []wasmer.Value{wasmer.NewI32(0)}, nil
	}

	var identity ecs.Identity
	if len(payload.Identity) > 0 {
		if err := json.Unmarshal(payload.Identity, &identity); err != nil {
			return []wasmer.Value{wasmer.NewI32(0)}, nil
		}
	}
	identity.Tier = identityTierFor(kind)

	components := make([]ecs.NamedValue, 0, len(payload.Components))
	for name, raw := range payload.Components {
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return []wasmer.Value{wasmer.NewI32(0)}, nil
		}
		components = append(components, ecs.NamedValue{Name: name, Value: v})
	}

	h.buffer.Push(ecs.Command{
		Kind:       kind,
		IssuedBy:   ecs.SystemIDGameplayScript,
		Reason:     ecs.SystemInternal(fmt.Sprintf("wasm:%s", spawnKindLabel(kind))),
		Identity:   identity,
		Components: components,
	})
	// The spawned entity's id is only known once Apply runs, after every
	// system (including this guest's current tick) has finished; the guest
	// gets no synchronous handle back. A guest needing the id correlates
	// it via emit_event on a later tick instead.
	return []wasmer.Value{wasmer.NewI32(1)}, nil
}

func identityTierFor(kind ecs.CommandKind) ecs.IdentityTier {
	if kind == ecs.CommandSpawnPooled {
		return ecs.IdentityPooled
	}
	return ecs.IdentitySemantic
}

func spawnKindLabel(kind ecs.CommandKind) string {
	if kind == ecs.CommandSpawnPooled {
		return "spawn_pooled"
	}
	return "spawn_semantic"
}

// fnSpawnSemantic answers spawn_semantic(payload_ptr, payload_len).
func (h *Host) fnSpawnSemantic(args []wasmer.Value) ([]wasmer.Value, error) {
	return h.spawn(args, ecs.CommandSpawnSemantic)
}

// fnSpawnPooled answers spawn_pooled(payload_ptr, payload_len).
func (h *Host) fnSpawnPooled(args []wasmer.Value) ([]wasmer.Value, error) {
	return h.spawn(args, ecs.CommandSpawnPooled)
}

// fnDespawn answers despawn(entity_idx, entity_gen): pushes a
// CommandDespawn.
func (h *Host) fnDespawn(args []wasmer.Value) ([]wasmer.Value, error) {
	if !h.consumeFuel(hostCallFuelCost) {
		return nil, ErrFuelExhausted
	}
	entity := entityFromArgs(args[0].I32(), args[1].I32())
	h.buffer.Push(ecs.Command{
		Target:   &entity,
		Kind:     ecs.CommandDespawn,
		IssuedBy: ecs.SystemIDGameplayScript,
		Reason:   ecs.SystemInternal("wasm:despawn"),
	})
	return []wasmer.Value{wasmer.NewI32(1)}, nil
}

// fnEmitEvent answers emit_event(name_ptr, name_len, payload_ptr,
// payload_len, _, _) — the trailing pair is reserved, keeping the same
// six-i32 shape as set_component so the guest-side ABI helper can share
// one calling convention.
func (h *Host) fnEmitEvent(args []wasmer.Value) ([]wasmer.Value, error) {
	if !h.consumeFuel(hostCallFuelCost) {
		return nil, ErrFuelExhausted
	}
	name, ok := h.readString(args[0].I32(), args[1].I32())
	if !ok {
		return nil, nil
	}
	payload, ok := h.readString(args[2].I32(), args[3].I32())
	if !ok {
		payload = ""
	}
	h.events = append(h.events, Event{Name: name, Payload: payload})
	return nil, nil
}

// fnLog answers log(message_ptr, message_len). The host application is
// responsible for routing this through its own structured logger; this
// package only surfaces it as a drained Event with the reserved name
// "log" so it stays free of a logging dependency.
func (h *Host) fnLog(args []wasmer.Value) ([]wasmer.Value, error) {
	if !h.consumeFuel(hostCallFuelCost) {
		return nil, ErrFuelExhausted
	}
	message, ok := h.readString(args[0].I32(), args[1].I32())
	if !ok {
		return nil, nil
	}
	h.events = append(h.events, Event{Name: "log", Payload: message})
	return nil, nil
}

// fnConsumeFuel answers the guest-callable consume_fuel(n): an explicit
// fuel debit the guest can issue from a hot loop between host calls, since
// wasmer-go here has no instruction-level metering to do it automatically.
func (h *Host) fnConsumeFuel(args []wasmer.Value) ([]wasmer.Value, error) {
	n := args[0].I64()
	if !h.consumeFuel(n) {
		return nil, ErrFuelExhausted
	}
	return nil, nil
}
