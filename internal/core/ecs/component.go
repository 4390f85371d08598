package ecs

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// ComponentInfo describes a registered component type. Size may be zero
// (zero-sized component); Align is always nonzero.
type ComponentInfo struct {
	ID     ComponentTypeID
	Name   string
	Size   uintptr
	Align  uintptr
	goType reflect.Type
}

// componentCodec holds the pair of functions spec §6 requires for every
// registered component: a JSON-value serialiser and deserialiser, kept
// alongside the component's ComponentInfo.
type componentCodec struct {
	info       ComponentInfo
	serialise  func(value any) (any, error)
	deserialis func(jsonValue any) (any, error)
}

// ComponentRegistry maps a runtime component type to a stable dense id,
// its name, size/alignment, and its (de)serialiser pair. Names are the
// stable identity across process runs; ids are only stable within one
// process.
type ComponentRegistry struct {
	byID   []*componentCodec
	byName map[string]ComponentTypeID
}

// NewComponentRegistry returns an empty registry.
func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{byName: make(map[string]ComponentTypeID)}
}

// RegisterComponent registers a component type T under name, using
// encoding/json (the module's JSON-value representation, per spec §6) for
// the default serialise/deserialise pair. It panics (contract violation)
// if name is already registered or reserved.
func RegisterComponent[T any](r *ComponentRegistry, name string) ComponentTypeID {
	if name == ReservedComponentIdentity || name == ReservedComponentEntity {
		Violatef("component name %q is reserved", name)
	}
	return registerComponent[T](r, name)
}

// RegisterIdentityComponent registers the Identity struct under the
// reserved name __identity. It is called once by world.New and must never
// be called from gameplay code, which is why it lives here rather than
// being reachable through the generic RegisterComponent entry point.
func RegisterIdentityComponent(r *ComponentRegistry) ComponentTypeID {
	if id, exists := r.byName[ReservedComponentIdentity]; exists {
		return id
	}
	return registerComponent[Identity](r, ReservedComponentIdentity)
}

func registerComponent[T any](r *ComponentRegistry, name string) ComponentTypeID {
	if _, exists := r.byName[name]; exists {
		Violatef("component name %q already registered", name)
	}

	var zero T
	t := reflect.TypeOf(zero)

	id := ComponentTypeID(len(r.byID))
	codec := &componentCodec{
		info: ComponentInfo{
			ID:     id,
			Name:   name,
			Size:   t.Size(),
			Align:  uintptr(t.Align()),
			goType: t,
		},
		serialise: func(value any) (any, error) {
			bytes, err := json.Marshal(value)
			if err != nil {
				return nil, err
			}
			var jv any
			if err := json.Unmarshal(bytes, &jv); err != nil {
				return nil, err
			}
			return jv, nil
		},
		deserialis: func(jsonValue any) (any, error) {
			bytes, err := json.Marshal(jsonValue)
			if err != nil {
				return nil, err
			}
			var out T
			if err := json.Unmarshal(bytes, &out); err != nil {
				return nil, err
			}
			return out, nil
		},
	}

	r.byID = append(r.byID, codec)
	r.byName[name] = id
	return id
}

// Lookup resolves a name to its ComponentTypeID.
func (r *ComponentRegistry) Lookup(name string) (ComponentTypeID, bool) {
	id, ok := r.byName[name]
	return id, ok
}

// Info returns the ComponentInfo for a registered id.
func (r *ComponentRegistry) Info(id ComponentTypeID) ComponentInfo {
	return r.byID[id].info
}

// Names returns every registered component name, for diagnostics and
// WorldSnapshot.component_names.
func (r *ComponentRegistry) Names() []string {
	names := make([]string, len(r.byID))
	for i, c := range r.byID {
		names[i] = c.info.Name
	}
	return names
}

// Serialise converts a typed component value to a JSON-value.
func (r *ComponentRegistry) Serialise(id ComponentTypeID, value any) (any, error) {
	return r.byID[id].serialise(value)
}

// Deserialise converts a JSON-value back to the registered Go type, boxed
// as `any`. An error here always means the payload did not match the
// schema (spec's ComponentDeserialisationError).
func (r *ComponentRegistry) Deserialise(id ComponentTypeID, jsonValue any) (any, error) {
	out, err := r.byID[id].deserialis(jsonValue)
	if err != nil {
		return nil, fmt.Errorf("deserialise %s: %w", r.byID[id].info.Name, err)
	}
	return out, nil
}

// GoType returns the reflect.Type registered for id, used by Column to
// build a typed backing slice.
func (r *ComponentRegistry) GoType(id ComponentTypeID) reflect.Type {
	return r.byID[id].info.goType
}

// Count returns how many component types are registered.
func (r *ComponentRegistry) Count() int {
	return len(r.byID)
}
