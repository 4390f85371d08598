package components

import "github.com/totodo713/simcore/internal/core/ecs"

// Registered component names, shared by every example system and
// cmd/simhost so they agree on what a name-based command refers to.
const (
	NameTransform = "transform"
	NamePhysics   = "physics"
	NameCounter   = "counter"
	NameHealth    = "health"
)

// Types bundles every example component's registered id, returned by
// RegisterAll so callers don't have to re-look each one up by name.
type Types struct {
	Transform ecs.ComponentTypeID
	Physics   ecs.ComponentTypeID
	Counter   ecs.ComponentTypeID
	Health    ecs.ComponentTypeID
}

// RegisterAll registers every example component type against registry.
func RegisterAll(registry *ecs.ComponentRegistry) Types {
	return Types{
		Transform: ecs.RegisterComponent[Transform](registry, NameTransform),
		Physics:   ecs.RegisterComponent[Physics](registry, NamePhysics),
		Counter:   ecs.RegisterComponent[Counter](registry, NameCounter),
		Health:    ecs.RegisterComponent[Health](registry, NameHealth),
	}
}
