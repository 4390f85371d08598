// Package physics defines the boundary between the deterministic ECS core
// and an external physics engine: a narrow interface the tick loop talks
// to, plus a minimal reference implementation that is deterministic enough
// to use in tests without pulling in a real physics engine dependency.
package physics

import (
	"sort"

	"github.com/totodo713/simcore/internal/core/components"
	"github.com/totodo713/simcore/internal/core/ecs"
)

// Body is the subset of an entity's state a physics collaborator needs to
// simulate it.
type Body struct {
	Entity   ecs.EntityID
	Position components.Vector2
	Velocity components.Vector2
	Mass     float64
	Radius   float64
}

// CollisionPair names two colliding bodies, always ordered so A < B,
// matching the determinism requirement that collision pairs sort by
// (min(a,b), max(a,b)).
type CollisionPair struct {
	A, B ecs.EntityID
}

// Collaborator is the external-engine boundary: register/unregister
// entities as they spawn and despawn, push the ECS's view of their state
// in before stepping, advance the simulation by one fixed timestep, then
// read the engine's view back out. Callers pass bodies in whatever order
// their query yields; a collaborator that needs a fixed order sorts by
// entity id itself, as Reference does in Step and ReadBack.
type Collaborator interface {
	RegisterEntity(body Body)
	UnregisterEntity(entity ecs.EntityID)
	SyncTo(bodies []Body)
	Step(fixedDt float64)
	ReadBack() ([]Body, []CollisionPair)
}

// Reference is a minimal deterministic Collaborator: integrates velocity,
// applies uniform gravity, and reports circle-overlap pairs. Used as the
// default collaborator by cmd/simhost when no external engine is wired in.
type Reference struct {
	Gravity components.Vector2
	bodies  map[ecs.EntityID]Body
}

// NewReference builds a Reference collaborator with standard downward
// gravity (in pixels/s^2).
func NewReference() *Reference {
	return &Reference{
		Gravity: components.Vector2{X: 0, Y: 9.8 * 100},
		bodies:  make(map[ecs.EntityID]Body),
	}
}

func (r *Reference) RegisterEntity(body Body) {
	r.bodies[body.Entity] = body
}

func (r *Reference) UnregisterEntity(entity ecs.EntityID) {
	delete(r.bodies, entity)
}

func (r *Reference) SyncTo(bodies []Body) {
	for _, b := range bodies {
		r.bodies[b.Entity] = b
	}
}

// Step integrates gravity and velocity for every registered body in
// ascending entity-id order, so float accumulation order never varies
// between runs over the same registered set.
func (r *Reference) Step(fixedDt float64) {
	ids := r.sortedIDs()
	for _, id := range ids {
		b := r.bodies[id]
		if b.Mass <= 0 {
			continue
		}
		b.Velocity.X += r.Gravity.X * fixedDt
		b.Velocity.Y += r.Gravity.Y * fixedDt
		b.Position.X += b.Velocity.X * fixedDt
		b.Position.Y += b.Velocity.Y * fixedDt
		r.bodies[id] = b
	}
}

// ReadBack returns every registered body and every overlapping pair, both
// in ascending-id order.
func (r *Reference) ReadBack() ([]Body, []CollisionPair) {
	ids := r.sortedIDs()
	bodies := make([]Body, len(ids))
	for i, id := range ids {
		bodies[i] = r.bodies[id]
	}

	var pairs []CollisionPair
	for i := 0; i < len(bodies); i++ {
		for j := i + 1; j < len(bodies); j++ {
			if overlaps(bodies[i], bodies[j]) {
				pairs = append(pairs, CollisionPair{A: bodies[i].Entity, B: bodies[j].Entity})
			}
		}
	}
	return bodies, pairs
}

func (r *Reference) sortedIDs() []ecs.EntityID {
	ids := make([]ecs.EntityID, 0, len(r.bodies))
	for id := range r.bodies {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func overlaps(a, b Body) bool {
	dx, dy := a.Position.X-b.Position.X, a.Position.Y-b.Position.Y
	distSq := dx*dx + dy*dy
	r := a.Radius + b.Radius
	return distSq < r*r
}
