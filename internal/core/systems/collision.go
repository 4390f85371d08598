package systems

import (
	"github.com/totodo713/simcore/internal/core/components"
	"github.com/totodo713/simcore/internal/core/ecs"
	"github.com/totodo713/simcore/internal/core/ecs/query"
	"github.com/totodo713/simcore/internal/core/physics"
	"github.com/totodo713/simcore/internal/core/tick"
)

// Collision drives a physics.Collaborator to detect circle-overlap pairs
// each tick and pushes a damage command to each entity in every
// overlapping pair, recording the cause as a CollisionResponse reason
// rather than a generic one. It defaults to physics.Reference, but any
// Collaborator — including one backed by an external engine — can be
// substituted via WithCollaborator, since this system only ever talks to
// the Collaborator interface.
type Collision struct {
	types        components.Types
	collaborator physics.Collaborator
	// Damage applied to each entity in an overlapping pair per tick.
	Damage int64
}

// NewCollision builds a Collision system backed by a fresh
// physics.Reference collaborator.
func NewCollision(types components.Types) *Collision {
	return &Collision{types: types, collaborator: physics.NewReference(), Damage: 1}
}

// WithCollaborator swaps in a different physics.Collaborator, returning c
// for chaining.
func (c *Collision) WithCollaborator(collab physics.Collaborator) *Collision {
	c.collaborator = collab
	return c
}

// Run is the tick.SystemFunc body: it syncs the current Transform/Physics
// state into the collaborator, steps it by one fixed timestep, and reads
// back the collision pairs it finds. The collaborator's own state
// integration (gravity, velocity) is scratch space for collision
// detection only — Movement, not Collision, owns writing Transform back
// to the world.
func (c *Collision) Run(ctx *tick.Context) error {
	spec := query.NewSpec(query.ReadItem(c.types.Transform), query.ReadItem(c.types.Physics))
	rows := query.Resolve(ctx.World.Archetypes(), spec)

	bodies := make([]physics.Body, 0, len(rows))
	for _, row := range rows {
		transform := query.Get[components.Transform](row, c.types.Transform)
		phys := query.Get[components.Physics](row, c.types.Physics)
		bodies = append(bodies, physics.Body{
			Entity:   row.Entity,
			Position: transform.Position,
			Velocity: phys.Velocity,
			Mass:     phys.Mass,
			Radius:   phys.Radius,
		})
	}

	c.collaborator.SyncTo(bodies)
	c.collaborator.Step(ctx.FixedDt)
	_, collisionPairs := c.collaborator.ReadBack()

	// ReadBack returns pairs in ascending-id order already (both the body
	// list and the i<j scan it runs are sorted by entity id), so the
	// damage-push order below is deterministic without an extra sort.
	for _, p := range collisionPairs {
		c.pushDamage(ctx, p.A, p.B)
		c.pushDamage(ctx, p.B, p.A)
	}
	return nil
}

func (c *Collision) pushDamage(ctx *tick.Context, target, cause ecs.EntityID) {
	value, ok := ctx.World.GetComponent(target, c.types.Health)
	if !ok {
		return
	}
	health := value.(components.Health)
	remaining := health.Current - c.Damage
	if remaining < 0 {
		remaining = 0
	}

	entity := target
	ctx.Buffer.Push(ecs.Command{
		Target:         &entity,
		Kind:           ecs.CommandSetComponent,
		IssuedBy:       ecs.SystemIDPhysics,
		Reason:         ecs.CollisionResponse(target, cause),
		ComponentName:  components.NameHealth,
		ComponentValue: components.Health{Current: remaining, Max: health.Max},
	})
}
