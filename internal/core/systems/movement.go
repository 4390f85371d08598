// Package systems holds example gameplay systems exercising the tick
// loop's query-then-command discipline: every mutation is pushed onto the
// tick Context's CommandBuffer, never written directly into a component,
// so system order never matters for who "really" changed what — the
// manifest always attributes it to the command that did.
package systems

import (
	"math"

	"github.com/totodo713/simcore/internal/core/components"
	"github.com/totodo713/simcore/internal/core/ecs"
	"github.com/totodo713/simcore/internal/core/ecs/query"
	"github.com/totodo713/simcore/internal/core/tick"
)

// Movement integrates velocity into position for every entity carrying
// both Transform and Physics, applying an optional speed cap and boundary
// clamp before pushing the updated Transform as a single SetComponent
// command per entity. The teacher's MovementSystem did this same
// integrate-then-clamp sequence by mutating components in place; here the
// result is queued instead, so it only becomes visible world state once
// the command buffer applies.
type Movement struct {
	types    components.Types
	maxSpeed float64 // <= 0 means unlimited
	boundary *Rectangle
}

// Rectangle bounds entity movement; positions are clamped to stay inside.
type Rectangle struct {
	X, Y, Width, Height float64
}

// NewMovement builds a Movement system over the given registered component
// types.
func NewMovement(types components.Types) *Movement {
	return &Movement{types: types, maxSpeed: -1}
}

// SetMaxSpeed sets the speed cap; <= 0 disables it.
func (m *Movement) SetMaxSpeed(v float64) { m.maxSpeed = v }

// SetBoundary installs a movement boundary.
func (m *Movement) SetBoundary(x, y, w, h float64) {
	m.boundary = &Rectangle{X: x, Y: y, Width: w, Height: h}
}

// Run is the tick.SystemFunc body: registered under SystemIDPhysics since
// it reads physics state to move the transform but never owns it.
func (m *Movement) Run(ctx *tick.Context) error {
	spec := query.NewSpec(query.ReadItem(m.types.Transform), query.ReadItem(m.types.Physics))
	for _, row := range query.Resolve(ctx.World.Archetypes(), spec) {
		transform := query.Get[components.Transform](row, m.types.Transform)
		physics := query.Get[components.Physics](row, m.types.Physics)

		velocity := physics.Velocity
		velocity.X += physics.Acceleration.X * ctx.FixedDt
		velocity.Y += physics.Acceleration.Y * ctx.FixedDt
		m.limitSpeed(&velocity)

		position := transform.Position
		position.X += velocity.X * ctx.FixedDt
		position.Y += velocity.Y * ctx.FixedDt
		m.clampToBoundary(&position)

		entity := row.Entity
		ctx.Buffer.Push(ecs.Command{
			Target:         &entity,
			Kind:           ecs.CommandSetComponent,
			IssuedBy:       ecs.SystemIDPhysics,
			Reason:         ecs.GameRule("movement integration"),
			ComponentName:  components.NameTransform,
			ComponentValue: components.Transform{Position: position},
		})
	}
	return nil
}

func (m *Movement) limitSpeed(v *components.Vector2) {
	if m.maxSpeed <= 0 {
		return
	}
	speed := math.Sqrt(v.X*v.X + v.Y*v.Y)
	if speed > m.maxSpeed {
		scale := m.maxSpeed / speed
		v.X *= scale
		v.Y *= scale
	}
}

func (m *Movement) clampToBoundary(p *components.Vector2) {
	if m.boundary == nil {
		return
	}
	if p.X < m.boundary.X {
		p.X = m.boundary.X
	} else if p.X > m.boundary.X+m.boundary.Width {
		p.X = m.boundary.X + m.boundary.Width
	}
	if p.Y < m.boundary.Y {
		p.Y = m.boundary.Y
	} else if p.Y > m.boundary.Y+m.boundary.Height {
		p.Y = m.boundary.Y + m.boundary.Height
	}
}
