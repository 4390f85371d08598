package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/totodo713/simcore/internal/core/components"
	"github.com/totodo713/simcore/internal/core/ecs"
)

func TestReference_StepIntegratesGravity(t *testing.T) {
	r := NewReference()
	r.Gravity = components.Vector2{X: 0, Y: 10}
	r.RegisterEntity(Body{Entity: ecs.NewEntityID(1, 0), Mass: 1})

	r.Step(1.0)

	bodies, _ := r.ReadBack()
	assert.Len(t, bodies, 1)
	assert.InDelta(t, 10, bodies[0].Velocity.Y, 1e-9)
	assert.InDelta(t, 10, bodies[0].Position.Y, 1e-9)
}

func TestReference_StaticBodyNeverMoves(t *testing.T) {
	r := NewReference()
	r.RegisterEntity(Body{Entity: ecs.NewEntityID(1, 0), Mass: 0, Position: components.Vector2{X: 5, Y: 5}})

	r.Step(1.0)

	bodies, _ := r.ReadBack()
	assert.Equal(t, components.Vector2{X: 5, Y: 5}, bodies[0].Position)
}

func TestReference_ReadBackReportsOverlapPairsSorted(t *testing.T) {
	r := NewReference()
	r.RegisterEntity(Body{Entity: ecs.NewEntityID(2, 0), Position: components.Vector2{X: 0}, Radius: 5})
	r.RegisterEntity(Body{Entity: ecs.NewEntityID(1, 0), Position: components.Vector2{X: 1}, Radius: 5})

	_, pairs := r.ReadBack()
	assert.Len(t, pairs, 1)
	assert.True(t, pairs[0].A < pairs[0].B)
}

func TestReference_UnregisterEntity(t *testing.T) {
	r := NewReference()
	id := ecs.NewEntityID(1, 0)
	r.RegisterEntity(Body{Entity: id})
	r.UnregisterEntity(id)

	bodies, _ := r.ReadBack()
	assert.Empty(t, bodies)
}
