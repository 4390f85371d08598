package systems

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/totodo713/simcore/internal/core/components"
	"github.com/totodo713/simcore/internal/core/ecs"
	"github.com/totodo713/simcore/internal/core/tick"
	"github.com/totodo713/simcore/internal/core/world"
)

func newTestLoop(t *testing.T) (*tick.Loop, components.Types) {
	t.Helper()
	r := ecs.NewComponentRegistry()
	types := components.RegisterAll(r)
	w := world.New(r)
	return tick.NewLoop(w, 1.0/60.0), types
}

func TestMovement_IntegratesVelocityIntoPosition(t *testing.T) {
	loop, types := newTestLoop(t)
	e := loop.World.Spawn(world.NewBundle(
		world.Pair{Type: types.Transform, Value: components.Transform{Position: components.Vector2{X: 0, Y: 0}}},
		world.Pair{Type: types.Physics, Value: components.Physics{Velocity: components.Vector2{X: 60, Y: 0}}},
	))

	m := NewMovement(types)
	loop.AddSystem("movement", ecs.SystemIDPhysics, m.Run)

	_, err := loop.Step()
	require.NoError(t, err)

	value, ok := loop.World.GetComponent(e, types.Transform)
	require.True(t, ok)
	transform := value.(components.Transform)
	assert.InDelta(t, 1.0, transform.Position.X, 1e-9) // 60 units/s * 1/60s
}

func TestMovement_ClampsToBoundary(t *testing.T) {
	loop, types := newTestLoop(t)
	e := loop.World.Spawn(world.NewBundle(
		world.Pair{Type: types.Transform, Value: components.Transform{Position: components.Vector2{X: 99, Y: 0}}},
		world.Pair{Type: types.Physics, Value: components.Physics{Velocity: components.Vector2{X: 1000, Y: 0}}},
	))

	m := NewMovement(types)
	m.SetBoundary(0, 0, 100, 100)
	loop.AddSystem("movement", ecs.SystemIDPhysics, m.Run)

	_, err := loop.Step()
	require.NoError(t, err)

	value, _ := loop.World.GetComponent(e, types.Transform)
	assert.Equal(t, float64(100), value.(components.Transform).Position.X)
}

func TestCounter_IncrementsEachTick(t *testing.T) {
	loop, types := newTestLoop(t)
	e := loop.World.Spawn(world.NewBundle(world.Pair{Type: types.Counter, Value: components.Counter{}}))

	c := NewCounter(types)
	loop.AddSystem("counter", ecs.SystemIDEngineInternal, c.Run)

	for i := 0; i < 5; i++ {
		_, err := loop.Step()
		require.NoError(t, err)
	}

	value, ok := loop.World.GetComponent(e, types.Counter)
	require.True(t, ok)
	assert.Equal(t, int64(5), value.(components.Counter).Value)
}
