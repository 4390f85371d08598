package systems

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/totodo713/simcore/internal/core/components"
	"github.com/totodo713/simcore/internal/core/ecs"
	"github.com/totodo713/simcore/internal/core/world"
)

func TestCollision_DamagesOverlappingPair(t *testing.T) {
	loop, types := newTestLoop(t)
	e1 := loop.World.Spawn(world.NewBundle(
		world.Pair{Type: types.Transform, Value: components.Transform{Position: components.Vector2{X: 0, Y: 0}}},
		world.Pair{Type: types.Physics, Value: components.Physics{Radius: 10}},
		world.Pair{Type: types.Health, Value: components.Health{Current: 100, Max: 100}},
	))
	e2 := loop.World.Spawn(world.NewBundle(
		world.Pair{Type: types.Transform, Value: components.Transform{Position: components.Vector2{X: 5, Y: 0}}},
		world.Pair{Type: types.Physics, Value: components.Physics{Radius: 10}},
		world.Pair{Type: types.Health, Value: components.Health{Current: 100, Max: 100}},
	))

	c := NewCollision(types)
	loop.AddSystem("collision", ecs.SystemIDPhysics, c.Run)

	_, err := loop.Step()
	require.NoError(t, err)

	v1, _ := loop.World.GetComponent(e1, types.Health)
	v2, _ := loop.World.GetComponent(e2, types.Health)
	assert.Equal(t, int64(99), v1.(components.Health).Current)
	assert.Equal(t, int64(99), v2.(components.Health).Current)
}

func TestCollision_NoOverlapNoDamage(t *testing.T) {
	loop, types := newTestLoop(t)
	e1 := loop.World.Spawn(world.NewBundle(
		world.Pair{Type: types.Transform, Value: components.Transform{Position: components.Vector2{X: 0, Y: 0}}},
		world.Pair{Type: types.Physics, Value: components.Physics{Radius: 1}},
		world.Pair{Type: types.Health, Value: components.Health{Current: 100, Max: 100}},
	))
	e2 := loop.World.Spawn(world.NewBundle(
		world.Pair{Type: types.Transform, Value: components.Transform{Position: components.Vector2{X: 500, Y: 0}}},
		world.Pair{Type: types.Physics, Value: components.Physics{Radius: 1}},
		world.Pair{Type: types.Health, Value: components.Health{Current: 100, Max: 100}},
	))

	c := NewCollision(types)
	loop.AddSystem("collision", ecs.SystemIDPhysics, c.Run)

	_, err := loop.Step()
	require.NoError(t, err)

	v1, _ := loop.World.GetComponent(e1, types.Health)
	v2, _ := loop.World.GetComponent(e2, types.Health)
	assert.Equal(t, int64(100), v1.(components.Health).Current)
	assert.Equal(t, int64(100), v2.(components.Health).Current)
}
