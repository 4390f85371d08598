package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/totodo713/simcore/internal/core/ecs"
	"github.com/totodo713/simcore/internal/core/world"
)

type position struct{ X, Y float64 }

func newTestWorld(t *testing.T) (*ecs.ComponentRegistry, *world.World, ecs.ComponentTypeID) {
	t.Helper()
	r := ecs.NewComponentRegistry()
	posID := ecs.RegisterComponent[position](r, "position")
	return r, world.New(r), posID
}

func TestCapture_IsDeterministicForIdenticalWorlds(t *testing.T) {
	r1, w1, posID1 := newTestWorld(t)
	w1.Spawn(world.NewBundle(world.Pair{Type: posID1, Value: position{X: 1}}))
	w1.Spawn(world.NewBundle(world.Pair{Type: posID1, Value: position{X: 2}}))
	snap1, err := Capture(w1, 10, 0.1667, ecs.InputFrame{})
	require.NoError(t, err)

	r2, w2, posID2 := newTestWorld(t)
	w2.Spawn(world.NewBundle(world.Pair{Type: posID2, Value: position{X: 1}}))
	w2.Spawn(world.NewBundle(world.Pair{Type: posID2, Value: position{X: 2}}))
	snap2, err := Capture(w2, 10, 0.1667, ecs.InputFrame{})
	require.NoError(t, err)

	assert.Equal(t, snap1.Hash, snap2.Hash)
	_ = r1
	_ = r2
}

func TestCapture_DifferentStateDifferentHash(t *testing.T) {
	r, w, posID := newTestWorld(t)
	w.Spawn(world.NewBundle(world.Pair{Type: posID, Value: position{X: 1}}))
	snapA, err := Capture(w, 0, 0, ecs.InputFrame{})
	require.NoError(t, err)

	w.Spawn(world.NewBundle(world.Pair{Type: posID, Value: position{X: 2}}))
	snapB, err := Capture(w, 0, 0, ecs.InputFrame{})
	require.NoError(t, err)

	assert.NotEqual(t, snapA.Hash, snapB.Hash)
	_ = r
}

func TestCapture_DifferentInputDifferentHash(t *testing.T) {
	r, w, posID := newTestWorld(t)
	w.Spawn(world.NewBundle(world.Pair{Type: posID, Value: position{X: 1}}))
	snapA, err := Capture(w, 0, 0, ecs.InputFrame{})
	require.NoError(t, err)

	snapB, err := Capture(w, 0, 0, ecs.NewInputFrame(map[string]any{"move": "left"}))
	require.NoError(t, err)

	assert.NotEqual(t, snapA.Hash, snapB.Hash)
	_ = r
}

func TestRestore_RoundTripPreservesHash(t *testing.T) {
	r, w, posID := newTestWorld(t)
	w.Spawn(world.NewBundle(world.Pair{Type: posID, Value: position{X: 3, Y: 4}}))
	e2 := w.Spawn(world.NewBundle(world.Pair{Type: posID, Value: position{X: 5, Y: 6}}))
	w.Despawn(e2)

	snap, err := Capture(w, 42, 0.7, ecs.NewInputFrame(map[string]any{"jump": true}))
	require.NoError(t, err)

	restored, err := Restore(r, snap)
	require.NoError(t, err)

	restoredSnap, err := Capture(restored, 42, 0.7, snap.CurrentInput)
	require.NoError(t, err)
	assert.Equal(t, snap.Hash, restoredSnap.Hash)
}

func TestRestore_RejectsUnknownComponentName(t *testing.T) {
	r, w, posID := newTestWorld(t)
	w.Spawn(world.NewBundle(world.Pair{Type: posID, Value: position{X: 1}}))
	snap, err := Capture(w, 0, 0, ecs.InputFrame{})
	require.NoError(t, err)

	fresh := ecs.NewComponentRegistry() // does not register "position"
	_, err = Restore(fresh, snap)
	assert.Error(t, err)
	_ = r
}

func TestRestore_RejectsTamperedHash(t *testing.T) {
	r, w, posID := newTestWorld(t)
	w.Spawn(world.NewBundle(world.Pair{Type: posID, Value: position{X: 1}}))
	snap, err := Capture(w, 0, 0, ecs.InputFrame{})
	require.NoError(t, err)

	snap.Hash = "0000000000000000000000000000000000000000000000000000000000000000"
	_, err = Restore(r, snap)
	assert.Error(t, err)
}
