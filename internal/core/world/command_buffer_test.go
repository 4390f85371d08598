package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/totodo713/simcore/internal/core/ecs"
)

type counter struct{ Value int64 }

func newCounterWorld(t *testing.T) (*World, ecs.ComponentTypeID) {
	t.Helper()
	r := ecs.NewComponentRegistry()
	id := ecs.RegisterComponent[counter](r, "counter")
	return New(r), id
}

func TestCommandBuffer_AppliesInFIFOOrderLastWriteWins(t *testing.T) {
	w, counterID := newCounterWorld(t)
	e := w.Spawn(NewBundle(Pair{Type: counterID, Value: counter{Value: 0}}))

	buf := NewCommandBuffer()
	buf.Push(ecs.Command{Target: &e, Kind: ecs.CommandSetComponent, ComponentName: "counter", ComponentValue: counter{Value: 1}})
	buf.Push(ecs.Command{Target: &e, Kind: ecs.CommandSetComponent, ComponentName: "counter", ComponentValue: counter{Value: 2}})

	report, conflicts := buf.Apply(w)
	assert.Equal(t, 1, len(conflicts))
	assert.Equal(t, 2, report.SuccessCount)

	value, ok := w.GetComponent(e, counterID)
	require.True(t, ok)
	assert.Equal(t, counter{Value: 2}, value) // last write wins
}

func TestCommandBuffer_FailedCommandDoesNotAbortRemaining(t *testing.T) {
	w, counterID := newCounterWorld(t)
	e := w.Spawn(NewBundle(Pair{Type: counterID, Value: counter{Value: 0}}))
	stale := e
	require.NoError(t, w.Despawn(stale))

	another := w.Spawn(NewBundle(Pair{Type: counterID, Value: counter{Value: 0}}))

	buf := NewCommandBuffer()
	buf.Push(ecs.Command{Target: &stale, Kind: ecs.CommandSetComponent, ComponentName: "counter", ComponentValue: counter{Value: 5}})
	buf.Push(ecs.Command{Target: &another, Kind: ecs.CommandSetComponent, ComponentName: "counter", ComponentValue: counter{Value: 9}})

	report, _ := buf.Apply(w)
	assert.Equal(t, 1, report.FailedCount)
	assert.Equal(t, 1, report.SuccessCount)

	value, ok := w.GetComponent(another, counterID)
	require.True(t, ok)
	assert.Equal(t, counter{Value: 9}, value)
}

func TestCommandBuffer_SpawnSemanticAssignsEntity(t *testing.T) {
	w, _ := newCounterWorld(t)
	buf := NewCommandBuffer()
	cmd := ecs.Command{
		Kind:       ecs.CommandSpawnSemantic,
		Identity:   ecs.NewSemanticIdentity("player", "hero", ecs.SystemIDPlayerSpawner, ""),
		Components: []ecs.NamedValue{{Name: "counter", Value: map[string]any{"Value": float64(3)}}},
	}
	idx := buf.Push(cmd)
	assert.Equal(t, uint32(0), idx)

	report, _ := buf.Apply(w)
	assert.Equal(t, 1, report.SuccessCount)

	applied := w // no direct access to the command slice after Apply; verify indirectly
	assert.Equal(t, 1, applied.Allocator.AliveCount())
}

func TestCommandBuffer_DespawnCommand(t *testing.T) {
	w, counterID := newCounterWorld(t)
	e := w.Spawn(NewBundle(Pair{Type: counterID, Value: counter{}}))

	buf := NewCommandBuffer()
	buf.Push(ecs.Command{Target: &e, Kind: ecs.CommandDespawn})
	report, _ := buf.Apply(w)

	assert.Equal(t, 1, report.SuccessCount)
	assert.False(t, w.IsAlive(e))
}
