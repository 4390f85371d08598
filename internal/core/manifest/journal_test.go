package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/totodo713/simcore/internal/core/ecs"
)

func TestJournal_BeginTickTwiceWithoutEndPanics(t *testing.T) {
	j := NewJournal(10)
	j.BeginTick(0)
	assert.Panics(t, func() { j.BeginTick(1) })
}

func TestJournal_RecordWithoutOpenTickPanics(t *testing.T) {
	j := NewJournal(10)
	assert.Panics(t, func() {
		j.RecordComponentChange(1, ChangeSetComponent, "x", nil, 0, ecs.GameRule(""), 0)
	})
}

func TestJournal_EndTickReturnsFinalisedManifest(t *testing.T) {
	j := NewJournal(10)
	j.BeginTick(5)
	j.RecordComponentChange(1, ChangeSetComponent, "position", 42, ecs.SystemIDPhysics, ecs.GameRule("test"), 0)
	j.RecordConflicts(1)
	m := j.EndTick(0.25, []string{"physics"}, 1)

	assert.Equal(t, uint64(5), m.Tick)
	require.Len(t, m.ComponentChanges, 1)
	assert.Equal(t, "position", m.ComponentChanges[0].Component)
	assert.Equal(t, 1, m.ConflictCount)
	assert.Equal(t, 0.25, m.SimTime)
	assert.Equal(t, []string{"physics"}, m.SystemsExecuted)
	assert.Equal(t, 1, m.CommandsSucceeded)
}

func TestJournal_HistoryTrimsToMaxLength(t *testing.T) {
	j := NewJournal(3)
	for i := uint64(0); i < 5; i++ {
		j.BeginTick(i)
		j.EndTick(0, nil, 0)
	}
	history := j.History()
	require.Len(t, history, 3)
	assert.Equal(t, uint64(2), history[0].Tick)
	assert.Equal(t, uint64(4), history[len(history)-1].Tick)
}

func TestJournal_BuildCausalChainIsMostRecentFirst(t *testing.T) {
	j := NewJournal(10)
	entity := ecs.EntityID(7)

	j.BeginTick(0)
	j.RecordComponentChange(entity, ChangeSetComponent, "health", 90, ecs.SystemIDPhysics, ecs.GameRule("a"), 0)
	j.EndTick(0, nil, 0)

	j.BeginTick(1)
	j.RecordComponentChange(entity, ChangeSetComponent, "health", 80, ecs.SystemIDPhysics, ecs.GameRule("b"), 1)
	j.EndTick(0, nil, 0)

	chain := j.BuildCausalChain(entity, "health")
	require.Len(t, chain, 2)
	assert.Equal(t, uint64(1), chain[0].Tick) // most recent first
	assert.Equal(t, uint64(0), chain[1].Tick)
}

func TestJournal_ComputeAggregatesCountsLiveTiers(t *testing.T) {
	j := NewJournal(10)
	j.BeginTick(0)
	j.RecordSpawn(1, ecs.NewSemanticIdentity("player", "hero", ecs.SystemIDPlayerSpawner, ""), ecs.SystemIDPlayerSpawner, ecs.GameRule("spawn"), 0)
	j.RecordSpawn(2, ecs.NewPooledIdentity("bullet", "small"), ecs.SystemIDGameplayScript, ecs.GameRule("spawn"), 1)
	j.EndTick(0, nil, 0)

	agg := j.ComputeAggregates()
	assert.Equal(t, 1, agg.SemanticCount)
	assert.Equal(t, 1, agg.PooledCount)
	assert.Equal(t, 2, agg.TotalAlive)
}
