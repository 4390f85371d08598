package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntityAllocator_AllocateAndDeallocate(t *testing.T) {
	a := NewEntityAllocator()

	e1 := a.Allocate()
	e2 := a.Allocate()
	assert.NotEqual(t, e1, e2)
	assert.True(t, a.IsAlive(e1))
	assert.Equal(t, 2, a.AliveCount())

	assert.True(t, a.Deallocate(e1))
	assert.False(t, a.IsAlive(e1))
	assert.Equal(t, 1, a.AliveCount())
}

func TestEntityAllocator_FIFORecycling(t *testing.T) {
	a := NewEntityAllocator()
	e1 := a.Allocate()
	e2 := a.Allocate()
	e3 := a.Allocate()

	a.Deallocate(e1)
	a.Deallocate(e2)

	// FIFO: e1's slot is recycled before e2's.
	recycled1 := a.Allocate()
	recycled2 := a.Allocate()
	assert.Equal(t, e1.Index(), recycled1.Index())
	assert.Equal(t, e2.Index(), recycled2.Index())
	assert.NotEqual(t, e1.Generation(), recycled1.Generation())

	_ = e3
}

func TestEntityAllocator_DeallocateStaleHandleFails(t *testing.T) {
	a := NewEntityAllocator()
	e1 := a.Allocate()
	a.Deallocate(e1)

	assert.False(t, a.Deallocate(e1))
	assert.False(t, a.IsAlive(e1))
}

func TestAllocatorState_ValidateDetectsFreeIndexOnLiveSlot(t *testing.T) {
	state := AllocatorState{
		Generations: []uint32{0},
		Alive:       []bool{true},
		FreeIndices: []uint32{0},
	}
	err := state.Validate(map[uint32]bool{0: true})
	assert.Error(t, err)
}

func TestAllocatorState_ValidateDetectsAliveMismatch(t *testing.T) {
	state := AllocatorState{
		Generations: []uint32{0, 0},
		Alive:       []bool{true, false},
		FreeIndices: []uint32{1},
	}
	// aliveEntityIndices disagrees with state.Alive for index 0.
	err := state.Validate(map[uint32]bool{})
	assert.Error(t, err)
}

func TestAllocatorState_RoundTrip(t *testing.T) {
	a := NewEntityAllocator()
	a.Allocate()
	e2 := a.Allocate()
	a.Deallocate(e2)

	state := a.SnapshotState()
	restored := NewEntityAllocator()
	restored.RestoreState(state)

	assert.Equal(t, a.AliveCount(), restored.AliveCount())
}
