package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/totodo713/simcore/internal/core/ecs"
)

type vec2 struct{ X, Y float64 }

func newTestRegistry(t *testing.T) (*ecs.ComponentRegistry, ecs.ComponentTypeID, ecs.ComponentTypeID) {
	t.Helper()
	r := ecs.NewComponentRegistry()
	posID := ecs.RegisterComponent[vec2](r, "position")
	velID := ecs.RegisterComponent[vec2](r, "velocity")
	return r, posID, velID
}

func TestArchetype_AddAndGetComponent(t *testing.T) {
	r, posID, velID := newTestRegistry(t)
	sorted := SortTypes([]ecs.ComponentTypeID{velID, posID})
	a := NewArchetype(0, r, sorted)

	row := a.AddEntity(100, []ComponentValue{
		{Type: posID, Value: vec2{X: 1, Y: 2}},
		{Type: velID, Value: vec2{X: 0, Y: 0}},
	})
	assert.Equal(t, 0, row)

	value, ok := a.GetComponent(row, posID)
	require.True(t, ok)
	assert.Equal(t, vec2{X: 1, Y: 2}, value)
}

func TestArchetype_AddEntityWrongComponentCountPanics(t *testing.T) {
	r, posID, _ := newTestRegistry(t)
	a := NewArchetype(0, r, []ecs.ComponentTypeID{posID})

	assert.Panics(t, func() {
		a.AddEntity(1, nil)
	})
}

func TestArchetype_RemoveEntitySwapsLastRow(t *testing.T) {
	r, posID, _ := newTestRegistry(t)
	a := NewArchetype(0, r, []ecs.ComponentTypeID{posID})

	a.AddEntity(1, []ComponentValue{{Type: posID, Value: vec2{X: 1}}})
	a.AddEntity(2, []ComponentValue{{Type: posID, Value: vec2{X: 2}}})
	a.AddEntity(3, []ComponentValue{{Type: posID, Value: vec2{X: 3}}})

	moved := a.RemoveEntity(0)
	require.NotNil(t, moved)
	assert.Equal(t, ecs.EntityID(3), *moved)
	assert.Equal(t, 2, a.Len())

	value, _ := a.GetComponent(0, posID)
	assert.Equal(t, vec2{X: 3}, value)
}

func TestArchetype_RemoveEntityAndMoveCarriesValues(t *testing.T) {
	r, posID, velID := newTestRegistry(t)
	sorted := SortTypes([]ecs.ComponentTypeID{posID, velID})
	a := NewArchetype(0, r, sorted)

	a.AddEntity(1, []ComponentValue{
		{Type: posID, Value: vec2{X: 1, Y: 1}},
		{Type: velID, Value: vec2{X: 2, Y: 2}},
	})

	carried, moved := a.RemoveEntityAndMove(0)
	assert.Nil(t, moved)
	assert.Len(t, carried, 2)
	assert.Equal(t, 0, a.Len())
}

func TestArchetype_SupersetAndHasComponent(t *testing.T) {
	r, posID, velID := newTestRegistry(t)
	a := NewArchetype(0, r, SortTypes([]ecs.ComponentTypeID{posID, velID}))

	assert.True(t, a.HasComponent(posID))
	assert.True(t, a.Superset([]ecs.ComponentTypeID{posID}))
	assert.True(t, a.Superset([]ecs.ComponentTypeID{posID, velID}))

	otherID := ecs.ComponentTypeID(99)
	assert.False(t, a.Superset([]ecs.ComponentTypeID{otherID}))
}
