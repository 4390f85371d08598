package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/totodo713/simcore/internal/core/ecs"
	"github.com/totodo713/simcore/internal/core/ecs/storage"
)

type vec2 struct{ X, Y float64 }

func TestComponentBitSet_SupersetAcrossWords(t *testing.T) {
	want := NewComponentBitSetOf(3, 130)
	have := NewComponentBitSetOf(1, 3, 70, 130)
	assert.True(t, have.IsSupersetOf(want))
	assert.False(t, want.IsSupersetOf(have))
}

func TestComponentBitSet_HasAndIntersects(t *testing.T) {
	a := NewComponentBitSetOf(5)
	b := NewComponentBitSetOf(5, 9)
	assert.True(t, a.Has(5))
	assert.False(t, a.Has(9))
	assert.True(t, a.Intersects(b))
}

func TestValidateReadOnly_RejectsWriteItem(t *testing.T) {
	spec := NewSpec(ReadItem(1), WriteItem(2))
	assert.Error(t, ValidateReadOnly(spec))
}

func TestValidateMutable_RejectsDuplicateType(t *testing.T) {
	spec := NewSpec(ReadItem(1), WriteItem(1))
	assert.Error(t, ValidateMutable(spec))
}

func TestResolve_FiltersBySuperset(t *testing.T) {
	r := ecs.NewComponentRegistry()
	posID := ecs.RegisterComponent[vec2](r, "position")
	velID := ecs.RegisterComponent[vec2](r, "velocity")

	posOnly := storage.NewArchetype(0, r, storage.SortTypes([]ecs.ComponentTypeID{posID}))
	posOnly.AddEntity(1, []storage.ComponentValue{{Type: posID, Value: vec2{X: 1}}})

	posVel := storage.NewArchetype(1, r, storage.SortTypes([]ecs.ComponentTypeID{posID, velID}))
	posVel.AddEntity(2, []storage.ComponentValue{
		{Type: posID, Value: vec2{X: 2}},
		{Type: velID, Value: vec2{X: 3}},
	})

	spec := NewSpec(ReadItem(posID), ReadItem(velID))
	rows := Resolve([]*storage.Archetype{posOnly, posVel}, spec)

	require.Len(t, rows, 1)
	assert.Equal(t, ecs.EntityID(2), rows[0].Entity)
}

func TestGet_ReturnsStoredValue(t *testing.T) {
	r := ecs.NewComponentRegistry()
	posID := ecs.RegisterComponent[vec2](r, "position")
	a := storage.NewArchetype(0, r, []ecs.ComponentTypeID{posID})
	a.AddEntity(1, []storage.ComponentValue{{Type: posID, Value: vec2{X: 1, Y: 1}}})

	row := Row{Entity: 1, Archetype: a, RowIndex: 0}
	assert.Equal(t, vec2{X: 1, Y: 1}, Get[vec2](row, posID))
}

func TestResolve_PanicsOnWriteItem(t *testing.T) {
	r := ecs.NewComponentRegistry()
	posID := ecs.RegisterComponent[vec2](r, "position")
	a := storage.NewArchetype(0, r, []ecs.ComponentTypeID{posID})
	a.AddEntity(1, []storage.ComponentValue{{Type: posID, Value: vec2{X: 1}}})

	spec := NewSpec(WriteItem(posID))
	assert.Panics(t, func() { Resolve([]*storage.Archetype{a}, spec) })
}
