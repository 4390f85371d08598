package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPosition struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func TestRegisterComponent_RejectsReservedNames(t *testing.T) {
	r := NewComponentRegistry()
	assert.PanicsWithValue(t, ContractViolation{Reason: `component name "__identity" is reserved`}, func() {
		RegisterComponent[testPosition](r, ReservedComponentIdentity)
	})
}

func TestRegisterComponent_RejectsDuplicateNames(t *testing.T) {
	r := NewComponentRegistry()
	RegisterComponent[testPosition](r, "position")
	assert.Panics(t, func() {
		RegisterComponent[testPosition](r, "position")
	})
}

func TestComponentRegistry_SerialiseDeserialiseRoundTrip(t *testing.T) {
	r := NewComponentRegistry()
	id := RegisterComponent[testPosition](r, "position")

	original := testPosition{X: 1.5, Y: -2.5}
	jv, err := r.Serialise(id, original)
	require.NoError(t, err)

	restored, err := r.Deserialise(id, jv)
	require.NoError(t, err)
	assert.Equal(t, original, restored)
}

func TestComponentRegistry_DeserialiseRejectsMismatchedSchema(t *testing.T) {
	r := NewComponentRegistry()
	id := RegisterComponent[testPosition](r, "position")

	_, err := r.Deserialise(id, map[string]any{"x": "not-a-number", "y": 1.0})
	assert.Error(t, err)
}

func TestRegisterIdentityComponent_IsIdempotent(t *testing.T) {
	r := NewComponentRegistry()
	id1 := RegisterIdentityComponent(r)
	id2 := RegisterIdentityComponent(r)
	assert.Equal(t, id1, id2)
	assert.Equal(t, 1, r.Count())
}
