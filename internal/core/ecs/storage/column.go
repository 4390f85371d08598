// Package storage holds the per-archetype dense storage primitives: Column
// (one component type's packed array) and Archetype (a set of columns plus
// the entity vector). Rows are removed with a swap-from-the-end so no
// column ever shifts more than one element per removal.
package storage

import (
	"reflect"

	"github.com/totodo713/simcore/internal/core/ecs"
)

const initialColumnCapacity = 4

// Column is a type-erased, densely packed array for one component type
// within one archetype. It never shrinks; growth doubles capacity starting
// from 4. Zero-sized component types never allocate an underlying array,
// but len still advances as if they did.
type Column struct {
	componentType ecs.ComponentTypeID
	goType        reflect.Type
	data          reflect.Value // a reflect.Value of kind Slice; Len() == len, Cap() may be larger
	len           int
	zeroSized     bool
}

// NewColumn creates an empty column for the given component type.
func NewColumn(componentType ecs.ComponentTypeID, goType reflect.Type) *Column {
	c := &Column{
		componentType: componentType,
		goType:        goType,
		zeroSized:     goType.Size() == 0,
	}
	if !c.zeroSized {
		c.data = reflect.MakeSlice(reflect.SliceOf(goType), 0, 0)
	}
	return c
}

// Len returns the number of rows currently stored.
func (c *Column) Len() int { return c.len }

// Cap returns the current backing capacity (always 0 for zero-sized types).
func (c *Column) Cap() int {
	if c.zeroSized {
		return 0
	}
	return c.data.Cap()
}

func (c *Column) grow() {
	if c.zeroSized {
		return
	}
	newCap := c.data.Cap() * 2
	if newCap == 0 {
		newCap = initialColumnCapacity
	}
	grown := reflect.MakeSlice(reflect.SliceOf(c.goType), c.data.Len(), newCap)
	reflect.Copy(grown, c.data)
	c.data = grown
}

// Push appends value (which must be assignable to the column's component
// type) and returns the row index it was stored at.
func (c *Column) Push(value any) int {
	row := c.len
	if c.zeroSized {
		c.len++
		return row
	}
	if c.data.Len() == c.data.Cap() {
		c.grow()
	}
	c.data = reflect.Append(c.data, reflect.ValueOf(value).Convert(c.goType))
	c.len++
	return row
}

// Get returns the value stored at row, boxed as `any`.
func (c *Column) Get(row int) any {
	if c.zeroSized {
		return reflect.Zero(c.goType).Interface()
	}
	return c.data.Index(row).Interface()
}

// Set overwrites the value stored at row.
func (c *Column) Set(row int, value any) {
	if c.zeroSized {
		return
	}
	c.data.Index(row).Set(reflect.ValueOf(value).Convert(c.goType))
}

// SwapRemove drops the element at row: if row is not the last row, the last
// row's value is moved into row's slot first. It returns nothing; a swap
// occurred iff row != Len()-1 before the call.
func (c *Column) SwapRemove(row int) {
	last := c.len - 1
	if !c.zeroSized && row != last {
		c.data.Index(row).Set(c.data.Index(last))
	}
	if !c.zeroSized {
		c.data = c.data.Slice(0, last) // Slice(0, n) keeps the full capacity
	}
	c.len--
}

// SwapRemoveAndMove behaves like SwapRemove but returns the removed value
// instead of discarding it, for use during archetype migration.
func (c *Column) SwapRemoveAndMove(row int) any {
	value := c.Get(row)
	c.SwapRemove(row)
	return value
}

// ComponentType returns the component type this column stores.
func (c *Column) ComponentType() ecs.ComponentTypeID { return c.componentType }
