package systems

import (
	"github.com/totodo713/simcore/internal/core/components"
	"github.com/totodo713/simcore/internal/core/ecs"
	"github.com/totodo713/simcore/internal/core/ecs/query"
	"github.com/totodo713/simcore/internal/core/tick"
)

// Counter increments every entity's Counter component by one each tick. It
// exists to give the deterministic end-to-end scenario (two independent
// runs from the same initial snapshot must reach the same state hash) the
// smallest possible system whose output is entirely a function of the
// tick number, with no dependency on wall-clock time or map iteration
// order.
type Counter struct {
	types components.Types
}

// NewCounter builds a Counter system.
func NewCounter(types components.Types) *Counter {
	return &Counter{types: types}
}

// Run is the tick.SystemFunc body.
func (c *Counter) Run(ctx *tick.Context) error {
	spec := query.NewSpec(query.ReadItem(c.types.Counter))
	for _, row := range query.Resolve(ctx.World.Archetypes(), spec) {
		current := query.Get[components.Counter](row, c.types.Counter)
		entity := row.Entity
		ctx.Buffer.Push(ecs.Command{
			Target:         &entity,
			Kind:           ecs.CommandSetComponent,
			IssuedBy:       ecs.SystemIDEngineInternal,
			Reason:         ecs.Timer("per-tick increment"),
			ComponentName:  components.NameCounter,
			ComponentValue: components.Counter{Value: current.Value + 1},
		})
	}
	return nil
}
