package replay

import (
	"github.com/totodo713/simcore/internal/core/ecs"
	"github.com/totodo713/simcore/internal/core/snapshot"
	"github.com/totodo713/simcore/internal/core/tick"
)

// replayInputSystemName is reserved so Driver's synthetic input-application
// system always sorts first in the tick's dependency graph: it has no
// declared dependencies, and being registered before any caller system
// means it is first in topoSort's tie-break-by-registration-order rule.
const replayInputSystemName = "replay:apply-input"

// ApplyInput pushes whatever commands the tick's current input frame
// implies onto ctx.Buffer. It reads ctx.CurrentInput rather than taking a
// separate payload parameter, since Driver always calls loop.SetInput
// before a tick runs; only the caller knows how to turn that frame's
// contents into commands.
type ApplyInput func(ctx *tick.Context) error

// validate checks a Log's structure without touching any world: no two
// input entries or checkpoint entries may share a tick, entries must be in
// non-decreasing tick order, and FinalTick must be at least the initial
// snapshot's tick and at least every recorded entry's tick. This is the
// "validate the log before mutating anything" pass.
func validate(log Log) error {
	seenInputs := make(map[uint64]bool, len(log.Inputs))
	lastTick := log.InitialSnapshot.TickCounter
	for _, in := range log.Inputs {
		if seenInputs[in.Tick] {
			return ecs.NewReplayLogInvalidError("duplicate input entry at tick")
		}
		if in.Tick < lastTick {
			return ecs.NewReplayLogInvalidError("input entries are not in non-decreasing tick order")
		}
		seenInputs[in.Tick] = true
		lastTick = in.Tick
		if in.Tick > log.FinalTick {
			return ecs.NewReplayLogInvalidError("input tick exceeds final tick")
		}
	}

	seenCheckpoints := make(map[uint64]bool, len(log.Checkpoints))
	lastCheckpoint := log.InitialSnapshot.TickCounter
	for _, c := range log.Checkpoints {
		if seenCheckpoints[c.Tick] {
			return ecs.NewReplayLogInvalidError("duplicate checkpoint entry at tick")
		}
		if c.Tick < lastCheckpoint {
			return ecs.NewReplayLogInvalidError("checkpoint entries are not in non-decreasing tick order")
		}
		seenCheckpoints[c.Tick] = true
		lastCheckpoint = c.Tick
		if c.Tick > log.FinalTick {
			return ecs.NewReplayLogInvalidError("checkpoint tick exceeds final tick")
		}
	}

	if log.FinalTick < log.InitialSnapshot.TickCounter {
		return ecs.NewReplayLogInvalidError("final tick precedes initial snapshot tick")
	}

	return nil
}

// Driver replays a Log against a freshly restored world.
type Driver struct{}

// NewDriver returns a Driver.
func NewDriver() *Driver {
	return &Driver{}
}

// Result is what Replay found.
type Result struct {
	// DivergentTick is nil if the replay matched every checkpoint; otherwise
	// it names the first tick whose recomputed state hash did not match
	// the recorded checkpoint.
	DivergentTick *uint64
	FinalHash     string
}

// Replay validates log, restores its initial snapshot, registers systems
// via setup, then steps the resulting loop tick by tick to FinalTick. For
// each tick t it first installs t's recorded input via loop.SetInput (if
// none was recorded: an empty frame, except at the initial tick, which
// keeps the snapshot's CurrentInput), then — before t is executed —
// compares t's recorded checkpoint (if any) against the state hash that
// input produces, and only then calls loop.Step. This mirrors set-input,
// check-checkpoint, then-tick ordering: a checkpoint always reflects
// input-applied-but-not-yet-ticked state, never the tick's aftermath. It
// stops at the first divergent checkpoint rather than running to
// completion, since nothing past that point is informative.
func Replay(registry *ecs.ComponentRegistry, log Log, fixedDt float64, applyInput ApplyInput, setup func(*tick.Loop)) (Result, error) {
	if err := validate(log); err != nil {
		return Result{}, err
	}

	w, err := snapshot.Restore(registry, log.InitialSnapshot)
	if err != nil {
		return Result{}, err
	}
	loop := tick.NewLoop(w, fixedDt)
	loop.SetInput(log.InitialSnapshot.CurrentInput)

	inputs := make(map[uint64]ecs.InputFrame, len(log.Inputs))
	for _, in := range log.Inputs {
		inputs[in.Tick] = in.Input
	}
	checkpoints := make(map[uint64]string, len(log.Checkpoints))
	for _, c := range log.Checkpoints {
		checkpoints[c.Tick] = c.Hash
	}

	loop.AddSystem(replayInputSystemName, ecs.SystemIDEngineInternal, func(ctx *tick.Context) error {
		return applyInput(ctx)
	})
	if setup != nil {
		setup(loop)
	}

	// t ranges over [InitialTick, FinalTick] inclusive for the
	// set-input/check-checkpoint steps, but a tick is only executed for t
	// in [InitialTick, FinalTick): FinalTick names the state the replay
	// should end in, not a tick to run.
	for t := log.InitialSnapshot.TickCounter; t <= log.FinalTick; t++ {
		if input, ok := inputs[t]; ok {
			loop.SetInput(input)
		} else if t > log.InitialSnapshot.TickCounter {
			loop.SetInput(ecs.InputFrame{})
		}

		if expected, ok := checkpoints[t]; ok {
			actual, err := loop.StateHash()
			if err != nil {
				return Result{}, err
			}
			if actual != expected {
				divergent := t
				return Result{DivergentTick: &divergent, FinalHash: actual}, nil
			}
		}

		if t == log.FinalTick {
			break
		}
		if _, err := loop.Step(); err != nil {
			return Result{}, err
		}
	}

	finalHash, err := loop.StateHash()
	if err != nil {
		return Result{}, err
	}
	return Result{FinalHash: finalHash}, nil
}
