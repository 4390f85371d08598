// Package replay records a tick-by-tick input log with periodic state
// checkpoints, and can later drive that log back through a fresh world to
// reproduce (or detect the first divergence from) the original run.
package replay

import (
	"github.com/totodo713/simcore/internal/core/ecs"
	"github.com/totodo713/simcore/internal/core/snapshot"
)

// InputEntry is one tick's recorded external input (player commands,
// network events — anything the original run fed in from outside the
// deterministic core).
type InputEntry struct {
	Tick  uint64
	Input ecs.InputFrame
}

// CheckpointEntry is a periodically recorded state hash, used by Driver to
// detect the first tick at which a replay diverges from the original run.
type CheckpointEntry struct {
	Tick uint64
	Hash string
}

// Log is a complete, replayable recording: the world state the recording
// started from, every external input by tick, and the checkpoint hashes
// taken along the way.
type Log struct {
	InitialSnapshot snapshot.EngineSnapshot
	Inputs          []InputEntry
	Checkpoints     []CheckpointEntry
	FinalTick       uint64
}

// Recorder accumulates a Log. It enforces strictly increasing tick numbers
// on every entry it's given: a recording is a single forward pass over a
// run, and receiving an out-of-order tick means the caller is replaying
// recorder calls wrongly, which is a contract violation rather than
// recoverable data.
type Recorder struct {
	log              Log
	checkpointEvery  uint64
	lastInputTick    uint64
	hasInput         bool
	lastCheckpoint   uint64
	hasCheckpoint    bool
}

// NewRecorder starts a recording from initial, taking a checkpoint every
// checkpointEvery ticks (a non-positive value disables automatic
// checkpointing; RecordCheckpoint can still be called manually).
func NewRecorder(initial snapshot.EngineSnapshot, checkpointEvery uint64) *Recorder {
	return &Recorder{
		log:             Log{InitialSnapshot: initial, FinalTick: initial.TickCounter},
		checkpointEvery: checkpointEvery,
	}
}

// RecordInput appends an input entry. tick must be strictly greater than
// the previously recorded input's tick.
func (r *Recorder) RecordInput(tick uint64, input ecs.InputFrame) {
	if r.hasInput && tick <= r.lastInputTick {
		ecs.Violatef("replay recorder: input tick %d is not strictly greater than previous tick %d", tick, r.lastInputTick)
	}
	r.log.Inputs = append(r.log.Inputs, InputEntry{Tick: tick, Input: input})
	r.lastInputTick = tick
	r.hasInput = true
	r.advance(tick)
}

// RecordCheckpoint appends a checkpoint entry. tick must be strictly
// greater than the previously recorded checkpoint's tick.
func (r *Recorder) RecordCheckpoint(tick uint64, hash string) {
	if r.hasCheckpoint && tick <= r.lastCheckpoint {
		ecs.Violatef("replay recorder: checkpoint tick %d is not strictly greater than previous tick %d", tick, r.lastCheckpoint)
	}
	r.log.Checkpoints = append(r.log.Checkpoints, CheckpointEntry{Tick: tick, Hash: hash})
	r.lastCheckpoint = tick
	r.hasCheckpoint = true
	r.advance(tick)
}

// ShouldCheckpoint reports whether tick is due for an automatic checkpoint
// under the configured interval.
func (r *Recorder) ShouldCheckpoint(tick uint64) bool {
	return r.checkpointEvery > 0 && tick%r.checkpointEvery == 0
}

func (r *Recorder) advance(tick uint64) {
	if tick > r.log.FinalTick {
		r.log.FinalTick = tick
	}
}

// Finish returns the completed Log. The Recorder remains usable afterward;
// calling Finish does not reset it.
func (r *Recorder) Finish() Log {
	return r.log
}
