// Package manifest records, per tick, every committed mutation the command
// buffer applied, with enough causal metadata (issuing system, reason,
// command index) to answer "why did this change" after the fact by walking
// backwards through a bounded window of tick history.
package manifest

import (
	"github.com/totodo713/simcore/internal/core/ecs"
)

// DefaultHistoryLength is how many past ticks' manifests are retained once
// Journal starts trimming.
const DefaultHistoryLength = 60

// ChangeKind enumerates the change-journal entry kinds.
type ChangeKind int

const (
	ChangeSetComponent ChangeKind = iota
	ChangeRemoveComponent
	ChangeSpawn
	ChangeDespawn
)

// ComponentChange is one journal entry: a single committed mutation and
// the causal metadata that produced it. It has no OldValue field: capturing
// pre-mutation values would require reading back before every apply, which
// the command pipeline deliberately avoids (see the Open Questions
// decision recorded for this in the design ledger).
type ComponentChange struct {
	Tick         uint64
	Entity       ecs.EntityID
	Kind         ChangeKind
	Component    string // empty for Spawn; __entity for Despawn
	IssuedBy     ecs.SystemID
	Reason       ecs.CausalReason
	CommandIndex uint32
	NewValue     any // nil for Remove/Despawn
}

// GameEvent is a higher-level event a system attaches to the current tick
// via Journal.RecordEvent, distinct from the low-level ComponentChange
// stream: it names something that happened ("player_died", "wave_cleared")
// rather than a single component mutation.
type GameEvent struct {
	Tick    uint64
	Name    string
	Payload string
}

// TickManifest is the finalised record of one tick's committed mutations.
type TickManifest struct {
	Tick              uint64
	SimTime           float64
	EntitySpawns      int
	EntityDespawns    int
	ComponentChanges  []ComponentChange
	Events            []GameEvent
	Aggregates        Aggregates
	SystemsExecuted   []string
	CommandsProcessed int
	CommandsSucceeded int
	ConflictCount     int
}

// entityRecord tracks one entity's lifecycle for the Journal's live index.
type entityRecord struct {
	Identity    ecs.Identity
	SpawnedTick uint64
	Despawned   bool
	DespawnTick uint64
}

// Journal accumulates the current tick's manifest and retains a bounded
// FIFO window of finalised manifests for causal-chain queries.
type Journal struct {
	maxHistory int
	history    []TickManifest
	entities   map[ecs.EntityID]*entityRecord

	current     TickManifest
	inTick      bool
	currentTick uint64
}

// NewJournal returns a Journal retaining at most maxHistory finalised
// manifests. A non-positive maxHistory falls back to DefaultHistoryLength.
func NewJournal(maxHistory int) *Journal {
	if maxHistory <= 0 {
		maxHistory = DefaultHistoryLength
	}
	return &Journal{
		maxHistory: maxHistory,
		entities:   make(map[ecs.EntityID]*entityRecord),
	}
}

// BeginTick opens a new in-progress manifest for tick, clearing all
// per-tick scratch state (journal, events, spawn/despawn counters). It
// panics with a ContractViolation if a tick is already open.
func (j *Journal) BeginTick(tick uint64) {
	if j.inTick {
		ecs.Violatef("manifest: begin_tick called while tick %d is still open", j.currentTick)
	}
	j.current = TickManifest{Tick: tick}
	j.currentTick = tick
	j.inTick = true
}

// RecordSpawn records a newly created entity, along with its identity, for
// both the change journal and the live entity index.
func (j *Journal) RecordSpawn(entity ecs.EntityID, identity ecs.Identity, issuedBy ecs.SystemID, reason ecs.CausalReason, commandIndex uint32) {
	j.requireOpen("record_spawn")
	j.current.ComponentChanges = append(j.current.ComponentChanges, ComponentChange{
		Tick: j.currentTick, Entity: entity, Kind: ChangeSpawn,
		IssuedBy: issuedBy, Reason: reason, CommandIndex: commandIndex,
	})
	j.current.EntitySpawns++
	j.entities[entity] = &entityRecord{Identity: identity, SpawnedTick: j.currentTick}
}

// RecordDespawn records an entity's retirement. The synthetic change is
// recorded under the reserved __entity component name, since a despawn has
// no single component it pertains to.
func (j *Journal) RecordDespawn(entity ecs.EntityID, issuedBy ecs.SystemID, reason ecs.CausalReason, commandIndex uint32) {
	j.requireOpen("record_despawn")
	j.current.ComponentChanges = append(j.current.ComponentChanges, ComponentChange{
		Tick: j.currentTick, Entity: entity, Kind: ChangeDespawn, Component: ecs.ReservedComponentEntity,
		IssuedBy: issuedBy, Reason: reason, CommandIndex: commandIndex,
	})
	j.current.EntityDespawns++
	if rec, ok := j.entities[entity]; ok {
		rec.Despawned = true
		rec.DespawnTick = j.currentTick
	}
}

// RecordComponentChange records a committed set/remove mutation.
func (j *Journal) RecordComponentChange(entity ecs.EntityID, kind ChangeKind, component string, newValue any, issuedBy ecs.SystemID, reason ecs.CausalReason, commandIndex uint32) {
	j.requireOpen("record_component_change")
	j.current.ComponentChanges = append(j.current.ComponentChanges, ComponentChange{
		Tick: j.currentTick, Entity: entity, Kind: kind, Component: component,
		NewValue: newValue, IssuedBy: issuedBy, Reason: reason, CommandIndex: commandIndex,
	})
}

// RecordEvent attaches a higher-level GameEvent to the current tick.
func (j *Journal) RecordEvent(event GameEvent) {
	j.requireOpen("record_event")
	event.Tick = j.currentTick
	j.current.Events = append(j.current.Events, event)
}

// RecordConflicts and RecordFailures fold in counts produced by the
// command buffer's Apply call.
func (j *Journal) RecordConflicts(n int) {
	j.requireOpen("record_conflicts")
	j.current.ConflictCount += n
}

func (j *Journal) RecordFailures(n int) {
	j.requireOpen("record_failures")
	j.current.CommandsProcessed += n
}

// EndTick finalises the in-progress manifest: it folds in sim_time, the
// names of the systems that ran this tick, and the command-apply counts,
// computes aggregates over the live entity index, appends the result to
// history (trimming the oldest entry if the window is full), and returns
// it.
func (j *Journal) EndTick(simTime float64, systemsExecuted []string, commandsSucceeded int) TickManifest {
	j.requireOpen("end_tick")
	j.current.SimTime = simTime
	j.current.SystemsExecuted = systemsExecuted
	j.current.CommandsSucceeded = commandsSucceeded
	j.current.CommandsProcessed += commandsSucceeded
	j.current.Aggregates = j.ComputeAggregates()

	finished := j.current
	j.history = append(j.history, finished)
	if len(j.history) > j.maxHistory {
		j.history = j.history[len(j.history)-j.maxHistory:]
	}
	j.inTick = false
	return finished
}

func (j *Journal) requireOpen(op string) {
	if !j.inTick {
		ecs.Violatef("manifest: %s called with no open tick", op)
	}
}

// History returns the retained manifests, oldest first.
func (j *Journal) History() []TickManifest {
	return j.history
}
