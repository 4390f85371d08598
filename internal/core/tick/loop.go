// Package tick drives the fixed-timestep simulation loop: systems run in a
// declared, dependency-validated order, their pushed commands are applied
// exactly once per tick, and the tick's manifest is closed out before the
// counter advances.
package tick

import (
	"math"

	"github.com/totodo713/simcore/internal/core/ecs"
	"github.com/totodo713/simcore/internal/core/manifest"
	"github.com/totodo713/simcore/internal/core/snapshot"
	"github.com/totodo713/simcore/internal/core/world"
)

// Context is handed to every system on every invocation. Systems read
// world state directly (queries are read-only by construction) and push
// every intended mutation onto Buffer rather than mutating World
// components in place. Higher-level events (not single component changes)
// are attached via RecordEvent rather than the command buffer.
type Context struct {
	World        *world.World
	Buffer       *world.CommandBuffer
	Tick         uint64
	SimTime      float64
	FixedDt      float64
	CurrentInput ecs.InputFrame

	journal *manifest.Journal
}

// RecordEvent attaches a GameEvent to the tick currently in progress.
func (c *Context) RecordEvent(name, payload string) {
	c.journal.RecordEvent(manifest.GameEvent{Name: name, Payload: payload})
}

// SystemFunc is one system's per-tick body.
type SystemFunc func(ctx *Context) error

type systemEntry struct {
	name string
	id   ecs.SystemID
	fn   SystemFunc
	deps []string
}

// Loop is the fixed-timestep tick driver. Systems must be added before the
// first Step call; the execution order is fixed once computed and is not
// recomputed unless a new system is added.
type Loop struct {
	World   *world.World
	Journal *manifest.Journal
	FixedDt float64

	systems      []*systemEntry
	byName       map[string]*systemEntry
	order        []*systemEntry
	buffer       *world.CommandBuffer
	tick         uint64
	currentInput ecs.InputFrame
}

// NewLoop builds a Loop over w with a fixed timestep of fixedDt seconds.
// fixedDt must be positive and finite; violating that is a caller bug, not
// recoverable runtime data, so it is a ContractViolation.
func NewLoop(w *world.World, fixedDt float64) *Loop {
	if !(fixedDt > 0) || math.IsInf(fixedDt, 1) {
		ecs.Violatef("tick loop: fixed_dt must be positive and finite, got %v", fixedDt)
	}
	return &Loop{
		World:   w,
		Journal: manifest.NewJournal(manifest.DefaultHistoryLength),
		FixedDt: fixedDt,
		byName:  make(map[string]*systemEntry),
		buffer:  world.NewCommandBuffer(),
	}
}

// AddSystem registers a system with no ordering dependency. It panics with
// a ContractViolation if name is already registered.
func (l *Loop) AddSystem(name string, id ecs.SystemID, fn SystemFunc) {
	l.AddSystemAfter(name, id, fn)
}

// AddSystemAfter registers a system that must run after every name listed
// in after. It panics with a ContractViolation if name is a duplicate, if
// any dependency name is unknown, or if adding it would introduce a cycle.
func (l *Loop) AddSystemAfter(name string, id ecs.SystemID, fn SystemFunc, after ...string) {
	if _, exists := l.byName[name]; exists {
		ecs.Violatef("tick loop: system %q already registered", name)
	}
	for _, dep := range after {
		if _, ok := l.byName[dep]; !ok {
			ecs.Violatef("tick loop: system %q depends on unknown system %q", name, dep)
		}
	}

	entry := &systemEntry{name: name, id: id, fn: fn, deps: append([]string(nil), after...)}
	l.systems = append(l.systems, entry)
	l.byName[name] = entry

	l.order = topoSort(l.systems, l.byName)
}

// topoSort computes a dependency-respecting order via Kahn's algorithm,
// breaking ties by registration order so the result is deterministic. It
// panics with a ContractViolation if the dependency graph has a cycle.
func topoSort(systems []*systemEntry, byName map[string]*systemEntry) []*systemEntry {
	indegree := make(map[string]int, len(systems))
	dependents := make(map[string][]string, len(systems))
	for _, s := range systems {
		indegree[s.name] = len(s.deps)
		for _, dep := range s.deps {
			dependents[dep] = append(dependents[dep], s.name)
		}
	}

	var ready []string
	for _, s := range systems {
		if indegree[s.name] == 0 {
			ready = append(ready, s.name)
		}
	}

	var order []*systemEntry
	for len(ready) > 0 {
		name := ready[0]
		ready = ready[1:]
		order = append(order, byName[name])
		for _, dependent := range dependents[name] {
			indegree[dependent]--
			if indegree[dependent] == 0 {
				ready = append(ready, dependent)
			}
		}
	}

	if len(order) != len(systems) {
		ecs.Violatef("tick loop: system dependency graph has a cycle")
	}
	return order
}

// SimTime returns tick_counter * fixed_dt, computed fresh from the current
// tick counter rather than accumulated step by step, so it never
// accumulates floating-point drift across a long run.
func (l *Loop) SimTime() float64 {
	return float64(l.tick) * l.FixedDt
}

// TickNumber returns the current tick counter (the tick about to run, or
// having just finished, depending on call site).
func (l *Loop) TickNumber() uint64 {
	return l.tick
}

// SetInput installs the input frame that the next Step call (and the state
// hash computed before it) will see. It persists across ticks until
// replaced, matching a host that only calls SetInput when input actually
// changes.
func (l *Loop) SetInput(input ecs.InputFrame) {
	l.currentInput = input
}

// CurrentInput returns the input frame that would be fed to the next Step.
func (l *Loop) CurrentInput() ecs.InputFrame {
	return l.currentInput
}

// StateHash captures the current world state fresh and returns its
// BLAKE3-256 state hash, the same value a snapshot taken right now would
// carry. It includes the pending CurrentInput, since the hash must change
// if the next tick would observe different input.
func (l *Loop) StateHash() (string, error) {
	snap, err := snapshot.Capture(l.World, l.tick, l.FixedDt, l.currentInput)
	if err != nil {
		return "", err
	}
	return snap.Hash, nil
}

// Buffer returns the loop's single persistent command buffer, the same
// instance every system's Context.Buffer points at on every tick. Host
// integrations that need a stable buffer reference outside a system body
// (wasmhost.Load, for instance, which wires a guest module's host
// functions to push onto it directly) use this rather than capturing
// Context.Buffer from inside a system closure.
func (l *Loop) Buffer() *world.CommandBuffer {
	return l.buffer
}

// StepReport summarises one Step call.
type StepReport struct {
	Manifest manifest.TickManifest
	Apply    ecs.ApplyReport
	// Conflicts and FailedCommands carry the per-command detail behind
	// Apply's counts, for a caller that wants to log a structured warning
	// per failure/conflict rather than just the aggregate counts.
	Conflicts      []world.Conflict
	FailedCommands []*ecs.Command
}

// Step runs every system once, in dependency order, applies the commands
// they pushed, closes out the tick's manifest, and advances the counter.
func (l *Loop) Step() (StepReport, error) {
	l.Journal.BeginTick(l.tick)
	ctx := &Context{
		World: l.World, Buffer: l.buffer, Tick: l.tick, SimTime: l.SimTime(),
		FixedDt: l.FixedDt, CurrentInput: l.currentInput, journal: l.Journal,
	}

	systemNames := make([]string, 0, len(l.order))
	for _, s := range l.order {
		if err := s.fn(ctx); err != nil {
			return StepReport{}, err
		}
		systemNames = append(systemNames, s.name)
	}

	// Commands() must be captured before Apply, which clears the buffer
	// once it has dispatched every command.
	commands := l.buffer.Commands()
	report, conflicts := l.buffer.Apply(l.World)
	l.Journal.RecordConflicts(len(conflicts))
	l.Journal.RecordFailures(report.FailedCount)
	recordAppliedCommands(l.Journal, commands)

	var failed []*ecs.Command
	for _, cmd := range commands {
		if !cmd.AppliedSuccessfully {
			failed = append(failed, cmd)
		}
	}

	m := l.Journal.EndTick(ctx.SimTime, systemNames, report.SuccessCount)
	l.tick++

	return StepReport{Manifest: m, Apply: report, Conflicts: conflicts, FailedCommands: failed}, nil
}

// recordAppliedCommands walks the just-applied command list (Apply leaves
// AppliedSuccessfully/SpawnedEntity set on each) and writes one journal
// entry per successfully applied command.
func recordAppliedCommands(j *manifest.Journal, commands []*ecs.Command) {
	for _, cmd := range commands {
		if !cmd.AppliedSuccessfully {
			continue
		}
		switch cmd.Kind {
		case ecs.CommandSetComponent:
			j.RecordComponentChange(*cmd.Target, manifest.ChangeSetComponent, cmd.ComponentName, cmd.ComponentValue, cmd.IssuedBy, cmd.Reason, cmd.CommandIndex)
		case ecs.CommandRemoveComponent:
			j.RecordComponentChange(*cmd.Target, manifest.ChangeRemoveComponent, cmd.ComponentName, nil, cmd.IssuedBy, cmd.Reason, cmd.CommandIndex)
		case ecs.CommandDespawn:
			j.RecordDespawn(*cmd.Target, cmd.IssuedBy, cmd.Reason, cmd.CommandIndex)
		case ecs.CommandSpawnSemantic, ecs.CommandSpawnPooled:
			if cmd.SpawnedEntity != nil {
				j.RecordSpawn(*cmd.SpawnedEntity, cmd.Identity, cmd.IssuedBy, cmd.Reason, cmd.CommandIndex)
			}
		}
	}
}
