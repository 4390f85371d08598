package world

import (
	"github.com/totodo713/simcore/internal/core/ecs"
)

// CommandBuffer accumulates deferred mutations issued by systems during a
// tick. Commands are never applied to the world until Apply is called
// (once per tick, after every system has run), and are always applied in
// the strict FIFO order they were pushed, per command_index.
type CommandBuffer struct {
	commands []*ecs.Command
	next     uint32
}

// NewCommandBuffer returns an empty buffer.
func NewCommandBuffer() *CommandBuffer {
	return &CommandBuffer{}
}

// Push appends cmd, assigning it the next monotonic CommandIndex. Returns
// the assigned index.
func (b *CommandBuffer) Push(cmd ecs.Command) uint32 {
	cmd.CommandIndex = b.next
	b.next++
	b.commands = append(b.commands, &cmd)
	return cmd.CommandIndex
}

// Len returns how many commands are queued.
func (b *CommandBuffer) Len() int { return len(b.commands) }

// Commands returns the queued commands in push order. The returned slice
// is only valid until the next Apply, which clears the buffer.
func (b *CommandBuffer) Commands() []*ecs.Command {
	return b.commands
}

// targetKey identifies one (entity, component) pair for conflict detection.
type targetKey struct {
	entity ecs.EntityID
	name   string
}

// Conflict records that two or more commands in the same Apply call
// targeted the same (entity, component) pair; it is a warning, not an
// error: the last command in FIFO order wins and every command still
// applies.
type Conflict struct {
	Entity    ecs.EntityID
	Component string
	Count     int
}

// Apply dispatches every queued command against w in FIFO order, then
// clears the buffer. Conflicting SetComponent/RemoveComponent targets
// (same entity+component hit more than once in this call) are reported in
// the returned conflicts slice but are never dropped: last write wins,
// exactly as issued. A command that fails (stale entity, unknown
// component, malformed payload) is recorded as failed on the Command value
// itself and does not abort the tick or the remaining commands.
func (b *CommandBuffer) Apply(w *World) (ecs.ApplyReport, []Conflict) {
	var report ecs.ApplyReport

	seen := make(map[targetKey]int, len(b.commands))
	for _, cmd := range b.commands {
		if cmd.Target == nil {
			continue
		}
		switch cmd.Kind {
		case ecs.CommandSetComponent, ecs.CommandRemoveComponent:
			seen[targetKey{entity: *cmd.Target, name: cmd.ComponentName}]++
		}
	}
	var conflicts []Conflict
	for k, n := range seen {
		if n > 1 {
			conflicts = append(conflicts, Conflict{Entity: k.entity, Component: k.name, Count: n})
		}
	}
	report.ConflictCount = len(conflicts)

	for _, cmd := range b.commands {
		err := applyOne(w, cmd)
		if err != nil {
			cmd.AppliedSuccessfully = false
			cmd.FailureError = err
			report.FailedCount++
			continue
		}
		cmd.AppliedSuccessfully = true
		report.SuccessCount++
	}

	b.commands = nil
	return report, conflicts
}

func applyOne(w *World, cmd *ecs.Command) error {
	switch cmd.Kind {
	case ecs.CommandSetComponent:
		return w.SetComponentByName(*cmd.Target, cmd.ComponentName, cmd.ComponentValue)

	case ecs.CommandRemoveComponent:
		return w.RemoveComponentByName(*cmd.Target, cmd.ComponentName)

	case ecs.CommandDespawn:
		return w.Despawn(*cmd.Target)

	case ecs.CommandSpawnSemantic, ecs.CommandSpawnPooled:
		pairs := make([]Pair, 0, len(cmd.Components)+1)
		identityType, ok := w.Registry.Lookup(ecs.ReservedComponentIdentity)
		if ok {
			pairs = append(pairs, Pair{Type: identityType, Value: cmd.Identity})
		}
		for _, nv := range cmd.Components {
			t, ok := w.Registry.Lookup(nv.Name)
			if !ok {
				return ecs.NewUnknownComponentError(nv.Name, w.Registry.Names())
			}
			value, err := w.Registry.Deserialise(t, nv.Value)
			if err != nil {
				return ecs.NewComponentDeserialisationError(nv.Name, err.Error())
			}
			pairs = append(pairs, Pair{Type: t, Value: value})
		}
		spawned := w.Spawn(NewBundle(pairs...))
		cmd.SpawnedEntity = &spawned
		return nil

	default:
		ecs.Violatef("command buffer: unknown command kind %d", cmd.Kind)
		return nil
	}
}
