// Package wasmhost runs gameplay logic compiled to WebAssembly inside a
// fuel-metered sandbox. Every way a guest module can touch
// world state is a host function that pushes onto the same CommandBuffer
// ordinary Go systems use — the sandbox never gets a mutable reference to
// World itself.
package wasmhost

import (
	"fmt"

	"github.com/wasmerio/wasmer-go/wasmer"

	"github.com/totodo713/simcore/internal/core/world"
)

// Config bounds one guest module's resource use.
type Config struct {
	// FuelPerTick is the cooperative fuel budget refilled at the start of
	// every call_tick. wasmer-go v1.0.4's public API does not expose
	// per-instruction metering, so fuel here is spent per host-function
	// call and per explicit consume_fuel(n) call from the guest, not per
	// WASM instruction.
	FuelPerTick int64
	// MemoryLimitBytes is carried in Config but Load does not apply it:
	// the guest's linear memory is sized by the module's own memory
	// declaration and is not capped by the host.
	MemoryLimitBytes uint32
}

// DefaultConfig returns a generous default budget: 1,000,000 fuel units
// and a MemoryLimitBytes of 16MiB.
func DefaultConfig() Config {
	return Config{FuelPerTick: 1_000_000, MemoryLimitBytes: 16 * 1024 * 1024}
}

const bytesPerPage = 64 * 1024

// Event is a guest-emitted diagnostic or gameplay event, drained once per
// tick by the host application.
type Event struct {
	Name    string
	Payload string
}

// ErrFuelExhausted is returned by a host function call (and so surfaces as
// a guest-visible trap) once a tick's fuel budget is spent.
var ErrFuelExhausted = fmt.Errorf("wasmhost: fuel exhausted")

// Host wraps one loaded guest module: its compiled wasmer state, the
// world/buffer it is allowed to touch, and the per-tick accounting fuel
// and events live in.
type Host struct {
	config Config

	engine   *wasmer.Engine
	store    *wasmer.Store
	module   *wasmer.Module
	instance *wasmer.Instance
	memory   *wasmer.Memory
	tickFn   wasmer.NativeFunction

	world  *world.World
	buffer *world.CommandBuffer

	tick    uint64
	simTime float64
	fuel    int64
	events  []Event
	rngSeq  uint64
}

// Load compiles wasmBytes, wires the host function table into an "env"
// import namespace, and instantiates it against w/buffer. It returns an
// error (never a panic) if the module is malformed or lacks either an
// exported function named "tick" or an exported linear memory named
// "memory". The signature of the tick export is not checked.
func Load(wasmBytes []byte, config Config, w *world.World, buffer *world.CommandBuffer) (*Host, error) {
	engine := wasmer.NewEngine()
	store := wasmer.NewStore(engine)

	module, err := wasmer.NewModule(store, wasmBytes)
	if err != nil {
		return nil, fmt.Errorf("wasmhost: compile module: %w", err)
	}

	h := &Host{
		config: config,
		engine: engine,
		store:  store,
		module: module,
		world:  w,
		buffer: buffer,
	}

	importObject := wasmer.NewImportObject()
	importObject.Register("env", h.hostFunctions(store))

	instance, err := wasmer.NewInstance(module, importObject)
	if err != nil {
		return nil, fmt.Errorf("wasmhost: instantiate: %w", err)
	}
	h.instance = instance

	tickFn, err := instance.Exports.GetFunction("tick")
	if err != nil {
		return nil, fmt.Errorf("wasmhost: module does not export tick(): %w", err)
	}
	h.tickFn = tickFn

	memory, err := instance.Exports.GetMemory("memory")
	if err != nil {
		return nil, fmt.Errorf("wasmhost: module does not export linear memory: %w", err)
	}
	h.memory = memory

	return h, nil
}

// CallTick refills the fuel budget, updates the tick/sim_time snapshot the
// host functions will answer get_entity_count/sim_time/tick_number calls
// with, and invokes the guest's exported tick(). Any commands the guest
// pushed land in the same buffer as every other system's; CallTick does
// not apply them itself.
func (h *Host) CallTick(tick uint64, simTime float64) error {
	h.tick = tick
	h.simTime = simTime
	h.fuel = h.config.FuelPerTick

	_, err := h.tickFn()
	if err != nil {
		return fmt.Errorf("wasmhost: guest tick() trapped: %w", err)
	}
	return nil
}

// DrainEvents returns every event emitted since the last DrainEvents call
// and clears the buffer.
func (h *Host) DrainEvents() []Event {
	out := h.events
	h.events = nil
	return out
}

// consumeFuel decrements the cooperative fuel counter by n and reports
// whether the call should proceed. Once exhausted it stays exhausted for
// the rest of the tick: every subsequent host call also fails fast rather
// than silently under-charging.
func (h *Host) consumeFuel(n int64) bool {
	if h.fuel <= 0 {
		return false
	}
	h.fuel -= n
	return true
}

// readString returns the length bytes of guest memory starting at ptr as
// a string (no UTF-8 validation), bounds-checked against the current memory size so a
// malformed pointer from the guest never panics the host.
func (h *Host) readString(ptr, length int32) (string, bool) {
	if ptr < 0 || length < 0 {
		return "", false
	}
	data := h.memory.Data()
	end := int(ptr) + int(length)
	if end > len(data) || int(ptr) > end {
		return "", false
	}
	return string(data[ptr:end]), true
}
