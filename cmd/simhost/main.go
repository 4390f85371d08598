// Command simhost is an example host application wiring the simulation
// runtime end to end: it registers the example gameplay components and
// systems, spawns a small starting scene, and drives the fixed-timestep
// tick loop either headlessly (the default, for scripted or CI runs) or in
// an ebiten window for visual inspection.
package main

import (
	"flag"
	"fmt"
	"image/color"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"go.uber.org/zap"

	"github.com/totodo713/simcore/internal/core/components"
	"github.com/totodo713/simcore/internal/core/ecs"
	"github.com/totodo713/simcore/internal/core/systems"
	"github.com/totodo713/simcore/internal/core/tick"
	"github.com/totodo713/simcore/internal/core/wasmhost"
	"github.com/totodo713/simcore/internal/core/world"
	"github.com/totodo713/simcore/internal/corelog"
)

const fixedDt = 1.0 / 60.0

func main() {
	ticks := flag.Int("ticks", 600, "number of fixed-timestep ticks to run headlessly")
	windowed := flag.Bool("windowed", false, "open an ebiten window instead of running headlessly")
	dev := flag.Bool("dev", false, "use a human-readable development logger instead of JSON production logging")
	wasmModule := flag.String("wasm-module", "", "path to a compiled WASM gameplay module to run as a host-driven system (disabled if empty)")
	flag.Parse()

	logger, err := newLogger(*dev)
	if err != nil {
		fmt.Fprintln(os.Stderr, "simhost: failed to build logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	loop, err := buildLoop(logger, *wasmModule)
	if err != nil {
		logger.Error("failed to build simulation loop", zap.Error(err))
		os.Exit(1)
	}

	if *windowed {
		runWindowed(loop, logger)
		return
	}
	runHeadless(loop, *ticks, logger)
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return corelog.NewDevelopment("simhost")
	}
	return corelog.New("simhost")
}

// buildLoop registers the example component set, builds a world and tick
// loop over it, registers the example systems in their dependency order,
// and seeds a small starting scene: two overlapping bodies at rest and one
// counter entity for the determinism scenario. If wasmModulePath is
// non-empty, a wasmhost.Host loaded from it is wired in as an additional
// system, running last so it sees the tick's other systems' commands
// already queued ahead of its own in the buffer.
func buildLoop(logger *zap.Logger, wasmModulePath string) (*tick.Loop, error) {
	registry := ecs.NewComponentRegistry()
	types := components.RegisterAll(registry)
	w := world.New(registry)
	loop := tick.NewLoop(w, fixedDt)

	movement := systems.NewMovement(types)
	movement.SetBoundary(0, 0, 1280, 720)
	collision := systems.NewCollision(types)
	counter := systems.NewCounter(types)

	loop.AddSystem("movement", ecs.SystemIDPhysics, movement.Run)
	loop.AddSystemAfter("collision", ecs.SystemIDPhysics, collision.Run, "movement")
	loop.AddSystem("counter", ecs.SystemIDEngineInternal, counter.Run)

	if wasmModulePath != "" {
		if err := wireWasmGuest(loop, w, wasmModulePath, logger); err != nil {
			return nil, err
		}
	}

	seedScene(w, types)
	return loop, nil
}

// wireWasmGuest loads the WASM module at path and registers a system that
// drives its exported tick() once per fixed tick, logging whatever
// gameplay events it emits. The guest's host functions push onto the same
// CommandBuffer every other system uses, so its mutations go through the
// identical apply/conflict/manifest pipeline.
func wireWasmGuest(loop *tick.Loop, w *world.World, path string, logger *zap.Logger) error {
	wasmBytes, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("simhost: read wasm module: %w", err)
	}
	host, err := wasmhost.Load(wasmBytes, wasmhost.DefaultConfig(), w, loop.Buffer())
	if err != nil {
		return fmt.Errorf("simhost: load wasm module: %w", err)
	}

	loop.AddSystemAfter("wasm-guest", ecs.SystemIDGameplayScript, func(ctx *tick.Context) error {
		if err := host.CallTick(ctx.Tick, ctx.SimTime); err != nil {
			logger.Warn("wasm guest tick trapped", zap.Uint64("tick", ctx.Tick), zap.Error(err))
			return nil
		}
		for _, e := range host.DrainEvents() {
			ctx.RecordEvent(e.Name, e.Payload)
			logger.Info("wasm guest event", zap.String("name", e.Name), zap.String("payload", e.Payload))
		}
		return nil
	}, "movement", "collision", "counter")
	return nil
}

func seedScene(w *world.World, types components.Types) {
	w.Spawn(world.NewBundle(
		world.Pair{Type: types.Transform, Value: components.Transform{Position: components.Vector2{X: 100, Y: 100}}},
		world.Pair{Type: types.Physics, Value: components.Physics{Radius: 16, Mass: 1}},
		world.Pair{Type: types.Health, Value: components.Health{Current: 100, Max: 100}},
	))
	w.Spawn(world.NewBundle(
		world.Pair{Type: types.Transform, Value: components.Transform{Position: components.Vector2{X: 120, Y: 100}}},
		world.Pair{Type: types.Physics, Value: components.Physics{Radius: 16, Mass: 1}},
		world.Pair{Type: types.Health, Value: components.Health{Current: 100, Max: 100}},
	))
	w.Spawn(world.NewBundle(
		world.Pair{Type: types.Counter, Value: components.Counter{}},
	))
}

func runHeadless(loop *tick.Loop, ticks int, logger *zap.Logger) {
	for i := 0; i < ticks; i++ {
		step, err := loop.Step()
		if err != nil {
			logger.Error("tick failed", zap.Int("tick_index", i), zap.Error(err))
			os.Exit(1)
		}
		logStepWarnings(logger, step)
	}
	hash, err := loop.StateHash()
	if err != nil {
		logger.Error("failed to compute state hash", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("run complete",
		zap.Int("ticks", ticks),
		zap.Float64("sim_time", loop.SimTime()),
		zap.String("state_hash", hash),
	)
}

// logStepWarnings emits one structured warning per failed command (with
// its command index, target entity, issuing system, and underlying
// error) and one per conflicting (entity, component) target.
func logStepWarnings(logger *zap.Logger, step tick.StepReport) {
	for _, cmd := range step.FailedCommands {
		var target uint64
		if cmd.Target != nil {
			target = uint64(*cmd.Target)
		}
		logger.Warn("command failed",
			zap.Uint32("command_index", cmd.CommandIndex),
			zap.Uint64("target", target),
			zap.Uint32("issued_by", uint32(cmd.IssuedBy)),
			zap.Error(cmd.FailureError),
		)
	}
	for _, c := range step.Conflicts {
		logger.Warn("command conflict",
			zap.Uint64("entity", uint64(c.Entity)),
			zap.String("component", c.Component),
			zap.Int("count", c.Count),
		)
	}
}

// game adapts Loop to ebiten's Game interface for the -windowed path: each
// ebiten frame runs exactly one fixed tick, so the on-screen simulation
// advances at the same fixed_dt as the headless runner.
type game struct {
	loop   *tick.Loop
	logger *zap.Logger
}

func (g *game) Update() error {
	step, err := g.loop.Step()
	if err != nil {
		return err
	}
	logStepWarnings(g.logger, step)
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{20, 20, 40, 255})
	hash, _ := g.loop.StateHash()
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("tick=%d sim_time=%.3f", g.loop.TickNumber(), g.loop.SimTime()), 8, 8)
	ebitenutil.DebugPrintAt(screen, "hash="+hash, 8, 24)
}

func (g *game) Layout(_, _ int) (int, int) {
	return 960, 540
}

func runWindowed(loop *tick.Loop, logger *zap.Logger) {
	ebiten.SetWindowSize(960, 540)
	ebiten.SetWindowTitle("simhost")
	if err := ebiten.RunGame(&game{loop: loop, logger: logger}); err != nil {
		fmt.Fprintln(os.Stderr, "simhost:", err)
		os.Exit(1)
	}
}
