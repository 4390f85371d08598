// Package corelog is the structured-logging entry point for host-layer
// code (cmd/simhost, wasmhost's embedding application, replay tooling).
// The ecs/world/manifest/snapshot/tick/replay packages never import this
// package or any other logger: they report failures through ECSError and
// ContractViolation and leave deciding how to log them to the host.
package corelog

import (
	"go.uber.org/zap"
)

// New builds a production zap logger (JSON encoding, info level) with the
// given component name attached to every entry.
func New(component string) (*zap.Logger, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return logger.Named(component), nil
}

// NewDevelopment builds a human-readable console logger for local runs of
// cmd/simhost, switched on via its -dev flag.
func NewDevelopment(component string) (*zap.Logger, error) {
	logger, err := zap.NewDevelopment()
	if err != nil {
		return nil, err
	}
	return logger.Named(component), nil
}

// Fields commonly attached across the host layer's log lines.
func Tick(tick uint64) zap.Field   { return zap.Uint64("tick", tick) }
func Entity(id uint64) zap.Field   { return zap.Uint64("entity", id) }
func SimTime(t float64) zap.Field  { return zap.Float64("sim_time", t) }
