package ecs

import (
	"fmt"
)

// ==============================================
// Error Taxonomy
// ==============================================

// ECSError represents an expected failure from the ECS core. It carries
// enough context (entity, component, code) that a host application can log
// it structurally without re-deriving what went wrong.
type ECSError struct {
	Code      string   // programmatic error code, see constants below
	Message   string   // human-readable message
	Entity    EntityID // zero value (InvalidEntityID) when not applicable
	Component string   // component name involved, if any
	Details   string   // additional context (e.g. known component set)
}

func (e *ECSError) Error() string {
	switch {
	case e.Entity != InvalidEntityID && e.Component != "":
		return fmt.Sprintf("[%s] %s (entity=%d component=%s)", e.Code, e.Message, e.Entity, e.Component)
	case e.Entity != InvalidEntityID:
		return fmt.Sprintf("[%s] %s (entity=%d)", e.Code, e.Message, e.Entity)
	case e.Component != "":
		return fmt.Sprintf("[%s] %s (component=%s)", e.Code, e.Message, e.Component)
	default:
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
}

// Error codes. Each corresponds to an "expected failure" kind from spec §7.
const (
	ErrCodeStaleEntity                  = "STALE_ENTITY"
	ErrCodeUnknownComponent              = "UNKNOWN_COMPONENT"
	ErrCodeComponentDeserialisationError = "COMPONENT_DESERIALISATION_ERROR"
	ErrCodeReplayLogInvalid              = "REPLAY_LOG_INVALID"
)

// NewStaleEntityError reports a handle that no longer refers to a live entity.
func NewStaleEntityError(id EntityID) *ECSError {
	return &ECSError{
		Code:    ErrCodeStaleEntity,
		Message: "entity handle is stale",
		Entity:  id,
	}
}

// NewUnknownComponentError reports a name-based lookup against an
// unregistered component name. known lists the registered names for
// diagnostics.
func NewUnknownComponentError(name string, known []string) *ECSError {
	return &ECSError{
		Code:      ErrCodeUnknownComponent,
		Message:   "component name is not registered",
		Component: name,
		Details:   fmt.Sprintf("known=%v", known),
	}
}

// NewComponentDeserialisationError reports a JSON-value payload that did
// not match the registered component's schema, or an allocator/snapshot
// integrity failure (componentName is a synthetic name, e.g. "__allocator",
// in the latter case).
func NewComponentDeserialisationError(componentName, details string) *ECSError {
	return &ECSError{
		Code:      ErrCodeComponentDeserialisationError,
		Message:   "component payload does not match registered schema",
		Component: componentName,
		Details:   details,
	}
}

// NewReplayLogInvalidError reports a structurally invalid replay log
// (duplicate entries at a tick, tick-count overflow) or a restore hash
// mismatch.
func NewReplayLogInvalidError(reason string) *ECSError {
	return &ECSError{
		Code:    ErrCodeReplayLogInvalid,
		Message: "replay log is invalid",
		Details: reason,
	}
}

// ==============================================
// Contract violations
// ==============================================

// ContractViolation is a panic value raised when a caller breaks an
// invariant that is the caller's
// responsibility to uphold (duplicate bundle component, duplicate system
// name, non-positive fixed_dt, non-monotonic recorder tick). Column access
// is not bounds-checked: an out-of-range row panics with Go's own index
// error, not a ContractViolation. It is never used for data the runtime must treat as
// untrusted input (name-based world ops, WASM host calls).
type ContractViolation struct {
	Reason string
}

func (c ContractViolation) Error() string {
	return fmt.Sprintf("contract violation: %s", c.Reason)
}

// Violatef panics with a ContractViolation built from a format string.
func Violatef(format string, args ...any) {
	panic(ContractViolation{Reason: fmt.Sprintf(format, args...)})
}
