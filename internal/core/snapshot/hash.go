// Package snapshot captures and restores a whole engine state — entities,
// components, and the allocator's internal bookkeeping — as a single
// serialisable value, and computes the BLAKE3-256 state hash used to
// detect replay divergence.
package snapshot

import (
	"encoding/hex"
	"encoding/json"

	"lukechampine.com/blake3"

	"github.com/totodo713/simcore/internal/core/ecs"
)

// hashable is the JSON shape hashed to produce Hash: identical to
// EngineSnapshot but without the hash field itself, so the hash never
// depends on its own prior value. The hash covers current_input as well as
// world state: two ticks that differ only in pending input must not hash
// the same. encoding/json sorts map[string]any keys lexicographically on
// marshal, which is what makes this a canonical serialisation without a
// bespoke canonicalizer.
type hashable struct {
	TickCounter  uint64         `json:"tick_counter"`
	FixedDt      float64        `json:"fixed_dt"`
	CurrentInput ecs.InputFrame `json:"current_input"`
	World        WorldSnapshot  `json:"world"`
}

// computeHash returns the lowercase hex-encoded BLAKE3-256 digest of the
// canonical JSON form of (tickCounter, fixedDt, currentInput, world).
func computeHash(tickCounter uint64, fixedDt float64, currentInput ecs.InputFrame, world WorldSnapshot) (string, error) {
	payload, err := json.Marshal(hashable{
		TickCounter:  tickCounter,
		FixedDt:      fixedDt,
		CurrentInput: currentInput,
		World:        world,
	})
	if err != nil {
		return "", err
	}
	sum := blake3.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
