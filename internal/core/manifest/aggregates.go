package manifest

import "github.com/totodo713/simcore/internal/core/ecs"

// Aggregates summarises live entity composition: counts by identity tier,
// a breakdown by entity type, and the total alive count. For pooled-tier
// entities (which carry a pool type and variant rather than an entity
// type) the pool type stands in as the "entity type" key, since it is the
// closest pooled-tier analogue.
type Aggregates struct {
	TotalAlive    int
	SemanticCount int
	PooledCount   int
	ByEntityType  map[string]int
}

// ComputeAggregates walks the live entity index to build an Aggregates
// snapshot as of the current tick.
func (j *Journal) ComputeAggregates() Aggregates {
	agg := Aggregates{ByEntityType: make(map[string]int)}
	for _, rec := range j.entities {
		if rec.Despawned {
			continue
		}
		agg.TotalAlive++
		switch rec.Identity.Tier {
		case ecs.IdentitySemantic:
			agg.SemanticCount++
			agg.ByEntityType[rec.Identity.EntityType]++
		case ecs.IdentityPooled:
			agg.PooledCount++
			agg.ByEntityType[rec.Identity.PoolType]++
		}
	}
	return agg
}

// CausalLink is one step of a causal chain: the change itself plus the
// tick it happened on.
type CausalLink struct {
	Tick   uint64
	Change ComponentChange
}

// BuildCausalChain walks the retained history backwards from the most
// recent tick, collecting every change to entity's component, plus the
// entity's spawn and despawn entries, in most-recent-first order; an empty
// component matches every change to entity. It is bounded by the retained
// history window (it cannot see further back than maxHistory ticks).
func (j *Journal) BuildCausalChain(entity ecs.EntityID, component string) []CausalLink {
	var chain []CausalLink
	for i := len(j.history) - 1; i >= 0; i-- {
		m := j.history[i]
		for k := len(m.ComponentChanges) - 1; k >= 0; k-- {
			c := m.ComponentChanges[k]
			if c.Entity != entity {
				continue
			}
			if component != "" && c.Component != component && c.Kind != ChangeSpawn && c.Kind != ChangeDespawn {
				continue
			}
			chain = append(chain, CausalLink{Tick: m.Tick, Change: c})
		}
	}
	return chain
}
