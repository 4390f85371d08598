package ecs

// IdentityTier distinguishes individually meaningful entities from
// class-level ones; it governs how the manifest pipeline aggregates and
// names entities.
type IdentityTier int

const (
	// IdentitySemantic entities are individually meaningful (the player,
	// a named NPC).
	IdentitySemantic IdentityTier = iota
	// IdentityPooled entities are class-level (bricks, bullets).
	IdentityPooled
)

// Identity is stored as a component on tiered entities under the reserved
// name __identity. It is a tagged variant: Semantic fields are populated
// for Tier == IdentitySemantic, Pooled fields for Tier == IdentityPooled.
type Identity struct {
	Tier IdentityTier `json:"tier"`

	// Semantic fields.
	EntityType    string   `json:"entity_type,omitempty"`
	Role          string   `json:"role,omitempty"`
	SpawnedBy     SystemID `json:"spawned_by,omitempty"`
	RequirementID string   `json:"requirement_id,omitempty"`

	// Pooled fields.
	PoolType string `json:"pool_type,omitempty"`
	Variant  string `json:"variant,omitempty"`
}

// NewSemanticIdentity builds a Semantic identity value.
func NewSemanticIdentity(entityType, role string, spawnedBy SystemID, requirementID string) Identity {
	return Identity{
		Tier:          IdentitySemantic,
		EntityType:    entityType,
		Role:          role,
		SpawnedBy:     spawnedBy,
		RequirementID: requirementID,
	}
}

// NewPooledIdentity builds a Pooled identity value.
func NewPooledIdentity(poolType, variant string) Identity {
	return Identity{
		Tier:     IdentityPooled,
		PoolType: poolType,
		Variant:  variant,
	}
}

// ==============================================
// Causal reason
// ==============================================

// ReasonKind enumerates the CausalReason sum type's cases.
type ReasonKind int

const (
	ReasonPlayerInput ReasonKind = iota
	ReasonCollisionResponse
	ReasonGameRule
	ReasonStateTransition
	ReasonTimer
	// ReasonSystemInternal is an anti-pattern marker: higher-value reasons
	// (the ones above) are always preferred when a system can name one.
	ReasonSystemInternal
)

// CausalReason is the small tagged value attached to every command
// explaining why the mutation is being issued.
type CausalReason struct {
	Kind ReasonKind `json:"kind"`
	Text string     `json:"text,omitempty"` // PlayerInput / GameRule / Timer / SystemInternal payload

	// CollisionResponse fields.
	EntityA EntityID `json:"entity_a,omitempty"`
	EntityB EntityID `json:"entity_b,omitempty"`

	// StateTransition fields.
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

func PlayerInput(text string) CausalReason { return CausalReason{Kind: ReasonPlayerInput, Text: text} }

func CollisionResponse(a, b EntityID) CausalReason {
	return CausalReason{Kind: ReasonCollisionResponse, EntityA: a, EntityB: b}
}

func GameRule(text string) CausalReason { return CausalReason{Kind: ReasonGameRule, Text: text} }

func StateTransition(from, to string) CausalReason {
	return CausalReason{Kind: ReasonStateTransition, From: from, To: to}
}

func Timer(text string) CausalReason { return CausalReason{Kind: ReasonTimer, Text: text} }

func SystemInternal(text string) CausalReason {
	return CausalReason{Kind: ReasonSystemInternal, Text: text}
}

// String renders a CausalReason for logs and causal-chain reports.
func (r CausalReason) String() string {
	switch r.Kind {
	case ReasonPlayerInput:
		return "PlayerInput(" + r.Text + ")"
	case ReasonCollisionResponse:
		return "CollisionResponse"
	case ReasonGameRule:
		return "GameRule(" + r.Text + ")"
	case ReasonStateTransition:
		return "StateTransition(" + r.From + "->" + r.To + ")"
	case ReasonTimer:
		return "Timer(" + r.Text + ")"
	case ReasonSystemInternal:
		return "SystemInternal(" + r.Text + ")"
	default:
		return "Unknown"
	}
}
