package ports

import (
	"context"

	"tempest/internal/domain/sim"
)

// NarrativeOracle turns a player action into a narrated state delta.
// Errors wrapping ErrOracleQuota select the quota fallback text.
type NarrativeOracle interface {
	Narrate(ctx context.Context, req sim.NarrativeRequest) (sim.NarrativeDelta, error)
}
