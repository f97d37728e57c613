package artifact

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/enn-tee/agentic-job-search/internal/fingerprint"
	"github.com/enn-tee/agentic-job-search/internal/model"
	"github.com/enn-tee/agentic-job-search/internal/observe"
)

// Outcome reports how a gate invocation was satisfied. Every stage
// outcome is surfaced to the operator: transparency about cache usage is
// part of the contract.
type Outcome string

const (
	OutcomeHit      Outcome = "hit"
	OutcomeComputed Outcome = "computed"
	OutcomeSkipped  Outcome = "skipped"
)

// Validatable is the contract every stage payload satisfies: schemas are
// checked at the gate boundary before anything is stored.
type Validatable interface {
	Validate() error
}

// Gate wraps one stage's generator with check-store, else compute, then
// store semantics. One gate instance per stage kind.
type Gate struct {
	store *Store
	stage model.StageKind
	obs   *observe.Observer
}

// NewGate creates a gate for the given stage backed by store.
func NewGate(store *Store, stage model.StageKind, obs *observe.Observer) *Gate {
	return &Gate{store: store, stage: stage, obs: obs}
}

// Stage returns the stage this gate serves.
func (g *Gate) Stage() model.StageKind {
	return g.stage
}

// Run executes one gated stage invocation:
//
//  1. Look up (stage, key). On a hit the decoded payload is returned and
//     compute is never invoked.
//  2. On a miss, invoke compute. A compute failure propagates and nothing
//     is written; failures are never cached.
//  3. On success, validate the payload, persist it with its source
//     fingerprints, and return it.
//
// A stored payload that no longer decodes or validates (e.g. after a bad
// hand edit) degrades to a miss rather than an error.
func Run[T any, PT interface {
	*T
	Validatable
}](ctx context.Context, g *Gate, key fingerprint.Fingerprint, refs map[string]fingerprint.Fingerprint, compute func(context.Context) (*T, error)) (*T, Outcome, error) {
	if art, ok := g.store.Get(g.stage, key); ok {
		cached := new(T)
		if err := json.Unmarshal(art.Payload, cached); err == nil {
			if err := PT(cached).Validate(); err == nil {
				g.obs.Log().Info().Str("stage", string(g.stage)).Str("key", key.Short()).Msg("cache hit")
				return cached, OutcomeHit, nil
			}
		}
		g.obs.Log().Warn().Str("stage", string(g.stage)).Str("key", key.Short()).Msg("cached payload failed validation, recomputing")
	}

	ctx, span := g.obs.StartSpan(ctx, "compute:"+string(g.stage))
	defer span.End()

	out, err := compute(ctx)
	if err != nil {
		return nil, "", err
	}
	if err := PT(out).Validate(); err != nil {
		return nil, "", fmt.Errorf("stage %s produced invalid payload: %w", g.stage, err)
	}

	payload, err := json.Marshal(out)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode %s payload: %w", g.stage, err)
	}
	if err := g.store.Put(g.stage, key, payload, refs); err != nil {
		return nil, "", fmt.Errorf("failed to persist %s artifact: %w", g.stage, err)
	}

	g.obs.Log().Info().Str("stage", string(g.stage)).Str("key", key.Short()).Msg("computed and cached")
	return out, OutcomeComputed, nil
}
