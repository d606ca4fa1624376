package scorer

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/CodenameMaggie/introalignment-sub003/internal/config"
	"github.com/CodenameMaggie/introalignment-sub003/internal/metrics"
	"github.com/CodenameMaggie/introalignment-sub003/internal/model"
)

// Store is the subset of the lead store the scorer needs.
type Store interface {
	ClaimUnscoredLeads(ctx context.Context, limit int, ttl time.Duration) ([]model.Lead, error)
	SetLeadFitScore(ctx context.Context, id string, score int) error
}

// Runner scores claimed batches of unscored leads.
type Runner struct {
	store    Store
	cfg      config.ScorerConfig
	claimTTL time.Duration
}

// NewRunner creates a Runner. The config must pass ValidateConfig.
func NewRunner(store Store, cfg config.ScorerConfig, claimTTL time.Duration) (*Runner, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if claimTTL <= 0 {
		claimTTL = 10 * time.Minute
	}
	return &Runner{store: store, cfg: cfg, claimTTL: claimTTL}, nil
}

// RunBatch claims up to limit unscored leads and scores them. An error
// on one lead is logged and the loop continues. Returns the number of
// leads scored.
func (r *Runner) RunBatch(ctx context.Context, limit int) (int, error) {
	leads, err := r.store.ClaimUnscoredLeads(ctx, limit, r.claimTTL)
	if err != nil {
		return 0, eris.Wrap(err, "scorer: claim unscored leads")
	}
	if len(leads) == 0 {
		zap.L().Debug("scorer: no unscored leads")
		return 0, nil
	}

	scored := 0
	for _, lead := range leads {
		if ctx.Err() != nil {
			return scored, eris.Wrap(ctx.Err(), "scorer: batch interrupted")
		}

		score := Score(lead, r.cfg)
		if err := r.store.SetLeadFitScore(ctx, lead.ID, score); err != nil {
			zap.L().Warn("scorer: failed to write fit score",
				zap.String("lead_id", lead.ID),
				zap.Error(err),
			)
			continue
		}
		metrics.LeadsScored.Inc()
		scored++
	}

	zap.L().Info("scorer: batch complete",
		zap.Int("claimed", len(leads)),
		zap.Int("scored", scored),
	)
	return scored, nil
}
