package enrich

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/CodenameMaggie/introalignment-sub003/internal/config"
	"github.com/CodenameMaggie/introalignment-sub003/internal/metrics"
	"github.com/CodenameMaggie/introalignment-sub003/internal/model"
	"github.com/CodenameMaggie/introalignment-sub003/pkg/emailfinder"
)

// Store is the subset of the lead store the enricher needs.
type Store interface {
	ClaimEnrichableLeads(ctx context.Context, minScore, limit int, ttl time.Duration) ([]model.Lead, error)
	SetLeadEnrichment(ctx context.Context, id, email string, confidence float64, status model.EnrichmentStatus) error
}

// Enricher resolves emails for scored leads. The finder may be nil, in
// which case only pattern guessing runs.
type Enricher struct {
	store    Store
	finder   emailfinder.Client
	cfg      config.EnrichConfig
	claimTTL time.Duration
}

func NewEnricher(store Store, finder emailfinder.Client, cfg config.EnrichConfig, claimTTL time.Duration) *Enricher {
	if claimTTL <= 0 {
		claimTTL = 10 * time.Minute
	}
	return &Enricher{store: store, finder: finder, cfg: cfg, claimTTL: claimTTL}
}

// Enrich resolves a single lead's email. Tier 0 is a free pattern
// guess; the paid finder runs only when the guess falls below the
// configured confidence threshold. The better result wins.
func (e *Enricher) Enrich(ctx context.Context, lead model.Lead) (email string, confidence float64, err error) {
	guess := GuessEmail(lead.FullName, lead.Domain)
	email, confidence = guess.Email, guess.Confidence

	if confidence >= e.cfg.ConfidenceThreshold {
		return email, confidence, nil
	}
	if e.finder == nil || lead.Domain == "" || lead.FullName == "" {
		return email, confidence, nil
	}

	found, err := e.finder.FindEmail(ctx, lead.FullName, lead.Domain)
	if err != nil {
		// Keep the guess if the paid lookup fails.
		return email, confidence, eris.Wrap(err, "enrich: finder lookup")
	}
	if found.Email != "" && found.Confidence > confidence {
		return found.Email, found.Confidence, nil
	}
	return email, confidence, nil
}

// RunBatch claims up to limit enrichable leads and resolves their
// emails. A lead that cannot be resolved is marked failed; the run
// continues. Returns the number of leads marked enriched.
func (e *Enricher) RunBatch(ctx context.Context, limit int) (int, error) {
	leads, err := e.store.ClaimEnrichableLeads(ctx, e.cfg.MinFitScore, limit, e.claimTTL)
	if err != nil {
		return 0, eris.Wrap(err, "enrich: claim enrichable leads")
	}
	if len(leads) == 0 {
		zap.L().Debug("enrich: no enrichable leads")
		return 0, nil
	}

	enriched := 0
	for _, lead := range leads {
		if ctx.Err() != nil {
			return enriched, eris.Wrap(ctx.Err(), "enrich: batch interrupted")
		}

		email, confidence, err := e.Enrich(ctx, lead)
		if err != nil {
			zap.L().Warn("enrich: lookup failed, keeping pattern guess",
				zap.String("lead_id", lead.ID),
				zap.Error(err),
			)
		}

		status := model.EnrichmentEnriched
		if email == "" {
			status = model.EnrichmentFailed
		}

		if err := e.store.SetLeadEnrichment(ctx, lead.ID, email, confidence, status); err != nil {
			zap.L().Warn("enrich: failed to write enrichment",
				zap.String("lead_id", lead.ID),
				zap.Error(err),
			)
			continue
		}
		metrics.LeadsEnriched.WithLabelValues(string(status)).Inc()
		if status == model.EnrichmentEnriched {
			enriched++
		}
	}

	zap.L().Info("enrich: batch complete",
		zap.Int("claimed", len(leads)),
		zap.Int("enriched", enriched),
	)
	return enriched, nil
}
