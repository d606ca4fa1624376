package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/CodenameMaggie/introalignment-sub003/internal/crmsync"
	"github.com/CodenameMaggie/introalignment-sub003/internal/enrich"
	"github.com/CodenameMaggie/introalignment-sub003/internal/export"
	"github.com/CodenameMaggie/introalignment-sub003/internal/mail"
	"github.com/CodenameMaggie/introalignment-sub003/internal/match"
	"github.com/CodenameMaggie/introalignment-sub003/internal/outreach"
	"github.com/CodenameMaggie/introalignment-sub003/internal/report"
	"github.com/CodenameMaggie/introalignment-sub003/internal/scorer"
	"github.com/CodenameMaggie/introalignment-sub003/internal/store"
	"github.com/CodenameMaggie/introalignment-sub003/pkg/anthropic"
	"github.com/CodenameMaggie/introalignment-sub003/pkg/crm"
	"github.com/CodenameMaggie/introalignment-sub003/pkg/emailfinder"
)

// env holds the wired subsystems shared by the commands.
type env struct {
	Store     store.Store
	Scorer    *scorer.Runner
	Enricher  *enrich.Enricher
	Generator *match.Generator
	Responder *match.Responder
	Reports   *report.Generator
	Outreach  *outreach.Engine
	Track     *outreach.TrackHandler
	Exporter  *export.Exporter
}

// initEnv connects to the store and wires the pipeline subsystems from
// config. Optional integrations (email finder, Anthropic, SMTP) are
// wired only when credentials are configured.
func initEnv(ctx context.Context) (*env, error) {
	pg, err := store.NewPostgres(ctx, cfg.Store.DatabaseURL, &cfg.Store.Pool)
	if err != nil {
		return nil, eris.Wrap(err, "init store")
	}

	scorerRunner, err := scorer.NewRunner(pg, cfg.Scorer, cfg.Batch.ClaimTTL)
	if err != nil {
		pg.Close()
		return nil, err
	}

	var finder emailfinder.Client
	if cfg.Enrich.Finder.Key != "" {
		finder = emailfinder.NewClient(cfg.Enrich.Finder.Key,
			emailfinder.WithBaseURL(cfg.Enrich.Finder.BaseURL),
			emailfinder.WithRateLimit(cfg.Enrich.Finder.RPS),
		)
	} else {
		zap.L().Warn("no email finder key configured, enrichment uses pattern guessing only")
	}

	var ai anthropic.Client
	if cfg.Reports.Key != "" {
		ai = anthropic.NewClient(cfg.Reports.Key)
	} else if cfg.Reports.AIEnabled {
		zap.L().Warn("ai reports enabled but no api key configured, falling back to placeholders")
	}

	seq, err := outreach.LoadSequence(cfg.Outreach.SequencePath)
	if err != nil {
		pg.Close()
		return nil, err
	}
	sender := mail.NewSMTPSender(cfg.SMTP)

	e := &env{
		Store:     pg,
		Scorer:    scorerRunner,
		Enricher:  enrich.NewEnricher(pg, finder, cfg.Enrich, cfg.Batch.ClaimTTL),
		Generator: match.NewGenerator(pg, nil, cfg.Match),
		Responder: match.NewResponder(pg),
		Reports:   report.NewGenerator(pg, ai, cfg.Reports),
		Outreach:  outreach.NewEngine(pg, sender, seq, cfg.Outreach),
		Track:     outreach.NewTrackHandler(pg, cfg.Outreach.BaseURL),
		Exporter:  export.NewExporter(pg),
	}
	return e, nil
}

func (e *env) Close() {
	if err := e.Store.Close(); err != nil {
		zap.L().Warn("store close failed", zap.Error(err))
	}
}

// initCRM connects to Salesforce. Separate from initEnv because only
// the crmsync command needs it.
func initCRM() (crm.Client, error) {
	if cfg.CRM.Domain == "" || cfg.CRM.ClientID == "" {
		return nil, eris.New("crm credentials not configured")
	}
	return crm.Connect(cfg.CRM.Domain, cfg.CRM.ClientID, cfg.CRM.ClientSecret,
		crm.WithRateLimit(cfg.CRM.RPS))
}

// crmSyncer builds the sync with export thresholds applied.
func (e *env) crmSyncer(client crm.Client) *crmsync.Syncer {
	return crmsync.NewSyncer(e.Store, client, store.LeadFilter{
		MinFitScore:        cfg.Export.MinFitScore,
		MinEmailConfidence: cfg.Export.MinEmailConfidence,
	})
}
