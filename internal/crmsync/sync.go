// Package crmsync pushes qualified leads into Salesforce for the
// referral partner pipeline.
package crmsync

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/CodenameMaggie/introalignment-sub003/internal/model"
	"github.com/CodenameMaggie/introalignment-sub003/internal/store"
	"github.com/CodenameMaggie/introalignment-sub003/pkg/crm"
)

// Store is the subset of the lead store the sync needs.
type Store interface {
	ListQualifiedLeads(ctx context.Context, filter store.LeadFilter) ([]model.Lead, error)
	SetLeadCRMID(ctx context.Context, id, crmID string) error
}

// Syncer pushes unsynced qualified leads to the CRM as Lead records.
type Syncer struct {
	store  Store
	client crm.Client
	filter store.LeadFilter
}

func NewSyncer(s Store, client crm.Client, filter store.LeadFilter) *Syncer {
	filter.UnsyncedOnly = true
	return &Syncer{store: s, client: client, filter: filter}
}

// leadFields maps a lead onto Salesforce Lead fields. LastName and
// Company are required by Salesforce; fall back to placeholders when a
// lead is missing them.
func leadFields(lead model.Lead) map[string]any {
	lastName := "Unknown"
	if parts := strings.Fields(lead.FullName); len(parts) > 0 {
		lastName = parts[len(parts)-1]
	}
	company := lead.Company
	if company == "" {
		company = lead.Domain
	}
	if company == "" {
		company = "Unknown"
	}

	fields := map[string]any{
		"LastName":   lastName,
		"Company":    company,
		"Email":      lead.Email,
		"LeadSource": lead.Source,
	}
	if parts := strings.Fields(lead.FullName); len(parts) > 1 {
		fields["FirstName"] = strings.Join(parts[:len(parts)-1], " ")
	}
	if lead.FitScore != nil {
		fields["Rating"] = rating(*lead.FitScore)
	}
	return fields
}

func rating(score int) string {
	switch {
	case score >= 80:
		return "Hot"
	case score >= 60:
		return "Warm"
	default:
		return "Cold"
	}
}

// Run pushes every unsynced qualified lead and stores the returned CRM
// id. Per-lead errors are logged and the run continues. Returns the
// number of leads synced.
func (s *Syncer) Run(ctx context.Context, limit int) (int, error) {
	filter := s.filter
	filter.Limit = limit

	leads, err := s.store.ListQualifiedLeads(ctx, filter)
	if err != nil {
		return 0, eris.Wrap(err, "crmsync: list qualified leads")
	}

	synced := 0
	for _, lead := range leads {
		if ctx.Err() != nil {
			return synced, eris.Wrap(ctx.Err(), "crmsync: interrupted")
		}

		crmID, err := s.client.InsertOne(ctx, "Lead", leadFields(lead))
		if err != nil {
			zap.L().Warn("crmsync: insert failed",
				zap.String("lead_id", lead.ID),
				zap.Error(err),
			)
			continue
		}
		if err := s.store.SetLeadCRMID(ctx, lead.ID, crmID); err != nil {
			zap.L().Warn("crmsync: failed to store crm id",
				zap.String("lead_id", lead.ID),
				zap.String("crm_id", crmID),
				zap.Error(err),
			)
			continue
		}
		synced++
	}

	zap.L().Info("crmsync: run complete",
		zap.Int("candidates", len(leads)),
		zap.Int("synced", synced),
	)
	return synced, nil
}
