// Package model defines the row types shared across the pipeline.
package model

import "time"

// EnrichmentStatus tracks whether a lead's email has been resolved.
type EnrichmentStatus string

const (
	EnrichmentPending  EnrichmentStatus = "pending"
	EnrichmentEnriched EnrichmentStatus = "enriched"
	EnrichmentFailed   EnrichmentStatus = "failed"
)

// OutreachStatus tracks a lead's position in the outreach funnel.
type OutreachStatus string

const (
	OutreachPending  OutreachStatus = "pending"
	OutreachEnrolled OutreachStatus = "enrolled"
	OutreachStopped  OutreachStatus = "stopped"
)

// Lead is a prospective referral contact. Leads are created by intake,
// mutated by the scorer, enricher and outreach engine, and never hard-deleted.
type Lead struct {
	ID               string           `json:"id"`
	Source           string           `json:"source"`
	FullName         string           `json:"full_name"`
	Company          string           `json:"company"`
	Domain           string           `json:"domain"`
	Signals          LeadSignals      `json:"signals"`
	FitScore         *int             `json:"fit_score,omitempty"`
	Email            string           `json:"email,omitempty"`
	EmailConfidence  *float64         `json:"email_confidence,omitempty"`
	EnrichmentStatus EnrichmentStatus `json:"enrichment_status"`
	OutreachStatus   OutreachStatus   `json:"outreach_status"`
	CRMID            string           `json:"crm_id,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// LeadSignals holds the raw intake signals the fit score is computed from.
// Stored as a JSONB column; fields are additive only.
type LeadSignals struct {
	PracticeAreas    []string `json:"practice_areas,omitempty"`
	FirmSize         int      `json:"firm_size,omitempty"`
	EngagementEvents int      `json:"engagement_events,omitempty"`
	WebsiteVisits    int      `json:"website_visits,omitempty"`
	RepliedBefore    bool     `json:"replied_before,omitempty"`
	ReferredBy       string   `json:"referred_by,omitempty"`
}
