// Package store implements Postgres persistence for the pipeline.
package store

import (
	"context"
	"time"

	"github.com/CodenameMaggie/introalignment-sub003/internal/model"
)

// LeadFilter specifies criteria for listing leads.
type LeadFilter struct {
	MinFitScore        int     `json:"min_fit_score,omitempty"`
	MinEmailConfidence float64 `json:"min_email_confidence,omitempty"`
	UnsyncedOnly       bool    `json:"unsynced_only,omitempty"`
	Limit              int     `json:"limit,omitempty"`
}

// Store defines the persistence interface for the pipeline.
//
// Claim* methods select not-yet-processed rows with a lease so overlapping
// cron invocations cannot double-process the same row. A claim expires
// after ttl, so rows abandoned by a crashed run are claimable again.
type Store interface {
	// Leads
	CreateLead(ctx context.Context, lead model.Lead) (*model.Lead, error)
	GetLead(ctx context.Context, id string) (*model.Lead, error)
	ClaimUnscoredLeads(ctx context.Context, limit int, ttl time.Duration) ([]model.Lead, error)
	SetLeadFitScore(ctx context.Context, id string, score int) error
	ClaimEnrichableLeads(ctx context.Context, minScore, limit int, ttl time.Duration) ([]model.Lead, error)
	SetLeadEnrichment(ctx context.Context, id, email string, confidence float64, status model.EnrichmentStatus) error
	SetLeadOutreachStatus(ctx context.Context, id string, status model.OutreachStatus) error
	SetLeadCRMID(ctx context.Context, id, crmID string) error
	ListQualifiedLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error)

	// Profiles
	GetProfile(ctx context.Context, id string) (*model.Profile, error)
	ListActiveProfiles(ctx context.Context) ([]model.Profile, error)

	// Matches
	ExistingPairs(ctx context.Context) (map[string]bool, error)
	InsertMatches(ctx context.Context, matches []model.Match) (int64, error)
	GetMatch(ctx context.Context, id string) (*model.Match, error)
	SetMatchResponse(ctx context.Context, matchID, userID string, resp model.MatchResponse) error
	DeclineMatch(ctx context.Context, matchID string) error
	ConnectIfMutual(ctx context.Context, matchID string) (bool, error)
	MarkMatchIntroduced(ctx context.Context, matchID string) error
	ListMatchesWithoutReports(ctx context.Context, limit int) ([]model.Match, error)

	// Introduction reports
	ReportExists(ctx context.Context, matchID string) (bool, error)
	InsertReport(ctx context.Context, r model.IntroductionReport) (*model.IntroductionReport, error)

	// Outreach
	CreateEnrollment(ctx context.Context, leadID, sequence string, nextSendAt time.Time) (*model.Enrollment, bool, error)
	GetActiveEnrollment(ctx context.Context, leadID string) (*model.Enrollment, error)
	ClaimDueEnrollments(ctx context.Context, limit int, ttl time.Duration) ([]model.Enrollment, error)
	AdvanceEnrollment(ctx context.Context, id string, step int, nextSendAt time.Time) error
	FinishEnrollment(ctx context.Context, id string, status model.EnrollmentStatus) error
	InsertEmailSend(ctx context.Context, send model.EmailSend) (*model.EmailSend, error)
	LatestSend(ctx context.Context, enrollmentID string) (*model.EmailSend, error)
	IncrementOpen(ctx context.Context, sendID string) error
	IncrementClick(ctx context.Context, sendID string) error

	// Lifecycle
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Close() error
}

// Migration is a named schema migration, exposed for the admin listing route.
type Migration struct {
	Name string `json:"name"`
	SQL  string `json:"sql"`
}
