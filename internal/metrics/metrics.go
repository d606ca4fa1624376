// Package metrics exposes Prometheus counters for the pipeline and an
// HTTP middleware for request instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LeadsScored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "introalign_leads_scored_total",
		Help: "Leads assigned a fit score.",
	})
	LeadsEnriched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "introalign_leads_enriched_total",
		Help: "Leads processed by the enrichment waterfall, by outcome.",
	}, []string{"status"})
	MatchesGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "introalign_matches_generated_total",
		Help: "Match rows written by the generator.",
	})
	ReportsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "introalign_reports_generated_total",
		Help: "Introduction reports written, by kind.",
	}, []string{"kind"})
	OutreachSends = promauto.NewCounter(prometheus.CounterOpts{
		Name: "introalign_outreach_sends_total",
		Help: "Outreach emails sent.",
	})
	TrackingEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "introalign_tracking_events_total",
		Help: "Email open and click events recorded.",
	}, []string{"event"})
)
