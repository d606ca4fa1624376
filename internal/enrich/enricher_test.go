package enrich

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodenameMaggie/introalignment-sub003/internal/config"
	"github.com/CodenameMaggie/introalignment-sub003/internal/model"
	"github.com/CodenameMaggie/introalignment-sub003/pkg/emailfinder"
)

func TestGuessEmail(t *testing.T) {
	tests := []struct {
		name       string
		fullName   string
		domain     string
		wantEmail  string
		wantConf   float64
	}{
		{"first last", "Dana Whitfield", "whitfieldlaw.com", "dana.whitfield@whitfieldlaw.com", 0.35},
		{"middle name ignored", "Dana Marie Whitfield", "whitfieldlaw.com", "dana.whitfield@whitfieldlaw.com", 0.35},
		{"single name", "Cher", "cher.example", "cher@cher.example", 0.2},
		{"diacritics folded", "José Muñoz", "munozlegal.com", "jose.munoz@munozlegal.com", 0.35},
		{"empty domain", "Dana Whitfield", "", "", 0},
		{"no dot in domain", "Dana Whitfield", "localhost", "", 0},
		{"empty name", "", "whitfieldlaw.com", "", 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := GuessEmail(tc.fullName, tc.domain)
			assert.Equal(t, tc.wantEmail, g.Email)
			assert.InDelta(t, tc.wantConf, g.Confidence, 0.001)
		})
	}
}

type fakeFinder struct {
	result *emailfinder.FindResult
	err    error
	calls  int
}

func (f *fakeFinder) FindEmail(_ context.Context, _, _ string) (*emailfinder.FindResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeEnrichStore struct {
	leads   []model.Lead
	results map[string]model.EnrichmentStatus
	emails  map[string]string
}

func (f *fakeEnrichStore) ClaimEnrichableLeads(_ context.Context, _, _ int, _ time.Duration) ([]model.Lead, error) {
	return f.leads, nil
}

func (f *fakeEnrichStore) SetLeadEnrichment(_ context.Context, id, email string, _ float64, status model.EnrichmentStatus) error {
	if f.results == nil {
		f.results = make(map[string]model.EnrichmentStatus)
		f.emails = make(map[string]string)
	}
	f.results[id] = status
	f.emails[id] = email
	return nil
}

func enrichConfig() config.EnrichConfig {
	return config.EnrichConfig{MinFitScore: 60, ConfidenceThreshold: 0.4}
}

func TestEnrichFinderImprovesGuess(t *testing.T) {
	finder := &fakeFinder{result: &emailfinder.FindResult{Email: "dwhitfield@whitfieldlaw.com", Confidence: 0.93}}
	e := NewEnricher(nil, finder, enrichConfig(), time.Minute)

	email, conf, err := e.Enrich(context.Background(), model.Lead{
		FullName: "Dana Whitfield", Domain: "whitfieldlaw.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "dwhitfield@whitfieldlaw.com", email)
	assert.InDelta(t, 0.93, conf, 0.001)
	assert.Equal(t, 1, finder.calls)
}

func TestEnrichSkipsFinderAboveThreshold(t *testing.T) {
	finder := &fakeFinder{result: &emailfinder.FindResult{Email: "x@y.example", Confidence: 0.9}}
	cfg := enrichConfig()
	cfg.ConfidenceThreshold = 0.3

	e := NewEnricher(nil, finder, cfg, time.Minute)
	email, _, err := e.Enrich(context.Background(), model.Lead{
		FullName: "Dana Whitfield", Domain: "whitfieldlaw.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "dana.whitfield@whitfieldlaw.com", email)
	assert.Zero(t, finder.calls)
}

func TestEnrichKeepsGuessOnFinderError(t *testing.T) {
	finder := &fakeFinder{err: assert.AnError}
	e := NewEnricher(nil, finder, enrichConfig(), time.Minute)

	email, conf, err := e.Enrich(context.Background(), model.Lead{
		FullName: "Dana Whitfield", Domain: "whitfieldlaw.com",
	})
	assert.Error(t, err)
	assert.Equal(t, "dana.whitfield@whitfieldlaw.com", email)
	assert.InDelta(t, 0.35, conf, 0.001)
}

func TestRunBatchMarksFailures(t *testing.T) {
	store := &fakeEnrichStore{
		leads: []model.Lead{
			{ID: "a", FullName: "Dana Whitfield", Domain: "whitfieldlaw.com"},
			{ID: "b"}, // no name or domain, cannot resolve
		},
	}
	finder := &fakeFinder{result: &emailfinder.FindResult{Email: "dana@whitfieldlaw.com", Confidence: 0.9}}
	e := NewEnricher(store, finder, enrichConfig(), time.Minute)

	enriched, err := e.RunBatch(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, 1, enriched)
	assert.Equal(t, model.EnrichmentEnriched, store.results["a"])
	assert.Equal(t, model.EnrichmentFailed, store.results["b"])
	assert.Equal(t, "dana@whitfieldlaw.com", store.emails["a"])
}
