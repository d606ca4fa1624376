package report

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodenameMaggie/introalignment-sub003/internal/config"
	"github.com/CodenameMaggie/introalignment-sub003/internal/model"
	"github.com/CodenameMaggie/introalignment-sub003/pkg/anthropic"
)

type fakeAI struct {
	response string
	err      error
	calls    int
}

func (f *fakeAI) CreateMessage(_ context.Context, _ anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: f.response}},
	}, nil
}

type fakeReportStore struct {
	matches    map[string]*model.Match
	profiles   map[string]*model.Profile
	reports    map[string]*model.IntroductionReport
	introduced map[string]bool
}

func newFakeReportStore() *fakeReportStore {
	return &fakeReportStore{
		matches:    make(map[string]*model.Match),
		profiles:   make(map[string]*model.Profile),
		reports:    make(map[string]*model.IntroductionReport),
		introduced: make(map[string]bool),
	}
}

func (s *fakeReportStore) GetMatch(_ context.Context, id string) (*model.Match, error) {
	return s.matches[id], nil
}

func (s *fakeReportStore) GetProfile(_ context.Context, id string) (*model.Profile, error) {
	return s.profiles[id], nil
}

func (s *fakeReportStore) ReportExists(_ context.Context, matchID string) (bool, error) {
	_, ok := s.reports[matchID]
	return ok, nil
}

func (s *fakeReportStore) InsertReport(_ context.Context, r model.IntroductionReport) (*model.IntroductionReport, error) {
	s.reports[r.MatchID] = &r
	return &r, nil
}

func (s *fakeReportStore) MarkMatchIntroduced(_ context.Context, matchID string) error {
	s.introduced[matchID] = true
	return nil
}

func (s *fakeReportStore) ListMatchesWithoutReports(_ context.Context, _ int) ([]model.Match, error) {
	var out []model.Match
	for id, m := range s.matches {
		if _, ok := s.reports[id]; !ok {
			out = append(out, *m)
		}
	}
	return out, nil
}

func seedMatch(s *fakeReportStore, id string) {
	s.matches[id] = &model.Match{
		ID: id, UserLo: "alice", UserHi: "bob",
		OverallScore: 82,
		Scores:       model.CategoryScores{Psychological: 85, Intellectual: 80},
	}
	s.profiles["alice"] = &model.Profile{ID: "alice", FullName: "Alice", Gender: "woman"}
	s.profiles["bob"] = &model.Profile{ID: "bob", FullName: "Bob", Gender: "man"}
}

func TestGeneratePlaceholderWhenAIDisabled(t *testing.T) {
	store := newFakeReportStore()
	seedMatch(store, "m1")
	ai := &fakeAI{}

	g := NewGenerator(store, ai, config.ReportsConfig{AIEnabled: false})
	r, err := g.GenerateForMatch(context.Background(), "m1")
	require.NoError(t, err)
	require.NotNil(t, r)

	assert.Equal(t, model.ReportPlaceholder, r.Kind)
	assert.Contains(t, r.Summary, "82")
	assert.NotEmpty(t, r.ConversationStarters)
	assert.Zero(t, ai.calls)
	assert.True(t, store.introduced["m1"])
}

func TestGenerateAIReport(t *testing.T) {
	store := newFakeReportStore()
	seedMatch(store, "m1")
	ai := &fakeAI{response: `Here is the report:
{"summary":"A promising pair.","narrative":"Alice and Bob share a love of ideas.",
"conversation_starters":["Ask about her pottery."],"challenges":"Different schedules."}`}

	g := NewGenerator(store, ai, config.ReportsConfig{
		AIEnabled: true,
		Model:     "claude-sonnet-4-5-20250929",
		MaxTokens: 1024,
	})
	r, err := g.GenerateForMatch(context.Background(), "m1")
	require.NoError(t, err)
	require.NotNil(t, r)

	assert.Equal(t, model.ReportGenerated, r.Kind)
	assert.Equal(t, "A promising pair.", r.Summary)
	assert.Equal(t, []string{"Ask about her pottery."}, r.ConversationStarters)
	assert.Equal(t, "claude-sonnet-4-5-20250929", r.Model)
	assert.Equal(t, 1, ai.calls)
}

func TestGenerateIdempotent(t *testing.T) {
	store := newFakeReportStore()
	seedMatch(store, "m1")

	g := NewGenerator(store, nil, config.ReportsConfig{})
	first, err := g.GenerateForMatch(context.Background(), "m1")
	require.NoError(t, err)
	require.NotNil(t, first)

	// Second call sees the existing report and writes nothing.
	second, err := g.GenerateForMatch(context.Background(), "m1")
	require.NoError(t, err)
	assert.Nil(t, second)
	assert.Len(t, store.reports, 1)
}

func TestGenerateMatchNotFound(t *testing.T) {
	g := NewGenerator(newFakeReportStore(), nil, config.ReportsConfig{})
	_, err := g.GenerateForMatch(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestRunBatchCollectsErrors(t *testing.T) {
	store := newFakeReportStore()
	seedMatch(store, "m1")
	seedMatch(store, "m2")
	// m2 loses its profiles so AI generation fails for it.
	store.matches["m2"].UserLo = "ghost"
	store.matches["m2"].UserHi = "phantom"

	ai := &fakeAI{response: `{"summary":"ok","narrative":"ok"}`}
	g := NewGenerator(store, ai, config.ReportsConfig{AIEnabled: true, Model: "claude-haiku-4-5-20251001"})

	written, errs := g.RunBatch(context.Background(), 10)
	assert.Equal(t, 1, written)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "missing profile")
}

func TestParseAIReport(t *testing.T) {
	parsed, err := parseAIReport("```json\n{\"summary\":\"s\",\"narrative\":\"n\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, "s", parsed.Summary)

	_, err = parseAIReport("no json here")
	assert.Error(t, err)

	_, err = parseAIReport("{}")
	assert.ErrorContains(t, err, "no content")
}
