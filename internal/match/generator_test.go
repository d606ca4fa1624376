package match

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodenameMaggie/introalignment-sub003/internal/config"
	"github.com/CodenameMaggie/introalignment-sub003/internal/model"
)

func defaultMatchConfig() config.MatchConfig {
	return config.MatchConfig{
		MinOverallScore:        70,
		MaxMatchesPerUser:      5,
		RespectUserPreferences: true,
		ExcludeExistingMatches: true,
		Concurrency:            2,
		Weights: config.MatchWeights{
			Psychological: 25,
			Intellectual:  20,
			Communication: 20,
			LifeAlignment: 25,
			Astrological:  10,
		},
	}
}

func testProfile(id, gender string, seeking ...string) model.Profile {
	return model.Profile{
		ID:             id,
		Gender:         gender,
		SeekingGenders: seeking,
		Birthdate:      time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC),
		City:           "Austin",
		State:          "TX",
		Active:         true,
		AgeMin:         18,
		AgeMax:         99,
		Scope:          model.ScopeAny,
	}
}

// fixedScorer returns the same category scores for every pair.
type fixedScorer struct {
	scores model.CategoryScores
}

func (f fixedScorer) Score(_, _ model.Profile) model.CategoryScores {
	return f.scores
}

func TestOverallWeightedCombination(t *testing.T) {
	scores := model.CategoryScores{
		Psychological: 80,
		Intellectual:  75,
		Communication: 70,
		LifeAlignment: 85,
		Astrological:  60,
	}
	overall := Overall(scores, defaultMatchConfig().Weights)
	assert.InDelta(t, 76.25, overall, 0.001)
}

func TestGenerateForUserIncludesAboveMinimum(t *testing.T) {
	// Category scores averaging above the 70 threshold.
	gen := NewGenerator(nil, fixedScorer{model.CategoryScores{
		Psychological: 80, Intellectual: 75, Communication: 70,
		LifeAlignment: 85, Astrological: 60,
	}}, defaultMatchConfig())

	user := testProfile("a", "woman", "man")
	pool := []model.Profile{user, testProfile("b", "man", "woman")}

	candidates := gen.GenerateForUser(user, pool, nil)
	require.Len(t, candidates, 1)
	assert.Equal(t, "b", candidates[0].UserID)
	assert.GreaterOrEqual(t, candidates[0].OverallScore, 70.0)
}

func TestGenerateForUserExcludesBelowMinimum(t *testing.T) {
	gen := NewGenerator(nil, fixedScorer{model.CategoryScores{
		Psychological: 65, Intellectual: 65, Communication: 65,
		LifeAlignment: 65, Astrological: 65,
	}}, defaultMatchConfig())

	user := testProfile("a", "woman", "man")
	pool := []model.Profile{user, testProfile("b", "man", "woman")}

	assert.Empty(t, gen.GenerateForUser(user, pool, nil))
}

func TestGenerateForUserSkipsExistingPairs(t *testing.T) {
	gen := NewGenerator(nil, fixedScorer{model.CategoryScores{
		Psychological: 90, Intellectual: 90, Communication: 90,
		LifeAlignment: 90, Astrological: 90,
	}}, defaultMatchConfig())

	user := testProfile("b", "woman", "man")
	pool := []model.Profile{
		user,
		testProfile("a", "man", "woman"),
		testProfile("c", "man", "woman"),
	}
	existing := map[string]bool{"a|b": true}

	candidates := gen.GenerateForUser(user, pool, existing)
	require.Len(t, candidates, 1)
	assert.Equal(t, "c", candidates[0].UserID)
}

func TestGenerateForUserCapsCandidates(t *testing.T) {
	cfg := defaultMatchConfig()
	cfg.MaxMatchesPerUser = 3
	gen := NewGenerator(nil, fixedScorer{model.CategoryScores{
		Psychological: 90, Intellectual: 90, Communication: 90,
		LifeAlignment: 90, Astrological: 90,
	}}, cfg)

	user := testProfile("user", "woman", "man")
	pool := []model.Profile{user}
	for i := 0; i < 10; i++ {
		pool = append(pool, testProfile(fmt.Sprintf("cand-%d", i), "man", "woman"))
	}

	candidates := gen.GenerateForUser(user, pool, nil)
	assert.Len(t, candidates, 3)
}

func TestGenerateForUserRespectsPreferences(t *testing.T) {
	gen := NewGenerator(nil, fixedScorer{model.CategoryScores{
		Psychological: 90, Intellectual: 90, Communication: 90,
		LifeAlignment: 90, Astrological: 90,
	}}, defaultMatchConfig())

	user := testProfile("a", "woman", "man")

	wrongGender := testProfile("b", "woman", "man")
	notSeekingBack := testProfile("c", "man", "woman")
	notSeekingBack.SeekingGenders = []string{"nonbinary"}
	tooYoung := testProfile("d", "man", "woman")
	tooYoung.Birthdate = time.Now().UTC().AddDate(-20, 0, 0)
	user.AgeMin = 30
	wrongCity := testProfile("e", "man", "woman")
	wrongCity.City = "Dallas"
	wrongCity.Scope = model.ScopeCity
	ok := testProfile("f", "man", "woman")

	pool := []model.Profile{user, wrongGender, notSeekingBack, tooYoung, wrongCity, ok}
	candidates := gen.GenerateForUser(user, pool, nil)
	require.Len(t, candidates, 1)
	assert.Equal(t, "f", candidates[0].UserID)
}

func TestGenerateForUserIgnoresFiltersWhenDisabled(t *testing.T) {
	cfg := defaultMatchConfig()
	cfg.RespectUserPreferences = false
	gen := NewGenerator(nil, fixedScorer{model.CategoryScores{
		Psychological: 90, Intellectual: 90, Communication: 90,
		LifeAlignment: 90, Astrological: 90,
	}}, cfg)

	user := testProfile("a", "woman", "man")
	sameGender := testProfile("b", "woman", "man")

	candidates := gen.GenerateForUser(user, []model.Profile{user, sameGender}, nil)
	assert.Len(t, candidates, 1)
}

type fakeMatchStore struct {
	profiles map[string]model.Profile
	pairs    map[string]bool
	inserted []model.Match
}

func newFakeMatchStore(profiles ...model.Profile) *fakeMatchStore {
	s := &fakeMatchStore{
		profiles: make(map[string]model.Profile),
		pairs:    make(map[string]bool),
	}
	for _, p := range profiles {
		s.profiles[p.ID] = p
	}
	return s
}

func (s *fakeMatchStore) GetProfile(_ context.Context, id string) (*model.Profile, error) {
	if p, ok := s.profiles[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (s *fakeMatchStore) ListActiveProfiles(_ context.Context) ([]model.Profile, error) {
	var out []model.Profile
	for _, p := range s.profiles {
		if p.Active {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakeMatchStore) ExistingPairs(_ context.Context) (map[string]bool, error) {
	pairs := make(map[string]bool, len(s.pairs))
	for k, v := range s.pairs {
		pairs[k] = v
	}
	return pairs, nil
}

func (s *fakeMatchStore) InsertMatches(_ context.Context, matches []model.Match) (int64, error) {
	var written int64
	for _, m := range matches {
		key := m.UserLo + "|" + m.UserHi
		if s.pairs[key] {
			continue
		}
		s.pairs[key] = true
		s.inserted = append(s.inserted, m)
		written++
	}
	return written, nil
}

func TestRunAllNoDuplicatePairs(t *testing.T) {
	store := newFakeMatchStore(
		testProfile("a", "woman", "man"),
		testProfile("b", "man", "woman"),
		testProfile("c", "man", "woman"),
	)
	gen := NewGenerator(store, fixedScorer{model.CategoryScores{
		Psychological: 90, Intellectual: 90, Communication: 90,
		LifeAlignment: 90, Astrological: 90,
	}}, defaultMatchConfig())

	written, err := gen.RunAll(context.Background())
	require.NoError(t, err)
	// a-b and a-c, each pair exactly once even though both sides generate.
	assert.EqualValues(t, 2, written)
	for _, m := range store.inserted {
		assert.Less(t, m.UserLo, m.UserHi)
	}

	// A second run finds every pair already stored.
	written, err = gen.RunAll(context.Background())
	require.NoError(t, err)
	assert.Zero(t, written)
}

func TestRunUnknownProfile(t *testing.T) {
	gen := NewGenerator(newFakeMatchStore(), nil, defaultMatchConfig())
	_, err := gen.Run(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrProfileNotFound)
}
