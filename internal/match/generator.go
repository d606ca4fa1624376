package match

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/CodenameMaggie/introalignment-sub003/internal/config"
	"github.com/CodenameMaggie/introalignment-sub003/internal/metrics"
	"github.com/CodenameMaggie/introalignment-sub003/internal/model"
)

// Store is the subset of the store the generator needs.
type Store interface {
	GetProfile(ctx context.Context, id string) (*model.Profile, error)
	ListActiveProfiles(ctx context.Context) ([]model.Profile, error)
	ExistingPairs(ctx context.Context) (map[string]bool, error)
	InsertMatches(ctx context.Context, matches []model.Match) (int64, error)
}

// Candidate is a scored potential match for one user.
type Candidate struct {
	UserID       string
	Scores       model.CategoryScores
	OverallScore float64
}

// Generator builds and persists matches for active members.
type Generator struct {
	store  Store
	scorer CategoryScorer
	cfg    config.MatchConfig
}

// NewGenerator creates a Generator. A nil scorer defaults to SignalScorer.
func NewGenerator(store Store, scorer CategoryScorer, cfg config.MatchConfig) *Generator {
	if scorer == nil {
		scorer = SignalScorer{}
	}
	return &Generator{store: store, scorer: scorer, cfg: cfg}
}

// eligible applies the mutual preference filters: both sides must seek
// the other's gender, fall inside the other's age band, and share the
// stricter of the two location scopes.
func eligible(user, cand model.Profile, now time.Time) bool {
	if !user.Seeks(cand.Gender) || !cand.Seeks(user.Gender) {
		return false
	}

	userAge, candAge := user.Age(now), cand.Age(now)
	if candAge < user.AgeMin || (user.AgeMax > 0 && candAge > user.AgeMax) {
		return false
	}
	if userAge < cand.AgeMin || (cand.AgeMax > 0 && userAge > cand.AgeMax) {
		return false
	}

	scope := user.Scope
	if scopeRank(cand.Scope) < scopeRank(scope) {
		scope = cand.Scope
	}
	switch scope {
	case model.ScopeCity:
		return user.City != "" && user.City == cand.City && user.State == cand.State
	case model.ScopeState:
		return user.State != "" && user.State == cand.State
	default:
		return true
	}
}

func scopeRank(s model.LocationScope) int {
	switch s {
	case model.ScopeCity:
		return 0
	case model.ScopeState:
		return 1
	default:
		return 2
	}
}

// GenerateForUser scores the candidate pool for one user and returns
// candidates at or above the configured minimum, best first, capped at
// maxMatchesPerUser. Pure: no store access, no side effects.
func (g *Generator) GenerateForUser(user model.Profile, pool []model.Profile, existing map[string]bool) []Candidate {
	now := time.Now().UTC()
	var candidates []Candidate

	for _, cand := range pool {
		if cand.ID == user.ID || !cand.Active {
			continue
		}
		if g.cfg.ExcludeExistingMatches {
			lo, hi := model.PairKey(user.ID, cand.ID)
			if existing[lo+"|"+hi] {
				continue
			}
		}
		if g.cfg.RespectUserPreferences && !eligible(user, cand, now) {
			continue
		}

		scores := g.scorer.Score(user, cand)
		overall := Overall(scores, g.cfg.Weights)
		if overall < g.cfg.MinOverallScore {
			continue
		}
		candidates = append(candidates, Candidate{
			UserID:       cand.ID,
			Scores:       scores,
			OverallScore: overall,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].OverallScore != candidates[j].OverallScore {
			return candidates[i].OverallScore > candidates[j].OverallScore
		}
		return candidates[i].UserID < candidates[j].UserID
	})
	if g.cfg.MaxMatchesPerUser > 0 && len(candidates) > g.cfg.MaxMatchesPerUser {
		candidates = candidates[:g.cfg.MaxMatchesPerUser]
	}
	return candidates
}

// Run generates and persists matches for a single user. Returns the
// number of match rows written.
func (g *Generator) Run(ctx context.Context, userID string) (int64, error) {
	user, err := g.store.GetProfile(ctx, userID)
	if err != nil {
		return 0, eris.Wrapf(err, "match: get profile %s", userID)
	}
	if user == nil {
		return 0, eris.Wrapf(ErrProfileNotFound, "match: profile %s", userID)
	}
	if !user.Active {
		return 0, nil
	}

	pool, err := g.store.ListActiveProfiles(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "match: list active profiles")
	}
	existing, err := g.store.ExistingPairs(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "match: existing pairs")
	}

	candidates := g.GenerateForUser(*user, pool, existing)
	return g.persist(ctx, toMatches(user.ID, candidates))
}

// RunAll generates matches for every active user. Scoring runs
// concurrently; the combined candidate set is deduplicated on the
// canonical pair before a single bulk insert.
func (g *Generator) RunAll(ctx context.Context) (int64, error) {
	pool, err := g.store.ListActiveProfiles(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "match: list active profiles")
	}
	existing, err := g.store.ExistingPairs(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "match: existing pairs")
	}

	concurrency := g.cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	var mu sync.Mutex
	byPair := make(map[string]model.Match)

	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(concurrency)
	for _, user := range pool {
		grp.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			candidates := g.GenerateForUser(user, pool, existing)
			matches := toMatches(user.ID, candidates)

			mu.Lock()
			for _, m := range matches {
				key := m.UserLo + "|" + m.UserHi
				if _, seen := byPair[key]; !seen {
					byPair[key] = m
				}
			}
			mu.Unlock()
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return 0, eris.Wrap(err, "match: generate all")
	}

	matches := make([]model.Match, 0, len(byPair))
	for _, m := range byPair {
		matches = append(matches, m)
	}
	return g.persist(ctx, matches)
}

func toMatches(userID string, candidates []Candidate) []model.Match {
	matches := make([]model.Match, 0, len(candidates))
	for _, c := range candidates {
		lo, hi := model.PairKey(userID, c.UserID)
		matches = append(matches, model.Match{
			UserLo:       lo,
			UserHi:       hi,
			Scores:       c.Scores,
			OverallScore: c.OverallScore,
			Status:       model.MatchPending,
		})
	}
	return matches
}

func (g *Generator) persist(ctx context.Context, matches []model.Match) (int64, error) {
	if len(matches) == 0 {
		return 0, nil
	}
	written, err := g.store.InsertMatches(ctx, matches)
	if err != nil {
		return 0, eris.Wrap(err, "match: insert matches")
	}
	metrics.MatchesGenerated.Add(float64(written))
	zap.L().Info("match: generation complete",
		zap.Int("candidates", len(matches)),
		zap.Int64("written", written),
	)
	return written, nil
}
