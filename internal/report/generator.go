// Package report writes introduction reports for generated matches.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/CodenameMaggie/introalignment-sub003/internal/config"
	"github.com/CodenameMaggie/introalignment-sub003/internal/metrics"
	"github.com/CodenameMaggie/introalignment-sub003/internal/model"
	"github.com/CodenameMaggie/introalignment-sub003/pkg/anthropic"
)

// Store is the subset of the store report generation needs.
type Store interface {
	GetMatch(ctx context.Context, id string) (*model.Match, error)
	GetProfile(ctx context.Context, id string) (*model.Profile, error)
	ReportExists(ctx context.Context, matchID string) (bool, error)
	InsertReport(ctx context.Context, r model.IntroductionReport) (*model.IntroductionReport, error)
	MarkMatchIntroduced(ctx context.Context, matchID string) error
	ListMatchesWithoutReports(ctx context.Context, limit int) ([]model.Match, error)
}

// Generator produces one introduction report per match. When AI
// generation is disabled, or no client is configured, a static
// placeholder report is written instead.
type Generator struct {
	store Store
	ai    anthropic.Client
	cfg   config.ReportsConfig
}

func NewGenerator(store Store, ai anthropic.Client, cfg config.ReportsConfig) *Generator {
	return &Generator{store: store, ai: ai, cfg: cfg}
}

var ErrMatchNotFound = eris.New("match not found")

// GenerateForMatch writes the report for one match. Idempotent: a match
// that already has a report is skipped. The match is marked introduced
// once its report exists.
func (g *Generator) GenerateForMatch(ctx context.Context, matchID string) (*model.IntroductionReport, error) {
	exists, err := g.store.ReportExists(ctx, matchID)
	if err != nil {
		return nil, eris.Wrapf(err, "report: check existing for match %s", matchID)
	}
	if exists {
		return nil, nil
	}

	m, err := g.store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, eris.Wrapf(ErrMatchNotFound, "report: match %s", matchID)
	}

	var report model.IntroductionReport
	if g.cfg.AIEnabled && g.ai != nil {
		report, err = g.generateAI(ctx, *m)
		if err != nil {
			return nil, eris.Wrapf(err, "report: generate for match %s", matchID)
		}
	} else {
		report = placeholderReport(*m)
	}
	report.MatchID = matchID

	inserted, err := g.store.InsertReport(ctx, report)
	if err != nil {
		return nil, eris.Wrapf(err, "report: insert for match %s", matchID)
	}
	if err := g.store.MarkMatchIntroduced(ctx, matchID); err != nil {
		zap.L().Warn("report: failed to mark match introduced",
			zap.String("match_id", matchID),
			zap.Error(err),
		)
	}
	metrics.ReportsGenerated.WithLabelValues(string(inserted.Kind)).Inc()
	return inserted, nil
}

// RunBatch generates reports for matches that lack one. Per-match
// errors are collected; the batch continues. Returns the number of
// reports written and the collected errors.
func (g *Generator) RunBatch(ctx context.Context, limit int) (int, []error) {
	matches, err := g.store.ListMatchesWithoutReports(ctx, limit)
	if err != nil {
		return 0, []error{eris.Wrap(err, "report: list matches without reports")}
	}

	var errs []error
	written := 0
	for _, m := range matches {
		if ctx.Err() != nil {
			errs = append(errs, eris.Wrap(ctx.Err(), "report: batch interrupted"))
			break
		}
		r, err := g.GenerateForMatch(ctx, m.ID)
		if err != nil {
			zap.L().Warn("report: generation failed",
				zap.String("match_id", m.ID),
				zap.Error(err),
			)
			errs = append(errs, err)
			continue
		}
		if r != nil {
			written++
		}
	}

	zap.L().Info("report: batch complete",
		zap.Int("candidates", len(matches)),
		zap.Int("written", written),
		zap.Int("errors", len(errs)),
	)
	return written, errs
}

// aiReport is the JSON shape the model is asked to produce.
type aiReport struct {
	Summary              string   `json:"summary"`
	Narrative            string   `json:"narrative"`
	ConversationStarters []string `json:"conversation_starters"`
	Challenges           string   `json:"challenges"`
}

const reportSystemPrompt = `You are a professional matchmaker writing an introduction
report for two members who are about to be introduced. Be warm and specific, never
generic. Respond with JSON only, using this shape:
{"summary": "...", "narrative": "...", "conversation_starters": ["...", "..."], "challenges": "..."}`

func (g *Generator) generateAI(ctx context.Context, m model.Match) (model.IntroductionReport, error) {
	a, err := g.store.GetProfile(ctx, m.UserLo)
	if err != nil {
		return model.IntroductionReport{}, err
	}
	b, err := g.store.GetProfile(ctx, m.UserHi)
	if err != nil {
		return model.IntroductionReport{}, err
	}
	if a == nil || b == nil {
		return model.IntroductionReport{}, eris.Errorf("report: missing profile for match %s", m.ID)
	}

	prompt := buildPrompt(*a, *b, m)
	resp, err := g.ai.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     g.cfg.Model,
		MaxTokens: g.cfg.MaxTokens,
		System:    reportSystemPrompt,
		Messages:  []anthropic.Message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return model.IntroductionReport{}, err
	}
	resp.Usage.LogCost(g.cfg.Model, "introduction_report")

	parsed, err := parseAIReport(resp.Text())
	if err != nil {
		return model.IntroductionReport{}, err
	}

	return model.IntroductionReport{
		Kind:                 model.ReportGenerated,
		Summary:              parsed.Summary,
		Narrative:            parsed.Narrative,
		ConversationStarters: parsed.ConversationStarters,
		Challenges:           parsed.Challenges,
		Model:                g.cfg.Model,
	}, nil
}

func buildPrompt(a, b model.Profile, m model.Match) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Member A: %s, %s, %s, %s\n", a.FullName, a.Gender, a.City, a.State)
	fmt.Fprintf(&sb, "Member B: %s, %s, %s, %s\n", b.FullName, b.Gender, b.City, b.State)
	fmt.Fprintf(&sb, "Compatibility: overall %.0f (psychological %.0f, intellectual %.0f, communication %.0f, life alignment %.0f, astrological %.0f)\n",
		m.OverallScore, m.Scores.Psychological, m.Scores.Intellectual,
		m.Scores.Communication, m.Scores.LifeAlignment, m.Scores.Astrological)
	fmt.Fprintf(&sb, "Member A signals: %s\n", describeSignals(a.Signals))
	fmt.Fprintf(&sb, "Member B signals: %s\n", describeSignals(b.Signals))
	return sb.String()
}

func describeSignals(s model.ProfileSignals) string {
	return fmt.Sprintf("communication=%s conflict=%s children=%s curiosity=%.1f ambition=%.1f zodiac=%s",
		s.CommunicationStyle, s.ConflictStyle, s.WantsChildren,
		s.Curiosity, s.AmbitionLevel, s.ZodiacSign)
}

// parseAIReport extracts the JSON object from a model response that may
// wrap it in prose or a code fence.
func parseAIReport(text string) (*aiReport, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return nil, eris.Errorf("report: no JSON object in response: %.80s", text)
	}

	var parsed aiReport
	if err := json.Unmarshal([]byte(text[start:end+1]), &parsed); err != nil {
		return nil, eris.Wrap(err, "report: parse response JSON")
	}
	if parsed.Summary == "" && parsed.Narrative == "" {
		return nil, eris.New("report: response JSON has no content")
	}
	return &parsed, nil
}

// placeholderReport is the static variant written when AI generation is
// off. It carries the scores so the introduction email still has
// something concrete to say.
func placeholderReport(m model.Match) model.IntroductionReport {
	return model.IntroductionReport{
		Kind: model.ReportPlaceholder,
		Summary: fmt.Sprintf(
			"We think you two could be a great fit, with an overall compatibility of %.0f out of 100.",
			m.OverallScore),
		Narrative: "Our matchmaking team reviewed your profiles and found strong alignment " +
			"across the areas that matter most for a lasting connection.",
		ConversationStarters: []string{
			"What does an ideal Saturday look like for you?",
			"What's something you've changed your mind about recently?",
		},
		Challenges: "Every new connection takes a little patience while you learn each other's rhythms.",
	}
}
