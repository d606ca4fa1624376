package scorer

import (
	"math"
	"strings"

	"github.com/CodenameMaggie/introalignment-sub003/internal/config"
	"github.com/CodenameMaggie/introalignment-sub003/internal/model"
)

// unknownSourceQuality is used when a lead's source is absent from the
// configured source quality map.
const unknownSourceQuality = 0.3

// Score computes a lead's fit score as a weighted sum of component
// scores, each on a 0-1 scale. The result is rounded and clamped to
// [0, 100]. The computation is deterministic: the same lead and config
// always produce the same score.
func Score(lead model.Lead, cfg config.ScorerConfig) int {
	raw := sourceScore(lead, cfg)*cfg.SourceWeight +
		engagementScore(lead)*cfg.EngagementWeight +
		firmographicScore(lead, cfg)*cfg.FirmographicWeight +
		contactabilityScore(lead)*cfg.ContactabilityWeight

	score := int(math.Round(raw))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

func sourceScore(lead model.Lead, cfg config.ScorerConfig) float64 {
	if q, ok := cfg.SourceQuality[strings.ToLower(lead.Source)]; ok {
		return q
	}
	return unknownSourceQuality
}

// engagementScore rewards prior interactions. Each engagement event is
// worth 0.15, each website visit 0.05, and a prior reply 0.4, capped at 1.
func engagementScore(lead model.Lead) float64 {
	s := float64(lead.Signals.EngagementEvents)*0.15 +
		float64(lead.Signals.WebsiteVisits)*0.05
	if lead.Signals.RepliedBefore {
		s += 0.4
	}
	return math.Min(1, s)
}

// firmographicScore combines practice area overlap (60%) with a firm
// size band check (40%).
func firmographicScore(lead model.Lead, cfg config.ScorerConfig) float64 {
	var practice float64
	if len(cfg.TargetPractices) > 0 && len(lead.Signals.PracticeAreas) > 0 {
		target := make(map[string]bool, len(cfg.TargetPractices))
		for _, p := range cfg.TargetPractices {
			target[strings.ToLower(p)] = true
		}
		matched := 0
		for _, p := range lead.Signals.PracticeAreas {
			if target[strings.ToLower(p)] {
				matched++
			}
		}
		practice = float64(matched) / float64(len(cfg.TargetPractices))
		if practice > 1 {
			practice = 1
		}
	}

	var size float64
	fs := lead.Signals.FirmSize
	switch {
	case fs <= 0:
		size = 0
	case fs >= cfg.MinFirmSize && (cfg.MaxFirmSize == 0 || fs <= cfg.MaxFirmSize):
		size = 1
	default:
		// Outside the target band but known: partial credit.
		size = 0.3
	}

	return practice*0.6 + size*0.4
}

// contactabilityScore rewards leads we can plausibly reach: a known
// company domain (60%) and a referral chain (40%).
func contactabilityScore(lead model.Lead) float64 {
	var s float64
	if lead.Domain != "" {
		s += 0.6
	}
	if lead.Signals.ReferredBy != "" {
		s += 0.4
	}
	return s
}
