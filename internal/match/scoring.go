// Package match generates compatibility matches between active members.
package match

import (
	"math"
	"strings"

	"github.com/CodenameMaggie/introalignment-sub003/internal/config"
	"github.com/CodenameMaggie/introalignment-sub003/internal/model"
)

// CategoryScorer computes the five category sub-scores for a pair of
// profiles. Pluggable so scoring models can evolve without touching
// candidate selection.
type CategoryScorer interface {
	Score(a, b model.Profile) model.CategoryScores
}

// SignalScorer scores pairs by weighted attribute similarity over the
// onboarding signals. All sub-scores land in [0, 100].
type SignalScorer struct{}

func (SignalScorer) Score(a, b model.Profile) model.CategoryScores {
	return model.CategoryScores{
		Psychological: psychologicalScore(a.Signals, b.Signals),
		Intellectual:  intellectualScore(a.Signals, b.Signals),
		Communication: communicationScore(a.Signals, b.Signals),
		LifeAlignment: lifeAlignmentScore(a.Signals, b.Signals),
		Astrological:  astrologicalScore(a.Signals, b.Signals),
	}
}

// Overall combines category scores with configured weights, normalized
// by the weight sum.
func Overall(s model.CategoryScores, w config.MatchWeights) float64 {
	sum := w.Psychological + w.Intellectual + w.Communication + w.LifeAlignment + w.Astrological
	if sum <= 0 {
		return 0
	}
	total := s.Psychological*w.Psychological +
		s.Intellectual*w.Intellectual +
		s.Communication*w.Communication +
		s.LifeAlignment*w.LifeAlignment +
		s.Astrological*w.Astrological
	return total / sum
}

// similarity maps the distance between two [0,1] values to [0,1].
func similarity(a, b float64) float64 {
	return 1 - math.Abs(a-b)
}

func clampScore(s float64) float64 {
	return math.Max(0, math.Min(100, s))
}

// psychologicalScore rewards similar openness, conscientiousness and
// agreeableness. Extraversion differences matter less, and high shared
// neuroticism drags the score down.
func psychologicalScore(a, b model.ProfileSignals) float64 {
	s := 0.25*similarity(a.Openness, b.Openness) +
		0.25*similarity(a.Conscientiousness, b.Conscientiousness) +
		0.20*similarity(a.Agreeableness, b.Agreeableness) +
		0.15*similarity(a.Extraversion, b.Extraversion) +
		0.15*(1-(a.Neuroticism+b.Neuroticism)/2)
	return clampScore(s * 100)
}

func intellectualScore(a, b model.ProfileSignals) float64 {
	eduGap := math.Abs(float64(a.EducationLevel - b.EducationLevel))
	eduProximity := 1 - eduGap/5
	s := 0.6*similarity(a.Curiosity, b.Curiosity) + 0.4*eduProximity
	return clampScore(s * 100)
}

// styleAffinity rates how well two communication styles work together.
// Matching styles score highest; direct with reserved is the known
// friction pairing.
var styleAffinity = map[[2]string]float64{
	{"direct", "direct"}:         0.9,
	{"direct", "diplomatic"}:     0.75,
	{"direct", "playful"}:        0.7,
	{"direct", "reserved"}:       0.4,
	{"diplomatic", "diplomatic"}: 1.0,
	{"diplomatic", "playful"}:    0.8,
	{"diplomatic", "reserved"}:   0.85,
	{"playful", "playful"}:       1.0,
	{"playful", "reserved"}:      0.55,
	{"reserved", "reserved"}:     0.8,
}

var conflictAffinity = map[[2]string]float64{
	{"avoid", "avoid"}:             0.5,
	{"avoid", "collaborate"}:       0.7,
	{"avoid", "compete"}:           0.3,
	{"avoid", "compromise"}:        0.65,
	{"collaborate", "collaborate"}: 1.0,
	{"collaborate", "compete"}:     0.45,
	{"collaborate", "compromise"}:  0.9,
	{"compete", "compete"}:         0.25,
	{"compete", "compromise"}:      0.5,
	{"compromise", "compromise"}:   0.85,
}

func pairAffinity(table map[[2]string]float64, x, y string) float64 {
	x, y = strings.ToLower(x), strings.ToLower(y)
	if x > y {
		x, y = y, x
	}
	if v, ok := table[[2]string{x, y}]; ok {
		return v
	}
	// Unknown styles get neutral credit.
	return 0.6
}

func communicationScore(a, b model.ProfileSignals) float64 {
	s := 0.6*pairAffinity(styleAffinity, a.CommunicationStyle, b.CommunicationStyle) +
		0.4*pairAffinity(conflictAffinity, a.ConflictStyle, b.ConflictStyle)
	return clampScore(s * 100)
}

func childrenAlignment(a, b string) float64 {
	a, b = strings.ToLower(a), strings.ToLower(b)
	switch {
	case a == "" || b == "":
		return 0.6
	case a == b:
		return 1.0
	case a == "open" || b == "open":
		return 0.7
	default:
		// Hard yes against hard no.
		return 0.0
	}
}

func lifeAlignmentScore(a, b model.ProfileSignals) float64 {
	s := 0.5*childrenAlignment(a.WantsChildren, b.WantsChildren) +
		0.25*similarity(a.ReligiousIntensity, b.ReligiousIntensity) +
		0.25*similarity(a.AmbitionLevel, b.AmbitionLevel)
	return clampScore(s * 100)
}

var zodiacElement = map[string]string{
	"aries": "fire", "leo": "fire", "sagittarius": "fire",
	"taurus": "earth", "virgo": "earth", "capricorn": "earth",
	"gemini": "air", "libra": "air", "aquarius": "air",
	"cancer": "water", "scorpio": "water", "pisces": "water",
}

// elementCompat follows traditional element pairing: same element is
// strongest, fire-air and earth-water are complementary.
func elementCompat(signA, signB string) float64 {
	ea, okA := zodiacElement[strings.ToLower(signA)]
	eb, okB := zodiacElement[strings.ToLower(signB)]
	if !okA || !okB {
		return 0.6
	}
	if ea == eb {
		return 1.0
	}
	pair := ea + "-" + eb
	switch pair {
	case "fire-air", "air-fire", "earth-water", "water-earth":
		return 0.8
	default:
		return 0.5
	}
}

// astrologicalScore blends element compatibility toward a neutral 60
// when neither member cares about astrology.
func astrologicalScore(a, b model.ProfileSignals) float64 {
	weight := math.Max(a.AstrologyImportance, b.AstrologyImportance)
	compat := elementCompat(a.ZodiacSign, b.ZodiacSign) * 100
	return clampScore(compat*weight + 60*(1-weight))
}
