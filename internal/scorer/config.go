// Package scorer computes lead fit scores from static field weights.
package scorer

import (
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/CodenameMaggie/introalignment-sub003/internal/config"
)

// DefaultConfig returns a config.ScorerConfig with sensible defaults.
// Weights sum to 100.
func DefaultConfig() config.ScorerConfig {
	return config.ScorerConfig{
		// Weights (sum = 100).
		SourceWeight:         30,
		EngagementWeight:     30,
		FirmographicWeight:   25,
		ContactabilityWeight: 15,

		// Source quality on a 0-1 scale.
		SourceQuality: map[string]float64{
			"referral":  1.0,
			"webinar":   0.8,
			"directory": 0.5,
			"scrape":    0.3,
		},

		// Target practice areas for the referral pipeline.
		TargetPractices: []string{"family", "estate", "immigration"},
		MinFirmSize:     1,
		MaxFirmSize:     50,
	}
}

// WeightSum returns the sum of all component weights.
func WeightSum(c config.ScorerConfig) float64 {
	return c.SourceWeight + c.EngagementWeight +
		c.FirmographicWeight + c.ContactabilityWeight
}

// ValidateConfig checks that a ScorerConfig is internally consistent.
func ValidateConfig(c config.ScorerConfig) error {
	var errs []string

	weights := map[string]float64{
		"source_weight":         c.SourceWeight,
		"engagement_weight":     c.EngagementWeight,
		"firmographic_weight":   c.FirmographicWeight,
		"contactability_weight": c.ContactabilityWeight,
	}
	for name, w := range weights {
		if w < 0 {
			errs = append(errs, fmt.Sprintf("%s must be >= 0", name))
		}
	}

	sum := WeightSum(c)
	if sum <= 0 {
		errs = append(errs, "weight sum must be > 0")
	}
	// Allow tolerance for floating-point.
	if math.Abs(sum-100) > 1 {
		errs = append(errs, fmt.Sprintf("weights should sum to 100, got %.1f", sum))
	}

	for source, q := range c.SourceQuality {
		if q < 0 || q > 1 {
			errs = append(errs, fmt.Sprintf("source_quality[%s] must be between 0 and 1", source))
		}
	}

	if c.MinFirmSize < 0 {
		errs = append(errs, "min_firm_size must be >= 0")
	}
	if c.MaxFirmSize > 0 && c.MaxFirmSize < c.MinFirmSize {
		errs = append(errs, "max_firm_size must be >= min_firm_size")
	}

	if len(errs) > 0 {
		return eris.Errorf("scorer: config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
