package model

import "time"

// MatchStatus is the lifecycle state of a match.
// connected and declined are terminal.
type MatchStatus string

const (
	MatchPending    MatchStatus = "pending"
	MatchIntroduced MatchStatus = "introduced"
	MatchConnected  MatchStatus = "connected"
	MatchDeclined   MatchStatus = "declined"
)

// MatchResponse is one side's answer to an introduction.
type MatchResponse string

const (
	ResponseInterested MatchResponse = "interested"
	ResponseDeclined   MatchResponse = "declined"
)

// CategoryScores holds the five compatibility sub-scores, each 0-100.
type CategoryScores struct {
	Psychological float64 `json:"psychological"`
	Intellectual  float64 `json:"intellectual"`
	Communication float64 `json:"communication"`
	LifeAlignment float64 `json:"lifeAlignment"`
	Astrological  float64 `json:"astrological"`
}

// Match pairs two members with their compatibility scores. The pair is
// stored canonically with UserLo < UserHi so an unordered pair maps to
// exactly one row.
type Match struct {
	ID           string         `json:"id"`
	UserLo       string         `json:"user_lo"`
	UserHi       string         `json:"user_hi"`
	Scores       CategoryScores `json:"scores"`
	OverallScore float64        `json:"overall_score"`
	Status       MatchStatus    `json:"status"`
	ResponseLo   MatchResponse  `json:"response_lo,omitempty"`
	ResponseHi   MatchResponse  `json:"response_hi,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// Involves reports whether userID is one of the match's two sides.
func (m Match) Involves(userID string) bool {
	return m.UserLo == userID || m.UserHi == userID
}

// PairKey returns the canonical (lo, hi) ordering for an unordered user pair.
func PairKey(a, b string) (string, string) {
	if a < b {
		return a, b
	}
	return b, a
}
