package model

import "time"

// ReportKind distinguishes AI-written reports from static placeholders.
type ReportKind string

const (
	ReportPlaceholder ReportKind = "placeholder"
	ReportGenerated   ReportKind = "generated"
)

// IntroductionReport is the narrative attached 1:1 to a match.
// Rows are immutable after creation.
type IntroductionReport struct {
	ID                   string     `json:"id"`
	MatchID              string     `json:"match_id"`
	Kind                 ReportKind `json:"kind"`
	Summary              string     `json:"summary"`
	Narrative            string     `json:"narrative"`
	ConversationStarters []string   `json:"conversation_starters"`
	Challenges           string     `json:"challenges"`
	Model                string     `json:"model,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
}
