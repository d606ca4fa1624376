package model

import "time"

// EnrollmentStatus is the lifecycle state of an email sequence enrollment.
type EnrollmentStatus string

const (
	EnrollmentActive    EnrollmentStatus = "active"
	EnrollmentCompleted EnrollmentStatus = "completed"
	EnrollmentStopped   EnrollmentStatus = "stopped"
)

// Enrollment tracks one lead's progress through an email sequence.
// At most one active enrollment exists per lead.
type Enrollment struct {
	ID         string           `json:"id"`
	LeadID     string           `json:"lead_id"`
	Sequence   string           `json:"sequence"`
	Step       int              `json:"step"`
	Status     EnrollmentStatus `json:"status"`
	NextSendAt time.Time        `json:"next_send_at"`
	CreatedAt  time.Time        `json:"created_at"`
}

// EmailSend records a single sequence email with its tracking counters.
// Counters are bumped last-write-wins by the tracking endpoints.
type EmailSend struct {
	ID            string     `json:"id"`
	EnrollmentID  string     `json:"enrollment_id"`
	Step          int        `json:"step"`
	Subject       string     `json:"subject"`
	SentAt        time.Time  `json:"sent_at"`
	OpenCount     int        `json:"open_count"`
	ClickCount    int        `json:"click_count"`
	LastOpenedAt  *time.Time `json:"last_opened_at,omitempty"`
	LastClickedAt *time.Time `json:"last_clicked_at,omitempty"`
}
