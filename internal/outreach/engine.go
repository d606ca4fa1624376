package outreach

import (
	"bytes"
	"context"
	"html/template"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/CodenameMaggie/introalignment-sub003/internal/config"
	"github.com/CodenameMaggie/introalignment-sub003/internal/mail"
	"github.com/CodenameMaggie/introalignment-sub003/internal/metrics"
	"github.com/CodenameMaggie/introalignment-sub003/internal/model"
)

// Store is the subset of the store the outreach engine needs.
type Store interface {
	GetLead(ctx context.Context, id string) (*model.Lead, error)
	SetLeadOutreachStatus(ctx context.Context, id string, status model.OutreachStatus) error
	CreateEnrollment(ctx context.Context, leadID, sequence string, nextSendAt time.Time) (*model.Enrollment, bool, error)
	ClaimDueEnrollments(ctx context.Context, limit int, ttl time.Duration) ([]model.Enrollment, error)
	AdvanceEnrollment(ctx context.Context, id string, step int, nextSendAt time.Time) error
	FinishEnrollment(ctx context.Context, id string, status model.EnrollmentStatus) error
	InsertEmailSend(ctx context.Context, send model.EmailSend) (*model.EmailSend, error)
	LatestSend(ctx context.Context, enrollmentID string) (*model.EmailSend, error)
}

var (
	ErrDisabled     = eris.New("outreach is disabled")
	ErrLeadNotFound = eris.New("lead not found")
	ErrNoEmail      = eris.New("lead has no email")
)

// Engine enrolls qualified leads into an email sequence and processes
// due sends.
type Engine struct {
	store  Store
	sender mail.Sender
	seq    *Sequence
	cfg    config.OutreachConfig
}

func NewEngine(store Store, sender mail.Sender, seq *Sequence, cfg config.OutreachConfig) *Engine {
	return &Engine{store: store, sender: sender, seq: seq, cfg: cfg}
}

// EnrollLead puts a lead into the sequence at step 0. Idempotent: a
// lead with an active enrollment is not enrolled twice; the call
// reports created=false and succeeds.
func (e *Engine) EnrollLead(ctx context.Context, leadID string) (bool, error) {
	if !e.cfg.Enabled {
		return false, ErrDisabled
	}

	lead, err := e.store.GetLead(ctx, leadID)
	if err != nil {
		return false, err
	}
	if lead == nil {
		return false, eris.Wrapf(ErrLeadNotFound, "outreach: lead %s", leadID)
	}
	if lead.Email == "" {
		return false, eris.Wrapf(ErrNoEmail, "outreach: lead %s", leadID)
	}
	if lead.OutreachStatus == model.OutreachStopped {
		return false, nil
	}

	_, created, err := e.store.CreateEnrollment(ctx, leadID, e.seq.Name, time.Now().UTC())
	if err != nil {
		return false, eris.Wrapf(err, "outreach: enroll lead %s", leadID)
	}
	if created {
		if err := e.store.SetLeadOutreachStatus(ctx, leadID, model.OutreachEnrolled); err != nil {
			return true, err
		}
		zap.L().Info("outreach: lead enrolled",
			zap.String("lead_id", leadID),
			zap.String("sequence", e.seq.Name),
		)
	}
	return created, nil
}

// ProcessPending claims due enrollments and sends the next step of
// each. Per-enrollment errors are collected; the run continues. Returns
// the number of emails sent and the collected errors.
func (e *Engine) ProcessPending(ctx context.Context, limit int) (int, []error) {
	if !e.cfg.Enabled {
		return 0, []error{ErrDisabled}
	}

	enrollments, err := e.store.ClaimDueEnrollments(ctx, limit, e.cfg.ClaimTTL)
	if err != nil {
		return 0, []error{eris.Wrap(err, "outreach: claim due enrollments")}
	}

	var errs []error
	sent := 0
	for _, enr := range enrollments {
		if ctx.Err() != nil {
			errs = append(errs, eris.Wrap(ctx.Err(), "outreach: batch interrupted"))
			break
		}
		didSend, err := e.processOne(ctx, enr)
		if err != nil {
			zap.L().Warn("outreach: send failed",
				zap.String("enrollment_id", enr.ID),
				zap.String("lead_id", enr.LeadID),
				zap.Error(err),
			)
			errs = append(errs, err)
			continue
		}
		if didSend {
			sent++
		}
	}

	zap.L().Info("outreach: batch complete",
		zap.Int("claimed", len(enrollments)),
		zap.Int("sent", sent),
		zap.Int("errors", len(errs)),
	)
	return sent, errs
}

func (e *Engine) processOne(ctx context.Context, enr model.Enrollment) (bool, error) {
	lead, err := e.store.GetLead(ctx, enr.LeadID)
	if err != nil {
		return false, err
	}
	if lead == nil || lead.Email == "" || lead.OutreachStatus == model.OutreachStopped {
		return false, e.store.FinishEnrollment(ctx, enr.ID, model.EnrollmentStopped)
	}
	if enr.Step >= len(e.seq.Steps) {
		return false, e.store.FinishEnrollment(ctx, enr.ID, model.EnrollmentCompleted)
	}

	// Guard against re-sending a step when a prior run crashed between
	// the send and the advance.
	latest, err := e.store.LatestSend(ctx, enr.ID)
	if err != nil {
		return false, err
	}
	if latest != nil && latest.Step == enr.Step {
		return false, e.advance(ctx, enr)
	}

	step := e.seq.Steps[enr.Step]
	sendID := uuid.New().String()
	body, err := e.renderStep(step, *lead, enr.ID)
	if err != nil {
		return false, err
	}

	if err := e.sender.Send(mail.Message{
		To:      lead.Email,
		From:    e.cfg.FromAddress,
		Subject: renderSubject(step.Subject, *lead),
		HTML:    body,
	}); err != nil {
		return false, err
	}

	if _, err := e.store.InsertEmailSend(ctx, model.EmailSend{
		ID:           sendID,
		EnrollmentID: enr.ID,
		Step:         enr.Step,
		Subject:      renderSubject(step.Subject, *lead),
	}); err != nil {
		return true, err
	}
	metrics.OutreachSends.Inc()

	return true, e.advance(ctx, enr)
}

func (e *Engine) advance(ctx context.Context, enr model.Enrollment) error {
	next := enr.Step + 1
	if next >= len(e.seq.Steps) {
		return e.store.FinishEnrollment(ctx, enr.ID, model.EnrollmentCompleted)
	}
	wait := time.Duration(e.seq.Steps[enr.Step].WaitDays) * 24 * time.Hour
	return e.store.AdvanceEnrollment(ctx, enr.ID, next, time.Now().UTC().Add(wait))
}

// stepData is the template context for a sequence step.
type stepData struct {
	FirstName    string
	FullName     string
	Company      string
	OpenPixelURL string
	ClickURL     string
}

// renderStep renders a step body. Tracking URLs carry the enrollment id;
// the handlers resolve it to the latest send at click/open time.
func (e *Engine) renderStep(step Step, lead model.Lead, enrollmentID string) (string, error) {
	tmpl, err := template.New("step").Parse(step.Template)
	if err != nil {
		return "", eris.Wrap(err, "outreach: parse step template")
	}

	base := strings.TrimRight(e.cfg.BaseURL, "/")
	data := stepData{
		FirstName:    firstName(lead.FullName),
		FullName:     lead.FullName,
		Company:      lead.Company,
		OpenPixelURL: base + "/track/open?eid=" + url.QueryEscape(enrollmentID),
		ClickURL:     base + "/track/click?eid=" + url.QueryEscape(enrollmentID) + "&url=" + url.QueryEscape(base+"/referrals"),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", eris.Wrap(err, "outreach: render step template")
	}
	return buf.String(), nil
}

func renderSubject(subject string, lead model.Lead) string {
	subject = strings.ReplaceAll(subject, "{{.Company}}", lead.Company)
	subject = strings.ReplaceAll(subject, "{{.FirstName}}", firstName(lead.FullName))
	return subject
}

func firstName(fullName string) string {
	parts := strings.Fields(fullName)
	if len(parts) == 0 {
		return "there"
	}
	return parts[0]
}
