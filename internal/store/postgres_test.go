package store

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodenameMaggie/introalignment-sub003/internal/model"
)

func newMockStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return &PostgresStore{pool: mock}, mock
}

func leadRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "source", "full_name", "company", "domain", "signals",
		"fit_score", "email", "email_confidence", "enrichment_status",
		"outreach_status", "crm_id", "created_at", "updated_at",
	})
}

func TestGetLead(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()
	score := 82
	conf := 0.95

	mock.ExpectQuery(`SELECT .* FROM leads WHERE id = \$1`).
		WithArgs("lead-1").
		WillReturnRows(leadRows().AddRow(
			"lead-1", "referral", "Dana Whitfield", "Whitfield Law", "whitfieldlaw.com",
			[]byte(`{"practice_areas":["family"],"replied_before":true}`),
			&score, "dana@whitfieldlaw.com", &conf, "enriched",
			"pending", "", now, now,
		))

	lead, err := store.GetLead(context.Background(), "lead-1")
	require.NoError(t, err)
	require.NotNil(t, lead)
	assert.Equal(t, "Dana Whitfield", lead.FullName)
	assert.Equal(t, 82, *lead.FitScore)
	assert.True(t, lead.Signals.RepliedBefore)
	assert.Equal(t, model.EnrichmentEnriched, lead.EnrichmentStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetLeadNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT .* FROM leads WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(leadRows())

	lead, err := store.GetLead(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, lead)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimUnscoredLeads(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`UPDATE leads SET claimed_at = now\(\)`).
		WithArgs(600.0, 50).
		WillReturnRows(leadRows().
			AddRow("a", "webinar", "A", "", "", []byte(`{}`),
				nil, "", nil, "pending", "pending", "", now, now).
			AddRow("b", "referral", "B", "", "", []byte(`{}`),
				nil, "", nil, "pending", "pending", "", now, now))

	leads, err := store.ClaimUnscoredLeads(context.Background(), 50, 10*time.Minute)
	require.NoError(t, err)
	require.Len(t, leads, 2)
	assert.Nil(t, leads[0].FitScore)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetLeadFitScore(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`UPDATE leads SET fit_score = \$2`).
		WithArgs("lead-1", 75).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, store.SetLeadFitScore(context.Background(), "lead-1", 75))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetLeadFitScoreNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`UPDATE leads SET fit_score = \$2`).
		WithArgs("missing", 75).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := store.SetLeadFitScore(context.Background(), "missing", 75)
	assert.ErrorContains(t, err, "lead not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListQualifiedLeadsUnsyncedOnly(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()
	score := 90
	conf := 0.97

	mock.ExpectQuery(`SELECT .* FROM leads\s+WHERE enrichment_status = 'enriched'.*AND crm_id = ''`).
		WithArgs(60, 0.4, 25).
		WillReturnRows(leadRows().AddRow(
			"lead-9", "referral", "Pat Q", "Q Legal", "qlegal.com", []byte(`{}`),
			&score, "pat@qlegal.com", &conf, "enriched", "enrolled", "", now, now,
		))

	leads, err := store.ListQualifiedLeads(context.Background(), LeadFilter{
		MinFitScore:        60,
		MinEmailConfidence: 0.4,
		UnsyncedOnly:       true,
		Limit:              25,
	})
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, "pat@qlegal.com", leads[0].Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetMatchResponse(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`UPDATE matches SET\s+response_lo = CASE WHEN user_lo = \$2 AND status NOT IN \('connected', 'declined'\)`).
		WithArgs("match-1", "user-a", "interested").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := store.SetMatchResponse(context.Background(), "match-1", "user-a", model.ResponseInterested)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetMatchResponseNotParticipant(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`UPDATE matches SET\s+response_lo = CASE`).
		WithArgs("match-1", "stranger", "interested").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := store.SetMatchResponse(context.Background(), "match-1", "stranger", model.ResponseInterested)
	assert.ErrorContains(t, err, "no participant")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConnectIfMutual(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`UPDATE matches SET status = 'connected'`).
		WithArgs("match-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	connected, err := store.ConnectIfMutual(context.Background(), "match-1")
	require.NoError(t, err)
	assert.True(t, connected)

	// Second call finds the match already connected and is a no-op.
	mock.ExpectExec(`UPDATE matches SET status = 'connected'`).
		WithArgs("match-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	connected, err = store.ConnectIfMutual(context.Background(), "match-1")
	require.NoError(t, err)
	assert.False(t, connected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExistingPairs(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT user_lo, user_hi FROM matches`).
		WillReturnRows(pgxmock.NewRows([]string{"user_lo", "user_hi"}).
			AddRow("a", "b").
			AddRow("b", "c"))

	pairs, err := store.ExistingPairs(context.Background())
	require.NoError(t, err)
	assert.True(t, pairs["a|b"])
	assert.True(t, pairs["b|c"])
	assert.False(t, pairs["a|c"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateEnrollment(t *testing.T) {
	store, mock := newMockStore(t)
	next := time.Now().UTC().Add(time.Hour)

	mock.ExpectQuery(`INSERT INTO email_enrollments`).
		WithArgs(pgxmock.AnyArg(), "lead-1", "attorney-intro", next, pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("enr-1"))

	enr, created, err := store.CreateEnrollment(context.Background(), "lead-1", "attorney-intro", next)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "enr-1", enr.ID)
	assert.Equal(t, 0, enr.Step)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateEnrollmentAlreadyActive(t *testing.T) {
	store, mock := newMockStore(t)
	next := time.Now().UTC().Add(time.Hour)
	now := time.Now().UTC()

	// Conflict with the active partial index returns no row, and the
	// existing enrollment is fetched instead.
	mock.ExpectQuery(`INSERT INTO email_enrollments`).
		WithArgs(pgxmock.AnyArg(), "lead-1", "attorney-intro", next, pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`SELECT .* FROM email_enrollments\s+WHERE lead_id = \$1 AND status = 'active'`).
		WithArgs("lead-1").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "lead_id", "sequence", "step", "status", "next_send_at", "created_at",
		}).AddRow("enr-old", "lead-1", "attorney-intro", 2, "active", next, now))

	enr, created, err := store.CreateEnrollment(context.Background(), "lead-1", "attorney-intro", next)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "enr-old", enr.ID)
	assert.Equal(t, 2, enr.Step)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimDueEnrollments(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`UPDATE email_enrollments SET claimed_at = now\(\)`).
		WithArgs(600.0, 20).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "lead_id", "sequence", "step", "status", "next_send_at", "created_at",
		}).AddRow("enr-1", "lead-1", "attorney-intro", 1, "active", now, now))

	enrollments, err := store.ClaimDueEnrollments(context.Background(), 20, 10*time.Minute)
	require.NoError(t, err)
	require.Len(t, enrollments, 1)
	assert.Equal(t, 1, enrollments[0].Step)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLatestSendNone(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT .* FROM email_sends`).
		WithArgs("enr-1").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "enrollment_id", "step", "subject", "sent_at",
			"open_count", "click_count", "last_opened_at", "last_clicked_at",
		}))

	send, err := store.LatestSend(context.Background(), "enr-1")
	require.NoError(t, err)
	assert.Nil(t, send)
	assert.NoError(t, mock.ExpectationsWereMet())
}
