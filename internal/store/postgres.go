package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/CodenameMaggie/introalignment-sub003/internal/config"
	"github.com/CodenameMaggie/introalignment-sub003/internal/db"
	"github.com/CodenameMaggie/introalignment-sub003/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *config.PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	// Apply pool sizing from config with sensible defaults.
	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// Pool returns the underlying database pool for subsystems that need
// direct query access.
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	for _, m := range Migrations() {
		if _, err := s.pool.Exec(ctx, m.SQL); err != nil {
			return eris.Wrapf(err, "postgres: migrate %s", m.Name)
		}
	}
	return nil
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// --- Leads ---

const leadColumns = `id, source, full_name, company, domain, signals,
	fit_score, email, email_confidence, enrichment_status, outreach_status,
	crm_id, created_at, updated_at`

func (s *PostgresStore) CreateLead(ctx context.Context, lead model.Lead) (*model.Lead, error) {
	if lead.ID == "" {
		lead.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	lead.CreatedAt = now
	lead.UpdatedAt = now
	if lead.EnrichmentStatus == "" {
		lead.EnrichmentStatus = model.EnrichmentPending
	}
	if lead.OutreachStatus == "" {
		lead.OutreachStatus = model.OutreachPending
	}

	signalsJSON, err := json.Marshal(lead.Signals)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal lead signals")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO leads (id, source, full_name, company, domain, signals,
			enrichment_status, outreach_status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		lead.ID, lead.Source, lead.FullName, lead.Company, lead.Domain, signalsJSON,
		string(lead.EnrichmentStatus), string(lead.OutreachStatus), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert lead")
	}
	return &lead, nil
}

func (s *PostgresStore) GetLead(ctx context.Context, id string) (*model.Lead, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	lead, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get lead %s", id)
	}
	return lead, nil
}

// ClaimUnscoredLeads leases up to limit leads with no fit score yet.
func (s *PostgresStore) ClaimUnscoredLeads(ctx context.Context, limit int, ttl time.Duration) ([]model.Lead, error) {
	rows, err := s.pool.Query(ctx,
		`UPDATE leads SET claimed_at = now()
		 WHERE id IN (
			SELECT id FROM leads
			WHERE fit_score IS NULL
			  AND (claimed_at IS NULL OR claimed_at < now() - ($1 * interval '1 second'))
			ORDER BY created_at
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		 )
		 RETURNING `+leadColumns,
		ttl.Seconds(), limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: claim unscored leads")
	}
	defer rows.Close()
	return scanLeads(rows)
}

func (s *PostgresStore) SetLeadFitScore(ctx context.Context, id string, score int) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE leads SET fit_score = $2, claimed_at = NULL, updated_at = now() WHERE id = $1`,
		id, score,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: set fit score for lead %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("lead not found: %s", id)
	}
	return nil
}

// ClaimEnrichableLeads leases leads that scored at or above minScore and
// have not been through enrichment yet.
func (s *PostgresStore) ClaimEnrichableLeads(ctx context.Context, minScore, limit int, ttl time.Duration) ([]model.Lead, error) {
	rows, err := s.pool.Query(ctx,
		`UPDATE leads SET claimed_at = now()
		 WHERE id IN (
			SELECT id FROM leads
			WHERE enrichment_status = 'pending'
			  AND fit_score >= $1
			  AND (claimed_at IS NULL OR claimed_at < now() - ($2 * interval '1 second'))
			ORDER BY fit_score DESC, created_at
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		 )
		 RETURNING `+leadColumns,
		minScore, ttl.Seconds(), limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: claim enrichable leads")
	}
	defer rows.Close()
	return scanLeads(rows)
}

func (s *PostgresStore) SetLeadEnrichment(ctx context.Context, id, email string, confidence float64, status model.EnrichmentStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE leads SET email = $2, email_confidence = $3, enrichment_status = $4,
			claimed_at = NULL, updated_at = now()
		 WHERE id = $1`,
		id, email, confidence, string(status),
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: set enrichment for lead %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("lead not found: %s", id)
	}
	return nil
}

func (s *PostgresStore) SetLeadOutreachStatus(ctx context.Context, id string, status model.OutreachStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE leads SET outreach_status = $2, updated_at = now() WHERE id = $1`,
		id, string(status),
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: set outreach status for lead %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("lead not found: %s", id)
	}
	return nil
}

func (s *PostgresStore) SetLeadCRMID(ctx context.Context, id, crmID string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE leads SET crm_id = $2, updated_at = now() WHERE id = $1`,
		id, crmID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: set crm id for lead %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("lead not found: %s", id)
	}
	return nil
}

// ListQualifiedLeads returns enriched leads passing the score and
// confidence thresholds, highest score first.
func (s *PostgresStore) ListQualifiedLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads
		 WHERE enrichment_status = 'enriched'
		   AND fit_score >= $1
		   AND email_confidence >= $2`
	args := []any{filter.MinFitScore, filter.MinEmailConfidence}

	if filter.UnsyncedOnly {
		query += ` AND crm_id = ''`
	}

	query += ` ORDER BY fit_score DESC, created_at LIMIT $3`
	limit := filter.Limit
	if limit <= 0 {
		limit = 1000
	}
	args = append(args, limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list qualified leads")
	}
	defer rows.Close()
	return scanLeads(rows)
}

func scanLeads(rows pgx.Rows) ([]model.Lead, error) {
	var leads []model.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan lead")
		}
		leads = append(leads, *lead)
	}
	return leads, eris.Wrap(rows.Err(), "postgres: iterate leads")
}

func scanLead(row pgx.Row) (*model.Lead, error) {
	var l model.Lead
	var signalsJSON []byte
	var enrichStatus, outreachStatus string

	if err := row.Scan(
		&l.ID, &l.Source, &l.FullName, &l.Company, &l.Domain, &signalsJSON,
		&l.FitScore, &l.Email, &l.EmailConfidence, &enrichStatus, &outreachStatus,
		&l.CRMID, &l.CreatedAt, &l.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(signalsJSON) > 0 {
		if err := json.Unmarshal(signalsJSON, &l.Signals); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal lead signals")
		}
	}
	l.EnrichmentStatus = model.EnrichmentStatus(enrichStatus)
	l.OutreachStatus = model.OutreachStatus(outreachStatus)
	return &l, nil
}

// --- Profiles ---

const profileColumns = `id, email, full_name, gender, seeking_genders, birthdate,
	city, state, active, age_min, age_max, location_scope, signals,
	created_at, updated_at`

func (s *PostgresStore) GetProfile(ctx context.Context, id string) (*model.Profile, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id)
	p, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get profile %s", id)
	}
	return p, nil
}

func (s *PostgresStore) ListActiveProfiles(ctx context.Context) ([]model.Profile, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE active ORDER BY created_at`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list active profiles")
	}
	defer rows.Close()

	var profiles []model.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan profile")
		}
		profiles = append(profiles, *p)
	}
	return profiles, eris.Wrap(rows.Err(), "postgres: iterate profiles")
}

func scanProfile(row pgx.Row) (*model.Profile, error) {
	var p model.Profile
	var signalsJSON []byte
	var scope string

	if err := row.Scan(
		&p.ID, &p.Email, &p.FullName, &p.Gender, &p.SeekingGenders, &p.Birthdate,
		&p.City, &p.State, &p.Active, &p.AgeMin, &p.AgeMax, &scope, &signalsJSON,
		&p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(signalsJSON) > 0 {
		if err := json.Unmarshal(signalsJSON, &p.Signals); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal profile signals")
		}
	}
	p.Scope = model.LocationScope(scope)
	return &p, nil
}

// --- Matches ---

const matchColumns = `id, user_lo, user_hi, psychological, intellectual,
	communication, life_alignment, astrological, overall_score, status,
	response_lo, response_hi, created_at`

// ExistingPairs returns the set of stored unordered pairs keyed "lo|hi".
func (s *PostgresStore) ExistingPairs(ctx context.Context) (map[string]bool, error) {
	rows, err := s.pool.Query(ctx, `SELECT user_lo, user_hi FROM matches`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: existing pairs")
	}
	defer rows.Close()

	pairs := make(map[string]bool)
	for rows.Next() {
		var lo, hi string
		if err := rows.Scan(&lo, &hi); err != nil {
			return nil, eris.Wrap(err, "postgres: scan pair")
		}
		pairs[lo+"|"+hi] = true
	}
	return pairs, eris.Wrap(rows.Err(), "postgres: iterate pairs")
}

// InsertMatches bulk-inserts candidate matches, ignoring pairs that
// already exist. Returns the number of rows written.
func (s *PostgresStore) InsertMatches(ctx context.Context, matches []model.Match) (int64, error) {
	if len(matches) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	rows := make([][]any, len(matches))
	for i, m := range matches {
		id := m.ID
		if id == "" {
			id = uuid.New().String()
		}
		rows[i] = []any{
			id, m.UserLo, m.UserHi,
			m.Scores.Psychological, m.Scores.Intellectual, m.Scores.Communication,
			m.Scores.LifeAlignment, m.Scores.Astrological,
			m.OverallScore, string(model.MatchPending), now,
		}
	}

	return db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table: "matches",
		Columns: []string{
			"id", "user_lo", "user_hi",
			"psychological", "intellectual", "communication",
			"life_alignment", "astrological",
			"overall_score", "status", "created_at",
		},
		ConflictKeys: []string{"user_lo", "user_hi"},
		DoNothing:    true,
	}, rows)
}

func (s *PostgresStore) GetMatch(ctx context.Context, id string) (*model.Match, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE id = $1`, id)
	m, err := scanMatch(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get match %s", id)
	}
	return m, nil
}

// SetMatchResponse records one side's response. The userID must be one
// of the pair; otherwise no row is updated and an error is returned.
// Responses on connected or declined matches are left untouched, so a
// terminal row is fully immutable while repeated identical calls stay
// no-ops rather than errors.
func (s *PostgresStore) SetMatchResponse(ctx context.Context, matchID, userID string, resp model.MatchResponse) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE matches SET
			response_lo = CASE WHEN user_lo = $2 AND status NOT IN ('connected', 'declined') THEN $3 ELSE response_lo END,
			response_hi = CASE WHEN user_hi = $2 AND status NOT IN ('connected', 'declined') THEN $3 ELSE response_hi END
		 WHERE id = $1 AND (user_lo = $2 OR user_hi = $2)`,
		matchID, userID, string(resp),
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: set response for match %s", matchID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("match %s has no participant %s", matchID, userID)
	}
	return nil
}

func (s *PostgresStore) DeclineMatch(ctx context.Context, matchID string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE matches SET status = 'declined'
		 WHERE id = $1 AND status NOT IN ('connected', 'declined')`,
		matchID,
	)
	return eris.Wrapf(err, "postgres: decline match %s", matchID)
}

// ConnectIfMutual transitions the match to connected when both sides
// responded interested. The conditional update makes the transition
// happen exactly once; repeated calls are no-ops. Returns whether this
// call performed the transition.
func (s *PostgresStore) ConnectIfMutual(ctx context.Context, matchID string) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE matches SET status = 'connected'
		 WHERE id = $1 AND status NOT IN ('connected', 'declined')
		   AND response_lo = 'interested' AND response_hi = 'interested'`,
		matchID,
	)
	if err != nil {
		return false, eris.Wrapf(err, "postgres: connect match %s", matchID)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) MarkMatchIntroduced(ctx context.Context, matchID string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE matches SET status = 'introduced' WHERE id = $1 AND status = 'pending'`,
		matchID,
	)
	return eris.Wrapf(err, "postgres: mark match introduced %s", matchID)
}

func (s *PostgresStore) ListMatchesWithoutReports(ctx context.Context, limit int) ([]model.Match, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+matchColumns+` FROM matches m
		 WHERE NOT EXISTS (
			SELECT 1 FROM introduction_reports r WHERE r.match_id = m.id
		 )
		 ORDER BY m.created_at
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list matches without reports")
	}
	defer rows.Close()

	var matches []model.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan match")
		}
		matches = append(matches, *m)
	}
	return matches, eris.Wrap(rows.Err(), "postgres: iterate matches")
}

func scanMatch(row pgx.Row) (*model.Match, error) {
	var m model.Match
	var status, respLo, respHi string

	if err := row.Scan(
		&m.ID, &m.UserLo, &m.UserHi,
		&m.Scores.Psychological, &m.Scores.Intellectual, &m.Scores.Communication,
		&m.Scores.LifeAlignment, &m.Scores.Astrological,
		&m.OverallScore, &status, &respLo, &respHi, &m.CreatedAt,
	); err != nil {
		return nil, err
	}
	m.Status = model.MatchStatus(status)
	m.ResponseLo = model.MatchResponse(respLo)
	m.ResponseHi = model.MatchResponse(respHi)
	return &m, nil
}

// --- Introduction reports ---

func (s *PostgresStore) ReportExists(ctx context.Context, matchID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM introduction_reports WHERE match_id = $1)`,
		matchID,
	).Scan(&exists)
	if err != nil {
		return false, eris.Wrap(err, "postgres: check report exists")
	}
	return exists, nil
}

func (s *PostgresStore) InsertReport(ctx context.Context, r model.IntroductionReport) (*model.IntroductionReport, error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	r.CreatedAt = time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO introduction_reports
			(id, match_id, kind, summary, narrative, conversation_starters, challenges, model, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		r.ID, r.MatchID, string(r.Kind), r.Summary, r.Narrative,
		r.ConversationStarters, r.Challenges, r.Model, r.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: insert report for match %s", r.MatchID)
	}
	return &r, nil
}

// --- Outreach ---

const enrollmentColumns = `id, lead_id, sequence, step, status, next_send_at, created_at`

// CreateEnrollment enrolls a lead at step 0. The partial unique index on
// active enrollments makes this idempotent: a second call returns the
// existing active enrollment with created=false.
func (s *PostgresStore) CreateEnrollment(ctx context.Context, leadID, sequence string, nextSendAt time.Time) (*model.Enrollment, bool, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	var gotID string
	err := s.pool.QueryRow(ctx,
		`INSERT INTO email_enrollments (id, lead_id, sequence, step, status, next_send_at, created_at)
		 VALUES ($1, $2, $3, 0, 'active', $4, $5)
		 ON CONFLICT (lead_id) WHERE status = 'active' DO NOTHING
		 RETURNING id`,
		id, leadID, sequence, nextSendAt, now,
	).Scan(&gotID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			existing, lookupErr := s.GetActiveEnrollment(ctx, leadID)
			if lookupErr != nil {
				return nil, false, lookupErr
			}
			if existing == nil {
				return nil, false, eris.Errorf("enrollment conflict for lead %s but no active row", leadID)
			}
			return existing, false, nil
		}
		return nil, false, eris.Wrapf(err, "postgres: enroll lead %s", leadID)
	}

	return &model.Enrollment{
		ID:         gotID,
		LeadID:     leadID,
		Sequence:   sequence,
		Step:       0,
		Status:     model.EnrollmentActive,
		NextSendAt: nextSendAt,
		CreatedAt:  now,
	}, true, nil
}

func (s *PostgresStore) GetActiveEnrollment(ctx context.Context, leadID string) (*model.Enrollment, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+enrollmentColumns+` FROM email_enrollments
		 WHERE lead_id = $1 AND status = 'active'`,
		leadID,
	)
	e, err := scanEnrollment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get active enrollment for lead %s", leadID)
	}
	return e, nil
}

// ClaimDueEnrollments leases active enrollments whose next send time has elapsed.
func (s *PostgresStore) ClaimDueEnrollments(ctx context.Context, limit int, ttl time.Duration) ([]model.Enrollment, error) {
	rows, err := s.pool.Query(ctx,
		`UPDATE email_enrollments SET claimed_at = now()
		 WHERE id IN (
			SELECT id FROM email_enrollments
			WHERE status = 'active'
			  AND next_send_at <= now()
			  AND (claimed_at IS NULL OR claimed_at < now() - ($1 * interval '1 second'))
			ORDER BY next_send_at
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		 )
		 RETURNING `+enrollmentColumns,
		ttl.Seconds(), limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: claim due enrollments")
	}
	defer rows.Close()

	var enrollments []model.Enrollment
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan enrollment")
		}
		enrollments = append(enrollments, *e)
	}
	return enrollments, eris.Wrap(rows.Err(), "postgres: iterate enrollments")
}

func (s *PostgresStore) AdvanceEnrollment(ctx context.Context, id string, step int, nextSendAt time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE email_enrollments SET step = $2, next_send_at = $3, claimed_at = NULL
		 WHERE id = $1 AND status = 'active'`,
		id, step, nextSendAt,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: advance enrollment %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("active enrollment not found: %s", id)
	}
	return nil
}

func (s *PostgresStore) FinishEnrollment(ctx context.Context, id string, status model.EnrollmentStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE email_enrollments SET status = $2, claimed_at = NULL
		 WHERE id = $1 AND status = 'active'`,
		id, string(status),
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: finish enrollment %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("active enrollment not found: %s", id)
	}
	return nil
}

const sendColumns = `id, enrollment_id, step, subject, sent_at,
	open_count, click_count, last_opened_at, last_clicked_at`

func (s *PostgresStore) InsertEmailSend(ctx context.Context, send model.EmailSend) (*model.EmailSend, error) {
	if send.ID == "" {
		send.ID = uuid.New().String()
	}
	if send.SentAt.IsZero() {
		send.SentAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO email_sends (id, enrollment_id, step, subject, sent_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		send.ID, send.EnrollmentID, send.Step, send.Subject, send.SentAt,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: insert send for enrollment %s", send.EnrollmentID)
	}
	return &send, nil
}

// LatestSend returns the most recent send for an enrollment, or nil.
func (s *PostgresStore) LatestSend(ctx context.Context, enrollmentID string) (*model.EmailSend, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+sendColumns+` FROM email_sends
		 WHERE enrollment_id = $1
		 ORDER BY sent_at DESC LIMIT 1`,
		enrollmentID,
	)
	var e model.EmailSend
	if err := row.Scan(
		&e.ID, &e.EnrollmentID, &e.Step, &e.Subject, &e.SentAt,
		&e.OpenCount, &e.ClickCount, &e.LastOpenedAt, &e.LastClickedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: latest send for enrollment %s", enrollmentID)
	}
	return &e, nil
}

func (s *PostgresStore) IncrementOpen(ctx context.Context, sendID string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE email_sends SET open_count = open_count + 1, last_opened_at = now() WHERE id = $1`,
		sendID,
	)
	return eris.Wrapf(err, "postgres: increment open %s", sendID)
}

func (s *PostgresStore) IncrementClick(ctx context.Context, sendID string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE email_sends SET click_count = click_count + 1, last_clicked_at = now() WHERE id = $1`,
		sendID,
	)
	return eris.Wrapf(err, "postgres: increment click %s", sendID)
}

func scanEnrollment(row pgx.Row) (*model.Enrollment, error) {
	var e model.Enrollment
	var status string
	if err := row.Scan(
		&e.ID, &e.LeadID, &e.Sequence, &e.Step, &status, &e.NextSendAt, &e.CreatedAt,
	); err != nil {
		return nil, err
	}
	e.Status = model.EnrollmentStatus(status)
	return &e, nil
}
