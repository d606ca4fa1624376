package store

const schemaProfiles = `
CREATE TABLE IF NOT EXISTS profiles (
	id TEXT PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	full_name TEXT NOT NULL,
	gender TEXT NOT NULL,
	seeking_genders TEXT[] NOT NULL DEFAULT '{}',
	birthdate DATE NOT NULL,
	city TEXT NOT NULL DEFAULT '',
	state TEXT NOT NULL DEFAULT '',
	active BOOLEAN NOT NULL DEFAULT true,
	age_min INTEGER NOT NULL DEFAULT 18,
	age_max INTEGER NOT NULL DEFAULT 99,
	location_scope TEXT NOT NULL DEFAULT 'any',
	signals JSONB NOT NULL DEFAULT '{}',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_profiles_active ON profiles(active);
`

const schemaLeads = `
CREATE TABLE IF NOT EXISTS leads (
	id TEXT PRIMARY KEY,
	source TEXT NOT NULL,
	full_name TEXT NOT NULL DEFAULT '',
	company TEXT NOT NULL DEFAULT '',
	domain TEXT NOT NULL DEFAULT '',
	signals JSONB NOT NULL DEFAULT '{}',
	fit_score INTEGER,
	email TEXT NOT NULL DEFAULT '',
	email_confidence DOUBLE PRECISION,
	enrichment_status TEXT NOT NULL DEFAULT 'pending',
	outreach_status TEXT NOT NULL DEFAULT 'pending',
	crm_id TEXT NOT NULL DEFAULT '',
	claimed_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_leads_unscored ON leads(created_at) WHERE fit_score IS NULL;
CREATE INDEX IF NOT EXISTS idx_leads_enrichment ON leads(enrichment_status, fit_score DESC);
`

const schemaMatches = `
CREATE TABLE IF NOT EXISTS matches (
	id TEXT PRIMARY KEY,
	user_lo TEXT NOT NULL REFERENCES profiles(id),
	user_hi TEXT NOT NULL REFERENCES profiles(id),
	psychological DOUBLE PRECISION NOT NULL,
	intellectual DOUBLE PRECISION NOT NULL,
	communication DOUBLE PRECISION NOT NULL,
	life_alignment DOUBLE PRECISION NOT NULL,
	astrological DOUBLE PRECISION NOT NULL,
	overall_score DOUBLE PRECISION NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending',
	response_lo TEXT NOT NULL DEFAULT '',
	response_hi TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT matches_pair_order CHECK (user_lo < user_hi),
	CONSTRAINT matches_pair_unique UNIQUE (user_lo, user_hi)
);
CREATE INDEX IF NOT EXISTS idx_matches_status ON matches(status);
`

const schemaReports = `
CREATE TABLE IF NOT EXISTS introduction_reports (
	id TEXT PRIMARY KEY,
	match_id TEXT NOT NULL UNIQUE REFERENCES matches(id),
	kind TEXT NOT NULL,
	summary TEXT NOT NULL DEFAULT '',
	narrative TEXT NOT NULL DEFAULT '',
	conversation_starters TEXT[] NOT NULL DEFAULT '{}',
	challenges TEXT NOT NULL DEFAULT '',
	model TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

const schemaOutreach = `
CREATE TABLE IF NOT EXISTS email_enrollments (
	id TEXT PRIMARY KEY,
	lead_id TEXT NOT NULL REFERENCES leads(id),
	sequence TEXT NOT NULL,
	step INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL DEFAULT 'active',
	next_send_at TIMESTAMPTZ NOT NULL,
	claimed_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_enrollments_active_lead
	ON email_enrollments(lead_id) WHERE status = 'active';
CREATE INDEX IF NOT EXISTS idx_enrollments_due
	ON email_enrollments(next_send_at) WHERE status = 'active';

CREATE TABLE IF NOT EXISTS email_sends (
	id TEXT PRIMARY KEY,
	enrollment_id TEXT NOT NULL REFERENCES email_enrollments(id),
	step INTEGER NOT NULL,
	subject TEXT NOT NULL,
	sent_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	open_count INTEGER NOT NULL DEFAULT 0,
	click_count INTEGER NOT NULL DEFAULT 0,
	last_opened_at TIMESTAMPTZ,
	last_clicked_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_sends_enrollment ON email_sends(enrollment_id, sent_at DESC);
`

// Migrations returns the schema migrations in apply order. Every
// statement is idempotent so the full list can run on each startup.
func Migrations() []Migration {
	return []Migration{
		{Name: "001_profiles", SQL: schemaProfiles},
		{Name: "002_leads", SQL: schemaLeads},
		{Name: "003_matches", SQL: schemaMatches},
		{Name: "004_introduction_reports", SQL: schemaReports},
		{Name: "005_outreach", SQL: schemaOutreach},
	}
}
