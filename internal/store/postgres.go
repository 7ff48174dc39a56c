package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/stealthscout/scout-cli/internal/db"
	"github.com/stealthscout/scout-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection. Both
// category tables get their own variant of the hot profile lookups.
func preparedStatements() map[string]string {
	stmts := map[string]string{
		"insert_status_transition": `INSERT INTO status_transitions
			(id, profile_id, linkedin_url, old_status, new_status, status_confidence, experience_changes, prev_role, curr_role, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		"append_status_example": `INSERT INTO status_examples (id, headline, recent_experience, assigned_status, created_at) VALUES ($1, $2, $3, $4, $5)`,
	}
	for _, cat := range []model.EntityCategory{model.CategoryStealthFounder, model.CategoryCurrentEmployee} {
		stmts["get_profile_"+string(cat)] = fmt.Sprintf(
			`SELECT %s FROM %s WHERE linkedin_url = $1 AND %s = $2`,
			profileColumns(cat), cat.Table(), cat.CompanyColumn())
		stmts["list_company_profiles_"+string(cat)] = fmt.Sprintf(
			`SELECT linkedin_url FROM %s WHERE %s = $1 ORDER BY linkedin_url`,
			cat.Table(), cat.CompanyColumn())
	}
	return stmts
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

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

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements() {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

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

// NewPostgresWithPool wraps an existing pool. Used by tests with pgxmock.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Pool returns the underlying database pool.
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

// profileTableDDL renders the schema for one category table. The company
// and role column names differ per category, everything else is shared.
func profileTableDDL(cat model.EntityCategory) string {
	return fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %[1]s (
	id                               TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	linkedin_url                     TEXT NOT NULL,
	%[2]s                            TEXT NOT NULL,
	first_name                       TEXT NOT NULL DEFAULT '',
	last_name                        TEXT NOT NULL DEFAULT '',
	full_name                        TEXT NOT NULL DEFAULT '',
	headline                         TEXT NOT NULL DEFAULT '',
	job_title                        TEXT NOT NULL DEFAULT '',
	follower_count                   INTEGER NOT NULL DEFAULT 0,
	connection_count                 INTEGER NOT NULL DEFAULT 0,
	city                             TEXT NOT NULL DEFAULT '',
	location                         TEXT NOT NULL DEFAULT '',
	experience                       JSONB NOT NULL DEFAULT '[]',
	education                        JSONB NOT NULL DEFAULT '[]',
	previous_companies               JSONB NOT NULL DEFAULT '[]',
	profile_status                   TEXT NOT NULL DEFAULT '',
	status_confidence_label          TEXT NOT NULL DEFAULT '',
	is_repeat_founder                BOOLEAN NOT NULL DEFAULT false,
	is_senior_operator               BOOLEAN NOT NULL DEFAULT false,
	%[3]s                            TEXT NOT NULL DEFAULT '',
	last_attempted_refresh_timestamp TIMESTAMPTZ,
	refresh_status                   TEXT NOT NULL DEFAULT '',
	created_at                       TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at                       TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (linkedin_url, %[2]s)
);

CREATE INDEX IF NOT EXISTS idx_%[1]s_company ON %[1]s(%[2]s);
CREATE INDEX IF NOT EXISTS idx_%[1]s_status ON %[1]s(profile_status);
`, cat.Table(), cat.CompanyColumn(), cat.RoleColumn())
}

const postgresSharedMigration = `
CREATE TABLE IF NOT EXISTS status_transitions (
	id                 TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	profile_id         TEXT NOT NULL,
	linkedin_url       TEXT NOT NULL,
	old_status         TEXT NOT NULL DEFAULT '',
	new_status         TEXT NOT NULL,
	status_confidence  TEXT NOT NULL DEFAULT '',
	experience_changes JSONB,
	prev_role          JSONB,
	curr_role          JSONB,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_status_transitions_url ON status_transitions(linkedin_url);
CREATE INDEX IF NOT EXISTS idx_status_transitions_created ON status_transitions(created_at DESC);

CREATE TABLE IF NOT EXISTS status_examples (
	id                TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	headline          TEXT NOT NULL DEFAULT '',
	recent_experience JSONB NOT NULL DEFAULT '{}',
	assigned_status   TEXT NOT NULL,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_status_examples_status ON status_examples(assigned_status);

CREATE TABLE IF NOT EXISTS operator_examples (
	id                 TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	full_name          TEXT NOT NULL DEFAULT '',
	experience         JSONB NOT NULL DEFAULT '[]',
	is_senior_operator BOOLEAN NOT NULL
);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	migration := profileTableDDL(model.CategoryStealthFounder) +
		profileTableDDL(model.CategoryCurrentEmployee) +
		postgresSharedMigration
	_, err := s.pool.Exec(ctx, migration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// profileColumns renders the select list for a category table, with the
// category-specific company and role columns in fixed positions.
func profileColumns(cat model.EntityCategory) string {
	return fmt.Sprintf(`id, linkedin_url, %s, first_name, last_name, full_name, headline, job_title, follower_count, connection_count, city, location, experience, education, previous_companies, profile_status, status_confidence_label, is_repeat_founder, is_senior_operator, %s, last_attempted_refresh_timestamp, refresh_status`,
		cat.CompanyColumn(), cat.RoleColumn())
}

// scannable abstracts pgx.Row and pgx.Rows.
type scannable interface {
	Scan(dest ...any) error
}

func scanProfile(row scannable, cat model.EntityCategory) (*model.Profile, error) {
	var p model.Profile
	var experienceJSON, educationJSON, companiesJSON []byte
	var lastRefresh *time.Time

	err := row.Scan(
		&p.ID, &p.LinkedInURL, &p.TargetCompany,
		&p.FirstName, &p.LastName, &p.FullName, &p.Headline, &p.JobTitle,
		&p.FollowerCount, &p.ConnectionCount, &p.City, &p.Location,
		&experienceJSON, &educationJSON, &companiesJSON,
		&p.Status, &p.StatusConfidence, &p.IsRepeatFounder, &p.IsSeniorOperator,
		&p.RoleAtTargetCompany, &lastRefresh, &p.RefreshStatus,
	)
	if err != nil {
		return nil, err
	}

	p.Category = cat
	if lastRefresh != nil {
		p.LastAttemptedRefresh = *lastRefresh
	}
	if err := json.Unmarshal(experienceJSON, &p.Experience); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal experience")
	}
	if err := json.Unmarshal(educationJSON, &p.Education); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal education")
	}
	if err := json.Unmarshal(companiesJSON, &p.PreviousCompanies); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal previous companies")
	}
	return &p, nil
}

func (s *PostgresStore) GetProfile(ctx context.Context, cat model.EntityCategory, linkedinURL, targetCompany string) (*model.Profile, error) {
	row := s.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM %s WHERE linkedin_url = $1 AND %s = $2`,
			profileColumns(cat), cat.Table(), cat.CompanyColumn()),
		linkedinURL, targetCompany,
	)
	p, err := scanProfile(row, cat)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, eris.Wrapf(err, "postgres: get profile %s", linkedinURL)
	}
	return p, nil
}

func (s *PostgresStore) InsertProfile(ctx context.Context, cat model.EntityCategory, p *model.Profile) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	p.Category = cat
	now := time.Now().UTC()

	experienceJSON, err := json.Marshal(p.Experience)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal experience")
	}
	educationJSON, err := json.Marshal(p.Education)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal education")
	}
	companiesJSON, err := json.Marshal(p.PreviousCompanies)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal previous companies")
	}

	_, err = s.pool.Exec(ctx,
		fmt.Sprintf(`INSERT INTO %s
			(id, linkedin_url, %s, first_name, last_name, full_name, headline, job_title, follower_count, connection_count, city, location, experience, education, previous_companies, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
			cat.Table(), cat.CompanyColumn()),
		p.ID, p.LinkedInURL, p.TargetCompany,
		p.FirstName, p.LastName, p.FullName, p.Headline, p.JobTitle,
		p.FollowerCount, p.ConnectionCount, p.City, p.Location,
		experienceJSON, educationJSON, companiesJSON, now, now,
	)
	return eris.Wrapf(err, "postgres: insert profile %s", p.LinkedInURL)
}

func (s *PostgresStore) UpdateLabels(ctx context.Context, cat model.EntityCategory, linkedinURL string, labels model.Labels) error {
	tag, err := s.pool.Exec(ctx,
		fmt.Sprintf(`UPDATE %s SET profile_status = $1, status_confidence_label = $2, is_repeat_founder = $3, is_senior_operator = $4, %s = $5, updated_at = $6 WHERE linkedin_url = $7`,
			cat.Table(), cat.RoleColumn()),
		string(labels.Status), string(labels.StatusConfidence),
		labels.IsRepeatFounder, labels.IsSeniorOperator, labels.RoleAtTargetCompany,
		time.Now().UTC(), linkedinURL,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update labels %s", linkedinURL)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) UpdateProfile(ctx context.Context, cat model.EntityCategory, linkedinURL, targetCompany string, upd model.RefreshUpdate) error {
	set := []string{"last_attempted_refresh_timestamp = $1", "refresh_status = $2", "updated_at = $3"}
	args := []any{upd.LastAttemptedRefresh, upd.RefreshStatus, time.Now().UTC()}
	argIdx := 4

	if upd.Fields != nil {
		f := upd.Fields
		experienceJSON, err := json.Marshal(f.Experience)
		if err != nil {
			return eris.Wrap(err, "postgres: marshal experience")
		}
		educationJSON, err := json.Marshal(f.Education)
		if err != nil {
			return eris.Wrap(err, "postgres: marshal education")
		}
		companiesJSON, err := json.Marshal(f.PreviousCompanies)
		if err != nil {
			return eris.Wrap(err, "postgres: marshal previous companies")
		}

		for _, col := range []struct {
			name  string
			value any
		}{
			{"first_name", f.FirstName},
			{"last_name", f.LastName},
			{"full_name", f.FullName},
			{"headline", f.Headline},
			{"job_title", f.JobTitle},
			{"follower_count", f.FollowerCount},
			{"connection_count", f.ConnectionCount},
			{"city", f.City},
			{"location", f.Location},
			{"experience", experienceJSON},
			{"education", educationJSON},
			{"previous_companies", companiesJSON},
		} {
			set = append(set, fmt.Sprintf("%s = $%d", col.name, argIdx))
			args = append(args, col.value)
			argIdx++
		}
	}

	if upd.Status != model.StatusUnknown {
		set = append(set,
			fmt.Sprintf("profile_status = $%d", argIdx),
			fmt.Sprintf("status_confidence_label = $%d", argIdx+1))
		args = append(args, string(upd.Status), string(upd.StatusConfidence))
		argIdx += 2
	}

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE linkedin_url = $%d AND %s = $%d`,
		cat.Table(), strings.Join(set, ", "), argIdx, cat.CompanyColumn(), argIdx+1)
	args = append(args, linkedinURL, targetCompany)

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return eris.Wrapf(err, "postgres: update profile %s", linkedinURL)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListProfiles(ctx context.Context, cat model.EntityCategory, filter ProfileFilter) ([]model.Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE true`, profileColumns(cat), cat.Table())
	args := []any{}
	argIdx := 1

	if filter.Company != "" {
		query += fmt.Sprintf(` AND %s = $%d`, cat.CompanyColumn(), argIdx)
		args = append(args, filter.Company)
		argIdx++
	}
	if filter.Status != "" {
		query += fmt.Sprintf(` AND profile_status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	if filter.IsRepeatFounder != nil {
		query += fmt.Sprintf(` AND is_repeat_founder = $%d`, argIdx)
		args = append(args, *filter.IsRepeatFounder)
		argIdx++
	}
	if filter.IsSeniorOperator != nil {
		query += fmt.Sprintf(` AND is_senior_operator = $%d`, argIdx)
		args = append(args, *filter.IsSeniorOperator)
		argIdx++
	}
	query += ` ORDER BY updated_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list profiles")
	}
	defer rows.Close()

	var profiles []model.Profile
	for rows.Next() {
		p, err := scanProfile(rows, cat)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan profile")
		}
		profiles = append(profiles, *p)
	}
	return profiles, eris.Wrap(rows.Err(), "postgres: list profiles iterate")
}

// ListCompanyProfiles returns the URLs a company refresh iterates over,
// restricted to the statuses eligible for that category.
func (s *PostgresStore) ListCompanyProfiles(ctx context.Context, cat model.EntityCategory, company string) ([]string, error) {
	statuses := make([]string, 0, len(cat.RefreshStatuses()))
	for _, status := range cat.RefreshStatuses() {
		statuses = append(statuses, string(status))
	}
	return s.listURLs(ctx,
		fmt.Sprintf(`SELECT linkedin_url FROM %s WHERE %s = $1 AND profile_status = ANY($2) ORDER BY linkedin_url`,
			cat.Table(), cat.CompanyColumn()),
		company, statuses)
}

func (s *PostgresStore) ListStatusProfiles(ctx context.Context, cat model.EntityCategory, status model.ProfileStatus) ([]string, error) {
	return s.listURLs(ctx,
		fmt.Sprintf(`SELECT linkedin_url FROM %s WHERE profile_status = $1 ORDER BY linkedin_url`,
			cat.Table()),
		string(status))
}

func (s *PostgresStore) listURLs(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list urls")
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, eris.Wrap(err, "postgres: scan url")
		}
		urls = append(urls, url)
	}
	return urls, eris.Wrap(rows.Err(), "postgres: list urls iterate")
}

func (s *PostgresStore) ListCompanies(ctx context.Context, cat model.EntityCategory) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		fmt.Sprintf(`SELECT DISTINCT %s FROM %s ORDER BY %s`,
			cat.CompanyColumn(), cat.Table(), cat.CompanyColumn()))
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list companies")
	}
	defer rows.Close()

	var companies []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, eris.Wrap(err, "postgres: scan company")
		}
		companies = append(companies, c)
	}
	return companies, eris.Wrap(rows.Err(), "postgres: list companies iterate")
}

func (s *PostgresStore) CountProfiles(ctx context.Context, cat model.EntityCategory, filter ProfileFilter) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE true`, cat.Table())
	args := []any{}
	argIdx := 1

	if filter.Company != "" {
		query += fmt.Sprintf(` AND %s = $%d`, cat.CompanyColumn(), argIdx)
		args = append(args, filter.Company)
		argIdx++
	}
	if filter.Status != "" {
		query += fmt.Sprintf(` AND profile_status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	if filter.IsRepeatFounder != nil {
		query += fmt.Sprintf(` AND is_repeat_founder = $%d`, argIdx)
		args = append(args, *filter.IsRepeatFounder)
		argIdx++
	}
	if filter.IsSeniorOperator != nil {
		query += fmt.Sprintf(` AND is_senior_operator = $%d`, argIdx)
		args = append(args, *filter.IsSeniorOperator)
	}

	var count int
	err := s.pool.QueryRow(ctx, query, args...).Scan(&count)
	return count, eris.Wrap(err, "postgres: count profiles")
}

func (s *PostgresStore) InsertStatusTransition(ctx context.Context, t *model.StatusTransition) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	changesJSON, prevJSON, currJSON, err := marshalTransitionBlobs(t)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO status_transitions
		 (id, profile_id, linkedin_url, old_status, new_status, status_confidence, experience_changes, prev_role, curr_role, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		t.ID, t.ProfileID, t.LinkedInURL,
		string(t.OldStatus), string(t.NewStatus), string(t.StatusConfidence),
		changesJSON, prevJSON, currJSON, t.CreatedAt,
	)
	return eris.Wrapf(err, "postgres: insert status transition %s", t.LinkedInURL)
}

func marshalTransitionBlobs(t *model.StatusTransition) (changes, prev, curr []byte, err error) {
	if t.ExperienceChanges != nil {
		if changes, err = json.Marshal(t.ExperienceChanges); err != nil {
			return nil, nil, nil, eris.Wrap(err, "postgres: marshal experience changes")
		}
	}
	if t.PrevRole != nil {
		if prev, err = json.Marshal(t.PrevRole); err != nil {
			return nil, nil, nil, eris.Wrap(err, "postgres: marshal prev role")
		}
	}
	if t.CurrRole != nil {
		if curr, err = json.Marshal(t.CurrRole); err != nil {
			return nil, nil, nil, eris.Wrap(err, "postgres: marshal curr role")
		}
	}
	return changes, prev, curr, nil
}

func (s *PostgresStore) ListStatusTransitions(ctx context.Context, linkedinURL string, limit int) ([]model.StatusTransition, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, profile_id, linkedin_url, old_status, new_status, status_confidence, experience_changes, prev_role, curr_role, created_at
		 FROM status_transitions WHERE linkedin_url = $1 ORDER BY created_at DESC LIMIT $2`,
		linkedinURL, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list status transitions")
	}
	defer rows.Close()

	var transitions []model.StatusTransition
	for rows.Next() {
		var t model.StatusTransition
		var changesJSON, prevJSON, currJSON []byte
		if err := rows.Scan(&t.ID, &t.ProfileID, &t.LinkedInURL,
			&t.OldStatus, &t.NewStatus, &t.StatusConfidence,
			&changesJSON, &prevJSON, &currJSON, &t.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan status transition")
		}
		if len(changesJSON) > 0 {
			if err := json.Unmarshal(changesJSON, &t.ExperienceChanges); err != nil {
				return nil, eris.Wrap(err, "postgres: unmarshal experience changes")
			}
		}
		if len(prevJSON) > 0 {
			t.PrevRole = &model.Experience{}
			if err := json.Unmarshal(prevJSON, t.PrevRole); err != nil {
				return nil, eris.Wrap(err, "postgres: unmarshal prev role")
			}
		}
		if len(currJSON) > 0 {
			t.CurrRole = &model.Experience{}
			if err := json.Unmarshal(currJSON, t.CurrRole); err != nil {
				return nil, eris.Wrap(err, "postgres: unmarshal curr role")
			}
		}
		transitions = append(transitions, t)
	}
	return transitions, eris.Wrap(rows.Err(), "postgres: list status transitions iterate")
}

func (s *PostgresStore) ListStatusExamples(ctx context.Context) ([]model.StatusExample, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, headline, recent_experience, assigned_status, created_at FROM status_examples ORDER BY created_at`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list status examples")
	}
	defer rows.Close()

	var examples []model.StatusExample
	for rows.Next() {
		var ex model.StatusExample
		var expJSON []byte
		if err := rows.Scan(&ex.ID, &ex.Headline, &expJSON, &ex.AssignedStatus, &ex.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan status example")
		}
		if err := json.Unmarshal(expJSON, &ex.RecentExperience); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal example experience")
		}
		examples = append(examples, ex)
	}
	return examples, eris.Wrap(rows.Err(), "postgres: list status examples iterate")
}

func (s *PostgresStore) AppendStatusExample(ctx context.Context, ex model.StatusExample) error {
	if ex.ID == "" {
		ex.ID = uuid.New().String()
	}
	if ex.CreatedAt.IsZero() {
		ex.CreatedAt = time.Now().UTC()
	}

	expJSON, err := json.Marshal(ex.RecentExperience)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal example experience")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO status_examples (id, headline, recent_experience, assigned_status, created_at) VALUES ($1, $2, $3, $4, $5)`,
		ex.ID, ex.Headline, expJSON, string(ex.AssignedStatus), ex.CreatedAt,
	)
	return eris.Wrap(err, "postgres: append status example")
}

// SeedStatusExamples bulk-loads exemplars via COPY, for importing an
// existing labelled set.
func (s *PostgresStore) SeedStatusExamples(ctx context.Context, examples []model.StatusExample) (int64, error) {
	rows := make([][]any, 0, len(examples))
	now := time.Now().UTC()
	for _, ex := range examples {
		if ex.ID == "" {
			ex.ID = uuid.New().String()
		}
		if ex.CreatedAt.IsZero() {
			ex.CreatedAt = now
		}
		expJSON, err := json.Marshal(ex.RecentExperience)
		if err != nil {
			return 0, eris.Wrap(err, "postgres: marshal example experience")
		}
		rows = append(rows, []any{ex.ID, ex.Headline, expJSON, string(ex.AssignedStatus), ex.CreatedAt})
	}
	return db.CopyFrom(ctx, s.pool, "status_examples",
		[]string{"id", "headline", "recent_experience", "assigned_status", "created_at"}, rows)
}

func (s *PostgresStore) ListOperatorExamples(ctx context.Context) ([]model.OperatorExample, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, full_name, experience, is_senior_operator FROM operator_examples ORDER BY id`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list operator examples")
	}
	defer rows.Close()

	var examples []model.OperatorExample
	for rows.Next() {
		var ex model.OperatorExample
		var expJSON []byte
		if err := rows.Scan(&ex.ID, &ex.FullName, &expJSON, &ex.IsSeniorOperator); err != nil {
			return nil, eris.Wrap(err, "postgres: scan operator example")
		}
		if err := json.Unmarshal(expJSON, &ex.Experience); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal operator experience")
		}
		examples = append(examples, ex)
	}
	return examples, eris.Wrap(rows.Err(), "postgres: list operator examples iterate")
}

// SeedOperatorExamples bulk-loads seniority exemplars via COPY.
func (s *PostgresStore) SeedOperatorExamples(ctx context.Context, examples []model.OperatorExample) (int64, error) {
	rows := make([][]any, 0, len(examples))
	for _, ex := range examples {
		if ex.ID == "" {
			ex.ID = uuid.New().String()
		}
		expJSON, err := json.Marshal(ex.Experience)
		if err != nil {
			return 0, eris.Wrap(err, "postgres: marshal operator experience")
		}
		rows = append(rows, []any{ex.ID, ex.FullName, expJSON, ex.IsSeniorOperator})
	}
	return db.CopyFrom(ctx, s.pool, "operator_examples",
		[]string{"id", "full_name", "experience", "is_senior_operator"}, rows)
}
