package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/stealthscout/scout-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := sqlDB.Exec(pragma); err != nil {
			sqlDB.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: sqlDB}, nil
}

func sqliteProfileTableDDL(cat model.EntityCategory) string {
	return fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %[1]s (
	id                               TEXT PRIMARY KEY,
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
	experience                       TEXT NOT NULL DEFAULT '[]',
	education                        TEXT NOT NULL DEFAULT '[]',
	previous_companies               TEXT NOT NULL DEFAULT '[]',
	profile_status                   TEXT NOT NULL DEFAULT '',
	status_confidence_label          TEXT NOT NULL DEFAULT '',
	is_repeat_founder                BOOLEAN NOT NULL DEFAULT 0,
	is_senior_operator               BOOLEAN NOT NULL DEFAULT 0,
	%[3]s                            TEXT NOT NULL DEFAULT '',
	last_attempted_refresh_timestamp DATETIME,
	refresh_status                   TEXT NOT NULL DEFAULT '',
	created_at                       DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at                       DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE (linkedin_url, %[2]s)
);

CREATE INDEX IF NOT EXISTS idx_%[1]s_company ON %[1]s(%[2]s);
CREATE INDEX IF NOT EXISTS idx_%[1]s_status ON %[1]s(profile_status);
`, cat.Table(), cat.CompanyColumn(), cat.RoleColumn())
}

const sqliteSharedMigration = `
CREATE TABLE IF NOT EXISTS status_transitions (
	id                 TEXT PRIMARY KEY,
	profile_id         TEXT NOT NULL,
	linkedin_url       TEXT NOT NULL,
	old_status         TEXT NOT NULL DEFAULT '',
	new_status         TEXT NOT NULL,
	status_confidence  TEXT NOT NULL DEFAULT '',
	experience_changes TEXT,
	prev_role          TEXT,
	curr_role          TEXT,
	created_at         DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_status_transitions_url ON status_transitions(linkedin_url);

CREATE TABLE IF NOT EXISTS status_examples (
	id                TEXT PRIMARY KEY,
	headline          TEXT NOT NULL DEFAULT '',
	recent_experience TEXT NOT NULL DEFAULT '{}',
	assigned_status   TEXT NOT NULL,
	created_at        DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS operator_examples (
	id                 TEXT PRIMARY KEY,
	full_name          TEXT NOT NULL DEFAULT '',
	experience         TEXT NOT NULL DEFAULT '[]',
	is_senior_operator BOOLEAN NOT NULL
);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	migration := sqliteProfileTableDDL(model.CategoryStealthFounder) +
		sqliteProfileTableDDL(model.CategoryCurrentEmployee) +
		sqliteSharedMigration
	_, err := s.db.ExecContext(ctx, migration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func scanProfileSQLite(row scannable, cat model.EntityCategory) (*model.Profile, error) {
	var p model.Profile
	var experienceJSON, educationJSON, companiesJSON string
	var lastRefresh sql.NullTime

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
	if lastRefresh.Valid {
		p.LastAttemptedRefresh = lastRefresh.Time
	}
	if err := json.Unmarshal([]byte(experienceJSON), &p.Experience); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal experience")
	}
	if err := json.Unmarshal([]byte(educationJSON), &p.Education); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal education")
	}
	if err := json.Unmarshal([]byte(companiesJSON), &p.PreviousCompanies); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal previous companies")
	}
	return &p, nil
}

func (s *SQLiteStore) GetProfile(ctx context.Context, cat model.EntityCategory, linkedinURL, targetCompany string) (*model.Profile, error) {
	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT %s FROM %s WHERE linkedin_url = ? AND %s = ?`,
			profileColumns(cat), cat.Table(), cat.CompanyColumn()),
		linkedinURL, targetCompany,
	)
	p, err := scanProfileSQLite(row, cat)
	if err != nil {
		if eris.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, eris.Wrapf(err, "sqlite: get profile %s", linkedinURL)
	}
	return p, nil
}

func (s *SQLiteStore) InsertProfile(ctx context.Context, cat model.EntityCategory, p *model.Profile) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	p.Category = cat
	now := time.Now().UTC()

	experienceJSON, err := json.Marshal(p.Experience)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal experience")
	}
	educationJSON, err := json.Marshal(p.Education)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal education")
	}
	companiesJSON, err := json.Marshal(p.PreviousCompanies)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal previous companies")
	}

	_, err = s.db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s
			(id, linkedin_url, %s, first_name, last_name, full_name, headline, job_title, follower_count, connection_count, city, location, experience, education, previous_companies, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			cat.Table(), cat.CompanyColumn()),
		p.ID, p.LinkedInURL, p.TargetCompany,
		p.FirstName, p.LastName, p.FullName, p.Headline, p.JobTitle,
		p.FollowerCount, p.ConnectionCount, p.City, p.Location,
		string(experienceJSON), string(educationJSON), string(companiesJSON), now, now,
	)
	return eris.Wrapf(err, "sqlite: insert profile %s", p.LinkedInURL)
}

func (s *SQLiteStore) UpdateLabels(ctx context.Context, cat model.EntityCategory, linkedinURL string, labels model.Labels) error {
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET profile_status = ?, status_confidence_label = ?, is_repeat_founder = ?, is_senior_operator = ?, %s = ?, updated_at = ? WHERE linkedin_url = ?`,
			cat.Table(), cat.RoleColumn()),
		string(labels.Status), string(labels.StatusConfidence),
		labels.IsRepeatFounder, labels.IsSeniorOperator, labels.RoleAtTargetCompany,
		time.Now().UTC(), linkedinURL,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update labels %s", linkedinURL)
	}
	return checkRowsAffected(res)
}

func (s *SQLiteStore) UpdateProfile(ctx context.Context, cat model.EntityCategory, linkedinURL, targetCompany string, upd model.RefreshUpdate) error {
	set := []string{"last_attempted_refresh_timestamp = ?", "refresh_status = ?", "updated_at = ?"}
	args := []any{upd.LastAttemptedRefresh, upd.RefreshStatus, time.Now().UTC()}

	if upd.Fields != nil {
		f := upd.Fields
		experienceJSON, err := json.Marshal(f.Experience)
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal experience")
		}
		educationJSON, err := json.Marshal(f.Education)
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal education")
		}
		companiesJSON, err := json.Marshal(f.PreviousCompanies)
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal previous companies")
		}

		set = append(set,
			"first_name = ?", "last_name = ?", "full_name = ?", "headline = ?",
			"job_title = ?", "follower_count = ?", "connection_count = ?",
			"city = ?", "location = ?", "experience = ?", "education = ?",
			"previous_companies = ?")
		args = append(args,
			f.FirstName, f.LastName, f.FullName, f.Headline,
			f.JobTitle, f.FollowerCount, f.ConnectionCount,
			f.City, f.Location, string(experienceJSON), string(educationJSON),
			string(companiesJSON))
	}

	if upd.Status != model.StatusUnknown {
		set = append(set, "profile_status = ?", "status_confidence_label = ?")
		args = append(args, string(upd.Status), string(upd.StatusConfidence))
	}

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE linkedin_url = ? AND %s = ?`,
		cat.Table(), strings.Join(set, ", "), cat.CompanyColumn())
	args = append(args, linkedinURL, targetCompany)

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update profile %s", linkedinURL)
	}
	return checkRowsAffected(res)
}

func checkRowsAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) ListProfiles(ctx context.Context, cat model.EntityCategory, filter ProfileFilter) ([]model.Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE 1=1`, profileColumns(cat), cat.Table())
	var args []any

	if filter.Company != "" {
		query += fmt.Sprintf(` AND %s = ?`, cat.CompanyColumn())
		args = append(args, filter.Company)
	}
	if filter.Status != "" {
		query += ` AND profile_status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.IsRepeatFounder != nil {
		query += ` AND is_repeat_founder = ?`
		args = append(args, *filter.IsRepeatFounder)
	}
	if filter.IsSeniorOperator != nil {
		query += ` AND is_senior_operator = ?`
		args = append(args, *filter.IsSeniorOperator)
	}
	query += ` ORDER BY updated_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list profiles")
	}
	defer rows.Close()

	var profiles []model.Profile
	for rows.Next() {
		p, err := scanProfileSQLite(rows, cat)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan profile")
		}
		profiles = append(profiles, *p)
	}
	return profiles, eris.Wrap(rows.Err(), "sqlite: list profiles iterate")
}

// ListCompanyProfiles returns the URLs a company refresh iterates over,
// restricted to the statuses eligible for that category.
func (s *SQLiteStore) ListCompanyProfiles(ctx context.Context, cat model.EntityCategory, company string) ([]string, error) {
	statuses := cat.RefreshStatuses()
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(statuses)), ", ")
	args := []any{company}
	for _, status := range statuses {
		args = append(args, string(status))
	}
	return s.listStrings(ctx,
		fmt.Sprintf(`SELECT linkedin_url FROM %s WHERE %s = ? AND profile_status IN (%s) ORDER BY linkedin_url`,
			cat.Table(), cat.CompanyColumn(), placeholders),
		args...)
}

func (s *SQLiteStore) ListStatusProfiles(ctx context.Context, cat model.EntityCategory, status model.ProfileStatus) ([]string, error) {
	return s.listStrings(ctx,
		fmt.Sprintf(`SELECT linkedin_url FROM %s WHERE profile_status = ? ORDER BY linkedin_url`,
			cat.Table()),
		string(status))
}

func (s *SQLiteStore) ListCompanies(ctx context.Context, cat model.EntityCategory) ([]string, error) {
	return s.listStrings(ctx,
		fmt.Sprintf(`SELECT DISTINCT %s FROM %s ORDER BY %s`,
			cat.CompanyColumn(), cat.Table(), cat.CompanyColumn()))
}

func (s *SQLiteStore) listStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list")
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan")
		}
		out = append(out, v)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list iterate")
}

func (s *SQLiteStore) CountProfiles(ctx context.Context, cat model.EntityCategory, filter ProfileFilter) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE 1=1`, cat.Table())
	var args []any

	if filter.Company != "" {
		query += fmt.Sprintf(` AND %s = ?`, cat.CompanyColumn())
		args = append(args, filter.Company)
	}
	if filter.Status != "" {
		query += ` AND profile_status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.IsRepeatFounder != nil {
		query += ` AND is_repeat_founder = ?`
		args = append(args, *filter.IsRepeatFounder)
	}
	if filter.IsSeniorOperator != nil {
		query += ` AND is_senior_operator = ?`
		args = append(args, *filter.IsSeniorOperator)
	}

	var count int
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, eris.Wrap(err, "sqlite: count profiles")
}

func (s *SQLiteStore) InsertStatusTransition(ctx context.Context, t *model.StatusTransition) error {
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

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO status_transitions
		 (id, profile_id, linkedin_url, old_status, new_status, status_confidence, experience_changes, prev_role, curr_role, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.ProfileID, t.LinkedInURL,
		string(t.OldStatus), string(t.NewStatus), string(t.StatusConfidence),
		nullableString(changesJSON), nullableString(prevJSON), nullableString(currJSON), t.CreatedAt,
	)
	return eris.Wrapf(err, "sqlite: insert status transition %s", t.LinkedInURL)
}

func nullableString(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

func (s *SQLiteStore) ListStatusTransitions(ctx context.Context, linkedinURL string, limit int) ([]model.StatusTransition, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, profile_id, linkedin_url, old_status, new_status, status_confidence, experience_changes, prev_role, curr_role, created_at
		 FROM status_transitions WHERE linkedin_url = ? ORDER BY created_at DESC LIMIT ?`,
		linkedinURL, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list status transitions")
	}
	defer rows.Close()

	var transitions []model.StatusTransition
	for rows.Next() {
		var t model.StatusTransition
		var changesJSON, prevJSON, currJSON sql.NullString
		if err := rows.Scan(&t.ID, &t.ProfileID, &t.LinkedInURL,
			&t.OldStatus, &t.NewStatus, &t.StatusConfidence,
			&changesJSON, &prevJSON, &currJSON, &t.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan status transition")
		}
		if changesJSON.Valid {
			if err := json.Unmarshal([]byte(changesJSON.String), &t.ExperienceChanges); err != nil {
				return nil, eris.Wrap(err, "sqlite: unmarshal experience changes")
			}
		}
		if prevJSON.Valid {
			t.PrevRole = &model.Experience{}
			if err := json.Unmarshal([]byte(prevJSON.String), t.PrevRole); err != nil {
				return nil, eris.Wrap(err, "sqlite: unmarshal prev role")
			}
		}
		if currJSON.Valid {
			t.CurrRole = &model.Experience{}
			if err := json.Unmarshal([]byte(currJSON.String), t.CurrRole); err != nil {
				return nil, eris.Wrap(err, "sqlite: unmarshal curr role")
			}
		}
		transitions = append(transitions, t)
	}
	return transitions, eris.Wrap(rows.Err(), "sqlite: list status transitions iterate")
}

func (s *SQLiteStore) ListStatusExamples(ctx context.Context) ([]model.StatusExample, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, headline, recent_experience, assigned_status, created_at FROM status_examples ORDER BY created_at`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list status examples")
	}
	defer rows.Close()

	var examples []model.StatusExample
	for rows.Next() {
		var ex model.StatusExample
		var expJSON string
		if err := rows.Scan(&ex.ID, &ex.Headline, &expJSON, &ex.AssignedStatus, &ex.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan status example")
		}
		if err := json.Unmarshal([]byte(expJSON), &ex.RecentExperience); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal example experience")
		}
		examples = append(examples, ex)
	}
	return examples, eris.Wrap(rows.Err(), "sqlite: list status examples iterate")
}

func (s *SQLiteStore) AppendStatusExample(ctx context.Context, ex model.StatusExample) error {
	if ex.ID == "" {
		ex.ID = uuid.New().String()
	}
	if ex.CreatedAt.IsZero() {
		ex.CreatedAt = time.Now().UTC()
	}

	expJSON, err := json.Marshal(ex.RecentExperience)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal example experience")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO status_examples (id, headline, recent_experience, assigned_status, created_at) VALUES (?, ?, ?, ?, ?)`,
		ex.ID, ex.Headline, string(expJSON), string(ex.AssignedStatus), ex.CreatedAt,
	)
	return eris.Wrap(err, "sqlite: append status example")
}

// SeedStatusExamples bulk-loads exemplars inside a single transaction.
func (s *SQLiteStore) SeedStatusExamples(ctx context.Context, examples []model.StatusExample) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin seed")
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	var n int64
	for _, ex := range examples {
		if ex.ID == "" {
			ex.ID = uuid.New().String()
		}
		if ex.CreatedAt.IsZero() {
			ex.CreatedAt = now
		}
		expJSON, err := json.Marshal(ex.RecentExperience)
		if err != nil {
			return 0, eris.Wrap(err, "sqlite: marshal example experience")
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO status_examples (id, headline, recent_experience, assigned_status, created_at) VALUES (?, ?, ?, ?, ?)`,
			ex.ID, ex.Headline, string(expJSON), string(ex.AssignedStatus), ex.CreatedAt,
		); err != nil {
			return 0, eris.Wrap(err, "sqlite: seed status example")
		}
		n++
	}
	return n, eris.Wrap(tx.Commit(), "sqlite: commit seed")
}

func (s *SQLiteStore) ListOperatorExamples(ctx context.Context) ([]model.OperatorExample, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, full_name, experience, is_senior_operator FROM operator_examples ORDER BY id`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list operator examples")
	}
	defer rows.Close()

	var examples []model.OperatorExample
	for rows.Next() {
		var ex model.OperatorExample
		var expJSON string
		if err := rows.Scan(&ex.ID, &ex.FullName, &expJSON, &ex.IsSeniorOperator); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan operator example")
		}
		if err := json.Unmarshal([]byte(expJSON), &ex.Experience); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal operator experience")
		}
		examples = append(examples, ex)
	}
	return examples, eris.Wrap(rows.Err(), "sqlite: list operator examples iterate")
}

// SeedOperatorExamples bulk-loads seniority exemplars inside a transaction.
func (s *SQLiteStore) SeedOperatorExamples(ctx context.Context, examples []model.OperatorExample) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin seed")
	}
	defer tx.Rollback()

	var n int64
	for _, ex := range examples {
		if ex.ID == "" {
			ex.ID = uuid.New().String()
		}
		expJSON, err := json.Marshal(ex.Experience)
		if err != nil {
			return 0, eris.Wrap(err, "sqlite: marshal operator experience")
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO operator_examples (id, full_name, experience, is_senior_operator) VALUES (?, ?, ?, ?)`,
			ex.ID, ex.FullName, string(expJSON), ex.IsSeniorOperator,
		); err != nil {
			return 0, eris.Wrap(err, "sqlite: seed operator example")
		}
		n++
	}
	return n, eris.Wrap(tx.Commit(), "sqlite: commit seed")
}
