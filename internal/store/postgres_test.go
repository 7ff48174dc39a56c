package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stealthscout/scout-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	return NewPostgresWithPool(mock), mock
}

func profileRowValues(p *model.Profile) []any {
	experienceJSON, _ := json.Marshal(p.Experience)
	educationJSON, _ := json.Marshal(p.Education)
	companiesJSON, _ := json.Marshal(p.PreviousCompanies)
	var lastRefresh *time.Time
	if !p.LastAttemptedRefresh.IsZero() {
		lastRefresh = &p.LastAttemptedRefresh
	}
	return []any{
		p.ID, p.LinkedInURL, p.TargetCompany,
		p.FirstName, p.LastName, p.FullName, p.Headline, p.JobTitle,
		p.FollowerCount, p.ConnectionCount, p.City, p.Location,
		experienceJSON, educationJSON, companiesJSON,
		p.Status, p.StatusConfidence, p.IsRepeatFounder, p.IsSeniorOperator,
		p.RoleAtTargetCompany, lastRefresh, p.RefreshStatus,
	}
}

var profileScanColumns = []string{
	"id", "linkedin_url", "target_company",
	"first_name", "last_name", "full_name", "headline", "job_title",
	"follower_count", "connection_count", "city", "location",
	"experience", "education", "previous_companies",
	"profile_status", "status_confidence_label", "is_repeat_founder", "is_senior_operator",
	"role", "last_attempted_refresh_timestamp", "refresh_status",
}

func storedProfile() *model.Profile {
	return &model.Profile{
		ID:            "prof-1",
		LinkedInURL:   "https://www.linkedin.com/in/jdoe/",
		TargetCompany: "Acme",
		FirstName:     "Jane",
		LastName:      "Doe",
		FullName:      "Jane Doe",
		Headline:      "Building something new",
		Status:        model.StatusStealth,
		Experience: []model.Experience{
			{Company: "Stealth", Title: "Founder", Duration: "3 mos", DateRange: "Jun 2026 - Present"},
		},
		PreviousCompanies: []string{"Stealth", "Acme"},
	}
}

func TestPostgresStore_GetProfile(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	want := storedProfile()

	mock.ExpectQuery(`SELECT .+ FROM stealth_founder_profiles WHERE linkedin_url = \$1 AND search_company = \$2`).
		WithArgs(want.LinkedInURL, "Acme").
		WillReturnRows(pgxmock.NewRows(profileScanColumns).AddRow(profileRowValues(want)...))

	got, err := s.GetProfile(context.Background(), model.CategoryStealthFounder, want.LinkedInURL, "Acme")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", got.FullName)
	assert.Equal(t, model.CategoryStealthFounder, got.Category)
	assert.Equal(t, model.StatusStealth, got.Status)
	require.Len(t, got.Experience, 1)
	assert.Equal(t, "Founder", got.Experience[0].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetProfile_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT .+ FROM current_employee_profiles WHERE linkedin_url = \$1 AND current_company = \$2`).
		WithArgs("https://www.linkedin.com/in/nobody/", "Acme").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetProfile(context.Background(), model.CategoryCurrentEmployee, "https://www.linkedin.com/in/nobody/", "Acme")
	require.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_InsertProfile(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	p := storedProfile()
	p.ID = ""

	mock.ExpectExec(`INSERT INTO stealth_founder_profiles`).
		WithArgs(pgxmock.AnyArg(), p.LinkedInURL, "Acme",
			"Jane", "Doe", "Jane Doe", "Building something new", "",
			0, 0, "", "",
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.InsertProfile(context.Background(), model.CategoryStealthFounder, p)
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, model.CategoryStealthFounder, p.Category)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateLabels(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE stealth_founder_profiles SET profile_status = \$1, status_confidence_label = \$2, is_repeat_founder = \$3, is_senior_operator = \$4, role_at_company_searched = \$5`).
		WithArgs("stealth", "high", true, true, "Engineer at Acme for 2 yrs", pgxmock.AnyArg(), "https://www.linkedin.com/in/jdoe/").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := s.UpdateLabels(context.Background(), model.CategoryStealthFounder, "https://www.linkedin.com/in/jdoe/", model.Labels{
		Status:              model.StatusStealth,
		StatusConfidence:    model.ConfidenceHigh,
		IsRepeatFounder:     true,
		IsSeniorOperator:    true,
		RoleAtTargetCompany: "Engineer at Acme for 2 yrs",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateProfile_MetadataOnly(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	now := time.Now().UTC()

	mock.ExpectExec(`UPDATE stealth_founder_profiles SET last_attempted_refresh_timestamp = \$1, refresh_status = \$2, updated_at = \$3 WHERE linkedin_url = \$4 AND search_company = \$5`).
		WithArgs(now, "success", pgxmock.AnyArg(), "https://www.linkedin.com/in/jdoe/", "Acme").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := s.UpdateProfile(context.Background(), model.CategoryStealthFounder,
		"https://www.linkedin.com/in/jdoe/", "Acme",
		model.RefreshUpdate{LastAttemptedRefresh: now, RefreshStatus: "success"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateProfile_FieldsAndStatus(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	fresh := storedProfile()
	now := time.Now().UTC()

	mock.ExpectExec(`UPDATE stealth_founder_profiles SET .+profile_status = .+ WHERE linkedin_url`).
		WithArgs(now, "success", pgxmock.AnyArg(),
			"Jane", "Doe", "Jane Doe", "Building something new", "",
			0, 0, "", "",
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			"recently_quit", "low",
			"https://www.linkedin.com/in/jdoe/", "Acme").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := s.UpdateProfile(context.Background(), model.CategoryStealthFounder,
		"https://www.linkedin.com/in/jdoe/", "Acme",
		model.RefreshUpdate{
			Fields:               fresh,
			Status:               model.StatusRecentlyQuit,
			StatusConfidence:     model.ConfidenceLow,
			LastAttemptedRefresh: now,
			RefreshStatus:        "success",
		})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateProfile_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE stealth_founder_profiles`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), "https://www.linkedin.com/in/ghost/", "Acme").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.UpdateProfile(context.Background(), model.CategoryStealthFounder,
		"https://www.linkedin.com/in/ghost/", "Acme",
		model.RefreshUpdate{LastAttemptedRefresh: time.Now().UTC(), RefreshStatus: "success"})
	require.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListCompanyProfiles(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT linkedin_url FROM stealth_founder_profiles WHERE search_company = \$1 AND profile_status = ANY\(\$2\)`).
		WithArgs("Acme", []string{"stealth", "recently_quit", "building_in_public", ""}).
		WillReturnRows(pgxmock.NewRows([]string{"linkedin_url"}).
			AddRow("https://www.linkedin.com/in/a/").
			AddRow("https://www.linkedin.com/in/b/"))

	urls, err := s.ListCompanyProfiles(context.Background(), model.CategoryStealthFounder, "Acme")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://www.linkedin.com/in/a/", "https://www.linkedin.com/in/b/"}, urls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListCompanies(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT DISTINCT current_company FROM current_employee_profiles`).
		WillReturnRows(pgxmock.NewRows([]string{"current_company"}).AddRow("Acme").AddRow("Initech"))

	companies, err := s.ListCompanies(context.Background(), model.CategoryCurrentEmployee)
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme", "Initech"}, companies)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CountProfiles(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	senior := true

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM stealth_founder_profiles WHERE true AND profile_status = \$1 AND is_senior_operator = \$2`).
		WithArgs("stealth", true).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(7))

	count, err := s.CountProfiles(context.Background(), model.CategoryStealthFounder, ProfileFilter{
		Status:           model.StatusStealth,
		IsSeniorOperator: &senior,
	})
	require.NoError(t, err)
	assert.Equal(t, 7, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_InsertStatusTransition(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO status_transitions`).
		WithArgs(pgxmock.AnyArg(), "prof-1", "https://www.linkedin.com/in/jdoe/",
			"currently_employed", "recently_quit", "high",
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tr := &model.StatusTransition{
		ProfileID:        "prof-1",
		LinkedInURL:      "https://www.linkedin.com/in/jdoe/",
		OldStatus:        model.StatusCurrentlyEmployed,
		NewStatus:        model.StatusRecentlyQuit,
		StatusConfidence: model.ConfidenceHigh,
		ExperienceChanges: map[string]model.Change{
			"company": {Old: "Acme", New: "Stealth"},
		},
		PrevRole: &model.Experience{Company: "Acme", Title: "Engineer"},
		CurrRole: &model.Experience{Company: "Stealth", Title: "Founder"},
	}
	err := s.InsertStatusTransition(context.Background(), tr)
	require.NoError(t, err)
	assert.NotEmpty(t, tr.ID)
	assert.False(t, tr.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListStatusExamples(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	expJSON, _ := json.Marshal(model.Experience{Company: "Stealth Mode", Title: "Founder"})

	mock.ExpectQuery(`SELECT id, headline, recent_experience, assigned_status, created_at FROM status_examples`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "headline", "recent_experience", "assigned_status", "created_at"}).
			AddRow("ex-1", "Building in AI", expJSON, model.StatusStealth, time.Now().UTC()))

	examples, err := s.ListStatusExamples(context.Background())
	require.NoError(t, err)
	require.Len(t, examples, 1)
	assert.Equal(t, model.StatusStealth, examples[0].AssignedStatus)
	assert.Equal(t, "Stealth Mode", examples[0].RecentExperience.Company)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SeedStatusExamples_Copy(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectCopyFrom(pgx.Identifier{"status_examples"},
		[]string{"id", "headline", "recent_experience", "assigned_status", "created_at"}).
		WillReturnResult(2)

	n, err := s.SeedStatusExamples(context.Background(), []model.StatusExample{
		{Headline: "one", AssignedStatus: model.StatusStealth},
		{Headline: "two", AssignedStatus: model.StatusRecentlyQuit},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SeedOperatorExamples_EmptyIsNoop(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	n, err := s.SeedOperatorExamples(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
