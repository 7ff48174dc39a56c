package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stealthscout/scout-cli/internal/model"
)

func sampleProfile() *model.Profile {
	return &model.Profile{
		FirstName:       "Jane",
		LastName:        "Doe",
		Headline:        "Engineering Leader",
		JobTitle:        "Engineer",
		Location:        "San Francisco Bay Area",
		FollowerCount:   1000,
		ConnectionCount: 500,
		Experience: []model.Experience{
			{Company: "Acme", Title: "Engineer", Duration: "1 yr", DateRange: "Jan 2024 - Present"},
			{Company: "Initech", Title: "Intern", Duration: "6 mos", DateRange: "Jun 2023 - Dec 2023"},
		},
		Education: []model.Education{
			{School: "MIT", Degree: "BSc", FieldOfStudy: "CS", DateRange: "2008 - 2012"},
		},
		PreviousCompanies: []string{"Acme", "Initech"},
	}
}

func TestDiff_Idempotent(t *testing.T) {
	t.Parallel()

	p := sampleProfile()
	c := Diff(p, p)
	assert.False(t, c.HasChanges())
	assert.Empty(t, c.ChangedFields)
}

func TestDiff_ScalarFields(t *testing.T) {
	t.Parallel()

	old := sampleProfile()
	fresh := sampleProfile()
	fresh.Headline = "Building something new"
	fresh.FollowerCount = 1500

	c := Diff(old, fresh)
	require.True(t, c.HasChanges())
	assert.Equal(t, []string{"headline", "follower_count"}, c.ChangedFields)
	assert.Equal(t, model.Change{Old: "Engineering Leader", New: "Building something new"}, c.Changes["headline"])
	assert.Equal(t, model.Change{Old: 1000, New: 1500}, c.Changes["follower_count"])
}

func TestDiff_SwapPreservesMembershipAndSwapsValues(t *testing.T) {
	t.Parallel()

	old := sampleProfile()
	fresh := sampleProfile()
	fresh.JobTitle = "Founder"

	forward := Diff(old, fresh)
	backward := Diff(fresh, old)

	assert.ElementsMatch(t, forward.ChangedFields, backward.ChangedFields)
	assert.Equal(t, forward.Changes["job_title"].Old, backward.Changes["job_title"].New)
	assert.Equal(t, forward.Changes["job_title"].New, backward.Changes["job_title"].Old)
}

func TestDiff_RecentExperienceOnly(t *testing.T) {
	t.Parallel()

	old := sampleProfile()
	fresh := sampleProfile()
	// Older entries are not deep-diffed; only the count would catch this.
	fresh.Experience[1].Title = "Senior Intern"

	c := Diff(old, fresh)
	assert.False(t, c.HasChanges())

	fresh.Experience[0].Duration = "1 yr 1 mo"
	c = Diff(old, fresh)
	assert.Equal(t, []string{FieldRecentExperienceDuration}, c.ChangedFields)
}

func TestDiff_ExperienceAndEducationCounts(t *testing.T) {
	t.Parallel()

	old := sampleProfile()
	fresh := sampleProfile()
	fresh.Experience = fresh.Experience[:1]
	fresh.Education = nil

	c := Diff(old, fresh)
	assert.Contains(t, c.ChangedFields, FieldExperienceCount)
	assert.Equal(t, model.Change{Old: 2, New: 1}, c.Changes[FieldExperienceCount])
	assert.Contains(t, c.ChangedFields, FieldEducationCount)
	// Initech only appears in the older entry that was dropped.
	assert.Contains(t, c.ChangedFields, FieldPreviousCompanies)
}

func TestDiff_PreviousCompaniesAsSets(t *testing.T) {
	t.Parallel()

	old := sampleProfile()
	fresh := sampleProfile()
	// Reordered but same membership: not a change.
	fresh.Experience = []model.Experience{
		{Company: "Initech", Title: "Intern", Duration: "6 mos", DateRange: "Jun 2023 - Dec 2023"},
		{Company: "Acme", Title: "Engineer", Duration: "1 yr", DateRange: "Jan 2024 - Present"},
	}
	c := Diff(old, fresh)
	assert.NotContains(t, c.ChangedFields, FieldPreviousCompanies)

	fresh = sampleProfile()
	fresh.Experience = append([]model.Experience{
		{Company: "Stealth", Title: "Founder", Duration: "2 mos", DateRange: "Jul 2025 - Present"},
	}, fresh.Experience...)
	c = Diff(old, fresh)
	require.Contains(t, c.ChangedFields, FieldPreviousCompanies)
	assert.Equal(t, []string{"Acme", "Initech"}, c.Changes[FieldPreviousCompanies].Old)
	assert.Equal(t, []string{"Acme", "Initech", "Stealth"}, c.Changes[FieldPreviousCompanies].New)
}

func TestDiff_StaleStoredCompanySetDetected(t *testing.T) {
	t.Parallel()

	old := sampleProfile()
	old.PreviousCompanies = []string{"Acme"}
	fresh := sampleProfile()

	c := Diff(old, fresh)
	assert.Contains(t, c.ChangedFields, FieldPreviousCompanies)
}

func TestCritical_AllowList(t *testing.T) {
	t.Parallel()

	old := sampleProfile()
	fresh := sampleProfile()
	fresh.FollowerCount = 1100
	fresh.ConnectionCount = 501
	fresh.Experience[0].Duration = "1 yr 1 mo"

	c := Diff(old, fresh)
	assert.True(t, c.HasChanges())
	assert.Empty(t, c.Critical())
	assert.True(t, c.AutoApprovable())

	fresh.Headline = "Ex-Acme | Exploring"
	c = Diff(old, fresh)
	assert.Equal(t, []string{"headline"}, c.Critical())
	assert.False(t, c.AutoApprovable())
}

func TestAutoApprovable_NoChangesIsNotEligible(t *testing.T) {
	t.Parallel()

	// The original pipeline required at least one (non-critical) change for
	// auto-approval; a change-free refresh still goes to manual review.
	p := sampleProfile()
	c := Diff(p, p)
	assert.Empty(t, c.Critical())
	assert.False(t, c.AutoApprovable())
}

func TestExperienceChanges(t *testing.T) {
	t.Parallel()

	old := sampleProfile()
	fresh := sampleProfile()
	fresh.Experience[0] = model.Experience{
		Company: "Stealth", Title: "Founder", Duration: "1 mo", DateRange: "Aug 2025 - Present",
	}

	c := Diff(old, fresh)
	got := c.ExperienceChanges()
	require.NotNil(t, got)
	assert.Equal(t, model.Change{Old: "Acme", New: "Stealth"}, got["company"])
	assert.Equal(t, model.Change{Old: "Engineer", New: "Founder"}, got["title"])
	assert.Len(t, got, 4)

	assert.Nil(t, Diff(old, old).ExperienceChanges())
}
