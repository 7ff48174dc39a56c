// Package diff computes field-level change sets between stored and freshly
// scraped profiles.
//
// The diff is deliberately asymmetric in depth: scalar fields and the most
// recent experience entry are compared field-by-field, while older experience
// entries and education contents are compared by count only. The system
// tracks movement, and the current role is the highest-signal field.
package diff

import (
	"sort"

	"github.com/stealthscout/scout-cli/internal/model"
)

// Field identifiers recorded in a ChangeSet.
const (
	FieldExperienceCount   = "experience_count"
	FieldEducationCount    = "education_count"
	FieldPreviousCompanies = "previous_companies"
	FieldProfileStatus     = "profile_status"

	recentExperiencePrefix = "recent_experience_"

	FieldRecentExperienceCompany   = recentExperiencePrefix + "company"
	FieldRecentExperienceTitle     = recentExperiencePrefix + "title"
	FieldRecentExperienceDuration  = recentExperiencePrefix + "duration"
	FieldRecentExperienceDateRange = recentExperiencePrefix + "date_range"
)

// nonCriticalFields may change without forcing manual verification of a
// status reclassification.
var nonCriticalFields = map[string]bool{
	"follower_count":              true,
	"connection_count":            true,
	FieldRecentExperienceDuration: true,
}

// ChangeSet is the structured result of diffing two profiles. It is
// ephemeral: the orchestrator consumes it immediately and never persists it
// directly.
type ChangeSet struct {
	ChangedFields []string                `json:"changed_fields"`
	Changes       map[string]model.Change `json:"changes"`
}

// HasChanges reports whether any field changed.
func (c *ChangeSet) HasChanges() bool {
	return len(c.ChangedFields) > 0
}

// Critical returns the changed fields outside the non-critical allow-list.
// Any critical change forces human review of a status reclassification.
func (c *ChangeSet) Critical() []string {
	var out []string
	for _, f := range c.ChangedFields {
		if !nonCriticalFields[f] {
			out = append(out, f)
		}
	}
	return out
}

// AutoApprovable reports whether a status reclassification may skip human
// review: at least one field changed, and none of the changes is critical.
// A change-free diff is intentionally not auto-approvable.
func (c *ChangeSet) AutoApprovable() bool {
	return c.HasChanges() && len(c.Critical()) == 0
}

// ExperienceChanges extracts the recent-experience deltas keyed by bare
// field name, for the status-transition audit record.
func (c *ChangeSet) ExperienceChanges() map[string]model.Change {
	out := make(map[string]model.Change)
	for _, f := range []string{
		FieldRecentExperienceCompany,
		FieldRecentExperienceTitle,
		FieldRecentExperienceDuration,
		FieldRecentExperienceDateRange,
	} {
		if ch, ok := c.Changes[f]; ok {
			out[f[len(recentExperiencePrefix):]] = ch
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Record appends a change observed outside the profile comparison itself,
// such as a status reclassification decided downstream of the diff.
func (c *ChangeSet) Record(field string, old, new any) {
	c.record(field, old, new)
}

func (c *ChangeSet) record(field string, old, new any) {
	c.ChangedFields = append(c.ChangedFields, field)
	c.Changes[field] = model.Change{Old: old, New: new}
}

// scalarFields lists the directly-compared fields in recording order.
var scalarFields = []struct {
	name string
	get  func(*model.Profile) any
}{
	{"first_name", func(p *model.Profile) any { return p.FirstName }},
	{"last_name", func(p *model.Profile) any { return p.LastName }},
	{"headline", func(p *model.Profile) any { return p.Headline }},
	{"job_title", func(p *model.Profile) any { return p.JobTitle }},
	{"location", func(p *model.Profile) any { return p.Location }},
	{"follower_count", func(p *model.Profile) any { return p.FollowerCount }},
	{"connection_count", func(p *model.Profile) any { return p.ConnectionCount }},
}

// Diff compares a stored profile against a fresh scrape.
func Diff(old, new *model.Profile) *ChangeSet {
	c := &ChangeSet{Changes: make(map[string]model.Change)}

	for _, f := range scalarFields {
		oldVal, newVal := f.get(old), f.get(new)
		if oldVal != newVal {
			c.record(f.name, oldVal, newVal)
		}
	}

	if len(old.Experience) != len(new.Experience) {
		c.record(FieldExperienceCount, len(old.Experience), len(new.Experience))
	}

	// Only the most recent role is compared in detail; older entries are
	// covered by the count check above.
	if len(old.Experience) > 0 && len(new.Experience) > 0 {
		oldExp, newExp := old.Experience[0], new.Experience[0]
		recentFields := []struct {
			name     string
			old, new string
		}{
			{FieldRecentExperienceCompany, oldExp.Company, newExp.Company},
			{FieldRecentExperienceTitle, oldExp.Title, newExp.Title},
			{FieldRecentExperienceDuration, oldExp.Duration, newExp.Duration},
			{FieldRecentExperienceDateRange, oldExp.DateRange, newExp.DateRange},
		}
		for _, f := range recentFields {
			if f.old != f.new {
				c.record(f.name, f.old, f.new)
			}
		}
	}

	if len(old.Education) != len(new.Education) {
		c.record(FieldEducationCount, len(old.Education), len(new.Education))
	}

	oldCompanies := companySet(old.PreviousCompanies)
	newCompanies := companySet(scrapeCompanies(new))
	if !sameSet(oldCompanies, newCompanies) {
		c.record(FieldPreviousCompanies, sortedKeys(oldCompanies), sortedKeys(newCompanies))
	}

	return c
}

// scrapeCompanies re-derives the company set from the fresh experience list,
// so a stale stored previous_companies column cannot mask a real change.
func scrapeCompanies(p *model.Profile) []string {
	out := make([]string, 0, len(p.Experience))
	for _, exp := range p.Experience {
		if exp.Company != "" {
			out = append(out, exp.Company)
		}
	}
	return out
}

func companySet(companies []string) map[string]bool {
	set := make(map[string]bool, len(companies))
	for _, c := range companies {
		if c != "" {
			set[c] = true
		}
	}
	return set
}

func sameSet(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
