package model

import "github.com/rotisserie/eris"

// EntityCategory selects which population a tracked person belongs to.
// Each category carries its own table and column names, so callers never
// dispatch on raw table-name strings.
type EntityCategory string

const (
	// CategoryStealthFounder tracks stealth or ex-employee founders; the
	// target company is one they previously or currently worked at.
	CategoryStealthFounder EntityCategory = "stealth_founder"

	// CategoryCurrentEmployee tracks people by their current employer.
	CategoryCurrentEmployee EntityCategory = "current_employee"
)

// ParseCategory converts a user-supplied category name.
func ParseCategory(s string) (EntityCategory, error) {
	switch EntityCategory(s) {
	case CategoryStealthFounder, CategoryCurrentEmployee:
		return EntityCategory(s), nil
	}
	return "", eris.Errorf("invalid entity category: %q (want %s or %s)",
		s, CategoryStealthFounder, CategoryCurrentEmployee)
}

// Valid reports whether c is a known category.
func (c EntityCategory) Valid() bool {
	return c == CategoryStealthFounder || c == CategoryCurrentEmployee
}

// Table returns the profile table for the category.
func (c EntityCategory) Table() string {
	if c == CategoryCurrentEmployee {
		return "current_employee_profiles"
	}
	return "stealth_founder_profiles"
}

// CompanyColumn returns the column holding the target company.
func (c EntityCategory) CompanyColumn() string {
	if c == CategoryCurrentEmployee {
		return "current_company"
	}
	return "search_company"
}

// RoleColumn returns the column holding the formatted role-at-company string.
func (c EntityCategory) RoleColumn() string {
	if c == CategoryCurrentEmployee {
		return "role_at_current_company"
	}
	return "role_at_company_searched"
}

// RefreshStatuses lists the statuses whose profiles a company refresh
// iterates over for this category. The unknown (empty) status is always
// eligible: a profile whose first classification was skipped must stay
// reachable so a later refresh can classify it.
func (c EntityCategory) RefreshStatuses() []ProfileStatus {
	if c == CategoryCurrentEmployee {
		return []ProfileStatus{StatusCurrentlyEmployed, StatusUnknown}
	}
	return []ProfileStatus{StatusStealth, StatusRecentlyQuit, StatusBuildingInPublic, StatusUnknown}
}
