package model

import "time"

// ProfileStatus classifies a founder's current employment situation.
type ProfileStatus string

const (
	StatusStealth           ProfileStatus = "stealth"
	StatusBuildingInPublic  ProfileStatus = "building_in_public"
	StatusRecentlyQuit      ProfileStatus = "recently_quit"
	StatusCurrentlyEmployed ProfileStatus = "currently_employed"

	// StatusUnknown means classification failed or has not run; the
	// orchestrator must not write any status field when it sees this.
	StatusUnknown ProfileStatus = ""
)

// AllStatuses lists the valid (assignable) profile statuses.
var AllStatuses = []ProfileStatus{
	StatusStealth,
	StatusBuildingInPublic,
	StatusRecentlyQuit,
	StatusCurrentlyEmployed,
}

// Valid reports whether s is one of the assignable statuses.
func (s ProfileStatus) Valid() bool {
	for _, v := range AllStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Confidence labels how certain a status classification is.
type Confidence string

const (
	ConfidenceHigh Confidence = "high"
	ConfidenceLow  Confidence = "low"
)

// Experience is a single role on a profile, most-recent-first in
// Profile.Experience.
type Experience struct {
	Company            string `json:"company" yaml:"company"`
	CompanyLinkedInURL string `json:"company_linkedin_url,omitempty" yaml:"company_linkedin_url,omitempty"`
	DateRange          string `json:"date_range" yaml:"date_range"`
	Duration           string `json:"duration" yaml:"duration"`
	Title              string `json:"title" yaml:"title"`
}

// Education is a single school entry on a profile.
type Education struct {
	School       string `json:"school"`
	Degree       string `json:"degree"`
	FieldOfStudy string `json:"field_of_study"`
	DateRange    string `json:"date_range"`
}

// Profile is one tracked individual's record for a
// (linkedin_url, target_company, category) key.
type Profile struct {
	ID            string         `json:"id,omitempty"`
	LinkedInURL   string         `json:"linkedin_url"`
	Category      EntityCategory `json:"category"`
	TargetCompany string         `json:"target_company"`

	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	FullName        string `json:"full_name"`
	Headline        string `json:"headline"`
	JobTitle        string `json:"job_title"`
	FollowerCount   int    `json:"follower_count"`
	ConnectionCount int    `json:"connection_count"`
	City            string `json:"city"`
	Location        string `json:"location"`

	Experience        []Experience `json:"experience"`
	Education         []Education  `json:"education"`
	PreviousCompanies []string     `json:"previous_companies"`

	Status              ProfileStatus `json:"profile_status,omitempty"`
	StatusConfidence    Confidence    `json:"status_confidence_label,omitempty"`
	IsRepeatFounder     bool          `json:"is_repeat_founder"`
	IsSeniorOperator    bool          `json:"is_senior_operator"`
	RoleAtTargetCompany string        `json:"role_at_target_company,omitempty"`

	LastAttemptedRefresh time.Time `json:"last_attempted_refresh_timestamp,omitempty"`
	RefreshStatus        string    `json:"refresh_status,omitempty"`
}

// RecentExperience returns the most recent role, or nil if the profile has
// no experience entries.
func (p *Profile) RecentExperience() *Experience {
	if len(p.Experience) == 0 {
		return nil
	}
	return &p.Experience[0]
}

// Labels is the second write of the create path: the derived attributes
// computed after the bare profile row exists.
type Labels struct {
	Status              ProfileStatus `json:"profile_status"`
	StatusConfidence    Confidence    `json:"status_confidence_label"`
	IsRepeatFounder     bool          `json:"is_repeat_founder"`
	IsSeniorOperator    bool          `json:"is_senior_operator"`
	RoleAtTargetCompany string        `json:"role_at_target_company"`
}

// RefreshUpdate is the single atomic patch the refresh path writes. Fields
// always carries the fresh scrape wholesale; Status/StatusConfidence are set
// only when the resolved status differs from the stored one.
type RefreshUpdate struct {
	Fields               *Profile      `json:"fields,omitempty"`
	Status               ProfileStatus `json:"profile_status,omitempty"`
	StatusConfidence     Confidence    `json:"status_confidence_label,omitempty"`
	LastAttemptedRefresh time.Time     `json:"last_attempted_refresh_timestamp"`
	RefreshStatus        string        `json:"refresh_status"`
}

// StatusTransition is an append-only audit record of a profile status change.
type StatusTransition struct {
	ID                string            `json:"id,omitempty"`
	ProfileID         string            `json:"profile_id"`
	LinkedInURL       string            `json:"linkedin_url"`
	OldStatus         ProfileStatus     `json:"old_status"`
	NewStatus         ProfileStatus     `json:"new_status"`
	StatusConfidence  Confidence        `json:"status_confidence"`
	ExperienceChanges map[string]Change `json:"experience_changes,omitempty"`
	PrevRole          *Experience       `json:"prev_role,omitempty"`
	CurrRole          *Experience       `json:"curr_role,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
}

// Change is an old/new value pair for a single field.
type Change struct {
	Old any `json:"old"`
	New any `json:"new"`
}
