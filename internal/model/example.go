package model

import "time"

// StatusExample is a labelled classification exemplar fed back into the
// status prompt as few-shot context. Confirmed and corrected classifications
// are both saved this way. YAML tags cover hand-written seed files.
type StatusExample struct {
	ID               string        `json:"id,omitempty" yaml:"id,omitempty"`
	Headline         string        `json:"headline" yaml:"headline"`
	RecentExperience Experience    `json:"recent_experience" yaml:"recent_experience"`
	AssignedStatus   ProfileStatus `json:"assigned_status" yaml:"assigned_status"`
	CreatedAt        time.Time     `json:"timestamp" yaml:"timestamp,omitempty"`
}

// OperatorExample is a labelled seniority exemplar replayed as a
// user/assistant exchange in the senior-operator prompt.
type OperatorExample struct {
	ID               string       `json:"id,omitempty" yaml:"id,omitempty"`
	FullName         string       `json:"full_name" yaml:"full_name"`
	Experience       []Experience `json:"experience" yaml:"experience"`
	IsSeniorOperator bool         `json:"is_senior_operator" yaml:"is_senior_operator"`
}
