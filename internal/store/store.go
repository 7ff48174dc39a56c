// Package store persists tracked profiles, status transitions, and the
// labelled exemplar sets, over Postgres or SQLite.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/stealthscout/scout-cli/internal/model"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = eris.New("store: not found")

// ProfileFilter specifies criteria for listing and counting profiles.
type ProfileFilter struct {
	Company          string              `json:"company,omitempty"`
	Status           model.ProfileStatus `json:"status,omitempty"`
	IsRepeatFounder  *bool               `json:"is_repeat_founder,omitempty"`
	IsSeniorOperator *bool               `json:"is_senior_operator,omitempty"`
	Limit            int                 `json:"limit,omitempty"`
	Offset           int                 `json:"offset,omitempty"`
}

// Store defines the persistence interface for the tracking pipeline. Every
// profile operation is scoped by EntityCategory, which selects the table and
// company/role columns.
type Store interface {
	// Profiles
	GetProfile(ctx context.Context, category model.EntityCategory, linkedinURL, targetCompany string) (*model.Profile, error)
	InsertProfile(ctx context.Context, category model.EntityCategory, p *model.Profile) error
	UpdateLabels(ctx context.Context, category model.EntityCategory, linkedinURL string, labels model.Labels) error
	UpdateProfile(ctx context.Context, category model.EntityCategory, linkedinURL, targetCompany string, upd model.RefreshUpdate) error
	ListProfiles(ctx context.Context, category model.EntityCategory, filter ProfileFilter) ([]model.Profile, error)
	ListCompanyProfiles(ctx context.Context, category model.EntityCategory, company string) ([]string, error)
	ListStatusProfiles(ctx context.Context, category model.EntityCategory, status model.ProfileStatus) ([]string, error)
	ListCompanies(ctx context.Context, category model.EntityCategory) ([]string, error)
	CountProfiles(ctx context.Context, category model.EntityCategory, filter ProfileFilter) (int, error)

	// Status transition audit log
	InsertStatusTransition(ctx context.Context, t *model.StatusTransition) error
	ListStatusTransitions(ctx context.Context, linkedinURL string, limit int) ([]model.StatusTransition, error)

	// Classification exemplars
	ListStatusExamples(ctx context.Context) ([]model.StatusExample, error)
	AppendStatusExample(ctx context.Context, ex model.StatusExample) error
	SeedStatusExamples(ctx context.Context, examples []model.StatusExample) (int64, error)
	ListOperatorExamples(ctx context.Context) ([]model.OperatorExample, error)
	SeedOperatorExamples(ctx context.Context, examples []model.OperatorExample) (int64, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
