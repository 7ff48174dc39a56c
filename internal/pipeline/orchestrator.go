// Package pipeline orchestrates the profile lifecycle: tracking new
// profiles, refreshing stored ones, and running whole-company batches.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/stealthscout/scout-cli/internal/classify"
	"github.com/stealthscout/scout-cli/internal/console"
	"github.com/stealthscout/scout-cli/internal/diff"
	"github.com/stealthscout/scout-cli/internal/label"
	"github.com/stealthscout/scout-cli/internal/model"
	"github.com/stealthscout/scout-cli/internal/resilience"
	"github.com/stealthscout/scout-cli/internal/scrape"
	"github.com/stealthscout/scout-cli/internal/store"
)

const (
	refreshStatusSuccess = "success"

	// Minimum spacing between upstream scrapes within a company batch,
	// and between companies in a multi-company run.
	profileInterval = 3 * time.Second
	companyInterval = 9 * time.Second
)

// Fetcher scrapes and normalizes one profile.
type Fetcher interface {
	Fetch(ctx context.Context, linkedinURL string) (model.Profile, error)
}

// StatusResolver settles a profile's status, including any human
// verification.
type StatusResolver interface {
	Resolve(ctx context.Context, p *model.Profile, autoApprove bool, oldStatus model.ProfileStatus) (classify.Result, error)
}

// SeniorLabeller decides the senior-operator label.
type SeniorLabeller interface {
	SeniorOperator(ctx context.Context, p *model.Profile) (bool, error)
}

// Orchestrator wires the scrape, classify, label, and store stages into the
// lifecycle operations.
type Orchestrator struct {
	store    store.Store
	fetcher  Fetcher
	resolver StatusResolver
	senior   SeniorLabeller
	prompter console.Prompter
	out      io.Writer

	profileLimiter *rate.Limiter
	companyLimiter *rate.Limiter
}

// New creates an Orchestrator.
func New(st store.Store, fetcher Fetcher, resolver StatusResolver, senior SeniorLabeller, prompter console.Prompter, out io.Writer) *Orchestrator {
	return &Orchestrator{
		store:          st,
		fetcher:        fetcher,
		resolver:       resolver,
		senior:         senior,
		prompter:       prompter,
		out:            out,
		profileLimiter: rate.NewLimiter(rate.Every(profileInterval), 1),
		companyLimiter: rate.NewLimiter(rate.Every(companyInterval), 1),
	}
}

// Track runs the create path for one profile. An already-tracked
// (url, company) pair is a no-op.
func (o *Orchestrator) Track(ctx context.Context, cat model.EntityCategory, linkedinURL, targetCompany string) error {
	canonical := scrape.CanonicalURL(linkedinURL)
	log := zap.L().With(
		zap.String("linkedin_url", canonical),
		zap.String("target_company", targetCompany),
		zap.String("category", string(cat)),
	)

	_, err := o.store.GetProfile(ctx, cat, canonical, targetCompany)
	switch {
	case err == nil:
		log.Info("pipeline: profile already tracked")
		return nil
	case !errors.Is(err, store.ErrNotFound):
		return &StageError{Stage: StagePersist, URL: canonical, Err: err}
	}

	p, err := o.fetcher.Fetch(ctx, canonical)
	if err != nil {
		return &StageError{Stage: StageScrape, URL: canonical, Err: err}
	}
	p.TargetCompany = targetCompany

	if err := o.store.InsertProfile(ctx, cat, &p); err != nil {
		return &StageError{Stage: StagePersist, URL: canonical, Err: err}
	}
	log.Info("pipeline: profile inserted", zap.String("profile_id", p.ID))

	// The create path never auto-approves: there is no prior status to
	// match, so the candidate always goes to the operator.
	result, err := o.resolver.Resolve(ctx, &p, true, model.StatusUnknown)
	if err != nil {
		return &StageError{Stage: StageClassify, URL: canonical, Err: err}
	}
	if result.Status == model.StatusUnknown {
		log.Warn("pipeline: classification unresolved, skipping label write")
		return nil
	}

	companyOfInterest, err := o.chooseCompanyOfInterest(&p, targetCompany)
	if err != nil {
		return err
	}

	role, err := o.resolveRole(&p, companyOfInterest)
	if err != nil {
		return err
	}

	isSenior, err := o.senior.SeniorOperator(ctx, &p)
	if err != nil {
		return &StageError{Stage: StageClassify, URL: canonical, Err: err}
	}

	labels := model.Labels{
		Status:              result.Status,
		StatusConfidence:    result.Confidence,
		IsRepeatFounder:     label.RepeatFounder(&p),
		IsSeniorOperator:    isSenior,
		RoleAtTargetCompany: role,
	}
	if err := o.store.UpdateLabels(ctx, cat, canonical, labels); err != nil {
		return &StageError{Stage: StagePersist, URL: canonical, Err: err}
	}

	log.Info("pipeline: labels written",
		zap.String("profile_status", string(labels.Status)),
		zap.Bool("is_repeat_founder", labels.IsRepeatFounder),
		zap.Bool("is_senior_operator", labels.IsSeniorOperator),
	)
	return nil
}

// chooseCompanyOfInterest uses the target company when it appears in the
// profile's history, otherwise asks the operator to pick one.
func (o *Orchestrator) chooseCompanyOfInterest(p *model.Profile, targetCompany string) (string, error) {
	for _, c := range p.PreviousCompanies {
		if c == targetCompany {
			return targetCompany, nil
		}
	}
	fmt.Fprintf(o.out, "Target company %q not found in profile history.\n", targetCompany)
	if len(p.PreviousCompanies) == 0 {
		return o.prompter.Ask("Enter the company of interest")
	}
	return o.prompter.Select("Choose a company of interest", p.PreviousCompanies)
}

// resolveRole derives the role-at-company statement, falling back to the
// operator when the history is ambiguous.
func (o *Orchestrator) resolveRole(p *model.Profile, company string) (string, error) {
	role, err := label.RoleAtCompany(p, company)
	if err == nil {
		return role, nil
	}

	var are *label.AmbiguousRoleError
	if !errors.As(err, &are) {
		return "", err
	}

	for i, exp := range are.Candidates {
		fmt.Fprintf(o.out, "%d. %s (%s)\n", i+1, exp.Title, exp.Duration)
	}
	return o.prompter.Ask("Please enter the role at company statement")
}

// TrackBatch tracks a list of URLs sequentially, asking whether to continue
// after each failure.
func (o *Orchestrator) TrackBatch(ctx context.Context, cat model.EntityCategory, linkedinURLs []string, targetCompany string) (*BatchStats, error) {
	stats := &BatchStats{}
	for i, url := range linkedinURLs {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		zap.L().Info("pipeline: tracking profile",
			zap.Int("index", i+1), zap.Int("total", len(linkedinURLs)), zap.String("linkedin_url", url))

		if err := o.Track(ctx, cat, url, targetCompany); err != nil {
			stats.Failed++
			if resilience.IsRateLimited(err) {
				stats.RateLimited++
				zap.L().Warn("pipeline: track rate limited", zap.String("linkedin_url", url), zap.Error(err))
			} else {
				zap.L().Error("pipeline: track failed", zap.String("linkedin_url", url), zap.Error(err))
			}

			cont, promptErr := o.prompter.Confirm("\nContinue with next profile?")
			if promptErr != nil {
				return stats, promptErr
			}
			if !cont {
				return stats, nil
			}
			continue
		}
		stats.Processed++
	}
	return stats, nil
}

// RefreshResult reports the outcome of one profile refresh.
type RefreshResult struct {
	ProfileID     string              `json:"profile_id"`
	LinkedInURL   string              `json:"linkedin_url"`
	Status        string              `json:"status"` // updated | no_changes
	Changes       *diff.ChangeSet     `json:"changes,omitempty"`
	OldStatus     model.ProfileStatus `json:"old_status,omitempty"`
	NewStatus     model.ProfileStatus `json:"new_status,omitempty"`
	StatusChanged bool                `json:"status_changed"`
}

// RefreshProfile runs the refresh path for one stored profile.
//
// A change-free scrape writes refresh metadata only. Any change triggers
// reclassification; the fresh scrape then replaces the stored fields
// wholesale in a single update, and a status change additionally appends a
// transition audit record.
func (o *Orchestrator) RefreshProfile(ctx context.Context, cat model.EntityCategory, linkedinURL, targetCompany string) (*RefreshResult, error) {
	canonical := scrape.CanonicalURL(linkedinURL)
	log := zap.L().With(
		zap.String("linkedin_url", canonical),
		zap.String("target_company", targetCompany),
	)

	stored, err := o.store.GetProfile(ctx, cat, canonical, targetCompany)
	if err != nil {
		return nil, &StageError{Stage: StagePersist, URL: canonical, Err: err}
	}

	fresh, err := o.fetcher.Fetch(ctx, canonical)
	if err != nil {
		return nil, &StageError{Stage: StageScrape, URL: canonical, Err: err}
	}
	fresh.TargetCompany = targetCompany

	changes := diff.Diff(stored, &fresh)
	now := time.Now().UTC()

	if !changes.HasChanges() {
		log.Info("pipeline: no changes detected")
		upd := model.RefreshUpdate{LastAttemptedRefresh: now, RefreshStatus: refreshStatusSuccess}
		if err := o.store.UpdateProfile(ctx, cat, canonical, targetCompany, upd); err != nil {
			return nil, &StageError{Stage: StagePersist, URL: canonical, Err: err}
		}
		return &RefreshResult{
			ProfileID:   stored.ID,
			LinkedInURL: canonical,
			Status:      "no_changes",
		}, nil
	}

	log.Info("pipeline: changes detected",
		zap.Strings("changed_fields", changes.ChangedFields),
		zap.Strings("critical_fields", changes.Critical()),
	)

	result, err := o.resolver.Resolve(ctx, &fresh, changes.AutoApprovable(), stored.Status)
	if err != nil {
		return nil, &StageError{Stage: StageClassify, URL: canonical, Err: err}
	}

	upd := model.RefreshUpdate{
		Fields:               &fresh,
		LastAttemptedRefresh: now,
		RefreshStatus:        refreshStatusSuccess,
	}
	statusChanged := result.Status != model.StatusUnknown && result.Status != stored.Status
	if statusChanged {
		upd.Status = result.Status
		upd.StatusConfidence = result.Confidence
		changes.Record(diff.FieldProfileStatus, stored.Status, result.Status)
	}

	if err := o.store.UpdateProfile(ctx, cat, canonical, targetCompany, upd); err != nil {
		return nil, &StageError{Stage: StagePersist, URL: canonical, Err: err}
	}

	if statusChanged {
		transition := &model.StatusTransition{
			ProfileID:         stored.ID,
			LinkedInURL:       canonical,
			OldStatus:         stored.Status,
			NewStatus:         result.Status,
			StatusConfidence:  result.Confidence,
			ExperienceChanges: changes.ExperienceChanges(),
			PrevRole:          stored.RecentExperience(),
			CurrRole:          fresh.RecentExperience(),
		}
		if err := o.store.InsertStatusTransition(ctx, transition); err != nil {
			// The profile update already landed; the missing audit row is
			// logged rather than failing the refresh.
			log.Error("pipeline: insert status transition failed", zap.Error(err))
		} else {
			log.Info("pipeline: status transition recorded",
				zap.String("old_status", string(stored.Status)),
				zap.String("new_status", string(result.Status)),
			)
		}
	}

	return &RefreshResult{
		ProfileID:     stored.ID,
		LinkedInURL:   canonical,
		Status:        "updated",
		Changes:       changes,
		OldStatus:     stored.Status,
		NewStatus:     result.Status,
		StatusChanged: statusChanged,
	}, nil
}

// StatusChange is one status flip observed during a batch.
type StatusChange struct {
	LinkedInURL string              `json:"url"`
	Old         model.ProfileStatus `json:"old"`
	New         model.ProfileStatus `json:"new"`
}

// BatchStats summarizes a batch run. RateLimited counts the subset of
// failures caused by upstream 429 responses, so operators can tell a
// throttled run apart from one hitting real errors.
type BatchStats struct {
	Processed     int            `json:"processed"`
	Updated       int            `json:"updated"`
	Failed        int            `json:"failed"`
	RateLimited   int            `json:"rate_limited,omitempty"`
	StatusChanges []StatusChange `json:"status_changes,omitempty"`
}

// RefreshCompany refreshes every tracked profile for one company,
// sequentially, spacing scrapes to respect the upstream rate limit.
func (o *Orchestrator) RefreshCompany(ctx context.Context, cat model.EntityCategory, company string) (*BatchStats, error) {
	log := zap.L().With(zap.String("company", company), zap.String("category", string(cat)))

	urls, err := o.store.ListCompanyProfiles(ctx, cat, company)
	if err != nil {
		return nil, err
	}
	log.Info("pipeline: starting company refresh", zap.Int("profiles", len(urls)))

	stats := &BatchStats{}
	for _, url := range urls {
		if err := o.profileLimiter.Wait(ctx); err != nil {
			return stats, err
		}

		result, err := o.RefreshProfile(ctx, cat, url, company)
		if err != nil {
			if ctx.Err() != nil {
				return stats, ctx.Err()
			}
			stats.Failed++
			if resilience.IsRateLimited(err) {
				stats.RateLimited++
				log.Warn("pipeline: refresh rate limited", zap.String("linkedin_url", url), zap.Error(err))
			} else {
				log.Error("pipeline: refresh failed", zap.String("linkedin_url", url), zap.Error(err))
			}
			continue
		}
		stats.Processed++
		if result.Status == "updated" {
			stats.Updated++
		}
		if result.StatusChanged {
			stats.StatusChanges = append(stats.StatusChanges, StatusChange{
				LinkedInURL: result.LinkedInURL,
				Old:         result.OldStatus,
				New:         result.NewStatus,
			})
		}
	}

	log.Info("pipeline: company refresh complete",
		zap.Int("processed", stats.Processed),
		zap.Int("updated", stats.Updated),
		zap.Int("failed", stats.Failed),
		zap.Int("status_changes", len(stats.StatusChanges)),
	)
	return stats, nil
}

// RefreshCompanies refreshes a list of companies with extra spacing between
// them. Per-company failures are logged and the run continues.
func (o *Orchestrator) RefreshCompanies(ctx context.Context, cat model.EntityCategory, companies []string) (*BatchStats, error) {
	total := &BatchStats{}
	for _, company := range companies {
		if err := o.companyLimiter.Wait(ctx); err != nil {
			return total, err
		}

		stats, err := o.RefreshCompany(ctx, cat, company)
		if stats != nil {
			total.Processed += stats.Processed
			total.Updated += stats.Updated
			total.Failed += stats.Failed
			total.RateLimited += stats.RateLimited
			total.StatusChanges = append(total.StatusChanges, stats.StatusChanges...)
		}
		if err != nil {
			if ctx.Err() != nil {
				return total, ctx.Err()
			}
			zap.L().Error("pipeline: company refresh failed", zap.String("company", company), zap.Error(err))
		}
	}
	return total, nil
}
