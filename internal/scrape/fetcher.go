package scrape

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/stealthscout/scout-cli/internal/model"
	"github.com/stealthscout/scout-cli/internal/resilience"
	"github.com/stealthscout/scout-cli/pkg/linkedin"
)

// Fetcher wraps the LinkedIn client with URL canonicalization, transient
// retry, and normalization into the canonical Profile shape.
type Fetcher struct {
	client linkedin.Client
	retry  resilience.RetryConfig
}

// NewFetcher creates a Fetcher with the default retry policy.
func NewFetcher(client linkedin.Client) *Fetcher {
	return &Fetcher{
		client: client,
		retry:  resilience.DefaultRetryConfig(),
	}
}

// Fetch scrapes and normalizes a single profile. Rate-limit and 5xx
// responses are retried with backoff; the typed upstream error surfaces once
// retries are exhausted.
func (f *Fetcher) Fetch(ctx context.Context, linkedinURL string) (model.Profile, error) {
	canonical := CanonicalURL(linkedinURL)
	log := zap.L().With(zap.String("linkedin_url", canonical))

	raw, err := resilience.DoVal(ctx, f.retry, func(ctx context.Context) (*linkedin.RawProfile, error) {
		raw, err := f.client.FetchProfile(ctx, canonical)
		if err != nil {
			return nil, tagTransient(err)
		}
		return raw, nil
	})
	if err != nil {
		log.Warn("scrape: fetch failed", zap.Error(err))
		return model.Profile{}, err
	}

	p := Normalize(raw)
	// The identity key is the canonical URL, not whatever casing or slash
	// form the upstream echoes back.
	p.LinkedInURL = canonical
	log.Info("scrape: profile fetched",
		zap.Int("experience_entries", len(p.Experience)),
		zap.Int("education_entries", len(p.Education)),
	)
	return p, nil
}

// tagTransient marks retryable upstream failures so the retry loop can
// distinguish them from permanent 4xx responses.
func tagTransient(err error) error {
	var rle *linkedin.RateLimitedError
	if errors.As(err, &rle) {
		return resilience.NewTransientError(err, 429)
	}
	var ue *linkedin.UpstreamError
	if errors.As(err, &ue) && resilience.IsTransientHTTPStatus(ue.StatusCode) {
		return resilience.NewTransientError(err, ue.StatusCode)
	}
	return err
}
