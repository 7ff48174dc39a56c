// Package linkedin provides a client for the Fresh LinkedIn Profile Data API
// (RapidAPI).
package linkedin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
)

// Client defines the profile scrape operations.
type Client interface {
	// FetchProfile retrieves the raw profile payload for a LinkedIn URL.
	FetchProfile(ctx context.Context, linkedinURL string) (*RawProfile, error)
}

// RawProfile is the upstream payload shape. Counts are typed loosely because
// the API has returned both numbers and numeric strings.
type RawProfile struct {
	FirstName       string          `json:"first_name"`
	LastName        string          `json:"last_name"`
	FullName        string          `json:"full_name"`
	Headline        string          `json:"headline"`
	LinkedInURL     string          `json:"linkedin_url"`
	JobTitle        string          `json:"job_title"`
	FollowerCount   json.RawMessage `json:"follower_count"`
	ConnectionCount json.RawMessage `json:"connection_count"`
	City            string          `json:"city"`
	Location        string          `json:"location"`
	Experiences     []RawExperience `json:"experiences"`
	Educations      []RawEducation  `json:"educations"`
}

// RawExperience is a single upstream experience entry.
type RawExperience struct {
	Company            string `json:"company"`
	CompanyLinkedInURL string `json:"company_linkedin_url"`
	DateRange          string `json:"date_range"`
	Duration           string `json:"duration"`
	Title              string `json:"title"`
}

// RawEducation is a single upstream education entry.
type RawEducation struct {
	School       string `json:"school"`
	Degree       string `json:"degree"`
	FieldOfStudy string `json:"field_of_study"`
	DateRange    string `json:"date_range"`
}

// RateLimitedError indicates the API returned 429.
type RateLimitedError struct{}

func (e *RateLimitedError) Error() string {
	return "linkedin: API rate limit reached"
}

// UpstreamError indicates a non-success, non-rate-limit response.
type UpstreamError struct {
	StatusCode int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("linkedin: request failed with status code %d", e.StatusCode)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.hc = hc
	}
}

const (
	defaultBaseURL = "https://fresh-linkedin-profile-data.p.rapidapi.com"
	rapidAPIHost   = "fresh-linkedin-profile-data.p.rapidapi.com"
)

type httpClient struct {
	apiKey  string
	baseURL string
	hc      *http.Client
}

// NewClient creates a RapidAPI-backed LinkedIn profile client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		hc:      &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// excludedSections are profile sections the tracker never reads; skipping
// them keeps the upstream response small.
var excludedSections = []string{
	"include_skills",
	"include_certifications",
	"include_publications",
	"include_honors",
	"include_volunteers",
	"include_projects",
	"include_patents",
	"include_courses",
	"include_organizations",
	"include_company_public_url",
}

func (c *httpClient) FetchProfile(ctx context.Context, linkedinURL string) (*RawProfile, error) {
	q := url.Values{}
	q.Set("linkedin_url", linkedinURL)
	for _, section := range excludedSections {
		q.Set(section, "false")
	}

	reqURL := fmt.Sprintf("%s/get-linkedin-profile?%s", c.baseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "linkedin: build request")
	}
	req.Header.Set("x-rapidapi-key", c.apiKey)
	req.Header.Set("x-rapidapi-host", rapidAPIHost)

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "linkedin: fetch profile")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &RateLimitedError{}
	default:
		io.Copy(io.Discard, resp.Body)
		return nil, &UpstreamError{StatusCode: resp.StatusCode}
	}

	var envelope struct {
		Data RawProfile `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, eris.Wrap(err, "linkedin: decode response")
	}

	return &envelope.Data, nil
}
