// Package scrape turns raw LinkedIn API payloads into canonical profiles.
package scrape

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/stealthscout/scout-cli/internal/model"
	"github.com/stealthscout/scout-cli/pkg/linkedin"
)

// CanonicalURL enforces the trailing slash used as part of the profile
// identity key.
func CanonicalURL(linkedinURL string) string {
	if strings.HasSuffix(linkedinURL, "/") {
		return linkedinURL
	}
	return linkedinURL + "/"
}

// Normalize maps a raw scrape payload into the canonical Profile shape.
// Missing fields default to zero values rather than failing: the upstream
// payload routinely omits keys.
func Normalize(raw *linkedin.RawProfile) model.Profile {
	if raw == nil {
		return model.Profile{}
	}

	p := model.Profile{
		FirstName:       raw.FirstName,
		LastName:        raw.LastName,
		FullName:        raw.FullName,
		Headline:        raw.Headline,
		LinkedInURL:     raw.LinkedInURL,
		JobTitle:        raw.JobTitle,
		FollowerCount:   coerceCount(raw.FollowerCount),
		ConnectionCount: coerceCount(raw.ConnectionCount),
		City:            raw.City,
		Location:        raw.Location,
	}

	p.Experience = make([]model.Experience, 0, len(raw.Experiences))
	for _, exp := range raw.Experiences {
		p.Experience = append(p.Experience, model.Experience{
			Company:            exp.Company,
			CompanyLinkedInURL: exp.CompanyLinkedInURL,
			DateRange:          exp.DateRange,
			Duration:           exp.Duration,
			Title:              exp.Title,
		})
	}

	p.Education = make([]model.Education, 0, len(raw.Educations))
	for _, edu := range raw.Educations {
		p.Education = append(p.Education, model.Education{
			School:       edu.School,
			Degree:       edu.Degree,
			FieldOfStudy: edu.FieldOfStudy,
			DateRange:    edu.DateRange,
		})
	}

	p.PreviousCompanies = PreviousCompanies(p.Experience)

	return p
}

// PreviousCompanies derives the ordered set of non-empty company names from
// an experience list.
func PreviousCompanies(experience []model.Experience) []string {
	seen := make(map[string]bool, len(experience))
	out := make([]string, 0, len(experience))
	for _, exp := range experience {
		if exp.Company == "" || seen[exp.Company] {
			continue
		}
		seen[exp.Company] = true
		out = append(out, exp.Company)
	}
	return out
}

// coerceCount tolerates the upstream's mixed count encodings: plain numbers,
// numeric strings, and suffixed strings like "500+".
func coerceCount(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}

	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0
	}
	s = strings.TrimSpace(s)

	digits := s
	for i, r := range s {
		if r < '0' || r > '9' {
			digits = s[:i]
			break
		}
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return n
}
