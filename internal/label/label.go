// Package label derives the secondary profile attributes: repeat founder,
// role at the target company, and senior operator.
package label

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/stealthscout/scout-cli/internal/model"
)

// founderKeywords mark an experience title as a founder role.
var founderKeywords = []string{
	"founder",
	"co-founder",
	"co founder",
	"chief executive officer",
	"ceo",
}

// RepeatFounder reports whether the profile holds more than one role whose
// title contains a founder keyword. A single founder role does not qualify.
func RepeatFounder(p *model.Profile) bool {
	if len(p.Experience) == 0 {
		zap.L().Warn("label: no experience entries", zap.String("full_name", p.FullName))
		return false
	}

	count := 0
	for _, exp := range p.Experience {
		title := strings.ToLower(exp.Title)
		for _, kw := range founderKeywords {
			if strings.Contains(title, kw) {
				count++
				break
			}
		}
	}
	return count > 1
}

// AmbiguousRoleError reports that the role at a company could not be derived
// automatically: either no experience entry matches the company, or several
// do. Candidates holds the matching entries, empty when none matched.
type AmbiguousRoleError struct {
	Company    string
	Candidates []model.Experience
}

func (e *AmbiguousRoleError) Error() string {
	if len(e.Candidates) == 0 {
		return fmt.Sprintf("label: no experience at %q", e.Company)
	}
	return fmt.Sprintf("label: %d roles at %q", len(e.Candidates), e.Company)
}

// RoleAtCompany derives the "<title> at <company> for <duration>" statement
// for the single experience entry matching company (case-insensitive).
// Anything other than exactly one match returns an AmbiguousRoleError so the
// caller can fall back to the operator.
func RoleAtCompany(p *model.Profile, company string) (string, error) {
	var matches []model.Experience
	for _, exp := range p.Experience {
		if strings.EqualFold(exp.Company, company) {
			matches = append(matches, exp)
		}
	}

	if len(matches) != 1 {
		return "", &AmbiguousRoleError{Company: company, Candidates: matches}
	}
	return fmt.Sprintf("%s at %s for %s", matches[0].Title, company, matches[0].Duration), nil
}
