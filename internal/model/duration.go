package model

import (
	"regexp"
	"strconv"
)

// durationToken matches "<number> <unit>" with optional whitespace, where
// unit is yr/yrs/mo/mos in any case.
var durationToken = regexp.MustCompile(`(?i)(\d+)\s*(yrs?|mos?)`)

// ParseDurationMonths converts a free-text tenure string such as
// "3 yrs 2 mos" into a total month count. Unmatched text is ignored rather
// than rejected, and empty or fully-unmatched input yields 0: the result
// drives sorting, so the function is total.
func ParseDurationMonths(s string) int {
	total := 0
	for _, m := range durationToken.FindAllStringSubmatch(s, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		switch m[2][0] {
		case 'y', 'Y':
			total += n * 12
		case 'm', 'M':
			total += n
		}
	}
	return total
}
