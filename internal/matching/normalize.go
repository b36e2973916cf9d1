package matching

import (
	"regexp"
	"strings"
	"time"
)

var (
	businessSuffixPattern = regexp.MustCompile(`\b(LLC|INC|CORP|LTD|CO\.?)\b`)

	streetAbbreviations = []struct {
		pattern     *regexp.Regexp
		replacement string
	}{
		{regexp.MustCompile(`\bSTREET\b`), "ST"},
		{regexp.MustCompile(`\bAVENUE\b`), "AVE"},
		{regexp.MustCompile(`\bBOULEVARD\b`), "BLVD"},
		{regexp.MustCompile(`\bDRIVE\b`), "DR"},
		{regexp.MustCompile(`\bROAD\b`), "RD"},
		{regexp.MustCompile(`\bSUITE\b`), "STE"},
	}

	dateLayouts = []string{
		"2006-01-02",
		"2006-01-02 15:04:05",
		"01/02/2006",
		"01-02-2006",
		"02/01/2006",
		"2006/01/02",
	}
)

// NormalizeIdentifier uppercases an identifier and strips every character
// outside [A-Z0-9], so "BOL-12345" and "bol 12345" collapse to the same
// value. Normalization is idempotent.
func NormalizeIdentifier(raw string) string {
	upper := strings.ToUpper(strings.TrimSpace(raw))
	if upper == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(upper))
	for _, r := range upper {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeName uppercases a company or facility name, drops standalone
// business-suffix tokens (LLC, INC, CORP, LTD, CO) and collapses whitespace.
func NormalizeName(raw string) string {
	upper := strings.ToUpper(strings.TrimSpace(raw))
	if upper == "" {
		return ""
	}
	stripped := businessSuffixPattern.ReplaceAllString(upper, "")
	return collapseWhitespace(stripped)
}

// NormalizeAddress uppercases an address and rewrites common street-type
// words to their standard abbreviations.
func NormalizeAddress(raw string) string {
	upper := strings.ToUpper(strings.TrimSpace(raw))
	if upper == "" {
		return ""
	}
	for _, abbr := range streetAbbreviations {
		upper = abbr.pattern.ReplaceAllString(upper, abbr.replacement)
	}
	return collapseWhitespace(upper)
}

// ParseDate tries the date formats seen in parsed document data, in a
// fixed order; the first successful parse wins. Unparsable or empty input
// yields nil, never an error.
func ParseDate(value any) *time.Time {
	switch v := value.(type) {
	case time.Time:
		if v.IsZero() {
			return nil
		}
		ts := v
		return &ts
	case *time.Time:
		if v == nil || v.IsZero() {
			return nil
		}
		ts := *v
		return &ts
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return nil
		}
		for _, layout := range dateLayouts {
			if ts, err := time.Parse(layout, trimmed); err == nil {
				return &ts
			}
		}
	}
	return nil
}

func collapseWhitespace(value string) string {
	return strings.Join(strings.Fields(value), " ")
}
