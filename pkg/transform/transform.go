// pkg/transform/transform.go

// Package transform provides small value-level transformations shared by
// the cleaning pipeline and the ingestion sources.
package transform

import (
	"regexp"
	"strings"
	"time"
)

var (
	nonAlnumRE = regexp.MustCompile(`[^a-zA-Z0-9\s]`)
	nonDigitRE = regexp.MustCompile(`\D`)
	domainRE   = regexp.MustCompile(`@([\w.-]+)`)
	spaceRE    = regexp.MustCompile(`\s+`)
)

// CleanText removes special characters, collapses whitespace and lowercases.
func CleanText(text string) string {
	text = nonAlnumRE.ReplaceAllString(text, "")
	text = spaceRE.ReplaceAllString(text, " ")
	return strings.ToLower(strings.TrimSpace(text))
}

// NormalizePhone standardizes an Indian phone number to +91-XXXXXXXXXX.
// The second return is false when the input cannot be normalized.
func NormalizePhone(phone string) (string, bool) {
	digits := nonDigitRE.ReplaceAllString(phone, "")
	switch {
	case len(digits) == 10:
		return "+91-" + digits, true
	case len(digits) == 12 && strings.HasPrefix(digits, "91"):
		return "+91-" + digits[2:], true
	default:
		return "", false
	}
}

// DigitsOnly strips everything but digits from a phone-like string.
func DigitsOnly(s string) string {
	return nonDigitRE.ReplaceAllString(s, "")
}

// dateLayouts are tried in order by ParseDate.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
	"01/02/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	time.RFC3339,
}

// ParseDate parses common date formats. The second return is false when no
// layout matches.
func ParseDate(dateStr string) (time.Time, bool) {
	dateStr = strings.TrimSpace(dateStr)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, dateStr); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ExtractDomain returns the domain portion of an email address.
// The second return is false when the input has no domain.
func ExtractDomain(email string) (string, bool) {
	m := domainRE.FindStringSubmatch(email)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// TitleCase trims, collapses internal whitespace and title-cases each word.
func TitleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		lower := strings.ToLower(w)
		words[i] = strings.ToUpper(lower[:1]) + lower[1:]
	}
	return strings.Join(words, " ")
}
