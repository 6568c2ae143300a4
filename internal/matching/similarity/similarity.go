// Package similarity provides the string comparison primitives the scorer
// and matcher build on. All functions are pure and defined for empty input.
package similarity

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"mindcare/internal/matching/normalize"
	pstrings "mindcare/pkg/platform/strings"
)

// Minimum token lengths (exclusive) for token overlap checks.
const (
	InstitutionTokenMinLen = 3
	NameTokenMinLen        = 2

	// RequiredTokenOverlap is how many significant tokens must be shared for
	// TokensMatch to hold.
	RequiredTokenOverlap = 2

	// DomainMatchFactor scales local-part similarity when only the email
	// domains agree.
	DomainMatchFactor = 0.7
)

// EditSimilarity is 1 - levenshtein(a, b) / max(len(a), len(b)) measured in
// runes, clamped to [0,1]. Two empty strings score 0.
func EditSimilarity(a, b string) float64 {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	maxLen := max(la, lb)
	if maxLen == 0 {
		return 0
	}
	distance := levenshtein.ComputeDistance(a, b)
	return clamp01(1 - float64(distance)/float64(maxLen))
}

// TokenOverlap counts distinct whitespace-separated tokens longer than minLen
// that appear in both a and b.
func TokenOverlap(a, b string, minLen int) int {
	right := tokenSet(b)
	count := 0
	for _, t := range pstrings.DedupeAndTrim(strings.Fields(a)) {
		if utf8.RuneCountInString(t) <= minLen {
			continue
		}
		if _, ok := right[t]; ok {
			count++
		}
	}
	return count
}

// TokensMatch is the binary form of TokenOverlap: at least
// RequiredTokenOverlap significant tokens in common.
func TokensMatch(a, b string, minLen int) bool {
	return TokenOverlap(a, b, minLen) >= RequiredTokenOverlap
}

// TokenOverlapRatio is the number of distinct shared tokens divided by the
// larger distinct token count. No minimum token length applies.
func TokenOverlapRatio(a, b string) float64 {
	left := pstrings.DedupeAndTrim(strings.Fields(a))
	right := tokenSet(b)
	denominator := max(len(left), len(right))
	if denominator == 0 {
		return 0
	}
	shared := 0
	for _, t := range left {
		if _, ok := right[t]; ok {
			shared++
		}
	}
	return clamp01(float64(shared) / float64(denominator))
}

// Contains reports whether one non-empty string is a substring of the other.
func Contains(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// EmailSimilarity is 1 for equal addresses, DomainMatchFactor times the
// local-part edit similarity when only the domains agree, and 0 otherwise.
func EmailSimilarity(a, b string) float64 {
	a, b = normalize.Email(a), normalize.Email(b)
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	localA, domainA, okA := splitEmail(a)
	localB, domainB, okB := splitEmail(b)
	if !okA || !okB || domainA != domainB {
		return 0
	}
	return DomainMatchFactor * EditSimilarity(localA, localB)
}

func splitEmail(s string) (local, domain string, ok bool) {
	at := strings.LastIndex(s, "@")
	if at <= 0 || at == len(s)-1 {
		return "", "", false
	}
	return s[:at], s[at+1:], true
}

func tokenSet(s string) map[string]struct{} {
	fields := strings.Fields(s)
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
