// Package normalize canonicalizes free-text credential fields into forms that
// can be compared. Every function is total, treats empty input as empty, and
// is idempotent: applying it to its own output changes nothing.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// RegistryPrefix is prepended to bare registration numbers.
const RegistryPrefix = "BMDC"

var (
	titleTokens = map[string]struct{}{"dr": {}, "prof": {}, "professor": {}}

	institutionNoise = map[string]struct{}{
		"university": {},
		"college":    {},
		"institute":  {},
		"school":     {},
	}

	registryPrefixes = map[string]struct{}{RegistryPrefix: {}, "A": {}, "D": {}}
)

// fold strips combining marks so "José" and "Jose" compare equal.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// lettersOnly lower-cases s, keeps letters and whitespace, and collapses runs
// of whitespace to a single space.
func lettersOnly(s string) string {
	s = strings.ToLower(fold(s))
	s = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r):
			return r
		case unicode.IsSpace(r):
			return ' '
		default:
			return -1
		}
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// Name lower-cases a person's name, drops leading academic titles and keeps
// letters and single spaces only.
func Name(s string) string {
	tokens := strings.Fields(lettersOnly(s))
	// a lone title is not stripped
	for len(tokens) > 1 {
		if _, ok := titleTokens[tokens[0]]; !ok {
			break
		}
		tokens = tokens[1:]
	}
	return strings.Join(tokens, " ")
}

// Degree lower-cases a degree title and strips everything but letters and spaces.
func Degree(s string) string {
	return lettersOnly(s)
}

// Institution lower-cases an institution name, strips punctuation and drops
// generic words like "university" that carry no identifying signal.
func Institution(s string) string {
	tokens := strings.Fields(lettersOnly(s))
	kept := tokens[:0]
	for _, t := range tokens {
		if _, noise := institutionNoise[t]; noise {
			continue
		}
		kept = append(kept, t)
	}
	return strings.Join(kept, " ")
}

// Text lower-cases s and splits it on anything that is not a letter or digit.
// Used for specializations.
func Text(s string) string {
	s = strings.ToLower(fold(s))
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// Email trims and lower-cases an address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// RegistrationDigits returns the ASCII digits of a registration number in order.
func RegistrationDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Registration returns the canonical "<PREFIX>-<digits>" form of a
// registration number. A recognised registry prefix leading the input is
// kept; anything else gets RegistryPrefix. Input without digits yields "".
func Registration(s string) string {
	digits := RegistrationDigits(s)
	if digits == "" {
		return ""
	}
	prefix := leadingLetters(s)
	if _, ok := registryPrefixes[prefix]; !ok {
		prefix = RegistryPrefix
	}
	return prefix + "-" + digits
}

func leadingLetters(s string) string {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) {
		c := s[end]
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			break
		}
		end++
	}
	return strings.ToUpper(s[:end])
}
