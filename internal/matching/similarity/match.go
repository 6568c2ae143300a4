package similarity

import (
	"strings"

	"mindcare/internal/matching/normalize"
)

// degreeGroups lists degree spellings that name the same qualification.
// Entries are in normalize.Degree form.
var degreeGroups = [][]string{
	{"bachelor of psychology", "b psyc", "ba psychology", "bs psychology"},
	{"master of psychology", "m psyc", "ma psychology", "ms psychology"},
	{"doctor of psychology", "psyd", "phd psychology"},
	{"bachelor of science", "bsc", "bs"},
	{"master of science", "msc", "ms"},
	{"doctor of philosophy", "phd"},
}

// DegreesEquivalent reports whether both normalized degree strings mention a
// spelling from the same synonym group. Spellings match on whole words, so
// "bs" does not match inside "jobs".
func DegreesEquivalent(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	for _, group := range degreeGroups {
		if mentionsAny(a, group) && mentionsAny(b, group) {
			return true
		}
	}
	return false
}

func mentionsAny(s string, phrases []string) bool {
	padded := " " + s + " "
	for _, p := range phrases {
		if strings.Contains(padded, " "+p+" ") {
			return true
		}
	}
	return false
}

// DegreesMatch compares raw degree titles: equal, containment or equivalent
// after normalization.
func DegreesMatch(a, b string) bool {
	na, nb := normalize.Degree(a), normalize.Degree(b)
	if na == "" || nb == "" {
		return false
	}
	return na == nb || Contains(na, nb) || DegreesEquivalent(na, nb)
}

// InstitutionsMatch compares raw institution names: equal, containment or at
// least two shared significant words after normalization.
func InstitutionsMatch(a, b string) bool {
	na, nb := normalize.Institution(a), normalize.Institution(b)
	if na == "" || nb == "" {
		return false
	}
	return na == nb || Contains(na, nb) || TokensMatch(na, nb, InstitutionTokenMinLen)
}

// NamesMatch compares raw person names: equal, containment or at least two
// shared significant words after normalization.
func NamesMatch(a, b string) bool {
	na, nb := normalize.Name(a), normalize.Name(b)
	if na == "" || nb == "" {
		return false
	}
	return na == nb || Contains(na, nb) || TokensMatch(na, nb, NameTokenMinLen)
}
