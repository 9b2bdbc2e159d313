package pipeline

import "strings"

// MatchFunc reports whether two keywords refer to the same thing. It drives
// fuzzy catalog lookup and scenario matching.
type MatchFunc func(a, b string) bool

// SubstringMatch is the default MatchFunc: either string contains the other.
// Empty strings never match.
func SubstringMatch(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func orDefault(fn MatchFunc) MatchFunc {
	if fn == nil {
		return SubstringMatch
	}
	return fn
}
