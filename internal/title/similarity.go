package title

import (
	"github.com/pmezard/go-difflib/difflib"
)

// Ratio returns the Ratcliff/Obershelp similarity of a and b: twice the
// number of characters in the longest matching blocks divided by the total
// number of characters. The result lies in [0, 1]. Two empty strings are
// identical.
//
// The matcher is not symmetric on its own, so the pair is put in a fixed
// order first to make Ratio(a, b) == Ratio(b, a).
func Ratio(a, b string) float64 {
	if a == b {
		return 1
	}

	if a > b {
		a, b = b, a
	}

	m := difflib.NewMatcherWithJunk(runes(a), runes(b), false, nil)

	return m.Ratio()
}

// runes splits s into single-character elements for the matcher.
func runes(s string) []string {
	out := make([]string, 0, len(s))

	for _, r := range s {
		out = append(out, string(r))
	}

	return out
}
