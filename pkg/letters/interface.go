// Package letters is the core: it indexes a dictionary by word length and
// letter multiset, and answers Letters game queries (the longest words that
// can be spelled from a bag of letters) against that index.
package letters

// ISolver is implemented by anything that can answer Letters queries.
type ISolver interface {
	// Solve returns the longest words formable from letters
	Solve(letters string) []string

	// SolveLength also reports the length of the returned words
	SolveLength(letters string) ([]string, int)

	// Mode returns the search mode
	Mode() Mode
}

var _ ISolver = (*Solver)(nil)
