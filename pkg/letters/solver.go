package letters

import (
	"fmt"
	"sort"
	"strings"
)

// Mode selects how much of the longest length a Solver explores.
type Mode int

const (
	// ModeFast returns the words of the first matching key found at the
	// longest matching length. Among same-length candidates this is not
	// necessarily the highest-frequency one: competing keys are never looked at.
	ModeFast Mode = iota
	// ModeExhaustive returns every word of the longest matching length.
	ModeExhaustive
)

func (m Mode) String() string {
	switch m {
	case ModeFast:
		return "fast"
	case ModeExhaustive:
		return "exhaustive"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode accepts "fast" (or "quick") and "exhaustive" (or "all").
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fast", "quick":
		return ModeFast, nil
	case "exhaustive", "all":
		return ModeExhaustive, nil
	default:
		return ModeFast, fmt.Errorf("unknown solver mode %q", s)
	}
}

// Solver answers Letters queries against a borrowed, read-only Index.
type Solver struct {
	index *Index
	mode  Mode
	rank  bool
}

// SolverOption configures a Solver.
type SolverOption func(*Solver)

// WithMode sets the search mode. The default is ModeExhaustive.
func WithMode(m Mode) SolverOption {
	return func(s *Solver) {
		s.mode = m
	}
}

// WithRanking toggles ordering by descending frequency. On by default; it
// has no effect on an index without frequencies.
func WithRanking(rank bool) SolverOption {
	return func(s *Solver) {
		s.rank = rank
	}
}

// NewSolver creates a solver over idx. A nil index never matches.
func NewSolver(idx *Index, opts ...SolverOption) *Solver {
	s := &Solver{
		index: idx,
		mode:  ModeExhaustive,
		rank:  true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Mode returns the search mode.
func (s *Solver) Mode() Mode {
	return s.mode
}

// Solve returns the longest dictionary words formable from letters, using
// each letter at most as often as it appears. An empty result means no word
// fits; it is not an error.
func (s *Solver) Solve(letters string) []string {
	words, _ := s.SolveLength(letters)
	return words
}

// SolveLength is Solve that also reports the length of the returned words
// (0 when nothing fits).
func (s *Solver) SolveLength(letters string) ([]string, int) {
	if letters == "" || s.index == nil || s.index.count == 0 {
		return []string{}, 0
	}

	query := s.index.alphabet.Key(letters)

	// A key of length n needs n tokens the alphabet knows, so lengths above
	// the query's known-token count (or the longest word) cannot match.
	longest := query.Len()
	if longest > s.index.longest {
		longest = s.index.longest
	}

	for n := longest; n > 0; n-- {
		b, ok := s.index.buckets[n]
		if !ok {
			continue
		}
		var found []string
		for _, g := range b.groups {
			if !query.Contains(g.key) {
				continue
			}
			found = append(found, g.words...)
			if s.mode == ModeFast {
				break
			}
		}
		if len(found) > 0 {
			return s.order(found), n
		}
	}
	return []string{}, 0
}

// order sorts words by descending frequency. The sort is stable over the
// build order, so ties come out the same way for a given index.
func (s *Solver) order(words []string) []string {
	if !s.rank || !s.index.ranked || len(words) < 2 {
		return words
	}
	freqs := make(map[string]int, len(words))
	for _, w := range words {
		freqs[w], _ = s.index.Frequency(w)
	}
	sort.SliceStable(words, func(i, j int) bool {
		return freqs[words[i]] > freqs[words[j]]
	})
	return words
}
