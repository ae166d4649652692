package letters_test

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"unicode/utf8"

	"github.com/bastiangx/letterserve/internal/harness"
	"github.com/bastiangx/letterserve/pkg/letters"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

func mustBuild(t testing.TB, entries []letters.Entry) *letters.Index {
	t.Helper()
	idx, err := letters.Build(entries)
	require.NoError(t, err)
	return idx
}

func sorted(words []string) []string {
	out := append([]string(nil), words...)
	sort.Strings(out)
	return out
}

func TestSolveScenarios(t *testing.T) {
	catDict := []letters.Entry{{"cat", 5}, {"at", 3}, {"act", 7}, {"a", 1}}

	testCases := []struct {
		description string
		dict        []letters.Entry
		query       string
		exhaustive  []string
		fastOneOf   []string
	}{
		{"frequency ordering", catDict, "tac", []string{"act", "cat"}, []string{"cat", "act"}},
		{"no overlap", []letters.Entry{{"dog", 1}}, "cat", []string{}, nil},
		{"multiplicity respected", []letters.Entry{{"aa", 2}, {"a", 1}}, "a", []string{"a"}, []string{"a"}},
		{"empty dictionary", nil, "xyz", []string{}, nil},
		{"empty query", catDict, "", []string{}, nil},
		{"shorter fallback", catDict, "az", []string{"a"}, []string{"a"}},
		{"extra letters ignored", catDict, "qqctaqq", []string{"act", "cat"}, []string{"cat", "act"}},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			idx := mustBuild(t, tc.dict)

			got := letters.NewSolver(idx, letters.WithMode(letters.ModeExhaustive)).Solve(tc.query)
			assert.Equal(t, tc.exhaustive, got)

			fast := letters.NewSolver(idx, letters.WithMode(letters.ModeFast)).Solve(tc.query)
			if tc.fastOneOf == nil {
				assert.Empty(t, fast)
				return
			}
			require.NotEmpty(t, fast)
			for _, w := range fast {
				assert.Contains(t, tc.fastOneOf, w)
			}
		})
	}
}

// FAST stops at the first matching key in build order, even when a later key
// of the same length holds a more frequent word.
func TestFastReturnsFirstKeyNotBest(t *testing.T) {
	idx := mustBuild(t, []letters.Entry{{"tab", 1}, {"cat", 100}, {"act", 50}})
	solver := letters.NewSolver(idx, letters.WithMode(letters.ModeFast))

	assert.Equal(t, []string{"tab"}, solver.Solve("abct"))

	exhaustive := letters.NewSolver(idx).Solve("abct")
	assert.Equal(t, []string{"cat", "act", "tab"}, exhaustive)
}

func TestSolveLength(t *testing.T) {
	idx := mustBuild(t, letters.Words("ox", "box", "boxer", "be"))
	solver := letters.NewSolver(idx)

	words, n := solver.SolveLength("rebox")
	assert.Equal(t, []string{"boxer"}, words)
	assert.Equal(t, 5, n)

	words, n = solver.SolveLength("xob")
	assert.Equal(t, []string{"box"}, words)
	assert.Equal(t, 3, n)

	words, n = solver.SolveLength("zzz")
	assert.Empty(t, words)
	assert.Equal(t, 0, n)
}

func TestSolveWithoutRanking(t *testing.T) {
	idx := mustBuild(t, []letters.Entry{{"cat", 5}, {"act", 7}})

	ranked := letters.NewSolver(idx).Solve("cat")
	assert.Equal(t, []string{"act", "cat"}, ranked)

	unranked := letters.NewSolver(idx, letters.WithRanking(false)).Solve("cat")
	assert.Equal(t, []string{"cat", "act"}, unranked)
}

func TestSolveZeroFrequencySortsLast(t *testing.T) {
	idx := mustBuild(t, []letters.Entry{{"tea", 0}, {"eat", 2}, {"ate", 0}, {"eta", 9}})
	got := letters.NewSolver(idx).Solve("tae")
	assert.Equal(t, []string{"eta", "eat", "tea", "ate"}, got)
}

func TestSolveNilIndex(t *testing.T) {
	solver := letters.NewSolver(nil)
	assert.Empty(t, solver.Solve("abc"))
}

func TestSolveDoesNotAliasIndex(t *testing.T) {
	idx := mustBuild(t, letters.Words("ab", "ba"))
	solver := letters.NewSolver(idx)

	first := solver.Solve("ab")
	first[0] = "zz"
	assert.Equal(t, []string{"ab", "ba"}, solver.Solve("ab"))
}

func TestParseMode(t *testing.T) {
	testCases := []struct {
		input    string
		expected letters.Mode
		wantErr  bool
	}{
		{"fast", letters.ModeFast, false},
		{"Quick", letters.ModeFast, false},
		{"exhaustive", letters.ModeExhaustive, false},
		{" all ", letters.ModeExhaustive, false},
		{"slow", letters.ModeFast, true},
	}
	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			m, err := letters.ParseMode(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, m)
		})
	}
	assert.Equal(t, "fast", letters.ModeFast.String())
	assert.Equal(t, "exhaustive", letters.ModeExhaustive.String())
}

func TestValidateQuery(t *testing.T) {
	assert.ErrorIs(t, letters.ValidateQuery("", 0), letters.ErrDegenerateQuery)
	assert.ErrorIs(t, letters.ValidateQuery("abcdef", 5), letters.ErrQueryTooLong)
	assert.NoError(t, letters.ValidateQuery("abcde", 5))
	assert.NoError(t, letters.ValidateQuery("abcdef", 0))
}

// Cross-checks both modes against a brute-force scan on random games.
func TestSolveMatchesBruteForce(t *testing.T) {
	configs := []struct {
		letters int
		words   int
	}{
		{1, 10}, {3, 50}, {6, 300}, {10, 1000}, {16, 2000}, {30, 3000},
	}

	for _, cfg := range configs {
		t.Run(fmt.Sprintf("letters_%d_words_%d", cfg.letters, cfg.words), func(t *testing.T) {
			gen := harness.NewGenerator(uint64(cfg.letters*1000+cfg.words), cfg.letters, cfg.words)
			for round := 0; round < 5; round++ {
				game := gen.Generate()
				idx := mustBuild(t, letters.Words(game.Words...))

				want := harness.BruteForce(game.Words, game.Letters)
				exhaustive, n := letters.NewSolver(idx).SolveLength(game.Letters)
				assert.Equal(t, want, sorted(exhaustive), "letters %q", game.Letters)
				assert.Equal(t, utf8.RuneCountInString(game.Solution), n)
				assert.Contains(t, exhaustive, game.Solution)

				fast := letters.NewSolver(idx, letters.WithMode(letters.ModeFast)).Solve(game.Letters)
				require.NotEmpty(t, fast)
				for _, w := range fast {
					assert.Contains(t, exhaustive, w, "fast result must be a subset of exhaustive")
					assert.True(t, harness.Fits(w, game.Letters))
				}
			}
		})
	}
}

// Arbitrary (non-planted) queries: nothing longer than the answer may fit.
func TestSolveLongestFirst(t *testing.T) {
	gen := harness.NewGenerator(99, 8, 400)
	game := gen.Generate()
	idx := mustBuild(t, letters.Words(game.Words...))
	solver := letters.NewSolver(idx)

	queries := harness.NewGenerator(100, 8, 1)
	for i := 0; i < 50; i++ {
		q := queries.Generate().Letters
		got, n := solver.SolveLength(q)
		for _, w := range game.Words {
			if harness.Fits(w, q) {
				assert.LessOrEqual(t, utf8.RuneCountInString(w), n, "query %q, word %q", q, w)
			}
		}
		for _, w := range got {
			assert.Equal(t, n, utf8.RuneCountInString(w))
		}
	}
}

func TestSolveLongQuery(t *testing.T) {
	gen := harness.NewGenerator(5, 300, 5000)
	report, err := gen.Run(letters.ModeExhaustive)
	require.NoError(t, err)
	assert.True(t, report.Correct, "solution %q, got %v", report.Solution, report.Result)
}

func TestSolveFrequencyOrderNonIncreasing(t *testing.T) {
	gen := harness.NewGenerator(11, 5, 2000)
	game := gen.Generate()
	entries := make([]letters.Entry, len(game.Words))
	for i, w := range game.Words {
		entries[i] = letters.Entry{Word: w, Frequency: (i * 7919) % 101}
	}
	idx := mustBuild(t, entries)

	got := letters.NewSolver(idx).Solve(game.Letters)
	for i := 1; i < len(got); i++ {
		prev, _ := idx.Frequency(got[i-1])
		cur, _ := idx.Frequency(got[i])
		assert.GreaterOrEqual(t, prev, cur)
	}
}

func TestSolveAll(t *testing.T) {
	idx := mustBuild(t, []letters.Entry{{"cat", 5}, {"act", 7}, {"dog", 2}, {"a", 1}})
	solver := letters.NewSolver(idx)

	queries := []string{"tac", "god", "", "zzz", "a"}
	results, err := letters.SolveAll(context.Background(), solver, queries, 2)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"act", "cat"}, {"dog"}, {}, {}, {"a"},
	}, results)
}

func TestSolveAllCancelled(t *testing.T) {
	idx := mustBuild(t, letters.Words("a"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := letters.SolveAll(ctx, letters.NewSolver(idx), []string{"a", "a"}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func BenchmarkSolve(b *testing.B) {
	for _, numLetters := range []int{9, 16, 100, 1000} {
		b.Run(fmt.Sprintf("letters_%d", numLetters), func(b *testing.B) {
			gen := harness.NewGenerator(42, numLetters, 50000)
			game := gen.Generate()
			idx := mustBuild(b, letters.Words(game.Words...))
			solver := letters.NewSolver(idx, letters.WithMode(letters.ModeExhaustive))

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				solver.Solve(game.Letters)
			}
		})
	}
}
