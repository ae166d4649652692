// Package harness generates random Letters games with a known answer and
// times the solver against them.
package harness

import (
	"slices"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/bastiangx/letterserve/pkg/letters"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/charmbracelet/log"
)

// Alphabet is the default set of letters tests are drawn from.
const Alphabet = "abcdefghijklmnopqrstuvwxyz"

// Game is a generated dictionary whose longest fit for Letters is at least
// as long as Solution, and no word is strictly longer while fitting.
type Game struct {
	Letters  string
	Solution string
	Words    []string
}

// Generator produces random games. Equal seeds give equal games.
type Generator struct {
	faker      *gofakeit.Faker
	alphabet   []rune
	numLetters int
	numWords   int
}

// NewGenerator creates a generator of games with numLetters letters and a
// numWords dictionary. Seed 0 picks a random seed.
func NewGenerator(seed uint64, numLetters, numWords int) *Generator {
	if numLetters < 1 {
		numLetters = 1
	}
	if numWords < 1 {
		numWords = 1
	}
	return &Generator{
		faker:      gofakeit.New(seed),
		alphabet:   []rune(Alphabet),
		numLetters: numLetters,
		numWords:   numWords,
	}
}

// Generate builds the letters first, then a solution sampled from them, then
// the rest of the dictionary.
func (g *Generator) Generate() Game {
	ls := g.randomWord(g.numLetters)

	picked := []rune(ls)
	g.shuffle(picked)
	solution := string(picked[:g.faker.Number(1, len(picked))])

	words := make([]string, 0, g.numWords)
	words = append(words, solution)
	for len(words) < g.numWords {
		w := g.randomWord(g.faker.Number(1, g.numLetters))
		// redraw the length too: with many letters every short word fits
		for beats(w, solution, ls) {
			w = g.randomWord(g.faker.Number(1, g.numLetters))
		}
		words = append(words, w)
	}
	return Game{Letters: ls, Solution: solution, Words: words}
}

// beats reports whether word would be a strictly better answer than solution.
func beats(word, solution, ls string) bool {
	if utf8.RuneCountInString(word) <= utf8.RuneCountInString(solution) {
		return false
	}
	return Fits(word, ls)
}

func (g *Generator) randomWord(n int) string {
	rs := make([]rune, n)
	for i := range rs {
		rs[i] = g.alphabet[g.faker.Number(0, len(g.alphabet)-1)]
	}
	return string(rs)
}

func (g *Generator) shuffle(rs []rune) {
	for i := len(rs) - 1; i > 0; i-- {
		j := g.faker.Number(0, i)
		rs[i], rs[j] = rs[j], rs[i]
	}
}

// Fits is the classical multiset check: every letter of word occurs in ls at
// least as often as in word.
func Fits(word, ls string) bool {
	have := make(map[rune]int, len(ls))
	for _, r := range ls {
		have[r]++
	}
	for _, r := range word {
		have[r]--
		if have[r] < 0 {
			return false
		}
	}
	return true
}

// BruteForce returns every distinct word of the longest length that fits ls,
// sorted. It checks each word directly and serves as a reference answer.
func BruteForce(words []string, ls string) []string {
	best := 0
	found := make(map[string]bool)
	for _, w := range words {
		if w == "" || !Fits(w, ls) {
			continue
		}
		n := utf8.RuneCountInString(w)
		switch {
		case n > best:
			best = n
			found = map[string]bool{w: true}
		case n == best:
			found[w] = true
		}
	}
	out := make([]string, 0, len(found))
	for w := range found {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// Report is the outcome of one timed run.
type Report struct {
	Letters   string
	Solution  string
	Result    []string
	Correct   bool
	Generate  time.Duration
	Build     time.Duration
	Solve     time.Duration
	NumWords  int
	NumLength int
}

// Run generates a game, builds an index from it and solves it, timing each
// step. A run is correct when the result has the solution's length and
// contains it (exhaustive mode) or any word of that length (fast mode).
func (g *Generator) Run(mode letters.Mode) (Report, error) {
	start := time.Now()
	game := g.Generate()
	genTime := time.Since(start)

	start = time.Now()
	idx, err := letters.Build(letters.Words(game.Words...))
	if err != nil {
		return Report{}, err
	}
	buildTime := time.Since(start)

	solver := letters.NewSolver(idx, letters.WithMode(mode))
	start = time.Now()
	result, n := solver.SolveLength(game.Letters)
	solveTime := time.Since(start)

	correct := n == utf8.RuneCountInString(game.Solution)
	if correct && mode == letters.ModeExhaustive {
		correct = slices.Contains(result, game.Solution)
	}

	log.Debugf("Harness run: letters=[%d], words=[%d], gen=[%v], build=[%v], solve=[%v], correct=[%v]",
		g.numLetters, g.numWords, genTime, buildTime, solveTime, correct)

	return Report{
		Letters:   game.Letters,
		Solution:  game.Solution,
		Result:    result,
		Correct:   correct,
		Generate:  genTime,
		Build:     buildTime,
		Solve:     solveTime,
		NumWords:  g.numWords,
		NumLength: g.numLetters,
	}, nil
}
