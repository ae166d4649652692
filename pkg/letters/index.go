package letters

import (
	"errors"
	"iter"
	"slices"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// Entry is a dictionary word with an optional frequency weight.
// A zero frequency means the word is unranked.
type Entry struct {
	Word      string
	Frequency int
}

// group holds the words sharing one letter multiset.
type group struct {
	key   Key
	words []string
}

// bucket holds every group of one word length, in first-insertion order.
type bucket struct {
	groups []*group
	byID   map[string]*group
}

// Index is the length-bucketed dictionary: word length -> multiset key ->
// words. It is read-only once Build returns and safe for concurrent queries.
type Index struct {
	alphabet *Alphabet
	buckets  map[int]*bucket
	words    *patricia.Trie
	count    int
	groups   int
	longest  int
	ranked   bool
	skipped  int
}

// errRanked stops the frequency scan at the first weighted word.
var errRanked = errors.New("ranked")

type buildOptions struct {
	strict       bool
	requireWords bool
}

// Option configures Build.
type Option func(*buildOptions)

// WithStrict makes Build fail on the first invalid entry instead of skipping it.
func WithStrict(strict bool) Option {
	return func(o *buildOptions) {
		o.strict = strict
	}
}

// WithRequireWords makes an empty dictionary an error.
func WithRequireWords(require bool) Option {
	return func(o *buildOptions) {
		o.requireWords = require
	}
}

// Words turns plain words into unranked entries.
func Words(words ...string) []Entry {
	entries := make([]Entry, len(words))
	for i, w := range words {
		entries[i] = Entry{Word: w}
	}
	return entries
}

// Build indexes entries. See BuildSeq.
func Build(entries []Entry, opts ...Option) (*Index, error) {
	return BuildSeq(slices.Values(entries), opts...)
}

// BuildSeq indexes a stream of entries. Each word costs work proportional to
// its own length. Duplicate words are stored once and the frequency of the
// last occurrence wins. Invalid entries are skipped unless WithStrict is set.
func BuildSeq(entries iter.Seq[Entry], opts ...Option) (*Index, error) {
	var o buildOptions
	for _, opt := range opts {
		opt(&o)
	}

	idx := &Index{
		alphabet: NewAlphabet(),
		buckets:  make(map[int]*bucket),
		words:    patricia.NewTrie(),
	}

	pos := 0
	for e := range entries {
		pos++
		if err := validateEntry(e); err != nil {
			entryErr := &EntryError{Position: pos, Word: e.Word, Err: err}
			if o.strict {
				return nil, entryErr
			}
			log.Warnf("Skipping dictionary entry: %v", entryErr)
			idx.skipped++
			continue
		}
		idx.add(e)
	}

	if idx.count == 0 && o.requireWords {
		return nil, ErrEmptyDictionary
	}

	err := idx.words.Visit(func(_ patricia.Prefix, item patricia.Item) error {
		if item.(int) > 0 {
			return errRanked
		}
		return nil
	})
	idx.ranked = errors.Is(err, errRanked)

	log.Debugf("Index built: words=[%d], keys=[%d], buckets=[%d], longest=[%d], skipped=[%d]",
		idx.count, idx.groups, len(idx.buckets), idx.longest, idx.skipped)
	return idx, nil
}

func (idx *Index) add(e Entry) {
	word := patricia.Prefix(e.Word)
	if idx.words.Get(word) != nil {
		idx.words.Set(word, e.Frequency)
		return
	}
	idx.words.Insert(word, e.Frequency)
	idx.count++

	key := idx.alphabet.Intern(e.Word)
	n := key.Len()
	b, ok := idx.buckets[n]
	if !ok {
		b = &bucket{byID: make(map[string]*group)}
		idx.buckets[n] = b
	}
	g, ok := b.byID[key.ID()]
	if !ok {
		g = &group{key: key}
		b.byID[key.ID()] = g
		b.groups = append(b.groups, g)
		idx.groups++
	}
	g.words = append(g.words, e.Word)

	if n > idx.longest {
		idx.longest = n
	}
}

// Len is the number of distinct words indexed.
func (idx *Index) Len() int {
	return idx.count
}

// Ranked reports whether any indexed word carries a non-zero frequency.
func (idx *Index) Ranked() bool {
	return idx.ranked
}

// Longest is the length of the longest indexed word.
func (idx *Index) Longest() int {
	return idx.longest
}

// Has reports whether word is in the dictionary.
func (idx *Index) Has(word string) bool {
	return idx.words.Get(patricia.Prefix(word)) != nil
}

// Frequency returns the weight of word and whether it is indexed.
func (idx *Index) Frequency(word string) (int, bool) {
	item := idx.words.Get(patricia.Prefix(word))
	if item == nil {
		return 0, false
	}
	return item.(int), true
}

// WordsWithPrefix lists indexed words starting with prefix, sorted.
func (idx *Index) WordsWithPrefix(prefix string) []string {
	var words []string
	err := idx.words.VisitSubtree(patricia.Prefix(prefix), func(p patricia.Prefix, _ patricia.Item) error {
		words = append(words, string(p))
		return nil
	})
	if err != nil {
		log.Errorf("Error visiting word trie: %v", err)
		return nil
	}
	sort.Strings(words)
	return words
}

// Contents snapshots the index as length -> sorted letters -> sorted words.
// Two indexes built from the same words in any order have equal contents.
func (idx *Index) Contents() map[int]map[string][]string {
	out := make(map[int]map[string][]string, len(idx.buckets))
	for n, b := range idx.buckets {
		keys := make(map[string][]string, len(b.groups))
		for _, g := range b.groups {
			words := slices.Clone(g.words)
			sort.Strings(words)
			keys[g.key.String()] = words
		}
		out[n] = keys
	}
	return out
}

// Stats returns counters about the index.
func (idx *Index) Stats() map[string]int {
	ranked := 0
	if idx.ranked {
		ranked = 1
	}
	return map[string]int{
		"totalWords": idx.count,
		"keys":       idx.groups,
		"buckets":    len(idx.buckets),
		"longest":    idx.longest,
		"tokens":     idx.alphabet.Len(),
		"skipped":    idx.skipped,
		"ranked":     ranked,
	}
}
