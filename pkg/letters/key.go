package letters

import (
	"encoding/binary"
	"sort"
	"strings"

	"github.com/bits-and-blooms/bitset"
)

// Token is a single letter-instance. The n-th occurrence of a letter in a
// word (counting from zero) is the token (letter, n-1), so a letter appearing
// three times contributes (c,0), (c,1) and (c,2).
type Token struct {
	Letter  rune
	Ordinal int
}

// Alphabet assigns every distinct token a bit position.
// Interning mutates the alphabet; lookups through Key do not, so an alphabet
// that is no longer interned into can be shared by any number of readers.
type Alphabet struct {
	positions map[Token]uint
	tokens    []Token
}

// NewAlphabet returns an empty alphabet.
func NewAlphabet() *Alphabet {
	return &Alphabet{
		positions: make(map[Token]uint),
	}
}

// Len is the number of distinct tokens interned so far.
func (a *Alphabet) Len() int {
	return len(a.tokens)
}

// Intern builds the key of word, allocating bit positions for tokens the
// alphabet has not seen yet.
func (a *Alphabet) Intern(word string) Key {
	bits := bitset.New(uint(a.Len()))
	seen := make(map[rune]int, len(word))
	size := 0
	for _, r := range word {
		t := Token{Letter: r, Ordinal: seen[r]}
		seen[r]++
		pos, ok := a.positions[t]
		if !ok {
			pos = uint(len(a.tokens))
			a.positions[t] = pos
			a.tokens = append(a.tokens, t)
		}
		bits.Set(pos)
		size++
	}
	return newKey(a, bits, size)
}

// Key builds the key of letters without touching the alphabet. Tokens the
// alphabet does not know are dropped: no interned key can contain them, so
// they never change the outcome of a containment test.
func (a *Alphabet) Key(letters string) Key {
	bits := bitset.New(uint(a.Len()))
	seen := make(map[rune]int, len(letters))
	size := 0
	for _, r := range letters {
		t := Token{Letter: r, Ordinal: seen[r]}
		seen[r]++
		if pos, ok := a.positions[t]; ok {
			bits.Set(pos)
			size++
		}
	}
	return newKey(a, bits, size)
}

// Key is the canonical token-set of a letter multiset. Multiset containment
// is set containment of keys: A fits inside B exactly when every token of A
// is a token of B.
//
// Keys are immutable and only comparable when built by the same alphabet.
type Key struct {
	alphabet *Alphabet
	bits     *bitset.BitSet
	id       string
	size     int
}

func newKey(a *Alphabet, bits *bitset.BitSet, size int) Key {
	return Key{
		alphabet: a,
		bits:     bits,
		id:       canonicalID(bits),
		size:     size,
	}
}

// canonicalID packs the set words up to the last non-empty one, so that two
// bitsets holding the same tokens share an id whatever their capacity.
func canonicalID(bits *bitset.BitSet) string {
	words := bits.Bytes()
	end := len(words)
	for end > 0 && words[end-1] == 0 {
		end--
	}
	buf := make([]byte, 0, end*8)
	for _, w := range words[:end] {
		buf = binary.LittleEndian.AppendUint64(buf, w)
	}
	return string(buf)
}

// Len is the number of tokens in the key, i.e. the number of letters.
func (k Key) Len() int {
	return k.size
}

// ID is the canonical map key. Equal multisets have equal ids.
func (k Key) ID() string {
	return k.id
}

// Contains reports whether other fits inside k, respecting multiplicity.
func (k Key) Contains(other Key) bool {
	if other.size > k.size {
		return false
	}
	if other.bits == nil {
		return true
	}
	if k.bits == nil {
		return other.size == 0
	}
	return k.bits.IsSuperSet(other.bits)
}

// Tokens returns the tokens of k ordered by letter, then ordinal.
func (k Key) Tokens() []Token {
	if k.bits == nil || k.alphabet == nil {
		return nil
	}
	tokens := make([]Token, 0, k.size)
	for i, ok := k.bits.NextSet(0); ok; i, ok = k.bits.NextSet(i + 1) {
		tokens = append(tokens, k.alphabet.tokens[i])
	}
	sort.Slice(tokens, func(i, j int) bool {
		if tokens[i].Letter != tokens[j].Letter {
			return tokens[i].Letter < tokens[j].Letter
		}
		return tokens[i].Ordinal < tokens[j].Ordinal
	})
	return tokens
}

// String renders the multiset as its sorted letters ("act" for "cat").
// Unlike ID it does not depend on the alphabet's bit assignment.
func (k Key) String() string {
	var sb strings.Builder
	for _, t := range k.Tokens() {
		sb.WriteRune(t.Letter)
	}
	return sb.String()
}
