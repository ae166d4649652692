package letters

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

var (
	// ErrInvalidWord is reported for dictionary entries without letters.
	ErrInvalidWord = errors.New("invalid word")
	// ErrNegativeFrequency is reported for entries weighted below zero.
	ErrNegativeFrequency = errors.New("negative frequency")
	// ErrEmptyDictionary is returned by Build when WithRequireWords is set
	// and no entry survived validation.
	ErrEmptyDictionary = errors.New("empty dictionary")
	// ErrDegenerateQuery marks an empty query. Solve answers it with an
	// empty result; only ValidateQuery reports it.
	ErrDegenerateQuery = errors.New("degenerate query: no letters")
	// ErrQueryTooLong marks a query over a caller-imposed letter limit.
	ErrQueryTooLong = errors.New("query too long")
)

// EntryError ties a rejected dictionary entry to its position in the source.
type EntryError struct {
	Position int
	Word     string
	Err      error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("entry %d (%q): %v", e.Position, e.Word, e.Err)
}

func (e *EntryError) Unwrap() error {
	return e.Err
}

// validateEntry checks a single dictionary entry.
func validateEntry(e Entry) error {
	if e.Word == "" || !utf8.ValidString(e.Word) {
		return ErrInvalidWord
	}
	if e.Frequency < 0 {
		return ErrNegativeFrequency
	}
	return nil
}

// ValidateQuery lets outer layers reject queries before solving them.
// maxLetters <= 0 disables the length check.
func ValidateQuery(letters string, maxLetters int) error {
	if letters == "" {
		return ErrDegenerateQuery
	}
	if maxLetters > 0 && utf8.RuneCountInString(letters) > maxLetters {
		return fmt.Errorf("%w: %d letters, limit is %d", ErrQueryTooLong, utf8.RuneCountInString(letters), maxLetters)
	}
	return nil
}
