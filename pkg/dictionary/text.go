package dictionary

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/bastiangx/letterserve/pkg/letters"
	"github.com/charmbracelet/log"
)

// ReadText parses a plain text wordlist: one "word [frequency]" per line.
// Blank lines and lines starting with '#' are ignored. Lines that cannot be
// parsed are skipped with a warning, or fail the read when strict is set.
// Word validity itself is checked later by letters.Build.
func ReadText(r io.Reader, strict bool) ([]letters.Entry, error) {
	var entries []letters.Entry
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		entry, err := parseLine(line)
		if err != nil {
			entryErr := &letters.EntryError{Position: lineNo, Word: line, Err: err}
			if strict {
				return nil, entryErr
			}
			log.Warnf("Skipping wordlist line: %v", entryErr)
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read wordlist: %w", err)
	}

	log.Debugf("Read %d wordlist entries from %d lines", len(entries), lineNo)
	return entries, nil
}

func parseLine(line string) (letters.Entry, error) {
	fields := strings.Fields(line)
	switch len(fields) {
	case 1:
		return letters.Entry{Word: fields[0]}, nil
	case 2:
		freq, err := strconv.Atoi(fields[1])
		if err != nil {
			return letters.Entry{}, fmt.Errorf("bad frequency %q: %w", fields[1], err)
		}
		return letters.Entry{Word: fields[0], Frequency: freq}, nil
	default:
		return letters.Entry{}, fmt.Errorf("expected \"word [frequency]\", got %d fields", len(fields))
	}
}

// LoadText reads a text wordlist from disk.
func LoadText(path string, strict bool) ([]letters.Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open wordlist %s: %w", path, err)
	}
	defer file.Close()
	return ReadText(file, strict)
}
