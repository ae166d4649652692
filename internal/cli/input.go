// Package cli handles cmd line input for solving Letters queries by hand,
// mostly for debugging dictionaries.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/bastiangx/letterserve/internal/utils"
	"github.com/bastiangx/letterserve/pkg/letters"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
)

var wordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))

// InputHandler reads letter bags line by line and prints the best words.
type InputHandler struct {
	solver     letters.ISolver
	index      *letters.Index
	maxLetters int
	limit      int
	showFreq   bool
	in         io.Reader
	out        io.Writer
}

// NewInputHandler creates a handler on stdin/stdout. index is only used to
// look up frequencies and may be nil.
func NewInputHandler(solver letters.ISolver, index *letters.Index, maxLetters, limit int, showFreq bool) *InputHandler {
	return &InputHandler{
		solver:     solver,
		index:      index,
		maxLetters: maxLetters,
		limit:      limit,
		showFreq:   showFreq,
		in:         os.Stdin,
		out:        os.Stdout,
	}
}

// SetIO swaps stdin/stdout.
func (h *InputHandler) SetIO(in io.Reader, out io.Writer) {
	h.in = in
	h.out = out
}

// Start runs the prompt loop until EOF or ":q".
func (h *InputHandler) Start() error {
	fmt.Fprintln(h.out, "LetterServe CLI")
	fmt.Fprintf(h.out, "type some letters and press Enter (mode: %s, :q to exit)\n", h.solver.Mode())

	scanner := bufio.NewScanner(h.in)
	for {
		fmt.Fprint(h.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(h.out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if utils.IsCommand(line) {
			if line == ":q" || line == ":quit" {
				return nil
			}
			fmt.Fprintf(h.out, "unknown command %s\n", line)
			continue
		}
		query := utils.CleanQuery(line)
		if query == "" {
			continue
		}
		h.handleInput(query)
	}
}

// handleInput solves one query and prints the result.
func (h *InputHandler) handleInput(query string) {
	if err := letters.ValidateQuery(query, h.maxLetters); err != nil {
		fmt.Fprintf(h.out, "%v\n", err)
		return
	}

	start := time.Now()
	words, n := h.solver.SolveLength(query)
	elapsed := time.Since(start)
	log.Debugf("Took [ %v ] for %q", elapsed, query)

	if len(words) == 0 {
		fmt.Fprintf(h.out, "no words fit %q\n", query)
		return
	}

	total := len(words)
	if h.limit > 0 && total > h.limit {
		words = words[:h.limit]
	}
	fmt.Fprintf(h.out, "%s %d-letter %s for %q\n",
		humanize.Comma(int64(total)), n, plural(total, "word"), query)
	for i, w := range words {
		line := fmt.Sprintf("%3d. %s", i+1, wordStyle.Render(w))
		if h.showFreq && h.index != nil {
			if freq, ok := h.index.Frequency(w); ok && freq > 0 {
				line += fmt.Sprintf("  (freq: %s)", humanize.Comma(int64(freq)))
			}
		}
		fmt.Fprintln(h.out, line)
	}
	if total > len(words) {
		fmt.Fprintf(h.out, "... and %s more\n", humanize.Comma(int64(total-len(words))))
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
