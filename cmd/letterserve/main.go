// Copyright 2025 The LetterServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the Letters solver server and CLI [DBG] application.

LetterServe answers Letters game queries: given a bag of letters, it returns
the longest dictionary words that can be spelled using each letter at most as
often as it appears in the bag. The dictionary is indexed once at startup by
word length and letter multiset, then queried read-only.

# Usage

Start the msgpack server with the configured dictionary:

	letterserve

Use a custom wordlist, fast mode and debug logging:

	letterserve -dict words.txt -mode fast -d

Run in CLI mode for interactive testing:

	letterserve -c -limit 10

Time the solver on random dictionaries with a planted solution:

	letterserve -bench -bench-letters 30 -bench-words 100000

# Dictionaries

A dictionary is either a text wordlist with one "word [frequency]" per line,
a single dict_NNNN.bin chunk or a directory of chunks. Chunks can be produced
from any dictionary with -write-chunks.

# Configuration

Runtime configuration lives in letterserve.toml:

	[solver]
	mode = "exhaustive"
	rank = true
	max_letters = 1000

	[dict]
	path = "data/en_50k.txt"
	max_words = 0
	strict = false

	[server]
	max_batch = 256
	workers = 4
	max_results = 64
	cache_size = 1024

The config file is created with defaults if it doesn't exist. Flags override
the file.

# Metrics

With -metrics, solve counters and latencies are written in Prometheus text
format to the given file on exit, for the node_exporter textfile collector.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/bastiangx/letterserve/internal/cli"
	"github.com/bastiangx/letterserve/internal/harness"
	"github.com/bastiangx/letterserve/internal/logger"
	"github.com/bastiangx/letterserve/internal/metrics"
	"github.com/bastiangx/letterserve/internal/utils"
	"github.com/bastiangx/letterserve/pkg/config"
	"github.com/bastiangx/letterserve/pkg/dictionary"
	"github.com/bastiangx/letterserve/pkg/letters"
	"github.com/bastiangx/letterserve/pkg/server"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
)

const (
	Version = "0.3.0"
	AppName = "letterserve"
	gh      = "https://github.com/bastiangx/letterserve"
)

// sigHandler exits normally on SIGINT/SIGTERM after running onExit.
func sigHandler(onExit func()) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		onExit()
		os.Exit(0)
	}()
}

// main only manages the flow between packages.
func main() {
	defaultConfig := config.DefaultConfig()

	showVersion := flag.Bool("version", false, "Show current version")
	configPath := flag.String("config", "", "Path to letterserve.toml")
	dictPath := flag.String("dict", defaultConfig.Dict.Path, "Wordlist file, chunk file or chunk directory")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	modeName := flag.String("mode", defaultConfig.Solver.Mode, "Solver mode: fast or exhaustive")
	limit := flag.Int("limit", defaultConfig.CLI.Limit, "Number of words to print in CLI mode")
	wordLimit := flag.Int("words", defaultConfig.Dict.MaxWords, "Maximum number of words to load (use 0 for all words)")
	strict := flag.Bool("strict", defaultConfig.Dict.Strict, "Fail on the first invalid dictionary entry")
	metricsPath := flag.String("metrics", "", "Write Prometheus metrics to this file on exit")
	writeChunks := flag.String("write-chunks", "", "Convert the dictionary into chunk files in this directory and exit")
	chunkSize := flag.Int("chunk", 10000, "Words per chunk for -write-chunks")
	bench := flag.Bool("bench", false, "Time the solver on random dictionaries and exit")
	benchLetters := flag.Int("bench-letters", 30, "Letters per generated game")
	benchWords := flag.Int("bench-words", 100000, "Words per generated dictionary")
	benchRuns := flag.Int("bench-runs", 5, "Number of generated games")
	seed := flag.Uint64("seed", 0, "Seed for -bench (0 picks one)")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	logger.Setup(*debugMode)

	cfg, cfgPath, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Debugf("Using config file: (%s)", utils.GetAbsolutePath(cfgPath))
	applyFlags(map[string]func(){
		"dict":   func() { cfg.Dict.Path = *dictPath },
		"mode":   func() { cfg.Solver.Mode = *modeName },
		"limit":  func() { cfg.CLI.Limit = *limit },
		"words":  func() { cfg.Dict.MaxWords = *wordLimit },
		"strict": func() { cfg.Dict.Strict = *strict },
	})
	mode := cfg.SolverMode()

	var m *metrics.Metrics
	if *metricsPath != "" {
		m = metrics.New()
	}
	flush := func() {
		if err := m.WriteTextfile(*metricsPath); err != nil {
			log.Errorf("Failed to write metrics: %v", err)
		}
	}
	sigHandler(flush)
	defer flush()

	if *bench {
		runBench(*seed, *benchLetters, *benchWords, *benchRuns, mode, m)
		return
	}

	idx, resolvedPath := loadIndex(cfg, filepath.Dir(cfgPath))

	if *writeChunks != "" {
		if err := dictionary.WriteChunkDir(*writeChunks, dictionary.IndexEntries(idx), *chunkSize); err != nil {
			log.Fatalf("Failed to write chunks: %v", err)
		}
		log.Infof("Wrote %s words to %s", humanize.Comma(int64(idx.Len())), *writeChunks)
		return
	}

	if *cliMode {
		m.SetIndexWords(idx.Len())
		solver := metrics.Instrument(letters.NewSolver(idx, letters.WithMode(mode), letters.WithRanking(cfg.Solver.Rank)), m)
		inputHandler := cli.NewInputHandler(solver, idx, cfg.Solver.MaxLetters, cfg.CLI.Limit, cfg.CLI.ShowFreq)
		if err := inputHandler.Start(); err != nil {
			log.Errorf("CLI error: %v", err)
			os.Exit(1)
		}
		return
	}

	srv := server.NewServer(idx, cfg, server.WithMetrics(m))
	showStartupInfo(resolvedPath, idx, mode)

	if err := srv.Start(context.Background()); err != nil {
		log.Errorf("Server stopped: %v", err)
		flush()
		os.Exit(1)
	}
}

// applyFlags runs the override for every flag given on the command line.
func applyFlags(overrides map[string]func()) {
	flag.Visit(func(f *flag.Flag) {
		if apply, ok := overrides[f.Name]; ok {
			apply()
			log.Debugf("Flag -%s overrides config", f.Name)
		}
	})
}

// loadIndex reads the configured dictionary and builds the index, exiting on failure.
func loadIndex(cfg *config.Config, configDir string) (*letters.Index, string) {
	path, err := utils.ResolveDictPath(cfg.Dict.Path, configDir)
	if err != nil {
		log.Fatalf("Failed to resolve dictionary: %v", err)
	}

	start := time.Now()
	entries, err := dictionary.Load(path, cfg.Dict.MaxWords, cfg.Dict.Strict)
	if err != nil {
		log.Fatalf("Failed to load dictionary: %v", err)
	}
	idx, err := letters.Build(entries,
		letters.WithStrict(cfg.Dict.Strict),
		letters.WithRequireWords(true),
	)
	if err != nil {
		log.Fatalf("Failed to build index: %v", err)
	}
	log.Debugf("Indexed %s words from %s in %v", humanize.Comma(int64(idx.Len())), path, time.Since(start))
	return idx, path
}

func runBench(seed uint64, numLetters, numWords, runs int, mode letters.Mode, m *metrics.Metrics) {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	gen := harness.NewGenerator(seed, numLetters, numWords)
	log.Infof("Bench: %d runs, %d letters, %s words, mode %s, seed %d",
		runs, numLetters, humanize.Comma(int64(numWords)), mode, seed)

	failures := 0
	for i := range runs {
		rep, err := gen.Run(mode)
		if err != nil {
			log.Fatalf("Bench run %d failed: %v", i+1, err)
		}
		m.ObserveSolve(mode, len(rep.Result), rep.Solve)
		if !rep.Correct {
			failures++
			log.Errorf("Run %d: expected %q, got %v", i+1, rep.Solution, rep.Result)
		}
		log.Info(fmt.Sprintf("run %d", i+1),
			"generate", rep.Generate,
			"build", rep.Build,
			"solve", rep.Solve,
			"words", len(rep.Result),
			"correct", rep.Correct)
	}
	if failures > 0 {
		log.Errorf("%d of %d runs returned a wrong answer", failures, runs)
		os.Exit(1)
	}
}

func printVersion() {
	l := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	l.SetStyles(styles)

	l.Print("")
	l.Print("[ LetterServe ] Finds the longest words in a bag of letters")
	l.Print("", "version", Version)
	l.Print("")
	l.Print("use -h or --help to see available options")
	l.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process on stderr.
func showStartupInfo(dictPath string, idx *letters.Index, mode letters.Mode) {
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	banner := lipgloss.NewStyle().Bold(true).Padding(0, 1).
		Border(lipgloss.NormalBorder(), true, false)
	fmt.Fprintln(os.Stderr, banner.Render("LetterServe"))
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", os.Getpid())
	log.Infof("dictionary: ( %s )", dictPath)
	log.Infof("words: %s, longest: %d, mode: %s", humanize.Comma(int64(idx.Len())), idx.Longest(), mode)
	log.Info("status: ready")
	fmt.Fprintln(os.Stderr, "Press Ctrl+C to exit")

	log.SetLevel(currentLevel)
}
