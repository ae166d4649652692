package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bastiangx/letterserve/internal/logger"
	"github.com/bastiangx/letterserve/internal/metrics"
	"github.com/bastiangx/letterserve/pkg/config"
	"github.com/bastiangx/letterserve/pkg/letters"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// Server answers Letters queries over a msgpack stream.
type Server struct {
	index      *letters.Index
	solvers    map[letters.Mode]letters.ISolver
	mode       letters.Mode
	maxLetters int
	cfg        config.ServerConfig
	metrics    *metrics.Metrics
	cache      *ResultCache

	reader  io.Reader
	writer  *bufio.Writer
	encoder *msgpack.Encoder
	logger  *log.Logger

	requestCount int
}

// Option configures a Server.
type Option func(*Server)

// WithIO replaces stdin/stdout, mostly for tests.
func WithIO(r io.Reader, w io.Writer) Option {
	return func(s *Server) {
		s.reader = r
		s.writer = bufio.NewWriter(w)
	}
}

// WithMetrics records every solve in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// NewServer creates a server over idx using stdin/stdout for IPC.
func NewServer(idx *letters.Index, cfg *config.Config, opts ...Option) *Server {
	s := &Server{
		index:      idx,
		mode:       cfg.SolverMode(),
		maxLetters: cfg.Solver.MaxLetters,
		cfg:        cfg.Server,
		reader:     os.Stdin,
		writer:     bufio.NewWriter(os.Stdout),
		logger:     logger.New("server"),
		cache:      NewResultCache(cfg.Server.CacheSize),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.encoder = msgpack.NewEncoder(s.writer)
	s.solvers = make(map[letters.Mode]letters.ISolver, 2)
	for _, mode := range []letters.Mode{letters.ModeFast, letters.ModeExhaustive} {
		solver := letters.NewSolver(idx, letters.WithMode(mode), letters.WithRanking(cfg.Solver.Rank))
		s.solvers[mode] = metrics.Instrument(solver, s.metrics)
	}
	s.metrics.SetIndexWords(idx.Len())
	return s
}

// Start serves requests until the input ends or ctx is cancelled. A clean
// EOF between messages returns nil.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Debug("Starting server", "mode", s.mode, "words", s.index.Len())
	s.sendResponse(StatusMessage{Status: "ready"})

	decoder := msgpack.NewDecoder(bufio.NewReader(s.reader))
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		raw, err := decoder.DecodeRaw()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.logger.Debug("Input closed", "requests", s.requestCount)
				return nil
			}
			s.logger.Errorf("Reading request: %v", err)
			s.sendError("", fmt.Sprintf("Unreadable msgpack stream: %v", err), 400)
			return err
		}
		s.handleRequest(ctx, raw)
	}
}

// handleRequest decodes one raw message and dispatches on its action.
func (s *Server) handleRequest(ctx context.Context, raw msgpack.RawMessage) {
	s.requestCount++

	var req Request
	if err := msgpack.Unmarshal(raw, &req); err != nil {
		s.logger.Errorf("Unmarshaling request: %v", err)
		s.sendError("", "Invalid msgpack request", 400)
		return
	}

	switch req.Action {
	case "", ActionSolve:
		s.handleSolve(req)
	case ActionBatch:
		s.handleBatch(ctx, req)
	case ActionGetInfo:
		s.handleInfo(req)
	default:
		s.sendError(req.ID, fmt.Sprintf("Unknown action: %s", req.Action), 400)
	}
}

// solver picks the solver for a request's mode override.
func (s *Server) solver(mode string) (letters.ISolver, error) {
	if mode == "" {
		return s.solvers[s.mode], nil
	}
	m, err := letters.ParseMode(mode)
	if err != nil {
		return nil, err
	}
	return s.solvers[m], nil
}

func (s *Server) handleSolve(req Request) {
	solver, err := s.solver(req.Mode)
	if err != nil {
		s.sendError(req.ID, err.Error(), 400)
		return
	}
	if err := letters.ValidateQuery(req.Letters, s.maxLetters); errors.Is(err, letters.ErrQueryTooLong) {
		s.sendError(req.ID, err.Error(), 400)
		return
	}

	limit := req.Limit
	if limit < 1 {
		limit = s.cfg.MaxResults
	}

	start := time.Now()
	words, n, hit := s.cache.Get(solver.Mode(), req.Letters)
	if !hit {
		words, n = solver.SolveLength(req.Letters)
		s.cache.Put(solver.Mode(), req.Letters, words, n)
	}
	elapsed := time.Since(start)
	s.logger.Debugf("Solved %q in %v: %d words of length %d (cached: %v)", req.Letters, elapsed, len(words), n, hit)

	if limit > 0 && len(words) > limit {
		words = words[:limit]
	}
	solved := make([]SolvedWord, len(words))
	for i, w := range words {
		freq, _ := s.index.Frequency(w)
		solved[i] = SolvedWord{Word: w, Frequency: freq, Rank: uint16(min(i+1, 65535))}
	}

	s.sendResponse(SolveResponse{
		ID:        req.ID,
		Words:     solved,
		Count:     len(solved),
		Length:    n,
		TimeTaken: elapsed.Microseconds(),
	})
}

func (s *Server) handleBatch(ctx context.Context, req Request) {
	if s.cfg.MaxBatch > 0 && len(req.Queries) > s.cfg.MaxBatch {
		s.sendError(req.ID, fmt.Sprintf("Batch of %d queries exceeds limit of %d", len(req.Queries), s.cfg.MaxBatch), 400)
		return
	}
	solver, err := s.solver(req.Mode)
	if err != nil {
		s.sendError(req.ID, err.Error(), 400)
		return
	}
	for i, q := range req.Queries {
		if err := letters.ValidateQuery(q, s.maxLetters); errors.Is(err, letters.ErrQueryTooLong) {
			s.sendError(req.ID, fmt.Sprintf("query %d: %v", i, err), 400)
			return
		}
	}

	start := time.Now()
	results, err := letters.SolveAll(ctx, solver, req.Queries, s.cfg.Workers)
	if err != nil {
		s.sendError(req.ID, err.Error(), 500)
		return
	}
	elapsed := time.Since(start)
	s.logger.Debugf("Solved batch of %d in %v", len(req.Queries), elapsed)

	s.sendResponse(BatchResponse{
		ID:        req.ID,
		Results:   results,
		TimeTaken: elapsed.Microseconds(),
	})
}

func (s *Server) handleInfo(req Request) {
	stats := s.index.Stats()
	cacheStats := s.cache.Stats()
	s.sendResponse(InfoResponse{
		ID:         req.ID,
		Status:     "ok",
		Mode:       s.mode.String(),
		Words:      stats["totalWords"],
		Keys:       stats["keys"],
		Buckets:    stats["buckets"],
		Longest:    stats["longest"],
		Ranked:     s.index.Ranked(),
		Skipped:    stats["skipped"],
		MaxLetters: s.maxLetters,
		MaxBatch:   s.cfg.MaxBatch,
		Cached:     cacheStats["cachedResults"],
		CacheHits:  cacheStats["cacheHits"],
	})
}

// sendResponse encodes one message and flushes it to the client.
func (s *Server) sendResponse(response any) {
	if err := s.encoder.Encode(response); err != nil {
		s.logger.Errorf("Encoding response: %v", err)
		return
	}
	if err := s.writer.Flush(); err != nil {
		s.logger.Errorf("Writing response: %v", err)
	}
}

func (s *Server) sendError(id, message string, code int) {
	s.sendResponse(ErrorResponse{
		ID:    id,
		Error: message,
		Code:  code,
	})
}
