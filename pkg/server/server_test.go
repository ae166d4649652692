package server

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/bastiangx/letterserve/internal/metrics"
	"github.com/bastiangx/letterserve/pkg/config"
	"github.com/bastiangx/letterserve/pkg/letters"
	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

// run encodes messages, serves them and returns a decoder over the output
// positioned after the ready message.
func run(t *testing.T, cfg *config.Config, opts []Option, messages ...any) *msgpack.Decoder {
	t.Helper()
	idx, err := letters.Build([]letters.Entry{
		{Word: "a", Frequency: 1},
		{Word: "at", Frequency: 3},
		{Word: "cat", Frequency: 5},
		{Word: "act", Frequency: 7},
		{Word: "dog", Frequency: 2},
	})
	require.NoError(t, err)

	var in, out bytes.Buffer
	enc := msgpack.NewEncoder(&in)
	for _, m := range messages {
		require.NoError(t, enc.Encode(m))
	}

	srv := NewServer(idx, cfg, append(opts, WithIO(&in, &out))...)
	require.NoError(t, srv.Start(context.Background()))

	dec := msgpack.NewDecoder(&out)
	var ready StatusMessage
	require.NoError(t, dec.Decode(&ready))
	require.Equal(t, "ready", ready.Status)
	return dec
}

func TestSolve(t *testing.T) {
	dec := run(t, config.DefaultConfig(), nil,
		Request{ID: "1", Letters: "tcaq"},
		Request{ID: "2", Action: ActionSolve, Letters: "tcaq", Limit: 1},
		Request{ID: "3", Letters: "zzz"},
		Request{ID: "4", Letters: ""},
	)

	var resp SolveResponse
	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, "1", resp.ID)
	assert.Equal(t, 3, resp.Length)
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, []SolvedWord{
		{Word: "act", Frequency: 7, Rank: 1},
		{Word: "cat", Frequency: 5, Rank: 2},
	}, resp.Words)

	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, "2", resp.ID)
	assert.Equal(t, []SolvedWord{{Word: "act", Frequency: 7, Rank: 1}}, resp.Words)

	for _, id := range []string{"3", "4"} {
		resp = SolveResponse{}
		require.NoError(t, dec.Decode(&resp))
		assert.Equal(t, id, resp.ID)
		assert.Empty(t, resp.Words)
		assert.Zero(t, resp.Length)
	}
}

func TestSolveUsesCache(t *testing.T) {
	dec := run(t, config.DefaultConfig(), nil,
		Request{ID: "1", Letters: "tca"},
		Request{ID: "2", Letters: "act"},
		Request{ID: "i", Action: ActionGetInfo},
	)

	var first, second SolveResponse
	require.NoError(t, dec.Decode(&first))
	require.NoError(t, dec.Decode(&second))
	assert.Equal(t, first.Words, second.Words)
	assert.Equal(t, first.Length, second.Length)

	var info InfoResponse
	require.NoError(t, dec.Decode(&info))
	assert.Equal(t, 1, info.Cached)
	assert.Equal(t, 1, info.CacheHits)
}

func TestSolveModeOverride(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Solver.Mode = "fast"
	dec := run(t, cfg, nil,
		Request{ID: "fast", Letters: "tca"},
		Request{ID: "all", Letters: "tca", Mode: "exhaustive"},
		Request{ID: "bad", Letters: "tca", Mode: "slow"},
	)

	var resp SolveResponse
	require.NoError(t, dec.Decode(&resp))
	assert.Len(t, resp.Words, 2) // cat and act share one key
	require.NoError(t, dec.Decode(&resp))
	assert.Len(t, resp.Words, 2)

	var errResp ErrorResponse
	require.NoError(t, dec.Decode(&errResp))
	assert.Equal(t, "bad", errResp.ID)
	assert.Equal(t, 400, errResp.Code)
}

func TestBatch(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.MaxBatch = 3
	dec := run(t, cfg, nil,
		Request{ID: "b1", Action: ActionBatch, Queries: []string{"tca", "god", "q", "ta"}},
		Request{ID: "b2", Action: ActionBatch, Queries: []string{"tca", "god", "ta"}},
	)

	var errResp ErrorResponse
	require.NoError(t, dec.Decode(&errResp))
	assert.Equal(t, "b1", errResp.ID)
	assert.Equal(t, 400, errResp.Code)

	var resp BatchResponse
	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, "b2", resp.ID)
	assert.Equal(t, [][]string{{"act", "cat"}, {"dog"}, {"at"}}, resp.Results)
}

func TestQueryTooLong(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Solver.MaxLetters = 5
	dec := run(t, cfg, nil,
		Request{ID: "long", Letters: strings.Repeat("a", 6)},
		Request{ID: "batch", Action: ActionBatch, Queries: []string{"ab", strings.Repeat("a", 6)}},
	)

	for _, id := range []string{"long", "batch"} {
		var errResp ErrorResponse
		require.NoError(t, dec.Decode(&errResp))
		assert.Equal(t, id, errResp.ID)
		assert.Equal(t, 400, errResp.Code)
		assert.Contains(t, errResp.Error, "too long")
	}
}

func TestInfoAndUnknownAction(t *testing.T) {
	dec := run(t, config.DefaultConfig(), nil,
		Request{ID: "i", Action: ActionGetInfo},
		Request{ID: "u", Action: "reload"},
		"not a map",
		Request{ID: "after", Letters: "a"},
	)

	var info InfoResponse
	require.NoError(t, dec.Decode(&info))
	assert.Equal(t, "ok", info.Status)
	assert.Equal(t, 5, info.Words)
	assert.Equal(t, 3, info.Longest)
	assert.True(t, info.Ranked)
	assert.Equal(t, "exhaustive", info.Mode)

	var errResp ErrorResponse
	require.NoError(t, dec.Decode(&errResp))
	assert.Equal(t, "u", errResp.ID)
	assert.Equal(t, 400, errResp.Code)

	errResp = ErrorResponse{}
	require.NoError(t, dec.Decode(&errResp))
	assert.Equal(t, 400, errResp.Code)

	var resp SolveResponse
	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, "after", resp.ID)
	assert.Equal(t, []SolvedWord{{Word: "a", Frequency: 1, Rank: 1}}, resp.Words)
}

func TestSolvesAreMetered(t *testing.T) {
	m := metrics.New()
	run(t, config.DefaultConfig(), []Option{WithMetrics(m)},
		Request{ID: "1", Letters: "tca"},
		Request{ID: "2", Letters: "zzz"},
	)
	solves, err := testutil.GatherAndCount(m.Registry(), "letterserve_solves_total")
	require.NoError(t, err)
	assert.Equal(t, 2, solves)
	words, err := testutil.GatherAndCount(m.Registry(), "letterserve_index_words")
	require.NoError(t, err)
	assert.Equal(t, 1, words)
}

func TestTruncatedInput(t *testing.T) {
	idx, err := letters.Build(letters.Words("a"))
	require.NoError(t, err)

	data, err := msgpack.Marshal(Request{ID: "1", Letters: "abc"})
	require.NoError(t, err)

	var out bytes.Buffer
	srv := NewServer(idx, config.DefaultConfig(), WithIO(bytes.NewReader(data[:len(data)-2]), &out))
	assert.Error(t, srv.Start(context.Background()))

	dec := msgpack.NewDecoder(&out)
	var ready StatusMessage
	require.NoError(t, dec.Decode(&ready))
	var errResp ErrorResponse
	require.NoError(t, dec.Decode(&errResp))
	assert.Equal(t, 400, errResp.Code)
	assert.Contains(t, errResp.Error, "Unreadable msgpack stream")
}
