/*
Package server implements msgpack IPC for Letters queries.

The server reads msgpack messages from stdin and writes one msgpack response
per request to stdout. Logs go to stderr. Every request carries an ID that is
echoed back, and an action that selects the operation.

# IPC

Solve requests use this structure (action may be omitted):

	{"id": "req_001", "q": "qqctaqq", "m": "exhaustive", "l": 24}

The server responds with the longest words, ranked by frequency:

	{"id": "req_001", "s": [{"w": "cat", "f": 9, "r": 1}, {"w": "act", "f": 2, "r": 2}], "c": 2, "n": 3, "t": 41}

n is the length of the returned words and t the solve time in microseconds.

Batches answer many queries concurrently and keep their order:

	{"id": "batch_001", "action": "batch", "qs": ["tca", "xyz"]}
	{"id": "batch_001", "r": [["cat", "act"], []], "t": 80}

Index information:

	{"id": "info_001", "action": "get_info"}

Failures come back as {"id": ..., "e": "message", "c": 400}.
*/
package server

// Actions understood by the server.
const (
	ActionSolve   = "solve"
	ActionBatch   = "batch"
	ActionGetInfo = "get_info"
)

// Request is any client message. Fields not used by the action are ignored.
type Request struct {
	ID      string   `msgpack:"id"`
	Action  string   `msgpack:"action,omitempty"`
	Letters string   `msgpack:"q,omitempty"`
	Mode    string   `msgpack:"m,omitempty"`
	Limit   int      `msgpack:"l,omitempty"`
	Queries []string `msgpack:"qs,omitempty"`
}

// SolvedWord is one word of a solve response. Rank is its 1-based position.
type SolvedWord struct {
	Word      string `msgpack:"w"`
	Frequency int    `msgpack:"f,omitempty"`
	Rank      uint16 `msgpack:"r"`
}

// SolveResponse answers a single query.
type SolveResponse struct {
	ID        string       `msgpack:"id"`
	Words     []SolvedWord `msgpack:"s"`
	Count     int          `msgpack:"c"`
	Length    int          `msgpack:"n"`
	TimeTaken int64        `msgpack:"t"`
}

// BatchResponse answers a batch, one word list per query.
type BatchResponse struct {
	ID        string     `msgpack:"id"`
	Results   [][]string `msgpack:"r"`
	TimeTaken int64      `msgpack:"t"`
}

// InfoResponse describes the loaded index and server limits.
type InfoResponse struct {
	ID         string `msgpack:"id"`
	Status     string `msgpack:"status"`
	Mode       string `msgpack:"mode"`
	Words      int    `msgpack:"words"`
	Keys       int    `msgpack:"keys"`
	Buckets    int    `msgpack:"buckets"`
	Longest    int    `msgpack:"longest"`
	Ranked     bool   `msgpack:"ranked"`
	Skipped    int    `msgpack:"skipped"`
	MaxLetters int    `msgpack:"max_letters"`
	MaxBatch   int    `msgpack:"max_batch"`
	Cached     int    `msgpack:"cached"`
	CacheHits  int    `msgpack:"cache_hits"`
}

// StatusMessage is sent once the server is ready for requests.
type StatusMessage struct {
	Status string `msgpack:"status"`
}

// ErrorResponse holds basic error information for a failed request.
type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
