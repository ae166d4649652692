package dictionary

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/bastiangx/letterserve/pkg/letters"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

// maxRank is the lowest rank a chunk file can hold; rank 1 is the most
// frequent word.
const maxRank = 65535

// ChunkInfo contains metadata about a chunk file
type ChunkInfo struct {
	ID        int
	Filename  string
	WordCount int
}

// chunkName builds dict_0001.bin style names.
func chunkName(id int) string {
	return fmt.Sprintf("dict_%04d.bin", id)
}

// chunkID extracts the ID from a chunk filename (dict_0001.bin -> 1).
func chunkID(basename string) (int, bool) {
	if !strings.HasPrefix(basename, "dict_") || !strings.HasSuffix(basename, ".bin") {
		return 0, false
	}
	idStr := strings.TrimSuffix(strings.TrimPrefix(basename, "dict_"), ".bin")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		return 0, false
	}
	return id, true
}

// GetAvailableChunks scans dir for chunk files, sorted by ID.
func GetAvailableChunks(dir string) ([]ChunkInfo, error) {
	files, err := filepath.Glob(filepath.Join(dir, "dict_*.bin"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan for chunk files: %w", err)
	}

	var chunks []ChunkInfo
	for _, file := range files {
		id, ok := chunkID(filepath.Base(file))
		if !ok {
			continue
		}
		wordCount, err := getChunkWordCount(file)
		if err != nil {
			log.Warnf("Failed to get word count for chunk %s: %v", file, err)
			wordCount = 0
		}
		chunks = append(chunks, ChunkInfo{
			ID:        id,
			Filename:  file,
			WordCount: wordCount,
		})
	}

	sort.Slice(chunks, func(i, j int) bool {
		return chunks[i].ID < chunks[j].ID
	})
	return chunks, nil
}

// getChunkWordCount reads the word count from a chunk file's header
func getChunkWordCount(filename string) (int, error) {
	file, err := os.Open(filename)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	var wordCount int32
	if err := binary.Read(file, binary.LittleEndian, &wordCount); err != nil {
		return 0, err
	}
	return int(wordCount), nil
}

// ReadChunk decodes one chunk: an int32 entry count, then per entry a uint16
// length, the word bytes and a uint16 rank. Rank r becomes frequency 65536-r
// so that the most frequent word ranks highest.
func ReadChunk(r io.Reader) ([]letters.Entry, error) {
	reader := bufio.NewReader(r)

	var total int32
	if err := binary.Read(reader, binary.LittleEndian, &total); err != nil {
		return nil, fmt.Errorf("failed to read chunk header: %w", err)
	}
	if total < 0 || total > maxChunkWords {
		return nil, fmt.Errorf("invalid chunk word count %d", total)
	}

	entries := make([]letters.Entry, 0, total)
	for len(entries) < int(total) {
		var wordLen uint16
		if err := binary.Read(reader, binary.LittleEndian, &wordLen); err != nil {
			if errors.Is(err, io.EOF) {
				log.Warnf("Chunk ended after %d of %d words", len(entries), total)
				break
			}
			return nil, fmt.Errorf("failed to read word length: %w", err)
		}

		wordBytes := make([]byte, wordLen)
		if _, err := io.ReadFull(reader, wordBytes); err != nil {
			return nil, fmt.Errorf("failed to read word: %w", err)
		}

		var rank uint16
		if err := binary.Read(reader, binary.LittleEndian, &rank); err != nil {
			return nil, fmt.Errorf("failed to read rank: %w", err)
		}

		entries = append(entries, letters.Entry{
			Word:      string(wordBytes),
			Frequency: maxRank - int(rank) + 1,
		})
	}
	return entries, nil
}

// WriteChunk encodes entries in the chunk format. Frequencies are mapped
// back to ranks and clamped to 1..65535, so frequencies outside that range
// do not survive a round trip.
func WriteChunk(w io.Writer, entries []letters.Entry) error {
	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, int32(len(entries))); err != nil {
		return fmt.Errorf("failed to write chunk header: %w", err)
	}
	for _, e := range entries {
		if len(e.Word) > maxRank {
			return fmt.Errorf("word too long for chunk format: %d bytes", len(e.Word))
		}
		rank := maxRank + 1 - e.Frequency
		rank = min(max(rank, 1), maxRank)

		if err := binary.Write(bw, binary.LittleEndian, uint16(len(e.Word))); err != nil {
			return err
		}
		if _, err := bw.WriteString(e.Word); err != nil {
			return err
		}
		if err := binary.Write(bw, binary.LittleEndian, uint16(rank)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// LoadChunk reads a single chunk file.
func LoadChunk(filename string) ([]letters.Entry, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open chunk file %s: %w", filename, err)
	}
	defer file.Close()

	entries, err := ReadChunk(file)
	if err != nil {
		return nil, fmt.Errorf("chunk %s: %w", filename, err)
	}
	return entries, nil
}

// LoadChunkDir reads every chunk in dir concurrently and returns their
// entries in chunk-ID order. maxWords > 0 stops queuing chunks once the
// headers account for that many words and trims the result to it.
func LoadChunkDir(dir string, maxWords int) ([]letters.Entry, error) {
	chunks, err := GetAvailableChunks(dir)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no chunk files found in %s", dir)
	}
	log.Debugf("Found %d chunk files", len(chunks))

	queued := 0
	words := 0
	for _, c := range chunks {
		if maxWords > 0 && words >= maxWords {
			break
		}
		words += c.WordCount
		queued++
	}
	chunks = chunks[:queued]

	loaded := make([][]letters.Entry, len(chunks))
	var g errgroup.Group
	for i, c := range chunks {
		g.Go(func() error {
			entries, err := LoadChunk(c.Filename)
			if err != nil {
				return err
			}
			loaded[i] = entries
			log.Debugf("Chunk %d loaded: %d words", c.ID, len(entries))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var entries []letters.Entry
	for _, part := range loaded {
		entries = append(entries, part...)
	}
	if maxWords > 0 && len(entries) > maxWords {
		entries = entries[:maxWords]
	}
	return entries, nil
}

// WriteChunkDir splits entries into chunkSize pieces written as
// dict_0001.bin, dict_0002.bin, ... in dir.
func WriteChunkDir(dir string, entries []letters.Entry, chunkSize int) error {
	if chunkSize <= 0 {
		return fmt.Errorf("invalid chunk size %d", chunkSize)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	for id, start := 1, 0; start < len(entries); id, start = id+1, start+chunkSize {
		end := min(start+chunkSize, len(entries))
		if err := writeChunkFile(filepath.Join(dir, chunkName(id)), entries[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func writeChunkFile(filename string, entries []letters.Entry) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create chunk file %s: %w", filename, err)
	}
	if err := WriteChunk(file, entries); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// IndexEntries lists every indexed word most frequent first, alphabetical on
// ties, which is the rank order chunk files expect.
func IndexEntries(idx *letters.Index) []letters.Entry {
	words := idx.WordsWithPrefix("")
	entries := make([]letters.Entry, 0, len(words))
	for _, w := range words {
		freq, _ := idx.Frequency(w)
		entries = append(entries, letters.Entry{Word: w, Frequency: freq})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Frequency > entries[j].Frequency
	})
	return entries
}
