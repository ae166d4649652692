package dictionary

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bastiangx/letterserve/pkg/letters"
	"github.com/charmbracelet/log"
)

// FileFormat represents different dictionary sources
type FileFormat int

const (
	FormatUnknown  FileFormat = iota
	FormatChunk               // single dict_NNNN.bin file
	FormatChunkDir            // directory of chunk files
	FormatText                // "word [frequency]" lines
)

func (f FileFormat) String() string {
	if info, ok := supportedFormats[f]; ok {
		return info.Description
	}
	return "Unknown"
}

// FormatInfo contains metadata about a dictionary file format
type FormatInfo struct {
	Format      FileFormat
	Description string
	Extensions  []string
	MinSize     int64 // Minimum expected file size in bytes
}

var supportedFormats = map[FileFormat]FormatInfo{
	FormatChunk: {
		Format:      FormatChunk,
		Description: "Chunked Binary Dictionary",
		Extensions:  []string{".bin"},
		MinSize:     4, // word count header
	},
	FormatChunkDir: {
		Format:      FormatChunkDir,
		Description: "Chunk Directory",
	},
	FormatText: {
		Format:      FormatText,
		Description: "Plain Text Wordlist",
		Extensions:  []string{".txt", ".lst", ".dic", ""},
		MinSize:     0,
	},
}

// maxChunkWords is a sanity limit on a single chunk's header.
const maxChunkWords = 1000000

// ValidateFileFormat checks if a file matches the expected format
func ValidateFileFormat(filename string, expected FileFormat) error {
	fileInfo, err := os.Stat(filename)
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", filename, err)
	}

	formatInfo, ok := supportedFormats[expected]
	if !ok {
		return fmt.Errorf("unknown format: %v", expected)
	}

	if expected == FormatChunkDir {
		if !fileInfo.IsDir() {
			return fmt.Errorf("%s is not a directory", filename)
		}
		chunks, err := GetAvailableChunks(filename)
		if err != nil {
			return err
		}
		if len(chunks) == 0 {
			return fmt.Errorf("no chunk files found in %s", filename)
		}
		return nil
	}

	if fileInfo.IsDir() {
		return fmt.Errorf("%s is a directory, expected %s", filename, formatInfo.Description)
	}
	if fileInfo.Size() < formatInfo.MinSize {
		return fmt.Errorf("file %s is too small (%d bytes) for format %s (minimum: %d bytes)",
			filename, fileInfo.Size(), formatInfo.Description, formatInfo.MinSize)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	validExt := false
	for _, validExtension := range formatInfo.Extensions {
		if ext == validExtension {
			validExt = true
			break
		}
	}
	if !validExt {
		return fmt.Errorf("file %s has invalid extension %s for format %s (expected: %v)",
			filename, ext, formatInfo.Description, formatInfo.Extensions)
	}

	if expected == FormatChunk {
		return validateChunkHeader(filename)
	}
	return nil
}

// validateChunkHeader checks the word count header of a chunk file
func validateChunkHeader(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", filename, err)
	}
	defer file.Close()

	var wordCount int32
	if err := binary.Read(file, binary.LittleEndian, &wordCount); err != nil {
		return fmt.Errorf("failed to read header from %s: %w", filename, err)
	}
	if wordCount < 0 {
		return fmt.Errorf("invalid word count in %s: %d (negative)", filename, wordCount)
	}
	if wordCount > maxChunkWords {
		return fmt.Errorf("suspicious word count in %s: %d (too large)", filename, wordCount)
	}

	log.Debugf("Chunk file %s validated: %d words", filename, wordCount)
	return nil
}

// DetectFileFormat attempts to detect the format of a dictionary path
func DetectFileFormat(path string) (FileFormat, error) {
	if err := ValidateFileFormat(path, FormatChunkDir); err == nil {
		return FormatChunkDir, nil
	}
	if err := ValidateFileFormat(path, FormatChunk); err == nil {
		return FormatChunk, nil
	}
	if err := ValidateFileFormat(path, FormatText); err == nil {
		return FormatText, nil
	}
	return FormatUnknown, fmt.Errorf("unable to detect format for %s", path)
}

// Load reads dictionary entries from path, whatever its format.
// maxWords > 0 caps the number of entries returned.
func Load(path string, maxWords int, strict bool) ([]letters.Entry, error) {
	format, err := DetectFileFormat(path)
	if err != nil {
		return nil, err
	}
	log.Debugf("Loading dictionary %s as %s", path, format)

	var entries []letters.Entry
	switch format {
	case FormatChunkDir:
		return LoadChunkDir(path, maxWords)
	case FormatChunk:
		entries, err = LoadChunk(path)
	case FormatText:
		entries, err = LoadText(path, strict)
	}
	if err != nil {
		return nil, err
	}
	if maxWords > 0 && len(entries) > maxWords {
		entries = entries[:maxWords]
	}
	return entries, nil
}
