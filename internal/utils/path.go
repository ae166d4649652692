package utils

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// dictCandidates lists where a relative dictionary path may live, in order:
// as given, next to the executable, its parent (bin/../data), then configDir.
func dictCandidates(path, configDir string) []string {
	if filepath.IsAbs(path) {
		return []string{path}
	}
	candidates := []string{path}
	if execDir, err := GetExecutableDir(); err == nil {
		candidates = append(candidates,
			filepath.Join(execDir, path),
			filepath.Join(filepath.Dir(execDir), path),
		)
	}
	if configDir != "" {
		candidates = append(candidates, filepath.Join(configDir, path))
	}
	return candidates
}

// ResolveDictPath returns the first existing location of a dictionary file
// or chunk directory.
func ResolveDictPath(path, configDir string) (string, error) {
	if path == "" {
		return "", errors.New("no dictionary path configured")
	}
	for _, candidate := range dictCandidates(path, configDir) {
		if FileExists(candidate) {
			log.Debugf("Resolved dictionary %s -> %s", path, candidate)
			return candidate, nil
		}
		log.Debugf("Dictionary candidate not found: %s", candidate)
	}
	return "", &os.PathError{Op: "resolve", Path: path, Err: os.ErrNotExist}
}
