package ripping

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DiscoverOutput locates the file a rip produced for a title. Search order:
// the expected filename, the title-indexed glob patterns, then the newest
// .mkv modified at or after the job start. The same rules serve the
// mid-job size probe and the post-exit success check.
func DiscoverOutput(tempDir, expectedName string, titleID int, startedAt time.Time) (string, bool) {
	if expectedName != "" {
		candidate := filepath.Join(tempDir, expectedName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}

	for _, pattern := range []string{
		fmt.Sprintf("*_t%02d.mkv", titleID),
		fmt.Sprintf("title_t%02d.mkv", titleID),
	} {
		matches, err := filepath.Glob(filepath.Join(tempDir, pattern))
		if err != nil {
			continue
		}
		if path, ok := newestFile(matches, time.Time{}); ok {
			return path, true
		}
	}

	matches, err := filepath.Glob(filepath.Join(tempDir, "*.mkv"))
	if err != nil {
		return "", false
	}
	return newestFile(matches, startedAt)
}

// CleanPartials removes leftover output files for a title so the rip tool
// never blocks on an interactive overwrite prompt.
func CleanPartials(job *Job) error {
	var errs []error
	for _, pattern := range job.partialPatterns() {
		matches, err := filepath.Glob(filepath.Join(job.TempDir, pattern))
		if err != nil {
			continue
		}
		for _, match := range matches {
			if err := os.Remove(match); err != nil && !errors.Is(err, os.ErrNotExist) {
				errs = append(errs, fmt.Errorf("remove partial %q: %w", match, err))
			}
		}
	}
	return errors.Join(errs...)
}

// newestFile picks the most recently modified regular file from paths,
// ignoring files modified before cutoff when cutoff is non-zero.
func newestFile(paths []string, cutoff time.Time) (string, bool) {
	var best string
	var bestTime time.Time
	for _, path := range paths {
		if !strings.HasSuffix(strings.ToLower(path), ".mkv") {
			continue
		}
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		if !cutoff.IsZero() && info.ModTime().Before(cutoff) {
			continue
		}
		if best == "" || info.ModTime().After(bestTime) {
			best = path
			bestTime = info.ModTime()
		}
	}
	return best, best != ""
}
