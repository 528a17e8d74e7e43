// Package organizer names completed encodes and moves them into the library.
package organizer

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/mapitman/ripsharp/internal/logging"
	"github.com/mapitman/ripsharp/internal/metadata"
	"github.com/mapitman/ripsharp/internal/services"
)

// Characters that cannot appear in filenames on common filesystems.
var sanitizePattern = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

// Organizer moves finished files into the library layout.
type Organizer struct {
	moviesDir string
	tvDir     string
	overwrite bool
	logger    *slog.Logger
}

// New constructs an organizer targeting the given library subdirectories.
func New(moviesDir, tvDir string, overwrite bool, logger *slog.Logger) *Organizer {
	return &Organizer{
		moviesDir: moviesDir,
		tvDir:     tvDir,
		overwrite: overwrite,
		logger:    logging.NewComponentLogger(logger, "organizer"),
	}
}

// MovieFilename renders "Title (Year).mkv", or "Title.mkv" without a year.
func MovieFilename(info metadata.Info) string {
	title := SanitizeTitle(info.Title)
	if info.Year > 0 {
		return fmt.Sprintf("%s (%d).mkv", title, info.Year)
	}
	return title + ".mkv"
}

// EpisodeFilename renders "Title - SxxEyy.mkv".
func EpisodeFilename(info metadata.Info, season, episode int) string {
	return fmt.Sprintf("%s - S%02dE%02d.mkv", SanitizeTitle(info.Title), season, episode)
}

// SanitizeTitle strips filesystem-hostile characters from a display title.
func SanitizeTitle(title string) string {
	cleaned := strings.TrimSpace(sanitizePattern.ReplaceAllString(title, ""))
	if cleaned == "" {
		return "Unknown"
	}
	return cleaned
}

// Place moves path into the library under filename, choosing the movies or
// TV directory by tvSeries. It returns the final path.
func (o *Organizer) Place(path, filename string, tvSeries bool) (string, error) {
	destDir := o.moviesDir
	if tvSeries {
		destDir = o.tvDir
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrConfiguration, "organizing", "ensure library dir", "", err)
	}

	dest := filepath.Join(destDir, filename)
	if !o.overwrite {
		if _, err := os.Stat(dest); err == nil {
			return "", services.Wrap(services.ErrValidation, "organizing", "place file",
				fmt.Sprintf("destination %q already exists", dest), nil)
		}
	}

	if err := moveFile(path, dest); err != nil {
		return "", services.Wrap(services.ErrTransient, "organizing", "move file", "", err)
	}
	o.logger.Info("placed file", logging.String("final_file", dest))
	return dest, nil
}

// moveFile renames when possible and falls back to copy+remove across
// filesystems.
func moveFile(src, dest string) error {
	if err := os.Rename(src, dest); err == nil {
		return nil
	} else if !crossDevice(err) {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dest)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dest)
		return err
	}
	return os.Remove(src)
}

func crossDevice(err error) bool {
	var linkErr *os.LinkError
	if errors.As(err, &linkErr) {
		return strings.Contains(linkErr.Err.Error(), "cross-device")
	}
	return false
}
