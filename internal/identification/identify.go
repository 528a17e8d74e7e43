// Package identification picks which disc titles are worth ripping.
package identification

import (
	"log/slog"
	"sort"

	"github.com/mapitman/ripsharp/internal/disc"
	"github.com/mapitman/ripsharp/internal/logging"
)

const (
	// Episodes typically run 20-60 minutes.
	minEpisodeDurationSeconds = 1200
	maxEpisodeDurationSeconds = 3600
	// A main feature should be at least 45 minutes.
	minMovieDurationSeconds = 2700
)

// SelectMainContent identifies the titles to rip. For TV discs it returns
// every episode-length title in ID order; for movies it returns the single
// longest title, provided it clears the feature-length floor. An empty result
// means the disc holds nothing worth ripping.
func SelectMainContent(logger *slog.Logger, titles []disc.Title, tvSeries bool) []int {
	logger = logging.NewComponentLogger(logger, "identification")
	if len(titles) == 0 {
		return nil
	}

	if tvSeries {
		var episodes []int
		for _, title := range titles {
			if title.Duration >= minEpisodeDurationSeconds &&
				title.Duration <= maxEpisodeDurationSeconds &&
				title.Chapters >= 1 {
				episodes = append(episodes, title.ID)
			}
		}
		// ID order matches on-disc episode order.
		sort.Ints(episodes)
		logger.Info("identified episodes", logging.Int("count", len(episodes)))
		return episodes
	}

	longest := disc.Title{ID: -1}
	for _, title := range titles {
		if title.Duration > longest.Duration {
			longest = title
		}
	}
	if longest.ID < 0 || longest.Duration < minMovieDurationSeconds {
		logger.Warn("no title meets minimum movie duration")
		return nil
	}
	logger.Info("identified main movie",
		logging.Int(logging.FieldTitleID, longest.ID),
		logging.Int("duration_minutes", longest.Duration/60),
	)
	return []int{longest.ID}
}

// TitleByID returns the title descriptor for id.
func TitleByID(titles []disc.Title, id int) (disc.Title, bool) {
	for _, title := range titles {
		if title.ID == id {
			return title, true
		}
	}
	return disc.Title{}, false
}
