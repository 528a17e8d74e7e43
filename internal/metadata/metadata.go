// Package metadata resolves display names for ripped discs.
//
// Online providers are deliberately out of scope; Lookup is the seam where
// one would plug in. The local resolver just cleans up the disc label.
package metadata

import (
	"context"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Info is the resolved display metadata for one disc.
type Info struct {
	Title    string
	Year     int
	TVSeries bool
}

// Lookup resolves a disc title to display metadata.
type Lookup interface {
	Lookup(ctx context.Context, discTitle string, year int, tvSeries bool) (Info, error)
}

// LocalLookup derives metadata from the disc label alone: underscores become
// spaces and the label is title-cased. It never fails.
type LocalLookup struct{}

func (LocalLookup) Lookup(_ context.Context, discTitle string, year int, tvSeries bool) (Info, error) {
	return Info{Title: DisplayTitle(discTitle), Year: year, TVSeries: tvSeries}, nil
}

var titleCaser = cases.Title(language.English)

// DisplayTitle turns a disc label like "THE_BIG_MOVIE" into "The Big Movie".
func DisplayTitle(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "Unknown"
	}
	label = strings.ReplaceAll(label, "_", " ")
	label = strings.Join(strings.Fields(label), " ")
	return titleCaser.String(strings.ToLower(label))
}
