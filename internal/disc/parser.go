package disc

import (
	"errors"
	"sort"
	"strconv"
	"strings"
)

// MakeMKV TINFO attribute IDs used by the parser.
const (
	tinfoName     = 2
	tinfoChapters = 8
	tinfoDuration = 9
	tinfoSize     = 10
)

// MakeMKV SINFO attribute IDs used by the parser.
const (
	sinfoKind       = 1
	sinfoName       = 30
	sinfoLanguage   = 3
	sinfoChannels   = 14
	sinfoResolution = 19
)

func parseInfo(data []byte) (*ScanResult, error) {
	text := strings.TrimSpace(string(data))
	if text == "" {
		return nil, errors.New("makemkv produced empty output")
	}

	result := &ScanResult{}
	titles := make(map[int]*Title)
	tracks := make(map[int]map[int]*Track)

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "CINFO:"):
			parseDiscAttr(strings.TrimPrefix(trimmed, "CINFO:"), result)
		case strings.HasPrefix(trimmed, "TINFO:"):
			parseTitleAttr(strings.TrimPrefix(trimmed, "TINFO:"), titles)
		case strings.HasPrefix(trimmed, "SINFO:"):
			parseStreamAttr(strings.TrimPrefix(trimmed, "SINFO:"), tracks)
		}
	}

	ids := make([]int, 0, len(titles))
	for id := range titles {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for _, id := range ids {
		title := titles[id]
		if streams, ok := tracks[id]; ok {
			streamIDs := make([]int, 0, len(streams))
			for sid := range streams {
				streamIDs = append(streamIDs, sid)
			}
			sort.Ints(streamIDs)
			for _, sid := range streamIDs {
				title.Tracks = append(title.Tracks, *streams[sid])
			}
		}
		result.Titles = append(result.Titles, *title)
	}
	return result, nil
}

func parseDiscAttr(payload string, result *ScanResult) {
	parts := strings.SplitN(payload, ",", 3)
	if len(parts) < 3 {
		return
	}
	attrID, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || attrID != tinfoName {
		return
	}
	result.DiscName = unquote(parts[2])
}

func parseTitleAttr(payload string, titles map[int]*Title) {
	parts := strings.SplitN(payload, ",", 4)
	if len(parts) < 4 {
		return
	}
	titleID, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return
	}
	attrID, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return
	}
	value := unquote(parts[3])

	title, ok := titles[titleID]
	if !ok {
		title = &Title{ID: titleID}
		titles[titleID] = title
	}
	switch attrID {
	case tinfoName:
		if value != "" {
			title.Name = value
		}
	case tinfoChapters:
		if chapters, err := strconv.Atoi(value); err == nil {
			title.Chapters = chapters
		}
	case tinfoDuration:
		title.Duration = parseDuration(value)
	case tinfoSize:
		if size, err := strconv.ParseInt(value, 10, 64); err == nil {
			title.SizeBytes = size
		}
	}
}

func parseStreamAttr(payload string, tracks map[int]map[int]*Track) {
	parts := strings.SplitN(payload, ",", 5)
	if len(parts) < 5 {
		return
	}
	titleID, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return
	}
	streamID, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return
	}
	attrID, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil {
		return
	}
	value := unquote(parts[4])

	streams, ok := tracks[titleID]
	if !ok {
		streams = make(map[int]*Track)
		tracks[titleID] = streams
	}
	track, ok := streams[streamID]
	if !ok {
		track = &Track{StreamID: streamID}
		streams[streamID] = track
	}
	switch attrID {
	case sinfoKind:
		switch {
		case strings.Contains(value, "Video"):
			track.Kind = TrackVideo
		case strings.Contains(value, "Audio"):
			track.Kind = TrackAudio
		case strings.Contains(value, "Subtitle"):
			track.Kind = TrackSubtitle
		}
	case sinfoName:
		track.Name = value
	case sinfoLanguage:
		track.Language = value
	case sinfoChannels:
		if channels, err := strconv.Atoi(value); err == nil {
			track.Channels = channels
		}
	case sinfoResolution:
		if width, height, ok := parseResolution(value); ok {
			track.Width = width
			track.Height = height
		}
	}
}

// parseDuration converts H:MM:SS to seconds; malformed values become zero.
func parseDuration(value string) int {
	segments := strings.Split(strings.Trim(value, "\""), ":")
	if len(segments) != 3 {
		return 0
	}
	hours, err := strconv.Atoi(segments[0])
	if err != nil {
		return 0
	}
	minutes, err := strconv.Atoi(segments[1])
	if err != nil {
		return 0
	}
	seconds, err := strconv.Atoi(segments[2])
	if err != nil {
		return 0
	}
	return hours*3600 + minutes*60 + seconds
}

func parseResolution(value string) (int, int, bool) {
	parts := strings.SplitN(strings.ToLower(value), "x", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	width, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, false
	}
	height, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, false
	}
	return width, height, true
}

func unquote(value string) string {
	return strings.Trim(strings.TrimSpace(value), "\"")
}
