package media

// Kind identifies a probed track's type.
type Kind int

const (
	KindVideo Kind = iota
	KindAudio
	KindSubtitle
)

// Track describes a probed stream for selection purposes. Language is a
// lowercase ISO tag, or empty when the container does not declare one.
type Track struct {
	Index    int
	Kind     Kind
	Width    int
	Height   int
	Channels int
	Language string
}

// EncodeSpec names the streams to carry into the output container. Audio and
// subtitle indexes keep their original probe order so the encode command's
// stream mapping is deterministic.
type EncodeSpec struct {
	VideoTrack     int
	HasVideo       bool
	AudioTracks    []int
	SubtitleTracks []int
}

// English language tags accepted for track selection.
func englishTag(language string) bool {
	return language == "eng" || language == "en"
}

// unknownTag covers containers that declare no language at all and the
// "und" (undetermined) tag muxers write in that situation.
func unknownTag(language string) bool {
	return language == "" || language == "und"
}

// SelectStreams decides which tracks to copy into the output:
//
//   - Video: the single track with the largest pixel area. A disc with no
//     video track produces no mapping; callers decide whether that matters.
//   - Audio: every English-or-untagged track that is stereo or full
//     surround. Intermediate mixes (mono, 3-5 channels) are dropped
//     entirely; this favors the stereo and surround masters over downmixes.
//     An untagged or undetermined language counts as English here so a disc
//     whose only audio track carries no tag is never silently dropped.
//   - Subtitles: English-tagged tracks only, and only when enabled. The
//     untagged allowance deliberately does not apply to subtitles.
//
// Selection is stable: output order always matches probe order.
func SelectStreams(tracks []Track, includeSubtitles bool) EncodeSpec {
	var spec EncodeSpec

	bestArea := -1
	for _, track := range tracks {
		if track.Kind != KindVideo {
			continue
		}
		area := track.Width * track.Height
		if area > bestArea {
			bestArea = area
			spec.VideoTrack = track.Index
			spec.HasVideo = true
		}
	}

	for _, track := range tracks {
		switch track.Kind {
		case KindAudio:
			if !englishTag(track.Language) && !unknownTag(track.Language) {
				continue
			}
			if track.Channels == 2 || track.Channels >= 6 {
				spec.AudioTracks = append(spec.AudioTracks, track.Index)
			}
		case KindSubtitle:
			if includeSubtitles && englishTag(track.Language) {
				spec.SubtitleTracks = append(spec.SubtitleTracks, track.Index)
			}
		}
	}

	return spec
}
