package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// ProbeResult represents the parsed output from an ffprobe inspection.
type ProbeResult struct {
	Streams []ProbeStream `json:"streams"`
	Format  ProbeFormat   `json:"format"`
}

// ProbeStream describes a single stream in the media container.
type ProbeStream struct {
	Index     int         `json:"index"`
	CodecName string      `json:"codec_name"`
	CodecType string      `json:"codec_type"`
	Width     int         `json:"width"`
	Height    int         `json:"height"`
	Channels  int         `json:"channels"`
	Tags      StreamTags `json:"tags"`
}

// StreamTags carries the container metadata ffprobe reports per stream.
type StreamTags struct {
	Language string `json:"language"`
	Title    string `json:"title"`
}

// ProbeFormat captures container-level metadata extracted by ffprobe.
type ProbeFormat struct {
	Filename   string `json:"filename"`
	NBStreams  int    `json:"nb_streams"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	FormatName string `json:"format_name"`
}

// SizeBytes returns the container size, or zero when unreported.
func (f ProbeFormat) SizeBytes() int64 {
	size, err := strconv.ParseInt(strings.TrimSpace(f.Size), 10, 64)
	if err != nil {
		return 0
	}
	return size
}

// Prober runs ffprobe inspections.
type Prober struct {
	binary  string
	timeout time.Duration
}

// NewProber constructs a prober for the given ffprobe binary.
func NewProber(binary string, timeoutSeconds int) *Prober {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	return &Prober{binary: binary, timeout: time.Duration(timeoutSeconds) * time.Second}
}

// Inspect executes ffprobe against the provided path and decodes the JSON
// response.
func (p *Prober) Inspect(ctx context.Context, path string) (ProbeResult, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return ProbeResult{}, errors.New("ffprobe inspect: empty path")
	}

	probeCtx := ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		probeCtx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(probeCtx, p.binary,
		"-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	output, err := cmd.Output()
	if err != nil {
		return ProbeResult{}, fmt.Errorf("ffprobe inspect: %w", err)
	}
	return ParseProbe(output)
}

// ParseProbe decodes raw ffprobe JSON.
func ParseProbe(data []byte) (ProbeResult, error) {
	var result ProbeResult
	if err := json.Unmarshal(data, &result); err != nil {
		return ProbeResult{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return result, nil
}

// Tracks converts probed streams into selector track descriptors, preserving
// probe order.
func (r ProbeResult) Tracks() []Track {
	tracks := make([]Track, 0, len(r.Streams))
	for _, stream := range r.Streams {
		track := Track{
			Index:    stream.Index,
			Language: strings.ToLower(strings.TrimSpace(stream.Tags.Language)),
			Channels: stream.Channels,
			Width:    stream.Width,
			Height:   stream.Height,
		}
		switch strings.ToLower(stream.CodecType) {
		case "video":
			track.Kind = KindVideo
		case "audio":
			track.Kind = KindAudio
		case "subtitle":
			track.Kind = KindSubtitle
		default:
			continue
		}
		tracks = append(tracks, track)
	}
	return tracks
}
