// Package encoding turns a stream selection into an ffmpeg stream-copy
// invocation.
package encoding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/mapitman/ripsharp/internal/logging"
	"github.com/mapitman/ripsharp/internal/media"
	"github.com/mapitman/ripsharp/internal/services"
)

// Encoder runs ffmpeg stream-copy encodes.
type Encoder struct {
	binary  string
	timeout time.Duration
	logger  *slog.Logger
	runner  runner
}

// runner abstracts command execution for tests.
type runner interface {
	Run(ctx context.Context, binary string, args []string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, binary string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	return cmd.CombinedOutput()
}

// NewEncoder constructs an encoder for the given ffmpeg binary.
func NewEncoder(binary string, timeoutSeconds int, logger *slog.Logger) *Encoder {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	return &Encoder{
		binary:  binary,
		timeout: time.Duration(timeoutSeconds) * time.Second,
		logger:  logging.NewComponentLogger(logger, "encoder"),
		runner:  execRunner{},
	}
}

// BuildArgs constructs the ffmpeg argument list for a stream-copy encode of
// input to output. Mapping order follows the selection's track order so output
// stream indexes are deterministic.
func BuildArgs(input, output string, spec media.EncodeSpec) []string {
	args := []string{"-i", input}

	if spec.HasVideo {
		args = append(args, "-map", "0:"+strconv.Itoa(spec.VideoTrack), "-c:v", "copy")
	}
	for i, index := range spec.AudioTracks {
		args = append(args, "-map", "0:"+strconv.Itoa(index), "-c:a:"+strconv.Itoa(i), "copy")
	}
	for i, index := range spec.SubtitleTracks {
		args = append(args, "-map", "0:"+strconv.Itoa(index), "-c:s:"+strconv.Itoa(i), "copy")
	}

	return append(args, "-y", output)
}

// Encode stream-copies the selected tracks from input into output. A timeout
// or nonzero exit is fatal to this title only; the caller records it and
// moves on to the next title.
func (e *Encoder) Encode(ctx context.Context, input, output string, spec media.EncodeSpec) error {
	if !spec.HasVideo && len(spec.AudioTracks) == 0 {
		return services.Wrap(services.ErrValidation, "encoding", "stream selection",
			"nothing to copy: no video or audio tracks selected", nil)
	}

	encodeCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		encodeCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	args := BuildArgs(input, output, spec)
	e.logger.Info("starting encode",
		logging.String("input", input),
		logging.String("output", output),
		logging.Int("audio_tracks", len(spec.AudioTracks)),
		logging.Int("subtitle_tracks", len(spec.SubtitleTracks)),
	)

	combined, err := e.runner.Run(encodeCtx, e.binary, args)
	if err != nil {
		if errors.Is(encodeCtx.Err(), context.DeadlineExceeded) {
			return services.Wrap(services.ErrTimeout, "encoding", "ffmpeg", "encode timed out", err)
		}
		detail := tail(string(combined), 500)
		return services.Wrap(services.ErrExternalTool, "encoding", "ffmpeg",
			fmt.Sprintf("encode failed: %s", detail), err)
	}

	e.logger.Info("encode finished", logging.String("output", output))
	return nil
}

// tail returns the last n bytes of s, which is where ffmpeg puts the useful
// part of its error output.
func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
