package disc

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/mapitman/ripsharp/internal/services"
)

// TrackKind identifies a stream's type within a title.
type TrackKind string

const (
	TrackVideo    TrackKind = "video"
	TrackAudio    TrackKind = "audio"
	TrackSubtitle TrackKind = "subtitle"
)

// Track describes a single stream reported by the disc scan.
type Track struct {
	StreamID int       `json:"stream_id"`
	Kind     TrackKind `json:"kind"`
	Name     string    `json:"name,omitempty"`
	Language string    `json:"language,omitempty"`
	Channels int       `json:"channels,omitempty"`
	Width    int       `json:"width,omitempty"`
	Height   int       `json:"height,omitempty"`
}

// Title represents a MakeMKV title entry.
type Title struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	Duration  int     `json:"duration"`
	Chapters  int     `json:"chapters"`
	SizeBytes int64   `json:"size_bytes"`
	Tracks    []Track `json:"tracks,omitempty"`
}

// ScanResult captures the parsed info output for one disc.
type ScanResult struct {
	DiscName string  `json:"disc_name"`
	Titles   []Title `json:"titles"`
}

// Executor abstracts command execution for the scanner.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) ([]byte, error)
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	return cmd.Output()
}

// Scanner wraps makemkvcon info to gather disc metadata.
type Scanner struct {
	binary  string
	timeout time.Duration
	exec    Executor
}

// NewScanner constructs a Scanner for the provided MakeMKV binary.
func NewScanner(binary string, infoTimeoutSeconds int) *Scanner {
	return NewScannerWithExecutor(binary, infoTimeoutSeconds, commandExecutor{})
}

// NewScannerWithExecutor allows injecting a custom executor for testing.
func NewScannerWithExecutor(binary string, infoTimeoutSeconds int, exec Executor) *Scanner {
	if exec == nil {
		exec = commandExecutor{}
	}
	return &Scanner{
		binary:  strings.TrimSpace(binary),
		timeout: time.Duration(infoTimeoutSeconds) * time.Second,
		exec:    exec,
	}
}

// Scan enumerates the titles on the disc at device. A scan that exceeds the
// info timeout is fatal to the run, not retried.
func (s *Scanner) Scan(ctx context.Context, device string) (*ScanResult, error) {
	if s.binary == "" {
		return nil, services.Wrap(services.ErrConfiguration, "scan", "makemkv binary", "not configured", nil)
	}
	device = strings.TrimSpace(device)
	if device == "" {
		return nil, services.Wrap(services.ErrValidation, "scan", "device", "disc path required", nil)
	}

	scanCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		scanCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	output, err := s.exec.Run(scanCtx, s.binary, []string{"-r", "info", device})
	if err != nil {
		if errors.Is(scanCtx.Err(), context.DeadlineExceeded) {
			return nil, services.Wrap(services.ErrTimeout, "scan", "makemkv info", "disc scan timed out", err)
		}
		return nil, services.Wrap(services.ErrExternalTool, "scan", "makemkv info", "disc scan failed", err)
	}

	result, err := parseInfo(output)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "scan", "parse info output", "", err)
	}
	return result, nil
}
