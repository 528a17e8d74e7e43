package ripping

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/mapitman/ripsharp/internal/logging"
	"github.com/mapitman/ripsharp/internal/makemkv"
	"github.com/mapitman/ripsharp/internal/services"
)

// pollInterval bounds how long the loop waits for output before falling back
// to the file-size probe, keeping the display alive through silent stretches
// such as the final container flush.
const defaultPollInterval = 250 * time.Millisecond

// ProgressFunc receives display updates: the current monotonic percentage and
// an optional caption or message for the status line.
type ProgressFunc func(percent int, message string)

// process is a running rip subprocess. Lines delivers merged stdout/stderr a
// line at a time and is closed once all buffered output has been drained
// after exit.
type process interface {
	Lines() <-chan string
	Wait() error
	Kill() error
}

// launcher abstracts subprocess creation for testability.
type launcher interface {
	Launch(ctx context.Context, binary string, args []string) (process, error)
}

// Supervisor owns the subprocess lifecycle for one title rip at a time.
type Supervisor struct {
	binary   string
	logger   *slog.Logger
	tick     time.Duration
	launcher launcher
	progress ProgressFunc
}

// Option configures the supervisor.
type Option func(*Supervisor)

// WithProgress installs a display sink invoked on every visible change.
func WithProgress(fn ProgressFunc) Option {
	return func(s *Supervisor) { s.progress = fn }
}

// WithPollInterval overrides the fallback tick (primarily for tests).
func WithPollInterval(d time.Duration) Option {
	return func(s *Supervisor) {
		if d > 0 {
			s.tick = d
		}
	}
}

func withLauncher(l launcher) Option {
	return func(s *Supervisor) {
		if l != nil {
			s.launcher = l
		}
	}
}

// NewSupervisor builds a supervisor for the given makemkvcon binary.
func NewSupervisor(binary string, logger *slog.Logger, opts ...Option) (*Supervisor, error) {
	if binary == "" {
		return nil, errors.New("makemkv binary required")
	}
	s := &Supervisor{
		binary:   binary,
		logger:   logging.NewComponentLogger(logger, "supervisor"),
		tick:     defaultPollInterval,
		launcher: execLauncher{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Run rips one title, driving the estimator until the subprocess exits. On
// success it returns the discovered output path and marks the job Succeeded.
// Cancellation terminates the subprocess, marks the job Cancelled, and
// returns the context error.
func (s *Supervisor) Run(ctx context.Context, job *Job, est *Estimator) (string, error) {
	logger := s.logger.With(logging.Int(logging.FieldTitleID, job.TitleID))

	if !job.transition(StatusRunning) {
		return "", services.Wrap(services.ErrValidation, "ripping", "start job",
			"job already finished", nil)
	}
	job.startedAt = time.Now()

	if err := os.MkdirAll(job.TempDir, 0o755); err != nil {
		job.transition(StatusFailed)
		return "", services.Wrap(services.ErrConfiguration, "ripping", "ensure temp dir", "", err)
	}
	if err := CleanPartials(job); err != nil {
		logger.Warn("failed to clean stale partials", logging.Error(err))
	}
	if job.EstimatedTotalBytes <= 0 {
		est.DeriveTotalFromDuration(job.DurationSeconds)
	}

	args := []string{"--robot", "--progress=-same", "mkv", job.DiscPath,
		strconv.Itoa(job.TitleID), job.TempDir}
	proc, err := s.launcher.Launch(ctx, s.binary, args)
	if err != nil {
		job.transition(StatusFailed)
		return "", services.Wrap(services.ErrExternalTool, "ripping", "spawn makemkv", "", err)
	}
	logger.Info("rip started", logging.String("disc", job.DiscPath))

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	lastReported := -1
	report := func(percent int, message string) {
		if percent == lastReported && message == "" {
			return
		}
		if percent != lastReported {
			// 1% display granularity; the estimator already quantizes.
			logger.Info("rip progress", logging.Int("percent", percent))
			lastReported = percent
		}
		if s.progress != nil {
			s.progress(percent, message)
		}
	}

	lines := proc.Lines()
loop:
	for {
		select {
		case <-ctx.Done():
			_ = proc.Kill()
			_ = proc.Wait()
			return "", finishInterrupted(ctx, job, logger)
		case line, ok := <-lines:
			if !ok {
				break loop
			}
			s.handleLine(job, est, line, logger, report)
		case <-ticker.C:
			s.pollFallback(job, est, report)
		}
	}

	waitErr := proc.Wait()
	if ctx.Err() != nil {
		return "", finishInterrupted(ctx, job, logger)
	}
	if waitErr != nil {
		job.transition(StatusFailed)
		code := -1
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			code = exitErr.ExitCode()
		}
		return "", services.Wrap(services.ErrExternalTool, "ripping", "makemkv exit",
			"exit code "+strconv.Itoa(code), waitErr)
	}

	path, found := DiscoverOutput(job.TempDir, job.ExpectedOutputName, job.TitleID, job.startedAt)
	if !found {
		job.transition(StatusFailed)
		return "", services.Wrap(services.ErrNotFound, "ripping", "locate output",
			"makemkv declared success but no output file was located", nil)
	}

	report(est.Complete(), "")
	job.RippedFile = path
	job.transition(StatusSucceeded)
	logger.Info("rip succeeded", logging.String("ripped_file", path))
	return path, nil
}

// finishInterrupted resolves a context-terminated rip. A wall-clock deadline
// is a per-title failure; only an explicit cancel leaves the job Cancelled.
func finishInterrupted(ctx context.Context, job *Job, logger *slog.Logger) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		job.transition(StatusFailed)
		logger.Warn("rip timed out")
		return services.Wrap(services.ErrTimeout, "ripping", "makemkv rip",
			"rip exceeded its time limit", ctx.Err())
	}
	job.transition(StatusCancelled)
	logger.Info("rip cancelled")
	return ctx.Err()
}

func (s *Supervisor) handleLine(job *Job, est *Estimator, line string, logger *slog.Logger, report func(int, string)) {
	event := makemkv.Decode(line)
	switch event.Kind {
	case makemkv.EventProgress:
		report(est.ObserveValue(event.Percent), "")
	case makemkv.EventCaption:
		est.ObserveCaption(event.Text)
		s.probeSize(job, est)
		report(est.Percent(), event.Text)
	case makemkv.EventMessage:
		logger.Info("makemkv message", logging.String("text", event.Text))
		s.probeSize(job, est)
		report(est.Percent(), event.Text)
	case makemkv.EventSilent:
		// Structural record; carries no progress information.
	default:
		logger.Debug("makemkv output", logging.String("line", event.Text))
		s.probeSize(job, est)
		report(est.Percent(), "")
	}
}

// pollFallback runs when no output arrived within the tick: probe the growing
// output file, and fall back to the liveness bump when no estimate exists.
func (s *Supervisor) pollFallback(job *Job, est *Estimator, report func(int, string)) {
	before := est.Percent()
	s.probeSize(job, est)
	percent := est.Percent()
	if percent == before {
		percent = est.Liveness()
	}
	report(percent, "")
}

func (s *Supervisor) probeSize(job *Job, est *Estimator) {
	path, found := DiscoverOutput(job.TempDir, job.ExpectedOutputName, job.TitleID, job.startedAt)
	if !found {
		return
	}
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	est.ObserveFileSize(info.Size())
}
