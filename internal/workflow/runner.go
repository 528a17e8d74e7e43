package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/mapitman/ripsharp/internal/config"
	"github.com/mapitman/ripsharp/internal/deps"
	"github.com/mapitman/ripsharp/internal/disc"
	"github.com/mapitman/ripsharp/internal/encoding"
	"github.com/mapitman/ripsharp/internal/identification"
	"github.com/mapitman/ripsharp/internal/logging"
	"github.com/mapitman/ripsharp/internal/media"
	"github.com/mapitman/ripsharp/internal/metadata"
	"github.com/mapitman/ripsharp/internal/organizer"
	"github.com/mapitman/ripsharp/internal/queue"
	"github.com/mapitman/ripsharp/internal/ripping"
	"github.com/mapitman/ripsharp/internal/services"
)

// DiscScanner reads the title layout of an inserted disc.
type DiscScanner interface {
	Scan(ctx context.Context, device string) (*disc.ScanResult, error)
}

// TitleRipper extracts a single title to the temp directory.
type TitleRipper interface {
	Run(ctx context.Context, job *ripping.Job, est *ripping.Estimator) (string, error)
}

// MediaProber inspects a ripped file's streams.
type MediaProber interface {
	Inspect(ctx context.Context, path string) (media.ProbeResult, error)
}

// MediaEncoder remuxes a ripped file down to the selected streams.
type MediaEncoder interface {
	Encode(ctx context.Context, input, output string, spec media.EncodeSpec) error
}

// Placer moves a finished file into the library.
type Placer interface {
	Place(path, filename string, tvSeries bool) (string, error)
}

// Options controls a single workflow run.
type Options struct {
	// Device overrides the configured optical drive specifier.
	Device string

	// TVSeries treats the disc as episodic content: selection keeps every
	// episode-length title and outputs are named SxxEyy.
	TVSeries bool

	// Season and Episode seed episodic naming. Episode advances by one for
	// each selected title.
	Season  int
	Episode int

	// Year annotates movie filenames when known.
	Year int

	// Progress receives rip percent updates for display.
	Progress ripping.ProgressFunc
}

// TitleResult records the outcome of one title's pipeline.
type TitleResult struct {
	TitleID   int
	FinalFile string
	Err       error
}

// Result summarizes a workflow run.
type Result struct {
	SessionID string
	DiscName  string
	Titles    []TitleResult
}

// Failed reports how many titles did not complete.
func (r Result) Failed() int {
	n := 0
	for _, t := range r.Titles {
		if t.Err != nil {
			n++
		}
	}
	return n
}

// Runner executes the scan-rip-encode-organize pipeline for one disc.
type Runner struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *queue.Store

	scanner   DiscScanner
	newRipper func(progress ripping.ProgressFunc) (TitleRipper, error)
	prober    MediaProber
	encoder   MediaEncoder
	placer    Placer
	lookup    metadata.Lookup

	checkSpace func(estimatedBytes int64, path string) (ripping.SpaceCheck, error)
	checkDeps  func() []deps.Status
}

// NewRunner wires the production pipeline from configuration.
func NewRunner(cfg *config.Config, logger *slog.Logger, store *queue.Store) (*Runner, error) {
	ripLogger := logging.NewComponentLogger(logger, "ripping")
	return &Runner{
		cfg:     cfg,
		logger:  logging.NewComponentLogger(logger, "workflow"),
		store:   store,
		scanner: disc.NewScanner(cfg.MakeMKV.Binary, cfg.MakeMKV.InfoTimeout),
		newRipper: func(progress ripping.ProgressFunc) (TitleRipper, error) {
			return ripping.NewSupervisor(cfg.MakeMKV.Binary, ripLogger,
				ripping.WithProgress(progress))
		},
		prober: media.NewProber(cfg.FFmpeg.ProbeBinary, cfg.FFmpeg.ProbeTimeout),
		encoder: encoding.NewEncoder(cfg.FFmpeg.Binary, cfg.FFmpeg.EncodeTimeout,
			logging.NewComponentLogger(logger, "encoding")),
		placer: organizer.New(cfg.MoviesPath(), cfg.TVPath(), cfg.Output.OverwriteExisting,
			logging.NewComponentLogger(logger, "organizer")),
		lookup:     metadata.LocalLookup{},
		checkSpace: ripping.CheckSpace,
		checkDeps: func() []deps.Status {
			return deps.CheckBinaries(deps.Required(cfg.MakeMKV.Binary,
				cfg.FFmpeg.Binary, cfg.FFmpeg.ProbeBinary))
		},
	}, nil
}

// Run processes one disc end to end. The returned Result lists every selected
// title and any per-title failure; Run itself fails only on conditions that
// prevent the session from starting at all.
func (r *Runner) Run(ctx context.Context, opts Options) (Result, error) {
	var result Result

	if missing := deps.Missing(r.checkDeps()); len(missing) > 0 {
		names := make([]string, len(missing))
		for i, status := range missing {
			names[i] = status.Command
		}
		return result, services.Wrap(services.ErrConfiguration, "workflow", "check dependencies",
			"required tools not found: "+strings.Join(names, ", "), nil)
	}

	if err := r.cfg.EnsureDirectories(); err != nil {
		return result, services.Wrap(services.ErrConfiguration, "workflow", "ensure directories", "", err)
	}

	lock := flock.New(filepath.Join(r.cfg.Paths.TempDir, "ripsharp.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return result, services.Wrap(services.ErrConfiguration, "workflow", "acquire lock", "", err)
	}
	if !locked {
		return result, services.Wrap(services.ErrValidation, "workflow", "acquire lock",
			"another ripsharp session is already running", nil)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			r.logger.Warn("failed to release session lock", logging.Error(err))
		}
	}()

	result.SessionID = uuid.NewString()
	logger := r.logger.With(logging.String(logging.FieldSessionID, result.SessionID))

	device := opts.Device
	if device == "" {
		device = r.cfg.MakeMKV.OpticalDrive
	}

	logger.Info("scanning disc", logging.String("device", device))
	scan, err := r.scanner.Scan(ctx, device)
	if err != nil {
		return result, err
	}
	result.DiscName = scan.DiscName
	logger.Info("disc scanned",
		logging.String("disc", scan.DiscName),
		logging.Int("titles", len(scan.Titles)))

	selected := identification.SelectMainContent(logger, scan.Titles, opts.TVSeries)
	if len(selected) == 0 {
		return result, services.Wrap(services.ErrNotFound, "workflow", "select titles",
			"no titles matched the selection rules", nil)
	}

	episode := opts.Episode
	for _, titleID := range selected {
		title, ok := identification.TitleByID(scan.Titles, titleID)
		if !ok {
			continue
		}
		final, err := r.processTitle(ctx, logger, result.SessionID, scan.DiscName, title, opts, episode)
		result.Titles = append(result.Titles, TitleResult{TitleID: titleID, FinalFile: final, Err: err})
		if err != nil {
			logger.Error("title failed",
				logging.Int(logging.FieldTitleID, titleID),
				logging.Error(err))
			if ctx.Err() != nil {
				break
			}
		}
		if opts.TVSeries {
			episode++
		}
	}

	logger.Info("session finished",
		logging.Int("titles", len(result.Titles)),
		logging.Int("failed", result.Failed()))
	return result, nil
}

func (r *Runner) processTitle(ctx context.Context, logger *slog.Logger, sessionID, discName string,
	title disc.Title, opts Options, episode int) (string, error) {

	item, err := r.store.Add(ctx, sessionID, discName, title.ID)
	if err != nil {
		return "", err
	}
	fail := func(cause error) (string, error) {
		item.Status = queue.StatusFailed
		if ctx.Err() != nil {
			item.Status = queue.StatusCancelled
		}
		item.ErrorMessage = cause.Error()
		if updateErr := r.store.Update(ctx, item); updateErr != nil {
			logger.Warn("failed to record job failure", logging.Error(updateErr))
		}
		return "", cause
	}

	tempDir := filepath.Join(r.cfg.Paths.TempDir, sessionID)
	job := ripping.NewJob(title.ID, r.deviceSpec(opts), tempDir)
	job.DurationSeconds = title.Duration
	job.EstimatedTotalBytes = title.SizeBytes
	if strings.HasSuffix(strings.ToLower(title.Name), ".mkv") {
		job.ExpectedOutputName = title.Name
	}

	if check, err := r.checkSpace(job.EstimatedTotalBytes, r.cfg.Paths.TempDir); err != nil {
		logger.Warn("free space check failed", logging.Error(err))
	} else if !check.OK {
		logger.Warn("low free space, rip may fail",
			logging.Uint64("required_bytes", check.RequiredBytes),
			logging.Uint64("free_bytes", check.FreeBytes),
			logging.Uint64("shortfall_bytes", check.ShortfallBytes))
	}

	item.Status = queue.StatusRipping
	if err := r.store.Update(ctx, item); err != nil {
		logger.Warn("failed to record rip start", logging.Error(err))
	}

	est := ripping.NewEstimator(logging.NewComponentLogger(logger, "estimator"), job.EstimatedTotalBytes)
	ripped, err := r.ripWithProgress(ctx, item, job, est, opts.Progress)
	if err != nil {
		return fail(services.Wrap(services.ErrExternalTool, "workflow", "rip title", "", err))
	}

	item.Status = queue.StatusRipped
	item.ProgressPercent = 100
	item.RippedFile = ripped
	if err := r.store.Update(ctx, item); err != nil {
		logger.Warn("failed to record rip result", logging.Error(err))
	}

	probe, err := r.prober.Inspect(ctx, ripped)
	if err != nil {
		return fail(err)
	}
	spec := media.SelectStreams(probe.Tracks(), r.cfg.Output.IncludeSubtitles)
	if !spec.HasVideo && len(spec.AudioTracks) == 0 {
		return fail(services.Wrap(services.ErrValidation, "workflow", "select streams",
			"no usable streams in "+filepath.Base(ripped), nil))
	}

	item.Status = queue.StatusEncoding
	if err := r.store.Update(ctx, item); err != nil {
		logger.Warn("failed to record encode start", logging.Error(err))
	}

	encoded := filepath.Join(tempDir, fmt.Sprintf("encoded_t%02d.mkv", title.ID))
	if err := r.encoder.Encode(ctx, ripped, encoded, spec); err != nil {
		return fail(err)
	}

	info, err := r.lookup.Lookup(ctx, discName, opts.Year, opts.TVSeries)
	if err != nil {
		return fail(err)
	}
	filename := organizer.MovieFilename(info)
	if opts.TVSeries {
		filename = organizer.EpisodeFilename(info, opts.Season, episode)
	}
	final, err := r.placer.Place(encoded, filename, opts.TVSeries)
	if err != nil {
		return fail(err)
	}

	if err := os.Remove(ripped); err != nil && !os.IsNotExist(err) {
		logger.Warn("failed to remove intermediate file",
			logging.String("path", ripped), logging.Error(err))
	}

	item.Status = queue.StatusCompleted
	item.FinalFile = final
	item.ProgressMessage = ""
	if err := r.store.Update(ctx, item); err != nil {
		logger.Warn("failed to record completion", logging.Error(err))
	}
	logger.Info("title completed",
		logging.Int(logging.FieldTitleID, title.ID),
		logging.String("file", final))
	return final, nil
}

// ripWithProgress runs the rip while mirroring progress into the job store
// and the caller's display callback.
func (r *Runner) ripWithProgress(ctx context.Context, item *queue.Item, job *ripping.Job,
	est *ripping.Estimator, display ripping.ProgressFunc) (string, error) {

	lastStored := -1
	progress := func(percent int, message string) {
		if display != nil {
			display(percent, message)
		}
		if percent == lastStored && message == "" {
			return
		}
		lastStored = percent
		item.ProgressPercent = percent
		if message != "" {
			item.ProgressMessage = message
		}
		if err := r.store.Update(ctx, item); err != nil {
			r.logger.Warn("failed to persist progress", logging.Error(err))
		}
	}

	ripper, err := r.newRipper(progress)
	if err != nil {
		return "", err
	}
	if r.cfg.MakeMKV.RipTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(r.cfg.MakeMKV.RipTimeout)*time.Second)
		defer cancel()
	}
	return ripper.Run(ctx, job, est)
}

func (r *Runner) deviceSpec(opts Options) string {
	if opts.Device != "" {
		return opts.Device
	}
	return r.cfg.MakeMKV.OpticalDrive
}
