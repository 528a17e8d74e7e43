package ripping

import (
	"log/slog"
	"strings"

	"github.com/mapitman/ripsharp/internal/logging"
)

// Phase tracks which part of the rip the tool is in. MakeMKV's own progress
// reporting becomes unreliable once it starts flushing the container, so the
// estimator trusts output-file growth over the protocol signal during Saving.
type Phase int

const (
	PhaseReading Phase = iota
	PhaseSaving
)

const (
	// livenessCap keeps the keep-alive fallback from ever claiming completion.
	livenessCap = 99

	// assumedBytesPerSecond is a rough average muxed bitrate (~2.5 MB/s) used
	// to derive a size estimate from a title's duration when MakeMKV did not
	// report one.
	assumedBytesPerSecond = 2_500_000
)

// Estimator fuses decoder-reported percentages, output-file growth, and a
// keep-alive fallback into one monotonic displayed percentage for a job.
// It is owned by exactly one supervisor loop and is not safe for concurrent
// use.
type Estimator struct {
	logger *slog.Logger

	percent      int
	phase        Phase
	lastFileSize int64
	totalBytes   int64
	approximate  bool
}

// NewEstimator builds an estimator. totalBytes may be zero when the expected
// output size is unknown.
func NewEstimator(logger *slog.Logger, totalBytes int64) *Estimator {
	return &Estimator{
		logger:     logging.NewComponentLogger(logger, "estimator"),
		totalBytes: totalBytes,
	}
}

// Percent reports the current displayed value.
func (e *Estimator) Percent() int {
	return e.percent
}

// Phase reports the current rip phase.
func (e *Estimator) CurrentPhase() Phase {
	return e.phase
}

// TotalBytes reports the size estimate and whether it was derived rather than
// tool-reported.
func (e *Estimator) TotalBytes() (int64, bool) {
	return e.totalBytes, e.approximate
}

// DeriveTotalFromDuration computes a size estimate from the title duration
// when no tool-reported size exists. The result is approximate and is logged
// as such so it is never mistaken for a real size.
func (e *Estimator) DeriveTotalFromDuration(durationSeconds int) {
	if e.totalBytes > 0 || durationSeconds <= 0 {
		return
	}
	e.totalBytes = int64(durationSeconds) * assumedBytesPerSecond
	e.approximate = true
	e.logger.Info("derived approximate size estimate",
		logging.Int("duration_seconds", durationSeconds),
		logging.Int64("approximate_total_bytes", e.totalBytes),
	)
}

// ObserveValue applies a normalized protocol percentage. During the Saving
// phase the protocol signal is ignored in favor of file growth.
func (e *Estimator) ObserveValue(percent float64) int {
	if e.phase == PhaseSaving {
		return e.percent
	}
	value := int(percent)
	if value > e.percent {
		e.percent = value
	}
	return e.percent
}

// ObserveCaption inspects an operation caption and switches to the Saving
// phase once the tool reports it is writing the output container.
func (e *Estimator) ObserveCaption(caption string) {
	if e.phase == PhaseSaving {
		return
	}
	if strings.Contains(strings.ToLower(caption), "saving") {
		e.phase = PhaseSaving
		e.logger.Debug("entered saving phase", logging.String("caption", caption))
	}
}

// ObserveFileSize applies an output-file size probe. With a known total the
// guess overwrites the displayed value during Saving and otherwise only
// raises it; either way the display never goes backward.
func (e *Estimator) ObserveFileSize(size int64) int {
	if size > e.lastFileSize {
		e.lastFileSize = size
	}
	if e.totalBytes <= 0 {
		return e.percent
	}
	guess := int(e.lastFileSize * 100 / e.totalBytes)
	if guess > 100 {
		guess = 100
	}
	if guess > e.percent {
		e.percent = guess
	}
	return e.percent
}

// Liveness advances the display by one point to signal the job is alive when
// no other signal exists. It never claims completion.
func (e *Estimator) Liveness() int {
	if e.totalBytes > 0 {
		return e.percent
	}
	if e.percent < livenessCap {
		e.percent++
	}
	return e.percent
}

// Complete forces the display to 100 after a successful exit.
func (e *Estimator) Complete() int {
	e.percent = 100
	return e.percent
}
