package ripping

import (
	"fmt"
	"time"
)

// Status represents the lifecycle of a rip job.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// terminal statuses absorb all further transitions.
func (s Status) terminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// Job describes one title rip. It is created by the caller and mutated only
// by the Supervisor while the rip runs.
type Job struct {
	TitleID  int
	DiscPath string
	TempDir  string

	// ExpectedOutputName is the filename makemkvcon is expected to produce,
	// when known ahead of time. Discovery prefers it over glob matches.
	ExpectedOutputName string

	// EstimatedTotalBytes is the expected output size. Zero means unknown;
	// it may be refined mid-job from the title duration.
	EstimatedTotalBytes int64

	// DurationSeconds is the title's reported play length, used to derive a
	// size estimate when MakeMKV did not report one.
	DurationSeconds int

	status    Status
	startedAt time.Time

	// RippedFile is set once the job succeeds.
	RippedFile string
}

// NewJob builds a pending job for the given title.
func NewJob(titleID int, discPath, tempDir string) *Job {
	return &Job{TitleID: titleID, DiscPath: discPath, TempDir: tempDir, status: StatusPending}
}

// Status reports the job's current lifecycle state.
func (j *Job) Status() Status {
	return j.status
}

// transition moves the job to next unless it is already terminal. Terminal
// states absorb further transitions as no-ops.
func (j *Job) transition(next Status) bool {
	if j.status.terminal() {
		return false
	}
	j.status = next
	return true
}

// partialPatterns returns the glob patterns a stale or in-flight rip of this
// title may have left in the temp directory.
func (j *Job) partialPatterns() []string {
	return []string{
		fmt.Sprintf("*_t%02d.mkv", j.TitleID),
		fmt.Sprintf("title_t%02d.mkv", j.TitleID),
	}
}
