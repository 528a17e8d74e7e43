package queue

import "time"

// Status represents the lifecycle of a recorded title job.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRipping   Status = "ripping"
	StatusRipped    Status = "ripped"
	StatusEncoding  Status = "encoding"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Item is one title's journey through the pipeline.
type Item struct {
	ID              int64
	SessionID       string
	DiscTitle       string
	TitleID         int
	Status          Status
	ProgressPercent int
	ProgressMessage string
	RippedFile      string
	FinalFile       string
	ErrorMessage    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
