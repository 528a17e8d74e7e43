// Package services carries the shared error taxonomy used by ripsharp's
// stage code to classify failures for logging and queue bookkeeping.
package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrExternalTool marks failures of makemkvcon/ffmpeg/ffprobe invocations.
	ErrExternalTool = errors.New("external tool error")
	// ErrTimeout marks wall-clock expiry of a subprocess call.
	ErrTimeout = errors.New("timeout")
	// ErrNotFound marks a declared success whose artifact could not be located.
	ErrNotFound = errors.New("not found")
	// ErrConfiguration marks unusable configuration or environment.
	ErrConfiguration = errors.New("configuration error")
	// ErrValidation marks inputs that fail a precondition check.
	ErrValidation = errors.New("validation error")
	// ErrTransient marks failures that are local to one item.
	ErrTransient = errors.New("transient failure")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
