package ripping

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// spaceSafetyMargin inflates the estimated requirement so a rip that lands
// slightly over the estimate does not fill the filesystem.
const spaceSafetyMargin = 0.05

// statfsFunc allows tests to stub filesystem stats.
type statfsFunc func(path string) (free uint64, err error)

// SpaceCheck reports whether the filesystem holding a path can absorb an
// estimated write. A failed check is a warning, not an abort: the rip tool's
// own space error is what actually fails the job.
type SpaceCheck struct {
	OK             bool
	RequiredBytes  uint64
	FreeBytes      uint64
	ShortfallBytes uint64
}

// CheckSpace compares free space under path against estimatedBytes plus the
// safety margin.
func CheckSpace(estimatedBytes int64, path string) (SpaceCheck, error) {
	return checkSpace(estimatedBytes, path, realStatfs)
}

func checkSpace(estimatedBytes int64, path string, statfs statfsFunc) (SpaceCheck, error) {
	if estimatedBytes < 0 {
		estimatedBytes = 0
	}
	required := uint64(float64(estimatedBytes) * (1 + spaceSafetyMargin))

	free, err := statfs(path)
	if err != nil {
		return SpaceCheck{}, fmt.Errorf("statfs %q: %w", path, err)
	}

	check := SpaceCheck{RequiredBytes: required, FreeBytes: free}
	if free >= required {
		check.OK = true
		return check, nil
	}
	check.ShortfallBytes = required - free
	return check, nil
}

func realStatfs(path string) (uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, err
	}
	return stat.Bavail * uint64(stat.Bsize), nil
}
