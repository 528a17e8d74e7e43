// Package ripping supervises makemkvcon rips.
//
// A Supervisor owns the subprocess lifecycle for one title: it cleans stale
// partials, spawns the tool with merged output, decodes the robot protocol
// line by line, and fuses the decoded signals with output-file growth into a
// single monotonic progress value. The package also owns the free-space guard
// and the output-file discovery rules shared by the supervisor and the
// encode stage.
package ripping
