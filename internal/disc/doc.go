// Package disc scans optical discs with makemkvcon and parses the robot
// info output into title and track descriptors.
package disc
