// Package media inspects ripped containers with ffprobe and decides which
// tracks to carry into the output encode.
package media
