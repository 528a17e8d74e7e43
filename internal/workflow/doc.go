// Package workflow drives a full disc session: scan, title selection, and
// the per-title rip, probe, encode, and library placement stages. Titles are
// processed independently so one failure does not abort the rest of the disc.
package workflow
