// Package makemkv decodes the line-oriented robot protocol emitted by
// makemkvcon on stdout.
//
// The decoder is deliberately forgiving: any line it cannot make sense of
// degrades to a passthrough event rather than an error, because makemkvcon
// interleaves free-form diagnostics with structured records.
package makemkv
