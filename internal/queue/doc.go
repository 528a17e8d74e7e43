// Package queue persists per-title job records in SQLite so runs leave an
// inspectable trail and a failed title can be reviewed after its siblings
// complete.
package queue
