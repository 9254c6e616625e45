package domain

import "context"

// Step is one unit of the backup pipeline. A step captures live state into
// the working directory on Backup and applies working directory contents
// back to live state on Restore. Steps are stateless beyond their
// constructor parameters and are executed strictly sequentially: later steps
// may depend on state left by earlier ones, so no reordering or
// parallelization is permitted.
type Step interface {
	// Backup captures live state into the working directory.
	Backup(ctx context.Context) error

	// Restore applies working directory contents back to live state.
	Restore(ctx context.Context) error

	// Name returns the configured step instance name.
	Name() string
}

// Committer is implemented by steps that defer changes during Restore and
// need a single commit point after every step has restored successfully.
type Committer interface {
	Commit(ctx context.Context) error
}
