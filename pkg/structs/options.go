package structs

import (
	"time"
)

// Options tune the core service.
type Options struct {
	// DefaultStorage is the storage pool a restore / backup uses when the
	// request doesn't name one.
	DefaultStorage string

	// ListStorage is the storage pool backups are listed from by default.
	ListStorage string

	// MaxJobRuntime is how long a job may sit in RUNNING before the tidy
	// routine decides its worker died & fails it.
	MaxJobRuntime time.Duration

	// RequeueAfter is how long a job may sit in PENDING (with the queue
	// enabled) before the tidy routine submits it again.
	RequeueAfter time.Duration

	// TidyFrequency is how often the tidy routine looks for stuck jobs.
	TidyFrequency time.Duration

	// TidyRoutines is the number of routines allocated to tidying. Zero
	// disables tidying (ie. for API only processes).
	TidyRoutines int64

	// TidyBatchSize caps how many jobs one tidy pass looks at.
	TidyBatchSize int
}
