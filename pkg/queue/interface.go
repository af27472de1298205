package queue

import (
	"context"
)

// Handler executes the job with the given id.
type Handler func(ctx context.Context, jobID int64) error

// Dispatcher hands jobs to workers.
//
// Delivery is at-least-once; a handler may be called more than once for the
// same job & must be safe to run again.
type Dispatcher interface {
	// Submit schedules the job for execution. It returns false (and no error)
	// if this dispatcher doesn't run jobs; the job then waits for an out of
	// band trigger.
	Submit(ctx context.Context, jobID int64) (bool, error)

	// Register the handler to call for submitted jobs. This is only needed on
	// workers.
	Register(handler Handler) error

	// Run processes jobs via the registered handler. It blocks until Close()
	// is called.
	Run() error

	// Pending returns how many jobs are waiting to be picked up.
	Pending() (int, error)

	// Close & shutdown the dispatcher.
	Close() error
}
