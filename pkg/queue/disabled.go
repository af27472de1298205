package queue

import (
	"context"
	"sync"
)

// Disabled is the dispatcher used when the queue is switched off. Jobs are
// left PENDING to be run by hand (or by the worker's requeue sweep once a
// queue is enabled).
type Disabled struct {
	done      chan struct{}
	closeOnce sync.Once
}

func NewDisabled() *Disabled {
	return &Disabled{done: make(chan struct{})}
}

// Submit never enqueues anything.
func (d *Disabled) Submit(ctx context.Context, jobID int64) (bool, error) {
	logger.Debugf("queue disabled, job %d left pending", jobID)
	return false, nil
}

func (d *Disabled) Register(handler Handler) error {
	return nil
}

// Run blocks until Close.
func (d *Disabled) Run() error {
	<-d.done
	return nil
}

func (d *Disabled) Pending() (int, error) {
	return 0, nil
}

func (d *Disabled) Close() error {
	d.closeOnce.Do(func() { close(d.done) })
	return nil
}
