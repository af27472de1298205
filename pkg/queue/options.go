package queue

import (
	"crypto/tls"
	"time"
)

const (
	defaultWorkers     = 4
	defaultTaskTimeout = 15 * time.Minute
)

// Options are options for the queue.
type Options struct {
	// URL encodes how we'll connect to the queue, either "host:port" or a
	// "redis://" / "rediss://" url.
	URL string

	// TLSConfig needed to connect to the queue (optional).
	TLSConfig *tls.Config

	// Workers is how many jobs a worker will execute at once.
	Workers int

	// TaskTimeout bounds a single execution on the queue's side. This needs to
	// exceed the hypervisor's restore timeout.
	TaskTimeout time.Duration
}

func (o *Options) setDefaults() {
	if o.Workers <= 0 {
		o.Workers = defaultWorkers
	}
	if o.TaskTimeout <= 0 {
		o.TaskTimeout = defaultTaskTimeout
	}
}
