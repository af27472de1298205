package queue

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/hibiken/asynq"
	"github.com/juju/loggo"

	"github.com/voidshard/drguard/pkg/errors"
)

const (
	asyncWorkQueue   = "drguard"
	asyncTaskExecute = "drguard:execute"
)

var logger = loggo.GetLogger("drguard.queue")

// Asynq dispatches jobs over Redis with hibiken/asynq.
type Asynq struct {
	opts *Options

	// the asynq client & inspector
	ins *asynq.Inspector
	cli *asynq.Client

	// if register is called we're intended to start a server
	lock sync.Mutex
	mux  *asynq.ServeMux
	srv  *asynq.Server

	done      chan struct{}
	closeOnce sync.Once
}

// NewAsynqQueue returns a dispatcher backed by the redis at opts.URL.
func NewAsynqQueue(opts *Options) (*Asynq, error) {
	opts.setDefaults()
	conn, err := redisOpt(opts)
	if err != nil {
		return nil, err
	}
	return &Asynq{
		opts: opts,
		ins:  asynq.NewInspector(conn),
		cli:  asynq.NewClient(conn),
		done: make(chan struct{}),
	}, nil
}

// Submit enqueues the job. Tasks are never retried by the queue, a job that
// needs another go is retried explicitly.
func (a *Asynq) Submit(ctx context.Context, jobID int64) (bool, error) {
	payload, err := newMeta(jobID).encode()
	if err != nil {
		return false, err
	}

	info, err := a.cli.EnqueueContext(
		ctx,
		asynq.NewTask(asyncTaskExecute, payload),
		asynq.Queue(asyncWorkQueue),
		asynq.MaxRetry(0),
		asynq.Timeout(a.opts.TaskTimeout),
	)
	if err != nil {
		return false, err
	}

	logger.Debugf("job %d enqueued as task %s", jobID, info.ID)
	return true, nil
}

// Register sets the handler called for each submitted job.
func (a *Asynq) Register(handler Handler) error {
	if handler == nil {
		return fmt.Errorf("%w handler is required", errors.ErrInvalidArg)
	}
	err := a.buildServer()
	if err != nil {
		return err
	}
	a.mux.HandleFunc(asyncTaskExecute, a.handle(handler))
	return nil
}

// Run starts processing & blocks until Close is called.
func (a *Asynq) Run() error {
	a.lock.Lock()
	srv, mux := a.srv, a.mux
	a.lock.Unlock()

	if srv == nil {
		return fmt.Errorf("%w no handler registered", errors.ErrInvalidState)
	}

	err := srv.Start(mux)
	if err != nil {
		return err
	}
	<-a.done
	return nil
}

// Pending returns the number of tasks waiting in our queue.
func (a *Asynq) Pending() (int, error) {
	queues, err := a.ins.Queues()
	if err != nil {
		return 0, err
	}
	known := false
	for _, q := range queues {
		known = known || q == asyncWorkQueue
	}
	if !known {
		// nothing has ever been enqueued
		return 0, nil
	}

	info, err := a.ins.GetQueueInfo(asyncWorkQueue)
	if err != nil {
		return 0, err
	}
	return info.Pending, nil
}

// Close stops the worker (if any), waiting for in flight jobs to finish.
func (a *Asynq) Close() error {
	a.lock.Lock()
	srv := a.srv
	a.lock.Unlock()

	if srv != nil {
		srv.Shutdown()
	}
	a.closeOnce.Do(func() { close(a.done) })

	a.ins.Close()
	return a.cli.Close()
}

// handle unwraps the task payload & calls the handler with the job id.
func (a *Asynq) handle(handler Handler) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		m, err := decodeMeta(t.Payload())
		if err != nil {
			logger.Errorf("dropping task %s: %v", t.Type(), err)
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		logger.Debugf("job %d picked up after %s in queue", m.JobID, m.Latency())
		return handler(ctx, m.JobID)
	}
}

func (a *Asynq) buildServer() error {
	a.lock.Lock()
	defer a.lock.Unlock()
	if a.mux != nil {
		// someone locked and set this first
		return nil
	}
	conn, err := redisOpt(a.opts)
	if err != nil {
		return err
	}
	a.srv = asynq.NewServer(
		conn,
		asynq.Config{
			Concurrency: a.opts.Workers,
			Queues:      map[string]int{asyncWorkQueue: 1},
			Logger:      &asynqLogger{},
		},
	)
	a.mux = asynq.NewServeMux()
	return nil
}

// redisOpt builds connection options from either a plain address or a url.
func redisOpt(opts *Options) (asynq.RedisConnOpt, error) {
	if opts.URL == "" {
		return nil, fmt.Errorf("%w queue url is required", errors.ErrInvalidArg)
	}
	if !strings.Contains(opts.URL, "://") {
		return asynq.RedisClientOpt{Addr: opts.URL, TLSConfig: opts.TLSConfig}, nil
	}

	conn, err := asynq.ParseRedisURI(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("%w bad queue url: %v", errors.ErrInvalidArg, err)
	}
	if c, ok := conn.(asynq.RedisClientOpt); ok && opts.TLSConfig != nil {
		c.TLSConfig = opts.TLSConfig
		return c, nil
	}
	return conn, nil
}

// asynqLogger routes asynq's logs through loggo.
type asynqLogger struct{}

func (l *asynqLogger) Debug(args ...interface{}) {
	logger.Debugf("%s", fmt.Sprint(args...))
}

func (l *asynqLogger) Info(args ...interface{}) {
	logger.Infof("%s", fmt.Sprint(args...))
}

func (l *asynqLogger) Warn(args ...interface{}) {
	logger.Warningf("%s", fmt.Sprint(args...))
}

func (l *asynqLogger) Error(args ...interface{}) {
	logger.Errorf("%s", fmt.Sprint(args...))
}

func (l *asynqLogger) Fatal(args ...interface{}) {
	logger.Criticalf("%s", fmt.Sprint(args...))
	os.Exit(1)
}
