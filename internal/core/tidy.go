package core

import (
	"context"
	"fmt"
	"time"

	"github.com/voidshard/drguard/internal/telemetry"
	"github.com/voidshard/drguard/pkg/errors"
	"github.com/voidshard/drguard/pkg/structs"
)

// timeNow returns the current time, swapped out in tests
var timeNow = time.Now

// startTidy launches the tidy routines; they run until Close.
//
// A single ticker routine finds work & hands batches to TidyRoutines workers.
// This is in case a worker died mid job (jobs stuck RUNNING) or the queue
// lost a submission (jobs stuck PENDING).
func (c *Service) startTidy() {
	errs := make(chan error)
	go func() {
		for {
			select {
			case err := <-errs:
				if err != nil {
					logger.Errorf("[tidy] %v", err)
				}
			case <-c.done:
				return
			}
		}
	}()

	reapWork := make(chan []*structs.Job)
	requeueWork := make(chan []*structs.Job)
	go func() {
		tick := time.NewTicker(c.opts.TidyFrequency)
		defer tick.Stop()
		for {
			select {
			case <-tick.C:
				c.queueReapWork(errs, reapWork)
				c.queueRequeueWork(errs, requeueWork)
				c.recordQueueDepth(errs)
			case <-c.done:
				return
			}
		}
	}()

	for i := int64(0); i < c.opts.TidyRoutines; i++ {
		go func() {
			for {
				select {
				case jobs := <-reapWork:
					c.handleReapJobs(errs, jobs)
				case jobs := <-requeueWork:
					c.handleRequeueJobs(errs, jobs)
				case <-c.done:
					return
				}
			}
		}()
	}
}

// queueReapWork finds jobs that have been RUNNING for longer than MaxJobRuntime.
func (c *Service) queueReapWork(errchan chan<- error, work chan<- []*structs.Job) {
	jobs, err := c.db.Jobs(&structs.Query{
		Limit:         c.opts.TidyBatchSize,
		Statuses:      []structs.Status{structs.RUNNING},
		UpdatedBefore: timeNow().Add(-c.opts.MaxJobRuntime).Unix(),
	})
	if err != nil {
		sendErr(c.done, errchan, err)
		return
	}
	if len(jobs) > 0 {
		sendWork(c.done, work, jobs)
	}
}

// queueRequeueWork finds jobs that have been PENDING for longer than
// RequeueAfter. Only done when there is a queue to resubmit to.
func (c *Service) queueRequeueWork(errchan chan<- error, work chan<- []*structs.Job) {
	if !c.gate.Policy().QueueEnabled {
		return
	}
	jobs, err := c.db.Jobs(&structs.Query{
		Limit:         c.opts.TidyBatchSize,
		Statuses:      []structs.Status{structs.PENDING},
		UpdatedBefore: timeNow().Add(-c.opts.RequeueAfter).Unix(),
	})
	if err != nil {
		sendErr(c.done, errchan, err)
		return
	}
	if len(jobs) > 0 {
		sendWork(c.done, work, jobs)
	}
}

// handleReapJobs fails jobs whose worker is presumed dead. Jobs that finished
// in the meantime are skipped by the store's status check.
func (c *Service) handleReapJobs(errchan chan<- error, jobs []*structs.Job) {
	msg := fmt.Sprintf("Reclaimed: job exceeded max runtime of %s in RUNNING", c.opts.MaxJobRuntime)
	for _, j := range jobs {
		failed, err := c.db.FinishJob(j.ID, structs.FAILED, msg)
		if errors.Is(err, errors.ErrConcurrencyConflict) {
			continue
		} else if err != nil {
			sendErr(c.done, errchan, err)
			continue
		}
		logger.Warningf("[tidy] job %d reclaimed after %s in RUNNING", j.ID, c.opts.MaxJobRuntime)
		telemetry.Reclaimed.Inc()
		publish(c.events, failed)
	}
}

// handleRequeueJobs resubmits stale PENDING jobs, at most once per
// RequeueAfter each.
func (c *Service) handleRequeueJobs(errchan chan<- error, jobs []*structs.Job) {
	now := timeNow()

	c.requeueLock.Lock()
	for id, at := range c.requeued {
		if now.Sub(at) > c.opts.RequeueAfter {
			delete(c.requeued, id)
		}
	}
	todo := []*structs.Job{}
	for _, j := range jobs {
		if _, ok := c.requeued[j.ID]; ok {
			continue
		}
		c.requeued[j.ID] = now
		todo = append(todo, j)
	}
	c.requeueLock.Unlock()

	for _, j := range todo {
		queued, err := c.qu.Submit(context.Background(), j.ID)
		if err != nil {
			sendErr(c.done, errchan, fmt.Errorf("requeue job %d: %w", j.ID, err))
			continue
		}
		if queued {
			logger.Infof("[tidy] job %d resubmitted after sitting PENDING", j.ID)
			telemetry.Requeued.Inc()
		}
	}
}

func (c *Service) recordQueueDepth(errchan chan<- error) {
	n, err := c.qu.Pending()
	if err != nil {
		sendErr(c.done, errchan, err)
		return
	}
	telemetry.QueueDepthGauge.Set(float64(n))
}

func sendErr(done <-chan struct{}, errchan chan<- error, err error) {
	select {
	case errchan <- err:
	case <-done:
	}
}

func sendWork(done <-chan struct{}, work chan<- []*structs.Job, jobs []*structs.Job) {
	select {
	case work <- jobs:
	case <-done:
	}
}
