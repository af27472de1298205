package core

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/google/uuid"
	"github.com/im7mortal/kmutex"

	"github.com/voidshard/drguard/internal/telemetry"
	"github.com/voidshard/drguard/pkg/database"
	"github.com/voidshard/drguard/pkg/errors"
	"github.com/voidshard/drguard/pkg/events"
	"github.com/voidshard/drguard/pkg/hypervisor"
	"github.com/voidshard/drguard/pkg/policy"
	"github.com/voidshard/drguard/pkg/structs"
)

const (
	// what a backup would be taken with, once live backups are supported
	backupMode     = "snapshot"
	backupCompress = "zstd"
)

// Executor runs a single job to completion.
//
// It's handed only a job id & always works from what's in the database, so it
// can be called any number of times for the same job (queue redelivery, manual
// retries). The database's compare-and-set on status guarantees at most one
// execution actually runs the operation.
type Executor struct {
	db     database.Database
	gate   *policy.Gate
	hv     hypervisor.Factory
	events events.Publisher

	// serialises executions of the same job within this process
	locks *kmutex.Kmutex
}

// NewExecutor returns an executor. A nil publisher drops events.
func NewExecutor(db database.Database, gate *policy.Gate, hv hypervisor.Factory, pub events.Publisher) *Executor {
	if pub == nil {
		pub = &events.Noop{}
	}
	return &Executor{
		db:     db,
		gate:   gate,
		hv:     hv,
		events: pub,
		locks:  kmutex.New(),
	}
}

// Execute runs the job with the given id.
//
// A job that's already running or finished is left alone (nil is returned).
// Errors are only returned when the job couldn't be loaded or its outcome
// couldn't be recorded; failures of the operation itself are written to the
// job's log & status.
func (e *Executor) Execute(ctx context.Context, jobID int64) error {
	_, err := e.execute(ctx, jobID)
	return err
}

// execute is Execute that also reports whether the operation was run (the job
// was claimed & its outcome recorded by us).
func (e *Executor) execute(ctx context.Context, jobID int64) (bool, error) {
	e.locks.Lock(jobID)
	defer e.locks.Unlock(jobID)

	run := uuid.NewString()
	logger.Debugf("[job %d run %s] starting", jobID, run)

	job, err := e.db.Job(jobID)
	if err != nil {
		return false, err
	}
	kind := string(job.Operation.Kind)

	// policy may have changed since the job was accepted
	decision := e.gate.Evaluate(policy.Request{Operation: job.Operation.Kind, VMID: job.VMID})
	if !decision.Allowed {
		failed, err := e.db.FailJob(jobID, "Blocked: "+decision.Reason)
		if errors.Is(err, errors.ErrConcurrencyConflict) {
			// running or finished already, either way it isn't ours to touch
			logger.Infof("[job %d run %s] blocked by policy but not pending, leaving it: %v", jobID, run, err)
			telemetry.Executions.WithLabelValues(kind, "conflict").Inc()
			return false, nil
		} else if err != nil {
			return false, err
		}
		logger.Warningf("[job %d run %s] blocked: %s", jobID, run, decision.Reason)
		telemetry.Executions.WithLabelValues(kind, "blocked").Inc()
		e.publish(failed)
		return false, nil
	}

	claimed, err := e.db.ClaimJob(jobID)
	if errors.Is(err, errors.ErrConcurrencyConflict) {
		logger.Infof("[job %d run %s] not claimable, skipping: %v", jobID, run, err)
		telemetry.Executions.WithLabelValues(kind, "conflict").Inc()
		return false, nil
	} else if err != nil {
		return false, err
	}
	e.publish(claimed)

	telemetry.InFlightGauge.Inc()
	status, out := e.run(ctx, claimed)
	telemetry.InFlightGauge.Dec()

	// the store calls take no context; a cancelled ctx can't stop us recording the outcome
	finished, err := e.db.FinishJob(jobID, status, out)
	if err != nil {
		logger.Errorf("[job %d run %s] failed to record %s: %v", jobID, run, status, err)
		return false, err
	}

	logger.Infof("[job %d run %s] %s %s vm %d", jobID, run, status, kind, job.VMID)
	telemetry.Executions.WithLabelValues(kind, strings.ToLower(string(status))).Inc()
	e.publish(finished)
	return true, nil
}

// run performs the operation, returning the final status & log. It never
// panics.
func (e *Executor) run(ctx context.Context, j *structs.Job) (status structs.Status, out string) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		logger.Errorf("job %d panicked: %v\n%s", j.ID, r, debug.Stack())
		status, out = structs.FAILED, fmt.Sprintf("InternalError: panic: %v", r)
	}()

	p := e.gate.Policy()
	if p.DryRunActive() {
		return structs.SUCCESS, dryRunLog(p, j)
	}

	out, err := e.live(ctx, j)
	if err != nil {
		return structs.FAILED, errors.Describe(err)
	}
	return structs.SUCCESS, out
}

// live calls the hypervisor for real. Each call gets its own session.
func (e *Executor) live(ctx context.Context, j *structs.Job) (string, error) {
	op := j.Operation
	if op.Kind == structs.BACKUP {
		// refused before any session so a live backup never looks like it worked
		return "", fmt.Errorf("%w: live backup not implemented in this build", errors.ErrNotImplemented)
	} else if op.Kind != structs.RESTORE {
		return "", fmt.Errorf("%w unknown operation %q", errors.ErrValidation, op.Kind)
	}

	if e.hv == nil {
		return "", fmt.Errorf("%w no hypervisor configured", errors.ErrInvalidState)
	}
	hv, err := e.hv()
	if err != nil {
		return "", err
	}

	err = hv.Authenticate(ctx)
	if err != nil {
		return "", err
	}

	return hv.Restore(ctx, j.TargetNode, op.ArchiveID, op.Storage, j.VMID)
}

// publish sends a job event; failures are only logged.
func (e *Executor) publish(j *structs.Job) {
	publish(e.events, j)
}

func publish(pub events.Publisher, j *structs.Job) {
	if j == nil {
		return
	}
	err := pub.Publish(context.Background(), j)
	if err != nil {
		telemetry.EventFailures.Inc()
		logger.Warningf("failed to publish event for job %d (%s): %v", j.ID, j.Status, err)
	}
}

// dryRunLog describes the call we would have made.
func dryRunLog(p *structs.Policy, j *structs.Job) string {
	flag := "DRY_RUN=1"
	if p.ForceDryRun {
		flag = "FORCE_DRY_RUN=1"
	}

	op := j.Operation
	lines := []string{}
	switch op.Kind {
	case structs.RESTORE:
		lines = append(lines,
			fmt.Sprintf("%s: would call PVE restore with:", flag),
			fmt.Sprintf(" node=%s", j.TargetNode),
			fmt.Sprintf(" archive_volid=%s", op.ArchiveID),
			fmt.Sprintf(" storage=%s", op.Storage),
			fmt.Sprintf(" vmid=%d", j.VMID),
		)
	case structs.BACKUP:
		lines = append(lines,
			fmt.Sprintf("%s: would call PVE backup (vzdump) with:", flag),
			fmt.Sprintf(" node=%s", j.TargetNode),
			fmt.Sprintf(" vmid=%d", j.VMID),
			fmt.Sprintf(" storage=%s mode=%s compress=%s", op.Storage, backupMode, backupCompress),
		)
	default:
		lines = append(lines, fmt.Sprintf("%s: unknown operation %q, nothing to do", flag, op.Kind))
	}
	return strings.Join(lines, "\n")
}
