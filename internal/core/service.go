package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/juju/loggo"

	"github.com/voidshard/drguard/internal/telemetry"
	"github.com/voidshard/drguard/pkg/database"
	"github.com/voidshard/drguard/pkg/errors"
	"github.com/voidshard/drguard/pkg/events"
	"github.com/voidshard/drguard/pkg/hypervisor"
	"github.com/voidshard/drguard/pkg/policy"
	"github.com/voidshard/drguard/pkg/queue"
	"github.com/voidshard/drguard/pkg/structs"
)

const (
	// defaults
	defStorage       = "local"
	defTidyFrequency = 2 * time.Minute
	defMaxJobRuntime = 1 * time.Hour
	defRequeueAfter  = 10 * time.Minute
	defTidyBatchSize = 500

	msgQueued        = "%s queued"
	msgQueueDisabled = "Job created (queue disabled)"
	msgQueueFailed   = "Job created (queue submission failed, will be retried)"

	msgRetryQueued        = "Retry queued"
	msgRetryQueueDisabled = "Retry not queued (queue disabled), use sync to run it now"
	msgRetryQueueFailed   = "Retry not queued (queue submission failed)"
	msgExecuted           = "Job executed"
	msgNotExecuted        = "Job not executed (already claimed elsewhere or blocked by policy)"
)

// submitMessages are the answers for each outcome of a queue submission.
type submitMessages struct {
	queued   string
	disabled string
	failed   string
}

var retryMessages = submitMessages{queued: msgRetryQueued, disabled: msgRetryQueueDisabled, failed: msgRetryQueueFailed}

var logger = loggo.GetLogger("drguard.core")

// Service implements the drguard API; it validates & admits requests, records
// jobs & hands them to the dispatcher.
type Service struct {
	db     database.Database
	qu     queue.Dispatcher
	gate   *policy.Gate
	hv     hypervisor.Factory
	events events.Publisher
	exec   *Executor
	opts   *structs.Options

	// jobs the tidy routine resubmitted & when
	requeueLock sync.Mutex
	requeued    map[int64]time.Time

	done      chan struct{}
	closeOnce sync.Once
}

// NewService returns a new Service. Tidy routines are started if
// opts.TidyRoutines > 0.
func NewService(db database.Database, qu queue.Dispatcher, hv hypervisor.Factory, pub events.Publisher, pol *structs.Policy, opts *structs.Options) (*Service, error) {
	if db == nil {
		return nil, fmt.Errorf("%w database is required", errors.ErrInvalidArg)
	}
	if qu == nil {
		qu = queue.NewDisabled()
	}
	if pub == nil {
		pub = &events.Noop{}
	}
	if opts == nil {
		opts = &structs.Options{}
	}
	setDefaults(opts)

	gate := policy.NewGate(pol)
	me := &Service{
		db:       db,
		qu:       qu,
		gate:     gate,
		hv:       hv,
		events:   pub,
		exec:     NewExecutor(db, gate, hv, pub),
		opts:     opts,
		requeued: map[int64]time.Time{},
		done:     make(chan struct{}),
	}

	if opts.TidyRoutines > 0 {
		me.startTidy()
	}

	return me, nil
}

func setDefaults(opts *structs.Options) {
	if opts.DefaultStorage == "" {
		opts.DefaultStorage = defStorage
	}
	if opts.ListStorage == "" {
		opts.ListStorage = defStorage
	}
	if opts.TidyFrequency <= 0 {
		opts.TidyFrequency = defTidyFrequency
	}
	if opts.MaxJobRuntime <= 0 {
		opts.MaxJobRuntime = defMaxJobRuntime
	}
	if opts.RequeueAfter <= 0 {
		opts.RequeueAfter = defRequeueAfter
	}
	if opts.TidyBatchSize <= 0 {
		opts.TidyBatchSize = defTidyBatchSize
	}
}

// Close stops background routines & closes the dispatcher, publisher &
// database.
func (c *Service) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	errs := []error{c.qu.Close(), c.events.Close(), c.db.Close()}
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Register hooks the executor up to the dispatcher, making this process a worker.
func (c *Service) Register() error {
	return c.qu.Register(c.handleJob)
}

// Run processes queued jobs until Close is called.
func (c *Service) Run() error {
	return c.qu.Run()
}

// Execute runs a job in this process, skipping the queue.
func (c *Service) Execute(ctx context.Context, jobID int64) error {
	return c.exec.Execute(ctx, jobID)
}

// Policy reports the active policy switches.
func (c *Service) Policy() *structs.PolicyResponse {
	p := c.gate.Policy()
	resp := &structs.PolicyResponse{
		SafeMode:       p.DryRunActive(),
		RestoreEnabled: p.RestoreEnabled,
		BackupEnabled:  p.BackupEnabled,
		QueueEnabled:   p.QueueEnabled,
	}
	if !p.AllowedVMIDs.Empty() {
		resp.AllowedVMIDs = p.AllowedVMIDs.IDs()
	}
	return resp
}

// RequestRestore records a restore of vmid for user & submits it.
func (c *Service) RequestRestore(ctx context.Context, user string, vmid int64, req *structs.RestoreRequest) (*structs.SubmitResponse, error) {
	if req == nil {
		req = &structs.RestoreRequest{}
	}
	return c.request(ctx, user, vmid, req.TargetNode, structs.NewRestore(strings.TrimSpace(req.BackupVolID), req.Storage))
}

// RequestBackup records a backup of vmid for user & submits it.
func (c *Service) RequestBackup(ctx context.Context, user string, vmid int64, req *structs.BackupRequest) (*structs.SubmitResponse, error) {
	if req == nil {
		req = &structs.BackupRequest{}
	}
	return c.request(ctx, user, vmid, "", structs.NewBackup(req.Storage))
}

// request admits, records & submits a new job.
//
// Checks are made in the order: policy (403), ownership (404), payload (400).
func (c *Service) request(ctx context.Context, user string, vmid int64, node string, op structs.Operation) (*structs.SubmitResponse, error) {
	kind := string(op.Kind)

	err := c.gate.Evaluate(policy.Request{Operation: op.Kind, VMID: vmid}).Err()
	if err != nil {
		telemetry.Admissions.WithLabelValues(kind, "denied").Inc()
		logger.Infof("%s of vm %d by %s denied: %v", kind, vmid, user, err)
		return nil, err
	}

	vm, err := c.ownedVM(user, vmid)
	if err != nil {
		return nil, err
	}

	if op.Storage == "" {
		op.Storage = c.opts.DefaultStorage
	}
	err = validateOperation(op)
	if err != nil {
		return nil, err
	}
	if node == "" {
		node = vm.Node
	}

	job := &structs.Job{
		VMID:       vm.VMID,
		User:       user,
		Operation:  op,
		TargetNode: node,
		Status:     structs.PENDING,
	}
	id, err := c.db.InsertJob(job)
	if err != nil {
		return nil, err
	}
	telemetry.Admissions.WithLabelValues(kind, "accepted").Inc()
	logger.Infof("job %d: %s of vm %d on %s requested by %s", id, kind, vm.VMID, node, user)
	publish(c.events, job)

	return c.submit(ctx, id, submitMessages{
		queued:   fmt.Sprintf(msgQueued, titleCase(kind)),
		disabled: msgQueueDisabled,
		failed:   msgQueueFailed,
	}), nil
}

// Retry resubmits a PENDING or FAILED job. With sync set the job is run in
// this process before returning.
func (c *Service) Retry(ctx context.Context, user string, id int64, sync bool) (*structs.SubmitResponse, error) {
	job, err := c.ownedJob(user, id)
	if err != nil {
		return nil, err
	}
	if !structs.IsClaimable(job.Status) {
		return nil, fmt.Errorf("%w job %d is %s, only PENDING or FAILED jobs can be retried", errors.ErrInvalidState, id, job.Status)
	}

	err = c.gate.Evaluate(policy.Request{Operation: job.Operation.Kind, VMID: job.VMID}).Err()
	if err != nil {
		telemetry.Admissions.WithLabelValues(string(job.Operation.Kind), "denied").Inc()
		return nil, err
	}

	if !sync {
		return c.submit(ctx, id, retryMessages), nil
	}

	ran, err := c.exec.execute(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ran {
		return &structs.SubmitResponse{Message: msgNotExecuted, JobID: id}, nil
	}
	return &structs.SubmitResponse{Message: msgExecuted, JobID: id}, nil
}

// submit hands the job to the dispatcher. The job is already recorded, so a
// failure here is logged rather than returned; the job stays PENDING & the
// tidy routine will submit it again.
func (c *Service) submit(ctx context.Context, id int64, msgs submitMessages) *structs.SubmitResponse {
	queued, err := c.qu.Submit(ctx, id)
	switch {
	case err != nil:
		telemetry.Dispatches.WithLabelValues("error").Inc()
		logger.Errorf("job %d: failed to submit to queue: %v", id, err)
		return &structs.SubmitResponse{Message: msgs.failed, JobID: id}
	case queued:
		telemetry.Dispatches.WithLabelValues("queued").Inc()
		return &structs.SubmitResponse{Message: msgs.queued, JobID: id, Queued: true}
	default:
		telemetry.Dispatches.WithLabelValues("held").Inc()
		return &structs.SubmitResponse{Message: msgs.disabled, JobID: id}
	}
}

// Jobs returns a page of user's jobs & their per status totals.
func (c *Service) Jobs(user string, q *structs.Query) (*structs.JobsResponse, error) {
	if q == nil {
		q = &structs.Query{}
	}
	q.User = user
	q.Sanitize()

	jobs, err := c.db.Jobs(q)
	if err != nil {
		return nil, err
	}
	counts, err := c.db.CountJobs(user)
	if err != nil {
		return nil, err
	}

	resp := &structs.JobsResponse{Jobs: []*structs.JobSummary{}, Counts: *counts}
	for _, j := range jobs {
		resp.Jobs = append(resp.Jobs, j.ToSummary())
	}
	return resp, nil
}

// Job returns one of user's jobs.
func (c *Service) Job(user string, id int64) (*structs.JobDetail, error) {
	job, err := c.ownedJob(user, id)
	if err != nil {
		return nil, err
	}
	return job.ToDetail(), nil
}

// VMs returns the VMs user owns.
func (c *Service) VMs(user string) (*structs.VMsResponse, error) {
	vms, err := c.db.VMs(user)
	if err != nil {
		return nil, err
	}
	return &structs.VMsResponse{VMs: vms}, nil
}

// Backups lists backup archives of one of user's VMs, straight from the
// hypervisor.
func (c *Service) Backups(ctx context.Context, user string, vmid int64, storage string) (*structs.BackupsResponse, error) {
	vm, err := c.ownedVM(user, vmid)
	if err != nil {
		return nil, err
	}
	if storage == "" {
		storage = c.opts.ListStorage
	}
	if c.hv == nil {
		return nil, fmt.Errorf("%w no hypervisor configured", errors.ErrInvalidState)
	}

	hv, err := c.hv()
	if err != nil {
		return nil, err
	}
	err = hv.Authenticate(ctx)
	if err != nil {
		return nil, err
	}
	backups, err := hv.ListBackups(ctx, vm.Node, storage, vm.VMID)
	if err != nil {
		return nil, err
	}

	return &structs.BackupsResponse{VMID: vm.VMID, Node: vm.Node, Storage: storage, Backups: backups}, nil
}

// ownedVM returns the VM if user owns it. VMs belonging to someone else are
// reported as not found.
func (c *Service) ownedVM(user string, vmid int64) (*structs.VirtualMachine, error) {
	vm, err := c.db.VM(vmid)
	if err != nil {
		return nil, err
	}
	if vm.Owner != user {
		return nil, fmt.Errorf("%w vm %d", errors.ErrNotFound, vmid)
	}
	return vm, nil
}

// ownedJob returns the job if user requested it.
func (c *Service) ownedJob(user string, id int64) (*structs.Job, error) {
	job, err := c.db.Job(id)
	if err != nil {
		return nil, err
	}
	if job.User != user {
		return nil, fmt.Errorf("%w job %d", errors.ErrNotFound, id)
	}
	return job, nil
}
