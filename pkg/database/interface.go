package database

import (
	"github.com/voidshard/drguard/pkg/structs"
)

// Database is the job store.
//
// Status changes only happen through ClaimJob, FailJob & FinishJob, each of
// which is a single atomic compare-and-set on the job's status. Losing a race
// gives errors.ErrConcurrencyConflict.
type Database interface {
	// InsertVM adds a VM or replaces the VM with the same VMID.
	InsertVM(vm *structs.VirtualMachine) error

	// VM returns a VM by VMID, errors.ErrNotFound if there isn't one.
	VM(vmid int64) (*structs.VirtualMachine, error)

	// VMs returns the VMs belonging to owner (all VMs if owner is empty).
	VMs(owner string) ([]*structs.VirtualMachine, error)

	// InsertJob stores a new job & returns its assigned id. The job's VM
	// must exist.
	InsertJob(j *structs.Job) (int64, error)

	// Job returns a job by id, errors.ErrNotFound if there isn't one.
	Job(id int64) (*structs.Job, error)

	// Jobs returns jobs matching the query, newest first.
	Jobs(q *structs.Query) ([]*structs.Job, error)

	// CountJobs returns per status counts over all of a user's jobs.
	CountJobs(user string) (*structs.JobCounts, error)

	// ClaimJob moves a PENDING or FAILED job to RUNNING & returns it.
	ClaimJob(id int64) (*structs.Job, error)

	// FailJob moves a PENDING or FAILED job to FAILED with the given log.
	FailJob(id int64, log string) (*structs.Job, error)

	// FinishJob moves a RUNNING job to the given final status with the given log.
	FinishJob(id int64, status structs.Status, log string) (*structs.Job, error)

	Close() error
}

// Migrator brings a database schema up to date.
type Migrator interface {
	Migrate() error
}
