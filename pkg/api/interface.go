package api

import (
	"context"

	"github.com/voidshard/drguard/pkg/structs"
)

// API represents the functions drguard servers should expose.
//
// Every call is made on behalf of a user; objects belonging to someone else
// are reported as not found.
type API interface {
	// Implemented in drguard/internal/core.Service

	RequestRestore(ctx context.Context, user string, vmid int64, req *structs.RestoreRequest) (*structs.SubmitResponse, error)
	RequestBackup(ctx context.Context, user string, vmid int64, req *structs.BackupRequest) (*structs.SubmitResponse, error)
	Retry(ctx context.Context, user string, id int64, sync bool) (*structs.SubmitResponse, error)

	Jobs(user string, q *structs.Query) (*structs.JobsResponse, error)
	Job(user string, id int64) (*structs.JobDetail, error)
	VMs(user string) (*structs.VMsResponse, error)
	Backups(ctx context.Context, user string, vmid int64, storage string) (*structs.BackupsResponse, error)

	Policy() *structs.PolicyResponse
}

// Worker is implemented by services that execute jobs.
type Worker interface {
	Register() error
	Run() error
	Execute(ctx context.Context, jobID int64) error
	Close() error
}

type Server interface {
	ServeForever(api API) error
	Close() error
}
