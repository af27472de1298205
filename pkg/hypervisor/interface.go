package hypervisor

import (
	"context"

	"github.com/voidshard/drguard/pkg/structs"
)

// Hypervisor is the set of things we ask of the hypervisor's API.
//
// Authenticate must be called before anything else; implementations hold the
// resulting session, so a Hypervisor must not be shared between concurrent
// executions (see Factory).
type Hypervisor interface {
	// Authenticate exchanges credentials for a session.
	Authenticate(ctx context.Context) error

	// ListVMs returns the live VM inventory of a node.
	ListVMs(ctx context.Context, node string) ([]*structs.HypervisorVM, error)

	// ListBackups returns backup archives for vmid in the given storage pool.
	ListBackups(ctx context.Context, node, storage string, vmid int64) ([]*structs.BackupArchive, error)

	// Restore restores vmid from archiveID into storage on node. The returned
	// payload is whatever the hypervisor answered, verbatim.
	Restore(ctx context.Context, node, archiveID, storage string, vmid int64) (string, error)
}

// Factory returns a new, unauthenticated Hypervisor.
type Factory func() (Hypervisor, error)
