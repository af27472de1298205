package structs

import (
	"fmt"
	"strings"
)

// OperationKind is what a job does to its VM.
type OperationKind string

const (
	// BACKUP takes a new backup of the VM (vzdump)
	BACKUP OperationKind = "BACKUP"

	// RESTORE restores the VM from an existing backup archive
	RESTORE OperationKind = "RESTORE"
)

func ToOperationKind(s string) OperationKind {
	switch strings.ToUpper(s) {
	case "BACKUP":
		return BACKUP
	case "RESTORE":
		return RESTORE
	default:
		return ""
	}
}

// Operation is the payload of a job.
//
// Restores name the archive (a Proxmox volid) and storage pool to restore into,
// backups carry only the storage they'd write to.
type Operation struct {
	Kind OperationKind `json:"kind"`

	// ArchiveID is the backup artifact to restore from, ie.
	// "local:backup/vzdump-qemu-206-2024_01_01-00_00_00.vma.zst". Restore only.
	ArchiveID string `json:"archive_id,omitempty"`

	// Storage is the storage pool the operation works against.
	Storage string `json:"storage,omitempty"`
}

// NewRestore returns a restore operation
func NewRestore(archiveID, storage string) Operation {
	return Operation{Kind: RESTORE, ArchiveID: archiveID, Storage: storage}
}

// NewBackup returns a backup operation
func NewBackup(storage string) Operation {
	return Operation{Kind: BACKUP, Storage: storage}
}

// Validate checks the payload matches the kind.
func (o Operation) Validate() error {
	switch o.Kind {
	case RESTORE:
		if o.ArchiveID == "" {
			return fmt.Errorf("restore requires an archive id")
		}
		return nil
	case BACKUP:
		if o.ArchiveID != "" {
			return fmt.Errorf("backup must not name an archive id")
		}
		return nil
	default:
		return fmt.Errorf("unknown operation kind %q", o.Kind)
	}
}
