package core

import (
	"fmt"
	"strings"

	"github.com/voidshard/drguard/pkg/errors"
	"github.com/voidshard/drguard/pkg/structs"
)

const (
	maxArchiveLength = 1024
	maxStorageLength = 128
)

func validateOperation(op structs.Operation) error {
	if op.Kind == structs.RESTORE && op.ArchiveID == "" {
		return fmt.Errorf("%w backup_volid is required (the 'volid' from listing backups)", errors.ErrValidation)
	}
	if len(op.ArchiveID) > maxArchiveLength {
		return fmt.Errorf("%w backup_volid is %d chars, max %d", errors.ErrValidation, len(op.ArchiveID), maxArchiveLength)
	}
	if len(op.Storage) > maxStorageLength {
		return fmt.Errorf("%w storage is %d chars, max %d", errors.ErrValidation, len(op.Storage), maxStorageLength)
	}
	err := op.Validate()
	if err != nil {
		return fmt.Errorf("%w %v", errors.ErrValidation, err)
	}
	return nil
}

// titleCase turns "RESTORE" into "Restore"
func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
