package structs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOperationValidate(t *testing.T) {
	cases := []struct {
		Name      string
		Given     Operation
		ExpectErr bool
	}{
		{"Restore", NewRestore("local:backup/vzdump-qemu-100.vma.zst", "local"), false},
		{"RestoreNoArchive", NewRestore("", "local"), true},
		{"Backup", NewBackup("local"), false},
		{"BackupWithArchive", Operation{Kind: BACKUP, ArchiveID: "x"}, true},
		{"Unknown", Operation{Kind: "SNAPSHOT"}, true},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			err := c.Given.Validate()
			if c.ExpectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestToOperationKind(t *testing.T) {
	assert.Equal(t, RESTORE, ToOperationKind("restore"))
	assert.Equal(t, BACKUP, ToOperationKind("BACKUP"))
	assert.Equal(t, OperationKind(""), ToOperationKind("migrate"))
}
