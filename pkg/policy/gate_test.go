package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/voidshard/drguard/pkg/errors"
	"github.com/voidshard/drguard/pkg/structs"
)

func TestEvaluate(t *testing.T) {
	allow := structs.NewVMIDSet(100, 101)

	cases := []struct {
		Name         string
		Policy       *structs.Policy
		Request      Request
		ExpectAllow  bool
		ExpectReason string
	}{
		{
			Name:        "DefaultBackupAllowed",
			Policy:      structs.DefaultPolicy(),
			Request:     Request{Operation: structs.BACKUP, VMID: 200},
			ExpectAllow: true,
		},
		{
			Name:         "DefaultRestoreDisabled",
			Policy:       structs.DefaultPolicy(),
			Request:      Request{Operation: structs.RESTORE, VMID: 100},
			ExpectReason: "operation disabled by policy (RESTORE_ENABLED=0)",
		},
		{
			Name:         "BackupDisabled",
			Policy:       &structs.Policy{DryRun: true},
			Request:      Request{Operation: structs.BACKUP, VMID: 100},
			ExpectReason: "operation disabled by policy (BACKUP_ENABLED=0)",
		},
		{
			Name:         "UnknownOperation",
			Policy:       &structs.Policy{DryRun: true, RestoreEnabled: true, BackupEnabled: true},
			Request:      Request{Operation: "SNAPSHOT", VMID: 100},
			ExpectReason: `operation disabled by policy (unknown operation "SNAPSHOT")`,
		},
		{
			Name:         "SafeModeRequiresDryRun",
			Policy:       &structs.Policy{RequireDryRun: true, RestoreEnabled: true, BackupEnabled: true},
			Request:      Request{Operation: structs.RESTORE, VMID: 100},
			ExpectReason: "safe mode requires dry-run (DRY_RUN=1)",
		},
		{
			Name:        "SafeModeSatisfiedByForce",
			Policy:      &structs.Policy{RequireDryRun: true, ForceDryRun: true, RestoreEnabled: true},
			Request:     Request{Operation: structs.RESTORE, VMID: 100},
			ExpectAllow: true,
		},
		{
			Name:        "SafeModeOffLive",
			Policy:      &structs.Policy{RestoreEnabled: true},
			Request:     Request{Operation: structs.RESTORE, VMID: 100},
			ExpectAllow: true,
		},
		{
			Name:         "FeatureSwitchBeatsSafeMode",
			Policy:       &structs.Policy{RequireDryRun: true},
			Request:      Request{Operation: structs.RESTORE, VMID: 100},
			ExpectReason: "operation disabled by policy (RESTORE_ENABLED=0)",
		},
		{
			Name:         "NotInAllowList",
			Policy:       &structs.Policy{DryRun: true, RestoreEnabled: true, AllowedVMIDs: allow},
			Request:      Request{Operation: structs.RESTORE, VMID: 200},
			ExpectReason: "vmid 200 not in ALLOW_VMIDS=[100, 101]",
		},
		{
			Name:         "NotInAllowListLive",
			Policy:       &structs.Policy{RestoreEnabled: true, AllowedVMIDs: allow},
			Request:      Request{Operation: structs.RESTORE, VMID: 200},
			ExpectReason: "vmid 200 not in ALLOW_VMIDS=[100, 101]",
		},
		{
			Name:        "InAllowList",
			Policy:      &structs.Policy{DryRun: true, BackupEnabled: true, AllowedVMIDs: allow},
			Request:     Request{Operation: structs.BACKUP, VMID: 101},
			ExpectAllow: true,
		},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			d := NewGate(c.Policy).Evaluate(c.Request)

			assert.Equal(t, c.ExpectAllow, d.Allowed)
			assert.Equal(t, c.ExpectReason, d.Reason)
			if c.ExpectAllow {
				assert.NoError(t, d.Err())
			} else {
				assert.ErrorIs(t, d.Err(), errors.ErrPolicyDenied)
				assert.Contains(t, d.Err().Error(), c.ExpectReason)
			}
		})
	}
}

func TestNewGateNilPolicy(t *testing.T) {
	g := NewGate(nil)

	assert.Equal(t, structs.DefaultPolicy(), g.Policy())
}
