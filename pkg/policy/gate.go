// Package policy decides whether an operation may run against a VM.
//
// The Gate is a pure function over an immutable structs.Policy; it's evaluated
// when a job is requested and again when it is executed, with the same rules
// both times, so a config change in between can never let a job slip through.
package policy

import (
	"fmt"

	"github.com/voidshard/drguard/pkg/errors"
	"github.com/voidshard/drguard/pkg/structs"
)

// Request is what we're asking permission for.
type Request struct {
	Operation structs.OperationKind
	VMID      int64
}

// Decision is the gate's verdict. A nil *Decision is never returned.
type Decision struct {
	Allowed bool

	// Reason is set when denied, it should be surfaced verbatim.
	Reason string
}

// Err returns nil if allowed, otherwise an error wrapping ErrPolicyDenied with
// the reason as its message.
func (d *Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return fmt.Errorf("%w: %s", errors.ErrPolicyDenied, d.Reason)
}

// Gate evaluates requests against a policy.
type Gate struct {
	policy *structs.Policy
}

// NewGate returns a gate over the given policy. A nil policy is treated as
// structs.DefaultPolicy().
func NewGate(p *structs.Policy) *Gate {
	if p == nil {
		p = structs.DefaultPolicy()
	}
	return &Gate{policy: p}
}

// Policy returns the policy this gate evaluates against.
func (g *Gate) Policy() *structs.Policy {
	return g.policy
}

// Evaluate applies the rules in order, first match wins:
//  1. the operation's feature switch is off
//  2. dry-run is required but not active
//  3. the allow-list is set and doesn't include the VM
func (g *Gate) Evaluate(r Request) *Decision {
	p := g.policy

	if !p.OperationEnabled(r.Operation) {
		return deny(disabledReason(r.Operation))
	}
	if p.RequireDryRun && !p.ForceDryRun && !p.DryRun {
		return deny("safe mode requires dry-run (DRY_RUN=1)")
	}
	if !p.AllowedVMIDs.Empty() && !p.AllowedVMIDs.Contains(r.VMID) {
		return deny(fmt.Sprintf("vmid %d not in ALLOW_VMIDS=%s", r.VMID, p.AllowedVMIDs))
	}

	return &Decision{Allowed: true}
}

func disabledReason(k structs.OperationKind) string {
	switch k {
	case structs.RESTORE:
		return "operation disabled by policy (RESTORE_ENABLED=0)"
	case structs.BACKUP:
		return "operation disabled by policy (BACKUP_ENABLED=0)"
	default:
		return fmt.Sprintf("operation disabled by policy (unknown operation %q)", k)
	}
}

func deny(reason string) *Decision {
	return &Decision{Reason: reason}
}
