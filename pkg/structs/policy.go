package structs

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Policy holds the safety switches. It is built once at start up and passed
// by reference to whoever needs it; nothing re-reads the environment later.
type Policy struct {
	// ForceDryRun forces dry-run regardless of DryRun
	ForceDryRun bool

	// DryRun simulates operations rather than calling the hypervisor
	DryRun bool

	// RequireDryRun refuses operations unless one of the dry-run switches is on
	RequireDryRun bool

	// AllowedVMIDs if non empty is the only set of VMs we'll touch
	AllowedVMIDs VMIDSet

	// RestoreEnabled permits restore operations
	RestoreEnabled bool

	// BackupEnabled permits backup operations
	BackupEnabled bool

	// QueueEnabled hands jobs to the async queue; otherwise they wait as PENDING
	QueueEnabled bool
}

// DefaultPolicy is the most conservative posture; dry-run on & required,
// restores disabled, no queue.
func DefaultPolicy() *Policy {
	return &Policy{
		DryRun:        true,
		RequireDryRun: true,
		BackupEnabled: true,
	}
}

// DryRunActive reports whether operations should be simulated.
func (p *Policy) DryRunActive() bool {
	return p.ForceDryRun || p.DryRun
}

// OperationEnabled reports whether the feature switch for the kind is on.
func (p *Policy) OperationEnabled(k OperationKind) bool {
	switch k {
	case RESTORE:
		return p.RestoreEnabled
	case BACKUP:
		return p.BackupEnabled
	default:
		return false
	}
}

// VMIDSet is an immutable, sorted set of VM ids. Empty means unrestricted.
type VMIDSet struct {
	ids []int64
}

// NewVMIDSet returns a set of the given ids (duplicates removed).
func NewVMIDSet(ids ...int64) VMIDSet {
	seen := map[int64]bool{}
	out := []int64{}
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return VMIDSet{ids: out}
}

// ParseVMIDSet parses a comma separated list of ids, ie. "100, 101,102".
// Blank entries are ignored.
func ParseVMIDSet(in string) (VMIDSet, error) {
	ids := []int64{}
	for _, part := range strings.Split(in, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return VMIDSet{}, fmt.Errorf("bad vmid %q: %v", part, err)
		}
		ids = append(ids, id)
	}
	return NewVMIDSet(ids...), nil
}

// Empty is true if the set has no members (ie. unrestricted).
func (s VMIDSet) Empty() bool {
	return len(s.ids) == 0
}

// Contains reports whether id is a member.
func (s VMIDSet) Contains(id int64) bool {
	i := sort.Search(len(s.ids), func(i int) bool { return s.ids[i] >= id })
	return i < len(s.ids) && s.ids[i] == id
}

// IDs returns a copy of the members in ascending order.
func (s VMIDSet) IDs() []int64 {
	out := make([]int64, len(s.ids))
	copy(out, s.ids)
	return out
}

// String renders the set as "[100, 101]".
func (s VMIDSet) String() string {
	parts := make([]string, len(s.ids))
	for i, id := range s.ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
