package structs

// VirtualMachine is a VM we manage on behalf of exactly one user.
type VirtualMachine struct {
	VMID        int64  `json:"vmid"`
	Name        string `json:"name"`
	Owner       string `json:"owner"`
	Node        string `json:"node"`
	Description string `json:"description,omitempty"`
}

// HypervisorVM is a VM as the hypervisor reports it (live inventory).
type HypervisorVM struct {
	VMID   int64  `json:"vmid"`
	Name   string `json:"name"`
	Status string `json:"status"`
	MaxMem int64  `json:"maxmem,omitempty"`
	CPUs   int64  `json:"cpus,omitempty"`
	Uptime int64  `json:"uptime,omitempty"`
}

// BackupArchive is one backup artifact in a storage pool.
type BackupArchive struct {
	// VolID is the opaque archive id we pass back on restore
	VolID string `json:"volid"`

	VMID    int64  `json:"vmid,omitempty"`
	Format  string `json:"format,omitempty"`
	Size    int64  `json:"size,omitempty"`
	CTime   int64  `json:"ctime,omitempty"`
	Notes   string `json:"notes,omitempty"`
	Content string `json:"content,omitempty"`
}
