package structs

// Job is a single requested backup or restore of a VM.
type Job struct {
	// ID is assigned by the database, monotonically increasing
	ID int64 `json:"id"`

	// VMID is the Proxmox id of the VM this job works on
	VMID int64 `json:"vm"`

	// User is the username that requested the job
	User string `json:"user"`

	// Operation is what this job does (and its arguments)
	Operation Operation `json:"operation"`

	// TargetNode is the node the operation runs against
	TargetNode string `json:"target_node"`

	// Status is the current status of this job
	Status Status `json:"status"`

	// Log is the outcome / diagnostic trail. Written by the executor only.
	Log string `json:"log"`

	// CreatedAt is the time this job was created unix time in seconds
	CreatedAt int64 `json:"created_at"`

	// UpdatedAt is the time this job last changed status unix time in seconds
	UpdatedAt int64 `json:"updated_at"`
}

// JobCounts are per status totals for one user.
type JobCounts struct {
	All     int64 `json:"all"`
	Pending int64 `json:"pending"`
	Running int64 `json:"running"`
	Success int64 `json:"success"`
	Failed  int64 `json:"failed"`
}

// Add increments the count for the given status (and All).
func (c *JobCounts) Add(st Status, n int64) {
	c.All += n
	switch st {
	case PENDING:
		c.Pending += n
	case RUNNING:
		c.Running += n
	case SUCCESS:
		c.Success += n
	case FAILED:
		c.Failed += n
	}
}
