package structs

// RestoreRequest asks for VMID to be restored from a backup archive.
type RestoreRequest struct {
	// BackupVolID is the "volid" returned when listing backups. Required.
	BackupVolID string `json:"backup_volid"`

	// TargetNode defaults to the node the VM lives on.
	TargetNode string `json:"target_node,omitempty"`

	// Storage defaults to the service's default storage.
	Storage string `json:"storage,omitempty"`
}

// BackupRequest asks for a backup of a VM. All fields optional.
type BackupRequest struct {
	Storage string `json:"storage,omitempty"`
}

// SubmitResponse is returned when a job has been accepted.
type SubmitResponse struct {
	Message string `json:"message"`
	JobID   int64  `json:"job_id"`

	// Queued is false when no queue is configured; the job then waits in
	// PENDING for an out-of-band trigger.
	Queued bool `json:"queued"`
}

// JobSummary is the list view of a job.
type JobSummary struct {
	ID        int64         `json:"id"`
	VMID      int64         `json:"vm"`
	Status    Status        `json:"status"`
	Operation OperationKind `json:"operation"`
	CreatedAt int64         `json:"created_at"`
}

// JobsResponse is a page of a user's jobs plus their per status totals.
type JobsResponse struct {
	Jobs   []*JobSummary `json:"jobs"`
	Counts JobCounts     `json:"counts"`
}

// JobDetail is the single job view.
type JobDetail struct {
	ID        int64     `json:"id"`
	VMID      int64     `json:"vm"`
	Status    Status    `json:"status"`
	Operation Operation `json:"operation"`
	Log       string    `json:"log"`
	CreatedAt int64     `json:"created_at"`
}

// BackupsResponse lists backups for a VM.
type BackupsResponse struct {
	VMID    int64            `json:"vm"`
	Node    string           `json:"node"`
	Storage string           `json:"storage"`
	Backups []*BackupArchive `json:"backups"`
}

// VMsResponse lists the requesting user's VMs.
type VMsResponse struct {
	VMs []*VirtualMachine `json:"vms"`
}

// PolicyResponse tells a client whether safe mode is on (ie. for a UI banner).
type PolicyResponse struct {
	SafeMode       bool `json:"safe_mode"`
	RestoreEnabled bool `json:"restore_enabled"`
	BackupEnabled  bool `json:"backup_enabled"`
	QueueEnabled   bool `json:"queue_enabled"`

	// AllowedVMIDs is the allow list, empty when every VM may be touched
	AllowedVMIDs []int64 `json:"allowed_vmids,omitempty"`
}

// ToSummary converts a job to its list view.
func (j *Job) ToSummary() *JobSummary {
	return &JobSummary{ID: j.ID, VMID: j.VMID, Status: j.Status, Operation: j.Operation.Kind, CreatedAt: j.CreatedAt}
}

// ToDetail converts a job to its detail view.
func (j *Job) ToDetail() *JobDetail {
	return &JobDetail{ID: j.ID, VMID: j.VMID, Status: j.Status, Operation: j.Operation, Log: j.Log, CreatedAt: j.CreatedAt}
}
