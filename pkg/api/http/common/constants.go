package common

const (
	// HEADER_USER carries the authenticated username, set by the fronting auth proxy
	HEADER_USER = "X-Remote-User"

	// API_VMS lists the user's VMs
	API_VMS = "/api/v1/vms"

	// API_RESTORE requests a restore of a VM
	API_RESTORE = "/api/v1/vms/{vmid:[0-9]+}/restore"

	// API_BACKUP requests a backup of a VM
	API_BACKUP = "/api/v1/vms/{vmid:[0-9]+}/backup"

	// API_BACKUPS lists backup archives of a VM
	API_BACKUPS = "/api/v1/vms/{vmid:[0-9]+}/backups"

	// API_JOBS lists the user's jobs
	API_JOBS = "/api/v1/jobs"

	// API_JOB gets a single job
	API_JOB = "/api/v1/jobs/{id:[0-9]+}"

	// API_RETRY resubmits a PENDING or FAILED job
	API_RETRY = "/api/v1/jobs/{id:[0-9]+}/retry"

	// API_POLICY reports the active safety policy
	API_POLICY = "/api/v1/policy"

	// API_HEALTH is a liveness check
	API_HEALTH = "/healthz"

	// API_METRICS serves prometheus metrics
	API_METRICS = "/metrics"
)
