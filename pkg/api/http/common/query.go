package common

// JobsQuery is the query string of API_JOBS.
type JobsQuery struct {
	Status    []string `url:"status,omitempty"`
	Operation []string `url:"operation,omitempty"`
	VMID      []int64  `url:"vmid,omitempty"`
	Limit     int      `url:"limit,omitempty"`
	Offset    int      `url:"offset,omitempty"`
}

// BackupsQuery is the query string of API_BACKUPS.
type BackupsQuery struct {
	Storage string `url:"storage,omitempty"`
}

// RetryQuery is the query string of API_RETRY.
type RetryQuery struct {
	// Sync runs the job in the API process rather than queueing it
	Sync bool `url:"sync,int,omitempty"`
}
