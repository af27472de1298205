package structs

const (
	queryLimitDefault = 50
	queryLimitMax     = 1000
)

type Query struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`

	// Filters
	User     string   `json:"user,omitempty"`
	JobIDs   []int64  `json:"job_ids,omitempty"`
	VMIDs    []int64  `json:"vmids,omitempty"`
	Statuses []Status `json:"statuses,omitempty"`

	// Operations filters by operation kind
	Operations []OperationKind `json:"operations,omitempty"`

	// UpdatedBefore matches jobs whose last update is older than this (unix seconds)
	UpdatedBefore int64 `json:"updated_before,omitempty"`
}

func (q *Query) Sanitize() {
	if q.Limit <= 0 {
		q.Limit = queryLimitDefault
	}
	if q.Limit > queryLimitMax {
		q.Limit = queryLimitMax
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	if len(q.JobIDs) == 0 {
		q.JobIDs = nil
	}
	if len(q.VMIDs) == 0 {
		q.VMIDs = nil
	}
	if len(q.Statuses) == 0 || coversAllStatuses(q.Statuses) {
		q.Statuses = nil
	}
	if len(q.Operations) == 0 {
		q.Operations = nil
	}
	if q.UpdatedBefore < 0 {
		q.UpdatedBefore = 0
	}
}

// Matches reports whether the job passes the query filters (ignores limit & offset).
func (q *Query) Matches(j *Job) bool {
	if q.User != "" && j.User != q.User {
		return false
	}
	if q.JobIDs != nil && !containsInt(q.JobIDs, j.ID) {
		return false
	}
	if q.VMIDs != nil && !containsInt(q.VMIDs, j.VMID) {
		return false
	}
	if q.Statuses != nil {
		found := false
		for _, s := range q.Statuses {
			if s == j.Status {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if q.Operations != nil {
		found := false
		for _, k := range q.Operations {
			if k == j.Operation.Kind {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if q.UpdatedBefore > 0 && j.UpdatedAt >= q.UpdatedBefore {
		return false
	}
	return true
}

func containsInt(in []int64, v int64) bool {
	for _, i := range in {
		if i == v {
			return true
		}
	}
	return false
}

// coversAllStatuses is true if every known status is named, which filters
// nothing.
func coversAllStatuses(in []Status) bool {
	for _, want := range AllStatuses {
		found := false
		for _, s := range in {
			if s == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
