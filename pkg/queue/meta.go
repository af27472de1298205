package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/voidshard/drguard/pkg/errors"
)

// Meta is the payload of a queued task.
//
// We only ever send the job id; workers always load the job fresh so nothing
// in here can go stale.
type Meta struct {
	JobID int64 `json:"job_id"`

	// SubmittedAt unix time in seconds, for logging queue latency
	SubmittedAt int64 `json:"submitted_at"`
}

func newMeta(jobID int64) *Meta {
	return &Meta{JobID: jobID, SubmittedAt: time.Now().Unix()}
}

func (m *Meta) encode() ([]byte, error) {
	return json.Marshal(m)
}

func decodeMeta(in []byte) (*Meta, error) {
	m := &Meta{}
	err := json.Unmarshal(in, m)
	if err != nil {
		return nil, fmt.Errorf("%w bad task payload: %v", errors.ErrInvalidArg, err)
	}
	if m.JobID <= 0 {
		return nil, fmt.Errorf("%w task payload has no job id", errors.ErrInvalidArg)
	}
	return m, nil
}

// Latency returns how long the task waited in the queue.
func (m *Meta) Latency() time.Duration {
	if m.SubmittedAt <= 0 {
		return 0
	}
	return time.Since(time.Unix(m.SubmittedAt, 0))
}
