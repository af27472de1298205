package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/juju/loggo"

	"github.com/voidshard/drguard/pkg/structs"
)

const subjectPrefix = "drguard.jobs"

var logger = loggo.GetLogger("drguard.events")

// Publisher announces job transitions to whoever is listening.
type Publisher interface {
	// Publish sends an event for the job's current status.
	Publish(ctx context.Context, j *structs.Job) error

	Close() error
}

// Event is the body of a published job transition.
type Event struct {
	ID        int64                 `json:"id"`
	VMID      int64                 `json:"vm"`
	User      string                `json:"user"`
	Operation structs.OperationKind `json:"operation"`
	Status    structs.Status        `json:"status"`
	UpdatedAt int64                 `json:"updated_at"`
}

func newEvent(j *structs.Job) *Event {
	return &Event{
		ID:        j.ID,
		VMID:      j.VMID,
		User:      j.User,
		Operation: j.Operation.Kind,
		Status:    j.Status,
		UpdatedAt: j.UpdatedAt,
	}
}

func (e *Event) encode() ([]byte, error) {
	return json.Marshal(e)
}

// Subject returns the subject events for a status are published on,
// ie. "drguard.jobs.failed".
func Subject(st structs.Status) string {
	return fmt.Sprintf("%s.%s", subjectPrefix, strings.ToLower(string(st)))
}

// Noop drops all events.
type Noop struct{}

func (n *Noop) Publish(ctx context.Context, j *structs.Job) error {
	return nil
}

func (n *Noop) Close() error {
	return nil
}
