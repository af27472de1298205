package structs

import (
	"strings"
)

type Status string

const (
	// transient states
	PENDING Status = "PENDING"
	RUNNING Status = "RUNNING"

	// end states
	SUCCESS Status = "SUCCESS"
	FAILED  Status = "FAILED"
)

// AllStatuses in the order we report counts.
var AllStatuses = []Status{PENDING, RUNNING, SUCCESS, FAILED}

func IsFinalStatus(status Status) bool {
	switch status {
	case SUCCESS, FAILED:
		return true
	default:
		return false
	}
}

// IsClaimable reports whether a job in this status may be (re)started.
// FAILED is a valid re-entry point so failed jobs can be retried in place.
func IsClaimable(status Status) bool {
	return status == PENDING || status == FAILED
}

// CanTransition reports whether from -> to is an edge of the job state machine.
//
//	PENDING -> RUNNING | FAILED
//	FAILED  -> RUNNING | FAILED
//	RUNNING -> SUCCESS | FAILED
//
// Nothing leaves SUCCESS.
func CanTransition(from, to Status) bool {
	switch from {
	case PENDING, FAILED:
		return to == RUNNING || to == FAILED
	case RUNNING:
		return to == SUCCESS || to == FAILED
	default:
		return false
	}
}

func ToStatus(s string) Status {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PENDING":
		return PENDING
	case "RUNNING":
		return RUNNING
	case "SUCCESS":
		return SUCCESS
	case "FAILED":
		return FAILED
	default:
		return ""
	}
}
