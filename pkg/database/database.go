package database

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/juju/loggo"

	"github.com/voidshard/drguard/pkg/errors"
	"github.com/voidshard/drguard/pkg/structs"
)

var logger = loggo.GetLogger("drguard.database")

// timeNow returns the current time in unix seconds
var timeNow = func() int64 {
	return time.Now().Unix()
}

// NewDatabase returns the Database named by the scheme of opts.URL.
func NewDatabase(opts *Options) (Database, error) {
	if opts == nil || opts.URL == "" {
		return nil, fmt.Errorf("%w database url is required", errors.ErrInvalidArg)
	}
	u, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("%w bad database url: %v", errors.ErrInvalidArg, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "postgres", "postgresql":
		return NewPostgres(opts)
	case "badger":
		return NewBadger(badgerPath(u))
	default:
		return nil, fmt.Errorf("%w unsupported database scheme %q", errors.ErrInvalidArg, u.Scheme)
	}
}

// badgerPath returns the directory for a badger url, "" meaning in memory.
func badgerPath(u *url.URL) string {
	if u.Host == "memory" || (u.Host == "" && u.Path == "") {
		return ""
	}
	return u.Host + u.Path
}

func validFinalStatus(st structs.Status) error {
	if !structs.IsFinalStatus(st) {
		return fmt.Errorf("%w %s is not a final status", errors.ErrInvalidArg, st)
	}
	return nil
}

// validTransitions checks every from -> to is an edge of the job state machine.
func validTransitions(to structs.Status, from []structs.Status) error {
	if len(from) == 0 {
		return fmt.Errorf("%w no statuses to move from", errors.ErrInvalidArg)
	}
	for _, f := range from {
		if !structs.CanTransition(f, to) {
			return fmt.Errorf("%w %s -> %s is not a valid transition", errors.ErrInvalidArg, f, to)
		}
	}
	return nil
}
