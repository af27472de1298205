package errors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrPolicyDenied        = fmt.Errorf("policy denied")
	ErrValidation          = fmt.Errorf("validation error")
	ErrUpstreamAuth        = fmt.Errorf("upstream auth error")
	ErrUpstream            = fmt.Errorf("upstream error")
	ErrNotFound            = fmt.Errorf("not found")
	ErrNotImplemented      = fmt.Errorf("not implemented")
	ErrConcurrencyConflict = fmt.Errorf("concurrency conflict")
	ErrInvalidState        = fmt.Errorf("invalid state")
	ErrInvalidArg          = fmt.Errorf("invalid arg")
)

// kinds is checked in order; ErrUpstreamAuth must come before ErrUpstream since
// auth failures are also upstream failures.
var kinds = []struct {
	err  error
	name string
}{
	{ErrPolicyDenied, "PolicyDenied"},
	{ErrValidation, "ValidationError"},
	{ErrInvalidArg, "ValidationError"},
	{ErrUpstreamAuth, "UpstreamAuthError"},
	{ErrUpstream, "UpstreamError"},
	{ErrNotFound, "NotFound"},
	{ErrNotImplemented, "NotImplemented"},
	{ErrConcurrencyConflict, "ConcurrencyConflict"},
	{ErrInvalidState, "InvalidState"},
}

// Kind returns the short name of the error family err belongs to, or
// "InternalError" if it isn't one of ours.
func Kind(err error) string {
	name, _ := kindOf(err)
	return name
}

// Describe renders an error as "<kind>: <message>", which is what we write into
// job logs & upstream failure responses.
//
// The sentinel's own text is dropped from the front of the message so we don't
// end up with "NotImplemented: not implemented: ...".
func Describe(err error) string {
	if err == nil {
		return ""
	}
	name, sentinel := kindOf(err)
	msg := err.Error()
	if sentinel != nil {
		msg = strings.TrimLeft(strings.TrimPrefix(msg, sentinel.Error()), ": ")
	}
	if msg == "" {
		return name
	}
	return fmt.Sprintf("%s: %s", name, msg)
}

func kindOf(err error) (string, error) {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name, k.err
		}
	}
	return "InternalError", nil
}

// UpstreamError carries the status & message returned by the hypervisor.
type UpstreamError struct {
	// Status is the HTTP status code, 0 if the request never got a response.
	Status int

	// Message is the upstream body or transport error text.
	Message string

	// Auth is set when the failure happened while authenticating.
	Auth bool
}

func (e *UpstreamError) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("%d %s", e.Status, e.Message)
}

func (e *UpstreamError) Unwrap() error {
	if e.Auth {
		return ErrUpstreamAuth
	}
	return ErrUpstream
}

// Is lets an auth failure match ErrUpstream too.
func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream || (e.Auth && target == ErrUpstreamAuth)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
