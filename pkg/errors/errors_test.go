package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind(t *testing.T) {
	cases := []struct {
		Name   string
		Given  error
		Expect string
	}{
		{"Policy", fmt.Errorf("%w: nope", ErrPolicyDenied), "PolicyDenied"},
		{"Validation", fmt.Errorf("%w: backup_volid required", ErrValidation), "ValidationError"},
		{"InvalidArg", fmt.Errorf("%w limit", ErrInvalidArg), "ValidationError"},
		{"Upstream", &UpstreamError{Status: 500, Message: "boom"}, "UpstreamError"},
		{"UpstreamAuth", &UpstreamError{Status: 401, Message: "no", Auth: true}, "UpstreamAuthError"},
		{"WrappedUpstream", fmt.Errorf("restore: %w", &UpstreamError{Message: "dial tcp"}), "UpstreamError"},
		{"NotFound", fmt.Errorf("%w job 3", ErrNotFound), "NotFound"},
		{"NotImplemented", ErrNotImplemented, "NotImplemented"},
		{"Conflict", ErrConcurrencyConflict, "ConcurrencyConflict"},
		{"Other", fmt.Errorf("whatever"), "InternalError"},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			assert.Equal(t, c.Expect, Kind(c.Given))
		})
	}
}

func TestUpstreamAuthIsUpstream(t *testing.T) {
	err := &UpstreamError{Status: 401, Message: "authentication failure", Auth: true}

	assert.ErrorIs(t, err, ErrUpstream)
	assert.ErrorIs(t, err, ErrUpstreamAuth)
	assert.NotErrorIs(t, &UpstreamError{Status: 500}, ErrUpstreamAuth)
}

func TestDescribe(t *testing.T) {
	cases := []struct {
		Name   string
		Given  error
		Expect string
	}{
		{"Nil", nil, ""},
		{"Sentinel", ErrNotImplemented, "NotImplemented"},
		{"TrimsSentinel", fmt.Errorf("%w: live backup in this build", ErrNotImplemented), "NotImplemented: live backup in this build"},
		{"Upstream", &UpstreamError{Status: 595, Message: "no such volume"}, "UpstreamError: 595 no such volume"},
		{"Internal", fmt.Errorf("kaboom"), "InternalError: kaboom"},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			assert.Equal(t, c.Expect, Describe(c.Given))
		})
	}
}
