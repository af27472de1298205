package hypervisor

import (
	"crypto/tls"
	"time"
)

const (
	defaultAuthTimeout    = 20 * time.Second
	defaultRequestTimeout = 30 * time.Second
	defaultRestoreTimeout = 600 * time.Second
)

// Options are options for talking to the hypervisor.
type Options struct {
	// URL of the API, ie. "https://pve.example.com:8006". The "/api2/json" suffix
	// is added for us.
	URL string

	// User to log in as, including realm, ie. "drguard@pve"
	User string

	// Password for User
	Password string

	// TLSConfig to use (optional). Nil verifies against the system roots.
	TLSConfig *tls.Config

	// AuthTimeout bounds the login call
	AuthTimeout time.Duration

	// RequestTimeout bounds read calls (listing VMs / backups)
	RequestTimeout time.Duration

	// RestoreTimeout bounds restore & backup submissions, which can be slow to
	// be accepted on a busy cluster.
	RestoreTimeout time.Duration
}

func (o *Options) setDefaults() {
	if o.AuthTimeout <= 0 {
		o.AuthTimeout = defaultAuthTimeout
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = defaultRequestTimeout
	}
	if o.RestoreTimeout <= 0 {
		o.RestoreTimeout = defaultRestoreTimeout
	}
}
