package utils

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
)

func setDefaults(cfg *tls.Config) {
	cfg.MinVersion = tls.VersionTLS12
	cfg.CurvePreferences = []tls.CurveID{tls.CurveP521, tls.CurveP384, tls.CurveP256, tls.X25519}
}

// TLSConfig builds a client TLS config from the given files.
//
// If nothing is given & insecure is false we return nil so callers fall back to
// their library defaults (which verify against the system roots).
// insecure disables certificate verification entirely; only for labs with
// self-signed certs.
func TLSConfig(cacert, cert, key string, insecure bool) (*tls.Config, error) {
	if cacert == "" && cert == "" && key == "" && !insecure {
		return nil, nil
	}

	cfg := &tls.Config{}
	setDefaults(cfg)
	cfg.InsecureSkipVerify = insecure // #nosec G402 -- explicit operator opt-in

	if cert != "" && key != "" {
		tlscert, err := tls.LoadX509KeyPair(cert, key)
		if err != nil {
			return nil, err
		}
		cfg.Certificates = []tls.Certificate{tlscert}
	}

	if cacert != "" {
		pem, err := os.ReadFile(cacert)
		if err != nil {
			return nil, err
		}
		caCertPool := x509.NewCertPool()
		if !caCertPool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates found in %s", cacert)
		}
		cfg.RootCAs = caCertPool
	}

	return cfg, nil
}
