package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTLSConfigNothingSet(t *testing.T) {
	cfg, err := TLSConfig("", "", "", false)

	assert.Nil(t, err)
	assert.Nil(t, cfg)
}

func TestTLSConfigInsecure(t *testing.T) {
	cfg, err := TLSConfig("", "", "", true)

	assert.Nil(t, err)
	assert.NotNil(t, cfg)
	assert.True(t, cfg.InsecureSkipVerify)
}

func TestTLSConfigBadCA(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ca.pem")
	assert.Nil(t, os.WriteFile(path, []byte("not a cert"), 0600))

	_, err := TLSConfig(path, "", "", false)

	assert.NotNil(t, err)
}

func TestTLSConfigMissingCA(t *testing.T) {
	_, err := TLSConfig(filepath.Join(t.TempDir(), "nope.pem"), "", "", false)

	assert.NotNil(t, err)
}
