package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/voidshard/drguard/pkg/errors"
)

func TestDecodeMeta(t *testing.T) {
	cases := []struct {
		Name   string
		Given  string
		Expect int64
		Err    error
	}{
		{"Valid", `{"job_id": 12, "submitted_at": 100}`, 12, nil},
		{"NoJob", `{"submitted_at": 100}`, 0, errors.ErrInvalidArg},
		{"Garbage", `12`, 0, errors.ErrInvalidArg},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			m, err := decodeMeta([]byte(c.Given))

			if c.Err != nil {
				assert.ErrorIs(t, err, c.Err)
				return
			}
			assert.Nil(t, err)
			assert.Equal(t, c.Expect, m.JobID)
		})
	}
}

func TestMetaEncode(t *testing.T) {
	m := newMeta(7)

	data, err := m.encode()
	assert.Nil(t, err)

	out, err := decodeMeta(data)
	assert.Nil(t, err)
	assert.Equal(t, int64(7), out.JobID)
	assert.NotZero(t, out.SubmittedAt)
}

func TestMetaLatency(t *testing.T) {
	m := &Meta{JobID: 1, SubmittedAt: time.Now().Add(-time.Minute).Unix()}

	assert.GreaterOrEqual(t, m.Latency(), time.Minute)
	assert.Equal(t, time.Duration(0), (&Meta{JobID: 1}).Latency())
}
