package queue

import (
	"context"
	"crypto/tls"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"

	"github.com/voidshard/drguard/pkg/errors"
)

func newTestQueue(t *testing.T) (*Asynq, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	q, err := NewAsynqQueue(&Options{URL: mr.Addr()})
	assert.Nil(t, err)
	t.Cleanup(func() { q.Close() })
	return q, mr
}

func TestSubmitEnqueues(t *testing.T) {
	q, mr := newTestQueue(t)

	queued, err := q.Submit(context.Background(), 12)

	assert.Nil(t, err)
	assert.True(t, queued)

	pending, err := mr.List(fmt.Sprintf("asynq:{%s}:pending", asyncWorkQueue))
	assert.Nil(t, err)
	assert.Equal(t, 1, len(pending))
	assert.True(t, mr.Exists(fmt.Sprintf("asynq:{%s}:t:%s", asyncWorkQueue, pending[0])))
}

func TestSubmitRedisDown(t *testing.T) {
	q, mr := newTestQueue(t)
	mr.Close()

	queued, err := q.Submit(context.Background(), 12)

	assert.NotNil(t, err)
	assert.False(t, queued)
}

func TestPendingEmpty(t *testing.T) {
	q, _ := newTestQueue(t)

	n, err := q.Pending()

	assert.Nil(t, err)
	assert.Equal(t, 0, n)
}

func TestRunWithoutRegister(t *testing.T) {
	q, _ := newTestQueue(t)

	err := q.Run()

	assert.ErrorIs(t, err, errors.ErrInvalidState)
}

func TestRegisterNil(t *testing.T) {
	q, _ := newTestQueue(t)

	err := q.Register(nil)

	assert.ErrorIs(t, err, errors.ErrInvalidArg)
}

func TestHandlePassesJobID(t *testing.T) {
	q, _ := newTestQueue(t)

	var got int64
	hnd := q.handle(func(ctx context.Context, jobID int64) error {
		got = jobID
		return nil
	})

	payload, _ := newMeta(42).encode()
	err := hnd(context.Background(), asynq.NewTask(asyncTaskExecute, payload))

	assert.Nil(t, err)
	assert.Equal(t, int64(42), got)
}

func TestHandleBadPayloadSkipsRetry(t *testing.T) {
	q, _ := newTestQueue(t)

	called := false
	hnd := q.handle(func(ctx context.Context, jobID int64) error {
		called = true
		return nil
	})

	err := hnd(context.Background(), asynq.NewTask(asyncTaskExecute, []byte("nope")))

	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.False(t, called)
}

func TestHandleReturnsHandlerError(t *testing.T) {
	q, _ := newTestQueue(t)

	boom := fmt.Errorf("boom")
	hnd := q.handle(func(ctx context.Context, jobID int64) error {
		return boom
	})

	payload, _ := newMeta(1).encode()
	err := hnd(context.Background(), asynq.NewTask(asyncTaskExecute, payload))

	assert.Equal(t, boom, err)
}

func TestRedisOpt(t *testing.T) {
	tlsCfg := &tls.Config{ServerName: "redis.internal"}

	cases := []struct {
		Name       string
		Given      *Options
		ExpectAddr string
		ExpectTLS  *tls.Config
		ExpectErr  error
	}{
		{"Addr", &Options{URL: "localhost:6379"}, "localhost:6379", nil, nil},
		{"AddrTLS", &Options{URL: "localhost:6379", TLSConfig: tlsCfg}, "localhost:6379", tlsCfg, nil},
		{"URL", &Options{URL: "redis://redis:6380/2"}, "redis:6380", nil, nil},
		{"URLTLS", &Options{URL: "redis://redis:6380", TLSConfig: tlsCfg}, "redis:6380", tlsCfg, nil},
		{"Empty", &Options{}, "", nil, errors.ErrInvalidArg},
		{"BadScheme", &Options{URL: "http://redis"}, "", nil, errors.ErrInvalidArg},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			out, err := redisOpt(c.Given)

			if c.ExpectErr != nil {
				assert.ErrorIs(t, err, c.ExpectErr)
				return
			}
			assert.Nil(t, err)
			opt, ok := out.(asynq.RedisClientOpt)
			assert.True(t, ok)
			assert.Equal(t, c.ExpectAddr, opt.Addr)
			assert.Equal(t, c.ExpectTLS, opt.TLSConfig)
		})
	}
}

func TestDisabled(t *testing.T) {
	d := NewDisabled()

	queued, err := d.Submit(context.Background(), 1)
	assert.Nil(t, err)
	assert.False(t, queued)

	n, err := d.Pending()
	assert.Nil(t, err)
	assert.Equal(t, 0, n)

	done := make(chan error)
	go func() { done <- d.Run() }()

	assert.Nil(t, d.Close())
	assert.Nil(t, <-done)
	assert.Nil(t, d.Close()) // twice is fine
}
