package events

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/voidshard/drguard/pkg/structs"
)

// NATS publishes job events to a NATS server.
type NATS struct {
	nc  *nats.Conn
	url string
}

// NewNATS connects to the server(s) at url. We reconnect forever; events
// published while disconnected are buffered by the client.
func NewNATS(url, name string) (*NATS, error) {
	opts := []nats.Option{
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Warningf("nats disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Infof("nats reconnected to %s", nc.ConnectedUrl())
		}),
	}
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, err
	}
	return &NATS{nc: nc, url: url}, nil
}

// Publish sends the job's event on the subject for its status.
func (n *NATS) Publish(ctx context.Context, j *structs.Job) error {
	if n.nc == nil || n.nc.IsClosed() {
		return fmt.Errorf("nats not connected")
	}
	data, err := newEvent(j).encode()
	if err != nil {
		return err
	}
	return n.nc.Publish(Subject(j.Status), data)
}

// Close flushes pending events & disconnects.
func (n *NATS) Close() error {
	if n.nc == nil {
		return nil
	}
	err := n.nc.Drain()
	n.nc.Close()
	return err
}
