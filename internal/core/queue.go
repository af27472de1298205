package core

import (
	"context"

	"github.com/voidshard/drguard/pkg/errors"
)

// handleJob is what the dispatcher calls on workers.
//
// Jobs that vanished are dropped; anything else the executor returns is an
// infrastructure failure (ie. the database is down) & is handed back to the
// queue.
func (c *Service) handleJob(ctx context.Context, jobID int64) error {
	err := c.exec.Execute(ctx, jobID)
	if errors.Is(err, errors.ErrNotFound) {
		logger.Warningf("job %d no longer exists, dropping", jobID)
		return nil
	}
	if err != nil {
		logger.Errorf("job %d: %v", jobID, err)
	}
	return err
}
