package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/voidshard/drguard/pkg/api"
)

const (
	docRun     = `Execute a job in this process`
	docRunLong = `Executes the given job ids here & now, skipping the queue. Useful when
QUEUE_ENABLED=0 and jobs are waiting in PENDING. Usage: drguard run --user alice <job id>...`
)

type optsRun struct {
	optsStack

	User string `long:"user" env:"DRGUARD_USER" required:"true" description:"User the jobs belong to"`
}

func (c *optsRun) Execute(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("at least one job id is required")
	}
	ids := []int64{}
	for _, a := range args {
		id, err := strconv.ParseInt(a, 10, 64)
		if err != nil {
			return fmt.Errorf("bad job id %q: %v", a, err)
		}
		ids = append(ids, id)
	}

	svc, err := c.service("drguard-run", api.OptionsClientDefault())
	if err != nil {
		return err
	}
	defer svc.Close()

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	for _, id := range ids {
		_, err := svc.Retry(context.Background(), c.User, id, true)
		if err != nil {
			return fmt.Errorf("job %d: %w", id, err)
		}
		detail, err := svc.Job(c.User, id)
		if err != nil {
			return err
		}
		err = enc.Encode(detail)
		if err != nil {
			return err
		}
	}
	return nil
}
