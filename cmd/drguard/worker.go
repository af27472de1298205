package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/voidshard/drguard/internal/telemetry"
	"github.com/voidshard/drguard/pkg/api"
)

const (
	docWorker     = `Run a drguard worker`
	docWorkerLong = `Executes queued jobs & runs the tidy routines that reclaim jobs stuck in
RUNNING and resubmit jobs stuck in PENDING.`
)

type optsWorker struct {
	optsStack

	MetricsAddr string `long:"metrics-addr" env:"METRICS_ADDR" default:"localhost:9100" description:"Address to serve /metrics on, empty to disable"`
}

func (c *optsWorker) Execute(args []string) error {
	svc, err := c.service("drguard-worker", api.OptionsServerDefault())
	if err != nil {
		return err
	}
	defer svc.Close()

	err = svc.Register()
	if err != nil {
		return err
	}

	if c.MetricsAddr != "" {
		telemetry.Register()
		mux := http.NewServeMux()
		mux.Handle("/metrics", telemetry.Handler())
		go func() {
			logger.Infof("serving metrics on %s", c.MetricsAddr)
			err := http.ListenAndServe(c.MetricsAddr, mux)
			if err != nil {
				logger.Errorf("metrics server: %v", err)
			}
		}()
	}

	errs := make(chan error, 1)
	go func() {
		errs <- svc.Run()
	}()

	exit := make(chan os.Signal, 1)
	signal.Notify(exit, os.Interrupt, syscall.SIGTERM)
	select {
	case <-exit:
		logger.Infof("shutting down")
		return nil
	case err := <-errs:
		return err
	}
}
