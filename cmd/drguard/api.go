package main

import (
	"github.com/voidshard/drguard/pkg/api"
	"github.com/voidshard/drguard/pkg/api/http/server"
)

const (
	docApi     = `Run the API server`
	docApiLong = `Serves the HTTP API. Expects an auth proxy in front setting X-Remote-User.
Runs no background routines; start a worker for that.`
)

type optsAPI struct {
	optsStack

	Addr string `long:"addr" env:"ADDR" description:"Address to bind to" default:"localhost:8100"`
}

func (c *optsAPI) Execute(args []string) error {
	svc, err := c.service("drguard-api", api.OptionsClientDefault())
	if err != nil {
		return err
	}
	defer svc.Close()

	s := server.NewServer(c.Addr, c.Debug)
	return s.ServeForever(svc)
}
