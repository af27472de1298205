package api

import (
	"github.com/voidshard/drguard/internal/core"
	"github.com/voidshard/drguard/pkg/database"
	"github.com/voidshard/drguard/pkg/events"
	"github.com/voidshard/drguard/pkg/hypervisor"
	"github.com/voidshard/drguard/pkg/queue"
	"github.com/voidshard/drguard/pkg/structs"
)

// Service is both an API & a Worker.
type Service interface {
	API
	Worker
}

func NewAPI(db database.Database, qu queue.Dispatcher, hv hypervisor.Factory, pub events.Publisher, pol *structs.Policy, opts *structs.Options) (Service, error) {
	svc, err := core.NewService(db, qu, hv, pub, pol, opts)
	if err != nil {
		return nil, err
	}
	return svc, nil
}
