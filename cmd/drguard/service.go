package main

import (
	"github.com/voidshard/drguard/pkg/api"
	"github.com/voidshard/drguard/pkg/structs"
)

// optsStack is everything needed to build a service
type optsStack struct {
	optsGeneral
	optsDatabase
	optsQueue
	optsHypervisor
	optsPolicy
	optsEvents
	optsService
}

// service builds the service from flags; name identifies this process to NATS.
func (o *optsStack) service(name string, opts *structs.Options) (api.Service, error) {
	err := o.configureLogging()
	if err != nil {
		return nil, err
	}

	pol := o.policy()

	db, err := o.optsDatabase.open()
	if err != nil {
		return nil, err
	}
	qu, err := o.optsQueue.open(pol.QueueEnabled)
	if err != nil {
		db.Close()
		return nil, err
	}
	hv, err := o.factory()
	if err != nil {
		db.Close()
		return nil, err
	}
	pub, err := o.publisher(name)
	if err != nil {
		db.Close()
		return nil, err
	}

	opts.DefaultStorage = o.DefaultStorage
	opts.ListStorage = o.ListStorage

	return api.NewAPI(db, qu, hv, pub, pol, opts)
}
