package main

import (
	"context"
	"encoding/json"
	"os"
	"sort"

	"github.com/voidshard/drguard/pkg/hypervisor"
	"github.com/voidshard/drguard/pkg/structs"
)

const (
	docVMs     = `Manage the VM inventory`
	docVMsAdd  = `Add or update a VM & its owner`
	docVMsList = `List VMs`

	docVMsListLong = `List VMs in the inventory.

With --live each VM is printed alongside what Proxmox reports for it, one
node listing per distinct node; "live" is null for a VM Proxmox doesn't know.`
)

type optsVMsAdd struct {
	optsGeneral
	optsDatabase

	VMID        int64  `long:"vmid" required:"true" description:"Proxmox VM id"`
	Name        string `long:"name" description:"VM name"`
	Owner       string `long:"owner" required:"true" description:"Username that owns the VM"`
	Node        string `long:"node" required:"true" description:"Proxmox node the VM lives on"`
	Description string `long:"description" description:"Free text"`
}

func (c *optsVMsAdd) Execute(args []string) error {
	err := c.configureLogging()
	if err != nil {
		return err
	}
	db, err := c.optsDatabase.open()
	if err != nil {
		return err
	}
	defer db.Close()

	err = db.InsertVM(&structs.VirtualMachine{
		VMID:        c.VMID,
		Name:        c.Name,
		Owner:       c.Owner,
		Node:        c.Node,
		Description: c.Description,
	})
	if err != nil {
		return err
	}
	logger.Infof("vm %d on %s owned by %s", c.VMID, c.Node, c.Owner)
	return nil
}

type optsVMsList struct {
	optsGeneral
	optsDatabase
	optsHypervisor

	Owner string `long:"owner" description:"Only VMs owned by this user"`
	Live  bool   `long:"live" description:"Include the live state of each VM from Proxmox"`
}

// liveVM is an inventory VM with what the hypervisor says about it.
type liveVM struct {
	*structs.VirtualMachine
	Live *structs.HypervisorVM `json:"live"`
}

func (c *optsVMsList) Execute(args []string) error {
	err := c.configureLogging()
	if err != nil {
		return err
	}
	db, err := c.optsDatabase.open()
	if err != nil {
		return err
	}
	defer db.Close()

	vms, err := db.VMs(c.Owner)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)

	if !c.Live {
		for _, vm := range vms {
			err = enc.Encode(vm)
			if err != nil {
				return err
			}
		}
		return nil
	}

	factory, err := c.optsHypervisor.factory()
	if err != nil {
		return err
	}
	out, err := liveInventory(context.Background(), factory, vms)
	if err != nil {
		return err
	}
	for _, vm := range out {
		err = enc.Encode(vm)
		if err != nil {
			return err
		}
	}
	return nil
}

// liveInventory pairs each VM with the hypervisor's view of it, listing each
// node once over a single session.
func liveInventory(ctx context.Context, factory hypervisor.Factory, vms []*structs.VirtualMachine) ([]*liveVM, error) {
	out := make([]*liveVM, len(vms))
	byNode := map[string][]int{}
	for i, vm := range vms {
		out[i] = &liveVM{VirtualMachine: vm}
		byNode[vm.Node] = append(byNode[vm.Node], i)
	}
	if len(vms) == 0 {
		return out, nil
	}

	hv, err := factory()
	if err != nil {
		return nil, err
	}
	err = hv.Authenticate(ctx)
	if err != nil {
		return nil, err
	}

	nodes := make([]string, 0, len(byNode))
	for node := range byNode {
		nodes = append(nodes, node)
	}
	sort.Strings(nodes)

	for _, node := range nodes {
		found, err := hv.ListVMs(ctx, node)
		if err != nil {
			return nil, err
		}
		live := map[int64]*structs.HypervisorVM{}
		for _, h := range found {
			live[h.VMID] = h
		}
		for _, i := range byNode[node] {
			out[i].Live = live[out[i].VMID]
		}
		logger.Debugf("node %s reports %d vms", node, len(found))
	}
	return out, nil
}
