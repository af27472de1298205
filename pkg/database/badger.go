package database

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/juju/loggo"

	"github.com/voidshard/drguard/pkg/errors"
	"github.com/voidshard/drguard/pkg/structs"
)

const (
	prefixVM  = "vm/"
	prefixJob = "job/"
	keyJobSeq = "seq/job"

	// how many ids the sequence leases at a time
	seqBandwidth = 100

	// attempts at a read-modify-write before giving up on txn conflicts
	maxTxnAttempts = 5
)

// Badger is an embedded drguard database for single node deployments & tests.
// Only one process may hold an on disk store open at a time.
//
// Keys are zero padded so byte order is numeric order; jobs iterate newest
// first by walking the job prefix backwards.
type Badger struct {
	db  *badger.DB
	seq *badger.Sequence
}

// NewBadger opens (or creates) a badger database in dir. An empty dir keeps
// everything in memory.
func NewBadger(dir string) (*Badger, error) {
	opts := badger.DefaultOptions(dir).WithLogger(loggo.GetLogger("drguard.database.badger"))
	if dir == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil && strings.Contains(err.Error(), "Cannot acquire directory lock") {
		return nil, fmt.Errorf("%w badger store %s is locked by another process, badger is single process so use postgres to run api, worker & run side by side: %v", errors.ErrInvalidState, dir, err)
	} else if err != nil {
		return nil, err
	}

	seq, err := db.GetSequence([]byte(keyJobSeq), seqBandwidth)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Badger{db: db, seq: seq}, nil
}

// Migrate is a no-op, badger has no schema.
func (b *Badger) Migrate() error {
	return nil
}

// Close releases unused ids & closes the database.
func (b *Badger) Close() error {
	err := b.seq.Release()
	if err != nil {
		logger.Warningf("failed to release job sequence: %v", err)
	}
	return b.db.Close()
}

// InsertVM inserts or replaces a VM
func (b *Badger) InsertVM(vm *structs.VirtualMachine) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return setJSON(txn, vmKey(vm.VMID), vm)
	})
}

// VM returns a VM by VMID
func (b *Badger) VM(vmid int64) (*structs.VirtualMachine, error) {
	vm := &structs.VirtualMachine{}
	err := b.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, vmKey(vmid), vm)
	})
	if err == badger.ErrKeyNotFound {
		return nil, fmt.Errorf("%w vm %d", errors.ErrNotFound, vmid)
	}
	return vm, err
}

// VMs returns VMs owned by the given user, or all VMs if owner is ""
func (b *Badger) VMs(owner string) ([]*structs.VirtualMachine, error) {
	vms := []*structs.VirtualMachine{}
	err := b.db.View(func(txn *badger.Txn) error {
		return iterate(txn, prefixVM, false, func(raw []byte) (bool, error) {
			vm := &structs.VirtualMachine{}
			err := json.Unmarshal(raw, vm)
			if err != nil {
				return false, err
			}
			if owner == "" || vm.Owner == owner {
				vms = append(vms, vm)
			}
			return true, nil
		})
	})
	return vms, err
}

// InsertJob inserts a job, assigning it the next id
func (b *Badger) InsertJob(j *structs.Job) (int64, error) {
	next, err := b.seq.Next()
	if err != nil {
		return 0, err
	}
	id := int64(next) + 1 // sequences start at 0, ids at 1

	if j.CreatedAt == 0 {
		j.CreatedAt = timeNow()
		j.UpdatedAt = j.CreatedAt
	}
	if j.Status == "" {
		j.Status = structs.PENDING
	}

	err = b.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(vmKey(j.VMID))
		if err == badger.ErrKeyNotFound {
			return fmt.Errorf("%w vm %d", errors.ErrNotFound, j.VMID)
		} else if err != nil {
			return err
		}
		cpy := *j
		cpy.ID = id
		return setJSON(txn, jobKey(id), &cpy)
	})
	if err != nil {
		return 0, err
	}

	j.ID = id
	return id, nil
}

// Job returns a single job by id
func (b *Badger) Job(id int64) (*structs.Job, error) {
	var j *structs.Job
	err := b.db.View(func(txn *badger.Txn) error {
		var err error
		j, err = getJob(txn, id)
		return err
	})
	return j, err
}

// Jobs returns jobs matching the given query
func (b *Badger) Jobs(q *structs.Query) ([]*structs.Job, error) {
	q.Sanitize()

	jobs := []*structs.Job{}
	skipped := 0
	err := b.db.View(func(txn *badger.Txn) error {
		return iterate(txn, prefixJob, true, func(raw []byte) (bool, error) {
			j := &structs.Job{}
			err := json.Unmarshal(raw, j)
			if err != nil {
				return false, err
			}
			if !q.Matches(j) {
				return true, nil
			}
			if skipped < q.Offset {
				skipped++
				return true, nil
			}
			jobs = append(jobs, j)
			return len(jobs) < q.Limit, nil
		})
	})
	return jobs, err
}

// CountJobs returns status counts over all of a user's jobs
func (b *Badger) CountJobs(user string) (*structs.JobCounts, error) {
	counts := &structs.JobCounts{}
	err := b.db.View(func(txn *badger.Txn) error {
		return iterate(txn, prefixJob, false, func(raw []byte) (bool, error) {
			j := &structs.Job{}
			err := json.Unmarshal(raw, j)
			if err != nil {
				return false, err
			}
			if j.User == user {
				counts.Add(j.Status, 1)
			}
			return true, nil
		})
	})
	return counts, err
}

// ClaimJob sets a PENDING or FAILED job to RUNNING
func (b *Badger) ClaimJob(id int64) (*structs.Job, error) {
	return b.setStatus(id, structs.RUNNING, nil, structs.PENDING, structs.FAILED)
}

// FailJob sets a PENDING or FAILED job to FAILED
func (b *Badger) FailJob(id int64, log string) (*structs.Job, error) {
	return b.setStatus(id, structs.FAILED, &log, structs.PENDING, structs.FAILED)
}

// FinishJob sets a RUNNING job to a final status
func (b *Badger) FinishJob(id int64, status structs.Status, log string) (*structs.Job, error) {
	err := validFinalStatus(status)
	if err != nil {
		return nil, err
	}
	return b.setStatus(id, status, &log, structs.RUNNING)
}

// setStatus moves a job to status iff its current status is one of from.
//
// Badger transactions are serializable; if another transaction wrote the job
// after we read it our commit fails with ErrConflict & we re-read.
func (b *Badger) setStatus(id int64, status structs.Status, log *string, from ...structs.Status) (*structs.Job, error) {
	err := validTransitions(status, from)
	if err != nil {
		return nil, err
	}

	var out *structs.Job
	for i := 0; i < maxTxnAttempts; i++ {
		err = b.db.Update(func(txn *badger.Txn) error {
			j, err := getJob(txn, id)
			if err != nil {
				return err
			}
			if !hasStatus(from, j.Status) {
				return fmt.Errorf("%w job %d is %s, cannot move to %s", errors.ErrConcurrencyConflict, id, j.Status, status)
			}
			j.Status = status
			j.UpdatedAt = timeNow()
			if log != nil {
				j.Log = *log
			}
			out = j
			return setJSON(txn, jobKey(id), j)
		})
		if err != badger.ErrConflict {
			break
		}
	}
	if err == badger.ErrConflict {
		return nil, fmt.Errorf("%w job %d: %v", errors.ErrConcurrencyConflict, id, err)
	} else if err != nil {
		return nil, err
	}
	return out, nil
}

func getJob(txn *badger.Txn, id int64) (*structs.Job, error) {
	j := &structs.Job{}
	err := getJSON(txn, jobKey(id), j)
	if err == badger.ErrKeyNotFound {
		return nil, fmt.Errorf("%w job %d", errors.ErrNotFound, id)
	}
	return j, err
}

func getJSON(txn *badger.Txn, key []byte, out interface{}) error {
	item, err := txn.Get(key)
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, out)
	})
}

func setJSON(txn *badger.Txn, key []byte, in interface{}) error {
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return txn.Set(key, data)
}

// iterate calls fn with each value under prefix until fn returns false or an error.
func iterate(txn *badger.Txn, prefix string, reverse bool, fn func([]byte) (bool, error)) error {
	opts := badger.DefaultIteratorOptions
	opts.Reverse = reverse
	opts.Prefix = []byte(prefix)

	it := txn.NewIterator(opts)
	defer it.Close()

	seek := []byte(prefix)
	if reverse {
		seek = append([]byte(prefix), 0xFF)
	}

	for it.Seek(seek); it.ValidForPrefix([]byte(prefix)); it.Next() {
		raw, err := it.Item().ValueCopy(nil)
		if err != nil {
			return err
		}
		more, err := fn(raw)
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
	return nil
}

func hasStatus(in []structs.Status, st structs.Status) bool {
	for _, s := range in {
		if s == st {
			return true
		}
	}
	return false
}

func vmKey(vmid int64) []byte {
	return []byte(fmt.Sprintf("%s%020d", prefixVM, vmid))
}

func jobKey(id int64) []byte {
	return []byte(fmt.Sprintf("%s%020d", prefixJob, id))
}
