package database

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/voidshard/drguard/pkg/errors"
	"github.com/voidshard/drguard/pkg/structs"
)

func newTestBadger(t *testing.T) *Badger {
	db, err := NewBadger("")
	assert.Nil(t, err)
	t.Cleanup(func() { db.Close() })

	for _, vm := range []*structs.VirtualMachine{
		{VMID: 100, Name: "web", Owner: "alice", Node: "pve1"},
		{VMID: 101, Name: "db", Owner: "alice", Node: "pve1"},
		{VMID: 200, Name: "mail", Owner: "bob", Node: "pve2"},
	} {
		assert.Nil(t, db.InsertVM(vm))
	}
	return db
}

func insertJob(t *testing.T, db Database, user string, vmid int64, st structs.Status) int64 {
	id, err := db.InsertJob(&structs.Job{
		VMID:       vmid,
		User:       user,
		Operation:  structs.NewRestore("local:backup/x.vma.zst", "local"),
		TargetNode: "pve1",
		Status:     st,
	})
	assert.Nil(t, err)
	return id
}

func TestBadgerVMs(t *testing.T) {
	db := newTestBadger(t)

	all, err := db.VMs("")
	assert.Nil(t, err)
	assert.Equal(t, 3, len(all))

	alice, err := db.VMs("alice")
	assert.Nil(t, err)
	assert.Equal(t, 2, len(alice))
	assert.Equal(t, int64(100), alice[0].VMID)
	assert.Equal(t, int64(101), alice[1].VMID)

	vm, err := db.VM(200)
	assert.Nil(t, err)
	assert.Equal(t, "bob", vm.Owner)

	_, err = db.VM(999)
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestBadgerInsertVMReplaces(t *testing.T) {
	db := newTestBadger(t)

	err := db.InsertVM(&structs.VirtualMachine{VMID: 100, Name: "web2", Owner: "carol", Node: "pve3"})
	assert.Nil(t, err)

	vm, err := db.VM(100)
	assert.Nil(t, err)
	assert.Equal(t, "carol", vm.Owner)
	assert.Equal(t, "pve3", vm.Node)
}

func TestBadgerInsertJobAssignsIncreasingIDs(t *testing.T) {
	db := newTestBadger(t)

	a := insertJob(t, db, "alice", 100, "")
	b := insertJob(t, db, "alice", 100, "")

	assert.Equal(t, int64(1), a)
	assert.Greater(t, b, a)

	j, err := db.Job(a)
	assert.Nil(t, err)
	assert.Equal(t, a, j.ID)
	assert.Equal(t, structs.PENDING, j.Status)
	assert.Equal(t, structs.RESTORE, j.Operation.Kind)
	assert.NotZero(t, j.CreatedAt)
}

func TestBadgerInsertJobUnknownVM(t *testing.T) {
	db := newTestBadger(t)

	_, err := db.InsertJob(&structs.Job{VMID: 999, User: "alice", Operation: structs.NewBackup("local")})

	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestBadgerJobNotFound(t *testing.T) {
	db := newTestBadger(t)

	_, err := db.Job(12)

	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestBadgerJobsNewestFirstWithFilters(t *testing.T) {
	db := newTestBadger(t)

	first := insertJob(t, db, "alice", 100, structs.PENDING)
	insertJob(t, db, "bob", 200, structs.PENDING)
	failed := insertJob(t, db, "alice", 101, structs.FAILED)
	last := insertJob(t, db, "alice", 100, structs.SUCCESS)

	jobs, err := db.Jobs(&structs.Query{User: "alice"})
	assert.Nil(t, err)
	assert.Equal(t, 3, len(jobs))
	assert.Equal(t, last, jobs[0].ID)
	assert.Equal(t, first, jobs[2].ID)

	jobs, err = db.Jobs(&structs.Query{User: "alice", Statuses: []structs.Status{structs.FAILED}, Limit: 1})
	assert.Nil(t, err)
	assert.Equal(t, 1, len(jobs))
	assert.Equal(t, failed, jobs[0].ID)

	jobs, err = db.Jobs(&structs.Query{User: "alice", Limit: 1, Offset: 1})
	assert.Nil(t, err)
	assert.Equal(t, 1, len(jobs))
	assert.Equal(t, failed, jobs[0].ID)

	jobs, err = db.Jobs(&structs.Query{VMIDs: []int64{200}})
	assert.Nil(t, err)
	assert.Equal(t, 1, len(jobs))
	assert.Equal(t, "bob", jobs[0].User)
}

func TestBadgerJobsOperationFilter(t *testing.T) {
	db := newTestBadger(t)

	insertJob(t, db, "alice", 100, structs.PENDING)
	backup, err := db.InsertJob(&structs.Job{VMID: 100, User: "alice", Operation: structs.NewBackup("local"), TargetNode: "pve1"})
	assert.Nil(t, err)

	jobs, err := db.Jobs(&structs.Query{User: "alice", Operations: []structs.OperationKind{structs.BACKUP}})
	assert.Nil(t, err)
	assert.Equal(t, 1, len(jobs))
	assert.Equal(t, backup, jobs[0].ID)

	jobs, err = db.Jobs(&structs.Query{User: "alice", Operations: []structs.OperationKind{structs.BACKUP, structs.RESTORE}})
	assert.Nil(t, err)
	assert.Equal(t, 2, len(jobs))
}

func TestBadgerJobsUpdatedBefore(t *testing.T) {
	db := newTestBadger(t)
	orig := timeNow
	defer func() { timeNow = orig }()

	timeNow = func() int64 { return 10 }
	old := insertJob(t, db, "alice", 100, structs.PENDING)
	timeNow = func() int64 { return 500 }
	insertJob(t, db, "alice", 100, structs.PENDING)

	jobs, err := db.Jobs(&structs.Query{Statuses: []structs.Status{structs.PENDING}, UpdatedBefore: 100})

	assert.Nil(t, err)
	assert.Equal(t, 1, len(jobs))
	assert.Equal(t, old, jobs[0].ID)
}

func TestBadgerCountJobs(t *testing.T) {
	db := newTestBadger(t)

	insertJob(t, db, "alice", 100, structs.PENDING)
	insertJob(t, db, "alice", 100, structs.FAILED)
	insertJob(t, db, "alice", 101, structs.FAILED)
	insertJob(t, db, "alice", 101, structs.SUCCESS)
	insertJob(t, db, "bob", 200, structs.RUNNING)

	counts, err := db.CountJobs("alice")

	assert.Nil(t, err)
	assert.Equal(t, &structs.JobCounts{All: 4, Pending: 1, Failed: 2, Success: 1}, counts)
}

func TestBadgerClaimJob(t *testing.T) {
	cases := []struct {
		Name   string
		Given  structs.Status
		Expect error
	}{
		{"Pending", structs.PENDING, nil},
		{"Failed", structs.FAILED, nil},
		{"Running", structs.RUNNING, errors.ErrConcurrencyConflict},
		{"Success", structs.SUCCESS, errors.ErrConcurrencyConflict},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			db := newTestBadger(t)
			id := insertJob(t, db, "alice", 100, c.Given)

			j, err := db.ClaimJob(id)

			if c.Expect == nil {
				assert.Nil(t, err)
				assert.Equal(t, structs.RUNNING, j.Status)
			} else {
				assert.ErrorIs(t, err, c.Expect)
				stored, _ := db.Job(id)
				assert.Equal(t, c.Given, stored.Status)
			}
		})
	}
}

func TestBadgerClaimJobMissing(t *testing.T) {
	db := newTestBadger(t)

	_, err := db.ClaimJob(77)

	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestBadgerClaimJobConcurrent(t *testing.T) {
	db := newTestBadger(t)
	id := insertJob(t, db, "alice", 100, structs.PENDING)

	workers := 16
	var wg sync.WaitGroup
	var lock sync.Mutex
	won, lost := 0, 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := db.ClaimJob(id)
			lock.Lock()
			defer lock.Unlock()
			if err == nil {
				won++
			} else if errors.Is(err, errors.ErrConcurrencyConflict) {
				lost++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, won)
	assert.Equal(t, workers-1, lost)
}

func TestBadgerFailJob(t *testing.T) {
	db := newTestBadger(t)
	id := insertJob(t, db, "alice", 100, structs.PENDING)

	j, err := db.FailJob(id, "Blocked: nope")
	assert.Nil(t, err)
	assert.Equal(t, structs.FAILED, j.Status)
	assert.Equal(t, "Blocked: nope", j.Log)

	// FAILED -> FAILED is allowed, the log is replaced
	j, err = db.FailJob(id, "Blocked: still nope")
	assert.Nil(t, err)
	assert.Equal(t, "Blocked: still nope", j.Log)
}

func TestBadgerFailJobLeavesRunningAlone(t *testing.T) {
	db := newTestBadger(t)
	id := insertJob(t, db, "alice", 100, structs.RUNNING)

	_, err := db.FailJob(id, "Blocked: nope")
	assert.ErrorIs(t, err, errors.ErrConcurrencyConflict)

	j, _ := db.Job(id)
	assert.Equal(t, structs.RUNNING, j.Status)
	assert.Equal(t, "", j.Log)
}

func TestBadgerFinishJob(t *testing.T) {
	db := newTestBadger(t)
	id := insertJob(t, db, "alice", 100, structs.PENDING)

	_, err := db.FinishJob(id, structs.SUCCESS, "done")
	assert.ErrorIs(t, err, errors.ErrConcurrencyConflict) // not running yet

	_, err = db.ClaimJob(id)
	assert.Nil(t, err)

	_, err = db.FinishJob(id, structs.RUNNING, "huh")
	assert.ErrorIs(t, err, errors.ErrInvalidArg)

	j, err := db.FinishJob(id, structs.SUCCESS, "done")
	assert.Nil(t, err)
	assert.Equal(t, structs.SUCCESS, j.Status)
	assert.Equal(t, "done", j.Log)

	// nothing leaves SUCCESS
	_, err = db.ClaimJob(id)
	assert.ErrorIs(t, err, errors.ErrConcurrencyConflict)
	_, err = db.FailJob(id, "x")
	assert.ErrorIs(t, err, errors.ErrConcurrencyConflict)
}

func TestBadgerSetStatusRejectsIllegalEdges(t *testing.T) {
	db := newTestBadger(t)
	id := insertJob(t, db, "alice", 100, structs.PENDING)

	cases := []struct {
		Name   string
		Status structs.Status
		From   []structs.Status
	}{
		{"PendingToSuccess", structs.SUCCESS, []structs.Status{structs.PENDING}},
		{"OutOfSuccess", structs.RUNNING, []structs.Status{structs.SUCCESS}},
		{"NoFrom", structs.FAILED, nil},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			_, err := db.setStatus(id, c.Status, nil, c.From...)
			assert.ErrorIs(t, err, errors.ErrInvalidArg)

			j, err := db.Job(id)
			assert.Nil(t, err)
			assert.Equal(t, structs.PENDING, j.Status)
		})
	}
}

func TestBadgerOnDiskIsSingleProcess(t *testing.T) {
	dir := t.TempDir()

	first, err := NewBadger(dir)
	assert.Nil(t, err)
	defer first.Close()

	_, err = NewBadger(dir)

	assert.ErrorIs(t, err, errors.ErrInvalidState)
	assert.Contains(t, err.Error(), "use postgres")
}
