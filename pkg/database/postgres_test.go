package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/voidshard/drguard/pkg/structs"
)

func TestToJobSqlArgs(t *testing.T) {
	in := &structs.Job{
		VMID:       206,
		User:       "alice",
		Operation:  structs.NewRestore("local:backup/a.vma.zst", "local-lvm"),
		TargetNode: "pve1",
		Status:     structs.PENDING,
		CreatedAt:  100,
		UpdatedAt:  200,
	}

	qstr, result := toJobSqlArgs(2, in)

	assert.Equal(t, "($2, $3, $4, $5, $6, $7, $8, $9, $10, $11)", qstr)
	assert.Equal(t, []interface{}{
		in.VMID,
		in.User,
		structs.RESTORE,
		"local:backup/a.vma.zst",
		"local-lvm",
		in.TargetNode,
		in.Status,
		"",
		in.CreatedAt,
		in.UpdatedAt,
	}, result)
}

func TestToJobSqlArgsDefaults(t *testing.T) {
	orig := timeNow
	defer func() { timeNow = orig }()
	timeNow = func() int64 { return 42 }
	in := &structs.Job{VMID: 1, Operation: structs.NewBackup("local")}

	_, result := toJobSqlArgs(1, in)

	assert.Equal(t, structs.PENDING, in.Status)
	assert.Equal(t, int64(42), in.CreatedAt)
	assert.Equal(t, int64(42), in.UpdatedAt)
	assert.Equal(t, int64(42), result[8])
}

func TestToSqlQuery(t *testing.T) {
	cases := []struct {
		Name       string
		Given      *structs.Query
		ExpectSql  string
		ExpectArgs []interface{}
	}{
		{
			"Empty",
			&structs.Query{},
			"",
			[]interface{}{},
		},
		{
			"User",
			&structs.Query{User: "alice"},
			"WHERE username = $1",
			[]interface{}{"alice"},
		},
		{
			"UserStatus",
			&structs.Query{User: "alice", Statuses: []structs.Status{structs.FAILED}},
			"WHERE username = $1 AND status IN ($2)",
			[]interface{}{"alice", "FAILED"},
		},
		{
			"Everything",
			&structs.Query{
				User:          "bob",
				JobIDs:        []int64{1, 2},
				VMIDs:         []int64{100},
				Statuses:      []structs.Status{structs.PENDING, structs.RUNNING},
				Operations:    []structs.OperationKind{structs.RESTORE},
				UpdatedBefore: 99,
			},
			"WHERE username = $1 AND id IN ($2, $3) AND vmid IN ($4) AND status IN ($5, $6) AND operation IN ($7) AND updated_at < $8",
			[]interface{}{"bob", int64(1), int64(2), int64(100), "PENDING", "RUNNING", "RESTORE", int64(99)},
		},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			qstr, args := toSqlQuery(c.Given)

			assert.Equal(t, c.ExpectSql, qstr)
			assert.Equal(t, c.ExpectArgs, args)
		})
	}
}

func TestToSqlIn(t *testing.T) {
	qstr, args := toSqlIn(3, "status", []interface{}{"PENDING", "FAILED"})

	assert.Equal(t, "status IN ($3, $4)", qstr)
	assert.Equal(t, []interface{}{"PENDING", "FAILED"}, args)
}

func TestStatusToStrings(t *testing.T) {
	cases := []struct {
		Name   string
		In     []structs.Status
		Expect []interface{}
	}{
		{
			Name:   "Empty",
			In:     []structs.Status{},
			Expect: nil,
		},
		{
			Name:   "Nil",
			In:     nil,
			Expect: nil,
		},
		{
			Name:   "All",
			In:     structs.AllStatuses,
			Expect: []interface{}{"PENDING", "RUNNING", "SUCCESS", "FAILED"},
		},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			out := statusToStrings(c.In)
			assert.Equal(t, c.Expect, out)
		})
	}
}

func TestToSetStatusSql(t *testing.T) {
	msg := "Blocked: nope"

	cases := []struct {
		Name       string
		Status     structs.Status
		Log        *string
		From       []structs.Status
		ExpectSql  string
		ExpectArgs []interface{}
	}{
		{
			Name:       "Claim",
			Status:     structs.RUNNING,
			From:       []structs.Status{structs.PENDING, structs.FAILED},
			ExpectSql:  "UPDATE job SET status=$2, updated_at=$3 WHERE id=$1 AND status IN ($4, $5) RETURNING " + jobColumns + ";",
			ExpectArgs: []interface{}{int64(7), structs.RUNNING, int64(1000), "PENDING", "FAILED"},
		},
		{
			Name:       "WithLog",
			Status:     structs.FAILED,
			Log:        &msg,
			From:       []structs.Status{structs.PENDING, structs.FAILED},
			ExpectSql:  "UPDATE job SET status=$2, updated_at=$3, log=$4 WHERE id=$1 AND status IN ($5, $6) RETURNING " + jobColumns + ";",
			ExpectArgs: []interface{}{int64(7), structs.FAILED, int64(1000), msg, "PENDING", "FAILED"},
		},
		{
			Name:       "Finish",
			Status:     structs.SUCCESS,
			Log:        &msg,
			From:       []structs.Status{structs.RUNNING},
			ExpectSql:  "UPDATE job SET status=$2, updated_at=$3, log=$4 WHERE id=$1 AND status IN ($5) RETURNING " + jobColumns + ";",
			ExpectArgs: []interface{}{int64(7), structs.SUCCESS, int64(1000), msg, "RUNNING"},
		},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			qstr, args := toSetStatusSql(7, c.Status, c.Log, c.From, 1000)

			assert.Equal(t, c.ExpectSql, qstr)
			assert.Equal(t, c.ExpectArgs, args)
		})
	}
}
