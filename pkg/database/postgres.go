package database

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/voidshard/drguard/pkg/errors"
	"github.com/voidshard/drguard/pkg/structs"
)

const (
	tableVM  = "vm"
	tableJob = "job"

	// postgres error code for a foreign key violation
	pgForeignKeyViolation = "23503"

	jobColumns = "id, vmid, username, operation, archive_id, storage, target_node, status, log, created_at, updated_at"
	vmColumns  = "vmid, name, owner, node, description"
)

// Postgres is a drguard database implementation that uses postgres.
type Postgres struct {
	opts *Options
	pool *pgxpool.Pool
}

// NewPostgres returns a new Postgres database connection.
func NewPostgres(opts *Options) (*Postgres, error) {
	opts.setDefaults()
	opts.URL = strings.Replace(opts.URL, "$"+opts.UsernameEnvVar, os.Getenv(opts.UsernameEnvVar), 1)
	opts.URL = strings.Replace(opts.URL, "$"+opts.PasswordEnvVar, os.Getenv(opts.PasswordEnvVar), 1)
	pool, err := pgxpool.New(context.Background(), opts.URL)
	return &Postgres{pool: pool, opts: opts}, err
}

// Close shuts down the database connection.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

// Migrate applies any outstanding schema migrations.
func (p *Postgres) Migrate() error {
	return migratePostgres(p.opts.URL)
}

// InsertVM inserts or replaces a VM
func (p *Postgres) InsertVM(vm *structs.VirtualMachine) error {
	qstr := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (vmid) DO UPDATE SET name=EXCLUDED.name, owner=EXCLUDED.owner, node=EXCLUDED.node, description=EXCLUDED.description;`,
		tableVM, vmColumns,
	)

	ctx := context.Background()
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, qstr, vm.VMID, vm.Name, vm.Owner, vm.Node, vm.Description)
	return err
}

// VM returns a VM by VMID
func (p *Postgres) VM(vmid int64) (*structs.VirtualMachine, error) {
	qstr := fmt.Sprintf(`SELECT %s FROM %s WHERE vmid=$1;`, vmColumns, tableVM)

	ctx := context.Background()
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	vm := &structs.VirtualMachine{}
	err = conn.QueryRow(ctx, qstr, vmid).Scan(&vm.VMID, &vm.Name, &vm.Owner, &vm.Node, &vm.Description)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("%w vm %d", errors.ErrNotFound, vmid)
	}
	return vm, err
}

// VMs returns VMs owned by the given user, or all VMs if owner is ""
func (p *Postgres) VMs(owner string) ([]*structs.VirtualMachine, error) {
	qstr := fmt.Sprintf(`SELECT %s FROM %s ORDER BY vmid;`, vmColumns, tableVM)
	args := []interface{}{}
	if owner != "" {
		qstr = fmt.Sprintf(`SELECT %s FROM %s WHERE owner=$1 ORDER BY vmid;`, vmColumns, tableVM)
		args = append(args, owner)
	}

	ctx := context.Background()
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, qstr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	vms := []*structs.VirtualMachine{}
	for rows.Next() {
		vm := structs.VirtualMachine{}
		err = rows.Scan(&vm.VMID, &vm.Name, &vm.Owner, &vm.Node, &vm.Description)
		if err != nil {
			return nil, err
		}
		vms = append(vms, &vm)
	}
	return vms, rows.Err()
}

// InsertJob inserts a job, the database assigns the id
func (p *Postgres) InsertJob(j *structs.Job) (int64, error) {
	jstr, jargs := toJobSqlArgs(1, j) // the sql lib starts at 1
	jstr = fmt.Sprintf(`INSERT INTO %s (vmid, username, operation, archive_id, storage, target_node, status, log, created_at, updated_at) VALUES %s RETURNING id;`,
		tableJob, jstr,
	)

	ctx := context.Background()
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Release()

	var id int64
	err = conn.QueryRow(ctx, jstr, jargs...).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return 0, fmt.Errorf("%w vm %d", errors.ErrNotFound, j.VMID)
		}
		return 0, err
	}
	j.ID = id
	return id, nil
}

// Job returns a single job by id
func (p *Postgres) Job(id int64) (*structs.Job, error) {
	qstr := fmt.Sprintf(`SELECT %s FROM %s WHERE id=$1;`, jobColumns, tableJob)

	ctx := context.Background()
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	j, err := scanJob(conn.QueryRow(ctx, qstr, id))
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("%w job %d", errors.ErrNotFound, id)
	}
	return j, err
}

// Jobs returns jobs matching the given query
func (p *Postgres) Jobs(q *structs.Query) ([]*structs.Job, error) {
	q.Sanitize()
	where, args := toSqlQuery(q)
	args = append(args, q.Limit, q.Offset)

	qstr := fmt.Sprintf(`SELECT %s FROM %s %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d;`,
		jobColumns, tableJob, where, len(args)-1, len(args),
	)

	ctx := context.Background()
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, qstr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := []*structs.Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// CountJobs returns status counts over all of a user's jobs
func (p *Postgres) CountJobs(user string) (*structs.JobCounts, error) {
	qstr := fmt.Sprintf(`SELECT status, COUNT(*) FROM %s WHERE username=$1 GROUP BY status;`, tableJob)

	ctx := context.Background()
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, qstr, user)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := &structs.JobCounts{}
	for rows.Next() {
		var st structs.Status
		var n int64
		err = rows.Scan(&st, &n)
		if err != nil {
			return nil, err
		}
		counts.Add(st, n)
	}
	return counts, rows.Err()
}

// ClaimJob sets a PENDING or FAILED job to RUNNING
func (p *Postgres) ClaimJob(id int64) (*structs.Job, error) {
	return p.setStatus(id, structs.RUNNING, nil, []structs.Status{structs.PENDING, structs.FAILED})
}

// FailJob sets a PENDING or FAILED job to FAILED
func (p *Postgres) FailJob(id int64, log string) (*structs.Job, error) {
	return p.setStatus(id, structs.FAILED, &log, []structs.Status{structs.PENDING, structs.FAILED})
}

// FinishJob sets a RUNNING job to a final status
func (p *Postgres) FinishJob(id int64, status structs.Status, log string) (*structs.Job, error) {
	err := validFinalStatus(status)
	if err != nil {
		return nil, err
	}
	return p.setStatus(id, status, &log, []structs.Status{structs.RUNNING})
}

// setStatus moves a job to status iff its current status is one of from. The
// WHERE clause makes this a single atomic compare-and-set.
func (p *Postgres) setStatus(id int64, status structs.Status, log *string, from []structs.Status) (*structs.Job, error) {
	err := validTransitions(status, from)
	if err != nil {
		return nil, err
	}
	qstr, args := toSetStatusSql(id, status, log, from, timeNow())

	ctx := context.Background()
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	j, err := scanJob(conn.QueryRow(ctx, qstr, args...))
	if err == nil {
		return j, nil
	}
	if err != pgx.ErrNoRows {
		return nil, err
	}

	// nothing updated; either there's no such job or someone else got there first
	var current structs.Status
	err = conn.QueryRow(ctx, fmt.Sprintf(`SELECT status FROM %s WHERE id=$1;`, tableJob), id).Scan(&current)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("%w job %d", errors.ErrNotFound, id)
	} else if err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%w job %d is %s, cannot move to %s", errors.ErrConcurrencyConflict, id, current, status)
}

// toSetStatusSql builds the compare-and-set update for setStatus. Placeholders
// are numbered as args are appended, so the SET clause and args can't drift.
func toSetStatusSql(id int64, status structs.Status, log *string, from []structs.Status, now int64) (string, []interface{}) {
	args := []interface{}{id, status, now}
	set := "status=$2, updated_at=$3"
	if log != nil {
		args = append(args, *log)
		set += fmt.Sprintf(", log=$%d", len(args))
	}
	in, inArgs := toSqlIn(len(args)+1, "status", statusToStrings(from))
	args = append(args, inArgs...)

	return fmt.Sprintf(`UPDATE %s SET %s WHERE id=$1 AND %s RETURNING %s;`, tableJob, set, in, jobColumns), args
}

// scanJob reads a job from a row selected with jobColumns
func scanJob(row pgx.Row) (*structs.Job, error) {
	j := structs.Job{}
	err := row.Scan(
		&j.ID,
		&j.VMID,
		&j.User,
		&j.Operation.Kind,
		&j.Operation.ArchiveID,
		&j.Operation.Storage,
		&j.TargetNode,
		&j.Status,
		&j.Log,
		&j.CreatedAt,
		&j.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

// toSqlQuery converts query data into a SQL WHERE clause & args
func toSqlQuery(q *structs.Query) (string, []interface{}) {
	and := []string{}
	args := []interface{}{}

	if q.User != "" {
		args = append(args, q.User)
		and = append(and, fmt.Sprintf("username = $%d", len(args)))
	}
	for _, f := range []struct {
		field string
		vals  []interface{}
	}{
		{"id", int64sToInterface(q.JobIDs)},
		{"vmid", int64sToInterface(q.VMIDs)},
		{"status", statusToStrings(q.Statuses)},
		{"operation", operationsToStrings(q.Operations)},
	} {
		if len(f.vals) == 0 {
			continue
		}
		s, a := toSqlIn(len(args)+1, f.field, f.vals)
		and = append(and, s)
		args = append(args, a...)
	}
	if q.UpdatedBefore > 0 {
		args = append(args, q.UpdatedBefore)
		and = append(and, fmt.Sprintf("updated_at < $%d", len(args)))
	}

	if len(and) == 0 {
		return "", args
	}
	return fmt.Sprintf("WHERE %s", strings.Join(and, " AND ")), args
}

// toSqlIn converts a list of values into a SQL IN clause
func toSqlIn(offset int, field string, args []interface{}) (string, []interface{}) {
	if len(args) == 0 {
		return "", []interface{}{}
	}
	vals := []string{}
	for i := range args {
		vals = append(vals, fmt.Sprintf("$%d", i+offset))
	}
	return fmt.Sprintf("%s IN (%s)", field, strings.Join(vals, ", ")), args
}

// toJobSqlArgs converts a job into a SQL query string & args (for an insert)
func toJobSqlArgs(offset int, j *structs.Job) (string, []interface{}) {
	vals := []string{}
	for i := offset; i < 10+offset; i++ {
		vals = append(vals, fmt.Sprintf("$%d", i))
	}
	if j.CreatedAt == 0 {
		j.CreatedAt = timeNow()
		j.UpdatedAt = j.CreatedAt
	}
	if j.Status == "" {
		j.Status = structs.PENDING
	}
	return fmt.Sprintf("(%s)", strings.Join(vals, ", ")), []interface{}{
		j.VMID,
		j.User,
		j.Operation.Kind,
		j.Operation.ArchiveID,
		j.Operation.Storage,
		j.TargetNode,
		j.Status,
		j.Log,
		j.CreatedAt,
		j.UpdatedAt,
	}
}

// statusToStrings converts a list of statuses into a list of interfaces
func statusToStrings(in []structs.Status) []interface{} {
	if len(in) == 0 {
		return nil
	}
	out := []interface{}{}
	for _, s := range in {
		out = append(out, string(s))
	}
	return out
}

// operationsToStrings converts a list of operation kinds into a list of interfaces
func operationsToStrings(in []structs.OperationKind) []interface{} {
	if len(in) == 0 {
		return nil
	}
	out := []interface{}{}
	for _, k := range in {
		out = append(out, string(k))
	}
	return out
}

// int64sToInterface converts a list of ints into a list of interfaces.
func int64sToInterface(in []int64) []interface{} {
	if len(in) == 0 {
		return nil
	}
	l := make([]interface{}, len(in))
	for i, v := range in {
		l[i] = v
	}
	return l
}
