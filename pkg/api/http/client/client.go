package client

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/voidshard/drguard/pkg/api/http/common"
	"github.com/voidshard/drguard/pkg/structs"
)

// Client talks to a drguard API server on behalf of a single user.
//
// The server trusts the user header (it expects an auth proxy in front of it),
// so this is intended for use behind that proxy or by operators.
type Client struct {
	url  *url.URL
	user string
	http *http.Client
}

func New(address, user string) (*Client, error) {
	u, err := url.Parse(address)
	if err != nil {
		return nil, err
	}
	return &Client{url: u, user: user, http: &http.Client{Timeout: 15 * time.Minute}}, nil
}

func (c *Client) RequestRestore(ctx context.Context, vmid int64, req *structs.RestoreRequest) (*structs.SubmitResponse, error) {
	var out structs.SubmitResponse
	return &out, c.do(ctx, http.MethodPost, c.addr(common.Path(common.API_RESTORE, vmid), nil), req, &out)
}

func (c *Client) RequestBackup(ctx context.Context, vmid int64, req *structs.BackupRequest) (*structs.SubmitResponse, error) {
	var out structs.SubmitResponse
	return &out, c.do(ctx, http.MethodPost, c.addr(common.Path(common.API_BACKUP, vmid), nil), req, &out)
}

func (c *Client) Retry(ctx context.Context, id int64, sync bool) (*structs.SubmitResponse, error) {
	addr := c.addr(common.Path(common.API_RETRY, id), &common.RetryQuery{Sync: sync})
	var out structs.SubmitResponse
	return &out, c.do(ctx, http.MethodPost, addr, nil, &out)
}

func (c *Client) Jobs(ctx context.Context, q *structs.Query) (*structs.JobsResponse, error) {
	var out structs.JobsResponse
	return &out, c.do(ctx, http.MethodGet, c.addr(common.API_JOBS, toJobsQuery(q)), nil, &out)
}

func (c *Client) Job(ctx context.Context, id int64) (*structs.JobDetail, error) {
	var out structs.JobDetail
	return &out, c.do(ctx, http.MethodGet, c.addr(common.Path(common.API_JOB, id), nil), nil, &out)
}

func (c *Client) VMs(ctx context.Context) (*structs.VMsResponse, error) {
	var out structs.VMsResponse
	return &out, c.do(ctx, http.MethodGet, c.addr(common.API_VMS, nil), nil, &out)
}

func (c *Client) Backups(ctx context.Context, vmid int64, storage string) (*structs.BackupsResponse, error) {
	addr := c.addr(common.Path(common.API_BACKUPS, vmid), &common.BackupsQuery{Storage: storage})
	var out structs.BackupsResponse
	return &out, c.do(ctx, http.MethodGet, addr, nil, &out)
}

func (c *Client) Policy(ctx context.Context) (*structs.PolicyResponse, error) {
	var out structs.PolicyResponse
	return &out, c.do(ctx, http.MethodGet, c.addr(common.API_POLICY, nil), nil, &out)
}

func (c *Client) addr(path string, query interface{}) *url.URL {
	u := &url.URL{Scheme: c.url.Scheme, Host: c.url.Host, Path: strings.TrimSuffix(c.url.Path, "/") + path}
	setQueryString(u, query)
	return u
}
