package hypervisor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-querystring/query"
	"github.com/juju/loggo"

	"github.com/voidshard/drguard/pkg/errors"
	"github.com/voidshard/drguard/pkg/structs"
)

const (
	apiSuffix = "/api2/json"

	headerCSRF = "CSRFPreventionToken"
	cookieAuth = "PVEAuthCookie"

	// cap on how much of an error body we keep
	maxErrorBody = 4096
)

var logger = loggo.GetLogger("drguard.hypervisor")

// Proxmox talks to the Proxmox VE REST API.
type Proxmox struct {
	opts *Options
	base string
	http *http.Client

	ticket string
	csrf   string
}

type ticketResponse struct {
	Data struct {
		Ticket string `json:"ticket"`
		CSRF   string `json:"CSRFPreventionToken"`
	} `json:"data"`
}

type vmsResponse struct {
	Data []*structs.HypervisorVM `json:"data"`
}

type contentResponse struct {
	Data []*structs.BackupArchive `json:"data"`
}

type loginParams struct {
	Username string `url:"username"`
	Password string `url:"password"`
}

type contentParams struct {
	Content string `url:"content"`
	VMID    int64  `url:"vmid,omitempty"`
}

type restoreParams struct {
	VMID    int64  `url:"vmid"`
	Archive string `url:"archive"`
	Storage string `url:"storage,omitempty"`
	Force   int    `url:"force"`
}

// NewProxmox returns a new unauthenticated client.
func NewProxmox(opts *Options) (*Proxmox, error) {
	if opts == nil || opts.URL == "" {
		return nil, fmt.Errorf("%w hypervisor url is required", errors.ErrInvalidArg)
	}
	opts.setDefaults()

	u, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("%w bad hypervisor url: %v", errors.ErrInvalidArg, err)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if opts.TLSConfig != nil {
		transport.TLSClientConfig = opts.TLSConfig
	}

	return &Proxmox{
		opts: opts,
		base: strings.TrimRight(u.String(), "/") + apiSuffix,
		http: &http.Client{Transport: transport},
	}, nil
}

// NewFactory returns a Factory building Proxmox clients from opts. Each call
// gets its own client (and so, its own session).
func NewFactory(opts *Options) Factory {
	if opts != nil && opts.TLSConfig != nil && opts.TLSConfig.InsecureSkipVerify {
		logger.Warningf("TLS certificate verification of %s is DISABLED", opts.URL)
	}
	return func() (Hypervisor, error) {
		return NewProxmox(opts)
	}
}

// Authenticate logs in & keeps the ticket + CSRF token for later calls.
func (p *Proxmox) Authenticate(ctx context.Context) error {
	form, err := query.Values(&loginParams{Username: p.opts.User, Password: p.opts.Password})
	if err != nil {
		return err
	}

	body, err := p.do(ctx, http.MethodPost, "/access/ticket", nil, form, p.opts.AuthTimeout, false)
	if err != nil {
		return asAuth(err)
	}

	tr := ticketResponse{}
	err = json.Unmarshal(body, &tr)
	if err != nil {
		return &errors.UpstreamError{Message: fmt.Sprintf("bad ticket response: %v", err), Auth: true}
	}
	if tr.Data.Ticket == "" {
		return &errors.UpstreamError{Message: "no ticket in response", Auth: true}
	}

	p.ticket = tr.Data.Ticket
	p.csrf = tr.Data.CSRF
	return nil
}

// ListVMs returns the qemu VMs on a node.
func (p *Proxmox) ListVMs(ctx context.Context, node string) ([]*structs.HypervisorVM, error) {
	path := fmt.Sprintf("/nodes/%s/qemu", url.PathEscape(node))
	body, err := p.do(ctx, http.MethodGet, path, nil, nil, p.opts.RequestTimeout, true)
	if err != nil {
		return nil, err
	}

	out := vmsResponse{}
	err = json.Unmarshal(body, &out)
	if err != nil {
		return nil, &errors.UpstreamError{Message: fmt.Sprintf("bad vm list response: %v", err)}
	}
	return out.Data, nil
}

// ListBackups returns backup archives in storage belonging to vmid.
func (p *Proxmox) ListBackups(ctx context.Context, node, storage string, vmid int64) ([]*structs.BackupArchive, error) {
	params, err := query.Values(&contentParams{Content: "backup", VMID: vmid})
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/nodes/%s/storage/%s/content", url.PathEscape(node), url.PathEscape(storage))
	body, err := p.do(ctx, http.MethodGet, path, params, nil, p.opts.RequestTimeout, true)
	if err != nil {
		return nil, err
	}

	out := contentResponse{}
	err = json.Unmarshal(body, &out)
	if err != nil {
		return nil, &errors.UpstreamError{Message: fmt.Sprintf("bad storage content response: %v", err)}
	}

	// older PVE versions ignore the vmid filter, so we check it ourselves
	archives := []*structs.BackupArchive{}
	for _, a := range out.Data {
		if a == nil || !isBackupOf(a, vmid) {
			continue
		}
		archives = append(archives, a)
	}
	return archives, nil
}

// Restore submits a restore; the VM is overwritten in place (force=1).
func (p *Proxmox) Restore(ctx context.Context, node, archiveID, storage string, vmid int64) (string, error) {
	form, err := query.Values(&restoreParams{VMID: vmid, Archive: archiveID, Storage: storage, Force: 1})
	if err != nil {
		return "", err
	}

	path := fmt.Sprintf("/nodes/%s/qemu/restore", url.PathEscape(node))
	body, err := p.do(ctx, http.MethodPost, path, nil, form, p.opts.RestoreTimeout, true)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(body)), nil
}

// do performs a request against the API & returns the body of a 2xx response.
// Anything else is an *errors.UpstreamError.
func (p *Proxmox) do(ctx context.Context, method, path string, params, form url.Values, timeout time.Duration, authed bool) ([]byte, error) {
	if authed && p.ticket == "" {
		return nil, &errors.UpstreamError{Message: "not authenticated, call Authenticate first", Auth: true}
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	addr := p.base + path
	if len(params) > 0 {
		addr += "?" + params.Encode()
	}

	var reader io.Reader
	if form != nil {
		reader = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, addr, reader)
	if err != nil {
		return nil, err
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if authed {
		req.AddCookie(&http.Cookie{Name: cookieAuth, Value: p.ticket})
		if method != http.MethodGet {
			req.Header.Set(headerCSRF, p.csrf)
		}
	}

	logger.Debugf("%s %s", method, addr)
	resp, err := p.http.Do(req)
	if err != nil {
		return nil, &errors.UpstreamError{Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errors.UpstreamError{Status: resp.StatusCode, Message: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &errors.UpstreamError{Status: resp.StatusCode, Message: upstreamMessage(resp, body)}
	}
	return body, nil
}

// upstreamMessage picks the most useful text out of a failed response; PVE
// puts the reason in the status line & sometimes an "errors" object.
func upstreamMessage(resp *http.Response, body []byte) string {
	msg := strings.TrimSpace(strings.TrimPrefix(resp.Status, fmt.Sprintf("%d", resp.StatusCode)))
	b := strings.TrimSpace(string(body))
	if len(b) > maxErrorBody {
		b = b[:maxErrorBody]
	}
	if b != "" && b != "null" && b != `{"data":null}` {
		if msg == "" {
			return b
		}
		return msg + ": " + b
	}
	return msg
}

// asAuth marks an upstream failure as an auth failure.
func asAuth(err error) error {
	if ue, ok := err.(*errors.UpstreamError); ok {
		ue.Auth = true
		return ue
	}
	return &errors.UpstreamError{Message: err.Error(), Auth: true}
}

// isBackupOf checks the archive belongs to vmid. Entries without a vmid are
// matched on the vzdump naming convention "vzdump-<type>-<vmid>-<date>".
func isBackupOf(a *structs.BackupArchive, vmid int64) bool {
	if a.VMID != 0 {
		return a.VMID == vmid
	}
	for _, kind := range []string{"qemu", "lxc"} {
		if strings.Contains(a.VolID, fmt.Sprintf("vzdump-%s-%d-", kind, vmid)) {
			return true
		}
	}
	return false
}
