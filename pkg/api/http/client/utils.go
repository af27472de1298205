package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"github.com/google/go-querystring/query"

	"github.com/voidshard/drguard/pkg/api/http/common"
	"github.com/voidshard/drguard/pkg/structs"
)

// StatusError is returned for any non 2xx response.
type StatusError struct {
	Code   int
	Detail string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("bad status code %d, returned %s", e.Code, e.Detail)
}

// do is a helper to send in (if any) as JSON & unmarshal the response into out
func (c *Client) do(ctx context.Context, method string, addr *url.URL, in interface{}, out interface{}) error {
	var body io.Reader
	if in != nil && !isNilPointer(in) {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, addr.String(), body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(common.HEADER_USER, c.user)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 { // some error code, the body should say why
		e := &common.ErrorResponse{}
		if json.Unmarshal(data, e) != nil || e.Detail == "" {
			e.Detail = strings.TrimSpace(string(data))
		}
		return &StatusError{Code: resp.StatusCode, Detail: e.Detail}
	}

	return json.Unmarshal(data, out)
}

func isNilPointer(in interface{}) bool {
	v := reflect.ValueOf(in)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

// setQueryString sets the query string of a URL from a struct with `url` tags.
func setQueryString(u *url.URL, q interface{}) {
	if q == nil || isNilPointer(q) {
		return
	}
	values, err := query.Values(q)
	if err != nil {
		return
	}
	u.RawQuery = values.Encode()
}

func toJobsQuery(q *structs.Query) *common.JobsQuery {
	if q == nil {
		return nil
	}
	q.Sanitize()
	out := &common.JobsQuery{Limit: q.Limit, Offset: q.Offset, VMID: q.VMIDs}
	for _, s := range q.Statuses {
		out.Status = append(out.Status, strings.ToLower(string(s)))
	}
	for _, k := range q.Operations {
		out.Operation = append(out.Operation, strings.ToLower(string(k)))
	}
	return out
}
