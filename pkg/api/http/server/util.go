package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/voidshard/drguard/pkg/api/http/common"
	ie "github.com/voidshard/drguard/pkg/errors"
	"github.com/voidshard/drguard/pkg/structs"
)

var (
	errmap map[int][]error = map[int][]error{
		http.StatusBadRequest: []error{
			ie.ErrValidation,
			ie.ErrInvalidArg,
		},
		http.StatusForbidden: []error{
			ie.ErrPolicyDenied,
		},
		http.StatusNotFound: []error{
			ie.ErrNotFound,
		},
		http.StatusConflict: []error{
			ie.ErrConcurrencyConflict,
			ie.ErrInvalidState,
		},
		http.StatusBadGateway: []error{
			ie.ErrUpstream,
			ie.ErrUpstreamAuth,
		},
	}
)

// mapError returns the http status code for a given error from drguard, or
// http.StatusInternalServerError if the error is not recognised.
func mapError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	for code, errs := range errmap {
		for _, e := range errs {
			if ie.Is(err, e) {
				return code
			}
		}
	}
	return http.StatusInternalServerError
}

// writeError writes err as "<Kind>: <message>" with the mapped status code.
func writeError(w http.ResponseWriter, err error) {
	code := mapError(err)
	if code == http.StatusInternalServerError {
		logger.Errorf("internal error: %v", err)
	}
	writeJson(w, code, &common.ErrorResponse{Detail: ie.Describe(err)})
}

func writeJson(w http.ResponseWriter, code int, obj interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	err := json.NewEncoder(w).Encode(obj)
	if err != nil {
		logger.Warningf("failed to write response: %v", err)
	}
}

func badRequest(w http.ResponseWriter, format string, args ...interface{}) error {
	err := fmt.Errorf(format, args...)
	writeJson(w, http.StatusBadRequest, &common.ErrorResponse{Detail: "ValidationError: " + err.Error()})
	return err
}

// pathInt reads a numeric path variable.
func pathInt(w http.ResponseWriter, r *http.Request, name string) (int64, error) {
	raw := mux.Vars(r)[name]
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return 0, badRequest(w, "bad %s %q", name, raw)
	}
	return v, nil
}

// queryBool reads a 1/0/true/false query param, absent is false.
func queryBool(w http.ResponseWriter, r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, badRequest(w, "bad %s %q", name, raw)
	}
	return v, nil
}

// unmarshalQuery reads the jobs query string; status=all (or no status) means
// every status. Statuses and operations may be repeated or comma separated.
func unmarshalQuery(w http.ResponseWriter, r *http.Request, out *structs.Query) error {
	q := r.URL.Query()

	if q.Has("limit") && q.Get("limit") != "" {
		limit, err := strconv.Atoi(q.Get("limit"))
		if err != nil {
			return badRequest(w, "bad limit: %v", err)
		}
		out.Limit = limit
	}

	if q.Has("offset") && q.Get("offset") != "" {
		offset, err := strconv.Atoi(q.Get("offset"))
		if err != nil {
			return badRequest(w, "bad offset: %v", err)
		}
		out.Offset = offset
	}

	for _, raw := range q["vmid"] {
		vmid, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return badRequest(w, "bad vmid %q", raw)
		}
		out.VMIDs = append(out.VMIDs, vmid)
	}

	for _, raw := range q["status"] {
		for _, s := range strings.Split(raw, ",") {
			s = strings.TrimSpace(s)
			if s == "" || strings.EqualFold(s, "all") {
				continue
			}
			st := structs.ToStatus(s)
			if st == "" {
				return badRequest(w, "bad status %q", s)
			}
			out.Statuses = append(out.Statuses, st)
		}
	}

	for _, raw := range q["operation"] {
		for _, s := range strings.Split(raw, ",") {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			k := structs.ToOperationKind(s)
			if k == "" {
				return badRequest(w, "bad operation %q", s)
			}
			out.Operations = append(out.Operations, k)
		}
	}

	out.Sanitize()
	return nil
}

// unmarshalJson reads the body of a request and attempts to unmarshal it into the given object.
// This function writes an error to the writer if an error occurs, and returns the error.
// If optional is set an empty body is fine & leaves obj untouched.
func unmarshalJson(w http.ResponseWriter, r *http.Request, obj interface{}, optional bool) error {
	err := decodeJson(r, obj, optional)
	if err != nil {
		return badRequest(w, "%v", err)
	}
	return nil
}

// decodeJson is unmarshalJson without writing the error.
func decodeJson(r *http.Request, obj interface{}, optional bool) error {
	if r.Body == nil {
		if optional {
			return nil
		}
		return fmt.Errorf("no body")
	}
	d := json.NewDecoder(r.Body)
	d.DisallowUnknownFields() // catch unwanted fields

	err := d.Decode(obj)
	if err == io.EOF {
		if optional {
			return nil
		}
		return fmt.Errorf("no body")
	} else if err != nil {
		// bad JSON or unrecognized json field
		return fmt.Errorf("bad json: %v", err)
	}

	return nil
}
