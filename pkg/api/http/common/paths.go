package common

import (
	"fmt"
	"strings"
)

// ErrorResponse is the body of any non 2xx response.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// Path fills in a route's {name:pattern} variables in order, ie.
//
//	Path(API_RESTORE, 100) -> "/api/v1/vms/100/restore"
func Path(route string, args ...interface{}) string {
	out := route
	for _, a := range args {
		start := strings.Index(out, "{")
		end := strings.Index(out, "}")
		if start < 0 || end < start {
			break
		}
		out = out[:start] + fmt.Sprint(a) + out[end+1:]
	}
	return out
}
