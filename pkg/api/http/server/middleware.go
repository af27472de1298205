package server

import (
	"net/http"
	"strings"

	"github.com/voidshard/drguard/pkg/api/http/common"
)

// loggingMiddleware shims in a handler middleware that logs requests.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debugf("%s %s %d user=%q", r.Method, r.RequestURI, r.ContentLength, r.Header.Get(common.HEADER_USER))
		next.ServeHTTP(w, r)
	})
}

// withUser rejects requests the auth proxy didn't vouch for.
func (s *Server) withUser(fn userHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := strings.TrimSpace(r.Header.Get(common.HEADER_USER))
		if user == "" {
			writeJson(w, http.StatusUnauthorized, &common.ErrorResponse{Detail: "authentication required"})
			return
		}
		fn(w, r, user)
	}
}
