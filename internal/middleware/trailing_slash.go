package middleware

import (
	"net/http"
	"strings"
)

// TrimTrailingSlash drops a single trailing slash from the path before routing,
// so /api/notes/ and /api/notes/2/ match the same routes as without it. The
// request is rewritten in place, no redirect is sent.
func TrimTrailingSlash() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// an encoded %2F at the end is part of the last segment, not a slash
			escaped := r.URL.EscapedPath()
			if len(escaped) > 1 && strings.HasSuffix(escaped, "/") {
				r.URL.Path = strings.TrimSuffix(r.URL.Path, "/")
				if r.URL.RawPath != "" {
					r.URL.RawPath = strings.TrimSuffix(r.URL.RawPath, "/")
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
