package middleware

import (
	"bytes"
	"io"
	"net/http"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	RequestIDHeader = "X-Request-Id"
	// only the start of large bodies ends up in the log
	maxLoggedBodyBytes = 4 << 10
)

// LogRequest logs method, path and body of every request before it is
// dispatched, followed by a --- separator line, and tags the request and
// response with a request id.
func LogRequest() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
				r.Header.Set(RequestIDHeader, requestID)
			}
			w.Header().Set(RequestIDHeader, requestID)

			log.WithFields(log.Fields{
				"request_id": requestID,
				"method":     r.Method,
				"path":       r.URL.Path,
				"body":       peekBody(r),
			}).Info("request")
			log.Info("---")

			next.ServeHTTP(w, r)
		})
	}
}

// peekBody reads the start of the body and puts it back, so handlers still see
// the full, unconsumed body.
func peekBody(r *http.Request) string {
	if r.Body == nil || r.Body == http.NoBody {
		return ""
	}

	buf, err := io.ReadAll(io.LimitReader(r.Body, maxLoggedBodyBytes))
	r.Body = readCloser{
		Reader: io.MultiReader(bytes.NewReader(buf), r.Body),
		Closer: r.Body,
	}
	if err != nil {
		log.Debugf("log request, read body: %s", err)
	}

	return string(buf)
}

type readCloser struct {
	io.Reader
	io.Closer
}
