package middleware

import (
	"net/http"

	"roomly/pkg/logger"
)

// MaxRequestSize rejects bodies that declare a larger Content-Length and caps
// the bytes a handler can read from the rest.
func MaxRequestSize(maxBytes int64, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				log.Warn("Request body too large",
					"request_id", RequestID(r.Context()),
					"content_length", r.ContentLength,
					"max_bytes", maxBytes,
					"path", r.URL.Path,
				)
				writeJSONError(w, http.StatusRequestEntityTooLarge,
					`{"error":"Request body too large","code":"INVALID_INPUT"}`)
				return
			}

			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
