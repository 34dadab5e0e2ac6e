package http

import (
	"net/http"

	"webwatch/internal/handler/http/respond"
)

// Input limits enforced by InputValidation.
const (
	maxPathLength  = 2048
	maxQueryLength = 4096
	maxBodyBytes   = 1 << 20
)

// InputValidation rejects oversized paths and query strings and caps
// request bodies. Source definitions are small JSON documents, so 1MB is
// plenty.
func InputValidation() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(r.URL.Path) > maxPathLength {
				respond.JSON(w, http.StatusRequestURITooLong, respond.ErrorBody{Error: "URI too long"})
				return
			}
			if len(r.URL.RawQuery) > maxQueryLength {
				respond.JSON(w, http.StatusRequestURITooLong, respond.ErrorBody{Error: "query string too long"})
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
			next.ServeHTTP(w, r)
		})
	}
}
