package source

import (
	"net/http"

	srcUC "webwatch/internal/usecase/source"
)

// Register registers all source-related HTTP handlers with the given mux.
// crawlLimit wraps the manual crawl trigger, which hits the remote site.
func Register(mux *http.ServeMux, svc *srcUC.Service, crawler Crawler, crawlLimit func(http.Handler) http.Handler) {
	mux.Handle("GET /sources", ListHandler{svc})
	mux.Handle("POST /sources", CreateHandler{svc})
	mux.Handle("GET /sources/{id}", GetHandler{svc})
	mux.Handle("PUT /sources/{id}", UpdateHandler{svc})
	mux.Handle("DELETE /sources/{id}", DeleteHandler{svc})

	var trigger http.Handler = CrawlHandler{crawler}
	if crawlLimit != nil {
		trigger = crawlLimit(trigger)
	}
	mux.Handle("POST /sources/{id}/crawl", trigger)
}
