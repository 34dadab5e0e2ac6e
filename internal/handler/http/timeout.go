package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"webwatch/internal/handler/http/respond"
)

// Timeout bounds each request to d. The handler runs with a context that
// expires after d; if it has not started its response by then the client
// gets 504 and anything the handler writes afterwards is discarded. A panic
// in the handler is re-raised on the serving goroutine so Recover sees it.
// d <= 0 disables the limit.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			gw := &guardedWriter{w: w}
			done := make(chan struct{})
			var panicVal any
			go func() {
				defer close(done)
				defer func() { panicVal = recover() }()
				next.ServeHTTP(gw, r.WithContext(ctx))
			}()

			select {
			case <-done:
				if panicVal != nil {
					panic(panicVal)
				}
			case <-ctx.Done():
				if gw.expire() {
					respond.JSON(w, http.StatusGatewayTimeout, respond.ErrorBody{Error: "request timeout"})
				}
			}
		})
	}
}

// guardedWriter serialises writes between the handler goroutine and the
// timeout path. Once expired, handler writes fail with ErrHandlerTimeout.
type guardedWriter struct {
	w       http.ResponseWriter
	mu      sync.Mutex
	header  http.Header
	started bool
	expired bool
}

// Header returns a private copy until the response starts, so a late
// handler cannot race with the 504 headers.
func (g *guardedWriter) Header() http.Header {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.started {
		return g.w.Header()
	}
	if g.header == nil {
		g.header = make(http.Header)
	}
	return g.header
}

func (g *guardedWriter) WriteHeader(code int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.start(code)
}

func (g *guardedWriter) Write(b []byte) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.expired {
		return 0, http.ErrHandlerTimeout
	}
	g.start(http.StatusOK)
	return g.w.Write(b)
}

// start copies buffered headers and sends the status once. Caller holds mu.
func (g *guardedWriter) start(code int) {
	if g.started || g.expired {
		return
	}
	g.started = true
	dst := g.w.Header()
	for k, v := range g.header {
		dst[k] = v
	}
	g.w.WriteHeader(code)
}

// expire marks the writer dead and reports whether the timeout response may
// still be written.
func (g *guardedWriter) expire() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.expired = true
	return !g.started
}
