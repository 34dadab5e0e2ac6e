// Package responsewriter records what a handler wrote so middleware can log
// and measure it afterwards.
package responsewriter

import "net/http"

// Recorder is an http.ResponseWriter that remembers the status code and the
// body size. The first WriteHeader wins; later calls are ignored so a
// handler that writes twice cannot make the logs disagree with the wire.
type Recorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

// Wrap returns w as a Recorder. Wrapping a Recorder returns it unchanged.
func Wrap(w http.ResponseWriter) *Recorder {
	if rec, ok := w.(*Recorder); ok {
		return rec
	}
	return &Recorder{ResponseWriter: w}
}

func (r *Recorder) WriteHeader(code int) {
	if r.status != 0 {
		return
	}
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *Recorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.WriteHeader(http.StatusOK)
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

// Flush forwards to the underlying writer when it supports flushing.
func (r *Recorder) Flush() {
	if r.status == 0 {
		r.WriteHeader(http.StatusOK)
	}
	_ = http.NewResponseController(r.ResponseWriter).Flush()
}

// Status is the code sent to the client, or 200 when the handler wrote
// nothing (net/http sends 200 in that case).
func (r *Recorder) Status() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

// Written reports whether headers have been sent.
func (r *Recorder) Written() bool { return r.status != 0 }

// Bytes is the number of body bytes written.
func (r *Recorder) Bytes() int { return r.bytes }

// Unwrap lets http.ResponseController reach the underlying writer.
func (r *Recorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }
