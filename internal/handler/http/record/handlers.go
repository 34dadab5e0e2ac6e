// Package record serves read access to persisted mentions and the
// engagement refresh endpoint.
package record

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"webwatch/internal/domain/entity"
	"webwatch/internal/handler/http/pathutil"
	"webwatch/internal/handler/http/respond"
	recUC "webwatch/internal/usecase/record"
)

// Register registers the record routes.
func Register(mux *http.ServeMux, svc *recUC.Service) {
	mux.Handle("GET /records", ListHandler{svc})
	mux.Handle("GET /records/{id}", GetHandler{svc})
	mux.Handle("PATCH /records/{id}/engagement", EngagementHandler{svc})
}

func writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, entity.ErrValidationFailed), errors.Is(err, pathutil.ErrInvalidID):
		code = http.StatusBadRequest
	case errors.Is(err, recUC.ErrRecordNotFound):
		code = http.StatusNotFound
	}
	respond.SafeError(w, code, err)
}

// ListHandler serves GET /records.
//
// Query parameters: source_id, project_id, sentiment, from, to (RFC 3339),
// limit, offset.
type ListHandler struct{ Svc *recUC.Service }

func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		writeError(w, err)
		return
	}
	list, err := h.Svc.List(r.Context(), f)
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		list = []*entity.Record{}
	}
	respond.JSON(w, http.StatusOK, list)
}

func parseFilter(r *http.Request) (entity.RecordFilter, error) {
	q := r.URL.Query()
	f := entity.RecordFilter{
		SourceID:  q.Get("source_id"),
		ProjectID: q.Get("project_id"),
		Sentiment: q.Get("sentiment"),
	}
	var err error
	if f.From, err = parseTime(q.Get("from"), "from"); err != nil {
		return f, err
	}
	if f.To, err = parseTime(q.Get("to"), "to"); err != nil {
		return f, err
	}
	if f.Limit, err = parseInt(q.Get("limit"), "limit"); err != nil {
		return f, err
	}
	if f.Offset, err = parseInt(q.Get("offset"), "offset"); err != nil {
		return f, err
	}
	return f, nil
}

func parseTime(v, field string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, &entity.ValidationError{Field: field, Message: "must be an RFC 3339 timestamp"}
	}
	return &t, nil
}

func parseInt(v, field string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &entity.ValidationError{Field: field, Message: "must be an integer"}
	}
	return n, nil
}

type GetHandler struct{ Svc *recUC.Service }

func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := pathutil.ValidateID(id); err != nil {
		writeError(w, err)
		return
	}
	rec, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, rec)
}

// EngagementHandler replaces the engagement counters of a record.
type EngagementHandler struct{ Svc *recUC.Service }

func (h EngagementHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := pathutil.ValidateID(id); err != nil {
		writeError(w, err)
		return
	}
	var e entity.Engagement
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&e); err != nil {
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	if err := h.Svc.UpdateEngagement(r.Context(), id, e); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
