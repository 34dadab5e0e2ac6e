// Package project serves the project endpoints.
package project

import (
	"encoding/json"
	"errors"
	"net/http"

	"webwatch/internal/domain/entity"
	"webwatch/internal/handler/http/pathutil"
	"webwatch/internal/handler/http/respond"
	projUC "webwatch/internal/usecase/project"
)

func Register(mux *http.ServeMux, svc *projUC.Service) {
	mux.Handle("GET /projects", ListHandler{svc})
	mux.Handle("POST /projects", CreateHandler{svc})
	mux.Handle("GET /projects/{id}", GetHandler{svc})
}

func writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, entity.ErrValidationFailed), errors.Is(err, pathutil.ErrInvalidID):
		code = http.StatusBadRequest
	case errors.Is(err, projUC.ErrProjectNotFound):
		code = http.StatusNotFound
	case errors.Is(err, projUC.ErrDuplicateProject):
		code = http.StatusConflict
	}
	respond.SafeError(w, code, err)
}

type ListHandler struct{ Svc *projUC.Service }

func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	list, err := h.Svc.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		list = []*entity.Project{}
	}
	respond.JSON(w, http.StatusOK, list)
}

type GetHandler struct{ Svc *projUC.Service }

func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := pathutil.ValidateID(id); err != nil {
		writeError(w, err)
		return
	}
	p, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, p)
}

type CreateHandler struct{ Svc *projUC.Service }

func (h CreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name            string   `json:"name"`
		Keywords        []string `json:"keywords"`
		ExcludeKeywords []string `json:"exclude_keywords"`
		Hashtags        []string `json:"hashtags"`
		IsActive        *bool    `json:"is_active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	p, err := h.Svc.Create(r.Context(), projUC.CreateInput{
		Name:            req.Name,
		Keywords:        req.Keywords,
		ExcludeKeywords: req.ExcludeKeywords,
		Hashtags:        req.Hashtags,
		Active:          req.IsActive,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Location", "/projects/"+p.ID)
	respond.JSON(w, http.StatusCreated, p)
}
