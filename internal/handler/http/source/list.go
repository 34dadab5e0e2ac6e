package source

import (
	"net/http"

	"webwatch/internal/handler/http/respond"
	"webwatch/internal/observability/metrics"
	srcUC "webwatch/internal/usecase/source"
)

type ListHandler struct{ Svc *srcUC.Service }

func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	list, err := h.Svc.List(r.Context())
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	out := make([]DTO, 0, len(list))
	active := 0
	for _, e := range list {
		if e.IsActive {
			active++
		}
		out = append(out, toDTO(e))
	}
	metrics.UpdateSourcesActive(active)
	respond.JSON(w, http.StatusOK, out)
}

type GetHandler struct{ Svc *srcUC.Service }

func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	src, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(src))
}
