package source

import (
	"net/http"

	srcUC "webwatch/internal/usecase/source"
)

// DeleteHandler deactivates the source; nothing is removed from storage.
type DeleteHandler struct{ Svc *srcUC.Service }

func (h DeleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.Svc.Deactivate(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
