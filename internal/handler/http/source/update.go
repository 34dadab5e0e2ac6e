package source

import (
	"encoding/json"
	"errors"
	"net/http"

	"webwatch/internal/handler/http/respond"
	srcUC "webwatch/internal/usecase/source"
)

var errInvalidBody = errors.New("invalid request body")

type UpdateHandler struct{ Svc *srcUC.Service }

func (h UpdateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, errInvalidBody)
		return
	}

	src, err := h.Svc.Update(r.Context(), srcUC.UpdateInput{
		ID:                    id,
		Name:                  req.Name,
		URL:                   req.URL,
		Type:                  req.Type,
		Category:              req.Category,
		ProjectID:             req.ProjectID,
		Selectors:             req.Selectors,
		CrawlFrequencyMinutes: req.CrawlFrequencyMinutes,
		Keywords:              req.Keywords,
		ExcludeKeywords:       req.ExcludeKeywords,
		Hashtags:              req.Hashtags,
		CrawlSettings:         req.CrawlSettings,
		Active:                req.IsActive,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(src))
}
