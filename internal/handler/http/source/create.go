package source

import (
	"encoding/json"
	"net/http"

	"webwatch/internal/handler/http/respond"
	srcUC "webwatch/internal/usecase/source"
)

type CreateHandler struct{ Svc *srcUC.Service }

func (h CreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, errInvalidBody)
		return
	}

	in := srcUC.CreateInput{
		Name:            req.Name,
		URL:             req.URL,
		Type:            req.Type,
		Keywords:        req.Keywords,
		ExcludeKeywords: req.ExcludeKeywords,
		Hashtags:        req.Hashtags,
		CrawlSettings:   req.CrawlSettings,
		Active:          req.IsActive,
	}
	if req.Category != nil {
		in.Category = *req.Category
	}
	if req.ProjectID != nil {
		in.ProjectID = *req.ProjectID
	}
	if req.Selectors != nil {
		in.Selectors = *req.Selectors
	}
	if req.CrawlFrequencyMinutes != nil {
		in.CrawlFrequencyMinutes = *req.CrawlFrequencyMinutes
	}

	src, err := h.Svc.Create(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Location", "/sources/"+src.ID)
	respond.JSON(w, http.StatusCreated, toDTO(src))
}
