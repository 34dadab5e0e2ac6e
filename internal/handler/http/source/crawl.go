package source

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"webwatch/internal/domain/entity"
	"webwatch/internal/handler/http/requestid"
	"webwatch/internal/handler/http/respond"
	"webwatch/internal/usecase/crawl"
)

// Crawler runs one crawl cycle for a source. *crawl.Service implements it.
type Crawler interface {
	CrawlByID(ctx context.Context, id string) (*crawl.SourceResult, error)
}

// CrawlHandler triggers an immediate crawl of one source and waits for it.
type CrawlHandler struct{ Crawler Crawler }

func (h CrawlHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	res, err := h.Crawler.CrawlByID(r.Context(), id)
	switch {
	case err == nil:
	case errors.Is(err, entity.ErrNotFound):
		respond.SafeError(w, http.StatusNotFound, errors.New("source not found"))
		return
	case errors.Is(err, crawl.ErrSourceInactive):
		respond.JSON(w, http.StatusConflict, respond.ErrorBody{Error: "source is inactive"})
		return
	case errors.Is(err, crawl.ErrCrawlInProgress):
		respond.JSON(w, http.StatusConflict, respond.ErrorBody{Error: "crawl already in progress"})
		return
	case errors.As(err, new(*crawl.PageError)):
		// 取得失敗でも統計は保存済み
		slog.Default().Warn("manual crawl failed",
			slog.String("request_id", requestid.FromContext(r.Context())),
			slog.String("source_id", id),
			slog.Any("error", respond.SanitizeError(err)))
		respond.SafeError(w, http.StatusBadGateway, respond.WithMessage("source fetch failed", nil))
		return
	default:
		// lock, reload or save failures are ours, not the remote site's
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	out := CrawlResultDTO{
		SourceID:   res.SourceID,
		Found:      res.Found,
		Persisted:  res.Persisted,
		Duplicates: res.Duplicates,
		Rejected:   res.Rejected,
		DurationMs: res.Duration.Milliseconds(),
	}
	for _, e := range res.Errors {
		out.Errors = append(out.Errors, e.Error())
	}
	respond.JSON(w, http.StatusOK, out)
}
