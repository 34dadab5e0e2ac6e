package source

import (
	"errors"
	"net/http"

	"webwatch/internal/domain/entity"
	"webwatch/internal/handler/http/pathutil"
	"webwatch/internal/handler/http/respond"
	srcUC "webwatch/internal/usecase/source"
)

// writeError maps use case errors onto status codes.
func writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, entity.ErrValidationFailed), errors.Is(err, pathutil.ErrInvalidID),
		errors.Is(err, srcUC.ErrProjectNotFound):
		code = http.StatusBadRequest
	case errors.Is(err, srcUC.ErrSourceNotFound), errors.Is(err, entity.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, srcUC.ErrDuplicateSource):
		code = http.StatusConflict
	}
	respond.SafeError(w, code, err)
}

func pathID(r *http.Request) (string, error) {
	id := r.PathValue("id")
	if err := pathutil.ValidateID(id); err != nil {
		return "", err
	}
	return id, nil
}
