package helpers

import (
	"errors"
	"log/slog"
	"net/http"

	"eventledger/internal/domain"
)

// WriteServiceError maps a service error onto the API envelope. Conflicts
// from the token check and from a stale conditional save both surface as
// 409 so the caller re-fetches and retries.
func WriteServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		WriteJSONError(w, http.StatusNotFound, ErrCodeNotFound, "event not found")
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrStaleWrite):
		WriteJSONError(w, http.StatusConflict, ErrCodeConflict, domain.ErrConflict.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		WriteJSONError(w, http.StatusInternalServerError, ErrCodeInternalError, "internal error")
	}
}
