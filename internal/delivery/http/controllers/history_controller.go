package controllers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"eventledger/internal/delivery/http/helpers"
	"eventledger/internal/domain"
)

// HistorySuccessResponse is the success envelope for GET /history/events/{eventID}.
type HistorySuccessResponse struct {
	Data  []*domain.VersionEntry `json:"data"`
	Error *helpers.APIError      `json:"error"`
}

// VersionSuccessResponse is the success envelope for one version entry.
type VersionSuccessResponse struct {
	Data  *domain.VersionEntry `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// HistoryController serves the version log. Entries remain readable after
// the event is deleted.
type HistoryController struct {
	Logger  *slog.Logger
	Queries domain.EventQueryService
}

func NewHistoryController(logger *slog.Logger, queries domain.EventQueryService) *HistoryController {
	return &HistoryController{
		Logger:  logger,
		Queries: queries,
	}
}

// EventHistory godoc
// @Summary Get an event's history
// @Description Returns every version entry of the event, oldest first.
// @Tags history
// @Produce json
// @Param eventID path string true "Event ID"
// @Success 200 {object} controllers.HistorySuccessResponse
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /history/events/{eventID} [get]
func (c *HistoryController) EventHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := c.Queries.EventHistory(r.Context(), r.PathValue("eventID"))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, entries)
}

// EventVersion godoc
// @Summary Get one version of an event
// @Description Returns the version entry recorded for the given version number.
// @Tags history
// @Produce json
// @Param eventID path string true "Event ID"
// @Param version path int true "Version number"
// @Success 200 {object} controllers.VersionSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /history/events/{eventID}/versions/{version} [get]
func (c *HistoryController) EventVersion(w http.ResponseWriter, r *http.Request) {
	version, err := parsePositive(r.PathValue("version"))
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "version must be a positive integer")
		return
	}
	entry, err := c.Queries.EventVersion(r.Context(), r.PathValue("eventID"), version)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, entry)
}

func parsePositive(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if v < 1 {
		return 0, fmt.Errorf("%d is not positive", v)
	}
	return v, nil
}
