package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"eventledger/internal/concurrency"
	"eventledger/internal/delivery/http/helpers"
	"eventledger/internal/delivery/http/middleware"
	"eventledger/internal/domain"
)

// EventSuccessResponse is the success envelope for commands returning the write model.
type EventSuccessResponse struct {
	Data  *domain.EventWrite `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// EventReadSuccessResponse is the success envelope for GET /events/{eventID}.
type EventReadSuccessResponse struct {
	Data  *domain.EventRead `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListEventsResponse is one page of events and the total match count.
type ListEventsResponse struct {
	Events     []*domain.EventRead    `json:"events"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// ListEventsSuccessResponse is the success envelope for list endpoints.
type ListEventsSuccessResponse struct {
	Data  ListEventsResponse `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// BulkFailure describes the element at which a bulk create stopped.
type BulkFailure struct {
	Index   int    `json:"index"`
	Message string `json:"message"`
}

// BulkCreateEventsResponse lists the committed events. Failed is set when an
// element could not be created; elements after it were not attempted.
type BulkCreateEventsResponse struct {
	Created []*domain.EventWrite `json:"created"`
	Failed  *BulkFailure         `json:"failed,omitempty"`
}

// BulkCreateEventsSuccessResponse is the envelope for POST /events/bulk.
type BulkCreateEventsSuccessResponse struct {
	Data  BulkCreateEventsResponse `json:"data"`
	Error *helpers.APIError        `json:"error"`
}

type EventController struct {
	Logger   *slog.Logger
	Commands domain.EventCommandService
	Queries  domain.EventQueryService
}

func NewEventController(logger *slog.Logger, commands domain.EventCommandService, queries domain.EventQueryService) *EventController {
	return &EventController{
		Logger:   logger,
		Commands: commands,
		Queries:  queries,
	}
}

func (c *EventController) identity(w http.ResponseWriter, r *http.Request) (domain.Identity, bool) {
	who, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "missing user identity")
	}
	return who, ok
}

// CreateEvent godoc
// @Summary Create an event
// @Description Creates the write model, its read projection and the first version entry. The caller becomes the organizer.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userId query string false "Caller id when no bearer token is sent"
// @Param userName query string false "Caller display name"
// @Param event body CreateEventRequest true "Event data"
// @Success 201 {object} controllers.EventSuccessResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	who, ok := c.identity(w, r)
	if !ok {
		return
	}
	event, err := c.Commands.CreateEvent(r.Context(), req.EventInput, who)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// BulkCreateEvents godoc
// @Summary Create several events
// @Description Creates events one after the other. There is no transaction across the batch: when an element fails, the events before it stay committed, the rest are not attempted, and the response is 207 with data.failed set.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userId query string false "Caller id when no bearer token is sent"
// @Param userName query string false "Caller display name"
// @Param body body BulkCreateEventsRequest true "Events to create"
// @Success 201 {object} controllers.BulkCreateEventsSuccessResponse "every event was created"
// @Success 207 {object} controllers.BulkCreateEventsSuccessResponse "some events were created"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/bulk [post]
func (c *EventController) BulkCreateEvents(w http.ResponseWriter, r *http.Request) {
	var req BulkCreateEventsRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	who, ok := c.identity(w, r)
	if !ok {
		return
	}
	created, err := c.Commands.BulkCreateEvents(r.Context(), req.Events, who)
	if err != nil {
		var bulkErr *domain.BulkCreateError
		if !errors.As(err, &bulkErr) || len(created) == 0 {
			helpers.WriteServiceError(w, r, c.Logger, err)
			return
		}
		c.Logger.WarnContext(r.Context(), "bulk create stopped early", "created", len(created), "index", bulkErr.Index, "err", bulkErr.Err)
		helpers.WriteJSONSuccess(w, http.StatusMultiStatus, BulkCreateEventsResponse{
			Created: created,
			Failed:  &BulkFailure{Index: bulkErr.Index, Message: "event could not be created"},
		})
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, BulkCreateEventsResponse{Created: created})
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Merges the supplied fields onto the event. When concurrencyToken is sent it must equal the current token; without it the update is applied unconditionally (last write wins). expectedVersion, body or query, must equal the current version when sent.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param userId query string false "Caller id when no bearer token is sent"
// @Param userName query string false "Caller display name"
// @Param expectedVersion query int false "Version the caller read"
// @Param body body UpdateEventRequest true "Fields to update (all optional)"
// @Success 200 {object} controllers.EventSuccessResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [put]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	var req UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	if req.ExpectedVersion == nil {
		if s := r.URL.Query().Get("expectedVersion"); s != "" {
			v, err := parsePositive(s)
			if err != nil {
				helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "expectedVersion must be a positive integer")
				return
			}
			req.ExpectedVersion = &v
		}
	}
	who, ok := c.identity(w, r)
	if !ok {
		return
	}
	opts := domain.UpdateOptions{Check: concurrency.SkipCheck(), ExpectedVersion: req.ExpectedVersion}
	if req.ConcurrencyToken != nil {
		opts.Check = concurrency.CheckToken(*req.ConcurrencyToken)
	}
	event, err := c.Commands.UpdateEvent(r.Context(), eventID, req.EventPatch, who, opts)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Soft-deletes the event. History is kept. Deleting an already deleted event succeeds and records another version entry.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param userId query string false "Caller id when no bearer token is sent"
// @Param userName query string false "Caller display name"
// @Success 204 "No content"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	who, ok := c.identity(w, r)
	if !ok {
		return
	}
	if err := c.Commands.DeleteEvent(r.Context(), eventID, who); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetEventByID godoc
// @Summary Get an event by ID
// @Description Returns the read projection. Deleted events are not found.
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID"
// @Success 200 {object} controllers.EventReadSuccessResponse "data contains the event"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *EventController) GetEventByID(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	event, err := c.Queries.GetEventByID(r.Context(), eventID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// ListEvents godoc
// @Summary List events
// @Description Returns one page of non-deleted events and the total number of matches.
// @Tags events
// @Produce json
// @Param organizerId query string false "Organizer"
// @Param status query string false "draft, published, cancelled or completed"
// @Param type query string false "conference, workshop, meetup, webinar or networking"
// @Param category query string false "Case-insensitive substring"
// @Param isPublic query bool false "Visibility"
// @Param startDate query string false "Events starting at or after (RFC 3339)"
// @Param endDate query string false "Events ending at or before (RFC 3339)"
// @Param sortBy query string false "Sort field" default(createdAt)
// @Param sortOrder query string false "ASC or DESC" default(DESC)
// @Param limit query int false "Page size (max 100)" default(20)
// @Param offset query int false "Items to skip" default(0)
// @Success 200 {object} controllers.ListEventsSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	filter, errs := parseEventFilter(r.URL.Query())
	if len(errs) > 0 {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, strings.Join(errs, "; "))
		return
	}
	filter.PaginationParams = helpers.ParsePagination(r)
	events, total, err := c.Queries.ListEvents(r.Context(), filter)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListEventsResponse{
		Events:     events,
		Pagination: helpers.NewPaginationMeta(filter.PaginationParams, total),
	})
}

// ListEventsByOrganizer godoc
// @Summary List an organizer's events
// @Description Same filters as GET /events, scoped to one organizer.
// @Tags events
// @Produce json
// @Param organizerID path string true "Organizer ID"
// @Param status query string false "draft, published, cancelled or completed"
// @Param type query string false "conference, workshop, meetup, webinar or networking"
// @Param isPublic query bool false "Visibility"
// @Param sortBy query string false "Sort field" default(createdAt)
// @Param sortOrder query string false "ASC or DESC" default(DESC)
// @Param limit query int false "Page size (max 100)" default(20)
// @Param offset query int false "Items to skip" default(0)
// @Success 200 {object} controllers.ListEventsSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/organizer/{organizerID} [get]
func (c *EventController) ListEventsByOrganizer(w http.ResponseWriter, r *http.Request) {
	organizerID := r.PathValue("organizerID")
	filter, errs := parseEventFilter(r.URL.Query())
	if len(errs) > 0 {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, strings.Join(errs, "; "))
		return
	}
	filter.PaginationParams = helpers.ParsePagination(r)
	events, total, err := c.Queries.ListEventsByOrganizer(r.Context(), organizerID, filter)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListEventsResponse{
		Events:     events,
		Pagination: helpers.NewPaginationMeta(filter.PaginationParams, total),
	})
}
