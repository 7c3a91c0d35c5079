package controllers

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"eventledger/internal/domain"
)

// MaxBulkEvents bounds the size of one bulk create request.
const MaxBulkEvents = 100

// CreateEventRequest is the request body for POST /events.
type CreateEventRequest struct {
	domain.EventInput
}

// Validate implements Validator.
func (c CreateEventRequest) Validate() []string {
	return validateInput(c.EventInput, "")
}

func validateInput(in domain.EventInput, prefix string) []string {
	var errs []string
	add := func(format string, args ...any) {
		errs = append(errs, prefix+fmt.Sprintf(format, args...))
	}
	if strings.TrimSpace(in.Title) == "" {
		add("title is required")
	}
	if !in.Type.Valid() {
		add("type must be one of conference, workshop, meetup, webinar, networking")
	}
	if in.Status != "" && !in.Status.Valid() {
		add("status must be one of draft, published, cancelled, completed")
	}
	if in.StartDate.IsZero() {
		add("startDate is required")
	}
	if in.EndDate.IsZero() {
		add("endDate is required")
	}
	if !in.StartDate.IsZero() && !in.EndDate.IsZero() && in.EndDate.Before(in.StartDate) {
		add("endDate must not be before startDate")
	}
	if in.Capacity != nil && *in.Capacity < 1 {
		add("capacity must be a positive integer")
	}
	if in.Price != nil && *in.Price < 0 {
		add("price must not be negative")
	}
	return errs
}

// BulkCreateEventsRequest is the request body for POST /events/bulk.
type BulkCreateEventsRequest struct {
	Events []domain.EventInput `json:"events"`
}

// Validate implements Validator.
func (b BulkCreateEventsRequest) Validate() []string {
	if len(b.Events) == 0 {
		return []string{"events must not be empty"}
	}
	if len(b.Events) > MaxBulkEvents {
		return []string{fmt.Sprintf("at most %d events per request", MaxBulkEvents)}
	}
	var errs []string
	for i, in := range b.Events {
		errs = append(errs, validateInput(in, fmt.Sprintf("events[%d].", i))...)
	}
	return errs
}

// UpdateEventRequest is the request body for PUT /events/{eventID}. Omitted
// fields are unchanged. concurrencyToken, when present, must match the
// stored token; without it the update is applied unconditionally.
type UpdateEventRequest struct {
	domain.EventPatch
	ConcurrencyToken *string `json:"concurrencyToken,omitempty"`
	ExpectedVersion  *int    `json:"expectedVersion,omitempty"`
}

// Validate implements Validator.
func (u UpdateEventRequest) Validate() []string {
	var errs []string
	p := u.EventPatch
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		errs = append(errs, "title must not be empty")
	}
	if p.Type != nil && !p.Type.Valid() {
		errs = append(errs, "type must be one of conference, workshop, meetup, webinar, networking")
	}
	if p.Status != nil && !p.Status.Valid() {
		errs = append(errs, "status must be one of draft, published, cancelled, completed")
	}
	if p.StartDate != nil && p.EndDate != nil && p.EndDate.Before(*p.StartDate) {
		errs = append(errs, "endDate must not be before startDate")
	}
	if p.Capacity != nil && *p.Capacity < 1 {
		errs = append(errs, "capacity must be a positive integer")
	}
	if p.Price != nil && *p.Price < 0 {
		errs = append(errs, "price must not be negative")
	}
	if u.ExpectedVersion != nil && *u.ExpectedVersion < 1 {
		errs = append(errs, "expectedVersion must be positive")
	}
	return errs
}

// parseEventFilter reads list filters from the query string. Sort fields are
// checked by the query service.
func parseEventFilter(q url.Values) (domain.EventFilter, []string) {
	var errs []string
	f := domain.EventFilter{
		OrganizerID: strings.TrimSpace(q.Get("organizerId")),
		Category:    strings.TrimSpace(q.Get("category")),
		SortBy:      q.Get("sortBy"),
		SortOrder:   domain.SortOrder(q.Get("sortOrder")),
	}
	if s := q.Get("status"); s != "" {
		f.Status = domain.EventStatus(s)
		if !f.Status.Valid() {
			errs = append(errs, "status must be one of draft, published, cancelled, completed")
		}
	}
	if s := q.Get("type"); s != "" {
		f.Type = domain.EventType(s)
		if !f.Type.Valid() {
			errs = append(errs, "type must be one of conference, workshop, meetup, webinar, networking")
		}
	}
	if s := q.Get("isPublic"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			errs = append(errs, "isPublic must be true or false")
		} else {
			f.IsPublic = &v
		}
	}
	if s := q.Get("startDate"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			errs = append(errs, "startDate must be an RFC 3339 timestamp")
		} else {
			f.StartDate = &t
		}
	}
	if s := q.Get("endDate"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			errs = append(errs, "endDate must be an RFC 3339 timestamp")
		} else {
			f.EndDate = &t
		}
	}
	return f, errs
}
