package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventledger/internal/delivery/http/controllers"
)

// NewRouter initializes the HTTP router with all application routes.
// identity wraps the command routes so handlers can read the caller.
func NewRouter(events *controllers.EventController, history *controllers.HistoryController, identity func(http.Handler) http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	command := func(h http.HandlerFunc) http.Handler { return identity(h) }

	// Commands
	mux.Handle("POST /events", command(events.CreateEvent))
	mux.Handle("POST /events/bulk", command(events.BulkCreateEvents))
	mux.Handle("PUT /events/{eventID}", command(events.UpdateEvent))
	mux.Handle("DELETE /events/{eventID}", command(events.DeleteEvent))

	// Queries
	mux.HandleFunc("GET /events", events.ListEvents)
	mux.HandleFunc("GET /events/{eventID}", events.GetEventByID)
	mux.HandleFunc("GET /events/organizer/{organizerID}", events.ListEventsByOrganizer)
	mux.HandleFunc("GET /history/events/{eventID}", history.EventHistory)
	mux.HandleFunc("GET /history/events/{eventID}/versions/{version}", history.EventVersion)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
