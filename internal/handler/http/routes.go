package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)

	// routes without authorization
	router.Group(func(r chi.Router) {
		r.Post("/api/auth/register", h.register)
		r.Post("/api/auth/login", h.login)

		// authenticated by a single-use ticket, not a bearer token: the SSE
		// stream is opened by clients that cannot set custom headers
		r.Get("/api/events", h.eventsStream)
	})

	// routes requiring a valid bearer token
	router.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Use(h.trackDevice)

		r.Get("/api/notes", h.snapshot)

		r.Get("/api/sync/pull", h.pull)
		r.Post("/api/sync/push", h.push)
		r.Post("/api/sync/bootstrap", h.bootstrap)

		r.Get("/api/devices", h.devices)
		r.Delete("/api/devices/{deviceID}", h.revokeDevice)

		r.Post("/api/events/ticket", h.eventsTicket)
	})

	return router
}
