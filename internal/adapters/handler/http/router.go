package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewHandler(sessionHandler *SessionHandler, jwtSecret []byte) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("welcome"))
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/current", sessionHandler.GetCurrentSession)

			r.Group(func(r chi.Router) {
				r.Use(RequireAuth(jwtSecret))
				r.Post("/", sessionHandler.CreateNextWeekSession)
				r.Post("/maintenance", sessionHandler.RunMaintenance)
				r.Post("/expired", sessionHandler.DeactivateExpired)
				r.Post("/dedup", sessionHandler.EnsureSingleActive)
			})
		})
	})

	return r
}
