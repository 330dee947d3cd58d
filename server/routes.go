package server

import (
	"github.com/fncall/handlers"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
)

func SetupRoutes(svc *handlers.Service) *chi.Mux {
	r := chi.NewRouter()

	// standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", handlers.HandleHealth)

	r.Route("/function", func(r chi.Router) {
		r.Post("/call", handlers.HandleFunctionCall(svc))
	})

	return r
}
