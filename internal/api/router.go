package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/stegosight/stegosight/internal/api/middleware"
)

// RouterDeps bundles the handlers and middleware the router mounts.
type RouterDeps struct {
	Auth       *AuthHandler
	Operations *OperationHandler
	History    *HistoryHandler
	AuthMW     *middleware.AuthMiddleware
}

// NewRouter builds the control-API router. /auth/token is public; the
// operation and history routes require a valid session token.
func NewRouter(deps RouterDeps) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Trace)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Post("/auth/token", deps.Auth.Token)

	r.Group(func(r chi.Router) {
		r.Use(deps.AuthMW.Authenticate)

		r.Route("/operations", func(r chi.Router) {
			r.Post("/", deps.Operations.Submit)
			r.Get("/", deps.Operations.List)
			r.Get("/{id}", deps.Operations.Get)
			r.Delete("/{id}", deps.Operations.Cancel)
		})

		r.Route("/history", func(r chi.Router) {
			r.Get("/", deps.History.List)
			r.Get("/export", deps.History.Export)
		})
	})

	return r
}
