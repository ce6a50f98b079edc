// Package http provides HTTP routing, middleware configuration and JSON
// handlers for the reference issue API.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/atinyakov/IssueKeeper/internal/middleware"
)

// NewRouter constructs and returns an HTTP handler that serves the issue
// API.
//
// Routes:
//
//	POST   /user/login      → authHandler.Login
//	POST   /user/register   → authHandler.Register
//	GET    /user            → authHandler.Users         (bearer)
//	GET    /issue           → issueHandler.List         (bearer)
//	GET    /issue/counts    → issueHandler.Counts       (bearer)
//	POST   /issue           → issueHandler.Create       (bearer)
//	GET    /issue/{title}   → issueHandler.Get          (bearer)
//	PUT    /issue/{title}   → issueHandler.Update       (bearer)
//	DELETE /issue/{title}   → issueHandler.Delete       (bearer, admin)
//
// Middleware chain (applied in order):
//  1. RequestID: tags the request for the logs
//  2. Recoverer: turns a panic into a 500
//  3. WithRequestLogging(logger): logs each request
//  4. AllowContentType("application/json"): rejects non-JSON bodies
func NewRouter(
	authHandler *AuthHandler,
	issueHandler *IssueHandler,
	verifier middleware.TokenVerifier,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(chiMiddleware.AllowContentType("application/json"))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Route("/user", func(r chi.Router) {
		// Public endpoints
		r.Post("/login", authHandler.Login)
		r.Post("/register", authHandler.Register)

		r.With(middleware.BearerAuth(verifier)).Get("/", authHandler.Users)
	})

	r.Route("/issue", func(r chi.Router) {
		r.Use(middleware.BearerAuth(verifier))
		r.Get("/", issueHandler.List)
		r.Post("/", issueHandler.Create)
		r.Get("/counts", issueHandler.Counts)
		r.Get("/{title}", issueHandler.Get)
		r.Put("/{title}", issueHandler.Update)
		r.Delete("/{title}", issueHandler.Delete)
	})

	return r
}
