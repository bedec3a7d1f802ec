package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/vlinky/vlinky/internal/middleware"
)

// Router collects everything NewRouter mounts.
type Router struct {
	Auth          *AuthHandler
	Favorites     *FavoritesHandler
	Applications  *ApplicationsHandler
	VideoRequests *VideoRequestsHandler
	Catalog       *CatalogHandler
	Realtime      *RealtimeHandler
	Notify        *NotifyHandler
	Health        *HealthHandler

	// Sessions resolves bearer tokens for the protected group.
	Sessions middleware.Authenticator
	// Admins guards the review endpoint.
	Admins middleware.AdminChecker
	// Limiter throttles the public write endpoints per client IP. Nil disables it.
	Limiter middleware.RateLimiter
	// CORS is applied to every route.
	CORS *middleware.CORSPolicy
}

// NewRouter constructs and returns an HTTP handler that serves
// the VLINKY API.
//
// Routes:
//
//	GET  /healthz                                    → Health
//	*    /api/send-video-notification                → Notify (own content checks)
//	POST /api/register, /api/login                   → Auth (rate limited)
//	GET  /api/countries, /api/creators               → Catalog
//	GET  /api/me, POST /api/logout                   → Auth (session)
//	GET|POST /api/favorites, DELETE /api/favorites/{creatorId}
//	POST /api/creator-applications
//	GET  /api/creator-applications/latest-approved
//	GET  /api/realtime/creator-applications          → Realtime (SSE)
//	GET|POST /api/video-requests, PUT /api/video-requests/{id}/rating
//	PATCH /api/admin/creator-applications/{id}       → Applications.Review (admin)
//
// Middleware chain (applied in order):
//  1. RequestID and Recoverer
//  2. WithRequestLogging(logger)
//  3. CORS, answering every OPTIONS request with 204
//  4. AllowContentType("application/json"), except on the notification endpoint
//     which answers a wrong content type with 400 itself
//  5. SessionAuth on the protected group
func NewRouter(h Router, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.WithRequestLogging(logger))
	// Mux level so preflight requests are answered before routing.
	r.Use(h.CORS.Handler)

	r.Method(http.MethodGet, "/healthz", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.With(middleware.RateLimit(h.Limiter, "notify")).
			Handle("/send-video-notification", h.Notify)

		r.Group(func(r chi.Router) {
			r.Use(chiMiddleware.AllowContentType("application/json"))

			// Public endpoints
			r.Group(func(r chi.Router) {
				r.Use(middleware.RateLimit(h.Limiter, "auth"))
				r.Post("/register", h.Auth.Register)
				r.Post("/login", h.Auth.Login)
			})
			r.Get("/countries", h.Catalog.Countries)
			r.Get("/creators", h.Catalog.Creators)

			// Protected group: requires a valid session token
			r.Group(func(r chi.Router) {
				r.Use(middleware.SessionAuth(h.Sessions, logger))

				r.Get("/me", h.Auth.Me)
				r.Post("/logout", h.Auth.Logout)

				r.Get("/favorites", h.Favorites.List)
				r.Post("/favorites", h.Favorites.Add)
				r.Delete("/favorites/{creatorId}", h.Favorites.Remove)

				r.Post("/creator-applications", h.Applications.Submit)
				r.Get("/creator-applications/latest-approved", h.Applications.LatestApproved)
				r.Get("/realtime/creator-applications", h.Realtime.Applications)

				r.Post("/video-requests", h.VideoRequests.Create)
				r.Get("/video-requests", h.VideoRequests.List)
				r.Put("/video-requests/{id}/rating", h.VideoRequests.Rate)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin(h.Admins))
					r.Patch("/admin/creator-applications/{id}", h.Applications.Review)
				})
			})
		})
	})

	return r
}
