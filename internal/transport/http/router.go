package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apperrors "github.com/ispconsole/backoffice/internal/pkg/errors"
	"github.com/ispconsole/backoffice/internal/pkg/rbac"
	"github.com/ispconsole/backoffice/internal/session"
)

// NewRouter assembles the full route tree. The operational endpoints
// stay outside the session guard; everything under /api except login
// requires one.
func NewRouter(h *Handlers, hub *Hub, sessions *session.Manager, corsOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	r.Use(toastMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/api/login", h.login)

	r.Group(func(r chi.Router) {
		r.Use(sessions.Middleware)

		r.Post("/api/logout", h.logout)
		r.Get("/api/me", h.me)

		r.Get("/api/uiconfig", h.uiConfig)

		r.Get("/api/theme", h.getTheme)
		r.Put("/api/theme", h.putTheme)

		r.Get("/api/ws", hub.Handle)

		r.Get("/api/entities", h.listEntities)
		r.Route("/api/entities/{entity}", func(r chi.Router) {
			r.With(permit("read")).Get("/", h.list)
			r.With(permit("read")).Get("/schema", h.schema)
			r.With(permit("create")).Post("/", h.create)
			r.With(permit("read")).Get("/{id}", h.get)
			r.With(permit("update")).Put("/{id}", h.update)
			r.With(permit("delete")).Delete("/{id}", h.delete)
			r.With(permit("export")).Post("/{id}/export", h.export)
		})
	})

	return r
}

// permit gates an entity route on the session role's permissions.
func permit(action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := session.ClaimsFrom(r.Context())
			entity := chi.URLParam(r, "entity")
			if !ok || !rbac.CheckPermission(claims.Role, entity+"."+action) {
				respondError(w, r, apperrors.New(http.StatusForbidden, "Forbidden",
					"you do not have permission for this action"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
