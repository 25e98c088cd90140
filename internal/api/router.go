package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/good-yellow-bee/curlhub/internal/api/accounts"
	"github.com/good-yellow-bee/curlhub/internal/api/middleware"
	"github.com/good-yellow-bee/curlhub/internal/api/projects"
	"github.com/good-yellow-bee/curlhub/internal/api/render"
)

// setupRouter creates and configures the chi router with all routes.
func (s *Server) setupRouter() *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	if s.config.BehindProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.RequestLogger(s.config.Verbose))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Recoverer)
	r.Use(middleware.PrometheusMiddleware)
	r.Use(middleware.CORS(s.config.CORSOrigins))

	accountHandler := accounts.NewHandler(s.accounts, accounts.CookieConfig{
		Name:   s.config.CookieName,
		Secure: s.config.UseSecureCookies,
		TTL:    s.config.SessionTTL,
	})
	projectHandler := projects.NewHandler(s.projects)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.SessionToken(s.config.CookieName))
		if s.config.CSRFEnabled {
			r.Use(middleware.CSRF(middleware.CSRFConfig{
				Key:            []byte(s.config.CSRFSecret),
				CookieName:     s.config.CookieName,
				Secure:         s.config.UseSecureCookies,
				TrustedOrigins: s.config.TrustedOrigins,
			}))
			r.Get("/csrf-token", func(w http.ResponseWriter, r *http.Request) {
				render.OK(w, map[string]string{"csrf_token": middleware.CSRFToken(r)})
			})
		}

		r.Get("/health-check", s.healthHandler.Health)

		// Accounts
		r.Post("/sign-up", accountHandler.SignUp)
		r.Post("/log-in", accountHandler.LogIn)
		r.Post("/log-out", accountHandler.LogOut)
		r.Post("/delete-user", accountHandler.DeleteAccount)
		r.Get("/user-status", accountHandler.Status)

		// Projects
		r.Route("/project", func(r chi.Router) {
			r.Get("/", projectHandler.List)
			r.Post("/", projectHandler.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", projectHandler.Get)
				r.Post("/", projectHandler.Update)
				r.Delete("/", projectHandler.Delete)
				r.Get("/is-user-admin", projectHandler.Permissions)
				r.Post("/group", projectHandler.CreateGroup)
			})
		})

		// Curl groups
		r.Route("/group/{id}", func(r chi.Router) {
			r.Get("/", projectHandler.GetGroup)
			r.Post("/", projectHandler.UpdateGroup)
			r.Delete("/", projectHandler.DeleteGroup)
		})
	})

	// Health checks (public)
	r.Get("/health", s.healthHandler.Health)
	r.Get("/health/live", s.healthHandler.Live)
	r.Get("/health/ready", s.healthHandler.Ready)

	return r
}
