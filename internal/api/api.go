// Package api provides the HTTP REST API server.
package api

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/good-yellow-bee/curlhub/internal/api/health"
	"github.com/good-yellow-bee/curlhub/internal/auth"
	"github.com/good-yellow-bee/curlhub/internal/service"
	"github.com/good-yellow-bee/curlhub/internal/session"
	"github.com/good-yellow-bee/curlhub/internal/storage"
)

// Config contains HTTP API server configuration.
type Config struct {
	Address          string
	CookieName       string        // Session cookie name
	SessionTTL       time.Duration // Cookie lifetime; should match the session backend
	UseSecureCookies bool          // Use Secure flag for cookies (true in production with HTTPS)
	HTTPTLSEnabled   bool
	HTTPTLSCertFile  string
	HTTPTLSKeyFile   string
	CORSOrigins      []string // Browser origins allowed to call the API with credentials
	CSRFEnabled      bool     // Require a CSRF token on cookie-authenticated mutations
	CSRFSecret       string   // 32-byte key for the CSRF cookie
	TrustedOrigins   []string // Trusted origins for CSRF (e.g., "app.example.com")
	BehindProxy      bool     // Trust X-Forwarded-For / X-Real-IP
	Argon2           auth.Argon2Params
	Verbose          bool
}

// SetDefaults applies default values for missing configuration.
func (c *Config) SetDefaults() {
	if c.Address == "" {
		c.Address = ":8080"
	}
	if c.CookieName == "" {
		c.CookieName = "curlhub_session"
	}
	if c.SessionTTL == 0 {
		c.SessionTTL = session.DefaultTTL
	}
	c.Argon2.SetDefaults()
}

// Server is the HTTP API server.
type Server struct {
	config        *Config
	storage       storage.Storage
	sessions      session.Manager
	accounts      *service.Accounts
	projects      *service.Projects
	server        *http.Server
	healthHandler *health.Handler
}

// New creates a new API server.
func New(cfg *Config, store storage.Storage, sessions session.Manager) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if store == nil {
		return nil, fmt.Errorf("storage is required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session manager is required")
	}

	cfg.SetDefaults()
	if cfg.CSRFEnabled && len(cfg.CSRFSecret) != 32 {
		return nil, fmt.Errorf("CSRF secret must be exactly 32 bytes, got %d", len(cfg.CSRFSecret))
	}

	credentials, err := auth.NewCredentialStore(store.Users(), auth.NewArgon2Hasher(cfg.Argon2))
	if err != nil {
		return nil, fmt.Errorf("create credential store: %w", err)
	}

	s := &Server{
		config:        cfg,
		storage:       store,
		sessions:      sessions,
		accounts:      service.NewAccounts(store, credentials, sessions),
		projects:      service.NewProjects(store, sessions),
		healthHandler: health.NewHandler(),
	}
	s.healthHandler.RegisterChecker(health.NewStorageChecker(store))

	s.server = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.setupRouter(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	if cfg.HTTPTLSEnabled {
		s.server.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS13,
		}
	}

	return s, nil
}

// Run starts the HTTP server and blocks until context is canceled.
func (s *Server) Run(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		log.Printf("HTTP API listening on %s", s.config.Address)
		var err error
		if s.config.HTTPTLSEnabled {
			err = s.server.ListenAndServeTLS(s.config.HTTPTLSCertFile, s.config.HTTPTLSKeyFile)
		} else {
			err = s.server.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Printf("shutting down HTTP API server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	case err := <-errChan:
		return err
	}
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Address returns the configured listen address.
func (s *Server) Address() string {
	return s.config.Address
}

// RegisterHealthChecker adds a health checker to the server.
func (s *Server) RegisterHealthChecker(c health.Checker) {
	if s.healthHandler != nil {
		s.healthHandler.RegisterChecker(c)
	}
}
