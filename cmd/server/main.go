package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/good-yellow-bee/curlhub/internal/api"
	"github.com/good-yellow-bee/curlhub/internal/api/health"
	"github.com/good-yellow-bee/curlhub/internal/metrics"
	"github.com/good-yellow-bee/curlhub/internal/session"
	"github.com/good-yellow-bee/curlhub/internal/storage"
	"github.com/good-yellow-bee/curlhub/pkg/config"
)

var (
	configFile string
	envFile    string
	httpAddr   string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "curlhub-server",
	Short: "curlhub server - shared curl command collections",
	Long: `curlhub server stores projects of curl command groups and serves
them over a JSON HTTP API with per-project admin and collaborator access.`,
	RunE:         runServer,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(config.VersionString())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path (optional)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().StringVarP(&httpAddr, "address", "a", "", "HTTP listen address (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load env file: %w", err)
	}

	cfg, err := LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if httpAddr != "" {
		cfg.Server.HTTPAddress = httpAddr
	}
	cfg.Verbose = verbose

	// Auto-create data directory
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0750); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	store := storage.NewSQLiteStorage(cfg.Database.Path)
	if err := store.Open(); err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	if err := store.Migrate(); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	log.Printf("database initialized at %s", cfg.Database.Path)

	sessions, checker, closeSessions, err := newSessionManager(cfg, store)
	if err != nil {
		return fmt.Errorf("create session manager: %w", err)
	}
	defer closeSessions()
	log.Printf("session backend: %s (ttl %s)", cfg.Session.Backend, cfg.SessionTTL())

	srv, err := api.New(&api.Config{
		Address:          cfg.Server.HTTPAddress,
		CookieName:       cfg.Session.CookieName,
		SessionTTL:       cfg.SessionTTL(),
		UseSecureCookies: cfg.Session.SecureCookies,
		HTTPTLSEnabled:   cfg.Server.TLS.Enabled,
		HTTPTLSCertFile:  cfg.Server.TLS.CertFile,
		HTTPTLSKeyFile:   cfg.Server.TLS.KeyFile,
		CORSOrigins:      cfg.CORS.AllowedOrigins,
		CSRFEnabled:      cfg.Security.CSRFEnabled,
		CSRFSecret:       cfg.Security.CSRFSecret,
		TrustedOrigins:   cfg.Security.TrustedOrigins,
		BehindProxy:      cfg.Server.BehindProxy,
		Argon2:           cfg.Security.Argon2,
		Verbose:          cfg.Verbose,
	}, store, sessions)
	if err != nil {
		return fmt.Errorf("create API server: %w", err)
	}
	if checker != nil {
		srv.RegisterHealthChecker(checker)
	}

	metrics.SetBuildInfo(config.Version, config.Commit, config.BuildTime)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Session.PruneSchedule, func() { pruneSessions(ctx, sessions) }); err != nil {
		return fmt.Errorf("schedule session pruning: %w", err)
	}
	scheduler.Start()
	defer func() { <-scheduler.Stop().Done() }()

	log.Printf("starting curlhub-server %s", config.Version)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gCtx) })
	if cfg.Metrics.Enabled {
		metricsServer := metrics.NewServer(cfg.Metrics.Address)
		g.Go(func() error { return metricsServer.Run(gCtx) })
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("run server: %w", err)
	}

	log.Printf("server stopped")
	return nil
}

// newSessionManager builds the configured session backend. The returned
// checker is nil for backends without an external dependency.
func newSessionManager(cfg *Config, store *storage.SQLiteStorage) (session.Manager, health.Checker, func(), error) {
	ttl := cfg.SessionTTL()
	noop := func() {}

	switch cfg.Session.Backend {
	case backendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Session.Redis.Address,
			Password: cfg.Session.Redis.Password,
			DB:       cfg.Session.Redis.DB,
		})
		mgr := session.NewRedisManager(client, ttl)

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mgr.Ping(pingCtx); err != nil {
			client.Close()
			return nil, nil, noop, fmt.Errorf("connect to redis at %s: %w", cfg.Session.Redis.Address, err)
		}
		return mgr, health.NewRedisChecker(mgr), func() { client.Close() }, nil

	case backendMemory:
		log.Printf("warning: memory session backend loses all sessions on restart")
		return session.NewMemoryManager(ttl), nil, noop, nil

	default:
		mgr, err := session.NewJWTManager([]byte(cfg.Session.Secret), ttl, store.Sessions())
		if err != nil {
			return nil, nil, noop, err
		}
		return mgr, nil, noop, nil
	}
}

func pruneSessions(ctx context.Context, sessions session.Manager) {
	n, err := sessions.Prune(ctx)
	if err != nil {
		log.Printf("prune sessions error: %v", err)
		return
	}
	if n > 0 {
		metrics.SessionsPruned.Add(float64(n))
		log.Printf("pruned %d expired sessions", n)
	}
}
