// Package cmd contains the CLI commands for curlctl.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/good-yellow-bee/curlhub/internal/session"
	"github.com/good-yellow-bee/curlhub/internal/storage"
)

// defaultDBPath is the default database path, can be overridden via CURLHUB_DB_PATH env var
var defaultDBPath = "./data/curlhub.db"

var (
	// Used for flags
	dbPath  string
	verbose bool
	output  string

	redisAddr     string
	redisPassword string
	redisDB       int
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "curlctl",
	Short: "curlctl - curlhub administration",
	Long: `curlctl manages a curlhub database directly, outside the HTTP API.
It is intended for operators: listing and removing accounts, inspecting
project membership and pruning expired sessions.

Examples:
  # List all users
  curlctl user list

  # Show who administers project 3
  curlctl project members --id 3

  # Drop expired sessions
  curlctl session prune`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if envPath := os.Getenv("CURLHUB_DB_PATH"); envPath != "" {
		defaultDBPath = envPath
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", defaultDBPath, "path to SQLite database file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "table", "output format (table, json)")

	defaultRedisDB := 0
	if v, err := strconv.Atoi(os.Getenv("CURLHUB_REDIS_DB")); err == nil {
		defaultRedisDB = v
	}
	rootCmd.PersistentFlags().StringVar(&redisAddr, "redis-addr", os.Getenv("CURLHUB_REDIS_ADDRESS"), "redis session store address (set when the server uses the redis backend)")
	rootCmd.PersistentFlags().StringVar(&redisPassword, "redis-password", os.Getenv("CURLHUB_REDIS_PASSWORD"), "redis password")
	rootCmd.PersistentFlags().IntVar(&redisDB, "redis-db", defaultRedisDB, "redis database number")
}

// openDatabase opens an existing SQLite database and brings its schema up to date.
func openDatabase(path string) (*storage.SQLiteStorage, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("database file not found: %s", path)
	}

	store := storage.NewSQLiteStorage(path)
	if err := store.Open(); err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := store.Migrate(); err != nil {
		store.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	PrintVerbose("opened %s", path)
	return store, nil
}

// printJSON writes v as indented JSON when JSON output was requested and
// reports whether it did.
func printJSON(w io.Writer, v any) (bool, error) {
	if output != "json" {
		return false, nil
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return true, enc.Encode(v)
}

// PrintVerbose prints a message only if verbose mode is enabled.
func PrintVerbose(format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}

// openRedisSessions connects to the redis session store when one is
// configured. It returns nil when no address was given.
func openRedisSessions(ctx context.Context) (*session.RedisManager, func(), error) {
	if redisAddr == "" {
		return nil, func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       redisDB,
	})
	mgr := session.NewRedisManager(client, 0)
	if err := mgr.Ping(ctx); err != nil {
		client.Close()
		return nil, func() {}, fmt.Errorf("connect to redis at %s: %w", redisAddr, err)
	}

	PrintVerbose("connected to redis at %s", redisAddr)
	return mgr, func() { client.Close() }, nil
}
