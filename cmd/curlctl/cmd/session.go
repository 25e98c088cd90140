package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Session maintenance commands",
}

var sessionPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete expired sessions",
	Long: `Delete expired rows from the sessions table used by the jwt session
backend. The server runs the same job on its prune schedule; this command
is for one-off maintenance.

Example:
  curlctl session prune`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openDatabase(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()

		n, err := store.Sessions().DeleteExpired(context.Background(), time.Now())
		if err != nil {
			return fmt.Errorf("prune sessions: %w", err)
		}
		fmt.Printf("Pruned %d expired session(s).\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionPruneCmd)
}
