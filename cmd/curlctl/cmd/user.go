package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/good-yellow-bee/curlhub/internal/auth"
	"github.com/good-yellow-bee/curlhub/internal/errs"
	"github.com/good-yellow-bee/curlhub/internal/storage"
)

var (
	userUsername string
	userForce    bool
)

// userCmd represents the user command group
var userCmd = &cobra.Command{
	Use:   "user",
	Short: "User management commands",
	Long: `Commands for managing curlhub accounts.

Examples:
  # List all users
  curlctl user list

  # Create a user (password is prompted)
  curlctl user create --username alice

  # Delete a user and all of their sessions
  curlctl user delete --username alice`,
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all users",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openDatabase(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := context.Background()
		users, err := store.Users().List(ctx)
		if err != nil {
			return fmt.Errorf("list users: %w", err)
		}

		if done, err := printJSON(cmd.OutOrStdout(), users); done || err != nil {
			return err
		}

		if len(users) == 0 {
			fmt.Println("No users found.")
			return nil
		}

		fmt.Printf("\n%-8s  %-32s  %s\n", "ID", "USERNAME", "CREATED")
		fmt.Println(strings.Repeat("-", 64))
		for _, u := range users {
			fmt.Printf("%-8d  %-32s  %s\n", u.ID, u.Name, u.CreatedAt.Format("2006-01-02 15:04:05"))
		}

		total, err := store.Users().Count(ctx)
		if err != nil {
			return fmt.Errorf("count users: %w", err)
		}
		fmt.Printf("\nTotal: %d user(s)\n", total)
		return nil
	},
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new user",
	Long: `Create a new account.

The password is prompted interactively so it does not end up in shell
history. It is hashed with argon2id using the default parameters.

Example:
  curlctl user create --username alice`,
	RunE: func(cmd *cobra.Command, args []string) error {
		username := strings.TrimSpace(userUsername)
		if username == "" {
			return fmt.Errorf("--username is required")
		}

		password, err := promptPassword("Enter password: ")
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		if password == "" {
			return fmt.Errorf("password must not be empty")
		}
		confirm, err := promptPassword("Confirm password: ")
		if err != nil {
			return fmt.Errorf("read password confirmation: %w", err)
		}
		if password != confirm {
			return fmt.Errorf("passwords do not match")
		}

		store, err := openDatabase(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()

		credentials, err := auth.NewCredentialStore(store.Users(), auth.NewArgon2Hasher(auth.DefaultArgon2Params()))
		if err != nil {
			return err
		}

		id, err := credentials.CreateAccount(context.Background(), username, password)
		if err != nil {
			if errs.Is(err, errs.Conflict) {
				return fmt.Errorf("username '%s' already exists", username)
			}
			return fmt.Errorf("create user: %w", err)
		}

		fmt.Printf("\nUser created successfully:\n")
		fmt.Printf("  ID:       %d\n", id)
		fmt.Printf("  Username: %s\n", username)
		return nil
	},
}

var userDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a user",
	Long: `Delete an account with its memberships and sessions.

Sessions in the database are always removed. When the server keeps
sessions in redis, pass --redis-addr (or set CURLHUB_REDIS_ADDRESS) so
they are revoked as well.

Projects the user administered are kept. If the user was their only
admin they become read-only until an operator intervenes.

Example:
  curlctl user delete --username alice --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openDatabase(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := context.Background()
		user, err := store.Users().GetByName(ctx, userUsername)
		if err != nil {
			return fmt.Errorf("find user: %w", err)
		}
		if user == nil {
			return fmt.Errorf("user '%s' not found", userUsername)
		}

		if !userForce {
			answer, err := prompt(fmt.Sprintf("Delete user '%s' (id %d)? [y/N]: ", user.Name, user.ID))
			if err != nil {
				return err
			}
			if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
				fmt.Println("Aborted.")
				return nil
			}
		}

		redisSessions, closeRedis, err := openRedisSessions(ctx)
		if err != nil {
			return err
		}
		defer closeRedis()

		// Live sessions are revoked before the account row goes away.
		if redisSessions != nil {
			if err := redisSessions.PurgeUser(ctx, user.ID); err != nil {
				return fmt.Errorf("purge redis sessions: %w", err)
			}
		}

		err = store.WithTx(ctx, func(tx storage.Repositories) error {
			if _, err := tx.Sessions().DeleteForUser(ctx, user.ID); err != nil {
				return err
			}
			return tx.Users().Delete(ctx, user.ID)
		})
		if err != nil {
			return fmt.Errorf("delete user: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "User '%s' deleted.\n", user.Name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userListCmd)
	userCmd.AddCommand(userCreateCmd)
	userCmd.AddCommand(userDeleteCmd)

	userCreateCmd.Flags().StringVar(&userUsername, "username", "", "username for the new user (required)")
	userCreateCmd.MarkFlagRequired("username")

	userDeleteCmd.Flags().StringVar(&userUsername, "username", "", "username of the user to delete (required)")
	userDeleteCmd.Flags().BoolVarP(&userForce, "force", "f", false, "skip confirmation")
	userDeleteCmd.MarkFlagRequired("username")
}

// promptPassword prompts for a password without echoing to the terminal.
func promptPassword(label string) (string, error) {
	fmt.Print(label)

	fd := syscall.Stdin
	if term.IsTerminal(fd) {
		passwordBytes, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", err
		}
		return string(passwordBytes), nil
	}

	// Fallback for non-terminal input (e.g., piped input)
	return readLine()
}

func prompt(label string) (string, error) {
	fmt.Print(label)
	return readLine()
}

var stdin = bufio.NewReader(os.Stdin)

func readLine() (string, error) {
	line, err := stdin.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
