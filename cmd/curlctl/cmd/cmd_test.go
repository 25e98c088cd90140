package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/good-yellow-bee/curlhub/internal/models"
	"github.com/good-yellow-bee/curlhub/internal/session"
	"github.com/good-yellow-bee/curlhub/internal/storage"
)

// seedDatabase creates a database with one user, one private project
// administered by that user and one expired session.
func seedDatabase(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "curlhub.db")
	store := storage.NewSQLiteStorage(path)
	if err := store.Open(); err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	ctx := context.Background()
	user := models.NewUser("alice", "hash")
	if err := store.Users().Create(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	project := models.NewProject("payments", "", "", models.VisibilityPrivate)
	if err := store.Projects().Create(ctx, project); err != nil {
		t.Fatalf("create project: %v", err)
	}
	if err := store.Members().Add(ctx, project.ID, user.ID, models.RoleAdmin); err != nil {
		t.Fatalf("add admin: %v", err)
	}

	past := time.Now().Add(-time.Hour)
	expired := &models.Session{ID: "expired", UserID: user.ID, CreatedAt: past.Add(-time.Hour), ExpiresAt: past}
	if err := store.Sessions().Create(ctx, expired); err != nil {
		t.Fatalf("create session: %v", err)
	}

	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestProjectList_JSONIncludesPrivate(t *testing.T) {
	db := seedDatabase(t)

	out, err := run(t, "project", "list", "--db", db, "-o", "json")
	if err != nil {
		t.Fatalf("project list: %v", err)
	}

	var rows []struct {
		Name       string `json:"name"`
		Visibility string `json:"visibility"`
		Groups     int    `json:"groups"`
	}
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(rows) != 1 || rows[0].Name != "payments" || rows[0].Visibility != "Private" {
		t.Errorf("rows = %+v", rows)
	}
}

func TestProjectMembers_JSON(t *testing.T) {
	db := seedDatabase(t)

	out, err := run(t, "project", "members", "--db", db, "--id", "1", "-o", "json")
	if err != nil {
		t.Fatalf("project members: %v", err)
	}

	var members map[string][]struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal([]byte(out), &members); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(members["admin"]) != 1 || members["admin"][0].Name != "alice" {
		t.Errorf("members = %+v", members)
	}
}

func TestSessionPrune(t *testing.T) {
	db := seedDatabase(t)

	if _, err := run(t, "session", "prune", "--db", db, "-o", "table"); err != nil {
		t.Fatalf("session prune: %v", err)
	}

	store := storage.NewSQLiteStorage(db)
	if err := store.Open(); err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	s, err := store.Sessions().Get(context.Background(), "expired")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if s != nil {
		t.Error("expired session still present")
	}
}

func TestMissingDatabase(t *testing.T) {
	if _, err := run(t, "user", "list", "--db", filepath.Join(t.TempDir(), "missing.db")); err == nil {
		t.Fatal("expected error for missing database")
	}
}

func TestNotFound(t *testing.T) {
	db := seedDatabase(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown user", []string{"user", "delete", "--username", "nosuch", "--force"}, "user 'nosuch' not found"},
		{"unknown project", []string{"project", "members", "--id", "999"}, "project 999 not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--db", db, "-o", "table"}, tt.args...)
			_, err := run(t, args...)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func openSeeded(t *testing.T, path string) *storage.SQLiteStorage {
	t.Helper()
	store := storage.NewSQLiteStorage(path)
	if err := store.Open(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestUserDelete(t *testing.T) {
	db := seedDatabase(t)

	out, err := run(t, "--db", db, "-o", "table", "user", "delete", "--username", "alice", "--force")
	if err != nil {
		t.Fatalf("user delete: %v", err)
	}
	if !strings.Contains(out, "User 'alice' deleted.") {
		t.Errorf("output = %q", out)
	}

	store := openSeeded(t, db)
	ctx := context.Background()
	user, err := store.Users().GetByName(ctx, "alice")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if user != nil {
		t.Error("user still present")
	}
	s, err := store.Sessions().Get(ctx, "expired")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if s != nil {
		t.Error("session of deleted user still present")
	}
}

func TestUserDelete_RevokesRedisSessions(t *testing.T) {
	db := seedDatabase(t)
	ctx := context.Background()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer mr.Close()
	t.Cleanup(func() { redisAddr = "" })

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	sessions := session.NewRedisManager(client, time.Hour)

	alice, err := openSeeded(t, db).Users().GetByName(ctx, "alice")
	if err != nil || alice == nil {
		t.Fatalf("get alice: %v", err)
	}
	token, err := sessions.Issue(ctx, alice.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := run(t, "--db", db, "-o", "table", "--redis-addr", mr.Addr(),
		"user", "delete", "--username", "alice", "--force"); err != nil {
		t.Fatalf("user delete: %v", err)
	}

	if _, err := sessions.Resolve(ctx, token); err == nil {
		t.Error("redis session of deleted user still resolves")
	}
}

func TestUserDelete_RedisUnavailableKeepsUser(t *testing.T) {
	db := seedDatabase(t)
	t.Cleanup(func() { redisAddr = "" })

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	addr := mr.Addr()
	mr.Close()

	if _, err := run(t, "--db", db, "-o", "table", "--redis-addr", addr,
		"user", "delete", "--username", "alice", "--force"); err == nil {
		t.Fatal("expected an error when redis is unreachable")
	}

	user, err := openSeeded(t, db).Users().GetByName(context.Background(), "alice")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if user == nil {
		t.Error("user deleted although its redis sessions could not be revoked")
	}
}
