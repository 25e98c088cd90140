package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	// Pure Go SQLite driver, registered as "sqlite".
	_ "modernc.org/sqlite"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// sqliteRepos binds every repository to one querier.
type sqliteRepos struct {
	users    *sqliteUserRepo
	projects *sqliteProjectRepo
	members  *sqliteMemberRepo
	groups   *sqliteGroupRepo
	sessions *sqliteSessionRepo
}

func newSQLiteRepos(q querier) *sqliteRepos {
	return &sqliteRepos{
		users:    &sqliteUserRepo{db: q},
		projects: &sqliteProjectRepo{db: q},
		members:  &sqliteMemberRepo{db: q},
		groups:   &sqliteGroupRepo{db: q},
		sessions: &sqliteSessionRepo{db: q},
	}
}

func (r *sqliteRepos) Users() UserRepository       { return r.users }
func (r *sqliteRepos) Projects() ProjectRepository { return r.projects }
func (r *sqliteRepos) Members() MemberRepository   { return r.members }
func (r *sqliteRepos) Groups() GroupRepository     { return r.groups }
func (r *sqliteRepos) Sessions() SessionRepository { return r.sessions }

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	path string
	db   *sql.DB

	*sqliteRepos
}

// NewSQLiteStorage creates a new SQLite storage for the database file at path.
func NewSQLiteStorage(path string) *SQLiteStorage {
	return &SQLiteStorage{path: path}
}

// Open initializes the database connection.
func (s *SQLiteStorage) Open() error {
	ctx := context.Background()

	dsn := fmt.Sprintf(
		"file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)",
		s.path,
	)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite is single-writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0) // Keep connection alive

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("ping database: %w", err)
	}

	var fk int
	if err := db.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fk); err != nil {
		db.Close()
		return fmt.Errorf("read foreign_keys pragma: %w", err)
	}
	if fk != 1 {
		db.Close()
		return fmt.Errorf("foreign keys are not enabled")
	}

	s.db = db
	s.sqliteRepos = newSQLiteRepos(db)

	return nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying database connection for health checks.
func (s *SQLiteStorage) DB() *sql.DB {
	return s.db
}

// Ping checks the database connection.
func (s *SQLiteStorage) Ping(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database not open")
	}
	return s.db.PingContext(ctx)
}

// Migrate runs database migrations.
func (s *SQLiteStorage) Migrate() error {
	return runMigrations(s.db)
}

// WithTx runs fn in a transaction. The pool holds a single connection, so fn
// must not use the storage's own repositories while the transaction is open.
func (s *SQLiteStorage) WithTx(ctx context.Context, fn func(tx Repositories) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			log.Printf("rollback error: %v", rbErr)
		}
	}()

	if err := fn(newSQLiteRepos(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	committed = true
	return nil
}

// inTx runs fn on q directly when q is already a transaction, and in a new
// transaction when q is the connection pool.
func inTx(ctx context.Context, q querier, fn func(q querier) error) error {
	db, ok := q.(*sql.DB)
	if !ok {
		return fn(q)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
