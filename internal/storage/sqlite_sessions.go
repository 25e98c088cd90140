package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/good-yellow-bee/curlhub/internal/models"
)

// sqliteSessionRepo implements SessionRepository using SQLite.
// Timestamps are stored as unix seconds so expiry can be compared in SQL.
type sqliteSessionRepo struct {
	db querier
}

// Create inserts a new session record.
func (r *sqliteSessionRepo) Create(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO sessions (id, user_id, created_at, expires_at)
		VALUES (?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		session.ID, session.UserID,
		session.CreatedAt.Unix(), session.ExpiresAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// Get retrieves a session by token id.
func (r *sqliteSessionRepo) Get(ctx context.Context, id string) (*models.Session, error) {
	query := `SELECT id, user_id, created_at, expires_at FROM sessions WHERE id = ?`

	var session models.Session
	var createdAt, expiresAt int64
	err := r.db.QueryRowContext(ctx, query, id).Scan(&session.ID, &session.UserID, &createdAt, &expiresAt)
	if err == sql.ErrNoRows {
		//nolint:nilnil
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	session.CreatedAt = time.Unix(createdAt, 0).UTC()
	session.ExpiresAt = time.Unix(expiresAt, 0).UTC()
	return &session, nil
}

// Delete removes a session. Deleting a missing session is not an error.
func (r *sqliteSessionRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteForUser removes every session of a user.
func (r *sqliteSessionRepo) DeleteForUser(ctx context.Context, userID int64) (int64, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE user_id = ?", userID)
	if err != nil {
		return 0, fmt.Errorf("delete user sessions: %w", err)
	}
	return result.RowsAffected()
}

// DeleteExpired removes sessions that expired at or before now.
func (r *sqliteSessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at <= ?", now.Unix())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return result.RowsAffected()
}
