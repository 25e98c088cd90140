// Package session issues and resolves login sessions.
//
// A session is an opaque token bound to one user. Three backends implement
// Manager: signed JWTs with a revocation table in SQLite, Redis keys with a
// TTL, and an in-process map for development and tests.
package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"time"

	"github.com/good-yellow-bee/curlhub/internal/errs"
)

// DefaultTTL is the session lifetime when none is configured.
const DefaultTTL = 7 * 24 * time.Hour

var (
	// ErrNoToken is the cause when no token was presented.
	ErrNoToken = errors.New("no session token")
	// ErrInvalidToken is the cause when a token is malformed, expired or revoked.
	ErrInvalidToken = errors.New("invalid or expired session token")
)

// Manager issues, resolves and revokes session tokens.
type Manager interface {
	// Issue creates a session for userID and returns its token.
	Issue(ctx context.Context, userID int64) (string, error)
	// Resolve returns the user bound to token. Absent, malformed, expired
	// and purged tokens fail with errs.Unauthenticated.
	Resolve(ctx context.Context, token string) (int64, error)
	// Purge revokes token. Unknown tokens are ignored.
	Purge(ctx context.Context, token string) error
	// PurgeUser revokes every session of userID.
	PurgeUser(ctx context.Context, userID int64) error
	// Prune drops expired sessions and reports how many were removed.
	Prune(ctx context.Context) (int64, error)
}

func unauthenticated(op string, cause error) error {
	return errs.E(errs.Unauthenticated, op, cause)
}

// generateToken returns 32 random bytes, URL-safe base64 encoded.
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// hashToken returns the hex SHA-256 of token. Stores key sessions by the
// hash so a leaked store does not leak usable tokens.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
