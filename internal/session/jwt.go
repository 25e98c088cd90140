package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/good-yellow-bee/curlhub/internal/errs"
	"github.com/good-yellow-bee/curlhub/internal/models"
	"github.com/good-yellow-bee/curlhub/internal/storage"
)

const jwtIssuer = "curlhub"

// Claims represents the JWT claims of a session token.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64 `json:"uid"`
}

// JWTManager issues HS256-signed session tokens. Every issued token id is
// recorded in the sessions table; a token only resolves while its row exists.
type JWTManager struct {
	secret   []byte
	ttl      time.Duration
	issuer   string
	sessions storage.SessionRepository
	now      func() time.Time
}

// NewJWTManager creates a JWT session manager.
func NewJWTManager(secret []byte, ttl time.Duration, sessions storage.SessionRepository) (*JWTManager, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("session secret must be at least 32 bytes")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &JWTManager{
		secret:   secret,
		ttl:      ttl,
		issuer:   jwtIssuer,
		sessions: sessions,
		now:      time.Now,
	}, nil
}

// Issue creates a signed token for userID and records its id.
func (m *JWTManager) Issue(ctx context.Context, userID int64) (string, error) {
	const op = "session.Issue"

	now := m.now().UTC().Truncate(time.Second)
	expiresAt := now.Add(m.ttl)
	id := uuid.New().String()

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			Issuer:    m.issuer,
			Subject:   fmt.Sprintf("%d", userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID: userID,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", errs.E(errs.Other, op, fmt.Errorf("sign token: %w", err))
	}

	record := &models.Session{ID: id, UserID: userID, CreatedAt: now, ExpiresAt: expiresAt}
	if err := m.sessions.Create(ctx, record); err != nil {
		return "", errs.E(errs.Storage, op, err)
	}
	return signed, nil
}

// Resolve validates token and returns its user id.
func (m *JWTManager) Resolve(ctx context.Context, token string) (int64, error) {
	const op = "session.Resolve"

	if token == "" {
		return 0, unauthenticated(op, ErrNoToken)
	}

	claims, err := m.parse(token, true)
	if err != nil {
		return 0, unauthenticated(op, fmt.Errorf("%w: %v", ErrInvalidToken, err))
	}

	record, err := m.sessions.Get(ctx, claims.ID)
	if err != nil {
		return 0, errs.E(errs.Storage, op, err)
	}
	if record == nil || record.UserID != claims.UserID || record.IsExpired(m.now()) {
		return 0, unauthenticated(op, ErrInvalidToken)
	}
	return record.UserID, nil
}

// Purge deletes the token's record. Expired tokens with a valid signature
// are still purged; tokens that fail to parse are ignored.
func (m *JWTManager) Purge(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	claims, err := m.parse(token, false)
	if err != nil {
		return nil
	}
	if err := m.sessions.Delete(ctx, claims.ID); err != nil {
		return errs.E(errs.Storage, "session.Purge", err)
	}
	return nil
}

// PurgeUser deletes every session record of userID.
func (m *JWTManager) PurgeUser(ctx context.Context, userID int64) error {
	if _, err := m.sessions.DeleteForUser(ctx, userID); err != nil {
		return errs.E(errs.Storage, "session.PurgeUser", err)
	}
	return nil
}

// Prune deletes expired session records.
func (m *JWTManager) Prune(ctx context.Context) (int64, error) {
	n, err := m.sessions.DeleteExpired(ctx, m.now())
	if err != nil {
		return 0, errs.E(errs.Storage, "session.Prune", err)
	}
	return n, nil
}

// TTL returns the session lifetime.
func (m *JWTManager) TTL() time.Duration {
	return m.ttl
}

func (m *JWTManager) parse(token string, validateClaims bool) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithTimeFunc(m.now),
	}
	if validateClaims {
		opts = append(opts, jwt.WithExpirationRequired())
	} else {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.ID == "" || claims.UserID == 0 {
		return nil, errors.New("token is missing session claims")
	}
	return claims, nil
}
