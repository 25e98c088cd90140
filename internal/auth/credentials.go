// Package auth stores and verifies account credentials.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/good-yellow-bee/curlhub/internal/errs"
	"github.com/good-yellow-bee/curlhub/internal/models"
	"github.com/good-yellow-bee/curlhub/internal/storage"
)

// Internal causes of a failed login. Both surface as errs.InvalidCredential.
var (
	ErrUnknownUser   = errors.New("unknown user")
	ErrWrongPassword = errors.New("wrong password")
)

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) bool
}

// CredentialStore creates accounts and verifies their passwords.
type CredentialStore struct {
	users  storage.UserRepository
	hasher PasswordHasher
	// dummyHash is verified against when the user does not exist so that
	// unknown names and wrong passwords take about the same time.
	dummyHash string
}

// NewCredentialStore creates a credential store backed by users.
func NewCredentialStore(users storage.UserRepository, hasher PasswordHasher) (*CredentialStore, error) {
	dummy, err := hasher.Hash("curlhub-timing-equalizer")
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	return &CredentialStore{users: users, hasher: hasher, dummyHash: dummy}, nil
}

// CreateAccount registers name with a hash of password and returns the new
// user id. A taken name fails with errs.Conflict.
func (s *CredentialStore) CreateAccount(ctx context.Context, name, password string) (int64, error) {
	const op = "auth.CreateAccount"

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return 0, errs.E(errs.Other, op, err)
	}

	user := models.NewUser(name, hash)
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return 0, errs.E(errs.Conflict, op, err)
		}
		return 0, errs.E(errs.Storage, op, err)
	}
	return user.ID, nil
}

// Verify checks password for name and returns the user id. An unknown name
// and a wrong password both fail with errs.InvalidCredential; the wrapped
// cause (ErrUnknownUser or ErrWrongPassword) tells them apart internally.
func (s *CredentialStore) Verify(ctx context.Context, name, password string) (int64, error) {
	const op = "auth.Verify"

	user, err := s.users.GetByName(ctx, name)
	if err != nil {
		return 0, errs.E(errs.Storage, op, err)
	}
	if user == nil {
		s.hasher.Verify(password, s.dummyHash)
		return 0, errs.E(errs.InvalidCredential, op, ErrUnknownUser)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return 0, errs.E(errs.InvalidCredential, op, ErrWrongPassword)
	}
	return user.ID, nil
}
