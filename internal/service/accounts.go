package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/good-yellow-bee/curlhub/internal/auth"
	"github.com/good-yellow-bee/curlhub/internal/errs"
	"github.com/good-yellow-bee/curlhub/internal/metrics"
	"github.com/good-yellow-bee/curlhub/internal/models"
	"github.com/good-yellow-bee/curlhub/internal/session"
	"github.com/good-yellow-bee/curlhub/internal/storage"
)

// Accounts implements sign-up, log-in, log-out and account deletion.
type Accounts struct {
	store       storage.Storage
	credentials *auth.CredentialStore
	sessions    session.Manager
}

// NewAccounts creates the account operations.
func NewAccounts(store storage.Storage, credentials *auth.CredentialStore, sessions session.Manager) *Accounts {
	return &Accounts{
		store:       store,
		credentials: credentials,
		sessions:    sessions,
	}
}

// SignUp creates an account and logs it in. current is the token presented
// with the request, if any; it is purged before the new session is issued.
func (a *Accounts) SignUp(ctx context.Context, current string, in models.Credentials) (string, error) {
	const op = "service.SignUp"

	in.Username = strings.TrimSpace(in.Username)
	if err := validateInput(op, in); err != nil {
		recordAttempt("signup", err)
		return "", err
	}

	userID, err := a.credentials.CreateAccount(ctx, in.Username, in.Password)
	if err != nil {
		recordAttempt("signup", err)
		return "", err
	}
	log.Printf("user created: %s (id=%d)", in.Username, userID)

	token, err := a.renew(ctx, current, userID)
	recordAttempt("signup", err)
	return token, err
}

// LogIn verifies credentials and issues a fresh session.
func (a *Accounts) LogIn(ctx context.Context, current string, in models.Credentials) (string, error) {
	const op = "service.LogIn"

	in.Username = strings.TrimSpace(in.Username)
	if err := validateInput(op, in); err != nil {
		recordAttempt("login", err)
		return "", err
	}

	userID, err := a.credentials.Verify(ctx, in.Username, in.Password)
	if err != nil {
		if errs.Is(err, errs.InvalidCredential) {
			log.Printf("login failed for %q: %v", in.Username, errors.Unwrap(err))
		}
		recordAttempt("login", err)
		return "", err
	}

	token, err := a.renew(ctx, current, userID)
	recordAttempt("login", err)
	return token, err
}

// LogOut purges token. It always succeeds.
func (a *Accounts) LogOut(ctx context.Context, token string) {
	if err := a.sessions.Purge(ctx, token); err != nil {
		log.Printf("logout error: %v", err)
	}
}

// SessionStatus reports whether token resolves to a live session.
func (a *Accounts) SessionStatus(ctx context.Context, token string) bool {
	_, err := a.sessions.Resolve(ctx, token)
	if err != nil && !errs.Is(err, errs.Unauthenticated) {
		log.Printf("session status error: %v", err)
	}
	return err == nil
}

// DeleteAccount deletes the caller's account and every session it holds.
// Memberships are removed with the user; projects it administered remain.
func (a *Accounts) DeleteAccount(ctx context.Context, token string) error {
	const op = "service.DeleteAccount"

	userID, err := a.sessions.Resolve(ctx, token)
	if err != nil {
		return err
	}

	// Sessions go first: if purging fails the account is left intact and
	// merely logged out, never deleted with live sessions.
	if err := a.sessions.PurgeUser(ctx, userID); err != nil {
		return err
	}
	if err := a.sessions.Purge(ctx, token); err != nil {
		log.Printf("delete account: purge token: %v", err)
	}

	err = a.store.WithTx(ctx, func(tx storage.Repositories) error {
		if err := tx.Users().Delete(ctx, userID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return errs.E(errs.Unauthenticated, op, err)
			}
			return errs.E(errs.Storage, op, err)
		}
		return nil
	})
	if err != nil {
		return storageErr(op, err)
	}

	log.Printf("user deleted: id=%d", userID)
	return nil
}

// renew purges the session presented with the request and issues a new one.
func (a *Accounts) renew(ctx context.Context, current string, userID int64) (string, error) {
	if current != "" {
		if err := a.sessions.Purge(ctx, current); err != nil {
			log.Printf("session renew: purge previous token: %v", err)
		}
	}

	token, err := a.sessions.Issue(ctx, userID)
	if err != nil {
		return "", err
	}
	metrics.SessionsIssued.Inc()
	return token, nil
}

func recordAttempt(operation string, err error) {
	result := "success"
	switch {
	case err == nil:
	case errs.Is(err, errs.InvalidCredential):
		result = "failure"
	case errs.Is(err, errs.Conflict):
		result = "conflict"
	case errs.Is(err, errs.Invalid):
		result = "invalid"
	default:
		result = "error"
	}
	metrics.AuthAttemptsTotal.WithLabelValues(operation, result).Inc()
}
