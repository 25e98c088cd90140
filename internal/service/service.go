// Package service implements the account and project operations.
//
// Every project operation follows the same pipeline: resolve the session,
// resolve and check authorization, validate the request, then mutate
// storage inside one transaction. Any failure aborts without partial
// effects.
package service

import (
	"context"

	"github.com/good-yellow-bee/curlhub/internal/authz"
	"github.com/good-yellow-bee/curlhub/internal/errs"
	"github.com/good-yellow-bee/curlhub/internal/models"
	"github.com/good-yellow-bee/curlhub/internal/session"
	"github.com/good-yellow-bee/curlhub/internal/storage"
)

// optionalCaller resolves token for read operations. A missing or invalid
// token yields an anonymous caller.
func optionalCaller(ctx context.Context, sessions session.Manager, token string) (authz.Caller, error) {
	if token == "" {
		return authz.Anonymous(), nil
	}
	userID, err := sessions.Resolve(ctx, token)
	if err != nil {
		if errs.Is(err, errs.Unauthenticated) {
			return authz.Anonymous(), nil
		}
		return authz.Caller{}, err
	}
	return authz.User(userID), nil
}

// requireCaller resolves token for mutations. It fails with
// errs.Unauthenticated before any resource is looked up.
func requireCaller(ctx context.Context, sessions session.Manager, token string) (authz.Caller, error) {
	userID, err := sessions.Resolve(ctx, token)
	if err != nil {
		return authz.Caller{}, err
	}
	return authz.User(userID), nil
}

// Authenticate reports whether token names a live session.
func (p *Projects) Authenticate(ctx context.Context, token string) error {
	_, err := requireCaller(ctx, p.sessions, token)
	return err
}

// authorize resolves the caller's relation to projectID inside tx and checks
// it against action.
func authorize(ctx context.Context, tx storage.Repositories, caller authz.Caller, projectID int64, action authz.Action) (*models.Project, error) {
	d, project, err := authz.Resolve(ctx, tx, caller, projectID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(d, action, caller); err != nil {
		return nil, err
	}
	return project, nil
}

// storageErr classifies an unclassified err as a storage failure.
func storageErr(op string, err error) error {
	return errs.Wrap(op, err)
}

func memberNames(members []*models.Member) []string {
	names := make([]string, len(members))
	for i, m := range members {
		names[i] = m.Name
	}
	return names
}
