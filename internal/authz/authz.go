// Package authz decides what a caller may do with a project.
//
// Resolve computes the caller's relation to a project from storage and
// Authorize checks that relation against the policy table. Both run inside
// the calling operation's transaction; decisions are never cached.
package authz

import (
	"context"
	"errors"
	"fmt"

	"github.com/good-yellow-bee/curlhub/internal/errs"
	"github.com/good-yellow-bee/curlhub/internal/metrics"
	"github.com/good-yellow-bee/curlhub/internal/models"
	"github.com/good-yellow-bee/curlhub/internal/storage"
)

// Decision is the caller's resolved relation to a project.
type Decision int

const (
	// Denied means the caller may not see the project.
	Denied Decision = iota
	// ProjectNotFound means the project does not exist.
	ProjectNotFound
	// PublicReader means the project is public and the caller is not a member.
	PublicReader
	// Collaborator means the caller is in the collaborator set.
	Collaborator
	// Admin means the caller is in the admin set.
	Admin
)

// String returns the metric label of the decision.
func (d Decision) String() string {
	switch d {
	case ProjectNotFound:
		return "project_not_found"
	case PublicReader:
		return "public_reader"
	case Collaborator:
		return "collaborator"
	case Admin:
		return "admin"
	default:
		return "denied"
	}
}

// ErrProjectNotFound is the cause of NotFound errors for missing projects.
var ErrProjectNotFound = errors.New("project not found")

// Caller identifies who is asking. The zero value is anonymous.
type Caller struct {
	userID int64
}

// Anonymous returns a caller without a session.
func Anonymous() Caller {
	return Caller{}
}

// User returns an authenticated caller.
func User(id int64) Caller {
	return Caller{userID: id}
}

// Authenticated reports whether the caller has a session.
func (c Caller) Authenticated() bool {
	return c.userID != 0
}

// UserID returns the caller's user id, or zero when anonymous.
func (c Caller) UserID() int64 {
	return c.userID
}

// Source is the storage a decision is resolved from. storage.Repositories
// satisfies it.
type Source interface {
	Projects() storage.ProjectRepository
	Members() storage.MemberRepository
}

// Resolve determines caller's relation to projectID. The project is returned
// alongside the decision unless it does not exist.
func Resolve(ctx context.Context, src Source, caller Caller, projectID int64) (Decision, *models.Project, error) {
	d, project, err := resolve(ctx, src, caller, projectID)
	if err != nil {
		return Denied, nil, err
	}
	metrics.AuthzDecisionsTotal.WithLabelValues(d.String()).Inc()
	return d, project, nil
}

func resolve(ctx context.Context, src Source, caller Caller, projectID int64) (Decision, *models.Project, error) {
	const op = "authz.Resolve"

	project, err := src.Projects().GetByID(ctx, projectID)
	if err != nil {
		return Denied, nil, errs.E(errs.Storage, op, err)
	}
	if project == nil {
		return ProjectNotFound, nil, nil
	}

	if caller.Authenticated() {
		isAdmin, err := src.Members().IsMember(ctx, projectID, caller.userID, models.RoleAdmin)
		if err != nil {
			return Denied, nil, errs.E(errs.Storage, op, err)
		}
		if isAdmin {
			return Admin, project, nil
		}

		isCollaborator, err := src.Members().IsMember(ctx, projectID, caller.userID, models.RoleCollaborator)
		if err != nil {
			return Denied, nil, errs.E(errs.Storage, op, err)
		}
		if isCollaborator {
			return Collaborator, project, nil
		}
	}

	if project.Visibility == models.VisibilityPublic {
		return PublicReader, project, nil
	}
	return Denied, project, nil
}

// Authorize checks decision d against the policy for action a and returns
// nil when the action is allowed.
//
// ProjectNotFound fails with errs.NotFound. An anonymous caller fails with
// errs.Unauthenticated wherever a session would be needed; an authenticated
// caller without enough rights fails with errs.Forbidden.
func Authorize(d Decision, a Action, caller Caller) error {
	const op = "authz.Authorize"

	if d == ProjectNotFound {
		return errs.E(errs.NotFound, op, ErrProjectNotFound)
	}

	if policy[a][d] {
		if a.needsSession() && !caller.Authenticated() {
			return errs.E(errs.Unauthenticated, op, fmt.Errorf("%s requires a session", a))
		}
		return nil
	}

	if !caller.Authenticated() {
		return errs.E(errs.Unauthenticated, op, fmt.Errorf("%s requires a session", a))
	}
	return errs.E(errs.Forbidden, op, fmt.Errorf("%s not allowed for %s", a, d))
}
