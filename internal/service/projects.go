package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/good-yellow-bee/curlhub/internal/authz"
	"github.com/good-yellow-bee/curlhub/internal/errs"
	"github.com/good-yellow-bee/curlhub/internal/models"
	"github.com/good-yellow-bee/curlhub/internal/session"
	"github.com/good-yellow-bee/curlhub/internal/storage"
)

// ErrNoAdmins is the cause when an update would leave a project without admins.
var ErrNoAdmins = errors.New("a project must keep at least one admin")

// Projects implements the project and curl group operations.
type Projects struct {
	store    storage.Storage
	sessions session.Manager
	now      func() time.Time
}

// NewProjects creates the project operations.
func NewProjects(store storage.Storage, sessions session.Manager) *Projects {
	return &Projects{
		store:    store,
		sessions: sessions,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// List returns the projects visible to the caller: public projects, plus
// those the caller administers or collaborates on. search filters by name.
func (p *Projects) List(ctx context.Context, token, search string) ([]*models.Project, error) {
	const op = "service.ListProjects"

	caller, err := optionalCaller(ctx, p.sessions, token)
	if err != nil {
		return nil, err
	}

	projects, err := p.store.Projects().List(ctx, storage.ProjectFilter{
		ViewerID: caller.UserID(),
		Search:   search,
	})
	if err != nil {
		return nil, storageErr(op, err)
	}
	return projects, nil
}

// Create stores a new project with the caller as its only admin.
func (p *Projects) Create(ctx context.Context, token string, in models.ProjectInput) (int64, error) {
	const op = "service.CreateProject"

	caller, err := requireCaller(ctx, p.sessions, token)
	if err != nil {
		return 0, err
	}

	in.Name = strings.TrimSpace(in.Name)
	if err := validateInput(op, in); err != nil {
		return 0, err
	}

	project := models.NewProject(in.Name, in.Description, in.Environments, in.Visibility)
	project.CreatedAt = p.now()
	project.UpdatedAt = project.CreatedAt

	err = p.store.WithTx(ctx, func(tx storage.Repositories) error {
		if err := tx.Projects().Create(ctx, project); err != nil {
			return err
		}
		return tx.Members().Add(ctx, project.ID, caller.UserID(), models.RoleAdmin)
	})
	if err != nil {
		return 0, storageErr(op, err)
	}
	return project.ID, nil
}

// Get returns a project with its member names and groups.
func (p *Projects) Get(ctx context.Context, token string, id int64) (*models.ProjectDetail, error) {
	const op = "service.GetProject"

	caller, err := optionalCaller(ctx, p.sessions, token)
	if err != nil {
		return nil, err
	}

	var detail *models.ProjectDetail
	err = p.store.WithTx(ctx, func(tx storage.Repositories) error {
		project, err := authorize(ctx, tx, caller, id, authz.ActionRead)
		if err != nil {
			return err
		}

		admins, err := tx.Members().ListMembers(ctx, id, models.RoleAdmin)
		if err != nil {
			return err
		}
		collaborators, err := tx.Members().ListMembers(ctx, id, models.RoleCollaborator)
		if err != nil {
			return err
		}
		groups, err := tx.Groups().ListByProject(ctx, id)
		if err != nil {
			return err
		}

		detail = &models.ProjectDetail{
			Project:       *project,
			Admins:        memberNames(admins),
			Collaborators: memberNames(collaborators),
			Groups:        groups,
		}
		return nil
	})
	if err != nil {
		return nil, storageErr(op, err)
	}
	return detail, nil
}

// Update replaces a project's fields and both membership sets. Only admins
// may update. The admin set may not become empty and every member name must
// belong to an existing user.
func (p *Projects) Update(ctx context.Context, token string, id int64, in models.ProjectUpdate) error {
	const op = "service.UpdateProject"

	caller, err := requireCaller(ctx, p.sessions, token)
	if err != nil {
		return err
	}

	err = p.store.WithTx(ctx, func(tx storage.Repositories) error {
		project, err := authorize(ctx, tx, caller, id, authz.ActionAdmin)
		if err != nil {
			return err
		}

		in.Name = strings.TrimSpace(in.Name)
		if err := validateInput(op, in); err != nil {
			return err
		}
		admins := normalizeNames(in.Admins)
		collaborators := normalizeNames(in.Collaborators)
		if len(admins) == 0 {
			return errs.E(errs.Invalid, op, ErrNoAdmins)
		}

		ids, err := tx.Users().GetIDsByNames(ctx, append(append([]string{}, admins...), collaborators...))
		if err != nil {
			return err
		}
		adminIDs, err := lookupIDs(op, ids, admins)
		if err != nil {
			return err
		}
		collaboratorIDs, err := lookupIDs(op, ids, collaborators)
		if err != nil {
			return err
		}

		project.Name = in.Name
		project.Description = in.Description
		project.Environments = in.Environments
		project.Visibility = in.Visibility
		project.UpdatedAt = p.now()
		if err := tx.Projects().Update(ctx, project); err != nil {
			return err
		}

		if _, _, err := tx.Members().ReplaceMembers(ctx, id, models.RoleAdmin, adminIDs); err != nil {
			return err
		}
		_, _, err = tx.Members().ReplaceMembers(ctx, id, models.RoleCollaborator, collaboratorIDs)
		return err
	})
	return storageErr(op, err)
}

// Delete removes a project with its groups and memberships. Only admins may
// delete. Deleting an already deleted project reports NotFound.
func (p *Projects) Delete(ctx context.Context, token string, id int64) error {
	const op = "service.DeleteProject"

	caller, err := requireCaller(ctx, p.sessions, token)
	if err != nil {
		return err
	}

	err = p.store.WithTx(ctx, func(tx storage.Repositories) error {
		if _, err := authorize(ctx, tx, caller, id, authz.ActionAdmin); err != nil {
			return err
		}
		if _, err := tx.Groups().DeleteByProject(ctx, id); err != nil {
			return err
		}
		if err := tx.Members().DeleteAll(ctx, id); err != nil {
			return err
		}
		if err := tx.Projects().Delete(ctx, id); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return errs.E(errs.NotFound, op, authz.ErrProjectNotFound)
			}
			return err
		}
		return nil
	})
	return storageErr(op, err)
}

// Permissions reports whether the caller administers or collaborates on a
// project. It never fails for lack of a session or rights.
func (p *Projects) Permissions(ctx context.Context, token string, id int64) (*models.ProjectPermissions, error) {
	const op = "service.ProjectPermissions"

	caller, err := optionalCaller(ctx, p.sessions, token)
	if err != nil {
		return nil, err
	}

	perms := &models.ProjectPermissions{}
	err = p.store.WithTx(ctx, func(tx storage.Repositories) error {
		d, _, err := authz.Resolve(ctx, tx, caller, id)
		if err != nil {
			return err
		}
		if d == authz.ProjectNotFound {
			return errs.E(errs.NotFound, op, authz.ErrProjectNotFound)
		}
		if !caller.Authenticated() {
			return nil
		}

		perms.IsUserAdmin = d == authz.Admin
		perms.IsCollaborator, err = tx.Members().IsMember(ctx, id, caller.UserID(), models.RoleCollaborator)
		return err
	})
	if err != nil {
		return nil, storageErr(op, err)
	}
	return perms, nil
}

// lookupIDs maps names to user ids and fails with errs.Invalid naming every
// unknown user.
func lookupIDs(op string, ids map[string]int64, names []string) ([]int64, error) {
	out := make([]int64, 0, len(names))
	var unknown []string
	for _, n := range names {
		id, ok := ids[n]
		if !ok {
			unknown = append(unknown, n)
			continue
		}
		out = append(out, id)
	}
	if len(unknown) > 0 {
		return nil, errs.E(errs.Invalid, op, fmt.Errorf("unknown users: %s", strings.Join(unknown, ", ")))
	}
	return out, nil
}
