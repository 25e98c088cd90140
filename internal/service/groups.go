package service

import (
	"context"
	"errors"
	"strings"

	"github.com/good-yellow-bee/curlhub/internal/authz"
	"github.com/good-yellow-bee/curlhub/internal/errs"
	"github.com/good-yellow-bee/curlhub/internal/models"
	"github.com/good-yellow-bee/curlhub/internal/storage"
)

// ErrGroupNotFound is the cause of NotFound errors for missing curl groups.
var ErrGroupNotFound = errors.New("curl group not found")

// CreateGroup adds a curl group to a project.
func (p *Projects) CreateGroup(ctx context.Context, token string, projectID int64, in models.GroupInput) (int64, error) {
	const op = "service.CreateGroup"

	caller, err := requireCaller(ctx, p.sessions, token)
	if err != nil {
		return 0, err
	}

	var group *models.CurlGroup
	err = p.store.WithTx(ctx, func(tx storage.Repositories) error {
		if _, err := authorize(ctx, tx, caller, projectID, authz.ActionWriteGroup); err != nil {
			return err
		}

		in.Name = strings.TrimSpace(in.Name)
		if err := validateInput(op, in); err != nil {
			return err
		}

		group = models.NewCurlGroup(projectID, in)
		group.CreatedAt = p.now()
		group.UpdatedAt = group.CreatedAt
		return tx.Groups().Create(ctx, group)
	})
	if err != nil {
		return 0, storageErr(op, err)
	}
	return group.ID, nil
}

// GetGroup returns a curl group if the caller may read its project.
func (p *Projects) GetGroup(ctx context.Context, token string, id int64) (*models.CurlGroup, error) {
	const op = "service.GetGroup"

	caller, err := optionalCaller(ctx, p.sessions, token)
	if err != nil {
		return nil, err
	}

	var group *models.CurlGroup
	err = p.store.WithTx(ctx, func(tx storage.Repositories) error {
		g, err := findGroup(ctx, tx, op, id)
		if err != nil {
			return err
		}
		if _, err := authorize(ctx, tx, caller, g.ProjectID, authz.ActionRead); err != nil {
			return err
		}
		group = g
		return nil
	})
	if err != nil {
		return nil, storageErr(op, err)
	}
	return group, nil
}

// UpdateGroup replaces a curl group's fields.
func (p *Projects) UpdateGroup(ctx context.Context, token string, id int64, in models.GroupInput) error {
	const op = "service.UpdateGroup"

	caller, err := requireCaller(ctx, p.sessions, token)
	if err != nil {
		return err
	}

	err = p.store.WithTx(ctx, func(tx storage.Repositories) error {
		group, err := findGroup(ctx, tx, op, id)
		if err != nil {
			return err
		}
		if _, err := authorize(ctx, tx, caller, group.ProjectID, authz.ActionWriteGroup); err != nil {
			return err
		}

		in.Name = strings.TrimSpace(in.Name)
		if err := validateInput(op, in); err != nil {
			return err
		}

		group.Name = in.Name
		group.Description = in.Description
		group.Labels = in.Labels
		group.Curls = in.Curls
		group.UpdatedAt = p.now()
		return tx.Groups().Update(ctx, group)
	})
	return storageErr(op, err)
}

// DeleteGroup removes a curl group. Public readers may not delete groups.
func (p *Projects) DeleteGroup(ctx context.Context, token string, id int64) error {
	const op = "service.DeleteGroup"

	caller, err := requireCaller(ctx, p.sessions, token)
	if err != nil {
		return err
	}

	err = p.store.WithTx(ctx, func(tx storage.Repositories) error {
		group, err := findGroup(ctx, tx, op, id)
		if err != nil {
			return err
		}
		if _, err := authorize(ctx, tx, caller, group.ProjectID, authz.ActionDeleteGroup); err != nil {
			return err
		}
		if err := tx.Groups().Delete(ctx, id); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return errs.E(errs.NotFound, op, ErrGroupNotFound)
			}
			return err
		}
		return nil
	})
	return storageErr(op, err)
}

func findGroup(ctx context.Context, tx storage.Repositories, op string, id int64) (*models.CurlGroup, error) {
	group, err := tx.Groups().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, errs.E(errs.NotFound, op, ErrGroupNotFound)
	}
	return group, nil
}
