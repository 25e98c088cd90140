package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/good-yellow-bee/curlhub/internal/models"
)

type sqliteGroupRepo struct {
	db querier
}

const groupColumns = `id, project_id, name, description, labels, curls, created_at, updated_at`

func (r *sqliteGroupRepo) Create(ctx context.Context, group *models.CurlGroup) error {
	query := `
		INSERT INTO curl_groups (project_id, name, description, labels, curls, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		group.ProjectID, group.Name, group.Description, group.Labels, group.Curls,
		group.CreatedAt, group.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert curl group: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("read curl group id: %w", err)
	}
	group.ID = id
	return nil
}

func (r *sqliteGroupRepo) GetByID(ctx context.Context, id int64) (*models.CurlGroup, error) {
	query := `SELECT ` + groupColumns + ` FROM curl_groups WHERE id = ?`
	group, err := scanGroup(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		//nolint:nilnil
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get curl group by id: %w", err)
	}
	return group, nil
}

// Update rewrites the editable fields. The owning project never changes.
func (r *sqliteGroupRepo) Update(ctx context.Context, group *models.CurlGroup) error {
	query := `
		UPDATE curl_groups
		SET name = ?, description = ?, labels = ?, curls = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		group.Name, group.Description, group.Labels, group.Curls, group.UpdatedAt,
		group.ID,
	)
	if err != nil {
		return fmt.Errorf("update curl group: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("update curl group %d: %w", group.ID, ErrNotFound)
	}
	return nil
}

func (r *sqliteGroupRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM curl_groups WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete curl group: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("delete curl group %d: %w", id, ErrNotFound)
	}
	return nil
}

func (r *sqliteGroupRepo) ListByProject(ctx context.Context, projectID int64) ([]*models.CurlGroup, error) {
	query := `SELECT ` + groupColumns + ` FROM curl_groups WHERE project_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("list curl groups: %w", err)
	}
	defer rows.Close()

	groups := []*models.CurlGroup{}
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("scan curl group: %w", err)
		}
		groups = append(groups, group)
	}
	return groups, rows.Err()
}

func (r *sqliteGroupRepo) DeleteByProject(ctx context.Context, projectID int64) (int64, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM curl_groups WHERE project_id = ?", projectID)
	if err != nil {
		return 0, fmt.Errorf("delete curl groups: %w", err)
	}
	return result.RowsAffected()
}

func scanGroup(row rowScanner) (*models.CurlGroup, error) {
	group := &models.CurlGroup{}
	err := row.Scan(
		&group.ID, &group.ProjectID, &group.Name, &group.Description,
		&group.Labels, &group.Curls, &group.CreatedAt, &group.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return group, nil
}
