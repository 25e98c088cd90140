package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/good-yellow-bee/curlhub/internal/models"
)

type sqliteProjectRepo struct {
	db querier
}

const projectColumns = `p.id, p.name, p.description, p.environments, p.visibility, p.created_at, p.updated_at`

func (r *sqliteProjectRepo) Create(ctx context.Context, project *models.Project) error {
	if !project.Visibility.IsValid() {
		return fmt.Errorf("insert project: invalid visibility")
	}

	query := `
		INSERT INTO projects (name, description, environments, visibility, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		project.Name, project.Description, project.Environments,
		project.Visibility.String(), project.CreatedAt, project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("read project id: %w", err)
	}
	project.ID = id
	return nil
}

func (r *sqliteProjectRepo) GetByID(ctx context.Context, id int64) (*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects p WHERE p.id = ?`
	project, err := scanProject(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		//nolint:nilnil
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get project by id: %w", err)
	}
	return project, nil
}

func (r *sqliteProjectRepo) Update(ctx context.Context, project *models.Project) error {
	if !project.Visibility.IsValid() {
		return fmt.Errorf("update project: invalid visibility")
	}

	query := `
		UPDATE projects
		SET name = ?, description = ?, environments = ?, visibility = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		project.Name, project.Description, project.Environments,
		project.Visibility.String(), project.UpdatedAt,
		project.ID,
	)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("update project %d: %w", project.ID, ErrNotFound)
	}
	return nil
}

func (r *sqliteProjectRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("delete project %d: %w", id, ErrNotFound)
	}
	return nil
}

func (r *sqliteProjectRepo) List(ctx context.Context, filter ProjectFilter) ([]*models.Project, error) {
	var (
		where []string
		args  []any
	)

	if !filter.All {
		if filter.ViewerID != 0 {
			where = append(where, `(p.visibility = 'Public'
				OR EXISTS (SELECT 1 FROM project_admins a WHERE a.project_id = p.id AND a.user_id = ?)
				OR EXISTS (SELECT 1 FROM project_collaborators c WHERE c.project_id = p.id AND c.user_id = ?))`)
			args = append(args, filter.ViewerID, filter.ViewerID)
		} else {
			where = append(where, `p.visibility = 'Public'`)
		}
	}

	if search := strings.TrimSpace(filter.Search); search != "" {
		where = append(where, `LOWER(p.name) LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(strings.ToLower(search))+"%")
	}

	query := `SELECT ` + projectColumns + ` FROM projects p`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY p.name, p.id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	projects := []*models.Project{}
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, project)
	}
	return projects, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*models.Project, error) {
	project := &models.Project{}
	var visibility string
	err := row.Scan(
		&project.ID, &project.Name, &project.Description, &project.Environments,
		&visibility, &project.CreatedAt, &project.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	project.Visibility, err = models.ParseVisibility(visibility)
	if err != nil {
		return nil, err
	}
	return project, nil
}

// escapeLike escapes LIKE wildcards so s matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
