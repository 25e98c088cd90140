package storage

import (
	"context"
	"fmt"

	"github.com/good-yellow-bee/curlhub/internal/models"
)

type sqliteMemberRepo struct {
	db querier
}

// memberTable maps a role to its relation table. Table names are never
// taken from input.
func memberTable(role models.MemberRole) (string, error) {
	switch role {
	case models.RoleAdmin:
		return "project_admins", nil
	case models.RoleCollaborator:
		return "project_collaborators", nil
	default:
		return "", fmt.Errorf("unknown member role %d", role)
	}
}

func (r *sqliteMemberRepo) IsMember(ctx context.Context, projectID, userID int64, role models.MemberRole) (bool, error) {
	table, err := memberTable(role)
	if err != nil {
		return false, err
	}

	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM ` + table + ` WHERE project_id = ? AND user_id = ?)`
	if err := r.db.QueryRowContext(ctx, query, projectID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check %s membership: %w", role, err)
	}
	return exists, nil
}

func (r *sqliteMemberRepo) Add(ctx context.Context, projectID, userID int64, role models.MemberRole) error {
	table, err := memberTable(role)
	if err != nil {
		return err
	}

	query := `INSERT OR IGNORE INTO ` + table + ` (project_id, user_id) VALUES (?, ?)`
	if _, err := r.db.ExecContext(ctx, query, projectID, userID); err != nil {
		return fmt.Errorf("add %s: %w", role, err)
	}
	return nil
}

func (r *sqliteMemberRepo) ListMembers(ctx context.Context, projectID int64, role models.MemberRole) ([]*models.Member, error) {
	return listMembers(ctx, r.db, projectID, role)
}

func listMembers(ctx context.Context, q querier, projectID int64, role models.MemberRole) ([]*models.Member, error) {
	table, err := memberTable(role)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT u.id, u.name
		FROM ` + table + ` m
		INNER JOIN users u ON u.id = m.user_id
		WHERE m.project_id = ?
		ORDER BY u.name
	`
	rows, err := q.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("list %s members: %w", role, err)
	}
	defer rows.Close()

	members := []*models.Member{}
	for rows.Next() {
		member := &models.Member{}
		if err := rows.Scan(&member.UserID, &member.Name); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, member)
	}
	return members, rows.Err()
}

func (r *sqliteMemberRepo) ReplaceMembers(ctx context.Context, projectID int64, role models.MemberRole, userIDs []int64) (added, removed int, err error) {
	table, err := memberTable(role)
	if err != nil {
		return 0, 0, err
	}

	err = inTx(ctx, r.db, func(q querier) error {
		current, err := listMembers(ctx, q, projectID, role)
		if err != nil {
			return err
		}

		want := make(map[int64]struct{}, len(userIDs))
		for _, id := range userIDs {
			want[id] = struct{}{}
		}
		have := make(map[int64]struct{}, len(current))
		for _, m := range current {
			have[m.UserID] = struct{}{}
		}

		del := `DELETE FROM ` + table + ` WHERE project_id = ? AND user_id = ?`
		for id := range have {
			if _, ok := want[id]; ok {
				continue
			}
			if _, err := q.ExecContext(ctx, del, projectID, id); err != nil {
				return fmt.Errorf("remove %s: %w", role, err)
			}
			removed++
		}

		ins := `INSERT INTO ` + table + ` (project_id, user_id) VALUES (?, ?)`
		for id := range want {
			if _, ok := have[id]; ok {
				continue
			}
			if _, err := q.ExecContext(ctx, ins, projectID, id); err != nil {
				return fmt.Errorf("add %s: %w", role, err)
			}
			added++
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return added, removed, nil
}

func (r *sqliteMemberRepo) DeleteAll(ctx context.Context, projectID int64) error {
	return inTx(ctx, r.db, func(q querier) error {
		for _, role := range []models.MemberRole{models.RoleAdmin, models.RoleCollaborator} {
			table, _ := memberTable(role)
			if _, err := q.ExecContext(ctx, `DELETE FROM `+table+` WHERE project_id = ?`, projectID); err != nil {
				return fmt.Errorf("delete %s members: %w", role, err)
			}
		}
		return nil
	})
}
