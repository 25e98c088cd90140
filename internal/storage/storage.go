// Package storage provides database storage interfaces and implementations.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/good-yellow-bee/curlhub/internal/models"
)

var (
	// ErrNotFound is returned by updates and deletes that matched no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert violates a unique constraint.
	ErrDuplicate = errors.New("record already exists")
)

// Repositories gives access to every repository. Inside Storage.WithTx the
// repositories are bound to the transaction.
type Repositories interface {
	Users() UserRepository
	Projects() ProjectRepository
	Members() MemberRepository
	Groups() GroupRepository
	Sessions() SessionRepository
}

// Storage is the main interface for database operations.
type Storage interface {
	// Open initializes the database connection.
	Open() error
	// Close closes the database connection.
	Close() error
	// Migrate runs database migrations.
	Migrate() error
	// Ping checks that the database is reachable.
	Ping(ctx context.Context) error

	Repositories

	// WithTx runs fn inside one transaction. The transaction is committed
	// when fn returns nil and rolled back otherwise. fn must only use the
	// repositories it is given.
	WithTx(ctx context.Context, fn func(tx Repositories) error) error
}

// UserRepository defines operations for user management.
// Lookups return nil, nil when no user matches.
type UserRepository interface {
	// Create inserts the user and sets user.ID. It returns ErrDuplicate
	// when the name is taken.
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByName(ctx context.Context, name string) (*models.User, error)
	// GetIDsByNames maps each existing name to its user id. Unknown names
	// are absent from the result.
	GetIDsByNames(ctx context.Context, names []string) (map[string]int64, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*models.User, error)
	Count(ctx context.Context) (int64, error)
}

// ProjectFilter narrows a project listing.
type ProjectFilter struct {
	// All disables visibility filtering. Used by admin tooling only.
	All bool
	// ViewerID adds the private projects the user administers or
	// collaborates on. Zero means an anonymous viewer.
	ViewerID int64
	// Search keeps projects whose name contains it, ignoring case.
	Search string
}

// ProjectRepository defines operations for project management.
type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	GetByID(ctx context.Context, id int64) (*models.Project, error)
	Update(ctx context.Context, project *models.Project) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter ProjectFilter) ([]*models.Project, error)
}

// MemberRepository manages the admin and collaborator relations of projects.
type MemberRepository interface {
	IsMember(ctx context.Context, projectID, userID int64, role models.MemberRole) (bool, error)
	Add(ctx context.Context, projectID, userID int64, role models.MemberRole) error
	// ListMembers returns the members of one relation ordered by name.
	ListMembers(ctx context.Context, projectID int64, role models.MemberRole) ([]*models.Member, error)
	// ReplaceMembers makes the relation equal userIDs by inserting the
	// missing rows and deleting the extra ones. Both steps run in one
	// transaction.
	ReplaceMembers(ctx context.Context, projectID int64, role models.MemberRole, userIDs []int64) (added, removed int, err error)
	DeleteAll(ctx context.Context, projectID int64) error
}

// GroupRepository defines operations for curl groups.
type GroupRepository interface {
	Create(ctx context.Context, group *models.CurlGroup) error
	GetByID(ctx context.Context, id int64) (*models.CurlGroup, error)
	Update(ctx context.Context, group *models.CurlGroup) error
	Delete(ctx context.Context, id int64) error
	ListByProject(ctx context.Context, projectID int64) ([]*models.CurlGroup, error)
	DeleteByProject(ctx context.Context, projectID int64) (int64, error)
}

// SessionRepository stores issued session token ids for revocation.
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	Get(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteForUser(ctx context.Context, userID int64) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
