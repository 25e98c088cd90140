package models

import (
	"fmt"
	"strings"
	"time"
)

// Visibility controls who may read a project.
type Visibility uint8

const (
	// VisibilityUnset is the zero value; it is never stored.
	VisibilityUnset Visibility = iota
	VisibilityPublic
	VisibilityPrivate
)

// ParseVisibility converts "Public" or "Private" (any case) to a Visibility.
func ParseVisibility(s string) (Visibility, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "public":
		return VisibilityPublic, nil
	case "private":
		return VisibilityPrivate, nil
	default:
		return VisibilityUnset, fmt.Errorf("invalid visibility %q: must be Public or Private", s)
	}
}

func (v Visibility) String() string {
	switch v {
	case VisibilityPublic:
		return "Public"
	case VisibilityPrivate:
		return "Private"
	default:
		return ""
	}
}

// IsValid reports whether v is Public or Private.
func (v Visibility) IsValid() bool {
	return v == VisibilityPublic || v == VisibilityPrivate
}

// MarshalText implements encoding.TextMarshaler.
func (v Visibility) MarshalText() ([]byte, error) {
	if !v.IsValid() {
		return nil, fmt.Errorf("invalid visibility %d", v)
	}
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Visibility) UnmarshalText(b []byte) error {
	parsed, err := ParseVisibility(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Project is a shared collection of curl groups.
type Project struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Environments string     `json:"environments"`
	Visibility   Visibility `json:"visibility"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// NewProject creates a new Project with initialized timestamps.
func NewProject(name, description, environments string, visibility Visibility) *Project {
	now := time.Now().UTC()
	return &Project{
		Name:         name,
		Description:  description,
		Environments: environments,
		Visibility:   visibility,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// ProjectDetail is a project together with its members and groups.
type ProjectDetail struct {
	Project
	Admins        []string     `json:"admins"`
	Collaborators []string     `json:"collaborators"`
	Groups        []*CurlGroup `json:"groups"`
}

// ProjectPermissions describes the caller's relation to a project.
type ProjectPermissions struct {
	IsUserAdmin    bool `json:"is_user_admin"`
	IsCollaborator bool `json:"is_collaborator"`
}
