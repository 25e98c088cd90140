package models

import (
	"time"
)

// User is an account that can hold sessions and project memberships.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	CreatedAt    time.Time `json:"created_at"`
}

// NewUser creates a new User with an initialized timestamp.
func NewUser(name, passwordHash string) *User {
	return &User{
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
}

// Member is a user listed in one of a project's membership relations.
type Member struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
}

// MemberRole selects a project membership relation.
type MemberRole uint8

const (
	RoleAdmin MemberRole = iota + 1
	RoleCollaborator
)

func (r MemberRole) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleCollaborator:
		return "collaborator"
	default:
		return "unknown"
	}
}
