package models

import "time"

// CurlGroup is a named set of HTTP request templates inside a project.
// Labels and Curls are opaque to the server.
type CurlGroup struct {
	ID          int64     `json:"id"`
	ProjectID   int64     `json:"project_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Labels      string    `json:"labels"`
	Curls       string    `json:"curls"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewCurlGroup creates a group for projectID from input.
func NewCurlGroup(projectID int64, in GroupInput) *CurlGroup {
	now := time.Now().UTC()
	return &CurlGroup{
		ProjectID:   projectID,
		Name:        in.Name,
		Description: in.Description,
		Labels:      in.Labels,
		Curls:       in.Curls,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
