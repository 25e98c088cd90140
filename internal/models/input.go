package models

// Credentials is the request body of sign-up and log-in.
type Credentials struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=1024"`
}

// ProjectInput carries the editable project fields.
type ProjectInput struct {
	Name         string     `json:"name" validate:"required,max=200"`
	Description  string     `json:"description" validate:"max=5000"`
	Environments string     `json:"environments"`
	Visibility   Visibility `json:"visibility" validate:"required"`
}

// ProjectUpdate replaces a project's fields and both membership sets.
// Admins and Collaborators are user names and are taken as the complete new sets.
type ProjectUpdate struct {
	ProjectInput
	Admins        []string `json:"admins" validate:"dive,required,max=64"`
	Collaborators []string `json:"collaborators" validate:"dive,required,max=64"`
}

// GroupInput carries the editable curl group fields.
type GroupInput struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=5000"`
	Labels      string `json:"labels"`
	Curls       string `json:"curls"`
}
