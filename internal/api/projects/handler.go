// Package projects serves the project and curl group endpoints.
package projects

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/good-yellow-bee/curlhub/internal/api/middleware"
	"github.com/good-yellow-bee/curlhub/internal/api/render"
	"github.com/good-yellow-bee/curlhub/internal/models"
)

const maxBodyBytes = 1 << 20

// Service is the project behaviour the handler needs.
type Service interface {
	List(ctx context.Context, token, search string) ([]*models.Project, error)
	Create(ctx context.Context, token string, in models.ProjectInput) (int64, error)
	Get(ctx context.Context, token string, id int64) (*models.ProjectDetail, error)
	Update(ctx context.Context, token string, id int64, in models.ProjectUpdate) error
	Delete(ctx context.Context, token string, id int64) error
	Permissions(ctx context.Context, token string, id int64) (*models.ProjectPermissions, error)

	CreateGroup(ctx context.Context, token string, projectID int64, in models.GroupInput) (int64, error)
	GetGroup(ctx context.Context, token string, id int64) (*models.CurlGroup, error)
	UpdateGroup(ctx context.Context, token string, id int64, in models.GroupInput) error
	DeleteGroup(ctx context.Context, token string, id int64) error

	Authenticate(ctx context.Context, token string) error
}

// Handler handles project and group endpoints.
type Handler struct {
	svc Service
}

// NewHandler creates a new projects handler.
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// List returns the projects visible to the caller.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	search := strings.TrimSpace(r.URL.Query().Get("search"))

	projects, err := h.svc.List(r.Context(), middleware.GetToken(r.Context()), search)
	if err != nil {
		render.Fail(w, "list projects", err)
		return
	}
	if projects == nil {
		projects = []*models.Project{}
	}
	render.OK(w, projects)
}

// Create creates a project administered by the caller.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in models.ProjectInput
	if !h.decode(w, r, "create project", &in) {
		return
	}

	id, err := h.svc.Create(r.Context(), middleware.GetToken(r.Context()), in)
	if err != nil {
		render.Fail(w, "create project", err)
		return
	}
	render.Created(w, render.IDResponse{ID: id})
}

// Get returns a project with its members and groups.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	project, err := h.svc.Get(r.Context(), middleware.GetToken(r.Context()), id)
	if err != nil {
		render.Fail(w, "get project", err)
		return
	}
	render.OK(w, project)
}

// Update replaces a project's fields and member lists.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in models.ProjectUpdate
	if !h.decode(w, r, "update project", &in) {
		return
	}

	if err := h.svc.Update(r.Context(), middleware.GetToken(r.Context()), id, in); err != nil {
		render.Fail(w, "update project", err)
		return
	}
	render.NoContent(w)
}

// Delete removes a project with its memberships and groups.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), middleware.GetToken(r.Context()), id); err != nil {
		render.Fail(w, "delete project", err)
		return
	}
	render.NoContent(w)
}

// Permissions reports the caller's role in a project.
func (h *Handler) Permissions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	perms, err := h.svc.Permissions(r.Context(), middleware.GetToken(r.Context()), id)
	if err != nil {
		render.Fail(w, "project permissions", err)
		return
	}
	render.OK(w, perms)
}

// pathID parses the {id} URL parameter. Malformed ids are rejected before
// any session or storage work.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		render.JSONError(w, render.NewBadRequest("invalid id"))
		return 0, false
	}
	return id, true
}

// decode reads the JSON body into dst. An unreadable body is reported as
// 400 only once the caller's session checks out; without one the request
// fails with 401 like any other mutation.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, op string, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if authErr := h.svc.Authenticate(r.Context(), middleware.GetToken(r.Context())); authErr != nil {
			render.Fail(w, op, authErr)
			return false
		}
		render.JSONError(w, render.NewBadRequest("invalid request body"))
		return false
	}
	return true
}
