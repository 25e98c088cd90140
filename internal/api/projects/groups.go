package projects

import (
	"net/http"

	"github.com/good-yellow-bee/curlhub/internal/api/middleware"
	"github.com/good-yellow-bee/curlhub/internal/api/render"
	"github.com/good-yellow-bee/curlhub/internal/models"
)

// CreateGroup adds a curl group to the project named by {id}.
func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r)
	if !ok {
		return
	}
	var in models.GroupInput
	if !h.decode(w, r, "create group", &in) {
		return
	}

	id, err := h.svc.CreateGroup(r.Context(), middleware.GetToken(r.Context()), projectID, in)
	if err != nil {
		render.Fail(w, "create group", err)
		return
	}
	render.Created(w, render.IDResponse{ID: id})
}

func (h *Handler) GetGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	group, err := h.svc.GetGroup(r.Context(), middleware.GetToken(r.Context()), id)
	if err != nil {
		render.Fail(w, "get group", err)
		return
	}
	render.OK(w, group)
}

func (h *Handler) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in models.GroupInput
	if !h.decode(w, r, "update group", &in) {
		return
	}

	if err := h.svc.UpdateGroup(r.Context(), middleware.GetToken(r.Context()), id, in); err != nil {
		render.Fail(w, "update group", err)
		return
	}
	render.NoContent(w)
}

func (h *Handler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.svc.DeleteGroup(r.Context(), middleware.GetToken(r.Context()), id); err != nil {
		render.Fail(w, "delete group", err)
		return
	}
	render.NoContent(w)
}
