package v1alpha1

import (
	"net/http"

	"github.com/dcsim/rack-planner/internal/service/mappers"
	"github.com/go-chi/chi/v5"
)

// (GET /api/v1/workspaces)
func (h *ServiceHandler) ListWorkspaces(w http.ResponseWriter, r *http.Request) {
	workspaces, err := h.workspaceSrv.ListWorkspaces(r.Context())
	if err != nil {
		replyError(w, r, err)
		return
	}
	reply(w, r, http.StatusOK, workspaces)
}

// (POST /api/v1/workspaces)
func (h *ServiceHandler) CreateWorkspace(w http.ResponseWriter, r *http.Request) {
	var form mappers.WorkspaceCreateForm
	if !decode(w, r, &form) {
		return
	}
	workspace, err := h.workspaceSrv.CreateWorkspace(r.Context(), form)
	if err != nil {
		replyError(w, r, err)
		return
	}
	reply(w, r, http.StatusCreated, workspace)
}

// (GET /api/v1/workspaces/{name})
func (h *ServiceHandler) GetWorkspace(w http.ResponseWriter, r *http.Request) {
	workspace, err := h.workspaceSrv.GetWorkspace(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		replyError(w, r, err)
		return
	}
	reply(w, r, http.StatusOK, workspace)
}

// (PUT /api/v1/workspaces/{name})
func (h *ServiceHandler) UpdateWorkspace(w http.ResponseWriter, r *http.Request) {
	var form mappers.WorkspaceUpdateForm
	if !decode(w, r, &form) {
		return
	}
	workspace, err := h.workspaceSrv.UpdateWorkspace(r.Context(), chi.URLParam(r, "name"), form)
	if err != nil {
		replyError(w, r, err)
		return
	}
	reply(w, r, http.StatusOK, workspace)
}

// (DELETE /api/v1/workspaces/{name})
func (h *ServiceHandler) DeleteWorkspace(w http.ResponseWriter, r *http.Request) {
	if err := h.workspaceSrv.DeleteWorkspace(r.Context(), chi.URLParam(r, "name")); err != nil {
		replyError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
