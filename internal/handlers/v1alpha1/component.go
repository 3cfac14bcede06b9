package v1alpha1

import (
	"net/http"

	"github.com/dcsim/rack-planner/internal/service/mappers"
	"github.com/dcsim/rack-planner/internal/store/model"
	"github.com/go-chi/chi/v5"
)

// (GET /api/v1/components)
func (h *ServiceHandler) ListComponents(w http.ResponseWriter, r *http.Request) {
	components, err := h.componentSrv.ListComponents(r.Context())
	if err != nil {
		replyError(w, r, err)
		return
	}
	reply(w, r, http.StatusOK, components)
}

// (POST /api/v1/components)
func (h *ServiceHandler) CreateComponent(w http.ResponseWriter, r *http.Request) {
	var component model.Component
	if !decode(w, r, &component) {
		return
	}
	created, err := h.componentSrv.CreateComponent(r.Context(), component)
	if err != nil {
		replyError(w, r, err)
		return
	}
	reply(w, r, http.StatusCreated, created)
}

// (GET /api/v1/components/{name})
func (h *ServiceHandler) GetComponent(w http.ResponseWriter, r *http.Request) {
	component, err := h.componentSrv.GetComponent(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		replyError(w, r, err)
		return
	}
	reply(w, r, http.StatusOK, component)
}

// (PUT /api/v1/components/{name})
func (h *ServiceHandler) UpdateComponent(w http.ResponseWriter, r *http.Request) {
	var form mappers.ComponentUpdateForm
	if !decode(w, r, &form) {
		return
	}
	component, err := h.componentSrv.UpdateComponent(r.Context(), chi.URLParam(r, "name"), form)
	if err != nil {
		replyError(w, r, err)
		return
	}
	reply(w, r, http.StatusOK, component)
}

// (DELETE /api/v1/components/{name})
func (h *ServiceHandler) DeleteComponent(w http.ResponseWriter, r *http.Request) {
	if err := h.componentSrv.DeleteComponent(r.Context(), chi.URLParam(r, "name")); err != nil {
		replyError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
