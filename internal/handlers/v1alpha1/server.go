package v1alpha1

import (
	"net/http"

	"github.com/dcsim/rack-planner/internal/service/mappers"
	"github.com/dcsim/rack-planner/internal/store/model"
	"github.com/go-chi/chi/v5"
)

type MissingComponentsReply struct {
	Server  string   `json:"server"`
	Missing []string `json:"missing"`
}

// (GET /api/v1/servers)
func (h *ServiceHandler) ListServers(w http.ResponseWriter, r *http.Request) {
	servers, err := h.serverSrv.ListServers(r.Context())
	if err != nil {
		replyError(w, r, err)
		return
	}
	reply(w, r, http.StatusOK, servers)
}

// (POST /api/v1/servers)
func (h *ServiceHandler) CreateServer(w http.ResponseWriter, r *http.Request) {
	var form mappers.ServerCreateForm
	if !decode(w, r, &form) {
		return
	}
	server, err := h.serverSrv.CreateServer(r.Context(), form)
	if err != nil {
		replyError(w, r, err)
		return
	}
	reply(w, r, http.StatusCreated, server)
}

// (GET /api/v1/servers/{name})
func (h *ServiceHandler) GetServer(w http.ResponseWriter, r *http.Request) {
	server, err := h.serverSrv.GetServer(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		replyError(w, r, err)
		return
	}
	reply(w, r, http.StatusOK, server)
}

// (PUT /api/v1/servers/{name})
func (h *ServiceHandler) UpdateServer(w http.ResponseWriter, r *http.Request) {
	var form mappers.ServerUpdateForm
	if !decode(w, r, &form) {
		return
	}
	server, err := h.serverSrv.UpdateServer(r.Context(), chi.URLParam(r, "name"), form)
	if err != nil {
		replyError(w, r, err)
		return
	}
	reply(w, r, http.StatusOK, server)
}

// (DELETE /api/v1/servers/{name})
func (h *ServiceHandler) DeleteServer(w http.ResponseWriter, r *http.Request) {
	if err := h.serverSrv.DeleteServer(r.Context(), chi.URLParam(r, "name")); err != nil {
		replyError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// (POST /api/v1/servers/{name}/components)
func (h *ServiceHandler) AddServerComponent(w http.ResponseWriter, r *http.Request) {
	var ref model.ComponentRef
	if !decode(w, r, &ref) {
		return
	}
	server, err := h.serverSrv.AddComponent(r.Context(), chi.URLParam(r, "name"), ref)
	if err != nil {
		replyError(w, r, err)
		return
	}
	reply(w, r, http.StatusOK, server)
}

// (DELETE /api/v1/servers/{name}/components/{component}?type=)
func (h *ServiceHandler) RemoveServerComponent(w http.ResponseWriter, r *http.Request) {
	server, err := h.serverSrv.RemoveComponent(r.Context(),
		chi.URLParam(r, "name"),
		chi.URLParam(r, "component"),
		r.URL.Query().Get("type"),
	)
	if err != nil {
		replyError(w, r, err)
		return
	}
	reply(w, r, http.StatusOK, server)
}

// (GET /api/v1/servers/{name}/missing-components)
func (h *ServiceHandler) GetMissingComponents(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	missing, err := h.serverSrv.MissingComponents(r.Context(), name)
	if err != nil {
		replyError(w, r, err)
		return
	}
	reply(w, r, http.StatusOK, MissingComponentsReply{Server: name, Missing: missing})
}
