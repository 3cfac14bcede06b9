package v1alpha1

import (
	"net/http"

	"github.com/dcsim/rack-planner/internal/service/mappers"
	"github.com/dcsim/rack-planner/internal/store/model"
	"github.com/go-chi/chi/v5"
)

// (GET /api/v1/networks)
func (h *ServiceHandler) ListNetworks(w http.ResponseWriter, r *http.Request) {
	networks, err := h.networkSrv.ListNetworks(r.Context())
	if err != nil {
		replyError(w, r, err)
		return
	}
	reply(w, r, http.StatusOK, networks)
}

// (POST /api/v1/networks)
func (h *ServiceHandler) CreateNetwork(w http.ResponseWriter, r *http.Request) {
	var network model.Network
	if !decode(w, r, &network) {
		return
	}
	created, err := h.networkSrv.CreateNetwork(r.Context(), network)
	if err != nil {
		replyError(w, r, err)
		return
	}
	reply(w, r, http.StatusCreated, created)
}

// (GET /api/v1/networks/{name})
func (h *ServiceHandler) GetNetwork(w http.ResponseWriter, r *http.Request) {
	network, err := h.networkSrv.GetNetwork(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		replyError(w, r, err)
		return
	}
	reply(w, r, http.StatusOK, network)
}

// (PUT /api/v1/networks/{name})
func (h *ServiceHandler) UpdateNetwork(w http.ResponseWriter, r *http.Request) {
	var form mappers.NetworkUpdateForm
	if !decode(w, r, &form) {
		return
	}
	network, err := h.networkSrv.UpdateNetwork(r.Context(), chi.URLParam(r, "name"), form)
	if err != nil {
		replyError(w, r, err)
		return
	}
	reply(w, r, http.StatusOK, network)
}

// (DELETE /api/v1/networks/{name})
func (h *ServiceHandler) DeleteNetwork(w http.ResponseWriter, r *http.Request) {
	if err := h.networkSrv.DeleteNetwork(r.Context(), chi.URLParam(r, "name")); err != nil {
		replyError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
