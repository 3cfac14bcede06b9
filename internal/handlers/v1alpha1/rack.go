package v1alpha1

import (
	"net/http"

	"github.com/dcsim/rack-planner/internal/service/mappers"
	"github.com/go-chi/chi/v5"
)

type MaintenanceCostReply struct {
	RackID          string  `json:"rackId"`
	MaintenanceCost float64 `json:"maintenanceCost"`
}

// (GET /api/v1/racks)
func (h *ServiceHandler) ListRacks(w http.ResponseWriter, r *http.Request) {
	racks, err := h.rackSrv.ListRacks(r.Context())
	if err != nil {
		replyError(w, r, err)
		return
	}
	reply(w, r, http.StatusOK, racks)
}

// (POST /api/v1/racks)
func (h *ServiceHandler) CreateRack(w http.ResponseWriter, r *http.Request) {
	var form mappers.RackCreateForm
	if !decode(w, r, &form) {
		return
	}
	rack, err := h.rackSrv.CreateRack(r.Context(), form)
	if err != nil {
		replyError(w, r, err)
		return
	}
	reply(w, r, http.StatusCreated, rack)
}

// (GET /api/v1/racks/{id})
func (h *ServiceHandler) GetRack(w http.ResponseWriter, r *http.Request) {
	rack, err := h.rackSrv.GetRack(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		replyError(w, r, err)
		return
	}
	reply(w, r, http.StatusOK, rack)
}

// (PUT /api/v1/racks/{id})
func (h *ServiceHandler) UpdateRack(w http.ResponseWriter, r *http.Request) {
	var form mappers.RackUpdateForm
	if !decode(w, r, &form) {
		return
	}
	rack, err := h.rackSrv.UpdateRack(r.Context(), chi.URLParam(r, "id"), form)
	if err != nil {
		replyError(w, r, err)
		return
	}
	reply(w, r, http.StatusOK, rack)
}

// (DELETE /api/v1/racks/{id})
func (h *ServiceHandler) DeleteRack(w http.ResponseWriter, r *http.Request) {
	if err := h.rackSrv.DeleteRack(r.Context(), chi.URLParam(r, "id")); err != nil {
		replyError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// (POST /api/v1/racks/{id}/servers)
func (h *ServiceHandler) AddRackServer(w http.ResponseWriter, r *http.Request) {
	var form mappers.RackServerForm
	if !decode(w, r, &form) {
		return
	}
	rack, err := h.rackSrv.AddServer(r.Context(), chi.URLParam(r, "id"), form)
	if err != nil {
		replyError(w, r, err)
		return
	}
	reply(w, r, http.StatusOK, rack)
}

// (DELETE /api/v1/racks/{id}/servers/{server})
func (h *ServiceHandler) RemoveRackServer(w http.ResponseWriter, r *http.Request) {
	rack, err := h.rackSrv.RemoveServer(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "server"))
	if err != nil {
		replyError(w, r, err)
		return
	}
	reply(w, r, http.StatusOK, rack)
}

// (GET /api/v1/racks/{id}/maintenance-cost)
func (h *ServiceHandler) GetRackMaintenanceCost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	cost, err := h.rackSrv.MaintenanceCost(r.Context(), id)
	if err != nil {
		replyError(w, r, err)
		return
	}
	reply(w, r, http.StatusOK, MaintenanceCostReply{RackID: id, MaintenanceCost: cost})
}
