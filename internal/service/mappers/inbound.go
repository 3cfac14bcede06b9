package mappers

import (
	"github.com/dcsim/rack-planner/internal/store/model"
)

// ServerCreateForm is what clients send to create a server. Derived fields
// (prices, network) are not part of it and are computed by the service.
type ServerCreateForm struct {
	Name            string               `json:"name"`
	Description     string               `json:"description"`
	Components      []model.ComponentRef `json:"components"`
	OperatingSystem string               `json:"operatingSystem"`
	IPAddress       string               `json:"ipAddress"`
	HealthStatus    string               `json:"healthStatus"`
	RackName        string               `json:"rackName"`
}

// ServerUpdateForm carries a partial update. Nil fields are left untouched.
type ServerUpdateForm struct {
	Description     *string               `json:"description,omitempty"`
	Components      *[]model.ComponentRef `json:"components,omitempty"`
	OperatingSystem *string               `json:"operatingSystem,omitempty"`
	IPAddress       *string               `json:"ipAddress,omitempty"`
	HealthStatus    *string               `json:"healthStatus,omitempty"`
}

type RackCreateForm struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	Units         int    `json:"units"`
	WorkspaceName string `json:"workspaceName"`
	HealthStatus  string `json:"healthStatus"`
	PowerStatus   string `json:"powerStatus"`
}

type RackUpdateForm struct {
	Description  *string `json:"description,omitempty"`
	Units        *int    `json:"units,omitempty"`
	HealthStatus *string `json:"healthStatus,omitempty"`
	PowerStatus  *string `json:"powerStatus,omitempty"`
}

// RackServerForm attaches a server to a rack. Units defaults to one.
type RackServerForm struct {
	Name  string `json:"name"`
	Units int    `json:"units"`
}

type WorkspaceCreateForm struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Network     string `json:"network"`
}

type WorkspaceUpdateForm struct {
	Description *string `json:"description,omitempty"`
	Network     *string `json:"network,omitempty"`
}

type ComponentUpdateForm struct {
	Type                 *string   `json:"type,omitempty"`
	Price                *float64  `json:"price,omitempty"`
	MaintenanceCost      *float64  `json:"maintenanceCost,omitempty"`
	EstimatedConsumption *float64  `json:"estimatedConsumption,omitempty"`
	Details              *string   `json:"details,omitempty"`
	ModelPath            *string   `json:"modelPath,omitempty"`
	IsSelled             *bool     `json:"isSelled,omitempty"`
	CompatibleList       *[]string `json:"compatibleList,omitempty"`
}

type NetworkUpdateForm struct {
	IPAddress  *string `json:"ipAddress,omitempty"`
	SubnetMask *string `json:"subnetMask,omitempty"`
	Gateway    *string `json:"gateway,omitempty"`
}

type LoginForm struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func RackFromForm(id string, form RackCreateForm) model.Rack {
	rack := model.Rack{
		ID:            id,
		Name:          form.Name,
		Description:   form.Description,
		Units:         form.Units,
		WorkspaceName: form.WorkspaceName,
		Servers:       []model.RackServer{},
		HealthStatus:  form.HealthStatus,
		PowerStatus:   form.PowerStatus,
	}
	if rack.Units == 0 {
		rack.Units = model.MaxRackUnits
	}
	if rack.HealthStatus == "" {
		rack.HealthStatus = model.HealthStatusUnknown
	}
	if rack.PowerStatus == "" {
		rack.PowerStatus = model.PowerStatusUnknown
	}
	return rack
}

func UpdateRackFromForm(r *model.Rack, form RackUpdateForm) *model.Rack {
	if form.Description != nil {
		r.Description = *form.Description
	}
	if form.Units != nil {
		r.Units = *form.Units
	}
	if form.HealthStatus != nil {
		r.HealthStatus = *form.HealthStatus
	}
	if form.PowerStatus != nil {
		r.PowerStatus = *form.PowerStatus
	}
	return r
}

func WorkspaceFromForm(form WorkspaceCreateForm) model.Workspace {
	return model.Workspace{
		Name:        form.Name,
		Description: form.Description,
		Network:     form.Network,
		Racks:       []string{},
	}
}

func UpdateWorkspaceFromForm(w *model.Workspace, form WorkspaceUpdateForm) *model.Workspace {
	if form.Description != nil {
		w.Description = *form.Description
	}
	if form.Network != nil {
		w.Network = *form.Network
	}
	return w
}

func UpdateComponentFromForm(c *model.Component, form ComponentUpdateForm) *model.Component {
	if form.Type != nil {
		c.Type = *form.Type
	}
	if form.Price != nil {
		c.Price = *form.Price
	}
	if form.MaintenanceCost != nil {
		c.MaintenanceCost = *form.MaintenanceCost
	}
	if form.EstimatedConsumption != nil {
		c.EstimatedConsumption = *form.EstimatedConsumption
	}
	if form.Details != nil {
		c.Details = *form.Details
	}
	if form.ModelPath != nil {
		c.ModelPath = *form.ModelPath
	}
	if form.IsSelled != nil {
		c.IsSelled = *form.IsSelled
	}
	if form.CompatibleList != nil {
		c.CompatibleList = *form.CompatibleList
	}
	return c
}

func UpdateNetworkFromForm(n *model.Network, form NetworkUpdateForm) *model.Network {
	if form.IPAddress != nil {
		n.IPAddress = *form.IPAddress
	}
	if form.SubnetMask != nil {
		n.SubnetMask = *form.SubnetMask
	}
	if form.Gateway != nil {
		n.Gateway = *form.Gateway
	}
	return n
}
