package model

import (
	"encoding/json"
	"fmt"
)

const (
	MaxRackUnits       = 42
	DefaultServerUnits = 1
)

const (
	HealthStatusHealthy  = "Healthy"
	HealthStatusWarning  = "Warning"
	HealthStatusCritical = "Critical"
	HealthStatusUnknown  = "Unknown"

	PowerStatusOn      = "On"
	PowerStatusOff     = "Off"
	PowerStatusUnknown = "Unknown"
)

type Rack struct {
	ID              string       `json:"id" validate:"required,uuid"`
	Name            string       `json:"name" validate:"required,entity_name"`
	Description     string       `json:"description" validate:"max=500"`
	Units           int          `json:"units" validate:"min=1,max=42"`
	WorkspaceName   string       `json:"workspaceName" validate:"required"`
	Servers         []RackServer `json:"servers"`
	TotalCost       float64      `json:"totalCost" validate:"gte=0"`
	MaintenanceCost float64      `json:"maintenanceCost" validate:"gte=0"`
	HealthStatus    string       `json:"healthStatus" validate:"health_status"`
	PowerStatus     string       `json:"powerStatus" validate:"power_status"`
}

// UsedUnits sums the units taken by the attached servers.
func (r Rack) UsedUnits() int {
	used := 0
	for _, s := range r.Servers {
		used += s.Units
	}
	return used
}

func (r Rack) FreeUnits() int {
	return r.Units - r.UsedUnits()
}

func (r Rack) ServerIndex(name string) int {
	for i, s := range r.Servers {
		if s.Name == name {
			return i
		}
	}
	return -1
}

// RackServer describes a server slot in a rack. Older files store a bare
// server name instead of an object; such entries take DefaultServerUnits.
type RackServer struct {
	Name  string `json:"name"`
	Units int    `json:"units"`
}

func (s *RackServer) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		s.Name = name
		s.Units = DefaultServerUnits
		return nil
	}

	type plain RackServer
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("rack server entry must be a name or {name, units}: %w", err)
	}
	if p.Units <= 0 {
		p.Units = DefaultServerUnits
	}
	*s = RackServer(p)
	return nil
}
