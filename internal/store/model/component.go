package model

import "encoding/json"

const (
	ComponentTypeCPU = "CPU"
	ComponentTypeOS  = "OS"

	// OperatingSystemNone is stored when a server has no operating system.
	OperatingSystemNone = "N/A"
)

// MandatoryTypes gate server creation and component removal.
var MandatoryTypes = []string{ComponentTypeCPU}

// DisplayMandatoryTypes is the broader list used to report what a server still lacks.
var DisplayMandatoryTypes = []string{ComponentTypeCPU, "RAM", "Storage", "Motherboard", "PSU"}

type Component struct {
	Name                 string   `json:"name" validate:"required,entity_name"`
	Type                 string   `json:"type" validate:"required,max=50"`
	Price                float64  `json:"price" validate:"gte=0"`
	MaintenanceCost      float64  `json:"maintenanceCost" validate:"gte=0"`
	EstimatedConsumption float64  `json:"estimatedConsumption" validate:"gte=0"`
	Details              string   `json:"details"`
	ModelPath            string   `json:"modelPath"`
	IsSelled             bool     `json:"isSelled"`
	CompatibleList       []string `json:"compatibleList"`
}

// ComponentRef is the {name, type} pair clients send when composing a server.
type ComponentRef struct {
	Name string `json:"name" validate:"required"`
	Type string `json:"type"`
}

// IsCompatibleWith reports whether c and other may sit in the same server.
// Components of the same type never conflict. Otherwise, once either side
// restricts its partners, one of them must list the other.
func (c Component) IsCompatibleWith(other Component) bool {
	if c.Type == other.Type {
		return true
	}
	if len(c.CompatibleList) == 0 && len(other.CompatibleList) == 0 {
		return true
	}
	return c.lists(other.Name) || other.lists(c.Name)
}

func (c Component) lists(name string) bool {
	for _, n := range c.CompatibleList {
		if n == name {
			return true
		}
	}
	return false
}

func (c Component) String() string {
	val, _ := json.Marshal(c)
	return string(val)
}
