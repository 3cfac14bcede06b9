package model

type Workspace struct {
	Name        string   `json:"name" validate:"required,entity_name"`
	Description string   `json:"description" validate:"max=500"`
	Network     string   `json:"network" validate:"required"`
	Racks       []string `json:"racks"`
}

func (w Workspace) HasRack(name string) bool {
	for _, r := range w.Racks {
		if r == name {
			return true
		}
	}
	return false
}
