package model

type Server struct {
	Name                 string   `json:"name" validate:"required,entity_name"`
	Description          string   `json:"description" validate:"max=500"`
	Components           []string `json:"components" validate:"required,min=1,dive,required"`
	TotalPrice           float64  `json:"totalPrice" validate:"gte=0"`
	TotalMaintenanceCost float64  `json:"totalMaintenanceCost" validate:"gte=0"`
	Network              string   `json:"network" validate:"required"`
	OperatingSystem      string   `json:"operatingSystem"`
	IPAddress            string   `json:"ipAddress" validate:"omitempty,ipv4"`
	HealthStatus         string   `json:"healthStatus" validate:"health_status"`
	RackName             string   `json:"rackName"`
}

func (s Server) HasComponent(name string) bool {
	for _, c := range s.Components {
		if c == name {
			return true
		}
	}
	return false
}
