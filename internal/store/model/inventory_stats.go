package model

type InventoryStats struct {
	Workspaces int
	Racks      int
	Servers    int
	Components int
	Networks   int
	// TotalServerPrice is the sum of the derived price of every server.
	TotalServerPrice float64
	// ServersByHealth counts servers by health status; an empty status counts as Unknown.
	ServersByHealth map[string]int
	// UsedUnitsByWorkspace sums the rack units taken by servers in each workspace.
	UsedUnitsByWorkspace map[string]int
}

func NewInventoryStats(state State) InventoryStats {
	stats := InventoryStats{
		Workspaces:           len(state.Workspaces),
		Racks:                len(state.Racks),
		Servers:              len(state.Servers),
		Components:           len(state.Components),
		Networks:             len(state.Networks),
		ServersByHealth:      make(map[string]int),
		UsedUnitsByWorkspace: make(map[string]int),
	}

	for _, s := range state.Servers {
		stats.TotalServerPrice += s.TotalPrice
		health := s.HealthStatus
		if health == "" {
			health = HealthStatusUnknown
		}
		stats.ServersByHealth[health]++
	}

	for _, r := range state.Racks {
		stats.UsedUnitsByWorkspace[r.WorkspaceName] += r.UsedUnits()
	}

	return stats
}
