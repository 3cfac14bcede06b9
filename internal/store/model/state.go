package model

// State is a full snapshot of every collection, used to seed or reset the store.
type State struct {
	Users      []User      `json:"users"`
	Workspaces []Workspace `json:"workspaces"`
	Racks      []Rack      `json:"racks"`
	Servers    []Server    `json:"servers"`
	Components []Component `json:"components"`
	Networks   []Network   `json:"networks"`
}
