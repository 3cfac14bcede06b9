package model

type Network struct {
	Name       string `json:"name" validate:"required,entity_name"`
	IPAddress  string `json:"ipAddress" validate:"required,ipv4"`
	SubnetMask string `json:"subnetMask" validate:"required,subnet_mask"`
	Gateway    string `json:"gateway" validate:"required,ipv4"`
}

