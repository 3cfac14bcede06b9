package model

// User passwords are stored as provided.
type User struct {
	Username string `json:"username" validate:"required,entity_name"`
	Password string `json:"password" validate:"required,min=4"`
}

