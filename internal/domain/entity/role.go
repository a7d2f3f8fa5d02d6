package entity

// Role is one of the roles the backend assigns to a user.
type Role struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// RoleNames constants
const (
	RoleAdmin        = "admin"
	RoleDoctor       = "doctor"
	RoleReceptionist = "receptionist"
	RoleCustomer     = "user"
)
