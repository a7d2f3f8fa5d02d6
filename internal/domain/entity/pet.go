package entity

// Pet is a roster entry of the authenticated customer.
type Pet struct {
	ID          int      `json:"id"`
	OwnerID     int      `json:"owner_id,omitempty"`
	Name        string   `json:"name"`
	Species     string   `json:"species"`
	Breed       string   `json:"breed,omitempty"`
	Gender      string   `json:"gender,omitempty"`
	DateOfBirth string   `json:"date_of_birth,omitempty"`
	Weight      *float64 `json:"weight,omitempty"`
	Color       string   `json:"color,omitempty"`
}
