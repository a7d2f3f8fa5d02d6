package entity

// AvailableDoctor is a doctor free at a given slot.
type AvailableDoctor struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	Specialization string `json:"specialization"`
	Email          string `json:"email,omitempty"`
	LicenseNumber  string `json:"license_number,omitempty"`
}
