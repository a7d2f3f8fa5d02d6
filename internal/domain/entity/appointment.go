package entity

import "time"

// AppointmentStatus represents the status of a booked appointment
type AppointmentStatus string

const (
	AppointmentStatusPending    AppointmentStatus = "pending"
	AppointmentStatusScheduled  AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed  AppointmentStatus = "confirmed"
	AppointmentStatusInProgress AppointmentStatus = "in_progress"
	AppointmentStatusCompleted  AppointmentStatus = "completed"
	AppointmentStatusCancelled  AppointmentStatus = "cancelled"
	AppointmentStatusNoShow     AppointmentStatus = "no_show"
)

// UpcomingAppointment is an entry of the customer's upcoming appointment list
type UpcomingAppointment struct {
	ID                   int               `json:"id"`
	DoctorID             int               `json:"doctor_id"`
	DoctorName           string            `json:"doctor_name"`
	DoctorSpecialization string            `json:"doctor_specialization"`
	UserID               int               `json:"user_id"`
	UserName             string            `json:"user_name"`
	UserEmail            string            `json:"user_email"`
	PetID                int               `json:"pet_id"`
	PetName              string            `json:"pet_name"`
	PetSpecies           string            `json:"pet_species"`
	PetBreed             string            `json:"pet_breed"`
	StartDatetime        time.Time         `json:"start_datetime"`
	EndDatetime          time.Time         `json:"end_datetime"`
	AppointmentType      string            `json:"appointment_type"`
	Duration             int               `json:"duration"`
	Notes                *string           `json:"notes"`
	Status               AppointmentStatus `json:"status"`
	CreatedAt            time.Time         `json:"created_at"`
	UpdatedAt            time.Time         `json:"updated_at"`
}

// CanCancel checks if the appointment is still in a cancellable status
func (a *UpcomingAppointment) CanCancel() bool {
	switch a.Status {
	case AppointmentStatusPending, AppointmentStatusScheduled, AppointmentStatusConfirmed:
		return true
	}
	return false
}

// IsCancelled checks if appointment is cancelled
func (a *UpcomingAppointment) IsCancelled() bool {
	return a.Status == AppointmentStatusCancelled
}
