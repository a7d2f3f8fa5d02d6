package dto

import "vetclinic-portal/internal/domain/entity"

type UpcomingAppointmentResponse struct {
	entity.UpcomingAppointment
	Cancellable bool `json:"cancellable"`
}
