package converter

import (
	"vetclinic-portal/internal/delivery/dto"
	"vetclinic-portal/internal/domain/entity"
)

func UpcomingAppointmentsToResponse(list []entity.UpcomingAppointment) []dto.UpcomingAppointmentResponse {
	responses := make([]dto.UpcomingAppointmentResponse, 0, len(list))
	for i := range list {
		responses = append(responses, dto.UpcomingAppointmentResponse{
			UpcomingAppointment: list[i],
			Cancellable:         list[i].CanCancel(),
		})
	}
	return responses
}
