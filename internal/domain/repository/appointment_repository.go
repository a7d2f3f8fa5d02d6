package repository

import (
	"context"

	"vetclinic-portal/internal/domain/entity"
)

type AppointmentRepository interface {
	Create(ctx context.Context, token string, appointment *entity.NewAppointment) error
	ListUpcoming(ctx context.Context, token string) ([]entity.UpcomingAppointment, error)
	Cancel(ctx context.Context, token string, appointmentID int) error
}
