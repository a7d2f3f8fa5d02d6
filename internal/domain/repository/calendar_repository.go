package repository

import (
	"context"

	"vetclinic-portal/internal/domain/entity"
)

// CalendarRepository reads slot availability from the clinic backend.
type CalendarRepository interface {
	GetCalendar(ctx context.Context, token string, dateRange entity.DateRange) ([]entity.CalendarDay, error)
	GetAvailableDoctors(ctx context.Context, token string, date, time string) ([]entity.AvailableDoctor, error)
}
