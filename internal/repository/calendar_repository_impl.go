package repository

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"vetclinic-portal/internal/domain/entity"
	domainRepo "vetclinic-portal/internal/domain/repository"
)

type calendarRepository struct {
	client *ClinicAPIClient
}

func NewCalendarRepository(client *ClinicAPIClient) domainRepo.CalendarRepository {
	return &calendarRepository{client: client}
}

func (r *calendarRepository) GetCalendar(ctx context.Context, token string, dateRange entity.DateRange) ([]entity.CalendarDay, error) {
	q := url.Values{}
	q.Set("start_date", dateRange.Start)
	q.Set("end_date", dateRange.End)

	var data struct {
		Calendar []entity.CalendarDay `json:"calendar"`
	}
	if err := r.client.getData(ctx, "get_calendar", http.MethodGet, "/calendar?"+q.Encode(), token, nil, &data); err != nil {
		return nil, fmt.Errorf("get calendar: %w", err)
	}
	if data.Calendar == nil {
		return []entity.CalendarDay{}, nil
	}
	return data.Calendar, nil
}

func (r *calendarRepository) GetAvailableDoctors(ctx context.Context, token string, date, time string) ([]entity.AvailableDoctor, error) {
	q := url.Values{}
	q.Set("date", date)
	q.Set("time", time)

	var data struct {
		Doctors []entity.AvailableDoctor `json:"doctors"`
	}
	if err := r.client.getData(ctx, "get_available_doctors", http.MethodGet, "/available-doctors?"+q.Encode(), token, nil, &data); err != nil {
		return nil, fmt.Errorf("get available doctors: %w", err)
	}
	if data.Doctors == nil {
		return []entity.AvailableDoctor{}, nil
	}
	return data.Doctors, nil
}
