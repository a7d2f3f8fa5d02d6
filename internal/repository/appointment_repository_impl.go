package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"vetclinic-portal/internal/domain/entity"
	domainRepo "vetclinic-portal/internal/domain/repository"
)

type appointmentRepository struct {
	client *ClinicAPIClient
}

func NewAppointmentRepository(client *ClinicAPIClient) domainRepo.AppointmentRepository {
	return &appointmentRepository{client: client}
}

func (r *appointmentRepository) Create(ctx context.Context, token string, appointment *entity.NewAppointment) error {
	if _, err := r.client.doJSON(ctx, "create_appointment", http.MethodPost, "/appointments", token, appointment); err != nil {
		return fmt.Errorf("create appointment: %w", err)
	}
	return nil
}

// ListUpcoming tolerates data.appointments, a bare data array, or a bare array.
func (r *appointmentRepository) ListUpcoming(ctx context.Context, token string) ([]entity.UpcomingAppointment, error) {
	raw, err := r.client.doJSON(ctx, "list_upcoming_appointments", http.MethodGet, "/appointments/upcoming/list", token, nil)
	if err != nil {
		return nil, fmt.Errorf("list upcoming appointments: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && len(env.Data) > 0 {
		var nested struct {
			Appointments []entity.UpcomingAppointment `json:"appointments"`
		}
		if err := json.Unmarshal(env.Data, &nested); err == nil && nested.Appointments != nil {
			return nested.Appointments, nil
		}
		var list []entity.UpcomingAppointment
		if err := json.Unmarshal(env.Data, &list); err == nil {
			return list, nil
		}
	}

	var bare []entity.UpcomingAppointment
	if err := json.Unmarshal(raw, &bare); err == nil {
		return bare, nil
	}

	r.client.log.Warnf("Clinic API returned an unrecognized body shape: path=/appointments/upcoming/list, body=%s", truncateBody(raw))
	return []entity.UpcomingAppointment{}, nil
}

func (r *appointmentRepository) Cancel(ctx context.Context, token string, appointmentID int) error {
	path := fmt.Sprintf("/appointments/%d/cancel", appointmentID)
	if _, err := r.client.doJSON(ctx, "cancel_appointment", http.MethodPatch, path, token, nil); err != nil {
		return fmt.Errorf("cancel appointment %d: %w", appointmentID, err)
	}
	return nil
}
