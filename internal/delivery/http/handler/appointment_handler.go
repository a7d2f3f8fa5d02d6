package handler

import (
	"errors"
	"net/http"
	"strconv"

	"vetclinic-portal/internal/converter"
	"vetclinic-portal/internal/delivery/http/middleware"
	"vetclinic-portal/internal/usecase"
	"vetclinic-portal/pkg/response"

	"github.com/gorilla/mux"
)

type AppointmentHandler struct {
	appointmentUsecase usecase.AppointmentUsecase
	authUsecase        usecase.AuthUsecase
}

func NewAppointmentHandler(appointmentUsecase usecase.AppointmentUsecase, authUsecase usecase.AuthUsecase) *AppointmentHandler {
	return &AppointmentHandler{
		appointmentUsecase: appointmentUsecase,
		authUsecase:        authUsecase,
	}
}

func (h *AppointmentHandler) ListUpcoming(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSessionFromContext(r.Context())
	list, err := h.appointmentUsecase.ListUpcoming(r.Context(), sess)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrNotAuthenticated):
			response.Unauthorized(w, "")
		case isBackendError(err):
			writeBackendError(w, r, h.authUsecase, err, "Failed to load appointments", nil)
		default:
			response.InternalServerError(w, "Failed to load appointments")
		}
		return
	}

	response.Success(w, http.StatusOK, "Appointments retrieved successfully", converter.UpcomingAppointmentsToResponse(list))
}

func (h *AppointmentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	appointmentID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || appointmentID <= 0 {
		response.Error(w, http.StatusBadRequest, "Invalid appointment ID", nil)
		return
	}

	sess := middleware.GetSessionFromContext(r.Context())
	if err := h.appointmentUsecase.Cancel(r.Context(), sess, appointmentID); err != nil {
		switch {
		case errors.Is(err, usecase.ErrNotAuthenticated):
			response.Unauthorized(w, "")
		case errors.Is(err, usecase.ErrAppointmentNotFound):
			response.NotFound(w, "Appointment not found")
		case errors.Is(err, usecase.ErrAppointmentNotCancellable):
			response.Conflict(w, "Appointment can no longer be cancelled")
		case isBackendError(err):
			writeBackendError(w, r, h.authUsecase, err, usecase.MsgCancelFailed, nil)
		default:
			response.InternalServerError(w, usecase.MsgCancelFailed)
		}
		return
	}

	response.Success(w, http.StatusOK, "Appointment cancelled successfully", nil)
}
