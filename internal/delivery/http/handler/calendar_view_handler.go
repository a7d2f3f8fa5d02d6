package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"vetclinic-portal/internal/converter"
	"vetclinic-portal/internal/delivery/dto"
	"vetclinic-portal/internal/delivery/http/middleware"
	"vetclinic-portal/internal/domain/entity"
	"vetclinic-portal/internal/usecase"
	"vetclinic-portal/pkg/response"
	"vetclinic-portal/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type CalendarViewHandler struct {
	viewUsecase usecase.CalendarViewUsecase
	authUsecase usecase.AuthUsecase
	validator   *validator.CustomValidator
}

func NewCalendarViewHandler(viewUsecase usecase.CalendarViewUsecase, authUsecase usecase.AuthUsecase, validator *validator.CustomValidator) *CalendarViewHandler {
	return &CalendarViewHandler{
		viewUsecase: viewUsecase,
		authUsecase: authUsecase,
		validator:   validator,
	}
}

func parseViewID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid calendar view ID", nil)
		return uuid.Nil, false
	}
	return id, true
}

// decodeBody decodes r.Body into req and validates it. An empty body is
// allowed when optional is set.
func (h *CalendarViewHandler) decodeBody(w http.ResponseWriter, r *http.Request, req interface{}, optional bool) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		if !(optional && errors.Is(err, io.EOF)) {
			response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
			return false
		}
	}
	if err := h.validator.Validate(req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return false
	}
	return true
}

// respond renders the view after a transition. fallback is the stage message
// used when a backend failure carries none.
func (h *CalendarViewHandler) respond(w http.ResponseWriter, r *http.Request, id uuid.UUID, view usecase.WorkflowView, err error, okMessage, fallback string) {
	if errors.Is(err, usecase.ErrCalendarViewNotFound) {
		response.NotFound(w, "Calendar view not found")
		return
	}

	data := converter.CalendarViewToResponse(id, view)
	if err == nil {
		response.Success(w, http.StatusOK, okMessage, data)
		return
	}

	switch {
	case errors.Is(err, usecase.ErrSupersededResponse):
		response.Fail(w, http.StatusConflict, "Request superseded by a newer one", data)
	case errors.Is(err, entity.ErrDateRangeIncomplete),
		errors.Is(err, entity.ErrDateRangeInverted),
		errors.Is(err, entity.ErrInvalidDate):
		response.Fail(w, http.StatusBadRequest, view.CalendarError, data)
	case errors.Is(err, entity.ErrInvalidPetID),
		errors.Is(err, entity.ErrPetRequired),
		errors.Is(err, entity.ErrAppointmentTypeRequired),
		errors.Is(err, entity.ErrInvalidAppointmentType),
		errors.Is(err, entity.ErrInvalidDuration),
		errors.Is(err, usecase.ErrUnknownPet),
		errors.Is(err, usecase.ErrBookingIncomplete):
		response.Fail(w, http.StatusBadRequest, capitalize(err.Error()), data)
	case errors.Is(err, usecase.ErrNoSlotSelected),
		errors.Is(err, usecase.ErrDoctorsNotLoaded),
		errors.Is(err, usecase.ErrDoctorNotListed),
		errors.Is(err, usecase.ErrBookingInProgress),
		errors.Is(err, usecase.ErrNoBookingOpen),
		errors.Is(err, usecase.ErrSubmissionInFlight):
		response.Fail(w, http.StatusConflict, capitalize(err.Error()), data)
	case isBackendError(err):
		writeBackendError(w, r, h.authUsecase, err, fallback, data)
	default:
		response.Fail(w, http.StatusInternalServerError, fallback, data)
	}
}

// Open handles POST /calendar-views. The new view runs its first search over
// the default range; a failed search is reported inside the view.
func (h *CalendarViewHandler) Open(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSessionFromContext(r.Context())
	id, view := h.viewUsecase.Open(r.Context(), sess)
	response.Success(w, http.StatusCreated, "Calendar view opened", converter.CalendarViewToResponse(id, view))
}

func (h *CalendarViewHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseViewID(w, r)
	if !ok {
		return
	}
	view, err := h.viewUsecase.Get(id, middleware.GetSessionFromContext(r.Context()))
	h.respond(w, r, id, view, err, "Calendar view retrieved", "")
}

func (h *CalendarViewHandler) Close(w http.ResponseWriter, r *http.Request) {
	id, ok := parseViewID(w, r)
	if !ok {
		return
	}
	if err := h.viewUsecase.Close(id, middleware.GetSessionFromContext(r.Context())); err != nil {
		response.NotFound(w, "Calendar view not found")
		return
	}
	response.Success(w, http.StatusOK, "Calendar view closed", nil)
}

// SetDateRange handles PUT /calendar-views/{id}/range. It only stores the
// input; POST .../search runs the query.
func (h *CalendarViewHandler) SetDateRange(w http.ResponseWriter, r *http.Request) {
	id, ok := parseViewID(w, r)
	if !ok {
		return
	}
	var req dto.DateRangeRequest
	if !h.decodeBody(w, r, &req, false) {
		return
	}

	view, err := h.viewUsecase.SetDateRange(id, middleware.GetSessionFromContext(r.Context()), entity.DateRange{Start: req.StartDate, End: req.EndDate})
	h.respond(w, r, id, view, err, "Date range updated", "")
}

// Search handles POST /calendar-views/{id}/search. A body with dates sets the
// range first.
func (h *CalendarViewHandler) Search(w http.ResponseWriter, r *http.Request) {
	id, ok := parseViewID(w, r)
	if !ok {
		return
	}
	var req dto.DateRangeRequest
	if !h.decodeBody(w, r, &req, true) {
		return
	}
	sess := middleware.GetSessionFromContext(r.Context())
	if req.StartDate != "" || req.EndDate != "" {
		if _, err := h.viewUsecase.SetDateRange(id, sess, entity.DateRange{Start: req.StartDate, End: req.EndDate}); err != nil {
			response.NotFound(w, "Calendar view not found")
			return
		}
	}

	view, err := h.viewUsecase.Search(r.Context(), id, sess)
	h.respond(w, r, id, view, err, "Calendar retrieved successfully", usecase.MsgCalendarFailed)
}

func (h *CalendarViewHandler) SelectSlot(w http.ResponseWriter, r *http.Request) {
	id, ok := parseViewID(w, r)
	if !ok {
		return
	}
	var req dto.SelectSlotRequest
	if !h.decodeBody(w, r, &req, false) {
		return
	}

	sess := middleware.GetSessionFromContext(r.Context())
	slot := entity.SelectedSlot{Date: req.Date, Time: req.Time, TimeRange: req.TimeRange}
	view, err := h.viewUsecase.SelectSlot(r.Context(), id, sess, slot)
	h.respond(w, r, id, view, err, "Available doctors retrieved successfully", usecase.MsgDoctorsFailed)
}

func (h *CalendarViewHandler) CloseSlot(w http.ResponseWriter, r *http.Request) {
	id, ok := parseViewID(w, r)
	if !ok {
		return
	}
	view, err := h.viewUsecase.CloseSlot(id, middleware.GetSessionFromContext(r.Context()))
	h.respond(w, r, id, view, err, "Slot closed", "")
}

// ChooseDoctor handles POST /calendar-views/{id}/doctor. Anonymous callers
// get a successful response that redirects to the login page.
func (h *CalendarViewHandler) ChooseDoctor(w http.ResponseWriter, r *http.Request) {
	id, ok := parseViewID(w, r)
	if !ok {
		return
	}
	var req dto.ChooseDoctorRequest
	if !h.decodeBody(w, r, &req, false) {
		return
	}

	sess := middleware.GetSessionFromContext(r.Context())
	outcome, view, err := h.viewUsecase.ChooseDoctor(r.Context(), id, sess, req.DoctorID)
	if err == nil && outcome != nil && outcome.Redirect != "" {
		response.Navigate(w, outcome.Redirect, converter.CalendarViewToResponse(id, view))
		return
	}
	h.respond(w, r, id, view, err, "Booking form opened", "")
}

func (h *CalendarViewHandler) UpdateBookingForm(w http.ResponseWriter, r *http.Request) {
	id, ok := parseViewID(w, r)
	if !ok {
		return
	}
	var req dto.BookingFormRequest
	if !h.decodeBody(w, r, &req, false) {
		return
	}

	sess := middleware.GetSessionFromContext(r.Context())
	view, err := h.viewUsecase.UpdateBookingForm(id, sess, converter.BookingFormPatchFromRequest(&req))
	h.respond(w, r, id, view, err, "Booking form updated", "")
}

func (h *CalendarViewHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := parseViewID(w, r)
	if !ok {
		return
	}
	view, err := h.viewUsecase.CancelBooking(id, middleware.GetSessionFromContext(r.Context()))
	h.respond(w, r, id, view, err, "Booking cancelled", "")
}

func (h *CalendarViewHandler) SubmitBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := parseViewID(w, r)
	if !ok {
		return
	}

	sess := middleware.GetSessionFromContext(r.Context())
	view, err := h.viewUsecase.SubmitBooking(r.Context(), id, sess)
	h.respond(w, r, id, view, err, usecase.MsgBookingSucceeded, usecase.MsgBookingFailed)
}
