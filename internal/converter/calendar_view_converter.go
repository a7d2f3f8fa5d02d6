package converter

import (
	"vetclinic-portal/internal/delivery/dto"
	"vetclinic-portal/internal/domain/entity"
	"vetclinic-portal/internal/usecase"

	"github.com/google/uuid"
)

// CalendarViewToResponse renders a workflow snapshot for the UI.
func CalendarViewToResponse(id uuid.UUID, view usecase.WorkflowView) *dto.CalendarViewResponse {
	res := &dto.CalendarViewResponse{
		ID:        id,
		State:     string(view.State),
		DateRange: view.DateRange,
		Calendar: dto.CalendarSection{
			Days:    view.Calendar,
			Loading: view.CalendarLoading,
			Error:   view.CalendarError,
		},
		Notice: view.Notice,
	}

	if view.SelectedSlot != nil {
		res.Slot = &dto.SlotSection{
			Date:      view.SelectedSlot.Date,
			Time:      view.SelectedSlot.Time,
			TimeRange: view.SelectedSlot.TimeRange,
			Doctors:   view.Doctors,
			Loading:   view.DoctorsLoading,
			Error:     view.DoctorsError,
		}
		if view.NoDoctors {
			res.Slot.Empty = usecase.MsgNoDoctorsForSlot
		}
	}

	if b := view.Booking; b != nil {
		res.Booking = &dto.BookingSection{
			Doctor:      b.Draft.Doctor,
			Slot:        b.Draft.Slot,
			Form:        bookingFormToResponse(b.Draft.Form),
			Pets:        b.Pets,
			PetsLoading: b.PetsLoading,
			PetsError:   b.PetsError,
			Submitting:  b.Submitting,
			CanSubmit:   b.CanSubmit,
			Error:       b.Error,
		}
	}

	return res
}

func bookingFormToResponse(form entity.BookingForm) dto.BookingFormResponse {
	types := make([]string, 0, len(entity.AppointmentTypes))
	for _, t := range entity.AppointmentTypes {
		types = append(types, string(t))
	}
	return dto.BookingFormResponse{
		PetID:            form.PetID,
		AppointmentType:  string(form.AppointmentType),
		Duration:         form.Duration,
		Notes:            form.Notes,
		AppointmentTypes: types,
		Durations:        append([]int(nil), entity.Durations...),
	}
}

// BookingFormPatchFromRequest maps the partial form update onto the workflow patch.
func BookingFormPatchFromRequest(req *dto.BookingFormRequest) usecase.BookingFormPatch {
	patch := usecase.BookingFormPatch{
		PetID:    req.PetID,
		Duration: req.Duration,
		Notes:    req.Notes,
	}
	if req.AppointmentType != nil {
		t := entity.AppointmentType(*req.AppointmentType)
		patch.AppointmentType = &t
	}
	return patch
}
