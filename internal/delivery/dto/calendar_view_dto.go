package dto

import (
	"vetclinic-portal/internal/domain/entity"

	"github.com/google/uuid"
)

// Request DTOs

type DateRangeRequest struct {
	StartDate string `json:"start_date" validate:"omitempty,isodate"`
	EndDate   string `json:"end_date" validate:"omitempty,isodate"`
}

type SelectSlotRequest struct {
	Date      string `json:"date" validate:"required,isodate"`
	Time      string `json:"time" validate:"required,clocktime"`
	TimeRange string `json:"time_range" validate:"omitempty,max=32"`
}

type ChooseDoctorRequest struct {
	DoctorID int `json:"doctor_id" validate:"required,gt=0"`
}

// BookingFormRequest is a partial update; absent fields are left alone.
type BookingFormRequest struct {
	PetID           *string `json:"pet_id" validate:"omitempty"`
	AppointmentType *string `json:"appointment_type" validate:"omitempty,appointment_type"`
	Duration        *int    `json:"duration" validate:"omitempty,duration"`
	Notes           *string `json:"notes"`
}

// Response DTOs

type CalendarViewResponse struct {
	ID        uuid.UUID        `json:"id"`
	State     string           `json:"state"`
	DateRange entity.DateRange `json:"date_range"`
	Calendar  CalendarSection  `json:"calendar"`
	Slot      *SlotSection     `json:"selected_slot"`
	Booking   *BookingSection  `json:"booking"`
	Notice    string           `json:"notice,omitempty"`
}

type CalendarSection struct {
	Days    []entity.CalendarDay `json:"days"`
	Loading bool                 `json:"loading"`
	Error   string               `json:"error,omitempty"`
}

type SlotSection struct {
	Date      string                   `json:"date"`
	Time      string                   `json:"time"`
	TimeRange string                   `json:"time_range"`
	Doctors   []entity.AvailableDoctor `json:"doctors"`
	Loading   bool                     `json:"loading"`
	Error     string                   `json:"error,omitempty"`
	Empty     string                   `json:"empty_message,omitempty"`
}

type BookingSection struct {
	Doctor      entity.AvailableDoctor `json:"doctor"`
	Slot        entity.SelectedSlot    `json:"slot"`
	Form        BookingFormResponse    `json:"form"`
	Pets        []entity.Pet           `json:"pets"`
	PetsLoading bool                   `json:"pets_loading"`
	PetsError   string                 `json:"pets_error,omitempty"`
	Submitting  bool                   `json:"submitting"`
	CanSubmit   bool                   `json:"can_submit"`
	Error       string                 `json:"error,omitempty"`
}

type BookingFormResponse struct {
	PetID            string   `json:"pet_id"`
	AppointmentType  string   `json:"appointment_type"`
	Duration         int      `json:"duration"`
	Notes            string   `json:"notes"`
	AppointmentTypes []string `json:"appointment_types"`
	Durations        []int    `json:"durations"`
}
