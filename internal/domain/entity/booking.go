package entity

import (
	"errors"
	"strconv"
	"unicode/utf8"
)

// AppointmentType is the kind of visit requested on the booking form.
type AppointmentType string

const (
	AppointmentTypeRegular      AppointmentType = "regular"
	AppointmentTypeEmergency    AppointmentType = "emergency"
	AppointmentTypeSurgery      AppointmentType = "surgery"
	AppointmentTypeVaccination  AppointmentType = "vaccination"
	AppointmentTypeCheckup      AppointmentType = "checkup"
	AppointmentTypeConsultation AppointmentType = "consultation"
)

// AppointmentTypes lists the accepted types in form order.
var AppointmentTypes = []AppointmentType{
	AppointmentTypeRegular,
	AppointmentTypeEmergency,
	AppointmentTypeSurgery,
	AppointmentTypeVaccination,
	AppointmentTypeCheckup,
	AppointmentTypeConsultation,
}

// Valid reports whether t is one of AppointmentTypes.
func (t AppointmentType) Valid() bool {
	for _, known := range AppointmentTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Durations lists the accepted appointment lengths in minutes.
var Durations = []int{15, 20, 30, 45, 60, 90, 120}

const (
	DefaultDuration = 30
	MaxNotesLength  = 1000
)

// ValidDuration reports whether minutes is one of Durations.
func ValidDuration(minutes int) bool {
	for _, d := range Durations {
		if d == minutes {
			return true
		}
	}
	return false
}

var (
	ErrPetRequired             = errors.New("pet is required")
	ErrInvalidPetID            = errors.New("pet id must be a number")
	ErrAppointmentTypeRequired = errors.New("appointment type is required")
	ErrInvalidAppointmentType  = errors.New("invalid appointment type")
	ErrInvalidDuration         = errors.New("invalid appointment duration")
)

// BookingForm holds the editable booking form fields. PetID is kept as the
// raw form value so "not chosen yet" is distinguishable from a real id.
type BookingForm struct {
	PetID           string          `json:"pet_id"`
	AppointmentType AppointmentType `json:"appointment_type"`
	Duration        int             `json:"duration"`
	Notes           string          `json:"notes"`
}

// DefaultBookingForm returns an empty form with the default duration.
func DefaultBookingForm() BookingForm {
	return BookingForm{Duration: DefaultDuration}
}

// Complete reports whether the required fields are filled in.
func (f BookingForm) Complete() bool {
	return f.PetID != "" && f.AppointmentType != ""
}

// BookingDraft is an in-progress appointment request. Doctor and Slot are
// copies taken when the form opened.
type BookingDraft struct {
	Doctor AvailableDoctor `json:"doctor"`
	Slot   SelectedSlot    `json:"slot"`
	Form   BookingForm     `json:"form"`
}

// NewAppointment is the payload posted to create an appointment.
type NewAppointment struct {
	DoctorID        int             `json:"doctor_id"`
	PetID           int             `json:"pet_id"`
	Date            string          `json:"date"`
	Time            string          `json:"time"`
	AppointmentType AppointmentType `json:"appointment_type"`
	Duration        int             `json:"duration"`
	Notes           *string         `json:"notes"`
}

// Appointment assembles the creation payload from the draft. Empty notes are
// sent as null.
func (d BookingDraft) Appointment() (*NewAppointment, error) {
	if d.Form.PetID == "" {
		return nil, ErrPetRequired
	}
	petID, err := strconv.Atoi(d.Form.PetID)
	if err != nil {
		return nil, ErrInvalidPetID
	}
	if d.Form.AppointmentType == "" {
		return nil, ErrAppointmentTypeRequired
	}
	if !d.Form.AppointmentType.Valid() {
		return nil, ErrInvalidAppointmentType
	}
	if !ValidDuration(d.Form.Duration) {
		return nil, ErrInvalidDuration
	}

	var notes *string
	if d.Form.Notes != "" {
		n := d.Form.Notes
		notes = &n
	}

	return &NewAppointment{
		DoctorID:        d.Doctor.ID,
		PetID:           petID,
		Date:            d.Slot.Date,
		Time:            d.Slot.Time,
		AppointmentType: d.Form.AppointmentType,
		Duration:        d.Form.Duration,
		Notes:           notes,
	}, nil
}

// TruncateNotes caps notes at MaxNotesLength characters.
func TruncateNotes(notes string) string {
	if utf8.RuneCountInString(notes) <= MaxNotesLength {
		return notes
	}
	runes := []rune(notes)
	return string(runes[:MaxNotesLength])
}
