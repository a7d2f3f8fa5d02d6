package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bookingInput struct {
	PetID           string `json:"pet_id" validate:"required"`
	AppointmentType string `json:"appointment_type" validate:"required,appointment_type"`
	Duration        int    `json:"duration" validate:"duration"`
	Date            string `json:"date" validate:"isodate"`
	Time            string `json:"time" validate:"clocktime"`
	Notes           string `json:"notes" validate:"max=10"`
}

func TestValidate_Valid(t *testing.T) {
	v := NewValidator()
	err := v.Validate(&bookingInput{
		PetID:           "7",
		AppointmentType: "checkup",
		Duration:        45,
		Date:            "2025-06-10",
		Time:            "09:00",
	})
	assert.NoError(t, err)
}

func TestFormatValidationErrors_UsesJSONNames(t *testing.T) {
	v := NewValidator()
	err := v.Validate(&bookingInput{
		AppointmentType: "grooming",
		Duration:        25,
		Date:            "10/06/2025",
		Time:            "9am",
		Notes:           "far too long for this",
	})
	require.Error(t, err)

	msgs := v.FormatValidationErrors(err)
	assert.Equal(t, "pet_id is required", msgs["pet_id"])
	assert.Contains(t, msgs["appointment_type"], "consultation")
	assert.Contains(t, msgs["duration"], "15, 20, 30, 45, 60, 90, 120")
	assert.Contains(t, msgs["date"], "YYYY-MM-DD")
	assert.Contains(t, msgs["time"], "HH:MM")
	assert.Equal(t, "notes must be at most 10 characters", msgs["notes"])
}
