package entity

import (
	"errors"
	"time"
)

// DateLayout is the ISO date format the clinic backend accepts (YYYY-MM-DD).
const DateLayout = "2006-01-02"

var (
	ErrDateRangeIncomplete = errors.New("please select both start and end dates")
	ErrDateRangeInverted   = errors.New("start date cannot be after end date")
	ErrInvalidDate         = errors.New("invalid date format, use YYYY-MM-DD")
)

// DateRange is the user's date-picker input. Both ends are kept as the raw
// YYYY-MM-DD strings the user entered so an incomplete range can be held.
type DateRange struct {
	Start string `json:"start_date"`
	End   string `json:"end_date"`
}

// DefaultDateRange returns {tomorrow, day after tomorrow} relative to now.
func DefaultDateRange(now time.Time) DateRange {
	return DateRange{
		Start: now.AddDate(0, 0, 1).Format(DateLayout),
		End:   now.AddDate(0, 0, 2).Format(DateLayout),
	}
}

// Validate checks that both ends are present, parse as dates and Start <= End.
func (r DateRange) Validate() error {
	if r.Start == "" || r.End == "" {
		return ErrDateRangeIncomplete
	}
	start, err := time.Parse(DateLayout, r.Start)
	if err != nil {
		return ErrInvalidDate
	}
	end, err := time.Parse(DateLayout, r.End)
	if err != nil {
		return ErrInvalidDate
	}
	if start.After(end) {
		return ErrDateRangeInverted
	}
	return nil
}

// CalendarDay is one day of slot summaries as returned by the backend.
type CalendarDay struct {
	Date                string     `json:"date"`
	DayName             string     `json:"day_name"`
	AvailableSlots      []TimeSlot `json:"available_slots"`
	TotalAvailableSlots int        `json:"total_available_slots"`
}

// TimeSlot is a (time, count) cell. Slots with AvailableCount == 0 are kept;
// the backend decides bookability.
type TimeSlot struct {
	Time           string `json:"time"`
	TimeRange      string `json:"time_range"`
	AvailableCount int    `json:"available_count"`
	TotalDoctors   int    `json:"total_doctors"`
}

// SelectedSlot is the (date, time) cell the user clicked.
type SelectedSlot struct {
	Date      string `json:"date"`
	Time      string `json:"time"`
	TimeRange string `json:"time_range"`
}
