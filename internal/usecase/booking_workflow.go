package usecase

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"vetclinic-portal/internal/domain/entity"
	"vetclinic-portal/internal/domain/repository"
	"vetclinic-portal/internal/infrastructure/metrics"

	"github.com/sirupsen/logrus"
)

// State is the active stage of a calendar view.
type State string

const (
	StateBrowsing      State = "browsing"
	StateSlotSelected  State = "slot_selected"
	StateDoctorsListed State = "doctors_listed"
	StateBookingOpen   State = "booking_open"
	StateSubmitting    State = "submitting"
)

// LoginPath is where an anonymous caller is sent when choosing a doctor.
const LoginPath = "/login"

const (
	MsgCalendarFailed    = "Failed to fetch calendar data"
	MsgDoctorsFailed     = "Failed to fetch available doctors"
	MsgPetsFailed        = "Failed to load pets"
	MsgBookingFailed     = "Failed to book appointment"
	MsgBookingSucceeded  = "Appointment booked successfully!"
	MsgNoDoctorsForSlot  = "No doctors available for this time slot"
	msgRangeIncomplete   = "Please select both start and end dates"
	msgRangeInverted     = "Start date cannot be after end date"
	msgRangeInvalidDate  = "Invalid date format, use YYYY-MM-DD"
	msgBookingIncomplete = "Please select a pet and an appointment type"
)

var (
	ErrNoSlotSelected     = errors.New("no time slot selected")
	ErrDoctorsNotLoaded   = errors.New("available doctors are not loaded")
	ErrDoctorNotListed    = errors.New("doctor is not available for the selected slot")
	ErrBookingInProgress  = errors.New("a booking form is already open")
	ErrNoBookingOpen      = errors.New("no booking form is open")
	ErrBookingIncomplete  = errors.New("pet and appointment type are required")
	ErrSubmissionInFlight = errors.New("booking submission already in progress")
	ErrUnknownPet         = errors.New("pet is not in your roster")
	ErrSupersededResponse = errors.New("response superseded by a newer request")
)

// Outcome is the non-error result of a transition that asks the UI to
// navigate elsewhere.
type Outcome struct {
	Redirect string
}

// RosterCache shares pet rosters across calendar views of the same user.
type RosterCache interface {
	Get(ctx context.Context, userKey string) ([]entity.Pet, bool, error)
	Set(ctx context.Context, userKey string, pets []entity.Pet) error
}

// BookingForm field updates; nil fields are left untouched.
type BookingFormPatch struct {
	PetID           *string
	AppointmentType *entity.AppointmentType
	Duration        *int
	Notes           *string
}

// slotStage exists while a slot is selected.
type slotStage struct {
	slot    entity.SelectedSlot
	doctors []entity.AvailableDoctor
	loading bool
	err     string
}

// bookingStage exists while the booking form is open.
type bookingStage struct {
	draft      entity.BookingDraft
	submitting bool
	err        string
}

type rosterState struct {
	owner   string
	pets    []entity.Pet
	loaded  bool
	loading bool
	err     string
}

// Workflow is the booking state machine of one calendar view. Its mutex is
// never held across backend calls; each stage carries a generation counter
// and a response is applied only if its generation is still current.
type Workflow struct {
	mu sync.Mutex

	calendars    repository.CalendarRepository
	pets         repository.PetRepository
	appointments repository.AppointmentRepository
	rosterCache  RosterCache
	log          *logrus.Logger
	metrics      *metrics.WorkflowMetrics

	dateRange       entity.DateRange
	calendar        []entity.CalendarDay
	calendarLoading bool
	calendarErr     string
	calendarGen     uint64

	slot    *slotStage
	slotGen uint64

	booking    *bookingStage
	bookingGen uint64

	roster    rosterState
	rosterGen uint64

	notice string
}

// WorkflowDeps are the collaborators a workflow calls out to; RosterCache may be nil.
type WorkflowDeps struct {
	Calendars    repository.CalendarRepository
	Pets         repository.PetRepository
	Appointments repository.AppointmentRepository
	RosterCache  RosterCache
	Log          *logrus.Logger
	Metrics      *metrics.WorkflowMetrics
}

// NewWorkflow starts a view in Browsing with the default date range.
func NewWorkflow(deps WorkflowDeps, now time.Time) *Workflow {
	log := deps.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Workflow{
		calendars:    deps.Calendars,
		pets:         deps.Pets,
		appointments: deps.Appointments,
		rosterCache:  deps.RosterCache,
		log:          log,
		metrics:      deps.Metrics,
		dateRange:    entity.DefaultDateRange(now),
		calendar:     []entity.CalendarDay{},
	}
}

// state must be called with mu held.
func (w *Workflow) state() State {
	switch {
	case w.booking != nil && w.booking.submitting:
		return StateSubmitting
	case w.booking != nil:
		return StateBookingOpen
	case w.slot != nil && w.slot.loading:
		return StateSlotSelected
	case w.slot != nil:
		return StateDoctorsListed
	default:
		return StateBrowsing
	}
}

// State returns the current stage.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state()
}

// SetDateRange stores the date-picker input without querying.
func (w *Workflow) SetDateRange(dateRange entity.DateRange) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.dateRange = dateRange
	w.notice = ""
}

// Search runs the date-range query. An invalid range never reaches the
// backend. On failure the previous calendar is kept.
func (w *Workflow) Search(ctx context.Context, sess Session) error {
	w.mu.Lock()
	w.notice = ""
	dateRange := w.dateRange
	if err := dateRange.Validate(); err != nil {
		w.calendarErr = rangeMessage(err)
		w.mu.Unlock()
		w.metrics.ObserveTransition("search", "invalid")
		return err
	}
	w.calendarGen++
	gen := w.calendarGen
	w.calendarLoading = true
	w.calendarErr = ""
	w.mu.Unlock()

	days, err := w.calendars.GetCalendar(ctx, sess.Token(), dateRange)

	w.mu.Lock()
	defer w.mu.Unlock()
	if gen != w.calendarGen {
		w.log.Debugf("Discarding stale calendar response for %s..%s", dateRange.Start, dateRange.End)
		w.metrics.ObserveStale("calendar")
		return ErrSupersededResponse
	}
	w.calendarLoading = false
	if err != nil {
		w.calendarErr = stageMessage(err, MsgCalendarFailed)
		w.log.Warnf("Failed to fetch calendar %s..%s: %+v", dateRange.Start, dateRange.End, err)
		w.metrics.ObserveTransition("search", "error")
		return err
	}
	w.calendar = days
	w.metrics.ObserveTransition("search", "ok")
	return nil
}

// SelectSlot makes slot the active selection, drops any previous doctor list
// and queries the doctors free at (date, time). Reselecting the same slot
// queries again.
func (w *Workflow) SelectSlot(ctx context.Context, sess Session, slot entity.SelectedSlot) error {
	w.mu.Lock()
	if w.booking != nil {
		w.mu.Unlock()
		return ErrBookingInProgress
	}
	w.notice = ""
	w.slotGen++
	gen := w.slotGen
	w.slot = &slotStage{slot: slot, doctors: []entity.AvailableDoctor{}, loading: true}
	w.mu.Unlock()

	doctors, err := w.calendars.GetAvailableDoctors(ctx, sess.Token(), slot.Date, slot.Time)

	w.mu.Lock()
	defer w.mu.Unlock()
	if gen != w.slotGen || w.slot == nil {
		w.log.Debugf("Discarding stale doctors response for %s %s", slot.Date, slot.Time)
		w.metrics.ObserveStale("doctors")
		return ErrSupersededResponse
	}
	w.slot.loading = false
	if err != nil {
		w.slot.err = stageMessage(err, MsgDoctorsFailed)
		w.log.Warnf("Failed to fetch available doctors for %s %s: %+v", slot.Date, slot.Time, err)
		w.metrics.ObserveTransition("select_slot", "error")
		return err
	}
	w.slot.doctors = doctors
	w.metrics.ObserveTransition("select_slot", "ok")
	return nil
}

// CloseSlot returns to Browsing and forgets the doctor list.
func (w *Workflow) CloseSlot() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.booking != nil {
		return ErrBookingInProgress
	}
	w.slotGen++
	w.slot = nil
	w.notice = ""
	return nil
}

// ChooseDoctor opens the booking form for a listed doctor. An anonymous
// caller gets a redirect to the login page and nothing else happens.
func (w *Workflow) ChooseDoctor(ctx context.Context, sess Session, doctorID int) (*Outcome, error) {
	if !sess.IsAuthenticated() {
		w.metrics.ObserveTransition("choose_doctor", "redirect")
		return &Outcome{Redirect: LoginPath}, nil
	}

	w.mu.Lock()
	if w.booking != nil {
		w.mu.Unlock()
		return nil, ErrBookingInProgress
	}
	if w.slot == nil {
		w.mu.Unlock()
		return nil, ErrNoSlotSelected
	}
	if w.slot.loading || w.slot.err != "" {
		w.mu.Unlock()
		return nil, ErrDoctorsNotLoaded
	}
	var doctor *entity.AvailableDoctor
	for i := range w.slot.doctors {
		if w.slot.doctors[i].ID == doctorID {
			doctor = &w.slot.doctors[i]
			break
		}
	}
	if doctor == nil {
		w.mu.Unlock()
		return nil, ErrDoctorNotListed
	}

	w.notice = ""
	w.bookingGen++
	w.booking = &bookingStage{
		draft: entity.BookingDraft{
			Doctor: *doctor,
			Slot:   w.slot.slot,
			Form:   entity.DefaultBookingForm(),
		},
	}
	needRoster := !w.roster.loaded || w.roster.owner != sess.UserKey()
	w.mu.Unlock()

	w.metrics.ObserveTransition("choose_doctor", "ok")
	if needRoster {
		w.loadRoster(ctx, sess)
	}
	return nil, nil
}

// loadRoster fills the view's roster from the shared cache or the backend.
// A failure is recorded on the roster and retried on the next form open.
func (w *Workflow) loadRoster(ctx context.Context, sess Session) {
	w.mu.Lock()
	w.rosterGen++
	gen := w.rosterGen
	w.roster = rosterState{owner: sess.UserKey(), pets: []entity.Pet{}, loading: true}
	w.mu.Unlock()

	pets, err := w.fetchRoster(ctx, sess)

	w.mu.Lock()
	defer w.mu.Unlock()
	if gen != w.rosterGen {
		w.metrics.ObserveStale("roster")
		return
	}
	w.roster.loading = false
	if err != nil {
		w.roster.err = stageMessage(err, MsgPetsFailed)
		w.log.Warnf("Failed to load pet roster for user %s: %+v", sess.UserKey(), err)
		return
	}
	w.roster.pets = pets
	w.roster.loaded = true
}

func (w *Workflow) fetchRoster(ctx context.Context, sess Session) ([]entity.Pet, error) {
	if w.rosterCache != nil && sess.UserKey() != "" {
		pets, ok, err := w.rosterCache.Get(ctx, sess.UserKey())
		if err != nil {
			w.log.Warnf("Roster cache read failed for user %s: %+v", sess.UserKey(), err)
		} else if ok {
			return pets, nil
		}
	}

	pets, err := w.pets.ListPets(ctx, sess.Token())
	if err != nil {
		return nil, err
	}

	if w.rosterCache != nil && sess.UserKey() != "" {
		if err := w.rosterCache.Set(ctx, sess.UserKey(), pets); err != nil {
			w.log.Warnf("Roster cache write failed for user %s: %+v", sess.UserKey(), err)
		}
	}
	return pets, nil
}

// UpdateBookingForm applies field edits to the open form. Notes longer than
// entity.MaxNotesLength are truncated.
func (w *Workflow) UpdateBookingForm(patch BookingFormPatch) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.booking == nil {
		return ErrNoBookingOpen
	}
	if w.booking.submitting {
		return ErrSubmissionInFlight
	}

	form := w.booking.draft.Form
	if patch.PetID != nil {
		if *patch.PetID != "" {
			id, err := strconv.Atoi(*patch.PetID)
			if err != nil {
				return entity.ErrInvalidPetID
			}
			if w.roster.loaded && !rosterHas(w.roster.pets, id) {
				return ErrUnknownPet
			}
		}
		form.PetID = *patch.PetID
	}
	if patch.AppointmentType != nil {
		if *patch.AppointmentType != "" && !patch.AppointmentType.Valid() {
			return entity.ErrInvalidAppointmentType
		}
		form.AppointmentType = *patch.AppointmentType
	}
	if patch.Duration != nil {
		if !entity.ValidDuration(*patch.Duration) {
			return entity.ErrInvalidDuration
		}
		form.Duration = *patch.Duration
	}
	if patch.Notes != nil {
		form.Notes = entity.TruncateNotes(*patch.Notes)
	}
	w.booking.draft.Form = form
	return nil
}

// CancelBooking closes the form and discards the draft.
func (w *Workflow) CancelBooking() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.booking == nil {
		return ErrNoBookingOpen
	}
	if w.booking.submitting {
		return ErrSubmissionInFlight
	}
	w.bookingGen++
	w.booking = nil
	return nil
}

// SubmitBooking posts the draft. On success the form closes and a
// confirmation notice is set; calendar counts are left as they were. On
// failure the form stays open with its values.
func (w *Workflow) SubmitBooking(ctx context.Context, sess Session) error {
	w.mu.Lock()
	if w.booking == nil {
		w.mu.Unlock()
		return ErrNoBookingOpen
	}
	if w.booking.submitting {
		w.mu.Unlock()
		return ErrSubmissionInFlight
	}
	if !w.booking.draft.Form.Complete() {
		w.booking.err = msgBookingIncomplete
		w.mu.Unlock()
		return ErrBookingIncomplete
	}
	appointment, err := w.booking.draft.Appointment()
	if err != nil {
		w.booking.err = err.Error()
		w.mu.Unlock()
		return err
	}
	w.notice = ""
	w.booking.submitting = true
	w.booking.err = ""
	gen := w.bookingGen
	w.mu.Unlock()

	err = w.appointments.Create(ctx, sess.Token(), appointment)

	w.mu.Lock()
	defer w.mu.Unlock()
	if gen != w.bookingGen || w.booking == nil {
		// CancelBooking refuses while submitting, so this only happens if the
		// view was discarded underneath us.
		return ErrSupersededResponse
	}
	if err != nil {
		w.booking.submitting = false
		w.booking.err = stageMessage(err, MsgBookingFailed)
		w.log.Warnf("Failed to book appointment with doctor %d at %s %s: %+v", appointment.DoctorID, appointment.Date, appointment.Time, err)
		w.metrics.ObserveTransition("submit_booking", "error")
		return err
	}

	w.log.Infof("Appointment booked: doctor=%d, pet=%d, slot=%s %s, type=%s", appointment.DoctorID, appointment.PetID, appointment.Date, appointment.Time, appointment.AppointmentType)
	w.bookingGen++
	w.booking = nil
	w.notice = MsgBookingSucceeded
	w.metrics.ObserveTransition("submit_booking", "ok")
	return nil
}

// WorkflowView is a consistent copy of the view state.
type WorkflowView struct {
	State           State
	DateRange       entity.DateRange
	Calendar        []entity.CalendarDay
	CalendarLoading bool
	CalendarError   string

	SelectedSlot   *entity.SelectedSlot
	Doctors        []entity.AvailableDoctor
	DoctorsLoading bool
	DoctorsError   string
	NoDoctors      bool

	Booking *BookingView
	Notice  string
}

// BookingView is the rendered booking form: draft, pet list and submit state.
type BookingView struct {
	Draft       entity.BookingDraft
	Pets        []entity.Pet
	PetsLoading bool
	PetsError   string
	Submitting  bool
	CanSubmit   bool
	Error       string
}

// Snapshot copies the current state for rendering.
func (w *Workflow) Snapshot() WorkflowView {
	w.mu.Lock()
	defer w.mu.Unlock()

	view := WorkflowView{
		State:           w.state(),
		DateRange:       w.dateRange,
		Calendar:        append([]entity.CalendarDay(nil), w.calendar...),
		CalendarLoading: w.calendarLoading,
		CalendarError:   w.calendarErr,
		Notice:          w.notice,
	}
	if view.Calendar == nil {
		view.Calendar = []entity.CalendarDay{}
	}

	if w.slot != nil {
		slot := w.slot.slot
		view.SelectedSlot = &slot
		view.Doctors = append([]entity.AvailableDoctor{}, w.slot.doctors...)
		view.DoctorsLoading = w.slot.loading
		view.DoctorsError = w.slot.err
		view.NoDoctors = !w.slot.loading && w.slot.err == "" && len(w.slot.doctors) == 0
	}

	if w.booking != nil {
		view.Booking = &BookingView{
			Draft:       w.booking.draft,
			Pets:        append([]entity.Pet{}, w.roster.pets...),
			PetsLoading: w.roster.loading,
			PetsError:   w.roster.err,
			Submitting:  w.booking.submitting,
			CanSubmit:   w.booking.draft.Form.Complete() && !w.booking.submitting,
			Error:       w.booking.err,
		}
	}
	return view
}

// CanSubmit reports whether the submit action is enabled.
func (w *Workflow) CanSubmit() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.booking != nil && w.booking.draft.Form.Complete() && !w.booking.submitting
}

func rosterHas(pets []entity.Pet, id int) bool {
	for _, p := range pets {
		if p.ID == id {
			return true
		}
	}
	return false
}

func rangeMessage(err error) string {
	switch {
	case errors.Is(err, entity.ErrDateRangeIncomplete):
		return msgRangeIncomplete
	case errors.Is(err, entity.ErrDateRangeInverted):
		return msgRangeInverted
	default:
		return msgRangeInvalidDate
	}
}

// stageMessage prefers the backend's message over the stage fallback.
func stageMessage(err error, fallback string) string {
	if msg := repository.ServerMessage(err); msg != "" {
		return msg
	}
	return fallback
}
