package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"vetclinic-portal/config"
	"vetclinic-portal/internal/delivery/dto"
	"vetclinic-portal/internal/delivery/http/handler"
	"vetclinic-portal/internal/delivery/http/middleware"
	"vetclinic-portal/internal/domain/entity"
	"vetclinic-portal/internal/domain/repository"
	"vetclinic-portal/internal/infrastructure/metrics"
	"vetclinic-portal/internal/service"
	"vetclinic-portal/internal/usecase"
	"vetclinic-portal/pkg/jwt"
	"vetclinic-portal/pkg/validator"

	"github.com/alicebob/miniredis/v2"
	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "router-secret"

type stubCalendars struct {
	calendarErr error
	doctors     []entity.AvailableDoctor
}

func (s *stubCalendars) GetCalendar(ctx context.Context, token string, dateRange entity.DateRange) ([]entity.CalendarDay, error) {
	if s.calendarErr != nil {
		return nil, s.calendarErr
	}
	return []entity.CalendarDay{{
		Date:                dateRange.Start,
		DayName:             "Tuesday",
		TotalAvailableSlots: 1,
		AvailableSlots: []entity.TimeSlot{
			{Time: "09:00", TimeRange: "09:00 - 09:30", AvailableCount: 1, TotalDoctors: 2},
		},
	}}, nil
}

func (s *stubCalendars) GetAvailableDoctors(ctx context.Context, token string, date, time string) ([]entity.AvailableDoctor, error) {
	return s.doctors, nil
}

type stubPets struct {
	pets []entity.Pet
}

func (s *stubPets) ListPets(ctx context.Context, token string) ([]entity.Pet, error) {
	return s.pets, nil
}

type stubAppointments struct {
	mu        sync.Mutex
	created   []entity.NewAppointment
	createErr error
	upcoming  []entity.UpcomingAppointment
	cancelled []int
}

func (s *stubAppointments) Create(ctx context.Context, token string, appointment *entity.NewAppointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	s.created = append(s.created, *appointment)
	return nil
}

func (s *stubAppointments) ListUpcoming(ctx context.Context, token string) ([]entity.UpcomingAppointment, error) {
	return s.upcoming, nil
}

func (s *stubAppointments) Cancel(ctx context.Context, token string, appointmentID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelled = append(s.cancelled, appointmentID)
	return nil
}

type stubAuth struct {
	loginErr error
}

func (s *stubAuth) Login(ctx context.Context, email, password string) (*repository.AuthSession, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return &repository.AuthSession{Token: "backend-token", User: entity.User{ID: 5, Name: "Ana", Email: email}}, nil
}

func (s *stubAuth) Register(ctx context.Context, name, email, password string) (*repository.AuthSession, error) {
	return &repository.AuthSession{Token: "backend-token", User: entity.User{ID: 6, Name: name, Email: email}}, nil
}

func (s *stubAuth) Logout(ctx context.Context, token string) error { return nil }

func (s *stubAuth) RecoverPassword(ctx context.Context, email string) error { return nil }

type stubHealth struct {
	message string
	err     error
}

func (s *stubHealth) Health(ctx context.Context) (string, error) {
	return s.message, s.err
}

type testPortal struct {
	handler      http.Handler
	calendars    *stubCalendars
	appointments *stubAppointments
	health       *stubHealth
	redis        *miniredis.Miniredis
}

func newTestPortal(t *testing.T) *testPortal {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })

	reg := prometheus.NewRegistry()
	calendars := &stubCalendars{doctors: []entity.AvailableDoctor{{ID: 1, Name: "Dr. Smith", Specialization: "Surgery"}}}
	appointments := &stubAppointments{}
	health := &stubHealth{message: usecase.HealthyMessage}
	rosters := service.NewRosterCache(redisClient, time.Minute, log)

	authUsecase := usecase.NewAuthUsecase(log, &stubAuth{}, jwt.NewJWTService(config.JWTConfig{Secret: testSecret}),
		service.NewSessionStore(redisClient, log), rosters)
	views := usecase.NewCalendarViewUsecase(usecase.WorkflowDeps{
		Calendars:    calendars,
		Pets:         &stubPets{pets: []entity.Pet{{ID: 7, Name: "Rex", Species: "dog"}}},
		Appointments: appointments,
		RosterCache:  rosters,
		Log:          log,
		Metrics:      metrics.NewWorkflowMetrics(reg),
	}, time.Hour)
	t.Cleanup(views.Stop)

	v := validator.NewValidator()
	router := NewRouter(RouterDeps{
		CalendarViewHandler: handler.NewCalendarViewHandler(views, authUsecase, v),
		AppointmentHandler:  handler.NewAppointmentHandler(usecase.NewAppointmentUsecase(log, appointments), authUsecase),
		AuthHandler:         handler.NewAuthHandler(authUsecase, v),
		HealthHandler:       handler.NewHealthHandler(usecase.NewHealthUsecase(log, health)),
		AuthMiddleware:      middleware.NewAuthMiddleware(authUsecase),
		CORSMiddleware:      middleware.NewCORSMiddleware(nil),
		LoggingMiddleware:   middleware.NewLoggingMiddleware(log),
		MetricsGatherer:     reg,
	})

	return &testPortal{
		handler:      router.Setup(),
		calendars:    calendars,
		appointments: appointments,
		health:       health,
		redis:        mr,
	}
}

func signedToken(t *testing.T, userID int) string {
	t.Helper()
	claims := jwt.Claims{
		UserID: jwt.FormatUserID(userID),
		Email:  "ana@example.com",
		RegisteredClaims: jwtlib.RegisteredClaims{
			ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

type viewEnvelope struct {
	Success  bool                     `json:"success"`
	Message  string                   `json:"message"`
	Redirect string                   `json:"redirect"`
	Data     dto.CalendarViewResponse `json:"data"`
}

func (p *testPortal) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	p.handler.ServeHTTP(rec, req)
	return rec
}

func decodeView(t *testing.T, rec *httptest.ResponseRecorder) viewEnvelope {
	t.Helper()
	var env viewEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func (p *testPortal) openView(t *testing.T, token string) string {
	t.Helper()
	rec := p.do(t, http.MethodPost, "/api/v1/calendar-views", token, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	env := decodeView(t, rec)
	require.Len(t, env.Data.Calendar.Days, 1)
	return "/api/v1/calendar-views/" + env.Data.ID.String()
}

var slotBody = dto.SelectSlotRequest{Date: "2025-06-10", Time: "09:00", TimeRange: "09:00 - 09:30"}

func TestRouter_BookingFlow(t *testing.T) {
	p := newTestPortal(t)
	token := signedToken(t, 5)
	view := p.openView(t, token)

	rec := p.do(t, http.MethodPost, view+"/slot", token, slotBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	env := decodeView(t, rec)
	assert.Equal(t, string(usecase.StateDoctorsListed), env.Data.State)
	require.NotNil(t, env.Data.Slot)
	require.Len(t, env.Data.Slot.Doctors, 1)

	rec = p.do(t, http.MethodPost, view+"/doctor", token, dto.ChooseDoctorRequest{DoctorID: 1})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	env = decodeView(t, rec)
	assert.Equal(t, string(usecase.StateBookingOpen), env.Data.State)
	require.NotNil(t, env.Data.Booking)
	require.Len(t, env.Data.Booking.Pets, 1)
	assert.False(t, env.Data.Booking.CanSubmit)
	assert.Equal(t, entity.Durations, env.Data.Booking.Form.Durations)

	rec = p.do(t, http.MethodPatch, view+"/booking", token, map[string]interface{}{
		"pet_id":           "7",
		"appointment_type": "checkup",
		"duration":         45,
		"notes":            "limping",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	env = decodeView(t, rec)
	assert.True(t, env.Data.Booking.CanSubmit)

	rec = p.do(t, http.MethodPost, view+"/booking/submit", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	env = decodeView(t, rec)
	assert.Equal(t, usecase.MsgBookingSucceeded, env.Message)
	assert.Equal(t, string(usecase.StateDoctorsListed), env.Data.State)
	assert.Nil(t, env.Data.Booking)
	assert.Equal(t, usecase.MsgBookingSucceeded, env.Data.Notice)

	require.Len(t, p.appointments.created, 1)
	created := p.appointments.created[0]
	assert.Equal(t, 1, created.DoctorID)
	assert.Equal(t, 7, created.PetID)
	assert.Equal(t, 45, created.Duration)
	require.NotNil(t, created.Notes)
	assert.Equal(t, "limping", *created.Notes)
}

func TestRouter_AnonymousDoctorChoiceRedirects(t *testing.T) {
	p := newTestPortal(t)
	view := p.openView(t, "")

	require.Equal(t, http.StatusOK, p.do(t, http.MethodPost, view+"/slot", "", slotBody).Code)

	rec := p.do(t, http.MethodPost, view+"/doctor", "", dto.ChooseDoctorRequest{DoctorID: 1})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	env := decodeView(t, rec)
	assert.True(t, env.Success)
	assert.Equal(t, usecase.LoginPath, env.Redirect)
	assert.Equal(t, string(usecase.StateDoctorsListed), env.Data.State)
	assert.Nil(t, env.Data.Booking)
}

func TestRouter_BackendUnauthorizedExpiresSession(t *testing.T) {
	p := newTestPortal(t)
	token := signedToken(t, 5)
	view := p.openView(t, token)

	require.Equal(t, http.StatusOK, p.do(t, http.MethodPost, view+"/slot", token, slotBody).Code)
	require.Equal(t, http.StatusOK, p.do(t, http.MethodPost, view+"/doctor", token, dto.ChooseDoctorRequest{DoctorID: 1}).Code)
	require.Equal(t, http.StatusOK, p.do(t, http.MethodPatch, view+"/booking", token, map[string]interface{}{
		"pet_id":           "7",
		"appointment_type": "regular",
	}).Code)

	p.appointments.createErr = &repository.APIError{Status: http.StatusUnauthorized}
	rec := p.do(t, http.MethodPost, view+"/booking/submit", token, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code, rec.Body.String())
	env := decodeView(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, usecase.LoginPath, env.Redirect)
	require.NotNil(t, env.Data.Booking)
	assert.Equal(t, "7", env.Data.Booking.Form.PetID)

	// The token is now revoked locally.
	rec = p.do(t, http.MethodGet, "/api/v1/appointments/upcoming", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_BackendRejectionKeepsForm(t *testing.T) {
	p := newTestPortal(t)
	token := signedToken(t, 5)
	view := p.openView(t, token)

	require.Equal(t, http.StatusOK, p.do(t, http.MethodPost, view+"/slot", token, slotBody).Code)
	require.Equal(t, http.StatusOK, p.do(t, http.MethodPost, view+"/doctor", token, dto.ChooseDoctorRequest{DoctorID: 1}).Code)
	require.Equal(t, http.StatusOK, p.do(t, http.MethodPatch, view+"/booking", token, map[string]interface{}{
		"pet_id":           "7",
		"appointment_type": "surgery",
	}).Code)

	p.appointments.createErr = &repository.APIError{Status: http.StatusUnprocessableEntity, Message: "Doctor is not available at this time"}
	rec := p.do(t, http.MethodPost, view+"/booking/submit", token, nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	env := decodeView(t, rec)
	assert.Equal(t, "Doctor is not available at this time", env.Message)
	assert.Equal(t, string(usecase.StateBookingOpen), env.Data.State)
	assert.Equal(t, "Doctor is not available at this time", env.Data.Booking.Error)
	assert.Equal(t, "surgery", env.Data.Booking.Form.AppointmentType)
}

func TestRouter_SlotChangeWhileBookingOpen(t *testing.T) {
	p := newTestPortal(t)
	token := signedToken(t, 5)
	view := p.openView(t, token)

	require.Equal(t, http.StatusOK, p.do(t, http.MethodPost, view+"/slot", token, slotBody).Code)
	require.Equal(t, http.StatusOK, p.do(t, http.MethodPost, view+"/doctor", token, dto.ChooseDoctorRequest{DoctorID: 1}).Code)

	rec := p.do(t, http.MethodDelete, view+"/slot", token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, string(usecase.StateBookingOpen), decodeView(t, rec).Data.State)

	rec = p.do(t, http.MethodDelete, view+"/booking", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(usecase.StateDoctorsListed), decodeView(t, rec).Data.State)
}

func TestRouter_DateRangeErrors(t *testing.T) {
	p := newTestPortal(t)
	view := p.openView(t, "")

	rec := p.do(t, http.MethodPost, view+"/search", "", dto.DateRangeRequest{StartDate: "2025-06-12", EndDate: "2025-06-10"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeView(t, rec)
	assert.False(t, env.Success)
	assert.NotEmpty(t, env.Data.Calendar.Error)

	rec = p.do(t, http.MethodPut, view+"/range", "", map[string]string{"start_date": "10/06/2025"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Validation failed")
}

func TestRouter_CalendarBackendFailure(t *testing.T) {
	p := newTestPortal(t)
	view := p.openView(t, "")

	p.calendars.calendarErr = &repository.APIError{Message: "connection refused"}
	rec := p.do(t, http.MethodPost, view+"/search", "", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	env := decodeView(t, rec)
	assert.Equal(t, usecase.MsgCalendarFailed, env.Message)
	assert.Equal(t, usecase.MsgCalendarFailed, env.Data.Calendar.Error)
}

func TestRouter_ViewLookup(t *testing.T) {
	p := newTestPortal(t)

	rec := p.do(t, http.MethodGet, "/api/v1/calendar-views/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = p.do(t, http.MethodGet, "/api/v1/calendar-views/3b241101-e2bb-4255-8caf-4136c566a962", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	view := p.openView(t, "")
	assert.Equal(t, http.StatusOK, p.do(t, http.MethodGet, view, "", nil).Code)
	assert.Equal(t, http.StatusOK, p.do(t, http.MethodDelete, view, "", nil).Code)
	assert.Equal(t, http.StatusNotFound, p.do(t, http.MethodGet, view, "", nil).Code)
}

func TestRouter_Appointments(t *testing.T) {
	p := newTestPortal(t)
	token := signedToken(t, 5)
	p.appointments.upcoming = []entity.UpcomingAppointment{
		{ID: 42, Status: entity.AppointmentStatusScheduled},
	}

	assert.Equal(t, http.StatusUnauthorized, p.do(t, http.MethodGet, "/api/v1/appointments/upcoming", "", nil).Code)

	rec := p.do(t, http.MethodGet, "/api/v1/appointments/upcoming", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"cancellable":true`)

	assert.Equal(t, http.StatusBadRequest, p.do(t, http.MethodPatch, "/api/v1/appointments/abc/cancel", token, nil).Code)
	assert.Equal(t, http.StatusNotFound, p.do(t, http.MethodPatch, "/api/v1/appointments/7/cancel", token, nil).Code)
	assert.Equal(t, http.StatusOK, p.do(t, http.MethodPatch, "/api/v1/appointments/42/cancel", token, nil).Code)
	assert.Equal(t, []int{42}, p.appointments.cancelled)
}

func TestRouter_AuthRoutes(t *testing.T) {
	p := newTestPortal(t)

	rec := p.do(t, http.MethodPost, "/api/v1/auth/login", "", dto.LoginRequest{Email: "ana@example.com", Password: "secret1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "backend-token")

	rec = p.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, http.StatusUnauthorized, p.do(t, http.MethodPost, "/api/v1/auth/logout", "", nil).Code)

	token := signedToken(t, 5)
	require.Equal(t, http.StatusOK, p.do(t, http.MethodPost, "/api/v1/auth/logout", token, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, p.do(t, http.MethodPost, "/api/v1/auth/logout", token, nil).Code)
}

func TestRouter_Health(t *testing.T) {
	p := newTestPortal(t)

	rec := p.do(t, http.MethodGet, "/api/v1/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), usecase.HealthyMessage)

	p.health.err = &repository.APIError{Message: "connection refused"}
	rec = p.do(t, http.MethodGet, "/api/v1/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRouter_MetricsAndPreflight(t *testing.T) {
	p := newTestPortal(t)
	p.openView(t, "")

	rec := p.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "vetportal_booking_active_views"), rec.Body.String())

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/calendar-views/anything/booking", nil)
	req.Header.Set("Origin", "http://portal.test")
	res := httptest.NewRecorder()
	p.handler.ServeHTTP(res, req)
	assert.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "*", res.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, res.Header().Get("Access-Control-Allow-Methods"), http.MethodPatch)
}

func TestRouter_ViewBelongsToOpener(t *testing.T) {
	p := newTestPortal(t)
	owner := signedToken(t, 5)
	intruder := signedToken(t, 9)
	view := p.openView(t, owner)

	require.Equal(t, http.StatusOK, p.do(t, http.MethodPost, view+"/slot", owner, slotBody).Code)
	require.Equal(t, http.StatusOK, p.do(t, http.MethodPost, view+"/doctor", owner, dto.ChooseDoctorRequest{DoctorID: 1}).Code)

	for _, token := range []string{"", intruder} {
		rec := p.do(t, http.MethodGet, view, token, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.NotContains(t, rec.Body.String(), "Rex")

		assert.Equal(t, http.StatusNotFound, p.do(t, http.MethodDelete, view+"/booking", token, nil).Code)
		assert.Equal(t, http.StatusNotFound, p.do(t, http.MethodPatch, view+"/booking", token, map[string]string{"pet_id": "7"}).Code)
		assert.Equal(t, http.StatusNotFound, p.do(t, http.MethodDelete, view, token, nil).Code)
	}

	rec := p.do(t, http.MethodGet, view, owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeView(t, rec)
	assert.Equal(t, string(usecase.StateBookingOpen), env.Data.State)
	require.NotNil(t, env.Data.Booking)
	assert.Len(t, env.Data.Booking.Pets, 1)
}
