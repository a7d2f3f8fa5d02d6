package usecase

import (
	"context"
	"io"
	"sync"
	"time"

	"vetclinic-portal/internal/domain/entity"
	"vetclinic-portal/internal/domain/repository"

	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type doctorsQuery struct {
	Date string
	Time string
}

type fakeCalendars struct {
	mu            sync.Mutex
	calendarCalls []entity.DateRange
	doctorCalls   []doctorsQuery

	calendarFn func(ctx context.Context, dateRange entity.DateRange) ([]entity.CalendarDay, error)
	doctorsFn  func(ctx context.Context, date, time string) ([]entity.AvailableDoctor, error)
}

func (f *fakeCalendars) GetCalendar(ctx context.Context, token string, dateRange entity.DateRange) ([]entity.CalendarDay, error) {
	f.mu.Lock()
	f.calendarCalls = append(f.calendarCalls, dateRange)
	fn := f.calendarFn
	f.mu.Unlock()
	if fn == nil {
		return []entity.CalendarDay{}, nil
	}
	return fn(ctx, dateRange)
}

func (f *fakeCalendars) GetAvailableDoctors(ctx context.Context, token string, date, time string) ([]entity.AvailableDoctor, error) {
	f.mu.Lock()
	f.doctorCalls = append(f.doctorCalls, doctorsQuery{Date: date, Time: time})
	fn := f.doctorsFn
	f.mu.Unlock()
	if fn == nil {
		return []entity.AvailableDoctor{}, nil
	}
	return fn(ctx, date, time)
}

func (f *fakeCalendars) calls() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calendarCalls), len(f.doctorCalls)
}

type fakePets struct {
	mu    sync.Mutex
	calls int
	pets  []entity.Pet
	err   error
}

func (f *fakePets) ListPets(ctx context.Context, token string) ([]entity.Pet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return append([]entity.Pet{}, f.pets...), nil
}

func (f *fakePets) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeAppointments struct {
	mu        sync.Mutex
	created   []entity.NewAppointment
	createFn  func(ctx context.Context) error
	upcoming  []entity.UpcomingAppointment
	listErr   error
	cancelled []int
	cancelErr error
}

func (f *fakeAppointments) Create(ctx context.Context, token string, appointment *entity.NewAppointment) error {
	f.mu.Lock()
	f.created = append(f.created, *appointment)
	fn := f.createFn
	f.mu.Unlock()
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (f *fakeAppointments) ListUpcoming(ctx context.Context, token string) ([]entity.UpcomingAppointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]entity.UpcomingAppointment{}, f.upcoming...), nil
}

func (f *fakeAppointments) Cancel(ctx context.Context, token string, appointmentID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cancelErr != nil {
		return f.cancelErr
	}
	f.cancelled = append(f.cancelled, appointmentID)
	return nil
}

func (f *fakeAppointments) createdCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created)
}

type memoryRosterCache struct {
	mu      sync.Mutex
	rosters map[string][]entity.Pet
}

func newMemoryRosterCache() *memoryRosterCache {
	return &memoryRosterCache{rosters: make(map[string][]entity.Pet)}
}

func (c *memoryRosterCache) Get(ctx context.Context, userKey string) ([]entity.Pet, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	pets, ok := c.rosters[userKey]
	return pets, ok, nil
}

func (c *memoryRosterCache) Set(ctx context.Context, userKey string, pets []entity.Pet) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rosters[userKey] = pets
	return nil
}

func (c *memoryRosterCache) Invalidate(ctx context.Context, userKey string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.rosters, userKey)
	return nil
}

type memorySessionStore struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
}

func newMemorySessionStore() *memorySessionStore {
	return &memorySessionStore{revoked: make(map[string]time.Duration)}
}

func (s *memorySessionStore) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[token] = ttl
	return nil
}

func (s *memorySessionStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.revoked[token]
	return ok, nil
}

type fakeAuth struct {
	session     *repository.AuthSession
	err         error
	logoutErr   error
	logoutCalls int
	recovered   []string
}

func (f *fakeAuth) Login(ctx context.Context, email, password string) (*repository.AuthSession, error) {
	return f.session, f.err
}

func (f *fakeAuth) Register(ctx context.Context, name, email, password string) (*repository.AuthSession, error) {
	return f.session, f.err
}

func (f *fakeAuth) Logout(ctx context.Context, token string) error {
	f.logoutCalls++
	return f.logoutErr
}

func (f *fakeAuth) RecoverPassword(ctx context.Context, email string) error {
	f.recovered = append(f.recovered, email)
	return f.err
}

type fakeHealth struct {
	msg string
	err error
}

func (f *fakeHealth) Health(ctx context.Context) (string, error) {
	return f.msg, f.err
}

var (
	signedIn  = NewSession("tok", "5", true)
	anonymous = AnonymousSession()

	june10Nine = entity.SelectedSlot{Date: "2025-06-10", Time: "09:00", TimeRange: "09:00 - 09:30"}
	drSmith    = entity.AvailableDoctor{ID: 1, Name: "Dr. Smith", Specialization: "Surgery"}
	rex        = entity.Pet{ID: 7, Name: "Rex", Species: "dog"}
)
