package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"vetclinic-portal/internal/domain/entity"
	"vetclinic-portal/internal/infrastructure/metrics"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var ErrCalendarViewNotFound = errors.New("calendar view not found")

const (
	defaultViewIdleTTL     = 30 * time.Minute
	minViewCleanupInterval = time.Second
	maxViewCleanupInterval = time.Minute
)

// CalendarViewUsecase owns the live calendar views. Every call returns the
// view's snapshot after the transition, also when the transition failed.
//
// A view opened by a signed-in user belongs to that user. An anonymous view
// is shared until a signed-in caller chooses a doctor on it. Callers other
// than the owner get ErrCalendarViewNotFound.
type CalendarViewUsecase interface {
	Open(ctx context.Context, sess Session) (uuid.UUID, WorkflowView)
	Get(id uuid.UUID, sess Session) (WorkflowView, error)
	Close(id uuid.UUID, sess Session) error
	SetDateRange(id uuid.UUID, sess Session, dateRange entity.DateRange) (WorkflowView, error)
	Search(ctx context.Context, id uuid.UUID, sess Session) (WorkflowView, error)
	SelectSlot(ctx context.Context, id uuid.UUID, sess Session, slot entity.SelectedSlot) (WorkflowView, error)
	CloseSlot(id uuid.UUID, sess Session) (WorkflowView, error)
	ChooseDoctor(ctx context.Context, id uuid.UUID, sess Session, doctorID int) (*Outcome, WorkflowView, error)
	UpdateBookingForm(id uuid.UUID, sess Session, patch BookingFormPatch) (WorkflowView, error)
	CancelBooking(id uuid.UUID, sess Session) (WorkflowView, error)
	SubmitBooking(ctx context.Context, id uuid.UUID, sess Session) (WorkflowView, error)
	Stop()
}

type viewEntry struct {
	workflow *Workflow
	// owner is the user key, "" while anonymous. Guarded by calendarViewUsecase.mu.
	owner    string
	lastUsed atomic.Int64 // Unix nanos
}

type calendarViewUsecase struct {
	deps    WorkflowDeps
	log     *logrus.Logger
	metrics *metrics.WorkflowMetrics
	idleTTL time.Duration
	now     func() time.Time

	mu    sync.Mutex
	views map[uuid.UUID]*viewEntry

	stopChan chan struct{}
	wg       sync.WaitGroup
	stopped  atomic.Bool
}

// NewCalendarViewUsecase starts the idle-view janitor. Call Stop during
// graceful shutdown.
func NewCalendarViewUsecase(deps WorkflowDeps, idleTTL time.Duration) CalendarViewUsecase {
	return newCalendarViewUsecase(deps, idleTTL, time.Now)
}

func newCalendarViewUsecase(deps WorkflowDeps, idleTTL time.Duration, now func() time.Time) *calendarViewUsecase {
	if idleTTL <= 0 {
		idleTTL = defaultViewIdleTTL
	}
	log := deps.Log
	if log == nil {
		log = logrus.StandardLogger()
		deps.Log = log
	}
	u := &calendarViewUsecase{
		deps:     deps,
		log:      log,
		metrics:  deps.Metrics,
		idleTTL:  idleTTL,
		now:      now,
		views:    make(map[uuid.UUID]*viewEntry),
		stopChan: make(chan struct{}),
	}

	u.wg.Add(1)
	go u.cleanupLoop()

	return u
}

// Stop halts the janitor. Safe to call multiple times.
func (u *calendarViewUsecase) Stop() {
	if u.stopped.CompareAndSwap(false, true) {
		close(u.stopChan)
		u.wg.Wait()
		u.log.Info("Calendar view janitor stopped")
	}
}

func (u *calendarViewUsecase) cleanupLoop() {
	defer u.wg.Done()

	interval := u.idleTTL / 2
	if interval < minViewCleanupInterval {
		interval = minViewCleanupInterval
	}
	if interval > maxViewCleanupInterval {
		interval = maxViewCleanupInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-u.stopChan:
			return
		case <-ticker.C:
			u.evictIdle()
		}
	}
}

// evictIdle drops views untouched for longer than idleTTL.
func (u *calendarViewUsecase) evictIdle() int {
	cutoff := u.now().Add(-u.idleTTL).UnixNano()

	u.mu.Lock()
	defer u.mu.Unlock()

	evicted := 0
	for id, entry := range u.views {
		if entry.lastUsed.Load() < cutoff {
			delete(u.views, id)
			evicted++
		}
	}
	if evicted > 0 {
		u.log.Debugf("Evicted %d idle calendar views", evicted)
	}
	u.metrics.SetActiveViews(len(u.views))
	return evicted
}

// ownerOf returns the user key a session may own views under.
func ownerOf(sess Session) string {
	if sess == nil || !sess.IsAuthenticated() {
		return ""
	}
	return sess.UserKey()
}

// lookup returns the view if sess may use it. With claim set, an anonymous
// view becomes owned by a signed-in caller.
func (u *calendarViewUsecase) lookup(id uuid.UUID, sess Session, claim bool) (*Workflow, error) {
	caller := ownerOf(sess)

	u.mu.Lock()
	defer u.mu.Unlock()
	entry, ok := u.views[id]
	if !ok {
		return nil, ErrCalendarViewNotFound
	}
	if entry.owner != "" && entry.owner != caller {
		u.log.Debugf("Rejecting access to calendar view %s by non-owner", id)
		return nil, ErrCalendarViewNotFound
	}
	if claim && entry.owner == "" && caller != "" {
		entry.owner = caller
	}
	entry.lastUsed.Store(u.now().UnixNano())
	return entry.workflow, nil
}

// Open creates a view over the default range and runs the first search.
// A failed first search is reported in the snapshot only.
func (u *calendarViewUsecase) Open(ctx context.Context, sess Session) (uuid.UUID, WorkflowView) {
	id := uuid.New()
	workflow := NewWorkflow(u.deps, u.now())
	entry := &viewEntry{workflow: workflow, owner: ownerOf(sess)}
	entry.lastUsed.Store(u.now().UnixNano())

	u.mu.Lock()
	u.views[id] = entry
	active := len(u.views)
	u.mu.Unlock()
	u.metrics.SetActiveViews(active)

	if err := workflow.Search(ctx, sess); err != nil {
		u.log.Debugf("Initial search of calendar view %s failed: %v", id, err)
	}
	return id, workflow.Snapshot()
}

func (u *calendarViewUsecase) Get(id uuid.UUID, sess Session) (WorkflowView, error) {
	workflow, err := u.lookup(id, sess, false)
	if err != nil {
		return WorkflowView{}, err
	}
	return workflow.Snapshot(), nil
}

func (u *calendarViewUsecase) Close(id uuid.UUID, sess Session) error {
	if _, err := u.lookup(id, sess, false); err != nil {
		return err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.views, id)
	u.metrics.SetActiveViews(len(u.views))
	return nil
}

func (u *calendarViewUsecase) SetDateRange(id uuid.UUID, sess Session, dateRange entity.DateRange) (WorkflowView, error) {
	workflow, err := u.lookup(id, sess, false)
	if err != nil {
		return WorkflowView{}, err
	}
	workflow.SetDateRange(dateRange)
	return workflow.Snapshot(), nil
}

func (u *calendarViewUsecase) Search(ctx context.Context, id uuid.UUID, sess Session) (WorkflowView, error) {
	workflow, err := u.lookup(id, sess, false)
	if err != nil {
		return WorkflowView{}, err
	}
	err = workflow.Search(ctx, sess)
	return workflow.Snapshot(), err
}

func (u *calendarViewUsecase) SelectSlot(ctx context.Context, id uuid.UUID, sess Session, slot entity.SelectedSlot) (WorkflowView, error) {
	workflow, err := u.lookup(id, sess, false)
	if err != nil {
		return WorkflowView{}, err
	}
	err = workflow.SelectSlot(ctx, sess, slot)
	return workflow.Snapshot(), err
}

func (u *calendarViewUsecase) CloseSlot(id uuid.UUID, sess Session) (WorkflowView, error) {
	workflow, err := u.lookup(id, sess, false)
	if err != nil {
		return WorkflowView{}, err
	}
	err = workflow.CloseSlot()
	return workflow.Snapshot(), err
}

func (u *calendarViewUsecase) ChooseDoctor(ctx context.Context, id uuid.UUID, sess Session, doctorID int) (*Outcome, WorkflowView, error) {
	workflow, err := u.lookup(id, sess, true)
	if err != nil {
		return nil, WorkflowView{}, err
	}
	outcome, err := workflow.ChooseDoctor(ctx, sess, doctorID)
	return outcome, workflow.Snapshot(), err
}

func (u *calendarViewUsecase) UpdateBookingForm(id uuid.UUID, sess Session, patch BookingFormPatch) (WorkflowView, error) {
	workflow, err := u.lookup(id, sess, false)
	if err != nil {
		return WorkflowView{}, err
	}
	err = workflow.UpdateBookingForm(patch)
	return workflow.Snapshot(), err
}

func (u *calendarViewUsecase) CancelBooking(id uuid.UUID, sess Session) (WorkflowView, error) {
	workflow, err := u.lookup(id, sess, false)
	if err != nil {
		return WorkflowView{}, err
	}
	err = workflow.CancelBooking()
	return workflow.Snapshot(), err
}

func (u *calendarViewUsecase) SubmitBooking(ctx context.Context, id uuid.UUID, sess Session) (WorkflowView, error) {
	workflow, err := u.lookup(id, sess, false)
	if err != nil {
		return WorkflowView{}, err
	}
	err = workflow.SubmitBooking(ctx, sess)
	return workflow.Snapshot(), err
}
