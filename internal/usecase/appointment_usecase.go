package usecase

import (
	"context"
	"errors"

	"vetclinic-portal/internal/domain/entity"
	"vetclinic-portal/internal/domain/repository"

	"github.com/sirupsen/logrus"
)

const MsgCancelFailed = "Failed to cancel appointment"

var (
	ErrAppointmentNotFound       = errors.New("appointment not found")
	ErrAppointmentNotCancellable = errors.New("appointment can no longer be cancelled")
)

type AppointmentUsecase interface {
	ListUpcoming(ctx context.Context, sess Session) ([]entity.UpcomingAppointment, error)
	Cancel(ctx context.Context, sess Session, appointmentID int) error
}

type appointmentUsecase struct {
	log             *logrus.Logger
	appointmentRepo repository.AppointmentRepository
}

func NewAppointmentUsecase(log *logrus.Logger, appointmentRepo repository.AppointmentRepository) AppointmentUsecase {
	return &appointmentUsecase{
		log:             log,
		appointmentRepo: appointmentRepo,
	}
}

func (u *appointmentUsecase) ListUpcoming(ctx context.Context, sess Session) ([]entity.UpcomingAppointment, error) {
	if !sess.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}
	list, err := u.appointmentRepo.ListUpcoming(ctx, sess.Token())
	if err != nil {
		u.log.Warnf("Failed to list upcoming appointments: %+v", err)
		return nil, err
	}
	return list, nil
}

// Cancel only forwards the request for an upcoming appointment whose status
// still allows cancelling.
func (u *appointmentUsecase) Cancel(ctx context.Context, sess Session, appointmentID int) error {
	list, err := u.ListUpcoming(ctx, sess)
	if err != nil {
		return err
	}

	var target *entity.UpcomingAppointment
	for i := range list {
		if list[i].ID == appointmentID {
			target = &list[i]
			break
		}
	}
	if target == nil {
		return ErrAppointmentNotFound
	}
	if !target.CanCancel() {
		return ErrAppointmentNotCancellable
	}

	if err := u.appointmentRepo.Cancel(ctx, sess.Token(), appointmentID); err != nil {
		u.log.Warnf("Failed to cancel appointment %d: %+v", appointmentID, err)
		return err
	}
	u.log.Infof("Appointment %d cancelled", appointmentID)
	return nil
}
