package usecase

import (
	"context"

	"vetclinic-portal/internal/delivery/dto"
	"vetclinic-portal/internal/domain/repository"

	"github.com/sirupsen/logrus"
)

// HealthyMessage is what a healthy clinic backend answers on /health.
const HealthyMessage = "API is running"

type HealthUsecase interface {
	Check(ctx context.Context) *dto.HealthResponse
}

type healthUsecase struct {
	log        *logrus.Logger
	healthRepo repository.HealthRepository
}

func NewHealthUsecase(log *logrus.Logger, healthRepo repository.HealthRepository) HealthUsecase {
	return &healthUsecase{log: log, healthRepo: healthRepo}
}

func (u *healthUsecase) Check(ctx context.Context) *dto.HealthResponse {
	msg, err := u.healthRepo.Health(ctx)
	if err != nil {
		u.log.Warnf("Backend health check failed: %+v", err)
		return &dto.HealthResponse{Status: "unhealthy", Message: "Unable to reach the clinic API"}
	}
	if msg != HealthyMessage {
		return &dto.HealthResponse{Status: "unhealthy", Message: msg}
	}
	return &dto.HealthResponse{Status: "healthy", Message: msg, Healthy: true}
}
