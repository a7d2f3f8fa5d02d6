package handler

import (
	"net/http"

	"vetclinic-portal/internal/usecase"
	"vetclinic-portal/pkg/response"
)

type HealthHandler struct {
	healthUsecase usecase.HealthUsecase
}

func NewHealthHandler(healthUsecase usecase.HealthUsecase) *HealthHandler {
	return &HealthHandler{healthUsecase: healthUsecase}
}

// Health reports the portal as up and includes the clinic backend status.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := h.healthUsecase.Check(r.Context())
	if !status.Healthy {
		response.Fail(w, http.StatusServiceUnavailable, status.Message, status)
		return
	}
	response.Success(w, http.StatusOK, status.Message, status)
}
