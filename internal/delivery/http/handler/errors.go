package handler

import (
	"errors"
	"net/http"

	"vetclinic-portal/internal/delivery/http/middleware"
	"vetclinic-portal/internal/domain/repository"
	"vetclinic-portal/internal/usecase"
	"vetclinic-portal/pkg/response"
)

func isBackendError(err error) bool {
	var apiErr *repository.APIError
	return errors.As(err, &apiErr)
}

// writeBackendError renders a clinic API failure. A backend 401 revokes the
// caller's token locally and sends the UI to the login page.
func writeBackendError(w http.ResponseWriter, r *http.Request, auth usecase.AuthUsecase, err error, fallback string, data interface{}) {
	status := repository.StatusOf(err)
	message := repository.ServerMessage(err)
	if message == "" {
		message = fallback
	}

	switch {
	case repository.IsUnavailable(err):
		response.BadGateway(w, fallback, data)
	case status == http.StatusUnauthorized:
		if auth != nil {
			auth.RevokeSession(r.Context(), middleware.BearerToken(r))
		}
		response.SessionExpired(w, usecase.LoginPath, data)
	case status >= http.StatusBadRequest && status < http.StatusInternalServerError:
		response.Fail(w, status, message, data)
	default:
		response.BadGateway(w, message, data)
	}
}
