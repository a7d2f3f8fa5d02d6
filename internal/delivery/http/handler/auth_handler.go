package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"vetclinic-portal/internal/converter"
	"vetclinic-portal/internal/delivery/dto"
	"vetclinic-portal/internal/delivery/http/middleware"
	"vetclinic-portal/internal/usecase"
	"vetclinic-portal/pkg/response"
	"vetclinic-portal/pkg/validator"
)

type AuthHandler struct {
	authUsecase usecase.AuthUsecase
	validator   *validator.CustomValidator
}

func NewAuthHandler(authUsecase usecase.AuthUsecase, validator *validator.CustomValidator) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		validator:   validator,
	}
}

// Register handles user registration
// @Summary Register a new customer account
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Register Request"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	session, err := h.authUsecase.Register(r.Context(), &req)
	if err != nil {
		if isBackendError(err) {
			writeBackendError(w, r, nil, err, "Registration failed", nil)
			return
		}
		response.InternalServerError(w, "Failed to register user")
		return
	}

	response.Success(w, http.StatusCreated, "User registered successfully", converter.AuthSessionToResponse(session))
}

// Login handles user login
// @Summary Login user
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login Request"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	session, err := h.authUsecase.Login(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidCredentials):
			response.Unauthorized(w, "Invalid email or password")
		case isBackendError(err):
			writeBackendError(w, r, nil, err, "Login failed", nil)
		default:
			response.InternalServerError(w, "Failed to login")
		}
		return
	}

	response.Success(w, http.StatusOK, "Login successful", converter.AuthSessionToResponse(session))
}

// Logout handles user logout
// @Summary Logout user
// @Tags Auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSessionFromContext(r.Context())
	if err := h.authUsecase.Logout(r.Context(), sess); err != nil {
		switch {
		case errors.Is(err, usecase.ErrNotAuthenticated):
			response.Unauthorized(w, "Invalid token")
		default:
			response.InternalServerError(w, "Failed to logout")
		}
		return
	}

	response.Success(w, http.StatusOK, "Logout successful", nil)
}

// RecoverPassword handles password recovery requests
// @Summary Request password recovery email
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RecoverPasswordRequest true "Recover Request"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /auth/recover [post]
func (h *AuthHandler) RecoverPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.RecoverPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	if err := h.authUsecase.RecoverPassword(r.Context(), &req); err != nil {
		if isBackendError(err) {
			writeBackendError(w, r, nil, err, "Password recovery failed", nil)
			return
		}
		response.InternalServerError(w, "Password recovery failed")
		return
	}

	response.Success(w, http.StatusOK, "Password recovery instructions have been sent to your email.", nil)
}
