package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	domainRepo "vetclinic-portal/internal/domain/repository"
)

type authRepository struct {
	client *ClinicAPIClient
}

func NewAuthRepository(client *ClinicAPIClient) domainRepo.AuthRepository {
	return &authRepository{client: client}
}

func (r *authRepository) Login(ctx context.Context, email, password string) (*domainRepo.AuthSession, error) {
	body := map[string]string{"email": email, "password": password}
	var session domainRepo.AuthSession
	if err := r.client.getData(ctx, "auth_login", http.MethodPost, "/auth/login", "", body, &session); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return &session, nil
}

func (r *authRepository) Register(ctx context.Context, name, email, password string) (*domainRepo.AuthSession, error) {
	body := map[string]string{
		"name":                  name,
		"email":                 email,
		"password":              password,
		"password_confirmation": password,
	}
	var session domainRepo.AuthSession
	if err := r.client.getData(ctx, "auth_register", http.MethodPost, "/auth/register", "", body, &session); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return &session, nil
}

func (r *authRepository) Logout(ctx context.Context, token string) error {
	if _, err := r.client.doJSON(ctx, "auth_logout", http.MethodPost, "/auth/logout", token, nil); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (r *authRepository) RecoverPassword(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	if _, err := r.client.doJSON(ctx, "auth_recover", http.MethodPost, "/auth/recover", "", body); err != nil {
		return fmt.Errorf("recover password: %w", err)
	}
	return nil
}

type healthRepository struct {
	client *ClinicAPIClient
}

func NewHealthRepository(client *ClinicAPIClient) domainRepo.HealthRepository {
	return &healthRepository{client: client}
}

// Health returns the backend's health message.
func (r *healthRepository) Health(ctx context.Context) (string, error) {
	raw, err := r.client.doJSON(ctx, "health", http.MethodGet, "/health", "", nil)
	if err != nil {
		return "", fmt.Errorf("health: %w", err)
	}
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", fmt.Errorf("decode health: %w", err)
	}
	return body.Message, nil
}
