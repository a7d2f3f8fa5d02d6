package repository

import (
	"context"

	"vetclinic-portal/internal/domain/entity"
)

// AuthSession is what the backend hands out on login/register.
type AuthSession struct {
	Token string      `json:"token"`
	User  entity.User `json:"user"`
}

type AuthRepository interface {
	Login(ctx context.Context, email, password string) (*AuthSession, error)
	Register(ctx context.Context, name, email, password string) (*AuthSession, error)
	Logout(ctx context.Context, token string) error
	RecoverPassword(ctx context.Context, email string) error
}

type HealthRepository interface {
	Health(ctx context.Context) (string, error)
}
