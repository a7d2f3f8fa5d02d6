package usecase

import (
	"context"
	"errors"
	"time"

	"vetclinic-portal/internal/delivery/dto"
	"vetclinic-portal/internal/domain/repository"
	"vetclinic-portal/pkg/jwt"

	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotAuthenticated   = errors.New("not authenticated")
)

// SessionStore records revoked bearer tokens.
type SessionStore interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// RosterInvalidator drops a user's shared pet roster.
type RosterInvalidator interface {
	Invalidate(ctx context.Context, userKey string) error
}

type AuthUsecase interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*repository.AuthSession, error)
	Register(ctx context.Context, req *dto.RegisterRequest) (*repository.AuthSession, error)
	Logout(ctx context.Context, sess Session) error
	RecoverPassword(ctx context.Context, req *dto.RecoverPasswordRequest) error
	// ResolveSession turns a bearer token into a Session. Invalid, expired or
	// revoked tokens yield an anonymous session.
	ResolveSession(ctx context.Context, token string) Session
	// RevokeSession marks token as no longer usable, e.g. after a backend 401.
	RevokeSession(ctx context.Context, token string)
}

type authUsecase struct {
	log          *logrus.Logger
	authRepo     repository.AuthRepository
	jwtService   *jwt.JWTService
	sessionStore SessionStore
	rosters      RosterInvalidator
}

// sessionStore and rosters may be nil when Redis is disabled.
func NewAuthUsecase(
	log *logrus.Logger,
	authRepo repository.AuthRepository,
	jwtService *jwt.JWTService,
	sessionStore SessionStore,
	rosters RosterInvalidator,
) AuthUsecase {
	return &authUsecase{
		log:          log,
		authRepo:     authRepo,
		jwtService:   jwtService,
		sessionStore: sessionStore,
		rosters:      rosters,
	}
}

func (u *authUsecase) Login(ctx context.Context, req *dto.LoginRequest) (*repository.AuthSession, error) {
	session, err := u.authRepo.Login(ctx, req.Email, req.Password)
	if err != nil {
		if repository.IsUnauthorized(err) {
			return nil, ErrInvalidCredentials
		}
		u.log.Warnf("Failed to login: %+v", err)
		return nil, err
	}
	return session, nil
}

func (u *authUsecase) Register(ctx context.Context, req *dto.RegisterRequest) (*repository.AuthSession, error) {
	session, err := u.authRepo.Register(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		u.log.Warnf("Failed to register user: %+v", err)
		return nil, err
	}
	return session, nil
}

// Logout revokes the token locally first; a failing backend logout is only
// logged.
func (u *authUsecase) Logout(ctx context.Context, sess Session) error {
	if !sess.IsAuthenticated() {
		return ErrNotAuthenticated
	}

	u.RevokeSession(ctx, sess.Token())
	if u.rosters != nil && sess.UserKey() != "" {
		if err := u.rosters.Invalidate(ctx, sess.UserKey()); err != nil {
			u.log.Warnf("Failed to invalidate roster cache: %+v", err)
		}
	}

	if err := u.authRepo.Logout(ctx, sess.Token()); err != nil {
		u.log.Warnf("Backend logout failed: %+v", err)
	}
	return nil
}

func (u *authUsecase) RecoverPassword(ctx context.Context, req *dto.RecoverPasswordRequest) error {
	if err := u.authRepo.RecoverPassword(ctx, req.Email); err != nil {
		u.log.Warnf("Failed to request password recovery: %+v", err)
		return err
	}
	return nil
}

func (u *authUsecase) ResolveSession(ctx context.Context, token string) Session {
	if token == "" {
		return AnonymousSession()
	}

	claims, err := u.jwtService.ValidateToken(token)
	if err != nil {
		u.log.Debugf("Treating request as anonymous: %v", err)
		return AnonymousSession()
	}

	if u.sessionStore != nil {
		revoked, err := u.sessionStore.IsRevoked(ctx, token)
		if err != nil {
			// Fail open; the backend still validates the token.
			u.log.Warnf("Failed to check token revocation: %+v", err)
		} else if revoked {
			return AnonymousSession()
		}
	}

	userKey := claims.Identity()
	if userKey == "" {
		userKey = claims.Email
	}
	return NewSession(token, userKey, true)
}

func (u *authUsecase) RevokeSession(ctx context.Context, token string) {
	if u.sessionStore == nil || token == "" {
		return
	}

	var ttl time.Duration
	if claims, err := u.jwtService.ValidateToken(token); err == nil {
		ttl = u.jwtService.TokenTTL(claims)
	}
	if err := u.sessionStore.Revoke(ctx, token, ttl); err != nil {
		u.log.Warnf("Failed to revoke token: %+v", err)
	}
}
