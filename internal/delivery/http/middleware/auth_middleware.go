package middleware

import (
	"context"
	"net/http"
	"strings"

	"vetclinic-portal/internal/usecase"
	"vetclinic-portal/pkg/response"
)

type contextKey string

const SessionKey contextKey = "session"

type AuthMiddleware struct {
	authUsecase usecase.AuthUsecase
}

func NewAuthMiddleware(authUsecase usecase.AuthUsecase) *AuthMiddleware {
	return &AuthMiddleware{
		authUsecase: authUsecase,
	}
}

// Identify attaches the caller's session to the request. Requests without a
// usable bearer token continue as anonymous; the calendar is public.
func (m *AuthMiddleware) Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := m.authUsecase.ResolveSession(r.Context(), BearerToken(r))
		ctx := context.WithValue(r.Context(), SessionKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Authenticate rejects requests whose session is not signed in. It must run
// after Identify.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !GetSessionFromContext(r.Context()).IsAuthenticated() {
			response.Unauthorized(w, "Invalid or expired token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// GetSessionFromContext returns the request session, anonymous if none was
// attached.
func GetSessionFromContext(ctx context.Context) usecase.Session {
	if sess, ok := ctx.Value(SessionKey).(usecase.Session); ok {
		return sess
	}
	return usecase.AnonymousSession()
}
