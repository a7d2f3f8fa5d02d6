package jwt

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"vetclinic-portal/config"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Claims are the fields the portal reads from a backend-issued token. The
// backend puts the numeric user id in "sub" or "user_id".
type Claims struct {
	UserID json.Number `json:"user_id,omitempty"`
	Email  string      `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Identity returns a stable user key, preferring user_id over sub.
func (c *Claims) Identity() string {
	if c.UserID != "" {
		return c.UserID.String()
	}
	return c.Subject
}

// JWTService inspects bearer tokens issued by the clinic backend. It never
// issues tokens itself.
type JWTService struct {
	config config.JWTConfig
	parser *jwt.Parser
	now    func() time.Time
}

func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{
		config: cfg,
		parser: jwt.NewParser(jwt.WithExpirationRequired()),
		now:    time.Now,
	}
}

// ValidateToken verifies the HMAC signature when a secret is configured.
// Without a secret the token is decoded unverified and only exp is enforced;
// the backend stays the authority on every call.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	claims := &Claims{}
	if s.config.Secret != "" {
		token, err := s.parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("invalid signing method")
			}
			return []byte(s.config.Secret), nil
		})
		if err != nil || !token.Valid {
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
		return claims, nil
	}

	if _, _, err := s.parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.ExpiresAt == nil || !claims.ExpiresAt.After(s.now()) {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// TokenTTL returns how long the token stays valid, zero if already expired.
func (s *JWTService) TokenTTL(claims *Claims) time.Duration {
	if claims == nil || claims.ExpiresAt == nil {
		return 0
	}
	ttl := claims.ExpiresAt.Sub(s.now())
	if ttl < 0 {
		return 0
	}
	return ttl
}

// FormatUserID renders a numeric backend user id as a claim value.
func FormatUserID(id int) json.Number {
	return json.Number(strconv.Itoa(id))
}
