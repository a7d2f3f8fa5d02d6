package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	RedisRevokedKeyPrefix = "portal:revoked_token:"

	// used when the token carries no expiry of its own
	defaultRevocationTTL = 24 * time.Hour
)

// SessionStore remembers tokens that were logged out or rejected by the
// clinic backend, until they would have expired anyway.
type SessionStore struct {
	redisClient *redis.Client
	log         *logrus.Logger
}

func NewSessionStore(redisClient *redis.Client, log *logrus.Logger) *SessionStore {
	return &SessionStore{redisClient: redisClient, log: log}
}

// Tokens are stored hashed; the raw bearer never lands in Redis.
func revokedKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return RedisRevokedKeyPrefix + hex.EncodeToString(sum[:])
}

func (s *SessionStore) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = defaultRevocationTTL
	}
	if err := s.redisClient.Set(ctx, revokedKey(token), "revoked", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (s *SessionStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	exists, err := s.redisClient.Exists(ctx, revokedKey(token)).Result()
	if err != nil {
		s.log.Warnf("Failed to check token revocation: %+v", err)
		return false, err
	}
	return exists > 0, nil
}
