package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"vetclinic-portal/internal/domain/entity"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	RedisRosterKeyPrefix = "portal:roster:"

	defaultRosterTTL = 10 * time.Minute
)

// RosterCache keeps each user's pet roster in Redis so a new calendar view
// does not refetch it from the clinic backend.
type RosterCache struct {
	redisClient *redis.Client
	ttl         time.Duration
	log         *logrus.Logger
}

func NewRosterCache(redisClient *redis.Client, ttl time.Duration, log *logrus.Logger) *RosterCache {
	if ttl <= 0 {
		ttl = defaultRosterTTL
	}
	return &RosterCache{redisClient: redisClient, ttl: ttl, log: log}
}

func rosterKey(userKey string) string {
	return RedisRosterKeyPrefix + userKey
}

// Get returns the cached roster and whether it was present.
func (c *RosterCache) Get(ctx context.Context, userKey string) ([]entity.Pet, bool, error) {
	raw, err := c.redisClient.Get(ctx, rosterKey(userKey)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get roster: %w", err)
	}

	var pets []entity.Pet
	if err := json.Unmarshal(raw, &pets); err != nil {
		// Corrupt entry: drop it so the next read goes to the backend.
		c.log.Warnf("Discarding unreadable roster cache entry for user %s: %+v", userKey, err)
		_ = c.redisClient.Del(ctx, rosterKey(userKey)).Err()
		return nil, false, nil
	}
	if pets == nil {
		pets = []entity.Pet{}
	}
	return pets, true, nil
}

func (c *RosterCache) Set(ctx context.Context, userKey string, pets []entity.Pet) error {
	if pets == nil {
		pets = []entity.Pet{}
	}
	raw, err := json.Marshal(pets)
	if err != nil {
		return fmt.Errorf("marshal roster: %w", err)
	}
	if err := c.redisClient.Set(ctx, rosterKey(userKey), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("set roster: %w", err)
	}
	return nil
}

// Invalidate forgets the user's roster, used on logout.
func (c *RosterCache) Invalidate(ctx context.Context, userKey string) error {
	if err := c.redisClient.Del(ctx, rosterKey(userKey)).Err(); err != nil {
		return fmt.Errorf("invalidate roster: %w", err)
	}
	return nil
}
