package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sbilibin2017/gw-newsletter/internal/logger"
)

// SessionRepository stores session-to-user bindings in Redis
type SessionRepository struct {
	client *redis.Client
	exp    time.Duration // session lifetime
}

// NewSessionRepository creates a new repository instance with the given TTL
func NewSessionRepository(client *redis.Client, expiration time.Duration) *SessionRepository {
	return &SessionRepository{
		client: client,
		exp:    expiration,
	}
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}

// Set binds sessionID to userID until the TTL elapses.
func (r *SessionRepository) Set(ctx context.Context, sessionID string, userID uuid.UUID) error {
	key := sessionKey(sessionID)
	err := r.client.Set(ctx, key, userID.String(), r.exp).Err()

	logger.Log.Infow("session set",
		"key", key,
		"ttl", r.exp,
		"error", err,
	)

	return err
}

// Get returns the user bound to sessionID. ok is false for unknown or expired sessions.
func (r *SessionRepository) Get(ctx context.Context, sessionID string) (userID uuid.UUID, ok bool, err error) {
	key := sessionKey(sessionID)

	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		logger.Log.Infow("session miss", "key", key)
		return uuid.Nil, false, nil
	}
	if err != nil {
		logger.Log.Infow("session get", "key", key, "error", err)
		return uuid.Nil, false, err
	}

	userID, err = uuid.Parse(val)
	logger.Log.Infow("session get",
		"key", key,
		"result", userID,
		"error", err,
	)
	if err != nil {
		return uuid.Nil, false, err
	}

	return userID, true, nil
}

// Clear removes sessionID. Clearing an unknown session is not an error.
func (r *SessionRepository) Clear(ctx context.Context, sessionID string) error {
	key := sessionKey(sessionID)
	err := r.client.Del(ctx, key).Err()

	logger.Log.Infow("session clear",
		"key", key,
		"error", err,
	)

	return err
}
