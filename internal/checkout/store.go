package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	pkgredis "github.com/angelmondragon/vendorcart-backend/pkg/redis"
)

var (
	// ErrSessionNotFound is returned when the session expired or never existed.
	ErrSessionNotFound = errors.New("checkout session not found")
	// ErrSessionConflict is returned when a concurrent write won the race.
	ErrSessionConflict = errors.New("checkout session modified concurrently")
)

type redisClient interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Update(ctx context.Context, key string, ttl time.Duration, fn func(current string) (string, error)) error
	Del(ctx context.Context, keys ...string) error
	CheckoutSessionKey(buyerID, sessionID string) string
}

// RedisStore keeps sessions as JSON under a sliding TTL.
type RedisStore struct {
	client redisClient
	ttl    time.Duration
	now    func() time.Time
}

func NewRedisStore(client redisClient, ttl time.Duration) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	return &RedisStore{client: client, ttl: ttl, now: time.Now}, nil
}

// Create writes a new session at revision 1.
func (s *RedisStore) Create(ctx context.Context, sess *Session) error {
	now := s.now().UTC()
	sess.Revision = 1
	sess.CreatedAt = now
	sess.UpdatedAt = now
	sess.ExpiresAt = now.Add(s.ttl)
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return s.client.Set(ctx, s.client.CheckoutSessionKey(sess.BuyerID, sess.ID), payload, s.ttl)
}

func (s *RedisStore) Get(ctx context.Context, buyerID, sessionID string) (*Session, error) {
	raw, err := s.client.Get(ctx, s.client.CheckoutSessionKey(buyerID, sessionID))
	if errors.Is(err, goredis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	var sess Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}

// Update applies fn to the stored session under WATCH and bumps its revision.
// Errors returned by fn abort the write and are passed through unchanged.
func (s *RedisStore) Update(ctx context.Context, buyerID, sessionID string, fn func(*Session) error) (*Session, error) {
	var updated Session
	err := s.client.Update(ctx, s.client.CheckoutSessionKey(buyerID, sessionID), s.ttl, func(current string) (string, error) {
		var sess Session
		if err := json.Unmarshal([]byte(current), &sess); err != nil {
			return "", fmt.Errorf("decode session: %w", err)
		}
		if err := fn(&sess); err != nil {
			return "", err
		}
		now := s.now().UTC()
		sess.Revision++
		sess.UpdatedAt = now
		sess.ExpiresAt = now.Add(s.ttl)
		payload, err := json.Marshal(&sess)
		if err != nil {
			return "", fmt.Errorf("encode session: %w", err)
		}
		updated = sess
		return string(payload), nil
	})
	switch {
	case errors.Is(err, pkgredis.ErrNotFound):
		return nil, ErrSessionNotFound
	case errors.Is(err, pkgredis.ErrConflict):
		return nil, ErrSessionConflict
	case err != nil:
		return nil, err
	}
	return &updated, nil
}

func (s *RedisStore) Delete(ctx context.Context, buyerID, sessionID string) error {
	return s.client.Del(ctx, s.client.CheckoutSessionKey(buyerID, sessionID))
}
