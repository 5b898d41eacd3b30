// File: services/dialogue/store.go
package dialogue

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"convosched/models"

	"github.com/go-redis/redis/v8"
)

const sessionKeyPrefix = "dlg:sess:"

// ErrSessionNotFound is returned for unknown or idle-evicted session IDs.
var ErrSessionNotFound = errors.New("dialogue session not found or expired")

// SessionStore holds dialogue sessions keyed by opaque ID with idle-timeout
// eviction. Sessions share no mutable state; the store is the only thing
// between turns.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (*models.DialogueSession, error)
	Put(ctx context.Context, session *models.DialogueSession) error
	Evict(ctx context.Context, sessionID string) error
}

// RedisSessionStore stores sessions as JSON under a TTL; every Put refreshes
// the idle timeout.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

func (s *RedisSessionStore) Get(ctx context.Context, sessionID string) (*models.DialogueSession, error) {
	data, err := s.client.Get(ctx, sessionKeyPrefix+sessionID).Result()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	var session models.DialogueSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *RedisSessionStore) Put(ctx context.Context, session *models.DialogueSession) error {
	b, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKeyPrefix+session.SessionID, b, s.ttl).Err()
}

func (s *RedisSessionStore) Evict(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, sessionKeyPrefix+sessionID).Err()
}
