// Package session persists conversation state between turns. One session
// owns one ConversationContext; the store never inspects dialogue state.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	apperrors "ecommerce-chatbot/internal/common/errors"
	"ecommerce-chatbot/internal/common/metrics"
	"ecommerce-chatbot/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when no live session exists for an ID.
var ErrNotFound = errors.New("session not found")

// Store is the session persistence contract.
type Store interface {
	Create(ctx context.Context) (*models.Session, error)
	Get(ctx context.Context, id string) (*models.Session, error)
	Save(ctx context.Context, s *models.Session) error
	Delete(ctx context.Context, id string) error
}

const redisKeyPrefix = "chat:session:"

// RedisStore keeps sessions in Redis as JSON values with a TTL, so idle
// conversations expire server-side without a reaper.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Create(ctx context.Context) (*models.Session, error) {
	now := time.Now()
	sess := &models.Session{
		ID:           uuid.NewString(),
		CreatedAt:    now,
		LastActivity: now,
		ExpiresAt:    now.Add(s.ttl),
	}
	if err := s.write(ctx, sess); err != nil {
		return nil, err
	}
	metrics.SessionsActive.Inc()
	return sess, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*models.Session, error) {
	val, err := s.client.Get(ctx, redisKeyPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, apperrors.NewSessionLoadError(err.Error())
	}

	var sess models.Session
	if err := json.Unmarshal([]byte(val), &sess); err != nil {
		return nil, apperrors.NewSessionLoadError(err.Error())
	}
	if sess.IsExpired() {
		_ = s.Delete(ctx, id)
		return nil, ErrNotFound
	}
	return &sess, nil
}

func (s *RedisStore) Save(ctx context.Context, sess *models.Session) error {
	sess.UpdateActivity(s.ttl)
	return s.write(ctx, sess)
}

// Delete removes a session. The gauge moves only when a key was actually
// removed; deleting an absent or already-expired session is a no-op.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	removed, err := s.client.Del(ctx, redisKeyPrefix+id).Result()
	if err != nil {
		return apperrors.NewSessionSaveError(err.Error())
	}
	if removed > 0 {
		metrics.SessionsActive.Dec()
	}
	return nil
}

func (s *RedisStore) write(ctx context.Context, sess *models.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return apperrors.NewSessionSaveError(err.Error())
	}
	if err := s.client.Set(ctx, redisKeyPrefix+sess.ID, data, s.ttl).Err(); err != nil {
		return apperrors.NewSessionSaveError(err.Error())
	}
	return nil
}
