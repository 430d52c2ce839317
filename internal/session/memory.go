package session

import (
	"context"
	"sync"
	"time"

	"ecommerce-chatbot/internal/common/metrics"
	"ecommerce-chatbot/internal/models"

	"github.com/google/uuid"
)

// MemoryStore keeps sessions in process memory. Used for tests and
// single-node development; not suitable behind a load balancer.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]models.Session
	ttl      time.Duration
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]models.Session),
		ttl:      ttl,
	}
}

func (s *MemoryStore) Create(ctx context.Context) (*models.Session, error) {
	now := time.Now()
	sess := models.Session{
		ID:           uuid.NewString(),
		CreatedAt:    now,
		LastActivity: now,
		ExpiresAt:    now.Add(s.ttl),
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	metrics.SessionsActive.Inc()
	out := sess
	return &out, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*models.Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	if sess.IsExpired() {
		_ = s.Delete(ctx, id)
		return nil, ErrNotFound
	}

	out := sess
	return &out, nil
}

func (s *MemoryStore) Save(ctx context.Context, sess *models.Session) error {
	sess.UpdateActivity(s.ttl)

	s.mu.Lock()
	s.sessions[sess.ID] = *sess
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if ok {
		metrics.SessionsActive.Dec()
	}
	return nil
}
