package models

import "time"

// Session represents one user conversation and its dialogue context.
type Session struct {
	ID           string              `json:"id"`
	Context      ConversationContext `json:"context"`
	CreatedAt    time.Time           `json:"createdAt"`
	LastActivity time.Time           `json:"lastActivity"`
	ExpiresAt    time.Time           `json:"expiresAt"`
}

// IsExpired checks if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// UpdateActivity updates the last activity timestamp and pushes the expiry
// window forward by the given TTL.
func (s *Session) UpdateActivity(ttl time.Duration) {
	now := time.Now()
	s.LastActivity = now
	s.ExpiresAt = now.Add(ttl)
}
