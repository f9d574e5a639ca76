package sessions

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"
)

// Service issues and validates refresh sessions.
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service { return &Service{repo: r} }

// CreateSession stores a new refresh session for userID and returns its token.
func (s *Service) CreateSession(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	now := time.Now().UTC()
	sess := &Session{
		RefreshToken: hex.EncodeToString(b),
		UserID:       userID,
		CreatedAt:    now,
		ExpiresAt:    now.Add(ttl),
	}
	if err := s.repo.Create(ctx, sess); err != nil {
		return "", err
	}
	return sess.RefreshToken, nil
}

// ValidateRefresh returns the session if the token is known and unexpired, else nil.
func (s *Service) ValidateRefresh(ctx context.Context, refresh string) (*Session, error) {
	sess, err := s.repo.GetByRefresh(ctx, refresh)
	if err != nil || sess == nil {
		return nil, err
	}
	if sess.Expired(time.Now().UTC()) {
		_ = s.repo.DeleteByRefresh(ctx, refresh)
		return nil, nil
	}
	return sess, nil
}

func (s *Service) DeleteRefresh(ctx context.Context, refresh string) error {
	return s.repo.DeleteByRefresh(ctx, refresh)
}

// RevokeAll signs userID out of every device.
func (s *Service) RevokeAll(ctx context.Context, userID string) (int, error) {
	return s.repo.DeleteByUser(ctx, userID)
}
