package appstate

import (
	"context"
	"sync"
	"time"
)

// Service applies state changes for a user. Each change is a load, mutate,
// save sequence serialized within the process.
type Service struct {
	repo Repository
	mu   sync.Mutex
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Get returns the stored state, or the defaults when the user has none yet.
func (s *Service) Get(ctx context.Context, userID string) (*UserState, error) {
	st, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return DefaultState(userID), nil
	}
	return st, nil
}

func (s *Service) update(ctx context.Context, userID string, fn func(*UserState) error) (*UserState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := fn(st); err != nil {
		return nil, err
	}
	st.UpdatedAt = s.now().UTC()
	if err := s.repo.Save(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *Service) UpdatePreferences(ctx context.Context, userID string, p PreferencesPatch) (*UserState, error) {
	return s.update(ctx, userID, func(st *UserState) error {
		st.ApplyPreferences(p)
		return nil
	})
}

// UpdateSettings merges notification and display patches; either may be nil.
func (s *Service) UpdateSettings(ctx context.Context, userID string, n *NotificationPatch, d *DisplayPatch) (*UserState, error) {
	return s.update(ctx, userID, func(st *UserState) error {
		if n != nil {
			st.ApplyNotifications(*n)
		}
		if d != nil {
			return st.ApplyDisplay(*d)
		}
		return nil
	})
}

func (s *Service) AddFavorite(ctx context.Context, userID, kind, id string) (*UserState, error) {
	k, err := ParseFavoriteKind(kind)
	if err != nil {
		return nil, err
	}
	return s.update(ctx, userID, func(st *UserState) error { return st.AddFavorite(k, id) })
}

func (s *Service) RemoveFavorite(ctx context.Context, userID, kind, id string) (*UserState, error) {
	k, err := ParseFavoriteKind(kind)
	if err != nil {
		return nil, err
	}
	return s.update(ctx, userID, func(st *UserState) error { return st.RemoveFavorite(k, id) })
}

func (s *Service) ClearFavorites(ctx context.Context, userID string) (*UserState, error) {
	return s.update(ctx, userID, func(st *UserState) error {
		st.ClearFavorites()
		return nil
	})
}
