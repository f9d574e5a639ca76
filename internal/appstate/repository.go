package appstate

import (
	"context"
	"errors"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repository persists user state. Get returns (nil, nil) when nothing is stored.
type Repository interface {
	Get(ctx context.Context, userID string) (*UserState, error)
	Save(ctx context.Context, s *UserState) error
}

// MemoryRepository keeps states in process memory. Its contents cross process
// restarts only through a Snapshotter.
type MemoryRepository struct {
	mu     sync.RWMutex
	states map[string]*UserState
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{states: make(map[string]*UserState)}
}

func (m *MemoryRepository) Get(_ context.Context, userID string) (*UserState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.states[userID]; ok {
		return s.Clone(), nil
	}
	return nil, nil
}

func (m *MemoryRepository) Save(_ context.Context, s *UserState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[s.UserID] = s.Clone()
	return nil
}

// Snapshot returns copies of all states ordered by user id.
func (m *MemoryRepository) Snapshot() []*UserState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*UserState, 0, len(m.states))
	for _, s := range m.states {
		out = append(out, s.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

// Restore replaces the repository contents with states.
func (m *MemoryRepository) Restore(states []*UserState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states = make(map[string]*UserState, len(states))
	for _, s := range states {
		if s == nil || s.UserID == "" {
			continue
		}
		m.states[s.UserID] = s.Clone()
	}
}

// Len reports how many users have stored state.
func (m *MemoryRepository) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.states)
}

// MongoRepository stores one document per user in the given collection, keyed by user id.
type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Get(ctx context.Context, userID string) (*UserState, error) {
	var s UserState
	if err := r.col.FindOne(ctx, bson.M{"_id": userID}).Decode(&s); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *MongoRepository) Save(ctx context.Context, s *UserState) error {
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": s.UserID}, s, options.Replace().SetUpsert(true))
	return err
}
