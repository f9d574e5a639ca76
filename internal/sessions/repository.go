package sessions

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repository provides session persistence operations.
// GetByRefresh returns (nil, nil) for an unknown token.
type Repository interface {
	Create(ctx context.Context, s *Session) error
	GetByRefresh(ctx context.Context, refresh string) (*Session, error)
	DeleteByRefresh(ctx context.Context, refresh string) error
	// DeleteByUser removes all of a user's sessions and reports how many went.
	DeleteByUser(ctx context.Context, userID string) (int, error)
}

// MongoRepository implements Repository using a Mongo collection
type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

// EnsureIndexes adds a TTL index so Mongo drops sessions once they expire,
// and a userId index for signing a user out everywhere.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "expiresAt", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0)},
		{Keys: bson.D{{Key: "userId", Value: 1}}},
	})
	return err
}

func (r *MongoRepository) Create(ctx context.Context, s *Session) error {
	_, err := r.col.InsertOne(ctx, s)
	return err
}

func (r *MongoRepository) GetByRefresh(ctx context.Context, refresh string) (*Session, error) {
	var s Session
	if err := r.col.FindOne(ctx, bson.M{"_id": refresh}).Decode(&s); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *MongoRepository) DeleteByRefresh(ctx context.Context, refresh string) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"_id": refresh})
	return err
}

func (r *MongoRepository) DeleteByUser(ctx context.Context, userID string) (int, error) {
	res, err := r.col.DeleteMany(ctx, bson.M{"userId": userID})
	if err != nil {
		return 0, err
	}
	return int(res.DeletedCount), nil
}

// MemoryRepository keeps sessions in process memory. Used when neither Redis
// nor Mongo is configured.
type MemoryRepository struct {
	mu       sync.Mutex
	sessions map[string]Session
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{sessions: make(map[string]Session)}
}

func (m *MemoryRepository) Create(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.RefreshToken] = *s
	return nil
}

func (m *MemoryRepository) GetByRefresh(_ context.Context, refresh string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[refresh]
	if !ok {
		return nil, nil
	}
	if s.Expired(time.Now().UTC()) {
		delete(m.sessions, refresh)
		return nil, nil
	}
	return &s, nil
}

func (m *MemoryRepository) DeleteByRefresh(_ context.Context, refresh string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, refresh)
	return nil
}

func (m *MemoryRepository) DeleteByUser(_ context.Context, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for rt, s := range m.sessions {
		if s.UserID == userID {
			delete(m.sessions, rt)
			n++
		}
	}
	return n, nil
}
