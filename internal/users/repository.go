package users

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pulseboard/pulseboard/backend/go-services/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserRepository defines persistence operations for users.
// Lookups return (nil, nil) when no user matches.
type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpsertBySub(ctx context.Context, u *models.User) (*models.User, error)
}

// MongoUserRepository implements UserRepository using MongoDB
type MongoUserRepository struct {
	col *mongo.Collection
}

// NewMongoUserRepository creates a new repository for the given collection
func NewMongoUserRepository(col *mongo.Collection) *MongoUserRepository {
	return &MongoUserRepository{col: col}
}

// userIndexes makes email unique only when present; OAuth accounts may lack one.
func userIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(bson.M{"email": bson.M{"$gt": ""}}),
		},
		{Keys: bson.D{{Key: "sub", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
	}
}

// EnsureIndexes creates the unique email and sub indexes.
func (r *MongoUserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, userIndexes())
	return err
}

func (r *MongoUserRepository) Create(ctx context.Context, u *models.User) error {
	if _, err := r.col.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	if err := r.col.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *MongoUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoUserRepository) UpsertBySub(ctx context.Context, u *models.User) (*models.User, error) {
	now := time.Now().UTC()
	filter := bson.M{"sub": u.Sub}
	upd := bson.M{
		"$set": bson.M{
			"email":     u.Email,
			"name":      u.Name,
			"image":     u.Image,
			"updatedAt": now,
		},
		"$setOnInsert": bson.M{
			"_id":       uuid.NewString(),
			"createdAt": now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var updated models.User
	if err := r.col.FindOneAndUpdate(ctx, filter, upd, opts).Decode(&updated); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return &updated, nil
}

// MemoryUserRepository keeps users in process memory.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]*models.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]*models.User)}
}

func (m *MemoryUserRepository) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return ErrEmailTaken
		}
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *MemoryUserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (m *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MemoryUserRepository) UpsertBySub(_ context.Context, u *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var match *models.User
	for _, existing := range m.users {
		if existing.Sub == u.Sub {
			match = existing
			break
		}
	}
	if u.Email != "" {
		for _, existing := range m.users {
			if existing != match && existing.Email == u.Email {
				return nil, ErrEmailTaken
			}
		}
	}

	now := time.Now().UTC()
	if match != nil {
		match.Email, match.Name, match.Image = u.Email, u.Name, u.Image
		match.UpdatedAt = now
		cp := *match
		return &cp, nil
	}
	cp := *u
	cp.ID = uuid.NewString()
	cp.CreatedAt, cp.UpdatedAt = now, now
	m.users[cp.ID] = &cp
	out := cp
	return &out, nil
}
