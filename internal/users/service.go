package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pulseboard/pulseboard/backend/go-services/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the work factor for stored password hashes.
const BcryptCost = 10

var (
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrEmailLinked        = errors.New("email is linked to another oauth account")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidInput       = errors.New("invalid registration input")
)

// Service encapsulates user-related business logic
type Service struct {
	repo UserRepository
}

func NewService(r UserRepository) *Service {
	return &Service{repo: r}
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}

// Register creates a credentials user with a bcrypt password hash.
func (s *Service) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}
	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	now := time.Now().UTC()
	u := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate checks a credentials login. Every mismatch is ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	u, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if u == nil || u.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// UpsertFromClaims creates or updates a user using OIDC claims map.
// It returns (nil, nil) when the claims carry no subject. An email held by a
// credentials account yields ErrEmailTaken; one held by another OAuth subject
// yields ErrEmailLinked.
func (s *Service) UpsertFromClaims(ctx context.Context, claims map[string]interface{}) (*models.User, error) {
	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	picture, _ := claims["picture"].(string)
	if sub == "" {
		return nil, nil
	}
	u := &models.User{
		Sub:   sub,
		Email: normalizeEmail(email),
		Name:  name,
		Image: picture,
	}
	out, err := s.repo.UpsertBySub(ctx, u)
	if !errors.Is(err, ErrEmailTaken) {
		return out, err
	}
	owner, lerr := s.repo.GetByEmail(ctx, u.Email)
	if lerr != nil {
		return nil, lerr
	}
	if owner != nil && owner.PasswordHash == "" {
		return nil, ErrEmailLinked
	}
	return nil, ErrEmailTaken
}

func (s *Service) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}
