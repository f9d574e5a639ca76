package tokens

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pulseboard/pulseboard/backend/go-services/internal/config"
	"github.com/pulseboard/pulseboard/backend/go-services/internal/models"
	"github.com/pulseboard/pulseboard/backend/go-services/pkg/middleware"
)

var errNoExpiry = errors.New("token has no exp claim")

// ErrNoSecret is returned when tokens are signed or verified without a key.
var ErrNoSecret = errors.New("jwt secret is not configured")

// GenerateAccessToken creates a signed JWT access token for the user.
// The subject is the user id.
func GenerateAccessToken(cfg *config.Config, u *models.User, ttl time.Duration) (string, error) {
	if !cfg.JWT.Configured() {
		return "", ErrNoSecret
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   u.ID,
		"name":  u.Name,
		"email": u.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return jt.SignedString([]byte(cfg.JWT.Secret))
}

// Verifier checks access tokens issued by GenerateAccessToken.
type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{
		secret: []byte(secret),
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})),
	}
}

// Parse verifies signature and expiry and returns the claims. The exp claim is always present.
// A Verifier built with an empty secret rejects every token.
func (v *Verifier) Parse(raw string) (jwt.MapClaims, error) {
	if len(v.secret) == 0 {
		return nil, ErrNoSecret
	}
	claims := jwt.MapClaims{}
	if _, err := v.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	}); err != nil {
		return nil, err
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, err
	}
	if exp == nil {
		return nil, errNoExpiry
	}
	return claims, nil
}

// Verify implements middleware.Verifier.
func (v *Verifier) Verify(_ context.Context, raw string) (middleware.Token, error) {
	claims, err := v.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("verify access token: %w", err)
	}
	return claimsToken(claims), nil
}

type claimsToken jwt.MapClaims

func (t claimsToken) Claims(v interface{}) error {
	b, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}
