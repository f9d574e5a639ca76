package oidc

import (
	"context"
	"crypto"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/pulseboard/pulseboard/backend/go-services/pkg/middleware"
)

// GoogleIssuer is the default OAuth identity provider.
const GoogleIssuer = "https://accounts.google.com"

// Verifier checks OAuth ID tokens (signature, issuer, audience, expiry).
type Verifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewVerifier discovers the provider's signing keys and creates a verifier for clientID.
func NewVerifier(ctx context.Context, issuer, clientID string) (*Verifier, error) {
	if issuer == "" {
		issuer = GoogleIssuer
	}
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC provider: %w", err)
	}
	return &Verifier{verifier: provider.Verifier(&oidc.Config{ClientID: clientID})}, nil
}

// NewStaticVerifier verifies against fixed public keys, skipping discovery.
func NewStaticVerifier(issuer, clientID string, keys ...crypto.PublicKey) *Verifier {
	ks := &oidc.StaticKeySet{PublicKeys: keys}
	return &Verifier{verifier: oidc.NewVerifier(issuer, ks, &oidc.Config{ClientID: clientID})}
}

// Verify verifies the raw ID token and returns its claims holder.
func (v *Verifier) Verify(ctx context.Context, raw string) (middleware.Token, error) {
	idToken, err := v.verifier.Verify(ctx, raw)
	if err != nil {
		return nil, err
	}
	return idToken, nil
}
