package sessions

import "time"

// Session is a refresh session. The refresh token is the lookup key.
type Session struct {
	RefreshToken string    `bson:"_id" json:"refreshToken"`
	UserID       string    `bson:"userId" json:"userId"`
	ExpiresAt    time.Time `bson:"expiresAt" json:"expiresAt"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
}

// Expired reports whether the session is past its expiry at t.
func (s *Session) Expired(t time.Time) bool {
	return t.After(s.ExpiresAt)
}
