package models

import "time"

// User is an account that signed up with credentials or through an OAuth provider.
type User struct {
	ID           string    `bson:"_id" json:"id"`
	Sub          string    `bson:"sub,omitempty" json:"sub,omitempty"` // OIDC subject, empty for credential users
	Email        string    `bson:"email" json:"email"`
	Name         string    `bson:"name" json:"name"`
	Image        string    `bson:"image,omitempty" json:"image,omitempty"`
	PasswordHash string    `bson:"passwordHash,omitempty" json:"-"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}
