package users

import (
	"time"

	"github.com/google/uuid"
)

type ContextKey string

const UserKey ContextKey = "user"

type User struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`

	// Set for credentials accounts; nil for OAuth-only accounts.
	PasswordHash *string `db:"password_hash" json:"-"`

	Provider   *string `db:"provider" json:"-"`
	ProviderID *string `db:"provider_id" json:"-"`
	AvatarURL  *string `db:"avatar_url" json:"avatarUrl,omitempty"`
}
