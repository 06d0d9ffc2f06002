package tables

import (
	"time"

	"github.com/google/uuid"
)

// AuthorizationCodeTable represents the authorization_codes table
type AuthorizationCodeTable struct {
	Code        string     `db:"code"`
	UserID      uuid.UUID  `db:"user_id"`
	CallbackURL string     `db:"callback_url"`
	ExpiresAt   time.Time  `db:"expires_at"`
	UsedAt      *time.Time `db:"used_at"`
	CreatedAt   time.Time  `db:"created_at"`
}
