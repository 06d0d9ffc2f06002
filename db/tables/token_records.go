package tables

import (
	"time"

	"github.com/google/uuid"
)

// TokenRecordTable represents the token_records table
type TokenRecordTable struct {
	ID                    uuid.UUID  `db:"id"`
	UserID                uuid.UUID  `db:"user_id"`
	AccessToken           string     `db:"access_token"             json:"-"`
	RefreshToken          string     `db:"refresh_token"            json:"-"`
	AccessTokenExpiresAt  time.Time  `db:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time  `db:"refresh_token_expires_at"`
	RevokedAt             *time.Time `db:"revoked_at"`
	LastUsedAt            *time.Time `db:"last_used_at"`
	CreatedAt             time.Time  `db:"created_at"`
	UpdatedAt             *time.Time `db:"updated_at"`
}
