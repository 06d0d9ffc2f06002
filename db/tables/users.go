package tables

import (
	"time"

	"github.com/google/uuid"
)

// UserTable represents the users table
type UserTable struct {
	ID        uuid.UUID  `db:"id,omitempty"`
	Email     string     `db:"email"`
	Username  string     `db:"username"`
	AvatarURL *string    `db:"avatar_url"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt *time.Time `db:"updated_at,omitempty"`
}
