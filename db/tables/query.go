package tables

import "time"

// The fiql adapter only negotiates string, number and time arguments, so the
// uuid columns are exposed to queries through these string typed views.

// TokenRecordQuery is the fiql view of the token_records table, token values
// are not queryable
type TokenRecordQuery struct {
	ID                    string     `fiql:"id,db:id"`
	UserID                string     `fiql:"user_id,db:user_id"`
	AccessTokenExpiresAt  time.Time  `fiql:"access_token_expires_at,db:access_token_expires_at"`
	RefreshTokenExpiresAt time.Time  `fiql:"refresh_token_expires_at,db:refresh_token_expires_at"`
	RevokedAt             *time.Time `fiql:"revoked_at,db:revoked_at"`
	LastUsedAt            *time.Time `fiql:"last_used_at,db:last_used_at"`
	CreatedAt             time.Time  `fiql:"created_at,db:created_at"`
	UpdatedAt             *time.Time `fiql:"updated_at,db:updated_at"`
}

// UserQuery is the fiql view of the users table
type UserQuery struct {
	ID        string     `fiql:"id,db:id"`
	Email     string     `fiql:"email,db:email"`
	Username  string     `fiql:"username,db:username"`
	CreatedAt time.Time  `fiql:"created_at,db:created_at"`
	UpdatedAt *time.Time `fiql:"updated_at,db:updated_at"`
}
