package tokens

import (
	"time"

	"github.com/google/uuid"
)

// AuthorizationCode is a one time code proving a user just signed in to the
// primary application and may hand a token pair to the extension
type AuthorizationCode struct {
	Code        string
	UserID      uuid.UUID
	CallbackURL string
	ExpiresAt   time.Time
	UsedAt      *time.Time
	CreatedAt   time.Time
}

// Redeemable reports if the code is unused and unexpired at now
func (c *AuthorizationCode) Redeemable(now time.Time) bool {
	return c.UsedAt == nil && now.Before(c.ExpiresAt)
}

// TokenRecord pairs one access token with one refresh token for a single
// user session on a single device
type TokenRecord struct {
	ID                    uuid.UUID
	UserID                uuid.UUID
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	RevokedAt             *time.Time
	LastUsedAt            *time.Time
	CreatedAt             time.Time
	UpdatedAt             *time.Time
}

// AccessValid reports if the current access token may be used at now
func (r *TokenRecord) AccessValid(now time.Time) bool {
	return r.RevokedAt == nil && now.Before(r.AccessTokenExpiresAt)
}

// RefreshValid reports if the refresh token may mint new access tokens at now,
// this does not depend on the access token still being valid
func (r *TokenRecord) RefreshValid(now time.Time) bool {
	return r.RevokedAt == nil && now.Before(r.RefreshTokenExpiresAt)
}

// Profile is the public view of a user as resolved by the user directory
type Profile struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	AvatarURL string    `json:"avatar_url,omitempty"`
}

// TokenPair is the result of a successful code exchange
type TokenPair struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	User                  *Profile
}

// Principal is the owner of a validated access token
type Principal struct {
	UserID        uuid.UUID
	TokenRecordID uuid.UUID
}

// RefreshedAccess is the result of a successful refresh
type RefreshedAccess struct {
	AccessToken          string
	AccessTokenExpiresAt time.Time
}

// Session is a token record without any token values, safe to show to users
type Session struct {
	ID                    uuid.UUID  `json:"id"`
	AccessTokenExpiresAt  time.Time  `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time  `json:"refresh_token_expires_at"`
	CreatedAt             time.Time  `json:"created_at"`
	LastUsedAt            *time.Time `json:"last_used_at,omitempty"`
	RevokedAt             *time.Time `json:"revoked_at,omitempty"`
}

func sessionFromRecord(r *TokenRecord) *Session {
	return &Session{
		ID:                    r.ID,
		AccessTokenExpiresAt:  r.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: r.RefreshTokenExpiresAt,
		CreatedAt:             r.CreatedAt,
		LastUsedAt:            r.LastUsedAt,
		RevokedAt:             r.RevokedAt,
	}
}

// capExpiry bounds an access token expiry by the refresh window of its record
func capExpiry(accessExpiry time.Time, refreshExpiry time.Time) time.Time {
	if accessExpiry.After(refreshExpiry) {
		return refreshExpiry
	}
	return accessExpiry
}
