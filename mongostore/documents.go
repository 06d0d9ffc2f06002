package mongostore

import (
	"time"

	"github.com/eisenwinter/extrxx/tokens"
	"github.com/google/uuid"
)

type codeDocument struct {
	Code        string     `bson:"_id"`
	UserID      string     `bson:"user_id"`
	CallbackURL string     `bson:"callback_url"`
	ExpiresAt   time.Time  `bson:"expires_at"`
	UsedAt      *time.Time `bson:"used_at,omitempty"`
	CreatedAt   time.Time  `bson:"created_at"`
}

func codeToDocument(c *tokens.AuthorizationCode) *codeDocument {
	return &codeDocument{
		Code:        c.Code,
		UserID:      c.UserID.String(),
		CallbackURL: c.CallbackURL,
		ExpiresAt:   c.ExpiresAt,
		UsedAt:      c.UsedAt,
		CreatedAt:   c.CreatedAt,
	}
}

func (d *codeDocument) model() (*tokens.AuthorizationCode, error) {
	userID, err := uuid.Parse(d.UserID)
	if err != nil {
		return nil, err
	}
	return &tokens.AuthorizationCode{
		Code:        d.Code,
		UserID:      userID,
		CallbackURL: d.CallbackURL,
		ExpiresAt:   d.ExpiresAt.UTC(),
		UsedAt:      utc(d.UsedAt),
		CreatedAt:   d.CreatedAt.UTC(),
	}, nil
}

type recordDocument struct {
	ID                    string     `bson:"_id"`
	UserID                string     `bson:"user_id"`
	AccessToken           string     `bson:"access_token"`
	RefreshToken          string     `bson:"refresh_token"`
	AccessTokenExpiresAt  time.Time  `bson:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time  `bson:"refresh_token_expires_at"`
	RevokedAt             *time.Time `bson:"revoked_at,omitempty"`
	LastUsedAt            *time.Time `bson:"last_used_at,omitempty"`
	CreatedAt             time.Time  `bson:"created_at"`
	UpdatedAt             *time.Time `bson:"updated_at,omitempty"`
}

func recordToDocument(r *tokens.TokenRecord) *recordDocument {
	return &recordDocument{
		ID:                    r.ID.String(),
		UserID:                r.UserID.String(),
		AccessToken:           r.AccessToken,
		RefreshToken:          r.RefreshToken,
		AccessTokenExpiresAt:  r.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: r.RefreshTokenExpiresAt,
		RevokedAt:             r.RevokedAt,
		LastUsedAt:            r.LastUsedAt,
		CreatedAt:             r.CreatedAt,
		UpdatedAt:             r.UpdatedAt,
	}
}

func (d *recordDocument) model() (*tokens.TokenRecord, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, err
	}
	userID, err := uuid.Parse(d.UserID)
	if err != nil {
		return nil, err
	}
	return &tokens.TokenRecord{
		ID:                    id,
		UserID:                userID,
		AccessToken:           d.AccessToken,
		RefreshToken:          d.RefreshToken,
		AccessTokenExpiresAt:  d.AccessTokenExpiresAt.UTC(),
		RefreshTokenExpiresAt: d.RefreshTokenExpiresAt.UTC(),
		RevokedAt:             utc(d.RevokedAt),
		LastUsedAt:            utc(d.LastUsedAt),
		CreatedAt:             d.CreatedAt.UTC(),
		UpdatedAt:             utc(d.UpdatedAt),
	}, nil
}

type userDocument struct {
	ID        string    `bson:"_id"`
	Email     string    `bson:"email"`
	Username  string    `bson:"username"`
	AvatarURL string    `bson:"avatar_url,omitempty"`
	CreatedAt time.Time `bson:"created_at"`
}

func (d *userDocument) model() (*tokens.Profile, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, err
	}
	return &tokens.Profile{
		ID:        id,
		Email:     d.Email,
		Username:  d.Username,
		AvatarURL: d.AvatarURL,
	}, nil
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
