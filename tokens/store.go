package tokens

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// errors every store implementation translates its driver errors into
var (
	// ErrNotFound indicates no record matched the lookup including its predicates
	ErrNotFound = errors.New("the requested entry was not found")
	// ErrNotUpdated indicates a conditional update affected zero records
	ErrNotUpdated = errors.New("conditional update affected no entry")
	// ErrAlreadyExists indicates a unique key is already taken
	ErrAlreadyExists = errors.New("this entity already exists")
)

// CodeInserter persists freshly issued authorization codes
type CodeInserter interface {
	InsertAuthorizationCode(ctx context.Context, code *AuthorizationCode) error
}

// CodeRedeemer finds and consumes authorization codes
type CodeRedeemer interface {
	// RedeemableAuthorizationCode returns the code if used_at is null and
	// expires_at is after now, ErrNotFound otherwise
	RedeemableAuthorizationCode(ctx context.Context, code string, now time.Time) (*AuthorizationCode, error)
	// MarkAuthorizationCodeUsed sets used_at = now only if the code is still
	// redeemable, ErrNotUpdated tells the caller it lost the race
	MarkAuthorizationCodeUsed(ctx context.Context, code string, now time.Time) error
}

// TokenRecordInserter persists new token records
type TokenRecordInserter interface {
	InsertTokenRecord(ctx context.Context, record *TokenRecord) error
}

// AccessTokenFinder is the hot path lookup used on every authenticated call
type AccessTokenFinder interface {
	// TokenRecordByAccessToken returns the record if revoked_at is null and
	// access_token_expires_at is after now, ErrNotFound otherwise
	TokenRecordByAccessToken(ctx context.Context, accessToken string, now time.Time) (*TokenRecord, error)
	// TouchTokenRecord sets last_used_at = now
	TouchTokenRecord(ctx context.Context, id uuid.UUID, now time.Time) error
}

// AccessTokenRotator swaps the access token of a record in place
type AccessTokenRotator interface {
	// TokenRecordByRefreshToken returns the record if revoked_at is null and
	// refresh_token_expires_at is after now, ErrNotFound otherwise
	TokenRecordByRefreshToken(ctx context.Context, refreshToken string, now time.Time) (*TokenRecord, error)
	// RotateAccessToken overwrites access token, its expiry and last_used_at,
	// only if the record is still refresh valid at now, ErrNotUpdated otherwise
	RotateAccessToken(
		ctx context.Context,
		id uuid.UUID,
		accessToken string,
		accessTokenExpiresAt time.Time,
		now time.Time,
	) error
}

// TokenRecordRevoker marks records as revoked
type TokenRecordRevoker interface {
	// RevokeTokenRecord sets revoked_at = now on the record owning the refresh
	// token unless it is revoked already. It returns the record id and
	// ErrNotFound only if no record ever owned the refresh token.
	RevokeTokenRecord(ctx context.Context, refreshToken string, now time.Time) (uuid.UUID, error)
	// RevokeTokenRecordsForUser revokes every non revoked record of the user
	// within a single set based update and returns the affected count
	RevokeTokenRecordsForUser(ctx context.Context, userID uuid.UUID, now time.Time) (int, error)
}

// SessionLister lists all token records of a user, newest first
type SessionLister interface {
	TokenRecordsForUser(ctx context.Context, userID uuid.UUID) ([]*TokenRecord, error)
}

// Purger physically removes long dead records, never called on the request path
type Purger interface {
	// PurgeAuthorizationCodes deletes codes which expired before the given time
	PurgeAuthorizationCodes(ctx context.Context, before time.Time) (int, error)
	// PurgeTokenRecords deletes records whose refresh window ended or which
	// were revoked before the given time
	PurgeTokenRecords(ctx context.Context, before time.Time) (int, error)
}

// RecordStore is the full persistence contract of this service
type RecordStore interface {
	CodeInserter
	CodeRedeemer
	TokenRecordInserter
	AccessTokenFinder
	AccessTokenRotator
	TokenRecordRevoker
	SessionLister
	Purger
}

// UserDirectory resolves internal user ids to public profiles
type UserDirectory interface {
	// UserProfile returns ErrNotFound if the user does not exist (anymore)
	UserProfile(ctx context.Context, id uuid.UUID) (*Profile, error)
}

// UserRegistry is a UserDirectory that can also register and list users,
// used by administrative tooling only
type UserRegistry interface {
	UserDirectory
	// CreateUser returns ErrAlreadyExists if the email or username is taken
	CreateUser(ctx context.Context, profile *Profile) error
	Users(ctx context.Context) ([]*Profile, error)
}
