package extension

import (
	"context"

	"github.com/eisenwinter/extrxx/tokens"
	"github.com/google/uuid"
)

// CodeIssuer issues one time codes for signed in users of the web application
type CodeIssuer interface {
	IssueCode(ctx context.Context, userID uuid.UUID, callbackURL string) (*tokens.AuthorizationCode, error)
}

// Granter handles both grants of the token endpoint
type Granter interface {
	Exchange(ctx context.Context, code string) (*tokens.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*tokens.RefreshedAccess, error)
}

// Revoker ends sessions
type Revoker interface {
	RevokeOne(ctx context.Context, refreshToken string) error
	RevokeAll(ctx context.Context, userID uuid.UUID) (int, error)
}

// AccountReader backs the bearer protected endpoints
type AccountReader interface {
	Validate(ctx context.Context, accessToken string) (*tokens.Principal, error)
	Profile(ctx context.Context, userID uuid.UUID) (*tokens.Profile, error)
	Sessions(ctx context.Context, userID uuid.UUID) ([]*tokens.Session, error)
}

// Service is everything the ressource needs, *tokens.Service satisfies it
type Service interface {
	CodeIssuer
	Granter
	Revoker
	AccountReader
}
