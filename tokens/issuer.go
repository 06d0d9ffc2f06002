package tokens

import (
	"context"
	"errors"
	"time"

	"github.com/eisenwinter/extrxx/config"
	"github.com/eisenwinter/extrxx/events/event"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CodeIssuer mints authorization codes for users that just signed in to the
// primary application
type CodeIssuer struct {
	options
	log   *zap.Logger
	store CodeInserter
	users UserDirectory
	ttl   time.Duration
}

func NewCodeIssuer(
	log *zap.Logger,
	cfg *config.TokenConfiguration,
	store CodeInserter,
	users UserDirectory,
	opts ...Option,
) *CodeIssuer {
	return &CodeIssuer{
		options: buildOptions(cfg, opts),
		log:     log,
		store:   store,
		users:   users,
		ttl:     lifetimes(cfg).CodeTTL,
	}
}

// IssueCode creates a one time code for the user, the callback url is stored
// as presented and not validated
func (i *CodeIssuer) IssueCode(
	ctx context.Context,
	userID uuid.UUID,
	callbackURL string,
) (*AuthorizationCode, error) {
	if userID == uuid.Nil {
		return nil, ErrInvalid
	}
	if _, err := i.users.UserProfile(ctx, userID); err != nil {
		if errors.Is(err, ErrNotFound) {
			i.log.Info("refusing to issue code for unknown user", zap.String("user_id", userID.String()))
			return nil, ErrInvalid
		}
		i.log.Error("could not resolve user", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, ErrIssuanceFailed
	}
	now := i.now()
	code := &AuthorizationCode{
		Code:        i.token(),
		UserID:      userID,
		CallbackURL: callbackURL,
		ExpiresAt:   now.Add(i.ttl),
		CreatedAt:   now,
	}
	if err := i.store.InsertAuthorizationCode(ctx, code); err != nil {
		i.log.Error("could not persist authorization code", zap.Error(err))
		return nil, ErrIssuanceFailed
	}
	i.dispatcher.Dispatch(ctx, &event.AuthorizationCodeIssued{
		UserID:      userID,
		CallbackURL: callbackURL,
		ExpiresAt:   code.ExpiresAt,
	})
	return code, nil
}
