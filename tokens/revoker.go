package tokens

import (
	"context"
	"errors"

	"github.com/eisenwinter/extrxx/config"
	"github.com/eisenwinter/extrxx/events/event"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Revoker ends sessions, revocation is terminal
type Revoker struct {
	options
	log   *zap.Logger
	store TokenRecordRevoker
}

func NewRevoker(
	log *zap.Logger,
	cfg *config.TokenConfiguration,
	store TokenRecordRevoker,
	opts ...Option,
) *Revoker {
	return &Revoker{
		options: buildOptions(cfg, opts),
		log:     log,
		store:   store,
	}
}

// RevokeOne revokes the record owning the refresh token. Revoking an already
// revoked record succeeds, an unknown refresh token is ErrInvalid.
func (r *Revoker) RevokeOne(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return ErrInvalid
	}
	id, err := r.store.RevokeTokenRecord(ctx, refreshToken, r.now())
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			r.log.Error("could not revoke token record", zap.Error(err))
		}
		return translate(err)
	}
	r.dispatcher.Dispatch(ctx, &event.TokenRecordRevoked{TokenRecordID: id})
	return nil
}

// RevokeAll revokes every live record of the user and returns how many
// records were affected, a user without records is not an error
func (r *Revoker) RevokeAll(ctx context.Context, userID uuid.UUID) (int, error) {
	if userID == uuid.Nil {
		return 0, ErrInvalid
	}
	n, err := r.store.RevokeTokenRecordsForUser(ctx, userID, r.now())
	if err != nil {
		r.log.Error("could not revoke token records of user",
			zap.String("user_id", userID.String()), zap.Error(err))
		return 0, ErrUpstreamUnavailable
	}
	r.dispatcher.Dispatch(ctx, &event.TokenRecordsRevokedForUser{UserID: userID, Revoked: n})
	return n, nil
}
