package tokens

import (
	"context"
	"errors"
	"time"

	"github.com/eisenwinter/extrxx/config"
	"github.com/eisenwinter/extrxx/events/event"
	"go.uber.org/zap"
)

// Refresher mints new access tokens for refresh valid records. The refresh
// token itself is never rotated nor extended, the session has a hard ceiling.
type Refresher struct {
	options
	log       *zap.Logger
	store     AccessTokenRotator
	accessTTL time.Duration
}

func NewRefresher(
	log *zap.Logger,
	cfg *config.TokenConfiguration,
	store AccessTokenRotator,
	opts ...Option,
) *Refresher {
	return &Refresher{
		options:   buildOptions(cfg, opts),
		log:       log,
		store:     store,
		accessTTL: lifetimes(cfg).AccessTTL,
	}
}

// Refresh overwrites the access token of the record, the previous access
// token stops working immediately even if it had not expired yet
func (r *Refresher) Refresh(ctx context.Context, refreshToken string) (*RefreshedAccess, error) {
	if refreshToken == "" {
		return nil, ErrInvalid
	}
	now := r.now()
	record, err := r.store.TokenRecordByRefreshToken(ctx, refreshToken, now)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			r.log.Error("could not load token record", zap.Error(err))
		}
		return nil, translate(err)
	}
	access := r.token()
	expires := capExpiry(now.Add(r.accessTTL), record.RefreshTokenExpiresAt)
	err = r.store.RotateAccessToken(ctx, record.ID, access, expires, now)
	if err != nil {
		if errors.Is(err, ErrNotUpdated) {
			r.log.Info("token record revoked or expired during refresh",
				zap.String("token_record_id", record.ID.String()))
		} else {
			r.log.Error("could not rotate access token", zap.Error(err))
		}
		return nil, translate(err)
	}
	r.dispatcher.Dispatch(ctx, &event.AccessTokenRefreshed{
		UserID:               record.UserID,
		TokenRecordID:        record.ID,
		AccessTokenExpiresAt: expires,
	})
	return &RefreshedAccess{AccessToken: access, AccessTokenExpiresAt: expires}, nil
}
