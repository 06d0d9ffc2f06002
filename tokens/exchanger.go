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

// CodeExchanger redeems authorization codes for token pairs, exactly once
type CodeExchanger struct {
	options
	log        *zap.Logger
	codes      CodeRedeemer
	records    TokenRecordInserter
	users      UserDirectory
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewCodeExchanger(
	log *zap.Logger,
	cfg *config.TokenConfiguration,
	codes CodeRedeemer,
	records TokenRecordInserter,
	users UserDirectory,
	opts ...Option,
) *CodeExchanger {
	lt := lifetimes(cfg)
	return &CodeExchanger{
		options:    buildOptions(cfg, opts),
		log:        log,
		codes:      codes,
		records:    records,
		users:      users,
		accessTTL:  lt.AccessTTL,
		refreshTTL: lt.RefreshTTL,
	}
}

// Exchange redeems the code. Unknown, expired, used and lost-race codes
// as well as codes of deleted users all result in ErrInvalid.
func (e *CodeExchanger) Exchange(ctx context.Context, code string) (*TokenPair, error) {
	if code == "" {
		return nil, ErrInvalid
	}
	now := e.now()
	ac, err := e.codes.RedeemableAuthorizationCode(ctx, code, now)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			e.log.Error("could not load authorization code", zap.Error(err))
		}
		return nil, translate(err)
	}
	// the conditional update decides the race, the loser never sees tokens
	err = e.codes.MarkAuthorizationCodeUsed(ctx, code, now)
	if err != nil {
		if errors.Is(err, ErrNotUpdated) || errors.Is(err, ErrNotFound) {
			e.log.Warn("authorization code was redeemed concurrently",
				zap.String("user_id", ac.UserID.String()))
			e.dispatcher.Dispatch(ctx, &event.AuthorizationCodeRaceLost{UserID: ac.UserID})
			return nil, ErrInvalid
		}
		e.log.Error("could not mark authorization code used", zap.Error(err))
		return nil, ErrUpstreamUnavailable
	}

	user, err := e.users.UserProfile(ctx, ac.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			e.log.Warn("authorization code belongs to a user that no longer exists",
				zap.String("user_id", ac.UserID.String()))
			return nil, ErrInvalid
		}
		e.log.Error("could not resolve user", zap.String("user_id", ac.UserID.String()), zap.Error(err))
		return nil, ErrUpstreamUnavailable
	}

	refreshExpiry := now.Add(e.refreshTTL)
	record := &TokenRecord{
		ID:                    uuid.New(),
		UserID:                ac.UserID,
		AccessToken:           e.token(),
		RefreshToken:          e.token(),
		AccessTokenExpiresAt:  capExpiry(now.Add(e.accessTTL), refreshExpiry),
		RefreshTokenExpiresAt: refreshExpiry,
		CreatedAt:             now,
	}
	if err := e.records.InsertTokenRecord(ctx, record); err != nil {
		e.log.Error("could not persist token record", zap.Error(err))
		return nil, ErrUpstreamUnavailable
	}
	e.dispatcher.Dispatch(ctx, &event.AuthorizationCodeExchanged{
		UserID:        record.UserID,
		TokenRecordID: record.ID,
		CallbackURL:   ac.CallbackURL,
	})
	return &TokenPair{
		AccessToken:           record.AccessToken,
		RefreshToken:          record.RefreshToken,
		AccessTokenExpiresAt:  record.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: record.RefreshTokenExpiresAt,
		User:                  user,
	}, nil
}
