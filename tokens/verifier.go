package tokens

import (
	"context"
	"errors"
	"time"

	"github.com/eisenwinter/extrxx/config"
	"github.com/google/uuid"
	"github.com/jellydator/ttlcache/v3"
	"go.uber.org/zap"
)

const lastUsedCacheCapacity = 100_000

// AccessValidator checks presented access tokens against the record store
type AccessValidator struct {
	options
	log      *zap.Logger
	store    AccessTokenFinder
	lastUsed *ttlcache.Cache[uuid.UUID, struct{}]
}

func NewAccessValidator(
	log *zap.Logger,
	cfg *config.TokenConfiguration,
	store AccessTokenFinder,
	opts ...Option,
) *AccessValidator {
	v := &AccessValidator{
		options: buildOptions(cfg, opts),
		log:     log,
		store:   store,
	}
	if interval := lifetimes(cfg).LastUsedInterval; interval > 0 {
		v.lastUsed = ttlcache.New(
			ttlcache.WithTTL[uuid.UUID, struct{}](interval),
			ttlcache.WithCapacity[uuid.UUID, struct{}](lastUsedCacheCapacity),
			ttlcache.WithDisableTouchOnHit[uuid.UUID, struct{}](),
		)
	}
	return v
}

// Start runs the expiry janitor of the last used cache until Stop is called
func (v *AccessValidator) Start() {
	if v.lastUsed != nil {
		go v.lastUsed.Start()
	}
}

// Stop halts the janitor started by Start
func (v *AccessValidator) Stop() {
	if v.lastUsed != nil {
		v.lastUsed.Stop()
	}
}

// Validate returns the owner of a access valid token, ErrInvalid otherwise
func (v *AccessValidator) Validate(ctx context.Context, accessToken string) (*Principal, error) {
	if accessToken == "" {
		return nil, ErrInvalid
	}
	now := v.now()
	record, err := v.store.TokenRecordByAccessToken(ctx, accessToken, now)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			v.log.Error("could not load token record", zap.Error(err))
		}
		return nil, translate(err)
	}
	v.touch(ctx, record.ID, now)
	return &Principal{UserID: record.UserID, TokenRecordID: record.ID}, nil
}

// touch is best effort, a failed write never fails a validation
func (v *AccessValidator) touch(ctx context.Context, id uuid.UUID, now time.Time) {
	if v.lastUsed != nil {
		if item := v.lastUsed.Get(id); item != nil && !item.IsExpired() {
			return
		}
		v.lastUsed.Set(id, struct{}{}, ttlcache.DefaultTTL)
	}
	if err := v.store.TouchTokenRecord(ctx, id, now); err != nil {
		v.log.Warn("could not update last used", zap.String("token_record_id", id.String()), zap.Error(err))
		if v.lastUsed != nil {
			v.lastUsed.Delete(id)
		}
	}
}
