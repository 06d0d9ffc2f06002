package tokens

import (
	"context"
	"errors"
	"time"

	"github.com/eisenwinter/extrxx/events/event"
	"go.uber.org/zap"
)

// Sweeper removes codes and records that have been dead for longer than the
// retention period
type Sweeper struct {
	options
	log   *zap.Logger
	store Purger
}

func NewSweeper(log *zap.Logger, store Purger, opts ...Option) *Sweeper {
	return &Sweeper{
		options: buildOptions(nil, opts),
		log:     log,
		store:   store,
	}
}

// Sweep purges everything that expired or was revoked before now - retention
func (s *Sweeper) Sweep(ctx context.Context, retention time.Duration) (codes int, records int, err error) {
	if retention < 0 {
		return 0, 0, errors.New("retention may not be negative")
	}
	before := s.now().Add(-retention)
	codes, err = s.store.PurgeAuthorizationCodes(ctx, before)
	if err != nil {
		s.log.Error("could not purge authorization codes", zap.Error(err))
		return 0, 0, ErrUpstreamUnavailable
	}
	records, err = s.store.PurgeTokenRecords(ctx, before)
	if err != nil {
		s.log.Error("could not purge token records", zap.Error(err))
		return codes, 0, ErrUpstreamUnavailable
	}
	s.log.Info("purged dead entries",
		zap.Time("before", before),
		zap.Int("codes", codes),
		zap.Int("token_records", records))
	s.dispatcher.Dispatch(ctx, &event.RecordsPurged{Before: before, Codes: codes, TokenRecords: records})
	return codes, records, nil
}

// Run sweeps every interval until the context is done
func (s *Sweeper) Run(ctx context.Context, interval time.Duration, retention time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// errors are logged by Sweep, the next tick retries
			_, _, _ = s.Sweep(ctx, retention)
		}
	}
}
