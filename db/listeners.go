package db

import (
	"context"
	"strconv"
	"time"

	"github.com/eisenwinter/extrxx/db/tables"
	"github.com/eisenwinter/extrxx/events"
	"github.com/eisenwinter/extrxx/events/event"
	"go.uber.org/zap"
)

// Auditor is a way to write audit log events into a persistent store
type Auditor interface {
	addToAuditLog(ctx context.Context, event string, payload tables.MapStructure) error
}

// BootstrapListeners registers all the event listeners from this package,
// codes and tokens never end up in the audit log, only ids
func BootstrapListeners(store Auditor, log *zap.Logger) []events.EventListener {
	return []events.EventListener{
		&codeIssuedListener{
			log:   log,
			store: store,
		},
		&codeExchangedListener{
			log:   log,
			store: store,
		},
		&codeRaceLostListener{
			log:   log,
			store: store,
		},
		&tokenRecordRevokedListener{
			log:   log,
			store: store,
		},
		&tokenRecordsRevokedForUserListener{
			log:   log,
			store: store,
		},
		&recordsPurgedListener{
			log:   log,
			store: store,
		},
	}
}

func persist(ctx context.Context, l *zap.Logger, store Auditor, ev events.EventName, payload tables.MapStructure) {
	err := store.addToAuditLog(ctx, string(ev), payload)
	if err != nil {
		l.Warn("Could not persist event to audit log", zap.Error(err), zap.String("event", string(ev)))
	}
}

type codeIssuedListener struct {
	store Auditor
	log   *zap.Logger
}

func (*codeIssuedListener) ForEvent() events.EventName {
	return event.AuthorizationCodeIssuedEvent
}

func (l *codeIssuedListener) Handle(ctx context.Context, ev events.Event) error {
	e := ev.(*event.AuthorizationCodeIssued)
	persist(ctx, l.log, l.store, l.ForEvent(), map[string]interface{}{
		"user_id":      e.UserID.String(),
		"callback_url": e.CallbackURL,
		"expires_at":   e.ExpiresAt.Format(time.RFC3339),
	})
	return nil
}

type codeExchangedListener struct {
	store Auditor
	log   *zap.Logger
}

func (*codeExchangedListener) ForEvent() events.EventName {
	return event.AuthorizationCodeExchangedEvent
}

func (l *codeExchangedListener) Handle(ctx context.Context, ev events.Event) error {
	e := ev.(*event.AuthorizationCodeExchanged)
	persist(ctx, l.log, l.store, l.ForEvent(), map[string]interface{}{
		"user_id":         e.UserID.String(),
		"token_record_id": e.TokenRecordID.String(),
		"callback_url":    e.CallbackURL,
	})
	return nil
}

type codeRaceLostListener struct {
	store Auditor
	log   *zap.Logger
}

func (*codeRaceLostListener) ForEvent() events.EventName {
	return event.AuthorizationCodeRaceLostEvent
}

func (l *codeRaceLostListener) Handle(ctx context.Context, ev events.Event) error {
	e := ev.(*event.AuthorizationCodeRaceLost)
	persist(ctx, l.log, l.store, l.ForEvent(), map[string]interface{}{
		"user_id": e.UserID.String(),
	})
	return nil
}

type tokenRecordRevokedListener struct {
	store Auditor
	log   *zap.Logger
}

func (*tokenRecordRevokedListener) ForEvent() events.EventName {
	return event.TokenRecordRevokedEvent
}

func (l *tokenRecordRevokedListener) Handle(ctx context.Context, ev events.Event) error {
	e := ev.(*event.TokenRecordRevoked)
	persist(ctx, l.log, l.store, l.ForEvent(), map[string]interface{}{
		"token_record_id": e.TokenRecordID.String(),
	})
	return nil
}

type tokenRecordsRevokedForUserListener struct {
	store Auditor
	log   *zap.Logger
}

func (*tokenRecordsRevokedForUserListener) ForEvent() events.EventName {
	return event.TokenRecordsRevokedForUserEvent
}

func (l *tokenRecordsRevokedForUserListener) Handle(ctx context.Context, ev events.Event) error {
	e := ev.(*event.TokenRecordsRevokedForUser)
	persist(ctx, l.log, l.store, l.ForEvent(), map[string]interface{}{
		"user_id": e.UserID.String(),
		"revoked": strconv.Itoa(e.Revoked),
	})
	return nil
}

type recordsPurgedListener struct {
	store Auditor
	log   *zap.Logger
}

func (*recordsPurgedListener) ForEvent() events.EventName {
	return event.RecordsPurgedEvent
}

func (l *recordsPurgedListener) Handle(ctx context.Context, ev events.Event) error {
	e := ev.(*event.RecordsPurged)
	persist(ctx, l.log, l.store, l.ForEvent(), map[string]interface{}{
		"before":        e.Before.Format(time.RFC3339),
		"codes":         strconv.Itoa(e.Codes),
		"token_records": strconv.Itoa(e.TokenRecords),
	})
	return nil
}
