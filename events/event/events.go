package event

import (
	"time"

	"github.com/eisenwinter/extrxx/events"
	"github.com/google/uuid"
)

const (
	AuthorizationCodeIssuedEvent    events.EventName = "authorization_code_issued"
	AuthorizationCodeExchangedEvent events.EventName = "authorization_code_exchanged"
	AuthorizationCodeRaceLostEvent  events.EventName = "authorization_code_race_lost"

	AccessTokenRefreshedEvent events.EventName = "access_token_refreshed"

	TokenRecordRevokedEvent         events.EventName = "token_record_revoked"
	TokenRecordsRevokedForUserEvent events.EventName = "token_records_revoked_for_user"

	RecordsPurgedEvent events.EventName = "token_records_purged"
)

// AuthorizationCodeIssued carries no code value, codes never end up in the audit log
type AuthorizationCodeIssued struct {
	UserID      uuid.UUID
	CallbackURL string
	ExpiresAt   time.Time
}

func (*AuthorizationCodeIssued) Name() events.EventName { return AuthorizationCodeIssuedEvent }

type AuthorizationCodeExchanged struct {
	UserID        uuid.UUID
	TokenRecordID uuid.UUID
	CallbackURL   string
}

func (*AuthorizationCodeExchanged) Name() events.EventName {
	return AuthorizationCodeExchangedEvent
}

// AuthorizationCodeRaceLost is raised when a redeemable code was consumed by
// a concurrent exchange between lookup and the conditional update
type AuthorizationCodeRaceLost struct {
	UserID uuid.UUID
}

func (*AuthorizationCodeRaceLost) Name() events.EventName { return AuthorizationCodeRaceLostEvent }

type AccessTokenRefreshed struct {
	UserID               uuid.UUID
	TokenRecordID        uuid.UUID
	AccessTokenExpiresAt time.Time
}

func (*AccessTokenRefreshed) Name() events.EventName { return AccessTokenRefreshedEvent }

type TokenRecordRevoked struct {
	TokenRecordID uuid.UUID
}

func (*TokenRecordRevoked) Name() events.EventName { return TokenRecordRevokedEvent }

type TokenRecordsRevokedForUser struct {
	UserID  uuid.UUID
	Revoked int
}

func (*TokenRecordsRevokedForUser) Name() events.EventName {
	return TokenRecordsRevokedForUserEvent
}

type RecordsPurged struct {
	Before       time.Time
	Codes        int
	TokenRecords int
}

func (*RecordsPurged) Name() events.EventName { return RecordsPurgedEvent }
