package tokens_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/eisenwinter/extrxx/config"
	"github.com/eisenwinter/extrxx/events/event"
	"github.com/eisenwinter/extrxx/tokens"
	"github.com/eisenwinter/extrxx/tokens/mocks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap/zaptest"
)

var errConnectionReset = errors.New("connection reset by peer")

func TestIssueCodePersistenceFailure(t *testing.T) {
	assert := assert.New(t)
	store := mocks.NewCodeInserter(t)
	users := mocks.NewUserDirectory(t)
	dispatcher := mocks.NewDispatcher(t)
	clock := newFakeClock()
	issuer := tokens.NewCodeIssuer(
		zaptest.NewLogger(t),
		config.DefaultTokenConfiguration(),
		store,
		users,
		tokens.WithClock(clock),
		tokens.WithDispatcher(dispatcher),
	)
	ctx := context.Background()

	users.On("UserProfile", ctx, testUserID).Return(&tokens.Profile{ID: testUserID}, nil)
	store.On("InsertAuthorizationCode", ctx, mock.AnythingOfType("*tokens.AuthorizationCode")).
		Return(errConnectionReset)

	_, err := issuer.IssueCode(ctx, testUserID, "app://done")
	assert.ErrorIs(err, tokens.ErrIssuanceFailed)
	assert.ErrorIs(err, tokens.ErrUpstreamUnavailable)
	assert.NotErrorIs(err, errConnectionReset)
}

func TestIssueCodeDirectoryFailure(t *testing.T) {
	store := mocks.NewCodeInserter(t)
	users := mocks.NewUserDirectory(t)
	issuer := tokens.NewCodeIssuer(zaptest.NewLogger(t), nil, store, users)
	ctx := context.Background()

	users.On("UserProfile", ctx, testUserID).Return(nil, errConnectionReset)

	_, err := issuer.IssueCode(ctx, testUserID, "app://done")
	assert.ErrorIs(t, err, tokens.ErrIssuanceFailed)
	store.AssertNotCalled(t, "InsertAuthorizationCode", mock.Anything, mock.Anything)
}

func TestIssueCodeDispatchesEvent(t *testing.T) {
	assert := assert.New(t)
	store := mocks.NewCodeInserter(t)
	users := mocks.NewUserDirectory(t)
	dispatcher := mocks.NewDispatcher(t)
	clock := newFakeClock()
	issuer := tokens.NewCodeIssuer(
		zaptest.NewLogger(t),
		nil,
		store,
		users,
		tokens.WithClock(clock),
		tokens.WithDispatcher(dispatcher),
		tokens.WithGenerator(newQueuedGenerator("abc123")),
	)
	ctx := context.Background()

	users.On("UserProfile", ctx, testUserID).Return(&tokens.Profile{ID: testUserID}, nil)
	store.On("InsertAuthorizationCode", ctx, mock.MatchedBy(func(c *tokens.AuthorizationCode) bool {
		return c.Code == "abc123" && c.UserID == testUserID && c.UsedAt == nil
	})).Return(nil)
	dispatcher.On("Dispatch", ctx, mock.AnythingOfType("*event.AuthorizationCodeIssued")).Return()

	code, err := issuer.IssueCode(ctx, testUserID, "app://done")
	assert.NoError(err)
	assert.Equal(clock.Now().Add(5*time.Minute), code.ExpiresAt)
}

func TestIssueCodeRejectsNilUser(t *testing.T) {
	issuer := tokens.NewCodeIssuer(zaptest.NewLogger(t), nil, mocks.NewCodeInserter(t), mocks.NewUserDirectory(t))
	_, err := issuer.IssueCode(context.Background(), uuid.Nil, "app://done")
	assert.ErrorIs(t, err, tokens.ErrInvalid)
}

func TestExchangeLostRaceIsReportedAsInvalid(t *testing.T) {
	assert := assert.New(t)
	codes := mocks.NewCodeRedeemer(t)
	records := mocks.NewTokenRecordInserter(t)
	users := mocks.NewUserDirectory(t)
	dispatcher := mocks.NewDispatcher(t)
	clock := newFakeClock()
	exchanger := tokens.NewCodeExchanger(
		zaptest.NewLogger(t),
		nil,
		codes,
		records,
		users,
		tokens.WithClock(clock),
		tokens.WithDispatcher(dispatcher),
	)
	ctx := context.Background()
	now := clock.Now()

	codes.On("RedeemableAuthorizationCode", ctx, "abc123", now).Return(&tokens.AuthorizationCode{
		Code:      "abc123",
		UserID:    testUserID,
		ExpiresAt: now.Add(time.Minute),
	}, nil)
	codes.On("MarkAuthorizationCodeUsed", ctx, "abc123", now).Return(tokens.ErrNotUpdated)
	dispatcher.On("Dispatch", ctx, mock.AnythingOfType("*event.AuthorizationCodeRaceLost")).Return()

	_, err := exchanger.Exchange(ctx, "abc123")
	assert.ErrorIs(err, tokens.ErrInvalid)
	users.AssertNotCalled(t, "UserProfile", mock.Anything, mock.Anything)
	records.AssertNotCalled(t, "InsertTokenRecord", mock.Anything, mock.Anything)
}

func TestExchangeStoreFailureIsNotInvalid(t *testing.T) {
	assert := assert.New(t)
	codes := mocks.NewCodeRedeemer(t)
	exchanger := tokens.NewCodeExchanger(
		zaptest.NewLogger(t),
		nil,
		codes,
		mocks.NewTokenRecordInserter(t),
		mocks.NewUserDirectory(t),
	)
	ctx := context.Background()

	codes.On("RedeemableAuthorizationCode", ctx, "abc123", mock.AnythingOfType("time.Time")).
		Return(nil, errConnectionReset)

	_, err := exchanger.Exchange(ctx, "abc123")
	assert.ErrorIs(err, tokens.ErrUpstreamUnavailable)
	assert.NotErrorIs(err, tokens.ErrInvalid)
}

func TestExchangeRecordInsertFailure(t *testing.T) {
	codes := mocks.NewCodeRedeemer(t)
	records := mocks.NewTokenRecordInserter(t)
	users := mocks.NewUserDirectory(t)
	clock := newFakeClock()
	exchanger := tokens.NewCodeExchanger(zaptest.NewLogger(t), nil, codes, records, users, tokens.WithClock(clock))
	ctx := context.Background()
	now := clock.Now()

	codes.On("RedeemableAuthorizationCode", ctx, "abc123", now).
		Return(&tokens.AuthorizationCode{Code: "abc123", UserID: testUserID, ExpiresAt: now.Add(time.Minute)}, nil)
	codes.On("MarkAuthorizationCodeUsed", ctx, "abc123", now).Return(nil)
	users.On("UserProfile", ctx, testUserID).Return(&tokens.Profile{ID: testUserID}, nil)
	records.On("InsertTokenRecord", ctx, mock.MatchedBy(func(r *tokens.TokenRecord) bool {
		return r.UserID == testUserID &&
			r.AccessTokenExpiresAt.Equal(now.Add(time.Hour)) &&
			r.RefreshTokenExpiresAt.Equal(now.Add(720*time.Hour))
	})).Return(errConnectionReset)

	_, err := exchanger.Exchange(ctx, "abc123")
	assert.ErrorIs(t, err, tokens.ErrUpstreamUnavailable)
}

func TestValidateIgnoresTouchFailures(t *testing.T) {
	assert := assert.New(t)
	store := mocks.NewAccessTokenFinder(t)
	clock := newFakeClock()
	validator := tokens.NewAccessValidator(zaptest.NewLogger(t), nil, store, tokens.WithClock(clock))
	ctx := context.Background()
	now := clock.Now()
	recordID := uuid.New()

	store.On("TokenRecordByAccessToken", ctx, "access", now).
		Return(&tokens.TokenRecord{ID: recordID, UserID: testUserID}, nil)
	store.On("TouchTokenRecord", ctx, recordID, now).Return(errConnectionReset)

	principal, err := validator.Validate(ctx, "access")
	assert.NoError(err)
	assert.Equal(testUserID, principal.UserID)
	assert.Equal(recordID, principal.TokenRecordID)
}

func TestValidateDebouncesLastUsedWrites(t *testing.T) {
	assert := assert.New(t)
	store := mocks.NewAccessTokenFinder(t)
	cfg := config.DefaultTokenConfiguration()
	cfg.LastUsedInterval = time.Hour
	validator := tokens.NewAccessValidator(zaptest.NewLogger(t), cfg, store)
	ctx := context.Background()
	recordID := uuid.New()

	store.On("TokenRecordByAccessToken", ctx, "access", mock.AnythingOfType("time.Time")).
		Return(&tokens.TokenRecord{ID: recordID, UserID: testUserID}, nil)
	store.On("TouchTokenRecord", ctx, recordID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	for i := 0; i < 5; i++ {
		_, err := validator.Validate(ctx, "access")
		assert.NoError(err)
	}
	store.AssertNumberOfCalls(t, "TouchTokenRecord", 1)
}

func TestValidateStoreFailure(t *testing.T) {
	store := mocks.NewAccessTokenFinder(t)
	validator := tokens.NewAccessValidator(zaptest.NewLogger(t), nil, store)
	ctx := context.Background()

	store.On("TokenRecordByAccessToken", ctx, "access", mock.AnythingOfType("time.Time")).
		Return(nil, errConnectionReset)

	_, err := validator.Validate(ctx, "access")
	assert.ErrorIs(t, err, tokens.ErrUpstreamUnavailable)
}

func TestRefreshLosingAgainstRevocation(t *testing.T) {
	assert := assert.New(t)
	store := mocks.NewAccessTokenRotator(t)
	clock := newFakeClock()
	refresher := tokens.NewRefresher(zaptest.NewLogger(t), nil, store, tokens.WithClock(clock))
	ctx := context.Background()
	now := clock.Now()
	recordID := uuid.New()

	store.On("TokenRecordByRefreshToken", ctx, "refresh", now).Return(&tokens.TokenRecord{
		ID:                    recordID,
		UserID:                testUserID,
		RefreshTokenExpiresAt: now.Add(24 * time.Hour),
	}, nil)
	store.On("RotateAccessToken", ctx, recordID, mock.AnythingOfType("string"), now.Add(time.Hour), now).
		Return(tokens.ErrNotUpdated)

	_, err := refresher.Refresh(ctx, "refresh")
	assert.ErrorIs(err, tokens.ErrInvalid)
}

func TestRefreshDispatchesEvent(t *testing.T) {
	assert := assert.New(t)
	store := mocks.NewAccessTokenRotator(t)
	dispatcher := mocks.NewDispatcher(t)
	clock := newFakeClock()
	refresher := tokens.NewRefresher(
		zaptest.NewLogger(t),
		nil,
		store,
		tokens.WithClock(clock),
		tokens.WithDispatcher(dispatcher),
		tokens.WithGenerator(newQueuedGenerator("fresh")),
	)
	ctx := context.Background()
	now := clock.Now()
	recordID := uuid.New()

	store.On("TokenRecordByRefreshToken", ctx, "refresh", now).Return(&tokens.TokenRecord{
		ID:                    recordID,
		UserID:                testUserID,
		RefreshTokenExpiresAt: now.Add(30 * time.Minute),
	}, nil)
	store.On("RotateAccessToken", ctx, recordID, "fresh", now.Add(30*time.Minute), now).Return(nil)
	dispatcher.On("Dispatch", ctx, mock.AnythingOfType("*event.AccessTokenRefreshed")).Return()

	refreshed, err := refresher.Refresh(ctx, "refresh")
	assert.NoError(err)
	assert.Equal("fresh", refreshed.AccessToken)
	assert.Equal(now.Add(30*time.Minute), refreshed.AccessTokenExpiresAt)
}

func TestRevokeAllStoreFailure(t *testing.T) {
	store := mocks.NewTokenRecordRevoker(t)
	revoker := tokens.NewRevoker(zaptest.NewLogger(t), nil, store)
	ctx := context.Background()

	store.On("RevokeTokenRecordsForUser", ctx, testUserID, mock.AnythingOfType("time.Time")).
		Return(0, errConnectionReset)

	_, err := revoker.RevokeAll(ctx, testUserID)
	assert.ErrorIs(t, err, tokens.ErrUpstreamUnavailable)
}

func TestRevokeOneDispatchesRecordID(t *testing.T) {
	store := mocks.NewTokenRecordRevoker(t)
	dispatcher := mocks.NewDispatcher(t)
	revoker := tokens.NewRevoker(zaptest.NewLogger(t), nil, store, tokens.WithDispatcher(dispatcher))
	ctx := context.Background()
	recordID := uuid.New()

	store.On("RevokeTokenRecord", ctx, "refresh", mock.AnythingOfType("time.Time")).Return(recordID, nil)
	dispatcher.On("Dispatch", ctx, mock.MatchedBy(func(ev *event.TokenRecordRevoked) bool {
		return ev.TokenRecordID == recordID
	})).Return()

	assert.NoError(t, revoker.RevokeOne(ctx, "refresh"))
}

func TestRefreshStoreFailure(t *testing.T) {
	store := mocks.NewAccessTokenRotator(t)
	refresher := tokens.NewRefresher(zaptest.NewLogger(t), nil, store)
	ctx := context.Background()

	store.On("TokenRecordByRefreshToken", ctx, "refresh", mock.AnythingOfType("time.Time")).
		Return(nil, errConnectionReset)

	_, err := refresher.Refresh(ctx, "refresh")
	assert.ErrorIs(t, err, tokens.ErrUpstreamUnavailable)
	assert.NotErrorIs(t, err, tokens.ErrInvalid)
}

func TestRefreshRotateFailure(t *testing.T) {
	store := mocks.NewAccessTokenRotator(t)
	clock := newFakeClock()
	refresher := tokens.NewRefresher(zaptest.NewLogger(t), nil, store, tokens.WithClock(clock))
	ctx := context.Background()
	now := clock.Now()
	recordID := uuid.New()

	store.On("TokenRecordByRefreshToken", ctx, "refresh", now).Return(&tokens.TokenRecord{
		ID:                    recordID,
		UserID:                testUserID,
		RefreshTokenExpiresAt: now.Add(24 * time.Hour),
	}, nil)
	store.On("RotateAccessToken", ctx, recordID, mock.AnythingOfType("string"), now.Add(time.Hour), now).
		Return(errConnectionReset)

	_, err := refresher.Refresh(ctx, "refresh")
	assert.ErrorIs(t, err, tokens.ErrUpstreamUnavailable)
}

func TestRevokeOneStoreFailure(t *testing.T) {
	store := mocks.NewTokenRecordRevoker(t)
	revoker := tokens.NewRevoker(zaptest.NewLogger(t), nil, store)
	ctx := context.Background()

	store.On("RevokeTokenRecord", ctx, "refresh", mock.AnythingOfType("time.Time")).
		Return(uuid.Nil, errConnectionReset)

	err := revoker.RevokeOne(ctx, "refresh")
	assert.ErrorIs(t, err, tokens.ErrUpstreamUnavailable)
	assert.NotErrorIs(t, err, tokens.ErrInvalid)
}
