package tokens_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/eisenwinter/extrxx/tokens"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndExchangeScenario(t *testing.T) {
	assert := assert.New(t)
	f := newFixture(t, "abc123")
	ctx := context.Background()
	now := f.clock.Now()

	code, err := f.service.IssueCode(ctx, testUserID, "app://done")
	require.NoError(t, err)
	assert.Equal("abc123", code.Code)
	assert.Equal("app://done", code.CallbackURL)
	assert.Equal(now.Add(5*time.Minute), code.ExpiresAt)

	pair, err := f.service.Exchange(ctx, "abc123")
	require.NoError(t, err)
	assert.NotEmpty(pair.AccessToken)
	assert.NotEmpty(pair.RefreshToken)
	assert.NotEqual(pair.AccessToken, pair.RefreshToken)
	assert.WithinDuration(now.Add(time.Hour), pair.AccessTokenExpiresAt, time.Second)
	assert.WithinDuration(now.Add(30*24*time.Hour), pair.RefreshTokenExpiresAt, time.Second)
	assert.Equal(testUserID, pair.User.ID)
	assert.Equal("u1", pair.User.Username)

	principal, err := f.service.Validate(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(testUserID, principal.UserID)

	_, err = f.service.Exchange(ctx, "abc123")
	assert.ErrorIs(err, tokens.ErrInvalid)
}

func TestExchangeIsSingleUseUnderConcurrency(t *testing.T) {
	assert := assert.New(t)
	f := newFixture(t)
	ctx := context.Background()
	code, err := f.service.IssueCode(ctx, testUserID, "app://done")
	require.NoError(t, err)

	const attempts = 32
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		invalid   int
	)
	start := make(chan struct{})
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := f.service.Exchange(ctx, code.Code)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else if assert.ErrorIs(err, tokens.ErrInvalid) {
				invalid++
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(1, successes)
	assert.Equal(attempts-1, invalid)
	sessions, err := f.service.Sessions(ctx, testUserID)
	require.NoError(t, err)
	assert.Len(sessions, 1)
}

func TestExchangeEnforcesCodeExpiry(t *testing.T) {
	assert := assert.New(t)
	f := newFixture(t)
	ctx := context.Background()
	code, err := f.service.IssueCode(ctx, testUserID, "app://done")
	require.NoError(t, err)

	f.clock.Advance(5 * time.Minute)
	_, err = f.service.Exchange(ctx, code.Code)
	assert.ErrorIs(err, tokens.ErrInvalid)
}

func TestExchangeUnknownCode(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.Exchange(context.Background(), "does-not-exist")
	assert.ErrorIs(t, err, tokens.ErrInvalid)
	_, err = f.service.Exchange(context.Background(), "")
	assert.ErrorIs(t, err, tokens.ErrInvalid)
}

func TestExchangeForDeletedUserConsumesCode(t *testing.T) {
	assert := assert.New(t)
	f := newFixture(t)
	ctx := context.Background()
	code, err := f.service.IssueCode(ctx, testUserID, "app://done")
	require.NoError(t, err)
	require.NoError(t, f.store.DeleteUser(ctx, testUserID))

	_, err = f.service.Exchange(ctx, code.Code)
	assert.ErrorIs(err, tokens.ErrInvalid)
	_, err = f.store.RedeemableAuthorizationCode(ctx, code.Code, f.clock.Now())
	assert.ErrorIs(err, tokens.ErrNotFound)
}

func TestIssueCodeForUnknownUser(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.IssueCode(context.Background(), uuid.New(), "app://done")
	assert.ErrorIs(t, err, tokens.ErrInvalid)
}

func TestAccessValidityWindow(t *testing.T) {
	assert := assert.New(t)
	f := newFixture(t)
	ctx := context.Background()
	pair := f.signIn(t, testUserID)

	principal, err := f.service.Validate(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(testUserID, principal.UserID)

	f.clock.Advance(time.Hour - time.Millisecond)
	_, err = f.service.Validate(ctx, pair.AccessToken)
	assert.NoError(err)

	f.clock.Advance(time.Millisecond)
	_, err = f.service.Validate(ctx, pair.AccessToken)
	assert.ErrorIs(err, tokens.ErrInvalid)

	_, err = f.service.Validate(ctx, pair.RefreshToken)
	assert.ErrorIs(err, tokens.ErrInvalid)
}

func TestValidateRecordsLastUsed(t *testing.T) {
	assert := assert.New(t)
	f := newFixture(t)
	ctx := context.Background()
	pair := f.signIn(t, testUserID)

	f.clock.Advance(time.Minute)
	_, err := f.service.Validate(ctx, pair.AccessToken)
	require.NoError(t, err)

	sessions, err := f.service.Sessions(ctx, testUserID)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	if assert.NotNil(sessions[0].LastUsedAt) {
		assert.Equal(f.clock.Now(), *sessions[0].LastUsedAt)
	}
}

func TestRefreshRotatesAccessAndPreservesRefresh(t *testing.T) {
	assert := assert.New(t)
	f := newFixture(t)
	ctx := context.Background()
	pair := f.signIn(t, testUserID)

	f.clock.Advance(10 * time.Minute)
	refreshed, err := f.service.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(pair.AccessToken, refreshed.AccessToken)
	assert.Equal(f.clock.Now().Add(time.Hour), refreshed.AccessTokenExpiresAt)

	_, err = f.service.Validate(ctx, pair.AccessToken)
	assert.ErrorIs(err, tokens.ErrInvalid)
	principal, err := f.service.Validate(ctx, refreshed.AccessToken)
	require.NoError(t, err)
	assert.Equal(testUserID, principal.UserID)

	// the refresh token survives past the expiry of any access token
	f.clock.Advance(2 * time.Hour)
	again, err := f.service.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(refreshed.AccessToken, again.AccessToken)
}

func TestRefreshCapsAccessExpiryAtRefreshExpiry(t *testing.T) {
	assert := assert.New(t)
	f := newFixture(t)
	ctx := context.Background()
	pair := f.signIn(t, testUserID)

	f.clock.Advance(30*24*time.Hour - 10*time.Minute)
	refreshed, err := f.service.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(pair.RefreshTokenExpiresAt, refreshed.AccessTokenExpiresAt)

	f.clock.Advance(10 * time.Minute)
	_, err = f.service.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(err, tokens.ErrInvalid)
	_, err = f.service.Validate(ctx, refreshed.AccessToken)
	assert.ErrorIs(err, tokens.ErrInvalid)
}

func TestRevocationIsTerminal(t *testing.T) {
	assert := assert.New(t)
	f := newFixture(t)
	ctx := context.Background()
	pair := f.signIn(t, testUserID)
	refreshed, err := f.service.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)

	require.NoError(t, f.service.RevokeOne(ctx, pair.RefreshToken))

	for _, step := range []time.Duration{0, time.Minute, 48 * time.Hour} {
		f.clock.Advance(step)
		_, err = f.service.Validate(ctx, refreshed.AccessToken)
		assert.ErrorIs(err, tokens.ErrInvalid)
		_, err = f.service.Refresh(ctx, pair.RefreshToken)
		assert.ErrorIs(err, tokens.ErrInvalid)
	}

	// revoking twice is fine, unknown tokens are not
	assert.NoError(f.service.RevokeOne(ctx, pair.RefreshToken))
	assert.ErrorIs(f.service.RevokeOne(ctx, "unknown"), tokens.ErrInvalid)
}

func TestRevokeOneLeavesOtherSessionsAlone(t *testing.T) {
	assert := assert.New(t)
	f := newFixture(t)
	ctx := context.Background()
	laptop := f.signIn(t, testUserID)
	phone := f.signIn(t, testUserID)

	require.NoError(t, f.service.RevokeOne(ctx, laptop.RefreshToken))

	_, err := f.service.Validate(ctx, laptop.AccessToken)
	assert.ErrorIs(err, tokens.ErrInvalid)
	_, err = f.service.Validate(ctx, phone.AccessToken)
	assert.NoError(err)
}

func TestRevokeAllIsolatesByUser(t *testing.T) {
	assert := assert.New(t)
	f := newFixture(t)
	ctx := context.Background()
	a1 := f.signIn(t, testUserID)
	a2 := f.signIn(t, testUserID)
	b := f.signIn(t, otherUserID)

	n, err := f.service.RevokeAll(ctx, testUserID)
	require.NoError(t, err)
	assert.Equal(2, n)

	for _, p := range []*tokens.TokenPair{a1, a2} {
		_, err = f.service.Validate(ctx, p.AccessToken)
		assert.ErrorIs(err, tokens.ErrInvalid)
		_, err = f.service.Refresh(ctx, p.RefreshToken)
		assert.ErrorIs(err, tokens.ErrInvalid)
	}
	principal, err := f.service.Validate(ctx, b.AccessToken)
	require.NoError(t, err)
	assert.Equal(otherUserID, principal.UserID)
	_, err = f.service.Refresh(ctx, b.RefreshToken)
	assert.NoError(err)

	n, err = f.service.RevokeAll(ctx, testUserID)
	require.NoError(t, err)
	assert.Equal(0, n)
}

func TestSessionsHideTokenValues(t *testing.T) {
	assert := assert.New(t)
	f := newFixture(t)
	ctx := context.Background()
	f.signIn(t, testUserID)
	f.clock.Advance(time.Minute)
	newest := f.signIn(t, testUserID)
	require.NoError(t, f.service.RevokeOne(ctx, newest.RefreshToken))

	sessions, err := f.service.Sessions(ctx, testUserID)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.NotNil(sessions[0].RevokedAt)
	assert.Nil(sessions[1].RevokedAt)
	assert.True(sessions[0].CreatedAt.After(sessions[1].CreatedAt))
}

func TestSweepPurgesOnlyLongDeadEntries(t *testing.T) {
	assert := assert.New(t)
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.service.IssueCode(ctx, testUserID, "app://done")
	require.NoError(t, err)
	revoked := f.signIn(t, testUserID)
	alive := f.signIn(t, otherUserID)
	require.NoError(t, f.service.RevokeOne(ctx, revoked.RefreshToken))

	codes, records, err := f.service.Sweep(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(0, codes)
	assert.Equal(0, records)

	f.clock.Advance(25 * time.Hour)
	codes, records, err = f.service.Sweep(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(3, codes)
	assert.Equal(1, records)

	_, err = f.service.Refresh(ctx, alive.RefreshToken)
	assert.NoError(err)

	_, _, err = f.service.Sweep(ctx, -time.Hour)
	assert.Error(err)
}
