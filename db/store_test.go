package db

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/eisenwinter/extrxx/config"
	"github.com/eisenwinter/extrxx/events"
	"github.com/eisenwinter/extrxx/events/event"
	"github.com/eisenwinter/extrxx/tokens"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"
)

// RecordStoreTestSuite runs against sqlite in memory by default and against
// mysql or postgres with the integration build tag
type RecordStoreTestSuite struct {
	suite.Suite
	dataStore *DataStore
	open      func(t *testing.T) *DataStore
	now       time.Time
	userID    uuid.UUID
}

func (s *RecordStoreTestSuite) SetupTest() {
	s.dataStore = s.open(s.T())
	require.NoError(s.T(), s.dataStore.EnsureUsable())
	s.now = time.Date(2022, 11, 12, 17, 47, 40, 123000000, time.UTC)
	s.userID = uuid.New()
	require.NoError(s.T(), s.dataStore.CreateUser(context.Background(), &tokens.Profile{
		ID:       s.userID,
		Email:    s.userID.String() + "@example.com",
		Username: "user-" + s.userID.String(),
	}))
}

func (s *RecordStoreTestSuite) TearDownTest() {
	s.dataStore.Close()
}

func (s *RecordStoreTestSuite) insertCode(code string) {
	require.NoError(s.T(), s.dataStore.InsertAuthorizationCode(context.Background(), &tokens.AuthorizationCode{
		Code:        code,
		UserID:      s.userID,
		CallbackURL: "app://done",
		ExpiresAt:   s.now.Add(5 * time.Minute),
		CreatedAt:   s.now,
	}))
}

func (s *RecordStoreTestSuite) insertRecord(userID uuid.UUID) *tokens.TokenRecord {
	return s.insertRecordAt(userID, s.now)
}

func (s *RecordStoreTestSuite) insertRecordAt(userID uuid.UUID, created time.Time) *tokens.TokenRecord {
	r := &tokens.TokenRecord{
		ID:                    uuid.New(),
		UserID:                userID,
		AccessToken:           uuid.NewString(),
		RefreshToken:          uuid.NewString(),
		AccessTokenExpiresAt:  created.Add(time.Hour),
		RefreshTokenExpiresAt: created.Add(720 * time.Hour),
		CreatedAt:             created,
	}
	require.NoError(s.T(), s.dataStore.InsertTokenRecord(context.Background(), r))
	return r
}

func (s *RecordStoreTestSuite) TestUserProfile() {
	ctx := context.Background()
	p, err := s.dataStore.UserProfile(ctx, s.userID)
	s.NoError(err)
	if s.NotNil(p) {
		s.Equal(s.userID, p.ID)
		s.Equal("", p.AvatarURL)
	}
	_, err = s.dataStore.UserProfile(ctx, uuid.New())
	s.ErrorIs(err, ErrNotFound)
}

func (s *RecordStoreTestSuite) TestCreateUserTwice() {
	err := s.dataStore.CreateUser(context.Background(), &tokens.Profile{
		ID:       uuid.New(),
		Email:    s.userID.String() + "@example.com",
		Username: "someone-else",
	})
	s.ErrorIs(err, ErrAlreadyExists)
}

func (s *RecordStoreTestSuite) TestUsersQuery() {
	ctx := context.Background()
	users, total, err := s.dataStore.ListUsers(ctx, ListOptions{Query: "username==user-" + s.userID.String()})
	s.NoError(err)
	s.Equal(1, total)
	s.Len(users, 1)
	all, err := s.dataStore.Users(ctx)
	s.NoError(err)
	s.Len(all, 1)
}

func (s *RecordStoreTestSuite) TestRedeemableAuthorizationCode() {
	ctx := context.Background()
	s.insertCode("abc123")

	c, err := s.dataStore.RedeemableAuthorizationCode(ctx, "abc123", s.now)
	s.NoError(err)
	if s.NotNil(c) {
		s.Equal(s.userID, c.UserID)
		s.Equal("app://done", c.CallbackURL)
		s.True(c.ExpiresAt.Equal(s.now.Add(5 * time.Minute)))
		s.Nil(c.UsedAt)
	}

	_, err = s.dataStore.RedeemableAuthorizationCode(ctx, "abc123", s.now.Add(5*time.Minute))
	s.ErrorIs(err, ErrNotFound)
	_, err = s.dataStore.RedeemableAuthorizationCode(ctx, "nope", s.now)
	s.ErrorIs(err, ErrNotFound)
}

func (s *RecordStoreTestSuite) TestMarkAuthorizationCodeUsedOnce() {
	ctx := context.Background()
	s.insertCode("abc123")

	s.NoError(s.dataStore.MarkAuthorizationCodeUsed(ctx, "abc123", s.now))
	s.ErrorIs(s.dataStore.MarkAuthorizationCodeUsed(ctx, "abc123", s.now), ErrNotUpdated)
	_, err := s.dataStore.RedeemableAuthorizationCode(ctx, "abc123", s.now)
	s.ErrorIs(err, ErrNotFound)
}

func (s *RecordStoreTestSuite) TestMarkAuthorizationCodeUsedConcurrently() {
	ctx := context.Background()
	s.insertCode("abc123")

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.dataStore.MarkAuthorizationCodeUsed(ctx, "abc123", s.now)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				wins++
			}
		}()
	}
	wg.Wait()
	s.Equal(1, wins)
}

func (s *RecordStoreTestSuite) TestMarkExpiredAuthorizationCode() {
	s.insertCode("abc123")
	err := s.dataStore.MarkAuthorizationCodeUsed(context.Background(), "abc123", s.now.Add(time.Hour))
	s.ErrorIs(err, ErrNotUpdated)
}

func (s *RecordStoreTestSuite) TestMarkUnknownAuthorizationCode() {
	err := s.dataStore.MarkAuthorizationCodeUsed(context.Background(), "nope", s.now)
	s.ErrorIs(err, ErrNotFound)
}

func (s *RecordStoreTestSuite) TestRotateUnknownTokenRecord() {
	err := s.dataStore.RotateAccessToken(context.Background(), uuid.New(), "rotated", s.now.Add(time.Hour), s.now)
	s.ErrorIs(err, ErrNotFound)
}

func (s *RecordStoreTestSuite) TestTokenRecordLookups() {
	ctx := context.Background()
	r := s.insertRecord(s.userID)

	byAccess, err := s.dataStore.TokenRecordByAccessToken(ctx, r.AccessToken, s.now)
	s.NoError(err)
	if s.NotNil(byAccess) {
		s.Equal(r.ID, byAccess.ID)
		s.Equal(r.RefreshToken, byAccess.RefreshToken)
		s.True(byAccess.AccessTokenExpiresAt.Equal(r.AccessTokenExpiresAt))
	}
	_, err = s.dataStore.TokenRecordByAccessToken(ctx, r.AccessToken, s.now.Add(time.Hour))
	s.ErrorIs(err, ErrNotFound)

	byRefresh, err := s.dataStore.TokenRecordByRefreshToken(ctx, r.RefreshToken, s.now.Add(2*time.Hour))
	s.NoError(err)
	if s.NotNil(byRefresh) {
		s.Equal(r.ID, byRefresh.ID)
	}
	_, err = s.dataStore.TokenRecordByRefreshToken(ctx, r.AccessToken, s.now)
	s.ErrorIs(err, ErrNotFound)
}

func (s *RecordStoreTestSuite) TestTouchTokenRecord() {
	ctx := context.Background()
	r := s.insertRecord(s.userID)
	s.NoError(s.dataStore.TouchTokenRecord(ctx, r.ID, s.now.Add(time.Minute)))

	records, err := s.dataStore.TokenRecordsForUser(ctx, s.userID)
	s.NoError(err)
	if s.Len(records, 1) && s.NotNil(records[0].LastUsedAt) {
		s.True(records[0].LastUsedAt.Equal(s.now.Add(time.Minute)))
	}
}

func (s *RecordStoreTestSuite) TestRotateAccessToken() {
	ctx := context.Background()
	r := s.insertRecord(s.userID)
	later := s.now.Add(2 * time.Hour)

	s.NoError(s.dataStore.RotateAccessToken(ctx, r.ID, "rotated", later.Add(time.Hour), later))

	_, err := s.dataStore.TokenRecordByAccessToken(ctx, r.AccessToken, later)
	s.ErrorIs(err, ErrNotFound)
	rotated, err := s.dataStore.TokenRecordByAccessToken(ctx, "rotated", later)
	s.NoError(err)
	if s.NotNil(rotated) {
		s.Equal(r.RefreshToken, rotated.RefreshToken)
		s.True(rotated.RefreshTokenExpiresAt.Equal(r.RefreshTokenExpiresAt))
	}
}

func (s *RecordStoreTestSuite) TestRotateAccessTokenAfterRevoke() {
	ctx := context.Background()
	r := s.insertRecord(s.userID)
	_, err := s.dataStore.RevokeTokenRecord(ctx, r.RefreshToken, s.now)
	s.NoError(err)

	err = s.dataStore.RotateAccessToken(ctx, r.ID, "rotated", s.now.Add(time.Hour), s.now)
	s.ErrorIs(err, ErrNotUpdated)
}

func (s *RecordStoreTestSuite) TestRevokeTokenRecord() {
	ctx := context.Background()
	r := s.insertRecord(s.userID)

	id, err := s.dataStore.RevokeTokenRecord(ctx, r.RefreshToken, s.now)
	s.NoError(err)
	s.Equal(r.ID, id)
	_, err = s.dataStore.TokenRecordByAccessToken(ctx, r.AccessToken, s.now)
	s.ErrorIs(err, ErrNotFound)

	id, err = s.dataStore.RevokeTokenRecord(ctx, r.RefreshToken, s.now.Add(time.Hour))
	s.NoError(err)
	s.Equal(r.ID, id)
	records, err := s.dataStore.TokenRecordsForUser(ctx, s.userID)
	s.NoError(err)
	if s.Len(records, 1) && s.NotNil(records[0].RevokedAt) {
		s.True(records[0].RevokedAt.Equal(s.now))
	}

	_, err = s.dataStore.RevokeTokenRecord(ctx, "unknown", s.now)
	s.ErrorIs(err, ErrNotFound)
}

func (s *RecordStoreTestSuite) TestRevokeTokenRecordsForUser() {
	ctx := context.Background()
	other := uuid.New()
	s.insertRecord(s.userID)
	s.insertRecord(s.userID)
	kept := s.insertRecord(other)

	n, err := s.dataStore.RevokeTokenRecordsForUser(ctx, s.userID, s.now)
	s.NoError(err)
	s.Equal(2, n)
	n, err = s.dataStore.RevokeTokenRecordsForUser(ctx, s.userID, s.now)
	s.NoError(err)
	s.Equal(0, n)

	_, err = s.dataStore.TokenRecordByAccessToken(ctx, kept.AccessToken, s.now)
	s.NoError(err)
}

func (s *RecordStoreTestSuite) TestTokenRecordsQuery() {
	ctx := context.Background()
	r := s.insertRecord(s.userID)
	s.insertRecord(uuid.New())

	records, total, err := s.dataStore.TokenRecords(ctx, ListOptions{Query: "user_id==" + s.userID.String()})
	s.NoError(err)
	s.Equal(1, total)
	if s.Len(records, 1) {
		s.Equal(r.ID, records[0].ID)
	}

	records, total, err = s.dataStore.TokenRecords(ctx, ListOptions{Query: "id==" + r.ID.String()})
	s.NoError(err)
	s.Equal(1, total)
	if s.Len(records, 1) {
		s.Equal(s.userID, records[0].UserID)
	}
}

func (s *RecordStoreTestSuite) TestTokenRecordsQueryByCreatedAt() {
	ctx := context.Background()
	s.insertRecord(s.userID)
	newer := s.insertRecordAt(s.userID, s.now.Add(48*time.Hour))

	records, total, err := s.dataStore.TokenRecords(ctx, ListOptions{Query: "created_at=gt=2022-11-13T00:00:00Z"})
	s.NoError(err)
	s.Equal(1, total)
	if s.Len(records, 1) {
		s.Equal(newer.ID, records[0].ID)
	}

	records, total, err = s.dataStore.TokenRecords(ctx, ListOptions{
		Query: "user_id==" + s.userID.String(),
		Sort:  "+created_at",
	})
	s.NoError(err)
	s.Equal(2, total)
	if s.Len(records, 2) {
		s.Equal(newer.ID, records[1].ID)
	}
}

func (s *RecordStoreTestSuite) TestTokenRecordsQueryRejectsBrokenQuery() {
	ctx := context.Background()
	s.insertRecord(s.userID)

	_, _, err := s.dataStore.TokenRecords(ctx, ListOptions{Query: "revoked_at=isnull=true"})
	s.Error(err)
	_, _, err = s.dataStore.TokenRecords(ctx, ListOptions{Query: "created_at==yesterday"})
	s.Error(err)
}

func (s *RecordStoreTestSuite) TestUsersQueryByID() {
	users, total, err := s.dataStore.ListUsers(context.Background(), ListOptions{Query: "id==" + s.userID.String()})
	s.NoError(err)
	s.Equal(1, total)
	if s.Len(users, 1) {
		s.Equal(s.userID, users[0].ID)
	}
}

func (s *RecordStoreTestSuite) TestPurge() {
	ctx := context.Background()
	s.insertCode("abc123")
	revoked := s.insertRecord(s.userID)
	alive := s.insertRecord(s.userID)
	_, err := s.dataStore.RevokeTokenRecord(ctx, revoked.RefreshToken, s.now)
	s.NoError(err)

	before := s.now.Add(time.Hour)
	codes, err := s.dataStore.PurgeAuthorizationCodes(ctx, before)
	s.NoError(err)
	s.Equal(1, codes)
	records, err := s.dataStore.PurgeTokenRecords(ctx, before)
	s.NoError(err)
	s.Equal(1, records)

	_, err = s.dataStore.TokenRecordByRefreshToken(ctx, alive.RefreshToken, s.now)
	s.NoError(err)
}

func (s *RecordStoreTestSuite) TestAuditListeners() {
	ctx := context.Background()
	dispatcher := events.NewDispatcher(zaptest.NewLogger(s.T()))
	dispatcher.Register(BootstrapListeners(s.dataStore.Auditor(), zaptest.NewLogger(s.T()))...)
	recordID := uuid.New()

	dispatcher.Dispatch(ctx, &event.TokenRecordRevoked{TokenRecordID: recordID})

	entries, err := s.dataStore.AuditLog(ctx, 10)
	s.NoError(err)
	if s.Len(entries, 1) {
		s.Equal(string(event.TokenRecordRevokedEvent), entries[0].EventType)
		s.Contains(entries[0].Event, recordID.String())
	}
}

func TestSqliteRecordStore(t *testing.T) {
	suite.Run(t, &RecordStoreTestSuite{
		open: func(t *testing.T) *DataStore {
			dataStore, err := NewSqliteStore(zaptest.NewLogger(t), &config.DatabaseConfiguration{
				Type: "sqlite",
				DSN:  fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
			})
			require.NoError(t, err)
			return dataStore
		},
	})
}

func TestNewStoreUnknownType(t *testing.T) {
	_, err := NewStore(zaptest.NewLogger(t), &config.DatabaseConfiguration{Type: "redis"})
	assert.Error(t, err)
}
