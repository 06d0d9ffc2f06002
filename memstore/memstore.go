// Package memstore is a process local record store and user directory.
// It is used by tests and by `serve` with database type memory.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/eisenwinter/extrxx/tokens"
	"github.com/google/uuid"
)

var (
	_ tokens.RecordStore  = (*Store)(nil)
	_ tokens.UserRegistry = (*Store)(nil)
)

// Store keeps everything in maps guarded by one lock, every conditional
// update is decided under the write lock
type Store struct {
	lock      sync.RWMutex
	codes     map[string]*tokens.AuthorizationCode
	records   map[uuid.UUID]*tokens.TokenRecord
	byAccess  map[string]uuid.UUID
	byRefresh map[string]uuid.UUID
	users     map[uuid.UUID]*tokens.Profile
}

func New() *Store {
	return &Store{
		codes:     make(map[string]*tokens.AuthorizationCode),
		records:   make(map[uuid.UUID]*tokens.TokenRecord),
		byAccess:  make(map[string]uuid.UUID),
		byRefresh: make(map[string]uuid.UUID),
		users:     make(map[uuid.UUID]*tokens.Profile),
	}
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func copyCode(c *tokens.AuthorizationCode) *tokens.AuthorizationCode {
	cc := *c
	cc.UsedAt = copyTime(c.UsedAt)
	return &cc
}

func copyRecord(r *tokens.TokenRecord) *tokens.TokenRecord {
	rc := *r
	rc.RevokedAt = copyTime(r.RevokedAt)
	rc.LastUsedAt = copyTime(r.LastUsedAt)
	rc.UpdatedAt = copyTime(r.UpdatedAt)
	return &rc
}

func (s *Store) InsertAuthorizationCode(_ context.Context, code *tokens.AuthorizationCode) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if _, ok := s.codes[code.Code]; ok {
		return tokens.ErrAlreadyExists
	}
	s.codes[code.Code] = copyCode(code)
	return nil
}

func (s *Store) RedeemableAuthorizationCode(
	_ context.Context,
	code string,
	now time.Time,
) (*tokens.AuthorizationCode, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	c, ok := s.codes[code]
	if !ok || !c.Redeemable(now) {
		return nil, tokens.ErrNotFound
	}
	return copyCode(c), nil
}

func (s *Store) MarkAuthorizationCodeUsed(_ context.Context, code string, now time.Time) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	c, ok := s.codes[code]
	if !ok {
		return tokens.ErrNotFound
	}
	if !c.Redeemable(now) {
		return tokens.ErrNotUpdated
	}
	used := now
	c.UsedAt = &used
	return nil
}

func (s *Store) InsertTokenRecord(_ context.Context, record *tokens.TokenRecord) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if _, ok := s.records[record.ID]; ok {
		return tokens.ErrAlreadyExists
	}
	if _, ok := s.byAccess[record.AccessToken]; ok {
		return tokens.ErrAlreadyExists
	}
	if _, ok := s.byRefresh[record.RefreshToken]; ok {
		return tokens.ErrAlreadyExists
	}
	s.records[record.ID] = copyRecord(record)
	s.byAccess[record.AccessToken] = record.ID
	s.byRefresh[record.RefreshToken] = record.ID
	return nil
}

func (s *Store) TokenRecordByAccessToken(
	_ context.Context,
	accessToken string,
	now time.Time,
) (*tokens.TokenRecord, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	id, ok := s.byAccess[accessToken]
	if !ok {
		return nil, tokens.ErrNotFound
	}
	r := s.records[id]
	if !r.AccessValid(now) {
		return nil, tokens.ErrNotFound
	}
	return copyRecord(r), nil
}

func (s *Store) TouchTokenRecord(_ context.Context, id uuid.UUID, now time.Time) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	r, ok := s.records[id]
	if !ok {
		return tokens.ErrNotFound
	}
	used := now
	r.LastUsedAt = &used
	return nil
}

func (s *Store) TokenRecordByRefreshToken(
	_ context.Context,
	refreshToken string,
	now time.Time,
) (*tokens.TokenRecord, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	id, ok := s.byRefresh[refreshToken]
	if !ok {
		return nil, tokens.ErrNotFound
	}
	r := s.records[id]
	if !r.RefreshValid(now) {
		return nil, tokens.ErrNotFound
	}
	return copyRecord(r), nil
}

func (s *Store) RotateAccessToken(
	_ context.Context,
	id uuid.UUID,
	accessToken string,
	accessTokenExpiresAt time.Time,
	now time.Time,
) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	r, ok := s.records[id]
	if !ok {
		return tokens.ErrNotFound
	}
	if !r.RefreshValid(now) {
		return tokens.ErrNotUpdated
	}
	if _, taken := s.byAccess[accessToken]; taken {
		return tokens.ErrAlreadyExists
	}
	delete(s.byAccess, r.AccessToken)
	s.byAccess[accessToken] = id
	r.AccessToken = accessToken
	r.AccessTokenExpiresAt = accessTokenExpiresAt
	used, updated := now, now
	r.LastUsedAt = &used
	r.UpdatedAt = &updated
	return nil
}

func (s *Store) RevokeTokenRecord(_ context.Context, refreshToken string, now time.Time) (uuid.UUID, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	id, ok := s.byRefresh[refreshToken]
	if !ok {
		return uuid.Nil, tokens.ErrNotFound
	}
	r := s.records[id]
	if r.RevokedAt == nil {
		revoked := now
		r.RevokedAt = &revoked
		r.UpdatedAt = &revoked
	}
	return id, nil
}

func (s *Store) RevokeTokenRecordsForUser(_ context.Context, userID uuid.UUID, now time.Time) (int, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	n := 0
	for _, r := range s.records {
		if r.UserID != userID || r.RevokedAt != nil {
			continue
		}
		revoked := now
		r.RevokedAt = &revoked
		r.UpdatedAt = &revoked
		n++
	}
	return n, nil
}

func (s *Store) TokenRecordsForUser(_ context.Context, userID uuid.UUID) ([]*tokens.TokenRecord, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	res := make([]*tokens.TokenRecord, 0)
	for _, r := range s.records {
		if r.UserID == userID {
			res = append(res, copyRecord(r))
		}
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].CreatedAt.After(res[j].CreatedAt)
	})
	return res, nil
}

func (s *Store) PurgeAuthorizationCodes(_ context.Context, before time.Time) (int, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	n := 0
	for k, c := range s.codes {
		if c.ExpiresAt.Before(before) {
			delete(s.codes, k)
			n++
		}
	}
	return n, nil
}

func (s *Store) PurgeTokenRecords(_ context.Context, before time.Time) (int, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	n := 0
	for id, r := range s.records {
		dead := r.RefreshTokenExpiresAt.Before(before) || (r.RevokedAt != nil && r.RevokedAt.Before(before))
		if !dead {
			continue
		}
		delete(s.byAccess, r.AccessToken)
		delete(s.byRefresh, r.RefreshToken)
		delete(s.records, id)
		n++
	}
	return n, nil
}

func (s *Store) UserProfile(_ context.Context, id uuid.UUID) (*tokens.Profile, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	p, ok := s.users[id]
	if !ok {
		return nil, tokens.ErrNotFound
	}
	pc := *p
	return &pc, nil
}

func (s *Store) CreateUser(_ context.Context, profile *tokens.Profile) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if _, ok := s.users[profile.ID]; ok {
		return tokens.ErrAlreadyExists
	}
	for _, u := range s.users {
		if strings.EqualFold(u.Email, profile.Email) || strings.EqualFold(u.Username, profile.Username) {
			return tokens.ErrAlreadyExists
		}
	}
	pc := *profile
	s.users[profile.ID] = &pc
	return nil
}

// DeleteUser removes a user, its records stay until swept
func (s *Store) DeleteUser(_ context.Context, id uuid.UUID) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if _, ok := s.users[id]; !ok {
		return tokens.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *Store) Users(_ context.Context) ([]*tokens.Profile, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	res := make([]*tokens.Profile, 0, len(s.users))
	for _, u := range s.users {
		uc := *u
		res = append(res, &uc)
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].Username < res[j].Username
	})
	return res, nil
}

// Ping always succeeds, used by the health endpoint
func (*Store) Ping(context.Context) error {
	return nil
}
