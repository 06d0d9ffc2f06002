// Package redisstore keeps codes, token records and users in redis. Every
// conditional update runs as a lua script so it is atomic on the server.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/eisenwinter/extrxx/tokens"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	_ tokens.RecordStore  = (*Store)(nil)
	_ tokens.UserRegistry = (*Store)(nil)
)

const scanBatch = 100

// Store implements the record store and user directory on top of redis
type Store struct {
	log       *zap.Logger
	client    redis.UniversalClient
	prefix    string
	retention time.Duration
}

// NewStore wraps an existing client. Keys expire on the server retention
// after the entity they hold died.
func NewStore(log *zap.Logger, client redis.UniversalClient, prefix string, retention time.Duration) *Store {
	if prefix == "" {
		prefix = "extrxx"
	}
	return &Store{
		log:       log,
		client:    client,
		prefix:    prefix,
		retention: retention,
	}
}

// Connect opens a client for a redis:// url and verifies it is reachable
func Connect(ctx context.Context, dsn string) (*redis.Client, error) {
	opts, err := redis.ParseURL(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid redis dsn: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis not reachable: %w", err)
	}
	return client, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// Ping checks the connection, used by the health endpoint
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) codeKey(code string) string {
	return fmt.Sprintf("%s:code:%s", s.prefix, code)
}

func (s *Store) recordKeyPrefix() string {
	return s.prefix + ":record:"
}

func (s *Store) recordKey(id string) string {
	return s.recordKeyPrefix() + id
}

func (s *Store) accessKeyPrefix() string {
	return s.prefix + ":access:"
}

func (s *Store) accessKey(token string) string {
	return s.accessKeyPrefix() + token
}

func (s *Store) refreshKey(token string) string {
	return fmt.Sprintf("%s:refresh:%s", s.prefix, token)
}

func (s *Store) userRecordsKey(userID string) string {
	return fmt.Sprintf("%s:user:%s:records", s.prefix, userID)
}

func (s *Store) profileKey(id string) string {
	return fmt.Sprintf("%s:profile:%s", s.prefix, id)
}

func (s *Store) emailKey(email string) string {
	return fmt.Sprintf("%s:email:%s", s.prefix, email)
}

func (s *Store) usernameKey(username string) string {
	return fmt.Sprintf("%s:username:%s", s.prefix, username)
}

func (s *Store) usersKey() string {
	return s.prefix + ":users"
}

// expireAt is the wall time a key may be dropped by the server
func (s *Store) expireAt(dead time.Time) time.Time {
	return dead.Add(s.retention)
}

func millis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(v string) (time.Time, error) {
	ms, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms).UTC(), nil
}

func optionalMillis(m map[string]string, field string) (*time.Time, error) {
	v, ok := m[field]
	if !ok || v == "" {
		return nil, nil
	}
	t, err := fromMillis(v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// translate maps redis.Nil to the store not found error
func translate(err error) error {
	if errors.Is(err, redis.Nil) {
		return tokens.ErrNotFound
	}
	return err
}
