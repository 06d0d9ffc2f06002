package redisstore

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/eisenwinter/extrxx/tokens"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func recordFromHash(m map[string]string) (*tokens.TokenRecord, error) {
	id, err := uuid.Parse(m["id"])
	if err != nil {
		return nil, err
	}
	userID, err := uuid.Parse(m["user_id"])
	if err != nil {
		return nil, err
	}
	r := &tokens.TokenRecord{
		ID:           id,
		UserID:       userID,
		AccessToken:  m["access_token"],
		RefreshToken: m["refresh_token"],
	}
	if r.AccessTokenExpiresAt, err = fromMillis(m["access_token_expires_at"]); err != nil {
		return nil, err
	}
	if r.RefreshTokenExpiresAt, err = fromMillis(m["refresh_token_expires_at"]); err != nil {
		return nil, err
	}
	if r.CreatedAt, err = fromMillis(m["created_at"]); err != nil {
		return nil, err
	}
	if r.RevokedAt, err = optionalMillis(m, "revoked_at"); err != nil {
		return nil, err
	}
	if r.LastUsedAt, err = optionalMillis(m, "last_used_at"); err != nil {
		return nil, err
	}
	if r.UpdatedAt, err = optionalMillis(m, "updated_at"); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Store) InsertTokenRecord(ctx context.Context, record *tokens.TokenRecord) error {
	id := record.ID.String()
	key := s.recordKey(id)
	expires := s.expireAt(record.RefreshTokenExpiresAt)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, map[string]interface{}{
			"id":                       id,
			"user_id":                  record.UserID.String(),
			"access_token":             record.AccessToken,
			"refresh_token":            record.RefreshToken,
			"access_token_expires_at":  millis(record.AccessTokenExpiresAt),
			"refresh_token_expires_at": millis(record.RefreshTokenExpiresAt),
			"created_at":               millis(record.CreatedAt),
		})
		pipe.PExpireAt(ctx, key, expires)
		pipe.Set(ctx, s.accessKey(record.AccessToken), id, 0)
		pipe.PExpireAt(ctx, s.accessKey(record.AccessToken), s.expireAt(record.AccessTokenExpiresAt))
		pipe.Set(ctx, s.refreshKey(record.RefreshToken), id, 0)
		pipe.PExpireAt(ctx, s.refreshKey(record.RefreshToken), expires)
		pipe.SAdd(ctx, s.userRecordsKey(record.UserID.String()), id)
		return nil
	})
	if err != nil {
		s.log.Error("could not insert token record", zap.Error(err))
	}
	return err
}

// recordByIndex follows an index key to its record and checks the record
// still carries the presented token, the index may be stale after a rotate
func (s *Store) recordByIndex(
	ctx context.Context,
	indexKey string,
	matches func(*tokens.TokenRecord) bool,
) (*tokens.TokenRecord, error) {
	id, err := s.client.Get(ctx, indexKey).Result()
	if err != nil {
		return nil, translate(err)
	}
	m, err := s.client.HGetAll(ctx, s.recordKey(id)).Result()
	if err != nil {
		return nil, err
	}
	if len(m) == 0 {
		return nil, tokens.ErrNotFound
	}
	r, err := recordFromHash(m)
	if err != nil {
		s.log.Error("corrupt token record entry", zap.String("token_record_id", id), zap.Error(err))
		return nil, err
	}
	if !matches(r) {
		return nil, tokens.ErrNotFound
	}
	return r, nil
}

func (s *Store) TokenRecordByAccessToken(
	ctx context.Context,
	accessToken string,
	now time.Time,
) (*tokens.TokenRecord, error) {
	return s.recordByIndex(ctx, s.accessKey(accessToken), func(r *tokens.TokenRecord) bool {
		return r.AccessToken == accessToken && r.AccessValid(now)
	})
}

func (s *Store) TokenRecordByRefreshToken(
	ctx context.Context,
	refreshToken string,
	now time.Time,
) (*tokens.TokenRecord, error) {
	return s.recordByIndex(ctx, s.refreshKey(refreshToken), func(r *tokens.TokenRecord) bool {
		return r.RefreshToken == refreshToken && r.RefreshValid(now)
	})
}

func (s *Store) TouchTokenRecord(ctx context.Context, id uuid.UUID, now time.Time) error {
	res, err := touchRecordLua.Run(ctx, s.client, []string{s.recordKey(id.String())}, millis(now)).Int64()
	if err != nil {
		return err
	}
	if res == resultNotFound {
		return tokens.ErrNotFound
	}
	return nil
}

func (s *Store) RotateAccessToken(
	ctx context.Context,
	id uuid.UUID,
	accessToken string,
	accessTokenExpiresAt time.Time,
	now time.Time,
) error {
	res, err := rotateAccessLua.Run(ctx, s.client,
		[]string{s.recordKey(id.String()), s.accessKey(accessToken)},
		millis(now),
		accessToken,
		millis(accessTokenExpiresAt),
		s.accessKeyPrefix(),
		id.String(),
		millis(s.expireAt(accessTokenExpiresAt)),
	).Int64()
	if err != nil {
		return err
	}
	switch res {
	case resultNotFound:
		return tokens.ErrNotFound
	case resultNotUpdated:
		return tokens.ErrNotUpdated
	default:
		return nil
	}
}

func (s *Store) RevokeTokenRecord(ctx context.Context, refreshToken string, now time.Time) (uuid.UUID, error) {
	res, err := revokeRecordLua.Run(ctx, s.client,
		[]string{s.refreshKey(refreshToken)},
		millis(now),
		s.recordKeyPrefix(),
	).Text()
	if err != nil {
		return uuid.Nil, translate(err)
	}
	return uuid.Parse(res)
}

func (s *Store) RevokeTokenRecordsForUser(ctx context.Context, userID uuid.UUID, now time.Time) (int, error) {
	n, err := revokeUserRecordsLua.Run(ctx, s.client,
		[]string{s.userRecordsKey(userID.String())},
		millis(now),
		s.recordKeyPrefix(),
	).Int64()
	return int(n), err
}

func (s *Store) TokenRecordsForUser(ctx context.Context, userID uuid.UUID) ([]*tokens.TokenRecord, error) {
	setKey := s.userRecordsKey(userID.String())
	ids, err := s.client.SMembers(ctx, setKey).Result()
	if err != nil {
		return nil, err
	}
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, s.recordKey(id))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	res := make([]*tokens.TokenRecord, 0, len(ids))
	for i, cmd := range cmds {
		m := cmd.Val()
		if len(m) == 0 {
			// expired on the server, drop the dangling member
			s.client.SRem(ctx, setKey, ids[i])
			continue
		}
		r, err := recordFromHash(m)
		if err != nil {
			s.log.Warn("skipping corrupt token record", zap.String("token_record_id", ids[i]), zap.Error(err))
			continue
		}
		res = append(res, r)
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].CreatedAt.After(res[j].CreatedAt)
	})
	return res, nil
}

func (s *Store) PurgeTokenRecords(ctx context.Context, before time.Time) (int, error) {
	deleted := 0
	var cursor uint64
	pattern := s.recordKey("*")
	for {
		keys, next, err := s.client.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			return deleted, err
		}
		for _, key := range keys {
			m, err := s.client.HGetAll(ctx, key).Result()
			if err != nil {
				return deleted, err
			}
			if len(m) == 0 {
				continue
			}
			r, err := recordFromHash(m)
			if err != nil {
				s.log.Warn("skipping corrupt token record", zap.String("key", key), zap.Error(err))
				continue
			}
			dead := r.RefreshTokenExpiresAt.Before(before) || (r.RevokedAt != nil && r.RevokedAt.Before(before))
			if !dead {
				continue
			}
			if err := s.deleteRecord(ctx, key, r); err != nil {
				return deleted, err
			}
			deleted++
		}
		cursor = next
		if cursor == 0 {
			return deleted, nil
		}
	}
}

func (s *Store) deleteRecord(ctx context.Context, key string, r *tokens.TokenRecord) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key, s.accessKey(r.AccessToken), s.refreshKey(r.RefreshToken))
		pipe.SRem(ctx, s.userRecordsKey(r.UserID.String()), r.ID.String())
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}
