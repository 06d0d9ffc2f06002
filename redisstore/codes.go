package redisstore

import (
	"context"
	"strings"
	"time"

	"github.com/eisenwinter/extrxx/tokens"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func (s *Store) InsertAuthorizationCode(ctx context.Context, code *tokens.AuthorizationCode) error {
	key := s.codeKey(code.Code)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, map[string]interface{}{
			"user_id":      code.UserID.String(),
			"callback_url": code.CallbackURL,
			"expires_at":   millis(code.ExpiresAt),
			"created_at":   millis(code.CreatedAt),
		})
		pipe.PExpireAt(ctx, key, s.expireAt(code.ExpiresAt))
		return nil
	})
	if err != nil {
		s.log.Error("could not insert authorization code", zap.Error(err))
	}
	return err
}

func codeFromHash(code string, m map[string]string) (*tokens.AuthorizationCode, error) {
	userID, err := uuid.Parse(m["user_id"])
	if err != nil {
		return nil, err
	}
	expires, err := fromMillis(m["expires_at"])
	if err != nil {
		return nil, err
	}
	created, err := fromMillis(m["created_at"])
	if err != nil {
		return nil, err
	}
	used, err := optionalMillis(m, "used_at")
	if err != nil {
		return nil, err
	}
	return &tokens.AuthorizationCode{
		Code:        code,
		UserID:      userID,
		CallbackURL: m["callback_url"],
		ExpiresAt:   expires,
		UsedAt:      used,
		CreatedAt:   created,
	}, nil
}

func (s *Store) RedeemableAuthorizationCode(
	ctx context.Context,
	code string,
	now time.Time,
) (*tokens.AuthorizationCode, error) {
	m, err := s.client.HGetAll(ctx, s.codeKey(code)).Result()
	if err != nil {
		return nil, translate(err)
	}
	if len(m) == 0 {
		return nil, tokens.ErrNotFound
	}
	c, err := codeFromHash(code, m)
	if err != nil {
		s.log.Error("corrupt authorization code entry", zap.Error(err))
		return nil, err
	}
	if !c.Redeemable(now) {
		return nil, tokens.ErrNotFound
	}
	return c, nil
}

func (s *Store) MarkAuthorizationCodeUsed(ctx context.Context, code string, now time.Time) error {
	res, err := markCodeUsedLua.Run(ctx, s.client, []string{s.codeKey(code)}, millis(now)).Int64()
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

// PurgeAuthorizationCodes scans all code keys, most are already gone
// through their server side expiry
func (s *Store) PurgeAuthorizationCodes(ctx context.Context, before time.Time) (int, error) {
	deleted := 0
	var cursor uint64
	pattern := s.codeKey("*")
	for {
		keys, next, err := s.client.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			return deleted, err
		}
		for _, key := range keys {
			v, err := s.client.HGet(ctx, key, "expires_at").Result()
			if err == redis.Nil {
				continue
			} else if err != nil {
				return deleted, err
			}
			expires, err := fromMillis(v)
			if err != nil {
				s.log.Warn("unparsable code expiry", zap.String("key", strings.TrimPrefix(key, s.prefix)))
				continue
			}
			if expires.Before(before) {
				n, err := s.client.Del(ctx, key).Result()
				if err != nil {
					return deleted, err
				}
				deleted += int(n)
			}
		}
		cursor = next
		if cursor == 0 {
			return deleted, nil
		}
	}
}
