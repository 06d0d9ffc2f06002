package db

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/eisenwinter/extrxx/db/tables"
	"github.com/eisenwinter/extrxx/tokens"
	"go.uber.org/zap"
)

// all authorization code related things in store

func (d *DataStore) InsertAuthorizationCode(ctx context.Context, code *tokens.AuthorizationCode) error {
	insert := d.sb.Insert("authorization_codes").SetMap(map[string]interface{}{
		"code":         code.Code,
		"user_id":      code.UserID,
		"callback_url": code.CallbackURL,
		"expires_at":   code.ExpiresAt,
		"created_at":   code.CreatedAt,
	})
	_, err := d.insertStatement(ctx, insert, nil)
	if err != nil {
		d.log.Error("could not insert authorization code", zap.Error(err))
	}
	return err
}

func (d *DataStore) RedeemableAuthorizationCode(
	ctx context.Context,
	code string,
	now time.Time,
) (*tokens.AuthorizationCode, error) {
	var entity tables.AuthorizationCodeTable
	q := d.sb.Select("code", "user_id", "callback_url", "expires_at", "used_at", "created_at").
		From("authorization_codes").
		Where(sq.And{
			sq.Eq{"code": code},
			sq.Eq{"used_at": nil},
			sq.Gt{"expires_at": now},
		})
	if err := d.getStatement(ctx, &entity, q, nil); err != nil {
		return nil, err
	}
	return &tokens.AuthorizationCode{
		Code:        entity.Code,
		UserID:      entity.UserID,
		CallbackURL: entity.CallbackURL,
		ExpiresAt:   entity.ExpiresAt.UTC(),
		UsedAt:      entity.UsedAt,
		CreatedAt:   entity.CreatedAt.UTC(),
	}, nil
}

// MarkAuthorizationCodeUsed is the single conditional update deciding which
// of several concurrent exchanges wins
func (d *DataStore) MarkAuthorizationCodeUsed(ctx context.Context, code string, now time.Time) error {
	u := d.sb.Update("authorization_codes").
		Set("used_at", now).
		Where(sq.And{
			sq.Eq{"code": code},
			sq.Eq{"used_at": nil},
			sq.Gt{"expires_at": now},
		})
	n, err := affected(d.updateStatement(ctx, u, nil))
	if err != nil {
		return err
	}
	if n == 0 {
		return d.conditionalResult(ctx, "authorization_codes", sq.Eq{"code": code})
	}
	return nil
}

func (d *DataStore) PurgeAuthorizationCodes(ctx context.Context, before time.Time) (int, error) {
	del := d.sb.Delete("authorization_codes").Where(sq.Lt{"expires_at": before})
	n, err := affected(d.deleteStatement(ctx, del, nil))
	if err != nil {
		d.log.Error("could not purge authorization codes", zap.Error(err))
	}
	return n, err
}
