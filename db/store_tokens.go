package db

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/eisenwinter/extrxx/db/tables"
	"github.com/eisenwinter/extrxx/tokens"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// all token record related things in store

var tokenRecordColumns = []string{
	"id",
	"user_id",
	"access_token",
	"refresh_token",
	"access_token_expires_at",
	"refresh_token_expires_at",
	"revoked_at",
	"last_used_at",
	"created_at",
	"updated_at",
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func recordFromTable(e *tables.TokenRecordTable) *tokens.TokenRecord {
	return &tokens.TokenRecord{
		ID:                    e.ID,
		UserID:                e.UserID,
		AccessToken:           e.AccessToken,
		RefreshToken:          e.RefreshToken,
		AccessTokenExpiresAt:  e.AccessTokenExpiresAt.UTC(),
		RefreshTokenExpiresAt: e.RefreshTokenExpiresAt.UTC(),
		RevokedAt:             utcPtr(e.RevokedAt),
		LastUsedAt:            utcPtr(e.LastUsedAt),
		CreatedAt:             e.CreatedAt.UTC(),
		UpdatedAt:             utcPtr(e.UpdatedAt),
	}
}

func (d *DataStore) InsertTokenRecord(ctx context.Context, record *tokens.TokenRecord) error {
	insert := d.sb.Insert("token_records").SetMap(map[string]interface{}{
		"id":                       record.ID,
		"user_id":                  record.UserID,
		"access_token":             record.AccessToken,
		"refresh_token":            record.RefreshToken,
		"access_token_expires_at":  record.AccessTokenExpiresAt,
		"refresh_token_expires_at": record.RefreshTokenExpiresAt,
		"created_at":               record.CreatedAt,
	})
	_, err := d.insertStatement(ctx, insert, nil)
	if err != nil {
		d.log.Error("could not insert token record", zap.Error(err))
	}
	return err
}

func (d *DataStore) tokenRecord(ctx context.Context, pred sq.Sqlizer) (*tokens.TokenRecord, error) {
	var entity tables.TokenRecordTable
	q := d.sb.Select(tokenRecordColumns...).From("token_records").Where(pred)
	if err := d.getStatement(ctx, &entity, q, nil); err != nil {
		return nil, err
	}
	return recordFromTable(&entity), nil
}

func (d *DataStore) TokenRecordByAccessToken(
	ctx context.Context,
	accessToken string,
	now time.Time,
) (*tokens.TokenRecord, error) {
	return d.tokenRecord(ctx, sq.And{
		sq.Eq{"access_token": accessToken},
		sq.Eq{"revoked_at": nil},
		sq.Gt{"access_token_expires_at": now},
	})
}

func (d *DataStore) TokenRecordByRefreshToken(
	ctx context.Context,
	refreshToken string,
	now time.Time,
) (*tokens.TokenRecord, error) {
	return d.tokenRecord(ctx, sq.And{
		sq.Eq{"refresh_token": refreshToken},
		sq.Eq{"revoked_at": nil},
		sq.Gt{"refresh_token_expires_at": now},
	})
}

// TouchTokenRecord ignores the affected row count, mysql reports zero rows
// when the value did not change
func (d *DataStore) TouchTokenRecord(ctx context.Context, id uuid.UUID, now time.Time) error {
	u := d.sb.Update("token_records").
		Set("last_used_at", now).
		Where(sq.Eq{"id": id})
	_, err := d.updateStatement(ctx, u, nil)
	return err
}

func (d *DataStore) RotateAccessToken(
	ctx context.Context,
	id uuid.UUID,
	accessToken string,
	accessTokenExpiresAt time.Time,
	now time.Time,
) error {
	u := d.sb.Update("token_records").
		Set("access_token", accessToken).
		Set("access_token_expires_at", accessTokenExpiresAt).
		Set("last_used_at", now).
		Set("updated_at", now).
		Where(sq.And{
			sq.Eq{"id": id},
			sq.Eq{"revoked_at": nil},
			sq.Gt{"refresh_token_expires_at": now},
		})
	n, err := affected(d.updateStatement(ctx, u, nil))
	if err != nil {
		return err
	}
	if n == 0 {
		return d.conditionalResult(ctx, "token_records", sq.Eq{"id": id})
	}
	return nil
}

func (d *DataStore) RevokeTokenRecord(ctx context.Context, refreshToken string, now time.Time) (uuid.UUID, error) {
	var id uuid.UUID
	q := d.sb.Select("id").From("token_records").Where(sq.Eq{"refresh_token": refreshToken})
	if err := d.getStatement(ctx, &id, q, nil); err != nil {
		return uuid.Nil, err
	}
	u := d.sb.Update("token_records").
		Set("revoked_at", now).
		Set("updated_at", now).
		Where(sq.And{
			sq.Eq{"id": id},
			sq.Eq{"revoked_at": nil},
		})
	if _, err := d.updateStatement(ctx, u, nil); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (d *DataStore) RevokeTokenRecordsForUser(ctx context.Context, userID uuid.UUID, now time.Time) (int, error) {
	u := d.sb.Update("token_records").
		Set("revoked_at", now).
		Set("updated_at", now).
		Where(sq.And{
			sq.Eq{"user_id": userID},
			sq.Eq{"revoked_at": nil},
		})
	return affected(d.updateStatement(ctx, u, nil))
}

func (d *DataStore) TokenRecordsForUser(ctx context.Context, userID uuid.UUID) ([]*tokens.TokenRecord, error) {
	entities := make([]*tables.TokenRecordTable, 0)
	q := d.sb.Select(tokenRecordColumns...).
		From("token_records").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC")
	if err := d.selectStatement(ctx, &entities, q, nil); err != nil {
		return nil, err
	}
	res := make([]*tokens.TokenRecord, 0, len(entities))
	for _, e := range entities {
		res = append(res, recordFromTable(e))
	}
	return res, nil
}

// TokenRecords is the paged administrative listing with fiql filters
func (d *DataStore) TokenRecords(ctx context.Context, opts ListOptions) ([]*tables.TokenRecordTable, int, error) {
	opts.normalize()
	applyWhere, err := d.whereFromAdapater("token_records", opts.Query)
	if err != nil {
		return nil, 0, err
	}
	var c int
	count := applyWhere(d.sb.Select("COUNT(*)").From("token_records"))
	if err := d.getStatement(ctx, &c, count, nil); err != nil {
		return nil, 0, err
	}
	if c < int(opts.offset()) {
		return []*tables.TokenRecordTable{}, c, nil
	}
	entities := make([]*tables.TokenRecordTable, 0)
	q := applyWhere(d.sb.Select(tokenRecordColumns...).From("token_records"))
	q = d.orderByFromAdapater(q, "token_records", "created_at DESC", opts)
	q = q.Offset(opts.offset()).Limit(uint64(opts.PageSize))
	if err := d.selectStatement(ctx, &entities, q, nil); err != nil {
		return nil, 0, err
	}
	return entities, c, nil
}

func (d *DataStore) PurgeTokenRecords(ctx context.Context, before time.Time) (int, error) {
	del := d.sb.Delete("token_records").Where(sq.Or{
		sq.Lt{"refresh_token_expires_at": before},
		sq.Lt{"revoked_at": before},
	})
	n, err := affected(d.deleteStatement(ctx, del, nil))
	if err != nil {
		d.log.Error("could not purge token records", zap.Error(err))
	}
	return n, err
}
