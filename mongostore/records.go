package mongostore

import (
	"context"
	"time"

	"github.com/eisenwinter/extrxx/tokens"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func (s *Store) InsertTokenRecord(ctx context.Context, record *tokens.TokenRecord) error {
	_, err := s.records.InsertOne(ctx, recordToDocument(record))
	if err != nil {
		s.log.Error("could not insert token record", zap.Error(err))
	}
	return translate(err)
}

func (s *Store) findRecord(ctx context.Context, filter bson.M) (*tokens.TokenRecord, error) {
	var doc recordDocument
	if err := s.records.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	return doc.model()
}

func (s *Store) TokenRecordByAccessToken(
	ctx context.Context,
	accessToken string,
	now time.Time,
) (*tokens.TokenRecord, error) {
	return s.findRecord(ctx, bson.M{
		"access_token":            accessToken,
		"revoked_at":              nil,
		"access_token_expires_at": bson.M{"$gt": now},
	})
}

func (s *Store) TokenRecordByRefreshToken(
	ctx context.Context,
	refreshToken string,
	now time.Time,
) (*tokens.TokenRecord, error) {
	return s.findRecord(ctx, refreshValidFilter(bson.M{"refresh_token": refreshToken}, now))
}

func refreshValidFilter(filter bson.M, now time.Time) bson.M {
	filter["revoked_at"] = nil
	filter["refresh_token_expires_at"] = bson.M{"$gt": now}
	return filter
}

func (s *Store) TouchTokenRecord(ctx context.Context, id uuid.UUID, now time.Time) error {
	res, err := s.records.UpdateByID(ctx, id.String(), bson.M{"$set": bson.M{"last_used_at": now}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
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
	res, err := s.records.UpdateOne(ctx,
		refreshValidFilter(bson.M{"_id": id.String()}, now),
		bson.M{"$set": bson.M{
			"access_token":            accessToken,
			"access_token_expires_at": accessTokenExpiresAt,
			"last_used_at":            now,
			"updated_at":              now,
		}},
	)
	if err != nil {
		return translate(err)
	}
	return s.conditionalResult(ctx, s.records, id.String(), res)
}

func (s *Store) RevokeTokenRecord(ctx context.Context, refreshToken string, now time.Time) (uuid.UUID, error) {
	var doc recordDocument
	err := s.records.FindOne(ctx,
		bson.M{"refresh_token": refreshToken},
		options.FindOne().SetProjection(bson.M{"_id": 1}),
	).Decode(&doc)
	if err != nil {
		return uuid.Nil, translate(err)
	}
	_, err = s.records.UpdateOne(ctx,
		bson.M{"_id": doc.ID, "revoked_at": nil},
		bson.M{"$set": bson.M{"revoked_at": now, "updated_at": now}},
	)
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(doc.ID)
}

func (s *Store) RevokeTokenRecordsForUser(ctx context.Context, userID uuid.UUID, now time.Time) (int, error) {
	res, err := s.records.UpdateMany(ctx,
		bson.M{"user_id": userID.String(), "revoked_at": nil},
		bson.M{"$set": bson.M{"revoked_at": now, "updated_at": now}},
	)
	if err != nil {
		return 0, err
	}
	return int(res.ModifiedCount), nil
}

func (s *Store) TokenRecordsForUser(ctx context.Context, userID uuid.UUID) ([]*tokens.TokenRecord, error) {
	cur, err := s.records.Find(ctx,
		bson.M{"user_id": userID.String()},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	var docs []*recordDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	res := make([]*tokens.TokenRecord, 0, len(docs))
	for _, d := range docs {
		r, err := d.model()
		if err != nil {
			return nil, err
		}
		res = append(res, r)
	}
	return res, nil
}

func (s *Store) PurgeTokenRecords(ctx context.Context, before time.Time) (int, error) {
	res, err := s.records.DeleteMany(ctx, bson.M{"$or": bson.A{
		bson.M{"refresh_token_expires_at": bson.M{"$lt": before}},
		bson.M{"revoked_at": bson.M{"$lt": before}},
	}})
	if err != nil {
		return 0, err
	}
	return int(res.DeletedCount), nil
}
