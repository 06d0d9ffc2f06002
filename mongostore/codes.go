package mongostore

import (
	"context"
	"time"

	"github.com/eisenwinter/extrxx/tokens"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func (s *Store) InsertAuthorizationCode(ctx context.Context, code *tokens.AuthorizationCode) error {
	_, err := s.codes.InsertOne(ctx, codeToDocument(code))
	if err != nil {
		s.log.Error("could not insert authorization code", zap.Error(err))
	}
	return translate(err)
}

func redeemableFilter(code string, now time.Time) bson.M {
	return bson.M{
		"_id":        code,
		"used_at":    nil,
		"expires_at": bson.M{"$gt": now},
	}
}

func (s *Store) RedeemableAuthorizationCode(
	ctx context.Context,
	code string,
	now time.Time,
) (*tokens.AuthorizationCode, error) {
	var doc codeDocument
	if err := s.codes.FindOne(ctx, redeemableFilter(code, now)).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	return doc.model()
}

func (s *Store) MarkAuthorizationCodeUsed(ctx context.Context, code string, now time.Time) error {
	res, err := s.codes.UpdateOne(ctx,
		redeemableFilter(code, now),
		bson.M{"$set": bson.M{"used_at": now}},
	)
	if err != nil {
		return err
	}
	return s.conditionalResult(ctx, s.codes, code, res)
}

func (s *Store) PurgeAuthorizationCodes(ctx context.Context, before time.Time) (int, error) {
	res, err := s.codes.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lt": before}})
	if err != nil {
		return 0, err
	}
	return int(res.DeletedCount), nil
}
