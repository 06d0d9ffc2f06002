// Package mongostore keeps codes, token records and users in mongodb.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eisenwinter/extrxx/tokens"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"
	"go.uber.org/zap"
)

var (
	_ tokens.RecordStore  = (*Store)(nil)
	_ tokens.UserRegistry = (*Store)(nil)
)

const (
	codesCollection   = "authorization_codes"
	recordsCollection = "token_records"
	usersCollection   = "users"
)

type Store struct {
	log     *zap.Logger
	client  *mongo.Client
	codes   *mongo.Collection
	records *mongo.Collection
	users   *mongo.Collection
}

// Connect opens a monitored client and binds the collections of database
func Connect(ctx context.Context, log *zap.Logger, uri string, database string) (*Store, error) {
	opts := options.Client().ApplyURI(uri).SetMonitor(otelmongo.NewMonitor())
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("MongoDB not reachable: %w", err)
	}
	return newStore(log, client, database), nil
}

func newStore(log *zap.Logger, client *mongo.Client, database string) *Store {
	db := client.Database(database)
	return &Store{
		log:     log,
		client:  client,
		codes:   db.Collection(codesCollection),
		records: db.Collection(recordsCollection),
		users:   db.Collection(usersCollection),
	}
}

// EnsureIndexes creates the lookup indexes, codes are additionally dropped
// by the server once they have been expired for retention
func (s *Store) EnsureIndexes(ctx context.Context, retention time.Duration) error {
	_, err := s.codes.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(int32(retention.Seconds())),
	})
	if err != nil {
		return fmt.Errorf("failed to create code expiry index: %w", err)
	}

	_, err = s.records.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "access_token", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "refresh_token", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create token record indexes: %w", err)
	}

	caseInsensitive := &options.Collation{Locale: "en", Strength: 2}
	_, err = s.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetCollation(caseInsensitive),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true).SetCollation(caseInsensitive),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ping checks the connection, used by the health endpoint
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// translate maps driver errors onto the store errors
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return tokens.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return tokens.ErrAlreadyExists
	default:
		return err
	}
}

// conditionalResult tells a lost condition apart from a missing document
func (s *Store) conditionalResult(
	ctx context.Context,
	coll *mongo.Collection,
	id string,
	res *mongo.UpdateResult,
) error {
	if res.MatchedCount > 0 {
		return nil
	}
	n, err := coll.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if n == 0 {
		return tokens.ErrNotFound
	}
	return tokens.ErrNotUpdated
}
