package mongostore

import (
	"context"
	"time"

	"github.com/eisenwinter/extrxx/tokens"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (s *Store) UserProfile(ctx context.Context, id uuid.UUID) (*tokens.Profile, error) {
	var doc userDocument
	if err := s.users.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	return doc.model()
}

// CreateUser relies on the unique collated indexes for email and username
func (s *Store) CreateUser(ctx context.Context, profile *tokens.Profile) error {
	_, err := s.users.InsertOne(ctx, &userDocument{
		ID:        profile.ID.String(),
		Email:     profile.Email,
		Username:  profile.Username,
		AvatarURL: profile.AvatarURL,
		CreatedAt: time.Now().UTC(),
	})
	return translate(err)
}

func (s *Store) Users(ctx context.Context) ([]*tokens.Profile, error) {
	cur, err := s.users.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "username", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []*userDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	res := make([]*tokens.Profile, 0, len(docs))
	for _, d := range docs {
		p, err := d.model()
		if err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, nil
}
