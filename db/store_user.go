package db

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/eisenwinter/extrxx/db/tables"
	"github.com/eisenwinter/extrxx/tokens"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func profileFromTable(u *tables.UserTable) *tokens.Profile {
	p := &tokens.Profile{
		ID:       u.ID,
		Email:    u.Email,
		Username: u.Username,
	}
	if u.AvatarURL != nil {
		p.AvatarURL = *u.AvatarURL
	}
	return p
}

// UserProfile resolves a user for the token service
func (d *DataStore) UserProfile(ctx context.Context, id uuid.UUID) (*tokens.Profile, error) {
	var user tables.UserTable
	q := d.sb.Select("id", "email", "username", "avatar_url", "created_at", "updated_at").
		From("users").
		Where(sq.Eq{"id": id})
	err := d.getStatement(ctx, &user, q, nil)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			d.log.Error("unable to query database", zap.Error(err))
		}
		return nil, err
	}
	return profileFromTable(&user), nil
}

func (d *DataStore) CreateUser(ctx context.Context, profile *tokens.Profile) error {
	exists, err := d.exists(ctx, "users", sq.Or{
		sq.Eq{"id": profile.ID},
		sq.Eq{"email": profile.Email},
		sq.Eq{"username": profile.Username},
	})
	if err != nil {
		return err
	}
	if exists {
		return ErrAlreadyExists
	}
	var avatar *string
	if profile.AvatarURL != "" {
		avatar = &profile.AvatarURL
	}
	insert := d.sb.Insert("users").SetMap(map[string]interface{}{
		"id":         profile.ID,
		"email":      profile.Email,
		"username":   profile.Username,
		"avatar_url": avatar,
		"created_at": time.Now().UTC().Truncate(time.Millisecond),
	})
	_, err = d.insertStatement(ctx, insert, nil)
	if err != nil {
		d.log.Error("could not insert user", zap.Error(err))
	}
	return err
}

// Users lists every user ordered by username
func (d *DataStore) Users(ctx context.Context) ([]*tokens.Profile, error) {
	entities, _, err := d.ListUsers(ctx, ListOptions{PageSize: 1000, Sort: "username"})
	if err != nil {
		return nil, err
	}
	res := make([]*tokens.Profile, 0, len(entities))
	for _, u := range entities {
		res = append(res, profileFromTable(u))
	}
	return res, nil
}

// ListUsers is the paged administrative listing with fiql filters
func (d *DataStore) ListUsers(ctx context.Context, opts ListOptions) ([]*tables.UserTable, int, error) {
	opts.normalize()
	applyWhere, err := d.whereFromAdapater("users", opts.Query)
	if err != nil {
		return nil, 0, err
	}
	var c int
	count := applyWhere(d.sb.Select("COUNT(*)").From("users"))
	if err := d.getStatement(ctx, &c, count, nil); err != nil {
		return nil, 0, err
	}
	if c < int(opts.offset()) {
		return []*tables.UserTable{}, c, nil
	}

	entities := make([]*tables.UserTable, 0)
	q := d.sb.
		Select("id", "email", "username", "avatar_url", "created_at", "updated_at").
		From("users")
	q = applyWhere(q)
	q = d.orderByFromAdapater(q, "users", "username ASC", opts)
	q = q.Offset(opts.offset()).Limit(uint64(opts.PageSize))
	if err := d.selectStatement(ctx, &entities, q, nil); err != nil {
		return nil, 0, err
	}
	return entities, c, nil
}
