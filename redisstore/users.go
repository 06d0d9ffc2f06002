package redisstore

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/eisenwinter/extrxx/tokens"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func (s *Store) UserProfile(ctx context.Context, id uuid.UUID) (*tokens.Profile, error) {
	m, err := s.client.HGetAll(ctx, s.profileKey(id.String())).Result()
	if err != nil {
		return nil, err
	}
	if len(m) == 0 {
		return nil, tokens.ErrNotFound
	}
	return profileFromHash(m)
}

func profileFromHash(m map[string]string) (*tokens.Profile, error) {
	id, err := uuid.Parse(m["id"])
	if err != nil {
		return nil, err
	}
	return &tokens.Profile{
		ID:        id,
		Email:     m["email"],
		Username:  m["username"],
		AvatarURL: m["avatar_url"],
	}, nil
}

func (s *Store) CreateUser(ctx context.Context, profile *tokens.Profile) error {
	id := profile.ID.String()
	res, err := createUserLua.Run(ctx, s.client,
		[]string{
			s.profileKey(id),
			s.emailKey(strings.ToLower(profile.Email)),
			s.usernameKey(strings.ToLower(profile.Username)),
			s.usersKey(),
		},
		id,
		profile.Email,
		profile.Username,
		profile.AvatarURL,
		millis(time.Now()),
	).Int64()
	if err != nil {
		return err
	}
	if res != resultUpdated {
		return tokens.ErrAlreadyExists
	}
	return nil
}

func (s *Store) Users(ctx context.Context) ([]*tokens.Profile, error) {
	ids, err := s.client.SMembers(ctx, s.usersKey()).Result()
	if err != nil {
		return nil, err
	}
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, s.profileKey(id))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	res := make([]*tokens.Profile, 0, len(ids))
	for _, cmd := range cmds {
		if len(cmd.Val()) == 0 {
			continue
		}
		p, err := profileFromHash(cmd.Val())
		if err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].Username < res[j].Username
	})
	return res, nil
}
