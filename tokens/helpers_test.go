package tokens_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/eisenwinter/extrxx/config"
	"github.com/eisenwinter/extrxx/generator"
	"github.com/eisenwinter/extrxx/memstore"
	"github.com/eisenwinter/extrxx/tokens"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var (
	testUserID  = uuid.MustParse("d1ef48c5-1fad-4514-ba2c-3a1851d39f87")
	otherUserID = uuid.MustParse("0a6f5b5e-4a4c-4b65-9f55-1c8f3f0e8d21")
	testEpoch   = time.Date(2022, 11, 12, 17, 47, 40, 0, time.UTC)
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: testEpoch}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// queuedGenerator hands out the queued values first, random tokens afterwards
type queuedGenerator struct {
	mu     sync.Mutex
	queue  []string
	random *generator.RandomTokenGenerator
}

func newQueuedGenerator(values ...string) *queuedGenerator {
	return &queuedGenerator{queue: values, random: generator.New()}
}

func (g *queuedGenerator) CreateSecureToken() generator.RandomTokenType {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.queue) == 0 {
		return g.random.CreateSecureToken()
	}
	v := g.queue[0]
	g.queue = g.queue[1:]
	return generator.RandomTokenType(v)
}

type fixture struct {
	store   *memstore.Store
	clock   *fakeClock
	service *tokens.Service
}

func newFixture(t *testing.T, queued ...string) *fixture {
	t.Helper()
	store := memstore.New()
	clock := newFakeClock()
	ctx := context.Background()
	for _, p := range []*tokens.Profile{
		{ID: testUserID, Email: "u1@example.com", Username: "u1"},
		{ID: otherUserID, Email: "u2@example.com", Username: "u2"},
	} {
		require.NoError(t, store.CreateUser(ctx, p))
	}
	service := tokens.NewService(
		zaptest.NewLogger(t),
		config.DefaultTokenConfiguration(),
		store,
		store,
		tokens.WithClock(clock),
		tokens.WithGenerator(newQueuedGenerator(queued...)),
	)
	return &fixture{store: store, clock: clock, service: service}
}

// signIn issues and exchanges a code for the user
func (f *fixture) signIn(t *testing.T, userID uuid.UUID) *tokens.TokenPair {
	t.Helper()
	ctx := context.Background()
	code, err := f.service.IssueCode(ctx, userID, "app://done")
	require.NoError(t, err)
	pair, err := f.service.Exchange(ctx, code.Code)
	require.NoError(t, err)
	return pair
}
