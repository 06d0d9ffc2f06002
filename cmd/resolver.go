package cmd

import (
	"context"
	"time"

	"github.com/eisenwinter/extrxx/db"
	"github.com/eisenwinter/extrxx/events"
	"github.com/eisenwinter/extrxx/memstore"
	"github.com/eisenwinter/extrxx/metrics"
	"github.com/eisenwinter/extrxx/mongostore"
	"github.com/eisenwinter/extrxx/redisstore"
	"github.com/eisenwinter/extrxx/tokens"
	"go.uber.org/zap"
)

// resolvedStore is whatever database.type selected, sql is only set for
// the sql stores which also keep the audit log
type resolvedStore struct {
	records tokens.RecordStore
	users   tokens.UserRegistry
	ping    func(ctx context.Context) error
	sql     *db.DataStore
	close   func()
}

func (s *resolvedStore) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

func retention() time.Duration {
	if LoadedConfig.Housekeeping != nil {
		return LoadedConfig.Housekeeping.Retention
	}
	return 0
}

func mustResolveUsableStore(ctx context.Context) *resolvedStore {
	log := TopLevelLogger.Named("database")
	cfg := LoadedConfig.Database
	switch cfg.Type {
	case "memory":
		log.Warn("Using the in memory store, everything is lost on shutdown")
		store := memstore.New()
		return &resolvedStore{records: store, users: store, ping: store.Ping, close: func() {}}
	case "redis":
		client, err := redisstore.Connect(ctx, cfg.DSN)
		if err != nil {
			TopLevelLogger.Fatal("Failed to connect to redis", zap.Error(err))
		}
		store := redisstore.NewStore(log, client, cfg.Prefix, retention())
		return &resolvedStore{records: store, users: store, ping: store.Ping, close: func() {
			_ = store.Close()
		}}
	case "mongo":
		store, err := mongostore.Connect(ctx, log, cfg.DSN, cfg.Name)
		if err != nil {
			TopLevelLogger.Fatal("Failed to connect to mongo", zap.Error(err))
		}
		if err := store.EnsureIndexes(ctx, retention()); err != nil {
			TopLevelLogger.Fatal("Datastore is unusable", zap.Error(err))
		}
		return &resolvedStore{records: store, users: store, ping: store.Ping, close: func() {
			_ = store.Close(context.Background())
		}}
	default:
		dataStore, err := db.NewStore(TopLevelLogger, cfg)
		if err != nil {
			TopLevelLogger.Fatal("Failed to create datastore", zap.Error(err))
		}
		err = dataStore.EnsureUsable()
		if err != nil {
			TopLevelLogger.Fatal("Datastore is unusable", zap.Error(err))
		}
		return &resolvedStore{
			records: dataStore,
			users:   dataStore,
			ping:    dataStore.Ping,
			sql:     dataStore,
			close:   dataStore.Close,
		}
	}
}

// bootstrapDispatcher registers the audit listeners for sql stores and the
// metric listeners if a collector is given
func bootstrapDispatcher(store *resolvedStore, collector *metrics.Collector) *events.Dispatcher {
	dispatcher := events.NewDispatcher(TopLevelLogger.Named("event_dispatcher"))
	if store.sql != nil {
		dbLayer := db.BootstrapListeners(store.sql.Auditor(), TopLevelLogger.Named("event_listener"))
		dispatcher.Register(dbLayer...)
	}
	if collector != nil {
		dispatcher.Register(collector.Listeners()...)
	}
	return dispatcher
}

func resolveService(store *resolvedStore, dispatcher *events.Dispatcher) *tokens.Service {
	return tokens.NewService(
		TopLevelLogger.Named("tokens"),
		LoadedConfig.Tokens,
		store.records,
		store.users,
		tokens.WithDispatcher(dispatcher),
	)
}
