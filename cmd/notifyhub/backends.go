package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/notifyhub/pkg/blob"
	"github.com/dmitrymomot/notifyhub/pkg/config"
	"github.com/dmitrymomot/notifyhub/pkg/httpserver"
	"github.com/dmitrymomot/notifyhub/pkg/logger"
	"github.com/dmitrymomot/notifyhub/pkg/mongo"
	"github.com/dmitrymomot/notifyhub/pkg/pg"
	"github.com/dmitrymomot/notifyhub/pkg/queue"
	"github.com/dmitrymomot/notifyhub/pkg/ratelimiter"
	"github.com/dmitrymomot/notifyhub/pkg/redis"
	"github.com/dmitrymomot/notifyhub/svc/devicetemplate"
	"github.com/dmitrymomot/notifyhub/svc/pushreg"
	"github.com/dmitrymomot/notifyhub/svc/reminder"
	"github.com/dmitrymomot/notifyhub/svc/status"
	"github.com/dmitrymomot/notifyhub/svc/webpushreg"
)

var ErrUnknownBackend = errors.New("unknown backend")

// queueRepository is what both the sender and the worker need.
type queueRepository interface {
	queue.SenderRepository
	queue.WorkerRepository
}

// backends holds the storage selected by the *_BACKEND switches.
type backends struct {
	queue     queueRepository
	blob      blob.Storage
	registry  pushreg.Registry
	webPush   webpushreg.Store
	reminders reminder.Store
	statuses  status.Store
	templates devicetemplate.Store
	limiter   ratelimiter.Store
	checks    map[string]httpserver.Check
	closers   []func(context.Context) error
}

func (b *backends) Close(ctx context.Context, log *slog.Logger) {
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](ctx); err != nil {
			log.ErrorContext(ctx, "failed to close backend", logger.Error(err))
		}
	}
}

func connectBackends(ctx context.Context, cfg Config, log *slog.Logger) (*backends, error) {
	b := &backends{checks: map[string]httpserver.Check{}}
	steps := []func(context.Context, Config, *slog.Logger) error{
		b.connectQueue,
		b.connectBlob,
		b.connectRegistry,
		b.connectTables,
	}
	for _, step := range steps {
		if err := step(ctx, cfg, log); err != nil {
			b.Close(context.WithoutCancel(ctx), log)
			return nil, err
		}
	}
	return b, nil
}

func (b *backends) connectQueue(ctx context.Context, cfg Config, log *slog.Logger) error {
	switch cfg.Backends.Queue {
	case backendMemory:
		mem := queue.NewMemoryStorage()
		b.queue = mem
		b.closers = append(b.closers, func(context.Context) error { return mem.Close() })
		return nil
	case backendPostgres:
		var pgCfg pg.Config
		if err := config.Load(&pgCfg); err != nil {
			return err
		}
		pool, err := pg.Connect(ctx, pgCfg)
		if err != nil {
			return err
		}
		b.closers = append(b.closers, func(context.Context) error { pool.Close(); return nil })
		if err := pg.Migrate(ctx, pool, pgCfg, queue.Migrations, "migrations", log); err != nil {
			return err
		}
		repo, err := queue.NewPostgresStorage(pool)
		if err != nil {
			return err
		}
		b.queue = repo
		b.checks["postgres"] = pg.Healthcheck(pool)
		return nil
	}
	return fmt.Errorf("%w: QUEUE_BACKEND=%q", ErrUnknownBackend, cfg.Backends.Queue)
}

func (b *backends) connectBlob(ctx context.Context, cfg Config, _ *slog.Logger) error {
	switch cfg.Backends.Blob {
	case backendMemory:
		b.blob = blob.NewMemoryStorage()
		return nil
	case backendS3:
		s3, err := blob.NewS3Storage(ctx, cfg.S3)
		if err != nil {
			return err
		}
		b.blob = s3
		return nil
	}
	return fmt.Errorf("%w: BLOB_BACKEND=%q", ErrUnknownBackend, cfg.Backends.Blob)
}

// connectRegistry selects the store for push registrations, web-push
// subscriptions, reminder states and rate limit buckets.
func (b *backends) connectRegistry(ctx context.Context, cfg Config, _ *slog.Logger) error {
	switch cfg.Backends.Registry {
	case backendMemory:
		b.registry = pushreg.NewMemoryRegistry()
		b.webPush = webpushreg.NewMemoryStore()
		b.reminders = reminder.NewMemoryStore()
		limiter := ratelimiter.NewMemoryStore()
		b.limiter = limiter
		b.closers = append(b.closers, func(context.Context) error { return limiter.Close() })
		return nil
	case backendRedis:
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		b.closers = append(b.closers, func(context.Context) error { return client.Close() })
		prefix := cfg.Redis.KeyPrefix + ":"
		b.registry = pushreg.NewRedisRegistry(client, pushreg.WithKeyPrefix(prefix+"push:"))
		b.webPush = webpushreg.NewRedisStore(client, webpushreg.WithKeyPrefix(prefix+"webpush:"))
		b.reminders = reminder.NewRedisStore(client, reminder.WithKeyPrefix(prefix+"reminder:"))
		b.limiter = ratelimiter.NewRedisStore(client, ratelimiter.WithKeyPrefix(prefix+"ratelimit:"))
		b.checks["redis"] = redis.Healthcheck(client)
		return nil
	}
	return fmt.Errorf("%w: REGISTRY_BACKEND=%q", ErrUnknownBackend, cfg.Backends.Registry)
}

// connectTables selects the store for status rows and device templates and
// seeds templates from DEVICE_TEMPLATES_FILE when set.
func (b *backends) connectTables(ctx context.Context, cfg Config, log *slog.Logger) error {
	switch cfg.Backends.Status {
	case backendMemory:
		b.statuses = status.NewMemoryStore()
		b.templates = devicetemplate.NewMemoryStore()
	case backendMongo:
		client, err := mongo.New(ctx, cfg.Mongo)
		if err != nil {
			return err
		}
		b.closers = append(b.closers, client.Disconnect)
		db := client.Database(cfg.Mongo.Database)

		statuses := status.NewMongoStore(db)
		if err := statuses.EnsureIndexes(ctx); err != nil {
			return err
		}
		templates := devicetemplate.NewMongoStore(db)
		if err := templates.EnsureIndexes(ctx); err != nil {
			return err
		}
		b.statuses, b.templates = statuses, templates
		b.checks["mongo"] = mongo.Healthcheck(client)
	default:
		return fmt.Errorf("%w: STATUS_BACKEND=%q", ErrUnknownBackend, cfg.Backends.Status)
	}
	if cfg.Backends.TemplateCacheSize > 0 {
		b.templates = devicetemplate.NewCachedStore(b.templates, cfg.Backends.TemplateCacheSize, cfg.Backends.TemplateCacheTTL)
	}

	if cfg.Endpoints.DeviceTemplateFile == "" {
		return nil
	}
	templates, err := devicetemplate.LoadYAMLFile(cfg.Endpoints.DeviceTemplateFile)
	if err != nil {
		return err
	}
	if err := devicetemplate.Seed(ctx, b.templates, templates); err != nil {
		return err
	}
	log.InfoContext(ctx, "device templates seeded",
		logger.Component("devicetemplate"),
		slog.Int("count", len(templates)))
	return nil
}
