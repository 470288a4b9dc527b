// Package app wires the adapters to the engines according to the
// loaded configuration.
package app

import (
	"context"
	"fmt"
	nethttp "net/http"

	"github.com/ispconsole/backoffice/internal/adapter/backend"
	"github.com/ispconsole/backoffice/internal/adapter/cache/memory"
	rediscache "github.com/ispconsole/backoffice/internal/adapter/cache/redis"
	"github.com/ispconsole/backoffice/internal/adapter/events/nats"
	"github.com/ispconsole/backoffice/internal/adapter/storage/s3"
	"github.com/ispconsole/backoffice/internal/config"
	"github.com/ispconsole/backoffice/internal/filter"
	"github.com/ispconsole/backoffice/internal/pkg/logger"
	"github.com/ispconsole/backoffice/internal/port"
	"github.com/ispconsole/backoffice/internal/query"
	"github.com/ispconsole/backoffice/internal/service"
	"github.com/ispconsole/backoffice/internal/session"
	"github.com/ispconsole/backoffice/internal/transport/http"
)

type Container struct {
	Config *config.Config

	Backend  *backend.Client
	Cache    port.Cache
	Events   *nats.Client
	Store    port.ObjectStore
	Engine   *query.Engine
	Service  *service.Entity
	Sessions *session.Manager
	Hub      *http.Hub

	Handler nethttp.Handler
}

// NewContainer builds everything. Redis, NATS and S3 are optional:
// a single instance with the in-memory cache works with an empty
// environment beyond the API and session settings.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	c := &Container{Config: cfg}
	log := logger.From(ctx)

	c.Backend = backend.New(cfg.APIBaseURL, cfg.APIVersion, cfg.APITimeout)

	if cfg.RedisAddr != "" {
		c.Cache = rediscache.New(cfg.RedisAddr)
		log.Info("query cache: redis", "addr", cfg.RedisAddr)
	} else {
		c.Cache = memory.New()
		log.Info("query cache: in-memory")
	}

	var pub port.InvalidationPublisher
	if cfg.NATSURL != "" {
		events, err := nats.NewClient(cfg.NATSURL)
		if err != nil {
			return nil, fmt.Errorf("connect nats: %w", err)
		}
		c.Events = events
		pub = events
	}

	c.Engine = query.NewEngine(c.Backend, c.Cache, pub, query.Options{
		ReadRetries: cfg.ReadRetries,
	})

	if c.Events != nil {
		err := c.Events.SubscribeInvalidation(func(entity string) {
			c.Engine.InvalidateLocal(context.Background(), entity)
		})
		if err != nil {
			return nil, fmt.Errorf("subscribe invalidations: %w", err)
		}
	}

	if cfg.S3Bucket != "" {
		store, err := s3.New(ctx, cfg.S3Region, cfg.S3Bucket, cfg.S3Endpoint)
		if err != nil {
			return nil, fmt.Errorf("connect object storage: %w", err)
		}
		c.Store = store
	}

	c.Service = service.NewEntity(c.Backend, c.Engine, http.Notifier{}, c.Store)
	c.Sessions = session.NewManager(c.Backend, cfg.SessionSecret, cfg.SessionMaxAge,
		cfg.BootstrapUser, cfg.BootstrapPassHash)

	c.Hub = http.NewHub()
	c.Engine.OnInvalidate(c.Hub.Broadcast)

	filterOpts := filter.Options{Debounce: cfg.FilterDebounce, MinChars: cfg.FilterMinChars}
	c.Handler = http.NewRouter(http.NewHandlers(c.Service, c.Sessions, filterOpts), c.Hub,
		c.Sessions, cfg.CORSOrigins)

	return c, nil
}

// Close releases the long-lived connections.
func (c *Container) Close() {
	if c.Events != nil {
		c.Events.Close()
	}
}
