// Package di wires the kit's process-wide collaborators together: the HTTP
// client, the query cache, the notifier, and the metrics registry. The
// container is built once at application start and injected downward;
// nothing imports a bare singleton, so tests substitute a fresh container
// per test.
package di

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dokumatek/erpkit/client"
	"github.com/dokumatek/erpkit/internal/metrics"
	"github.com/dokumatek/erpkit/masterdata"
	"github.com/dokumatek/erpkit/notify"
	"github.com/dokumatek/erpkit/query"
)

// Container manages singleton instances of the kit's collaborators and
// provides factory helpers for resource declarations.
type Container struct {
	config   Config
	client   *client.Client
	cache    *query.Cache
	notifier notify.Notifier
	registry *prometheus.Registry
}

// Option overrides a container collaborator before wiring completes.
type Option func(*containerOptions)

type containerOptions struct {
	notifier notify.Notifier
	logger   *slog.Logger
}

// WithNotifier substitutes the notification surface, typically the host
// application's toast system.
func WithNotifier(n notify.Notifier) Option {
	return func(o *containerOptions) { o.notifier = n }
}

// WithLogger substitutes the structured logger used throughout the kit.
func WithLogger(log *slog.Logger) Option {
	return func(o *containerOptions) { o.logger = log }
}

// NewContainer validates cfg and wires the full collaborator graph.
func NewContainer(cfg Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var co containerOptions
	for _, opt := range opts {
		opt(&co)
	}
	if co.logger == nil {
		co.logger = slog.Default()
	}
	if co.notifier == nil {
		co.notifier = notify.NewLogNotifier(co.logger)
	}

	api, err := client.New(cfg.BaseURL,
		client.WithLogger(co.logger),
		client.WithUserAgent(cfg.UserAgent),
	)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	cache, err := query.New(cfg.cacheConfig(),
		query.WithClient(api),
		query.WithLogger(co.logger),
		query.WithMetrics(metrics.New(registry)),
	)
	if err != nil {
		return nil, err
	}

	return &Container{
		config:   cfg,
		client:   api,
		cache:    cache,
		notifier: co.notifier,
		registry: registry,
	}, nil
}

// NewContainerWithDefaults wires a container from DefaultConfig pointed at
// baseURL. Convenience constructor for typical use.
func NewContainerWithDefaults(baseURL string, opts ...Option) (*Container, error) {
	cfg := DefaultConfig()
	cfg.BaseURL = baseURL
	return NewContainer(cfg, opts...)
}

// Client returns the singleton HTTP client.
func (c *Container) Client() *client.Client {
	return c.client
}

// Cache returns the singleton query cache.
func (c *Container) Cache() *query.Cache {
	return c.cache
}

// Notifier returns the notification surface.
func (c *Container) Notifier() notify.Notifier {
	return c.notifier
}

// Registry returns the Prometheus registry the cache reports into, for the
// host application to expose however it sees fit.
func (c *Container) Registry() *prometheus.Registry {
	return c.registry
}

// Config returns a copy of the container configuration.
func (c *Container) Config() Config {
	return c.config
}

// Deps assembles the dependency bundle resource declarations consume.
func (c *Container) Deps() masterdata.Deps {
	return masterdata.Deps{
		Client:   c.client,
		Cache:    c.cache,
		Notifier: c.notifier,
	}
}

// cacheConfig maps the flat YAML-friendly fields onto the cache config.
func (c Config) cacheConfig() query.Config {
	cfg := query.DefaultConfig()
	if c.Cache.Capacity > 0 {
		cfg.Capacity = c.Cache.Capacity
	}
	if c.Cache.NumShards > 0 {
		cfg.NumShards = c.Cache.NumShards
	}
	if c.Cache.RetentionSeconds > 0 {
		cfg.Retention = time.Duration(c.Cache.RetentionSeconds) * time.Second
	}
	if c.Cache.EvictionPercentage > 0 {
		cfg.EvictionPercentage = c.Cache.EvictionPercentage
	}
	return cfg
}
